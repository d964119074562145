package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// URDSaveRequest is a used-gold purchase submission: one customer header plus
// the item lines bought from them.
type URDSaveRequest struct {
	CustomerID  *int            `json:"customer_id,omitempty"`
	AccountName string          `json:"account_name"`
	Mobile      string          `json:"mobile"`
	Date        string          `json:"date"`
	URDNumber   string          `json:"urdpurchase_number"`
	Items       []URDPurchase   `json:"urd_purchase_details"`
}

// URDLedger records purchases of used gold from walk-in customers. The
// customer header is denormalized onto every item row.
type URDLedger interface {
	Save(ctx context.Context, req URDSaveRequest) (string, error)
	List(ctx context.Context) ([]URDPurchase, error)
	GetByNumber(ctx context.Context, urdNumber string) ([]URDPurchase, error)
	UpdateByNumber(ctx context.Context, urdNumber string, req URDSaveRequest) error
	DeleteByNumber(ctx context.Context, urdNumber string) error
}

type URDService struct {
	db      *pgxpool.Pool
	docNums DocNumberGenerator
}

func NewURDService(db *pgxpool.Pool, docNums DocNumberGenerator) *URDService {
	return &URDService{db: db, docNums: docNums}
}

const urdColumns = `id, customer_id, account_name, mobile, date, urdpurchase_number,
	product_id, product_name, metal, purity, hsn_code, gross, dust, touch_percent,
	ml_percent, eqt_wt, remarks, rate, total_amount`

func scanURDPurchase(row pgx.Row) (*URDPurchase, error) {
	var u URDPurchase
	err := row.Scan(&u.ID, &u.CustomerID, &u.AccountName, &u.Mobile, &u.Date, &u.URDNumber,
		&u.ProductID, &u.ProductName, &u.Metal, &u.Purity, &u.HSNCode, &u.Gross, &u.Dust,
		&u.TouchPercent, &u.MLPercent, &u.EqtWt, &u.Remarks, &u.Rate, &u.TotalAmount)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Save inserts one row per item, all carrying the customer header and the URD
// number. A blank number gets the next one in the URD sequence.
func (s *URDService) Save(ctx context.Context, req URDSaveRequest) (string, error) {
	if req.AccountName == "" || req.Date == "" {
		return "", Invalid("account_name and date are required")
	}
	if len(req.Items) == 0 {
		return "", Invalid("at least one purchase item is required")
	}

	urdNumber := req.URDNumber
	if urdNumber == "" {
		var err error
		urdNumber, err = s.docNums.NextURDNumber(ctx)
		if err != nil {
			return "", err
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin urd save: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, it := range req.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO urd_purchase_details (customer_id, account_name, mobile, date,
				urdpurchase_number, product_id, product_name, metal, purity, hsn_code,
				gross, dust, touch_percent, ml_percent, eqt_wt, remarks, rate, total_amount)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
			req.CustomerID, req.AccountName, req.Mobile, req.Date,
			urdNumber, it.ProductID, it.ProductName, it.Metal, it.Purity, it.HSNCode,
			it.Gross, it.Dust, it.TouchPercent, it.MLPercent, it.EqtWt, it.Remarks,
			it.Rate, it.TotalAmount)
		if err != nil {
			return "", fmt.Errorf("insert urd purchase item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit urd save: %w", err)
	}
	return urdNumber, nil
}

func (s *URDService) List(ctx context.Context) ([]URDPurchase, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+urdColumns+` FROM urd_purchase_details ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list urd purchases: %w", err)
	}
	defer rows.Close()
	return collectURDPurchases(rows)
}

// GetByNumber returns all item rows of one used-gold purchase.
func (s *URDService) GetByNumber(ctx context.Context, urdNumber string) ([]URDPurchase, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+urdColumns+` FROM urd_purchase_details
		 WHERE urdpurchase_number = $1 ORDER BY id`, urdNumber)
	if err != nil {
		return nil, fmt.Errorf("load urd purchase %s: %w", urdNumber, err)
	}
	defer rows.Close()

	items, err := collectURDPurchases(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, NotFound("urd purchase", urdNumber)
	}
	return items, nil
}

func collectURDPurchases(rows pgx.Rows) ([]URDPurchase, error) {
	var items []URDPurchase
	for rows.Next() {
		u, err := scanURDPurchase(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	return items, rows.Err()
}

// UpdateByNumber replaces the item rows of a purchase: delete and reinsert
// under the same number, keeping the submitted header.
func (s *URDService) UpdateByNumber(ctx context.Context, urdNumber string, req URDSaveRequest) error {
	if len(req.Items) == 0 {
		return Invalid("at least one purchase item is required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin urd update: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM urd_purchase_details WHERE urdpurchase_number = $1`, urdNumber)
	if err != nil {
		return fmt.Errorf("clear urd purchase %s: %w", urdNumber, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("urd purchase", urdNumber)
	}

	for _, it := range req.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO urd_purchase_details (customer_id, account_name, mobile, date,
				urdpurchase_number, product_id, product_name, metal, purity, hsn_code,
				gross, dust, touch_percent, ml_percent, eqt_wt, remarks, rate, total_amount)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
			req.CustomerID, req.AccountName, req.Mobile, req.Date,
			urdNumber, it.ProductID, it.ProductName, it.Metal, it.Purity, it.HSNCode,
			it.Gross, it.Dust, it.TouchPercent, it.MLPercent, it.EqtWt, it.Remarks,
			it.Rate, it.TotalAmount)
		if err != nil {
			return fmt.Errorf("reinsert urd purchase item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *URDService) DeleteByNumber(ctx context.Context, urdNumber string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM urd_purchase_details WHERE urdpurchase_number = $1`, urdNumber)
	if err != nil {
		return fmt.Errorf("delete urd purchase %s: %w", urdNumber, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("urd purchase", urdNumber)
	}
	return nil
}
