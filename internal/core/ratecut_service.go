package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// RateCutLedger settles rate-cut obligations: standalone rate-cut creation
// against an existing purchase, payment application, and reads.
type RateCutLedger interface {
	List(ctx context.Context) ([]RateCut, error)
	Get(ctx context.Context, rateCutID int) (*RateCut, error)
	Create(ctx context.Context, rc RateCut) (int, error)
	ApplyPayment(ctx context.Context, payment PurchasePayment) (int, error)
	ListPayments(ctx context.Context) ([]PurchasePayment, error)
}

type RateCutService struct {
	db      *pgxpool.Pool
	docNums DocNumberGenerator
}

func NewRateCutService(db *pgxpool.Pool, docNums DocNumberGenerator) *RateCutService {
	return &RateCutService{db: db, docNums: docNums}
}

const rateCutColumns = `rate_cut_id, purchase_id, invoice, category, total_pure_wt, rate_cut_wt,
	rate_cut, rate_cut_amt, paid_amount, balance_amount, paid_wt, bal_wt, paid_by`

func scanRateCut(row pgx.Row) (*RateCut, error) {
	var rc RateCut
	err := row.Scan(&rc.RateCutID, &rc.PurchaseID, &rc.Invoice, &rc.Category, &rc.TotalPureWt,
		&rc.RateCutWt, &rc.RateCut, &rc.RateCutAmt, &rc.PaidAmount, &rc.BalanceAmount,
		&rc.PaidWt, &rc.BalWt, &rc.PaidBy)
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

func (s *RateCutService) List(ctx context.Context) ([]RateCut, error) {
	rows, err := s.db.Query(ctx, `SELECT `+rateCutColumns+` FROM ratecuts ORDER BY rate_cut_id`)
	if err != nil {
		return nil, fmt.Errorf("list rate cuts: %w", err)
	}
	defer rows.Close()

	var cuts []RateCut
	for rows.Next() {
		rc, err := scanRateCut(rows)
		if err != nil {
			return nil, err
		}
		cuts = append(cuts, *rc)
	}
	return cuts, rows.Err()
}

func (s *RateCutService) Get(ctx context.Context, rateCutID int) (*RateCut, error) {
	rc, err := scanRateCut(s.db.QueryRow(ctx,
		`SELECT `+rateCutColumns+` FROM ratecuts WHERE rate_cut_id = $1`, rateCutID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFound("rate cut", rateCutID)
	}
	if err != nil {
		return nil, fmt.Errorf("load rate cut %d: %w", rateCutID, err)
	}
	return rc, nil
}

// Create records a standalone rate-cut against an existing purchase line and
// bumps the purchase's settled weight. The settled weight is derived from the
// cumulative paid amount at the rate-cut price.
func (s *RateCutService) Create(ctx context.Context, rc RateCut) (int, error) {
	paidWt, balWt := rateCutSettlement(rc.PaidAmount, rc.RateCut, rc.RateCutWt)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin rate cut create: %w", err)
	}
	defer tx.Rollback(ctx)

	var rateCutID int
	err = tx.QueryRow(ctx, `
		INSERT INTO ratecuts (purchase_id, invoice, category, total_pure_wt, rate_cut_wt,
			rate_cut, rate_cut_amt, paid_amount, balance_amount, paid_wt, bal_wt)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING rate_cut_id`,
		rc.PurchaseID, rc.Invoice, rc.Category, rc.TotalPureWt, rc.RateCutWt,
		rc.RateCut, rc.RateCutAmt, rc.PaidAmount, rc.BalanceAmount, paidWt, balWt).Scan(&rateCutID)
	if err != nil {
		return 0, fmt.Errorf("insert rate cut: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE purchases SET
			paid_wt = COALESCE(paid_wt, 0) + $1,
			"balWt_after_payment" = COALESCE($2, 0) - COALESCE($1, 0)
		WHERE id = $3`,
		rc.RateCutWt, rc.TotalPureWt, rc.PurchaseID)
	if err != nil {
		return 0, fmt.Errorf("update purchase %d settlement: %w", rc.PurchaseID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit rate cut create: %w", err)
	}
	return rateCutID, nil
}

// ApplyPayment records a purchase payment and settles it against its rate-cut.
// The rate-cut recompute runs as four independent statements so each balance
// field is rederived from the freshly written cumulative column; any number of
// repeated applications keeps bal_wt = rate_cut_wt - paid_wt and
// balance_amount = rate_cut_amt - paid_amount. The payment insert and all four
// statements share one transaction.
func (s *RateCutService) ApplyPayment(ctx context.Context, payment PurchasePayment) (int, error) {
	if payment.Date == "" || payment.Invoice == "" || payment.Category == "" || payment.TotalAmt.IsZero() {
		return 0, Invalid("date, invoice, category and total_amt are required")
	}

	paymentNo := payment.PaymentNo
	if paymentNo == "" {
		var err error
		paymentNo, err = s.docNums.NextPaymentNumber(ctx)
		if err != nil {
			return 0, err
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin payment: %w", err)
	}
	defer tx.Rollback(ctx)

	var paymentID int
	err = tx.QueryRow(ctx, `
		INSERT INTO purchase_payments (date, mode, cheque_number, payment_no, account_name,
			invoice, category, rate_cut, total_wt, paid_wt, bal_wt, total_amt, paid_amt,
			bal_amt, paid_by, remarks, rate_cut_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,NOW())
		RETURNING id`,
		payment.Date, payment.Mode, payment.ChequeNumber, paymentNo, payment.AccountName,
		payment.Invoice, payment.Category, payment.RateCut, payment.TotalWt, payment.PaidWt,
		payment.BalWt, payment.TotalAmt, payment.PaidAmt, payment.BalAmt, payment.PaidBy,
		payment.Remarks, payment.RateCutID).Scan(&paymentID)
	if err != nil {
		return 0, fmt.Errorf("insert purchase payment: %w", err)
	}

	if err := settleRateCutTx(ctx, tx, payment.RateCutID, payment.PaidWt, payment.PaidAmt); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit payment: %w", err)
	}
	return paymentID, nil
}

// settleRateCutTx applies a payment's weight and amount to a rate-cut. The
// four statements stay separate on purpose: each balance is recomputed from
// the column just written, so a rerun converges instead of compounding.
func settleRateCutTx(ctx context.Context, tx pgx.Tx, rateCutID int, paidWt, paidAmt decimal.Decimal) error {
	steps := []struct {
		query string
		args  []any
	}{
		{`UPDATE ratecuts SET paid_wt = paid_wt + $1 WHERE rate_cut_id = $2`, []any{paidWt, rateCutID}},
		{`UPDATE ratecuts SET bal_wt = rate_cut_wt - paid_wt WHERE rate_cut_id = $1`, []any{rateCutID}},
		{`UPDATE ratecuts SET paid_amount = COALESCE(paid_amount, 0) + $1 WHERE rate_cut_id = $2`, []any{paidAmt, rateCutID}},
		{`UPDATE ratecuts SET balance_amount = rate_cut_amt - paid_amount WHERE rate_cut_id = $1`, []any{rateCutID}},
	}
	for _, step := range steps {
		if _, err := tx.Exec(ctx, step.query, step.args...); err != nil {
			return fmt.Errorf("settle rate cut %d: %w", rateCutID, err)
		}
	}
	return nil
}

func (s *RateCutService) ListPayments(ctx context.Context) ([]PurchasePayment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, date, mode, cheque_number, payment_no, account_name, invoice, category,
			rate_cut, total_wt, paid_wt, bal_wt, total_amt, paid_amt, bal_amt, paid_by,
			remarks, rate_cut_id, created_at
		FROM purchase_payments ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list purchase payments: %w", err)
	}
	defer rows.Close()

	var payments []PurchasePayment
	for rows.Next() {
		var p PurchasePayment
		if err := rows.Scan(&p.ID, &p.Date, &p.Mode, &p.ChequeNumber, &p.PaymentNo,
			&p.AccountName, &p.Invoice, &p.Category, &p.RateCut, &p.TotalWt, &p.PaidWt,
			&p.BalWt, &p.TotalAmt, &p.PaidAmt, &p.BalAmt, &p.PaidBy, &p.Remarks,
			&p.RateCutID, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
