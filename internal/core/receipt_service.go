package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ReceiptFilter narrows the receipt register listing.
type ReceiptFilter struct {
	Date        string
	Mode        string
	AccountName string
}

// ReceiptLedger records customer payments against invoices and orders,
// keeping the invoice's receipts_amt running total and bal_after_receipts in
// step. Every mutation pairs the receipt write with the invoice-balance
// adjustment in one transaction.
type ReceiptLedger interface {
	Record(ctx context.Context, r Receipt) (int, error)
	RecordForOrder(ctx context.Context, r Receipt) (int, error)
	Update(ctx context.Context, id int, r Receipt) error
	UpdateForOrder(ctx context.Context, id int, r Receipt) error
	Delete(ctx context.Context, id int) error
	DeleteForOrder(ctx context.Context, id int) error
	Get(ctx context.Context, id int) (*Receipt, error)
	List(ctx context.Context, f ReceiptFilter) ([]Receipt, error)
}

type ReceiptService struct {
	db *pgxpool.Pool
}

func NewReceiptService(db *pgxpool.Pool) *ReceiptService {
	return &ReceiptService{db: db}
}

const receiptColumns = `id, transaction_type, date, mode, cheque_number, receipt_no,
	account_name, invoice_number, total_amt, discount_amt, cash_amt, remarks, total_wt,
	paid_wt, bal_wt, category, mobile`

func scanReceipt(row pgx.Row) (*Receipt, error) {
	var r Receipt
	err := row.Scan(&r.ID, &r.TransactionType, &r.Date, &r.Mode, &r.ChequeNumber,
		&r.ReceiptNo, &r.AccountName, &r.InvoiceNumber, &r.TotalAmt, &r.DiscountAmt,
		&r.CashAmt, &r.Remarks, &r.TotalWt, &r.PaidWt, &r.BalWt, &r.Category, &r.Mobile)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func validateReceipt(r Receipt) error {
	if r.TransactionType == "" || r.Date == "" || r.ReceiptNo == "" ||
		r.AccountName == "" || r.InvoiceNumber == "" {
		return Invalid("required fields are missing")
	}
	if r.TransactionType != "Receipt" {
		return Invalid("only Receipt transactions are accepted")
	}
	return nil
}

// Record inserts a receipt against an invoice: the receipt row, the
// receipts_amt increment and the bal_after_receipts recompute commit
// together or not at all.
func (s *ReceiptService) Record(ctx context.Context, r Receipt) (int, error) {
	return s.record(ctx, r, "invoice_number")
}

// RecordForOrder is the order-number variant: the payment lands on
// sale_details rows keyed by order_number instead.
func (s *ReceiptService) RecordForOrder(ctx context.Context, r Receipt) (int, error) {
	return s.record(ctx, r, "order_number")
}

func (s *ReceiptService) record(ctx context.Context, r Receipt, keyColumn string) (int, error) {
	if err := validateReceipt(r); err != nil {
		return 0, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin receipt: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int
	err = tx.QueryRow(ctx, `
		INSERT INTO receipts (transaction_type, date, mode, cheque_number, receipt_no,
			account_name, invoice_number, total_amt, discount_amt, cash_amt, remarks,
			total_wt, paid_wt, bal_wt, category, mobile)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING id`,
		r.TransactionType, r.Date, r.Mode, r.ChequeNumber, r.ReceiptNo,
		r.AccountName, r.InvoiceNumber, r.TotalAmt, r.DiscountAmt, r.CashAmt, r.Remarks,
		r.TotalWt, r.PaidWt, r.BalWt, r.Category, r.Mobile).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert receipt: %w", err)
	}

	if err := applyReceiptTx(ctx, tx, keyColumn, r.InvoiceNumber, r.DiscountAmt); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit receipt: %w", err)
	}
	return id, nil
}

// applyReceiptTx adds an applied amount to the target lines' receipts_amt and
// rederives bal_after_receipts from bal_amt.
func applyReceiptTx(ctx context.Context, tx pgx.Tx, keyColumn, key string, amount decimal.Decimal) error {
	_, err := tx.Exec(ctx, fmt.Sprintf(`
		UPDATE sale_details
		SET receipts_amt = COALESCE(receipts_amt, 0) + $1
		WHERE %s = $2`, keyColumn), amount, key)
	if err != nil {
		return fmt.Errorf("apply receipt amount: %w", err)
	}
	_, err = tx.Exec(ctx, fmt.Sprintf(`
		UPDATE sale_details
		SET bal_after_receipts = bal_amt - receipts_amt
		WHERE %s = $1`, keyColumn), key)
	if err != nil {
		return fmt.Errorf("recompute balance after receipts: %w", err)
	}
	return nil
}

// reverseReceiptTx undoes a receipt's contribution to the target lines.
func reverseReceiptTx(ctx context.Context, tx pgx.Tx, keyColumn, key string, amount decimal.Decimal) error {
	_, err := tx.Exec(ctx, fmt.Sprintf(`
		UPDATE sale_details
		SET receipts_amt = receipts_amt - $1,
			bal_after_receipts = bal_after_receipts + $1
		WHERE %s = $2`, keyColumn), amount, key)
	if err != nil {
		return fmt.Errorf("reverse receipt amount: %w", err)
	}
	return nil
}

// Update reverses the stored receipt's contribution, applies the new amount,
// and rewrites the receipt row, all in one transaction.
func (s *ReceiptService) Update(ctx context.Context, id int, r Receipt) error {
	return s.update(ctx, id, r, "invoice_number")
}

func (s *ReceiptService) UpdateForOrder(ctx context.Context, id int, r Receipt) error {
	return s.update(ctx, id, r, "order_number")
}

func (s *ReceiptService) update(ctx context.Context, id int, r Receipt, keyColumn string) error {
	if r.TransactionType != "" && r.TransactionType != "Receipt" {
		return Invalid("only Receipt transactions are accepted")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin receipt update: %w", err)
	}
	defer tx.Rollback(ctx)

	var oldDiscount decimal.Decimal
	var storedKey string
	err = tx.QueryRow(ctx,
		`SELECT discount_amt, invoice_number FROM receipts WHERE id = $1 FOR UPDATE`,
		id).Scan(&oldDiscount, &storedKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound("receipt", id)
	}
	if err != nil {
		return fmt.Errorf("load receipt %d: %w", id, err)
	}

	if err := reverseReceiptTx(ctx, tx, keyColumn, storedKey, oldDiscount); err != nil {
		return err
	}
	if err := applyReceiptTx(ctx, tx, keyColumn, storedKey, r.DiscountAmt); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE receipts SET
			date = $1, mode = $2, cheque_number = $3, receipt_no = $4, account_name = $5,
			total_amt = $6, discount_amt = $7, cash_amt = $8, remarks = $9,
			category = $10, mobile = $11
		WHERE id = $12`,
		r.Date, r.Mode, r.ChequeNumber, r.ReceiptNo, r.AccountName,
		r.TotalAmt, r.DiscountAmt, r.CashAmt, r.Remarks,
		r.Category, r.Mobile, id)
	if err != nil {
		return fmt.Errorf("update receipt %d: %w", id, err)
	}

	return tx.Commit(ctx)
}

// Delete reverses the receipt's applied amount and removes the row.
func (s *ReceiptService) Delete(ctx context.Context, id int) error {
	return s.delete(ctx, id, "invoice_number")
}

func (s *ReceiptService) DeleteForOrder(ctx context.Context, id int) error {
	return s.delete(ctx, id, "order_number")
}

func (s *ReceiptService) delete(ctx context.Context, id int, keyColumn string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin receipt delete: %w", err)
	}
	defer tx.Rollback(ctx)

	var discount decimal.Decimal
	var storedKey string
	err = tx.QueryRow(ctx,
		`SELECT discount_amt, invoice_number FROM receipts WHERE id = $1 FOR UPDATE`,
		id).Scan(&discount, &storedKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound("receipt", id)
	}
	if err != nil {
		return fmt.Errorf("load receipt %d: %w", id, err)
	}

	if err := reverseReceiptTx(ctx, tx, keyColumn, storedKey, discount); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM receipts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete receipt %d: %w", id, err)
	}

	return tx.Commit(ctx)
}

func (s *ReceiptService) Get(ctx context.Context, id int) (*Receipt, error) {
	r, err := scanReceipt(s.db.QueryRow(ctx,
		`SELECT `+receiptColumns+` FROM receipts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFound("receipt", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load receipt %d: %w", id, err)
	}
	return r, nil
}

// List returns receipts matching the optional date, mode and account-name
// filters.
func (s *ReceiptService) List(ctx context.Context, f ReceiptFilter) ([]Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE 1=1`
	var args []any
	if f.Date != "" {
		args = append(args, f.Date)
		query += fmt.Sprintf(" AND date = $%d", len(args))
	}
	if f.Mode != "" {
		args = append(args, f.Mode)
		query += fmt.Sprintf(" AND mode = $%d", len(args))
	}
	if f.AccountName != "" {
		args = append(args, "%"+f.AccountName+"%")
		query += fmt.Sprintf(" AND account_name ILIKE $%d", len(args))
	}
	query += " ORDER BY id"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, *r)
	}
	return receipts, rows.Err()
}
