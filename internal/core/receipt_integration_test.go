package core_test

import (
	"context"
	"errors"
	"testing"

	"jewellery-backoffice/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func seedInvoiceLine(t *testing.T, pool *pgxpool.Pool, invoiceNumber string, balAmt int64) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO sale_details (invoice_number, account_name, bal_amt, bal_after_receipts)
		VALUES ($1, 'Asha', $2, $2)`, invoiceNumber, balAmt)
	if err != nil {
		t.Fatalf("seed sale line: %v", err)
	}
}

func invoiceReceiptTotals(t *testing.T, pool *pgxpool.Pool, invoiceNumber string) (receiptsAmt, balAfter decimal.Decimal) {
	t.Helper()
	err := pool.QueryRow(context.Background(), `
		SELECT receipts_amt, bal_after_receipts FROM sale_details
		WHERE invoice_number = $1`, invoiceNumber).Scan(&receiptsAmt, &balAfter)
	if err != nil {
		t.Fatalf("load invoice totals: %v", err)
	}
	return receiptsAmt, balAfter
}

func TestReceiptService_RecordUpdateDelete(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewReceiptService(pool)
	ctx := context.Background()
	seedInvoiceLine(t, pool, "INV001", 1000)

	mode := "Cash"
	receipt := core.Receipt{
		TransactionType: "Receipt",
		Date:            "2025-01-10",
		Mode:            &mode,
		ReceiptNo:       "RCP001",
		AccountName:     "Asha",
		InvoiceNumber:   "INV001",
		TotalAmt:        decimal.NewFromInt(1000),
		DiscountAmt:     decimal.NewFromInt(400),
		CashAmt:         decimal.NewFromInt(400),
	}

	id, err := svc.Record(ctx, receipt)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	receiptsAmt, balAfter := invoiceReceiptTotals(t, pool, "INV001")
	if !receiptsAmt.Equal(decimal.NewFromInt(400)) || !balAfter.Equal(decimal.NewFromInt(600)) {
		t.Errorf("after record: expected 400/600, got %s/%s", receiptsAmt, balAfter)
	}

	// Update reverses the stored amount before applying the new one.
	receipt.DiscountAmt = decimal.NewFromInt(250)
	receipt.CashAmt = decimal.NewFromInt(250)
	if err := svc.Update(ctx, id, receipt); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	receiptsAmt, balAfter = invoiceReceiptTotals(t, pool, "INV001")
	if !receiptsAmt.Equal(decimal.NewFromInt(250)) || !balAfter.Equal(decimal.NewFromInt(750)) {
		t.Errorf("after update: expected 250/750, got %s/%s", receiptsAmt, balAfter)
	}

	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	receiptsAmt, balAfter = invoiceReceiptTotals(t, pool, "INV001")
	if !receiptsAmt.IsZero() || !balAfter.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("after delete: expected 0/1000, got %s/%s", receiptsAmt, balAfter)
	}

	var notFound *core.NotFoundError
	if _, err := svc.Get(ctx, id); !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError for deleted receipt, got %v", err)
	}
}

func TestReceiptService_RecordRejectsNonReceipt(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewReceiptService(pool)
	_, err := svc.Record(context.Background(), core.Receipt{
		TransactionType: "Payment",
		Date:            "2025-01-10",
		ReceiptNo:       "RCP001",
		AccountName:     "Asha",
		InvoiceNumber:   "INV001",
	})
	var invalid *core.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
