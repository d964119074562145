package core_test

import (
	"context"
	"errors"
	"testing"

	"jewellery-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

func TestSaleService_SaveMarksTagSoldAndCreatesCustomer(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	tags := core.NewTagService(pool)
	sales := core.NewSaleService(pool)

	created, err := tags.CreateBatch(ctx, core.OpeningTag{
		TagID: "GR1", ProductID: 1, Prefix: "GR", Pcs: 1,
		GrossWeight: decimal.NewFromInt(25),
	})
	if err != nil {
		t.Fatalf("CreateBatch failed: %v", err)
	}
	opentagID := created[0].OpentagID

	invoice, err := sales.Save(ctx, core.SaleSaveRequest{
		Lines: []core.SaleLine{{
			InvoiceNo:     "INV001",
			Date:          "2025-01-10",
			Mobile:        "9876500001",
			AccountName:   "Asha",
			ProductID:     1,
			OpentagID:     &opentagID,
			Pricing:       "By Weight",
			Qty:           decimal.NewFromInt(1),
			GrossWeight:   decimal.NewFromInt(25),
			RateAmt:       decimal.NewFromInt(150000),
			MakingCharges: decimal.NewFromInt(5000),
			TaxAmt:        decimal.NewFromInt(4650),
			CashAmount:    decimal.NewFromInt(50000),
		}},
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if invoice != "INV001" {
		t.Errorf("expected submitted invoice number kept, got %s", invoice)
	}

	lines, err := sales.GetByInvoice(ctx, "INV001")
	if err != nil {
		t.Fatalf("GetByInvoice failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	l := lines[0]
	if l.TransactionStatus != core.StatusSales {
		t.Errorf("expected transaction status Sales, got %s", l.TransactionStatus)
	}
	// 150000 rate + 5000 making, taxed 4650, 50000 tendered.
	if !l.NetBillAmount.Equal(decimal.NewFromInt(159650)) {
		t.Errorf("expected net bill 159650, got %s", l.NetBillAmount)
	}
	if !l.BalAmt.Equal(decimal.NewFromInt(109650)) {
		t.Errorf("expected balance 109650, got %s", l.BalAmt)
	}
	if l.CustomerID == nil {
		t.Error("expected a customer account to be resolved")
	} else {
		var group string
		err := pool.QueryRow(ctx,
			`SELECT account_group FROM account_details WHERE account_id = $1`,
			*l.CustomerID).Scan(&group)
		if err != nil {
			t.Fatalf("load created customer: %v", err)
		}
		if group != "CUSTOMERS" {
			t.Errorf("expected CUSTOMERS account group, got %s", group)
		}
	}

	tag, err := tags.Get(ctx, opentagID)
	if err != nil {
		t.Fatalf("Get tag failed: %v", err)
	}
	if tag.Status != core.TagSold {
		t.Errorf("expected tag Sold after sale, got %s", tag.Status)
	}

	var saleQty, saleWeight decimal.Decimal
	err = pool.QueryRow(ctx,
		`SELECT sale_qty, sale_weight FROM product WHERE product_id = 1`).
		Scan(&saleQty, &saleWeight)
	if err != nil {
		t.Fatalf("load product counters: %v", err)
	}
	if !saleQty.Equal(decimal.NewFromInt(1)) || !saleWeight.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected sold counters 1/25, got %s/%s", saleQty, saleWeight)
	}
}

func TestSaleService_DeleteByInvoiceReversesSale(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	tags := core.NewTagService(pool)
	sales := core.NewSaleService(pool)

	created, err := tags.CreateBatch(ctx, core.OpeningTag{
		TagID: "GR1", ProductID: 1, Prefix: "GR", Pcs: 1,
		GrossWeight: decimal.NewFromInt(25),
	})
	if err != nil {
		t.Fatalf("CreateBatch failed: %v", err)
	}
	opentagID := created[0].OpentagID

	if _, err := sales.Save(ctx, core.SaleSaveRequest{
		Lines: []core.SaleLine{{
			InvoiceNo:   "INV001",
			Date:        "2025-01-10",
			ProductID:   1,
			OpentagID:   &opentagID,
			Pricing:     "By Weight",
			Qty:         decimal.NewFromInt(1),
			GrossWeight: decimal.NewFromInt(25),
			RateAmt:     decimal.NewFromInt(150000),
		}},
	}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	deleted, err := sales.DeleteByInvoice(ctx, "INV001")
	if err != nil {
		t.Fatalf("DeleteByInvoice failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted line, got %d", deleted)
	}

	var notFound *core.NotFoundError
	if _, err := sales.GetByInvoice(ctx, "INV001"); !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError for deleted invoice, got %v", err)
	}

	tag, err := tags.Get(ctx, opentagID)
	if err != nil {
		t.Fatalf("Get tag failed: %v", err)
	}
	if tag.Status != core.TagAvailable {
		t.Errorf("expected tag restored to Available, got %s", tag.Status)
	}

	var saleQty, saleWeight decimal.Decimal
	err = pool.QueryRow(ctx,
		`SELECT sale_qty, sale_weight FROM product WHERE product_id = 1`).
		Scan(&saleQty, &saleWeight)
	if err != nil {
		t.Fatalf("load product counters: %v", err)
	}
	if !saleQty.IsZero() || !saleWeight.IsZero() {
		t.Errorf("expected sold counters reversed to zero, got %s/%s", saleQty, saleWeight)
	}
}

func TestSaleService_DeleteByInvoiceBlockedByOrderLine(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	sales := core.NewSaleService(pool)

	_, err := pool.Exec(ctx, `
		INSERT INTO sale_details (invoice_number, order_number, account_name, transaction_status)
		VALUES ('INV002', 'ORD001', 'Asha', 'Orders')`)
	if err != nil {
		t.Fatalf("seed order line: %v", err)
	}

	var conflict *core.ConflictError
	if _, err := sales.DeleteByInvoice(ctx, "INV002"); !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError for order line, got %v", err)
	}

	// The blocked delete must leave the rows untouched.
	var count int
	if err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sale_details WHERE invoice_number = 'INV002'`).Scan(&count); err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if count != 1 {
		t.Errorf("expected line preserved after blocked delete, got %d rows", count)
	}
}

func TestSaleService_ConvertOrderClonesLines(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	sales := core.NewSaleService(pool)

	_, err := pool.Exec(ctx, `
		INSERT INTO sale_details (invoice_number, order_number, account_name, transaction_status, bal_amt)
		VALUES ('ORD001', 'ORD001', 'Asha', 'Orders', 5000)`)
	if err != nil {
		t.Fatalf("seed order line: %v", err)
	}

	invoice, err := sales.ConvertOrder(ctx, "ORD001")
	if err != nil {
		t.Fatalf("ConvertOrder failed: %v", err)
	}
	if invoice != "INV001" {
		t.Errorf("expected first minted invoice INV001, got %s", invoice)
	}

	lines, err := sales.GetByInvoice(ctx, invoice)
	if err != nil {
		t.Fatalf("GetByInvoice failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected renumbered original plus clone, got %d lines", len(lines))
	}
	statuses := map[core.TransactionStatus]int{}
	for _, l := range lines {
		statuses[l.TransactionStatus]++
		if l.Invoice != "Converted" {
			t.Errorf("expected invoice flag Converted, got %q", l.Invoice)
		}
	}
	if statuses[core.StatusOrders] != 1 || statuses[core.StatusConvertedInvoice] != 1 {
		t.Errorf("unexpected status split: %v", statuses)
	}
}
