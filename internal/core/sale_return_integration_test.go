package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"jewellery-backoffice/internal/core"
)

func TestSaleReturnService_ReturnFlow(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	tags := core.NewTagService(pool)
	returns := core.NewSaleReturnService(pool)
	ctx := context.Background()

	created, err := tags.CreateBatch(ctx, core.OpeningTag{
		TagID:       "GR1",
		ProductID:   1,
		Prefix:      "GR",
		Pcs:         1,
		GrossWeight: decimal.NewFromInt(25),
		ProductName: "Gold Ring",
		Category:    "Gold",
	})
	if err != nil {
		t.Fatalf("CreateBatch failed: %v", err)
	}
	if len(created) != 1 || created[0].PCodeBarCode != "GR001" {
		t.Fatalf("unexpected created tags: %+v", created)
	}

	seedInvoiceLine(t, pool, "INV001", 1000)
	var lineID int
	err = pool.QueryRow(ctx,
		`SELECT id FROM sale_details WHERE invoice_number = 'INV001'`).Scan(&lineID)
	if err != nil {
		t.Fatalf("load seeded line: %v", err)
	}

	err = returns.UpdateLineStatuses(ctx, []core.SaleLineStatusUpdate{
		{ID: lineID, Status: "Returned"},
	})
	if err != nil {
		t.Fatalf("UpdateLineStatuses failed: %v", err)
	}
	var saleStatus string
	err = pool.QueryRow(ctx,
		`SELECT sale_status FROM sale_details WHERE id = $1`, lineID).Scan(&saleStatus)
	if err != nil {
		t.Fatalf("load sale status: %v", err)
	}
	if saleStatus != "Returned" {
		t.Errorf("expected sale_status Returned, got %q", saleStatus)
	}

	var notFound *core.NotFoundError
	err = returns.UpdateLineStatuses(ctx, []core.SaleLineStatusUpdate{
		{ID: 99999, Status: "Returned"},
	})
	if !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError for unknown line, got %v", err)
	}

	err = returns.UpdateTagStatuses(ctx, []core.TagStatusUpdate{
		{Barcode: "GR001", Status: core.TagSold},
	})
	if err != nil {
		t.Fatalf("UpdateTagStatuses failed: %v", err)
	}

	// The returned piece comes back under a fresh barcode; unknown codes are
	// skipped without failing the batch.
	issued, err := returns.ReissueTags(ctx, []string{"GR001", "ZZ999"})
	if err != nil {
		t.Fatalf("ReissueTags failed: %v", err)
	}
	if len(issued) != 1 || issued[0] != "GR002" {
		t.Fatalf("expected reissued barcode GR002, got %v", issued)
	}

	var status string
	var productID int
	err = pool.QueryRow(ctx, `
		SELECT "Status", product_id FROM opening_tags_entry
		WHERE "PCode_BarCode" = 'GR002'`).Scan(&status, &productID)
	if err != nil {
		t.Fatalf("load reissued tag: %v", err)
	}
	if status != string(core.TagAvailable) || productID != 1 {
		t.Errorf("unexpected reissued tag: status %q product %d", status, productID)
	}
	err = pool.QueryRow(ctx, `
		SELECT "Status" FROM opening_tags_entry
		WHERE "PCode_BarCode" = 'GR001'`).Scan(&status)
	if err != nil {
		t.Fatalf("load original tag: %v", err)
	}
	if status != string(core.TagSold) {
		t.Errorf("original tag must stay Sold, got %q", status)
	}

	err = returns.RecordProductReturns(ctx, []core.ProductReturn{
		{ProductID: 1, Qty: decimal.NewFromInt(1), GrossWeight: decimal.NewFromInt(25)},
	})
	if err != nil {
		t.Fatalf("RecordProductReturns failed: %v", err)
	}

	var retQty, retWeight, saleQty decimal.Decimal
	err = pool.QueryRow(ctx, `
		SELECT sale_ret_qty, sale_ret_weight, sale_qty
		FROM product WHERE product_id = 1`).Scan(&retQty, &retWeight, &saleQty)
	if err != nil {
		t.Fatalf("load return counters: %v", err)
	}
	if !retQty.Equal(decimal.NewFromInt(1)) || !retWeight.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected return counters 1/25, got %s/%s", retQty, retWeight)
	}
	if !saleQty.IsZero() {
		t.Errorf("sold counters must not move on a return, got sale_qty %s", saleQty)
	}

	err = returns.RecordProductReturns(ctx, []core.ProductReturn{
		{ProductID: 404, Qty: decimal.NewFromInt(1)},
	})
	if !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError for unknown product, got %v", err)
	}
}
