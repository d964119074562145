package core_test

import (
	"context"
	"errors"
	"testing"

	"jewellery-backoffice/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func goldBarPurchase() core.Purchase {
	return core.Purchase{
		Invoice:     "PINV001",
		AccountName: "Bullion House",
		Mobile:      "9876500100",
		ProductID:   1,
		TagID:       "GR1",
		Category:    "Gold",
		MetalType:   "Gold",
		Purity:      "22K",
		Pricing:     "By Weight",
		Pcs:         decimal.NewFromInt(3),
		GrossWeight: decimal.NewFromInt(30),
		NetWeight:   decimal.NewFromInt(30),
		TotalPureWt: decimal.NewFromInt(28),
		RateCut:     decimal.NewFromInt(7000),
		RateCutWt:   decimal.NewFromInt(20),
		RateCutAmt:  decimal.NewFromInt(140000),
	}
}

func productCounters(t *testing.T, pool *pgxpool.Pool, productID int) (purQty, purWeight, balQty, balWeight decimal.Decimal) {
	t.Helper()
	err := pool.QueryRow(context.Background(), `
		SELECT pur_qty, pur_weight, bal_qty, bal_weight
		FROM product WHERE product_id = $1`, productID).
		Scan(&purQty, &purWeight, &balQty, &balWeight)
	if err != nil {
		t.Fatalf("load product counters: %v", err)
	}
	return purQty, purWeight, balQty, balWeight
}

func TestPurchaseService_SaveBumpsCountersAndOpensRateCut(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewPurchaseService(pool)
	ctx := context.Background()

	agg, err := svc.Save(ctx, []core.Purchase{goldBarPurchase()})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if agg == nil {
		t.Fatal("expected aggregates from Save")
	}

	purQty, purWeight, balQty, balWeight := productCounters(t, pool, 1)
	if !purQty.Equal(decimal.NewFromInt(3)) || !purWeight.Equal(decimal.NewFromInt(30)) {
		t.Errorf("expected purchased counters 3/30, got %s/%s", purQty, purWeight)
	}
	if !balQty.Equal(decimal.NewFromInt(3)) || !balWeight.Equal(decimal.NewFromInt(30)) {
		t.Errorf("expected balances 3/30, got %s/%s", balQty, balWeight)
	}

	// The weight-settled line opens a rate-cut carrying the full obligation.
	rateCuts := core.NewRateCutService(pool, core.NewDocNumService(pool))
	cuts, err := rateCuts.List(ctx)
	if err != nil {
		t.Fatalf("List rate cuts failed: %v", err)
	}
	if len(cuts) != 1 {
		t.Fatalf("expected one rate cut, got %d", len(cuts))
	}
	rc := cuts[0]
	if rc.Invoice != "PINV001" {
		t.Errorf("expected rate cut on invoice PINV001, got %s", rc.Invoice)
	}
	if !rc.PaidWt.IsZero() || !rc.BalWt.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected unsettled rate cut 0/20, got %s/%s", rc.PaidWt, rc.BalWt)
	}
}

func TestPurchaseService_DeleteByInvoiceReversesCounters(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewPurchaseService(pool)
	ctx := context.Background()

	if _, err := svc.Save(ctx, []core.Purchase{goldBarPurchase()}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := svc.DeleteByInvoice(ctx, "PINV001"); err != nil {
		t.Fatalf("DeleteByInvoice failed: %v", err)
	}

	purQty, purWeight, balQty, balWeight := productCounters(t, pool, 1)
	if !purQty.IsZero() || !purWeight.IsZero() || !balQty.IsZero() || !balWeight.IsZero() {
		t.Errorf("expected counters back to zero, got %s/%s bal %s/%s",
			purQty, purWeight, balQty, balWeight)
	}

	var notFound *core.NotFoundError
	if _, err := svc.GetByInvoice(ctx, "PINV001"); !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError for deleted invoice, got %v", err)
	}
	if err := svc.DeleteByInvoice(ctx, "PINV001"); !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError on repeat delete, got %v", err)
	}
}
