package core_test

import (
	"context"
	"testing"

	"jewellery-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

func TestRateCutService_ApplyPaymentAccumulates(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	purchases := core.NewPurchaseService(pool)
	rateCuts := core.NewRateCutService(pool, core.NewDocNumService(pool))

	if _, err := purchases.Save(ctx, []core.Purchase{goldBarPurchase()}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	cuts, err := rateCuts.List(ctx)
	if err != nil {
		t.Fatalf("List rate cuts failed: %v", err)
	}
	if len(cuts) != 1 {
		t.Fatalf("expected one rate cut, got %d", len(cuts))
	}
	rateCutID := cuts[0].RateCutID

	payment := core.PurchasePayment{
		Date:        "2025-01-10",
		Mode:        "Cash",
		AccountName: "Bullion House",
		Invoice:     "PINV001",
		Category:    "Gold",
		RateCut:     decimal.NewFromInt(7000),
		TotalWt:     decimal.NewFromInt(20),
		PaidWt:      decimal.NewFromInt(5),
		TotalAmt:    decimal.NewFromInt(140000),
		PaidAmt:     decimal.NewFromInt(35000),
		RateCutID:   rateCutID,
	}

	// Two payments: cumulative columns accumulate, balances rederive each
	// time from the freshly written cumulative value.
	if _, err := rateCuts.ApplyPayment(ctx, payment); err != nil {
		t.Fatalf("first ApplyPayment failed: %v", err)
	}
	if _, err := rateCuts.ApplyPayment(ctx, payment); err != nil {
		t.Fatalf("second ApplyPayment failed: %v", err)
	}

	rc, err := rateCuts.Get(ctx, rateCutID)
	if err != nil {
		t.Fatalf("Get rate cut failed: %v", err)
	}
	if !rc.PaidWt.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected paid_wt 10, got %s", rc.PaidWt)
	}
	if !rc.BalWt.Equal(rc.RateCutWt.Sub(rc.PaidWt)) {
		t.Errorf("bal_wt %s does not equal rate_cut_wt - paid_wt (%s - %s)",
			rc.BalWt, rc.RateCutWt, rc.PaidWt)
	}
	if !rc.PaidAmount.Equal(decimal.NewFromInt(70000)) {
		t.Errorf("expected paid_amount 70000, got %s", rc.PaidAmount)
	}
	if !rc.BalanceAmount.Equal(rc.RateCutAmt.Sub(rc.PaidAmount)) {
		t.Errorf("balance_amount %s does not equal rate_cut_amt - paid_amount (%s - %s)",
			rc.BalanceAmount, rc.RateCutAmt, rc.PaidAmount)
	}

	// Blank payment numbers are minted from the PAY series.
	payments, err := rateCuts.ListPayments(ctx)
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("expected two payments, got %d", len(payments))
	}
	seen := map[string]bool{}
	for _, p := range payments {
		seen[p.PaymentNo] = true
	}
	if !seen["PAY001"] || !seen["PAY002"] {
		t.Errorf("expected minted payment numbers PAY001 and PAY002, got %v", seen)
	}
}

func TestRateCutService_ApplyPaymentValidation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	rateCuts := core.NewRateCutService(pool, core.NewDocNumService(pool))
	_, err := rateCuts.ApplyPayment(context.Background(), core.PurchasePayment{Date: "2025-01-10"})
	if err == nil {
		t.Fatal("expected validation error for incomplete payment")
	}
}
