package core_test

import (
	"context"
	"errors"
	"testing"

	"jewellery-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

func TestURDService_SaveMintsNumberAndRoundTrips(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewURDService(pool, core.NewDocNumService(pool))
	ctx := context.Background()

	req := core.URDSaveRequest{
		AccountName: "Asha",
		Mobile:      "9876500001",
		Date:        "2025-01-10",
		Items: []core.URDPurchase{
			{
				ProductName:  "Old Chain",
				Metal:        "Gold",
				Purity:       "22K",
				Gross:        decimal.NewFromInt(12),
				TouchPercent: decimal.NewFromInt(91),
				EqtWt:        decimal.NewFromFloat(10.92),
				Rate:         decimal.NewFromInt(6800),
				TotalAmount:  decimal.NewFromInt(74256),
			},
			{
				ProductName: "Old Ring",
				Metal:       "Gold",
				Purity:      "22K",
				Gross:       decimal.NewFromInt(5),
				EqtWt:       decimal.NewFromFloat(4.55),
				Rate:        decimal.NewFromInt(6800),
				TotalAmount: decimal.NewFromInt(30940),
			},
		},
	}

	urdNumber, err := svc.Save(ctx, req)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if urdNumber != "URD001" {
		t.Errorf("expected first minted number URD001, got %s", urdNumber)
	}

	items, err := svc.GetByNumber(ctx, urdNumber)
	if err != nil {
		t.Fatalf("GetByNumber failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected two item rows, got %d", len(items))
	}
	for _, item := range items {
		if item.AccountName != "Asha" || item.Mobile != "9876500001" {
			t.Errorf("expected customer header on every row, got %s/%s",
				item.AccountName, item.Mobile)
		}
		if item.URDNumber != urdNumber {
			t.Errorf("expected urd number %s on every row, got %s", urdNumber, item.URDNumber)
		}
	}

	// A second save continues the series.
	second, err := svc.Save(ctx, core.URDSaveRequest{
		AccountName: "Ravi",
		Date:        "2025-01-11",
		Items:       req.Items[:1],
	})
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	if second != "URD002" {
		t.Errorf("expected URD002, got %s", second)
	}
}

func TestURDService_UpdateAndDeleteByNumber(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewURDService(pool, core.NewDocNumService(pool))
	ctx := context.Background()

	req := core.URDSaveRequest{
		AccountName: "Asha",
		Date:        "2025-01-10",
		Items: []core.URDPurchase{{
			ProductName: "Old Chain",
			Metal:       "Gold",
			Gross:       decimal.NewFromInt(12),
			TotalAmount: decimal.NewFromInt(74256),
		}},
	}
	urdNumber, err := svc.Save(ctx, req)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Update replaces the lines wholesale.
	req.Items = append(req.Items, core.URDPurchase{
		ProductName: "Old Bangle",
		Metal:       "Gold",
		Gross:       decimal.NewFromInt(8),
		TotalAmount: decimal.NewFromInt(49504),
	})
	if err := svc.UpdateByNumber(ctx, urdNumber, req); err != nil {
		t.Fatalf("UpdateByNumber failed: %v", err)
	}
	items, err := svc.GetByNumber(ctx, urdNumber)
	if err != nil {
		t.Fatalf("GetByNumber failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected two rows after update, got %d", len(items))
	}

	if err := svc.DeleteByNumber(ctx, urdNumber); err != nil {
		t.Fatalf("DeleteByNumber failed: %v", err)
	}
	var notFound *core.NotFoundError
	if _, err := svc.GetByNumber(ctx, urdNumber); !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError for deleted purchase, got %v", err)
	}
	if err := svc.UpdateByNumber(ctx, urdNumber, req); !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError updating deleted purchase, got %v", err)
	}
}
