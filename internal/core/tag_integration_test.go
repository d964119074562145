package core_test

import (
	"context"
	"errors"
	"testing"

	"jewellery-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

func TestTagService_CreateBatchConsumesBalance(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewTagService(pool)
	ctx := context.Background()

	created, err := svc.CreateBatch(ctx, core.OpeningTag{
		TagID:       "GR1",
		ProductID:   1,
		Prefix:      "GR",
		Pcs:         2,
		GrossWeight: decimal.NewFromInt(25),
		Category:    "Gold",
		Purity:      "22K",
		MetalType:   "Gold",
		ProductName: "Gold Ring",
	})
	if err != nil {
		t.Fatalf("CreateBatch failed: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 tag rows, got %d", len(created))
	}
	if created[0].PCodeBarCode != "GR001" || created[1].PCodeBarCode != "GR002" {
		t.Errorf("expected consecutive barcodes GR001/GR002, got %s/%s",
			created[0].PCodeBarCode, created[1].PCodeBarCode)
	}
	for _, tag := range created {
		if tag.Pcs != 1 {
			t.Errorf("tag %s: expected pcs=1 per row, got %d", tag.PCodeBarCode, tag.Pcs)
		}
		if tag.Status != core.TagAvailable {
			t.Errorf("tag %s: expected status Available, got %s", tag.PCodeBarCode, tag.Status)
		}
	}

	// The batch consumes 2 pieces and the submitted weight once.
	bal, err := svc.GetBalance(ctx, 1, "GR1")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !bal.BalPcs.Equal(decimal.NewFromInt(8)) {
		t.Errorf("expected bal_pcs 8, got %s", bal.BalPcs)
	}
	if !bal.BalGrossWeight.Equal(decimal.NewFromInt(75)) {
		t.Errorf("expected bal_gross_weight 75, got %s", bal.BalGrossWeight)
	}
}

func TestTagService_DeleteRestoresBalance(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewTagService(pool)
	ctx := context.Background()

	created, err := svc.CreateBatch(ctx, core.OpeningTag{
		TagID:       "GR1",
		ProductID:   1,
		Prefix:      "GR",
		Pcs:         2,
		GrossWeight: decimal.NewFromInt(25),
	})
	if err != nil {
		t.Fatalf("CreateBatch failed: %v", err)
	}

	deleted, err := svc.Delete(ctx, created[0].OpentagID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted.PCodeBarCode != "GR001" {
		t.Errorf("expected deleted tag GR001, got %s", deleted.PCodeBarCode)
	}

	// One piece and the row's gross weight come back.
	bal, err := svc.GetBalance(ctx, 1, "GR1")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !bal.BalPcs.Equal(decimal.NewFromInt(9)) {
		t.Errorf("expected bal_pcs 9 after delete, got %s", bal.BalPcs)
	}
	if !bal.BalGrossWeight.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected bal_gross_weight 100 after delete, got %s", bal.BalGrossWeight)
	}

	if _, err := svc.Get(ctx, created[0].OpentagID); err == nil {
		t.Error("expected deleted tag lookup to fail")
	}
}

func TestTagService_UpsertBalanceMovesByDiff(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewTagService(pool)
	ctx := context.Background()

	// Fresh row: balances start equal to the contribution.
	out, err := svc.UpsertBalance(ctx, 1, "GR2", decimal.NewFromInt(5), decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("UpsertBalance insert failed: %v", err)
	}
	if !out.BalPcs.Equal(decimal.NewFromInt(5)) || !out.BalGrossWeight.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected fresh balances 5/50, got %s/%s", out.BalPcs, out.BalGrossWeight)
	}

	// Resubmission moves the balances by the difference against the stored
	// contribution, not by the full amount.
	out, err = svc.UpsertBalance(ctx, 1, "GR2", decimal.NewFromInt(8), decimal.NewFromInt(80))
	if err != nil {
		t.Fatalf("UpsertBalance update failed: %v", err)
	}
	if !out.BalPcs.Equal(decimal.NewFromInt(8)) || !out.BalGrossWeight.Equal(decimal.NewFromInt(80)) {
		t.Errorf("expected adjusted balances 8/80, got %s/%s", out.BalPcs, out.BalGrossWeight)
	}

	var notFound *core.NotFoundError
	if _, err := svc.GetBalance(ctx, 1, "NOPE"); !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError for missing balance row, got %v", err)
	}
}
