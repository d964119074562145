package core_test

import (
	"context"
	"errors"
	"testing"

	"jewellery-backoffice/internal/core"
)

func TestProductService_CatalogAndBarcode(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewProductService(pool)
	ctx := context.Background()

	// The seeded product holds RB001.
	code, err := svc.NextRbarcode(ctx)
	if err != nil {
		t.Fatalf("NextRbarcode failed: %v", err)
	}
	if code != "RB002" {
		t.Fatalf("expected next rbarcode RB002, got %s", code)
	}

	id, err := svc.Create(ctx, core.Product{
		ProductName: "Gold Chain",
		Rbarcode:    "RB002",
		Category:    "Gold",
		Purity:      "22K",
		HSNCode:     "7113",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	p, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p.ProductName != "Gold Chain" || p.Purity != "22K" {
		t.Errorf("unexpected product: %+v", p)
	}

	var invalid *core.ValidationError
	if _, err := svc.Create(ctx, core.Product{Category: "Gold"}); !errors.As(err, &invalid) {
		t.Errorf("expected ValidationError for missing name, got %v", err)
	}

	p.ProductName = "Gold Rope Chain"
	if err := svc.Update(ctx, id, *p); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	p, err = svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after update failed: %v", err)
	}
	if p.ProductName != "Gold Rope Chain" {
		t.Errorf("expected renamed product, got %q", p.ProductName)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected seeded product plus one, got %d", len(list))
	}
}

func TestProductService_CheckAndInsert(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewProductService(pool)
	ctx := context.Background()

	var invalid *core.ValidationError
	_, _, err := svc.CheckAndInsert(ctx, core.Product{ProductName: "Gold Chain", Category: "Gold"})
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError for missing purity, got %v", err)
	}

	id, exists, err := svc.CheckAndInsert(ctx, core.Product{
		ProductName: "Silver Anklet",
		Rbarcode:    "RB002",
		Category:    "Silver",
		Purity:      "925",
	})
	if err != nil {
		t.Fatalf("CheckAndInsert failed: %v", err)
	}
	if exists {
		t.Fatalf("expected a fresh product, got exists for id %d", id)
	}

	again, exists, err := svc.CheckAndInsert(ctx, core.Product{
		ProductName: "Silver Anklet",
		Category:    "Silver",
		Purity:      "925",
	})
	if err != nil {
		t.Fatalf("second CheckAndInsert failed: %v", err)
	}
	if !exists || again != id {
		t.Errorf("expected match on existing product %d, got %d exists=%v", id, again, exists)
	}

	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	var notFound *core.NotFoundError
	if err := svc.Delete(ctx, id); !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError on second delete, got %v", err)
	}
}
