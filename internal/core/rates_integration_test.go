package core_test

import (
	"context"
	"errors"
	"testing"

	"jewellery-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

func boardRates(date, time string, base int64) core.MetalRates {
	return core.MetalRates{
		RateDate:   date,
		RateTime:   time,
		Rate16Crt:  decimal.NewFromInt(base),
		Rate18Crt:  decimal.NewFromInt(base + 500),
		Rate22Crt:  decimal.NewFromInt(base + 1200),
		Rate24Crt:  decimal.NewFromInt(base + 1500),
		SilverRate: decimal.NewFromInt(90),
	}
}

func TestRatesService_PostUpdatesCurrent(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewRatesService(pool)
	ctx := context.Background()

	if _, err := svc.Post(ctx, boardRates("2025-01-10", "09:30", 5500)); err != nil {
		t.Fatalf("first Post failed: %v", err)
	}
	if _, err := svc.Post(ctx, boardRates("2025-01-10", "14:00", 5600)); err != nil {
		t.Fatalf("second Post failed: %v", err)
	}

	// The current snapshot mirrors the latest post.
	current, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if current.RateTime != "14:00" {
		t.Errorf("expected current snapshot from 14:00, got %s", current.RateTime)
	}
	if !current.Rate22Crt.Equal(decimal.NewFromInt(6800)) {
		t.Errorf("expected 22crt rate 6800, got %s", current.Rate22Crt)
	}

	history, err := svc.History(ctx)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected two history rows, got %d", len(history))
	}
	if history[0].RateTime != "14:00" {
		t.Errorf("expected newest-first history, got %s first", history[0].RateTime)
	}
}

func TestRatesService_PostRejectsZeroRate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewRatesService(pool)

	rates := boardRates("2025-01-10", "09:30", 5500)
	rates.SilverRate = decimal.Zero
	_, err := svc.Post(context.Background(), rates)
	var invalid *core.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError for zero rate, got %v", err)
	}

	var notFound *core.NotFoundError
	if _, err := svc.Current(context.Background()); !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError with no rates posted, got %v", err)
	}
}
