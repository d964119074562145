package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RatesBoard publishes daily metal rates: every post appends to the rates
// history and rewrites the current_rates singleton.
type RatesBoard interface {
	Post(ctx context.Context, r MetalRates) (int, error)
	Current(ctx context.Context) (*MetalRates, error)
	History(ctx context.Context) ([]MetalRates, error)
}

type RatesService struct {
	db *pgxpool.Pool
}

func NewRatesService(db *pgxpool.Pool) *RatesService {
	return &RatesService{db: db}
}

// Post appends a rate snapshot and upserts the single current_rates row,
// both in one transaction.
func (s *RatesService) Post(ctx context.Context, r MetalRates) (int, error) {
	if r.RateDate == "" || r.RateTime == "" {
		return 0, Invalid("rate_date and rate_time are required")
	}
	if r.Rate16Crt.IsZero() || r.Rate18Crt.IsZero() || r.Rate22Crt.IsZero() ||
		r.Rate24Crt.IsZero() || r.SilverRate.IsZero() {
		return 0, Invalid("all carat and silver rates are required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin rates post: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int
	err = tx.QueryRow(ctx, `
		INSERT INTO rates (rate_date, rate_time, rate_16crt, rate_18crt, rate_22crt,
			rate_24crt, silver_rate)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id`,
		r.RateDate, r.RateTime, r.Rate16Crt, r.Rate18Crt, r.Rate22Crt,
		r.Rate24Crt, r.SilverRate).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert rates: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO current_rates (current_rates_id, rate_date, rate_time, rate_16crt,
			rate_18crt, rate_22crt, rate_24crt, silver_rate)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (current_rates_id) DO UPDATE SET
			rate_date = EXCLUDED.rate_date, rate_time = EXCLUDED.rate_time,
			rate_16crt = EXCLUDED.rate_16crt, rate_18crt = EXCLUDED.rate_18crt,
			rate_22crt = EXCLUDED.rate_22crt, rate_24crt = EXCLUDED.rate_24crt,
			silver_rate = EXCLUDED.silver_rate`,
		r.RateDate, r.RateTime, r.Rate16Crt, r.Rate18Crt, r.Rate22Crt,
		r.Rate24Crt, r.SilverRate)
	if err != nil {
		return 0, fmt.Errorf("upsert current rates: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit rates post: %w", err)
	}
	return id, nil
}

func (s *RatesService) Current(ctx context.Context) (*MetalRates, error) {
	var r MetalRates
	err := s.db.QueryRow(ctx, `
		SELECT current_rates_id, rate_date, rate_time, rate_16crt, rate_18crt, rate_22crt,
			rate_24crt, silver_rate
		FROM current_rates WHERE current_rates_id = 1`).Scan(
		&r.ID, &r.RateDate, &r.RateTime, &r.Rate16Crt, &r.Rate18Crt, &r.Rate22Crt,
		&r.Rate24Crt, &r.SilverRate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFound("current rates", 1)
	}
	if err != nil {
		return nil, fmt.Errorf("load current rates: %w", err)
	}
	return &r, nil
}

func (s *RatesService) History(ctx context.Context) ([]MetalRates, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, rate_date, rate_time, rate_16crt, rate_18crt, rate_22crt, rate_24crt,
			silver_rate
		FROM rates ORDER BY rate_date DESC, rate_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	defer rows.Close()

	var history []MetalRates
	for rows.Next() {
		var r MetalRates
		if err := rows.Scan(&r.ID, &r.RateDate, &r.RateTime, &r.Rate16Crt, &r.Rate18Crt,
			&r.Rate22Crt, &r.Rate24Crt, &r.SilverRate); err != nil {
			return nil, err
		}
		history = append(history, r)
	}
	return history, rows.Err()
}
