package core_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Clean and seed test DB. One product with empty counters plus its
	// (product_id, tag_id) balance row, the starting state for tag entry.
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE product, account_details, opening_tags_entry, updated_values_table,
			purchases, stone_details, ratecuts, purchase_payments, urd_purchase_details,
			sale_details, old_items, member_schemes, receipts, repairs,
			assigned_repairdetails, rates, current_rates, users, usertype,
			userrolepermissions RESTART IDENTITY CASCADE;

		INSERT INTO product (product_id, product_name, rbarcode, category, hsn_code)
		VALUES (1, 'Gold Ring', 'RB001', 'Gold', '7113');

		INSERT INTO updated_values_table (product_id, tag_id, pcs, gross_weight, bal_pcs, bal_gross_weight)
		VALUES (1, 'GR1', 10, 100, 10, 100);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}
