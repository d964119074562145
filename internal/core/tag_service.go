package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TagLedger is the inventory tag surface: batch tag creation with sequential
// barcodes, tag edits and deletion with balance restoration, and the
// secondary (product_id, tag_id) balance ledger in updated_values_table.
type TagLedger interface {
	CreateBatch(ctx context.Context, tag OpeningTag) ([]OpeningTag, error)
	Update(ctx context.Context, opentagID int, tag OpeningTag) error
	Delete(ctx context.Context, opentagID int) (*OpeningTag, error)
	Get(ctx context.Context, opentagID int) (*OpeningTag, error)
	List(ctx context.Context) ([]OpeningTag, error)
	MaxTagID(ctx context.Context) (string, error)
	UpsertBalance(ctx context.Context, productID int, tagID string, pcs, grossWeight decimal.Decimal) (*TagBalance, error)
	ListBalances(ctx context.Context) ([]TagBalance, error)
	GetBalance(ctx context.Context, productID int, tagID string) (*TagBalance, error)
}

type TagService struct {
	db *pgxpool.Pool
}

func NewTagService(db *pgxpool.Pool) *TagService {
	return &TagService{db: db}
}

const openingTagColumns = `opentag_id, tag_id, product_id, subcategory_id, sub_category, account_name,
	invoice, "Pricing", "Prefix", category, "Purity", metal_type, "PCode_BarCode",
	"Gross_Weight", "Stones_Weight", "Stones_Price", "Wastage_On", "Wastage_Percentage",
	"WastageWeight", "Weight_BW", "Making_Charges_On", "MC_Per_Gram", "Making_Charges",
	"TotalWeight_AW", "Status", "Source", "Stock_Point", pieace_cost, product_Name,
	selling_price, pcs, tax_percent, mrp_price, product_image, added_at`

func scanOpeningTag(row pgx.Row) (*OpeningTag, error) {
	var t OpeningTag
	err := row.Scan(&t.OpentagID, &t.TagID, &t.ProductID, &t.SubcategoryID, &t.SubCategory,
		&t.AccountName, &t.Invoice, &t.Pricing, &t.Prefix, &t.Category, &t.Purity,
		&t.MetalType, &t.PCodeBarCode, &t.GrossWeight, &t.StonesWeight, &t.StonesPrice,
		&t.WastageOn, &t.WastagePct, &t.WastageWeight, &t.WeightBW, &t.MakingOn,
		&t.MCPerGram, &t.MakingCharges, &t.TotalWeightAW, &t.Status, &t.Source,
		&t.StockPoint, &t.PieceCost, &t.ProductName, &t.SellingPrice, &t.Pcs,
		&t.TaxPercent, &t.MRPPrice, &t.ProductImage, &t.AddedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateBatch inserts tag.Pcs rows of one piece each, with consecutive
// barcodes under tag.Prefix, then consumes the batch's pieces and weight from
// the (product_id, tag_id) balance row. The whole batch is one transaction so
// barcode scanning sees codes issued earlier in the same batch.
func (s *TagService) CreateBatch(ctx context.Context, tag OpeningTag) ([]OpeningTag, error) {
	if tag.Pcs <= 0 {
		return nil, Invalid("pcs must be at least 1")
	}
	if tag.Prefix == "" {
		return nil, Invalid("Prefix is required")
	}
	if tag.Status == "" {
		tag.Status = TagAvailable
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tag batch: %w", err)
	}
	defer tx.Rollback(ctx)

	// The batch consumes the submitted gross weight once, not per piece.
	batchPcs := tag.Pcs
	batchWeight := tag.GrossWeight

	created := make([]OpeningTag, 0, batchPcs)
	for i := 0; i < batchPcs; i++ {
		code, err := nextBarcodeTx(ctx, tx, tag.Prefix)
		if err != nil {
			return nil, err
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO opening_tags_entry (tag_id, product_id, subcategory_id, sub_category, account_name,
				invoice, "Pricing", "Prefix", category, "Purity", metal_type, "PCode_BarCode",
				"Gross_Weight", "Stones_Weight", "Stones_Price", "Wastage_On", "Wastage_Percentage",
				"WastageWeight", "Weight_BW", "Making_Charges_On", "MC_Per_Gram", "Making_Charges",
				"TotalWeight_AW", "Status", "Source", "Stock_Point", pieace_cost, product_Name,
				selling_price, pcs, tax_percent, mrp_price, product_image)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
				$21,$22,$23,$24,$25,$26,$27,$28,$29,1,$30,$31,$32)
			RETURNING `+openingTagColumns,
			tag.TagID, tag.ProductID, tag.SubcategoryID, tag.SubCategory, tag.AccountName,
			tag.Invoice, tag.Pricing, tag.Prefix, tag.Category, tag.Purity, tag.MetalType, code,
			tag.GrossWeight, tag.StonesWeight, tag.StonesPrice, tag.WastageOn, tag.WastagePct,
			tag.WastageWeight, tag.WeightBW, tag.MakingOn, tag.MCPerGram, tag.MakingCharges,
			tag.TotalWeightAW, tag.Status, tag.Source, tag.StockPoint, tag.PieceCost, tag.ProductName,
			tag.SellingPrice, tag.TaxPercent, tag.MRPPrice, tag.ProductImage)
		t, err := scanOpeningTag(row)
		if err != nil {
			return nil, fmt.Errorf("insert tag %s: %w", code, err)
		}
		created = append(created, *t)
	}

	_, err = tx.Exec(ctx, `
		UPDATE updated_values_table
		SET bal_pcs = bal_pcs - $1, bal_gross_weight = bal_gross_weight - $2
		WHERE product_id = $3 AND tag_id = $4`,
		batchPcs, batchWeight, tag.ProductID, tag.TagID)
	if err != nil {
		return nil, fmt.Errorf("consume tag balance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tag batch: %w", err)
	}
	return created, nil
}

// Update rewrites a tag row. The balance ledger gets the old weight back and
// gives up the new one before the row itself changes, all in one transaction.
func (s *TagService) Update(ctx context.Context, opentagID int, tag OpeningTag) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tag update: %w", err)
	}
	defer tx.Rollback(ctx)

	var oldWeight decimal.Decimal
	var productID int
	var tagID string
	err = tx.QueryRow(ctx,
		`SELECT "Gross_Weight", product_id, tag_id FROM opening_tags_entry WHERE opentag_id = $1 FOR UPDATE`,
		opentagID).Scan(&oldWeight, &productID, &tagID)
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound("tag", opentagID)
	}
	if err != nil {
		return fmt.Errorf("load tag %d: %w", opentagID, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE updated_values_table
		SET bal_gross_weight = bal_gross_weight + $1 - $2
		WHERE product_id = $3 AND tag_id = $4`,
		oldWeight, tag.GrossWeight, productID, tagID)
	if err != nil {
		return fmt.Errorf("adjust tag balance: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE opening_tags_entry SET
			sub_category = $1, account_name = $2, invoice = $3, "Pricing" = $4, category = $5,
			"Purity" = $6, metal_type = $7, "Gross_Weight" = $8, "Stones_Weight" = $9,
			"Stones_Price" = $10, "Wastage_On" = $11, "Wastage_Percentage" = $12,
			"WastageWeight" = $13, "Weight_BW" = $14, "Making_Charges_On" = $15,
			"MC_Per_Gram" = $16, "Making_Charges" = $17, "TotalWeight_AW" = $18,
			"Status" = $19, "Stock_Point" = $20, pieace_cost = $21, selling_price = $22,
			tax_percent = $23, mrp_price = $24,
			product_image = COALESCE($25, product_image)
		WHERE opentag_id = $26`,
		tag.SubCategory, tag.AccountName, tag.Invoice, tag.Pricing, tag.Category,
		tag.Purity, tag.MetalType, tag.GrossWeight, tag.StonesWeight,
		tag.StonesPrice, tag.WastageOn, tag.WastagePct,
		tag.WastageWeight, tag.WeightBW, tag.MakingOn,
		tag.MCPerGram, tag.MakingCharges, tag.TotalWeightAW,
		tag.Status, tag.StockPoint, tag.PieceCost, tag.SellingPrice,
		tag.TaxPercent, tag.MRPPrice, tag.ProductImage, opentagID)
	if err != nil {
		return fmt.Errorf("update tag %d: %w", opentagID, err)
	}

	return tx.Commit(ctx)
}

// Delete restores the tag's piece and weight to the balance ledger, then
// removes the row. Returns the deleted tag so the caller can clean up its
// stored image.
func (s *TagService) Delete(ctx context.Context, opentagID int) (*OpeningTag, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tag delete: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := scanOpeningTag(tx.QueryRow(ctx,
		`SELECT `+openingTagColumns+` FROM opening_tags_entry WHERE opentag_id = $1 FOR UPDATE`,
		opentagID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFound("tag", opentagID)
	}
	if err != nil {
		return nil, fmt.Errorf("load tag %d: %w", opentagID, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE updated_values_table
		SET bal_pcs = bal_pcs + 1, bal_gross_weight = bal_gross_weight + $1
		WHERE product_id = $2 AND tag_id = $3`,
		tag.GrossWeight, tag.ProductID, tag.TagID)
	if err != nil {
		return nil, fmt.Errorf("restore tag balance: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM opening_tags_entry WHERE opentag_id = $1`, opentagID); err != nil {
		return nil, fmt.Errorf("delete tag %d: %w", opentagID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tag delete: %w", err)
	}
	return tag, nil
}

func (s *TagService) Get(ctx context.Context, opentagID int) (*OpeningTag, error) {
	tag, err := scanOpeningTag(s.db.QueryRow(ctx,
		`SELECT `+openingTagColumns+` FROM opening_tags_entry WHERE opentag_id = $1`, opentagID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFound("tag", opentagID)
	}
	if err != nil {
		return nil, fmt.Errorf("load tag %d: %w", opentagID, err)
	}
	return tag, nil
}

func (s *TagService) List(ctx context.Context) ([]OpeningTag, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+openingTagColumns+` FROM opening_tags_entry ORDER BY opentag_id`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []OpeningTag
	for rows.Next() {
		t, err := scanOpeningTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}

// MaxTagID returns the highest tag_id issued so far, or "" when no tags exist.
func (s *TagService) MaxTagID(ctx context.Context) (string, error) {
	var maxID *string
	err := s.db.QueryRow(ctx, `SELECT MAX(tag_id) FROM opening_tags_entry`).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("max tag id: %w", err)
	}
	if maxID == nil {
		return "", nil
	}
	return *maxID, nil
}

// UpsertBalance adds stock to the (product_id, tag_id) balance row. For an
// existing row the stored pcs/gross_weight are treated as the previous
// contribution: the balances move by the difference, not by the full amount.
func (s *TagService) UpsertBalance(ctx context.Context, productID int, tagID string, pcs, grossWeight decimal.Decimal) (*TagBalance, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin balance upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing TagBalance
	err = tx.QueryRow(ctx, `
		SELECT id, product_id, tag_id, pcs, gross_weight, bal_pcs, bal_gross_weight
		FROM updated_values_table WHERE product_id = $1 AND tag_id = $2 FOR UPDATE`,
		productID, tagID).Scan(&existing.ID, &existing.ProductID, &existing.TagID,
		&existing.Pcs, &existing.GrossWeight, &existing.BalPcs, &existing.BalGrossWeight)

	var out TagBalance
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		row := tx.QueryRow(ctx, `
			INSERT INTO updated_values_table (product_id, tag_id, pcs, gross_weight, bal_pcs, bal_gross_weight)
			VALUES ($1, $2, $3, $4, $3, $4)
			RETURNING id, product_id, tag_id, pcs, gross_weight, bal_pcs, bal_gross_weight`,
			productID, tagID, pcs, grossWeight)
		if err := row.Scan(&out.ID, &out.ProductID, &out.TagID, &out.Pcs, &out.GrossWeight,
			&out.BalPcs, &out.BalGrossWeight); err != nil {
			return nil, fmt.Errorf("insert balance row: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("load balance row: %w", err)
	default:
		pcsDiff := pcs.Sub(existing.Pcs)
		wtDiff := grossWeight.Sub(existing.GrossWeight)
		row := tx.QueryRow(ctx, `
			UPDATE updated_values_table
			SET pcs = $1, gross_weight = $2,
				bal_pcs = bal_pcs + $3, bal_gross_weight = bal_gross_weight + $4
			WHERE id = $5
			RETURNING id, product_id, tag_id, pcs, gross_weight, bal_pcs, bal_gross_weight`,
			pcs, grossWeight, pcsDiff, wtDiff, existing.ID)
		if err := row.Scan(&out.ID, &out.ProductID, &out.TagID, &out.Pcs, &out.GrossWeight,
			&out.BalPcs, &out.BalGrossWeight); err != nil {
			return nil, fmt.Errorf("update balance row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit balance upsert: %w", err)
	}
	return &out, nil
}

func (s *TagService) ListBalances(ctx context.Context) ([]TagBalance, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, product_id, tag_id, pcs, gross_weight, bal_pcs, bal_gross_weight
		FROM updated_values_table ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	var balances []TagBalance
	for rows.Next() {
		var b TagBalance
		if err := rows.Scan(&b.ID, &b.ProductID, &b.TagID, &b.Pcs, &b.GrossWeight,
			&b.BalPcs, &b.BalGrossWeight); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func (s *TagService) GetBalance(ctx context.Context, productID int, tagID string) (*TagBalance, error) {
	var b TagBalance
	err := s.db.QueryRow(ctx, `
		SELECT id, product_id, tag_id, pcs, gross_weight, bal_pcs, bal_gross_weight
		FROM updated_values_table WHERE product_id = $1 AND tag_id = $2`,
		productID, tagID).Scan(&b.ID, &b.ProductID, &b.TagID, &b.Pcs, &b.GrossWeight,
		&b.BalPcs, &b.BalGrossWeight)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFound("balance row", fmt.Sprintf("%d/%s", productID, tagID))
	}
	if err != nil {
		return nil, fmt.Errorf("load balance row: %w", err)
	}
	return &b, nil
}

// markTagSoldTx flips a tag to Sold inside a sale transaction.
func markTagSoldTx(ctx context.Context, tx pgx.Tx, opentagID int) error {
	_, err := tx.Exec(ctx,
		`UPDATE opening_tags_entry SET "Status" = $1 WHERE opentag_id = $2`,
		TagSold, opentagID)
	if err != nil {
		return fmt.Errorf("mark tag %d sold: %w", opentagID, err)
	}
	return nil
}

// restoreTagTx flips a tag back to Available when its invoice is deleted.
func restoreTagTx(ctx context.Context, tx pgx.Tx, opentagID int) error {
	_, err := tx.Exec(ctx,
		`UPDATE opening_tags_entry SET "Status" = $1 WHERE opentag_id = $2`,
		TagAvailable, opentagID)
	if err != nil {
		return fmt.Errorf("restore tag %d: %w", opentagID, err)
	}
	return nil
}
