package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SaleReturnLedger takes returned pieces back into stock: sale-line status
// flips, tag status corrections, re-issuing returned tags under fresh barcodes,
// and the product return counters.
type SaleReturnLedger interface {
	UpdateLineStatuses(ctx context.Context, updates []SaleLineStatusUpdate) error
	UpdateTagStatuses(ctx context.Context, updates []TagStatusUpdate) error
	ReissueTags(ctx context.Context, barcodes []string) ([]string, error)
	RecordProductReturns(ctx context.Context, returns []ProductReturn) error
}

// SaleLineStatusUpdate flips one sale line's sale_status.
type SaleLineStatusUpdate struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

// TagStatusUpdate flips one tag's status by barcode.
type TagStatusUpdate struct {
	Barcode string    `json:"PCode_BarCode"`
	Status  TagStatus `json:"Status"`
}

// ProductReturn credits returned quantity and weight to a product's
// sale-return counters.
type ProductReturn struct {
	ProductID   int             `json:"product_id"`
	Qty         decimal.Decimal `json:"qty"`
	GrossWeight decimal.Decimal `json:"gross_weight"`
}

type SaleReturnService struct {
	db *pgxpool.Pool
}

func NewSaleReturnService(db *pgxpool.Pool) *SaleReturnService {
	return &SaleReturnService{db: db}
}

// UpdateLineStatuses applies the submitted sale_status flips in one
// transaction. An id that matches no line fails the whole batch.
func (s *SaleReturnService) UpdateLineStatuses(ctx context.Context, updates []SaleLineStatusUpdate) error {
	if len(updates) == 0 {
		return Invalid("at least one status update is required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin sale line status updates: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, u := range updates {
		tag, err := tx.Exec(ctx,
			`UPDATE sale_details SET sale_status = $1 WHERE id = $2`, u.Status, u.ID)
		if err != nil {
			return fmt.Errorf("update sale line %d status: %w", u.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return NotFound("sale line", u.ID)
		}
	}

	return tx.Commit(ctx)
}

// UpdateTagStatuses flips tag statuses by barcode, one transaction for the
// batch.
func (s *SaleReturnService) UpdateTagStatuses(ctx context.Context, updates []TagStatusUpdate) error {
	if len(updates) == 0 {
		return Invalid("at least one tag update is required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tag status updates: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, u := range updates {
		tag, err := tx.Exec(ctx,
			`UPDATE opening_tags_entry SET "Status" = $1 WHERE "PCode_BarCode" = $2`,
			u.Status, u.Barcode)
		if err != nil {
			return fmt.Errorf("update tag %s status: %w", u.Barcode, err)
		}
		if tag.RowsAffected() == 0 {
			return NotFound("tag", u.Barcode)
		}
	}

	return tx.Commit(ctx)
}

// ReissueTags clones each returned tag as a fresh Available row under the next
// barcode of its prefix, so the piece can be sold again without reusing the
// retired code. Barcodes that match no tag are skipped. Returns the barcodes
// issued.
func (s *SaleReturnService) ReissueTags(ctx context.Context, barcodes []string) ([]string, error) {
	if len(barcodes) == 0 {
		return nil, Invalid("at least one barcode is required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tag reissue: %w", err)
	}
	defer tx.Rollback(ctx)

	var issued []string
	for _, barcode := range barcodes {
		tag, err := scanOpeningTag(tx.QueryRow(ctx,
			`SELECT `+openingTagColumns+` FROM opening_tags_entry WHERE "PCode_BarCode" = $1`,
			barcode))
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load tag %s: %w", barcode, err)
		}

		prefix := tag.Prefix
		if prefix == "" {
			prefix = strings.TrimRight(barcode, "0123456789")
		}
		if prefix == "" {
			return nil, Invalid("tag %s has no barcode prefix", barcode)
		}
		code, err := nextBarcodeTx(ctx, tx, prefix)
		if err != nil {
			return nil, err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO opening_tags_entry (tag_id, product_id, subcategory_id, sub_category, account_name,
				invoice, "Pricing", "Prefix", category, "Purity", metal_type, "PCode_BarCode",
				"Gross_Weight", "Stones_Weight", "Stones_Price", "Wastage_On", "Wastage_Percentage",
				"WastageWeight", "Weight_BW", "Making_Charges_On", "MC_Per_Gram", "Making_Charges",
				"TotalWeight_AW", "Status", "Source", "Stock_Point", pieace_cost, product_Name,
				selling_price, pcs, tax_percent, mrp_price, product_image)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
				$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33)`,
			tag.TagID, tag.ProductID, tag.SubcategoryID, tag.SubCategory, tag.AccountName,
			tag.Invoice, tag.Pricing, prefix, tag.Category, tag.Purity, tag.MetalType, code,
			tag.GrossWeight, tag.StonesWeight, tag.StonesPrice, tag.WastageOn, tag.WastagePct,
			tag.WastageWeight, tag.WeightBW, tag.MakingOn, tag.MCPerGram, tag.MakingCharges,
			tag.TotalWeightAW, TagAvailable, tag.Source, tag.StockPoint, tag.PieceCost,
			tag.ProductName, tag.SellingPrice, tag.Pcs, tag.TaxPercent, tag.MRPPrice,
			tag.ProductImage)
		if err != nil {
			return nil, fmt.Errorf("reissue tag %s as %s: %w", barcode, code, err)
		}
		issued = append(issued, code)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tag reissue: %w", err)
	}
	return issued, nil
}

// RecordProductReturns rolls the returned quantities into the product
// sale-return counters, one transaction for the batch.
func (s *SaleReturnService) RecordProductReturns(ctx context.Context, returns []ProductReturn) error {
	if len(returns) == 0 {
		return Invalid("at least one product return is required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin product returns: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, ret := range returns {
		tag, err := tx.Exec(ctx, `
			UPDATE product SET
				sale_ret_qty = COALESCE(sale_ret_qty, 0) + $1,
				sale_ret_weight = COALESCE(sale_ret_weight, 0) + $2
			WHERE product_id = $3`,
			ret.Qty, ret.GrossWeight, ret.ProductID)
		if err != nil {
			return fmt.Errorf("bump return counters: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return NotFound("product", ret.ProductID)
		}
	}

	return tx.Commit(ctx)
}
