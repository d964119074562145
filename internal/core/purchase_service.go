package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PurchaseLedger records supplier purchase lines, maintains product purchased
// counters, and spawns rate-cut obligations for weight-settled lines.
type PurchaseLedger interface {
	Save(ctx context.Context, lines []Purchase) (*PurchaseAggregates, error)
	List(ctx context.Context) ([]Purchase, error)
	Get(ctx context.Context, id int) (*Purchase, error)
	GetByInvoice(ctx context.Context, invoice string) ([]Purchase, error)
	ListLatestPerInvoice(ctx context.Context) ([]Purchase, error)
	UpdateDetails(ctx context.Context, id int, p Purchase) error
	UpdateClaimRemark(ctx context.Context, id int, remark string) error
	Delete(ctx context.Context, id int) error
	DeleteByInvoice(ctx context.Context, invoice string) error
}

// PurchaseAggregates are the invoice-level sums denormalized onto every line
// of a saved purchase invoice.
type PurchaseAggregates struct {
	TaxableAmt decimal.Decimal `json:"overall_taxableAmt"`
	TaxAmt     decimal.Decimal `json:"overall_taxAmt"`
	NetAmt     decimal.Decimal `json:"overall_netAmt"`
	HMCharges  decimal.Decimal `json:"overall_hmCharges"`
}

// computePurchaseAggregates sums the invoice totals across all submitted
// lines: taxable = total_mc + total_amount + final_stone_amount per line.
func computePurchaseAggregates(lines []Purchase) PurchaseAggregates {
	var agg PurchaseAggregates
	for _, l := range lines {
		agg.TaxableAmt = agg.TaxableAmt.Add(l.TotalMC).Add(l.TotalAmount).Add(l.FinalStoneAmt)
		agg.TaxAmt = agg.TaxAmt.Add(l.TaxAmt)
		agg.NetAmt = agg.NetAmt.Add(l.NetAmt)
		agg.HMCharges = agg.HMCharges.Add(l.HMCharges)
	}
	return agg
}

// rateCutSettlement derives the settled weight from cumulative paid amount at
// the rate-cut price. paid_wt is zero unless both inputs are positive.
func rateCutSettlement(paidAmount, rateCut, rateCutWt decimal.Decimal) (paidWt, balWt decimal.Decimal) {
	if paidAmount.IsPositive() && rateCut.IsPositive() {
		paidWt = paidAmount.Div(rateCut)
	}
	return paidWt, rateCutWt.Sub(paidWt)
}

// paidByForInsert labels how a new purchase line settles. Fixed-price lines
// always settle by amount.
func paidByForInsert(pricing string, rateCutWt decimal.Decimal) string {
	if pricing == "By fixed" {
		return "By Amount"
	}
	if rateCutWt.IsPositive() {
		return "By Amount"
	}
	return "By Weight"
}

// paidByForUpdate labels an updated line from what has actually been paid.
func paidByForUpdate(paidPureWeight, paidAmount decimal.Decimal) *string {
	var label string
	switch {
	case paidPureWeight.IsPositive() && paidAmount.IsPositive():
		label = "By Amount"
	case paidPureWeight.IsPositive():
		label = "By Weight"
	default:
		return nil
	}
	return &label
}

// balWtAmt mirrors the original outstanding-value column: the positive
// balance pure weight when present, else the positive balance amount.
func balWtAmt(balancePureWeight, balanceAmount decimal.Decimal) decimal.Decimal {
	if balancePureWeight.IsPositive() {
		return balancePureWeight
	}
	if balanceAmount.IsPositive() {
		return balanceAmount
	}
	return decimal.Zero
}

type PurchaseService struct {
	db *pgxpool.Pool
}

func NewPurchaseService(db *pgxpool.Pool) *PurchaseService {
	return &PurchaseService{db: db}
}

const purchaseColumns = `id, customer_id, mobile, account_name, gst_in, terms, invoice, bill_no,
	date, bill_date, due_date, "Pricing", product_id, tag_id, category, metal_type, rbarcode,
	hsn_code, pcs, gross_weight, stone_weight, "deduct_st_Wt", net_weight, purity,
	"purityPercentage", pure_weight, wastage_on, wastage, wastage_wt, "Making_Charges_On",
	"Making_Charges_Value", total_mc, total_pure_wt, paid_pure_weight, balance_pure_weight,
	rate, total_amount, tax_slab, tax_amt, net_amt, rate_cut, rate_cut_wt, rate_cut_amt,
	paid_amount, balance_amount, hm_charges, other_charges, charges, remarks, stone_price,
	final_stone_amount, balance_after_receipt, "balWt_after_payment", paid_wt, paid_by,
	bal_wt_amt, discount_amt, final_amt, claim_remark, "overall_taxableAmt", "overall_taxAmt",
	"overall_netAmt", "overall_hmCharges"`

func scanPurchase(row pgx.Row) (*Purchase, error) {
	var p Purchase
	err := row.Scan(&p.ID, &p.CustomerID, &p.Mobile, &p.AccountName, &p.GstIn, &p.Terms,
		&p.Invoice, &p.BillNo, &p.Date, &p.BillDate, &p.DueDate, &p.Pricing, &p.ProductID,
		&p.TagID, &p.Category, &p.MetalType, &p.Rbarcode, &p.HSNCode, &p.Pcs, &p.GrossWeight,
		&p.StoneWeight, &p.DeductStWt, &p.NetWeight, &p.Purity, &p.PurityPct, &p.PureWeight,
		&p.WastageOn, &p.Wastage, &p.WastageWt, &p.MakingOn, &p.MakingValue, &p.TotalMC,
		&p.TotalPureWt, &p.PaidPureWeight, &p.BalPureWeight, &p.Rate, &p.TotalAmount,
		&p.TaxSlab, &p.TaxAmt, &p.NetAmt, &p.RateCut, &p.RateCutWt, &p.RateCutAmt,
		&p.PaidAmount, &p.BalanceAmount, &p.HMCharges, &p.OtherCharges, &p.Charges,
		&p.Remarks, &p.StonePrice, &p.FinalStoneAmt, &p.BalAfterReceipt, &p.BalWtAfterPay,
		&p.PaidWt, &p.PaidBy, &p.BalWtAmt, &p.DiscountAmt, &p.FinalAmt, &p.ClaimRemark,
		&p.OverallTaxable, &p.OverallTax, &p.OverallNet, &p.OverallHM)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Save processes one purchase submission: invoice aggregates are computed
// across all lines, then each line is inserted or updated by (id, invoice).
// Inserts create stone-detail children, a rate-cut row for weight-settled or
// fixed-price lines, and bump the product's purchased counters. The whole
// submission is one transaction.
func (s *PurchaseService) Save(ctx context.Context, lines []Purchase) (*PurchaseAggregates, error) {
	if len(lines) == 0 {
		return nil, Invalid("table data is empty, cannot proceed with purchase")
	}

	agg := computePurchaseAggregates(lines)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin purchase save: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, line := range lines {
		line.OverallTaxable = agg.TaxableAmt
		line.OverallTax = agg.TaxAmt
		line.OverallNet = agg.NetAmt
		line.OverallHM = agg.HMCharges

		var count int
		err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM purchases WHERE id = $1 AND invoice = $2`,
			line.ID, line.Invoice).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("check purchase line: %w", err)
		}

		if count > 0 {
			if err := updatePurchaseLineTx(ctx, tx, line); err != nil {
				return nil, err
			}
		} else {
			if err := insertPurchaseLineTx(ctx, tx, line); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase save: %w", err)
	}
	return &agg, nil
}

func insertPurchaseLineTx(ctx context.Context, tx pgx.Tx, line Purchase) error {
	paidBy := paidByForInsert(line.Pricing, line.RateCutWt)
	outstanding := balWtAmt(line.BalPureWeight, line.BalanceAmount)

	var purchaseID int
	err := tx.QueryRow(ctx, `
		INSERT INTO purchases (customer_id, mobile, account_name, gst_in, terms, invoice, bill_no,
			date, bill_date, due_date, "Pricing", product_id, tag_id, category, metal_type, rbarcode,
			hsn_code, pcs, gross_weight, stone_weight, "deduct_st_Wt", net_weight, purity,
			"purityPercentage", pure_weight, wastage_on, wastage, wastage_wt, "Making_Charges_On",
			"Making_Charges_Value", total_mc, total_pure_wt, paid_pure_weight, balance_pure_weight,
			rate, total_amount, tax_slab, tax_amt, net_amt, rate_cut, rate_cut_wt, rate_cut_amt,
			paid_amount, balance_amount, hm_charges, other_charges, charges, remarks, stone_price,
			final_stone_amount, balance_after_receipt, "balWt_after_payment", paid_by, bal_wt_amt,
			discount_amt, final_amt, "overall_taxableAmt", "overall_taxAmt", "overall_netAmt",
			"overall_hmCharges")
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
			$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,$36,$37,$38,$39,$40,
			$41,$42,$43,$44,$45,$46,$47,$48,$49,$50,$51,$52,$53,$54,$55,$56,$57,$58,$59,$60)
		RETURNING id`,
		line.CustomerID, line.Mobile, line.AccountName, line.GstIn, line.Terms, line.Invoice,
		line.BillNo, line.Date, line.BillDate, line.DueDate, line.Pricing, line.ProductID,
		line.TagID, line.Category, line.MetalType, line.Rbarcode, line.HSNCode, line.Pcs,
		line.GrossWeight, line.StoneWeight, line.DeductStWt, line.NetWeight, line.Purity,
		line.PurityPct, line.PureWeight, line.WastageOn, line.Wastage, line.WastageWt,
		line.MakingOn, line.MakingValue, line.TotalMC, line.TotalPureWt, line.PaidPureWeight,
		line.BalPureWeight, line.Rate, line.TotalAmount, line.TaxSlab, line.TaxAmt, line.NetAmt,
		line.RateCut, line.RateCutWt, line.RateCutAmt, line.PaidAmount, line.BalanceAmount,
		line.HMCharges, line.OtherCharges, line.Charges, line.Remarks, line.StonePrice,
		line.FinalStoneAmt, line.BalAfterReceipt, line.BalWtAfterPay, paidBy, outstanding,
		line.DiscountAmt, line.FinalAmt, line.OverallTaxable, line.OverallTax, line.OverallNet,
		line.OverallHM).Scan(&purchaseID)
	if err != nil {
		return fmt.Errorf("insert purchase line: %w", err)
	}

	for _, stone := range line.StoneDetails {
		_, err := tx.Exec(ctx, `
			INSERT INTO stone_details (purchase_id, "stoneName", cut, color, clarity,
				"stoneWt", "caratWt", "stonePrice", amount)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			purchaseID, stone.StoneName, stone.Cut, stone.Color, stone.Clarity,
			stone.StoneWt, stone.CaratWt, stone.StonePrice, stone.Amount)
		if err != nil {
			return fmt.Errorf("insert stone detail: %w", err)
		}
	}

	if line.RateCutWt.IsPositive() || line.Pricing == "By fixed" {
		rateCut := line.RateCut
		if rateCut.IsZero() {
			rateCut = decimal.NewFromInt(1)
		}
		rateCutAmt := line.RateCutAmt
		if line.Pricing == "By fixed" {
			rateCutAmt = line.FinalAmt
		}
		paidWt, balWt := rateCutSettlement(line.PaidAmount, rateCut, line.RateCutWt)

		_, err := tx.Exec(ctx, `
			INSERT INTO ratecuts (purchase_id, invoice, category, total_pure_wt, rate_cut_wt,
				rate_cut, rate_cut_amt, paid_amount, balance_amount, paid_wt, bal_wt, paid_by)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			purchaseID, line.Invoice, line.Category, line.TotalPureWt, line.RateCutWt,
			line.RateCut, rateCutAmt, line.PaidAmount, line.BalanceAmount, paidWt, balWt, paidBy)
		if err != nil {
			return fmt.Errorf("insert rate cut: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE product SET
			pur_qty = COALESCE(pur_qty, 0) + $1,
			pur_weight = COALESCE(pur_weight, 0) + $2
		WHERE product_id = $3`,
		line.Pcs, line.GrossWeight, line.ProductID)
	if err != nil {
		return fmt.Errorf("bump purchased counters: %w", err)
	}
	return recomputeProductBalanceTx(ctx, tx, line.ProductID)
}

func updatePurchaseLineTx(ctx context.Context, tx pgx.Tx, line Purchase) error {
	paidBy := paidByForUpdate(line.PaidPureWeight, line.PaidAmount)
	outstanding := balWtAmt(line.BalPureWeight, line.BalanceAmount)

	_, err := tx.Exec(ctx, `
		UPDATE purchases SET
			customer_id = $1, mobile = $2, account_name = $3, gst_in = $4, terms = $5,
			bill_no = $6, date = $7, bill_date = $8, due_date = $9, "Pricing" = $10,
			product_id = $11, tag_id = $12, category = $13, metal_type = $14, rbarcode = $15,
			hsn_code = $16, pcs = $17, gross_weight = $18, stone_weight = $19,
			"deduct_st_Wt" = $20, net_weight = $21, purity = $22, "purityPercentage" = $23,
			pure_weight = $24, wastage_on = $25, wastage = $26, wastage_wt = $27,
			"Making_Charges_On" = $28, "Making_Charges_Value" = $29, total_mc = $30,
			total_pure_wt = $31, paid_pure_weight = $32, balance_pure_weight = $33, rate = $34,
			total_amount = $35, tax_slab = $36, tax_amt = $37, net_amt = $38, rate_cut = $39,
			rate_cut_wt = $40, rate_cut_amt = $41, paid_amount = $42, balance_amount = $43,
			hm_charges = $44, other_charges = $45, charges = $46, remarks = $47,
			stone_price = $48, final_stone_amount = $49, balance_after_receipt = $50,
			"balWt_after_payment" = $51, paid_by = $52, bal_wt_amt = $53, discount_amt = $54,
			final_amt = $55, "overall_taxableAmt" = $56, "overall_taxAmt" = $57,
			"overall_netAmt" = $58, "overall_hmCharges" = $59
		WHERE invoice = $60 AND id = $61`,
		line.CustomerID, line.Mobile, line.AccountName, line.GstIn, line.Terms,
		line.BillNo, line.Date, line.BillDate, line.DueDate, line.Pricing,
		line.ProductID, line.TagID, line.Category, line.MetalType, line.Rbarcode,
		line.HSNCode, line.Pcs, line.GrossWeight, line.StoneWeight,
		line.DeductStWt, line.NetWeight, line.Purity, line.PurityPct,
		line.PureWeight, line.WastageOn, line.Wastage, line.WastageWt,
		line.MakingOn, line.MakingValue, line.TotalMC,
		line.TotalPureWt, line.PaidPureWeight, line.BalPureWeight, line.Rate,
		line.TotalAmount, line.TaxSlab, line.TaxAmt, line.NetAmt, line.RateCut,
		line.RateCutWt, line.RateCutAmt, line.PaidAmount, line.BalanceAmount,
		line.HMCharges, line.OtherCharges, line.Charges, line.Remarks,
		line.StonePrice, line.FinalStoneAmt, line.BalAfterReceipt,
		line.BalWtAfterPay, paidBy, outstanding, line.DiscountAmt,
		line.FinalAmt, line.OverallTaxable, line.OverallTax,
		line.OverallNet, line.OverallHM,
		line.Invoice, line.ID)
	if err != nil {
		return fmt.Errorf("update purchase line %d: %w", line.ID, err)
	}

	// Rewrite the matching rate-cut's settlement fields with the same
	// formulas used at insert time.
	rateCut := line.RateCut
	if rateCut.IsZero() {
		rateCut = decimal.NewFromInt(1)
	}
	paidWt, balWt := rateCutSettlement(line.PaidAmount, rateCut, line.RateCutWt)
	rcPaidBy := "By Weight"
	if line.RateCutWt.IsPositive() {
		rcPaidBy = "By Amount"
	}

	_, err = tx.Exec(ctx, `
		UPDATE ratecuts SET
			category = $1, rate_cut_wt = $2, rate_cut = $3, rate_cut_amt = $4,
			paid_amount = $5, balance_amount = $6, paid_wt = $7, bal_wt = $8, paid_by = $9
		WHERE purchase_id = $10 AND invoice = $11 AND total_pure_wt = $12`,
		line.Category, line.RateCutWt, line.RateCut, line.RateCutAmt,
		line.PaidAmount, line.BalanceAmount, paidWt, balWt, rcPaidBy,
		line.ID, line.Invoice, line.TotalPureWt)
	if err != nil {
		return fmt.Errorf("update rate cut for purchase %d: %w", line.ID, err)
	}
	return nil
}

// recomputeProductBalanceTx rewrites the product's balance counters as
// purchased minus sold from the stored cumulative columns.
func recomputeProductBalanceTx(ctx context.Context, tx pgx.Tx, productID int) error {
	_, err := tx.Exec(ctx, `
		UPDATE product SET
			bal_qty = COALESCE(pur_qty, 0) - COALESCE(sale_qty, 0),
			bal_weight = COALESCE(pur_weight, 0) - COALESCE(sale_weight, 0)
		WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("recompute product %d balance: %w", productID, err)
	}
	return nil
}

func (s *PurchaseService) List(ctx context.Context) ([]Purchase, error) {
	return s.queryPurchases(ctx, `SELECT `+purchaseColumns+` FROM purchases ORDER BY id`)
}

func (s *PurchaseService) Get(ctx context.Context, id int) (*Purchase, error) {
	p, err := scanPurchase(s.db.QueryRow(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFound("purchase", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load purchase %d: %w", id, err)
	}
	return p, nil
}

func (s *PurchaseService) GetByInvoice(ctx context.Context, invoice string) ([]Purchase, error) {
	lines, err := s.queryPurchases(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE invoice = $1 ORDER BY id`, invoice)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, NotFound("purchase invoice", invoice)
	}
	return lines, nil
}

// ListLatestPerInvoice returns the highest-id line of every invoice, the shape
// the purchase register screen lists.
func (s *PurchaseService) ListLatestPerInvoice(ctx context.Context) ([]Purchase, error) {
	return s.queryPurchases(ctx, `
		SELECT `+purchaseColumns+` FROM purchases p1
		WHERE p1.id = (SELECT MAX(p2.id) FROM purchases p2 WHERE p2.invoice = p1.invoice)
		ORDER BY p1.id`)
}

func (s *PurchaseService) queryPurchases(ctx context.Context, query string, args ...any) ([]Purchase, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpdateDetails rewrites the header-level fields of one purchase line without
// touching counters or rate-cuts.
func (s *PurchaseService) UpdateDetails(ctx context.Context, id int, p Purchase) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE purchases SET
			customer_id = $1, mobile = $2, account_name = $3, gst_in = $4, terms = $5,
			invoice = $6, bill_no = $7, rate_cut = $8, date = $9, bill_date = $10,
			due_date = $11, category = $12, paid_pure_weight = $13, balance_pure_weight = $14,
			hsn_code = $15, rbarcode = $16, stone_weight = $17, net_weight = $18,
			hm_charges = $19, other_charges = $20, charges = $21, purity = $22,
			metal_type = $23, pure_weight = $24, rate = $25, total_amount = $26,
			paid_amount = $27, balance_amount = $28, product_id = $29, pcs = $30,
			gross_weight = $31, balance_after_receipt = $32, "Pricing" = $33, remarks = $34
		WHERE id = $35`,
		p.CustomerID, p.Mobile, p.AccountName, p.GstIn, p.Terms,
		p.Invoice, p.BillNo, p.RateCut, p.Date, p.BillDate,
		p.DueDate, p.Category, p.PaidPureWeight, p.BalPureWeight,
		p.HSNCode, p.Rbarcode, p.StoneWeight, p.NetWeight,
		p.HMCharges, p.OtherCharges, p.Charges, p.Purity,
		p.MetalType, p.PureWeight, p.Rate, p.TotalAmount,
		p.PaidAmount, p.BalanceAmount, p.ProductID, p.Pcs,
		p.GrossWeight, p.BalAfterReceipt, p.Pricing, p.Remarks, id)
	if err != nil {
		return fmt.Errorf("update purchase %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("purchase", id)
	}
	return nil
}

func (s *PurchaseService) UpdateClaimRemark(ctx context.Context, id int, remark string) error {
	if remark == "" {
		return Invalid("remark is required")
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE purchases SET claim_remark = $1 WHERE id = $2`, remark, id)
	if err != nil {
		return fmt.Errorf("update claim remark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("purchase", id)
	}
	return nil
}

// Delete removes one purchase line, first giving its pieces and weight back
// to the product's purchased counters.
func (s *PurchaseService) Delete(ctx context.Context, id int) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin purchase delete: %w", err)
	}
	defer tx.Rollback(ctx)

	var productID int
	var pcs, grossWeight decimal.Decimal
	err = tx.QueryRow(ctx,
		`SELECT product_id, pcs, gross_weight FROM purchases WHERE id = $1 FOR UPDATE`,
		id).Scan(&productID, &pcs, &grossWeight)
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound("purchase", id)
	}
	if err != nil {
		return fmt.Errorf("load purchase %d: %w", id, err)
	}

	if err := reversePurchasedCountersTx(ctx, tx, productID, pcs, grossWeight); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete purchase %d: %w", id, err)
	}
	return tx.Commit(ctx)
}

// DeleteByInvoice removes every line of an invoice, reversing each line's
// contribution to its product's purchased counters.
func (s *PurchaseService) DeleteByInvoice(ctx context.Context, invoice string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin invoice delete: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT product_id, pcs, gross_weight FROM purchases WHERE invoice = $1 FOR UPDATE`,
		invoice)
	if err != nil {
		return fmt.Errorf("load invoice %s: %w", invoice, err)
	}
	type lineRef struct {
		productID int
		pcs       decimal.Decimal
		weight    decimal.Decimal
	}
	var refs []lineRef
	for rows.Next() {
		var r lineRef
		if err := rows.Scan(&r.productID, &r.pcs, &r.weight); err != nil {
			rows.Close()
			return err
		}
		refs = append(refs, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(refs) == 0 {
		return NotFound("purchase invoice", invoice)
	}

	for _, r := range refs {
		if err := reversePurchasedCountersTx(ctx, tx, r.productID, r.pcs, r.weight); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM purchases WHERE invoice = $1`, invoice); err != nil {
		return fmt.Errorf("delete invoice %s: %w", invoice, err)
	}
	return tx.Commit(ctx)
}

func reversePurchasedCountersTx(ctx context.Context, tx pgx.Tx, productID int, pcs, grossWeight decimal.Decimal) error {
	_, err := tx.Exec(ctx, `
		UPDATE product SET
			pur_qty = COALESCE(pur_qty, 0) - COALESCE($1, 0),
			pur_weight = COALESCE(pur_weight, 0) - COALESCE($2, 0)
		WHERE product_id = $3`,
		pcs, grossWeight, productID)
	if err != nil {
		return fmt.Errorf("reverse purchased counters: %w", err)
	}
	return recomputeProductBalanceTx(ctx, tx, productID)
}

// StoneDetails lists the stone children of a purchase line.
func (s *PurchaseService) StoneDetails(ctx context.Context, purchaseID int) ([]StoneDetail, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, purchase_id, "stoneName", cut, color, clarity, "stoneWt", "caratWt",
			"stonePrice", amount
		FROM stone_details WHERE purchase_id = $1 ORDER BY id`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list stone details: %w", err)
	}
	defer rows.Close()

	var stones []StoneDetail
	for rows.Next() {
		var d StoneDetail
		if err := rows.Scan(&d.ID, &d.PurchaseID, &d.StoneName, &d.Cut, &d.Color, &d.Clarity,
			&d.StoneWt, &d.CaratWt, &d.StonePrice, &d.Amount); err != nil {
			return nil, err
		}
		stones = append(stones, d)
	}
	return stones, rows.Err()
}
