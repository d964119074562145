package core

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SaleLedger persists sale invoices and orders: invoice renumbering,
// denormalized invoice totals, tag and product side effects, trade-in and
// scheme children, conversions, and guarded deletion.
type SaleLedger interface {
	Save(ctx context.Context, req SaleSaveRequest) (string, error)
	List(ctx context.Context) ([]SaleLine, error)
	ListLatestPerInvoice(ctx context.Context) ([]SaleLine, error)
	GetByInvoice(ctx context.Context, invoiceNumber string) ([]SaleLine, error)
	GetByOrder(ctx context.Context, orderNumber string) ([]SaleLine, error)
	ConvertOrder(ctx context.Context, orderNumber string) (string, error)
	ConvertRepair(ctx context.Context, repairID int) (string, error)
	UpdateSaleStatus(ctx context.Context, id int, saleStatus string) error
	DeleteByInvoice(ctx context.Context, invoiceNumber string) (int64, error)
}

// SaleSaveRequest is one invoice save: the lines plus their trade-in and
// scheme children and an external sales credit netted off the bill.
type SaleSaveRequest struct {
	Lines          []SaleLine      `json:"repairDetails"`
	OldItems       []OldItem       `json:"oldItems"`
	MemberSchemes  []MemberScheme  `json:"memberSchemes"`
	SalesNetAmount decimal.Decimal `json:"salesNetAmount"`
}

type SaleService struct {
	db *pgxpool.Pool
}

func NewSaleService(db *pgxpool.Pool) *SaleService {
	return &SaleService{db: db}
}

var invoicePattern = regexp.MustCompile(`^([A-Za-z]+)([0-9]+)$`)

// resolveInvoiceNumberTx keeps the submitted invoice number unless a
// persisted line already carries it, in which case the next number for its
// alphabetic prefix is minted.
func resolveInvoiceNumberTx(ctx context.Context, tx pgx.Tx, submitted string) (string, error) {
	m := invoicePattern.FindStringSubmatch(submitted)
	if m == nil {
		return "", Invalid("invalid invoice number format %q", submitted)
	}
	prefix := m[1]

	rows, err := tx.Query(ctx,
		`SELECT invoice_number FROM sale_details WHERE invoice_number LIKE $1`, prefix+"%")
	if err != nil {
		return "", fmt.Errorf("load invoice numbers: %w", err)
	}
	defer rows.Close()

	exists := false
	var codes []string
	for rows.Next() {
		var code *string
		if err := rows.Scan(&code); err != nil {
			return "", err
		}
		if code == nil {
			continue
		}
		codes = append(codes, *code)
		if *code == submitted {
			exists = true
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	if !exists {
		return submitted, nil
	}
	// The submitted number itself participates in the max so a renumber can
	// never go backwards.
	codes = append(codes, submitted)
	return nextFromExisting(prefix, codes), nil
}

// ensureCustomerTx resolves a line's party to an account_details row by
// mobile, creating a CUSTOMERS account when none exists.
func ensureCustomerTx(ctx context.Context, tx pgx.Tx, l SaleLine) (*int, error) {
	if l.Mobile == "" {
		return l.CustomerID, nil
	}
	var accountID int
	err := tx.QueryRow(ctx,
		`SELECT account_id FROM account_details WHERE mobile = $1`, l.Mobile).Scan(&accountID)
	if err == nil {
		return &accountID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("look up customer %s: %w", l.Mobile, err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO account_details (account_name, mobile, email, address1, address2, city,
			pincode, state, state_code, aadhar_card, gst_in, pan_card, account_group)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,'CUSTOMERS')
		RETURNING account_id`,
		l.AccountName, l.Mobile, l.Email, l.Address1, l.Address2, l.City,
		l.Pincode, l.State, l.StateCode, l.AadharCard, l.GstIn, l.PanCard).Scan(&accountID)
	if err != nil {
		return nil, fmt.Errorf("create customer %s: %w", l.Mobile, err)
	}
	return &accountID, nil
}

// Save runs the full invoice save as one transaction: customer resolution,
// invoice renumbering, invoice totals written onto every line, the
// update/insert split with ConvertedInvoice clones for order lines, repair
// handoff, related-table upserts, tag status flips, and sold counters for
// pure-insert saves.
func (s *SaleService) Save(ctx context.Context, req SaleSaveRequest) (string, error) {
	if len(req.Lines) == 0 {
		return "", Invalid("no data to save")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin sale save: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().Format("15:04")
	originalInvoice := req.Lines[0].InvoiceNo

	for i := range req.Lines {
		customerID, err := ensureCustomerTx(ctx, tx, req.Lines[i])
		if err != nil {
			return "", err
		}
		req.Lines[i].CustomerID = customerID
		if req.Lines[i].TransactionStatus == "" {
			req.Lines[i].TransactionStatus = StatusSales
		}
		req.Lines[i].Time = now
	}

	newInvoice, err := resolveInvoiceNumberTx(ctx, tx, originalInvoice)
	if err != nil {
		return "", err
	}

	totals := computeInvoiceTotals(req.Lines)
	oldTotal := sumOldItems(req.OldItems)
	schemeTotal := sumSchemePayments(req.MemberSchemes)
	netBill := netBillAmount(totals.NetAmount, oldTotal, schemeTotal, req.SalesNetAmount)

	applyAggregates := func(l *SaleLine) {
		l.TaxableAmount = totals.TaxableAmount
		l.TaxAmount = totals.TaxAmount
		l.NetAmount = totals.NetAmount
		l.OldExchangeAmt = oldTotal
		l.SchemeAmt = schemeTotal
		l.SaleReturnAmt = req.SalesNetAmount
		l.PaidAmt = linePaidAmt(*l)
		l.NetBillAmount = netBill
		l.BalAmt = netBill.Sub(l.PaidAmt)
	}

	existing, err := existingSaleIDsTx(ctx, tx, req.Lines)
	if err != nil {
		return "", err
	}

	anyUpdate := false
	var orderNumbers []string
	for _, l := range req.Lines {
		if l.OrderNo != "" {
			orderNumbers = append(orderNumbers, l.OrderNo)
		}
	}

	for _, line := range req.Lines {
		applyAggregates(&line)

		switch {
		case line.ID != 0 && existing[line.ID] && line.OrderNo != "":
			// Order line becoming an invoice: rewrite the original under the
			// new number and keep a ConvertedInvoice clone of it.
			anyUpdate = true
			line.InvoiceNo = newInvoice
			if err := updateSaleLineTx(ctx, tx, line); err != nil {
				return "", err
			}
			clone := line
			clone.ID = 0
			clone.TransactionStatus = StatusConvertedInvoice
			if err := insertSaleLineTx(ctx, tx, clone); err != nil {
				return "", err
			}
		case line.ID != 0 && existing[line.ID]:
			anyUpdate = true
			if err := updateSaleLineTx(ctx, tx, line); err != nil {
				return "", err
			}
		default:
			line.InvoiceNo = newInvoice
			if err := insertSaleLineTx(ctx, tx, line); err != nil {
				return "", err
			}
		}
	}

	if len(orderNumbers) > 0 {
		_, err := tx.Exec(ctx, `
			UPDATE repairs SET invoice = 'Converted', status = $1, invoice_number = $2
			WHERE repair_no = ANY($3)`,
			RepairDeliveredToCustomer, newInvoice, orderNumbers)
		if err != nil {
			return "", fmt.Errorf("hand repairs to customer: %w", err)
		}
	}

	relatedInvoice := newInvoice
	if anyUpdate {
		relatedInvoice = originalInvoice
	}
	if err := persistRelatedTx(ctx, tx, relatedInvoice, req, oldTotal, schemeTotal, anyUpdate); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit sale save: %w", err)
	}
	return newInvoice, nil
}

func existingSaleIDsTx(ctx context.Context, tx pgx.Tx, lines []SaleLine) (map[int]bool, error) {
	var ids []int
	for _, l := range lines {
		if l.ID != 0 {
			ids = append(ids, l.ID)
		}
	}
	existing := make(map[int]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	rows, err := tx.Query(ctx, `SELECT id FROM sale_details WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("check sale ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing[id] = true
	}
	return existing, rows.Err()
}

// persistRelatedTx upserts trade-in and scheme children, marks tags on
// "Sales" lines sold, and, for pure-insert saves only, rolls sold quantities
// into the product counters. "By Weight" lines also contribute weight.
func persistRelatedTx(ctx context.Context, tx pgx.Tx, invoiceNumber string, req SaleSaveRequest, oldTotal, schemeTotal decimal.Decimal, anyUpdate bool) error {
	for _, item := range req.OldItems {
		_, err := tx.Exec(ctx, `
			INSERT INTO old_items (id, invoice_id, product, metal, purity, hsn_code, gross,
				dust, ml_percent, net_wt, remarks, rate, total_amount, total_old_amount)
			VALUES (COALESCE(NULLIF($1, 0), nextval(pg_get_serial_sequence('old_items','id'))),
				$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
			ON CONFLICT (id) DO UPDATE SET
				invoice_id = EXCLUDED.invoice_id, product = EXCLUDED.product,
				metal = EXCLUDED.metal, purity = EXCLUDED.purity, hsn_code = EXCLUDED.hsn_code,
				gross = EXCLUDED.gross, dust = EXCLUDED.dust, ml_percent = EXCLUDED.ml_percent,
				net_wt = EXCLUDED.net_wt, remarks = EXCLUDED.remarks, rate = EXCLUDED.rate,
				total_amount = EXCLUDED.total_amount, total_old_amount = EXCLUDED.total_old_amount`,
			item.ID, invoiceNumber, item.Product, item.Metal, item.Purity, item.HSNCode,
			item.Gross, item.Dust, item.MLPercent, item.NetWt, item.Remarks, item.Rate,
			item.TotalAmount, oldTotal)
		if err != nil {
			return fmt.Errorf("upsert old item: %w", err)
		}
	}

	for _, scheme := range req.MemberSchemes {
		_, err := tx.Exec(ctx, `
			INSERT INTO member_schemes (id, invoice_id, scheme, member_name, member_number,
				scheme_name, installments_paid, duration_months, paid_months, pending_months,
				pending_amount, paid_amount, schemes_total_amount)
			VALUES (COALESCE(NULLIF($1, 0), nextval(pg_get_serial_sequence('member_schemes','id'))),
				$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			ON CONFLICT (id) DO UPDATE SET
				invoice_id = EXCLUDED.invoice_id, scheme = EXCLUDED.scheme,
				member_name = EXCLUDED.member_name, member_number = EXCLUDED.member_number,
				scheme_name = EXCLUDED.scheme_name, installments_paid = EXCLUDED.installments_paid,
				duration_months = EXCLUDED.duration_months, paid_months = EXCLUDED.paid_months,
				pending_months = EXCLUDED.pending_months, pending_amount = EXCLUDED.pending_amount,
				paid_amount = EXCLUDED.paid_amount, schemes_total_amount = EXCLUDED.schemes_total_amount`,
			scheme.ID, invoiceNumber, scheme.Scheme, scheme.MemberName, scheme.MemberNumber,
			scheme.SchemeName, scheme.InstallmentsPaid, scheme.DurationMonths, scheme.PaidMonths,
			scheme.PendingMonths, scheme.PendingAmount, scheme.PaidAmount, schemeTotal)
		if err != nil {
			return fmt.Errorf("upsert member scheme: %w", err)
		}
	}

	for _, l := range req.Lines {
		if l.TransactionStatus == StatusSales && l.OpentagID != nil {
			if err := markTagSoldTx(ctx, tx, *l.OpentagID); err != nil {
				return err
			}
		}
	}

	if anyUpdate {
		return nil
	}

	type soldAgg struct {
		qty    decimal.Decimal
		weight decimal.Decimal
	}
	sold := map[int]soldAgg{}
	for _, l := range req.Lines {
		if l.TransactionStatus != StatusSales || l.ProductID == 0 {
			continue
		}
		agg := sold[l.ProductID]
		agg.qty = agg.qty.Add(l.Qty)
		if l.Pricing == "By Weight" {
			agg.weight = agg.weight.Add(l.GrossWeight)
		}
		sold[l.ProductID] = agg
	}

	for productID, agg := range sold {
		_, err := tx.Exec(ctx, `
			UPDATE product SET
				sale_qty = COALESCE(sale_qty, 0) + $1,
				sale_weight = COALESCE(sale_weight, 0) + $2
			WHERE product_id = $3`,
			agg.qty, agg.weight, productID)
		if err != nil {
			return fmt.Errorf("bump sold counters: %w", err)
		}
		if err := recomputeProductBalanceTx(ctx, tx, productID); err != nil {
			return err
		}
	}
	return nil
}

const saleColumns = `id, customer_id, mobile, account_name, email, address1, address2, city,
	pincode, state, state_code, aadhar_card, gst_in, pan_card, terms, date, time,
	invoice_number, order_number, code, product_id, opentag_id, metal, product_name,
	metal_type, design_name, purity, pricing, category, sub_category, invoice, sale_status,
	remarks, product_image, gross_weight, stone_weight, weight_bw, stone_price, va_on,
	va_percent, wastage_weight, total_weight_av, mc_on, mc_per_gram, making_charges,
	disscount_percentage, disscount, festival_discount, rate, rate_24k, pieace_cost,
	mrp_price, rate_amt, tax_percent, tax_amt, total_price, hm_charges, qty, cash_amount,
	card_amt, chq_amt, online_amt, transaction_status, taxable_amount, tax_amount,
	net_amount, old_exchange_amt, scheme_amt, sale_return_amt, receipts_amt,
	bal_after_receipts, bal_amt, net_bill_amount, paid_amt`

func scanSaleLine(row pgx.Row) (*SaleLine, error) {
	var l SaleLine
	err := row.Scan(&l.ID, &l.CustomerID, &l.Mobile, &l.AccountName, &l.Email, &l.Address1,
		&l.Address2, &l.City, &l.Pincode, &l.State, &l.StateCode, &l.AadharCard, &l.GstIn,
		&l.PanCard, &l.Terms, &l.Date, &l.Time, &l.InvoiceNo, &l.OrderNo, &l.Code,
		&l.ProductID, &l.OpentagID, &l.Metal, &l.ProductName, &l.MetalType, &l.DesignName,
		&l.Purity, &l.Pricing, &l.Category, &l.SubCategory, &l.Invoice, &l.SaleStatus,
		&l.Remarks, &l.ProductImg, &l.GrossWeight, &l.StoneWeight, &l.WeightBW, &l.StonePrice,
		&l.VAOn, &l.VAPercent, &l.WastageWeight, &l.TotalWeightAV, &l.MCOn, &l.MCPerGram,
		&l.MakingCharges, &l.DiscountPct, &l.Discount, &l.FestivalDisc, &l.Rate, &l.Rate24K,
		&l.PieceCost, &l.MRPPrice, &l.RateAmt, &l.TaxPercent, &l.TaxAmt, &l.TotalPrice,
		&l.HMCharges, &l.Qty, &l.CashAmount, &l.CardAmt, &l.ChqAmt, &l.OnlineAmt,
		&l.TransactionStatus, &l.TaxableAmount, &l.TaxAmount, &l.NetAmount, &l.OldExchangeAmt,
		&l.SchemeAmt, &l.SaleReturnAmt, &l.ReceiptsAmt, &l.BalAfterReceipts, &l.BalAmt,
		&l.NetBillAmount, &l.PaidAmt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func insertSaleLineTx(ctx context.Context, tx pgx.Tx, l SaleLine) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO sale_details (id, customer_id, mobile, account_name, email, address1,
			address2, city, pincode, state, state_code, aadhar_card, gst_in, pan_card, terms,
			date, time, invoice_number, order_number, code, product_id, opentag_id, metal,
			product_name, metal_type, design_name, purity, pricing, category, sub_category,
			invoice, sale_status, remarks, product_image, gross_weight, stone_weight,
			weight_bw, stone_price, va_on, va_percent, wastage_weight, total_weight_av, mc_on,
			mc_per_gram, making_charges, disscount_percentage, disscount, festival_discount,
			rate, rate_24k, pieace_cost, mrp_price, rate_amt, tax_percent, tax_amt,
			total_price, hm_charges, qty, cash_amount, card_amt, chq_amt, online_amt,
			transaction_status, taxable_amount, tax_amount, net_amount, old_exchange_amt,
			scheme_amt, sale_return_amt, receipts_amt, bal_after_receipts, bal_amt,
			net_bill_amount, paid_amt)
		VALUES (COALESCE(NULLIF($1, 0), nextval(pg_get_serial_sequence('sale_details','id'))),
			$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
			$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,$36,$37,$38,$39,$40,
			$41,$42,$43,$44,$45,$46,$47,$48,$49,$50,$51,$52,$53,$54,$55,$56,$57,$58,$59,$60,
			$61,$62,$63,$64,$65,$66,$67,$68,$69,$70,$71,$72,$73,$74)`,
		l.ID, l.CustomerID, l.Mobile, l.AccountName, l.Email, l.Address1,
		l.Address2, l.City, l.Pincode, l.State, l.StateCode, l.AadharCard, l.GstIn, l.PanCard,
		l.Terms, l.Date, l.Time, l.InvoiceNo, l.OrderNo, l.Code, l.ProductID, l.OpentagID,
		l.Metal, l.ProductName, l.MetalType, l.DesignName, l.Purity, l.Pricing, l.Category,
		l.SubCategory, l.Invoice, l.SaleStatus, l.Remarks, l.ProductImg, l.GrossWeight,
		l.StoneWeight, l.WeightBW, l.StonePrice, l.VAOn, l.VAPercent, l.WastageWeight,
		l.TotalWeightAV, l.MCOn, l.MCPerGram, l.MakingCharges, l.DiscountPct, l.Discount,
		l.FestivalDisc, l.Rate, l.Rate24K, l.PieceCost, l.MRPPrice, l.RateAmt, l.TaxPercent,
		l.TaxAmt, l.TotalPrice, l.HMCharges, l.Qty, l.CashAmount, l.CardAmt, l.ChqAmt,
		l.OnlineAmt, l.TransactionStatus, l.TaxableAmount, l.TaxAmount, l.NetAmount,
		l.OldExchangeAmt, l.SchemeAmt, l.SaleReturnAmt, l.ReceiptsAmt, l.BalAfterReceipts,
		l.BalAmt, l.NetBillAmount, l.PaidAmt)
	if err != nil {
		return fmt.Errorf("insert sale line: %w", err)
	}
	return nil
}

func updateSaleLineTx(ctx context.Context, tx pgx.Tx, l SaleLine) error {
	_, err := tx.Exec(ctx, `
		UPDATE sale_details SET
			customer_id = $1, mobile = $2, account_name = $3, email = $4, address1 = $5,
			address2 = $6, city = $7, pincode = $8, state = $9, state_code = $10,
			aadhar_card = $11, gst_in = $12, pan_card = $13, terms = $14, date = $15,
			time = $16, invoice_number = $17, order_number = $18, code = $19, product_id = $20,
			opentag_id = $21, metal = $22, product_name = $23, metal_type = $24,
			design_name = $25, purity = $26, pricing = $27, category = $28, sub_category = $29,
			invoice = $30, sale_status = $31, remarks = $32,
			product_image = COALESCE($33, product_image), gross_weight = $34,
			stone_weight = $35, weight_bw = $36, stone_price = $37, va_on = $38,
			va_percent = $39, wastage_weight = $40, total_weight_av = $41, mc_on = $42,
			mc_per_gram = $43, making_charges = $44, disscount_percentage = $45,
			disscount = $46, festival_discount = $47, rate = $48, rate_24k = $49,
			pieace_cost = $50, mrp_price = $51, rate_amt = $52, tax_percent = $53,
			tax_amt = $54, total_price = $55, hm_charges = $56, qty = $57, cash_amount = $58,
			card_amt = $59, chq_amt = $60, online_amt = $61, transaction_status = $62,
			taxable_amount = $63, tax_amount = $64, net_amount = $65, old_exchange_amt = $66,
			scheme_amt = $67, sale_return_amt = $68, receipts_amt = $69,
			bal_after_receipts = $70, bal_amt = $71, net_bill_amount = $72, paid_amt = $73
		WHERE id = $74`,
		l.CustomerID, l.Mobile, l.AccountName, l.Email, l.Address1,
		l.Address2, l.City, l.Pincode, l.State, l.StateCode,
		l.AadharCard, l.GstIn, l.PanCard, l.Terms, l.Date,
		l.Time, l.InvoiceNo, l.OrderNo, l.Code, l.ProductID,
		l.OpentagID, l.Metal, l.ProductName, l.MetalType,
		l.DesignName, l.Purity, l.Pricing, l.Category, l.SubCategory,
		l.Invoice, l.SaleStatus, l.Remarks, l.ProductImg, l.GrossWeight,
		l.StoneWeight, l.WeightBW, l.StonePrice, l.VAOn,
		l.VAPercent, l.WastageWeight, l.TotalWeightAV, l.MCOn,
		l.MCPerGram, l.MakingCharges, l.DiscountPct,
		l.Discount, l.FestivalDisc, l.Rate, l.Rate24K,
		l.PieceCost, l.MRPPrice, l.RateAmt, l.TaxPercent,
		l.TaxAmt, l.TotalPrice, l.HMCharges, l.Qty, l.CashAmount,
		l.CardAmt, l.ChqAmt, l.OnlineAmt, l.TransactionStatus,
		l.TaxableAmount, l.TaxAmount, l.NetAmount, l.OldExchangeAmt,
		l.SchemeAmt, l.SaleReturnAmt, l.ReceiptsAmt,
		l.BalAfterReceipts, l.BalAmt, l.NetBillAmount, l.PaidAmt,
		l.ID)
	if err != nil {
		return fmt.Errorf("update sale line %d: %w", l.ID, err)
	}
	return nil
}

func (s *SaleService) List(ctx context.Context) ([]SaleLine, error) {
	return s.querySaleLines(ctx, `SELECT `+saleColumns+` FROM sale_details ORDER BY id`)
}

// ListLatestPerInvoice returns the highest-id line per invoice number, the
// invoice register listing.
func (s *SaleService) ListLatestPerInvoice(ctx context.Context) ([]SaleLine, error) {
	return s.querySaleLines(ctx, `
		SELECT `+saleColumns+` FROM sale_details s1
		WHERE s1.id = (SELECT MAX(s2.id) FROM sale_details s2
			WHERE s2.invoice_number = s1.invoice_number)
		ORDER BY s1.id`)
}

func (s *SaleService) GetByInvoice(ctx context.Context, invoiceNumber string) ([]SaleLine, error) {
	lines, err := s.querySaleLines(ctx,
		`SELECT `+saleColumns+` FROM sale_details WHERE invoice_number = $1 ORDER BY id`,
		invoiceNumber)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, NotFound("invoice", invoiceNumber)
	}
	return lines, nil
}

func (s *SaleService) GetByOrder(ctx context.Context, orderNumber string) ([]SaleLine, error) {
	lines, err := s.querySaleLines(ctx,
		`SELECT `+saleColumns+` FROM sale_details WHERE order_number = $1 ORDER BY id`,
		orderNumber)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, NotFound("order", orderNumber)
	}
	return lines, nil
}

func (s *SaleService) querySaleLines(ctx context.Context, query string, args ...any) ([]SaleLine, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sale lines: %w", err)
	}
	defer rows.Close()

	var lines []SaleLine
	for rows.Next() {
		l, err := scanSaleLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *l)
	}
	return lines, rows.Err()
}

// ConvertOrder turns a persisted order into an invoice: the order lines are
// renumbered under the next invoice number and marked Converted, and a
// ConvertedInvoice clone of each line is inserted alongside.
func (s *SaleService) ConvertOrder(ctx context.Context, orderNumber string) (string, error) {
	if orderNumber == "" {
		return "", Invalid("order_number is required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin order conversion: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT `+saleColumns+` FROM sale_details WHERE order_number = $1`, orderNumber)
	if err != nil {
		return "", fmt.Errorf("load order %s: %w", orderNumber, err)
	}
	var orderLines []SaleLine
	for rows.Next() {
		l, err := scanSaleLine(rows)
		if err != nil {
			rows.Close()
			return "", err
		}
		orderLines = append(orderLines, *l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(orderLines) == 0 {
		return "", NotFound("order", orderNumber)
	}

	invRows, err := tx.Query(ctx,
		`SELECT invoice_number FROM sale_details WHERE invoice_number LIKE 'INV%'`)
	if err != nil {
		return "", fmt.Errorf("load invoice numbers: %w", err)
	}
	var codes []string
	for invRows.Next() {
		var code *string
		if err := invRows.Scan(&code); err != nil {
			invRows.Close()
			return "", err
		}
		if code != nil {
			codes = append(codes, *code)
		}
	}
	invRows.Close()
	if err := invRows.Err(); err != nil {
		return "", err
	}
	nextInvoice := nextFromExisting("INV", codes)

	_, err = tx.Exec(ctx, `
		UPDATE sale_details SET invoice_number = $1, invoice = 'Converted'
		WHERE order_number = $2`,
		nextInvoice, orderNumber)
	if err != nil {
		return "", fmt.Errorf("renumber order %s: %w", orderNumber, err)
	}

	for _, l := range orderLines {
		clone := l
		clone.ID = 0
		clone.InvoiceNo = nextInvoice
		clone.Invoice = "Converted"
		clone.TransactionStatus = StatusConvertedInvoice
		if err := insertSaleLineTx(ctx, tx, clone); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit order conversion: %w", err)
	}
	return nextInvoice, nil
}

// ConvertRepair bills a finished repair job: the next invoice number is
// minted, a single ConvertedRepairInvoice line carrying the repair total is
// written under it with the repair number as its order number, and the repair
// itself is handed back to the customer.
func (s *SaleService) ConvertRepair(ctx context.Context, repairID int) (string, error) {
	if repairID == 0 {
		return "", Invalid("repair_id is required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin repair conversion: %w", err)
	}
	defer tx.Rollback(ctx)

	rep, err := scanRepair(tx.QueryRow(ctx,
		`SELECT `+repairColumns+` FROM repairs WHERE repair_id = $1 FOR UPDATE`, repairID))
	if errors.Is(err, pgx.ErrNoRows) {
		return "", NotFound("repair", repairID)
	}
	if err != nil {
		return "", fmt.Errorf("load repair %d: %w", repairID, err)
	}
	if rep.Invoice == "Converted" {
		return "", Conflict("repair %d is already billed under invoice %s", repairID, rep.InvoiceNumber)
	}

	invRows, err := tx.Query(ctx,
		`SELECT invoice_number FROM sale_details WHERE invoice_number LIKE 'INV%'`)
	if err != nil {
		return "", fmt.Errorf("load invoice numbers: %w", err)
	}
	var codes []string
	for invRows.Next() {
		var code *string
		if err := invRows.Scan(&code); err != nil {
			invRows.Close()
			return "", err
		}
		if code != nil {
			codes = append(codes, *code)
		}
	}
	invRows.Close()
	if err := invRows.Err(); err != nil {
		return "", err
	}
	nextInvoice := nextFromExisting("INV", codes)

	line := SaleLine{
		CustomerID:        rep.CustomerID,
		Mobile:            rep.Mobile,
		AccountName:       rep.AccountName,
		Email:             rep.Email,
		Address1:          rep.Address1,
		Address2:          rep.Address2,
		City:              rep.City,
		Date:              rep.Date,
		Time:              time.Now().Format("15:04"),
		InvoiceNo:         nextInvoice,
		OrderNo:           rep.RepairNo,
		ProductName:       rep.Item,
		MetalType:         rep.MetalType,
		Purity:            rep.Purity,
		Category:          rep.Category,
		SubCategory:       rep.Item,
		Invoice:           "Converted",
		GrossWeight:       rep.GrossWeight,
		Qty:               decimal.NewFromInt(int64(rep.Pcs)),
		TotalPrice:        rep.Total,
		TransactionStatus: StatusConvertedRepairInvoice,
		NetAmount:         rep.Total,
		NetBillAmount:     rep.Total,
		BalAmt:            rep.Total,
	}
	if err := insertSaleLineTx(ctx, tx, line); err != nil {
		return "", err
	}

	_, err = tx.Exec(ctx, `
		UPDATE repairs SET invoice = 'Converted', status = $1, invoice_number = $2
		WHERE repair_id = $3`,
		RepairDeliveredToCustomer, nextInvoice, repairID)
	if err != nil {
		return "", fmt.Errorf("hand repair %d to customer: %w", repairID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit repair conversion: %w", err)
	}
	return nextInvoice, nil
}

func (s *SaleService) UpdateSaleStatus(ctx context.Context, id int, saleStatus string) error {
	if saleStatus == "" {
		return Invalid("sale_status is required")
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE sale_details SET sale_status = $1 WHERE id = $2`, saleStatus, id)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("sale line", id)
	}
	return nil
}

// DeleteByInvoice removes an invoice and its trade-in children. Deletion is
// permitted only when every line carries a deletable transaction status;
// "Sales" lines additionally give their quantities back to the product
// counters and flip their tags back to Available. All-or-nothing.
func (s *SaleService) DeleteByInvoice(ctx context.Context, invoiceNumber string) (int64, error) {
	if invoiceNumber == "" {
		return 0, Invalid("invoice number is required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin invoice delete: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT opentag_id, product_id, qty, gross_weight, transaction_status
		FROM sale_details WHERE invoice_number = $1 FOR UPDATE`, invoiceNumber)
	if err != nil {
		return 0, fmt.Errorf("load invoice %s: %w", invoiceNumber, err)
	}
	type lineRef struct {
		opentagID *int
		productID int
		qty       decimal.Decimal
		weight    decimal.Decimal
		status    TransactionStatus
	}
	var refs []lineRef
	for rows.Next() {
		var r lineRef
		if err := rows.Scan(&r.opentagID, &r.productID, &r.qty, &r.weight, &r.status); err != nil {
			rows.Close()
			return 0, err
		}
		refs = append(refs, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(refs) == 0 {
		return 0, NotFound("invoice", invoiceNumber)
	}

	statuses := make([]TransactionStatus, len(refs))
	for i, r := range refs {
		statuses[i] = r.status
	}
	if !InvoiceDeletable(statuses) {
		blocking := refs[0].status
		for _, r := range refs {
			if !deletableStatuses[r.status] {
				blocking = r.status
				break
			}
		}
		return 0, Conflict("cannot delete invoice with transaction status: %s", blocking)
	}

	for _, r := range refs {
		if r.status != StatusSales {
			continue
		}
		if r.productID != 0 {
			_, err := tx.Exec(ctx, `
				UPDATE product SET
					sale_qty = COALESCE(sale_qty, 0) - $1,
					sale_weight = COALESCE(sale_weight, 0) - $2
				WHERE product_id = $3`,
				r.qty, r.weight, r.productID)
			if err != nil {
				return 0, fmt.Errorf("reverse sold counters: %w", err)
			}
			if err := recomputeProductBalanceTx(ctx, tx, r.productID); err != nil {
				return 0, err
			}
		}
		if r.opentagID != nil {
			if err := restoreTagTx(ctx, tx, *r.opentagID); err != nil {
				return 0, err
			}
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM old_items WHERE invoice_id = $1`, invoiceNumber); err != nil {
		return 0, fmt.Errorf("delete trade-in rows: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM sale_details
		WHERE invoice_number = $1 AND transaction_status = ANY($2)`,
		invoiceNumber, []string{string(StatusSales), string(StatusConvertedInvoice), string(StatusConvertedRepairInvoice)})
	if err != nil {
		return 0, fmt.Errorf("delete invoice %s: %w", invoiceNumber, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit invoice delete: %w", err)
	}
	return tag.RowsAffected(), nil
}
