package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product carries the cumulative stock counters maintained by the purchase and
// sale ledgers. Balance columns are recomputed as purchased minus sold after
// every counter mutation, never adjusted by delta alone.
type Product struct {
	ProductID     int             `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Rbarcode      string          `json:"rbarcode"`
	Category      string          `json:"category"`
	Purity        string          `json:"purity"`
	HSNCode       string          `json:"hsn_code"`
	PurQty        decimal.Decimal `json:"pur_qty"`
	PurWeight     decimal.Decimal `json:"pur_weight"`
	SaleQty       decimal.Decimal `json:"sale_qty"`
	SaleWeight    decimal.Decimal `json:"sale_weight"`
	SaleRetQty    decimal.Decimal `json:"sale_ret_qty"`
	SaleRetWeight decimal.Decimal `json:"sale_ret_weight"`
	BalQty        decimal.Decimal `json:"bal_qty"`
	BalWeight     decimal.Decimal `json:"bal_weight"`
}

// OpeningTag is one physical inventory piece. A batch entry of N pieces is
// stored as N rows with pcs=1 and consecutive barcodes under one prefix.
type OpeningTag struct {
	OpentagID     int             `json:"opentag_id"`
	TagID         string          `json:"tag_id"`
	ProductID     int             `json:"product_id"`
	SubcategoryID *int            `json:"subcategory_id,omitempty"`
	SubCategory   string          `json:"sub_category"`
	AccountName   string          `json:"account_name"`
	Invoice       string          `json:"invoice"`
	Pricing       string          `json:"Pricing"`
	Prefix        string          `json:"Prefix"`
	Category      string          `json:"category"`
	Purity        string          `json:"Purity"`
	MetalType     string          `json:"metal_type"`
	PCodeBarCode  string          `json:"PCode_BarCode"`
	GrossWeight   decimal.Decimal `json:"Gross_Weight"`
	StonesWeight  decimal.Decimal `json:"Stones_Weight"`
	StonesPrice   decimal.Decimal `json:"Stones_Price"`
	WastageOn     string          `json:"Wastage_On"`
	WastagePct    decimal.Decimal `json:"Wastage_Percentage"`
	WastageWeight decimal.Decimal `json:"WastageWeight"`
	WeightBW      decimal.Decimal `json:"Weight_BW"`
	MakingOn      string          `json:"Making_Charges_On"`
	MCPerGram     decimal.Decimal `json:"MC_Per_Gram"`
	MakingCharges decimal.Decimal `json:"Making_Charges"`
	TotalWeightAW decimal.Decimal `json:"TotalWeight_AW"`
	Status        TagStatus       `json:"Status"`
	Source        string          `json:"Source"`
	StockPoint    string          `json:"Stock_Point"`
	PieceCost     decimal.Decimal `json:"pieace_cost"`
	ProductName   string          `json:"product_Name"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	Pcs           int             `json:"pcs"`
	TaxPercent    decimal.Decimal `json:"tax_percent"`
	MRPPrice      decimal.Decimal `json:"mrp_price"`
	ProductImage  *string         `json:"product_image,omitempty"`
	AddedAt       time.Time       `json:"added_at"`
}

// TagBalance is one row of updated_values_table: the running piece/weight
// balance per (product_id, tag_id), debited by tag creation and credited back
// on tag deletion.
type TagBalance struct {
	ID             int             `json:"id"`
	ProductID      int             `json:"product_id"`
	TagID          string          `json:"tag_id"`
	Pcs            decimal.Decimal `json:"pcs"`
	GrossWeight    decimal.Decimal `json:"gross_weight"`
	BalPcs         decimal.Decimal `json:"bal_pcs"`
	BalGrossWeight decimal.Decimal `json:"bal_gross_weight"`
}

// Purchase is one purchase line, grouped by invoice. The overall_* fields are
// invoice-level aggregates denormalized onto every line of the invoice.
type Purchase struct {
	ID              int             `json:"id"`
	CustomerID      *int            `json:"customer_id,omitempty"`
	Mobile          string          `json:"mobile"`
	AccountName     string          `json:"account_name"`
	GstIn           string          `json:"gst_in"`
	Terms           string          `json:"terms"`
	Invoice         string          `json:"invoice"`
	BillNo          string          `json:"bill_no"`
	Date            *time.Time      `json:"date,omitempty"`
	BillDate        *time.Time      `json:"bill_date,omitempty"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	Pricing         string          `json:"Pricing"`
	ProductID       int             `json:"product_id"`
	TagID           string          `json:"tag_id"`
	Category        string          `json:"category"`
	MetalType       string          `json:"metal_type"`
	Rbarcode        string          `json:"rbarcode"`
	HSNCode         string          `json:"hsn_code"`
	Pcs             decimal.Decimal `json:"pcs"`
	GrossWeight     decimal.Decimal `json:"gross_weight"`
	StoneWeight     decimal.Decimal `json:"stone_weight"`
	DeductStWt      decimal.Decimal `json:"deduct_st_Wt"`
	NetWeight       decimal.Decimal `json:"net_weight"`
	Purity          string          `json:"purity"`
	PurityPct       decimal.Decimal `json:"purityPercentage"`
	PureWeight      decimal.Decimal `json:"pure_weight"`
	WastageOn       string          `json:"wastage_on"`
	Wastage         decimal.Decimal `json:"wastage"`
	WastageWt       decimal.Decimal `json:"wastage_wt"`
	MakingOn        string          `json:"Making_Charges_On"`
	MakingValue     decimal.Decimal `json:"Making_Charges_Value"`
	TotalMC         decimal.Decimal `json:"total_mc"`
	TotalPureWt     decimal.Decimal `json:"total_pure_wt"`
	PaidPureWeight  decimal.Decimal `json:"paid_pure_weight"`
	BalPureWeight   decimal.Decimal `json:"balance_pure_weight"`
	Rate            decimal.Decimal `json:"rate"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TaxSlab         *string         `json:"tax_slab,omitempty"`
	TaxAmt          decimal.Decimal `json:"tax_amt"`
	NetAmt          decimal.Decimal `json:"net_amt"`
	RateCut         decimal.Decimal `json:"rate_cut"`
	RateCutWt       decimal.Decimal `json:"rate_cut_wt"`
	RateCutAmt      decimal.Decimal `json:"rate_cut_amt"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	BalanceAmount   decimal.Decimal `json:"balance_amount"`
	HMCharges       decimal.Decimal `json:"hm_charges"`
	OtherCharges    decimal.Decimal `json:"other_charges"`
	Charges         decimal.Decimal `json:"charges"`
	Remarks         string          `json:"remarks"`
	StonePrice      decimal.Decimal `json:"stone_price"`
	FinalStoneAmt   decimal.Decimal `json:"final_stone_amount"`
	BalAfterReceipt decimal.Decimal `json:"balance_after_receipt"`
	BalWtAfterPay   decimal.Decimal `json:"balWt_after_payment"`
	PaidWt          decimal.Decimal `json:"paid_wt"`
	PaidBy          string          `json:"paid_by"`
	BalWtAmt        decimal.Decimal `json:"bal_wt_amt"`
	DiscountAmt     decimal.Decimal `json:"discount_amt"`
	FinalAmt        decimal.Decimal `json:"final_amt"`
	ClaimRemark     string          `json:"claim_remark"`
	OverallTaxable  decimal.Decimal `json:"overall_taxableAmt"`
	OverallTax      decimal.Decimal `json:"overall_taxAmt"`
	OverallNet      decimal.Decimal `json:"overall_netAmt"`
	OverallHM       decimal.Decimal `json:"overall_hmCharges"`
	StoneDetails    []StoneDetail   `json:"stoneDetails,omitempty"`
}

// StoneDetail is a child row of a purchase line.
type StoneDetail struct {
	ID         int             `json:"id"`
	PurchaseID int             `json:"purchase_id"`
	StoneName  string          `json:"stoneName"`
	Cut        string          `json:"cut"`
	Color      string          `json:"color"`
	Clarity    string          `json:"clarity"`
	StoneWt    decimal.Decimal `json:"stoneWt"`
	CaratWt    decimal.Decimal `json:"caratWt"`
	StonePrice decimal.Decimal `json:"stonePrice"`
	Amount     decimal.Decimal `json:"amount"`
}

// RateCut tracks settlement of a purchase's rate-cut obligation in parallel
// weight and amount terms. Invariants after every payment:
//
//	bal_wt         = rate_cut_wt  - paid_wt
//	balance_amount = rate_cut_amt - paid_amount
type RateCut struct {
	RateCutID     int             `json:"rate_cut_id"`
	PurchaseID    int             `json:"purchase_id"`
	Invoice       string          `json:"invoice"`
	Category      string          `json:"category"`
	TotalPureWt   decimal.Decimal `json:"total_pure_wt"`
	RateCutWt     decimal.Decimal `json:"rate_cut_wt"`
	RateCut       decimal.Decimal `json:"rate_cut"`
	RateCutAmt    decimal.Decimal `json:"rate_cut_amt"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	PaidWt        decimal.Decimal `json:"paid_wt"`
	BalWt         decimal.Decimal `json:"bal_wt"`
	PaidBy        string          `json:"paid_by"`
}

// PurchasePayment is a settlement recorded against a rate-cut.
type PurchasePayment struct {
	ID           int             `json:"id"`
	Date         string          `json:"date"`
	Mode         string          `json:"mode"`
	ChequeNumber *string         `json:"cheque_number,omitempty"`
	PaymentNo    string          `json:"payment_no"`
	AccountName  string          `json:"account_name"`
	Invoice      string          `json:"invoice"`
	Category     string          `json:"category"`
	RateCut      decimal.Decimal `json:"rate_cut"`
	TotalWt      decimal.Decimal `json:"total_wt"`
	PaidWt       decimal.Decimal `json:"paid_wt"`
	BalWt        decimal.Decimal `json:"bal_wt"`
	TotalAmt     decimal.Decimal `json:"total_amt"`
	PaidAmt      decimal.Decimal `json:"paid_amt"`
	BalAmt       decimal.Decimal `json:"bal_amt"`
	PaidBy       string          `json:"paid_by"`
	Remarks      string          `json:"remarks"`
	RateCutID    int             `json:"rate_cut_id"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SaleLine is one row of sale_details. Invoice-level aggregates
// (taxable_amount through paid_amt) are recomputed on every save and written
// identically to all lines of the invoice.
type SaleLine struct {
	ID          int     `json:"id"`
	CustomerID  *int    `json:"customer_id,omitempty"`
	Mobile      string  `json:"mobile"`
	AccountName string  `json:"account_name"`
	Email       string  `json:"email"`
	Address1    string  `json:"address1"`
	Address2    string  `json:"address2"`
	City        string  `json:"city"`
	Pincode     string  `json:"pincode"`
	State       string  `json:"state"`
	StateCode   string  `json:"state_code"`
	AadharCard  string  `json:"aadhar_card"`
	GstIn       string  `json:"gst_in"`
	PanCard     string  `json:"pan_card"`
	Terms       string  `json:"terms"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	InvoiceNo   string  `json:"invoice_number"`
	OrderNo     string  `json:"order_number"`
	Code        string  `json:"code"`
	ProductID   int     `json:"product_id"`
	OpentagID   *int    `json:"opentag_id,omitempty"`
	Metal       string  `json:"metal"`
	ProductName string  `json:"product_name"`
	MetalType   string  `json:"metal_type"`
	DesignName  string  `json:"design_name"`
	Purity      string  `json:"purity"`
	Pricing     string  `json:"pricing"`
	Category    string  `json:"category"`
	SubCategory string  `json:"sub_category"`
	Invoice     string  `json:"invoice"`
	SaleStatus  string  `json:"sale_status"`
	Remarks     string  `json:"remarks"`
	ProductImg  *string `json:"product_image,omitempty"`

	GrossWeight   decimal.Decimal `json:"gross_weight"`
	StoneWeight   decimal.Decimal `json:"stone_weight"`
	WeightBW      decimal.Decimal `json:"weight_bw"`
	StonePrice    decimal.Decimal `json:"stone_price"`
	VAOn          string          `json:"va_on"`
	VAPercent     decimal.Decimal `json:"va_percent"`
	WastageWeight decimal.Decimal `json:"wastage_weight"`
	TotalWeightAV decimal.Decimal `json:"total_weight_av"`
	MCOn          string          `json:"mc_on"`
	MCPerGram     decimal.Decimal `json:"mc_per_gram"`
	MakingCharges decimal.Decimal `json:"making_charges"`
	DiscountPct   decimal.Decimal `json:"disscount_percentage"`
	Discount      decimal.Decimal `json:"disscount"`
	FestivalDisc  decimal.Decimal `json:"festival_discount"`
	Rate          decimal.Decimal `json:"rate"`
	Rate24K       decimal.Decimal `json:"rate_24k"`
	PieceCost     decimal.Decimal `json:"pieace_cost"`
	MRPPrice      decimal.Decimal `json:"mrp_price"`
	RateAmt       decimal.Decimal `json:"rate_amt"`
	TaxPercent    decimal.Decimal `json:"tax_percent"`
	TaxAmt        decimal.Decimal `json:"tax_amt"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	HMCharges     decimal.Decimal `json:"hm_charges"`
	Qty           decimal.Decimal `json:"qty"`

	CashAmount decimal.Decimal `json:"cash_amount"`
	CardAmt    decimal.Decimal `json:"card_amt"`
	ChqAmt     decimal.Decimal `json:"chq_amt"`
	OnlineAmt  decimal.Decimal `json:"online_amt"`

	TransactionStatus TransactionStatus `json:"transaction_status"`

	TaxableAmount    decimal.Decimal `json:"taxable_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	OldExchangeAmt   decimal.Decimal `json:"old_exchange_amt"`
	SchemeAmt        decimal.Decimal `json:"scheme_amt"`
	SaleReturnAmt    decimal.Decimal `json:"sale_return_amt"`
	ReceiptsAmt      decimal.Decimal `json:"receipts_amt"`
	BalAfterReceipts decimal.Decimal `json:"bal_after_receipts"`
	BalAmt           decimal.Decimal `json:"bal_amt"`
	NetBillAmount    decimal.Decimal `json:"net_bill_amount"`
	PaidAmt          decimal.Decimal `json:"paid_amt"`
}

// OldItem is a trade-in row attached to a sale invoice.
type OldItem struct {
	ID             int             `json:"id"`
	InvoiceID      string          `json:"invoice_id"`
	Product        string          `json:"product"`
	Metal          string          `json:"metal"`
	Purity         string          `json:"purity"`
	HSNCode        string          `json:"hsn_code"`
	Gross          decimal.Decimal `json:"gross"`
	Dust           decimal.Decimal `json:"dust"`
	MLPercent      decimal.Decimal `json:"ml_percent"`
	NetWt          decimal.Decimal `json:"net_wt"`
	Remarks        string          `json:"remarks"`
	Rate           decimal.Decimal `json:"rate"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalOldAmount decimal.Decimal `json:"total_old_amount"`
}

// MemberScheme is a savings-scheme redemption applied to a sale invoice.
type MemberScheme struct {
	ID               int             `json:"id"`
	InvoiceID        string          `json:"invoice_id"`
	Scheme           string          `json:"scheme"`
	MemberName       string          `json:"member_name"`
	MemberNumber     string          `json:"member_number"`
	SchemeName       string          `json:"scheme_name"`
	InstallmentsPaid int             `json:"installments_paid"`
	DurationMonths   int             `json:"duration_months"`
	PaidMonths       int             `json:"paid_months"`
	PendingMonths    int             `json:"pending_months"`
	PendingAmount    decimal.Decimal `json:"pending_amount"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	SchemesTotal     decimal.Decimal `json:"schemes_total_amount"`
}

// Receipt is a payment recorded against a sale invoice or order. Its
// discount_amt is the amount applied to the invoice's receipts_amt running
// total.
type Receipt struct {
	ID              int             `json:"id"`
	TransactionType string          `json:"transaction_type"`
	Date            string          `json:"date"`
	Mode            *string         `json:"mode,omitempty"`
	ChequeNumber    *string         `json:"cheque_number,omitempty"`
	ReceiptNo       string          `json:"receipt_no"`
	AccountName     string          `json:"account_name"`
	InvoiceNumber   string          `json:"invoice_number"`
	TotalAmt        decimal.Decimal `json:"total_amt"`
	DiscountAmt     decimal.Decimal `json:"discount_amt"`
	CashAmt         decimal.Decimal `json:"cash_amt"`
	Remarks         *string         `json:"remarks,omitempty"`
	TotalWt         decimal.Decimal `json:"total_wt"`
	PaidWt          decimal.Decimal `json:"paid_wt"`
	BalWt           decimal.Decimal `json:"bal_wt"`
	Category        *string         `json:"category,omitempty"`
	Mobile          *string         `json:"mobile,omitempty"`
}

// Repair is a customer repair job taken in at the counter. Its status
// participates in the sale deletion guard: lines tied to a repair still in the
// workshop cannot be deleted as invoices. Conversion to an invoice sets the
// invoice fields and hands the piece back to the customer.
type Repair struct {
	RepairID       int             `json:"repair_id"`
	CustomerID     *int            `json:"customer_id,omitempty"`
	AccountName    string          `json:"account_name"`
	Mobile         string          `json:"mobile"`
	Email          string          `json:"email"`
	Address1       string          `json:"address1"`
	Address2       string          `json:"address2"`
	Address3       string          `json:"address3"`
	City           string          `json:"city"`
	Staff          string          `json:"staff"`
	DeliveryDate   string          `json:"delivery_date"`
	Place          string          `json:"place"`
	Metal          string          `json:"metal"`
	Counter        string          `json:"counter"`
	EntryType      string          `json:"entry_type"`
	RepairNo       string          `json:"repair_no"`
	Date           string          `json:"date"`
	MetalType      string          `json:"metal_type"`
	Item           string          `json:"item"`
	TagNo          string          `json:"tag_no"`
	Description    string          `json:"description"`
	Purity         string          `json:"purity"`
	Category       string          `json:"category"`
	SubCategory    string          `json:"sub_category"`
	GrossWeight    decimal.Decimal `json:"gross_weight"`
	Pcs            int             `json:"pcs"`
	EstimatedDust  decimal.Decimal `json:"estimated_dust"`
	EstimatedAmt   decimal.Decimal `json:"estimated_amt"`
	ExtraWeight    decimal.Decimal `json:"extra_weight"`
	StoneValue     decimal.Decimal `json:"stone_value"`
	MakingCharge   decimal.Decimal `json:"making_charge"`
	HandlingCharge decimal.Decimal `json:"handling_charge"`
	Total          decimal.Decimal `json:"total"`
	Status         string          `json:"status"`
	Image          *string         `json:"image,omitempty"`
	Invoice        string          `json:"invoice"`
	InvoiceNumber  string          `json:"invoice_number"`
}

// AssignedRepairDetail is a workshop work item under a repair.
type AssignedRepairDetail struct {
	ID       int             `json:"id"`
	RepairID int             `json:"repair_id"`
	ItemName string          `json:"item_name"`
	Purity   string          `json:"purity"`
	Qty      decimal.Decimal `json:"qty"`
	Weight   decimal.Decimal `json:"weight"`
	RateType string          `json:"rate_type"`
	Rate     decimal.Decimal `json:"rate"`
	Amount   decimal.Decimal `json:"amount"`
}

// URDPurchase is one line of a used-gold purchase.
type URDPurchase struct {
	ID           int             `json:"id"`
	CustomerID   *int            `json:"customer_id,omitempty"`
	AccountName  string          `json:"account_name"`
	Mobile       string          `json:"mobile"`
	Date         string          `json:"date"`
	URDNumber    string          `json:"urdpurchase_number"`
	ProductID    int             `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Metal        string          `json:"metal"`
	Purity       string          `json:"purity"`
	HSNCode      string          `json:"hsn_code"`
	Gross        decimal.Decimal `json:"gross"`
	Dust         decimal.Decimal `json:"dust"`
	TouchPercent decimal.Decimal `json:"touch_percent"`
	MLPercent    decimal.Decimal `json:"ml_percent"`
	EqtWt        decimal.Decimal `json:"eqt_wt"`
	Remarks      string          `json:"remarks"`
	Rate         decimal.Decimal `json:"rate"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// Account is a party record (customer, supplier, expense head) in
// account_details.
type Account struct {
	AccountID    int    `json:"account_id"`
	AccountName  string `json:"account_name"`
	Mobile       string `json:"mobile"`
	Email        string `json:"email"`
	Address1     string `json:"address1"`
	Address2     string `json:"address2"`
	City         string `json:"city"`
	Pincode      string `json:"pincode"`
	State        string `json:"state"`
	StateCode    string `json:"state_code"`
	AadharCard   string `json:"aadhar_card"`
	GstIn        string `json:"gst_in"`
	PanCard      string `json:"pan_card"`
	AccountGroup string `json:"account_group"`
}

// MetalRates is one published rate snapshot. current_rates holds a single row
// mirroring the latest snapshot.
type MetalRates struct {
	ID         int             `json:"id"`
	RateDate   string          `json:"rate_date"`
	RateTime   string          `json:"rate_time"`
	Rate16Crt  decimal.Decimal `json:"rate_16crt"`
	Rate18Crt  decimal.Decimal `json:"rate_18crt"`
	Rate22Crt  decimal.Decimal `json:"rate_22crt"`
	Rate24Crt  decimal.Decimal `json:"rate_24crt"`
	SilverRate decimal.Decimal `json:"silver_rate"`
}

// User is a back-office login.
type User struct {
	ID           int       `json:"id"`
	UserName     string    `json:"user_name"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// MenuPermission is the per-menu grant set of a user type.
type MenuPermission struct {
	Add    bool `json:"add"`
	Modify bool `json:"modify"`
	Delete bool `json:"delete"`
	View   bool `json:"view"`
	Print  bool `json:"print"`
}

// UserType is a named role whose permissions live in userrolepermissions.
type UserType struct {
	ID       int    `json:"id"`
	UserType string `json:"user_type"`
}

// StockRegisterRow is one line of the stock register report: a tag joined
// with its product's running balances.
type StockRegisterRow struct {
	PCodeBarCode string          `json:"PCode_BarCode"`
	TagID        string          `json:"tag_id"`
	ProductName  string          `json:"product_name"`
	Category     string          `json:"category"`
	Purity       string          `json:"purity"`
	MetalType    string          `json:"metal_type"`
	GrossWeight  decimal.Decimal `json:"gross_weight"`
	Status       TagStatus       `json:"status"`
	BalQty       decimal.Decimal `json:"bal_qty"`
	BalWeight    decimal.Decimal `json:"bal_weight"`
}
