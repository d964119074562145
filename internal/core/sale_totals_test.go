package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeInvoiceTotals_ByWeight(t *testing.T) {
	lines := []SaleLine{{
		Pricing:       "By Weight",
		StonePrice:    dec("500"),
		MakingCharges: dec("1200"),
		RateAmt:       dec("45000"),
		HMCharges:     dec("45"),
		Discount:      dec("500"),
		FestivalDisc:  dec("245"),
		TaxAmt:        dec("1380"),
	}}

	got := computeInvoiceTotals(lines)

	if !got.TotalAmount.Equal(dec("46745")) {
		t.Errorf("TotalAmount = %s, want 46745", got.TotalAmount)
	}
	if !got.TaxableAmount.Equal(dec("46000")) {
		t.Errorf("TaxableAmount = %s, want 46000", got.TaxableAmount)
	}
	if !got.NetAmount.Equal(dec("47380")) {
		t.Errorf("NetAmount = %s, want 47380", got.NetAmount)
	}
}

func TestComputeInvoiceTotals_ByPiece(t *testing.T) {
	lines := []SaleLine{{
		Pricing:   "By fixed",
		PieceCost: dec("1500"),
		Qty:       dec("3"),
		TaxAmt:    dec("135"),
	}}

	got := computeInvoiceTotals(lines)

	if !got.TotalAmount.Equal(dec("4500")) {
		t.Errorf("TotalAmount = %s, want 4500", got.TotalAmount)
	}
	if !got.TaxableAmount.Equal(dec("4500")) {
		t.Errorf("TaxableAmount = %s, want 4500", got.TaxableAmount)
	}
	if !got.NetAmount.Equal(dec("4635")) {
		t.Errorf("NetAmount = %s, want 4635", got.NetAmount)
	}
}

func TestComputeInvoiceTotals_MixedLines(t *testing.T) {
	lines := []SaleLine{
		{Pricing: "By Weight", RateAmt: dec("10000"), TaxAmt: dec("300"), Discount: dec("100")},
		{Pricing: "By fixed", PieceCost: dec("250"), Qty: dec("2"), TaxAmt: dec("15")},
	}

	got := computeInvoiceTotals(lines)

	if !got.TaxableAmount.Equal(dec("10400")) {
		t.Errorf("TaxableAmount = %s, want 10400", got.TaxableAmount)
	}
	if !got.NetAmount.Equal(dec("10715")) {
		t.Errorf("NetAmount = %s, want 10715", got.NetAmount)
	}
}

func TestNetBillAmountRounding(t *testing.T) {
	got := netBillAmount(dec("1000.60"), dec("200"), dec("100"), dec("0"))
	if !got.Equal(dec("701")) {
		t.Errorf("netBillAmount = %s, want 701", got)
	}
	got = netBillAmount(dec("1000.40"), dec("0"), dec("0"), dec("0"))
	if !got.Equal(dec("1000")) {
		t.Errorf("netBillAmount = %s, want 1000", got)
	}
}

func TestLinePaidAmt(t *testing.T) {
	l := SaleLine{
		CashAmount: dec("100"),
		CardAmt:    dec("200"),
		ChqAmt:     dec("50"),
		OnlineAmt:  dec("25.50"),
	}
	if got := linePaidAmt(l); !got.Equal(dec("375.50")) {
		t.Errorf("linePaidAmt = %s, want 375.50", got)
	}
}

func TestInvoiceDeletable(t *testing.T) {
	if !InvoiceDeletable([]TransactionStatus{StatusSales, StatusConvertedInvoice}) {
		t.Error("Sales + ConvertedInvoice should be deletable")
	}
	if InvoiceDeletable([]TransactionStatus{StatusSales, "Assign to Workshop"}) {
		t.Error("workshop lines must block deletion")
	}
	if InvoiceDeletable(nil) {
		t.Error("empty invoice is not deletable")
	}
}
