package core

import "github.com/shopspring/decimal"

// InvoiceTotals are the invoice-level sums written identically onto every
// sale line of the invoice.
type InvoiceTotals struct {
	TotalAmount   decimal.Decimal
	DiscountAmt   decimal.Decimal
	FestivalDisc  decimal.Decimal
	TaxableAmount decimal.Decimal
	TaxAmount     decimal.Decimal
	NetAmount     decimal.Decimal
}

// computeInvoiceTotals sums pricing-mode-dependent line totals across the
// invoice. "By Weight" lines price as stone + making + rate + hallmark;
// anything else prices as piece cost times quantity. Discounts come off
// before tax goes on.
func computeInvoiceTotals(lines []SaleLine) InvoiceTotals {
	var t InvoiceTotals
	for _, l := range lines {
		var lineTotal decimal.Decimal
		if l.Pricing == "By Weight" {
			lineTotal = l.StonePrice.Add(l.MakingCharges).Add(l.RateAmt).Add(l.HMCharges)
		} else {
			lineTotal = l.PieceCost.Mul(l.Qty)
		}
		lineDiscount := l.Discount.Add(l.FestivalDisc)
		lineTaxable := lineTotal.Sub(lineDiscount)

		t.TotalAmount = t.TotalAmount.Add(lineTotal)
		t.DiscountAmt = t.DiscountAmt.Add(l.Discount)
		t.FestivalDisc = t.FestivalDisc.Add(l.FestivalDisc)
		t.TaxableAmount = t.TaxableAmount.Add(lineTaxable)
		t.TaxAmount = t.TaxAmount.Add(l.TaxAmt)
		t.NetAmount = t.NetAmount.Add(lineTaxable).Add(l.TaxAmt)
	}
	return t
}

// linePaidAmt sums the four tender columns of a line.
func linePaidAmt(l SaleLine) decimal.Decimal {
	return l.CashAmount.Add(l.CardAmt).Add(l.ChqAmt).Add(l.OnlineAmt)
}

// netBillAmount nets trade-ins, scheme redemptions and an external sales
// credit off the invoice net amount, rounded to the rupee.
func netBillAmount(net, oldItemTotal, schemeTotal, salesNetAmount decimal.Decimal) decimal.Decimal {
	return net.Sub(oldItemTotal.Add(schemeTotal).Add(salesNetAmount)).Round(0)
}

// sumOldItems totals the trade-in rows of a save.
func sumOldItems(items []OldItem) decimal.Decimal {
	var sum decimal.Decimal
	for _, it := range items {
		sum = sum.Add(it.TotalAmount)
	}
	return sum
}

// sumSchemePayments totals the scheme redemptions of a save.
func sumSchemePayments(schemes []MemberScheme) decimal.Decimal {
	var sum decimal.Decimal
	for _, sc := range schemes {
		sum = sum.Add(sc.PaidAmount)
	}
	return sum
}
