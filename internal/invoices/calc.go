package invoices

import "github.com/shopspring/decimal"

// Totals are the derived invoice-level amounts.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
}

// CalculateTotals derives invoice totals from the item list and a tax
// rate percentage. It is the single totals path in the application:
// submission, preview, PDF export, share and archival all go through it.
//
// Decimal arithmetic keeps accumulation exact; rounding to the 2-decimal
// display precision happens here and nowhere else. The sum is commutative
// and the function is idempotent, so recomputing on unchanged input
// yields identical results. Inputs are trusted to be well formed
// (quantity >= 1, rate >= 0 enforced at the DTO boundary); an empty item
// list yields all zeros.
func CalculateTotals(items []LineItem, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Total())
	}
	subtotal = subtotal.Round(2)
	taxAmount := subtotal.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: taxAmount,
		Total:     subtotal.Add(taxAmount),
	}
}
