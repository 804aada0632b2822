package invoices

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invoiceforge/invoiceforge/internal/directory/clients"
	"github.com/invoiceforge/invoiceforge/internal/directory/companies"
)

// Status is the business status of an invoice, distinct from the edit
// state of the draft editor.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusSent    Status = "sent"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// DateLayout is the wire format for invoice dates.
const DateLayout = "2006-01-02"

// CurrencyOption pairs a supported ISO-4217 code with its display symbol.
type CurrencyOption struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Symbol string `json:"symbol"`
}

// Currencies is the fixed supported set.
var Currencies = []CurrencyOption{
	{Code: "USD", Label: "USD - US Dollar ($)", Symbol: "$"},
	{Code: "EUR", Label: "EUR - Euro (€)", Symbol: "€"},
	{Code: "GBP", Label: "GBP - British Pound (£)", Symbol: "£"},
	{Code: "PKR", Label: "PKR - Pakistani Rupee (₨)", Symbol: "₨"},
}

// CurrencySymbol returns the display symbol for a supported code,
// defaulting to the dollar sign.
func CurrencySymbol(code string) string {
	for _, opt := range Currencies {
		if opt.Code == code {
			return opt.Symbol
		}
	}
	return "$"
}

// LineItem is one row of an invoice. Its total is always derived from
// quantity and rate; it is never stored independently.
type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

// Total returns quantity × rate at display precision.
func (li LineItem) Total() decimal.Decimal {
	return li.Rate.Mul(decimal.NewFromInt(li.Quantity)).Round(2)
}

// Invoice is a saved invoice. Client and Company are owned snapshots
// copied at submission time, immune to later directory edits. Subtotal,
// TaxAmount and Total are derived by the totals calculator and refreshed
// on every save.
type Invoice struct {
	ID            string            `json:"id"`
	InvoiceNumber string            `json:"invoice_number"`
	Date          string            `json:"date"`
	DueDate       string            `json:"due_date"`
	Status        Status            `json:"status"`
	Currency      string            `json:"currency"`
	TaxRate       decimal.Decimal   `json:"tax_rate"`
	Client        clients.Client    `json:"client"`
	Company       companies.Company `json:"company"`
	Items         []LineItem        `json:"items"`
	Notes         string            `json:"notes,omitempty"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	TaxAmount     decimal.Decimal   `json:"tax_amount"`
	Total         decimal.Decimal   `json:"total"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Clone returns a deep copy of the invoice. All embedded snapshot fields
// are value types; only the item slice needs copying.
func (inv Invoice) Clone() Invoice {
	out := inv
	out.Items = make([]LineItem, len(inv.Items))
	copy(out.Items, inv.Items)
	return out
}
