package invoices

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemInput is one item row as submitted by the form.
type LineItemInput struct {
	ID          string  `json:"id,omitempty"`
	Description string  `json:"description"`
	Quantity    int64   `json:"quantity" validate:"required,gte=1"`
	Rate        float64 `json:"rate" validate:"gte=0"`
}

// SubmitRequest carries a draft submission. The company and client are
// referenced by id; their snapshots are taken server-side at submission
// time so the invoice never holds a live directory reference.
type SubmitRequest struct {
	ID            string          `json:"id,omitempty"`
	InvoiceNumber string          `json:"invoice_number" validate:"required,max=50"`
	Date          string          `json:"date" validate:"required,datetime=2006-01-02"`
	DueDate       string          `json:"due_date" validate:"required,datetime=2006-01-02"`
	Currency      string          `json:"currency" validate:"required,oneof=USD EUR GBP PKR"`
	TaxRate       float64         `json:"tax_rate" validate:"gte=0,lte=100"`
	CompanyID     string          `json:"company_id" validate:"required"`
	ClientID      string          `json:"client_id" validate:"required"`
	Items         []LineItemInput `json:"items" validate:"required,min=1,dive"`
	Notes         string          `json:"notes,omitempty"`
}

// items converts the submitted rows into domain line items, assigning ids
// to rows that do not carry one yet.
func (r SubmitRequest) items() []LineItem {
	out := make([]LineItem, len(r.Items))
	for i, in := range r.Items {
		id := in.ID
		if id == "" {
			id = uuid.NewString()
		}
		out[i] = LineItem{
			ID:          id,
			Description: in.Description,
			Quantity:    in.Quantity,
			Rate:        decimal.NewFromFloat(in.Rate).Round(2),
		}
	}
	return out
}

// ListResponse is the paginated history view.
type ListResponse struct {
	Invoices   []Invoice `json:"invoices"`
	Page       int       `json:"page"`
	PerPage    int       `json:"per_page"`
	Total      int       `json:"total"`
	TotalPages int       `json:"total_pages"`
}
