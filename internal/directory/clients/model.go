package clients

import "github.com/invoiceforge/invoiceforge/internal/platform/store"

// Table is the remote storage table backing the client directory.
const Table = "clients"

// Client is a billable party. Invoices embed a copy of the record taken
// at submission time, so directory edits never alter saved invoices.
type Client struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	VAT     string `json:"vat,omitempty"`
}

// ClientInput carries the mutable fields of a client record. Updates are
// full overwrites, so the same shape serves create and update.
type ClientInput struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address string `json:"address,omitempty" validate:"omitempty,max=500"`
	VAT     string `json:"vat,omitempty" validate:"omitempty,max=50"`
}

func fromRecord(r store.Record) Client {
	return Client{
		ID:      r.String("id"),
		Name:    r.String("name"),
		Email:   r.String("email"),
		Phone:   r.String("phone"),
		Address: r.String("address"),
		VAT:     r.String("vat"),
	}
}

func (c Client) toRecord() store.Record {
	return store.Record{
		"id":      c.ID,
		"name":    c.Name,
		"email":   c.Email,
		"phone":   c.Phone,
		"address": c.Address,
		"vat":     c.VAT,
	}
}

func (in ClientInput) fields() store.Record {
	return store.Record{
		"name":    in.Name,
		"email":   in.Email,
		"phone":   in.Phone,
		"address": in.Address,
		"vat":     in.VAT,
	}
}
