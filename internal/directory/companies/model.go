package companies

import "github.com/invoiceforge/invoiceforge/internal/platform/store"

// Table is the remote storage table backing the company directory.
const Table = "companies"

// Company is an issuing business. Invoices embed a copy of the record
// taken at submission time.
type Company struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Logo    string `json:"logo,omitempty"`
}

// CompanyInput carries the mutable fields of a company record. The logo
// is a data-URL encoded image, stored as text.
type CompanyInput struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Address string `json:"address,omitempty" validate:"omitempty,max=500"`
	Logo    string `json:"logo,omitempty" validate:"omitempty,max=1048576"`
}

func fromRecord(r store.Record) Company {
	return Company{
		ID:      r.String("id"),
		Name:    r.String("name"),
		Email:   r.String("email"),
		Address: r.String("address"),
		Logo:    r.String("logo"),
	}
}

func (c Company) toRecord() store.Record {
	return store.Record{
		"id":      c.ID,
		"name":    c.Name,
		"email":   c.Email,
		"address": c.Address,
		"logo":    c.Logo,
	}
}

func (in CompanyInput) fields() store.Record {
	return store.Record{
		"name":    in.Name,
		"email":   in.Email,
		"address": in.Address,
		"logo":    in.Logo,
	}
}
