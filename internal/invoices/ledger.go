package invoices

import (
	"strings"
	"sync"

	"github.com/invoiceforge/invoiceforge/internal/shared"
)

// Ledger owns the ordered list of saved invoices, most recent first.
// Saved invoices are session-local and authoritative here; remote
// archival is a best-effort copy that never feeds back into the list.
type Ledger struct {
	mu      sync.Mutex
	entries []Invoice
}

// NewLedger constructs an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Save stores an invoice. An existing entry with the same id is replaced
// in place, keeping its position; a new id is prepended.
func (l *Ledger) Save(inv Invoice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.entries {
		if existing.ID == inv.ID {
			l.entries[i] = inv.Clone()
			return
		}
	}
	l.entries = append([]Invoice{inv.Clone()}, l.entries...)
}

// Delete removes the entry matching id. Absent ids are a no-op.
func (l *Ledger) Delete(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.entries {
		if existing.ID == id {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return
		}
	}
}

// Get returns a copy of the entry matching id.
func (l *Ledger) Get(id string) (Invoice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.entries {
		if existing.ID == id {
			return existing.Clone(), true
		}
	}
	return Invoice{}, false
}

// Search returns the entries whose invoice number or client name contain
// the term, case-insensitively, in list order. An empty term matches
// everything.
func (l *Ledger) Search(term string) []Invoice {
	l.mu.Lock()
	defer l.mu.Unlock()
	term = strings.ToLower(term)
	out := make([]Invoice, 0, len(l.entries))
	for _, existing := range l.entries {
		if term == "" ||
			strings.Contains(strings.ToLower(existing.InvoiceNumber), term) ||
			strings.Contains(strings.ToLower(existing.Client.Name), term) {
			out = append(out, existing.Clone())
		}
	}
	return out
}

// Page applies search then pagination. Pages are 1-indexed; an
// out-of-range page yields an empty slice, not an error.
func (l *Ledger) Page(term string, page, perPage int) ([]Invoice, shared.Pagination) {
	matches := l.Search(term)
	p := shared.NewPagination(page, perPage, len(matches))
	start, end := p.Bounds()
	return matches[start:end], p
}

// Len reports the number of saved invoices.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
