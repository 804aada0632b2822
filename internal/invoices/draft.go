package invoices

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invoiceforge/invoiceforge/internal/platform/httpx"
)

// defaultNotes is the note line every fresh draft starts with.
const defaultNotes = "Payment due within 14 days. Thank you for your business!"

// NewDraft returns a fresh editable draft: generated invoice number,
// dated today, due in 14 days, one empty line item, USD.
func NewDraft() Invoice {
	now := time.Now()
	return Invoice{
		InvoiceNumber: fmt.Sprintf("INV-%d", rand.IntN(10000)),
		Date:          now.Format(DateLayout),
		DueDate:       now.AddDate(0, 0, 14).Format(DateLayout),
		Status:        StatusDraft,
		Currency:      "USD",
		TaxRate:       decimal.Zero,
		Items: []LineItem{
			{ID: uuid.NewString(), Quantity: 1, Rate: decimal.Zero},
		},
		Notes: defaultNotes,
	}
}

// Editor holds the invoice currently being edited. The draft stays in
// the editing state until a submission validates; a failed submission
// leaves it untouched. The in-flight flag serializes submissions of the
// same form: a second submission while one is pending is rejected, and
// the flag is cleared on success and failure alike.
type Editor struct {
	mu       sync.Mutex
	inFlight bool
	draft    Invoice
}

// NewEditor constructs an editor holding a fresh draft.
func NewEditor() *Editor {
	return &Editor{draft: NewDraft()}
}

// Current returns a copy of the draft under edit.
func (e *Editor) Current() Invoice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.Clone()
}

// Update replaces the working draft with edited field values.
func (e *Editor) Update(draft Invoice) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = draft.Clone()
}

// Load puts a saved invoice back into the editing state.
func (e *Editor) Load(inv Invoice) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = inv.Clone()
}

// Reset replaces the draft with a fresh one.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = NewDraft()
}

// Begin acquires the in-flight flag for a submission attempt.
func (e *Editor) Begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return fmt.Errorf("%w: submission pending", httpx.ErrBusy)
	}
	e.inFlight = true
	return nil
}

// Finish releases the in-flight flag. Callers run it on every exit path.
func (e *Editor) Finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight = false
}

// Matches reports whether the draft under edit still targets the given
// id. A result arriving after the user reset or switched the form is
// applied only when the identity still matches.
func (e *Editor) Matches(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.ID == id
}
