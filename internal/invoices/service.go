package invoices

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invoiceforge/invoiceforge/internal/directory/clients"
	"github.com/invoiceforge/invoiceforge/internal/directory/companies"
	"github.com/invoiceforge/invoiceforge/internal/platform/httpx"
)

// Renderer turns an invoice into a PDF document. Rendering is
// deterministic for identical invoice content.
type Renderer interface {
	Render(ctx context.Context, inv Invoice) ([]byte, error)
}

// Mailer delivers a rendered invoice as an email attachment. A nil
// mailer means the share capability is absent.
type Mailer interface {
	Send(ctx context.Context, to, subject, body, filename string, attachment []byte) error
}

// Archiver copies a saved invoice to remote storage in the background.
// Archival is best effort; failures never affect the ledger.
type Archiver interface {
	ArchiveInvoice(ctx context.Context, inv Invoice) error
}

// FileName is the download name for an exported invoice.
func FileName(inv Invoice) string {
	return fmt.Sprintf("invoice_%s.pdf", inv.InvoiceNumber)
}

// Service wires the draft editor, the ledger and the read paths that
// consume the current invoice.
type Service struct {
	logger    *slog.Logger
	ledger    *Ledger
	editor    *Editor
	companies *companies.Service
	clients   *clients.Service
	renderer  Renderer
	mailer    Mailer
	archiver  Archiver
}

// NewService constructs the invoice service. Mailer and archiver may be
// nil when the corresponding capability is not configured.
func NewService(logger *slog.Logger, companySvc *companies.Service, clientSvc *clients.Service, renderer Renderer, mailer Mailer, archiver Archiver) *Service {
	return &Service{
		logger:    logger,
		ledger:    NewLedger(),
		editor:    NewEditor(),
		companies: companySvc,
		clients:   clientSvc,
		renderer:  renderer,
		mailer:    mailer,
		archiver:  archiver,
	}
}

// Ledger exposes the saved-invoice list for read paths and tests.
func (s *Service) Ledger() *Ledger {
	return s.ledger
}

// Draft returns the invoice currently under edit, with derived totals
// refreshed.
func (s *Service) Draft() Invoice {
	draft := s.editor.Current()
	totals := CalculateTotals(draft.Items, draft.TaxRate)
	draft.Subtotal, draft.TaxAmount, draft.Total = totals.Subtotal, totals.TaxAmount, totals.Total
	return draft
}

// Submit validates and finalizes a draft: the invoice is stamped,
// snapshots of the selected company and client are embedded, totals are
// derived, and the result is saved to the ledger. On success the editor
// resets to a fresh draft. Any failure leaves ledger and editor
// unchanged.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Invoice, error) {
	if err := s.editor.Begin(); err != nil {
		return nil, err
	}
	defer s.editor.Finish()

	inv, err := s.finalize(ctx, req)
	if err != nil {
		return nil, err
	}

	s.ledger.Save(*inv)
	s.editor.Reset()
	s.archive(*inv)
	return inv, nil
}

// Update re-submits a saved invoice. The entry is replaced in place by
// id; its creation timestamp and list position are preserved.
func (s *Service) Update(ctx context.Context, id string, req SubmitRequest) (*Invoice, error) {
	if _, ok := s.ledger.Get(id); !ok {
		return nil, fmt.Errorf("%w: invoice %s", httpx.ErrNotFound, id)
	}
	if err := s.editor.Begin(); err != nil {
		return nil, err
	}
	defer s.editor.Finish()

	req.ID = id
	inv, err := s.finalize(ctx, req)
	if err != nil {
		return nil, err
	}

	s.ledger.Save(*inv)
	if s.editor.Matches(id) {
		s.editor.Reset()
	}
	s.archive(*inv)
	return inv, nil
}

// finalize resolves directory snapshots and stamps the invoice. The
// request is already structurally valid; what remains is resolving the
// selected company and client, which may fail remotely.
func (s *Service) finalize(ctx context.Context, req SubmitRequest) (*Invoice, error) {
	company, err := s.companies.Get(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.Get(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := time.Now()
	if existing, ok := s.ledger.Get(id); ok {
		createdAt = existing.CreatedAt
	}

	items := req.items()
	taxRate := decimal.NewFromFloat(req.TaxRate)
	totals := CalculateTotals(items, taxRate)

	inv := Invoice{
		ID:            id,
		InvoiceNumber: req.InvoiceNumber,
		Date:          req.Date,
		DueDate:       req.DueDate,
		Status:        StatusDraft,
		Currency:      req.Currency,
		TaxRate:       taxRate,
		Client:        *client,
		Company:       *company,
		Items:         items,
		Notes:         req.Notes,
		Subtotal:      totals.Subtotal,
		TaxAmount:     totals.TaxAmount,
		Total:         totals.Total,
		CreatedAt:     createdAt,
	}
	return &inv, nil
}

func (s *Service) archive(inv Invoice) {
	if s.archiver == nil {
		return
	}
	if err := s.archiver.ArchiveInvoice(context.Background(), inv); err != nil {
		s.logger.Warn("invoice archive enqueue failed", slog.Any("error", err), slog.String("id", inv.ID))
	}
}

// Get returns a saved invoice by id.
func (s *Service) Get(id string) (*Invoice, error) {
	inv, ok := s.ledger.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: invoice %s", httpx.ErrNotFound, id)
	}
	return &inv, nil
}

// Delete removes a saved invoice. Deleting an absent id is not an error.
func (s *Service) Delete(id string) {
	s.ledger.Delete(id)
}

// Edit loads a saved invoice back into the editor.
func (s *Service) Edit(id string) (*Invoice, error) {
	inv, ok := s.ledger.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: invoice %s", httpx.ErrNotFound, id)
	}
	s.editor.Load(inv)
	return &inv, nil
}

// ExportPDF renders a saved invoice and returns the document with its
// download file name.
func (s *Service) ExportPDF(ctx context.Context, id string) ([]byte, string, error) {
	inv, ok := s.ledger.Get(id)
	if !ok {
		return nil, "", fmt.Errorf("%w: invoice %s", httpx.ErrNotFound, id)
	}
	data, err := s.renderer.Render(ctx, inv)
	if err != nil {
		s.logger.Error("render invoice pdf failed", slog.Any("error", err), slog.String("id", id))
		return nil, "", fmt.Errorf("%w: render pdf: %v", httpx.ErrRemote, err)
	}
	return data, FileName(inv), nil
}

// Share emails the rendered invoice to the invoice's client. Without a
// configured mailer the capability is absent and the caller is pointed
// at the download path instead.
func (s *Service) Share(ctx context.Context, id string) error {
	inv, ok := s.ledger.Get(id)
	if !ok {
		return fmt.Errorf("%w: invoice %s", httpx.ErrNotFound, id)
	}
	if s.mailer == nil {
		return fmt.Errorf("%w: sharing is not configured, download the PDF instead", httpx.ErrUnsupported)
	}
	if inv.Client.Email == "" {
		return fmt.Errorf("%w: client has no email address", httpx.ErrValidation)
	}
	data, err := s.renderer.Render(ctx, inv)
	if err != nil {
		return fmt.Errorf("%w: render pdf: %v", httpx.ErrRemote, err)
	}
	subject := fmt.Sprintf("Invoice %s", inv.InvoiceNumber)
	body := fmt.Sprintf("Invoice from %s", inv.Company.Name)
	if err := s.mailer.Send(ctx, inv.Client.Email, subject, body, FileName(inv), data); err != nil {
		s.logger.Error("share invoice failed", slog.Any("error", err), slog.String("id", id))
		return fmt.Errorf("%w: send mail: %v", httpx.ErrRemote, err)
	}
	return nil
}
