package invoices

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceforge/invoiceforge/internal/directory/clients"
	"github.com/invoiceforge/invoiceforge/internal/directory/companies"
	"github.com/invoiceforge/invoiceforge/internal/platform/httpx"
	"github.com/invoiceforge/invoiceforge/internal/platform/store"
)

type fakeRenderer struct {
	calls int
	err   error
}

func (f *fakeRenderer) Render(ctx context.Context, inv Invoice) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF " + inv.InvoiceNumber), nil
}

type fakeMailer struct {
	to, subject, filename string
	attachment            []byte
	err                   error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body, filename string, attachment []byte) error {
	if f.err != nil {
		return f.err
	}
	f.to, f.subject, f.filename, f.attachment = to, subject, filename, attachment
	return nil
}

type fakeArchiver struct {
	archived []Invoice
	err      error
}

func (f *fakeArchiver) ArchiveInvoice(ctx context.Context, inv Invoice) error {
	if f.err != nil {
		return f.err
	}
	f.archived = append(f.archived, inv)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) (*Service, *store.Memory, *fakeRenderer, *fakeMailer, *fakeArchiver) {
	t.Helper()
	st := store.NewMemory()
	ctx := context.Background()
	_, err := st.Insert(ctx, companies.Table, store.Record{
		"id": "co1", "name": "Acme Inc", "email": "billing@acme.test", "address": "1 Acme Way",
	})
	require.NoError(t, err)
	_, err = st.Insert(ctx, clients.Table, store.Record{
		"id": "cl1", "name": "Globex", "email": "invoices@globex.test", "vat": "GB123",
	})
	require.NoError(t, err)

	logger := testLogger()
	renderer := &fakeRenderer{}
	mailer := &fakeMailer{}
	archiver := &fakeArchiver{}
	svc := NewService(logger,
		companies.NewService(st, logger),
		clients.NewService(st, logger),
		renderer, mailer, archiver)
	return svc, st, renderer, mailer, archiver
}

func submitReq() SubmitRequest {
	return SubmitRequest{
		InvoiceNumber: "INV-42",
		Date:          "2026-08-01",
		DueDate:       "2026-08-15",
		Currency:      "USD",
		TaxRate:       8.5,
		CompanyID:     "co1",
		ClientID:      "cl1",
		Items: []LineItemInput{
			{Description: "Consulting", Quantity: 3, Rate: 19.99},
		},
		Notes: "Net 14",
	}
}

func TestServiceSubmit(t *testing.T) {
	svc, _, _, _, archiver := newTestService(t)

	inv, err := svc.Submit(context.Background(), submitReq())
	require.NoError(t, err)

	assert.NotEmpty(t, inv.ID)
	assert.False(t, inv.CreatedAt.IsZero())
	assert.Equal(t, StatusDraft, inv.Status)
	assert.Equal(t, "Acme Inc", inv.Company.Name)
	assert.Equal(t, "Globex", inv.Client.Name)
	assert.True(t, inv.Subtotal.Equal(decimal.RequireFromString("59.97")))
	assert.True(t, inv.TaxAmount.Equal(decimal.RequireFromString("5.10")))
	assert.True(t, inv.Total.Equal(decimal.RequireFromString("65.07")))

	require.Equal(t, 1, svc.Ledger().Len())
	saved, ok := svc.Ledger().Get(inv.ID)
	require.True(t, ok)
	assert.Equal(t, "INV-42", saved.InvoiceNumber)

	// Submission archives best-effort and resets the editor.
	require.Len(t, archiver.archived, 1)
	assert.NotEqual(t, inv.InvoiceNumber, svc.Draft().InvoiceNumber)
}

func TestServiceSubmitSnapshotsAreCopies(t *testing.T) {
	svc, st, _, _, _ := newTestService(t)

	inv, err := svc.Submit(context.Background(), submitReq())
	require.NoError(t, err)

	// A later directory edit must not alter the saved invoice.
	_, err = st.Update(context.Background(), clients.Table, "cl1", store.Record{"name": "Globex Renamed"})
	require.NoError(t, err)

	saved, ok := svc.Ledger().Get(inv.ID)
	require.True(t, ok)
	assert.Equal(t, "Globex", saved.Client.Name)
}

func TestServiceSubmitUnknownCompany(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	req := submitReq()
	req.CompanyID = "missing"
	_, err := svc.Submit(context.Background(), req)
	require.ErrorIs(t, err, httpx.ErrNotFound)
	assert.Equal(t, 0, svc.Ledger().Len())
}

func TestServiceSubmitRemoteFailureLeavesStateUnchanged(t *testing.T) {
	svc, st, _, _, _ := newTestService(t)
	st.FailNext = errors.New("network down")

	_, err := svc.Submit(context.Background(), submitReq())
	require.ErrorIs(t, err, httpx.ErrRemote)
	assert.Equal(t, 0, svc.Ledger().Len())

	// The in-flight flag was released on the failure path.
	_, err = svc.Submit(context.Background(), submitReq())
	require.NoError(t, err)
}

func TestServiceSubmitInFlightGuard(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	require.NoError(t, svc.editor.Begin())
	_, err := svc.Submit(context.Background(), submitReq())
	require.ErrorIs(t, err, httpx.ErrBusy)
	svc.editor.Finish()

	_, err = svc.Submit(context.Background(), submitReq())
	require.NoError(t, err)
}

func TestServiceUpdateReplacesInPlace(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, submitReq())
	require.NoError(t, err)
	other := submitReq()
	other.InvoiceNumber = "INV-43"
	_, err = svc.Submit(ctx, other)
	require.NoError(t, err)

	updated := submitReq()
	updated.Items = []LineItemInput{{Description: "Consulting", Quantity: 1, Rate: 150}}
	got, err := svc.Update(ctx, first.ID, updated)
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("150")))
	assert.Equal(t, first.CreatedAt, got.CreatedAt, "created_at is set once")

	entries := svc.Ledger().Search("")
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[1].ID, "position preserved")
}

func TestServiceUpdateMissingInvoice(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	_, err := svc.Update(context.Background(), "missing", submitReq())
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestServiceEditLoadsDraft(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	inv, err := svc.Submit(context.Background(), submitReq())
	require.NoError(t, err)

	loaded, err := svc.Edit(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, loaded.ID)
	assert.Equal(t, inv.ID, svc.Draft().ID)
}

func TestServiceExportPDF(t *testing.T) {
	svc, _, renderer, _, _ := newTestService(t)
	inv, err := svc.Submit(context.Background(), submitReq())
	require.NoError(t, err)

	data, name, err := svc.ExportPDF(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "invoice_INV-42.pdf", name)
	assert.NotEmpty(t, data)
	assert.Equal(t, 1, renderer.calls)

	t.Run("renderer failure surfaces as remote error", func(t *testing.T) {
		renderer.err = errors.New("gotenberg down")
		_, _, err := svc.ExportPDF(context.Background(), inv.ID)
		require.ErrorIs(t, err, httpx.ErrRemote)
	})

	t.Run("missing invoice", func(t *testing.T) {
		_, _, err := svc.ExportPDF(context.Background(), "missing")
		require.ErrorIs(t, err, httpx.ErrNotFound)
	})
}

func TestServiceShare(t *testing.T) {
	svc, _, _, mailer, _ := newTestService(t)
	inv, err := svc.Submit(context.Background(), submitReq())
	require.NoError(t, err)

	require.NoError(t, svc.Share(context.Background(), inv.ID))
	assert.Equal(t, "invoices@globex.test", mailer.to)
	assert.Equal(t, "Invoice INV-42", mailer.subject)
	assert.Equal(t, "invoice_INV-42.pdf", mailer.filename)
	assert.NotEmpty(t, mailer.attachment)
}

func TestServiceShareWithoutMailer(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	svc.mailer = nil

	inv, err := svc.Submit(context.Background(), submitReq())
	require.NoError(t, err)

	err = svc.Share(context.Background(), inv.ID)
	require.ErrorIs(t, err, httpx.ErrUnsupported)
	assert.Contains(t, err.Error(), "download", "fallback action is suggested")
}

func TestServiceShareMailFailure(t *testing.T) {
	svc, _, _, mailer, _ := newTestService(t)
	mailer.err = errors.New("smtp refused")

	inv, err := svc.Submit(context.Background(), submitReq())
	require.NoError(t, err)

	err = svc.Share(context.Background(), inv.ID)
	require.ErrorIs(t, err, httpx.ErrRemote)
}

func TestServiceArchiveFailureDoesNotAffectLedger(t *testing.T) {
	svc, _, _, _, archiver := newTestService(t)
	archiver.err = errors.New("queue full")

	inv, err := svc.Submit(context.Background(), submitReq())
	require.NoError(t, err)
	_, ok := svc.Ledger().Get(inv.ID)
	assert.True(t, ok)
}

func TestServiceDeleteAbsentIsNoop(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	svc.Delete("missing")
	assert.Equal(t, 0, svc.Ledger().Len())
}
