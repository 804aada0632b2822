package invoices

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceforge/invoiceforge/internal/platform/httpx"
)

func newTestRouter(t *testing.T) (*chi.Mux, *Service) {
	t.Helper()
	svc, _, _, _, _ := newTestService(t)
	r := chi.NewRouter()
	NewHandler(testLogger(), svc).Register(r)
	return r, svc
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerSubmitAndList(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/invoices", submitReq())
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Invoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	rec = doJSON(t, r, http.MethodGet, "/invoices?search=inv-42&page=1&per_page=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Invoices, 1)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, 5, list.PerPage)
}

func TestHandlerSubmitValidation(t *testing.T) {
	r, svc := newTestRouter(t)

	req := submitReq()
	req.InvoiceNumber = ""
	req.Items = nil

	rec := doJSON(t, r, http.MethodPost, "/invoices", req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Contains(t, problem.Fields, "invoice_number")
	assert.Contains(t, problem.Fields, "items")
	assert.Equal(t, 0, svc.Ledger().Len(), "rejected submission never reaches the ledger")
}

func TestHandlerSubmitRejectsEmptyItems(t *testing.T) {
	r, _ := newTestRouter(t)

	req := submitReq()
	req.Items = []LineItemInput{}
	req.TaxRate = 10

	rec := doJSON(t, r, http.MethodPost, "/invoices", req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerSubmitMalformedBody(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/invoices", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerDeleteAbsentReturnsNoContent(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodDelete, "/invoices/missing", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandlerGetMissing(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/invoices/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerExportPDF(t *testing.T) {
	r, svc := newTestRouter(t)
	inv, err := svc.Submit(context.Background(), submitReq())
	require.NoError(t, err)

	rec := doJSON(t, r, http.MethodGet, "/invoices/"+inv.ID+"/pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="invoice_INV-42.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestHandlerShareUnsupported(t *testing.T) {
	r, svc := newTestRouter(t)
	svc.mailer = nil
	inv, err := svc.Submit(context.Background(), submitReq())
	require.NoError(t, err)

	rec := doJSON(t, r, http.MethodPost, "/invoices/"+inv.ID+"/share", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHandlerCurrencies(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/currencies", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var opts []CurrencyOption
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	require.Len(t, opts, 4)
	assert.Equal(t, "USD", opts[0].Code)
	assert.Equal(t, "$", opts[0].Symbol)
}

func TestHandlerDraft(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/invoices/draft", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var draft Invoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &draft))
	assert.Contains(t, draft.InvoiceNumber, "INV-")
	assert.Equal(t, "USD", draft.Currency)
	require.Len(t, draft.Items, 1)
	assert.True(t, draft.Subtotal.IsZero())
}
