// Package jobs holds background task definitions and the worker runtime.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/invoiceforge/invoiceforge/internal/invoices"
	"github.com/invoiceforge/invoiceforge/internal/platform/store"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeInvoiceArchive copies a saved invoice to remote storage.
	TaskTypeInvoiceArchive = "invoice:archive"
)

// NewInvoiceArchiveTask constructs an archive task for a saved invoice.
func NewInvoiceArchiveTask(inv invoices.Invoice) (*asynq.Task, error) {
	data, err := json.Marshal(inv)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeInvoiceArchive, data), nil
}

// NewInvoiceArchiveHandler returns the processor for archive tasks. The
// ledger stays authoritative; the remote copy is written with upsert
// semantics so a re-saved invoice replaces its earlier archive row.
func NewInvoiceArchiveHandler(st store.Store, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var inv invoices.Invoice
		if err := json.Unmarshal(t.Payload(), &inv); err != nil {
			return asynq.SkipRetry
		}
		record, err := archiveRecord(inv)
		if err != nil {
			return asynq.SkipRetry
		}

		fields := record.Clone()
		delete(fields, "id")
		if _, err := st.Update(ctx, "invoices", inv.ID, fields); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			if _, err := st.Insert(ctx, "invoices", record); err != nil {
				return err
			}
		}
		logger.Info("invoice archived", slog.String("id", inv.ID), slog.String("number", inv.InvoiceNumber))
		return nil
	}
}

// archiveRecord flattens an invoice into a table row. Snapshots and items
// are kept as JSON columns; totals are the derived values at save time.
func archiveRecord(inv invoices.Invoice) (store.Record, error) {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return nil, err
	}
	client, err := json.Marshal(inv.Client)
	if err != nil {
		return nil, err
	}
	company, err := json.Marshal(inv.Company)
	if err != nil {
		return nil, err
	}
	return store.Record{
		"id":             inv.ID,
		"invoice_number": inv.InvoiceNumber,
		"date":           inv.Date,
		"due_date":       inv.DueDate,
		"status":         string(inv.Status),
		"currency":       inv.Currency,
		"tax_rate":       inv.TaxRate.String(),
		"client":         string(client),
		"company":        string(company),
		"items":          string(items),
		"notes":          inv.Notes,
		"subtotal":       inv.Subtotal.String(),
		"tax_amount":     inv.TaxAmount.String(),
		"total":          inv.Total.String(),
		"created_at":     inv.CreatedAt,
	}, nil
}
