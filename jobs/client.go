package jobs

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/invoiceforge/invoiceforge/internal/invoices"
)

// Client submits jobs to the queue. It satisfies invoices.Archiver.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// ArchiveInvoice enqueues a best-effort archive of a saved invoice.
func (c *Client) ArchiveInvoice(ctx context.Context, inv invoices.Invoice) error {
	task, err := NewInvoiceArchiveTask(inv)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}
