package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/invoiceforge/invoiceforge/internal/platform/httpx"
	"github.com/invoiceforge/invoiceforge/internal/platform/store"
)

// Service provides CRUD over the client directory. It holds no state of
// its own: every operation goes to the remote store, and nothing is
// reported as applied before the store confirms it.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// NewService constructs a client directory service.
func NewService(st store.Store, logger *slog.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// List returns all clients in store order.
func (s *Service) List(ctx context.Context) ([]Client, error) {
	records, err := s.store.Select(ctx, Table)
	if err != nil {
		s.logger.Error("list clients failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: list clients: %v", httpx.ErrRemote, err)
	}
	result := make([]Client, len(records))
	for i, r := range records {
		result[i] = fromRecord(r)
	}
	return result, nil
}

// Get fetches a single client by id.
func (s *Service) Get(ctx context.Context, id string) (*Client, error) {
	records, err := s.store.Select(ctx, Table)
	if err != nil {
		return nil, fmt.Errorf("%w: get client: %v", httpx.ErrRemote, err)
	}
	for _, r := range records {
		if r.String("id") == id {
			c := fromRecord(r)
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: client %s", httpx.ErrNotFound, id)
}

// Create persists a new client and returns it with its assigned id.
func (s *Service) Create(ctx context.Context, in ClientInput) (*Client, error) {
	client := Client{
		ID:      uuid.NewString(),
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
		VAT:     in.VAT,
	}
	stored, err := s.store.Insert(ctx, Table, client.toRecord())
	if err != nil {
		s.logger.Error("create client failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: create client: %v", httpx.ErrRemote, err)
	}
	created := fromRecord(stored)
	return &created, nil
}

// Update overwrites the mutable fields of an existing client.
func (s *Service) Update(ctx context.Context, id string, in ClientInput) (*Client, error) {
	stored, err := s.store.Update(ctx, Table, id, in.fields())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: client %s", httpx.ErrNotFound, id)
		}
		s.logger.Error("update client failed", slog.Any("error", err), slog.String("id", id))
		return nil, fmt.Errorf("%w: update client: %v", httpx.ErrRemote, err)
	}
	updated := fromRecord(stored)
	return &updated, nil
}

// Delete removes a client. Saved invoices keep their snapshots; there is
// no cascade.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, Table, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: client %s", httpx.ErrNotFound, id)
		}
		s.logger.Error("delete client failed", slog.Any("error", err), slog.String("id", id))
		return fmt.Errorf("%w: delete client: %v", httpx.ErrRemote, err)
	}
	return nil
}
