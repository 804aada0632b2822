package companies

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/invoiceforge/invoiceforge/internal/platform/httpx"
	"github.com/invoiceforge/invoiceforge/internal/platform/store"
)

// Service provides CRUD over the company directory, mirroring the client
// directory: stateless, remote-confirmed writes only.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// NewService constructs a company directory service.
func NewService(st store.Store, logger *slog.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// List returns all companies in store order.
func (s *Service) List(ctx context.Context) ([]Company, error) {
	records, err := s.store.Select(ctx, Table)
	if err != nil {
		s.logger.Error("list companies failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: list companies: %v", httpx.ErrRemote, err)
	}
	result := make([]Company, len(records))
	for i, r := range records {
		result[i] = fromRecord(r)
	}
	return result, nil
}

// Get fetches a single company by id.
func (s *Service) Get(ctx context.Context, id string) (*Company, error) {
	records, err := s.store.Select(ctx, Table)
	if err != nil {
		return nil, fmt.Errorf("%w: get company: %v", httpx.ErrRemote, err)
	}
	for _, r := range records {
		if r.String("id") == id {
			c := fromRecord(r)
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: company %s", httpx.ErrNotFound, id)
}

// Create persists a new company and returns it with its assigned id.
func (s *Service) Create(ctx context.Context, in CompanyInput) (*Company, error) {
	company := Company{
		ID:      uuid.NewString(),
		Name:    in.Name,
		Email:   in.Email,
		Address: in.Address,
		Logo:    in.Logo,
	}
	stored, err := s.store.Insert(ctx, Table, company.toRecord())
	if err != nil {
		s.logger.Error("create company failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: create company: %v", httpx.ErrRemote, err)
	}
	created := fromRecord(stored)
	return &created, nil
}

// Update overwrites the mutable fields of an existing company.
func (s *Service) Update(ctx context.Context, id string, in CompanyInput) (*Company, error) {
	stored, err := s.store.Update(ctx, Table, id, in.fields())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: company %s", httpx.ErrNotFound, id)
		}
		s.logger.Error("update company failed", slog.Any("error", err), slog.String("id", id))
		return nil, fmt.Errorf("%w: update company: %v", httpx.ErrRemote, err)
	}
	updated := fromRecord(stored)
	return &updated, nil
}

// Delete removes a company. Saved invoices keep their snapshots.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, Table, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: company %s", httpx.ErrNotFound, id)
		}
		s.logger.Error("delete company failed", slog.Any("error", err), slog.String("id", id))
		return fmt.Errorf("%w: delete company: %v", httpx.ErrRemote, err)
	}
	return nil
}
