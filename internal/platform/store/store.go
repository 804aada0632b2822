// Package store defines the table-oriented CRUD capability the directories
// persist through, along with the available implementations.
package store

import (
	"context"
	"errors"
)

// Record is a flat table row keyed by column name.
type Record map[string]any

// Sentinel errors shared by all store implementations.
var (
	ErrNotFound  = errors.New("store: record not found")
	ErrDuplicate = errors.New("store: duplicate record")
)

// Store is the narrow persistence capability injected into the directory
// services. Implementations must be safe for concurrent use. Every call is
// a single request/response attempt; callers decide how failures surface.
type Store interface {
	Select(ctx context.Context, table string) ([]Record, error)
	Insert(ctx context.Context, table string, record Record) (Record, error)
	Update(ctx context.Context, table string, id string, fields Record) (Record, error)
	Delete(ctx context.Context, table string, id string) error
}

// Clone returns a deep copy of the record. Values are scalars in every
// table this application owns, so a per-key copy is sufficient.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String reads a string-typed column, tolerating absent or null values.
func (r Record) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}
