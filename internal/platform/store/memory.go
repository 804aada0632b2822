package store

import (
	"context"
	"sync"
)

// Memory is an in-process Store used in tests and when running without a
// configured backend. Records are copied on the way in and out so callers
// never share state with the store.
type Memory struct {
	mu     sync.Mutex
	tables map[string][]Record

	// FailNext, when set, makes the next call return the error and
	// leave every table untouched. Tests use it to exercise the
	// no-partial-write contract.
	FailNext error
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string][]Record)}
}

func (m *Memory) takeFailure() error {
	err := m.FailNext
	m.FailNext = nil
	return err
}

// Select lists all records of a table in insertion order.
func (m *Memory) Select(ctx context.Context, table string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	rows := m.tables[table]
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out, nil
}

// Insert appends a record.
func (m *Memory) Insert(ctx context.Context, table string, record Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	id := record.String("id")
	for _, r := range m.tables[table] {
		if id != "" && r.String("id") == id {
			return nil, ErrDuplicate
		}
	}
	m.tables[table] = append(m.tables[table], record.Clone())
	return record.Clone(), nil
}

// Update merges fields into the record matching id.
func (m *Memory) Update(ctx context.Context, table string, id string, fields Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	for i, r := range m.tables[table] {
		if r.String("id") == id {
			updated := r.Clone()
			for k, v := range fields {
				updated[k] = v
			}
			m.tables[table][i] = updated
			return updated.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// Delete removes the record matching id.
func (m *Memory) Delete(ctx context.Context, table string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	rows := m.tables[table]
	for i, r := range rows {
		if r.String("id") == id {
			m.tables[table] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
