package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres persists records directly in a PostgreSQL database. Supabase
// projects are plain Postgres underneath, so this driver works against
// the same schema without going through PostgREST.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// tables this store is allowed to touch; identifiers are interpolated
// into SQL so anything else is rejected outright.
var allowedTables = map[string]bool{
	"companies": true,
	"clients":   true,
	"invoices":  true,
}

func checkTable(table string) error {
	if !allowedTables[table] {
		return fmt.Errorf("store: unknown table %q", table)
	}
	return nil
}

// Select lists all records of a table.
func (p *Postgres) Select(ctx context.Context, table string) ([]Record, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx, fmt.Sprintf(`SELECT * FROM %s ORDER BY created_at`, table))
	if err != nil {
		return nil, err
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	records := make([]Record, len(maps))
	for i, m := range maps {
		records[i] = Record(m)
	}
	return records, nil
}

// Insert adds a record and returns the stored row.
func (p *Postgres) Insert(ctx context.Context, table string, record Record) (Record, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	cols := sortedKeys(record)
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = record[c]
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING *`,
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return p.queryOne(ctx, query, args)
}

// Update patches the record matching id and returns the stored row.
func (p *Postgres) Update(ctx context.Context, table string, id string, fields Record) (Record, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	cols := sortedKeys(fields)
	assignments := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		assignments[i] = fmt.Sprintf("%s = $%d", c, i+1)
		args = append(args, fields[c])
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d RETURNING *`,
		table, strings.Join(assignments, ", "), len(cols)+1)
	return p.queryOne(ctx, query, args)
}

// Delete removes the record matching id.
func (p *Postgres) Delete(ctx context.Context, table string, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	tag, err := p.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) queryOne(ctx context.Context, query string, args []any) (Record, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapPgError(err)
	}
	return Record(m), nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func sortedKeys(r Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
