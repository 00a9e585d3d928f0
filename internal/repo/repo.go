// Package repo contains all database access logic for the travel log API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here: only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
	"github.com/vitpintodas/comem-travel-log-api/internal/query"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin on a pgx.Tx opens a
// savepoint, so cascading deletes stay atomic inside a test transaction too.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// translateUnique maps a unique constraint violation to a
// *domain.DuplicateError naming the guarded property. constraints maps
// constraint (or unique index) names to property names.
func translateUnique(err error, constraints map[string]string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if field, ok := constraints[pgErr.ConstraintName]; ok {
			return &domain.DuplicateError{Field: field}
		}
	}
	return err
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scan functions
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// runner executes document pipelines. Each repo embeds one.
type runner struct {
	db db
	// concurrent is set when db is a pool and can serve several queries at
	// once. A pgx.Conn or pgx.Tx rejects a query while another is in flight.
	concurrent bool
}

func newRunner(db db) runner {
	_, pooled := db.(*pgxpool.Pool)
	return runner{db: db, concurrent: pooled}
}

// Count implements query.Counter.
func (r runner) Count(ctx context.Context, p *query.Pipeline, filtered bool) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, p.CountSQL(filtered), p.Args()).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// exists reports whether a row matches a single-argument predicate.
func (r runner) exists(ctx context.Context, q string, args pgx.NamedArgs) (bool, error) {
	var found bool
	if err := r.db.QueryRow(ctx, "SELECT EXISTS ("+q+")", args).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// collect runs the pipeline and scans every document with scan.
func collect[T any](ctx context.Context, r runner, p *query.Pipeline, scan func(scanner) (T, error)) ([]T, error) {
	rows, err := r.db.Query(ctx, p.SQL(), p.Args())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// one runs the pipeline and scans its single document, mapping an empty
// result to domain.ErrNotFound.
func one[T any](ctx context.Context, r runner, p *query.Pipeline, scan func(scanner) (T, error)) (T, error) {
	v, err := scan(r.db.QueryRow(ctx, p.SQL(), p.Args()))
	if errors.Is(err, pgx.ErrNoRows) {
		return v, domain.ErrNotFound
	}
	return v, err
}

// list applies pagination, filters and sorting from the request query to p,
// then loads the requested page. Query parameters are validated before any
// SQL runs.
func list[T any](ctx context.Context, r runner, p *query.Pipeline, q url.Values,
	filters query.FilterFunc, sorter *query.Sorter, scan func(scanner) (T, error)) ([]T, query.Result, error) {
	page, err := query.ParsePage(q)
	if err != nil {
		return nil, query.Result{}, err
	}
	if err := filters(q, p); err != nil {
		return nil, query.Result{}, err
	}
	if err := sorter.Apply(p, q); err != nil {
		return nil, query.Result{}, err
	}

	res, err := query.Paginate(ctx, r, p, page, r.concurrent)
	if err != nil {
		return nil, query.Result{}, err
	}
	items, err := collect(ctx, r, p, scan)
	if err != nil {
		return nil, query.Result{}, err
	}
	return items, res, nil
}

func toUUID(v pgtype.UUID) uuid.UUID {
	if !v.Valid {
		return uuid.Nil
	}
	return uuid.UUID(v.Bytes)
}
