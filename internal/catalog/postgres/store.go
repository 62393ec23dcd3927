// Package postgres implements the catalog store over a PostgreSQL table
// using pgx. Queries compile into parameterized SQL; rows are scanned
// dynamically since the column set varies by deployment.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prodex-cloud/prodex/internal/catalog"
	"github.com/prodex-cloud/prodex/internal/domain/record"
)

// Compile-time check: Store implements catalog.Store.
var _ catalog.Store = (*Store)(nil)

// Config holds connection parameters for a Postgres catalog.
type Config struct {
	URL             string
	Table           string
	MaxConnections  int32
	MaxConnLifetime time.Duration
}

// Store implements catalog.Store over pgxpool.
type Store struct {
	pool  *pgxpool.Pool
	table string
}

// NewStore creates a Postgres catalog store.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	if cfg.Table == "" {
		return nil, fmt.Errorf("table is required")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConnections
	if poolConfig.MaxConns == 0 {
		poolConfig.MaxConns = 10
	}
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	if poolConfig.MaxConnLifetime == 0 {
		poolConfig.MaxConnLifetime = time.Hour
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	return &Store{pool: pool, table: cfg.Table}, nil
}

// Select executes a compiled column-filter query.
func (s *Store) Select(ctx context.Context, q catalog.Query) ([]record.Record, error) {
	sql, args := buildSelect(s.table, q)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, &catalog.Error{Op: catalog.OpSelect, Err: err}
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Sample returns up to n rows for schema discovery.
func (s *Store) Sample(ctx context.Context, n int) ([]record.Record, error) {
	sql := fmt.Sprintf("SELECT * FROM %s LIMIT $1", pgx.Identifier{s.table}.Sanitize())

	rows, err := s.pool.Query(ctx, sql, n)
	if err != nil {
		return nil, &catalog.Error{Op: catalog.OpSample, Err: err}
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return &catalog.Error{Op: catalog.OpPing, Err: err}
	}
	return nil
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for catalog: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// scanRecords converts pgx rows into records, preserving column order.
func scanRecords(rows pgx.Rows) ([]record.Record, error) {
	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var out []record.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, &catalog.Error{Op: catalog.OpSelect, Err: err}
		}
		r := record.New()
		for i, col := range columns {
			if v, ok := record.FromAny(values[i]); ok {
				r.Set(col, v)
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &catalog.Error{Op: catalog.OpSelect, Err: err}
	}
	return out, nil
}
