// Package redis implements the catalog store over Redis JSON documents via
// rueidis. Redis has no column-filter query language for arbitrary JSON
// shapes, so predicates are evaluated client-side with the same semantics
// the Postgres driver compiles into SQL.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/prodex-cloud/prodex/internal/catalog"
	"github.com/prodex-cloud/prodex/internal/domain/record"
)

// Compile-time check: Store implements catalog.Store.
var _ catalog.Store = (*Store)(nil)

// scanBatch is the SCAN COUNT hint per iteration.
const scanBatch = 512

// Config holds connection parameters for a Redis catalog.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// Store implements catalog.Store via rueidis.
type Store struct {
	client rueidis.Client
	prefix string
}

// NewStore creates a Redis catalog store.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.KeyPrefix == "" {
		return nil, fmt.Errorf("key_prefix is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, prefix: cfg.KeyPrefix}, nil
}

// Select scans product documents and evaluates the query client-side.
func (s *Store) Select(ctx context.Context, q catalog.Query) ([]record.Record, error) {
	var matched []record.Record

	err := s.scanRecords(ctx, func(r record.Record) bool {
		if matchQuery(r, q) {
			matched = append(matched, r)
		}
		// Without ordering the limit can short-circuit the scan.
		return q.Order != nil || q.Limit <= 0 || len(matched) < q.Limit
	})
	if err != nil {
		return nil, err
	}

	if q.Order != nil {
		sortRecords(matched, *q.Order)
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

// Sample returns the first n scanned documents.
func (s *Store) Sample(ctx context.Context, n int) ([]record.Record, error) {
	var out []record.Record

	err := s.scanRecords(ctx, func(r record.Record) bool {
		out = append(out, r)
		return len(out) < n
	})
	if err != nil {
		return nil, &catalog.Error{Op: catalog.OpSample, Err: err}
	}
	return out, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
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

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// scanRecords iterates product documents under the key prefix, invoking fn
// per record until fn returns false or the keyspace is exhausted.
func (s *Store) scanRecords(ctx context.Context, fn func(record.Record) bool) error {
	var cursor uint64
	match := s.prefix + "*"

	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(match).Count(scanBatch).Build()
		entry, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return &catalog.Error{Op: catalog.OpScan, Err: err}
		}

		for _, key := range entry.Elements {
			r, err := s.loadRecord(ctx, key)
			if err != nil {
				return err
			}
			if r == nil {
				continue // key vanished mid-scan
			}
			if !fn(*r) {
				return nil
			}
		}

		cursor = entry.Cursor
		if cursor == 0 {
			return nil
		}
	}
}

// loadRecord fetches and decodes one product JSON document.
func (s *Store) loadRecord(ctx context.Context, key string) (*record.Record, error) {
	cmd := s.client.B().Arbitrary("JSON.GET").Keys(key).Build()
	raw, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, &catalog.Error{Op: catalog.OpSelect, Err: err}
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		// Skip documents that are not JSON objects.
		return nil, nil
	}
	r := record.FromMap(decoded)
	return &r, nil
}
