package store

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-formsheet/pkg/cache"
)

// DefaultReadTTL bounds how stale a cached table read may be.
const DefaultReadTTL = 60 * time.Second

// CachedReader memoises full table reads per (store, table).
type CachedReader struct {
	connector Connector
	cache     *cache.Cache[[]Record]
}

// NewCachedReader wraps connector. Options configure the underlying cache;
// the TTL defaults to DefaultReadTTL.
func NewCachedReader(connector Connector, options ...cache.Option) *CachedReader {
	opts := append([]cache.Option{cache.WithTTL(DefaultReadTTL)}, options...)
	return &CachedReader{
		connector: connector,
		cache:     cache.New[[]Record](opts...),
	}
}

// ReadAll returns every row of storeName/tableName, header first. Missing
// tables surface ErrTableNotFound.
func (r *CachedReader) ReadAll(ctx context.Context, storeName, tableName string) ([]Record, error) {
	return r.cache.Get(ctx, readKey(storeName, tableName), func(ctx context.Context) ([]Record, error) {
		st, err := r.connector.Connect(ctx, storeName)
		if err != nil {
			return nil, fmt.Errorf("store: connect %s: %w", storeName, err)
		}
		table, err := st.Table(ctx, tableName)
		if err != nil {
			return nil, fmt.Errorf("store: open %s/%s: %w", storeName, tableName, err)
		}
		rows, err := table.ReadAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("store: read %s/%s: %w", storeName, tableName, err)
		}
		return rows, nil
	})
}

// Invalidate drops the cached read of storeName/tableName.
func (r *CachedReader) Invalidate(storeName, tableName string) {
	r.cache.Invalidate(readKey(storeName, tableName))
}

func readKey(storeName, tableName string) string {
	return storeName + "\x00" + tableName
}
