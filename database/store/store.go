// Package store is the thin generic gateway to the remote table store.
// Every backend exposes the same select/insert/update/delete primitive keyed
// by equality filters; typed accessors in database/repository build on it.
package store

import (
	"context"
	"errors"
)

// ErrNoRows is returned by SelectOne when nothing matches the filter.
var ErrNoRows = errors.New("store: no rows in result set")

// Filter is an equality-only row filter, the equivalent of chained .eq() calls.
type Filter map[string]any

// Eq starts a filter on a single column.
func Eq(key string, value any) Filter {
	return Filter{key: value}
}

// Eq adds another equality condition to the filter.
func (f Filter) Eq(key string, value any) Filter {
	f[key] = value
	return f
}

// Patch is a partial row: top-level fields to overwrite.
type Patch map[string]any

// Table is a single remote table holding rows of type T.
type Table[T any] interface {
	// Name returns the remote table name.
	Name() string
	// Select returns every row matching filter. An empty filter selects the whole table.
	Select(ctx context.Context, filter Filter) ([]T, error)
	// SelectOne returns the first row matching filter, or ErrNoRows.
	SelectOne(ctx context.Context, filter Filter) (T, error)
	// Insert stores row and returns it as persisted.
	Insert(ctx context.Context, row T) (T, error)
	// Update applies patch to the first row matching filter and returns the
	// updated row with the number of matched rows (0 or 1).
	Update(ctx context.Context, filter Filter, patch Patch) (T, int64, error)
	// Delete removes every row matching filter and returns how many were removed.
	Delete(ctx context.Context, filter Filter) (int64, error)
}
