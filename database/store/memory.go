package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryTable is an in-process Table used as a test double and for local
// development. Rows are kept as their JSON documents, so filters and patches
// address json field names exactly as the Postgres backend does.
type MemoryTable[T any] struct {
	mu   sync.RWMutex
	name string
	rows []map[string]any

	// FailWith, when set, is consulted before every operation; a non-nil
	// return value is reported as the store failure for that call.
	FailWith func(op string) error
}

// NewMemoryTable returns an empty in-memory table.
func NewMemoryTable[T any](name string) *MemoryTable[T] {
	return &MemoryTable[T]{name: name}
}

func (t *MemoryTable[T]) Name() string {
	return t.name
}

// Len reports the number of stored rows.
func (t *MemoryTable[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

func (t *MemoryTable[T]) fail(op string) error {
	if t.FailWith == nil {
		return nil
	}
	return t.FailWith(op)
}

func (t *MemoryTable[T]) Select(ctx context.Context, filter Filter) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := t.fail("select"); err != nil {
		return nil, err
	}
	cond, err := normalize(filter)
	if err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]T, 0)
	for _, doc := range t.rows {
		if !matches(doc, cond) {
			continue
		}
		row, err := decode[T](doc)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, nil
}

func (t *MemoryTable[T]) SelectOne(ctx context.Context, filter Filter) (T, error) {
	var zero T
	rows, err := t.Select(ctx, filter)
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, ErrNoRows
	}
	return rows[0], nil
}

func (t *MemoryTable[T]) Insert(ctx context.Context, row T) (T, error) {
	if err := ctx.Err(); err != nil {
		return row, err
	}
	if err := t.fail("insert"); err != nil {
		return row, err
	}
	doc, err := encode(row)
	if err != nil {
		return row, err
	}
	id, _ := doc["id"].(string)
	if id == "" {
		return row, fmt.Errorf("insert into %s: row has no id", t.name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, existing := range t.rows {
		if existing["id"] == id {
			return row, fmt.Errorf("insert into %s: duplicate key id=%s", t.name, id)
		}
	}
	t.rows = append(t.rows, doc)
	return decode[T](doc)
}

func (t *MemoryTable[T]) Update(ctx context.Context, filter Filter, patch Patch) (T, int64, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, 0, err
	}
	if err := t.fail("update"); err != nil {
		return zero, 0, err
	}
	cond, err := normalize(filter)
	if err != nil {
		return zero, 0, err
	}
	set, err := normalize(Filter(patch))
	if err != nil {
		return zero, 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, doc := range t.rows {
		if !matches(doc, cond) {
			continue
		}
		for k, v := range set {
			doc[k] = v
		}
		row, err := decode[T](doc)
		return row, 1, err
	}
	return zero, 0, nil
}

func (t *MemoryTable[T]) Delete(ctx context.Context, filter Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := t.fail("delete"); err != nil {
		return 0, err
	}
	cond, err := normalize(filter)
	if err != nil {
		return 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	kept := t.rows[:0]
	var deleted int64
	for _, doc := range t.rows {
		if matches(doc, cond) {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	t.rows = kept
	return deleted, nil
}

func encode(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	doc := map[string]any{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	return doc, nil
}

func decode[T any](doc map[string]any) (T, error) {
	var row T
	b, err := json.Marshal(doc)
	if err != nil {
		return row, fmt.Errorf("decode row: %w", err)
	}
	if err := json.Unmarshal(b, &row); err != nil {
		return row, fmt.Errorf("decode row: %w", err)
	}
	return row, nil
}

// normalize round-trips filter values through JSON so they compare equal to stored documents.
func normalize(f Filter) (map[string]any, error) {
	if f == nil {
		return map[string]any{}, nil
	}
	return encode(map[string]any(f))
}

func matches(doc, cond map[string]any) bool {
	for k, want := range cond {
		got, ok := doc[k]
		if !ok {
			return false
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}
