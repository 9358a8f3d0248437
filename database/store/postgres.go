package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresTable implements Table on a JSONB document table:
//
//	seq BIGSERIAL, id TEXT PRIMARY KEY, doc JSONB NOT NULL
//
// Filters use JSONB containment, so equality keys must match the row's json tags.
type PostgresTable[T any] struct {
	pool  *pgxpool.Pool
	name  string
	ident string
}

// NewPostgresTable binds a table to the JSONB table of the same name.
func NewPostgresTable[T any](pool *pgxpool.Pool, name string) *PostgresTable[T] {
	return &PostgresTable[T]{
		pool:  pool,
		name:  name,
		ident: pgx.Identifier{name}.Sanitize(),
	}
}

// CreateTableSQL returns the DDL for a document table.
func CreateTableSQL(name string) string {
	ident := pgx.Identifier{name}.Sanitize()
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    seq BIGSERIAL,
    id TEXT PRIMARY KEY,
    doc JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS %s ON %s USING GIN (doc jsonb_path_ops);
`, ident, pgx.Identifier{"idx_" + name + "_doc"}.Sanitize(), ident)
}

func (t *PostgresTable[T]) Name() string {
	return t.name
}

func (t *PostgresTable[T]) Select(ctx context.Context, filter Filter) ([]T, error) {
	cond, err := marshalFilter(filter)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT doc FROM %s WHERE doc @> $1 ORDER BY seq`, t.ident)
	rows, err := t.pool.Query(ctx, query, cond)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", t.name, err)
	}
	defer rows.Close()

	result := make([]T, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", t.name, err)
		}
		var row T
		if err := json.Unmarshal(doc, &row); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", t.name, err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", t.name, err)
	}
	return result, nil
}

func (t *PostgresTable[T]) SelectOne(ctx context.Context, filter Filter) (T, error) {
	var row T
	cond, err := marshalFilter(filter)
	if err != nil {
		return row, err
	}

	query := fmt.Sprintf(`SELECT doc FROM %s WHERE doc @> $1 ORDER BY seq LIMIT 1`, t.ident)
	var doc []byte
	if err := t.pool.QueryRow(ctx, query, cond).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return row, ErrNoRows
		}
		return row, fmt.Errorf("select one from %s: %w", t.name, err)
	}
	if err := json.Unmarshal(doc, &row); err != nil {
		return row, fmt.Errorf("decode %s row: %w", t.name, err)
	}
	return row, nil
}

func (t *PostgresTable[T]) Insert(ctx context.Context, row T) (T, error) {
	doc, err := json.Marshal(row)
	if err != nil {
		return row, fmt.Errorf("encode %s row: %w", t.name, err)
	}
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(doc, &head); err != nil || head.ID == "" {
		return row, fmt.Errorf("insert into %s: row has no id", t.name)
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2) RETURNING doc`, t.ident)
	var stored []byte
	if err := t.pool.QueryRow(ctx, query, head.ID, doc).Scan(&stored); err != nil {
		return row, fmt.Errorf("insert into %s: %w", t.name, err)
	}
	var out T
	if err := json.Unmarshal(stored, &out); err != nil {
		return row, fmt.Errorf("decode %s row: %w", t.name, err)
	}
	return out, nil
}

func (t *PostgresTable[T]) Update(ctx context.Context, filter Filter, patch Patch) (T, int64, error) {
	var row T
	cond, err := marshalFilter(filter)
	if err != nil {
		return row, 0, err
	}
	set, err := json.Marshal(patch)
	if err != nil {
		return row, 0, fmt.Errorf("encode %s patch: %w", t.name, err)
	}

	query := fmt.Sprintf(`
		UPDATE %[1]s SET doc = doc || $2
		WHERE id = (SELECT id FROM %[1]s WHERE doc @> $1 ORDER BY seq LIMIT 1)
		RETURNING doc
	`, t.ident)
	var doc []byte
	if err := t.pool.QueryRow(ctx, query, cond, set).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return row, 0, nil
		}
		return row, 0, fmt.Errorf("update %s: %w", t.name, err)
	}
	if err := json.Unmarshal(doc, &row); err != nil {
		return row, 0, fmt.Errorf("decode %s row: %w", t.name, err)
	}
	return row, 1, nil
}

func (t *PostgresTable[T]) Delete(ctx context.Context, filter Filter) (int64, error) {
	cond, err := marshalFilter(filter)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE doc @> $1`, t.ident)
	tag, err := t.pool.Exec(ctx, query, cond)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", t.name, err)
	}
	return tag.RowsAffected(), nil
}

func marshalFilter(filter Filter) ([]byte, error) {
	if filter == nil {
		filter = Filter{}
	}
	b, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	return b, nil
}
