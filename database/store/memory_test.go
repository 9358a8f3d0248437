package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID     string   `json:"id"`
	Owner  string   `json:"owner"`
	Score  int      `json:"score"`
	Labels []string `json:"labels,omitempty"`
}

func TestMemoryTableCRUD(t *testing.T) {
	ctx := context.Background()
	table := NewMemoryTable[row]("rows")

	_, err := table.Insert(ctx, row{ID: "a", Owner: "u1", Score: 1})
	require.NoError(t, err)
	_, err = table.Insert(ctx, row{ID: "b", Owner: "u2", Score: 2, Labels: []string{"x"}})
	require.NoError(t, err)
	_, err = table.Insert(ctx, row{ID: "a"})
	assert.Error(t, err, "duplicate id")

	rows, err := table.Select(ctx, Eq("owner", "u2"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"x"}, rows[0].Labels)

	rows, err = table.Select(ctx, Eq("owner", "u1").Eq("score", 1))
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	updated, n, err := table.Update(ctx, Eq("id", "a"), Patch{"score": 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 10, updated.Score)

	_, n, err = table.Update(ctx, Eq("id", "zzz"), Patch{"score": 10})
	require.NoError(t, err)
	assert.Zero(t, n)

	deleted, err := table.Delete(ctx, Eq("id", "b"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = table.SelectOne(ctx, Eq("id", "b"))
	assert.ErrorIs(t, err, ErrNoRows)
	assert.Equal(t, 1, table.Len())
}

func TestMemoryTableFailureHookAndCancellation(t *testing.T) {
	table := NewMemoryTable[row]("rows")
	boom := errors.New("boom")
	table.FailWith = func(op string) error {
		if op == "delete" {
			return boom
		}
		return nil
	}

	_, err := table.Delete(context.Background(), Eq("id", "a"))
	assert.ErrorIs(t, err, boom)
	_, err = table.Select(context.Background(), nil)
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = table.Select(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
