package repository_test

import (
	"context"
	"errors"
	"testing"

	"autocare/database/repository"
	"autocare/database/store"
	"autocare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newAccessor(t *testing.T) (*repository.Accessor[models.Vehicle, *models.Vehicle], *store.MemoryTable[models.Vehicle], *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	table := store.NewMemoryTable[models.Vehicle]("vehicles")
	return repository.NewAccessor[models.Vehicle](table, zap.New(core)), table, logs
}

func TestCreateAssignsIdentityAndTimestamps(t *testing.T) {
	a, _, _ := newAccessor(t)
	ctx := context.Background()

	v, err := a.Create(ctx, models.Vehicle{UserID: "u-1", Make: "Ford"})
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.False(t, v.CreatedAt.IsZero())

	kept, err := a.Create(ctx, models.Vehicle{ID: "fixed", UserID: "u-1"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", kept.ID)
}

func TestListOfEmptyTableIsEmptyNotNil(t *testing.T) {
	a, _, _ := newAccessor(t)
	rows, err := a.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestGetByIDDistinguishesNotFoundFromStoreFailure(t *testing.T) {
	a, table, logs := newAccessor(t)
	ctx := context.Background()

	_, err := a.GetByID(ctx, "nope")
	assert.True(t, repository.IsNotFound(err))
	assert.False(t, repository.IsRemoteStore(err))

	table.FailWith = func(op string) error { return errors.New("connection refused") }
	_, err = a.GetByID(ctx, "nope")
	assert.True(t, repository.IsRemoteStore(err))
	assert.False(t, repository.IsNotFound(err))

	entries := logs.FilterMessage("remote store operation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "select", entries[0].ContextMap()["op"])
}

func TestZeroRowUpdateAndDeleteAreNotFound(t *testing.T) {
	a, table, _ := newAccessor(t)
	ctx := context.Background()

	_, err := a.Update(ctx, "ghost", store.Patch{"color": "red"})
	var nf *repository.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "ghost", nf.ID)

	assert.True(t, repository.IsNotFound(a.Delete(ctx, "ghost")))
	assert.Zero(t, table.Len())
}

func TestUpdateIgnoresIdentityAndTouchesUpdatedAt(t *testing.T) {
	a, _, _ := newAccessor(t)
	ctx := context.Background()

	v, err := a.Create(ctx, models.Vehicle{UserID: "u-1", Color: "blue"})
	require.NoError(t, err)

	updated, err := a.Update(ctx, v.ID, store.Patch{"id": "hijack", "color": "red"})
	require.NoError(t, err)
	assert.Equal(t, v.ID, updated.ID)
	assert.Equal(t, "red", updated.Color)
	assert.False(t, updated.UpdatedAt.Before(v.UpdatedAt))
}

func TestStoreErrorsWrapCause(t *testing.T) {
	a, table, _ := newAccessor(t)
	cause := errors.New("disk full")
	table.FailWith = func(op string) error {
		if op == "insert" {
			return cause
		}
		return nil
	}

	_, err := a.Create(context.Background(), models.Vehicle{UserID: "u-1"})
	assert.ErrorIs(t, err, cause)
	var rs *repository.RemoteStoreError
	require.ErrorAs(t, err, &rs)
	assert.Equal(t, "insert", rs.Op)
	assert.Equal(t, "vehicles", rs.Table)
}
