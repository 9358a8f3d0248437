package repository

import (
	"context"
	"errors"
	"time"

	"autocare/database/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entity is implemented by pointers to persisted models.
type Entity[T any] interface {
	*T
	Identity() string
	SetIdentity(id string)
	Touch(now time.Time)
}

// Accessor translates the generic table primitive into typed CRUD for one
// entity. Failures are logged with their context and returned; nothing is
// retried here.
type Accessor[T any, P Entity[T]] struct {
	table  store.Table[T]
	logger *zap.Logger
	now    func() time.Time
}

// NewAccessor binds an accessor to a table.
func NewAccessor[T any, P Entity[T]](table store.Table[T], logger *zap.Logger) *Accessor[T, P] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Accessor[T, P]{
		table:  table,
		logger: logger,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Millisecond)
		},
	}
}

// TableName returns the underlying table name.
func (a *Accessor[T, P]) TableName() string {
	return a.table.Name()
}

// List reads the whole table. An empty table yields an empty, non-nil slice.
func (a *Accessor[T, P]) List(ctx context.Context) ([]T, error) {
	return a.Where(ctx, nil)
}

// Where reads every row matching filter.
func (a *Accessor[T, P]) Where(ctx context.Context, filter store.Filter) ([]T, error) {
	rows, err := a.table.Select(ctx, filter)
	if err != nil {
		return nil, a.storeError("select", "", err)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// FirstWhere returns the first row matching filter. Zero rows is reported as
// a NotFoundError carrying label as the identity.
func (a *Accessor[T, P]) FirstWhere(ctx context.Context, filter store.Filter, label string) (T, error) {
	row, err := a.table.SelectOne(ctx, filter)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return row, a.notFound("select", label)
		}
		return row, a.storeError("select", label, err)
	}
	return row, nil
}

// GetByID reads a single row by identity.
func (a *Accessor[T, P]) GetByID(ctx context.Context, id string) (T, error) {
	return a.FirstWhere(ctx, store.Eq("id", id), id)
}

// Create inserts row. An empty identity is replaced by a fresh UUID; an
// explicit identity is kept. The stored row is returned.
func (a *Accessor[T, P]) Create(ctx context.Context, row T) (T, error) {
	p := P(&row)
	if p.Identity() == "" {
		p.SetIdentity(uuid.NewString())
	}
	p.Touch(a.now())

	stored, err := a.table.Insert(ctx, row)
	if err != nil {
		return row, a.storeError("insert", p.Identity(), err)
	}
	return stored, nil
}

// Update applies a partial update keyed by identity. A zero-row update is a
// NotFoundError.
func (a *Accessor[T, P]) Update(ctx context.Context, id string, patch store.Patch) (T, error) {
	set := store.Patch{"updated_at": a.now()}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		set[k] = v
	}

	row, matched, err := a.table.Update(ctx, store.Eq("id", id), set)
	if err != nil {
		return row, a.storeError("update", id, err)
	}
	if matched == 0 {
		return row, a.notFound("update", id)
	}
	return row, nil
}

// Delete removes the row with identity id. A zero-row delete is a NotFoundError.
func (a *Accessor[T, P]) Delete(ctx context.Context, id string) error {
	deleted, err := a.table.Delete(ctx, store.Eq("id", id))
	if err != nil {
		return a.storeError("delete", id, err)
	}
	if deleted == 0 {
		return a.notFound("delete", id)
	}
	return nil
}

func (a *Accessor[T, P]) storeError(op, id string, err error) error {
	a.logger.Error("remote store operation failed",
		zap.String("table", a.table.Name()),
		zap.String("op", op),
		zap.String("id", id),
		zap.Error(err),
	)
	return &RemoteStoreError{Table: a.table.Name(), Op: op, ID: id, Err: err}
}

func (a *Accessor[T, P]) notFound(op, id string) error {
	a.logger.Warn("no row matched identity",
		zap.String("table", a.table.Name()),
		zap.String("op", op),
		zap.String("id", id),
	)
	return &NotFoundError{Table: a.table.Name(), ID: id}
}
