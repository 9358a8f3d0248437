package notification

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"autocare/database/repository"
	"autocare/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromErrorNeverLeaksErrorText(t *testing.T) {
	secret := errors.New("pq: connection refused at 10.0.0.4:5432")

	cases := []struct {
		name  string
		err   error
		title string
	}{
		{"remote store", &repository.RemoteStoreError{Table: "bookings", Op: "insert", Err: secret}, "Something went wrong"},
		{"not found", &repository.NotFoundError{Table: "bookings", ID: "b1"}, "Not found"},
		{"validation", &models.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}, "Invalid request"},
		{"wrapped", fmt.Errorf("create: %w", &repository.NotFoundError{Table: "vehicles", ID: "v1"}), "Not found"},
		{"timeout", fmt.Errorf("select: %w", context.DeadlineExceeded), "Request timed out"},
		{"unknown", secret, "Something went wrong"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := FromError("create the booking", tc.err)
			assert.Equal(t, tc.title, n.Title)
			assert.Equal(t, models.VariantDestructive, n.Variant)
			assert.NotContains(t, n.Description, "10.0.0.4")
			assert.NotEmpty(t, n.Description)
		})
	}
}

func TestMultiAndRecorder(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	rec := &Recorder{}
	m := Multi{rec, LogNotifier{Logger: zap.New(core)}}

	m.Notify(context.Background(), Info("Location detected", "Austin, TX"))
	m.Notify(context.Background(), FromError("load bookings", errors.New("boom")))

	assert.Equal(t, 2, rec.Len())
	assert.Equal(t, "Location detected", rec.All()[0].Title)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.InfoLevel).Len())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())

	rec.Reset()
	assert.Zero(t, rec.Len())
}
