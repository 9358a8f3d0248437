package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthMonitorCheck(t *testing.T) {
	m := NewHealthMonitor(map[string]HealthCheck{
		"store": func(context.Context) error { return nil },
		"cache": func(context.Context) error { return errors.New("connection refused") },
	})

	assert.True(t, m.Status().Healthy(), "empty snapshot has no failing checks")

	status := m.Check(context.Background())
	assert.True(t, status.Checks["store"])
	assert.False(t, status.Checks["cache"])
	assert.False(t, status.Healthy())
	assert.Equal(t, status, m.Status())
}
