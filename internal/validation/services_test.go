package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func TestOptionalFailuresAreTolerated(t *testing.T) {
	sv := NewServiceValidator(nil)
	sv.Register("database", ok)
	sv.Register("s3", failing)

	assert.NoError(t, sv.ValidateServices(context.Background()))
}

func TestRequiredFailureAborts(t *testing.T) {
	sv := NewServiceValidator([]string{"redis"})
	sv.Register("database", ok)
	sv.Register("redis", failing)

	err := sv.ValidateServices(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"redis"`)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRequiredButUnconfigured(t *testing.T) {
	sv := NewServiceValidator([]string{"s3"})
	sv.Register("database", ok)

	err := sv.ValidateServices(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestChecksGetADeadline(t *testing.T) {
	sv := NewServiceValidator([]string{"database"})
	sv.Register("database", func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(CheckTimeout), deadline, time.Second)
		return nil
	})

	assert.NoError(t, sv.ValidateServices(context.Background()))
}
