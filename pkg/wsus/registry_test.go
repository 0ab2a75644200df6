package wsus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubFactory(captured *DriverOptions) DriverFactory {
	return func(opts DriverOptions) Dialer {
		if captured != nil {
			*captured = opts
		}
		return func(_ context.Context, _ string, _ int) (Client, error) { return nil, nil }
	}
}

func TestRegistry_CreateResolvesRegisteredDriver(t *testing.T) {
	// Given
	var seen DriverOptions
	r := NewRegistry(map[string]DriverFactory{
		"apiremoting": stubFactory(&seen),
	})

	// When
	dial, err := r.Create("apiremoting", DriverOptions{Timeout: 5 * time.Second, InsecureSkipVerify: true})

	// Then
	require.NoError(t, err)
	assert.NotNil(t, dial)
	assert.Equal(t, 5*time.Second, seen.Timeout)
	assert.True(t, seen.InsecureSkipVerify)
	assert.Equal(t, []string{"apiremoting"}, r.ListDrivers())
}

func TestRegistry_RegisterValidation(t *testing.T) {
	r := NewRegistry(nil)

	require.NoError(t, r.Register("apiremoting", stubFactory(nil)))

	assert.Error(t, r.Register("apiremoting", stubFactory(nil)), "duplicate registration must fail")
	assert.Error(t, r.Register("", stubFactory(nil)), "empty driver name must fail")
	assert.Error(t, r.Register("x", nil), "nil factory must fail")
}

func TestRegistry_CreateUnknownDriver(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Create("nope", DriverOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}
