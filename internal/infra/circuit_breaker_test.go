package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRelay = errors.New("relay unavailable")

func newTestCB() *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      50 * time.Millisecond,
	})
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	cb := newTestCB()

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return errRelay })
		assert.ErrorIs(t, err, errRelay)
	}
	assert.Equal(t, CBOpen, cb.State())

	// Calls while open fail fast without invoking fn.
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreakerRecovers(t *testing.T) {
	cb := newTestCB()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errRelay })
	}
	require.Equal(t, CBOpen, cb.State())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())

	// Two consecutive successes close the circuit again.
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := newTestCB()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errRelay })
	}
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	_ = cb.Execute(func() error { return errRelay })
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := newTestCB()

	_ = cb.Execute(func() error { return errRelay })
	_ = cb.Execute(func() error { return errRelay })
	require.NoError(t, cb.Execute(func() error { return nil }))

	// Two more failures are not enough to trip after the reset.
	_ = cb.Execute(func() error { return errRelay })
	_ = cb.Execute(func() error { return errRelay })
	assert.Equal(t, CBClosed, cb.State())
}
