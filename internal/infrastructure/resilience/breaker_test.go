package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream failed")

func newTestBreaker(threshold int, cooldown time.Duration) (*Breaker, *time.Time) {
	b := New("test", threshold, cooldown)
	now := time.Now()
	b.now = func() time.Time { return now }
	return b, &now
}

func fail(b *Breaker) error {
	return b.Execute(func() error { return errUpstream })
}

func succeed(b *Breaker) error {
	return b.Execute(func() error { return nil })
}

func TestBreakerStaysClosedBelowThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	require.ErrorIs(t, fail(b), errUpstream)
	require.ErrorIs(t, fail(b), errUpstream)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, fail(b), errUpstream)
	}
	assert.Equal(t, StateOpen, b.State())

	// Calls are rejected without running fn.
	ran := false
	err := b.Execute(func() error { ran = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, ran)
}

func TestBreakerSuccessResetsFailureRun(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	require.Error(t, fail(b))
	require.Error(t, fail(b))
	require.NoError(t, succeed(b))
	require.Error(t, fail(b))
	require.Error(t, fail(b))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerProbeAfterCooldown(t *testing.T) {
	b, now := newTestBreaker(2, time.Minute)

	require.Error(t, fail(b))
	require.Error(t, fail(b))
	require.Equal(t, StateOpen, b.State())

	*now = now.Add(time.Minute)
	assert.Equal(t, StateHalfOpen, b.State())

	// A successful probe closes the breaker again.
	require.NoError(t, succeed(b))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	b, now := newTestBreaker(2, time.Minute)

	require.Error(t, fail(b))
	require.Error(t, fail(b))
	*now = now.Add(time.Minute)

	require.ErrorIs(t, fail(b), errUpstream)
	assert.Equal(t, StateOpen, b.State())

	// The reopened cooldown starts from the failed probe.
	ran := false
	err := b.Execute(func() error { ran = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, ran)
}

func TestBreakerDefaults(t *testing.T) {
	b := New("defaults", 0, 0)
	assert.Equal(t, 5, b.threshold)
	assert.Equal(t, 30*time.Second, b.cooldown)
	assert.Equal(t, "defaults", b.Name())
	assert.Equal(t, "closed", b.State().String())
}
