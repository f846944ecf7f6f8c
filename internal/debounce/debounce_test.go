package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureTimers replaces afterFunc with one that records callbacks instead of
// scheduling them.
func captureTimers(t *testing.T) *[]func() {
	t.Helper()
	orig := afterFunc
	t.Cleanup(func() { afterFunc = orig })
	var callbacks []func()
	afterFunc = func(_ time.Duration, f func()) *time.Timer {
		callbacks = append(callbacks, f)
		timer := time.NewTimer(time.Hour)
		timer.Stop()
		return timer
	}
	return &callbacks
}

func TestStaleCallbackIsIgnored(t *testing.T) {
	callbacks := captureTimers(t)

	var calls atomic.Int32
	d := New(time.Second, func() { calls.Add(1) })
	d.Trigger()
	d.Trigger()
	d.Trigger()

	require.Len(t, *callbacks, 3)
	for _, cb := range *callbacks {
		cb()
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestStopDropsPendingCallback(t *testing.T) {
	callbacks := captureTimers(t)

	var calls atomic.Int32
	d := New(time.Second, func() { calls.Add(1) })
	d.Trigger()
	d.Stop()

	require.Len(t, *callbacks, 1)
	(*callbacks)[0]()
	assert.Zero(t, calls.Load())

	// A later Trigger works again.
	d.Trigger()
	(*callbacks)[1]()
	assert.EqualValues(t, 1, calls.Load())
}

func TestTriggerFiresOnceAfterBurst(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})
	d := New(10*time.Millisecond, func() {
		if calls.Add(1) == 1 {
			close(done)
		}
	})
	for range 5 {
		d.Trigger()
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debouncer did not fire")
	}
	time.Sleep(30 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())
}

func TestStopBeforeDelay(t *testing.T) {
	var calls atomic.Int32
	d := New(20*time.Millisecond, func() { calls.Add(1) })
	d.Trigger()
	d.Stop()
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestEnsure(t *testing.T) {
	var calls atomic.Int32
	var d *Debouncer

	first := Ensure(&d, 5*time.Millisecond, func() { calls.Add(1) })
	require.NotNil(t, first)
	assert.Same(t, d, first)

	second := Ensure(&d, 5*time.Millisecond, func() { calls.Add(10) })
	assert.Same(t, first, second)

	first.Trigger()
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())
}
