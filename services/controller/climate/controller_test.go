package climate

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	mu      sync.Mutex
	reading Reading
	calls   int
}

func (f *fakeReader) Read(context.Context) Reading {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.reading
}

func (f *fakeReader) set(r Reading) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reading = r
}

func (f *fakeReader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startController(t *testing.T, reader Reader, interval time.Duration) (*Controller, context.CancelFunc, <-chan error) {
	t.Helper()
	ctrl := NewController(NewEngine(DefaultThresholds()), reader, interval, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- ctrl.Run(ctx) }()
	t.Cleanup(cancel)
	return ctrl, cancel, errCh
}

func TestControllerCycleAppliesOverride(t *testing.T) {
	reader := &fakeReader{reading: Reading{Temperature: 25, Humidity: 40, Valid: true}}
	ctrl, _, _ := startController(t, reader, 0)

	snap, err := ctrl.Cycle(context.Background(), FanOn)
	require.NoError(t, err)
	assert.True(t, snap.Actuators.Fan)
	assert.False(t, snap.Actuators.Lamp)
	assert.Equal(t, 1, reader.count())

	snap, err = ctrl.Cycle(context.Background(), LampOn)
	require.NoError(t, err)
	assert.True(t, snap.Actuators.Fan)
	assert.True(t, snap.Actuators.Lamp)
	assert.Equal(t, snap, ctrl.Last())
}

func TestControllerHotReadingOverridesLamp(t *testing.T) {
	reader := &fakeReader{reading: Reading{Temperature: 25, Humidity: 40, Valid: true}}
	ctrl, _, _ := startController(t, reader, 0)

	_, err := ctrl.Cycle(context.Background(), LampOn)
	require.NoError(t, err)

	reader.set(Reading{Temperature: 33, Humidity: 40, Valid: true})
	snap, err := ctrl.Cycle(context.Background(), LampOn)
	require.NoError(t, err)
	assert.True(t, snap.Actuators.Fan)
	assert.False(t, snap.Actuators.Lamp)
}

func TestControllerPeriodicCycle(t *testing.T) {
	reader := &fakeReader{reading: Reading{Temperature: 20, Humidity: 90, Valid: true}}
	ctrl, _, _ := startController(t, reader, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return ctrl.Last().Actuators.Fan
	}, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, reader.count(), 1)
}

func TestControllerStopped(t *testing.T) {
	reader := &fakeReader{reading: InvalidReading()}
	ctrl, cancel, errCh := startController(t, reader, 0)

	cancel()
	require.NoError(t, <-errCh)

	_, err := ctrl.Cycle(context.Background(), None)
	assert.ErrorIs(t, err, ErrStopped)
}

func TestControllerCycleContextCancelled(t *testing.T) {
	ctrl := NewController(NewEngine(DefaultThresholds()), &fakeReader{}, 0, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ctrl.Cycle(ctx, None)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestControllerLastBeforeFirstCycle(t *testing.T) {
	ctrl := NewController(NewEngine(DefaultThresholds()), &fakeReader{}, 0, discardLogger())
	last := ctrl.Last()
	assert.False(t, last.Reading.Valid)
	assert.Equal(t, ActuatorState{}, last.Actuators)
}
