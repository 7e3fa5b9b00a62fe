package sensor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/climate-controller/services/controller/climate"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixed(t, h float64, err error) AcquirerFunc {
	return func(context.Context) (float64, float64, error) { return t, h, err }
}

func TestReaderRead(t *testing.T) {
	tests := []struct {
		name     string
		acquirer Acquirer
		want     climate.Reading
	}{
		{"valid", fixed(23.5, 41.2, nil), climate.Reading{Temperature: 23.5, Humidity: 41.2, Valid: true}},
		{"nan temperature", fixed(math.NaN(), 41.2, nil), climate.InvalidReading()},
		{"nan humidity", fixed(23.5, math.NaN(), nil), climate.InvalidReading()},
		{"infinite", fixed(math.Inf(1), 41.2, nil), climate.InvalidReading()},
		{"acquirer error", fixed(23.5, 41.2, errors.New("bus timeout")), climate.InvalidReading()},
		{"no reading", fixed(0, 0, ErrNoReading), climate.InvalidReading()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.acquirer, time.Second, discardLogger())
			assert.Equal(t, tt.want, r.Read(context.Background()))
		})
	}
}

func TestReaderTimeout(t *testing.T) {
	blocking := AcquirerFunc(func(ctx context.Context) (float64, float64, error) {
		<-ctx.Done()
		return 0, 0, ctx.Err()
	})
	r := NewReader(blocking, 10*time.Millisecond, discardLogger())

	start := time.Now()
	got := r.Read(context.Background())
	assert.False(t, got.Valid)
	assert.Less(t, time.Since(start), time.Second)
}

func TestValidateWrapsErrNonNumeric(t *testing.T) {
	assert.NoError(t, validate(1, 2))
	assert.ErrorIs(t, validate(math.NaN(), 2), ErrNonNumeric)
	assert.ErrorIs(t, validate(1, math.Inf(-1)), ErrNonNumeric)
}

func TestSimulatedStaysInBounds(t *testing.T) {
	sim := NewSimulated(42, 0)
	for i := 0; i < 1000; i++ {
		temp, hum, err := sim.Acquire(context.Background())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, temp, simMinTemp)
		assert.LessOrEqual(t, temp, simMaxTemp)
		assert.GreaterOrEqual(t, hum, simMinHumid)
		assert.LessOrEqual(t, hum, simMaxHumid)
	}
}

func TestSimulatedFailures(t *testing.T) {
	sim := NewSimulated(7, 1)
	temp, hum, err := sim.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, math.IsNaN(temp))
	assert.True(t, math.IsNaN(hum))

	r := NewReader(sim, 0, discardLogger())
	assert.Equal(t, climate.InvalidReading(), r.Read(context.Background()))
}

func TestSimulatedCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewSimulated(1, 0).Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLatestReadingQuery(t *testing.T) {
	q, err := latestReadingQuery("climate_readings")
	require.NoError(t, err)
	assert.Contains(t, q, `FROM "climate_readings"`)

	q, err = latestReadingQuery("greenhouse.readings")
	require.NoError(t, err)
	assert.Contains(t, q, `FROM "greenhouse"."readings"`)

	_, err = latestReadingQuery("greenhouse.")
	assert.Error(t, err)
}

func newTestMQTT(now func() time.Time, maxAge time.Duration) *MQTT {
	return &MQTT{topic: "sensors/readings", maxAge: maxAge, now: now, logger: discardLogger()}
}

func TestMQTTAcquire(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := base
	m := newTestMQTT(func() time.Time { return now }, 30*time.Second)

	_, _, err := m.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrNoReading)

	require.NoError(t, m.store([]byte(`{"sensorId":"zone-A","timestamp":"2024-05-01T12:00:00Z","temperatureC":27.25,"humidityPct":55.5}`)))
	temp, hum, err := m.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 27.25, temp)
	assert.Equal(t, 55.5, hum)

	now = base.Add(31 * time.Second)
	_, _, err = m.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrNoReading)
}

func TestMQTTMissingFieldIsNonNumeric(t *testing.T) {
	m := newTestMQTT(time.Now, 0)
	require.NoError(t, m.store([]byte(`{"sensorId":"zone-A","temperatureC":27.0,"humidityPct":null}`)))

	r := NewReader(m, 0, discardLogger())
	assert.Equal(t, climate.InvalidReading(), r.Read(context.Background()))
}

func TestMQTTBadPayload(t *testing.T) {
	m := newTestMQTT(time.Now, 0)
	assert.Error(t, m.store([]byte("not json")))

	_, _, err := m.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrNoReading)
}
