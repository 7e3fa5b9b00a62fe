package sensor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/02loveslollipop/climate-controller/services/controller/climate"
)

var (
	// ErrNonNumeric marks a sample whose temperature or humidity is NaN or infinite.
	ErrNonNumeric = errors.New("non-numeric sensor value")
	// ErrNoReading is returned by acquirers that have nothing to report yet.
	ErrNoReading = errors.New("no sensor reading available")
)

// Acquirer is a raw sensor source.
type Acquirer interface {
	Acquire(ctx context.Context) (temperature, humidity float64, err error)
}

// AcquirerFunc adapts a function to Acquirer.
type AcquirerFunc func(ctx context.Context) (float64, float64, error)

func (f AcquirerFunc) Acquire(ctx context.Context) (float64, float64, error) {
	return f(ctx)
}

// Reader validates samples from an Acquirer and substitutes sentinels on failure.
type Reader struct {
	acquirer Acquirer
	timeout  time.Duration
	logger   *slog.Logger
}

// NewReader builds a Reader. A non-positive timeout leaves acquisitions bounded only by the caller's context.
func NewReader(acquirer Acquirer, timeout time.Duration, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{acquirer: acquirer, timeout: timeout, logger: logger}
}

// Read acquires one sample. Any failure yields climate.InvalidReading and a WARN log line.
func (r *Reader) Read(ctx context.Context) climate.Reading {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	temperature, humidity, err := r.acquirer.Acquire(ctx)
	if err == nil {
		err = validate(temperature, humidity)
	}
	if err != nil {
		r.logger.Warn("sensor read failed, using sentinel values", "err", err)
		return climate.InvalidReading()
	}

	return climate.Reading{Temperature: temperature, Humidity: humidity, Valid: true}
}

func validate(temperature, humidity float64) error {
	if !isFinite(temperature) {
		return fmt.Errorf("%w: temperature=%v", ErrNonNumeric, temperature)
	}
	if !isFinite(humidity) {
		return fmt.Errorf("%w: humidity=%v", ErrNonNumeric, humidity)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// valueOrNaN maps a missing value to NaN so it fails validation like any other non-numeric sample.
func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
