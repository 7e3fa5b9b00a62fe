package climate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrStopped is returned by Cycle once the control loop has exited.
var ErrStopped = errors.New("control loop stopped")

// Reader produces one reading per call. Failures are reported as an invalid reading.
type Reader interface {
	Read(ctx context.Context) Reading
}

type cycleRequest struct {
	cmd   Override
	reply chan Snapshot
}

// Controller runs the control loop. The engine and the reader are only touched
// from the goroutine executing Run.
type Controller struct {
	engine   *Engine
	reader   Reader
	interval time.Duration
	logger   *slog.Logger

	requests chan cycleRequest
	done     chan struct{}

	mu   sync.RWMutex
	last Snapshot
}

// NewController wires an engine to a reader. A non-positive interval disables periodic cycles.
func NewController(engine *Engine, reader Reader, interval time.Duration, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		engine:   engine,
		reader:   reader,
		interval: interval,
		logger:   logger,
		requests: make(chan cycleRequest),
		done:     make(chan struct{}),
		last: Snapshot{
			Reading:   InvalidReading(),
			Actuators: engine.State(),
		},
	}
}

// Run processes cycle requests and poll ticks until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)

	var tick <-chan time.Time
	if c.interval > 0 {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	c.logger.Info("control loop started",
		"interval", c.interval,
		"temp_threshold", c.engine.Thresholds().Temperature,
		"humid_threshold", c.engine.Thresholds().Humidity,
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("control loop stopped")
			return nil
		case req := <-c.requests:
			req.reply <- c.cycle(ctx, req.cmd)
		case <-tick:
			c.cycle(ctx, None)
		}
	}
}

// Cycle asks the loop to run one cycle with cmd and waits for the resulting snapshot.
func (c *Controller) Cycle(ctx context.Context, cmd Override) (Snapshot, error) {
	req := cycleRequest{cmd: cmd, reply: make(chan Snapshot, 1)}

	select {
	case c.requests <- req:
	case <-c.done:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}

	select {
	case snap := <-req.reply:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Last returns the snapshot produced by the most recent cycle.
func (c *Controller) Last() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

func (c *Controller) cycle(ctx context.Context, cmd Override) Snapshot {
	c.engine.ApplyOverride(cmd)
	reading := c.reader.Read(ctx)
	snap := c.engine.Evaluate(reading)

	c.mu.Lock()
	c.last = snap
	c.mu.Unlock()

	c.logger.Debug("cycle",
		"override", cmd.String(),
		"temperature", reading.Temperature,
		"humidity", reading.Humidity,
		"valid", reading.Valid,
		"fan", snap.Actuators.Fan,
		"lamp", snap.Actuators.Lamp,
	)
	return snap
}
