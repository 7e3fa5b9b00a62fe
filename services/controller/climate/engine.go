package climate

// Thresholds are the automatic rule limits, both strict upper bounds.
type Thresholds struct {
	Temperature float64
	Humidity    float64
}

// DefaultThresholds returns 30 °C and 70 % relative humidity.
func DefaultThresholds() Thresholds {
	return Thresholds{Temperature: 30.0, Humidity: 70.0}
}

// Engine owns the actuator state and applies overrides and threshold rules to it.
// It is not safe for concurrent use; Controller confines it to one goroutine.
type Engine struct {
	thresholds Thresholds
	state      ActuatorState
}

// NewEngine returns an engine with both actuators off.
func NewEngine(thresholds Thresholds) *Engine {
	return &Engine{thresholds: thresholds}
}

// Thresholds returns the configured limits.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// State returns the current actuator state.
func (e *Engine) State() ActuatorState {
	return e.state
}

// ApplyOverride sets one actuator according to cmd. None leaves the state untouched.
func (e *Engine) ApplyOverride(cmd Override) {
	switch cmd {
	case FanOn:
		e.state.Fan = true
	case FanOff:
		e.state.Fan = false
	case LampOn:
		e.state.Lamp = true
	case LampOff:
		e.state.Lamp = false
	}
}

// Evaluate runs the automatic rules against reading and returns the resulting snapshot.
// Sentinel readings go through the same rules; they never exceed a threshold.
func (e *Engine) Evaluate(reading Reading) Snapshot {
	if reading.Temperature > e.thresholds.Temperature {
		e.state.Fan = true
		e.state.Lamp = false
	}
	if reading.Humidity > e.thresholds.Humidity {
		e.state.Fan = true
	}
	return Snapshot{Reading: reading, Actuators: e.state}
}
