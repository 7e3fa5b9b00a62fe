package climate

// SentinelValue replaces both measurements when the sensor cannot produce a reading.
const SentinelValue = -99.0

// Reading is one sensor sample taken during a control cycle.
type Reading struct {
	Temperature float64
	Humidity    float64
	Valid       bool
}

// InvalidReading returns the sentinel reading used when acquisition fails.
func InvalidReading() Reading {
	return Reading{Temperature: SentinelValue, Humidity: SentinelValue}
}

// ActuatorState holds the commanded state of the fan and the heat lamp.
type ActuatorState struct {
	Fan  bool
	Lamp bool
}

// Override is a manual actuator command carried by a request.
type Override int

const (
	None Override = iota
	FanOn
	FanOff
	LampOn
	LampOff
)

func (o Override) String() string {
	switch o {
	case None:
		return "none"
	case FanOn:
		return "fan_on"
	case FanOff:
		return "fan_off"
	case LampOn:
		return "lamp_on"
	case LampOff:
		return "lamp_off"
	default:
		return "unknown"
	}
}

// Snapshot pairs a reading with the actuator state evaluated against it.
type Snapshot struct {
	Reading   Reading
	Actuators ActuatorState
}
