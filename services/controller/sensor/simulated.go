package sensor

import (
	"context"
	"math"
	"math/rand/v2"
)

// Simulated produces a bounded random walk around room conditions.
// It is not safe for concurrent use.
type Simulated struct {
	rng         *rand.Rand
	temperature float64
	humidity    float64
	failureRate float64
}

const (
	simMinTemp  = 10.0
	simMaxTemp  = 40.0
	simMinHumid = 20.0
	simMaxHumid = 95.0
	simTempStep = 0.5
	simHumStep  = 2.0
)

// NewSimulated starts the walk at 24 °C / 50 %. failureRate is the probability that a sample is NaN.
func NewSimulated(seed uint64, failureRate float64) *Simulated {
	return &Simulated{
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		temperature: 24.0,
		humidity:    50.0,
		failureRate: failureRate,
	}
}

func (s *Simulated) Acquire(ctx context.Context) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	s.temperature = clamp(s.temperature+(s.rng.Float64()*2-1)*simTempStep, simMinTemp, simMaxTemp)
	s.humidity = clamp(s.humidity+(s.rng.Float64()*2-1)*simHumStep, simMinHumid, simMaxHumid)

	if s.failureRate > 0 && s.rng.Float64() < s.failureRate {
		return math.NaN(), math.NaN(), nil
	}
	return round2(s.temperature), round2(s.humidity), nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
