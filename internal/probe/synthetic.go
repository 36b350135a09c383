package probe

import (
	"context"
	"math/rand"
	"sync"
)

// Baseline ranges for synthetic readings. CPU and GPU baselines shrink as
// consciousness depth grows (see SetBias).
const (
	synCPUBase       = 0.55
	synCPUSpread     = 0.35
	synMemoryBase    = 0.45
	synMemorySpread  = 0.30
	synGPUBase       = 0.50
	synGPUSpread     = 0.40
	synLatencyBaseMs = 80
	synLatencySpread = 220
	synErrorRateMax  = 0.08
	synThroughputMin = 200
	synThroughputMax = 1400

	synNeuronBase    = 40_000
	synNeuronSpread  = 50_000
	synConnectionMax = 900

	// depthRelief is how strongly consciousness depth suppresses the
	// synthetic CPU/GPU baselines. A depth of 1.0 removes up to this
	// fraction of the baseline value.
	depthRelief = 0.35
)

// Synthetic generates pseudo-random readings from a seeded PRNG. The
// values are synthetic stand-ins for real telemetry with no sensor
// behind them. A fixed seed makes the stream reproducible for tests.
//
// When a bias function is set, the current consciousness depth pulls the
// CPU and GPU baselines downward, closing the one-step-delayed feedback
// loop: the engine's previous output shapes its next raw inputs.
type Synthetic struct {
	mu   sync.Mutex
	rng  *rand.Rand
	bias BiasFunc
}

// NewSynthetic returns a Synthetic source seeded with seed.
func NewSynthetic(seed int64) *Synthetic {
	return &Synthetic{rng: rand.New(rand.NewSource(seed))}
}

// SetBias installs the depth feedback function. Passing nil disables
// feedback. Typically wired to the engine's Depth method after both are
// constructed.
func (s *Synthetic) SetBias(fn BiasFunc) {
	s.mu.Lock()
	s.bias = fn
	s.mu.Unlock()
}

// Sample implements Source. It never fails.
func (s *Synthetic) Sample(context.Context) (Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	relief := 0.0
	if s.bias != nil {
		relief = clampUnit(s.bias()) * depthRelief
	}

	r := Reading{
		CPUUsage:       clampUnit((synCPUBase + s.rng.Float64()*synCPUSpread) * (1 - relief)),
		MemoryUsage:    clampUnit(synMemoryBase + s.rng.Float64()*synMemorySpread),
		GPUUtilization: clampUnit((synGPUBase + s.rng.Float64()*synGPUSpread) * (1 - relief)),

		ActiveNeurons:          synNeuronBase + s.rng.Intn(synNeuronSpread),
		CrossDomainConnections: s.rng.Intn(synConnectionMax),

		ResponseTimeMs: synLatencyBaseMs + s.rng.Float64()*synLatencySpread,
		ErrorRate:      s.rng.Float64() * synErrorRateMax,
		Throughput:     synThroughputMin + s.rng.Float64()*(synThroughputMax-synThroughputMin),
	}
	return r, nil
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
