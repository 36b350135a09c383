package probe

import (
	"context"
	"fmt"

	"github.com/neuropulse/neuropulse/internal/config"
)

// Reading is one instantaneous set of raw telemetry values. Usage and
// rate fields are nominally in [0, 1]; the calculator clamps them at the
// input boundary, so sources are not trusted to stay in range.
type Reading struct {
	CPUUsage       float64
	MemoryUsage    float64
	GPUUtilization float64

	ActiveNeurons          int
	CrossDomainConnections int

	ResponseTimeMs float64
	ErrorRate      float64
	Throughput     float64 // readings per minute
}

// Source supplies raw readings to the engine. Sample must be cheap or
// honor the context deadline; the engine never assumes which
// implementation it talks to and recovers from errors by serving its
// last cached snapshot.
type Source interface {
	Sample(ctx context.Context) (Reading, error)
}

// BiasFunc supplies the engine's current consciousness depth to
// feedback-aware sources. See NewSynthetic.
type BiasFunc func() float64

// New returns the Source selected by cfg.Type.
func New(cfg config.SourceConfig) (Source, error) {
	switch cfg.Type {
	case "synthetic", "":
		return NewSynthetic(cfg.Seed), nil
	case "fixed":
		return &Fixed{}, nil
	case "host":
		return NewHost(), nil
	case "prometheus":
		return NewPrometheus(cfg)
	default:
		return nil, fmt.Errorf("probe: unsupported source type %q", cfg.Type)
	}
}

// Fixed returns the same Reading on every call. Zero value returns a
// zero Reading. Used as a deterministic test double.
type Fixed struct {
	Reading Reading
}

// Sample implements Source.
func (f *Fixed) Sample(context.Context) (Reading, error) {
	return f.Reading, nil
}
