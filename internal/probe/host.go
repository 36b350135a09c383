package probe

import (
	"context"
	"log/slog"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Host reads real CPU and memory utilization from the operating system
// via gopsutil. Fields with no OS analogue (neuron counts, GPU, error
// rate) are filled from a seeded synthetic source so the Reading stays
// fully populated.
//
// Host is an optional integration; the default source is Synthetic.
type Host struct {
	fill *Synthetic
}

// NewHost returns a Host source.
func NewHost() *Host {
	return &Host{fill: NewSynthetic(time.Now().UnixNano())}
}

// Sample implements Source. Individual gopsutil failures are logged and
// fall back to the synthetic value for that field rather than failing
// the whole reading.
func (h *Host) Sample(ctx context.Context) (Reading, error) {
	r, _ := h.fill.Sample(ctx)

	if percentages, err := cpu.PercentWithContext(ctx, 100*time.Millisecond, false); err == nil && len(percentages) > 0 {
		r.CPUUsage = percentages[0] / 100
	} else if err != nil {
		slog.Debug("probe: host cpu read failed, using synthetic value", "err", err)
	}

	if v, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		r.MemoryUsage = v.UsedPercent / 100
	} else {
		slog.Debug("probe: host memory read failed, using synthetic value", "err", err)
	}

	return r, nil
}
