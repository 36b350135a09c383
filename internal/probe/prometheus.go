package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/neuropulse/neuropulse/internal/config"
)

const defaultSampleTimeout = 5 * time.Second

// Prometheus scrapes a Prometheus exposition endpoint and maps configured
// metric families onto Reading fields. Scrape failures are returned as
// errors; the engine handles them by serving its cached snapshot.
type Prometheus struct {
	endpoint string
	metrics  map[string]string // reading field -> metric family name
	client   *http.Client
}

// NewPrometheus builds a Prometheus source from cfg. The endpoint and at
// least one metric mapping are required.
func NewPrometheus(cfg config.SourceConfig) (*Prometheus, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("probe: prometheus source requires an endpoint")
	}
	if len(cfg.Metrics) == 0 {
		return nil, fmt.Errorf("probe: prometheus source requires at least one metric mapping")
	}
	for field := range cfg.Metrics {
		if !validReadingField(field) {
			return nil, fmt.Errorf("probe: unknown reading field %q in metric mapping", field)
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSampleTimeout
	}
	return &Prometheus{
		endpoint: cfg.Endpoint,
		metrics:  cfg.Metrics,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Sample implements Source.
func (p *Prometheus) Sample(ctx context.Context) (Reading, error) {
	families, err := p.fetch(ctx)
	if err != nil {
		return Reading{}, err
	}

	var r Reading
	for field, name := range p.metrics {
		mf, ok := families[name]
		if !ok {
			continue // absent metric leaves the field at zero
		}
		setReadingField(&r, field, firstValue(mf))
	}
	return r, nil
}

func (p *Prometheus) fetch(ctx context.Context) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("probe: build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe: http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("probe: endpoint returned HTTP %d", resp.StatusCode)
	}

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("probe: parse exposition text: %w", err)
	}
	return families, nil
}

// firstValue extracts the value of the first metric in a family,
// regardless of type.
func firstValue(mf *dto.MetricFamily) float64 {
	if len(mf.Metric) == 0 {
		return 0
	}
	m := mf.Metric[0]
	switch {
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Untyped != nil:
		return m.Untyped.GetValue()
	default:
		return 0
	}
}

func validReadingField(field string) bool {
	switch field {
	case "cpu_usage", "memory_usage", "gpu_utilization",
		"active_neurons", "cross_domain_connections",
		"response_time_ms", "error_rate", "throughput":
		return true
	}
	return false
}

func setReadingField(r *Reading, field string, v float64) {
	switch field {
	case "cpu_usage":
		r.CPUUsage = v
	case "memory_usage":
		r.MemoryUsage = v
	case "gpu_utilization":
		r.GPUUtilization = v
	case "active_neurons":
		r.ActiveNeurons = int(v)
	case "cross_domain_connections":
		r.CrossDomainConnections = int(v)
	case "response_time_ms":
		r.ResponseTimeMs = v
	case "error_rate":
		r.ErrorRate = v
	case "throughput":
		r.Throughput = v
	}
}
