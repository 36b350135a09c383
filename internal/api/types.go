package api

// MetricsResponse is the payload for GET /api/v1/metrics and the ws
// broadcast body: composite scores plus the raw reading echo.
type MetricsResponse struct {
	Timestamp string          `json:"timestamp"` // RFC3339Nano
	Scores    ScoresResponse  `json:"scores"`
	Reading   ReadingResponse `json:"reading"`
}

// ScoresResponse carries every derived score of one snapshot.
type ScoresResponse struct {
	Awareness      float64 `json:"awareness"`
	SelfReflection float64 `json:"self_reflection"`

	EmotionalState     string `json:"emotional_state"`
	ConsciousnessLevel string `json:"consciousness_level"`
	MetaCognition      string `json:"meta_cognition"`

	EmotionalIntelligence float64 `json:"emotional_intelligence"`
	CreativityIndex       float64 `json:"creativity_index"`
	EmpathyLevel          float64 `json:"empathy_level"`
	SocialIntelligence    float64 `json:"social_intelligence"`
	IntuitionScore        float64 `json:"intuition_score"`
	WisdomLevel           float64 `json:"wisdom_level"`

	ConsciousnessDepth float64 `json:"consciousness_depth"`
	QuantumCoherence   float64 `json:"quantum_coherence"`

	StressLevel    float64 `json:"stress_level"`
	NeuralActivity float64 `json:"neural_activity"`
}

// ReadingResponse echoes the raw reading the snapshot was computed from.
type ReadingResponse struct {
	CPUUsage               float64 `json:"cpu_usage"`
	MemoryUsage            float64 `json:"memory_usage"`
	GPUUtilization         float64 `json:"gpu_utilization"`
	ActiveNeurons          int     `json:"active_neurons"`
	CrossDomainConnections int     `json:"cross_domain_connections"`
	ResponseTimeMs         float64 `json:"response_time_ms"`
	ErrorRate              float64 `json:"error_rate"`
	Throughput             float64 `json:"throughput"`
}

// HistoryResponse is the payload for GET /api/v1/history/{series}.
type HistoryResponse struct {
	Series  string           `json:"series"`
	Samples []SampleResponse `json:"samples"` // oldest → newest
}

// SampleResponse is one history point.
type SampleResponse struct {
	Timestamp string             `json:"timestamp"` // RFC3339Nano
	Values    map[string]float64 `json:"values"`
}

// EventRequest is the body for POST /api/v1/interactions and
// POST /api/v1/patterns.
type EventRequest struct {
	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload,omitempty"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status             string   `json:"status"`
	EmotionalState     string   `json:"emotional_state"`
	ConsciousnessLevel string   `json:"consciousness_level"`
	Awareness          float64  `json:"awareness"`
	ActiveAlerts       int      `json:"active_alerts"`
	Series             []string `json:"series"`
}

// EventResponse acknowledges a recorded event with the ID the ledger
// assigned to it.
type EventResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// statusResponse is a generic JSON acknowledgement body.
type statusResponse struct {
	Status string `json:"status"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
