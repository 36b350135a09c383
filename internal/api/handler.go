package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/neuropulse/neuropulse/internal/alerts"
	"github.com/neuropulse/neuropulse/internal/engine"
)

// maxEventBody bounds the request body for event recording endpoints.
const maxEventBody = 1 << 16

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It reads telemetry through the engine's narrow query API and returns
// JSON responses.
type Handler struct {
	engine *engine.Engine
	alerts *alerts.Engine
	mux    *http.ServeMux
}

// New creates a Handler wired to the given engine and alert engine, and
// registers all routes.
func New(eng *engine.Engine, al *alerts.Engine) http.Handler {
	h := &Handler{engine: eng, alerts: al, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/metrics", h.metrics)
	h.mux.HandleFunc("/api/v1/history/", h.history) // subtree — extracts {series}
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)
	h.mux.HandleFunc("/api/v1/interactions", h.recordInteraction)
	h.mux.HandleFunc("/api/v1/patterns", h.recordPattern)
	h.mux.HandleFunc("/api/v1/refresh", h.refresh)
	h.mux.HandleFunc("/api/v1/reset", h.reset)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// BuildMetrics maps a snapshot to its JSON representation. Shared with
// the WebSocket hub so both surfaces emit the same schema.
func BuildMetrics(snap engine.Snapshot) MetricsResponse {
	s := snap.Scores
	return MetricsResponse{
		Timestamp: snap.Timestamp.UTC().Format(time.RFC3339Nano),
		Scores: ScoresResponse{
			Awareness:      s.Awareness,
			SelfReflection: s.SelfReflection,

			EmotionalState:     s.EmotionalState,
			ConsciousnessLevel: s.ConsciousnessLevel,
			MetaCognition:      s.MetaCognition,

			EmotionalIntelligence: s.EmotionalIntelligence,
			CreativityIndex:       s.CreativityIndex,
			EmpathyLevel:          s.EmpathyLevel,
			SocialIntelligence:    s.SocialIntelligence,
			IntuitionScore:        s.IntuitionScore,
			WisdomLevel:           s.WisdomLevel,

			ConsciousnessDepth: s.ConsciousnessDepth,
			QuantumCoherence:   s.QuantumCoherence,

			StressLevel:    s.StressLevel,
			NeuralActivity: s.NeuralActivity,
		},
		Reading: ReadingResponse{
			CPUUsage:               snap.Reading.CPUUsage,
			MemoryUsage:            snap.Reading.MemoryUsage,
			GPUUtilization:         snap.Reading.GPUUtilization,
			ActiveNeurons:          snap.Reading.ActiveNeurons,
			CrossDomainConnections: snap.Reading.CrossDomainConnections,
			ResponseTimeMs:         snap.Reading.ResponseTimeMs,
			ErrorRate:              snap.Reading.ErrorRate,
			Throughput:             snap.Reading.Throughput,
		},
	}
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — liveness plus an engine summary.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := h.engine.GetMetrics()
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:             "ok",
		EmotionalState:     snap.Scores.EmotionalState,
		ConsciousnessLevel: snap.Scores.ConsciousnessLevel,
		Awareness:          snap.Scores.Awareness,
		ActiveAlerts:       len(h.alerts.Active()),
		Series:             h.engine.SeriesNames(),
	})
}

// metrics returns GET /api/v1/metrics — the current snapshot. The read is
// throttled by the engine: inside the update interval the cached snapshot
// comes back unchanged.
func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildMetrics(h.engine.GetMetrics()))
}

// history returns GET /api/v1/history/{series} — retained samples,
// oldest first, bounded by the series capacity.
func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/v1/history/")
	if name == "" {
		jsonErr(w, http.StatusBadRequest, "series name is required")
		return
	}

	samples, err := h.engine.History(name)
	if err != nil {
		jsonErr(w, http.StatusNotFound, "unknown series")
		return
	}

	out := make([]SampleResponse, 0, len(samples))
	for _, s := range samples {
		out = append(out, SampleResponse{
			Timestamp: s.Timestamp.UTC().Format(time.RFC3339Nano),
			Values:    s.Values,
		})
	}
	jsonResp(w, http.StatusOK, HistoryResponse{Series: name, Samples: out})
}

// listAlerts returns GET /api/v1/alerts — firing plus recently resolved.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.alerts.Active())
}

// recordInteraction handles POST /api/v1/interactions.
func (h *Handler) recordInteraction(w http.ResponseWriter, r *http.Request) {
	h.recordEvent(w, r, h.engine.RecordInteraction)
}

// recordPattern handles POST /api/v1/patterns.
func (h *Handler) recordPattern(w http.ResponseWriter, r *http.Request) {
	h.recordEvent(w, r, h.engine.RecordPattern)
}

func (h *Handler) recordEvent(w http.ResponseWriter, r *http.Request, record func(string, map[string]any) (string, error)) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req EventRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody))
	if err := dec.Decode(&req); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := record(req.Kind, req.Payload)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResp(w, http.StatusAccepted, EventResponse{Status: "recorded", ID: id})
}

// refresh handles POST /api/v1/refresh — recompute now, bypassing the
// throttle.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.engine.ForceUpdate()
	jsonResp(w, http.StatusOK, statusResponse{Status: "refreshed"})
}

// reset handles POST /api/v1/reset — clear all histories and restore the
// initial feedback state.
func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.engine.Reset()
	jsonResp(w, http.StatusOK, statusResponse{Status: "reset"})
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
