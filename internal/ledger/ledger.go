package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/neuropulse/neuropulse/internal/compute"
	"github.com/neuropulse/neuropulse/internal/series"
)

// Validation limits for externally-recorded events.
const (
	maxKindLen      = 64
	maxPayloadBytes = 4096
)

// Boundary validation errors. A rejected event never mutates the ledger.
var (
	ErrInvalidKind     = errors.New("ledger: kind must be non-empty printable text")
	ErrInvalidPayload  = errors.New("ledger: payload is not JSON-encodable")
	ErrPayloadTooLarge = fmt.Errorf("ledger: payload exceeds %d bytes", maxPayloadBytes)
)

// Record is one externally-recorded event. Immutable once appended; the
// engine reads records only in aggregate (counts by kind). The ID is
// handed back to the recorder so accepted events can be correlated.
type Record struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Ledger holds the bounded interaction and learned-pattern event queues.
// Recording into a full queue evicts the oldest record transparently —
// callers never see the capacity.
//
// Ledger is internally synchronized: recording may run concurrently with
// engine recomputes.
type Ledger struct {
	mu           sync.Mutex
	interactions *series.Bounded[Record]
	patterns     *series.Bounded[Record]
	now          func() time.Time // injectable for deterministic tests
}

// New creates a Ledger with the given queue capacities.
func New(interactionCap, patternCap int) (*Ledger, error) {
	interactions, err := series.New[Record](interactionCap)
	if err != nil {
		return nil, fmt.Errorf("ledger: interactions: %w", err)
	}
	patterns, err := series.New[Record](patternCap)
	if err != nil {
		return nil, fmt.Errorf("ledger: patterns: %w", err)
	}
	return &Ledger{
		interactions: interactions,
		patterns:     patterns,
		now:          time.Now,
	}, nil
}

// RecordInteraction appends an interaction event and returns the ID
// assigned to the new record, for caller-side correlation.
func (l *Ledger) RecordInteraction(kind string, payload map[string]any) (string, error) {
	return l.record(l.interactions, kind, payload)
}

// RecordPattern appends a learned-pattern event and returns the new
// record's ID.
func (l *Ledger) RecordPattern(kind string, payload map[string]any) (string, error) {
	return l.record(l.patterns, kind, payload)
}

func (l *Ledger) record(dst *series.Bounded[Record], kind string, payload map[string]any) (string, error) {
	if err := validateKind(kind); err != nil {
		return "", err
	}
	if err := validatePayload(payload); err != nil {
		return "", err
	}

	id := uuid.NewString()
	l.mu.Lock()
	defer l.mu.Unlock()
	dst.Append(Record{
		ID:        id,
		Kind:      kind,
		Payload:   payload,
		Timestamp: l.now(),
	})
	return id, nil
}

// Interactions returns the retained interaction count for kind. A zero
// since counts everything retained; otherwise only records at or after
// since are counted.
func (l *Ledger) Interactions(kind string, since time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return countByKind(l.interactions, kind, since)
}

// Patterns returns the retained pattern count for kind, filtered like
// Interactions.
func (l *Ledger) Patterns(kind string, since time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return countByKind(l.patterns, kind, since)
}

// Counts returns the aggregate per-kind view consumed by the calculator.
func (l *Ledger) Counts() compute.EventCounts {
	l.mu.Lock()
	defer l.mu.Unlock()

	return compute.EventCounts{
		Interactions: tally(l.interactions),
		Patterns:     tally(l.patterns),
	}
}

// Reset clears both queues.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.interactions.Clear()
	l.patterns.Clear()
}

func countByKind(b *series.Bounded[Record], kind string, since time.Time) int {
	var n int
	for _, rec := range b.All() {
		if rec.Kind != kind {
			continue
		}
		if !since.IsZero() && rec.Timestamp.Before(since) {
			continue
		}
		n++
	}
	return n
}

func tally(b *series.Bounded[Record]) map[string]int {
	out := make(map[string]int)
	for _, rec := range b.All() {
		out[rec.Kind]++
	}
	return out
}

func validateKind(kind string) error {
	if kind == "" || len(kind) > maxKindLen {
		return ErrInvalidKind
	}
	for _, r := range kind {
		if !unicode.IsPrint(r) {
			return ErrInvalidKind
		}
	}
	return nil
}

func validatePayload(payload map[string]any) error {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return ErrInvalidPayload
	}
	if len(data) > maxPayloadBytes {
		return ErrPayloadTooLarge
	}
	return nil
}
