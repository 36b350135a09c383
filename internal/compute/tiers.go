package compute

import "fmt"

// Tier is one (lower bound, label) pair in an ordered threshold table.
type Tier struct {
	Lower float64
	Label string
}

// Table is an ordered set of tiers, ascending by Lower. Label(v) returns
// the label of the highest tier whose lower bound is <= v, so categorical
// scores are selected by explicit, testable thresholds rather than inline
// literals.
type Table []Tier

// NewTable validates and returns a tier table. The first tier must cover
// the bottom of the domain; bounds must be strictly ascending.
func NewTable(tiers []Tier) (Table, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("compute: tier table must not be empty")
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].Lower <= tiers[i-1].Lower {
			return nil, fmt.Errorf("compute: tier bounds must be strictly ascending, got %v after %v",
				tiers[i].Lower, tiers[i-1].Lower)
		}
	}
	for i, tr := range tiers {
		if tr.Label == "" {
			return nil, fmt.Errorf("compute: tier %d has empty label", i)
		}
	}
	return Table(tiers), nil
}

// Label returns the label of the highest tier whose lower bound is <= v.
// Values below the first tier's bound map to the first tier.
func (t Table) Label(v float64) string {
	label := t[0].Label
	for _, tr := range t {
		if v >= tr.Lower {
			label = tr.Label
		}
	}
	return label
}

// Default tier tables. All are overridable via configuration.
var (
	// DefaultEmotionTiers maps stress level (cpu + memory usage, 0–2)
	// to an emotional state label.
	DefaultEmotionTiers = Table{
		{Lower: 0.0, Label: "calm"},
		{Lower: 0.6, Label: "focused"},
		{Lower: 1.0, Label: "strained"},
		{Lower: 1.4, Label: "overloaded"},
	}

	// DefaultConsciousnessTiers maps the performance/neural blend (0–1)
	// to a consciousness level label.
	DefaultConsciousnessTiers = Table{
		{Lower: 0.0, Label: "dormant"},
		{Lower: 0.4, Label: "emergent"},
		{Lower: 0.6, Label: "aware"},
		{Lower: 0.8, Label: "transcendent"},
	}

	// DefaultMetaCognitionTiers maps the same blend to a meta-cognition
	// label.
	DefaultMetaCognitionTiers = Table{
		{Lower: 0.0, Label: "reactive"},
		{Lower: 0.4, Label: "basic"},
		{Lower: 0.6, Label: "developing"},
		{Lower: 0.8, Label: "recursive"},
	}
)
