package ge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kingrea/pathway/internal/pathway"
)

// ErrUnknownPattern is returned when a pattern id is not defined.
var ErrUnknownPattern = errors.New("ge: unknown pattern")

// Record is one credited course. Records are never mutated once added.
type Record struct {
	Label string   `json:"label"`
	Units float64  `json:"units"`
	Tags  []string `json:"tags"`
}

// Tracker holds the ledger for one run. It is not safe for concurrent use;
// each run owns its own Tracker.
type Tracker struct {
	patterns pathway.PatternSet
	scale    float64
	ledger   []Record
}

// New creates an empty tracker. Units are multiplied by scale when matched
// (e.g. 0.67 to express quarter units in semester units); a non-positive
// scale means 1.
func New(patterns pathway.PatternSet, scale float64) *Tracker {
	if scale <= 0 {
		scale = 1
	}
	return &Tracker{patterns: patterns, scale: scale}
}

// Scale returns the unit conversion factor.
func (t *Tracker) Scale() float64 { return t.scale }

// AddCompletedCourse appends a credit record to the ledger.
func (t *Tracker) AddCompletedCourse(label string, tags []string, units float64) {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	t.ledger = append(t.ledger, Record{Label: label, Units: units, Tags: cleaned})
}

// Ledger returns a copy of every credit record in insertion order.
func (t *Tracker) Ledger() []Record {
	out := make([]Record, len(t.ledger))
	for i, rec := range t.ledger {
		rec.Tags = append([]string(nil), rec.Tags...)
		out[i] = rec
	}
	return out
}

// Evaluate recomputes progress for the pattern from the full ledger.
func (t *Tracker) Evaluate(patternID string) (Evaluation, error) {
	pattern, ok := t.patterns.Pattern(patternID)
	if !ok {
		return Evaluation{}, fmt.Errorf("%w: %s", ErrUnknownPattern, patternID)
	}
	ev := evaluator{ledger: t.ledger, scale: t.scale}
	out := Evaluation{Pattern: pattern.ID}
	for _, node := range pattern.Requirements {
		res := ev.node(node, 0)
		out.Tree = append(out.Tree, res.tree...)
		out.Remaining = append(out.Remaining, res.remaining...)
	}
	return out, nil
}

// IsFulfilled reports whether the pattern has no remaining requirement.
func (t *Tracker) IsFulfilled(patternID string) (bool, error) {
	ev, err := t.Evaluate(patternID)
	if err != nil {
		return false, err
	}
	return ev.Fulfilled(), nil
}

// NodeStatus reports one node of the evaluated tree.
type NodeStatus struct {
	ID               string         `json:"id"`
	Name             string         `json:"name,omitempty"`
	Depth            int            `json:"depth"`
	Rollup           pathway.Rollup `json:"rollup,omitempty"`
	CoursesMatched   int            `json:"courses_matched"`
	UnitsMatched     float64        `json:"units_matched"`
	CoursesRemaining int            `json:"courses_remaining"`
	UnitsRemaining   float64        `json:"units_remaining"`
	Satisfied        bool           `json:"satisfied"`
}

// Remaining is a schedulable requirement with outstanding need. Crediting a
// course under ID counts toward it.
type Remaining struct {
	ID               string  `json:"id"`
	Name             string  `json:"name,omitempty"`
	CoursesRemaining int     `json:"courses_remaining"`
	UnitsRemaining   float64 `json:"units_remaining"`
}

// Evaluation is a full recomputation of one pattern.
type Evaluation struct {
	Pattern   string       `json:"pattern"`
	Tree      []NodeStatus `json:"tree"`
	Remaining []Remaining  `json:"remaining,omitempty"`
}

// Fulfilled reports whether nothing remains.
func (e Evaluation) Fulfilled() bool { return len(e.Remaining) == 0 }

// Lookup finds a remaining entry by id.
func (e Evaluation) Lookup(id string) (Remaining, bool) {
	for _, rem := range e.Remaining {
		if rem.ID == id {
			return rem, true
		}
	}
	return Remaining{}, false
}

// Node finds a tree node by id.
func (e Evaluation) Node(id string) (NodeStatus, bool) {
	for _, n := range e.Tree {
		if n.ID == id {
			return n, true
		}
	}
	return NodeStatus{}, false
}
