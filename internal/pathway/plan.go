package pathway

import (
	"strings"
	"time"
)

// Kind classifies a candidate for the term balancer.
type Kind string

const (
	KindMajor    Kind = "major"
	KindGE       Kind = "ge"
	KindUnlocker Kind = "unlocker"
	KindElective Kind = "elective"
	KindOther    Kind = "other"
)

// Candidate is a course the scheduler may place in the current term.
type Candidate struct {
	ID    string   `json:"id"`
	Units float64  `json:"units"`
	Kind  Kind     `json:"kind"`
	Tags  []string `json:"tags,omitempty"`
	// GEKey names the GE requirement a placeholder credits when committed.
	GEKey string `json:"ge_key,omitempty"`
}

// Clone returns a deep copy.
func (c Candidate) Clone() Candidate {
	c.Tags = cloneStrings(c.Tags)
	return c
}

// PlannedCourse is one committed course inside a term.
type PlannedCourse struct {
	ID       string   `json:"course_id"`
	Units    float64  `json:"units"`
	Kind     Kind     `json:"kind"`
	Tags     []string `json:"tags,omitempty"`
	Fulfills string   `json:"fulfills,omitempty"`
}

// Term is one committed scheduling unit.
type Term struct {
	Index   int             `json:"index"`
	Label   string          `json:"label"`
	Units   float64         `json:"units"`
	Courses []PlannedCourse `json:"courses"`
}

// CourseIDs lists the committed identifiers in selection order.
func (t Term) CourseIDs() []string {
	out := make([]string, 0, len(t.Courses))
	for _, c := range t.Courses {
		out = append(out, c.ID)
	}
	return out
}

// Plan is the exported result of one scheduling run.
type Plan struct {
	RunID          string    `json:"run_id"`
	Source         string    `json:"source"`
	Targets        []string  `json:"targets"`
	Pattern        string    `json:"ge_pattern"`
	Status         string    `json:"status"`
	Reason         string    `json:"reason,omitempty"`
	Terms          []Term    `json:"terms"`
	TotalUnits     float64   `json:"total_units"`
	OverTwoYears   bool      `json:"over_two_years"`
	MeetsUnitFloor bool      `json:"meets_unit_floor"`
	Unmet          []string  `json:"unmet,omitempty"`
	Warnings       []string  `json:"warnings,omitempty"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// Label returns a readable name for the plan's target set.
func (p Plan) Label() string {
	targets := strings.Join(p.Targets, "+")
	if targets == "" {
		targets = "none"
	}
	return p.Source + " -> " + targets + " (" + p.Pattern + ")"
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
