package engine

import (
	"time"

	"github.com/kingrea/pathway/internal/pathway"
	"github.com/kingrea/pathway/internal/pathway/ge"
	"github.com/kingrea/pathway/internal/pathway/resolver"
)

// Status enumerates scheduler phases. Everything but StatusActive is terminal.
type Status string

const (
	StatusActive        Status = "term_active"
	StatusComplete      Status = "complete"
	StatusStalled       Status = "stalled"
	StatusSafetyAborted Status = "safety_aborted"
)

// Terminal reports whether the status ends a run.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusStalled || s == StatusSafetyAborted
}

// ReasonCode explains a terminal status.
type ReasonCode string

const (
	ReasonRequirementsMet ReasonCode = "requirements-met"
	ReasonNoCandidates    ReasonCode = "no-candidates"
	ReasonNothingSelected ReasonCode = "nothing-selected"
	ReasonNoProgress      ReasonCode = "no-progress"
	ReasonTermCeiling     ReasonCode = "term-ceiling"
	ReasonCancelled       ReasonCode = "cancelled"
)

// DefaultSafetyTerms bounds runs whose settings leave MaxTerms unset.
const DefaultSafetyTerms = 999

// DefaultPlaceholderUnits is the source-unit size of one GE placeholder.
const DefaultPlaceholderUnits = 3.0

// Settings are the per-run numeric constraints.
type Settings struct {
	UnitCeiling      float64 `json:"unit_ceiling"`
	MinTotalUnits    float64 `json:"min_total_units"`
	MaxTerms         int     `json:"max_terms"`
	TermsForTwoYears int     `json:"terms_for_two_years,omitempty"`
	UnitScale        float64 `json:"unit_scale"`
	PlaceholderUnits float64 `json:"placeholder_units"`
	MaxUnlockers     int     `json:"max_unlockers,omitempty"`
	TermLabel        string  `json:"term_label,omitempty"`
}

func (s Settings) withDefaults() Settings {
	if s.MaxTerms <= 0 {
		s.MaxTerms = DefaultSafetyTerms
	}
	if s.UnitScale <= 0 {
		s.UnitScale = 1
	}
	if s.PlaceholderUnits <= 0 {
		s.PlaceholderUnits = DefaultPlaceholderUnits
	}
	if s.TermLabel == "" {
		s.TermLabel = "Term"
	}
	return s
}

// Request selects what one run plans.
type Request struct {
	Source   string   `json:"source"`
	Targets  []string `json:"targets"`
	Pattern  string   `json:"ge_pattern"`
	Settings Settings `json:"settings"`
}

// Result is the frozen outcome of a run. Every terminal status carries the
// partial plan committed so far.
type Result struct {
	Plan       pathway.Plan           `json:"plan"`
	Status     Status                 `json:"status"`
	Reason     ReasonCode             `json:"reason"`
	Detail     string                 `json:"detail,omitempty"`
	Completed  []string               `json:"completed"`
	Major      []resolver.GroupStatus `json:"major"`
	GE         ge.Evaluation          `json:"ge"`
	Warnings   []error                `json:"-"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
}

// runState is the single mutable resource of a run.
type runState struct {
	completed pathway.CourseSet
	units     float64
	term      int
	tracker   *ge.Tracker
	terms     []pathway.Term
	// cached resolver output for the current term
	majors []pathway.Candidate
	unmet  []string
}

func newRunState(tracker *ge.Tracker) *runState {
	return &runState{completed: pathway.NewCourseSet(), term: 1, tracker: tracker}
}
