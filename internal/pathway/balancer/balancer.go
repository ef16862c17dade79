package balancer

import (
	"fmt"

	"github.com/kingrea/pathway/internal/pathway"
)

// unitEpsilon tolerates float noise when comparing against the ceiling.
const unitEpsilon = 1e-9

// Request captures one term's pool and constraints.
type Request struct {
	Pool      []pathway.Candidate
	Completed pathway.CourseSet
	Ceiling   float64
	// Relevant reports whether a candidate still maps to an unmet
	// requirement. Candidates it rejects are pruned. Nil keeps everything.
	Relevant func(pathway.Candidate) bool
}

// Selection is the balancer's decision for one term.
type Selection struct {
	Courses []pathway.Candidate
	Units   float64
	Pruned  []string
	Skipped map[string]SkipReason
}

// SkipReason explains why a pool entry was not selected.
type SkipReason struct {
	Reason SkipReasonCode
	Detail string
}

// SkipReasonCode enumerates balancer skip reasons.
type SkipReasonCode string

const (
	SkipReasonCompleted SkipReasonCode = "completed"
	SkipReasonPruned    SkipReasonCode = "pruned"
	SkipReasonCeiling   SkipReasonCode = "ceiling"
)

// Select runs the greedy passes: one GE course first, then majors and
// unlockers in pool order, then the remaining GE courses, then electives and
// everything else. A course is admitted only if it fits under the ceiling.
func Select(req Request) Selection {
	sel := Selection{}
	pool := sel.filter(req)
	taken := make([]bool, len(pool))

	admit := func(i int) bool {
		units := unitsOf(pool[i])
		if sel.Units+units > req.Ceiling+unitEpsilon {
			return false
		}
		taken[i] = true
		sel.Units += units
		sel.Courses = append(sel.Courses, pool[i])
		return true
	}
	pass := func(match func(pathway.Kind) bool, limit int) {
		admitted := 0
		for i, cand := range pool {
			if limit > 0 && admitted >= limit {
				return
			}
			if taken[i] || !match(cand.Kind) {
				continue
			}
			if admit(i) {
				admitted++
			}
		}
	}

	pass(isGE, 1)
	pass(isMajor, 0)
	pass(isGE, 0)
	pass(isFiller, 0)

	for i, cand := range pool {
		if !taken[i] {
			sel.addSkip(cand.ID, SkipReason{
				Reason: SkipReasonCeiling,
				Detail: fmt.Sprintf("%.1f units would exceed ceiling %.1f", sel.Units+unitsOf(cand), req.Ceiling),
			})
		}
	}
	return sel
}

func (sel *Selection) filter(req Request) []pathway.Candidate {
	seen := make(map[string]struct{}, len(req.Pool))
	out := make([]pathway.Candidate, 0, len(req.Pool))
	for _, cand := range req.Pool {
		if cand.ID == "" {
			continue
		}
		if req.Completed.Has(cand.ID) {
			sel.addSkip(cand.ID, SkipReason{Reason: SkipReasonCompleted, Detail: "already completed"})
			continue
		}
		if _, dup := seen[cand.ID]; dup {
			continue
		}
		seen[cand.ID] = struct{}{}
		if req.Relevant != nil && !req.Relevant(cand) {
			sel.Pruned = append(sel.Pruned, cand.ID)
			sel.addSkip(cand.ID, SkipReason{Reason: SkipReasonPruned, Detail: "no unmet requirement"})
			continue
		}
		out = append(out, cand)
	}
	return out
}

func (sel *Selection) addSkip(id string, reason SkipReason) {
	if sel.Skipped == nil {
		sel.Skipped = make(map[string]SkipReason)
	}
	sel.Skipped[id] = reason
}

// unitsOf charges candidate units as given. Negative units mark a candidate
// built without a catalog lookup.
func unitsOf(c pathway.Candidate) float64 {
	if c.Units < 0 {
		return pathway.DefaultUnits
	}
	return c.Units
}

func isGE(k pathway.Kind) bool { return k == pathway.KindGE }

func isMajor(k pathway.Kind) bool { return k == pathway.KindMajor || k == pathway.KindUnlocker }

func isFiller(k pathway.Kind) bool { return !isGE(k) && !isMajor(k) }
