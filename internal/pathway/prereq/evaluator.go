package prereq

import (
	"sort"

	"github.com/kingrea/pathway/internal/pathway"
)

// Evaluator answers eligibility questions against one immutable catalog.
// It holds no per-run state and may be shared across concurrent runs.
type Evaluator struct {
	catalog *pathway.Catalog
}

// New binds an evaluator to a catalog. A nil catalog leaves every course
// unconstrained.
func New(catalog *pathway.Catalog) *Evaluator {
	return &Evaluator{catalog: catalog}
}

// Takeable reports whether the course's own prerequisite is satisfied.
// Courses absent from the catalog are unconstrained.
func (e *Evaluator) Takeable(id string, completed pathway.CourseSet) bool {
	return Satisfied(e.catalog.Prereq(id), completed)
}

// Classify reports each distinct candidate's state in input order.
func (e *Evaluator) Classify(candidates []pathway.Candidate, completed pathway.CourseSet) []Status {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]Status, 0, len(candidates))
	for _, cand := range candidates {
		if cand.ID == "" {
			continue
		}
		if _, dup := seen[cand.ID]; dup {
			continue
		}
		seen[cand.ID] = struct{}{}
		status := Status{Candidate: cand}
		switch {
		case completed.Has(cand.ID):
			status.State = StateComplete
		case e.Takeable(cand.ID, completed):
			status.State = StateReady
		default:
			status.State = StateBlocked
			status.Missing = MissingLeaves(e.catalog.Prereq(cand.ID), completed)
		}
		out = append(out, status)
	}
	return out
}

// Eligible returns candidates whose prerequisite is satisfied and that are
// not completed, deduplicated, in input order.
func (e *Evaluator) Eligible(candidates []pathway.Candidate, completed pathway.CourseSet) []pathway.Candidate {
	return e.filter(candidates, completed, StateReady)
}

// Blocked returns candidates that are neither completed nor takeable.
func (e *Evaluator) Blocked(candidates []pathway.Candidate, completed pathway.CourseSet) []pathway.Candidate {
	return e.filter(candidates, completed, StateBlocked)
}

func (e *Evaluator) filter(candidates []pathway.Candidate, completed pathway.CourseSet, want State) []pathway.Candidate {
	var out []pathway.Candidate
	for _, status := range e.Classify(candidates, completed) {
		if status.State == want {
			out = append(out, status.Candidate)
		}
	}
	return out
}

type unlockTally struct {
	id      string
	unlocks int
	tags    []string
}

// Unlockers ranks the takeable, uncompleted leaves missing from blocked
// candidates by how many of those candidates each would unlock on its own,
// descending, then by identifier. At most maxCount are returned.
func (e *Evaluator) Unlockers(blocked []pathway.Candidate, completed pathway.CourseSet, maxCount int) []pathway.Candidate {
	if maxCount <= 0 {
		maxCount = DefaultMaxUnlockers
	}
	tallies := map[string]*unlockTally{}
	var order []string
	for _, cand := range blocked {
		if completed.Has(cand.ID) {
			continue
		}
		expr := e.catalog.Prereq(cand.ID)
		for _, leaf := range MissingLeaves(expr, completed) {
			if completed.Has(leaf) || leaf == cand.ID || !e.Takeable(leaf, completed) {
				continue
			}
			tally, ok := tallies[leaf]
			if !ok {
				tally = &unlockTally{id: leaf}
				tallies[leaf] = tally
				order = append(order, leaf)
			}
			tally.tags = mergeTags(tally.tags, cand.Tags)
			if Satisfied(expr, completed.With(leaf)) {
				tally.unlocks++
			}
		}
	}
	ranked := make([]*unlockTally, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, tallies[id])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].unlocks != ranked[j].unlocks {
			return ranked[i].unlocks > ranked[j].unlocks
		}
		return ranked[i].id < ranked[j].id
	})
	if len(ranked) > maxCount {
		ranked = ranked[:maxCount]
	}
	out := make([]pathway.Candidate, 0, len(ranked))
	for _, tally := range ranked {
		out = append(out, pathway.Candidate{
			ID:    tally.id,
			Units: e.catalog.Units(tally.id),
			Kind:  pathway.KindUnlocker,
			Tags:  tally.tags,
		})
	}
	return out
}

// MissingPrereqs returns prerequisite courses that queued candidates still
// need and that are not already queued or completed. Newly found courses are
// themselves expanded, so chains are queued in full. Each added course
// inherits the tags of the candidate that needed it.
func (e *Evaluator) MissingPrereqs(pool []pathway.Candidate, completed pathway.CourseSet) []pathway.Candidate {
	queued := make(map[string]struct{}, len(pool))
	work := make([]pathway.Candidate, 0, len(pool))
	for _, cand := range pool {
		queued[cand.ID] = struct{}{}
		work = append(work, cand)
	}
	var added []pathway.Candidate
	for len(work) > 0 {
		cand := work[0]
		work = work[1:]
		if completed.Has(cand.ID) {
			continue
		}
		for _, leaf := range cheapestMissing(e.catalog.Prereq(cand.ID), completed) {
			if _, ok := queued[leaf]; ok || completed.Has(leaf) {
				continue
			}
			queued[leaf] = struct{}{}
			next := pathway.Candidate{
				ID:    leaf,
				Units: e.catalog.Units(leaf),
				Kind:  pathway.KindMajor,
				Tags:  mergeTags(nil, cand.Tags),
			}
			added = append(added, next)
			work = append(work, next)
		}
	}
	return added
}

// Unknown reports candidates missing from the catalog.
func (e *Evaluator) Unknown(candidates []pathway.Candidate) []error {
	var out []error
	for _, cand := range candidates {
		if !e.catalog.Has(cand.ID) {
			out = append(out, &pathway.UnknownCourseError{Course: cand.ID})
		}
	}
	return out
}

func mergeTags(dst, src []string) []string {
	for _, tag := range src {
		dup := false
		for _, have := range dst {
			if have == tag {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, tag)
		}
	}
	return dst
}
