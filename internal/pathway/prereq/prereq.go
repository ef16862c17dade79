package prereq

import (
	"sort"

	"github.com/kingrea/pathway/internal/pathway"
)

// DefaultMaxUnlockers bounds Unlockers when the caller passes a non-positive
// limit.
const DefaultMaxUnlockers = 5

// State is the evaluator's view of one candidate.
type State string

const (
	StateReady    State = "ready"
	StateBlocked  State = "blocked"
	StateComplete State = "complete"
)

// Status pairs a candidate with its readiness and the leaves blocking it.
type Status struct {
	Candidate pathway.Candidate
	State     State
	Missing   []string
}

// Satisfied reports whether completed satisfies expr. Absent and empty
// expressions are satisfied. Unrecognized operators are treated as satisfied,
// matching the ingestion policy that drops malformed branches.
func Satisfied(expr *pathway.Expr, completed pathway.CourseSet) bool {
	if expr == nil {
		return true
	}
	switch expr.Op {
	case pathway.OpLeaf:
		return expr.Course == "" || completed.Has(expr.Course)
	case pathway.OpAnd:
		for _, child := range expr.Children {
			if !Satisfied(child, completed) {
				return false
			}
		}
		return true
	case pathway.OpOr:
		if len(expr.Children) == 0 {
			return true
		}
		for _, child := range expr.Children {
			if Satisfied(child, completed) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// MissingLeaves lists the leaves keeping expr unsatisfied, sorted. An
// unsatisfied OR contributes the leaves of every branch, which
// over-approximates when branches overlap.
func MissingLeaves(expr *pathway.Expr, completed pathway.CourseSet) []string {
	seen := map[string]struct{}{}
	collectMissing(expr, completed, seen)
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func collectMissing(expr *pathway.Expr, completed pathway.CourseSet, into map[string]struct{}) {
	if expr == nil || Satisfied(expr, completed) {
		return
	}
	switch expr.Op {
	case pathway.OpLeaf:
		into[expr.Course] = struct{}{}
	case pathway.OpAnd, pathway.OpOr:
		for _, child := range expr.Children {
			collectMissing(child, completed, into)
		}
	}
}

// cheapestMissing is MissingLeaves restricted to the OR branch with the
// fewest missing leaves (first declared wins ties). It picks which
// prerequisites to queue without queueing every alternative.
func cheapestMissing(expr *pathway.Expr, completed pathway.CourseSet) []string {
	if expr == nil || Satisfied(expr, completed) {
		return nil
	}
	switch expr.Op {
	case pathway.OpLeaf:
		return []string{expr.Course}
	case pathway.OpAnd:
		var out []string
		for _, child := range expr.Children {
			out = append(out, cheapestMissing(child, completed)...)
		}
		return out
	case pathway.OpOr:
		var best []string
		for i, child := range expr.Children {
			missing := cheapestMissing(child, completed)
			if i == 0 || len(missing) < len(best) {
				best = missing
			}
		}
		return best
	default:
		return nil
	}
}
