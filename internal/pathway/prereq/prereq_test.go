package prereq

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/pathway/internal/pathway"
)

func testCatalog() *pathway.Catalog {
	return pathway.NewCatalog(
		pathway.Course{ID: "MATH 1A", Units: 5},
		pathway.Course{ID: "MATH 1B", Units: 5, Prereq: pathway.Leaf("MATH 1A")},
		pathway.Course{ID: "MATH 1C", Units: 5, Prereq: pathway.Leaf("MATH 1B")},
		pathway.Course{ID: "PHYS 4A", Units: 6, Prereq: pathway.And(pathway.Leaf("MATH 1A"), pathway.Leaf("PHYS 2"))},
		pathway.Course{ID: "PHYS 2", Units: 4},
		pathway.Course{ID: "CIS 22A", Units: 4.5},
		pathway.Course{ID: "CIS 36A", Units: 4.5},
		pathway.Course{ID: "CIS 22B", Units: 4.5, Prereq: pathway.Or(pathway.Leaf("CIS 22A"), pathway.Leaf("CIS 36A"))},
		pathway.Course{ID: "CIS 22C", Units: 4.5, Prereq: pathway.Leaf("CIS 22B")},
		pathway.Course{ID: "LOOP A", Prereq: pathway.Leaf("LOOP B")},
		pathway.Course{ID: "LOOP B", Prereq: pathway.Leaf("LOOP A")},
	)
}

func major(ids ...string) []pathway.Candidate {
	out := make([]pathway.Candidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, pathway.Candidate{ID: id, Units: 3, Kind: pathway.KindMajor, Tags: []string{"UCSD:cs"}})
	}
	return out
}

func ids(cands []pathway.Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.ID)
	}
	return out
}

func TestSingleLeafPrerequisite(t *testing.T) {
	expr := testCatalog().Prereq("MATH 1B")

	assert.False(t, Satisfied(expr, pathway.NewCourseSet()))
	assert.Equal(t, []string{"MATH 1A"}, MissingLeaves(expr, pathway.NewCourseSet()))
	assert.True(t, Satisfied(expr, pathway.NewCourseSet("MATH 1A")))
	assert.Empty(t, MissingLeaves(expr, pathway.NewCourseSet("MATH 1A")))
}

func TestEmptyExpressionsAreSatisfied(t *testing.T) {
	assert.True(t, Satisfied(nil, nil))
	assert.True(t, Satisfied(pathway.And(), nil))
	assert.True(t, Satisfied(pathway.Or(), nil))
	assert.True(t, Satisfied(&pathway.Expr{Op: "xor"}, nil))
}

func TestMissingLeavesOrOverApproximates(t *testing.T) {
	expr := pathway.And(pathway.Or(pathway.Leaf("B"), pathway.Leaf("A")), pathway.Leaf("C"))
	assert.Equal(t, []string{"A", "B", "C"}, MissingLeaves(expr, nil))
	assert.Equal(t, []string{"C"}, MissingLeaves(expr, pathway.NewCourseSet("A")))
}

func TestEligibleStableDedupedAndExcludesCompleted(t *testing.T) {
	ev := New(testCatalog())
	cands := major("CIS 22B", "MATH 1A", "MATH 1B", "CIS 22B", "UNKNOWN 1", "CIS 22A")
	got := ev.Eligible(cands, pathway.NewCourseSet("CIS 22A"))
	assert.Equal(t, []string{"CIS 22B", "MATH 1A", "UNKNOWN 1"}, ids(got))
	assert.Equal(t, []string{"MATH 1B"}, ids(ev.Blocked(cands, pathway.NewCourseSet("CIS 22A"))))
}

func TestClassifyReportsMissingLeaves(t *testing.T) {
	ev := New(testCatalog())
	statuses := ev.Classify(major("PHYS 4A", "MATH 1A"), pathway.NewCourseSet("MATH 1A"))
	require.Len(t, statuses, 2)
	assert.Equal(t, StateBlocked, statuses[0].State)
	assert.Equal(t, []string{"PHYS 2"}, statuses[0].Missing)
	assert.Equal(t, StateComplete, statuses[1].State)
}

func TestUnlockersRankByUnlocksThenID(t *testing.T) {
	ev := New(testCatalog())
	blocked := major("MATH 1B", "PHYS 4A", "CIS 22B", "MATH 1C")
	got := ev.Unlockers(blocked, pathway.NewCourseSet(), 10)
	// MATH 1A, CIS 22A and CIS 36A each unlock one candidate; PHYS 2 unlocks
	// nothing alone; MATH 1B is not takeable.
	assert.Equal(t, []string{"CIS 22A", "CIS 36A", "MATH 1A", "PHYS 2"}, ids(got))
	for _, c := range got {
		assert.Equal(t, pathway.KindUnlocker, c.Kind)
		assert.Equal(t, []string{"UCSD:cs"}, c.Tags)
	}
	assert.Equal(t, 4.5, got[0].Units)
	assert.Equal(t, 5.0, got[2].Units)

	top := ev.Unlockers(blocked, pathway.NewCourseSet(), 1)
	assert.Equal(t, []string{"CIS 22A"}, ids(top))
}

func TestUnlockersTieIgnoresPartialAppearances(t *testing.T) {
	cat := pathway.NewCatalog(
		pathway.Course{ID: "A", Units: 3},
		pathway.Course{ID: "Z", Units: 3},
		pathway.Course{ID: "R", Units: 3},
		pathway.Course{ID: "Q", Units: 3, Prereq: pathway.Leaf("R")},
		pathway.Course{ID: "X1", Units: 3, Prereq: pathway.Leaf("Z")},
		pathway.Course{ID: "X2", Units: 3, Prereq: pathway.And(pathway.Leaf("Z"), pathway.Leaf("Q"))},
		pathway.Course{ID: "X3", Units: 3, Prereq: pathway.Leaf("A")},
	)
	// Z also appears in X2's missing set, but unlocks only X1, tying with A.
	top := New(cat).Unlockers(major("X1", "X2", "X3"), nil, 1)
	assert.Equal(t, []string{"A"}, ids(top))
}

func TestUnlockersCountsMultipleUnlocks(t *testing.T) {
	cat := pathway.NewCatalog(
		pathway.Course{ID: "A"},
		pathway.Course{ID: "Z"},
		pathway.Course{ID: "X", Prereq: pathway.Leaf("Z")},
		pathway.Course{ID: "Y", Prereq: pathway.Leaf("Z")},
		pathway.Course{ID: "W", Prereq: pathway.Leaf("A")},
	)
	got := New(cat).Unlockers(major("W", "X", "Y"), nil, 0)
	assert.Equal(t, []string{"Z", "A"}, ids(got))
}

func TestMissingPrereqsQueuesChainsAndCheapestAlternative(t *testing.T) {
	ev := New(testCatalog())
	added := ev.MissingPrereqs(major("MATH 1C", "CIS 22C"), pathway.NewCourseSet())
	assert.Equal(t, []string{"MATH 1B", "CIS 22B", "MATH 1A", "CIS 22A"}, ids(added))
	assert.Equal(t, []string{"UCSD:cs"}, added[0].Tags)
	assert.Equal(t, 5.0, added[0].Units)
}

func TestMutualCycleNeverEligible(t *testing.T) {
	ev := New(testCatalog())
	cands := major("LOOP A", "LOOP B")
	assert.Empty(t, ev.Eligible(cands, nil))
	assert.Empty(t, ev.Unlockers(cands, nil, 5))
	assert.Empty(t, ev.MissingPrereqs(cands, nil))
}

func TestUnknownReportsMissingCatalogEntries(t *testing.T) {
	errs := New(testCatalog()).Unknown(major("MATH 1A", "GHOST 9"))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], pathway.ErrUnknownCourse)
}

func randomExpr(r *rand.Rand, depth int) *pathway.Expr {
	leaves := []string{"A", "B", "C", "D", "E"}
	if depth == 0 || r.Intn(3) == 0 {
		return pathway.Leaf(leaves[r.Intn(len(leaves))])
	}
	n := 1 + r.Intn(3)
	children := make([]*pathway.Expr, n)
	for i := range children {
		children[i] = randomExpr(r, depth-1)
	}
	if r.Intn(2) == 0 {
		return pathway.And(children...)
	}
	return pathway.Or(children...)
}

func TestSatisfactionIsMonotoneAndMatchesMissingLeaves(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	all := []string{"A", "B", "C", "D", "E"}
	for i := 0; i < 500; i++ {
		expr := randomExpr(r, 3)
		small := pathway.NewCourseSet()
		for _, id := range all {
			if r.Intn(2) == 0 {
				small.Add(id)
			}
		}
		large := small.With(all[r.Intn(len(all))])
		if Satisfied(expr, small) && !Satisfied(expr, large) {
			t.Fatalf("monotonicity violated for %s with %v", expr, small.Sorted())
		}
		for _, set := range []pathway.CourseSet{small, large} {
			if Satisfied(expr, set) != (len(MissingLeaves(expr, set)) == 0) {
				t.Fatalf("missing leaves disagree with satisfaction for %s with %v", expr, set.Sorted())
			}
		}
	}
}
