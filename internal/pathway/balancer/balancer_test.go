package balancer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/pathway/internal/pathway"
)

func cand(id string, kind pathway.Kind, units float64) pathway.Candidate {
	return pathway.Candidate{ID: id, Kind: kind, Units: units}
}

func selectedIDs(sel Selection) []string {
	out := make([]string, 0, len(sel.Courses))
	for _, c := range sel.Courses {
		out = append(out, c.ID)
	}
	return out
}

func TestSelectGEFirstThenMajorsInPoolOrder(t *testing.T) {
	sel := Select(Request{
		Pool: []pathway.Candidate{
			cand("M4", pathway.KindMajor, 4),
			cand("M5", pathway.KindMajor, 5),
			cand("M9", pathway.KindMajor, 9),
			cand("GE3", pathway.KindGE, 3),
		},
		Ceiling: 16,
	})
	assert.Equal(t, []string{"GE3", "M4", "M5"}, selectedIDs(sel))
	assert.Equal(t, 12.0, sel.Units)
	require.Contains(t, sel.Skipped, "M9")
	assert.Equal(t, SkipReasonCeiling, sel.Skipped["M9"].Reason)
}

func TestSelectPriorityOrder(t *testing.T) {
	sel := Select(Request{
		Pool: []pathway.Candidate{
			cand("E1", pathway.KindElective, 3),
			cand("GE1", pathway.KindGE, 3),
			cand("GE2", pathway.KindGE, 3),
			cand("U1", pathway.KindUnlocker, 4),
			cand("M1", pathway.KindMajor, 5),
			cand("O1", pathway.KindOther, 2),
		},
		Ceiling: 20,
	})
	assert.Equal(t, []string{"GE1", "U1", "M1", "GE2", "E1", "O1"}, selectedIDs(sel))
	assert.Equal(t, 20.0, sel.Units)
}

func TestSelectNeverExceedsCeilingAndFirstFits(t *testing.T) {
	sel := Select(Request{
		Pool: []pathway.Candidate{
			cand("GE5", pathway.KindGE, 5),
			cand("M6", pathway.KindMajor, 6),
			cand("M8", pathway.KindMajor, 8),
			cand("M2", pathway.KindMajor, 2),
			cand("E4", pathway.KindElective, 4),
		},
		Ceiling: 14,
	})
	assert.Equal(t, []string{"GE5", "M6", "M2"}, selectedIDs(sel))
	assert.LessOrEqual(t, sel.Units, 14.0)
}

func TestSelectGEFirstSkipsOversizedGE(t *testing.T) {
	sel := Select(Request{
		Pool: []pathway.Candidate{
			cand("BIG", pathway.KindGE, 10),
			cand("SMALL", pathway.KindGE, 3),
			cand("M", pathway.KindMajor, 5),
		},
		Ceiling: 8,
	})
	assert.Equal(t, []string{"SMALL", "M"}, selectedIDs(sel))
}

func TestSelectDropsCompletedDuplicatesAndPruned(t *testing.T) {
	tagged := pathway.Candidate{ID: "OLD", Kind: pathway.KindMajor, Units: 3, Tags: []string{"UCSD:done"}}
	sel := Select(Request{
		Pool: []pathway.Candidate{
			cand("DONE", pathway.KindMajor, 3),
			cand("M", pathway.KindMajor, 3),
			cand("M", pathway.KindMajor, 3),
			tagged,
		},
		Completed: pathway.NewCourseSet("DONE"),
		Ceiling:   18,
		Relevant: func(c pathway.Candidate) bool {
			for _, tag := range c.Tags {
				if tag == "UCSD:done" {
					return false
				}
			}
			return true
		},
	})
	assert.Equal(t, []string{"M"}, selectedIDs(sel))
	assert.Equal(t, []string{"OLD"}, sel.Pruned)
	assert.Equal(t, SkipReasonCompleted, sel.Skipped["DONE"].Reason)
	assert.Equal(t, SkipReasonPruned, sel.Skipped["OLD"].Reason)
}

func TestSelectDefaultsUnknownUnits(t *testing.T) {
	sel := Select(Request{Pool: []pathway.Candidate{cand("X", pathway.KindOther, -1)}, Ceiling: 3})
	assert.Equal(t, []string{"X"}, selectedIDs(sel))
	assert.Equal(t, pathway.DefaultUnits, sel.Units)
}

func TestSelectChargesZeroUnitCourses(t *testing.T) {
	sel := Select(Request{
		Pool: []pathway.Candidate{
			cand("M5", pathway.KindMajor, 5),
			cand("LAB", pathway.KindMajor, 0),
		},
		Ceiling: 5,
	})
	assert.Equal(t, []string{"M5", "LAB"}, selectedIDs(sel))
	assert.Equal(t, 5.0, sel.Units)
}

func TestSelectEmptyWhenNothingFits(t *testing.T) {
	sel := Select(Request{Pool: []pathway.Candidate{cand("M", pathway.KindMajor, 6)}, Ceiling: 5})
	assert.Empty(t, sel.Courses)
	assert.Zero(t, sel.Units)
}
