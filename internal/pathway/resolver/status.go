package resolver

import (
	"sort"

	"github.com/kingrea/pathway/internal/pathway"
)

// CodeStatus reports one requirement code inside a group.
type CodeStatus struct {
	Code        string `json:"code"`
	MatchedAs   string `json:"matched_as,omitempty"`
	Articulated bool   `json:"articulated"`
	Satisfied   bool   `json:"satisfied"`
}

// GroupStatus reports progress toward one requirement group.
type GroupStatus struct {
	Target    string       `json:"target"`
	Group     string       `json:"group"`
	Tag       string       `json:"tag"`
	Required  int          `json:"required"`
	Completed int          `json:"completed"`
	Satisfied bool         `json:"satisfied"`
	Codes     []CodeStatus `json:"codes"`
}

// Status evaluates every group against completed.
func (r *Resolver) Status(completed pathway.CourseSet) []GroupStatus {
	var out []GroupStatus
	for _, target := range r.targets {
		for _, gi := range target.groups {
			gs := GroupStatus{
				Target:   target.name,
				Group:    gi.group.ID,
				Tag:      gi.tag,
				Required: gi.group.NumberRequired,
			}
			for _, ci := range gi.codes {
				cs := CodeStatus{
					Code:        ci.code,
					MatchedAs:   ci.matched,
					Articulated: len(ci.blocks) > 0,
					Satisfied:   ci.satisfied(completed),
				}
				if cs.MatchedAs == ci.code {
					cs.MatchedAs = ""
				}
				if cs.Satisfied {
					gs.Completed++
				}
				gs.Codes = append(gs.Codes, cs)
			}
			gs.Satisfied = gs.Completed >= gs.Required
			out = append(out, gs)
		}
	}
	return out
}

// Satisfied reports whether every group of every target is satisfied.
func (r *Resolver) Satisfied(completed pathway.CourseSet) bool {
	return len(r.Unmet(completed)) == 0
}

// Unmet lists the tags of unsatisfied groups in target and declaration order.
func (r *Resolver) Unmet(completed pathway.CourseSet) []string {
	var out []string
	for _, gs := range r.Status(completed) {
		if !gs.Satisfied {
			out = append(out, gs.Tag)
		}
	}
	return out
}

// Unsatisfiable lists the tags of groups that cannot be satisfied because too
// few of their codes have articulated blocks.
func (r *Resolver) Unsatisfiable() []string {
	var out []string
	for _, target := range r.targets {
		for _, gi := range target.groups {
			reachable := 0
			for _, ci := range gi.codes {
				if len(ci.blocks) > 0 {
					reachable++
				}
			}
			if reachable < gi.group.NumberRequired {
				out = append(out, gi.tag)
			}
		}
	}
	return out
}

// RemainingCandidates returns, for every unsatisfied group, the uncompleted
// courses of one representative block: the block with the fewest uncompleted
// courses across the group's open codes, declaration order breaking ties.
// With WithDeficitBlocks a block is emitted for each still-needed code, up to
// the group's deficit. Candidates are tagged with the group tag and merged
// across targets.
func (r *Resolver) RemainingCandidates(completed pathway.CourseSet) []pathway.Candidate {
	var out []pathway.Candidate
	index := map[string]int{}
	emit := func(id, tag string) {
		if pos, ok := index[id]; ok {
			if !containsString(out[pos].Tags, tag) {
				out[pos].Tags = append(out[pos].Tags, tag)
			}
			return
		}
		index[id] = len(out)
		out = append(out, pathway.Candidate{
			ID:    id,
			Units: r.catalog.Units(id),
			Kind:  pathway.KindMajor,
			Tags:  []string{tag},
		})
	}
	for _, target := range r.targets {
		for _, gi := range target.groups {
			done := 0
			var open [][]string
			for _, ci := range gi.codes {
				if ci.satisfied(completed) {
					done++
					continue
				}
				if block, ok := ci.representative(completed); ok {
					open = append(open, block)
				}
			}
			deficit := gi.group.NumberRequired - done
			if deficit <= 0 {
				continue
			}
			if !r.deficit {
				deficit = 1
			}
			sort.SliceStable(open, func(i, j int) bool { return len(open[i]) < len(open[j]) })
			if len(open) > deficit {
				open = open[:deficit]
			}
			for _, block := range open {
				for _, id := range block {
					emit(id, gi.tag)
				}
			}
		}
	}
	return out
}

func (ci codeIndex) satisfied(completed pathway.CourseSet) bool {
	for _, block := range ci.blocks {
		if blockDone(block, completed) {
			return true
		}
	}
	return false
}

// representative returns the uncompleted courses of the cheapest block.
func (ci codeIndex) representative(completed pathway.CourseSet) ([]string, bool) {
	var best []string
	found := false
	for _, block := range ci.blocks {
		var remaining []string
		for _, id := range block {
			if !completed.Has(id) {
				remaining = append(remaining, id)
			}
		}
		if !found || len(remaining) < len(best) {
			best, found = remaining, true
		}
	}
	return best, found
}

func blockDone(block pathway.Block, completed pathway.CourseSet) bool {
	for _, id := range block {
		if !completed.Has(id) {
			return false
		}
	}
	return len(block) > 0
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
