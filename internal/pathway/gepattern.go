package pathway

import (
	"fmt"
	"strings"
)

// Rollup declares how a parent GE node combines its children.
type Rollup string

const (
	// RollupSumOfChildren reports each child and sums their remainders.
	RollupSumOfChildren Rollup = "sum_of_children"
	// RollupLeftoverPool reports each child plus a bucket for the courses the
	// parent requires beyond its children's minimums.
	RollupLeftoverPool Rollup = "leftover_pool"
	// RollupGlobalQuota counts per-area credit, each area capped, toward one
	// shared course quota on the parent.
	RollupGlobalQuota Rollup = "global_quota_with_area_caps"
)

// LeftoverSuffix names the synthetic bucket of a leftover-pool parent.
const LeftoverSuffix = "_leftover"

// GENode is one requirement in a general-education pattern tree.
type GENode struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	MinCourses int      `json:"min_courses" yaml:"min_courses"`
	MinUnits   float64  `json:"min_units" yaml:"min_units"`
	Tags       []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Rollup     Rollup   `json:"rollup,omitempty" yaml:"rollup,omitempty"`
	// ChildCap bounds how many courses any one child may contribute to a
	// global quota when the child does not declare MaxCourses itself.
	ChildCap   int      `json:"child_cap,omitempty" yaml:"child_cap,omitempty"`
	MaxCourses int      `json:"max_courses,omitempty" yaml:"max_courses,omitempty"`
	Children   []GENode `json:"children,omitempty" yaml:"children,omitempty"`
}

// MatchTags returns the tags a credit record may carry to count for the node.
func (n GENode) MatchTags() []string {
	tags := make([]string, 0, len(n.Tags)+1)
	tags = append(tags, n.ID)
	for _, tag := range n.Tags {
		if tag = strings.TrimSpace(tag); tag != "" && tag != n.ID {
			tags = append(tags, tag)
		}
	}
	return tags
}

// LeftoverID names the leftover bucket of a leftover-pool parent.
func (n GENode) LeftoverID() string {
	return n.ID + LeftoverSuffix
}

// GEPattern is a named GE requirement tree.
type GEPattern struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	Requirements []GENode `json:"requirements" yaml:"requirements"`
}

// Validate checks identifiers and requires an explicit roll-up on every
// parent node.
func (p GEPattern) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("ge pattern: id is required")
	}
	seen := map[string]struct{}{}
	for i := range p.Requirements {
		if err := validateNode(p.Requirements[i], seen); err != nil {
			return fmt.Errorf("ge pattern %s: %w", p.ID, err)
		}
	}
	return nil
}

func validateNode(node GENode, seen map[string]struct{}) error {
	if strings.TrimSpace(node.ID) == "" {
		return fmt.Errorf("requirement id is required")
	}
	if _, dup := seen[node.ID]; dup {
		return fmt.Errorf("duplicate requirement %q", node.ID)
	}
	seen[node.ID] = struct{}{}
	if node.MinCourses < 0 || node.MinUnits < 0 {
		return fmt.Errorf("%s: minimums must be >= 0", node.ID)
	}
	if len(node.Children) == 0 {
		return nil
	}
	switch node.Rollup {
	case RollupSumOfChildren, RollupLeftoverPool, RollupGlobalQuota:
	case "":
		return fmt.Errorf("%s: rollup is required on nodes with children", node.ID)
	default:
		return fmt.Errorf("%s: unknown rollup %q", node.ID, node.Rollup)
	}
	for _, child := range node.Children {
		if err := validateNode(child, seen); err != nil {
			return err
		}
	}
	return nil
}

// PatternSet indexes GE patterns by id.
type PatternSet map[string]GEPattern

// Pattern looks up a pattern case-insensitively.
func (s PatternSet) Pattern(id string) (GEPattern, bool) {
	if p, ok := s[id]; ok {
		return p, true
	}
	for key, p := range s {
		if strings.EqualFold(key, id) {
			return p, true
		}
	}
	return GEPattern{}, false
}

// IDs lists pattern ids in ascending order.
func (s PatternSet) IDs() []string {
	return sortedKeys(s)
}
