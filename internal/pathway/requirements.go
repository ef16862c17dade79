package pathway

import (
	"fmt"
	"sort"
	"strings"
)

// RequirementGroup is a named set of requirement codes of which
// NumberRequired must be satisfied.
type RequirementGroup struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name,omitempty" yaml:"name,omitempty"`
	NumberRequired int      `json:"number_required" yaml:"number_required"`
	Codes          []string `json:"codes" yaml:"codes"`
}

// TargetRequirements lists the groups a target institution expects.
type TargetRequirements struct {
	Name   string             `json:"name,omitempty" yaml:"name,omitempty"`
	Groups []RequirementGroup `json:"groups" yaml:"groups"`
}

// Requirements indexes major-preparation groups by target institution.
type Requirements map[string]TargetRequirements

// Target returns the groups for a target institution.
func (r Requirements) Target(name string) (TargetRequirements, bool) {
	if tr, ok := r[name]; ok {
		return tr, true
	}
	for key, tr := range r {
		if strings.EqualFold(key, name) {
			return tr, true
		}
	}
	return TargetRequirements{}, false
}

// Names lists every target in ascending order.
func (r Requirements) Names() []string {
	return sortedKeys(r)
}

// Validate normalizes groups in place and rejects unusable definitions.
func (r Requirements) Validate() error {
	for name, target := range r {
		seen := map[string]struct{}{}
		for i := range target.Groups {
			group := &target.Groups[i]
			group.ID = strings.TrimSpace(group.ID)
			if group.ID == "" {
				group.ID = fmt.Sprintf("group-%d", i+1)
			}
			if _, dup := seen[group.ID]; dup {
				return fmt.Errorf("requirements: %s: duplicate group %q", name, group.ID)
			}
			seen[group.ID] = struct{}{}
			if group.NumberRequired < 1 {
				group.NumberRequired = 1
			}
			codes := make([]string, 0, len(group.Codes))
			for _, code := range group.Codes {
				if code = NormalizeID(code); code != "" {
					codes = append(codes, code)
				}
			}
			if len(codes) == 0 {
				return fmt.Errorf("requirements: %s: group %q has no codes", name, group.ID)
			}
			group.Codes = codes
		}
		r[name] = target
	}
	return nil
}

// GroupTag formats the requirement tag attached to major candidates.
func GroupTag(target, group string) string {
	return target + ":" + group
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for key := range m {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
