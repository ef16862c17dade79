package engine

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/kingrea/pathway/internal/pathway"
)

// DefaultElectivePool bounds how many filler courses are offered per term.
const DefaultElectivePool = 50

// DefaultElectivePatterns is the allow-list of transferable subject prefixes.
var DefaultElectivePatterns = []string{
	"CS *", "MATH *", "PHYS *", "CHEM *", "BIO *", "ENGL *",
	"HIST *", "PHIL *", "ECON *", "PSY *", "SOC *",
}

// DefaultElectiveExcludes drops synthetic catalog entries.
var DefaultElectiveExcludes = []string{"IG_*"}

// ElectivePolicy proposes unit-filler courses once every requirement is met.
type ElectivePolicy interface {
	Fill(catalog *pathway.Catalog, completed pathway.CourseSet, takeable func(string) bool, exclude map[string]struct{}) []pathway.Candidate
}

// GlobElectives admits catalog courses matching an include glob and no
// exclude glob, in catalog order, up to MaxPool entries.
type GlobElectives struct {
	include []glob.Glob
	exclude []glob.Glob
	maxPool int
}

// NewGlobElectives compiles the allow-list. Empty include patterns fall back
// to DefaultElectivePatterns.
func NewGlobElectives(include, exclude []string, maxPool int) (*GlobElectives, error) {
	if len(include) == 0 {
		include = DefaultElectivePatterns
	}
	if maxPool <= 0 {
		maxPool = DefaultElectivePool
	}
	policy := &GlobElectives{maxPool: maxPool}
	for _, pattern := range include {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("electives: compile %q: %w", pattern, err)
		}
		policy.include = append(policy.include, g)
	}
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("electives: compile %q: %w", pattern, err)
		}
		policy.exclude = append(policy.exclude, g)
	}
	return policy, nil
}

// Fill returns takeable, uncompleted courses admitted by the allow-list.
func (p *GlobElectives) Fill(catalog *pathway.Catalog, completed pathway.CourseSet, takeable func(string) bool, exclude map[string]struct{}) []pathway.Candidate {
	var out []pathway.Candidate
	for _, id := range catalog.IDs() {
		if len(out) >= p.maxPool {
			break
		}
		if completed.Has(id) || !p.allows(id) {
			continue
		}
		if _, skip := exclude[id]; skip {
			continue
		}
		if takeable != nil && !takeable(id) {
			continue
		}
		out = append(out, pathway.Candidate{
			ID:    id,
			Units: catalog.Units(id),
			Kind:  pathway.KindElective,
		})
	}
	return out
}

func (p *GlobElectives) allows(id string) bool {
	for _, g := range p.exclude {
		if g.Match(id) {
			return false
		}
	}
	for _, g := range p.include {
		if g.Match(id) {
			return true
		}
	}
	return false
}
