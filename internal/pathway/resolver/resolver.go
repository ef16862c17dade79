package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kingrea/pathway/internal/pathway"
)

// Resolver evaluates target requirement groups against articulation blocks.
// Construction resolves every requirement code once; evaluation methods are
// read-only and safe to call concurrently.
type Resolver struct {
	source  string
	catalog *pathway.Catalog
	matcher Matcher
	cache   *MatchCache
	targets []targetIndex
	fuzzed  []string
	// deficit emits one block per still-needed code instead of one per group.
	deficit bool
}

type targetIndex struct {
	name   string
	groups []groupIndex
}

type groupIndex struct {
	group pathway.RequirementGroup
	tag   string
	codes []codeIndex
}

type codeIndex struct {
	code    string
	matched string
	blocks  []pathway.Block
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithMatcher swaps the fallback match policy.
func WithMatcher(m Matcher) Option {
	return func(r *Resolver) {
		if m != nil {
			r.matcher = m
		}
	}
}

// WithCache shares a match cache between resolvers.
func WithCache(cache *MatchCache) Option {
	return func(r *Resolver) {
		if cache != nil {
			r.cache = cache
		}
	}
}

// WithDeficitBlocks makes RemainingCandidates emit a representative block for
// each code a group still needs, up to its deficit, rather than a single
// block per group.
func WithDeficitBlocks() Option {
	return func(r *Resolver) {
		r.deficit = true
	}
}

// New indexes the selected targets. Every target must have requirement
// definitions; a target without articulation simply has no reachable codes.
func New(art pathway.Articulation, reqs pathway.Requirements, targets []string, catalog *pathway.Catalog, opts ...Option) (*Resolver, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("resolver: at least one target is required")
	}
	r := &Resolver{source: art.Source, catalog: catalog, matcher: ExactMatcher{}}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		cache, err := NewMatchCache(DefaultCacheSize)
		if err != nil {
			return nil, fmt.Errorf("resolver: %w", err)
		}
		r.cache = cache
	}
	seen := map[string]struct{}{}
	for _, name := range targets {
		name = strings.TrimSpace(name)
		if _, dup := seen[name]; dup || name == "" {
			continue
		}
		seen[name] = struct{}{}
		defs, ok := reqs.Target(name)
		if !ok {
			return nil, fmt.Errorf("resolver: no requirements for target %s", name)
		}
		r.targets = append(r.targets, r.indexTarget(name, targetEntries(art, name), defs))
	}
	return r, nil
}

func (r *Resolver) indexTarget(name string, entries []pathway.ArticulationEntry, defs pathway.TargetRequirements) targetIndex {
	byKey := map[string][]pathway.Block{}
	display := map[string]string{}
	for _, entry := range entries {
		key := codeKey(entry.Code)
		for _, block := range entry.Blocks {
			if len(block) > 0 {
				byKey[key] = append(byKey[key], block)
			}
		}
		if _, ok := display[key]; !ok {
			display[key] = entry.Code
		}
	}
	known := make([]string, 0, len(display))
	for _, code := range display {
		known = append(known, code)
	}
	sort.Strings(known)

	idx := targetIndex{name: name}
	for _, group := range defs.Groups {
		gi := groupIndex{group: group, tag: pathway.GroupTag(name, group.ID)}
		for _, code := range group.Codes {
			matched := r.resolveCode(name, code, display, known)
			ci := codeIndex{code: code, matched: matched}
			if matched != "" {
				ci.blocks = byKey[codeKey(matched)]
			}
			gi.codes = append(gi.codes, ci)
		}
		idx.groups = append(idx.groups, gi)
	}
	return idx
}

func (r *Resolver) resolveCode(target, code string, display map[string]string, known []string) string {
	if exact, ok := display[codeKey(code)]; ok {
		return exact
	}
	cacheKey := strings.Join([]string{r.source, target, r.matcher.Name(), codeKey(code)}, "\x00")
	if hit, ok := r.cache.get(cacheKey); ok {
		if hit.ok {
			r.fuzzed = append(r.fuzzed, fmt.Sprintf("%s: %s ~ %s", target, code, hit.code))
		}
		return hit.code
	}
	matched, ok := r.matcher.Match(code, known)
	r.cache.add(cacheKey, matchResult{code: matched, ok: ok})
	if !ok {
		return ""
	}
	r.fuzzed = append(r.fuzzed, fmt.Sprintf("%s: %s ~ %s", target, code, matched))
	return matched
}

// Targets lists the indexed targets in selection order.
func (r *Resolver) Targets() []string {
	out := make([]string, 0, len(r.targets))
	for _, t := range r.targets {
		out = append(out, t.name)
	}
	return out
}

// ApproximateMatches lists requirement codes resolved by the fallback
// policy rather than exactly. They are an accuracy risk worth surfacing.
func (r *Resolver) ApproximateMatches() []string {
	out := make([]string, len(r.fuzzed))
	copy(out, r.fuzzed)
	return out
}

func targetEntries(art pathway.Articulation, name string) []pathway.ArticulationEntry {
	if entries, ok := art.Targets[name]; ok {
		return entries
	}
	for key, entries := range art.Targets {
		if strings.EqualFold(key, name) {
			return entries
		}
	}
	return nil
}
