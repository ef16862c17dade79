package resolver

import (
	"sort"
	"strings"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/sahilm/fuzzy"
)

// Matcher maps a requirement code with no exact articulation entry onto one
// of the known codes. Implementations must be deterministic.
type Matcher interface {
	Name() string
	Match(code string, known []string) (string, bool)
}

// ExactMatcher never falls back; only exact (case and whitespace
// insensitive) matches resolve.
type ExactMatcher struct{}

func (ExactMatcher) Name() string { return "exact" }

func (ExactMatcher) Match(string, []string) (string, bool) { return "", false }

// DefaultMaxSuffix bounds how many trailing characters the prefix matcher
// tolerates between course numbers.
const DefaultMaxSuffix = 2

// PrefixMatcher accepts a known code in the same subject whose course number
// extends (or is extended by) the requested number by at most MaxSuffix
// characters, e.g. "CSE 8" and "CSE 8B".
type PrefixMatcher struct {
	MaxSuffix int
}

func (PrefixMatcher) Name() string { return "prefix" }

func (m PrefixMatcher) Match(code string, known []string) (string, bool) {
	limit := m.MaxSuffix
	if limit <= 0 {
		limit = DefaultMaxSuffix
	}
	subject, number := splitCode(code)
	if subject == "" || number == "" {
		return "", false
	}
	best, bestDiff := "", limit+1
	for _, candidate := range sameSubject(subject, known) {
		_, other := splitCode(candidate)
		short, long := number, other
		if len(short) > len(long) {
			short, long = long, short
		}
		if short == "" || !strings.HasPrefix(long, short) {
			continue
		}
		diff := len(long) - len(short)
		if diff == 0 || diff > limit {
			continue
		}
		if diff < bestDiff || (diff == bestDiff && candidate < best) {
			best, bestDiff = candidate, diff
		}
	}
	return best, best != ""
}

// DefaultMinScore is the lowest fuzzy score FuzzyMatcher accepts.
const DefaultMinScore = 0

// FuzzyMatcher ranks same-subject codes with sahilm/fuzzy and accepts the top
// hit whose score clears MinScore. Every character of the requested number
// must appear in order in the match.
type FuzzyMatcher struct {
	MinScore int
}

func (FuzzyMatcher) Name() string { return "fuzzy" }

func (m FuzzyMatcher) Match(code string, known []string) (string, bool) {
	subject, number := splitCode(code)
	if subject == "" || number == "" {
		return "", false
	}
	pool := sameSubject(subject, known)
	if len(pool) == 0 {
		return "", false
	}
	numbers := make([]string, len(pool))
	for i, candidate := range pool {
		_, numbers[i] = splitCode(candidate)
	}
	matches := fuzzy.Find(number, numbers)
	if len(matches) == 0 {
		return "", false
	}
	top := matches[0]
	if top.Score < m.MinScore {
		return "", false
	}
	return pool[top.Index], true
}

// MatcherFor returns the named policy, defaulting to exact.
func MatcherFor(name string, maxSuffix, minScore int) Matcher {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "prefix":
		return PrefixMatcher{MaxSuffix: maxSuffix}
	case "fuzzy":
		return FuzzyMatcher{MinScore: minScore}
	default:
		return ExactMatcher{}
	}
}

// codeKey is the exact-match key: upper case with whitespace removed.
func codeKey(code string) string {
	return strings.ToUpper(strings.Join(strings.Fields(code), ""))
}

// splitCode separates the subject ("MATH") from the course number ("20A").
func splitCode(code string) (string, string) {
	fields := strings.Fields(strings.ToUpper(code))
	if len(fields) < 2 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], "")
}

func sameSubject(subject string, known []string) []string {
	var out []string
	for _, candidate := range known {
		if s, _ := splitCode(candidate); s == subject {
			out = append(out, candidate)
		}
	}
	sort.Strings(out)
	return out
}

// DefaultCacheSize bounds MatchCache entries.
const DefaultCacheSize = 1024

type matchResult struct {
	code string
	ok   bool
}

// MatchCache memoizes code resolution across resolvers built over the same
// articulation data. It is safe for concurrent use.
type MatchCache struct {
	entries *lru.Cache[string, matchResult]
}

// NewMatchCache allocates a cache holding at most size entries.
func NewMatchCache(size int) (*MatchCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, matchResult](size)
	if err != nil {
		return nil, err
	}
	return &MatchCache{entries: entries}, nil
}

func (c *MatchCache) get(key string) (matchResult, bool) {
	if c == nil {
		return matchResult{}, false
	}
	return c.entries.Get(key)
}

func (c *MatchCache) add(key string, value matchResult) {
	if c == nil {
		return
	}
	c.entries.Add(key, value)
}

// Len reports cached entries.
func (c *MatchCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
