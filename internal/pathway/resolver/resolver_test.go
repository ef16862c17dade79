package resolver

import (
	"reflect"
	"testing"

	"github.com/kingrea/pathway/internal/pathway"
)

func scenarioArticulation() pathway.Articulation {
	return pathway.Articulation{
		Source: "DEANZA",
		Targets: map[string][]pathway.ArticulationEntry{
			"UCSD": {
				{Code: "CSE 11", Blocks: []pathway.Block{{"CIS 22A", "CIS 22B"}}},
				{Code: "CSE 8B", Blocks: []pathway.Block{{"CIS 36A"}}},
				{Code: "MATH 20A", Blocks: []pathway.Block{{"MATH 1A", "MATH 1B"}, {"MATH 1AH"}}},
				{Code: "MATH 20C", Blocks: []pathway.Block{{"MATH 1C"}}},
			},
			"UCLA": {
				{Code: "MATH 31A", Blocks: []pathway.Block{{"MATH 1C"}}},
				{Code: "CS 31", Blocks: []pathway.Block{{"CIS 22A"}}},
			},
		},
	}
}

func scenarioRequirements() pathway.Requirements {
	return pathway.Requirements{
		"UCSD": {Groups: []pathway.RequirementGroup{
			{ID: "programming", NumberRequired: 1, Codes: []string{"CSE 11", "CSE 8B"}},
			{ID: "calculus", NumberRequired: 2, Codes: []string{"MATH 20A", "MATH 20C", "MATH 20B"}},
		}},
		"UCLA": {Groups: []pathway.RequirementGroup{
			{ID: "math", NumberRequired: 1, Codes: []string{"MATH 31A"}},
			{ID: "cs", NumberRequired: 1, Codes: []string{"CS 31"}},
		}},
	}
}

func scenarioCatalog() *pathway.Catalog {
	return pathway.NewCatalog(
		pathway.Course{ID: "MATH 1A", Units: 5},
		pathway.Course{ID: "MATH 1C", Units: 5},
		pathway.Course{ID: "CIS 36A", Units: 4.5},
	)
}

func mustResolver(t *testing.T, targets []string, opts ...Option) *Resolver {
	t.Helper()
	r, err := New(scenarioArticulation(), scenarioRequirements(), targets, scenarioCatalog(), opts...)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	return r
}

func candidateIDs(cands []pathway.Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.ID)
	}
	return out
}

func TestGroupSatisfiedByAlternativeCode(t *testing.T) {
	r := mustResolver(t, []string{"UCSD"})
	completed := pathway.NewCourseSet("CIS 36A")
	for _, gs := range r.Status(completed) {
		if gs.Group == "programming" && !gs.Satisfied {
			t.Fatalf("expected programming satisfied, got %+v", gs)
		}
	}
	for _, cand := range r.RemainingCandidates(completed) {
		for _, tag := range cand.Tags {
			if tag == "UCSD:programming" {
				t.Fatalf("satisfied group still emitted %s", cand.ID)
			}
		}
	}
}

func TestRemainingCandidatesOneBlockPerGroup(t *testing.T) {
	r := mustResolver(t, []string{"UCSD"})
	got := r.RemainingCandidates(pathway.NewCourseSet())
	// programming: CSE 8B (one course) beats CSE 11 (two courses).
	// calculus needs two codes but offers one block: MATH 20A's single-course
	// block ties with MATH 20C and wins on declaration order.
	want := []string{"CIS 36A", "MATH 1AH"}
	if !reflect.DeepEqual(candidateIDs(got), want) {
		t.Fatalf("expected %v, got %v", want, candidateIDs(got))
	}
	if got[0].Units != 4.5 || got[1].Units != pathway.DefaultUnits {
		t.Fatalf("unexpected units: %+v", got)
	}
	if got[1].Tags[0] != "UCSD:calculus" || got[1].Kind != pathway.KindMajor {
		t.Fatalf("unexpected tagging: %+v", got[1])
	}

	partial := r.RemainingCandidates(pathway.NewCourseSet("CIS 36A"))
	if want := []string{"MATH 1AH"}; !reflect.DeepEqual(candidateIDs(partial), want) {
		t.Fatalf("expected %v, got %v", want, candidateIDs(partial))
	}
}

func TestRemainingCandidatesDeficitBlocks(t *testing.T) {
	r := mustResolver(t, []string{"UCSD"}, WithDeficitBlocks())
	got := r.RemainingCandidates(pathway.NewCourseSet("CIS 36A"))
	want := []string{"MATH 1AH", "MATH 1C"}
	if !reflect.DeepEqual(candidateIDs(got), want) {
		t.Fatalf("expected %v, got %v", want, candidateIDs(got))
	}
	for _, c := range got {
		if c.Tags[0] != "UCSD:calculus" {
			t.Fatalf("unexpected tagging: %+v", c)
		}
	}
}

func TestRemainingCandidatesMergesTagsAcrossTargets(t *testing.T) {
	r := mustResolver(t, []string{"UCSD", "UCLA"})
	completed := pathway.NewCourseSet("MATH 1AH", "CIS 36A")
	got := r.RemainingCandidates(completed)
	want := []string{"MATH 1C", "CIS 22A"}
	if !reflect.DeepEqual(candidateIDs(got), want) {
		t.Fatalf("expected %v, got %v", want, candidateIDs(got))
	}
	if !reflect.DeepEqual(got[0].Tags, []string{"UCSD:calculus", "UCLA:math"}) {
		t.Fatalf("unexpected tags for MATH 1C: %v", got[0].Tags)
	}
}

func TestUnmetAndUnsatisfiable(t *testing.T) {
	r := mustResolver(t, []string{"UCSD"})
	unmet := r.Unmet(pathway.NewCourseSet("CIS 36A", "MATH 1C"))
	if !reflect.DeepEqual(unmet, []string{"UCSD:calculus"}) {
		t.Fatalf("unexpected unmet: %v", unmet)
	}
	if r.Satisfied(pathway.NewCourseSet("CIS 36A")) {
		t.Fatalf("expected unsatisfied requirements")
	}
	if !r.Satisfied(pathway.NewCourseSet("CIS 36A", "MATH 1C", "MATH 1A", "MATH 1B")) {
		t.Fatalf("expected all groups satisfied")
	}
	if got := r.Unsatisfiable(); len(got) != 0 {
		t.Fatalf("expected every group reachable, got %v", got)
	}
}

func TestNewRejectsUnknownTarget(t *testing.T) {
	if _, err := New(scenarioArticulation(), scenarioRequirements(), []string{"UCX"}, nil); err == nil {
		t.Fatalf("expected error for unknown target")
	}
	if _, err := New(scenarioArticulation(), scenarioRequirements(), nil, nil); err == nil {
		t.Fatalf("expected error without targets")
	}
}

func TestPrefixFallbackOnlyWithoutExactMatch(t *testing.T) {
	art := scenarioArticulation()
	reqs := pathway.Requirements{"UCSD": {Groups: []pathway.RequirementGroup{
		{ID: "drift", NumberRequired: 1, Codes: []string{"CSE 8"}},
		{ID: "exact", NumberRequired: 1, Codes: []string{"cse 11"}},
		{ID: "far", NumberRequired: 1, Codes: []string{"MATH 9"}},
	}}}
	exact, err := New(art, reqs, []string{"UCSD"}, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := exact.Unsatisfiable(); !reflect.DeepEqual(got, []string{"UCSD:drift", "UCSD:far"}) {
		t.Fatalf("exact policy should not resolve drifted codes, got %v", got)
	}
	prefix, err := New(art, reqs, []string{"UCSD"}, nil, WithMatcher(PrefixMatcher{MaxSuffix: 2}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := prefix.Unsatisfiable(); !reflect.DeepEqual(got, []string{"UCSD:far"}) {
		t.Fatalf("prefix policy should resolve CSE 8 only, got %v", got)
	}
	if got := prefix.ApproximateMatches(); !reflect.DeepEqual(got, []string{"UCSD: CSE 8 ~ CSE 8B"}) {
		t.Fatalf("unexpected approximate matches: %v", got)
	}
	if prefix.Satisfied(pathway.NewCourseSet("CIS 36A", "CIS 22A", "CIS 22B", "MATH 1C")) {
		t.Fatalf("far group has no articulation and must stay unmet")
	}
}

func TestMatchCacheSharedAcrossResolvers(t *testing.T) {
	cache, err := NewMatchCache(16)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	reqs := pathway.Requirements{"UCSD": {Groups: []pathway.RequirementGroup{
		{ID: "drift", NumberRequired: 1, Codes: []string{"CSE 8"}},
	}}}
	for i := 0; i < 2; i++ {
		r, err := New(scenarioArticulation(), reqs, []string{"UCSD"}, nil, WithMatcher(PrefixMatcher{}), WithCache(cache))
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		if len(r.Unsatisfiable()) != 0 {
			t.Fatalf("expected drift resolved on pass %d", i)
		}
	}
	if cache.Len() != 1 {
		t.Fatalf("expected one cached resolution, got %d", cache.Len())
	}
}

func TestMatchers(t *testing.T) {
	known := []string{"CSE 8B", "CSE 11", "MATH 20A", "MATH 20AH"}
	tests := []struct {
		name    string
		matcher Matcher
		code    string
		want    string
		ok      bool
	}{
		{name: "exact never falls back", matcher: ExactMatcher{}, code: "CSE 8", ok: false},
		{name: "prefix extends number", matcher: PrefixMatcher{}, code: "CSE 8", want: "CSE 8B", ok: true},
		{name: "prefix shortest drift", matcher: PrefixMatcher{}, code: "MATH 20", want: "MATH 20A", ok: true},
		{name: "prefix respects subject", matcher: PrefixMatcher{}, code: "CS 8", ok: false},
		{name: "prefix bounded", matcher: PrefixMatcher{MaxSuffix: 1}, code: "MATH 2", ok: false},
		{name: "fuzzy same subject", matcher: FuzzyMatcher{}, code: "MATH 20H", want: "MATH 20AH", ok: true},
		{name: "fuzzy needs every character", matcher: FuzzyMatcher{}, code: "CSE 9", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.matcher.Match(tt.code, known)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("Match(%q) = %q, %v; want %q, %v", tt.code, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestMatcherFor(t *testing.T) {
	if MatcherFor("Prefix", 3, 0).Name() != "prefix" {
		t.Fatalf("expected prefix matcher")
	}
	if MatcherFor("fuzzy", 0, 5).Name() != "fuzzy" {
		t.Fatalf("expected fuzzy matcher")
	}
	if MatcherFor("", 0, 0).Name() != "exact" {
		t.Fatalf("expected exact matcher by default")
	}
}
