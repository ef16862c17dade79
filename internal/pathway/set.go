package pathway

import "sort"

// CourseSet is a set of completed course identifiers.
type CourseSet map[string]struct{}

// NewCourseSet builds a set from ids.
func NewCourseSet(ids ...string) CourseSet {
	set := make(CourseSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

// Has reports membership. A nil set is empty.
func (s CourseSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id and reports whether it was new.
func (s CourseSet) Add(id string) bool {
	if id == "" || s.Has(id) {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Clone copies the set.
func (s CourseSet) Clone() CourseSet {
	out := make(CourseSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// With returns a copy including extra.
func (s CourseSet) With(extra ...string) CourseSet {
	out := s.Clone()
	for _, id := range extra {
		out.Add(id)
	}
	return out
}

// Sorted lists members in ascending order.
func (s CourseSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
