package pathway

import (
	"sort"
	"strings"
)

// DefaultUnits is assumed for any course whose units are unknown.
const DefaultUnits = 3.0

// Course is one source-institution catalog entry.
type Course struct {
	ID     string   `json:"id" yaml:"id"`
	Name   string   `json:"name,omitempty" yaml:"name,omitempty"`
	Units  float64  `json:"units" yaml:"units"`
	Prereq *Expr    `json:"prereq,omitempty" yaml:"prereq,omitempty"`
	Tags   []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Catalog is the immutable course index for one source institution.
type Catalog struct {
	courses map[string]Course
	ids     []string
}

// NewCatalog indexes courses by normalized identifier. Later duplicates win.
func NewCatalog(courses ...Course) *Catalog {
	c := &Catalog{courses: make(map[string]Course, len(courses))}
	for _, course := range courses {
		course.ID = NormalizeID(course.ID)
		if course.ID == "" {
			continue
		}
		if course.Units < 0 {
			course.Units = DefaultUnits
		}
		c.courses[course.ID] = course
	}
	c.ids = make([]string, 0, len(c.courses))
	for id := range c.courses {
		c.ids = append(c.ids, id)
	}
	sort.Strings(c.ids)
	return c
}

// Lookup returns the course and whether it exists.
func (c *Catalog) Lookup(id string) (Course, bool) {
	if c == nil {
		return Course{}, false
	}
	course, ok := c.courses[NormalizeID(id)]
	return course, ok
}

// Has reports whether the catalog lists id.
func (c *Catalog) Has(id string) bool {
	_, ok := c.Lookup(id)
	return ok
}

// Units returns catalog units for id, or DefaultUnits when id is not listed.
// Declared zero-unit courses cost nothing.
func (c *Catalog) Units(id string) float64 {
	course, ok := c.Lookup(id)
	if !ok {
		return DefaultUnits
	}
	return course.Units
}

// Prereq returns the normalized prerequisite for id. Unknown courses are
// unconstrained.
func (c *Catalog) Prereq(id string) *Expr {
	course, ok := c.Lookup(id)
	if !ok {
		return nil
	}
	return course.Prereq
}

// IDs lists every course identifier in ascending order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Len returns the number of courses.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.ids)
}

// NormalizeID collapses internal whitespace and folds case so "cis  22a "
// and "CIS 22A" refer to the same course.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.Join(strings.Fields(id), " "))
}
