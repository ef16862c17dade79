package pathway

import (
	"fmt"
	"sort"
	"strings"
)

// Op identifies the node type of a prerequisite expression.
type Op string

const (
	OpLeaf Op = "leaf"
	OpAnd  Op = "and"
	OpOr   Op = "or"
)

// Expr is the closed prerequisite variant. A nil *Expr is trivially satisfied.
type Expr struct {
	Op       Op      `json:"op" yaml:"op"`
	Course   string  `json:"course,omitempty" yaml:"course,omitempty"`
	Children []*Expr `json:"children,omitempty" yaml:"children,omitempty"`
}

// Leaf builds a single-course requirement.
func Leaf(course string) *Expr {
	return &Expr{Op: OpLeaf, Course: NormalizeID(course)}
}

// And requires every child.
func And(children ...*Expr) *Expr {
	return &Expr{Op: OpAnd, Children: compactExprs(children)}
}

// Or requires any child.
func Or(children ...*Expr) *Expr {
	return &Expr{Op: OpOr, Children: compactExprs(children)}
}

// Courses lists every course referenced by the expression, sorted.
func (e *Expr) Courses() []string {
	seen := map[string]struct{}{}
	e.walk(func(leaf string) { seen[leaf] = struct{}{} })
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// References reports whether course appears anywhere in the expression.
func (e *Expr) References(course string) bool {
	found := false
	e.walk(func(leaf string) {
		if leaf == course {
			found = true
		}
	})
	return found
}

func (e *Expr) walk(fn func(string)) {
	if e == nil {
		return
	}
	if e.Op == OpLeaf {
		if e.Course != "" {
			fn(e.Course)
		}
		return
	}
	for _, child := range e.Children {
		child.walk(fn)
	}
}

func (e *Expr) String() string {
	if e == nil {
		return "<none>"
	}
	switch e.Op {
	case OpLeaf:
		return e.Course
	case OpAnd, OpOr:
		parts := make([]string, 0, len(e.Children))
		for _, child := range e.Children {
			parts = append(parts, child.String())
		}
		sep := " AND "
		if e.Op == OpOr {
			sep = " OR "
		}
		return "(" + strings.Join(parts, sep) + ")"
	default:
		return fmt.Sprintf("<%s>", e.Op)
	}
}

func compactExprs(children []*Expr) []*Expr {
	out := make([]*Expr, 0, len(children))
	for _, child := range children {
		if child != nil {
			out = append(out, child)
		}
	}
	return out
}

// idSeparator joins AND-ed course ids in legacy string shapes ("CIS 22A; CIS 22B").
const idSeparator = ";"

// NormalizePrereq converts a decoded prerequisite value (string, list, or map
// as produced by yaml.v3) into the closed Expr form. Shapes that cannot be
// interpreted are dropped and reported; a dropped branch places no
// constraint on the course.
func NormalizePrereq(course string, raw any) (*Expr, []error) {
	n := normalizer{course: course}
	expr := n.normalize(raw)
	return expr, n.diags
}

type normalizer struct {
	course string
	diags  []error
}

func (n *normalizer) malformed(value any, reason string) *Expr {
	n.diags = append(n.diags, &MalformedExpressionError{Course: n.course, Value: value, Reason: reason})
	return nil
}

func (n *normalizer) normalize(raw any) *Expr {
	switch value := raw.(type) {
	case nil:
		return nil
	case string:
		return n.normalizeString(value)
	case []any:
		return n.normalizeList(value)
	case []string:
		items := make([]any, len(value))
		for i, v := range value {
			items[i] = v
		}
		return n.normalizeList(items)
	case map[string]any:
		return n.normalizeMap(value)
	default:
		return n.malformed(raw, fmt.Sprintf("unsupported type %T", raw))
	}
}

func (n *normalizer) normalizeString(value string) *Expr {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if !strings.Contains(value, idSeparator) {
		return Leaf(value)
	}
	var leaves []*Expr
	for _, part := range strings.Split(value, idSeparator) {
		if id := strings.TrimSpace(part); id != "" {
			leaves = append(leaves, Leaf(id))
		}
	}
	if len(leaves) == 0 {
		return nil
	}
	return And(leaves...)
}

// normalizeList handles the legacy flat-list shapes: plain identifiers are
// alternatives, any separator-joined element turns the list into an AND of
// groups, and lists holding nested structures are implicitly AND-ed.
func (n *normalizer) normalizeList(items []any) *Expr {
	if len(items) == 0 {
		return nil
	}
	allStrings := true
	joined := false
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			allStrings = false
			break
		}
		if strings.Contains(s, idSeparator) {
			joined = true
		}
	}
	children := make([]*Expr, 0, len(items))
	for _, item := range items {
		if child := n.normalize(item); child != nil {
			children = append(children, child)
		}
	}
	if len(children) == 0 {
		return nil
	}
	if allStrings && !joined {
		return Or(children...)
	}
	return And(children...)
}

func (n *normalizer) normalizeMap(value map[string]any) *Expr {
	if len(value) == 0 {
		return nil
	}
	lowered := make(map[string]any, len(value))
	for key, v := range value {
		lowered[strings.ToLower(strings.TrimSpace(key))] = v
	}
	if typ, ok := lowered["type"]; ok {
		items, hasItems := lowered["items"]
		op, _ := typ.(string)
		if !hasItems {
			return n.malformed(value, "legacy block without items")
		}
		return n.combine(strings.ToLower(strings.TrimSpace(op)), items, value)
	}
	var children []*Expr
	matched := false
	for _, op := range []string{string(OpAnd), string(OpOr)} {
		items, ok := lowered[op]
		if !ok {
			continue
		}
		matched = true
		if child := n.combine(op, items, value); child != nil {
			children = append(children, child)
		}
	}
	if !matched {
		return n.malformed(value, "expected and/or keys")
	}
	switch len(children) {
	case 0:
		return nil
	case 1:
		return children[0]
	default:
		return And(children...)
	}
}

func (n *normalizer) combine(op string, items any, origin any) *Expr {
	var list []any
	switch v := items.(type) {
	case []any:
		list = v
	case nil:
		return nil
	default:
		list = []any{v}
	}
	children := make([]*Expr, 0, len(list))
	for _, item := range list {
		if child := n.normalize(item); child != nil {
			children = append(children, child)
		}
	}
	if len(children) == 0 {
		return nil
	}
	switch Op(op) {
	case OpAnd:
		return And(children...)
	case OpOr:
		return Or(children...)
	default:
		return n.malformed(origin, fmt.Sprintf("unknown operator %q", op))
	}
}
