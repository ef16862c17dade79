package ge

import (
	"github.com/kingrea/pathway/internal/pathway"
)

// unitEpsilon absorbs float noise from scaled unit sums.
const unitEpsilon = 1e-9

type evaluator struct {
	ledger []Record
	scale  float64
}

type nodeResult struct {
	status    NodeStatus
	tree      []NodeStatus
	remaining []Remaining
}

func (ev evaluator) node(n pathway.GENode, depth int) nodeResult {
	if len(n.Children) == 0 {
		return ev.leaf(n, depth)
	}
	switch n.Rollup {
	case pathway.RollupLeftoverPool:
		return ev.leftoverPool(n, depth)
	case pathway.RollupGlobalQuota:
		return ev.globalQuota(n, depth)
	default:
		return ev.sumOfChildren(n, depth)
	}
}

func (ev evaluator) leaf(n pathway.GENode, depth int) nodeResult {
	idx := ev.matching(tagSet(n.MatchTags()), nil)
	courses, units := len(idx), ev.units(idx)
	status := ev.status(n, depth, courses, units, n.MinCourses, n.MinUnits)
	res := nodeResult{status: status, tree: []NodeStatus{status}}
	if !status.Satisfied {
		res.remaining = []Remaining{remainingOf(status)}
	}
	return res
}

// sumOfChildren reports children individually; the parent's remainder is the
// sum of theirs and the parent itself is never scheduled directly.
func (ev evaluator) sumOfChildren(n pathway.GENode, depth int) nodeResult {
	children := ev.children(n, depth)
	parent := NodeStatus{ID: n.ID, Name: n.Name, Depth: depth, Rollup: pathway.RollupSumOfChildren, Satisfied: true}
	res := nodeResult{}
	for _, child := range children {
		parent.CoursesMatched += child.status.CoursesMatched
		parent.UnitsMatched += child.status.UnitsMatched
		parent.CoursesRemaining += child.status.CoursesRemaining
		parent.UnitsRemaining += child.status.UnitsRemaining
		parent.Satisfied = parent.Satisfied && child.status.Satisfied
		res.tree = append(res.tree, child.tree...)
		res.remaining = append(res.remaining, child.remaining...)
	}
	res.status = parent
	res.tree = append([]NodeStatus{parent}, res.tree...)
	return res
}

// leftoverPool reports children individually plus a bucket holding the
// courses the parent requires beyond the children's minimums. The bucket is
// filled by surplus child credit and by credit tagged with the parent or the
// bucket itself.
func (ev evaluator) leftoverPool(n pathway.GENode, depth int) nodeResult {
	children := ev.children(n, depth)
	var childMinCourses, surplusCourses int
	var childMinUnits, surplusUnits float64
	res := nodeResult{}
	parent := NodeStatus{ID: n.ID, Name: n.Name, Depth: depth, Rollup: pathway.RollupLeftoverPool, Satisfied: true}
	for i, child := range children {
		def := n.Children[i]
		childMinCourses += def.MinCourses
		childMinUnits += def.MinUnits
		surplusCourses += max(0, child.status.CoursesMatched-def.MinCourses)
		surplusUnits += max(0, child.status.UnitsMatched-def.MinUnits)
		parent.CoursesMatched += child.status.CoursesMatched
		parent.UnitsMatched += child.status.UnitsMatched
		parent.CoursesRemaining += child.status.CoursesRemaining
		parent.UnitsRemaining += child.status.UnitsRemaining
		parent.Satisfied = parent.Satisfied && child.status.Satisfied
		res.tree = append(res.tree, child.tree...)
		res.remaining = append(res.remaining, child.remaining...)
	}

	direct := ev.matching(tagSet(append(n.MatchTags(), n.LeftoverID())), descendantTags(n))
	parent.CoursesMatched += len(direct)
	parent.UnitsMatched += ev.units(direct)

	bucketDef := pathway.GENode{ID: n.LeftoverID(), Name: leftoverName(n)}
	bucket := ev.status(bucketDef, depth+1,
		surplusCourses+len(direct), surplusUnits+ev.units(direct),
		max(0, n.MinCourses-childMinCourses), max(0, n.MinUnits-childMinUnits))
	res.tree = append(res.tree, bucket)
	if !bucket.Satisfied {
		res.remaining = append(res.remaining, remainingOf(bucket))
	}
	parent.CoursesRemaining += bucket.CoursesRemaining
	parent.UnitsRemaining += bucket.UnitsRemaining
	parent.Satisfied = parent.Satisfied && bucket.Satisfied

	res.status = parent
	res.tree = append([]NodeStatus{parent}, res.tree...)
	return res
}

// globalQuota counts each child's credit up to its cap (the child's
// MaxCourses, else the parent's ChildCap) plus direct parent credit toward
// the parent's own minimums. The parent is schedulable.
func (ev evaluator) globalQuota(n pathway.GENode, depth int) nodeResult {
	children := ev.children(n, depth)
	res := nodeResult{}
	counted := 0
	countedUnits := 0.0
	childrenOK := true
	for i, child := range children {
		def := n.Children[i]
		limit := def.MaxCourses
		if limit <= 0 {
			limit = n.ChildCap
		}
		idx := ev.matching(tagSet(subtreeTags(def)), nil)
		if limit > 0 && len(idx) > limit {
			idx = idx[:limit]
		}
		counted += len(idx)
		countedUnits += ev.units(idx)
		childrenOK = childrenOK && child.status.Satisfied
		res.tree = append(res.tree, child.tree...)
		res.remaining = append(res.remaining, child.remaining...)
	}
	direct := ev.matching(tagSet(n.MatchTags()), descendantTags(n))
	counted += len(direct)
	countedUnits += ev.units(direct)

	parent := ev.status(n, depth, counted, countedUnits, n.MinCourses, n.MinUnits)
	parent.Rollup = pathway.RollupGlobalQuota
	if !parent.Satisfied {
		res.remaining = append(res.remaining, remainingOf(parent))
	}
	parent.Satisfied = parent.Satisfied && childrenOK
	res.status = parent
	res.tree = append([]NodeStatus{parent}, res.tree...)
	return res
}

func (ev evaluator) children(n pathway.GENode, depth int) []nodeResult {
	out := make([]nodeResult, 0, len(n.Children))
	for _, child := range n.Children {
		out = append(out, ev.node(child, depth+1))
	}
	return out
}

func (ev evaluator) status(n pathway.GENode, depth int, courses int, units float64, minCourses int, minUnits float64) NodeStatus {
	remCourses := max(0, minCourses-courses)
	remUnits := minUnits - units
	if remUnits < unitEpsilon {
		remUnits = 0
	}
	return NodeStatus{
		ID:               n.ID,
		Name:             n.Name,
		Depth:            depth,
		CoursesMatched:   courses,
		UnitsMatched:     units,
		CoursesRemaining: remCourses,
		UnitsRemaining:   remUnits,
		Satisfied:        remCourses == 0 && remUnits == 0,
	}
}

// matching returns ledger indexes whose tags intersect include and, when
// exclude is non-nil, do not intersect exclude.
func (ev evaluator) matching(include, exclude map[string]struct{}) []int {
	var out []int
	for i, rec := range ev.ledger {
		if intersects(rec.Tags, include) && (exclude == nil || !intersects(rec.Tags, exclude)) {
			out = append(out, i)
		}
	}
	return out
}

func (ev evaluator) units(idx []int) float64 {
	total := 0.0
	for _, i := range idx {
		total += ev.ledger[i].Units * ev.scale
	}
	return total
}

func remainingOf(s NodeStatus) Remaining {
	return Remaining{ID: s.ID, Name: s.Name, CoursesRemaining: s.CoursesRemaining, UnitsRemaining: s.UnitsRemaining}
}

func leftoverName(n pathway.GENode) string {
	if n.Name == "" {
		return n.ID + " (any area)"
	}
	return n.Name + " (any area)"
}

// subtreeTags lists the match tags of a node and all its descendants,
// including leftover buckets.
func subtreeTags(n pathway.GENode) []string {
	tags := n.MatchTags()
	if n.Rollup == pathway.RollupLeftoverPool && len(n.Children) > 0 {
		tags = append(tags, n.LeftoverID())
	}
	for _, child := range n.Children {
		tags = append(tags, subtreeTags(child)...)
	}
	return tags
}

func descendantTags(n pathway.GENode) map[string]struct{} {
	var tags []string
	for _, child := range n.Children {
		tags = append(tags, subtreeTags(child)...)
	}
	return tagSet(tags)
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

func intersects(tags []string, set map[string]struct{}) bool {
	for _, tag := range tags {
		if _, ok := set[tag]; ok {
			return true
		}
	}
	return false
}
