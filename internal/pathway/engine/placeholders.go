package engine

import (
	"math"
	"strconv"

	"github.com/kingrea/pathway/internal/pathway"
	"github.com/kingrea/pathway/internal/pathway/ge"
)

// SlotSeparator joins a GE requirement id and its slot number.
const SlotSeparator = "__slot"

// expandGE turns each remaining GE requirement into enough distinct
// placeholders to cover its outstanding courses and units. The canonical id
// is the requirement id; further placeholders are "<id>__slot<N>". Ids
// already completed are skipped so a requirement can be credited again in a
// later term.
func expandGE(remaining []ge.Remaining, completed pathway.CourseSet, s Settings) []pathway.Candidate {
	perPlaceholder := s.PlaceholderUnits * s.UnitScale
	var out []pathway.Candidate
	for _, rem := range remaining {
		need := rem.CoursesRemaining
		if rem.UnitsRemaining > 0 && perPlaceholder > 0 {
			byUnits := int(math.Ceil(rem.UnitsRemaining/perPlaceholder - 1e-9))
			need = max(need, byUnits)
		}
		for slot, added := 0, 0; added < need; slot++ {
			id := slotID(rem.ID, slot)
			if completed.Has(id) {
				continue
			}
			out = append(out, pathway.Candidate{
				ID:    id,
				Units: s.PlaceholderUnits,
				Kind:  pathway.KindGE,
				Tags:  []string{rem.ID},
				GEKey: rem.ID,
			})
			added++
		}
	}
	return out
}

func slotID(key string, slot int) string {
	if slot == 0 {
		return key
	}
	return key + SlotSeparator + strconv.Itoa(slot)
}

// creditTags picks the GE ledger tags for a committed course: the explicit GE
// key, else the first requirement tag, else the course id. Catalog GE tags of
// the course are credited as well.
func creditTags(c pathway.Candidate, catalog *pathway.Catalog) (string, []string) {
	key := c.GEKey
	if key == "" && len(c.Tags) > 0 {
		key = c.Tags[0]
	}
	if key == "" {
		key = c.ID
	}
	tags := []string{key}
	if course, ok := catalog.Lookup(c.ID); ok {
		for _, tag := range course.Tags {
			if tag != key {
				tags = append(tags, tag)
			}
		}
	}
	return key, tags
}
