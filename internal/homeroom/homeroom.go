// Package homeroom assigns each class its default general-purpose
// room. Rooms sharing a display name form a block (a building wing or
// floor), classes sharing a base id form a grade cohort, and blocks
// are matched to cohorts one-for-one.
package homeroom

import (
	"sort"
	"strings"

	"github.com/uni-scheduler/timetable/internal/entity"
)

type group struct {
	name string
	ids  []string
}

// Allocate pairs room blocks with class cohorts ordinally after
// sorting both by name, then maps class to room one-for-one inside
// each pair, both sides sorted by id. Spare room blocks beyond the
// cohort count stay empty; a shortage of blocks, or a matched pair
// differing in size, is a configuration error.
func Allocate(classes []entity.Class, rooms []entity.Room) (map[string]string, error) {
	roomGroups := make(map[string]*group)
	for _, r := range rooms {
		if r.Kind != entity.RoomGeneral {
			continue
		}
		g := roomGroups[r.Name]
		if g == nil {
			g = &group{name: r.Name}
			roomGroups[r.Name] = g
		}
		g.ids = append(g.ids, r.ID)
	}

	classGroups := make(map[string]*group)
	for _, c := range classes {
		base := BaseID(c.ID)
		g := classGroups[base]
		if g == nil {
			g = &group{name: base}
			classGroups[base] = g
		}
		g.ids = append(g.ids, c.ID)
	}

	if len(classGroups) > len(roomGroups) {
		return nil, entity.NewError(entity.CodeConfig,
			"home room allocation is short of room blocks: %d class cohorts, %d room blocks",
			len(classGroups), len(roomGroups))
	}

	rg := sortedGroups(roomGroups)
	cg := sortedGroups(classGroups)

	homes := make(map[string]string, len(classes))
	for i := range cg {
		if len(rg[i].ids) != len(cg[i].ids) {
			return nil, entity.NewError(entity.CodeConfig,
				"room block %q has %d rooms but cohort %q has %d classes",
				rg[i].name, len(rg[i].ids), cg[i].name, len(cg[i].ids))
		}
		sort.Strings(rg[i].ids)
		sort.Strings(cg[i].ids)
		for k, classID := range cg[i].ids {
			homes[classID] = rg[i].ids[k]
		}
	}
	return homes, nil
}

func sortedGroups(m map[string]*group) []*group {
	out := make([]*group, 0, len(m))
	for _, g := range m {
		out = append(out, g)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].name < out[b].name })
	return out
}

// BaseID strips trailing section letters from a class id, so "10A"
// and "10B" share the cohort "10". Ids with no trailing letters are
// their own cohort.
func BaseID(id string) string {
	trimmed := strings.TrimRightFunc(id, func(r rune) bool {
		return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
	})
	if trimmed == "" {
		return id
	}
	return trimmed
}
