package loader

import (
	"fmt"

	"github.com/uni-scheduler/timetable/internal/entity"
)

// Validate runs referential and plausibility checks over a loaded
// input and returns one warning line per finding. Warnings do not stop
// a solve; broken references simply surface later as empty domains.
func Validate(in *entity.Input) []string {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	dupes := func(kind string, ids []string) {
		seen := map[string]bool{}
		for _, id := range ids {
			if seen[id] {
				warn("duplicate %s id %q", kind, id)
			}
			seen[id] = true
		}
	}
	var ids []string
	for _, t := range in.Teachers {
		ids = append(ids, t.ID)
	}
	dupes("teacher", ids)
	ids = ids[:0]
	for _, r := range in.Rooms {
		ids = append(ids, r.ID)
	}
	dupes("room", ids)
	ids = ids[:0]
	for _, c := range in.Classes {
		ids = append(ids, c.ID)
	}
	dupes("class", ids)
	ids = ids[:0]
	for _, s := range in.Subjects {
		ids = append(ids, s.ID)
	}
	dupes("subject", ids)

	teachers := in.TeacherByID()
	rooms := in.RoomByID()
	classes := in.ClassByID()
	subjects := in.SubjectByID()

	for _, s := range in.Subjects {
		for _, rid := range s.ViableRoomIDs {
			if _, ok := rooms[rid]; !ok {
				warn("subject %s lists unknown room %q", s.ID, rid)
			}
		}
	}

	demand := map[string]int{}
	for i, d := range in.Demands {
		if _, ok := classes[d.ClassID]; !ok {
			warn("curriculum row %d references unknown class %q", i+1, d.ClassID)
		}
		if _, ok := teachers[d.TeacherID]; !ok {
			warn("curriculum row %d references unknown teacher %q", i+1, d.TeacherID)
		}
		sub, ok := subjects[d.SubjectID]
		if !ok {
			warn("curriculum row %d references unknown subject %q", i+1, d.SubjectID)
		}
		if d.FixedRoomID != "" {
			if _, ok := rooms[d.FixedRoomID]; !ok {
				warn("curriculum row %d references unknown room %q", i+1, d.FixedRoomID)
			}
		}
		if ok {
			demand[d.TeacherID] += d.PeriodsPerWeek * sub.Duration
		}
	}

	for _, t := range in.Teachers {
		if demand[t.ID] > t.MaxLoadWeek {
			warn("teacher %s is assigned %d periods against a weekly cap of %d",
				t.ID, demand[t.ID], t.MaxLoadWeek)
		}
	}

	for _, u := range append(append([]entity.TeacherSlot{}, in.Unavailability...), in.Preferences...) {
		if _, ok := teachers[u.TeacherID]; !ok {
			warn("availability row references unknown teacher %q", u.TeacherID)
		}
	}
	return warnings
}
