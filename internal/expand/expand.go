// Package expand turns curriculum demand lines into individual
// schedulable sessions, one per required period-unit.
package expand

import (
	"fmt"

	"github.com/uni-scheduler/timetable/internal/entity"
)

// Sessions expands each demand line into PeriodsPerWeek sessions.
// IDs are minted sequentially in input order, so the same input always
// yields the same session list.
func Sessions(demands []entity.CurriculumDemand) ([]entity.Session, error) {
	var out []entity.Session
	n := 0
	for i, d := range demands {
		if d.ClassID == "" || d.SubjectID == "" || d.TeacherID == "" {
			return nil, entity.NewError(entity.CodeData,
				"demand %d is missing class, subject, or teacher", i)
		}
		if d.PeriodsPerWeek < 1 {
			return nil, entity.NewError(entity.CodeData,
				"demand %d (%s/%s) has periods_per_week %d",
				i, d.ClassID, d.SubjectID, d.PeriodsPerWeek)
		}
		for k := 0; k < d.PeriodsPerWeek; k++ {
			n++
			out = append(out, entity.Session{
				ID:          fmt.Sprintf("S%d", n),
				ClassID:     d.ClassID,
				SubjectID:   d.SubjectID,
				TeacherID:   d.TeacherID,
				FixedRoomID: d.FixedRoomID,
			})
		}
	}
	return out, nil
}
