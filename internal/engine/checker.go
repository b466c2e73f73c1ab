package engine

import "github.com/uni-scheduler/timetable/internal/entity"

// inDomain reports whether a candidate is one of the session's
// compiled legal starts.
func (m *Model) inDomain(session int, c Candidate) bool {
	for _, d := range m.Domains[session] {
		if d == c {
			return true
		}
	}
	return false
}

// Verify checks a complete assignment against every hard constraint
// family. Domain membership already covers availability, structural
// fit, and the declarative slot rules, so what remains is overlap,
// load, pair, and exclusion checking.
func (m *Model) Verify(a []Candidate) error {
	if len(a) != len(m.Sessions) {
		return entity.NewError(entity.CodeData,
			"assignment has %d entries for %d sessions", len(a), len(m.Sessions))
	}

	teacherBusy := make(map[[2]int]string)
	classBusy := make(map[[2]int]string)
	roomBusy := make(map[[2]int]string)

	weekLoad := make([]int, len(m.Teachers))
	dayLoad := make(map[[2]int]int)

	for s, c := range a {
		id := m.Sessions[s].ID
		if !m.inDomain(s, c) {
			return entity.NewError(entity.CodeData,
				"session %s assigned outside its domain", id)
		}
		ti := m.TeacherOf[s]
		ci := m.ClassOf[s]
		day := m.Grid.At(c.Slot).Day

		for _, w := range m.Window(s, c.Slot) {
			if prev, clash := teacherBusy[[2]int{ti, w}]; clash {
				return entity.NewError(entity.CodeData,
					"teacher %s double-booked between %s and %s",
					m.Teachers[ti].ID, prev, id)
			}
			teacherBusy[[2]int{ti, w}] = id
			if prev, clash := classBusy[[2]int{ci, w}]; clash {
				return entity.NewError(entity.CodeData,
					"class %s double-booked between %s and %s",
					m.Classes[ci].ID, prev, id)
			}
			classBusy[[2]int{ci, w}] = id
			if m.RoomConflict[c.Room] {
				if prev, clash := roomBusy[[2]int{c.Room, w}]; clash {
					return entity.NewError(entity.CodeData,
						"room %s double-booked between %s and %s",
						m.Rooms[c.Room].ID, prev, id)
				}
				roomBusy[[2]int{c.Room, w}] = id
			}
		}

		weekLoad[ti] += m.Duration[s]
		dayLoad[[2]int{ti, day}] += m.Duration[s]
		if weekLoad[ti] > m.Teachers[ti].MaxLoadWeek {
			return entity.NewError(entity.CodeData,
				"teacher %s over weekly cap %d", m.Teachers[ti].ID, m.Teachers[ti].MaxLoadWeek)
		}
		if dayLoad[[2]int{ti, day}] > m.Teachers[ti].MaxLoadDay {
			return entity.NewError(entity.CodeData,
				"teacher %s over daily cap %d on day %d",
				m.Teachers[ti].ID, m.Teachers[ti].MaxLoadDay, day)
		}
	}

	for _, p := range m.HardPairs {
		if m.Grid.At(a[p[0]].Slot).Day == m.Grid.At(a[p[1]].Slot).Day {
			return entity.NewError(entity.CodeData,
				"sessions %s and %s repeat on day %d with the same teacher",
				m.Sessions[p[0]].ID, m.Sessions[p[1]].ID, m.Grid.At(a[p[0]].Slot).Day)
		}
	}

	optionalStart := make(map[int]bool)
	for s, c := range a {
		if m.OptionalClassSession[s] {
			optionalStart[c.Slot] = true
		}
	}
	for s, c := range a {
		if m.MainBlocked[s] && optionalStart[c.Slot] {
			return entity.NewError(entity.CodeData,
				"main class session %s starts alongside a sub-section in slot %d",
				m.Sessions[s].ID, c.Slot)
		}
	}
	return nil
}

// Objective scores a complete assignment: seniority-weighted preferred
// starts, minus the optional-subject late penalty, minus the
// cross-teacher same-day penalty. Valid only for assignments that pass
// Verify.
func (m *Model) Objective(a []Candidate) int {
	score := 0
	for s, c := range a {
		ti := m.TeacherOf[s]
		if m.Preferred[ti][c.Slot] {
			score += m.Seniority[ti] * m.Weights.Preference
		}
		if m.OptionalSubject[s] {
			for _, w := range m.Window(s, c.Slot) {
				if m.LateSlot[w] {
					score -= m.Weights.LateOptional
					break
				}
			}
		}
	}
	for _, p := range m.SoftPairs {
		if m.Grid.At(a[p[0]].Slot).Day == m.Grid.At(a[p[1]].Slot).Day {
			score -= m.Weights.SameDay
		}
	}
	return score
}
