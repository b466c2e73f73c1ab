package engine

import (
	"sort"

	"github.com/uni-scheduler/timetable/internal/entity"
)

// Candidate is one legal (timeslot, room) start for a session, both
// sides as dense indexes into the model's Grid and Rooms tables.
type Candidate struct {
	Slot int
	Room int
}

// Model is the compiled constraint model: per-session start domains
// with every declarative rule already applied, the pair constraints,
// and the objective tables. It is immutable after Build and shared
// read-only between search workers.
type Model struct {
	Grid     *Grid
	Sessions []entity.Session
	Rooms    []entity.Room
	Teachers []entity.Teacher
	Classes  []entity.Class

	Duration  []int // per session
	TeacherOf []int // per session, -1 if unresolved
	ClassOf   []int // per session, -1 if unresolved

	// Domains holds each session's legal start candidates in
	// (day, period, room id) order. An unresolvable session keeps an
	// empty domain so infeasibility surfaces instead of a silent drop.
	Domains [][]Candidate

	// HardPairs are same (class, subject, teacher) session pairs that
	// must land on different days. SoftPairs share class and subject
	// across different teachers; same-day co-occurrence costs
	// Weights.SameDay.
	HardPairs [][2]int
	SoftPairs [][2]int

	Preferred [][]bool // [teacher][slot]
	Seniority []int    // per teacher

	LateSlot        []bool // per slot
	OptionalSubject []bool // per session

	// RoomConflict marks rooms whose physical occupancy is conflict
	// checked: every specialized room plus any room pinned by a
	// fixed-room demand. Plain home rooms are covered by the class
	// conflict, since the home-room map is a bijection.
	RoomConflict []bool

	// Mutual exclusion between sub-section and main classes: an
	// OptionalClassSession start blocks any MainBlocked start in the
	// same slot, and vice versa.
	OptionalClassSession []bool
	MainBlocked          []bool

	Weights Weights
}

// Build compiles the input entities plus the expanded session list
// into a Model. Unknown foreign keys never fail here; the affected
// session just ends up with an empty domain.
func Build(in *entity.Input, sessions []entity.Session, homes map[string]string, rules Rules, weights Weights) *Model {
	grid := NewGrid(in.Slots)

	m := &Model{
		Grid:     grid,
		Sessions: sessions,
		Rooms:    in.Rooms,
		Teachers: in.Teachers,
		Classes:  in.Classes,
		Weights:  weights,
	}

	roomIdx := make(map[string]int, len(in.Rooms))
	m.RoomConflict = make([]bool, len(in.Rooms))
	for i, r := range in.Rooms {
		roomIdx[r.ID] = i
		m.RoomConflict[i] = r.Kind == entity.RoomSpecialized
	}
	for _, sess := range sessions {
		if sess.FixedRoomID == "" {
			continue
		}
		if ri, ok := roomIdx[sess.FixedRoomID]; ok {
			m.RoomConflict[ri] = true
		}
	}
	teacherIdx := make(map[string]int, len(in.Teachers))
	for i, t := range in.Teachers {
		teacherIdx[t.ID] = i
	}
	classIdx := make(map[string]int, len(in.Classes))
	for i, c := range in.Classes {
		classIdx[c.ID] = i
	}
	subjects := in.SubjectByID()

	m.Seniority = make([]int, len(in.Teachers))
	for i, t := range in.Teachers {
		m.Seniority[i] = t.Seniority
	}

	m.Preferred = make([][]bool, len(in.Teachers))
	for i := range m.Preferred {
		m.Preferred[i] = make([]bool, grid.Len())
	}
	for _, p := range in.Preferences {
		ti, ok := teacherIdx[p.TeacherID]
		if !ok {
			continue
		}
		if pos := grid.Pos(p.Slot); pos >= 0 {
			m.Preferred[ti][pos] = true
		}
	}

	unavailable := make([][]bool, len(in.Teachers))
	for i := range unavailable {
		unavailable[i] = make([]bool, grid.Len())
	}
	for _, u := range in.Unavailability {
		ti, ok := teacherIdx[u.TeacherID]
		if !ok {
			continue
		}
		if pos := grid.Pos(u.Slot); pos >= 0 {
			unavailable[ti][pos] = true
		}
	}

	m.LateSlot = make([]bool, grid.Len())
	for i, t := range grid.Slots {
		m.LateSlot[i] = containsInt(rules.LatePeriods, t.Period)
	}

	optionalClass := make(map[string]bool, len(rules.OptionalClassIDs))
	for _, id := range rules.OptionalClassIDs {
		optionalClass[id] = true
	}
	mainClass := make(map[string]bool, len(rules.MainClassIDs))
	for _, id := range rules.MainClassIDs {
		mainClass[id] = true
	}
	exemptSubject := make(map[string]bool, len(rules.ExemptSubjectIDs))
	for _, id := range rules.ExemptSubjectIDs {
		exemptSubject[id] = true
	}

	n := len(sessions)
	m.Duration = make([]int, n)
	m.TeacherOf = make([]int, n)
	m.ClassOf = make([]int, n)
	m.Domains = make([][]Candidate, n)
	m.OptionalSubject = make([]bool, n)
	m.OptionalClassSession = make([]bool, n)
	m.MainBlocked = make([]bool, n)

	for s, sess := range sessions {
		sub, subOK := subjects[sess.SubjectID]
		m.Duration[s] = 1
		if subOK {
			m.Duration[s] = sub.Duration
			m.OptionalSubject[s] = sub.IsOptional
		}
		ti, tiOK := teacherIdx[sess.TeacherID]
		if !tiOK {
			ti = -1
		}
		m.TeacherOf[s] = ti
		ci, ciOK := classIdx[sess.ClassID]
		if !ciOK {
			ci = -1
		}
		m.ClassOf[s] = ci

		m.OptionalClassSession[s] = optionalClass[sess.ClassID]
		m.MainBlocked[s] = mainClass[sess.ClassID] && !exemptSubject[sess.SubjectID]

		if !subOK || !tiOK || !ciOK {
			continue
		}

		rooms := feasibleRooms(sess, sub, in.Classes[ci].Size, homes, roomIdx, in.Rooms)
		if len(rooms) == 0 {
			continue
		}

		var dom []Candidate
		for pos, slot := range grid.Slots {
			if grid.Window(slot, sub.Duration) == nil {
				continue
			}
			if unavailable[ti][pos] {
				continue
			}
			if containsInt(rules.BlackoutPeriods, slot.Period) {
				continue
			}
			if sub.RequiresSpecialized() {
				if len(rules.LabStartPeriods) > 0 && !containsInt(rules.LabStartPeriods, slot.Period) {
					continue
				}
			} else if containsInt(rules.TheoryForbiddenPeriods, slot.Period) {
				continue
			}
			for _, ri := range rooms {
				dom = append(dom, Candidate{Slot: pos, Room: ri})
			}
		}
		m.Domains[s] = dom
	}

	m.buildPairs()
	return m
}

// feasibleRooms resolves a session's room set as dense indexes sorted
// by room id. A fixed room overrides everything; specialized subjects
// take their viable rooms filtered by capacity; everything else gets
// the class home room.
func feasibleRooms(sess entity.Session, sub entity.Subject, classSize int, homes map[string]string, roomIdx map[string]int, rooms []entity.Room) []int {
	if sess.FixedRoomID != "" {
		ri, ok := roomIdx[sess.FixedRoomID]
		if !ok || rooms[ri].Capacity < classSize {
			return nil
		}
		return []int{ri}
	}
	if sub.RequiresSpecialized() {
		var out []int
		for _, id := range sub.ViableRoomIDs {
			ri, ok := roomIdx[id]
			if !ok {
				continue
			}
			if rooms[ri].Kind != entity.RoomSpecialized {
				continue
			}
			if rooms[ri].Capacity < classSize {
				continue
			}
			out = append(out, ri)
		}
		sort.Slice(out, func(a, b int) bool { return rooms[out[a]].ID < rooms[out[b]].ID })
		return out
	}
	home, ok := homes[sess.ClassID]
	if !ok {
		return nil
	}
	ri, ok := roomIdx[home]
	if !ok {
		return nil
	}
	return []int{ri}
}

// buildPairs groups sessions by (class, subject) and records the
// same-teacher pairs as hard different-day constraints and the
// cross-teacher pairs as soft penalty pairs.
func (m *Model) buildPairs() {
	type key struct{ class, subject string }
	groups := make(map[key][]int)
	for s, sess := range m.Sessions {
		k := key{sess.ClassID, sess.SubjectID}
		groups[k] = append(groups[k], s)
	}
	keys := make([]key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].class != keys[b].class {
			return keys[a].class < keys[b].class
		}
		return keys[a].subject < keys[b].subject
	})
	for _, k := range keys {
		g := groups[k]
		for i := 0; i < len(g); i++ {
			for j := i + 1; j < len(g); j++ {
				a, b := g[i], g[j]
				if m.Sessions[a].TeacherID == m.Sessions[b].TeacherID {
					m.HardPairs = append(m.HardPairs, [2]int{a, b})
				} else {
					m.SoftPairs = append(m.SoftPairs, [2]int{a, b})
				}
			}
		}
	}
}

// Window lists the dense slot indexes a session occupies when started
// at the given slot. Domain membership guarantees a full window.
func (m *Model) Window(session, slot int) []int {
	return m.Grid.Window(m.Grid.At(slot), m.Duration[session])
}

// Precheck detects provable infeasibility before any search: a session
// with an empty start domain, a teacher whose demanded periods exceed
// the weekly cap, or a single session longer than the daily cap.
func (m *Model) Precheck() error {
	for s, dom := range m.Domains {
		if len(dom) == 0 {
			return entity.NewError(entity.CodeInfeasible,
				"session %s (%s/%s) has no legal start",
				m.Sessions[s].ID, m.Sessions[s].ClassID, m.Sessions[s].SubjectID)
		}
	}
	weekly := make([]int, len(m.Teachers))
	for s := range m.Sessions {
		ti := m.TeacherOf[s]
		if ti < 0 {
			continue
		}
		if m.Duration[s] > m.Teachers[ti].MaxLoadDay {
			return entity.NewError(entity.CodeInfeasible,
				"session %s duration %d exceeds daily cap %d of teacher %s",
				m.Sessions[s].ID, m.Duration[s], m.Teachers[ti].MaxLoadDay, m.Teachers[ti].ID)
		}
		weekly[ti] += m.Duration[s]
	}
	for ti, demand := range weekly {
		if demand > m.Teachers[ti].MaxLoadWeek {
			return entity.NewError(entity.CodeInfeasible,
				"teacher %s needs %d periods against weekly cap %d",
				m.Teachers[ti].ID, demand, m.Teachers[ti].MaxLoadWeek)
		}
	}
	return nil
}

// UpperBound is the best objective any assignment can reach: every
// session at its best preference slot, zero penalties.
func (m *Model) UpperBound() int {
	bound := 0
	for s, dom := range m.Domains {
		ti := m.TeacherOf[s]
		if ti < 0 {
			continue
		}
		best := 0
		for _, c := range dom {
			if m.Preferred[ti][c.Slot] {
				gain := m.Seniority[ti] * m.Weights.Preference
				if gain > best {
					best = gain
				}
			}
		}
		bound += best
	}
	return bound
}

func containsInt(set []int, v int) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}
