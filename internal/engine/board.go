package engine

// Board is the mutable occupancy state over a compiled model: the
// incremental mirror of everything Verify checks. The portfolio
// workers build on it greedily; the backtracking engine additionally
// relies on Place and Unplace being exact inverses so a failed branch
// reverts completely.
type Board struct {
	m *Model

	teacherBusy [][]bool // [teacher][slot]
	classBusy   [][]bool // [class][slot]
	roomBusy    [][]bool // [room][slot], specialized rooms only

	weekLoad []int   // per teacher
	dayLoad  [][]int // [teacher][day index]
	dayIdx   map[int]int

	optStarts  []int // per slot, starts by sub-section classes
	mainStarts []int // per slot, starts by blocked main-class sessions

	// Assigned maps session index to its current candidate;
	// Slot == -1 means unassigned.
	Assigned []Candidate
	// Placed is the number of sessions currently assigned.
	Placed int

	hardAdj [][]int
	softAdj [][]int
}

func NewBoard(m *Model) *Board {
	b := &Board{
		m:      m,
		dayIdx: make(map[int]int),
	}
	for i, d := range m.Grid.Days() {
		b.dayIdx[d] = i
	}
	b.teacherBusy = make([][]bool, len(m.Teachers))
	b.dayLoad = make([][]int, len(m.Teachers))
	for i := range b.teacherBusy {
		b.teacherBusy[i] = make([]bool, m.Grid.Len())
		b.dayLoad[i] = make([]int, len(m.Grid.Days()))
	}
	b.classBusy = make([][]bool, len(m.Classes))
	for i := range b.classBusy {
		b.classBusy[i] = make([]bool, m.Grid.Len())
	}
	b.roomBusy = make([][]bool, len(m.Rooms))
	for i := range b.roomBusy {
		b.roomBusy[i] = make([]bool, m.Grid.Len())
	}
	b.weekLoad = make([]int, len(m.Teachers))
	b.optStarts = make([]int, m.Grid.Len())
	b.mainStarts = make([]int, m.Grid.Len())
	b.Assigned = make([]Candidate, len(m.Sessions))

	b.hardAdj = make([][]int, len(m.Sessions))
	b.softAdj = make([][]int, len(m.Sessions))
	for _, pair := range m.HardPairs {
		b.hardAdj[pair[0]] = append(b.hardAdj[pair[0]], pair[1])
		b.hardAdj[pair[1]] = append(b.hardAdj[pair[1]], pair[0])
	}
	for _, pair := range m.SoftPairs {
		b.softAdj[pair[0]] = append(b.softAdj[pair[0]], pair[1])
		b.softAdj[pair[1]] = append(b.softAdj[pair[1]], pair[0])
	}
	b.Reset()
	return b
}

func (b *Board) Reset() {
	for i := range b.teacherBusy {
		clearBools(b.teacherBusy[i])
		clearInts(b.dayLoad[i])
	}
	for i := range b.classBusy {
		clearBools(b.classBusy[i])
	}
	for i := range b.roomBusy {
		clearBools(b.roomBusy[i])
	}
	clearInts(b.weekLoad)
	clearInts(b.optStarts)
	clearInts(b.mainStarts)
	for i := range b.Assigned {
		b.Assigned[i] = Candidate{Slot: -1, Room: -1}
	}
	b.Placed = 0
}

// Fits reports whether the candidate is consistent with everything
// placed so far.
func (b *Board) Fits(s int, c Candidate) bool {
	m := b.m
	ti := m.TeacherOf[s]
	ci := m.ClassOf[s]
	day := m.Grid.At(c.Slot).Day
	di := b.dayIdx[day]

	for _, w := range m.Window(s, c.Slot) {
		if b.teacherBusy[ti][w] || b.classBusy[ci][w] {
			return false
		}
		if m.RoomConflict[c.Room] && b.roomBusy[c.Room][w] {
			return false
		}
	}
	if b.weekLoad[ti]+m.Duration[s] > m.Teachers[ti].MaxLoadWeek {
		return false
	}
	if b.dayLoad[ti][di]+m.Duration[s] > m.Teachers[ti].MaxLoadDay {
		return false
	}
	for _, o := range b.hardAdj[s] {
		if b.Assigned[o].Slot >= 0 && m.Grid.At(b.Assigned[o].Slot).Day == day {
			return false
		}
	}
	if m.OptionalClassSession[s] && b.mainStarts[c.Slot] > 0 {
		return false
	}
	if m.MainBlocked[s] && b.optStarts[c.Slot] > 0 {
		return false
	}
	return true
}

// Delta is the objective change of committing the candidate given the
// current partial assignment.
func (b *Board) Delta(s int, c Candidate) int {
	m := b.m
	ti := m.TeacherOf[s]
	d := 0
	if m.Preferred[ti][c.Slot] {
		d += m.Seniority[ti] * m.Weights.Preference
	}
	if m.OptionalSubject[s] {
		for _, w := range m.Window(s, c.Slot) {
			if m.LateSlot[w] {
				d -= m.Weights.LateOptional
				break
			}
		}
	}
	day := m.Grid.At(c.Slot).Day
	for _, o := range b.softAdj[s] {
		if b.Assigned[o].Slot >= 0 && m.Grid.At(b.Assigned[o].Slot).Day == day {
			d -= m.Weights.SameDay
		}
	}
	return d
}

func (b *Board) Place(s int, c Candidate) {
	m := b.m
	ti := m.TeacherOf[s]
	ci := m.ClassOf[s]
	di := b.dayIdx[m.Grid.At(c.Slot).Day]

	for _, w := range m.Window(s, c.Slot) {
		b.teacherBusy[ti][w] = true
		b.classBusy[ci][w] = true
		if m.RoomConflict[c.Room] {
			b.roomBusy[c.Room][w] = true
		}
	}
	b.weekLoad[ti] += m.Duration[s]
	b.dayLoad[ti][di] += m.Duration[s]
	if m.OptionalClassSession[s] {
		b.optStarts[c.Slot]++
	}
	if m.MainBlocked[s] {
		b.mainStarts[c.Slot]++
	}
	b.Assigned[s] = c
	b.Placed++
}

// Unplace reverts Place for a session. Callers pass the same candidate
// they placed.
func (b *Board) Unplace(s int, c Candidate) {
	m := b.m
	ti := m.TeacherOf[s]
	ci := m.ClassOf[s]
	di := b.dayIdx[m.Grid.At(c.Slot).Day]

	for _, w := range m.Window(s, c.Slot) {
		b.teacherBusy[ti][w] = false
		b.classBusy[ci][w] = false
		if m.RoomConflict[c.Room] {
			b.roomBusy[c.Room][w] = false
		}
	}
	b.weekLoad[ti] -= m.Duration[s]
	b.dayLoad[ti][di] -= m.Duration[s]
	if m.OptionalClassSession[s] {
		b.optStarts[c.Slot]--
	}
	if m.MainBlocked[s] {
		b.mainStarts[c.Slot]--
	}
	b.Assigned[s] = Candidate{Slot: -1, Room: -1}
	b.Placed--
}

func clearBools(v []bool) {
	for i := range v {
		v[i] = false
	}
}

func clearInts(v []int) {
	for i := range v {
		v[i] = 0
	}
}
