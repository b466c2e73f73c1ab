package engine

import "github.com/uni-scheduler/timetable/internal/entity"

// Grid is the weekly timetable grid with dense slot indexes. Slots are
// sorted by (day, period) once at construction and every other table
// in the model is keyed by position in that order.
type Grid struct {
	Slots []entity.Timeslot
	pos   map[entity.Timeslot]int
	days  []int
}

func NewGrid(slots []entity.Timeslot) *Grid {
	sorted := make([]entity.Timeslot, len(slots))
	copy(sorted, slots)
	entity.SortSlots(sorted)

	g := &Grid{pos: make(map[entity.Timeslot]int, len(sorted))}
	seenDay := make(map[int]bool)
	for _, t := range sorted {
		if _, dup := g.pos[t]; dup {
			continue
		}
		g.pos[t] = len(g.Slots)
		g.Slots = append(g.Slots, t)
		if !seenDay[t.Day] {
			seenDay[t.Day] = true
			g.days = append(g.days, t.Day)
		}
	}
	return g
}

func (g *Grid) Len() int { return len(g.Slots) }

// Pos returns the dense index of a slot, or -1 when the grid has no
// such cell.
func (g *Grid) Pos(t entity.Timeslot) int {
	if i, ok := g.pos[t]; ok {
		return i
	}
	return -1
}

func (g *Grid) At(i int) entity.Timeslot { return g.Slots[i] }

// Days lists the distinct day numbers in ascending order.
func (g *Grid) Days() []int { return g.days }

// Window expands a start slot into the dense indexes of all slots a
// session of the given duration occupies. It returns nil when the
// window would leave the day or cross a hole in the grid.
func (g *Grid) Window(start entity.Timeslot, duration int) []int {
	out := make([]int, 0, duration)
	for k := 0; k < duration; k++ {
		i := g.Pos(entity.Timeslot{Day: start.Day, Period: start.Period + k})
		if i < 0 {
			return nil
		}
		out = append(out, i)
	}
	return out
}
