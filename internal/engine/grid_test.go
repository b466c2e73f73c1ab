package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-scheduler/timetable/internal/entity"
)

func TestNewGridSortsAndDedupes(t *testing.T) {
	g := NewGrid([]entity.Timeslot{
		{Day: 2, Period: 1}, {Day: 1, Period: 2}, {Day: 1, Period: 1}, {Day: 1, Period: 2},
	})
	require.Equal(t, 3, g.Len())
	assert.Equal(t, entity.Timeslot{Day: 1, Period: 1}, g.At(0))
	assert.Equal(t, entity.Timeslot{Day: 1, Period: 2}, g.At(1))
	assert.Equal(t, entity.Timeslot{Day: 2, Period: 1}, g.At(2))
	assert.Equal(t, []int{1, 2}, g.Days())
	assert.Equal(t, 1, g.Pos(entity.Timeslot{Day: 1, Period: 2}))
	assert.Equal(t, -1, g.Pos(entity.Timeslot{Day: 3, Period: 1}))
}

func TestGridWindow(t *testing.T) {
	g := NewGrid(grid(2, 3))

	w := g.Window(entity.Timeslot{Day: 1, Period: 2}, 2)
	require.Len(t, w, 2)
	assert.Equal(t, entity.Timeslot{Day: 1, Period: 2}, g.At(w[0]))
	assert.Equal(t, entity.Timeslot{Day: 1, Period: 3}, g.At(w[1]))

	assert.Nil(t, g.Window(entity.Timeslot{Day: 1, Period: 3}, 2),
		"window must not cross the day boundary")
}

func TestGridWindowRespectsHoles(t *testing.T) {
	g := NewGrid([]entity.Timeslot{
		{Day: 1, Period: 1}, {Day: 1, Period: 3},
	})
	assert.Nil(t, g.Window(entity.Timeslot{Day: 1, Period: 1}, 2),
		"a missing middle period breaks the window")
}
