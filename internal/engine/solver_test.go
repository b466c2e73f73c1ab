package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-scheduler/timetable/internal/entity"
)

func quickConfig() Config {
	cfg := DefaultConfig()
	cfg.TimeLimit = 300 * time.Millisecond
	cfg.Workers = 2
	return cfg
}

func TestSolveSpreadsRepetitionsAcrossDays(t *testing.T) {
	in := baseInput()
	in.Classes = append(in.Classes, entity.Class{ID: "10B", Size: 25})
	in.Slots = grid(5, 6)
	in.Demands = []entity.CurriculumDemand{
		{ClassID: "10A", SubjectID: "MATH", TeacherID: "T1", PeriodsPerWeek: 2},
	}
	h := map[string]string{"10A": "R1", "10B": "R1"}
	m := Build(in, sessionsOf(in), h, DefaultRules(), DefaultWeights())

	out := NewSolver(m, quickConfig()).Solve(context.Background())
	require.Contains(t, []Status{Optimal, Feasible}, out.Status)
	require.Len(t, out.Assignment, 2)
	require.NoError(t, m.Verify(out.Assignment))
	assert.NotEqual(t,
		m.Grid.At(out.Assignment[0].Slot).Day,
		m.Grid.At(out.Assignment[1].Slot).Day,
		"same teacher repetitions must land on different days")
}

func TestSolveSharedLabSpreadsStarts(t *testing.T) {
	in := baseInput()
	in.Slots = grid(1, 9)
	in.Classes = []entity.Class{
		{ID: "10A", Size: 18}, {ID: "10B", Size: 18}, {ID: "10C", Size: 18},
	}
	in.Demands = []entity.CurriculumDemand{
		{ClassID: "10A", SubjectID: "CHEM", TeacherID: "T1", PeriodsPerWeek: 1},
		{ClassID: "10B", SubjectID: "CHEM", TeacherID: "T1", PeriodsPerWeek: 1},
		{ClassID: "10C", SubjectID: "CHEM", TeacherID: "T1", PeriodsPerWeek: 1},
	}
	h := map[string]string{"10A": "R1", "10B": "R1", "10C": "R1"}
	m := Build(in, sessionsOf(in), h, DefaultRules(), DefaultWeights())

	out := NewSolver(m, quickConfig()).Solve(context.Background())
	require.Contains(t, []Status{Optimal, Feasible}, out.Status,
		"three lab starts exist on the day, one per class")
	require.NoError(t, m.Verify(out.Assignment))

	starts := map[int]bool{}
	for _, c := range out.Assignment {
		starts[c.Slot] = true
	}
	assert.Len(t, starts, 3, "the single lab forces three distinct start periods")
}

func TestSolveSharedLabUnsatisfiable(t *testing.T) {
	in := baseInput()
	in.Slots = grid(1, 5) // only lab start periods 1 and 4 fit
	in.Classes = []entity.Class{
		{ID: "10A", Size: 18}, {ID: "10B", Size: 18}, {ID: "10C", Size: 18},
	}
	in.Demands = []entity.CurriculumDemand{
		{ClassID: "10A", SubjectID: "CHEM", TeacherID: "T1", PeriodsPerWeek: 1},
		{ClassID: "10B", SubjectID: "CHEM", TeacherID: "T1", PeriodsPerWeek: 1},
		{ClassID: "10C", SubjectID: "CHEM", TeacherID: "T1", PeriodsPerWeek: 1},
	}
	h := map[string]string{"10A": "R1", "10B": "R1", "10C": "R1"}
	m := Build(in, sessionsOf(in), h, DefaultRules(), DefaultWeights())

	cfg := quickConfig()
	cfg.TimeLimit = 150 * time.Millisecond
	out := NewSolver(m, cfg).Solve(context.Background())
	assert.Contains(t, []Status{Unknown, Infeasible}, out.Status)
	assert.Empty(t, out.Assignment)
}

func TestSolveWeeklyOverloadIsInfeasible(t *testing.T) {
	in := baseInput()
	in.Teachers[0].MaxLoadWeek = 2
	in.Demands = []entity.CurriculumDemand{
		{ClassID: "10A", SubjectID: "MATH", TeacherID: "T1", PeriodsPerWeek: 3},
	}
	m := Build(in, sessionsOf(in), homes(), DefaultRules(), DefaultWeights())

	out := NewSolver(m, quickConfig()).Solve(context.Background())
	assert.Equal(t, Infeasible, out.Status)
	assert.ErrorIs(t, out.Reason, entity.ErrInfeasible)
}

func TestSolveDeterministicWithOneWorker(t *testing.T) {
	in := baseInput()
	in.Demands = []entity.CurriculumDemand{
		{ClassID: "10A", SubjectID: "MATH", TeacherID: "T1", PeriodsPerWeek: 3},
	}
	m := Build(in, sessionsOf(in), homes(), DefaultRules(), DefaultWeights())

	cfg := quickConfig()
	cfg.Workers = 1
	cfg.Seed = 42

	// No preferences, so the bound is zero and the first feasible
	// construction is optimal; the solver stops there on both runs.
	a := NewSolver(m, cfg).Solve(context.Background())
	b := NewSolver(m, cfg).Solve(context.Background())
	require.Equal(t, Optimal, a.Status)
	require.Equal(t, Optimal, b.Status)
	assert.Equal(t, a.Assignment, b.Assignment)
}

func TestSolvePrefersPreferredSlots(t *testing.T) {
	in := baseInput()
	in.Preferences = []entity.TeacherSlot{
		{TeacherID: "T1", Slot: entity.Timeslot{Day: 3, Period: 2}},
	}
	m := Build(in, sessionsOf(in), homes(), DefaultRules(), DefaultWeights())

	out := NewSolver(m, quickConfig()).Solve(context.Background())
	require.Equal(t, Optimal, out.Status)
	assert.Equal(t, 5, out.Objective)
	assert.Equal(t, entity.Timeslot{Day: 3, Period: 2}, m.Grid.At(out.Assignment[0].Slot))
}

func TestSolveEmptyModel(t *testing.T) {
	in := baseInput()
	in.Demands = nil
	m := Build(in, nil, homes(), DefaultRules(), DefaultWeights())
	out := NewSolver(m, quickConfig()).Solve(context.Background())
	assert.Equal(t, Optimal, out.Status)
	assert.Empty(t, out.Assignment)
}

func TestSolveDailyCapSpillsAcrossDays(t *testing.T) {
	in := baseInput()
	in.Teachers[0].MaxLoadDay = 2
	in.Subjects = []entity.Subject{
		{ID: "M1", Duration: 1}, {ID: "M2", Duration: 1}, {ID: "M3", Duration: 1},
	}
	in.Demands = []entity.CurriculumDemand{
		{ClassID: "10A", SubjectID: "M1", TeacherID: "T1", PeriodsPerWeek: 1},
		{ClassID: "10A", SubjectID: "M2", TeacherID: "T1", PeriodsPerWeek: 1},
		{ClassID: "10A", SubjectID: "M3", TeacherID: "T1", PeriodsPerWeek: 1},
	}
	m := Build(in, sessionsOf(in), homes(), DefaultRules(), DefaultWeights())

	out := NewSolver(m, quickConfig()).Solve(context.Background())
	require.Contains(t, []Status{Optimal, Feasible}, out.Status)
	require.NoError(t, m.Verify(out.Assignment))

	perDay := map[int]int{}
	for _, c := range out.Assignment {
		perDay[m.Grid.At(c.Slot).Day]++
	}
	for day, n := range perDay {
		assert.LessOrEqual(t, n, 2, "day %d over the teacher's daily cap", day)
	}
	assert.GreaterOrEqual(t, len(perDay), 2, "three periods cannot fit a two-period day")
}
