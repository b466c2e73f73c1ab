package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-scheduler/timetable/internal/entity"
)

func grid(days, periods int) []entity.Timeslot {
	var out []entity.Timeslot
	for d := 1; d <= days; d++ {
		for p := 1; p <= periods; p++ {
			out = append(out, entity.Timeslot{Day: d, Period: p})
		}
	}
	return out
}

func baseInput() *entity.Input {
	return &entity.Input{
		Teachers: []entity.Teacher{
			{ID: "T1", Seniority: 5, MaxLoadDay: 6, MaxLoadWeek: 20},
		},
		Rooms: []entity.Room{
			{ID: "R1", Name: "East Wing", Capacity: 30, Kind: entity.RoomGeneral},
			{ID: "LAB1", Name: "Lab", Capacity: 20, Kind: entity.RoomSpecialized},
		},
		Classes: []entity.Class{{ID: "10A", Size: 25}},
		Subjects: []entity.Subject{
			{ID: "MATH", Duration: 1},
			{ID: "CHEM", Duration: 2, RequiredKind: entity.RoomSpecialized, ViableRoomIDs: []string{"LAB1"}},
		},
		Demands: []entity.CurriculumDemand{
			{ClassID: "10A", SubjectID: "MATH", TeacherID: "T1", PeriodsPerWeek: 1},
		},
		Slots: grid(5, 9),
	}
}

func sessionsOf(in *entity.Input) []entity.Session {
	var out []entity.Session
	n := 0
	for _, d := range in.Demands {
		for k := 0; k < d.PeriodsPerWeek; k++ {
			n++
			out = append(out, entity.Session{
				ID: fmt.Sprintf("S%d", n), ClassID: d.ClassID,
				SubjectID: d.SubjectID, TeacherID: d.TeacherID, FixedRoomID: d.FixedRoomID,
			})
		}
	}
	return out
}

func homes() map[string]string { return map[string]string{"10A": "R1"} }

func TestBuildAppliesSlotRules(t *testing.T) {
	in := baseInput()
	m := Build(in, sessionsOf(in), homes(), DefaultRules(), DefaultWeights())
	require.Len(t, m.Domains, 1)

	for _, c := range m.Domains[0] {
		slot := m.Grid.At(c.Slot)
		assert.NotEqual(t, 6, slot.Period, "blackout period leaked into domain")
		assert.NotContains(t, []int{7, 8, 9}, slot.Period, "theory session in forbidden late periods")
		assert.Equal(t, "R1", m.Rooms[c.Room].ID, "non-lab session must use the home room")
	}
	// 5 days x periods {1,2,3,4,5}, one room each.
	assert.Len(t, m.Domains[0], 25)
}

func TestBuildLabStartsAndDuration(t *testing.T) {
	in := baseInput()
	in.Classes[0].Size = 18
	in.Demands = []entity.CurriculumDemand{
		{ClassID: "10A", SubjectID: "CHEM", TeacherID: "T1", PeriodsPerWeek: 1},
	}
	m := Build(in, sessionsOf(in), homes(), DefaultRules(), DefaultWeights())
	require.Len(t, m.Domains, 1)
	require.NotEmpty(t, m.Domains[0])

	for _, c := range m.Domains[0] {
		slot := m.Grid.At(c.Slot)
		assert.Contains(t, []int{1, 4, 7}, slot.Period, "lab must start on a block boundary")
		assert.Equal(t, "LAB1", m.Rooms[c.Room].ID)
	}
	// Starts {1,4,7} all leave room for the second period.
	assert.Len(t, m.Domains[0], 15)
}

func TestBuildLabCapacityFilter(t *testing.T) {
	in := baseInput()
	in.Classes[0].Size = 25 // lab holds 20
	in.Demands = []entity.CurriculumDemand{
		{ClassID: "10A", SubjectID: "CHEM", TeacherID: "T1", PeriodsPerWeek: 1},
	}
	m := Build(in, sessionsOf(in), homes(), DefaultRules(), DefaultWeights())
	assert.Empty(t, m.Domains[0], "undersized lab must leave the domain empty")
	assert.ErrorIs(t, m.Precheck(), entity.ErrInfeasible)
}

func TestBuildUnavailabilityBlocksStart(t *testing.T) {
	in := baseInput()
	in.Unavailability = []entity.TeacherSlot{
		{TeacherID: "T1", Slot: entity.Timeslot{Day: 1, Period: 1}},
	}
	m := Build(in, sessionsOf(in), homes(), DefaultRules(), DefaultWeights())
	for _, c := range m.Domains[0] {
		assert.NotEqual(t, entity.Timeslot{Day: 1, Period: 1}, m.Grid.At(c.Slot))
	}
}

func TestBuildNoDayBoundarySpan(t *testing.T) {
	in := baseInput()
	in.Slots = grid(2, 4) // no lab-start rule interplay, periods 1..4
	in.Subjects = []entity.Subject{{ID: "DBL", Duration: 2}}
	in.Demands = []entity.CurriculumDemand{
		{ClassID: "10A", SubjectID: "DBL", TeacherID: "T1", PeriodsPerWeek: 1},
	}
	m := Build(in, sessionsOf(in), homes(), Rules{}, DefaultWeights())
	for _, c := range m.Domains[0] {
		slot := m.Grid.At(c.Slot)
		assert.LessOrEqual(t, slot.Period, 3, "start must leave the window inside the day")
	}
	assert.Len(t, m.Domains[0], 6)
}

func TestBuildPairs(t *testing.T) {
	in := baseInput()
	in.Teachers = append(in.Teachers, entity.Teacher{ID: "T2", Seniority: 1, MaxLoadDay: 6, MaxLoadWeek: 20})
	in.Demands = []entity.CurriculumDemand{
		{ClassID: "10A", SubjectID: "MATH", TeacherID: "T1", PeriodsPerWeek: 2},
		{ClassID: "10A", SubjectID: "MATH", TeacherID: "T2", PeriodsPerWeek: 1},
	}
	m := Build(in, sessionsOf(in), homes(), DefaultRules(), DefaultWeights())
	assert.Len(t, m.HardPairs, 1, "same teacher repetitions form a hard pair")
	assert.Len(t, m.SoftPairs, 2, "cross-teacher repetitions form soft pairs")
}

func TestPrecheckWeeklyOverload(t *testing.T) {
	in := baseInput()
	in.Teachers[0].MaxLoadWeek = 2
	in.Demands = []entity.CurriculumDemand{
		{ClassID: "10A", SubjectID: "MATH", TeacherID: "T1", PeriodsPerWeek: 3},
	}
	m := Build(in, sessionsOf(in), homes(), DefaultRules(), DefaultWeights())
	err := m.Precheck()
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrInfeasible)
}

func TestPrecheckDurationOverDailyCap(t *testing.T) {
	in := baseInput()
	in.Teachers[0].MaxLoadDay = 1
	in.Demands = []entity.CurriculumDemand{
		{ClassID: "10A", SubjectID: "CHEM", TeacherID: "T1", PeriodsPerWeek: 1},
	}
	in.Classes[0].Size = 18
	m := Build(in, sessionsOf(in), homes(), DefaultRules(), DefaultWeights())
	assert.ErrorIs(t, m.Precheck(), entity.ErrInfeasible)
}

func TestUpperBound(t *testing.T) {
	in := baseInput()
	in.Preferences = []entity.TeacherSlot{
		{TeacherID: "T1", Slot: entity.Timeslot{Day: 1, Period: 2}},
	}
	m := Build(in, sessionsOf(in), homes(), DefaultRules(), DefaultWeights())
	assert.Equal(t, 5, m.UpperBound(), "one preferred start at seniority 5")
}

func TestUnknownForeignKeysYieldEmptyDomain(t *testing.T) {
	in := baseInput()
	in.Demands = []entity.CurriculumDemand{
		{ClassID: "10A", SubjectID: "NOPE", TeacherID: "T1", PeriodsPerWeek: 1},
	}
	m := Build(in, sessionsOf(in), homes(), DefaultRules(), DefaultWeights())
	assert.Empty(t, m.Domains[0])
	assert.ErrorIs(t, m.Precheck(), entity.ErrInfeasible)
}

func TestBuildFixedRoomCapacityFilter(t *testing.T) {
	in := baseInput()
	in.Rooms = append(in.Rooms, entity.Room{ID: "R9", Name: "Annex", Capacity: 10, Kind: entity.RoomGeneral})
	in.Demands = []entity.CurriculumDemand{
		{ClassID: "10A", SubjectID: "MATH", TeacherID: "T1", PeriodsPerWeek: 1, FixedRoomID: "R9"},
	}
	m := Build(in, sessionsOf(in), homes(), DefaultRules(), DefaultWeights())
	assert.Empty(t, m.Domains[0], "pinned room smaller than the class must leave the domain empty")
	assert.ErrorIs(t, m.Precheck(), entity.ErrInfeasible)
}
