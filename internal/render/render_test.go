package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-scheduler/timetable/internal/entity"
	"github.com/uni-scheduler/timetable/internal/scheduler"
)

func fixture() (*entity.Input, *scheduler.Result) {
	in := &entity.Input{
		Teachers: []entity.Teacher{{ID: "T1", Name: "Adams", Seniority: 5, MaxLoadDay: 6, MaxLoadWeek: 20}},
		Rooms:    []entity.Room{{ID: "R1", Name: "East Wing", Capacity: 30, Kind: entity.RoomGeneral}},
		Classes:  []entity.Class{{ID: "10A", Name: "Grade 10 A", Size: 25}},
		Subjects: []entity.Subject{{ID: "CHEM", Name: "Chemistry", Duration: 2}},
		Slots: []entity.Timeslot{
			{Day: 1, Period: 1}, {Day: 1, Period: 2}, {Day: 2, Period: 1}, {Day: 2, Period: 2},
		},
	}
	res := &scheduler.Result{
		RunID:             "run-1",
		Status:            scheduler.StatusSuccess,
		SessionsTotal:     2,
		SessionsScheduled: 1,
		Assignment: map[string]scheduler.Placed{
			"S1": {Day: 1, Period: 1, RoomID: "R1"},
		},
		Sessions: []entity.Session{
			{ID: "S1", ClassID: "10A", SubjectID: "CHEM", TeacherID: "T1"},
			{ID: "S2", ClassID: "10A", SubjectID: "CHEM", TeacherID: "T1"},
		},
	}
	return in, res
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	in, res := fixture()
	require.NoError(t, WriteAll(dir, in, res))

	raw, err := os.ReadFile(filepath.Join(dir, FileAssignments))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2, "header plus the one scheduled session")
	assert.Equal(t, "S1,10A,CHEM,T1,1,1,R1", lines[1])

	classes, err := os.ReadFile(filepath.Join(dir, FileClasses))
	require.NoError(t, err)
	html := string(classes)
	assert.Contains(t, html, "<h2>10A</h2>")
	assert.Equal(t, 2, strings.Count(html, "CHEM @ R1"),
		"a two-period session fills both grid cells")

	teachers, err := os.ReadFile(filepath.Join(dir, FileTeachers))
	require.NoError(t, err)
	assert.Contains(t, string(teachers), "<h2>T1</h2>")
	assert.Contains(t, string(teachers), "CHEM / 10A")

	result, err := os.ReadFile(filepath.Join(dir, FileResult))
	require.NoError(t, err)
	assert.Contains(t, string(result), `"status": "SUCCESS"`)
	assert.Contains(t, string(result), `"run_id": "run-1"`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4, "no temp files left behind")
}
