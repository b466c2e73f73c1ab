package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// WriteSampleData writes a small solvable dataset under dir: two grade
// cohorts in two room blocks, one shared lab, a five-day nine-period
// grid.
func WriteSampleData(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tables := map[string][][]string{
		FileTeachers: {
			{"id", "name", "seniority", "max_load_day", "max_load_week"},
			{"T1", "Adams", "5", "6", "20"},
			{"T2", "Baker", "3", "6", "20"},
			{"T3", "Clark", "8", "6", "20"},
			{"T4", "Diaz", "2", "6", "20"},
		},
		FileRooms: {
			{"id", "name", "capacity", "kind"},
			{"R101", "East Wing", "32", "general"},
			{"R102", "East Wing", "32", "general"},
			{"R201", "West Wing", "32", "general"},
			{"R202", "West Wing", "32", "general"},
			{"LAB1", "Science Lab", "32", "specialized"},
		},
		FileClasses: {
			{"id", "name", "size"},
			{"10A", "Grade 10 A", "28"},
			{"10B", "Grade 10 B", "27"},
			{"11A", "Grade 11 A", "26"},
			{"11B", "Grade 11 B", "29"},
		},
		FileSubjects: {
			{"id", "name", "duration", "required_kind", "viable_room_ids", "is_optional"},
			{"MATH", "Mathematics", "1", "", "", "false"},
			{"ENG", "English", "1", "", "", "false"},
			{"CHEM", "Chemistry", "2", "specialized", "LAB1", "false"},
			{"ART", "Art", "1", "", "", "true"},
		},
		FileCurriculum: {
			{"class_id", "subject_id", "teacher_id", "periods_per_week", "fixed_room_id"},
			{"10A", "MATH", "T1", "3", ""},
			{"10B", "MATH", "T1", "3", ""},
			{"11A", "MATH", "T2", "3", ""},
			{"11B", "MATH", "T2", "3", ""},
			{"10A", "ENG", "T3", "2", ""},
			{"10B", "ENG", "T3", "2", ""},
			{"11A", "ENG", "T3", "2", ""},
			{"11B", "ENG", "T3", "2", ""},
			{"10A", "CHEM", "T4", "1", ""},
			{"10B", "CHEM", "T4", "1", ""},
			{"11A", "CHEM", "T4", "1", ""},
			{"11B", "CHEM", "T4", "1", ""},
			{"10A", "ART", "T4", "1", ""},
			{"10B", "ART", "T4", "1", ""},
		},
		FileUnavailability: {
			{"teacher_id", "day", "period"},
			{"T3", "5", "1"},
			{"T3", "5", "2"},
			{"T3", "5", "3"},
		},
		FilePreferences: {
			{"teacher_id", "day", "period"},
			{"T1", "1", "1"},
			{"T1", "2", "1"},
			{"T3", "1", "2"},
		},
	}

	slots := [][]string{{"day", "period"}}
	for day := 1; day <= 5; day++ {
		for period := 1; period <= 9; period++ {
			slots = append(slots, []string{fmt.Sprint(day), fmt.Sprint(period)})
		}
	}
	tables[FileTimeslots] = slots

	for name, rows := range tables {
		if err := writeCSV(filepath.Join(dir, name), rows); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
