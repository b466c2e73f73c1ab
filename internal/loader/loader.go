// Package loader reads the entity tables from CSV files into the
// typed input schema. One file per table, header row required.
// Unavailability and preference files are optional.
package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/uni-scheduler/timetable/internal/entity"
)

const (
	FileTeachers       = "teachers.csv"
	FileRooms          = "rooms.csv"
	FileClasses        = "classes.csv"
	FileSubjects       = "subjects.csv"
	FileCurriculum     = "curriculum.csv"
	FileTimeslots      = "timeslots.csv"
	FileUnavailability = "unavailability.csv"
	FilePreferences    = "preferences.csv"
)

// LoadInput reads every table under dir. The required tables must be
// present and well formed; missing optional tables load as empty sets.
func LoadInput(dir string) (*entity.Input, error) {
	in := &entity.Input{}

	err := eachRow(filepath.Join(dir, FileTeachers), 5, func(f []string) error {
		seniority, err := atoi(f[2], "seniority")
		if err != nil {
			return err
		}
		day, err := atoi(f[3], "max_load_day")
		if err != nil {
			return err
		}
		week, err := atoi(f[4], "max_load_week")
		if err != nil {
			return err
		}
		in.Teachers = append(in.Teachers, entity.Teacher{
			ID: f[0], Name: f[1], Seniority: seniority, MaxLoadDay: day, MaxLoadWeek: week,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachRow(filepath.Join(dir, FileRooms), 4, func(f []string) error {
		capacity, err := atoi(f[2], "capacity")
		if err != nil {
			return err
		}
		in.Rooms = append(in.Rooms, entity.Room{
			ID: f[0], Name: f[1], Capacity: capacity, Kind: entity.RoomKind(f[3]),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachRow(filepath.Join(dir, FileClasses), 3, func(f []string) error {
		size, err := atoi(f[2], "size")
		if err != nil {
			return err
		}
		in.Classes = append(in.Classes, entity.Class{ID: f[0], Name: f[1], Size: size})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachRow(filepath.Join(dir, FileSubjects), 6, func(f []string) error {
		duration, err := atoi(f[2], "duration")
		if err != nil {
			return err
		}
		sub := entity.Subject{
			ID: f[0], Name: f[1], Duration: duration,
			RequiredKind: entity.RoomKind(f[3]),
			IsOptional:   f[5] == "true" || f[5] == "1",
		}
		if f[4] != "" {
			sub.ViableRoomIDs = strings.Split(f[4], ";")
		}
		in.Subjects = append(in.Subjects, sub)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachRow(filepath.Join(dir, FileCurriculum), 5, func(f []string) error {
		ppw, err := atoi(f[3], "periods_per_week")
		if err != nil {
			return err
		}
		in.Demands = append(in.Demands, entity.CurriculumDemand{
			ClassID: f[0], SubjectID: f[1], TeacherID: f[2],
			PeriodsPerWeek: ppw, FixedRoomID: f[4],
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachRow(filepath.Join(dir, FileTimeslots), 2, func(f []string) error {
		day, err := atoi(f[0], "day")
		if err != nil {
			return err
		}
		period, err := atoi(f[1], "period")
		if err != nil {
			return err
		}
		in.Slots = append(in.Slots, entity.Timeslot{Day: day, Period: period})
		return nil
	})
	if err != nil {
		return nil, err
	}

	in.Unavailability, err = loadTeacherSlots(filepath.Join(dir, FileUnavailability))
	if err != nil {
		return nil, err
	}
	in.Preferences, err = loadTeacherSlots(filepath.Join(dir, FilePreferences))
	if err != nil {
		return nil, err
	}
	return in, nil
}

func loadTeacherSlots(path string) ([]entity.TeacherSlot, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	var out []entity.TeacherSlot
	err := eachRow(path, 3, func(f []string) error {
		day, err := atoi(f[1], "day")
		if err != nil {
			return err
		}
		period, err := atoi(f[2], "period")
		if err != nil {
			return err
		}
		out = append(out, entity.TeacherSlot{
			TeacherID: f[0],
			Slot:      entity.Timeslot{Day: day, Period: period},
		})
		return nil
	})
	return out, err
}

// eachRow streams a CSV file past its header, trimming fields and
// padding short rows so optional trailing columns may be omitted.
func eachRow(path string, fields int, fn func([]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return entity.WrapError(entity.CodeData, err, "open %s", filepath.Base(path))
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return entity.WrapError(entity.CodeData, err, "read %s", filepath.Base(path))
	}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		for len(row) < fields {
			row = append(row, "")
		}
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
		}
		if err := fn(row); err != nil {
			return entity.WrapError(entity.CodeData, err,
				"%s row %d", filepath.Base(path), i+1)
		}
	}
	return nil
}

func atoi(raw, field string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", field, raw)
	}
	return n, nil
}
