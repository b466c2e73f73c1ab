// Package render writes human-readable views of a solved timetable:
// a combined assignment CSV, per-class and per-teacher weekly grids as
// HTML, and the raw result as JSON. All writes go through a temp file
// and rename so readers never see a half-written view.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/uni-scheduler/timetable/internal/entity"
	"github.com/uni-scheduler/timetable/internal/scheduler"
)

const (
	FileAssignments = "assignments.csv"
	FileClasses     = "classes.html"
	FileTeachers    = "teachers.html"
	FileResult      = "result.json"
)

// WriteAll renders every view under dir.
func WriteAll(dir string, in *entity.Input, res *scheduler.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeAssignments(filepath.Join(dir, FileAssignments), res); err != nil {
		return err
	}
	if err := writeGrids(filepath.Join(dir, FileClasses), in, res, byClass); err != nil {
		return err
	}
	if err := writeGrids(filepath.Join(dir, FileTeachers), in, res, byTeacher); err != nil {
		return err
	}
	return writeResultJSON(filepath.Join(dir, FileResult), res)
}

func writeAssignments(path string, res *scheduler.Result) error {
	rows := [][]string{{"session_id", "class_id", "subject_id", "teacher_id", "day", "period", "room_id"}}
	for _, sess := range res.Sessions {
		p, ok := res.Assignment[sess.ID]
		if !ok {
			continue
		}
		rows = append(rows, []string{
			sess.ID, sess.ClassID, sess.SubjectID, sess.TeacherID,
			fmt.Sprint(p.Day), fmt.Sprint(p.Period), p.RoomID,
		})
	}
	return atomicWrite(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.WriteAll(rows); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	})
}

// grouping selects the grid owner and cell text for one session.
type grouping func(sess entity.Session, p scheduler.Placed) (owner, cell string)

func byClass(sess entity.Session, p scheduler.Placed) (string, string) {
	return sess.ClassID, sess.SubjectID + " @ " + p.RoomID
}

func byTeacher(sess entity.Session, p scheduler.Placed) (string, string) {
	return sess.TeacherID, sess.SubjectID + " / " + sess.ClassID
}

func writeGrids(path string, in *entity.Input, res *scheduler.Result, group grouping) error {
	days, periods := gridShape(in.Slots)
	subjects := in.SubjectByID()

	type cellKey struct {
		owner  string
		day    int
		period int
	}
	cells := make(map[cellKey]string)
	owners := make(map[string]bool)

	for _, sess := range res.Sessions {
		p, ok := res.Assignment[sess.ID]
		if !ok {
			continue
		}
		owner, text := group(sess, p)
		owners[owner] = true
		duration := 1
		if sub, ok := subjects[sess.SubjectID]; ok {
			duration = sub.Duration
		}
		for k := 0; k < duration; k++ {
			cells[cellKey{owner, p.Day, p.Period + k}] = text
		}
	}

	names := make([]string, 0, len(owners))
	for o := range owners {
		names = append(names, o)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">\n")
	b.WriteString("<style>table{border-collapse:collapse;margin-bottom:2em}td,th{border:1px solid #999;padding:4px 8px}</style>\n")
	b.WriteString("</head><body>\n")
	for _, owner := range names {
		fmt.Fprintf(&b, "<h2>%s</h2>\n<table>\n<tr><th></th>", html.EscapeString(owner))
		for _, d := range days {
			fmt.Fprintf(&b, "<th>Day %d</th>", d)
		}
		b.WriteString("</tr>\n")
		for _, p := range periods {
			fmt.Fprintf(&b, "<tr><th>P%d</th>", p)
			for _, d := range days {
				fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(cells[cellKey{owner, d, p}]))
			}
			b.WriteString("</tr>\n")
		}
		b.WriteString("</table>\n")
	}
	b.WriteString("</body></html>\n")

	return atomicWrite(path, func(f *os.File) error {
		_, err := f.WriteString(b.String())
		return err
	})
}

func writeResultJSON(path string, res *scheduler.Result) error {
	raw, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(path, func(f *os.File) error {
		_, err := f.Write(append(raw, '\n'))
		return err
	})
}

func gridShape(slots []entity.Timeslot) (days, periods []int) {
	daySet := map[int]bool{}
	periodSet := map[int]bool{}
	for _, t := range slots {
		daySet[t.Day] = true
		periodSet[t.Period] = true
	}
	for d := range daySet {
		days = append(days, d)
	}
	for p := range periodSet {
		periods = append(periods, p)
	}
	sort.Ints(days)
	sort.Ints(periods)
	return days, periods
}

func atomicWrite(path string, fill func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if err := fill(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
