// Package entity defines the in-memory input schema consumed by the
// timetable engine. All records are immutable for the duration of one
// solve run; the loader (or any other caller) is responsible for
// producing them fully populated.
package entity

import "sort"

// RoomKind classifies a room as a general-purpose classroom or a
// specialized facility such as a laboratory.
type RoomKind string

const (
	RoomGeneral     RoomKind = "general"
	RoomSpecialized RoomKind = "specialized"
)

// Teacher caps and preferences feed the load constraints and the
// soft objective. Seniority weights preference satisfaction.
type Teacher struct {
	ID          string `validate:"required"`
	Name        string
	Seniority   int `validate:"min=0"`
	MaxLoadDay  int `validate:"min=1"`
	MaxLoadWeek int `validate:"min=1"`
}

type Room struct {
	ID       string `validate:"required"`
	Name     string
	Capacity int      `validate:"min=1"`
	Kind     RoomKind `validate:"oneof=general specialized"`
}

type Class struct {
	ID   string `validate:"required"`
	Name string
	Size int `validate:"min=1"`
}

// Subject describes one course. Duration is the number of consecutive
// periods a single occurrence occupies. A subject that requires a
// specialized room lists the rooms it can actually use.
type Subject struct {
	ID            string `validate:"required"`
	Name          string
	Duration      int      `validate:"min=1"`
	RequiredKind  RoomKind `validate:"omitempty,oneof=general specialized"`
	ViableRoomIDs []string
	IsOptional    bool
}

// RequiresSpecialized reports whether sessions of this subject must be
// placed in one of the viable specialized rooms.
func (s Subject) RequiresSpecialized() bool {
	return s.RequiredKind == RoomSpecialized
}

// Timeslot is one (day, period) cell of the weekly grid. Days and
// periods are 1-based and totally ordered.
type Timeslot struct {
	Day    int `validate:"min=1"`
	Period int `validate:"min=1"`
}

// Before orders timeslots by day, then period.
func (t Timeslot) Before(u Timeslot) bool {
	if t.Day != u.Day {
		return t.Day < u.Day
	}
	return t.Period < u.Period
}

// SortSlots orders a grid in place by (day, period).
func SortSlots(slots []Timeslot) {
	sort.Slice(slots, func(a, b int) bool { return slots[a].Before(slots[b]) })
}

// CurriculumDemand is one line of the curriculum table: a class needs
// the subject taught by the teacher for PeriodsPerWeek period-units.
// FixedRoomID optionally pins every resulting session to one room.
type CurriculumDemand struct {
	ClassID        string `validate:"required"`
	SubjectID      string `validate:"required"`
	TeacherID      string `validate:"required"`
	PeriodsPerWeek int    `validate:"min=1"`
	FixedRoomID    string
}

// TeacherSlot marks one (teacher, day, period) cell, used for both
// unavailability and preferences.
type TeacherSlot struct {
	TeacherID string `validate:"required"`
	Slot      Timeslot
}

// Session is a single required occurrence of (class, subject, teacher)
// needing exactly one (timeslot, room) assignment. Sessions are minted
// by the expander and live for one solve only.
type Session struct {
	ID          string
	ClassID     string
	SubjectID   string
	TeacherID   string
	FixedRoomID string
}

// Input is the complete entity set for one solve run.
type Input struct {
	Teachers       []Teacher          `validate:"required,min=1,dive"`
	Rooms          []Room             `validate:"required,min=1,dive"`
	Classes        []Class            `validate:"required,min=1,dive"`
	Subjects       []Subject          `validate:"required,min=1,dive"`
	Demands        []CurriculumDemand `validate:"required,min=1,dive"`
	Slots          []Timeslot         `validate:"required,min=1,dive"`
	Unavailability []TeacherSlot      `validate:"dive"`
	Preferences    []TeacherSlot      `validate:"dive"`
}

// SubjectByID builds a lookup table over the subject list.
func (in *Input) SubjectByID() map[string]Subject {
	m := make(map[string]Subject, len(in.Subjects))
	for _, s := range in.Subjects {
		m[s.ID] = s
	}
	return m
}

// TeacherByID builds a lookup table over the teacher list.
func (in *Input) TeacherByID() map[string]Teacher {
	m := make(map[string]Teacher, len(in.Teachers))
	for _, t := range in.Teachers {
		m[t.ID] = t
	}
	return m
}

// ClassByID builds a lookup table over the class list.
func (in *Input) ClassByID() map[string]Class {
	m := make(map[string]Class, len(in.Classes))
	for _, c := range in.Classes {
		m[c.ID] = c
	}
	return m
}

// RoomByID builds a lookup table over the room list.
func (in *Input) RoomByID() map[string]Room {
	m := make(map[string]Room, len(in.Rooms))
	for _, r := range in.Rooms {
		m[r.ID] = r
	}
	return m
}

// UnavailableSet groups unavailability rows into per-teacher slot sets.
func (in *Input) UnavailableSet() map[string]map[Timeslot]bool {
	return slotSet(in.Unavailability)
}

// PreferredSet groups preference rows into per-teacher slot sets.
func (in *Input) PreferredSet() map[string]map[Timeslot]bool {
	return slotSet(in.Preferences)
}

func slotSet(rows []TeacherSlot) map[string]map[Timeslot]bool {
	m := make(map[string]map[Timeslot]bool)
	for _, row := range rows {
		if m[row.TeacherID] == nil {
			m[row.TeacherID] = make(map[Timeslot]bool)
		}
		m[row.TeacherID][row.Slot] = true
	}
	return m
}
