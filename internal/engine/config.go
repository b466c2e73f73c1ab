package engine

import (
	"time"

	"go.uber.org/zap"
)

// Rules holds the declarative per-slot exclusions applied during model
// construction. Period numbers refer to grid periods; empty slices
// disable the corresponding rule.
type Rules struct {
	// BlackoutPeriods can never host a session start, any subject.
	BlackoutPeriods []int
	// LabStartPeriods are the only legal start periods for subjects
	// that require a specialized room.
	LabStartPeriods []int
	// TheoryForbiddenPeriods are start periods closed to
	// general-purpose subjects.
	TheoryForbiddenPeriods []int
	// LatePeriods feed the optional-subject penalty term.
	LatePeriods []int
	// OptionalClassIDs are sub-section classes whose session starts
	// block MainClassIDs sessions of non-exempt subjects in the same
	// slot. All three sets empty disables the rule.
	OptionalClassIDs []string
	MainClassIDs     []string
	ExemptSubjectIDs []string
}

// DefaultRules mirrors the institution's standing timetable policy:
// period 6 is the common break, labs start on block boundaries, and
// theory subjects stay out of the evening range.
func DefaultRules() Rules {
	return Rules{
		BlackoutPeriods:        []int{6},
		LabStartPeriods:        []int{1, 4, 7},
		TheoryForbiddenPeriods: []int{7, 8, 9},
		LatePeriods:            []int{7, 8, 9},
	}
}

// Weights scales the objective terms. Preference multiplies the
// teacher's seniority per matched preferred slot; the two penalties
// are flat per occurrence.
type Weights struct {
	Preference   int
	LateOptional int
	SameDay      int
}

func DefaultWeights() Weights {
	return Weights{Preference: 1, LateOptional: 1000, SameDay: 1000}
}

// Config is the explicit per-solve configuration. It is constructed
// once per run and passed by reference; nothing in the engine reads
// globals.
type Config struct {
	// TimeLimit bounds the whole solve by wall clock.
	TimeLimit time.Duration
	// Workers is the portfolio width. Zero means one worker.
	Workers int
	// Seed derives each worker's RNG as Seed+workerIndex.
	Seed int64
	// PinProbability is the chance a worker reuses the incumbent's
	// placement for a session instead of drawing from the lottery.
	PinProbability float64
	// RestartAfter is the number of failed attempts before a worker
	// drops its pins and rebuilds from scratch.
	RestartAfter int

	Rules   Rules
	Weights Weights
	Logger  *zap.Logger
}

func DefaultConfig() Config {
	return Config{
		TimeLimit:      10 * time.Second,
		Workers:        4,
		Seed:           1,
		PinProbability: 0.85,
		RestartAfter:   200,
		Rules:          DefaultRules(),
		Weights:        DefaultWeights(),
	}
}

func (c *Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
