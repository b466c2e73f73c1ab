// Package backtrack is the exact fallback search over a compiled
// model. It respects every hard constraint but carries no objective:
// the first full placement wins.
package backtrack

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/uni-scheduler/timetable/internal/engine"
)

// Result is the outcome of one backtracking run. Complete means every
// session was placed; otherwise Assignment holds the deepest partial
// placement reached before the budget or the search space ran out.
// Exhausted marks the latter case, where the full tree was explored
// and no complete placement exists.
type Result struct {
	Assignment []engine.Candidate
	Complete   bool
	Exhausted  bool
	Nodes      int
	Elapsed    time.Duration
}

type searcher struct {
	m     *engine.Model
	board *engine.Board

	ctx   context.Context
	nodes int

	best      []engine.Candidate
	bestDepth int
}

// Solve runs depth-first search with a minimum-remaining-values
// variable ordering, candidate values tried in the domain's
// (day, period, room id) order. The context carries the time budget;
// cancellation is checked once per node.
func Solve(ctx context.Context, m *engine.Model, log *zap.Logger) *Result {
	if log == nil {
		log = zap.NewNop()
	}
	started := time.Now()

	s := &searcher{
		m:     m,
		board: engine.NewBoard(m),
		ctx:   ctx,
		best:  make([]engine.Candidate, len(m.Sessions)),
	}
	for i := range s.best {
		s.best[i] = engine.Candidate{Slot: -1, Room: -1}
	}

	complete := s.search()
	if complete {
		copy(s.best, s.board.Assigned)
		s.bestDepth = len(m.Sessions)
	}
	log.Info("backtracking finished",
		zap.Bool("complete", complete),
		zap.Int("placed", s.bestDepth),
		zap.Int("nodes", s.nodes))

	return &Result{
		Assignment: s.best,
		Complete:   complete,
		Exhausted:  !complete && ctx.Err() == nil,
		Nodes:      s.nodes,
		Elapsed:    time.Since(started),
	}
}

// search returns true once all sessions are placed. On any other exit
// the board is fully reverted to the caller's frame.
func (s *searcher) search() bool {
	s.nodes++
	if s.nodes%256 == 0 && s.ctx.Err() != nil {
		return false
	}
	if s.board.Placed == len(s.m.Sessions) {
		return true
	}
	if s.board.Placed > s.bestDepth {
		s.bestDepth = s.board.Placed
		copy(s.best, s.board.Assigned)
	}

	sess := s.pick()
	if sess < 0 {
		return false
	}
	for _, c := range s.m.Domains[sess] {
		if !s.board.Fits(sess, c) {
			continue
		}
		s.board.Place(sess, c)
		if s.search() {
			return true
		}
		s.board.Unplace(sess, c)
		if s.ctx.Err() != nil {
			return false
		}
	}
	return false
}

// pick selects the unassigned session with the fewest currently
// consistent candidates, ties broken by input order. A session with
// zero consistent candidates is returned immediately so the branch
// fails fast.
func (s *searcher) pick() int {
	bestSess := -1
	bestCount := -1
	for sess := range s.m.Sessions {
		if s.board.Assigned[sess].Slot >= 0 {
			continue
		}
		count := 0
		for _, c := range s.m.Domains[sess] {
			if s.board.Fits(sess, c) {
				count++
				if bestCount >= 0 && count >= bestCount {
					break
				}
			}
		}
		if count == 0 {
			return sess
		}
		if bestCount < 0 || count < bestCount {
			bestSess = sess
			bestCount = count
		}
	}
	return bestSess
}
