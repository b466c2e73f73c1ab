// Package engine compiles timetable inputs into a constraint model
// and searches it with a portfolio of randomized greedy workers.
package engine

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status is the terminal state of one solve.
type Status int

const (
	// Unknown: budget expired with no incumbent and no infeasibility
	// proof.
	Unknown Status = iota
	// Optimal: an incumbent reached the objective upper bound.
	Optimal
	// Feasible: at least one constraint-valid incumbent was found.
	Feasible
	// Infeasible: the model provably has no satisfying assignment.
	Infeasible
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "OPTIMAL"
	case Feasible:
		return "FEASIBLE"
	case Infeasible:
		return "INFEASIBLE"
	}
	return "UNKNOWN"
}

type Stats struct {
	Attempts     int
	Improvements int
	Restarts     int
	Workers      int
	Elapsed      time.Duration
}

// Outcome carries the best assignment found plus enough bookkeeping
// for the caller to map it onto the run contract.
type Outcome struct {
	Status     Status
	Assignment []Candidate
	Objective  int
	UpperBound int
	Reason     error // set when Status is Infeasible
	Stats      Stats
}

type Solver struct {
	model *Model
	cfg   Config
	log   *zap.Logger

	mu        sync.Mutex
	best      []Candidate
	bestScore int
	haveBest  bool
	stats     Stats
	stop      context.CancelFunc
}

func NewSolver(m *Model, cfg Config) *Solver {
	return &Solver{model: m, cfg: cfg, log: cfg.logger()}
}

// Solve runs the portfolio under the configured wall-clock budget.
// Workers share the compiled model read-only and exchange only the
// incumbent. With one worker the result is deterministic for a fixed
// seed.
func (s *Solver) Solve(ctx context.Context) *Outcome {
	started := time.Now()
	m := s.model

	if err := m.Precheck(); err != nil {
		s.log.Info("model provably infeasible", zap.Error(err))
		return &Outcome{Status: Infeasible, Reason: err, Stats: Stats{Elapsed: time.Since(started)}}
	}
	if len(m.Sessions) == 0 {
		return &Outcome{Status: Optimal, Assignment: []Candidate{}, Stats: Stats{Elapsed: time.Since(started)}}
	}

	bound := m.UpperBound()
	order := s.searchOrder()

	workers := s.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	budget := s.cfg.TimeLimit
	if budget <= 0 {
		budget = DefaultConfig().TimeLimit
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()
	s.stop = cancel

	s.log.Info("starting search",
		zap.Int("sessions", len(m.Sessions)),
		zap.Int("workers", workers),
		zap.Int("bound", bound),
		zap.Duration("budget", budget))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			s.worker(ctx, idx, order, bound)
		}(i)
	}
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	out := &Outcome{UpperBound: bound, Stats: s.stats}
	out.Stats.Workers = workers
	out.Stats.Elapsed = time.Since(started)
	if s.haveBest {
		out.Assignment = s.best
		out.Objective = s.bestScore
		out.Status = Feasible
		if s.bestScore >= bound {
			out.Status = Optimal
		}
		s.log.Info("search finished",
			zap.Stringer("status", out.Status),
			zap.Int("score", out.Objective),
			zap.Int("attempts", out.Stats.Attempts))
		return out
	}
	out.Status = Unknown
	s.log.Info("search finished with no incumbent",
		zap.Int("attempts", out.Stats.Attempts))
	return out
}

// searchOrder sorts sessions most constrained first, ties by input
// order.
func (s *Solver) searchOrder() []int {
	order := make([]int, len(s.model.Sessions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(s.model.Domains[order[a]]) < len(s.model.Domains[order[b]])
	})
	return order
}

func (s *Solver) worker(ctx context.Context, idx int, order []int, bound int) {
	m := s.model
	rng := rand.New(rand.NewSource(s.cfg.Seed + int64(idx)))
	board := NewBoard(m)

	failures := 0
	usePins := true
	pinned := make([]Candidate, len(m.Sessions))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		havePin := false
		if usePins {
			s.mu.Lock()
			if s.haveBest {
				copy(pinned, s.best)
				havePin = true
			}
			s.mu.Unlock()
		}

		board.Reset()
		ok := s.attempt(board, rng, order, pinned, havePin)

		s.mu.Lock()
		s.stats.Attempts++
		s.mu.Unlock()

		if !ok {
			failures++
			if s.cfg.RestartAfter > 0 && failures >= s.cfg.RestartAfter {
				failures = 0
				usePins = !usePins
				s.mu.Lock()
				s.stats.Restarts++
				s.mu.Unlock()
			}
			continue
		}
		failures = 0
		usePins = true

		if err := m.Verify(board.Assigned); err != nil {
			// A construction the checker rejects means the board and
			// checker disagree; drop it rather than publish it.
			s.log.Warn("discarding inconsistent construction", zap.Error(err))
			continue
		}
		score := m.Objective(board.Assigned)

		s.mu.Lock()
		if !s.haveBest || score > s.bestScore {
			s.best = append([]Candidate(nil), board.Assigned...)
			s.bestScore = score
			s.haveBest = true
			s.stats.Improvements++
			s.log.Info("new best score, saving result",
				zap.Int("score", score),
				zap.Int("bound", bound),
				zap.Int("worker", idx))
			if score >= bound {
				s.stop()
			}
		}
		s.mu.Unlock()
	}
}

// attempt builds one full assignment greedily. Each session either
// reuses the incumbent's placement (pin) or draws from a lottery over
// its consistent candidates, tickets weighted by objective delta.
func (s *Solver) attempt(board *Board, rng *rand.Rand, order []int, pinned []Candidate, havePin bool) bool {
	type weighted struct {
		c       Candidate
		tickets int
	}
	var pool []weighted

	for _, sess := range order {
		if havePin && pinned[sess].Slot >= 0 &&
			rng.Float64() < s.cfg.PinProbability && board.Fits(sess, pinned[sess]) {
			board.Place(sess, pinned[sess])
			continue
		}

		pool = pool[:0]
		minDelta := 0
		first := true
		for _, c := range s.model.Domains[sess] {
			if !board.Fits(sess, c) {
				continue
			}
			d := board.Delta(sess, c)
			if first || d < minDelta {
				minDelta = d
				first = false
			}
			pool = append(pool, weighted{c: c, tickets: d})
		}
		if len(pool) == 0 {
			return false
		}

		total := 0
		for i := range pool {
			pool[i].tickets = pool[i].tickets - minDelta + 1
			total += pool[i].tickets
		}
		draw := rng.Intn(total)
		for i := range pool {
			draw -= pool[i].tickets
			if draw < 0 {
				board.Place(sess, pool[i].c)
				break
			}
		}
	}
	return true
}
