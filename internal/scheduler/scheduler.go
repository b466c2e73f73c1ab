// Package scheduler is the solve-run facade: it validates the input,
// expands demand into sessions, allocates home rooms, compiles the
// model, runs the selected search engine, and maps the outcome onto
// the run contract.
package scheduler

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uni-scheduler/timetable/internal/backtrack"
	"github.com/uni-scheduler/timetable/internal/engine"
	"github.com/uni-scheduler/timetable/internal/entity"
	"github.com/uni-scheduler/timetable/internal/expand"
	"github.com/uni-scheduler/timetable/internal/homeroom"
)

// EngineKind selects the search procedure.
type EngineKind string

const (
	// EnginePortfolio is the weighted randomized portfolio search.
	EnginePortfolio EngineKind = "portfolio"
	// EngineBacktrack is the exact hard-constraints-only fallback.
	EngineBacktrack EngineKind = "backtrack"
)

type Status string

const (
	StatusSuccess     Status = "SUCCESS"
	StatusPartial     Status = "PARTIAL"
	StatusInfeasible  Status = "INFEASIBLE"
	StatusConfigError Status = "CONFIG_ERROR"
)

// Placed is one scheduled session in external terms.
type Placed struct {
	Day    int    `json:"day"`
	Period int    `json:"period"`
	RoomID string `json:"room_id"`
}

// Result is the run contract returned to callers and renderers.
type Result struct {
	RunID             string            `json:"run_id"`
	Status            Status            `json:"status"`
	SessionsTotal     int               `json:"sessions_total"`
	SessionsScheduled int               `json:"sessions_scheduled"`
	Assignment        map[string]Placed `json:"assignment"`
	Objective         int               `json:"objective"`
	Reason            string            `json:"reason,omitempty"`
	Elapsed           time.Duration     `json:"elapsed"`

	// Sessions is the expanded session list behind the assignment
	// keys, kept for renderers and diagnostics.
	Sessions []entity.Session `json:"-"`
}

type Options struct {
	Engine          EngineKind
	IncludeOptional bool
	Config          engine.Config
}

func DefaultOptions() Options {
	return Options{Engine: EnginePortfolio, IncludeOptional: true, Config: engine.DefaultConfig()}
}

// Run executes one complete solve. Malformed input (schema or demand
// expansion failures) returns an error and no result. A home-room
// allocation failure is part of the contract: it returns a
// CONFIG_ERROR result before any search is attempted. Infeasibility
// and budget expiry are likewise statuses, not errors.
func Run(ctx context.Context, in *entity.Input, opts Options) (*Result, error) {
	log := opts.Config.Logger
	if log == nil {
		log = zap.NewNop()
	}
	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))
	started := time.Now()

	if err := validator.New().Struct(in); err != nil {
		return nil, entity.WrapError(entity.CodeData, err, "input failed schema validation")
	}

	demands := in.Demands
	if !opts.IncludeOptional {
		demands = dropOptional(in, demands)
	}

	sessions, err := expand.Sessions(demands)
	if err != nil {
		return nil, err
	}
	log.Info("expanded curriculum", zap.Int("demands", len(demands)), zap.Int("sessions", len(sessions)))

	res := &Result{
		RunID:         runID,
		SessionsTotal: len(sessions),
		Assignment:    map[string]Placed{},
		Sessions:      sessions,
	}

	homes, err := homeroom.Allocate(in.Classes, in.Rooms)
	if err != nil {
		log.Error("home room allocation failed", zap.Error(err))
		res.Status = StatusConfigError
		res.Reason = err.Error()
		res.Elapsed = time.Since(started)
		return res, nil
	}

	model := engine.Build(in, sessions, homes, opts.Config.Rules, opts.Config.Weights)

	switch opts.Engine {
	case EngineBacktrack:
		runBacktrack(ctx, model, opts.Config, log, res)
	default:
		runPortfolio(ctx, model, opts.Config, log, res)
	}

	res.Elapsed = time.Since(started)
	log.Info("solve finished",
		zap.String("status", string(res.Status)),
		zap.Int("scheduled", res.SessionsScheduled),
		zap.Int("total", res.SessionsTotal),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

func runPortfolio(ctx context.Context, model *engine.Model, cfg engine.Config, log *zap.Logger, res *Result) {
	cfg.Logger = log
	out := engine.NewSolver(model, cfg).Solve(ctx)
	switch out.Status {
	case engine.Optimal, engine.Feasible:
		res.Status = StatusSuccess
		res.Objective = out.Objective
		fill(res, model, out.Assignment)
	default:
		res.Status = StatusInfeasible
		if out.Reason != nil {
			res.Reason = out.Reason.Error()
		}
	}
}

func runBacktrack(ctx context.Context, model *engine.Model, cfg engine.Config, log *zap.Logger, res *Result) {
	if err := model.Precheck(); err != nil {
		res.Status = StatusInfeasible
		res.Reason = err.Error()
		return
	}
	budget := cfg.TimeLimit
	if budget <= 0 {
		budget = engine.DefaultConfig().TimeLimit
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	out := backtrack.Solve(ctx, model, log)
	switch {
	case out.Complete:
		fill(res, model, out.Assignment)
		res.Status = StatusSuccess
		res.Objective = model.Objective(out.Assignment)
	case out.Exhausted:
		res.Status = StatusInfeasible
		res.Reason = "search space exhausted without a complete placement"
	default:
		fill(res, model, out.Assignment)
		if res.SessionsScheduled > 0 {
			res.Status = StatusPartial
		} else {
			res.Status = StatusInfeasible
		}
	}
}

// fill maps dense candidates back to external ids, skipping
// unassigned sessions.
func fill(res *Result, model *engine.Model, a []engine.Candidate) {
	for s, c := range a {
		if c.Slot < 0 {
			continue
		}
		slot := model.Grid.At(c.Slot)
		res.Assignment[model.Sessions[s].ID] = Placed{
			Day:    slot.Day,
			Period: slot.Period,
			RoomID: model.Rooms[c.Room].ID,
		}
	}
	res.SessionsScheduled = len(res.Assignment)
}

func dropOptional(in *entity.Input, demands []entity.CurriculumDemand) []entity.CurriculumDemand {
	subjects := in.SubjectByID()
	out := make([]entity.CurriculumDemand, 0, len(demands))
	for _, d := range demands {
		if sub, ok := subjects[d.SubjectID]; ok && sub.IsOptional {
			continue
		}
		out = append(out, d)
	}
	return out
}
