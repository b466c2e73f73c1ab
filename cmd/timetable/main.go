package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/uni-scheduler/timetable/internal/engine"
	"github.com/uni-scheduler/timetable/internal/loader"
	"github.com/uni-scheduler/timetable/internal/render"
	"github.com/uni-scheduler/timetable/internal/scheduler"
	"github.com/uni-scheduler/timetable/pkg/config"
	"github.com/uni-scheduler/timetable/pkg/logger"
)

var (
	dataDir      = "data"
	outDir       = ""
	engineName   = ""
	timeLimit    time.Duration
	workers      = 0
	seed         = int64(0)
	skipOptional = false
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	outDir = cfg.Output.Dir
	engineName = cfg.Solver.Engine
	timeLimit = cfg.Solver.TimeLimit
	workers = cfg.Solver.Workers
	seed = cfg.Solver.Seed
	skipOptional = !cfg.Solver.IncludeOptional

	cmdRoot := &cobra.Command{
		Use:   "timetable",
		Short: "Weekly school timetable generator",
		Long: "A constraint-based generator that assigns teaching sessions to\n" +
			"timeslots and rooms across a weekly grid.",
	}

	cmdSolve := &cobra.Command{
		Use:   "solve",
		Short: "solve the timetable and render the results",
		Run: func(cmd *cobra.Command, args []string) {
			commandSolve(cfg, log)
		},
	}
	cmdSolve.Flags().StringVar(&dataDir, "data", dataDir, "directory holding the entity CSV tables")
	cmdSolve.Flags().StringVar(&outDir, "out", outDir, "directory for rendered outputs")
	cmdSolve.Flags().StringVar(&engineName, "engine", engineName, "search engine (portfolio or backtrack)")
	cmdSolve.Flags().DurationVarP(&timeLimit, "time", "t", timeLimit, "total time to spend searching")
	cmdSolve.Flags().IntVar(&workers, "workers", workers, "number of concurrent search workers")
	cmdSolve.Flags().Int64Var(&seed, "seed", seed, "random seed for the search portfolio")
	cmdSolve.Flags().BoolVar(&skipOptional, "skip-optional", skipOptional, "leave optional subjects out of the timetable")
	cmdRoot.AddCommand(cmdSolve)

	cmdValidate := &cobra.Command{
		Use:   "validate",
		Short: "check the entity tables for referential problems",
		Run: func(cmd *cobra.Command, args []string) {
			commandValidate(log)
		},
	}
	cmdValidate.Flags().StringVar(&dataDir, "data", dataDir, "directory holding the entity CSV tables")
	cmdRoot.AddCommand(cmdValidate)

	cmdSample := &cobra.Command{
		Use:   "sample",
		Short: "write a small solvable sample dataset",
		Run: func(cmd *cobra.Command, args []string) {
			if err := loader.WriteSampleData(dataDir); err != nil {
				log.Fatal("writing sample data", zap.Error(err))
			}
			log.Info("sample data written", zap.String("dir", dataDir))
		},
	}
	cmdSample.Flags().StringVar(&dataDir, "data", dataDir, "directory to write the sample tables into")
	cmdRoot.AddCommand(cmdSample)

	if err := cmdRoot.Execute(); err != nil {
		os.Exit(1)
	}
}

func commandSolve(cfg *config.Config, log *zap.Logger) {
	in, err := loader.LoadInput(dataDir)
	if err != nil {
		log.Fatal("loading input", zap.Error(err))
	}
	for _, w := range loader.Validate(in) {
		log.Warn("input check", zap.String("finding", w))
	}

	opts := scheduler.Options{
		Engine:          scheduler.EngineKind(engineName),
		IncludeOptional: !skipOptional,
		Config: engine.Config{
			TimeLimit:      timeLimit,
			Workers:        workers,
			Seed:           seed,
			PinProbability: cfg.Solver.PinProbability,
			RestartAfter:   cfg.Solver.RestartAfter,
			Rules: engine.Rules{
				BlackoutPeriods:        cfg.Rules.BlackoutPeriods,
				LabStartPeriods:        cfg.Rules.LabStartPeriods,
				TheoryForbiddenPeriods: cfg.Rules.TheoryForbiddenPeriods,
				LatePeriods:            cfg.Rules.LatePeriods,
				OptionalClassIDs:       cfg.Rules.OptionalClassIDs,
				MainClassIDs:           cfg.Rules.MainClassIDs,
				ExemptSubjectIDs:       cfg.Rules.ExemptSubjectIDs,
			},
			Weights: engine.Weights{
				Preference:   cfg.Rules.PreferenceWeight,
				LateOptional: cfg.Rules.LateOptionalPenalty,
				SameDay:      cfg.Rules.SameDayPenalty,
			},
			Logger: log,
		},
	}

	res, err := scheduler.Run(context.Background(), in, opts)
	if err != nil {
		log.Fatal("solve failed", zap.Error(err))
	}

	if err := render.WriteAll(outDir, in, res); err != nil {
		log.Fatal("rendering output", zap.Error(err))
	}
	fmt.Printf("%s: %d/%d sessions scheduled (objective %d) in %s\n",
		res.Status, res.SessionsScheduled, res.SessionsTotal, res.Objective, res.Elapsed.Round(time.Millisecond))
	if res.Status == scheduler.StatusConfigError || res.Status == scheduler.StatusInfeasible {
		fmt.Println(res.Reason)
		os.Exit(1)
	}
}

func commandValidate(log *zap.Logger) {
	in, err := loader.LoadInput(dataDir)
	if err != nil {
		log.Fatal("loading input", zap.Error(err))
	}
	findings := loader.Validate(in)
	for _, w := range findings {
		fmt.Println(w)
	}
	if len(findings) > 0 {
		os.Exit(1)
	}
	fmt.Println("ok")
}
