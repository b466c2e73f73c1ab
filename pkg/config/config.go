// Package config loads the application configuration from the
// environment, with an optional .env file for local runs.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Log    LogConfig
	Solver SolverConfig
	Rules  RulesConfig
	Output OutputConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// SolverConfig tunes the search engines.
type SolverConfig struct {
	Engine          string
	TimeLimit       time.Duration
	Workers         int
	Seed            int64
	PinProbability  float64
	RestartAfter    int
	IncludeOptional bool
}

// RulesConfig carries the institution's standing slot rules. Period
// lists are comma-separated in the environment.
type RulesConfig struct {
	BlackoutPeriods        []int
	LabStartPeriods        []int
	TheoryForbiddenPeriods []int
	LatePeriods            []int
	OptionalClassIDs       []string
	MainClassIDs           []string
	ExemptSubjectIDs       []string
	PreferenceWeight       int
	LateOptionalPenalty    int
	SameDayPenalty         int
}

type OutputConfig struct {
	Dir string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{}
	cfg.Env = v.GetString("ENV")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Solver = SolverConfig{
		Engine:          v.GetString("SOLVER_ENGINE"),
		TimeLimit:       parseDuration(v.GetString("SOLVER_TIME_LIMIT"), 10*time.Second),
		Workers:         v.GetInt("SOLVER_WORKERS"),
		Seed:            v.GetInt64("SOLVER_SEED"),
		PinProbability:  v.GetFloat64("SOLVER_PIN_PROBABILITY"),
		RestartAfter:    v.GetInt("SOLVER_RESTART_AFTER"),
		IncludeOptional: v.GetBool("SOLVER_INCLUDE_OPTIONAL"),
	}

	cfg.Rules = RulesConfig{
		BlackoutPeriods:        parseInts(v.GetString("RULES_BLACKOUT_PERIODS")),
		LabStartPeriods:        parseInts(v.GetString("RULES_LAB_START_PERIODS")),
		TheoryForbiddenPeriods: parseInts(v.GetString("RULES_THEORY_FORBIDDEN_PERIODS")),
		LatePeriods:            parseInts(v.GetString("RULES_LATE_PERIODS")),
		OptionalClassIDs:       splitAndTrim(v.GetString("RULES_OPTIONAL_CLASS_IDS")),
		MainClassIDs:           splitAndTrim(v.GetString("RULES_MAIN_CLASS_IDS")),
		ExemptSubjectIDs:       splitAndTrim(v.GetString("RULES_EXEMPT_SUBJECT_IDS")),
		PreferenceWeight:       v.GetInt("RULES_PREFERENCE_WEIGHT"),
		LateOptionalPenalty:    v.GetInt("RULES_LATE_OPTIONAL_PENALTY"),
		SameDayPenalty:         v.GetInt("RULES_SAME_DAY_PENALTY"),
	}

	cfg.Output = OutputConfig{Dir: v.GetString("OUTPUT_DIR")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SOLVER_ENGINE", "portfolio")
	v.SetDefault("SOLVER_TIME_LIMIT", "10s")
	v.SetDefault("SOLVER_WORKERS", 4)
	v.SetDefault("SOLVER_SEED", 1)
	v.SetDefault("SOLVER_PIN_PROBABILITY", 0.85)
	v.SetDefault("SOLVER_RESTART_AFTER", 200)
	v.SetDefault("SOLVER_INCLUDE_OPTIONAL", true)

	v.SetDefault("RULES_BLACKOUT_PERIODS", "6")
	v.SetDefault("RULES_LAB_START_PERIODS", "1,4,7")
	v.SetDefault("RULES_THEORY_FORBIDDEN_PERIODS", "7,8,9")
	v.SetDefault("RULES_LATE_PERIODS", "7,8,9")
	v.SetDefault("RULES_PREFERENCE_WEIGHT", 1)
	v.SetDefault("RULES_LATE_OPTIONAL_PENALTY", 1000)
	v.SetDefault("RULES_SAME_DAY_PENALTY", 1000)

	v.SetDefault("OUTPUT_DIR", "out")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func parseInts(raw string) []int {
	var out []int
	for _, part := range splitAndTrim(raw) {
		if n, err := strconv.Atoi(part); err == nil {
			out = append(out, n)
		}
	}
	return out
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
