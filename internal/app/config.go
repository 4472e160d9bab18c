package app

import (
	"errors"
	"fmt"

	"github.com/vk/petal/internal/config"
	"github.com/vk/petal/internal/scheduler"
)

// Scheduler setting names, shared by CLI flags and Config.Explicit.
const (
	SettingThreshold    = "threshold"
	SettingMaxRunning   = "max-running"
	SettingTick         = "tick"
	SettingTaskTimeout  = "task-timeout"
	SettingExitWhenIdle = "exit-when-idle"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PlanPath string // hcl file or directory

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	Scheduler scheduler.Config
	// Explicit names the scheduler settings given on the command line. A
	// plan's scheduler block only fills the ones not named here.
	Explicit map[string]bool
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PlanPath == "" {
		return nil, errors.New("PlanPath is a required configuration field and cannot be empty")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("healthcheck port %d is out of range", cfg.HealthcheckPort)
	}
	if err := validateScheduler(cfg.Scheduler); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateScheduler(s scheduler.Config) error {
	switch {
	case s.AccumulateThreshold < 0:
		return fmt.Errorf("accumulate threshold must be >= 0, got %d", s.AccumulateThreshold)
	case s.MaxRunning < 1:
		return fmt.Errorf("max running must be >= 1, got %d", s.MaxRunning)
	case s.Tick <= 0:
		return fmt.Errorf("tick must be > 0, got %s", s.Tick)
	case s.TaskTimeout < 0:
		return fmt.Errorf("task timeout must be >= 0, got %s", s.TaskTimeout)
	}
	return nil
}

// mergeSettings overlays a plan's scheduler block on base for every setting
// not given explicitly.
func mergeSettings(base scheduler.Config, explicit map[string]bool, plan *config.SchedulerSettings) (scheduler.Config, error) {
	if plan == nil {
		return base, nil
	}
	out := base
	if plan.AccumulateThreshold != nil && !explicit[SettingThreshold] {
		out.AccumulateThreshold = *plan.AccumulateThreshold
	}
	if plan.MaxRunning != nil && !explicit[SettingMaxRunning] {
		out.MaxRunning = *plan.MaxRunning
	}
	if plan.Tick != nil && !explicit[SettingTick] {
		out.Tick = *plan.Tick
	}
	if plan.TaskTimeout != nil && !explicit[SettingTaskTimeout] {
		out.TaskTimeout = *plan.TaskTimeout
	}
	if plan.ExitWhenIdle != nil && !explicit[SettingExitWhenIdle] {
		out.ExitWhenIdle = *plan.ExitWhenIdle
	}
	if err := validateScheduler(out); err != nil {
		return base, fmt.Errorf("invalid scheduler block: %w", err)
	}
	return out, nil
}
