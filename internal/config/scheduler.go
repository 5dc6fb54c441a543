package config

import (
	"os"
	"time"
)

// SchedulerConfig controls the dispatch poll loop.
type SchedulerConfig struct {
	// PollInterval is the spacing between scans of pending schedules.
	PollInterval time.Duration
	// WarmupDelay is how long after process start the first scan runs, so a
	// restart does not leave due schedules waiting a full interval.
	WarmupDelay time.Duration
}

func NewSchedulerConfig() *SchedulerConfig {
	cfg := &SchedulerConfig{
		PollInterval: 10 * time.Minute,
		WarmupDelay:  30 * time.Second,
	}
	if v := os.Getenv("SCHEDULE_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.PollInterval = d
		}
	}
	if v := os.Getenv("SCHEDULE_WARMUP_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.WarmupDelay = d
		}
	}
	return cfg
}
