package schedule

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"WorkshopNotifier/internal/config"
)

// Scheduler drives the dispatch loop: one warm-up scan shortly after start,
// then a scan every poll interval. Ticks never overlap; a tick arriving while
// the previous one still runs is skipped.
type Scheduler struct {
	service  *Service
	log      *zap.Logger
	interval time.Duration
	warmup   time.Duration
	cron     *cron.Cron
	job      cron.Job
	done     chan struct{}
}

func NewScheduler(service *Service, cfg *config.SchedulerConfig, log *zap.Logger) *Scheduler {
	return &Scheduler{
		service:  service,
		log:      log,
		interval: cfg.PollInterval,
		warmup:   cfg.WarmupDelay,
		done:     make(chan struct{}),
	}
}

// Start wires the loop into the process lifecycle.
func (s *Scheduler) Start(lc fx.Lifecycle) {
	// The warm-up run shares the wrapper, so it can never overlap a tick.
	s.job = cron.NewChain(cron.SkipIfStillRunning(cronLogger{s.log})).Then(cron.FuncJob(s.tick))
	s.cron = cron.New()
	s.cron.Schedule(cron.Every(s.interval), s.job)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.log.Info("starting schedule poller",
				zap.Duration("interval", s.interval), zap.Duration("warmup", s.warmup))
			go s.runWarmup()
			s.cron.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.log.Info("stopping schedule poller")
			close(s.done)
			stopped := s.cron.Stop()
			select {
			case <-stopped.Done():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

// runWarmup fires one scan shortly after startup so schedules that came due
// while the process was down do not wait a full poll interval.
func (s *Scheduler) runWarmup() {
	t := time.NewTimer(s.warmup)
	defer t.Stop()
	select {
	case <-t.C:
		s.job.Run()
	case <-s.done:
	}
}

func (s *Scheduler) tick() {
	start := time.Now()
	scanned, fired := s.service.RunDue(context.Background())
	s.log.Info("schedule scan complete",
		zap.Int("scanned", scanned),
		zap.Int("fired", fired),
		zap.Duration("dur", time.Since(start)))
}

// cronLogger adapts zap to the cron logger so skipped overlapping ticks are
// visible.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info(msg, zap.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, zap.Error(err), zap.Any("details", keysAndValues))
}
