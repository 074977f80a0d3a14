package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Target is an upstream checked on every probe run.
type Target struct {
	Name  string
	Check func(ctx context.Context) error
}

type ProbeResult struct {
	Healthy   bool          `json:"healthy"`
	Error     string        `json:"error,omitempty"`
	CheckedAt time.Time     `json:"checked_at"`
	Duration  time.Duration `json:"duration"`
}

// Scheduler probes upstream providers on a cron schedule and keeps the last
// result per target for the health endpoint. Results are never served as data.
type Scheduler struct {
	cron     *cron.Cron
	targets  []Target
	logger   *zap.Logger
	schedule string
	timeout  time.Duration

	mu      sync.RWMutex
	running bool
	lastRun time.Time
	results map[string]ProbeResult
}

func NewScheduler(schedule string, targets []Target, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		targets:  targets,
		logger:   logger,
		schedule: schedule,
		timeout:  30 * time.Second,
		results:  make(map[string]ProbeResult),
	}

	if _, err := s.cron.AddFunc(schedule, s.runProbe); err != nil {
		return nil, fmt.Errorf("invalid probe schedule %q: %w", schedule, err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.cron.Start()
	go s.runProbe()

	s.logger.Info("Probe scheduler started",
		zap.String("schedule", s.schedule),
		zap.Int("targets", len(s.targets)))
}

// Stop halts the schedule and waits for a running probe to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping probe scheduler")
	<-s.cron.Stop().Done()
}

// ForceRun probes every target synchronously.
func (s *Scheduler) ForceRun() {
	s.logger.Info("Manually triggering upstream probe")
	s.runProbe()
}

func (s *Scheduler) runProbe() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	for _, target := range s.targets {
		start := time.Now()
		err := target.Check(ctx)

		result := ProbeResult{
			Healthy:   err == nil,
			CheckedAt: start,
			Duration:  time.Since(start),
		}
		if err != nil {
			result.Error = err.Error()
			s.logger.Warn("Upstream probe failed",
				zap.String("target", target.Name),
				zap.Error(err))
		} else {
			s.logger.Debug("Upstream probe succeeded",
				zap.String("target", target.Name),
				zap.Duration("duration", result.Duration))
		}

		s.mu.Lock()
		s.results[target.Name] = result
		s.lastRun = start
		s.mu.Unlock()
	}
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make(map[string]ProbeResult, len(s.results))
	for name, result := range s.results {
		results[name] = result
	}

	return map[string]interface{}{
		"running":  s.running,
		"schedule": s.schedule,
		"last_run": s.lastRun,
		"results":  results,
	}
}
