package scheduler

import (
	"fmt"
	"time"

	"MarketDashboard/internal/recorder"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler manages the journal maintenance cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Recorder  recorder.Recorder
	Now       func() time.Time
	retention time.Duration
}

// NewScheduler creates a new Scheduler.
func NewScheduler(rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Recorder: rec,
		Now:      time.Now,
	}
}

// RegisterAll registers the retention task. A zero retention disables pruning.
func (s *Scheduler) RegisterAll(retentionCron string, retention time.Duration) error {
	s.retention = retention
	if retention <= 0 {
		log.Info().Msg("journal retention disabled")
		return nil
	}
	if _, err := s.Cron.AddFunc(retentionCron, s.retentionTask); err != nil {
		return fmt.Errorf("register retention task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunRetentionNow executes the retention task immediately and returns the number of pruned rows.
func (s *Scheduler) RunRetentionNow() (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	cutoff := s.Now().Add(-s.retention)
	n, err := s.Recorder.PruneBefore(cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune journal before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return n, nil
}

func (s *Scheduler) retentionTask() {
	n, err := s.RunRetentionNow()
	if err != nil {
		log.Error().Err(err).Msg("journal retention failed")
		return
	}
	log.Info().Int64("pruned", n).Msg("journal retention done")
}
