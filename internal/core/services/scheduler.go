package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driving"
	"github.com/custodia-labs/paybridge/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// Scheduler pushes unflagged records of the configured organizations on a
// fixed interval. Runs are sequential; a run never overlaps the next.
type Scheduler struct {
	schedule domain.PushSchedule
	batches  driving.BatchSync

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler for schedule.
func NewScheduler(schedule domain.PushSchedule, batches driving.BatchSync) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		batches:  batches,
	}
}

// Start runs the scheduler loop and blocks until Stop is called or ctx ends.
// It returns immediately when the schedule is disabled.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.schedule.Enabled() {
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	logger.Info("Scheduled pushes every %s for %v", s.schedule.Interval, s.schedule.Orgs)

	ticker := time.NewTicker(s.schedule.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// Stop ends the loop after the current run completes.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// RunOnce pushes personnel before compensation for each organization and
// returns the results of the batches that ran.
func (s *Scheduler) RunOnce(ctx context.Context) []*domain.BatchResult {
	var results []*domain.BatchResult
	for _, org := range s.schedule.Orgs {
		req := driving.BatchRequest{Session: s.schedule.Session, OrgID: org, Limit: s.schedule.Limit}

		personnel, err := s.batches.PushPersonnelBatch(ctx, req)
		if err != nil {
			s.report(org, domain.KindPersonnel, err)
			if errors.Is(err, domain.ErrAuthRequired) || errors.Is(err, domain.ErrConfigurationMissing) {
				// Nothing else can succeed this run.
				return results
			}
			continue
		}
		results = append(results, personnel)
		s.summarise(org, personnel)

		comp, err := s.batches.PushCompensationBatch(ctx, req)
		if err != nil {
			s.report(org, domain.KindCompensation, err)
			continue
		}
		results = append(results, comp)
		s.summarise(org, comp)
	}
	return results
}

func (s *Scheduler) summarise(org string, r *domain.BatchResult) {
	logger.Info("Scheduled %s push for %s: %d processed, %d succeeded, %d failed",
		r.Kind, org, r.Processed, r.Successes, r.Failures)
	if drifted := r.Drifted(); len(drifted) > 0 {
		logger.Warn("Scheduled %s push for %s: %d record(s) pushed but not flagged", r.Kind, org, len(drifted))
	}
}

func (s *Scheduler) report(org string, kind domain.RecordKind, err error) {
	if errors.Is(err, domain.ErrAuthRequired) {
		logger.Warn("Scheduled push for %s skipped: session %s must authorize (paybridge auth login)",
			org, s.schedule.Session)
		return
	}
	logger.Error("Scheduled %s push for %s failed: %v", kind, org, err)
}
