// Package scheduler wires the daily batch jobs: the post-market-close NAV run
// and the nightly validation sweep.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/config"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/service"
)

// Scheduler owns the cron runner for the daily jobs. The NAV close job is the
// sole scheduled writer of snapshots; overlap with itself is prevented by the
// snapshot date-uniqueness constraint, not by a lock.
type Scheduler struct {
	cron              *cron.Cron
	navService        *service.NavService
	validationService *service.ValidationService
}

// New creates a Scheduler with the daily NAV close and validation jobs
// registered per the configured cron expressions.
func New(cfg config.ScheduleConfig, navService *service.NavService, validationService *service.ValidationService) (*Scheduler, error) {
	s := &Scheduler{
		cron:              cron.New(cron.WithLocation(time.UTC)),
		navService:        navService,
		validationService: validationService,
	}

	if _, err := s.cron.AddFunc(cfg.NavClose, s.runNavClose); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(cfg.Validation, s.runValidation); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running the scheduled jobs in their own goroutines.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runNavClose() {
	today := time.Now().UTC()
	if !service.IsTradingDay(today) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	snapshot, err := s.navService.RunDailyClose(ctx, today)
	if err != nil {
		log.Printf("nav close run skipped: %v", err)
		return
	}
	log.Printf("nav close run completed for %s: nav=%.4f", snapshot.Date.Format("2006-01-02"), snapshot.NavPerShare)

	s.runValidation()
}

func (s *Scheduler) runValidation() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	results, err := s.validationService.RunAll(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("validation run failed: %v", err)
		return
	}
	for _, result := range results {
		if !result.Passed {
			// Reported, not fatal: the operator channel is the log for now.
			log.Printf("validation FAILED %s: %s", result.Name, result.Detail)
		}
	}
}
