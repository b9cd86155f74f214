// Package monitoring runs periodic housekeeping jobs on cron schedules.
package monitoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Job is a named task run whenever its cron expression comes due.
type Job struct {
	Name string
	Spec string // standard 5-field cron expression
	Run  func(ctx context.Context) error

	schedule cron.Schedule
	nextRun  time.Time
}

// Scheduler checks for and executes due jobs once a minute.
type Scheduler struct {
	mu       sync.Mutex
	jobs     []*Job
	interval time.Duration
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() *Scheduler {
	return &Scheduler{
		interval: time.Minute,
		now:      time.Now,
	}
}

// Add registers a job. It fails if the cron expression does not parse.
func (s *Scheduler) Add(job Job) error {
	schedule, err := cron.ParseStandard(job.Spec)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q for job %s: %w", job.Spec, job.Name, err)
	}
	job.schedule = schedule
	job.nextRun = schedule.Next(s.now())

	s.mu.Lock()
	s.jobs = append(s.jobs, &job)
	s.mu.Unlock()
	log.Info().Str("job", job.Name).Str("spec", job.Spec).Time("next_run", job.nextRun).Msg("Scheduled job")
	return nil
}

// Run starts the scheduler's ticking loop and blocks until ctx is done and
// any running jobs have returned.
func (s *Scheduler) Run(ctx context.Context) {
	log.Info().Msg("Starting background scheduler...")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			log.Info().Msg("Stopping background scheduler.")
			return
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

// runDue starts every job whose next run time has passed and advances it.
func (s *Scheduler) runDue(ctx context.Context) int {
	now := s.now()
	var due []*Job

	s.mu.Lock()
	for _, job := range s.jobs {
		if !now.Before(job.nextRun) {
			due = append(due, job)
			job.nextRun = job.schedule.Next(now)
		}
	}
	s.mu.Unlock()

	for _, job := range due {
		s.wg.Add(1)
		go func(job *Job) {
			defer s.wg.Done()
			s.execute(ctx, job)
		}(job)
	}
	return len(due)
}

func (s *Scheduler) execute(ctx context.Context, job *Job) {
	start := time.Now()
	if err := job.Run(ctx); err != nil {
		log.Error().Err(err).Str("job", job.Name).Msg("Scheduled job failed")
		return
	}
	log.Debug().Str("job", job.Name).Dur("took", time.Since(start)).Msg("Scheduled job finished")
}
