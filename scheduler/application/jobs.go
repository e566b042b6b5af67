package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/schedule"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/repository"
	"github.com/sirupsen/logrus"
)

// job is the scheduler-internal record for one schedule. It carries only the
// schedule id: the executor re-resolves everything else at fire time, so jobs
// never go stale against edited schedules.
type job struct {
	scheduleID string
	kind       schedule.Type
	entryID    cron.EntryID // recurring jobs only
	runAt      time.Time    // once jobs only
	fired      bool

	// execMu serializes firings of this job; an overlapping fire waits for
	// the in-flight execution to finish.
	execMu sync.Mutex
}

// JobScheduler maintains the durable mapping from schedule id to trigger.
// Recurring schedules become cron entries evaluated in their declared
// timezone; once schedules are checked by a coarse ticker. On restart the
// whole table is re-derived from stored schedule parameters via Rehydrate.
type JobScheduler struct {
	cron     *cron.Cron
	store    repository.IStore
	executor *Executor
	tick     time.Duration

	mu      sync.Mutex
	jobs    map[string]*job
	started bool

	ctx    context.Context
	cancel context.CancelFunc
}

func NewJobScheduler(store repository.IStore, executor *Executor, tick time.Duration) *JobScheduler {
	if tick <= 0 {
		tick = 30 * time.Second
	}
	return &JobScheduler{
		cron:     cron.New(),
		store:    store,
		executor: executor,
		tick:     tick,
		jobs:     make(map[string]*job),
	}
}

// Start launches the cron runner and the once-job ticker, then rehydrates
// jobs for every enabled schedule from the store.
func (s *JobScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("job scheduler already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true
	s.mu.Unlock()

	s.cron.Start()
	go s.runTicker()

	if err := s.Rehydrate(s.ctx); err != nil {
		logrus.WithError(err).Error("[SCHEDULER] Rehydration failed")
	}

	logrus.Infof("[SCHEDULER] Started (tick %s)", s.tick)
	return nil
}

// Stop prevents future firings. Executions already in flight complete.
func (s *JobScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.cancel()
	s.cron.Stop()
	s.started = false
	logrus.Info("[SCHEDULER] Stopped")
}

// Rehydrate re-derives every job from the enabled schedules currently in the
// store. Jobs come from stored parameters only, never from serialized
// trigger state, which makes recovery idempotent.
func (s *JobScheduler) Rehydrate(ctx context.Context) error {
	schedules, err := s.store.ListEnabledSchedules(ctx)
	if err != nil {
		return fmt.Errorf("failed to list enabled schedules: %w", err)
	}
	for _, sched := range schedules {
		if err := s.Enqueue(sched); err != nil {
			logrus.WithError(err).Errorf("[SCHEDULER] Failed to rehydrate job for schedule %s", sched.ID)
		}
	}
	logrus.Infof("[SCHEDULER] Rehydrated %d schedules", len(schedules))
	return nil
}

// Enqueue registers the job for a schedule, replacing any existing one so at
// most one live job exists per schedule id. Disabled schedules only cancel.
// A once schedule whose instant already passed fires on the next tick.
func (s *JobScheduler) Enqueue(sched schedule.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(sched.ID)

	if !sched.Enabled {
		return nil
	}

	j := &job{scheduleID: sched.ID, kind: sched.Type}

	switch sched.Type {
	case schedule.TypeOnce:
		if sched.ScheduledAt == nil {
			return fmt.Errorf("once schedule %s has no scheduled_at", sched.ID)
		}
		j.runAt = *sched.ScheduledAt

	case schedule.TypeRecurring:
		spec, err := sched.CronSpec()
		if err != nil {
			return fmt.Errorf("failed to derive recurrence rule for %s: %w", sched.ID, err)
		}
		entryID, err := s.cron.AddFunc(spec, func() { s.fire(j) })
		if err != nil {
			return fmt.Errorf("invalid cron spec %q: %w", spec, err)
		}
		j.entryID = entryID
		logrus.Infof("[SCHEDULER] Enqueued recurring job for schedule %s (%s)", sched.ID, spec)

	default:
		return fmt.Errorf("unknown schedule type: %q", sched.Type)
	}

	s.jobs[sched.ID] = j
	return nil
}

// Cancel removes the job for a schedule id. No-op when none exists. An
// execution already in progress is not interrupted.
func (s *JobScheduler) Cancel(scheduleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(scheduleID)
}

// HasJob reports whether a live job exists for the schedule id.
func (s *JobScheduler) HasJob(scheduleID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[scheduleID]
	return ok
}

// JobCount returns the number of live jobs.
func (s *JobScheduler) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Tick runs one once-job sweep immediately. The background ticker calls this
// every tick interval; tests call it directly to simulate time passing.
func (s *JobScheduler) Tick(now time.Time) {
	due := s.collectDue(now)
	for _, j := range due {
		s.fire(j)
	}
}

func (s *JobScheduler) removeLocked(scheduleID string) {
	j, ok := s.jobs[scheduleID]
	if !ok {
		return
	}
	if j.kind == schedule.TypeRecurring {
		s.cron.Remove(j.entryID)
	}
	delete(s.jobs, scheduleID)
	logrus.Debugf("[SCHEDULER] Cancelled job for schedule %s", scheduleID)
}

// collectDue marks due once jobs as fired and drops them from the table
// atomically, so a slow executor can never cause a double fire.
func (s *JobScheduler) collectDue(now time.Time) []*job {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*job
	for id, j := range s.jobs {
		if j.kind != schedule.TypeOnce || j.fired {
			continue
		}
		if j.runAt.After(now) {
			continue
		}
		j.fired = true
		delete(s.jobs, id)
		due = append(due, j)
	}
	return due
}

func (s *JobScheduler) fire(j *job) {
	j.execMu.Lock()
	defer j.execMu.Unlock()

	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	logrus.Infof("[SCHEDULER] Firing job for schedule %s", j.scheduleID)
	s.executor.Execute(ctx, j.scheduleID)
}

func (s *JobScheduler) runTicker() {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			s.Tick(now)
		}
	}
}
