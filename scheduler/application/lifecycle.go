package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/schedule"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/repository"
	"github.com/sirupsen/logrus"
)

// Lifecycle translates schedule CRUD into scheduler calls, keeping the
// invariant that a schedule's enabled state and its live job state agree.
type Lifecycle struct {
	store    repository.IStore
	jobs     *JobScheduler
	executor *Executor
}

func NewLifecycle(store repository.IStore, jobs *JobScheduler, executor *Executor) *Lifecycle {
	return &Lifecycle{store: store, jobs: jobs, executor: executor}
}

// Create validates and persists a new schedule, then enqueues its job.
func (l *Lifecycle) Create(ctx context.Context, sched schedule.Schedule) (schedule.Schedule, error) {
	if sched.ID == "" {
		sched.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sched.CreatedAt = now
	sched.UpdatedAt = now
	sched.Enabled = true

	if err := sched.Validate(); err != nil {
		return schedule.Schedule{}, err
	}
	l.refreshNextRun(&sched)

	if err := l.store.CreateSchedule(ctx, sched); err != nil {
		return schedule.Schedule{}, err
	}
	if err := l.jobs.Enqueue(sched); err != nil {
		logrus.WithError(err).Errorf("[LIFECYCLE] Failed to enqueue job for new schedule %s", sched.ID)
	}
	return sched, nil
}

// Update persists a modified schedule and reconciles its job: the old job is
// always cancelled, a new one is enqueued only while the schedule stays
// enabled. Trigger fields are re-validated so the recurrence rule is rebuilt
// from the current parameters.
func (l *Lifecycle) Update(ctx context.Context, sched schedule.Schedule) (schedule.Schedule, error) {
	sched.UpdatedAt = time.Now().UTC()

	if err := sched.Validate(); err != nil {
		return schedule.Schedule{}, err
	}
	l.refreshNextRun(&sched)

	if err := l.store.UpdateSchedule(ctx, sched); err != nil {
		return schedule.Schedule{}, err
	}

	l.jobs.Cancel(sched.ID)
	if sched.Enabled {
		if err := l.jobs.Enqueue(sched); err != nil {
			logrus.WithError(err).Errorf("[LIFECYCLE] Failed to re-enqueue job for schedule %s", sched.ID)
		}
	}
	return sched, nil
}

// Toggle flips the enabled flag and performs the matching enqueue or cancel.
func (l *Lifecycle) Toggle(ctx context.Context, scheduleID string) (schedule.Schedule, error) {
	sched, err := l.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return schedule.Schedule{}, err
	}

	sched.Enabled = !sched.Enabled
	sched.UpdatedAt = time.Now().UTC()
	l.refreshNextRun(&sched)

	if err := l.store.UpdateSchedule(ctx, sched); err != nil {
		return schedule.Schedule{}, err
	}

	if sched.Enabled {
		if err := l.jobs.Enqueue(sched); err != nil {
			logrus.WithError(err).Errorf("[LIFECYCLE] Failed to enqueue job for schedule %s", sched.ID)
		}
	} else {
		l.jobs.Cancel(sched.ID)
	}
	return sched, nil
}

// Delete removes the schedule and cancels its job. The delivery log keeps
// its entries: it is an append-only audit trail.
func (l *Lifecycle) Delete(ctx context.Context, scheduleID string) error {
	if err := l.store.DeleteSchedule(ctx, scheduleID); err != nil {
		return err
	}
	l.jobs.Cancel(scheduleID)
	return nil
}

// RunNow invokes the executor directly, bypassing the scheduler. It shares
// the normal execution path, including the last-run update.
func (l *Lifecycle) RunNow(ctx context.Context, scheduleID string) error {
	if _, err := l.store.GetSchedule(ctx, scheduleID); err != nil {
		return err
	}
	l.executor.Execute(ctx, scheduleID)
	return nil
}

// Get returns a single schedule.
func (l *Lifecycle) Get(ctx context.Context, scheduleID string) (schedule.Schedule, error) {
	return l.store.GetSchedule(ctx, scheduleID)
}

// List returns a user's schedules, newest first.
func (l *Lifecycle) List(ctx context.Context, userID string) ([]schedule.Schedule, error) {
	return l.store.ListSchedules(ctx, userID)
}

func (l *Lifecycle) refreshNextRun(sched *schedule.Schedule) {
	if !sched.Enabled {
		sched.NextRun = nil
		return
	}
	next, err := sched.ComputeNextRun(time.Now().UTC())
	if err != nil {
		logrus.WithError(err).Debugf("[LIFECYCLE] Could not compute next run for schedule %s", sched.ID)
		return
	}
	sched.NextRun = next
}
