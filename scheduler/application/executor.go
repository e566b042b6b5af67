package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/delivery"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/repository"
	"github.com/sirupsen/logrus"
)

// Executor resolves a schedule at fire time and attempts delivery to each of
// its recipients independently. Each call produces its own log entries; it
// never dedupes against prior runs.
type Executor struct {
	store      repository.IStore
	dispatcher *Dispatcher
}

func NewExecutor(store repository.IStore, dispatcher *Dispatcher) *Executor {
	return &Executor{store: store, dispatcher: dispatcher}
}

// Execute dispatches the schedule's message to every bound recipient.
// Missing or disabled schedules and unverified platforms are silent no-ops:
// no log entries, no error. Per-recipient failures become failed log entries
// and never block the remaining recipients.
func (e *Executor) Execute(ctx context.Context, scheduleID string) {
	sched, err := e.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		logrus.Debugf("[EXECUTOR] Skipping fire for %s: %v", scheduleID, err)
		return
	}
	if !sched.Enabled {
		logrus.Debugf("[EXECUTOR] Skipping fire for %s: schedule disabled", scheduleID)
		return
	}

	conn, err := e.store.GetConnection(ctx, sched.ConnectionID)
	if err != nil {
		logrus.Warnf("[EXECUTOR] Skipping fire for %s: %v", scheduleID, err)
		return
	}
	// Verification is checked at fire time, not creation time.
	if !conn.Verified {
		logrus.Warnf("[EXECUTOR] Skipping fire for %s: platform %s not verified", scheduleID, conn.Type)
		return
	}

	recipients, err := e.store.GetRecipients(ctx, sched.RecipientIDs)
	if err != nil {
		logrus.WithError(err).Errorf("[EXECUTOR] Failed to resolve recipients for %s", scheduleID)
		return
	}

	for _, recipient := range recipients {
		entry := delivery.LogEntry{
			ID:         uuid.NewString(),
			UserID:     sched.UserID,
			ScheduleID: sched.ID,
			Platform:   conn.Type,
			Recipient:  recipient.Identifier,
			Message:    sched.Message,
			SentAt:     time.Now().UTC(),
		}

		if sendErr := e.dispatcher.Dispatch(ctx, conn, recipient.Identifier, sched.Message); sendErr != nil {
			logrus.WithError(sendErr).Warnf("[EXECUTOR] Delivery to %s failed (schedule %s)", recipient.Identifier, sched.ID)
			entry.Status = delivery.StatusFailed
			entry.Error = sendErr.Error()
		} else {
			entry.Status = delivery.StatusSent
		}

		if logErr := e.store.AppendLog(ctx, entry); logErr != nil {
			logrus.WithError(logErr).Errorf("[EXECUTOR] Failed to append delivery log for schedule %s", sched.ID)
		}
	}

	// One last-run update per execution, after all recipient attempts.
	if err := e.store.UpdateScheduleLastRun(ctx, sched.ID, time.Now().UTC()); err != nil {
		logrus.WithError(err).Errorf("[EXECUTOR] Failed to update last run for schedule %s", sched.ID)
	}
}
