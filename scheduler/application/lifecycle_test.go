package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/common"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/schedule"
)

func (f *fixture) draftOnce(t *testing.T, at time.Time) schedule.Schedule {
	t.Helper()
	conn := f.seedConnection(t, "user1", true)
	r1 := f.seedRecipient(t, "user1", conn.ID, "a@example.com")
	return schedule.Schedule{
		UserID:       "user1",
		Name:         "reminder",
		ConnectionID: conn.ID,
		RecipientIDs: []string{r1.ID},
		Message:      "do the thing",
		Type:         schedule.TypeOnce,
		ScheduledAt:  &at,
	}
}

func TestLifecycleCreatePersistsAndEnqueues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft := f.draftOnce(t, time.Now().UTC().Add(time.Hour))
	created, err := f.lifecycle.Create(ctx, draft)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created schedule has no id")
	}
	if !created.Enabled {
		t.Fatal("new schedules start enabled")
	}
	if !f.jobs.HasJob(created.ID) {
		t.Fatal("create did not enqueue a job")
	}

	stored, err := f.store.GetSchedule(ctx, created.ID)
	if err != nil {
		t.Fatalf("get schedule: %v", err)
	}
	if stored.Name != "reminder" {
		t.Fatalf("got name %q", stored.Name)
	}
}

func TestLifecycleCreateRejectsBothTriggers(t *testing.T) {
	f := newFixture(t)

	draft := f.draftOnce(t, time.Now().UTC().Add(time.Hour))
	draft.TimeOfDay = "09:00"
	draft.Days = []string{"mon"}

	if _, err := f.lifecycle.Create(context.Background(), draft); err == nil {
		t.Fatal("expected validation error for once schedule with recurrence fields")
	}
}

func TestLifecycleCreateRejectsRecurringWithTimestamp(t *testing.T) {
	f := newFixture(t)

	draft := f.draftOnce(t, time.Now().UTC().Add(time.Hour))
	draft.Type = schedule.TypeRecurring
	draft.TimeOfDay = "09:00"
	draft.Days = []string{"mon"}
	// ScheduledAt stays set from the draft.

	if _, err := f.lifecycle.Create(context.Background(), draft); err == nil {
		t.Fatal("expected validation error for recurring schedule with scheduled_at")
	}
}

func TestLifecycleToggleCancelsAndRestores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.lifecycle.Create(ctx, f.draftOnce(t, time.Now().UTC().Add(time.Hour)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	disabled, err := f.lifecycle.Toggle(ctx, created.ID)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if disabled.Enabled {
		t.Fatal("toggle did not disable")
	}
	if f.jobs.HasJob(created.ID) {
		t.Fatal("disabled schedule still has a job")
	}

	enabled, err := f.lifecycle.Toggle(ctx, created.ID)
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !enabled.Enabled {
		t.Fatal("toggle did not re-enable")
	}
	if !f.jobs.HasJob(created.ID) {
		t.Fatal("re-enabled schedule has no job")
	}
}

func TestLifecycleUpdateReplacesJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.lifecycle.Create(ctx, f.draftOnce(t, time.Now().UTC().Add(time.Hour)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	later := time.Now().UTC().Add(2 * time.Hour)
	created.ScheduledAt = &later
	created.Message = "updated message"
	updated, err := f.lifecycle.Update(ctx, created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Message != "updated message" {
		t.Fatalf("got message %q", updated.Message)
	}
	if n := f.jobs.JobCount(); n != 1 {
		t.Fatalf("got %d jobs after update, want 1", n)
	}
}

func TestLifecycleDeleteRemovesJobAndKeepsLogs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.lifecycle.Create(ctx, f.draftOnce(t, time.Now().UTC().Add(-time.Minute)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Produce a delivery log entry, then delete the schedule.
	f.jobs.Tick(time.Now().UTC())
	if n := f.logCount(t, "user1"); n != 1 {
		t.Fatalf("got %d entries before delete, want 1", n)
	}

	if err := f.lifecycle.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if f.jobs.HasJob(created.ID) {
		t.Fatal("deleted schedule still has a job")
	}
	if _, err := f.lifecycle.Get(ctx, created.ID); !errors.Is(err, common.ErrScheduleNotFound) {
		t.Fatalf("got %v, want ErrScheduleNotFound", err)
	}

	// The delivery record outlives its schedule.
	if n := f.logCount(t, "user1"); n != 1 {
		t.Fatalf("delete dropped delivery logs: %d entries", n)
	}
}

func TestLifecycleRunNowBypassesTrigger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.lifecycle.Create(ctx, f.draftOnce(t, time.Now().UTC().Add(time.Hour)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.lifecycle.RunNow(ctx, created.ID); err != nil {
		t.Fatalf("run now: %v", err)
	}
	if n := f.logCount(t, "user1"); n != 1 {
		t.Fatalf("got %d entries after run-now, want 1", n)
	}
	// The pending trigger is untouched.
	if !f.jobs.HasJob(created.ID) {
		t.Fatal("run-now consumed the scheduled job")
	}
}

func TestLifecycleRecurringCreateSetsNextRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	conn := f.seedConnection(t, "user2", true)
	r1 := f.seedRecipient(t, "user2", conn.ID, "x@example.com")
	draft := schedule.Schedule{
		UserID:       "user2",
		Name:         "standup ping",
		ConnectionID: conn.ID,
		RecipientIDs: []string{r1.ID},
		Message:      "standup in 5",
		Type:         schedule.TypeRecurring,
		TimeOfDay:    "09:00",
		Days:         []string{"mon"},
		Timezone:     "Asia/Kolkata",
	}

	created, err := f.lifecycle.Create(ctx, draft)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.NextRun == nil {
		t.Fatal("recurring schedule has no advisory next run")
	}
	if !created.NextRun.After(time.Now().UTC()) {
		t.Fatalf("next run %v is not in the future", created.NextRun)
	}
	loc, _ := time.LoadLocation("Asia/Kolkata")
	local := created.NextRun.In(loc)
	if local.Weekday() != time.Monday || local.Hour() != 9 || local.Minute() != 0 {
		t.Fatalf("next run lands at %v local, want Monday 09:00", local)
	}
}
