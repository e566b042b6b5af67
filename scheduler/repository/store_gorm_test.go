package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/common"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/delivery"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/platform"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/schedule"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newStore(t *testing.T) *GormStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	store := NewGormStore(db)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestScheduleRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	sched := schedule.Schedule{
		ID:           uuid.NewString(),
		UserID:       "user1",
		Name:         "standup ping",
		ConnectionID: "conn1",
		RecipientIDs: []string{"r1", "r2", "r3"},
		Message:      "standup in 5",
		Type:         schedule.TypeRecurring,
		TimeOfDay:    "09:00",
		Days:         []string{"mon", "thu"},
		Timezone:     "Asia/Kolkata",
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateSchedule(ctx, sched); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetSchedule(ctx, sched.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != sched.Name || got.Message != sched.Message {
		t.Fatalf("fields lost in round trip: %+v", got)
	}
	if len(got.RecipientIDs) != 3 || got.RecipientIDs[0] != "r1" || got.RecipientIDs[2] != "r3" {
		t.Fatalf("recipient ids mangled: %v", got.RecipientIDs)
	}
	if len(got.Days) != 2 || got.Days[0] != "mon" || got.Days[1] != "thu" {
		t.Fatalf("days mangled: %v", got.Days)
	}
	if got.Timezone != "Asia/Kolkata" {
		t.Fatalf("timezone lost: %q", got.Timezone)
	}
	if got.TimeOfDay != "09:00" {
		t.Fatalf("time of day lost: %q", got.TimeOfDay)
	}
}

func TestGetScheduleNotFound(t *testing.T) {
	store := newStore(t)
	if _, err := store.GetSchedule(context.Background(), "missing"); !errors.Is(err, common.ErrScheduleNotFound) {
		t.Fatalf("got %v, want ErrScheduleNotFound", err)
	}
}

func TestUpdateScheduleNotFound(t *testing.T) {
	store := newStore(t)
	err := store.UpdateSchedule(context.Background(), schedule.Schedule{ID: "missing", UserID: "u"})
	if !errors.Is(err, common.ErrScheduleNotFound) {
		t.Fatalf("got %v, want ErrScheduleNotFound", err)
	}
}

func TestListEnabledSchedulesFiltersDisabled(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	at := time.Now().UTC().Add(time.Hour)
	for _, enabled := range []bool{true, true, false} {
		sched := schedule.Schedule{
			ID:           uuid.NewString(),
			UserID:       "user1",
			Name:         "s",
			ConnectionID: "conn1",
			RecipientIDs: []string{"r1"},
			Message:      "m",
			Type:         schedule.TypeOnce,
			ScheduledAt:  &at,
			Enabled:      enabled,
		}
		if err := store.CreateSchedule(ctx, sched); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	enabled, err := store.ListEnabledSchedules(ctx)
	if err != nil {
		t.Fatalf("list enabled: %v", err)
	}
	if len(enabled) != 2 {
		t.Fatalf("got %d enabled schedules, want 2", len(enabled))
	}
}

func TestUpsertConnectionKeepsSingleRowPerPlatform(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first := platform.Connection{
		UserID:   "user1",
		Type:     platform.TypeWhatsApp,
		Verified: false,
	}
	if err := store.UpsertConnection(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	stored, err := store.GetConnectionByUserAndType(ctx, "user1", platform.TypeWhatsApp)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.ID == "" {
		t.Fatal("upsert did not assign an id")
	}

	second := platform.Connection{
		UserID:      "user1",
		Type:        platform.TypeWhatsApp,
		Verified:    true,
		PhoneNumber: "15551234567",
	}
	if err := store.UpsertConnection(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	after, err := store.GetConnectionByUserAndType(ctx, "user1", platform.TypeWhatsApp)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if after.ID != stored.ID {
		t.Fatalf("upsert changed row identity: %s -> %s", stored.ID, after.ID)
	}
	if !after.Verified || after.PhoneNumber != "15551234567" {
		t.Fatalf("update not applied: %+v", after)
	}

	all, err := store.ListConnections(ctx, "user1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d connections, want 1", len(all))
	}
}

func TestSetConnectionVerifiedAndClearSession(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	conn := platform.Connection{
		UserID:      "user1",
		Type:        platform.TypeWhatsApp,
		Verified:    true,
		SessionData: "encrypted-blob",
	}
	if err := store.UpsertConnection(ctx, conn); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := store.SetConnectionVerified(ctx, "user1", platform.TypeWhatsApp, false); err != nil {
		t.Fatalf("unverify: %v", err)
	}
	if err := store.ClearConnectionSession(ctx, "user1", platform.TypeWhatsApp); err != nil {
		t.Fatalf("clear session: %v", err)
	}

	after, err := store.GetConnectionByUserAndType(ctx, "user1", platform.TypeWhatsApp)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if after.Verified {
		t.Fatal("connection still verified")
	}
	if after.SessionData != "" {
		t.Fatalf("session data not cleared: %q", after.SessionData)
	}
}

func TestGetRecipientsPreservesRequestedOrder(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	ids := make([]string, 3)
	for i, name := range []string{"alice", "bob", "carol"} {
		r := platform.Recipient{
			ID:           uuid.NewString(),
			UserID:       "user1",
			ConnectionID: "conn1",
			Name:         name,
			Identifier:   name + "@example.com",
		}
		if err := store.CreateRecipient(ctx, r); err != nil {
			t.Fatalf("create recipient: %v", err)
		}
		ids[i] = r.ID
	}

	// Request in reverse order, with one unknown id mixed in.
	request := []string{ids[2], "unknown", ids[0]}
	got, err := store.GetRecipients(ctx, request)
	if err != nil {
		t.Fatalf("get recipients: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d recipients, want 2", len(got))
	}
	if got[0].Name != "carol" || got[1].Name != "alice" {
		t.Fatalf("order not preserved: %s, %s", got[0].Name, got[1].Name)
	}
}

func TestDeleteRecipientNotFound(t *testing.T) {
	store := newStore(t)
	if err := store.DeleteRecipient(context.Background(), "missing"); !errors.Is(err, common.ErrRecipientNotFound) {
		t.Fatalf("got %v, want ErrRecipientNotFound", err)
	}
}

func TestListLogsNewestFirstWithPaging(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		entry := delivery.LogEntry{
			ID:         uuid.NewString(),
			UserID:     "user1",
			ScheduleID: "sched1",
			Platform:   platform.TypeEmail,
			Recipient:  "a@example.com",
			Message:    "m",
			Status:     delivery.StatusSent,
			SentAt:     base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.AppendLog(ctx, entry); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	page, err := store.ListLogs(ctx, "user1", 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("got %d entries, want 2", len(page))
	}
	if !page[0].SentAt.After(page[1].SentAt) {
		t.Fatalf("not newest first: %v then %v", page[0].SentAt, page[1].SentAt)
	}

	rest, err := store.ListLogs(ctx, "user1", 10, 2)
	if err != nil {
		t.Fatalf("list offset: %v", err)
	}
	if len(rest) != 3 {
		t.Fatalf("got %d entries at offset 2, want 3", len(rest))
	}

	other, err := store.ListLogs(ctx, "someone-else", 10, 0)
	if err != nil {
		t.Fatalf("list other user: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("leaked %d entries across users", len(other))
	}
}
