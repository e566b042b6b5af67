package repository

import (
	"context"
	"time"

	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/delivery"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/platform"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/schedule"
)

type IStore interface {
	Init(ctx context.Context) error

	// Schedules
	CreateSchedule(ctx context.Context, s schedule.Schedule) error
	GetSchedule(ctx context.Context, id string) (schedule.Schedule, error)
	ListSchedules(ctx context.Context, userID string) ([]schedule.Schedule, error)
	ListEnabledSchedules(ctx context.Context) ([]schedule.Schedule, error)
	UpdateSchedule(ctx context.Context, s schedule.Schedule) error
	UpdateScheduleLastRun(ctx context.Context, id string, at time.Time) error
	DeleteSchedule(ctx context.Context, id string) error

	// Platform connections
	UpsertConnection(ctx context.Context, conn platform.Connection) error
	GetConnection(ctx context.Context, id string) (platform.Connection, error)
	GetConnectionByUserAndType(ctx context.Context, userID string, t platform.Type) (platform.Connection, error)
	ListConnections(ctx context.Context, userID string) ([]platform.Connection, error)
	SetConnectionVerified(ctx context.Context, userID string, t platform.Type, verified bool) error
	ClearConnectionSession(ctx context.Context, userID string, t platform.Type) error

	// Recipients
	CreateRecipient(ctx context.Context, r platform.Recipient) error
	GetRecipients(ctx context.Context, ids []string) ([]platform.Recipient, error)
	ListRecipients(ctx context.Context, userID string) ([]platform.Recipient, error)
	DeleteRecipient(ctx context.Context, id string) error

	// Delivery log (append-only)
	AppendLog(ctx context.Context, entry delivery.LogEntry) error
	ListLogs(ctx context.Context, userID string, limit, offset int) ([]delivery.LogEntry, error)
}
