package delivery

import (
	"context"
	"time"

	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/platform"
)

// Status of a single delivery attempt.
type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// LogEntry is the immutable audit record of one (schedule, recipient)
// dispatch attempt. Entries are append-only and never mutated.
type LogEntry struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user_id"`
	ScheduleID string        `json:"schedule_id"`
	Platform   platform.Type `json:"platform"`
	Recipient  string        `json:"recipient"`
	Message    string        `json:"message"`
	Status     Status        `json:"status"`
	Error      string        `json:"error,omitempty"`
	SentAt     time.Time     `json:"sent_at"`
}

// Sender delivers one message to one recipient on one platform. A sender
// whose transport is unreachable must fail fast rather than hang.
type Sender interface {
	Send(ctx context.Context, conn platform.Connection, identifier, message string) error
}
