package schedule

import (
	"fmt"
	"time"

	"github.com/sayedabdulkarim/message-scheduler/pkg/timeutils"
)

// Type distinguishes one-shot from recurring schedules.
type Type string

const (
	TypeOnce      Type = "once"
	TypeRecurring Type = "recurring"
)

// Schedule is a user-defined dispatch plan. Exactly one of ScheduledAt
// (for once) or TimeOfDay+Days (for recurring) carries the trigger.
type Schedule struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Name         string     `json:"name"`
	ConnectionID string     `json:"platform_id"`
	RecipientIDs []string   `json:"recipients"`
	Message      string     `json:"message"`
	Type         Type       `json:"schedule_type"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	TimeOfDay    string     `json:"time,omitempty"` // HH:MM
	Days         []string   `json:"days,omitempty"` // short names: mon, tue, ...
	Timezone     string     `json:"timezone,omitempty"`
	Enabled      bool       `json:"is_enabled"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	NextRun      *time.Time `json:"next_run,omitempty"` // advisory
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Validate checks the trigger invariant: a once schedule carries only a
// timestamp, a recurring schedule carries only time-of-day plus weekdays.
func (s Schedule) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if s.ConnectionID == "" {
		return fmt.Errorf("platform id is required")
	}
	if s.Message == "" {
		return fmt.Errorf("message is required")
	}
	if len(s.RecipientIDs) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	switch s.Type {
	case TypeOnce:
		if s.ScheduledAt == nil {
			return fmt.Errorf("once schedule requires scheduled_at")
		}
		if s.TimeOfDay != "" || len(s.Days) > 0 {
			return fmt.Errorf("once schedule must not set time or days")
		}
	case TypeRecurring:
		if s.ScheduledAt != nil {
			return fmt.Errorf("recurring schedule must not set scheduled_at")
		}
		if _, _, err := timeutils.ParseTimeOfDay(s.TimeOfDay); err != nil {
			return err
		}
		if _, err := timeutils.ParseWeekdays(s.Days); err != nil {
			return err
		}
		if _, err := time.LoadLocation(s.Location()); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
		}
	default:
		return fmt.Errorf("invalid schedule type: %q", s.Type)
	}
	return nil
}

// Location returns the declared timezone, defaulting to UTC.
func (s Schedule) Location() string {
	if s.Timezone == "" {
		return "UTC"
	}
	return s.Timezone
}

// CronSpec derives the recurrence rule for a recurring schedule.
func (s Schedule) CronSpec() (string, error) {
	if s.Type != TypeRecurring {
		return "", fmt.Errorf("cron spec only applies to recurring schedules")
	}
	return timeutils.CronSpec(s.TimeOfDay, s.Days, s.Location())
}

// ComputeNextRun returns the advisory next firing instant after from.
func (s Schedule) ComputeNextRun(from time.Time) (*time.Time, error) {
	switch s.Type {
	case TypeOnce:
		if s.ScheduledAt == nil {
			return nil, nil
		}
		at := *s.ScheduledAt
		return &at, nil
	case TypeRecurring:
		loc, err := time.LoadLocation(s.Location())
		if err != nil {
			return nil, err
		}
		next, err := timeutils.NextOccurrence(s.Days, s.TimeOfDay, loc, from)
		if err != nil {
			return nil, err
		}
		return &next, nil
	}
	return nil, nil
}
