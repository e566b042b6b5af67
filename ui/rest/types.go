package rest

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofiber/fiber/v2"
	pkgError "github.com/sayedabdulkarim/message-scheduler/pkg/error"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/schedule"
)

// AuthenticatedUser extracts the caller identity set by the fronting auth
// layer. Identity verification happens upstream; a missing header is a
// client error, not an auth failure.
func AuthenticatedUser(c *fiber.Ctx) string {
	userID := c.Get("X-User-ID")
	if userID == "" {
		panic(pkgError.ValidationError("missing X-User-ID header"))
	}
	return userID
}

type ScheduleRequest struct {
	Name        string     `json:"name"`
	PlatformID  string     `json:"platform_id"`
	Recipients  []string   `json:"recipients"`
	Message     string     `json:"message"`
	Type        string     `json:"schedule_type"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Time        string     `json:"time"`
	Days        []string   `json:"days"`
	Timezone    string     `json:"timezone"`
}

func (r ScheduleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&r.PlatformID, validation.Required),
		validation.Field(&r.Recipients, validation.Required, validation.Length(1, 0)),
		validation.Field(&r.Message, validation.Required),
		validation.Field(&r.Type, validation.Required, validation.In("once", "recurring")),
	)
}

func (r ScheduleRequest) toDomain(userID string) schedule.Schedule {
	return schedule.Schedule{
		UserID:       userID,
		Name:         r.Name,
		ConnectionID: r.PlatformID,
		RecipientIDs: r.Recipients,
		Message:      r.Message,
		Type:         schedule.Type(r.Type),
		ScheduledAt:  r.ScheduledAt,
		TimeOfDay:    r.Time,
		Days:         r.Days,
		Timezone:     r.Timezone,
	}
}

type RecipientRequest struct {
	PlatformID string `json:"platform_id"`
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
}

func (r RecipientRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PlatformID, validation.Required),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&r.Identifier, validation.Required),
	)
}

type EmailConnectRequest struct {
	Email string `json:"email"`
}

func (r EmailConnectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

type TelegramConnectRequest struct {
	ChatID   string `json:"chat_id"`
	Username string `json:"username"`
}

func (r TelegramConnectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ChatID, validation.Required),
	)
}
