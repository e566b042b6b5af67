package platform

import "time"

// Type is the closed set of delivery platforms.
type Type string

const (
	TypeEmail    Type = "email"
	TypeWhatsApp Type = "whatsapp"
	TypeTelegram Type = "telegram"
)

// Valid reports whether t is a known platform tag.
func (t Type) Valid() bool {
	switch t {
	case TypeEmail, TypeWhatsApp, TypeTelegram:
		return true
	}
	return false
}

// Connection is a per-user, per-platform verification record. Dispatch only
// proceeds against connections whose Verified flag is true at fire time.
type Connection struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Type        Type       `json:"platform"`
	Verified    bool       `json:"is_verified"`
	Email       string     `json:"email,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	ChatID      string     `json:"chat_id,omitempty"`
	Username    string     `json:"username,omitempty"`
	SessionData string     `json:"-"` // encrypted at rest
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
	LastUsed    *time.Time `json:"last_used,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Recipient is a delivery target bound to exactly one platform connection.
// Identifier syntax is platform specific and only loosely checked here;
// invalid identifiers surface as failed delivery log entries.
type Recipient struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ConnectionID string    `json:"platform_id"`
	Name         string    `json:"name"`
	Identifier   string    `json:"identifier"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
