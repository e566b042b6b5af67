package whatsapp

// Event codes pushed to the owning user's live connection.
const (
	EventQR           = "whatsapp:qr"
	EventReady        = "whatsapp:ready"
	EventDisconnected = "whatsapp:disconnected"
)

// Event is a status update for one user's WhatsApp session.
type Event struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// Notifier pushes events to a user's live connection. Delivery is best
// effort, at most once: no acknowledgment, no retry. A client that missed a
// QR event re-requests by reconnecting.
type Notifier interface {
	Notify(userID string, event Event)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) Notify(string, Event) {}
