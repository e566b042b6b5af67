package whatsapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/common"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/platform"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"
)

// Sender delivers text messages through the user's live WhatsApp client.
// Delivery fails fast when the user has no connected client; the caller
// records the failure rather than blocking on a pairing flow.
type Sender struct {
	manager *Manager
}

func NewSender(manager *Manager) *Sender {
	return &Sender{manager: manager}
}

func (s *Sender) Send(ctx context.Context, conn platform.Connection, identifier, message string) error {
	client, ok := s.manager.Client(conn.UserID)
	if !ok || !client.IsConnected() {
		return common.ErrNotConnected
	}

	jid, err := resolveJID(identifier)
	if err != nil {
		return err
	}

	msg := &waE2E.Message{
		ExtendedTextMessage: &waE2E.ExtendedTextMessage{
			Text: proto.String(message),
		},
	}

	_, err = client.SendMessage(ctx, jid, msg)
	if err != nil {
		return fmt.Errorf("failed to send whatsapp message: %w", err)
	}
	return nil
}

// resolveJID turns a recipient phone number into a user JID. Numbers may
// carry a leading + and separator characters; only the digits matter.
func resolveJID(identifier string) (types.JID, error) {
	if strings.Contains(identifier, "@") {
		return types.ParseJID(identifier)
	}

	var digits strings.Builder
	for _, r := range identifier {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return types.EmptyJID, fmt.Errorf("invalid whatsapp recipient: %s", identifier)
	}
	return types.NewJID(digits.String(), types.DefaultUserServer), nil
}
