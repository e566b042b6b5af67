package email

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/platform"
	"github.com/sirupsen/logrus"
)

// Sender delivers messages over SMTP (STARTTLS on the submission port).
type Sender struct {
	host string
	port string
	user string
	pass string
	from string
}

func NewSender(host, port, user, pass, from string) *Sender {
	if from == "" {
		from = user
	}
	return &Sender{host: host, port: port, user: user, pass: pass, from: from}
}

// Send delivers the message to a raw email address. The context deadline
// does not reach into net/smtp; configuration errors and transport failures
// return immediately instead.
func (s *Sender) Send(ctx context.Context, _ platform.Connection, identifier, message string) error {
	if s.host == "" || s.user == "" {
		return fmt.Errorf("smtp transport not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := []byte(
		fmt.Sprintf("From: %s\r\n", s.from) +
			fmt.Sprintf("To: %s\r\n", identifier) +
			"Subject: Scheduled Message\r\n" +
			fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
			"\r\n" +
			message,
	)

	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	if err := smtp.SendMail(s.host+":"+s.port, auth, s.from, []string{identifier}, msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	logrus.Debugf("[EMAIL] Delivered message to %s", identifier)
	return nil
}
