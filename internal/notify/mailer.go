package notify

import (
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Mailer sends transactional mail. Callers treat sending as best effort:
// a failed notification never fails the business operation that triggered it.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer delivers through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}

// LogMailer is used when no SMTP relay is configured: it logs the message
// instead of sending it.
type LogMailer struct{}

func (LogMailer) Send(to, subject, htmlBody string) error {
	logger.Info().Str("to", to).Str("subject", subject).Msg("mail not configured, logging instead")
	return nil
}
