// Package mailer sends transactional email over SMTP using go-mail.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	mail "github.com/wneessen/go-mail"

	"otka-backend/internal/service"
)

// Config holds SMTP connection parameters.
type Config struct {
	Host     string
	Port     int
	Username string // optional, some relays allow unauthenticated send
	Password string // optional
	From     string // sender address
	FromName string // optional sender display name
}

// SMTPSender implements service.MailSender. TLS mode follows the port:
// implicit TLS on 465, mandatory STARTTLS on 587, opportunistic elsewhere.
type SMTPSender struct {
	config Config
}

func NewSMTPSender(config Config) *SMTPSender {
	return &SMTPSender{config: config}
}

// Send dispatches one message, attaching the PDF when present.
func (s *SMTPSender) Send(ctx context.Context, m service.MailMessage) error {
	msg := mail.NewMsg()

	if s.config.FromName != "" {
		if err := msg.FromFormat(s.config.FromName, s.config.From); err != nil {
			return fmt.Errorf("invalid from address: %w", err)
		}
	} else {
		if err := msg.From(s.config.From); err != nil {
			return fmt.Errorf("invalid from address: %w", err)
		}
	}
	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}

	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Body)

	if len(m.Attachment) > 0 {
		if err := msg.AttachReader(m.AttachmentName, bytes.NewReader(m.Attachment),
			mail.WithFileContentType("application/pdf")); err != nil {
			return fmt.Errorf("failed to attach %s: %w", m.AttachmentName, err)
		}
	}

	client, err := mail.NewClient(s.config.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("mailer: sent %q to %s", m.Subject, m.To)
	return nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTimeout(30 * time.Second),
	}

	switch s.config.Port {
	case 465:
		opts = append(opts, mail.WithSSL())
	case 587:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	if s.config.Username != "" && s.config.Password != "" {
		opts = append(opts,
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
			mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
		)
	}

	return opts
}
