package notification

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"event_management/internal/config"
	"event_management/internal/domain"
	"event_management/pkg/logger"
)

type Mailer interface {
	Send(ctx context.Context, n domain.Notification) error
}

type smtpMailer struct {
	cfg config.MailConfig
	log logger.Logger
}

type logMailer struct {
	log logger.Logger
}

// NewMailer returns an SMTP mailer, or one that only logs when no host is set.
func NewMailer(cfg config.MailConfig, log logger.Logger) Mailer {
	if cfg.Host == "" {
		log.Warn("MAIL_HOST not set, notifications will only be logged")
		return &logMailer{log: log}
	}
	return &smtpMailer{cfg: cfg, log: log}
}

// newMessage builds a plain text message with an optional HTML alternative.
func newMessage(from string, n domain.Notification) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := msg.To(n.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", n.To, err)
	}
	msg.Subject(n.Subject)
	msg.SetBodyString(mail.TypeTextPlain, n.Body)
	if n.HTMLBody != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, n.HTMLBody)
	}
	return msg, nil
}

func (m *smtpMailer) Send(ctx context.Context, n domain.Notification) error {
	msg, err := newMessage(m.cfg.From, n)
	if err != nil {
		return err
	}

	opts := []mail.Option{mail.WithPort(m.cfg.Port)}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	if m.cfg.UseTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		m.log.Error("Failed to send mail", "error", err, "kind", n.Kind)
		return fmt.Errorf("send mail: %w", err)
	}

	m.log.Info("Mail sent", "kind", n.Kind)
	return nil
}

func (m *logMailer) Send(_ context.Context, n domain.Notification) error {
	m.log.Info("Notification", "kind", n.Kind, "to", n.To, "subject", n.Subject)
	return nil
}
