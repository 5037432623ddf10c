package services

import (
	"context"

	"rigbook/config"

	logger "github.com/Bparsons0904/goLogger"
	mail "github.com/wneessen/go-mail"
)

// Mailer is the notification dispatch boundary. The workflow never retries a
// send; a failed dispatch is logged and covered by a human resend.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type smtpMailer struct {
	client *mail.Client
	from   string
	log    logger.Logger
}

// NewMailer returns the SMTP dispatcher, or a log-only dispatcher when no
// SMTP host is configured (development mode).
func NewMailer(config config.Config) (Mailer, error) {
	log := logger.New("mailer").Function("NewMailer")

	if config.SMTPHost == "" {
		log.Info("SMTP not configured, using log-only mailer")
		return &logMailer{log: logger.New("mailer")}, nil
	}

	opts := []mail.Option{
		mail.WithPort(config.SMTPPort),
	}
	if config.SMTPUser != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(config.SMTPUser),
			mail.WithPassword(config.SMTPPassword),
		)
	}

	client, err := mail.NewClient(config.SMTPHost, opts...)
	if err != nil {
		return nil, log.Err("failed to create smtp client", err, "host", config.SMTPHost)
	}

	return &smtpMailer{
		client: client,
		from:   config.MailFrom,
		log:    logger.New("mailer"),
	}, nil
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	log := m.log.Function("Send").TraceFromContext(ctx)

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return log.Err("invalid from address", err, "from", m.from)
	}
	if err := msg.To(to); err != nil {
		return log.Err("invalid recipient address", err, "to", to)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return log.Err("failed to send mail", err, "to", to, "subject", subject)
	}

	log.Info("Mail sent", "to", to, "subject", subject)
	return nil
}

// logMailer records sends without dispatching anything.
type logMailer struct {
	log logger.Logger
}

func (m *logMailer) Send(ctx context.Context, to, subject, body string) error {
	m.log.Function("Send").TraceFromContext(ctx).
		Info("Mail suppressed (log-only mailer)", "to", to, "subject", subject)
	return nil
}
