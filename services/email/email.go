package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sahilchouksey/mindmeld-api/utils/metrics"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("mail transport not configured")

// Message is a single outbound HTML email
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Provider delivers messages over one transport
type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Config selects and configures the mail transport
type Config struct {
	Provider    string // smtp or sendgrid
	From        string
	FromName    string
	Development bool

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	SendGridAPIKey string
}

// Mailer sends application emails through a provider chosen at startup.
// It is created once by the server and passed to the components that mail.
type Mailer struct {
	provider Provider
	appName  string
	log      *zap.Logger
}

// NewMailer builds the mailer. Without a configured transport development
// falls back to logging messages; any other environment fails.
func NewMailer(cfg Config, log *zap.Logger) (*Mailer, error) {
	provider, err := newProvider(cfg)
	if errors.Is(err, ErrNotConfigured) && cfg.Development {
		log.Warn("Mail transport not configured, emails will be logged")
		provider = NewConsoleProvider(log)
		err = nil
	}
	if err != nil {
		return nil, err
	}

	appName := cfg.FromName
	if appName == "" {
		appName = "MindMeld"
	}

	return NewMailerWithProvider(provider, appName, log), nil
}

// NewMailerWithProvider builds a mailer around an explicit provider
func NewMailerWithProvider(provider Provider, appName string, log *zap.Logger) *Mailer {
	return &Mailer{provider: provider, appName: appName, log: log}
}

func newProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "sendgrid":
		if cfg.SendGridAPIKey == "" || cfg.From == "" {
			return nil, ErrNotConfigured
		}
		return NewSendGridProvider(cfg.SendGridAPIKey, cfg.From, cfg.FromName), nil
	case "smtp", "":
		if cfg.SMTPHost == "" || cfg.SMTPUser == "" || cfg.SMTPPassword == "" {
			return nil, ErrNotConfigured
		}
		from := cfg.From
		if from == "" {
			from = cfg.SMTPUser
		}
		return NewSMTPProvider(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, from, cfg.FromName), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

// Provider returns the active provider name
func (m *Mailer) Provider() string {
	return m.provider.Name()
}

// Send delivers msg and records the outcome
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	err := m.provider.Send(ctx, msg)
	if err != nil {
		metrics.EmailsTotal.WithLabelValues(m.provider.Name(), "failed").Inc()
		m.log.Error("Failed to send email",
			zap.String("provider", m.provider.Name()),
			zap.String("to", msg.To),
			zap.Error(err),
		)
		return fmt.Errorf("send email: %w", err)
	}

	metrics.EmailsTotal.WithLabelValues(m.provider.Name(), "sent").Inc()
	return nil
}

// SendPasswordResetCode mails a one-time password reset code
func (m *Mailer) SendPasswordResetCode(ctx context.Context, to, name, code string, validFor time.Duration) error {
	return m.Send(ctx, Message{
		To:      to,
		Subject: fmt.Sprintf("%s password reset code", m.appName),
		HTML:    passwordResetBody(m.appName, name, code, validFor),
	})
}
