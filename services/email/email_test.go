package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingProvider struct {
	sent []Message
	err  error
}

func (p *recordingProvider) Name() string { return "recording" }

func (p *recordingProvider) Send(_ context.Context, msg Message) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, msg)
	return nil
}

func TestNewMailerFallsBackToConsoleInDevelopment(t *testing.T) {
	m, err := NewMailer(Config{Provider: "smtp", Development: true}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "console", m.Provider())
}

func TestNewMailerFailsWithoutTransportInProduction(t *testing.T) {
	_, err := NewMailer(Config{Provider: "smtp"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewMailer(Config{Provider: "carrier-pigeon", Development: true}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewMailerSelectsProvider(t *testing.T) {
	m, err := NewMailer(Config{Provider: "sendgrid", SendGridAPIKey: "SG.x", From: "no-reply@mindmeld.dev"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "sendgrid", m.Provider())

	m, err = NewMailer(Config{Provider: "smtp", SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUser: "u", SMTPPassword: "p"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "smtp", m.Provider())
}

func TestSendPasswordResetCode(t *testing.T) {
	p := &recordingProvider{}
	m := NewMailerWithProvider(p, "MindMeld", zap.NewNop())

	require.NoError(t, m.SendPasswordResetCode(context.Background(), "ada@example.com", "Ada", "123456", 10*time.Minute))
	require.Len(t, p.sent, 1)
	assert.Equal(t, "MindMeld password reset code", p.sent[0].Subject)
	assert.Contains(t, p.sent[0].HTML, "123456")
	assert.Contains(t, p.sent[0].HTML, "10 minutes")

	p.err = errors.New("relay down")
	assert.Error(t, m.SendPasswordResetCode(context.Background(), "ada@example.com", "Ada", "123456", time.Minute))
}

func TestConsoleProviderLogsText(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewConsoleProvider(zap.New(core))

	require.NoError(t, p.Send(context.Background(), Message{
		To:      "ada@example.com",
		Subject: "Hi",
		HTML:    "<html><head><style>p{color:red}</style></head><body><p>Your code</p><b>654321</b></body></html>",
	}))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Your code 654321", entries[0].ContextMap()["text"])
}
