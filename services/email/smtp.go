package email

import (
	"context"

	"gopkg.in/gomail.v2"
)

// SMTPProvider sends mail through an SMTP relay
type SMTPProvider struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

// NewSMTPProvider creates a new SMTP provider
func NewSMTPProvider(host string, port int, user, password, from, fromName string) *SMTPProvider {
	return &SMTPProvider{
		dialer:   gomail.NewDialer(host, port, user, password),
		from:     from,
		fromName: fromName,
	}
}

// Name implements Provider
func (p *SMTPProvider) Name() string { return "smtp" }

// Send implements Provider. gomail has no context support; ctx is only checked before dialing.
func (p *SMTPProvider) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.from, p.fromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	return p.dialer.DialAndSend(m)
}
