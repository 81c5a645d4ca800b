package email

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ConsoleProvider writes messages to the log instead of sending them
type ConsoleProvider struct {
	log *zap.Logger
}

// NewConsoleProvider creates a provider that only logs
func NewConsoleProvider(log *zap.Logger) *ConsoleProvider {
	return &ConsoleProvider{log: log}
}

// Name implements Provider
func (p *ConsoleProvider) Name() string { return "console" }

// Send implements Provider
func (p *ConsoleProvider) Send(_ context.Context, msg Message) error {
	p.log.Info("Email (not sent)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", htmlToText(msg.HTML)),
	)
	return nil
}

// htmlToText returns the visible text of an HTML document with whitespace collapsed
func htmlToText(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var (
		parts []string
		skip  int
	)

	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(parts, " ")
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == "style" || string(name) == "script" {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); (string(name) == "style" || string(name) == "script") && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			if text := strings.Join(strings.Fields(string(z.Text())), " "); text != "" {
				parts = append(parts, text)
			}
		}
	}
}
