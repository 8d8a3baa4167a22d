// Package email delivers circulation digests through a pluggable mail
// provider.
package email

import (
	"context"
	"time"

	"circulate-backend/application/ports"
	appErrors "circulate-backend/pkg/errors"

	"github.com/mailgun/mailgun-go/v4"
	"go.uber.org/zap"
)

// sendTimeout bounds a single provider call; the host invocation timeout
// is much larger and should not be eaten by one slow send.
const sendTimeout = 30 * time.Second

// MailgunProvider sends email via the Mailgun API.
type MailgunProvider struct {
	client *mailgun.MailgunImpl
	logger *zap.Logger
}

// NewMailgunProvider creates a Mailgun-backed mailer.
func NewMailgunProvider(domain, apiKey string, logger *zap.Logger) *MailgunProvider {
	return &MailgunProvider{
		client: mailgun.NewMailgun(domain, apiKey),
		logger: logger,
	}
}

// Send delivers one message.
func (p *MailgunProvider) Send(ctx context.Context, msg ports.MailMessage) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	message := p.client.NewMessage(msg.From, msg.Subject, "", msg.To)
	message.SetHtml(msg.HTML)

	start := time.Now()
	_, id, err := p.client.Send(ctx, message)
	if err != nil {
		p.logger.Error("Mailgun send failed",
			zap.String("to", msg.To),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return appErrors.NewExternalError("mailgun", err)
	}

	p.logger.Info("Mail sent",
		zap.String("to", msg.To),
		zap.String("messageID", id),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
