package email

import (
	"context"
	"sync"

	"circulate-backend/application/ports"

	"go.uber.org/zap"
)

// MockProvider logs sends instead of delivering them. Used for local
// development and tests.
type MockProvider struct {
	logger *zap.Logger

	mu   sync.Mutex
	sent []ports.MailMessage
}

// NewMockProvider creates a mailer that only records messages.
func NewMockProvider(logger *zap.Logger) *MockProvider {
	return &MockProvider{logger: logger}
}

// Send records the message without delivering it.
func (p *MockProvider) Send(_ context.Context, msg ports.MailMessage) error {
	p.mu.Lock()
	p.sent = append(p.sent, msg)
	p.mu.Unlock()

	p.logger.Info("MOCK MAIL",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("htmlBytes", len(msg.HTML)),
	)
	return nil
}

// Sent returns a copy of everything recorded so far.
func (p *MockProvider) Sent() []ports.MailMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ports.MailMessage, len(p.sent))
	copy(out, p.sent)
	return out
}
