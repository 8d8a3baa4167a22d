package ports

import (
	"context"

	"circulate-backend/domain/model"
)

// MailMessage is one outbound email.
type MailMessage struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Mailer delivers email through the configured provider.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// DigestRenderer turns a joined circulation structure into an HTML body.
type DigestRenderer interface {
	Render(firstName string, digest *model.Digest) (string, error)
}
