package email

import "context"

// Sender delivers a message. Implementations make exactly one attempt.
type Sender interface {
	Send(ctx context.Context, opts SendOptions) error
}

var (
	_ Sender = (*SMTPClient)(nil)
	_ Sender = (*PreviewSender)(nil)
)
