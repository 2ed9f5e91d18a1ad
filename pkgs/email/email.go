package email

import (
	"errors"
	"time"
)

var (
	// ErrInvalidAddress is returned when a recipient or sender address
	// cannot be parsed.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrAttachment is returned when an attachment cannot be read.
	ErrAttachment = errors.New("attachment error")
	// ErrConnect is returned when the SMTP server cannot be reached.
	ErrConnect = errors.New("failed to connect to SMTP server")
	// ErrAuth is returned when the SMTP server rejects the credentials.
	ErrAuth = errors.New("SMTP authentication failed")
	// ErrSend is returned when the server refuses the message.
	ErrSend = errors.New("failed to send email")
)

// Message represents an assembled email message as read back from its
// RFC 5322 form.
type Message struct {
	// Envelope
	From    []Address
	To      []Address
	Cc      []Address
	Subject string
	Date    time.Time

	// Content
	TextBody string
	HTMLBody string

	MessageID   string
	Attachments []Attachment

	// Parts counts the top-level MIME parts of a multipart message.
	Parts int
}

// Address represents an email address
type Address struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// String formats the address as "Name <email>" or just "email".
func (a Address) String() string {
	if a.Name != "" {
		return a.Name + " <" + a.Email + ">"
	}
	return a.Email
}

// Attachment represents an email attachment
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// SendOptions represents options for sending an email
type SendOptions struct {
	From        Address
	To          []Address
	Cc          []Address
	Bcc         []Address
	Subject     string
	TextBody    string
	Attachments []AttachmentPath
}

// AttachmentPath represents a file attachment
type AttachmentPath struct {
	Filename string
	Path     string
}

// Recipients returns the SMTP envelope recipients: To, then Cc, then Bcc.
func Recipients(opts SendOptions) []string {
	recipients := make([]string, 0, len(opts.To)+len(opts.Cc)+len(opts.Bcc))
	for _, addr := range opts.To {
		recipients = append(recipients, addr.Email)
	}
	for _, addr := range opts.Cc {
		recipients = append(recipients, addr.Email)
	}
	for _, addr := range opts.Bcc {
		recipients = append(recipients, addr.Email)
	}
	return recipients
}
