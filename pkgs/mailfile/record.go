// Package mailfile reads the line-oriented email description format:
//
//	Server: smtp.example.com
//	User: me@example.com
//	Password: secret
//	To: you@example.com
//	CC: a@example.com, b@example.com
//	BCC: c@example.com
//	Subject: Hello
//	Body: first line of the body
//	more body lines...
//
// Keys are case-insensitive and may appear in any order. The first line
// starting with "body" switches the reader into body mode for the rest of
// the file.
package mailfile

import "errors"

var (
	// ErrFile is returned when the email file cannot be opened or read.
	ErrFile = errors.New("cannot read email file")
	// ErrMalformedLine is returned for a header line without a colon.
	ErrMalformedLine = errors.New("malformed field")
	// ErrNoRecipient is returned when no To: address was given.
	ErrNoRecipient = errors.New("no recipient: To field is required")
	// ErrNoSender is returned when no User: was given. It is both the
	// login and the From address.
	ErrNoSender = errors.New("no sender: User field is required")
)

// Record holds the fields parsed from an email file. An empty string means
// the field was not set.
type Record struct {
	Server   string
	User     string
	Password string
	To       string
	Cc       []string
	Bcc      []string
	Subject  string
	Body     string

	// AttachmentFile is supplied by the caller, not by the file.
	AttachmentFile string
}

// Valid reports whether a field holds a value.
func Valid(field string) bool {
	return field != ""
}
