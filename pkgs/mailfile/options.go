package mailfile

import (
	"fmt"
	"path/filepath"

	"github.com/emx-mail/mailfile/pkgs/email"
)

// SendOptions converts the record into a message ready for a Sender.
// Every address is checked for syntax; the first bad one aborts.
func (r *Record) SendOptions() (email.SendOptions, error) {
	var opts email.SendOptions

	if !Valid(r.To) {
		return opts, ErrNoRecipient
	}
	if !Valid(r.User) {
		return opts, ErrNoSender
	}

	// User doubles as the From address. Accounts that log in with a bare
	// name are still sent with that name as the envelope sender.
	if from, err := email.ParseAddress(r.User); err == nil {
		opts.From = from
	} else {
		opts.From = email.Address{Email: r.User}
	}

	to, err := email.ParseAddress(r.To)
	if err != nil {
		return opts, fmt.Errorf("to: %w", err)
	}
	opts.To = []email.Address{to}

	if opts.Cc, err = parseAll(r.Cc); err != nil {
		return opts, fmt.Errorf("cc: %w", err)
	}
	if opts.Bcc, err = parseAll(r.Bcc); err != nil {
		return opts, fmt.Errorf("bcc: %w", err)
	}

	opts.Subject = r.Subject
	opts.TextBody = r.Body

	if Valid(r.AttachmentFile) {
		opts.Attachments = []email.AttachmentPath{{
			Filename: filepath.Base(r.AttachmentFile),
			Path:     r.AttachmentFile,
		}}
	}
	return opts, nil
}

func parseAll(list []string) ([]email.Address, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]email.Address, 0, len(list))
	for _, s := range list {
		a, err := email.ParseAddress(s)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// SMTPConfig returns the transport settings for the record: implicit TLS
// on port 465 with the file's credentials. The port, TLS mode and the
// authentication requirement are fixed. A User written with a display
// name logs in with the bare address.
func (r *Record) SMTPConfig() email.SMTPConfig {
	username := r.User
	if addr, err := email.ParseAddress(r.User); err == nil {
		username = addr.Email
	}
	return email.SMTPConfig{
		Host:        r.Server,
		Port:        email.ImplicitTLSPort,
		Username:    username,
		Password:    r.Password,
		SSL:         true,
		RequireAuth: true,
	}
}
