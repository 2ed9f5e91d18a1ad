package email

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/gabriel-vasile/mimetype"
)

const defaultAttachmentType = "application/octet-stream"

// BuildMessage assembles an RFC 5322 message from SendOptions.
//
// The result is always multipart/mixed: the first part carries the plain
// text body and each attachment follows as its own part. Bcc recipients
// never appear in the headers. The subject header is omitted when
// opts.Subject is empty.
func BuildMessage(opts SendOptions) (*bytes.Buffer, error) {
	var buf bytes.Buffer

	var header mail.Header
	header.SetDate(time.Now())
	if opts.Subject != "" {
		header.SetSubject(opts.Subject)
	}
	header.SetAddressList("From", []*mail.Address{toMailAddress(opts.From)})

	if len(opts.To) > 0 {
		header.SetAddressList("To", toMailAddresses(opts.To))
	}
	if len(opts.Cc) > 0 {
		header.SetAddressList("Cc", toMailAddresses(opts.Cc))
	}
	header.Set("Message-ID", GenerateMessageID(opts.From.Email))

	mw, err := mail.CreateWriter(&buf, header)
	if err != nil {
		return nil, err
	}

	var th mail.InlineHeader
	th.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	w, err := mw.CreateSingleInline(th)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, opts.TextBody); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	for _, att := range opts.Attachments {
		if err := writeAttachment(mw, att); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}

// writeAttachment streams one file into the multipart writer. The file is
// opened once: the content type is sniffed from its head, then the file is
// rewound and copied.
func writeAttachment(mw *mail.Writer, att AttachmentPath) error {
	f, err := os.Open(att.Path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrAttachment, att.Path, err)
	}
	defer f.Close()

	mediaType, params := detectContentType(f)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: rewind %s: %v", ErrAttachment, att.Path, err)
	}

	var h mail.AttachmentHeader
	h.SetFilename(att.Filename)
	h.SetContentType(mediaType, params)

	w, err := mw.CreateAttachment(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("%w: copy %s: %v", ErrAttachment, att.Path, err)
	}
	return w.Close()
}

// detectContentType is best effort: anything mimetype cannot classify is
// sent as application/octet-stream.
func detectContentType(r io.Reader) (string, map[string]string) {
	m, err := mimetype.DetectReader(r)
	if err != nil {
		return defaultAttachmentType, nil
	}
	mediaType, params, err := mime.ParseMediaType(m.String())
	if err != nil {
		return defaultAttachmentType, nil
	}
	if len(params) == 0 {
		params = nil
	}
	return mediaType, params
}

func toMailAddress(addr Address) *mail.Address {
	return &mail.Address{Name: addr.Name, Address: addr.Email}
}

func toMailAddresses(addrs []Address) []*mail.Address {
	out := make([]*mail.Address, len(addrs))
	for i, addr := range addrs {
		out[i] = toMailAddress(addr)
	}
	return out
}

// ParseAddress parses a single RFC 5322 address such as
// "Jane <jane@example.com>" or "jane@example.com".
func ParseAddress(s string) (Address, error) {
	a, err := mail.ParseAddress(strings.TrimSpace(s))
	if err != nil {
		return Address{}, fmt.Errorf("%w %q: %v", ErrInvalidAddress, s, err)
	}
	return Address{Name: a.Name, Email: a.Address}, nil
}

// GenerateMessageID produces a RFC 5322 compliant Message-ID using the
// domain extracted from the sender's email address.
// Format: <timestamp.random@domain>
func GenerateMessageID(fromEmail string) string {
	domain := "localhost"
	if idx := strings.LastIndex(fromEmail, "@"); idx >= 0 && idx < len(fromEmail)-1 {
		domain = fromEmail[idx+1:]
	}

	b := make([]byte, 8)
	_, _ = rand.Read(b)
	randomPart := hex.EncodeToString(b)

	return fmt.Sprintf("<%d.%s@%s>", time.Now().UnixNano(), randomPart, domain)
}
