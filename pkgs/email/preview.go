package email

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

const previewBodyLimit = 500

// PreviewSender assembles the message exactly as SMTPClient would and
// prints a summary instead of sending it.
type PreviewSender struct {
	// writer is the output destination, defaulting to os.Stdout.
	writer io.Writer
}

// NewPreviewSender creates a PreviewSender that writes to os.Stdout.
func NewPreviewSender() *PreviewSender {
	return &PreviewSender{writer: os.Stdout}
}

// NewPreviewSenderWithWriter creates a PreviewSender that writes to w.
func NewPreviewSenderWithWriter(w io.Writer) *PreviewSender {
	return &PreviewSender{writer: w}
}

// Send builds the message, reads it back and prints what would be sent.
func (p *PreviewSender) Send(ctx context.Context, opts SendOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := BuildMessage(opts)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}
	size := raw.Len()
	msg, err := ReadMessage(raw)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("=== Email Preview (Dry-Run Mode) ===\n\n")
	fmt.Fprintf(&b, "From:    %s\n", formatAddressList(msg.From))
	fmt.Fprintf(&b, "To:      %s\n", formatAddressList(msg.To))
	if len(msg.Cc) > 0 {
		fmt.Fprintf(&b, "Cc:      %s\n", formatAddressList(msg.Cc))
	}
	if len(opts.Bcc) > 0 {
		fmt.Fprintf(&b, "Bcc:     %s\n", formatAddressList(opts.Bcc))
	}
	if msg.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	} else {
		b.WriteString("Subject: (none)\n")
	}
	fmt.Fprintf(&b, "Parts:   %d (%s)\n", msg.Parts, formatSize(size))
	b.WriteString("\n")

	if len(msg.Attachments) > 0 {
		b.WriteString("Attachments:\n")
		for _, att := range msg.Attachments {
			fmt.Fprintf(&b, "  - %s (%s, %s)\n", att.Filename, att.ContentType, formatSize(int(att.Size)))
		}
		b.WriteString("\n")
	}

	b.WriteString("Text Body:\n")
	preview := truncate(msg.TextBody, previewBodyLimit)
	b.WriteString(preview)
	if !strings.HasSuffix(preview, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n=== End of Preview ===\n")
	b.WriteString("Dry-run mode: email was NOT sent\n")

	_, err = io.WriteString(p.writer, b.String())
	return err
}

func formatAddressList(addrs []Address) string {
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// formatSize formats a byte count into a human-readable string.
func formatSize(bytes int) string {
	const (
		kb = 1024
		mb = kb * 1024
	)

	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// truncate truncates a string to maxLen runes, preserving UTF-8 boundaries.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}
