package email

import (
	"strings"
	"testing"

	gomessage "github.com/emersion/go-message"
)

func parseTestEntity(t *testing.T, raw string) *gomessage.Entity {
	t.Helper()
	entity, err := gomessage.Read(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to parse test entity: %v", err)
	}
	return entity
}

const testMailMultipart = "MIME-Version: 1.0\r\n" +
	"From: Sender <sender@example.com>\r\n" +
	"To: rcpt@example.com\r\n" +
	"Cc: a@example.com, b@example.com\r\n" +
	"Subject: Multipart Test\r\n" +
	"Date: Mon, 10 Feb 2026 08:00:00 +0000\r\n" +
	"Message-Id: <test-multi@example.com>\r\n" +
	"Content-Type: multipart/mixed; boundary=\"TESTBOUNDARY\"\r\n" +
	"\r\n" +
	"--TESTBOUNDARY\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"Content-Disposition: inline\r\n" +
	"\r\n" +
	"Plain text body\r\n" +
	"--TESTBOUNDARY\r\n" +
	"Content-Type: text/plain\r\n" +
	"Content-Disposition: attachment; filename=\"notes.txt\"\r\n" +
	"\r\n" +
	"NOTES\r\n" +
	"--TESTBOUNDARY--\r\n"

func TestReadMessage_Headers(t *testing.T) {
	msg, err := ReadMessage(strings.NewReader(testMailMultipart))
	if err != nil {
		t.Fatal(err)
	}

	if msg.Subject != "Multipart Test" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if len(msg.From) != 1 || msg.From[0].Email != "sender@example.com" || msg.From[0].Name != "Sender" {
		t.Errorf("From = %+v", msg.From)
	}
	if len(msg.To) != 1 || msg.To[0].Email != "rcpt@example.com" {
		t.Errorf("To = %+v", msg.To)
	}
	if len(msg.Cc) != 2 || msg.Cc[1].Email != "b@example.com" {
		t.Errorf("Cc = %+v", msg.Cc)
	}
	if msg.MessageID != "test-multi@example.com" {
		t.Errorf("MessageID = %q", msg.MessageID)
	}
	if msg.Date.IsZero() {
		t.Error("Date not parsed")
	}
}

func TestReadMessage_TextAttachmentIsNotBody(t *testing.T) {
	msg, err := ReadMessage(strings.NewReader(testMailMultipart))
	if err != nil {
		t.Fatal(err)
	}

	if msg.Parts != 2 {
		t.Errorf("Parts = %d, want 2", msg.Parts)
	}
	if strings.TrimSpace(msg.TextBody) != "Plain text body" {
		t.Errorf("TextBody = %q", msg.TextBody)
	}
	if len(msg.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(msg.Attachments))
	}
	if msg.Attachments[0].Filename != "notes.txt" {
		t.Errorf("filename = %q", msg.Attachments[0].Filename)
	}
}

func TestParseEntityBody_PlainText(t *testing.T) {
	raw := "Content-Type: text/plain; charset=utf-8\r\n\r\nHello, World!"
	entity := parseTestEntity(t, raw)
	msg := &Message{}
	parseEntityBody(msg, entity)

	if msg.TextBody != "Hello, World!" {
		t.Errorf("unexpected TextBody: %q", msg.TextBody)
	}
	if msg.Parts != 0 {
		t.Errorf("single part message counted %d parts", msg.Parts)
	}
}

func TestParseEntityBody_NestedPartsNotCounted(t *testing.T) {
	raw := "MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/mixed; boundary=\"OUTER\"\r\n" +
		"\r\n" +
		"--OUTER\r\n" +
		"Content-Type: multipart/alternative; boundary=\"INNER\"\r\n" +
		"\r\n" +
		"--INNER\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Plain version\r\n" +
		"--INNER\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>HTML version</p>\r\n" +
		"--INNER--\r\n" +
		"--OUTER\r\n" +
		"Content-Type: image/png\r\n" +
		"Content-Disposition: attachment; filename=\"image.png\"\r\n" +
		"\r\n" +
		"PNG-DATA\r\n" +
		"--OUTER--\r\n"

	entity := parseTestEntity(t, raw)
	msg := &Message{}
	parseEntityBody(msg, entity)

	if msg.Parts != 2 {
		t.Errorf("Parts = %d, want 2", msg.Parts)
	}
	if msg.TextBody == "" || msg.HTMLBody == "" {
		t.Error("expected text and html bodies from nested multipart")
	}
	if len(msg.Attachments) != 1 || msg.Attachments[0].ContentType != "image/png" {
		t.Errorf("unexpected attachments: %+v", msg.Attachments)
	}
}
