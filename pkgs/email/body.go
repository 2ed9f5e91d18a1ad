package email

import (
	"fmt"
	"io"
	"strings"

	gomessage "github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
)

// ReadMessage parses a raw RFC 5322 message, such as the output of
// BuildMessage, into a Message.
func ReadMessage(r io.Reader) (*Message, error) {
	entity, err := gomessage.Read(r)
	if err != nil && !gomessage.IsUnknownCharset(err) {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	h := mail.Header{Header: entity.Header}
	msg := &Message{}
	msg.Subject, _ = h.Subject()
	msg.Date, _ = h.Date()
	msg.MessageID, _ = h.MessageID()
	msg.From = headerAddresses(h, "From")
	msg.To = headerAddresses(h, "To")
	msg.Cc = headerAddresses(h, "Cc")

	parseEntityBody(msg, entity)
	return msg, nil
}

func headerAddresses(h mail.Header, key string) []Address {
	list, err := h.AddressList(key)
	if err != nil || len(list) == 0 {
		return nil
	}
	out := make([]Address, len(list))
	for i, a := range list {
		out[i] = Address{Name: a.Name, Email: a.Address}
	}
	return out
}

// parseEntityBody parses a go-message Entity into the Message's TextBody,
// HTMLBody and Attachments fields. It handles both single-part and multipart
// messages (including nested multipart).
func parseEntityBody(msg *Message, entity *gomessage.Entity) {
	if mr := entity.MultipartReader(); mr != nil {
		parseMultipart(msg, mr, true)
	} else {
		parseSinglePart(msg, entity)
	}
}

// parseMultipart iterates over parts of a multipart message. Only parts of
// the outermost multipart are counted in msg.Parts.
func parseMultipart(msg *Message, mr gomessage.MultipartReader, top bool) {
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		if top {
			msg.Parts++
		}
		ct, _, _ := part.Header.ContentType()
		disp, _, _ := part.Header.ContentDisposition()

		switch {
		case disp == "attachment":
			addAttachment(msg, part, ct)

		case strings.HasPrefix(ct, "text/plain") && msg.TextBody == "":
			if body, err := io.ReadAll(part.Body); err == nil {
				msg.TextBody = string(body)
			}

		case strings.HasPrefix(ct, "text/html") && msg.HTMLBody == "":
			if body, err := io.ReadAll(part.Body); err == nil {
				msg.HTMLBody = string(body)
			}

		case strings.HasPrefix(ct, "multipart/"):
			if nested := part.MultipartReader(); nested != nil {
				parseMultipart(msg, nested, false)
			}

		default:
			addAttachment(msg, part, ct)
		}
	}
}

func addAttachment(msg *Message, part *gomessage.Entity, ct string) {
	body, err := io.ReadAll(part.Body)
	if err != nil {
		return
	}
	h := mail.AttachmentHeader{Header: part.Header}
	filename, _ := h.Filename()
	msg.Attachments = append(msg.Attachments, Attachment{
		Filename:    filename,
		ContentType: ct,
		Size:        int64(len(body)),
		Data:        body,
	})
}

// parseSinglePart reads the body of a non-multipart entity.
func parseSinglePart(msg *Message, entity *gomessage.Entity) {
	ct, _, _ := entity.Header.ContentType()
	body, err := io.ReadAll(entity.Body)
	if err != nil {
		return
	}
	if strings.HasPrefix(ct, "text/html") {
		msg.HTMLBody = string(body)
	} else {
		msg.TextBody = string(body)
	}
}
