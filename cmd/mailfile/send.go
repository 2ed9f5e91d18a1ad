package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"

	"github.com/emx-mail/mailfile/pkgs/email"
	"github.com/emx-mail/mailfile/pkgs/mailfile"
)

// senderFactory picks the transport for a parsed record.
type senderFactory func(a *app, rec *mailfile.Record) (email.Sender, error)

// senderFor is replaced in tests.
var senderFor senderFactory = defaultSender

func defaultSender(a *app, rec *mailfile.Record) (email.Sender, error) {
	if a.dryRun {
		return email.NewPreviewSenderWithWriter(a.stdout), nil
	}
	return newSMTPClient(rec, a.cfg.TLS.ClientConfig, a.logger)
}

func newSMTPClient(rec *mailfile.Record, tlsFor func(host string) (*tls.Config, error), logger *slog.Logger) (*email.SMTPClient, error) {
	smtpCfg := rec.SMTPConfig()
	tlsCfg, err := tlsFor(smtpCfg.Host)
	if err != nil {
		return nil, err
	}
	smtpCfg.TLSConfig = tlsCfg

	client := email.NewSMTPClient(smtpCfg)
	client.SetLogger(logger)
	return client, nil
}

func (a *app) handleSend(ctx context.Context, emailFile, attachment string) error {
	p, err := mailfile.ParseFileWith(emailFile)
	if err != nil {
		return err
	}
	rec := p.Record()
	rec.AttachmentFile = attachment

	for _, key := range p.Ignored() {
		a.logger.Debug("ignoring unknown field", "key", key)
	}
	a.logger.Debug("parsed email file",
		"file", emailFile,
		"server", rec.Server,
		"user", rec.User,
		"to", rec.To,
		"cc", len(rec.Cc),
		"bcc", len(rec.Bcc),
		"subject", mailfile.Valid(rec.Subject),
		"body_bytes", len(rec.Body),
		"attachment", rec.AttachmentFile,
	)

	opts, err := rec.SendOptions()
	if err != nil {
		return err
	}

	sender, err := a.newSender(a, rec)
	if err != nil {
		return err
	}
	if err := sender.Send(ctx, opts); err != nil {
		return err
	}

	if !a.dryRun {
		a.logger.Debug("email sent", "server", rec.Server, "recipients", len(email.Recipients(opts)))
		printSent(a.stdout)
	}
	return nil
}

func printSent(w io.Writer) {
	fmt.Fprintln(w, "Email sent successfully")
}
