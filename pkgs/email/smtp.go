package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// ImplicitTLSPort is the SMTP submission port for implicit TLS (SMTPS).
const ImplicitTLSPort = 465

// SMTPClient represents an SMTP client
type SMTPClient struct {
	config SMTPConfig
	conn   net.Conn
	client *smtp.Client
	logger *slog.Logger
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	SSL      bool
	StartTLS bool

	// RequireAuth refuses to connect without a Username.
	RequireAuth bool

	// TLSConfig overrides the client TLS settings. ServerName defaults to
	// Host when unset.
	TLSConfig *tls.Config
}

// NewSMTPClient creates a new SMTP client
func NewSMTPClient(config SMTPConfig) *SMTPClient {
	return &SMTPClient{
		config: config,
		logger: slog.Default(),
	}
}

// SetLogger replaces the logger used for connection diagnostics.
func (c *SMTPClient) SetLogger(l *slog.Logger) {
	if l != nil {
		c.logger = l
	}
}

func (c *SMTPClient) tlsConfig() *tls.Config {
	if c.config.TLSConfig == nil {
		return &tls.Config{ServerName: c.config.Host}
	}
	cfg := c.config.TLSConfig.Clone()
	if cfg.ServerName == "" {
		cfg.ServerName = c.config.Host
	}
	return cfg
}

// Connect establishes an authenticated connection to the SMTP server.
func (c *SMTPClient) Connect(ctx context.Context) error {
	if c.config.Host == "" {
		return fmt.Errorf("%w: no server configured", ErrConnect)
	}
	if c.config.RequireAuth && c.config.Username == "" {
		return fmt.Errorf("%w: no username configured", ErrAuth)
	}
	port := c.config.Port
	if port == 0 {
		port = ImplicitTLSPort
	}
	addr := net.JoinHostPort(c.config.Host, strconv.Itoa(port))
	tlsCfg := c.tlsConfig()

	c.logger.Debug("dialing SMTP server", "addr", addr, "ssl", c.config.SSL, "starttls", c.config.StartTLS)

	var conn net.Conn
	var err error
	if c.config.SSL {
		d := &tls.Dialer{Config: tlsCfg}
		conn, err = d.DialContext(ctx, "tcp", addr)
	} else {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrConnect, addr, err)
	}
	stop := closeOnDone(ctx, conn)
	defer stop()

	var client *smtp.Client
	if c.config.StartTLS && !c.config.SSL {
		client, err = smtp.NewClientStartTLS(conn, tlsCfg)
		if err != nil {
			conn.Close()
			return fmt.Errorf("%w %s: %w", ErrConnect, addr, ctxErr(ctx, err))
		}
	} else {
		client = smtp.NewClient(conn)
	}

	if c.config.Username != "" {
		auth := sasl.NewPlainClient("", c.config.Username, c.config.Password)
		if err := client.Auth(auth); err != nil {
			client.Close()
			return fmt.Errorf("%w: %w", ErrAuth, ctxErr(ctx, err))
		}
		c.logger.Debug("authenticated", "user", c.config.Username)
	}

	c.conn = conn
	c.client = client
	return nil
}

// closeOnDone closes conn when ctx is done, unblocking any pending read or
// write. The returned func detaches it.
func closeOnDone(ctx context.Context, conn net.Conn) func() bool {
	return context.AfterFunc(ctx, func() { conn.Close() })
}

// ctxErr reports the context error in place of the I/O error it caused.
func ctxErr(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	return err
}

// Send builds the message and transmits it in a single SMTP transaction.
// The message is assembled before any connection is made, so attachment
// errors never reach the network.
func (c *SMTPClient) Send(ctx context.Context, opts SendOptions) error {
	msg, err := BuildMessage(opts)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	if c.client == nil {
		if err := c.Connect(ctx); err != nil {
			return err
		}
		defer c.Close()
	}

	recipients := Recipients(opts)
	c.logger.Debug("sending message", "from", opts.From.Email, "recipients", len(recipients), "bytes", msg.Len())

	stop := closeOnDone(ctx, c.conn)
	defer stop()
	if err := c.client.SendMail(opts.From.Email, recipients, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrSend, ctxErr(ctx, err))
	}
	return nil
}

// Close ends the SMTP session. It is safe to call more than once.
func (c *SMTPClient) Close() error {
	if c.client == nil {
		return nil
	}
	client := c.client
	c.client = nil
	c.conn = nil
	if err := client.Quit(); err != nil {
		client.Close()
		return err
	}
	return nil
}
