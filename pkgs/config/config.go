// Package config loads the optional mailfile settings file.
//
// Settings cover logging and TLS trust only. The SMTP server and credentials
// always come from the email file itself.
package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// EnvLogLevel overrides logging.level.
	EnvLogLevel = "MAILFILE_LOG_LEVEL"
	// EnvLogFormat overrides logging.format.
	EnvLogFormat = "MAILFILE_LOG_FORMAT"
	// EnvTLSCAFile overrides tls.ca_file.
	EnvTLSCAFile = "MAILFILE_TLS_CA_FILE"
)

// Config holds the application settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	TLS     TLSConfig     `yaml:"tls"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TLSConfig holds client-side TLS settings for the SMTP connection.
type TLSConfig struct {
	// CAFile is a PEM bundle trusted in addition to the system roots.
	CAFile string `yaml:"ca_file"`
	// ServerName overrides the name verified against the certificate.
	ServerName string `yaml:"server_name"`
}

// Load returns defaults overridden by environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads a YAML settings file as the base layer, then applies
// environment overrides.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvVars()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	return nil
}

// ClientConfig builds the tls.Config used to dial host. It returns nil
// when no TLS setting is customized, leaving the transport defaults.
func (t *TLSConfig) ClientConfig(host string) (*tls.Config, error) {
	if t.CAFile == "" && t.ServerName == "" {
		return nil, nil
	}

	cfg := &tls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	}
	if t.ServerName != "" {
		cfg.ServerName = t.ServerName
	}

	if t.CAFile != "" {
		pem, err := os.ReadFile(t.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in CA file %s", t.CAFile)
		}
		cfg.RootCAs = pool
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.Logging.Level = "info"
	c.Logging.Format = "text"
}

// applyEnvVars overrides configuration with non-empty environment values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
	if v := os.Getenv(EnvTLSCAFile); v != "" {
		c.TLS.CAFile = v
	}
}
