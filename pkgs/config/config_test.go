package config

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFormat, "")
	t.Setenv(EnvTLSCAFile, "")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Empty(t, cfg.TLS.CAFile)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvTLSCAFile, "/etc/ssl/extra.pem")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/etc/ssl/extra.pem", cfg.TLS.CAFile)
}

func TestLoad_InvalidLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLogLevel, "loud")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "mailfile.yaml", `
logging:
  level: warn
tls:
  server_name: mail.internal
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format, "unset keys keep defaults")
	assert.Equal(t, "mail.internal", cfg.TLS.ServerName)
}

func TestLoadFile_EnvWins(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLogLevel, "error")
	path := writeFile(t, "mailfile.yaml", "logging:\n  level: debug\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadFile_Errors(t *testing.T) {
	clearEnv(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, "bad.yaml", "logging: [unclosed\n")
	_, err = LoadFile(bad)
	assert.Error(t, err)

	wrongFormat := writeFile(t, "fmt.yaml", "logging:\n  format: xml\n")
	_, err = LoadFile(wrongFormat)
	assert.Error(t, err)
}

func TestClientConfig_DefaultIsNil(t *testing.T) {
	var tc TLSConfig
	cfg, err := tc.ClientConfig("smtp.example.com")
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestClientConfig_ServerName(t *testing.T) {
	tc := TLSConfig{ServerName: "mail.internal"}
	cfg, err := tc.ClientConfig("10.0.0.5")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "mail.internal", cfg.ServerName)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
}

func TestClientConfig_CAFile(t *testing.T) {
	tc := TLSConfig{CAFile: writeFile(t, "ca.pem", testCertPEM(t))}
	cfg, err := tc.ClientConfig("smtp.example.com")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "smtp.example.com", cfg.ServerName)
	assert.NotNil(t, cfg.RootCAs)
}

func TestClientConfig_BadCAFile(t *testing.T) {
	tc := TLSConfig{CAFile: writeFile(t, "ca.pem", "not a certificate")}
	_, err := tc.ClientConfig("smtp.example.com")
	assert.Error(t, err)

	tc = TLSConfig{CAFile: filepath.Join(t.TempDir(), "missing.pem")}
	_, err = tc.ClientConfig("smtp.example.com")
	assert.Error(t, err)
}

func testCertPEM(t *testing.T) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
}
