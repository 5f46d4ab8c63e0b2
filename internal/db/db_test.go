package db

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/finnkampen/internal/config"
)

func writeSelfSignedCA(t *testing.T) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "test-ca"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ca.pem")
	out := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	require.NoError(t, os.WriteFile(path, out, 0o600))
	return path
}

func TestTLSConfig(t *testing.T) {
	path := writeSelfSignedCA(t)

	cfg, err := TLSConfig(path, "db.example.com")
	require.NoError(t, err)
	assert.Equal(t, "db.example.com", cfg.ServerName)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	assert.False(t, cfg.InsecureSkipVerify)
	assert.NotNil(t, cfg.RootCAs)
}

func TestTLSConfigMissingFile(t *testing.T) {
	_, err := TLSConfig(filepath.Join(t.TempDir(), "nope.pem"), "h")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read CA file")
}

func TestTLSConfigNoCertificates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))

	_, err := TLSConfig(path, "h")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no certificates")
}

func TestConnConfigPinsCA(t *testing.T) {
	cfg := &config.Config{
		DatabaseURL: "postgres://u:p@db.example.com:5432/app?sslmode=prefer",
		DBCAFile:    writeSelfSignedCA(t),
	}

	connCfg, err := ConnConfig(cfg)
	require.NoError(t, err)

	require.NotNil(t, connCfg.TLSConfig)
	assert.NotNil(t, connCfg.TLSConfig.RootCAs)
	assert.False(t, connCfg.TLSConfig.InsecureSkipVerify)
	assert.Equal(t, "db.example.com", connCfg.TLSConfig.ServerName)
	assert.Empty(t, connCfg.Fallbacks, "prefer would otherwise retry in plaintext")
}

func TestConnConfigWithoutCAKeepsURLSettings(t *testing.T) {
	cfg := &config.Config{DatabaseURL: "postgres://u:p@localhost:5432/app?sslmode=disable"}

	connCfg, err := ConnConfig(cfg)
	require.NoError(t, err)
	assert.Nil(t, connCfg.TLSConfig)
	assert.Equal(t, "localhost", connCfg.Host)
}

func TestConnConfigBadCA(t *testing.T) {
	cfg := &config.Config{
		DatabaseURL: "postgres://u:p@localhost:5432/app",
		DBCAFile:    filepath.Join(t.TempDir(), "missing.pem"),
	}
	_, err := ConnConfig(cfg)
	require.Error(t, err)
}

func TestSchemaCoversTables(t *testing.T) {
	s := Schema()
	for _, name := range []string{
		"nhl.teams", "nhl.games", "nhl.players", "nhl.player_game_stats",
		"nhl.nightly_nation_agg", "nhl.season_nation_agg", "nhl.nation_overrides",
		"nhl.mv_nightly_fin_swe",
	} {
		assert.True(t, strings.Contains(s, name), name)
	}
	assert.Contains(t, s, "CREATE SCHEMA IF NOT EXISTS nhl")
}
