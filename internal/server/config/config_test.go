package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()

	require.Equal(t, ":8080", c.EndpointAddrHTTP)
	require.NotEmpty(t, c.DatabaseDSN)
	require.Equal(t, 15*time.Minute, c.AccessTokenValidityDuration)
}

func TestParseJson_Overlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	body := `{
		"endpoint_addr_http": ":9090",
		"database_dsn": "postgres://u:p@h:5432/db",
		"secret_key": "k1",
		"identity_secret": "k2",
		"access_token_validity_duration": "30m",
		"refresh_token_validity_duration": "24h",
		"s3_bucket": "pics"
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	oldArgs := os.Args
	os.Args = []string{"server", "-c", path}
	defer func() { os.Args = oldArgs }()

	c := &Config{}
	c.LoadDefaults()
	parseJson(c)

	require.Equal(t, ":9090", c.EndpointAddrHTTP)
	require.Equal(t, "postgres://u:p@h:5432/db", c.DatabaseDSN)
	require.Equal(t, "k1", c.SecretKey)
	require.Equal(t, "k2", c.IdentitySecret)
	require.Equal(t, 30*time.Minute, c.AccessTokenValidityDuration)
	require.Equal(t, 24*time.Hour, c.RefreshTokenValidityDuration)
	require.Equal(t, "pics", c.S3Bucket)
}

func TestParseFlags_Overrides(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"server", "-a", ":7070", "-t", "5", "-b", "blobs"}
	defer func() { os.Args = oldArgs }()

	c := &Config{}
	c.LoadDefaults()
	parseFlags(c)

	require.Equal(t, ":7070", c.EndpointAddrHTTP)
	require.Equal(t, 5*time.Minute, c.AccessTokenValidityDuration)
	require.Equal(t, "blobs", c.S3Bucket)
}
