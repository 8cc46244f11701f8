package deptadmin

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigJSONWithComments(t *testing.T) {
	path := writeConfig(t, "config.json", `{
	// admin page
	"servername": "admin.example.com",
	"locale": "fr",
	"api": {"addr": ":9000", "key_hash": "$2a$10$abc"},
	"web": {
		"remote_url": "http://api.internal/api",
		"timeout": "5s", /* short */
	},
}`)

	c, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "admin.example.com", c.Servername)
	assert.Equal(t, "fr", c.Locale)
	assert.Equal(t, ":9000", c.API.Addr)
	assert.Equal(t, "$2a$10$abc", c.API.KeyHash)
	assert.Equal(t, DefaultAPIDSN, c.API.DSN)
	assert.Equal(t, "http://api.internal/api", c.Web.RemoteURL)
	assert.Equal(t, Duration(5*time.Second), c.Web.Timeout)
	assert.Equal(t, Duration(DefaultSessionTTL), c.Web.SessionTTL)
	assert.Equal(t, DefaultWebAddr, c.Web.Addr)
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
servername: admin.example.com
log_sql: true
web:
  addr: ":8000"
  session_ttl: 2h
  secure_cookie: true
`)

	c, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, c.LogSQL)
	assert.Equal(t, DefaultLocale, c.Locale)
	assert.Equal(t, ":8000", c.Web.Addr)
	assert.Equal(t, Duration(2*time.Hour), c.Web.SessionTTL)
	assert.True(t, c.Web.SecureCookie)
	assert.Equal(t, Duration(DefaultTimeout), c.Web.Timeout)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))

	_, err = LoadConfig(writeConfig(t, "bad.json", `{"web": {"timeout": "soon"}}`))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "bad.yml", "web: [1, 2"))
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, DefaultAPIAddr, c.API.Addr)
	assert.Equal(t, DefaultRemoteURL, c.Web.RemoteURL)
	assert.Equal(t, DefaultLocale, c.Locale)
}
