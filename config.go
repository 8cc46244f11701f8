package deptadmin

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = "config.json"

// Defaults applied by LoadConfig for fields the file leaves empty.
const (
	DefaultAPIAddr    = "127.0.0.1:8081"
	DefaultAPIDSN     = "file:departments.db?_foreign_keys=1"
	DefaultWebAddr    = "127.0.0.1:8080"
	DefaultRemoteURL  = "http://127.0.0.1:8081/api"
	DefaultTimeout    = 30 * time.Second
	DefaultSessionTTL = 24 * time.Hour
)

type Config struct {
	Servername string `json:"servername" yaml:"servername"` // admin.example.com
	Locale     string `json:"locale" yaml:"locale"`         // en, fr
	LogSQL     bool   `json:"log_sql" yaml:"log_sql"`

	API APIConfig `json:"api" yaml:"api"`
	Web WebConfig `json:"web" yaml:"web"`
}

// APIConfig configures the department API backed by SQLite.
type APIConfig struct {
	Addr string `json:"addr" yaml:"addr"`
	DSN  string `json:"dsn" yaml:"dsn"`

	// bcrypt hash of the key clients send in X-API-Key. Mutating routes are
	// open when empty.
	KeyHash string `json:"key_hash" yaml:"key_hash"`
}

// WebConfig configures the admin page and its client of the department API.
type WebConfig struct {
	Addr         string   `json:"addr" yaml:"addr"`
	RemoteURL    string   `json:"remote_url" yaml:"remote_url"`
	APIKey       string   `json:"api_key" yaml:"api_key"`
	Timeout      Duration `json:"timeout" yaml:"timeout"`
	SessionTTL   Duration `json:"session_ttl" yaml:"session_ttl"`
	SecureCookie bool     `json:"secure_cookie" yaml:"secure_cookie"`
}

// Duration is a time.Duration written as "30s" or "5m" in config files.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.set(s)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.set(s)
}

func (d *Duration) set(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() Config {
	c := Config{}
	c.applyDefaults()
	return c
}

// LoadConfig reads the file at path. Files ending in .yaml or .yml are parsed
// as YAML, anything else as JSON which may contain comments and trailing
// commas.
func LoadConfig(path string) (c Config, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &c)
	default:
		err = json.Unmarshal(jsonc.ToJSON(data), &c)
	}
	if err != nil {
		return c, fmt.Errorf("unable to parse config file %s: %w", path, err)
	}

	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.API.Addr == "" {
		c.API.Addr = DefaultAPIAddr
	}
	if c.API.DSN == "" {
		c.API.DSN = DefaultAPIDSN
	}
	if c.Web.Addr == "" {
		c.Web.Addr = DefaultWebAddr
	}
	if c.Web.RemoteURL == "" {
		c.Web.RemoteURL = DefaultRemoteURL
	}
	if c.Web.Timeout == 0 {
		c.Web.Timeout = Duration(DefaultTimeout)
	}
	if c.Web.SessionTTL == 0 {
		c.Web.SessionTTL = Duration(DefaultSessionTTL)
	}
}
