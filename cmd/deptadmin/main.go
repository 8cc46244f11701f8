package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/benprew/deptadmin"
	http "github.com/benprew/deptadmin/http"
	"github.com/benprew/deptadmin/manager"
	"github.com/benprew/deptadmin/remote"
	"github.com/benprew/deptadmin/sqlite"
)

// Build version, injected during build.
var (
	version string
	commit  string
)

// main is the entry point to our application binary. However, it has some poor
// usability so we mainly use it to delegate out to our Main type.
func main() {
	// Propagate build information to root package to share globally.
	deptadmin.Version = strings.TrimPrefix(version, "v")
	deptadmin.Commit = commit

	// Setup signal handlers.
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() { <-c; cancel() }()

	if err := newRootCmd(NewMain()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Configuration path and parsed config data.
	Config     deptadmin.Config
	ConfigPath string

	// SQLite database behind the department API.
	DB *sqlite.DB

	// HTTP server for handling HTTP communication.
	// Services are attached to it before running.
	HTTPServer *http.Server
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{
		ConfigPath: deptadmin.DefaultConfigPath,
		HTTPServer: http.NewServer(),
	}
}

// LoadConfig reads ConfigPath. A missing file at the default path falls back
// to the built-in defaults; any other missing file is an error.
func (m *Main) LoadConfig() error {
	config, err := deptadmin.LoadConfig(m.ConfigPath)
	if os.IsNotExist(err) && m.ConfigPath == deptadmin.DefaultConfigPath {
		config = deptadmin.DefaultConfig()
	} else if os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", m.ConfigPath)
	} else if err != nil {
		return err
	}
	m.Config = config
	m.HTTPServer.SetLocale(config.Locale)
	m.HTTPServer.Domain = config.Servername
	return nil
}

// RunAPI opens the database and serves the department API.
func (m *Main) RunAPI(ctx context.Context) error {
	m.DB = sqlite.NewDB(m.Config.API.DSN)
	if m.Config.LogSQL {
		m.DB.Logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	if err := m.DB.Open(); err != nil {
		return fmt.Errorf("cannot open db: %w", err)
	}

	m.HTTPServer.DepartmentStore = sqlite.NewDepartmentService(m.DB)
	m.HTTPServer.APIKeyHash = m.Config.API.KeyHash
	m.HTTPServer.Addr = m.Config.API.Addr
	if m.Config.API.KeyHash == "" {
		log.Printf("[WARN] api.key_hash not set, mutating routes are open")
	}

	if err := m.HTTPServer.Open(); err != nil {
		return err
	}
	log.Printf("department api listening on %s", m.HTTPServer.URL())
	return nil
}

// RunWeb serves the admin page against the configured remote API.
func (m *Main) RunWeb(ctx context.Context) error {
	ttl := time.Duration(m.Config.Web.SessionTTL)

	m.HTTPServer.Managers = manager.NewRegistry(m.newClient(), m.HTTPServer.Printer, ttl)
	m.HTTPServer.Sessions = http.NewSessionManager(ttl, m.Config.Web.SecureCookie, m.HTTPServer.Domain)
	m.HTTPServer.Addr = m.Config.Web.Addr

	if err := m.HTTPServer.Open(); err != nil {
		return err
	}
	log.Printf("admin page listening on %s, remote api %s", m.HTTPServer.URL(), m.Config.Web.RemoteURL)
	return nil
}

func (m *Main) newClient() *remote.Client {
	return remote.NewClient(m.Config.Web.RemoteURL,
		remote.WithTimeout(time.Duration(m.Config.Web.Timeout)),
		remote.WithAPIKey(m.Config.Web.APIKey),
	)
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.HTTPServer != nil {
		if err := m.HTTPServer.Close(); err != nil {
			return err
		}
	}
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}
