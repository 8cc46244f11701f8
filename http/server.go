package http

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/benprew/deptadmin"
	"github.com/benprew/deptadmin/manager"
	"github.com/swithek/sessionup"
	"golang.org/x/text/message"
)

const JSON = "application/json"
const SESSION_KEY = "deptadmin-session"

// ShutdownTimeout is the time given for outstanding requests to finish before shutdown.
const ShutdownTimeout = 1 * time.Second

// Server serves the department admin page, the department JSON API, or both,
// depending on which services are attached before Open.
type Server struct {
	ln     net.Listener
	server *http.Server

	// Store behind the JSON API. API routes are mounted when set.
	DepartmentStore deptadmin.DepartmentStore

	// bcrypt hash of the key required on mutating API routes. Empty leaves
	// them open.
	APIKeyHash string

	// Per-session department managers behind the admin page. Web routes are
	// mounted when both are set.
	Managers *manager.Registry
	Sessions *sessionup.Manager

	// Translates page text and fallback messages. Set with SetLocale.
	Printer *message.Printer
	Locale  string

	// bind address for the listener and domain for the session cookie
	Addr   string
	Domain string
}

func NewServer() *Server {
	s := &Server{server: &http.Server{}}
	s.SetLocale(deptadmin.DefaultLocale)
	return s
}

// SetLocale selects the language used for page text.
func (s *Server) SetLocale(locale string) {
	s.Locale = locale
	s.Printer = deptadmin.NewPrinter(locale)
}

// Open begins listening on Addr and serves requests in the background.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	s.server.Handler = s.Handler()

	go func() {
		if err := s.server.Serve(s.ln); err != nil && err != http.ErrServerClosed {
			log.Printf("[ERROR] serve %s: %s", s.Addr, err)
		}
	}()
	return nil
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Handler returns the routed handler wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	return requestIDMiddleware(loggingMiddleware(s.routes()))
}

// ErrorResponse represents a JSON structure for error output.
type ErrorResponse struct {
	Message string `json:"message"`
}

type ErrorParams struct {
	StatusCode int
	Header     string
	Message    string
}

// Error prints & optionally logs an error message.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	// Extract error code & message.
	code, message := deptadmin.ErrorCode(err), deptadmin.ErrorMessage(err)

	// Log & report internal errors.
	if code == deptadmin.EINTERNAL {
		deptadmin.ReportError(r.Context(), err, r)
		LogError(r, err)
	}

	// Print user message to response based on request accept header.
	switch r.Header.Get("Accept") {
	case JSON:
		writeJSON(w, ErrorStatusCode(code), &ErrorResponse{Message: message})

	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(ErrorStatusCode(code))
		if err := s.RenderTemplate(w, r, "views/error.tmpl", &ErrorParams{
			StatusCode: ErrorStatusCode(code),
			Header:     "An error has occurred.",
			Message:    message,
		}); err != nil {
			LogError(r, err)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", JSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %s", err)
	}
}

// lookup of application error codes to HTTP status codes.
var codes = map[string]int{
	deptadmin.ECONFLICT:       http.StatusConflict,
	deptadmin.EINVALID:        http.StatusBadRequest,
	deptadmin.ENOTFOUND:       http.StatusNotFound,
	deptadmin.ENOTIMPLEMENTED: http.StatusNotImplemented,
	deptadmin.EUNAUTHORIZED:   http.StatusUnauthorized,
	deptadmin.EINTERNAL:       http.StatusInternalServerError,
}

// ErrorStatusCode returns the associated HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// LogError logs an error with the HTTP route information.
func LogError(r *http.Request, err error) {
	log.Printf("[http] error: %s %s: %s", r.Method, r.URL.Path, err)
}
