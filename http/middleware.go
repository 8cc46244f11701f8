package http

import (
	"log"
	"net/http"
	"time"

	"github.com/benprew/deptadmin"
	"github.com/dchest/uniuri"
	"github.com/google/uuid"
	"github.com/swithek/sessionup"
	"github.com/swithek/sessionup/memstore"
	"golang.org/x/crypto/bcrypt"
)

const RequestIDHeader = "X-Request-ID"
const APIKeyHeader = "X-API-Key"

// Session keys are strings of length 25 over [0-9a-zA-Z], ~148 bits of
// entropy. OWASP recommends at least 128.
const sessionKeyLen = 25

// requestIDMiddleware tags each request with an ID, reusing the caller's when
// one is sent.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(deptadmin.NewContextWithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[http] %s %s %d %s request_id=%s",
			r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond),
			deptadmin.RequestIDFromContext(r.Context()))
	})
}

// NewSessionManager returns an in-memory session manager for the admin page.
// An empty domain leaves the cookie host-only.
func NewSessionManager(ttl time.Duration, secure bool, domain string) *sessionup.Manager {
	return sessionup.NewManager(memstore.New(time.Minute),
		sessionup.CookieName(SESSION_KEY),
		sessionup.Domain(domain),
		sessionup.ExpiresIn(ttl),
		sessionup.Secure(secure),
	)
}

// sessionMiddleware binds every browser to a session key, starting a session
// on the first visit.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return s.Sessions.Public(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var key string
		if sess, ok := sessionup.FromContext(r.Context()); ok {
			key = sess.UserKey
		} else {
			key = uniuri.NewLen(sessionKeyLen)
			if err := s.Sessions.Init(w, r, key); err != nil {
				s.Error(w, r, err)
				return
			}
			log.Printf("[http] new session from %s", r.RemoteAddr)
		}
		next.ServeHTTP(w, r.WithContext(deptadmin.NewContextWithSessionKey(r.Context(), key)))
	}))
}

// requireAPIKey rejects requests whose key does not match APIKeyHash.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.APIKeyHash != "" {
			key := r.Header.Get(APIKeyHeader)
			if key == "" || bcrypt.CompareHashAndPassword([]byte(s.APIKeyHash), []byte(key)) != nil {
				s.apiError(w, r, deptadmin.Errorf(deptadmin.EUNAUTHORIZED, "invalid api key"))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// HashAPIKey returns the bcrypt hash stored in the api.key_hash setting.
func HashAPIKey(key string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
