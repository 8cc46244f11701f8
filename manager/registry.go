package manager

import (
	"sync"
	"time"

	"github.com/benprew/deptadmin"
	"golang.org/x/text/message"
)

// NoticeQueue collects notices until the next page render drains them.
type NoticeQueue struct {
	mu      sync.Mutex
	notices []deptadmin.Notice
}

// Notify implements deptadmin.Notifier.
func (q *NoticeQueue) Notify(n deptadmin.Notice) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.notices = append(q.notices, n)
}

// Drain returns the queued notices in arrival order and empties the queue.
func (q *NoticeQueue) Drain() []deptadmin.Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.notices
	q.notices = nil
	return n
}

// Session is the per-browser state: a manager and the notices it produced.
type Session struct {
	Manager *Manager
	Notices *NoticeQueue

	lastSeen time.Time
}

// Registry hands out one Session per session key. Sessions not used for
// longer than the idle timeout are dropped on the next lookup.
type Registry struct {
	service deptadmin.DepartmentService
	printer *message.Printer
	idle    time.Duration

	// Now returns the current time. Replaced in tests.
	Now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns a registry whose managers use service. An idle timeout
// of zero keeps sessions forever.
func NewRegistry(service deptadmin.DepartmentService, printer *message.Printer, idle time.Duration) *Registry {
	return &Registry{
		service:  service,
		printer:  printer,
		idle:     idle,
		Now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for key, creating it on first use.
func (r *Registry) Get(key string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.Now()
	r.pruneLocked(now)

	s, ok := r.sessions[key]
	if !ok {
		q := &NoticeQueue{}
		s = &Session{
			Manager: New(r.service, q, r.printer),
			Notices: q,
		}
		r.sessions[key] = s
	}
	s.lastSeen = now
	return s
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) pruneLocked(now time.Time) {
	if r.idle <= 0 {
		return
	}
	for key, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.idle {
			delete(r.sessions, key)
		}
	}
}
