package http

import (
	"net/http"

	"github.com/benprew/deptadmin"
	"github.com/benprew/deptadmin/manager"
)

// Notices live in the session's queue rather than a cookie so that concurrent
// tabs and accented messages survive intact.

// session returns the manager session bound to the request, or nil outside
// the session middleware.
func (s *Server) session(r *http.Request) *manager.Session {
	key := deptadmin.SessionKeyFromContext(r.Context())
	if key == "" || s.Managers == nil {
		return nil
	}
	return s.Managers.Get(key)
}

// drainNotices returns and clears the notices waiting for the next render.
func (s *Server) drainNotices(r *http.Request) []deptadmin.Notice {
	sess := s.session(r)
	if sess == nil {
		return nil
	}
	return sess.Notices.Drain()
}
