package http

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (s *Server) routes() http.Handler {
	r := httprouter.New()
	r.GET("/css/*filepath", serveStatic)
	r.GET("/robots.txt", serveStatic)

	if s.Managers != nil && s.Sessions != nil {
		r.Handler("GET", "/", s.root())

		r.Handler("GET", "/department", s.sessionMiddleware(s.departmentList()))
		r.Handler("POST", "/department", s.sessionMiddleware(s.departmentCreate()))
		r.Handler("GET", "/department/:id/edit", s.sessionMiddleware(s.departmentEdit()))
		r.Handler("POST", "/department/:id/edit", s.sessionMiddleware(s.departmentUpdate()))
		r.Handler("GET", "/department/:id/delete", s.sessionMiddleware(s.departmentDeleteConfirm()))
		r.Handler("POST", "/department/:id/delete", s.sessionMiddleware(s.departmentDelete()))
	}

	// JSON APIs
	if s.DepartmentStore != nil {
		r.Handler("GET", "/api/departments", s.apiDepartmentList())
		r.Handler("GET", "/api/departments/:id", s.apiDepartmentShow())
		r.Handler("POST", "/api/departments", s.requireAPIKey(s.apiDepartmentCreate()))
		r.Handler("PUT", "/api/departments/:id", s.requireAPIKey(s.apiDepartmentUpdate()))
		r.Handler("DELETE", "/api/departments/:id", s.requireAPIKey(s.apiDepartmentDelete()))
	}

	return r
}

func (s *Server) root() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/department", http.StatusFound)
	})
}

//go:embed static
var static embed.FS

var staticHandler = func() http.Handler {
	staticSub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(staticSub))
}()

func serveStatic(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	staticHandler.ServeHTTP(w, r)
}
