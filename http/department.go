package http

import (
	"net/http"

	"github.com/benprew/deptadmin"
	"github.com/benprew/deptadmin/manager"
)

const (
	dialogNone   = ""
	dialogCreate = "create"
	dialogEdit   = "edit"
)

type formParams struct {
	Action    string
	Submit    string
	Pending   string
	Draft     deptadmin.Draft
	NameError string
	CodeError string
	Busy      bool
}

type departmentListParams struct {
	Departments []*deptadmin.Department
	Total       int
	Query       string
	Dialog      string
	Form        formParams
}

type departmentDeleteParams struct {
	Department *deptadmin.Department
	Prompt     string
}

func (s *Server) departmentList() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		m := s.session(r).Manager
		m.Activate(ctx)

		q := r.URL.Query()
		if q.Get("dismiss") != "" {
			m.Dismiss()
			http.Redirect(w, r, "/department", http.StatusSeeOther)
			return
		}
		if q.Get("reload") != "" {
			m.Refresh(ctx)
		}
		if q.Has("q") {
			m.SetSearchTerm(q.Get("q"))
		}

		dialog := dialogNone
		if q.Get("dialog") == dialogCreate {
			m.BeginCreate()
			dialog = dialogCreate
		}
		s.renderDepartments(w, r, m, dialog)
	})
}

func (s *Server) departmentCreate() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.Error(w, r, deptadmin.Errorf(deptadmin.EINVALID, "invalid form"))
			return
		}
		m := s.session(r).Manager
		m.Activate(r.Context())
		m.UpdateCreateField(deptadmin.FieldName, r.PostForm.Get("name"))
		m.UpdateCreateField(deptadmin.FieldCode, r.PostForm.Get("code"))

		if res := m.SubmitCreate(r.Context()); res.CloseDialog {
			http.Redirect(w, r, "/department", http.StatusSeeOther)
			return
		}
		s.renderDepartments(w, r, m, dialogCreate)
	})
}

func (s *Server) departmentEdit() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := s.session(r).Manager
		m.Activate(r.Context())

		d, err := s.listedDepartment(r, m)
		if err != nil {
			s.Error(w, r, err)
			return
		}
		m.BeginEdit(d)
		s.renderDepartments(w, r, m, dialogEdit)
	})
}

func (s *Server) departmentUpdate() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.Error(w, r, deptadmin.Errorf(deptadmin.EINVALID, "invalid form"))
			return
		}
		m := s.session(r).Manager
		m.Activate(r.Context())

		// Another tab may have opened a different department since.
		id, err := idParam(r)
		if err != nil {
			s.Error(w, r, err)
			return
		}
		if draft, ok := m.EditDraft(); !ok || draft.ID != id {
			d, err := s.listedDepartment(r, m)
			if err != nil {
				s.Error(w, r, err)
				return
			}
			m.BeginEdit(d)
		}

		m.UpdateEditField(deptadmin.FieldName, r.PostForm.Get("name"))
		m.UpdateEditField(deptadmin.FieldCode, r.PostForm.Get("code"))

		if res := m.SubmitEdit(r.Context()); res.CloseDialog {
			http.Redirect(w, r, "/department", http.StatusSeeOther)
			return
		}
		s.renderDepartments(w, r, m, dialogEdit)
	})
}

func (s *Server) departmentDeleteConfirm() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := s.session(r).Manager
		m.Activate(r.Context())

		d, err := s.listedDepartment(r, m)
		if err != nil {
			s.Error(w, r, err)
			return
		}
		if err := s.RenderTemplate(w, r, "views/department/delete.tmpl", &departmentDeleteParams{
			Department: d,
			Prompt:     deptadmin.Translate(s.Printer, deptadmin.MsgConfirmDelete),
		}); err != nil {
			LogError(r, err)
		}
	})
}

func (s *Server) departmentDelete() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.Error(w, r, deptadmin.Errorf(deptadmin.EINVALID, "invalid form"))
			return
		}
		id, err := idParam(r)
		if err != nil {
			s.Error(w, r, err)
			return
		}

		m := s.session(r).Manager
		confirmed := r.PostForm.Get("confirm") == "yes"
		m.Delete(r.Context(), id, func(string) bool { return confirmed })
		http.Redirect(w, r, "/department", http.StatusSeeOther)
	})
}

// listedDepartment returns the department named by the :id route parameter
// from the manager's current list.
func (s *Server) listedDepartment(r *http.Request, m *manager.Manager) (*deptadmin.Department, error) {
	id, err := idParam(r)
	if err != nil {
		return nil, err
	}
	d, ok := m.Find(id)
	if !ok {
		return nil, deptadmin.Errorf(deptadmin.ENOTFOUND, "department not found: %d", id)
	}
	return d, nil
}

func (s *Server) renderDepartments(w http.ResponseWriter, r *http.Request, m *manager.Manager, dialog string) {
	params := &departmentListParams{
		Departments: m.Visible(),
		Total:       len(m.Departments()),
		Query:       m.SearchTerm(),
		Dialog:      dialog,
	}

	errs := m.Errors()
	form := formParams{
		NameError: errs[deptadmin.FieldName],
		CodeError: errs[deptadmin.FieldCode],
		Busy:      m.Busy(),
	}
	switch dialog {
	case dialogCreate:
		form.Action = "/department"
		form.Submit, form.Pending = "Add", "Adding..."
		form.Draft = m.CreateDraft()
	case dialogEdit:
		draft, _ := m.EditDraft()
		form.Action = urlFor(&deptadmin.Department{ID: draft.ID}, "edit")
		form.Submit, form.Pending = "Update", "Updating..."
		form.Draft = draft
	}
	params.Form = form

	if err := s.RenderTemplate(w, r, "views/department/list.tmpl", params); err != nil {
		LogError(r, err)
	}
}
