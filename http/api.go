package http

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/benprew/deptadmin"
	"github.com/julienschmidt/httprouter"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// maxBodySize caps the size of a department payload.
const maxBodySize = 1 << 20

var departmentSchema = jsonschema.MustCompileString("department.json", `{
	"type": "object",
	"properties": {
		"id":   {"type": "integer", "minimum": 0},
		"name": {"type": "string"},
		"code": {"type": "string"}
	},
	"required": ["name", "code"]
}`)

type dataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// apiError writes err as {"message": ...} whatever the request accepts.
func (s *Server) apiError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := deptadmin.ErrorCode(err), deptadmin.ErrorMessage(err)
	if code == deptadmin.EINTERNAL {
		deptadmin.ReportError(r.Context(), err, r)
		LogError(r, err)
	}
	writeJSON(w, ErrorStatusCode(code), &ErrorResponse{Message: message})
}

func (s *Server) apiDepartmentList() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := deptadmin.DepartmentFilter{Name: q.Get("name")}
		var err error
		if filter.Limit, err = intParam(q.Get("limit")); err != nil {
			s.apiError(w, r, err)
			return
		}
		if filter.Offset, err = intParam(q.Get("offset")); err != nil {
			s.apiError(w, r, err)
			return
		}

		departments, _, err := s.DepartmentStore.FindDepartments(r.Context(), filter)
		if err != nil {
			s.apiError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, &dataResponse{Data: departments})
	})
}

func (s *Server) apiDepartmentShow() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			s.apiError(w, r, err)
			return
		}
		d, err := s.DepartmentStore.FindDepartmentByID(r.Context(), id)
		if err != nil {
			s.apiError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, &dataResponse{Data: d})
	})
}

func (s *Server) apiDepartmentCreate() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		draft, err := decodeDraft(r)
		if err != nil {
			s.apiError(w, r, err)
			return
		}
		d := &deptadmin.Department{Name: draft.Name, Code: draft.Code}
		if err := s.DepartmentStore.CreateDepartment(r.Context(), d); err != nil {
			s.apiError(w, r, err)
			return
		}
		log.Printf("[http] created department %d %q", d.ID, d.Code)
		writeJSON(w, http.StatusCreated, &dataResponse{Message: "department created", Data: d})
	})
}

func (s *Server) apiDepartmentUpdate() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			s.apiError(w, r, err)
			return
		}
		draft, err := decodeDraft(r)
		if err != nil {
			s.apiError(w, r, err)
			return
		}
		if _, err := s.DepartmentStore.UpdateDepartment(r.Context(), id, deptadmin.DepartmentUpdate{
			Name: &draft.Name,
			Code: &draft.Code,
		}); err != nil {
			s.apiError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, &messageResponse{Message: "department updated"})
	})
}

func (s *Server) apiDepartmentDelete() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			s.apiError(w, r, err)
			return
		}
		if err := s.DepartmentStore.DeleteDepartment(r.Context(), id); err != nil {
			s.apiError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, &messageResponse{Message: "department deleted"})
	})
}

// decodeDraft reads a department payload, checks its shape against the
// schema and then applies the field rules shared with the admin page.
func decodeDraft(r *http.Request) (deptadmin.Draft, error) {
	var draft deptadmin.Draft

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return draft, err
	}

	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return draft, deptadmin.Errorf(deptadmin.EINVALID, "invalid json body")
	}
	if err := departmentSchema.Validate(doc); err != nil {
		log.Printf("[http] rejected department payload: %s", err)
		return draft, deptadmin.Errorf(deptadmin.EINVALID, "department must be an object with string name and code")
	}
	if err := json.Unmarshal(body, &draft); err != nil {
		return draft, deptadmin.Errorf(deptadmin.EINVALID, "invalid json body")
	}
	return draft, deptadmin.ValidateDepartment(draft)
}

func idParam(r *http.Request) (uint64, error) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := strconv.ParseUint(params.ByName("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, deptadmin.Errorf(deptadmin.EINVALID, "invalid department id")
	}
	return id, nil
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, deptadmin.Errorf(deptadmin.EINVALID, "invalid number: %q", s)
	}
	return n, nil
}
