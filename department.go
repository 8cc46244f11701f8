package deptadmin

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Department is a record owned by the remote department store. ID is
// assigned by the store and never changes after creation.
type Department struct {
	ID   uint64 `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Code string `json:"code" db:"code"`
}

func (d *Department) ItemID() uint64 {
	return d.ID
}

func (d *Department) ItemType() string {
	return "department"
}

// Draft is a client side, not yet persisted copy of a department. ID is zero
// until the record exists in the store.
type Draft struct {
	ID   uint64 `json:"id,omitempty"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// DraftFrom copies d into a new draft. Changes to the draft never reach d.
func DraftFrom(d *Department) Draft {
	return Draft{ID: d.ID, Name: d.Name, Code: d.Code}
}

// Field names a user editable department field.
type Field string

const (
	FieldName Field = "name"
	FieldCode Field = "code"
)

// Set applies value to the named field. Digits are stripped from names
// before they are stored; every other field is stored verbatim.
func (d *Draft) Set(field Field, value string) {
	switch field {
	case FieldName:
		d.Name = StripDigits(value)
	case FieldCode:
		d.Code = value
	}
}

// Validation messages. They double as message catalog keys.
const (
	MsgNameRequired = "name required"
	MsgNameDigits   = "name must not contain digits"
	MsgCodeRequired = "code required"
)

// ValidationErrors maps a field to the message shown next to it.
type ValidationErrors map[Field]string

// Validate checks a draft against the department rules. The returned map is
// never nil so callers can always replace stale errors with it.
//
// Both name rules are checked; when both apply the digit message wins since
// it is assigned last.
func Validate(d Draft) (bool, ValidationErrors) {
	errs := make(ValidationErrors)
	if strings.TrimSpace(d.Name) == "" {
		errs[FieldName] = MsgNameRequired
	}
	if strings.IndexFunc(d.Name, isDigit) >= 0 {
		errs[FieldName] = MsgNameDigits
	}
	if strings.TrimSpace(d.Code) == "" {
		errs[FieldCode] = MsgCodeRequired
	}
	return len(errs) == 0, errs
}

// ValidateDepartment runs Validate and reports the first failing rule as an
// EINVALID error, name before code.
func ValidateDepartment(d Draft) error {
	ok, errs := Validate(d)
	if ok {
		return nil
	}
	for _, f := range []Field{FieldName, FieldCode} {
		if msg, ok := errs[f]; ok {
			return Errorf(EINVALID, "%s", msg)
		}
	}
	return Errorf(EINVALID, "invalid department")
}

// StripDigits removes every ASCII digit from s.
func StripDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if isDigit(r) {
			return -1
		}
		return r
	}, s)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// FilterByName returns the departments whose lower-cased name contains the
// lower-cased term. An empty term matches everything. The input slice is not
// modified.
func FilterByName(departments []*Department, term string) []*Department {
	needle := lower(term)
	filtered := make([]*Department, 0, len(departments))
	for _, d := range departments {
		if strings.Contains(lower(d.Name), needle) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// lower builds a new Caser on every call since a Caser keeps state between
// calls and must not be shared across goroutines.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// DepartmentService represents the remote department store.
type DepartmentService interface {
	// ListDepartments returns every department.
	ListDepartments(ctx context.Context) ([]*Department, error)

	// CreateDepartment stores a new department and returns the store's
	// confirmation message.
	CreateDepartment(ctx context.Context, draft Draft) (string, error)

	// UpdateDepartment replaces the name and code of department id.
	UpdateDepartment(ctx context.Context, id uint64, draft Draft) (string, error)

	// DeleteDepartment removes department id.
	DeleteDepartment(ctx context.Context, id uint64) (string, error)
}

// DepartmentStore is the authoritative department storage behind the API.
type DepartmentStore interface {
	// FindDepartmentByID returns ENOTFOUND if the department does not exist.
	FindDepartmentByID(ctx context.Context, id uint64) (*Department, error)

	// FindDepartments returns the departments matching filter and the total
	// number of matches, which may exceed len when Limit is set.
	FindDepartments(ctx context.Context, filter DepartmentFilter) ([]*Department, int, error)

	// CreateDepartment inserts d and sets its ID.
	CreateDepartment(ctx context.Context, d *Department) error

	// UpdateDepartment applies upd to department id and returns the result.
	UpdateDepartment(ctx context.Context, id uint64, upd DepartmentUpdate) (*Department, error)

	// DeleteDepartment returns ENOTFOUND if the department does not exist.
	DeleteDepartment(ctx context.Context, id uint64) error
}

// DepartmentUpdate represents a set of fields to be updated via UpdateDepartment.
type DepartmentUpdate struct {
	Name *string
	Code *string
}

// DepartmentFilter represents a filter used by FindDepartments.
type DepartmentFilter struct {
	ID   uint64
	Name string // case-insensitive substring

	// Restrict to subset of range.
	Offset int
	Limit  int
}
