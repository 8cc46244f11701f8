// Package manager holds the state behind the department admin page: the
// authoritative department list, the create and edit drafts, validation
// errors, the search term and the busy flag.
package manager

import (
	"context"
	"log"
	"sync"

	"github.com/benprew/deptadmin"
	"golang.org/x/text/message"
)

// Confirmer asks the user a yes/no question and reports the answer.
type Confirmer func(prompt string) bool

// Result reports how a submit settled.
type Result struct {
	// CloseDialog is set when the record was stored and the dialog that
	// produced it should close.
	CloseDialog bool

	// Err is the validation or remote error that stopped the submit. It has
	// already been surfaced to the user by the time it is returned.
	Err error
}

// Manager mirrors the remote department list and owns the drafts edited by
// one user. It is safe for concurrent use; the lock is never held across a
// remote call.
type Manager struct {
	service  deptadmin.DepartmentService
	notifier deptadmin.Notifier
	printer  *message.Printer

	mu          sync.Mutex
	departments []*deptadmin.Department
	createDraft deptadmin.Draft
	editDraft   *deptadmin.Draft
	errors      deptadmin.ValidationErrors
	searchTerm  string
	busy        bool
	activated   bool
}

// New returns a Manager that talks to service and reports notices to
// notifier. A nil printer leaves fallback messages in English.
func New(service deptadmin.DepartmentService, notifier deptadmin.Notifier, printer *message.Printer) *Manager {
	if notifier == nil {
		notifier = deptadmin.NotifierFunc(func(deptadmin.Notice) {})
	}
	return &Manager{
		service:     service,
		notifier:    notifier,
		printer:     printer,
		departments: []*deptadmin.Department{},
		errors:      deptadmin.ValidationErrors{},
	}
}

// Activate loads the list the first time the view is shown. Later calls do
// nothing; use Refresh to reload explicitly.
func (m *Manager) Activate(ctx context.Context) error {
	m.mu.Lock()
	if m.activated {
		m.mu.Unlock()
		return nil
	}
	m.activated = true
	m.mu.Unlock()

	return m.Refresh(ctx)
}

// Refresh replaces the authoritative list with the remote one. On failure the
// previous list is kept and an error notice is shown.
func (m *Manager) Refresh(ctx context.Context) error {
	departments, err := m.service.ListDepartments(ctx)
	if err != nil {
		log.Printf("[ERROR] list departments: %s", err)
		m.notifyError(err, deptadmin.MsgListFailed)
		return err
	}
	if departments == nil {
		departments = []*deptadmin.Department{}
	}

	m.mu.Lock()
	m.departments = departments
	m.mu.Unlock()
	return nil
}

// BeginCreate resets the create draft and clears validation errors.
func (m *Manager) BeginCreate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createDraft = deptadmin.Draft{}
	m.errors = deptadmin.ValidationErrors{}
}

// UpdateCreateField stores value in the create draft. Digits are stripped
// from names.
func (m *Manager) UpdateCreateField(field deptadmin.Field, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createDraft.Set(field, value)
}

// SubmitCreate validates the create draft and sends it to the store. An
// invalid draft never reaches the store and never sets the busy flag.
func (m *Manager) SubmitCreate(ctx context.Context) Result {
	m.mu.Lock()
	draft := m.createDraft
	if err := m.validateLocked(draft); err != nil {
		m.mu.Unlock()
		return Result{Err: err}
	}
	m.busy = true
	m.mu.Unlock()
	defer m.clearBusy()

	msg, err := m.service.CreateDepartment(ctx, draft)
	if err != nil {
		log.Printf("[ERROR] create department: %s", err)
		m.notifyError(err, deptadmin.MsgCreateFailed)
		return Result{Err: err}
	}
	m.notifier.Notify(deptadmin.Notice{Level: deptadmin.NoticeSuccess, Message: msg})

	m.mu.Lock()
	m.createDraft = deptadmin.Draft{}
	m.errors = deptadmin.ValidationErrors{}
	m.mu.Unlock()

	m.Refresh(ctx)
	return Result{CloseDialog: true}
}

// BeginEdit copies department into the edit draft and clears validation
// errors. The listed record itself is never modified.
func (m *Manager) BeginEdit(department *deptadmin.Department) {
	draft := deptadmin.DraftFrom(department)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.editDraft = &draft
	m.errors = deptadmin.ValidationErrors{}
}

// UpdateEditField stores value in the edit draft, stripping digits from
// names. Does nothing while no department is being edited.
func (m *Manager) UpdateEditField(field deptadmin.Field, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editDraft == nil {
		return
	}
	m.editDraft.Set(field, value)
}

// SubmitEdit validates the edit draft and sends it to the store. Nothing
// happens when the draft has no id.
func (m *Manager) SubmitEdit(ctx context.Context) Result {
	m.mu.Lock()
	if m.editDraft == nil || m.editDraft.ID == 0 {
		m.mu.Unlock()
		return Result{}
	}
	draft := *m.editDraft
	if err := m.validateLocked(draft); err != nil {
		m.mu.Unlock()
		return Result{Err: err}
	}
	m.busy = true
	m.mu.Unlock()
	defer m.clearBusy()

	msg, err := m.service.UpdateDepartment(ctx, draft.ID, draft)
	if err != nil {
		log.Printf("[ERROR] update department %d: %s", draft.ID, err)
		m.notifyError(err, deptadmin.MsgUpdateFailed)
		return Result{Err: err}
	}
	m.notifier.Notify(deptadmin.Notice{Level: deptadmin.NoticeSuccess, Message: msg})

	m.mu.Lock()
	m.editDraft = nil
	m.errors = deptadmin.ValidationErrors{}
	m.mu.Unlock()

	m.Refresh(ctx)
	return Result{CloseDialog: true}
}

// Delete removes department id once the user confirms. A declined
// confirmation leaves everything untouched.
func (m *Manager) Delete(ctx context.Context, id uint64, confirm Confirmer) error {
	if confirm == nil || !confirm(deptadmin.Translate(m.printer, deptadmin.MsgConfirmDelete)) {
		return nil
	}

	m.setBusy()
	defer m.clearBusy()

	msg, err := m.service.DeleteDepartment(ctx, id)
	if err != nil {
		log.Printf("[ERROR] delete department %d: %s", id, err)
		m.notifyError(err, deptadmin.MsgDeleteFailed)
		return err
	}
	m.notifier.Notify(deptadmin.Notice{Level: deptadmin.NoticeSuccess, Message: msg})

	m.Refresh(ctx)
	return nil
}

// Dismiss closes whichever dialog is open: the create draft is reset, the
// edit draft discarded and validation errors cleared.
func (m *Manager) Dismiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createDraft = deptadmin.Draft{}
	m.editDraft = nil
	m.errors = deptadmin.ValidationErrors{}
}

// SetSearchTerm changes what Visible returns. The authoritative list is not
// touched.
func (m *Manager) SetSearchTerm(term string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchTerm = term
}

func (m *Manager) SearchTerm() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchTerm
}

// Visible returns the departments whose name matches the search term.
func (m *Manager) Visible() []*deptadmin.Department {
	m.mu.Lock()
	defer m.mu.Unlock()
	return deptadmin.FilterByName(m.departments, m.searchTerm)
}

// Departments returns the authoritative list as last fetched.
func (m *Manager) Departments() []*deptadmin.Department {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*deptadmin.Department(nil), m.departments...)
}

// Find returns the listed department with the given id.
func (m *Manager) Find(id uint64) (*deptadmin.Department, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.departments {
		if d.ID == id {
			c := *d
			return &c, true
		}
	}
	return nil, false
}

func (m *Manager) CreateDraft() deptadmin.Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createDraft
}

// EditDraft returns a copy of the edit draft, or false when nothing is being
// edited.
func (m *Manager) EditDraft() (deptadmin.Draft, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editDraft == nil {
		return deptadmin.Draft{}, false
	}
	return *m.editDraft, true
}

// Errors returns a copy of the current validation errors.
func (m *Manager) Errors() deptadmin.ValidationErrors {
	m.mu.Lock()
	defer m.mu.Unlock()
	errs := make(deptadmin.ValidationErrors, len(m.errors))
	for k, v := range m.errors {
		errs[k] = v
	}
	return errs
}

// Busy reports whether a create, update or delete is in flight.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

// validateLocked stores the validation result and returns an EINVALID error
// when the draft may not be sent.
func (m *Manager) validateLocked(draft deptadmin.Draft) error {
	ok, errs := deptadmin.Validate(draft)
	m.errors = errs
	if !ok {
		return deptadmin.Errorf(deptadmin.EINVALID, "invalid department")
	}
	return nil
}

func (m *Manager) setBusy() {
	m.mu.Lock()
	m.busy = true
	m.mu.Unlock()
}

func (m *Manager) clearBusy() {
	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()
}

// notifyError shows the server's message when it sent one, otherwise the
// translated fallback.
func (m *Manager) notifyError(err error, fallback string) {
	msg, ok := deptadmin.RemoteMessage(err)
	if !ok {
		msg = deptadmin.Translate(m.printer, fallback)
	}
	m.notifier.Notify(deptadmin.Notice{Level: deptadmin.NoticeError, Message: msg})
}
