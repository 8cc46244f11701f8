package http

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/benprew/deptadmin"
	"github.com/benprew/deptadmin/manager"
	"github.com/benprew/deptadmin/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webClient struct {
	t      *testing.T
	base   string
	client *http.Client
}

// newWebServer starts the admin page backed by service and returns a browser
// with its own cookie jar.
func newWebServer(t *testing.T, service deptadmin.DepartmentService, locale string) (*Server, *webClient) {
	t.Helper()
	s := NewServer()
	s.SetLocale(locale)
	s.Managers = manager.NewRegistry(service, s.Printer, time.Hour)
	s.Sessions = NewSessionManager(time.Hour, false, "")

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, newBrowser(t, ts.URL)
}

func newBrowser(t *testing.T, base string) *webClient {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &webClient{t: t, base: base, client: &http.Client{Jar: jar}}
}

func (c *webClient) get(path string) (int, string) {
	c.t.Helper()
	resp, err := c.client.Get(c.base + path)
	require.NoError(c.t, err)
	return readPage(c.t, resp)
}

func (c *webClient) post(path string, form url.Values) (int, string) {
	c.t.Helper()
	resp, err := c.client.PostForm(c.base+path, form)
	require.NoError(c.t, err)
	return readPage(c.t, resp)
}

func readPage(t *testing.T, resp *http.Response) (int, string) {
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func remoteService(t *testing.T) deptadmin.DepartmentService {
	api := newAPIServer(t, "")
	return remote.NewClient(api.URL + "/api")
}

func TestWebDepartmentFlow(t *testing.T) {
	_, b := newWebServer(t, remoteService(t), "en")

	status, body := b.get("/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Department list")
	assert.Contains(t, body, "No departments found")
	assert.Contains(t, body, "0 / 0")

	status, body = b.get("/department?dialog=create")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `action="/department"`)

	// digits are stripped from the name as it is entered
	status, body = b.post("/department", url.Values{"name": {"Sales2"}, "code": {"SAL"}})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "department created")
	assert.Contains(t, body, "<td>Sales</td>")
	assert.Contains(t, body, "1 / 1")
	assert.NotContains(t, body, `role="dialog"`)

	// notices are shown once
	_, body = b.get("/department")
	assert.NotContains(t, body, "department created")

	status, body = b.get("/department/1/edit")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `value="Sales"`)
	assert.Contains(t, body, `action="/department/1/edit"`)

	_, body = b.post("/department/1/edit", url.Values{"name": {"Ventes"}, "code": {"VEN"}})
	assert.Contains(t, body, "department updated")
	assert.Contains(t, body, "<td>Ventes</td>")

	_, body = b.get("/department?q=xyz")
	assert.Contains(t, body, "No department matches your search")
	assert.Contains(t, body, "0 / 1")

	_, body = b.get("/department?q=")
	assert.Contains(t, body, "1 / 1")

	status, body = b.get("/department/1/delete")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, deptadmin.MsgConfirmDelete)

	// declined: nothing happens
	_, body = b.post("/department/1/delete", url.Values{})
	assert.Contains(t, body, "<td>Ventes</td>")

	_, body = b.post("/department/1/delete", url.Values{"confirm": {"yes"}})
	assert.Contains(t, body, "department deleted")
	assert.Contains(t, body, "0 / 0")
}

func TestWebCreateInvalid(t *testing.T) {
	_, b := newWebServer(t, remoteService(t), "en")

	status, body := b.post("/department", url.Values{"name": {" "}, "code": {""}})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `role="dialog"`)
	assert.Contains(t, body, deptadmin.MsgNameRequired)
	assert.Contains(t, body, deptadmin.MsgCodeRequired)
	assert.Contains(t, body, "0 / 0")

	// dismissing closes the dialog and clears the errors
	_, body = b.get("/department?dismiss=1")
	assert.NotContains(t, body, `role="dialog"`)
	assert.NotContains(t, body, deptadmin.MsgNameRequired)
}

func TestWebCreateRemoteFailure(t *testing.T) {
	_, b := newWebServer(t, remoteService(t), "en")

	b.post("/department", url.Values{"name": {"Sales"}, "code": {"SAL"}})
	status, body := b.post("/department", url.Values{"name": {"Salespeople"}, "code": {"SAL"}})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "department code already exists")
	assert.Contains(t, body, `role="dialog"`)
	assert.Contains(t, body, `value="Salespeople"`)
}

func TestWebListFailure(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	_, b := newWebServer(t, remote.NewClient(down.URL+"/api"), "en")

	status, body := b.get("/department")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, deptadmin.MsgListFailed)
	assert.Contains(t, body, "No departments found")
}

func TestWebEditUnknownDepartment(t *testing.T) {
	_, b := newWebServer(t, remoteService(t), "en")

	status, body := b.get("/department/99/edit")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "department not found: 99")

	status, _ = b.get("/department/abc/delete")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWebSessionsAreSeparate(t *testing.T) {
	s, alice := newWebServer(t, remoteService(t), "en")
	bob := newBrowser(t, alice.base)

	alice.get("/department?q=sal")
	_, body := bob.get("/department")
	assert.NotContains(t, body, `value="sal"`)

	_, body = alice.get("/department")
	assert.Contains(t, body, `value="sal"`)
	assert.Equal(t, 2, s.Managers.Len())
}

func TestWebFrench(t *testing.T) {
	_, b := newWebServer(t, remoteService(t), "fr")

	_, body := b.get("/department")
	assert.Contains(t, body, `lang="fr"`)
	assert.Contains(t, body, "Liste des départements")
	assert.Contains(t, body, "Aucun département trouvé")

	_, body = b.post("/department", url.Values{"name": {""}, "code": {"X"}})
	assert.Contains(t, body, "Le nom du département est obligatoire.")
}

func TestStaticAssets(t *testing.T) {
	_, b := newWebServer(t, remoteService(t), "en")

	status, body := b.get("/css/app.css")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, ".preloader")
}

// failingService fails every mutation with a fixed server message.
type failingService struct {
	departments []*deptadmin.Department
	message     string
}

func (s *failingService) ListDepartments(ctx context.Context) ([]*deptadmin.Department, error) {
	return s.departments, nil
}

func (s *failingService) CreateDepartment(ctx context.Context, draft deptadmin.Draft) (string, error) {
	return "", &deptadmin.Error{Code: deptadmin.EINVALID, Message: s.message}
}

func (s *failingService) UpdateDepartment(ctx context.Context, id uint64, draft deptadmin.Draft) (string, error) {
	return "", &deptadmin.Error{Code: deptadmin.EINVALID, Message: s.message}
}

func (s *failingService) DeleteDepartment(ctx context.Context, id uint64) (string, error) {
	return "", &deptadmin.Error{Code: deptadmin.EINVALID, Message: s.message}
}

func TestWebRemoteMessageShownVerbatim(t *testing.T) {
	for _, locale := range []string{"en", "fr"} {
		t.Run(locale, func(t *testing.T) {
			service := &failingService{
				departments: []*deptadmin.Department{{ID: 1, Name: "Sales", Code: "SAL"}},
				message:     "quota 100% used (%s)",
			}
			_, b := newWebServer(t, service, locale)

			_, body := b.post("/department", url.Values{"name": {"Legal"}, "code": {"LEG"}})
			assert.Contains(t, body, "quota 100% used (%s)")
			assert.NotContains(t, body, "MISSING")

			_, body = b.post("/department/1/delete", url.Values{"confirm": {"yes"}})
			assert.Contains(t, body, "quota 100% used (%s)")
		})
	}
}

// seedDepartments creates departments straight through the API, bypassing
// any browser session.
func seedDepartments(t *testing.T, service deptadmin.DepartmentService, drafts ...deptadmin.Draft) {
	t.Helper()
	for _, d := range drafts {
		_, err := service.CreateDepartment(context.Background(), d)
		require.NoError(t, err)
	}
}

func TestWebUpdateFromNewSession(t *testing.T) {
	service := remoteService(t)
	seedDepartments(t, service, deptadmin.Draft{Name: "Sales", Code: "SAL"})
	_, b := newWebServer(t, service, "en")

	// first request of this browser is the form post
	status, body := b.post("/department/1/edit", url.Values{"name": {"Ventes"}, "code": {"VEN"}})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "department updated")
	assert.Contains(t, body, "<td>Ventes</td>")
}

func TestWebCreateFromNewSession(t *testing.T) {
	service := remoteService(t)
	seedDepartments(t, service, deptadmin.Draft{Name: "Sales", Code: "SAL"})
	_, b := newWebServer(t, service, "en")

	status, body := b.post("/department", url.Values{"name": {""}, "code": {""}})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, deptadmin.MsgNameRequired)
	assert.Contains(t, body, "<td>Sales</td>")
	assert.Contains(t, body, "1 / 1")
}

func TestFaviconNotRouted(t *testing.T) {
	_, b := newWebServer(t, remoteService(t), "en")

	status, _ := b.get("/robots.txt")
	assert.Equal(t, http.StatusOK, status)
	status, _ = b.get("/favicon.ico")
	assert.Equal(t, http.StatusNotFound, status)
}
