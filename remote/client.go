// Package remote implements deptadmin.DepartmentService against the
// department REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/benprew/deptadmin"
)

const (
	// APIKeyHeader is the HTTP header for API key authentication.
	APIKeyHeader = "X-API-Key"

	// DefaultTimeout bounds every request unless WithTimeout says otherwise.
	DefaultTimeout = 30 * time.Second
)

// Client talks to the department API rooted at a base URL such as
// "http://127.0.0.1:8081/api".
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
}

// Ensure client implements interface.
var _ deptadmin.DepartmentService = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP timeout for the client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithAPIKey sets the API key sent with every request.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient returns a client for the API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// listResponse is the body of GET /departments.
type listResponse struct {
	Data []*deptadmin.Department `json:"data"`
}

// messageResponse is the body of every mutating call and of every error.
type messageResponse struct {
	Message string `json:"message"`
}

// ListDepartments returns all departments.
func (c *Client) ListDepartments(ctx context.Context) ([]*deptadmin.Department, error) {
	resp, err := c.do(ctx, http.MethodGet, "/departments", nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp)
	}

	var result listResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Data == nil {
		result.Data = []*deptadmin.Department{}
	}
	return result.Data, nil
}

// CreateDepartment creates a department from draft. The draft's id is never
// sent.
func (c *Client) CreateDepartment(ctx context.Context, draft deptadmin.Draft) (string, error) {
	draft.ID = 0
	return c.send(ctx, http.MethodPost, "/departments", draft)
}

// UpdateDepartment updates department id with the draft's name and code.
func (c *Client) UpdateDepartment(ctx context.Context, id uint64, draft deptadmin.Draft) (string, error) {
	return c.send(ctx, http.MethodPut, departmentPath(id), draft)
}

// DeleteDepartment deletes department id.
func (c *Client) DeleteDepartment(ctx context.Context, id uint64) (string, error) {
	return c.send(ctx, http.MethodDelete, departmentPath(id), nil)
}

func departmentPath(id uint64) string {
	return "/departments/" + strconv.FormatUint(id, 10)
}

// send performs a mutating call and returns the server's message.
func (c *Client) send(ctx context.Context, method, path string, payload interface{}) (string, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("failed to encode department: %w", err)
		}
		body = bytes.NewReader(b)
	}

	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", parseError(resp)
	}

	var result messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return result.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}
	if id := deptadmin.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// parseError turns a non-2xx response into a *deptadmin.Error. The message is
// whatever the server put in {"message": ...}, possibly empty.
func parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var result messageResponse
	if len(body) > 0 {
		_ = json.Unmarshal(body, &result)
	}
	return &deptadmin.Error{
		Code:    errorCode(resp.StatusCode),
		Message: result.Message,
	}
}

// lookup of HTTP status codes to application error codes.
var codes = map[int]string{
	http.StatusConflict:       deptadmin.ECONFLICT,
	http.StatusBadRequest:     deptadmin.EINVALID,
	http.StatusNotFound:       deptadmin.ENOTFOUND,
	http.StatusNotImplemented: deptadmin.ENOTIMPLEMENTED,
	http.StatusUnauthorized:   deptadmin.EUNAUTHORIZED,
	http.StatusForbidden:      deptadmin.EUNAUTHORIZED,
}

func errorCode(status int) string {
	if code, ok := codes[status]; ok {
		return code
	}
	return deptadmin.EINTERNAL
}
