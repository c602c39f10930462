// Package api is the client for the student registration backend. Every
// call is a JSON POST to a single endpoint, dispatched by its "action".
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppimalaysia/regform/pkg/model"
)

// DefaultBaseURL is the production endpoint
const DefaultBaseURL = "https://portal.ppimalaysia.id/assets/php/API/pendataan-mahasiswa.php"

// DefaultTimeout bounds a single backend call
const DefaultTimeout = 12 * time.Second

// ErrMissingField is returned when a required field is blank
var ErrMissingField = errors.New("missing required field")

// RejectedError is returned when the backend answers success:false
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

// Response is the decoded backend reply. Fields the client does not model
// are kept in Raw.
type Response struct {
	Success bool           `json:"success"`
	Token   string         `json:"token,omitempty"`
	Student map[string]any `json:"student,omitempty"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`

	Raw map[string]any `json:"-"`
}

// HasStudent reports whether the backend returned an existing record
func (r *Response) HasStudent() bool {
	return r != nil && r.Success && len(r.Student) > 0
}

// StudentName returns the existing record's full name, if any
func (r *Response) StudentName() string {
	if r == nil {
		return ""
	}
	if name, ok := r.Student["fullname"].(string); ok {
		return name
	}
	return ""
}

// Client talks to the backend. The zero value is not usable; use New.
type Client struct {
	BaseURL   string
	DeviceID  string
	UserAgent string
	// Width is reported to the backend with each call, as the terminal
	// width in columns.
	Width int

	token string
	http  *http.Client
}

// New creates a client. An empty baseURL means DefaultBaseURL and a
// non-positive timeout means DefaultTimeout.
func New(baseURL, deviceID string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL:   baseURL,
		DeviceID:  deviceID,
		UserAgent: "regform",
		http:      &http.Client{Timeout: timeout},
	}
}

// SetToken sets the bearer token sent with every call
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token
func (c *Client) Token() string {
	return c.token
}

// Check looks up an existing registration matching the step-one fields.
func (c *Client) Check(ctx context.Context, reg model.Registration) (*Response, error) {
	if missing := reg.MissingStepOne(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	return c.post(ctx, map[string]any{
		"action":        "check",
		"fullname":      strings.TrimSpace(reg.FullName),
		"dob":           strings.TrimSpace(reg.DOB),
		"passport":      strings.TrimSpace(reg.Passport),
		"phone_number":  reg.FullPhone(),
		"university_id": strings.TrimSpace(reg.UniversityID),
		"university":    strings.TrimSpace(reg.University),
		"w":             c.Width,
	})
}

// Get fetches the record owned by the current token
func (c *Client) Get(ctx context.Context) (*Response, error) {
	return c.post(ctx, map[string]any{
		"action": "get",
		"token":  c.token,
		"w":      c.Width,
	})
}

// Edit sends field updates for the current record
func (c *Client) Edit(ctx context.Context, updates map[string]any) (*Response, error) {
	body := make(map[string]any, len(updates)+2)
	for k, v := range updates {
		body[k] = v
	}
	body["action"] = "edit"
	body["dsw"] = c.Width
	if _, ok := body["token"]; !ok && c.token != "" {
		body["token"] = c.token
	}
	return c.post(ctx, body)
}

// Add creates a resource (e.g. "student") from payload
func (c *Client) Add(ctx context.Context, resource string, payload map[string]any) (*Response, error) {
	if strings.TrimSpace(resource) == "" {
		return nil, fmt.Errorf("%w: resource", ErrMissingField)
	}
	body := make(map[string]any, len(payload)+3)
	for k, v := range payload {
		body[k] = v
	}
	body["action"] = "add"
	body["resource"] = resource
	body["dsw"] = c.Width
	return c.post(ctx, body)
}

func (c *Client) post(ctx context.Context, body map[string]any) (*Response, error) {
	body["ua"] = c.UserAgent
	body["ugt"] = c.DeviceID

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, msg)
	}

	// An undecodable body is treated as an empty reply
	out := &Response{}
	if err := json.Unmarshal(raw, out); err == nil {
		_ = json.Unmarshal(raw, &out.Raw)
	} else {
		out = &Response{}
	}

	if !out.Success && out.Raw != nil {
		if v, ok := out.Raw["success"].(bool); ok && !v {
			msg := "server rejected request"
			if out.Error != nil && out.Error.Message != "" {
				msg = out.Error.Message
			}
			return out, &RejectedError{Message: msg}
		}
	}
	return out, nil
}
