// Package client is the HTTP/JSON client of the todo API.
package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/fluxorio/todolist/internal/task"
)

// DefaultBaseURL is used when no base URL is configured
const DefaultBaseURL = "http://localhost:5000/api"

// Doer sends one request. *fasthttp.Client satisfies it.
type Doer interface {
	Do(req *fasthttp.Request, resp *fasthttp.Response) error
}

// APIError is a non-2xx answer from the service
type APIError struct {
	Status  int
	Message string
	Err     string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fasthttp.StatusMessage(e.Status)
	}
	if e.Err != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, msg, e.Err)
	}
	return fmt.Sprintf("api: %d %s", e.Status, msg)
}

// Client talks to {base}/todos
type Client struct {
	base string
	doer Doer
}

// Option configures a Client
type Option func(*Client)

// WithDoer replaces the underlying HTTP client
func WithDoer(d Doer) Option {
	return func(c *Client) { c.doer = d }
}

// New creates a client for baseURL, falling back to DefaultBaseURL
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		doer: &fasthttp.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL
func (c *Client) BaseURL() string { return c.base }

// List fetches every task
func (c *Client) List() ([]task.Task, error) {
	var tasks []task.Task
	if err := c.do(fasthttp.MethodGet, "/todos", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

// Create stores a new task and returns it with its id and createdAt
func (c *Client) Create(d task.Draft) (*task.Task, error) {
	var created task.Task
	if err := c.do(fasthttp.MethodPost, "/todos", d, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces title and description of the task with id.
// It returns nil when the service no longer knows the id.
func (c *Client) Update(id string, d task.Draft) (*task.Task, error) {
	var updated *task.Task
	if err := c.do(fasthttp.MethodPut, "/todos/"+url.PathEscape(id), d, &updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the task with id
func (c *Client) Delete(id string) error {
	return c.do(fasthttp.MethodDelete, "/todos/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(method, path string, in, out interface{}) error {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.base + path)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	if err := c.doer.Do(req, resp); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		apiErr := &APIError{Status: status}
		var envelope struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(resp.Body(), &envelope) == nil {
			apiErr.Message, apiErr.Err = envelope.Message, envelope.Error
		}
		return apiErr
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
