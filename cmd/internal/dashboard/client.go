package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"notesboard/cmd/internal/contract"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 15 * time.Second

// Client talks to the notes HTTP API on behalf of one user.
type Client struct {
	http *resty.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{http: cli}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SignUp(ctx context.Context, req *contract.SignUpRequest) (*contract.MessageResponse, error) {
	var out contract.MessageResponse
	resp, err := c.request(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/api/sign-up")
	if err != nil {
		return nil, fmt.Errorf("sign-up request: %w", err)
	}

	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyCode(ctx context.Context, req *contract.VerifyCodeRequest) (*contract.MessageResponse, error) {
	var out contract.MessageResponse
	resp, err := c.request(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/api/verify-code")
	if err != nil {
		return nil, fmt.Errorf("verify-code request: %w", err)
	}

	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignIn opens a session and keeps its token for later calls.
func (c *Client) SignIn(ctx context.Context, req *contract.SignInRequest) (*contract.SignInResponse, error) {
	var out contract.SignInResponse
	resp, err := c.request(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/api/sign-in")
	if err != nil {
		return nil, fmt.Errorf("sign-in request: %w", err)
	}

	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	c.SetToken(out.Token)
	return &out, nil
}

func (c *Client) GetNotes(ctx context.Context) ([]*contract.NoteResponse, error) {
	var out contract.NotesResponse
	resp, err := c.authedRequest(ctx).
		SetResult(&out).
		Get("/api/get-notes")
	if err != nil {
		return nil, fmt.Errorf("get-notes request: %w", err)
	}

	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	if out.Notes == nil {
		out.Notes = []*contract.NoteResponse{}
	}
	return out.Notes, nil
}

func (c *Client) PostNote(ctx context.Context, req *contract.PostNoteRequest) error {
	resp, err := c.authedRequest(ctx).
		SetBody(req).
		Post("/api/post-note")
	if err != nil {
		return fmt.Errorf("post-note request: %w", err)
	}
	return mapHTTPError(resp)
}

func (c *Client) DeleteNote(ctx context.Context, noteID string) error {
	resp, err := c.authedRequest(ctx).
		Delete("/api/delete-note/" + url.PathEscape(noteID))
	if err != nil {
		return fmt.Errorf("delete-note request: %w", err)
	}
	return mapHTTPError(resp)
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetError(&errorBody{})
}

func (c *Client) authedRequest(ctx context.Context) *resty.Request {
	req := c.request(ctx)
	if token := c.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}
