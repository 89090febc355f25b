package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
)

// Session is the token cache the client reads and updates.
type Session interface {
	Token() string
	Save(token string, user *domain.User) error
	Clear() error
}

// Doer is satisfied by *fasthttp.Client.
type Doer interface {
	DoDeadline(req *fasthttp.Request, resp *fasthttp.Response, deadline time.Time) error
}

// Client talks to the task API. Every request carries the cached bearer
// token; a 401 from any endpoint clears the session and fires the logout hook.
type Client struct {
	baseURL  string
	http     Doer
	session  Session
	timeout  time.Duration
	onLogout func()
	logger   *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogoutHook is called after a 401 has cleared the session.
func WithLogoutHook(fn func()) Option {
	return func(c *Client) { c.onLogout = fn }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(baseURL string, session Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fasthttp.Client{
			Name:                "taskboard-cli",
			MaxIdleConnDuration: 30 * time.Second,
		},
		session: session,
		timeout: 10 * time.Second,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if c.session != nil {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(payload)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	var env transport.RawEnvelope
	if raw := resp.Body(); len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && status < 400 {
			return domain.WrapError(domain.ErrCodeInternal, "malformed response", err)
		}
	}

	if status == http.StatusUnauthorized {
		c.forceLogout()
		return domain.NewError(domain.ErrCodeUnauthorized, messageOr(env.Message(), "unauthorized"))
	}
	if status >= 400 {
		return domain.NewError(codeFor(status, env.Code), messageOr(env.Message(), http.StatusText(status)))
	}
	if out == nil || status == http.StatusNoContent || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "malformed response", err)
	}
	return nil
}

func (c *Client) forceLogout() {
	if c.session != nil {
		if err := c.session.Clear(); err != nil {
			c.logger.Warn("failed to clear session", zap.Error(err))
		}
	}
	c.logger.Info("session expired, signed out")
	if c.onLogout != nil {
		c.onLogout()
	}
}

func (c *Client) remember(result *domain.AuthResult) error {
	if c.session == nil || result == nil {
		return nil
	}
	return c.session.Save(result.Token, result.User)
}

func codeFor(status int, code string) domain.ErrorCode {
	if code != "" {
		return domain.ErrorCode(code)
	}
	switch status {
	case http.StatusBadRequest:
		return domain.ErrCodeInvalid
	case http.StatusForbidden:
		return domain.ErrCodeForbidden
	case http.StatusNotFound:
		return domain.ErrCodeNotFound
	case http.StatusConflict:
		return domain.ErrCodeConflict
	default:
		return domain.ErrCodeInternal
	}
}

func messageOr(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}

func taskPath(id domain.TaskID) string {
	return "/tasks/" + url.PathEscape(string(id))
}
