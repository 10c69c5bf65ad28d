package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/borderease/internal/client/models"
	"github.com/dmitrijs2005/borderease/internal/common"
	"github.com/dmitrijs2005/borderease/internal/logging"
)

const (
	DefaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	logger  logging.Logger

	mu     sync.RWMutex
	tokens TokenSource
}

type Option func(*HTTPClient)

func WithHTTPClient(h *http.Client) Option { return func(c *HTTPClient) { c.http = h } }

func WithTimeout(d time.Duration) Option { return func(c *HTTPClient) { c.timeout = d } }

func WithLogger(l logging.Logger) Option { return func(c *HTTPClient) { c.logger = l } }

func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{},
		timeout: DefaultTimeout,
		logger:  logging.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// SetTokenSource installs the identity token provider. Safe to call while
// requests are in flight.
func (c *HTTPClient) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

func (c *HTTPClient) tokenSource() TokenSource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/visas", url.Values{"limit": {"1"}}, nil, nil)
}

func (c *HTTPClient) ListVisas(ctx context.Context, limit int) ([]models.Visa, error) {
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var out []models.Visa
	if err := c.do(ctx, "list visas", http.MethodGet, "/visas", q, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *HTTPClient) GetVisa(ctx context.Context, id string) (*models.Visa, error) {
	var out models.Visa
	if err := c.do(ctx, "get visa", http.MethodGet, "/visas/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListVisasByOwner(ctx context.Context, email string) ([]models.Visa, error) {
	var out []models.Visa
	if err := c.do(ctx, "list own visas", http.MethodGet, "/visas/user/"+url.PathEscape(email), nil, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// created accepts either the stored record or an {insertedId} acknowledgement.
type created[T any] struct {
	Record     T
	InsertedID string
}

func (cr *created[T]) UnmarshalJSON(b []byte) error {
	var ack struct {
		InsertedID string `json:"insertedId"`
	}
	if err := json.Unmarshal(b, &ack); err != nil {
		return err
	}
	cr.InsertedID = ack.InsertedID
	return json.Unmarshal(b, &cr.Record)
}

func (c *HTTPClient) CreateVisa(ctx context.Context, v models.Visa) (*models.Visa, error) {
	var out created[models.Visa]
	if err := c.do(ctx, "create visa", http.MethodPost, "/visas", nil, v, &out); err != nil {
		return nil, err
	}
	rec := out.Record
	if rec.ID == "" {
		rec = v
		rec.ID = out.InsertedID
	}
	return &rec, nil
}

func (c *HTTPClient) UpdateVisa(ctx context.Context, v models.Visa) error {
	if v.ID == "" {
		return fmt.Errorf("update visa: %w: missing id", ErrBadRequest)
	}
	return c.do(ctx, "update visa", http.MethodPut, "/visas/"+url.PathEscape(v.ID), nil, v, nil)
}

func (c *HTTPClient) DeleteVisa(ctx context.Context, id string) error {
	return c.do(ctx, "delete visa", http.MethodDelete, "/visas/"+url.PathEscape(id), nil, nil, nil)
}

func (c *HTTPClient) ListApplications(ctx context.Context, email string) ([]models.Application, error) {
	var out []models.Application
	if err := c.do(ctx, "list applications", http.MethodGet, "/applications/user/"+url.PathEscape(email), nil, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *HTTPClient) CreateApplication(ctx context.Context, a models.Application) (*models.Application, error) {
	var out created[models.Application]
	if err := c.do(ctx, "create application", http.MethodPost, "/applications", nil, a, &out); err != nil {
		return nil, err
	}
	rec := out.Record
	if rec.ID == "" {
		rec = a
		rec.ID = out.InsertedID
	}
	return &rec, nil
}

func (c *HTTPClient) DeleteApplication(ctx context.Context, id string) error {
	return c.do(ctx, "delete application", http.MethodDelete, "/applications/"+url.PathEscape(id), nil, nil, nil)
}

func (c *HTTPClient) SaveUser(ctx context.Context, u models.UserRecord) error {
	return c.do(ctx, "save user", http.MethodPost, "/users", nil, u, nil)
}

func (c *HTTPClient) UpdateUser(ctx context.Context, email string, patch models.UserPatch) error {
	return c.do(ctx, "update user", http.MethodPut, "/users/"+url.PathEscape(email), nil, patch, nil)
}

func (c *HTTPClient) do(ctx context.Context, op, method, path string, q url.Values, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
	}

	ts := c.tokenSource()
	token := ""
	if ts != nil {
		var err error
		if token, err = ts.IDToken(ctx); err != nil {
			c.logger.Warn(ctx, "identity token unavailable, sending anonymously", "op", op, "error", err)
			token = ""
		}
	}

	resp, err := c.send(ctx, method, path, q, payload, token)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	// one refresh and replay for a rejected token, nothing else is retried
	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		drain(resp)
		fresh, rerr := ts.RefreshIDToken(ctx)
		if rerr != nil || fresh == "" {
			c.logger.Warn(ctx, "token refresh failed", "op", op, "error", rerr)
			return fmt.Errorf("%s: %w", op, ErrUnauthorized)
		}
		if resp, err = c.send(ctx, method, path, q, payload, fresh); err != nil {
			return &NetworkError{Op: op, Err: err}
		}
	}
	defer drain(resp)

	if err := c.mapError(op, resp); err != nil {
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, method, path string, q url.Values, payload []byte, token string) (*http.Response, error) {
	u := *c.baseURL
	// path segments arrive escaped
	u.RawPath = c.baseURL.EscapedPath() + path
	unescaped, err := url.PathUnescape(u.RawPath)
	if err != nil {
		return nil, err
	}
	u.Path = unescaped
	u.RawQuery = q.Encode()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}

	c.logger.Debug(ctx, "api request", "method", method, "path", u.Path)
	return c.http.Do(req)
}

func (c *HTTPClient) mapError(op string, resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	msg := errorMessage(resp)

	var target error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		target = ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		target = ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		target = ErrNotFound
	case resp.StatusCode >= 500:
		target = ErrUnavailable
	default:
		target = ErrBadRequest
	}

	if msg == "" {
		return fmt.Errorf("%s: %w", op, target)
	}
	return fmt.Errorf("%s: %w: %s", op, target, msg)
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from the body.
func errorMessage(resp *http.Response) string {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(b) == 0 {
		return ""
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(b, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		return body.Message
	}
	return strings.TrimSpace(string(b))
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// IsUnavailable reports whether err means the API could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
