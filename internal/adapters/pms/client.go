// Package pms is the HTTP client for the external hotel PMS REST API.
package pms

import (
	"bytes"
	"context"
	crand "crypto/rand"
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

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"hotel_desk/internal/adapters/observability"
	"hotel_desk/internal/adapters/session"
	"hotel_desk/internal/domain"
)

const service = "pms"

// UnauthorizedFunc runs once per rejected token, after the session cache has
// been cleared. It is where the caller sends the user back to login.
type UnauthorizedFunc func(ctx context.Context, token string)

type Client struct {
	base     string
	hc       *http.Client
	rl       *rate.Limiter
	sessions session.Provider
	onUnauth UnauthorizedFunc

	mu      sync.Mutex
	revoked map[string]struct{}
}

type Option func(*Client)

func WithSessions(p session.Provider) Option { return func(c *Client) { c.sessions = p } }

func WithUnauthorized(fn UnauthorizedFunc) Option { return func(c *Client) { c.onUnauth = fn } }

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

func New(base string, rps int, timeout time.Duration, opts ...Option) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("PMS base URL is required")
	}
	if rps <= 0 {
		rps = 20
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	c := &Client{
		base: strings.TrimRight(base, "/"),
		hc: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
		revoked: make(map[string]struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// ---- Internals ----

type request struct {
	method      string
	path        string // concrete path, e.g. /rooms/42
	route       string // metrics label, e.g. /rooms/{id}
	query       url.Values
	body        []byte
	contentType string
	anonymous   bool // auth endpoints: no bearer token
}

func jsonRequest(method, path, route string, v any) (request, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return request{}, err
	}
	return request{method: method, path: path, route: route, body: b, contentType: "application/json"}, nil
}

// do sends r and decodes a 2xx body into out (nil to discard). Only GETs are
// retried; a mutation is sent once.
func (c *Client) do(ctx context.Context, r request, out any) error {
	token := ""
	if !r.anonymous {
		s, err := session.Resolve(ctx, c.sessions)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				return &domain.Error{Kind: domain.KindUnauthorized, Status: http.StatusUnauthorized,
					Message: "chưa đăng nhập", Err: err}
			}
			return err
		}
		token = s.Token
	}

	u := c.base + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	attempts := 1
	if r.method == http.MethodGet {
		attempts = 4
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		// client-side rate limiting
		if err := c.rl.Wait(ctx); err != nil {
			return err
		}

		// build a fresh request each attempt
		var body io.Reader
		if r.body != nil {
			body = bytes.NewReader(r.body)
		}
		req, err := http.NewRequestWithContext(ctx, r.method, u, body)
		if err != nil {
			return err
		}
		if r.contentType != "" {
			req.Header.Set("Content-Type", r.contentType)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "hotel-desk/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(service, r.method+" "+r.route, 0, time.Since(start))
			// network error or context canceled
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = &domain.Error{Kind: domain.KindConnection, Message: domain.ConnectionMessage, Err: err}
			// context-aware sleep before retry
			if i < attempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal(service, r.method+" "+r.route, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode == http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			b, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return err
			}
			return decodeBody(b, out)

		case resp.StatusCode == http.StatusUnauthorized:
			apiErr := readAPIError(resp)
			if r.anonymous {
				// bad credentials on an auth endpoint, not a dead session
				return apiErr
			}
			c.unauthorized(ctx, token)
			apiErr.Kind = domain.KindUnauthorized
			return apiErr

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			apiErr := readAPIError(resp)
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = apiErr
			if i < attempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			return readAPIError(resp)
		}
	}

	return lastErr
}

// unauthorized clears the session and fires the hook at most once per token,
// however many requests carrying it come back 401 concurrently.
// A request sent without a token is not a session to revoke, so it fires
// the hook every time.
func (c *Client) unauthorized(ctx context.Context, token string) {
	if token != "" {
		c.mu.Lock()
		if _, done := c.revoked[token]; done {
			c.mu.Unlock()
			return
		}
		if len(c.revoked) > 1024 {
			c.revoked = make(map[string]struct{})
		}
		c.revoked[token] = struct{}{}
		c.mu.Unlock()
	}

	if inv, ok := c.sessions.(session.Invalidator); ok {
		inv.Invalidate(token)
	}
	observability.ObserveSessionInvalidation()
	log.Warn().Msg("PMS rejected session token; forcing re-login")
	if c.onUnauth != nil {
		c.onUnauth(ctx, token)
	}
}

// readAPIError turns an error response into a *domain.Error. A {message}
// body makes it KindAPI; anything else stays generic.
func readAPIError(resp *http.Response) *domain.Error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
		Code    string          `json:"code"`
	}
	msg := ""
	if err := json.Unmarshal(b, &payload); err == nil {
		msg = messageText(payload.Message)
		if msg == "" {
			msg = payload.Error
		}
	}
	if msg == "" {
		return &domain.Error{Kind: domain.KindGeneric, Status: resp.StatusCode, Code: payload.Code,
			Message: fmt.Sprintf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))}
	}
	return domain.APIError(resp.StatusCode, payload.Code, msg)
}

// messageText accepts "message" as a string or as a list of strings
// (validation pipes on the API side emit the latter).
func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}

// decodeBody decodes b into out, unwrapping a {"data": ...} envelope if present.
func decodeBody(b []byte, out any) error {
	b = bytes.TrimSpace(b)
	if out == nil || len(b) == 0 {
		return nil
	}
	if b[0] == '{' {
		var env map[string]json.RawMessage
		if err := json.Unmarshal(b, &env); err == nil {
			if d := bytes.TrimSpace(env["data"]); len(d) > 0 && (d[0] == '{' || d[0] == '[') {
				b = d
			}
		}
	}
	return json.Unmarshal(b, out)
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	// seconds form
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	// HTTP-date form
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% jitter from crypto/rand, which is safe for concurrent use.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0                  // 0..1
	j := time.Duration(0.5 * f * float64(base)) // up to +50%
	return base + j
}

func pathID(prefix, id string) string { return prefix + "/" + url.PathEscape(id) }
