// Package session resolves the bearer token used for PMS API calls.
//
// A token forwarded from the dashboard (WithToken) always wins. Otherwise the
// configured Provider is asked, normally through Cached so a service login is
// reused for at most a few minutes.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"hotel_desk/internal/domain"
)

type Provider interface {
	Session(ctx context.Context) (domain.Session, error)
}

// Invalidator is implemented by providers that cache sessions.
type Invalidator interface {
	// Invalidate drops the cached session if it still holds token and
	// reports whether anything was dropped.
	Invalidate(token string) bool
}

type ctxKey struct{}

func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	s, _ := ctx.Value(ctxKey{}).(string)
	return s
}

// Fingerprint identifies a token without keeping it. The empty token has the
// empty fingerprint.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:12])
}

// Resolve returns the session for ctx: the forwarded token if any, else p's.
func Resolve(ctx context.Context, p Provider) (domain.Session, error) {
	if tok := TokenFrom(ctx); tok != "" {
		return FromToken(tok), nil
	}
	if p == nil {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	return p.Session(ctx)
}

// FromToken reads identity and expiry from a JWT without verifying it;
// verification is the PMS API's business. Opaque tokens yield a session with
// only Token set.
func FromToken(token string) domain.Session {
	s := domain.Session{Token: token}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return s
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	for _, k := range []string{"userId", "id", "sub"} {
		if v, ok := claims[k].(string); ok && v != "" {
			s.UserID = v
			break
		}
	}
	if v, ok := claims["hotelId"].(string); ok {
		s.HotelID = v
	}
	return s
}

// Cached memoises another provider's session for at most ttl, or until the
// token expires if that comes first.
type Cached struct {
	src Provider
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	cur   domain.Session
	until time.Time
	sf    singleflight.Group
}

func NewCached(src Provider, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cached{src: src, ttl: ttl, now: time.Now}
}

func (c *Cached) Session(ctx context.Context) (domain.Session, error) {
	c.mu.Lock()
	now := c.now()
	if c.cur.Valid(now) && now.Before(c.until) {
		s := c.cur
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	// the login outlives any one caller; each caller still stops waiting
	// when its own ctx ends
	ch := c.sf.DoChan("session", func() (any, error) {
		s, err := c.src.Session(context.WithoutCancel(ctx))
		if err != nil {
			return domain.Session{}, err
		}
		if s.ExpiresAt.IsZero() {
			s.ExpiresAt = FromToken(s.Token).ExpiresAt
		}
		now := c.now()
		until := now.Add(c.ttl)
		if !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(until) {
			until = s.ExpiresAt
		}
		c.mu.Lock()
		c.cur, c.until = s, until
		c.mu.Unlock()
		return s, nil
	})
	select {
	case <-ctx.Done():
		return domain.Session{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Session{}, res.Err
		}
		return res.Val.(domain.Session), nil
	}
}

func (c *Cached) Invalidate(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token == "" || c.cur.Token != token {
		return false
	}
	c.cur, c.until = domain.Session{}, time.Time{}
	return true
}

// Authenticator exchanges credentials for a session (POST /auth/login).
type Authenticator interface {
	Login(ctx context.Context, username, password string) (domain.Session, error)
}

// Login is a Provider backed by fixed service credentials.
type Login struct {
	auth     Authenticator
	username string
	password string
}

func NewLogin(auth Authenticator, username, password string) *Login {
	return &Login{auth: auth, username: username, password: password}
}

func (l *Login) Session(ctx context.Context) (domain.Session, error) {
	if l.username == "" {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	return l.auth.Login(ctx, l.username, l.password)
}
