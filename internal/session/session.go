// Package session keeps console operator sessions. A session is created on
// login, removed on logout, and removed when the upstream service stops
// accepting its token. Callers hold a *Session and pass it explicitly to
// whatever makes authenticated upstream calls.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"hotel-console-backend/internal/logger"
	"hotel-console-backend/internal/model"
	"hotel-console-backend/internal/upstream"
)

var (
	ErrNotFound     = errors.New("session: not found")
	ErrInvalidToken = errors.New("session: invalid token")
)

// Session is one logged-in operator.
type Session struct {
	ID            string     `json:"id"`
	User          model.User `json:"user"`
	UpstreamToken string     `json:"-"`
	CreatedAt     time.Time  `json:"createdAt"`
	ExpiresAt     time.Time  `json:"expiresAt"`
}

// Claims are embedded in the console token handed to the browser.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Authenticator checks credentials and tokens against the upstream service.
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) (*upstream.LoginResult, error)
	Me(ctx context.Context, token string) (*model.User, error)
}

// Manager creates, resolves and clears sessions.
type Manager struct {
	auth   Authenticator
	cache  *cache.Cache
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a manager whose sessions and tokens live for ttl.
func NewManager(auth Authenticator, secret string, ttl time.Duration) *Manager {
	return &Manager{
		auth:   auth,
		cache:  cache.New(ttl, 10*time.Minute),
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Login authenticates upstream and opens a session. The returned string is
// the signed console token.
func (m *Manager) Login(ctx context.Context, creds model.Credentials) (*Session, string, error) {
	res, err := m.auth.Login(ctx, creds)
	if err != nil {
		return nil, "", err
	}
	if res.Token == "" {
		return nil, "", errors.New("session: upstream login returned no token")
	}

	now := m.now().UTC()
	s := &Session{
		ID:            uuid.NewString(),
		User:          res.User,
		UpstreamToken: res.Token,
		CreatedAt:     now,
		ExpiresAt:     now.Add(m.ttl),
	}

	token, err := m.sign(s)
	if err != nil {
		return nil, "", err
	}
	m.cache.Set(s.ID, s, m.ttl)
	logger.Get(ctx).Infof("Session %s opened for %s", s.ID, s.User.Username)
	return s, token, nil
}

func (m *Manager) sign(s *Session) (string, error) {
	claims := &Claims{
		SessionID: s.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.User.ID,
			IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign jwt: %w", err)
	}
	return signed, nil
}

// Resolve validates a console token and returns its live session.
func (m *Manager) Resolve(tokenStr string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %T", t.Method)
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return m.Get(claims.SessionID)
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Session, error) {
	v, ok := m.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return v.(*Session), nil
}

// Validate re-checks the session's upstream token and refreshes the user.
// A rejected token clears the session.
func (m *Manager) Validate(ctx context.Context, s *Session) (*model.User, error) {
	u, err := m.auth.Me(ctx, s.UpstreamToken)
	if errors.Is(err, upstream.ErrUnauthorized) {
		m.Logout(ctx, s.ID)
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Logout clears a session. Unknown ids are ignored.
func (m *Manager) Logout(ctx context.Context, id string) {
	if _, ok := m.cache.Get(id); ok {
		m.cache.Delete(id)
		logger.Get(ctx).Infof("Session %s closed", id)
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	return m.cache.ItemCount()
}

type ctxKey struct{}

// WithContext attaches s to ctx.
func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached to ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
