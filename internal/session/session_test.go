package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-console-backend/internal/model"
	"hotel-console-backend/internal/upstream"
)

type fakeAuth struct {
	loginErr error
	meErr    error
	logins   int
}

func (f *fakeAuth) Login(ctx context.Context, creds model.Credentials) (*upstream.LoginResult, error) {
	f.logins++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &upstream.LoginResult{
		User:  model.User{ID: "u1", Username: creds.Username, FullName: "Front Desk"},
		Token: "upstream-token",
	}, nil
}

func (f *fakeAuth) Me(ctx context.Context, token string) (*model.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return &model.User{ID: "u1", Username: "frontdesk", FullName: "Front Desk (renamed)"}, nil
}

func TestManager_LoginResolveLogout(t *testing.T) {
	ctx := context.Background()
	m := NewManager(&fakeAuth{}, "test-secret", time.Hour)

	s, token, err := m.Login(ctx, model.Credentials{Username: "frontdesk", Password: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "upstream-token", s.UpstreamToken)
	assert.Equal(t, 1, m.Count())

	resolved, err := m.Resolve(token)
	require.NoError(t, err)
	assert.Same(t, s, resolved)

	m.Logout(ctx, s.ID)
	_, err = m.Resolve(token)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, m.Count())
}

func TestManager_LoginFailure(t *testing.T) {
	upErr := &upstream.Error{Status: 400, Message: "Invalid credentials"}
	m := NewManager(&fakeAuth{loginErr: upErr}, "test-secret", time.Hour)

	_, _, err := m.Login(context.Background(), model.Credentials{Username: "x", Password: "y"})
	var got *upstream.Error
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 0, m.Count())
}

func TestManager_ResolveRejectsBadTokens(t *testing.T) {
	m := NewManager(&fakeAuth{}, "test-secret", time.Hour)
	_, token, err := m.Login(context.Background(), model.Credentials{Username: "a", Password: "b"})
	require.NoError(t, err)

	other := NewManager(&fakeAuth{}, "other-secret", time.Hour)
	_, err = other.Resolve(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Resolve("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{SessionID: "x"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Resolve(noneToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Resolve(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Validate(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{}
	m := NewManager(auth, "test-secret", time.Hour)
	s, _, err := m.Login(ctx, model.Credentials{Username: "a", Password: "b"})
	require.NoError(t, err)

	u, err := m.Validate(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "Front Desk (renamed)", u.FullName)

	auth.meErr = errors.New("connection refused")
	_, err = m.Validate(ctx, s)
	assert.Error(t, err)
	assert.Equal(t, 1, m.Count(), "transport errors keep the session")

	auth.meErr = upstream.ErrUnauthorized
	_, err = m.Validate(ctx, s)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, m.Count(), "rejected token clears the session")
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := &Session{ID: "abc"}
	got, ok := FromContext(WithContext(context.Background(), s))
	assert.True(t, ok)
	assert.Same(t, s, got)
}
