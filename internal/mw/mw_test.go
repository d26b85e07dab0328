package mw

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"hotel-console-backend/internal/model"
	"hotel-console-backend/internal/session"
	"hotel-console-backend/internal/upstream"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestResponseCache(t *testing.T) {
	rc := NewResponseCache(time.Minute)
	calls := 0

	r := gin.New()
	r.Use(RequestID())
	r.GET("/logs", rc.Handler(), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	r.GET("/broken", rc.Handler(), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream down"})
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	first := get("/logs")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := get("/logs")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))
	assert.NotEqual(t, first.Header().Get("X-Request-ID"), second.Header().Get("X-Request-ID"))
	assert.Equal(t, 1, calls)

	rc.Invalidate()
	assert.Equal(t, 0, rc.Len())
	third := get("/logs")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)

	get("/broken")
	get("/broken")
	assert.Equal(t, 4, calls, "errors are never cached")
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(rate.Limit(1), 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "limits are per client")
}

func TestIPRateLimiter_ForgetsIdleClients(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 1)
	now := time.Now()
	l.now = func() time.Time { return now }

	l.GetLimiter("a")
	l.GetLimiter("b")
	assert.Equal(t, 2, l.Len())

	now = now.Add(time.Hour)
	l.GetLimiter("c")
	assert.Equal(t, 1, l.Len())
}

type stubAuth struct{}

func (stubAuth) Login(ctx context.Context, creds model.Credentials) (*upstream.LoginResult, error) {
	return &upstream.LoginResult{User: model.User{ID: "u1", Username: creds.Username}, Token: "up"}, nil
}

func (stubAuth) Me(ctx context.Context, token string) (*model.User, error) {
	return &model.User{ID: "u1"}, nil
}

func TestAuthRequired(t *testing.T) {
	sessions := session.NewManager(stubAuth{}, "secret", time.Hour)
	s, token, err := sessions.Login(context.Background(), model.Credentials{Username: "desk", Password: "pw"})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthRequired(sessions), func(c *gin.Context) {
		fromCtx, ok := session.FromContext(c.Request.Context())
		assert.True(t, ok)
		assert.Same(t, GetSession(c), fromCtx)
		c.JSON(http.StatusOK, gin.H{"id": GetSession(c).ID})
	})

	testCases := []struct {
		name   string
		header string
		code   int
	}{
		{name: "missing header", header: "", code: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", code: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", code: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + token, code: http.StatusOK},
		{name: "scheme is case-insensitive", header: "bearer " + token, code: http.StatusOK},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.code, w.Code)
			if tc.code == http.StatusOK {
				assert.Contains(t, w.Body.String(), s.ID)
			}
		})
	}

	sessions.Logout(context.Background(), s.ID)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "token of a closed session is rejected")
}

func TestRequestID_KeepsIncomingHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), AccessLog())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "trace-1")
	r.ServeHTTP(w, req)
	assert.Equal(t, "trace-1", w.Body.String())
	assert.Equal(t, "trace-1", w.Header().Get("X-Request-ID"))
}
