package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ActorFromToken(ctx context.Context, raw string) (domain.Actor, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(domain.Actor), args.Error(1)
}

func (m *MockResolver) ActorFor(ctx context.Context, userID uint64) (domain.Actor, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Actor), args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func whoami(c *gin.Context) {
	a := ActorFrom(c)
	c.JSON(http.StatusOK, gin.H{"user": a.Username, "session": SessionID(c)})
}

func TestBearerAuth(t *testing.T) {
	resolver := new(MockResolver)
	resolver.On("ActorFromToken", mock.Anything, "good").Return(domain.Actor{UserID: 1, Username: "ada"}, nil)
	resolver.On("ActorFromToken", mock.Anything, "bad").Return(domain.Actor{}, domain.ErrAuthRequired)

	r := gin.New()
	r.Use(BearerAuth(resolver))
	r.GET("/me", whoami)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "anonymous", status: http.StatusOK, body: `"user":""`},
		{name: "valid token", header: "Bearer good", status: http.StatusOK, body: `"user":"ada"`},
		{name: "invalid token", header: "Bearer bad", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Contains(t, w.Body.String(), tt.body)
			}
		})
	}
}

func TestSessions_LoginAndLogoutRotateSessionID(t *testing.T) {
	resolver := new(MockResolver)
	resolver.On("ActorFor", mock.Anything, uint64(7)).Return(domain.Actor{UserID: 7, Username: "ada"}, nil)

	r := gin.New()
	r.Use(Sessions(NewCookieStore("0123456789abcdef0123456789abcdef", false, 3600), resolver))
	r.GET("/me", whoami)
	r.POST("/login", func(c *gin.Context) {
		_, err := Login(c, &domain.User{ID: 7, Username: "ada"})
		require.NoError(t, err)
		c.Status(http.StatusNoContent)
	})
	r.POST("/logout", func(c *gin.Context) {
		require.NoError(t, Logout(c))
		c.Status(http.StatusNoContent)
	})

	do := func(method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		for _, ck := range cookies {
			req.AddCookie(ck)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}
	lastCookie := func(w *httptest.ResponseRecorder) []*http.Cookie {
		cs := w.Result().Cookies()
		require.NotEmpty(t, cs)
		return cs[len(cs)-1:]
	}

	w := do(http.MethodGet, "/me", nil)
	cookies := lastCookie(w)
	assert.Contains(t, w.Body.String(), `"user":""`)

	w = do(http.MethodGet, "/me", cookies)
	first := w.Body.String()

	w = do(http.MethodPost, "/login", cookies)
	cookies = lastCookie(w)

	w = do(http.MethodGet, "/me", cookies)
	assert.Contains(t, w.Body.String(), `"user":"ada"`)
	loggedIn := sessionOf(w.Body.String())
	assert.NotEmpty(t, loggedIn)
	assert.NotEqual(t, sessionOf(first), loggedIn, "login issues a new session id")

	w = do(http.MethodPost, "/logout", cookies)
	cookies = lastCookie(w)

	w = do(http.MethodGet, "/me", cookies)
	assert.Contains(t, w.Body.String(), `"user":""`)
	assert.NotEqual(t, loggedIn, sessionOf(w.Body.String()))
}

func sessionOf(body string) string {
	var out struct {
		Session string `json:"session"`
	}
	_ = json.Unmarshal([]byte(body), &out)
	return out.Session
}

func TestSessions_DeletedUserIsLoggedOut(t *testing.T) {
	resolver := new(MockResolver)
	resolver.On("ActorFor", mock.Anything, uint64(7)).Return(domain.Actor{}, domain.ErrAuthRequired)

	r := gin.New()
	r.Use(Sessions(NewCookieStore("0123456789abcdef0123456789abcdef", false, 3600), resolver))
	r.GET("/me", whoami)
	r.POST("/login", func(c *gin.Context) {
		_, err := Login(c, &domain.User{ID: 7, Username: "ada"})
		require.NoError(t, err)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	cs := w.Result().Cookies()
	require.NotEmpty(t, cs)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cs[len(cs)-1])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"user":""`)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	r := gin.New()
	r.POST("/token", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/token", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.allow("1.2.3.4", now)
	rl.Cleanup(now.Add(time.Minute))
	assert.Len(t, rl.limiters, 1)
	rl.Cleanup(now.Add(time.Hour))
	assert.Empty(t, rl.limiters)
}
