package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/jobify/internal/domain/entity"
	"github.com/oksasatya/jobify/internal/domain/service"
	"github.com/oksasatya/jobify/pkg/apperror"
	"github.com/oksasatya/jobify/pkg/helpers"
	"github.com/oksasatya/jobify/pkg/response"
)

func init() { gin.SetMode(gin.TestMode) }

type stubTokens struct {
	claims *service.TokenClaims
	err    error
}

func (s stubTokens) Issue(service.TokenClaims) (string, time.Time, error) {
	return "", time.Time{}, nil
}

func (s stubTokens) Verify(string) (*service.TokenClaims, error) { return s.claims, s.err }

type stubSessions struct {
	sess *service.Session
	err  error
}

func (s stubSessions) Open(context.Context, service.Session, time.Duration) error { return nil }
func (s stubSessions) Get(context.Context, string) (*service.Session, error) { return s.sess, s.err }
func (s stubSessions) Touch(context.Context, string, map[string]any) error { return nil }
func (s stubSessions) Close(context.Context, string) error { return nil }

type envelope struct {
	Status    int    `json:"status"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

const uid = "64b7f0c2a1d3e4f5a6b7c8d9"

func authRouter(tokens service.TokenIssuer, sessions service.SessionStore) *gin.Engine {
	r := gin.New()
	r.GET("/me", Auth(tokens, sessions), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": UserIDFrom(c), "role": RoleFrom(c)})
	})
	r.GET("/admin", Auth(tokens, sessions), RequireRole(entity.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func withToken(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: helpers.TokenCookie, Value: "tkn"})
	return req
}

func TestAuthMissingCookie(t *testing.T) {
	r := authRouter(stubTokens{}, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication Invalid", decode(t, w).Message)
}

func TestAuthInvalidToken(t *testing.T) {
	r := authRouter(stubTokens{err: errors.New("bad sig")}, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, withToken(httptest.NewRequest(http.MethodGet, "/me", nil)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiresSession(t *testing.T) {
	tokens := stubTokens{claims: &service.TokenClaims{UserID: uid, Role: entity.RoleUser}}
	r := authRouter(tokens, stubSessions{err: service.ErrSessionNotFound})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, withToken(httptest.NewRequest(http.MethodGet, "/me", nil)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthSetsIdentityFromSession(t *testing.T) {
	tokens := stubTokens{claims: &service.TokenClaims{UserID: uid, Role: entity.RoleUser}}
	sessions := stubSessions{sess: &service.Session{UserID: uid, Role: entity.RoleAdmin}}
	r := authRouter(tokens, sessions)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, withToken(httptest.NewRequest(http.MethodGet, "/me", nil)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"`+uid+`","role":"admin"}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	tokens := stubTokens{claims: &service.TokenClaims{UserID: uid, Role: entity.RoleUser}}

	w := httptest.NewRecorder()
	authRouter(tokens, nil).ServeHTTP(w, withToken(httptest.NewRequest(http.MethodGet, "/admin", nil)))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authorized to access this route", decode(t, w).Message)

	admin := stubTokens{claims: &service.TokenClaims{UserID: uid, Role: entity.RoleAdmin}}
	w = httptest.NewRecorder()
	authRouter(admin, nil).ServeHTTP(w, withToken(httptest.NewRequest(http.MethodGet, "/admin", nil)))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware(), ErrorHandler(quietLogger()))
	r.GET("/missing", func(c *gin.Context) { _ = c.Error(apperror.NotFound("Job not found with id x")) })
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("db down")) })
	r.GET("/forbidden", func(c *gin.Context) { _ = c.Error(apperror.Unauthorized("Not authorized to access this route")) })

	cases := []struct {
		path    string
		status  int
		message string
	}{
		{"/missing", http.StatusNotFound, "Job not found with id x"},
		{"/boom", http.StatusInternalServerError, "Internal Server Error"},
		{"/forbidden", http.StatusForbidden, "Not authorized to access this route"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.status, w.Code)
			e := decode(t, w)
			assert.False(t, e.Success)
			assert.Equal(t, tc.message, e.Message)
			assert.NotEmpty(t, e.RequestID)
		})
	}
}

func TestRequestIDReusesValidHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(response.RequestIDKey)) })

	id := "2f1c1a52-6f34-4f0b-9bb0-6a3c8f5fd0a1"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
}

func TestRealIPPrefersCloudflareThenForwarded(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, ipFromCtx(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-Connecting-IP", "203.0.113.7")
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "203.0.113.7", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "198.51.100.1", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "198.51.100.9")
	req.Header.Set("X-Forwarded-For", "garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "198.51.100.9", w.Body.String())
}

func TestAllowFuncs(t *testing.T) {
	ctxFor := func(ip string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Set(CtxRealIPKey, ip)
		return c
	}

	private := AllowPrivateIP()
	assert.True(t, private(ctxFor("10.1.2.3")))
	assert.True(t, private(ctxFor("127.0.0.1")))
	assert.False(t, private(ctxFor("203.0.113.7")))

	cidrs := AllowCIDRs([]string{"203.0.113.0/24", "198.51.100.9", "not-an-ip"})
	assert.True(t, cidrs(ctxFor("203.0.113.200")))
	assert.True(t, cidrs(ctxFor("198.51.100.9")))
	assert.False(t, cidrs(ctxFor("198.51.100.10")))
	assert.False(t, AllowCIDRs(nil)(ctxFor("203.0.113.7")))

	either := AnyAllow(nil, private, cidrs)
	assert.True(t, either(ctxFor("10.0.0.1")))
	assert.True(t, either(ctxFor("203.0.113.5")))
	assert.False(t, either(ctxFor("8.8.8.8")))
}

func TestRateLimitWithoutRedisIsPassThrough(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(nil, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestKeyFuncs(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/jobs", nil)
	c.Set(CtxRealIPKey, "203.0.113.7")

	assert.Equal(t, "rl:ip:203.0.113.7", KeyByIP()(c))
	assert.Equal(t, "rl:path:/jobs:ip:203.0.113.7", KeyByIPAndPath()(c))
	assert.Equal(t, "rl:user:anon:ip:203.0.113.7", KeyByUserID()(c))
	c.Set(CtxUserIDKey, uid)
	assert.Equal(t, "rl:user:"+uid, KeyByUserID()(c))
}

func TestRemainingNeverNegative(t *testing.T) {
	assert.Equal(t, 5, remaining(5, 0))
	assert.Equal(t, 1, remaining(5, 4))
	assert.Equal(t, 0, remaining(5, 5))
	assert.Equal(t, 0, remaining(5, 9))
}
