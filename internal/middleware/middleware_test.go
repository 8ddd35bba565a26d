package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/agassama1998/materialmanagementapp/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubParser map[string]domain.Principal

func (s stubParser) ParseToken(token string) (*domain.Principal, error) {
	p, ok := s[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &p, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	ok := func(c *gin.Context) {
		p, _ := domain.PrincipalFromContext(c.Request.Context())
		c.String(http.StatusOK, p.Email)
	}
	r.GET("/open", ok)
	r.POST("/open", ok)
	r.GET("/private", RequireAuth(), ok)
	r.DELETE("/admin", RequireRole(domain.RoleAdmin), ok)
	return r
}

func TestAuthenticateAndRoles(t *testing.T) {
	parser := stubParser{
		"admin-token": {UserID: 1, Email: "admin@x.io", Role: domain.RoleAdmin},
		"user-token":  {UserID: 2, Email: "user@x.io", Role: domain.RoleUser},
	}
	r := newRouter(Authenticate(parser, false, quietLogger()))

	cases := []struct {
		name   string
		method string
		path   string
		header string
		cookie string
		want   int
		body   string
	}{
		{"anonymous open", http.MethodGet, "/open", "", "", http.StatusOK, ""},
		{"anonymous private", http.MethodGet, "/private", "", "", http.StatusUnauthorized, ""},
		{"bearer private", http.MethodGet, "/private", "Bearer user-token", "", http.StatusOK, "user@x.io"},
		{"cookie private", http.MethodGet, "/private", "", "admin-token", http.StatusOK, "admin@x.io"},
		{"bad scheme", http.MethodGet, "/open", "Basic abc", "", http.StatusUnauthorized, ""},
		{"bad token", http.MethodGet, "/open", "Bearer nope", "", http.StatusUnauthorized, ""},
		{"stale cookie open", http.MethodGet, "/open", "", "nope", http.StatusOK, ""},
		{"stale cookie private", http.MethodGet, "/private", "", "nope", http.StatusUnauthorized, ""},
		{"user on admin route", http.MethodDelete, "/admin", "Bearer user-token", "", http.StatusForbidden, ""},
		{"admin on admin route", http.MethodDelete, "/admin", "Bearer admin-token", "", http.StatusOK, "admin@x.io"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: tc.cookie})
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, rec.Body.String())
			}
		})
	}
}

func TestAuthenticateClearsStaleCookie(t *testing.T) {
	r := newRouter(Authenticate(stubParser{}, false, quietLogger()))

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "signed.with.oldsecret"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, AuthCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestCSRF(t *testing.T) {
	r := newRouter(CSRF(quietLogger()))
	r.GET("/token", func(c *gin.Context) {
		c.String(http.StatusOK, IssueCSRFToken(c, false))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	token := rec.Body.String()
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CSRFCookieName, cookies[0].Name)
	assert.Equal(t, token, cookies[0].Value)

	t.Run("missing cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/open", nil)
		req.Header.Set(CSRFHeaderName, token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("header mismatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/open", nil)
		req.AddCookie(cookies[0])
		req.Header.Set(CSRFHeaderName, "other")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("header match", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/open", nil)
		req.AddCookie(cookies[0])
		req.Header.Set(CSRFHeaderName, token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("form field match", func(t *testing.T) {
		form := url.Values{CSRFFormField: {token}}
		req := httptest.NewRequest(http.MethodPost, "/open", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookies[0])
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequestIDAndLogger(t *testing.T) {
	r := newRouter(RequestID(), RequestLogger(quietLogger()), Metrics(nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := newRouter(CORS([]string{"http://localhost:5173"}))
	r.OPTIONS("/open", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodOptions, "/open", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
