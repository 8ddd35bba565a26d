package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	CSRFCookieName = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
	CSRFFormField  = "_csrf"

	csrfCookieMaxAge = 12 * 60 * 60
)

// CSRF rejects state-changing requests whose token (header or form field)
// does not match the csrf_token cookie.
func CSRF(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		cookie, err := c.Cookie(CSRFCookieName)
		if err != nil || cookie == "" {
			log.Warnf("Middleware: Missing anti-forgery cookie on %s %s", c.Request.Method, c.Request.URL.Path)
			abortWithError(c, http.StatusForbidden, "missing anti-forgery token")
			return
		}

		submitted := c.GetHeader(CSRFHeaderName)
		if submitted == "" {
			submitted = c.PostForm(CSRFFormField)
		}
		if subtle.ConstantTimeCompare([]byte(cookie), []byte(submitted)) != 1 {
			log.Warnf("Middleware: Anti-forgery token mismatch on %s %s", c.Request.Method, c.Request.URL.Path)
			abortWithError(c, http.StatusForbidden, "invalid anti-forgery token")
			return
		}
		c.Next()
	}
}

// IssueCSRFToken sets a fresh csrf_token cookie and returns its value so the
// client can echo it back.
func IssueCSRFToken(c *gin.Context, secure bool) string {
	token := uuid.NewString()
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CSRFCookieName, token, csrfCookieMaxAge, "/", "", secure, true)
	return token
}
