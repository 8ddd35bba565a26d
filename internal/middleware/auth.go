package middleware

import (
	"net/http"
	"strings"

	"github.com/agassama1998/materialmanagementapp/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	// AuthCookieName carries the access token for browser clients.
	AuthCookieName = "access_token"
	principalKey   = "principal"
)

type TokenParser interface {
	ParseToken(token string) (*domain.Principal, error)
}

type tokenSource int

const (
	noToken tokenSource = iota
	headerToken
	cookieToken
)

// Authenticate resolves the caller from a Bearer header or the auth cookie.
// Requests without credentials pass through anonymously; a bad Bearer token is 401.
// A bad cookie is cleared and the request continues anonymously.
func Authenticate(parser TokenParser, cookieSecure bool, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, source := extractToken(c)
		if source == noToken {
			c.Next()
			return
		}
		if rawToken == "" {
			log.Warn("Middleware: Invalid Authorization header format")
			abortWithError(c, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		principal, err := parser.ParseToken(rawToken)
		if err != nil {
			if source == cookieToken {
				log.Infof("Middleware: Clearing stale auth cookie: %v", err)
				c.SetSameSite(http.SameSiteLaxMode)
				c.SetCookie(AuthCookieName, "", -1, "/", "", cookieSecure, true)
				c.Next()
				return
			}
			log.Warnf("Middleware: Rejected token: %v", err)
			abortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(principalKey, *principal)
		c.Request = c.Request.WithContext(domain.ContextWithPrincipal(c.Request.Context(), *principal))
		c.Next()
	}
}

func extractToken(c *gin.Context) (string, tokenSource) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", headerToken
		}
		return strings.TrimSpace(parts[1]), headerToken
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie != "" {
		return cookie, cookieToken
	}
	return "", noToken
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentPrincipal(c); !ok {
			abortWithError(c, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
			return
		}
		c.Next()
	}
}

// RequireRole admits authenticated callers holding one of roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
			return
		}
		for _, role := range roles {
			if p.HasRole(role) {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, domain.ErrForbidden.Error())
	}
}

func CurrentPrincipal(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

// abortWithError writes the same envelope the handlers use.
func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"Status": "Fail", "Message": message})
}
