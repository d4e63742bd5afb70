package client

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	contextKey   = "rms.client"
	sessionKeyID = "client_id"
)

// Middleware resolves the browser's client id from the signed cookie session, minting one
// on first visit, and attaches its Bundle to the request.
func Middleware(reg *Registry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		id, _ := s.Get(sessionKeyID).(string)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			s.Set(sessionKeyID, id)
			if err := s.Save(); err != nil {
				logger.Warn("Failed to save client cookie", zap.Error(err))
			}
		}

		b := reg.Get(c.Request.Context(), id)
		// Redirects requested during an earlier request are stale by now.
		b.TakeRedirect()

		if c.Request.Method == http.MethodGet && !strings.HasPrefix(c.Request.URL.Path, "/register") && b.Wizard.Mounted() {
			b.Wizard.Unmount()
		}

		c.Set(contextKey, b)
		c.Next()
	}
}

// FromContext returns the request's Bundle. It panics when Middleware did not run,
// which is a routing bug.
func FromContext(c *gin.Context) *Bundle {
	return c.MustGet(contextKey).(*Bundle)
}

// CookieOptions are the client cookie's attributes. It lasts for the browser session.
func CookieOptions(secure bool) sessions.Options {
	return sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Remember sets the client cookie's lifetime: ttl when rememberMe, the browser session otherwise.
func Remember(c *gin.Context, rememberMe bool, ttl time.Duration, secure bool) error {
	s := sessions.Default(c)
	opts := CookieOptions(secure)
	if rememberMe {
		opts.MaxAge = int(ttl.Seconds())
	}
	s.Options(opts)
	return s.Save()
}
