package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/rms-templui/internal/app/client"
	"github.com/FACorreiaa/rms-templui/internal/app/domain/guard"
	"github.com/FACorreiaa/rms-templui/internal/app/models"
	"github.com/FACorreiaa/rms-templui/internal/app/observability/metrics"
	"github.com/FACorreiaa/rms-templui/internal/app/pages"
)

// RequireAuth lets any signed-in user through.
func RequireAuth(logger *zap.Logger) gin.HandlerFunc {
	return RequireRole(models.RoleNone, logger)
}

// RequireRole evaluates the route guard against the browser's current auth state on
// every request and applies its decision.
func RequireRole(role models.Role, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		b := client.FromContext(c)
		path := c.Request.URL.RequestURI()
		d := guard.Decide(b.Machine.CurrentState(), role, path)

		metrics.Get().GuardDecisionsTotal.Add(c.Request.Context(), 1, metric.WithAttributes(
			attribute.String("action", d.Action.String()),
			attribute.String("required_role", role.String()),
		))

		switch d.Action {
		case guard.Render:
			c.Next()
		case guard.Loading:
			c.HTML(http.StatusOK, "", pages.LayoutPage(models.LayoutTempl{
				Title:   "Loading - RMS",
				Nav:     models.OfflineNav,
				Content: pages.Loading(path),
			}))
			c.Abort()
		default:
			logger.Debug("Guard redirect",
				zap.String("path", path),
				zap.Stringer("action", d.Action),
				zap.String("location", d.Location))
			handleAuthRedirect(c, d.Location)
		}
	}
}
