package handlers

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/rms-templui/internal/app/client"
	"github.com/FACorreiaa/rms-templui/internal/app/middleware"
	"github.com/FACorreiaa/rms-templui/internal/app/models"
	"github.com/FACorreiaa/rms-templui/internal/app/pages"
)

type BaseHandler struct {
	Logger *zap.Logger
}

func NewBaseHandler(logger *zap.Logger) *BaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BaseHandler{Logger: logger}
}

// Viewer describes the browser context for the layout.
func (h *BaseHandler) Viewer(c *gin.Context) models.Viewer {
	b := client.FromContext(c)
	snap := b.Machine.CurrentState()
	v := models.Viewer{Authenticated: snap.IsAuthenticated, Role: snap.Role}
	if !v.Authenticated {
		return v
	}
	if sess, ok, err := b.Store.Load(c.Request.Context()); err == nil && ok {
		v.Username, _ = sess.UserInfo["username"].(string)
	}
	return v
}

func (h *BaseHandler) NewLayoutData(c *gin.Context, title, activeNav string, content templ.Component) models.LayoutTempl {
	v := h.Viewer(c)
	return models.LayoutTempl{
		Title:     title,
		Viewer:    v,
		Nav:       models.NavFor(v),
		ActiveNav: activeNav,
		Content:   content,
	}
}

func (h *BaseHandler) Render(c *gin.Context, status int, component templ.Component) {
	c.HTML(status, "", component)
}

// RenderPage always renders the full layout; hx-boost swaps the body.
func (h *BaseHandler) RenderPage(c *gin.Context, status int, title, activeNav string, content templ.Component) {
	h.Render(c, status, pages.LayoutPage(h.NewLayoutData(c, title, activeNav, content)))
}

// RenderFragment answers htmx with just the fragment and everything else with the full page.
func (h *BaseHandler) RenderFragment(c *gin.Context, status int, title string, fragment, page templ.Component) {
	if middleware.IsHTMX(c) {
		// htmx only swaps 2xx responses.
		h.Render(c, http.StatusOK, fragment)
		return
	}
	h.RenderPage(c, status, title, "", page)
}

// FollowRedirect applies a hard redirect the auth machine requested while this request
// was being handled, e.g. after a 401 from the backend.
func (h *BaseHandler) FollowRedirect(c *gin.Context) bool {
	path, ok := client.FromContext(c).TakeRedirect()
	if !ok {
		return false
	}
	middleware.Redirect(c, path)
	return true
}

func (h *BaseHandler) NotFound(c *gin.Context) {
	h.Logger.Info("404 - Page not found",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("ip", c.ClientIP()),
	)
	h.RenderPage(c, http.StatusNotFound, "Page Not Found - RMS", "", pages.NotFound())
}

func (h *BaseHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
