package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/rms-templui/internal/app/client"
	"github.com/FACorreiaa/rms-templui/internal/app/components/banner"
	"github.com/FACorreiaa/rms-templui/internal/app/domain/navigation"
	"github.com/FACorreiaa/rms-templui/internal/app/middleware"
	"github.com/FACorreiaa/rms-templui/internal/app/models"
	"github.com/FACorreiaa/rms-templui/internal/app/pages"
)

type DashboardHandlers struct {
	*BaseHandler
	roleSwitch bool
}

func NewDashboardHandlers(base *BaseHandler, roleSwitch bool) *DashboardHandlers {
	return &DashboardHandlers{BaseHandler: base, roleSwitch: roleSwitch}
}

func (h *DashboardHandlers) ShowLanding(c *gin.Context) {
	v := h.Viewer(c)
	h.RenderPage(c, http.StatusOK, "RMS", "Home", pages.Landing(v, navigation.ResolveLandingPath(v.Role)))
}

// RedirectToRoleHome sends /dashboard to the signed-in role's own dashboard.
func (h *DashboardHandlers) RedirectToRoleHome(c *gin.Context) {
	role := client.FromContext(c).Machine.CurrentState().Role
	middleware.Redirect(c, navigation.ResolveLandingPath(role))
}

func (h *DashboardHandlers) ShowDashboard(c *gin.Context) {
	v := h.Viewer(c)
	h.RenderPage(c, http.StatusOK, "Dashboard - RMS", "Dashboard", pages.Dashboard(v, h.takeFlash(c)))
}

// ShowPlaceholder renders a role page whose backend feature is not wired yet.
func (h *DashboardHandlers) ShowPlaceholder(title, description string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.RenderPage(c, http.StatusOK, title+" - RMS", title, pages.Placeholder(title, description))
	}
}

func (h *DashboardHandlers) ShowProfile(c *gin.Context) {
	h.renderProfile(c, http.StatusOK, h.takeFlash(c))
}

func (h *DashboardHandlers) renderProfile(c *gin.Context, status int, notice banner.BannerProps) {
	b := client.FromContext(c)
	props := pages.ProfileProps{Viewer: h.Viewer(c), RoleSwitch: h.roleSwitch, Banner: notice}
	sess, ok, err := b.Store.Load(c.Request.Context())
	if err != nil {
		h.Logger.Warn("Failed to load session for profile", zap.Error(err))
	}
	if ok {
		props.UserInfo = sess.UserInfo
	}
	h.RenderPage(c, status, "Profile - RMS", "Profile", pages.Profile(props))
}

// SwitchRole is the development-only role switcher.
func (h *DashboardHandlers) SwitchRole(c *gin.Context) {
	b := client.FromContext(c)
	role := models.Role(c.PostForm("role"))
	if err := b.Machine.SwitchRole(c.Request.Context(), role); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, models.ErrRoleSwitchDisabled) {
			status = http.StatusForbidden
		}
		h.renderProfile(c, status, banner.BannerProps{Type: banner.BannerError, Message: err.Error(), Dismissable: true})
		return
	}
	h.Logger.Info("Role switched", zap.String("role", role.String()))
	middleware.Redirect(c, navigation.ResolveLandingPath(role))
}
