package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/rms-templui/internal/app/client"
	"github.com/FACorreiaa/rms-templui/internal/app/handlers"
	"github.com/FACorreiaa/rms-templui/internal/app/middleware"
	"github.com/FACorreiaa/rms-templui/internal/app/models"
	"github.com/FACorreiaa/rms-templui/internal/app/renderer"
	"github.com/FACorreiaa/rms-templui/internal/pkg/config"
)

type AppHandlers struct {
	Base      *handlers.BaseHandler
	Auth      *handlers.AuthHandlers
	Register  *handlers.RegisterHandlers
	Dashboard *handlers.DashboardHandlers
}

// Setup registers every route. The client middleware runs on all browser-facing routes
// so each request carries its browser context's bundle.
func Setup(r *gin.Engine, reg *client.Registry, cfg *config.Config, log *zap.Logger) {
	ginHTMLRenderer := r.HTMLRender
	r.HTMLRender = &renderer.HTMLTemplRenderer{FallbackHTMLRenderer: ginHTMLRenderer}

	setupRouter(r, setupDependencies(cfg, log), reg, cfg, log)
}

func setupDependencies(cfg *config.Config, log *zap.Logger) *AppHandlers {
	base := handlers.NewBaseHandler(log)
	return &AppHandlers{
		Base:      base,
		Auth:      handlers.NewAuthHandlers(base, cfg.Client.RememberMeTTL, !cfg.IsDevelopment()),
		Register:  handlers.NewRegisterHandlers(base),
		Dashboard: handlers.NewDashboardHandlers(base, cfg.DebugRoleSwitch),
	}
}

func setupRouter(r *gin.Engine, h *AppHandlers, reg *client.Registry, cfg *config.Config, log *zap.Logger) {
	r.GET("/healthz", h.Base.Healthz)

	app := r.Group("/")
	app.Use(client.Middleware(reg, log))

	// Public routes
	{
		app.GET("/", h.Dashboard.ShowLanding)
		app.GET("/login", h.Auth.ShowLogin)
		app.POST("/login", h.Auth.Login)
		app.POST("/logout", h.Auth.Logout)
	}

	register := app.Group("/register")
	{
		register.GET("", h.Register.ShowRegister)
		register.POST("/field", h.Register.SetField)
		register.POST("/next", h.Register.Next)
		register.POST("/back", h.Register.Back)
		register.POST("/submit", h.Register.Submit)
		register.POST("/exit", h.Register.Exit)
		register.POST("/exit/confirm", h.Register.ConfirmExit)
		register.POST("/exit/cancel", h.Register.CancelExit)
	}

	protected := app.Group("/")
	protected.Use(middleware.RequireAuth(log))
	{
		protected.GET("/dashboard", h.Dashboard.RedirectToRoleHome)
		protected.GET("/profile", h.Dashboard.ShowProfile)
		if cfg.DebugRoleSwitch {
			protected.POST("/debug/role", h.Dashboard.SwitchRole)
		}
	}

	tenant := app.Group("/")
	tenant.Use(middleware.RequireRole(models.RoleTenant, log))
	{
		tenant.GET("/tenant/dashboard", h.Dashboard.ShowDashboard)
		tenant.GET("/my-house", h.Dashboard.ShowPlaceholder("My House", "Your lease, unit and rent history will appear here."))
	}

	landlord := app.Group("/")
	landlord.Use(middleware.RequireRole(models.RoleLandlord, log))
	{
		landlord.GET("/landlord/dashboard", h.Dashboard.ShowDashboard)
		landlord.GET("/houses", h.Dashboard.ShowPlaceholder("Houses", "Your properties and units will appear here."))
		landlord.GET("/bookings", h.Dashboard.ShowPlaceholder("Bookings", "Viewing and move-in requests will appear here."))
		landlord.GET("/invoices", h.Dashboard.ShowPlaceholder("Invoices", "Rent invoices and payments will appear here."))
	}

	admin := app.Group("/")
	admin.Use(middleware.RequireRole(models.RoleAdmin, log))
	{
		admin.GET("/admin/dashboard", h.Dashboard.ShowDashboard)
	}

	// 404 handler - must be last
	r.NoRoute(client.Middleware(reg, log), h.Base.NotFound)
}
