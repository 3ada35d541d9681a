package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"printhub/console/internal/auth"
	"printhub/console/internal/backend"
	"printhub/console/internal/config"
	"printhub/console/internal/fleet"
	"printhub/console/internal/jobs"
	"printhub/console/internal/middleware"
	"printhub/console/internal/models"
	"printhub/console/internal/notify"
	"printhub/console/internal/session"
	"printhub/console/internal/views"
)

// HealthCheck reports whether one dependency answers.
type HealthCheck func(ctx context.Context) error

type Options struct {
	Config     *config.AppConfig
	Log        zerolog.Logger
	Backend    *backend.Client
	Sessions   *session.Manager
	Monitor    *fleet.Monitor
	Scheduler  *jobs.Scheduler
	Dispatcher *notify.Dispatcher
	History    notify.History
	Checks     map[string]HealthCheck
}

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	backend    *backend.Client
	sessions   *session.Manager
	auth       *auth.Flow
	monitor    *fleet.Monitor
	scheduler  *jobs.Scheduler
	dispatcher *notify.Dispatcher
	history    notify.History
	checks     map[string]HealthCheck
}

func NewHandlerSet(opts Options) HandlerSet {
	return HandlerSet{
		log:        opts.Log,
		cfg:        opts.Config,
		backend:    opts.Backend,
		sessions:   opts.Sessions,
		auth:       auth.NewFlow(opts.Backend, opts.Sessions, opts.Log),
		monitor:    opts.Monitor,
		scheduler:  opts.Scheduler,
		dispatcher: opts.Dispatcher,
		history:    opts.History,
		checks:     opts.Checks,
	}
}

func (h HandlerSet) Register(router gin.IRouter) {
	router.GET("/healthz", h.Health)

	router.GET("/login", h.LoginForm)
	router.POST("/login", h.Login)
	router.GET("/register", h.SignUpForm)
	router.POST("/register", h.SignUp)
	router.POST("/logout", h.Logout)

	shell := router.Group("/")
	shell.Use(middleware.SessionGate())
	{
		shell.GET("/", h.Dashboard)
		shell.GET("/ws/notifications", h.LiveNotifications)

		shell.GET("/printers", h.ListPrinters)
		shell.POST("/printers/refresh", h.RefreshFleet)
		shell.POST("/printers/scan", h.ScanSubnet)
		shell.GET("/printers/:id", h.PrinterDetail)
		shell.POST("/printers/:id/refresh", h.RefreshPrinter)
		shell.POST("/printers/:id/delete", h.DeletePrinter)

		shell.GET("/add-printer", h.AddPrinterForm)
		shell.POST("/add-printer", h.AddPrinter)

		shell.GET("/settings", h.Settings)
		shell.POST("/settings/preferences", h.SavePreferences)
	}

	admin := shell.Group("/settings/users")
	admin.Use(middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.POST("", h.AddUser)
		admin.GET("/:id/delete", h.ConfirmDeleteUser)
		admin.POST("/:id/delete", h.DeleteUser)
	}
}

// page builds the shell data and consumes any pending flash message.
func (h HandlerSet) page(c *gin.Context, title, active string) views.Page {
	s := session.From(c)
	p := views.NewPage(s, title, active)
	p.Flash = h.sessions.PopFlash(c.Request.Context(), c.Writer, s)
	return p
}

func (h HandlerSet) caller(c *gin.Context) *backend.Caller {
	return h.backend.With(session.From(c))
}

func (h HandlerSet) flash(c *gin.Context, kind session.FlashKind, message string) {
	if err := h.sessions.SetFlash(c.Request.Context(), c.Writer, session.From(c), kind, message); err != nil {
		h.log.Warn().Err(err).Msg("store flash failed")
	}
}

func (h HandlerSet) notFound(c *gin.Context, message string) {
	p := h.page(c, "Not found", "")
	p.Error = message
	c.HTML(http.StatusNotFound, "error", p)
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
