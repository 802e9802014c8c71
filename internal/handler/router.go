package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nfc-card-admin/internal/form"
	"nfc-card-admin/internal/i18n"
	"nfc-card-admin/internal/metrics"
	"nfc-card-admin/internal/middleware"
	"nfc-card-admin/internal/service"
	"nfc-card-admin/pkg/utils"
)

// Services is everything the HTTP layer talks to.
type Services struct {
	Auth         *service.AuthService
	Citizens     *service.CitizenService
	Cards        *service.CardService
	Institutions *service.InstitutionService
	Dashboard    *service.DashboardService
	Reports      *service.ReportService
	Forms        *service.FormService
	Terminals    *service.TerminalService
}

// RouterConfig carries the transport settings of the router.
type RouterConfig struct {
	AllowedOrigins []string
	RefreshMaxAge  int
	SecureCookies  bool
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc Services, tokens *utils.TokenIssuer, tr *i18n.Translator, m *metrics.Metrics, log *zap.Logger, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log, m))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Locale(tr))

	authHandler := NewAuthHandler(svc.Auth, tr, cfg.RefreshMaxAge, cfg.SecureCookies)
	citizenHandler := NewCitizenHandler(svc.Citizens, tr)
	cardHandler := NewCardHandler(svc.Cards, tr)
	institutionHandler := NewInstitutionHandler(svc.Institutions, tr)
	reportHandler := NewReportHandler(svc.Dashboard, svc.Reports, tr)
	formHandler := NewFormHandler(svc.Forms, tr)
	terminalHandler := NewTerminalHandler(svc.Terminals, tr)

	requireAuth := middleware.AuthMiddleware(tokens, tr)
	requireAdmin := middleware.RequireAdmin(tr)
	formAccess := middleware.NewAccessControlMiddleware(svc.Forms, tr, service.ErrFormNotFound)

	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "nfc-card-admin",
		})
	})
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	auth := r.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", requireAuth, authHandler.Me)
		auth.POST("/users", requireAuth, requireAdmin, authHandler.CreateUser)
	}

	// NFC terminals authenticate with their institution's API key
	terminal := r.Group("/terminal/institutions/:institution_id")
	terminal.Use(middleware.APIKeyAuthMiddleware(svc.Terminals, tr))
	{
		terminal.POST("/taps", terminalHandler.RecordTap)
	}

	api := r.Group("/api")
	api.Use(requireAuth)

	api.GET("/dashboard", reportHandler.Dashboard)

	citizens := api.Group("/citizens")
	{
		citizens.GET("", citizenHandler.List)
		citizens.GET("/search", citizenHandler.Search)
		citizens.GET("/:id", citizenHandler.Get)
		citizens.POST("", citizenHandler.Create)
		citizens.PUT("/:id", citizenHandler.Update)
		citizens.DELETE("/:id", requireAdmin, citizenHandler.Delete)
	}

	cards := api.Group("/cards")
	{
		cards.GET("", cardHandler.List)
		cards.GET("/:id", cardHandler.Get)
		cards.POST("", cardHandler.Issue)
		cards.POST("/:id/actions/:action", cardHandler.Action)
		cards.POST("/:id/usage", cardHandler.Usage)
	}

	institutions := api.Group("/institutions")
	{
		institutions.GET("", institutionHandler.List)
		institutions.GET("/:id", institutionHandler.Get)
		institutions.POST("", institutionHandler.Create)
		institutions.PUT("/:id", institutionHandler.Update)
		institutions.POST("/:id/actions/:action", institutionHandler.Action)
		institutions.GET("/:id/terminal-keys", requireAdmin, terminalHandler.ListKeys)
		institutions.POST("/:id/terminal-keys", requireAdmin, terminalHandler.GenerateKey)
	}

	terminalKeys := api.Group("/terminal-keys", requireAdmin)
	{
		terminalKeys.POST("/:keyId/revoke", terminalHandler.RevokeKey)
		terminalKeys.DELETE("/:keyId", terminalHandler.DeleteKey)
	}

	reports := api.Group("/reports")
	{
		reports.GET("/citizens", reportHandler.Citizens)
		reports.GET("/cards", reportHandler.Cards)
		reports.GET("/institutions", reportHandler.Institutions)
		reports.GET("/export", reportHandler.Export)
	}

	forms := api.Group("/forms")
	for _, kind := range []string{form.CitizenForm, form.CardIssueForm, form.InstitutionForm} {
		forms.POST("/"+kind, formHandler.Open(kind))
	}
	sessions := forms.Group("/:sid")
	sessions.Use(formAccess.CheckFormAccess())
	{
		sessions.GET("", formHandler.State)
		sessions.DELETE("", formHandler.Close)
		sessions.PUT("/fields/:field", formHandler.SetField)
		sessions.POST("/blur/:field", formHandler.BlurField)
		sessions.POST("/items/:field", formHandler.AddItem)
		sessions.DELETE("/items/:field/:index", formHandler.RemoveItem)
		sessions.POST("/advance", formHandler.Advance)
		sessions.POST("/retreat", formHandler.Retreat)
		sessions.POST("/submit", formHandler.Submit)
		sessions.POST("/cancel", formHandler.Cancel)
		sessions.GET("/citizens", formHandler.SearchCitizens)
		sessions.POST("/citizens/:citizenId", formHandler.SelectCitizen)
	}

	return r
}
