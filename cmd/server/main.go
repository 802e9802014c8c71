package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"nfc-card-admin/internal/config"
	"nfc-card-admin/internal/database"
	"nfc-card-admin/internal/handler"
	"nfc-card-admin/internal/i18n"
	"nfc-card-admin/internal/metrics"
	"nfc-card-admin/internal/repository"
	"nfc-card-admin/internal/service"
	"nfc-card-admin/pkg/logger"
	"nfc-card-admin/pkg/utils"
)

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()

	log, err := logger.New(cfg.Server.GinMode, "nfc-card-admin")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	log.Info("Configuration loaded", zap.String("storage", cfg.Database.Driver))

	// 2. Open the registries
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg, err := openRegistries(cfg, log)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}
	if cfg.App.SeedData {
		seeded, err := repository.SeedIfEmpty(ctx, reg)
		if err != nil {
			log.Fatal("Failed to seed registries", zap.Error(err))
		}
		if seeded {
			log.Info("Seeded demo citizens, cards and institutions")
		}
	}

	// 3. Localization and request validation
	tr, err := i18n.New(cfg.App.DefaultLocale)
	if err != nil {
		log.Fatal("Failed to load translations", zap.Error(err))
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := tr.RegisterValidator(v); err != nil {
			log.Fatal("Failed to register validation messages", zap.Error(err))
		}
	}

	// 4. Metrics
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(promReg)

	// 5. Services
	tokens := utils.NewTokenIssuer(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	authService := service.NewAuthService(reg, tokens)
	if created, err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal("Failed to create administrator", zap.Error(err))
	} else if created {
		log.Info("Administrator account created", zap.String("email", cfg.Admin.Email))
	}

	citizenService := service.NewCitizenService(reg, cfg.App.ListPageSize)
	cardService := service.NewCardService(reg, m, cfg.App.ListPageSize)
	institutionService := service.NewInstitutionService(reg, m, cfg.App.ListPageSize)
	formService := service.NewFormService(citizenService, cardService, institutionService, m, log,
		cfg.App.FormSessionTTL, cfg.App.FormRedirectDelay)
	workerService := service.NewWorkerService(reg, formService, m, log, cfg.App.WorkerInterval)

	// 6. Start background worker in goroutine
	go workerService.Start(ctx)

	// 7. Router
	gin.SetMode(cfg.Server.GinMode)
	r := handler.NewRouter(handler.Services{
		Auth:         authService,
		Citizens:     citizenService,
		Cards:        cardService,
		Institutions: institutionService,
		Dashboard:    service.NewDashboardService(reg),
		Reports:      service.NewReportService(reg),
		Forms:        formService,
		Terminals:    service.NewTerminalService(reg, cardService),
	}, tokens, tr, m, log, handler.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RefreshMaxAge:  int(cfg.JWT.RefreshTokenExpiry.Seconds()),
		SecureCookies:  cfg.Server.GinMode == gin.ReleaseMode,
		MetricsHandler: promhttp.HandlerFor(promReg, promhttp.HandlerOpts{Registry: promReg}),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 8. Setup graceful shutdown
	go func() {
		log.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	cancel()
	formService.CloseAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}

// openRegistries returns in-memory registries or MySQL-backed ones,
// migrating the schema first.
func openRegistries(cfg *config.Config, log *zap.Logger) (*repository.Registries, error) {
	if cfg.Database.Driver != config.StorageMySQL {
		return repository.NewMemoryRegistries(), nil
	}
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return repository.NewGormRegistries(db), nil
}
