package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"project-manager/webapp/internal/api"
	"project-manager/webapp/internal/cache"
	"project-manager/webapp/internal/config"
	"project-manager/webapp/internal/handlers"
	"project-manager/webapp/internal/middleware"
	"project-manager/webapp/internal/monitoring"
	"project-manager/webapp/internal/services"
	"project-manager/webapp/internal/session"
	"project-manager/webapp/internal/tableview"
	"project-manager/webapp/internal/worker"
)

func main() {
	// Missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	store := newCache(cfg, logger)
	defer store.Close()

	sessions := session.NewStore(store, cfg.Session.TTL, cfg.UI.PageSize)

	client := api.NewClient(api.ClientConfig{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.API.Timeout,
		RequestsPerSec: cfg.RateLimit.RequestsPerSec,
		Burst:          cfg.RateLimit.Burst,
	}, logger)

	projectSvc := services.NewProjectPageService(client, sessions, logger)
	userDir := services.NewUserDirectory(client, store, cfg.Session.UserCacheTTL, logger)

	debouncer := tableview.NewDebouncer(cfg.UI.SearchDebounce)
	defer debouncer.Stop()

	projectHandler := handlers.NewProjectHandler(projectSvc, userDir, debouncer, logger)
	authHandler := handlers.NewAuthHandler(client, logger)
	homeHandler := handlers.NewHomeHandler(client, logger)

	monitor := monitoring.NewMonitor()
	monitor.RegisterCheck("cache", func(ctx context.Context) error { return store.Health() })
	monitor.RegisterCheck("upstream", client.Health)
	monitor.RegisterStats("cache", store.Stats)
	monitor.RegisterStats("breaker", client.BreakerStats)

	runner := worker.NewRunner(logger)
	runner.Register("user-cache-refresh", cfg.Session.UserCacheTTL, func(ctx context.Context) error {
		if err := userDir.Invalidate(); err != nil {
			return err
		}
		_, err := userDir.Users(ctx)
		return err
	})
	runner.Register("upstream-probe", time.Minute, client.Health)
	runner.Start()
	defer runner.Stop()

	router := newRouter(cfg, logger, monitor, projectHandler, authHandler, homeHandler)

	srv := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if !cfg.IsProduction() {
		opts.Level = slog.LevelDebug
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func newCache(cfg *config.Config, logger *slog.Logger) cache.Cache {
	if !cfg.UseRedis() {
		logger.Info("using in-process session cache")
		return cache.NewMemoryCache(time.Minute)
	}

	rc := cache.NewRedisCache(&cache.RedisConfig{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err := rc.Health(); err != nil {
		logger.Error("redis unreachable, falling back to in-process cache", "addr", cfg.Redis.Addr, "error", err)
		rc.Close()
		return cache.NewMemoryCache(time.Minute)
	}
	logger.Info("using redis session cache", "addr", cfg.Redis.Addr)
	return rc
}

func newRouter(
	cfg *config.Config,
	logger *slog.Logger,
	monitor *monitoring.Monitor,
	projects *handlers.ProjectHandler,
	auth *handlers.AuthHandler,
	home *handlers.HomeHandler,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryWithLog())
	router.Use(middleware.RequestLog(logger))
	router.Use(monitor.Middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:" + cfg.Server.Port}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.Use(middleware.Session())

	router.LoadHTMLGlob("web/templates/*.tmpl")
	router.Static("/static", "./web/static")

	router.GET("/", home.Page)
	router.POST("/seed", home.Seed)

	router.GET("/login", auth.LoginPage)
	router.POST("/login", auth.Login)
	router.GET("/register", auth.RegisterPage)
	router.POST("/register", auth.Register)

	router.GET("/projects", projects.Page)
	router.GET("/projects/table", projects.Table)
	router.GET("/projects/modal", projects.Modal)
	router.POST("/projects/save", projects.Save)
	router.POST("/projects/:id/delete", projects.Delete)

	router.GET("/healthz", monitor.HealthHandler())
	router.GET("/metrics", monitor.MetricsHandler())

	return router
}
