package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/time/rate"

	"github.com/ZeMendes2393/sailscore/config"
	"github.com/ZeMendes2393/sailscore/db"
	"github.com/ZeMendes2393/sailscore/events"
	"github.com/ZeMendes2393/sailscore/handlers"
	applog "github.com/ZeMendes2393/sailscore/logger"
	"github.com/ZeMendes2393/sailscore/metrics"
	"github.com/ZeMendes2393/sailscore/service"
	"github.com/ZeMendes2393/sailscore/store"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	// Points go out as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
	metrics.InitRegistry()

	bdb := db.Setup(cfg)
	defer bdb.Close()

	ctx := context.Background()
	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, bdb, logger); err != nil {
			logger.Fatal("migrate failed", zap.Error(err))
		}
	}

	bus := events.NewBus(logger)
	defer bus.Close()

	svc := service.New(bdb, store.New(bdb), bus, logger, cfg.RankingCacheTTL)

	var docs *events.Documents
	if cfg.DocsDir != "" {
		docs = events.NewDocuments(cfg.DocsDir, svc, logger)
	}
	var notifier *events.Notifier
	if cfg.WebhookURL != "" {
		notifier = events.NewNotifier(cfg.WebhookURL, logger)
	}
	if err := events.Start(ctx, bus, docs, notifier, logger); err != nil {
		logger.Fatal("start subscribers failed", zap.Error(err))
	}

	h := handlers.New(svc, cfg.JWTKey(), cfg.IsAdmin)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler(e)
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*", "Authorization"},
		AllowCredentials: true,
	}))

	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	var public []echo.MiddlewareFunc
	if cfg.PublicRateLimit > 0 {
		public = append(public, echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(rate.Limit(cfg.PublicRateLimit))))
	}
	h.Register(e, public...)

	if cfg.Debug {
		logger.Info("starting server", zap.String("mode", "debug"), zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}
