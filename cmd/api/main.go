package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"logitrack-server/internal/config"
	"logitrack-server/internal/logger"
	"logitrack-server/internal/mirror"
	"logitrack-server/internal/modules/auth"
	"logitrack-server/internal/modules/notifications"
	"logitrack-server/internal/modules/orders"
	"logitrack-server/internal/notify"
	"logitrack-server/internal/remote"
	"logitrack-server/pkg/mailer"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	zlog := logger.L()

	// Leaves: remote client, local mirror, change hub.
	client := remote.NewClient(
		cfg.SupabaseURL,
		remote.StaticKeys{Secret: cfg.SupabaseSecretKey, Publishable: cfg.SupabasePublishableKey},
		nil,
		zlog,
	)
	store := mirror.NewFileStore(afero.NewOsFs(), cfg.MirrorPath)
	hub := notify.NewHub()

	var mail notifications.Mailer
	if m, err := mailer.NewSESMailer(context.Background(), cfg.AWSRegion, cfg.EmailFrom, cfg.EmailTo); err != nil {
		zlog.Warn("mailer disabled", zap.Error(err))
	} else if m != nil {
		mail = m
	}

	notifRepo := notifications.NewRepository(client, nil)
	notifSvc := notifications.NewService(notifRepo, mail, zlog)
	notifHandler := notifications.NewHandler(notifSvc)

	orderRepo := orders.NewRepository(client, store, nil, zlog)
	orderSvc := orders.NewService(orderRepo, hub, notifSvc)
	orderHandler := orders.NewHandler(orderSvc)

	authSvc := auth.NewService(cfg.AdminPasswordHash, cfg.JWTSecret, nil)
	authHandler := auth.NewHandler(authSvc)

	wsHandler := notify.NewWSHandler(hub, zlog)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	origins := []string{"*"}
	if cfg.ClientOrigin != "" {
		origins = []string{cfg.ClientOrigin}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: origins}))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zlog.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	api := e.Group("/api")
	admin := api.Group("/admin", echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	authHandler.RegisterRoutes(api)
	orderHandler.RegisterRoutes(api, admin)
	notifHandler.RegisterRoutes(admin)
	e.GET("/ws/events", wsHandler.ServeEvents)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]bool{
			"adminReady": client.Ready(remote.RoleAdmin),
			"userReady":  client.Ready(remote.RoleUser),
		})
	})

	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zlog.Error("shutdown", zap.Error(err))
	}
}
