package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/laptop_store/internal/api"
	"github.com/RoyceAzure/lab/laptop_store/internal/api/handler"
	"github.com/RoyceAzure/lab/laptop_store/internal/api/router"
	"github.com/RoyceAzure/lab/laptop_store/internal/appcontext"
	"github.com/RoyceAzure/lab/laptop_store/internal/config"
	"github.com/RoyceAzure/lab/laptop_store/internal/util"
	"github.com/rs/zerolog"
)

// loadConfig 設定檔存在時監聽變更
func loadConfig(path string, current *atomic.Pointer[appcontext.ApplicationContext], logger *zerolog.Logger) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		return config.LoadConfig(path)
	}
	w, err := config.Watch(path, func(cf *config.Config) {
		if app := current.Load(); app != nil {
			app.ApplyConfig(cf)
		}
	}, func(err error) {
		logger.Warn().Err(err).Str("path", path).Msg("config reload failed, keep previous config")
	})
	if err != nil {
		return nil, err
	}
	return w.Config(), nil
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "app.env"
	}

	// 讀設定之前用的 logger, 之後改用 app.Logger
	logger := util.NewLogger("info", false)

	var current atomic.Pointer[appcontext.ApplicationContext]
	cf, err := loadConfig(configPath, &current, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	app, err := appcontext.NewApplicationContext(initCtx, cf, nil)
	cancelInit()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init application")
	}
	current.Store(app)

	// 初始化 handler
	server := api.NewServer(
		handler.NewHealthHandler(app.SlotRepo, app.Storefront, app.Logger),
		handler.NewCatalogHandler(app.CatalogService, app.Logger),
		handler.NewCartHandler(app.Storefront, app.CatalogService, app.CheckoutService, app.Logger),
		handler.NewCheckoutHandler(app.CheckoutService, app.Logger),
		handler.NewProfileHandler(app.Storefront, app.FulfillmentService, app.Logger),
	)

	// 設置路由
	r := router.SetupRouter(server, app.Limiter, app.Logger)
	if err := router.PrintRoutes(r, app.Logger); err != nil {
		app.Logger.Warn().Err(err).Msg("failed to walk routes")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", app.Cf.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 設置訊號監聽
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutdownCompleted := make(chan struct{}, 1)
	go func() {
		<-sigChan
		app.Logger.Info().Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error().Err(err).Msg("Server shutdown error")
		}
		if err := app.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error().Err(err).Msg("Application shutdown error")
		}
		shutdownCompleted <- struct{}{}
	}()

	app.Logger.Info().Str("addr", srv.Addr).Msg("Server starting")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		app.Logger.Fatal().Err(err).Msg("server stopped")
	}
	<-shutdownCompleted
	app.Logger.Info().Msg("closed completed")
}
