package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prasetyowira/qrpix/api"
	"github.com/prasetyowira/qrpix/config"
	"github.com/prasetyowira/qrpix/constant"
	"github.com/prasetyowira/qrpix/domain/qr"
	"github.com/prasetyowira/qrpix/infrastructure/cache"
	appLogger "github.com/prasetyowira/qrpix/infrastructure/logger"
	"github.com/prasetyowira/qrpix/infrastructure/qrcode"
	"github.com/prasetyowira/qrpix/infrastructure/store"
)

func main() {
	// Load configuration from environment variables
	cfg := config.LoadConfig()

	// Initialize logger based on environment
	isProduction := cfg.LogLevel == "INFO"
	appLogger.Initialize(isProduction)
	defer appLogger.Close()

	appLogger.Info(constant.MsgApplicationStarting, appLogger.LoggerInfo{
		ContextFunction: constant.CtxMain,
		Data: map[string]interface{}{
			constant.DataPort:        cfg.Port,
			constant.DataStorePath:   cfg.StorePath,
			constant.DataCacheSize:   cfg.CacheSize,
			constant.DataEnvironment: cfg.LogLevel,
		},
	})

	// Optional foreground theme color
	var theme *qr.RGB
	if cfg.Foreground != "" {
		parsed, err := qr.ParseRGB(cfg.Foreground)
		if err != nil {
			appLogger.Fatal("Invalid foreground color", appLogger.LoggerInfo{
				ContextFunction: constant.CtxMain,
				Error: &appLogger.CustomError{
					Code:    constant.ErrCodeAppStoreInit,
					Message: err.Error(),
					Type:    constant.ErrTypeApp,
				},
				Data: map[string]interface{}{
					constant.DataForeground: cfg.Foreground,
				},
			})
		}
		theme = &parsed
	}

	// Create SQLite render store
	renderStore, err := store.NewSQLiteStore(cfg.StorePath)
	if err != nil {
		appLogger.Fatal(constant.MsgFailedToInitStore, appLogger.LoggerInfo{
			ContextFunction: constant.CtxMain,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAppStoreInit,
				Message: err.Error(),
				Type:    constant.ErrTypeApp,
			},
			Data: map[string]interface{}{
				constant.DataStorePath: cfg.StorePath,
			},
		})
	}
	defer renderStore.Close()

	imageCache := cache.NewImageCache(cfg.CacheSize)
	encoder := qrcode.NewEncoder(qr.MinVersion)

	// Create QR image service
	service := qr.NewService(encoder, imageCache, renderStore, theme)

	// Create API handler and router
	handler := api.NewHandler(service)
	router := api.NewRouter(handler)
	router.SetupRoutes()

	// Configure HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info(constant.MsgServerStarting, appLogger.LoggerInfo{
			ContextFunction: constant.CtxMain,
			Data: map[string]interface{}{
				constant.DataPort: cfg.Port,
			},
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(constant.MsgServerFailedToStart, appLogger.LoggerInfo{
				ContextFunction: constant.CtxMain,
				Error: &appLogger.CustomError{
					Code:    constant.ErrCodeAppServerStart,
					Message: err.Error(),
					Type:    constant.ErrTypeApp,
				},
				Data: map[string]interface{}{
					constant.DataPort: cfg.Port,
				},
			})
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	appLogger.Info(constant.MsgServerShuttingDown, appLogger.LoggerInfo{
		ContextFunction: constant.CtxMain,
	})

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error(constant.MsgServerShutdownError, appLogger.LoggerInfo{
			ContextFunction: constant.CtxMain,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAppServerShutdown,
				Message: err.Error(),
				Type:    constant.ErrTypeApp,
			},
		})
	}

	appLogger.Info(constant.MsgServerStopped, appLogger.LoggerInfo{
		ContextFunction: constant.CtxMain,
	})
}
