// Package main initializes and starts the console HTTP server, setting
// up configuration, logging, the file-backed stores, the per-account
// Compute client factory and the request handlers.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/gcp-panel/backend/internal/config"
	"github.com/gcp-panel/backend/internal/gcp"
	"github.com/gcp-panel/backend/internal/logger"
	"github.com/gcp-panel/backend/internal/repository"
	"github.com/gcp-panel/backend/internal/server/handler/http"
	"github.com/gcp-panel/backend/internal/service"
	"github.com/gcp-panel/backend/internal/session"
)

func main() {
	options := config.Parse()

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init("info"); err != nil {
		panic(err)
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	if err := os.MkdirAll(options.DataDir, 0o700); err != nil {
		zapLogger.Fatal("cannot create data directory", zap.Error(err))
	}

	// File-backed stores; the account store migrates any legacy
	// single-key setup on construction.
	accountStore := repository.NewAccountStore(options.DataDir, zapLogger)
	configStore := repository.NewConfigStore(options.DataDir)
	auditLog := repository.NewAuditLog(options.DataDir, zapLogger)

	// Per-account Compute clients, cached by key-file mtime.
	clientFactory := gcp.NewFactory(accountStore, zapLogger)

	// Business-logic services.
	provisioner := service.NewProvisioner(zapLogger)
	orchestrator := service.NewOrchestrator(provisioner, zapLogger)

	// Session tokens live in memory only; a restart logs everyone out.
	sessions := session.NewStore()

	authHandler := &http.AuthHandler{Config: configStore, Sessions: sessions, Audit: auditLog}
	accountHandler := &http.AccountHandler{Accounts: accountStore, Clients: clientFactory, Audit: auditLog}
	instanceHandler := &http.InstanceHandler{Clients: clientFactory, Instances: orchestrator, Audit: auditLog}
	logsHandler := &http.LogsHandler{Audit: auditLog}

	router := http.NewRouter(
		authHandler, accountHandler, instanceHandler, logsHandler,
		sessions, zapLogger, options.AllowedOrigins, options.StaticDir,
	)

	server := &nethttp.Server{
		Addr:         ":" + options.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		zapLogger.Info("console listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zapLogger.Fatal("forced shutdown", zap.Error(err))
	}
}
