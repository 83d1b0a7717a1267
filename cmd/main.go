/*
Package main is the entry point for the club chat server.

It loads configuration, initializes logging, connects to PostgreSQL (and Badger when
it holds the message log), wires the chat broker into the HTTP router and handles
SIGINT/SIGTERM with a graceful shutdown that closes every live chat connection.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clubchat/internal/app/chat"
	"clubchat/internal/app/db"
	"clubchat/internal/app/kvstore"
	"clubchat/internal/app/message"
	"clubchat/internal/app/storage"
	"clubchat/internal/configs"
	"clubchat/internal/handler"
	"clubchat/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("message_backend", cfg.MessageBackend).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(signalCtx, cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to connect to database")
	}
	defer pool.Close()

	photos, err := storage.NewAvatarResolverFromConfig(signalCtx, storage.ServiceConfig{
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		logx.Fatal(err, "Failed to initialize photo storage")
	}

	messages, err := openMessageStore(cfg, pool)
	if err != nil {
		logx.Fatal(err, "Failed to open message store")
	}
	defer func() {
		if err := messages.Close(); err != nil {
			logx.Error(err, "Failed to close message store")
		}
	}()

	clubs := db.NewClubDirectory(pool)
	users := db.NewUserDirectory(pool, photos)
	broker := chat.NewBroker(chat.NewRegistry(), clubs, users, messages)

	// serverCtx outlives the signal so connections are closed deliberately during shutdown.
	serverCtx, cancelServer := context.WithCancel(context.Background())
	defer cancelServer()

	router := handler.Router(&handler.AppDeps{
		Config:    cfg,
		Broker:    broker,
		Clubs:     clubs,
		Users:     users,
		Messages:  messages,
		ServerCtx: serverCtx,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Club Chat Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-signalCtx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "HTTP server forced to shutdown")
	}

	// hijacked WebSocket connections are not covered by server.Shutdown
	cancelServer()
	waitForSessions(shutdownCtx, broker.Registry())

	logx.Info("Server gracefully stopped.")
}

// openMessageStore selects the message log backend.
func openMessageStore(cfg *configs.AppConfig, q db.Querier) (message.Store, error) {
	switch cfg.MessageBackend {
	case configs.BackendBadger:
		logx.Info("Using Badger message log", "dir", cfg.BadgerDir)
		return kvstore.Open(cfg.BadgerDir)
	default:
		return db.NewMessageStore(q), nil
	}
}

// waitForSessions blocks until every session has disconnected or ctx expires.
func waitForSessions(ctx context.Context, registry *chat.Registry) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for registry.Len() > 0 {
		select {
		case <-ctx.Done():
			logx.Warn("Shutdown timeout reached with sessions still open", "sessions", registry.Len())
			return
		case <-ticker.C:
		}
	}
}
