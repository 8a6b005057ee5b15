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

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"github.com/Alex-SA1/Efficient-Study-Platform/auth"
	web "github.com/Alex-SA1/Efficient-Study-Platform/infrastructure/http"
	"github.com/Alex-SA1/Efficient-Study-Platform/internal"
	"github.com/Alex-SA1/Efficient-Study-Platform/observability"
	"github.com/Alex-SA1/Efficient-Study-Platform/repositories"
	"github.com/Alex-SA1/Efficient-Study-Platform/runtime"
	"github.com/Alex-SA1/Efficient-Study-Platform/runtime/workers"
	"github.com/Alex-SA1/Efficient-Study-Platform/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the HTTP server and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & Supervision
	monitor := observability.NewMonitor()
	sup := workers.NewSupervisor(log, config.RestartInterval)
	registry := runtime.NewConnRegistry()
	sessionRepository := repositories.NewSessionRepository(db, log)
	messageRepository := repositories.NewMessageRepository(db, log)
	friendshipRepository := repositories.NewFriendshipRepository(db)
	userRepository := repositories.NewUserRepository(db)

	hub := runtime.NewHub(log, sup, registry, messageRepository, monitor,
		config.ConnectionBufferSize, config.SinkTimeout)

	sessionService := services.NewSessionService(sessionRepository,
		friendshipRepository, hub, monitor, config.CodeAttempts, log)
	chatService := services.NewChatService(hub, messageRepository)
	issuer := auth.NewTokenIssuer(config.AuthSecret, config.AuthTokenDuration)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start the Engine
	hub.Start(ctx)
	sup.Add(
		workers.NewPurgeWorker(hub.PurgeJobs(), messageRepository, monitor,
			config.PurgeRetries, config.PurgeRetryDelay, log),
		workers.NewHeartbeatWorker(log, monitor, config.HeartbeatInterval),
	)
	go sup.Run(ctx)

	if config.DebugPort != nil {
		endpoint := "/inspect"
		log.Info("Debug Badger inspector available",
			"url", fmt.Sprintf("http://localhost:%d%s", *config.DebugPort, endpoint))
		internal.StartDebugServer(db, *config.DebugPort, endpoint,
			internal.SessionMapper, internal.MonitorStats(monitor))
	}

	// 6. HTTP Server Setup
	handler := web.NewHandler(log, sessionService, chatService, userRepository,
		hub, issuer, config.HistoryPageSize, config.ConnectionBufferSize)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv := &http.Server{Addr: address, Handler: handler.Routes()}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup (Graceful Shutdown)
	// Active connections get a grace period to flush their write pumps.
	log.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown did not finish cleanly", "error", err)
	}
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
