// Package main is the entry point for the solthron-assist engine: the
// local companion service for the Solthron browser extension. It owns
// token custody, the credit gate, the saved-content library and the
// conversation extraction pipeline; AI inference stays on the upstream
// backend.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/joho/godotenv"

	"github.com/solthron/assist-api/internal/config"
	"github.com/solthron/assist-api/internal/crypto"
	"github.com/solthron/assist-api/internal/database"
	"github.com/solthron/assist-api/internal/http/handlers"
	"github.com/solthron/assist-api/internal/http/mw"
	"github.com/solthron/assist-api/internal/logging"
	"github.com/solthron/assist-api/internal/repository"
	"github.com/solthron/assist-api/internal/service"
	"github.com/solthron/assist-api/internal/shutdown"
	"github.com/solthron/assist-api/internal/version"
)

func main() {
	// Local .env is optional; environment variables win.
	_ = godotenv.Load()

	// Initialize logger with TTY detection, source paths, and format control
	logger := logging.SetDefault()

	// Log version info first thing
	v := version.Get()
	logger.Info("starting solthron-assist",
		"version", v.Version,
		"commit", v.Commit,
		"built", v.Date,
		"go_version", v.GoVersion,
	)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// Run migrations (with logging for each migration applied)
	if err := database.MigrateWithLogger(db, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Log current schema version
	schemaVersion, err := database.GetLatestSchemaVersion(db)
	if err != nil {
		logger.Warn("failed to get schema version", "error", err)
	} else if schemaVersion != "" {
		migrationCount, _ := database.GetMigrationCount(db)
		logger.Info("database schema ready", "schema_version", schemaVersion, "migrations_applied", migrationCount)
	}

	// Token encryption at rest
	encryptor, err := crypto.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		logger.Error("failed to initialize token encryption", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	repos := repository.NewRepositories(db, encryptor)

	// Initialize services
	services, err := service.NewServices(cfg, repos, logger)
	if err != nil {
		logger.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	// Start the auth bridge: watches the token storage keys and runs the
	// startup scan schedule.
	ctx, cancel := context.WithCancel(context.Background())
	services.Bridge.Start(ctx)

	// Create router
	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(mw.APIVersion())

	// Request timeout middleware: assist operations proxy the upstream
	// backend and get the extended timeout.
	router.Use(mw.Timeout(mw.TimeoutConfig{
		Default:          cfg.RequestTimeout,
		Extended:         cfg.BackendTimeout,
		ExtendedPatterns: []string{"/assist"},
	}))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-API-Version"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Request size limit (10MB): page captures carry full chat-site HTML
	router.Use(middleware.RequestSize(10 * 1024 * 1024))

	// Rate limit by IP; the engine serves one extension profile but still
	// listens on a socket
	router.Use(httprate.LimitByIP(300, time.Minute))

	// Idle shutdown for scale-to-zero hosting
	var idleMonitor *shutdown.IdleMonitor
	if cfg.IdleTimeout > 0 {
		idleMonitor = shutdown.NewIdleMonitor(shutdown.IdleMonitorConfig{
			Timeout:      cfg.IdleTimeout,
			Logger:       logger,
			ExcludePaths: []string{"/healthz", "/readyz"},
		})
		router.Use(idleMonitor.Middleware)
		idleMonitor.Start()
	}

	// Create Huma API config with OpenAPI docs
	humaConfig := huma.DefaultConfig("Solthron Assist API", version.Get().Short())
	humaConfig.Info.Description = "Companion engine for the Solthron extension: platform detection, conversation extraction, credit-gated AI features, saved-content library and auth token custody."
	humaConfig.Servers = []*huma.Server{
		{URL: cfg.BaseURL, Description: "Assist engine"},
	}
	api := humachi.New(router, humaConfig)

	// Config for hidden routes (probes - no docs needed)
	hiddenConfig := huma.DefaultConfig("Solthron Assist API", version.Get().Short())
	hiddenConfig.DocsPath = ""
	hiddenConfig.OpenAPIPath = ""
	hiddenConfig.SchemasPath = ""
	hiddenAPI := humachi.New(router, hiddenConfig)

	// Health and probes
	huma.Get(api, "/api/v1/health", handlers.HealthCheck)
	huma.Get(hiddenAPI, "/healthz", handlers.Livez)
	huma.Get(hiddenAPI, "/readyz", handlers.NewReadyzHandler(db).Readyz)

	// Page inspection: platform detection and conversation extraction
	pageHandler := handlers.NewPageHandler(services.Extractor)
	huma.Get(api, "/api/v1/platform", pageHandler.DetectPlatform)
	huma.Post(api, "/api/v1/conversation/extract", pageHandler.ExtractConversation)

	// Feature invocations and pricing
	assistHandler := handlers.NewAssistHandler(services.Assist)
	huma.Post(api, "/api/v1/assist/text", assistHandler.ProcessText)
	huma.Post(api, "/api/v1/assist/image", assistHandler.ProcessImage)
	huma.Post(api, "/api/v1/assist/conversation", assistHandler.ProcessConversation)
	huma.Post(api, "/api/v1/assist/enhancements", assistHandler.ProcessEnhancements)
	huma.Get(api, "/api/v1/assist/status", assistHandler.GetStatus)
	huma.Get(api, "/api/v1/costs", handlers.GetCosts)
	huma.Get(api, "/api/v1/features", handlers.GetFeatures)

	// Saved-content library
	libraryHandler := handlers.NewLibraryHandler(services.Library)
	huma.Post(api, "/api/v1/library/notes", libraryHandler.SaveNote)
	huma.Get(api, "/api/v1/library/notes", libraryHandler.ListNotes)
	huma.Delete(api, "/api/v1/library/notes/{id}", libraryHandler.DeleteNote)
	huma.Post(api, "/api/v1/library/notes/{id}/append", libraryHandler.AppendNote)
	huma.Post(api, "/api/v1/library/prompts", libraryHandler.SavePrompt)
	huma.Get(api, "/api/v1/library/prompts", libraryHandler.ListPrompts)
	huma.Delete(api, "/api/v1/library/prompts/{id}", libraryHandler.DeletePrompt)
	huma.Post(api, "/api/v1/library/personas", libraryHandler.SavePersona)
	huma.Get(api, "/api/v1/library/personas", libraryHandler.ListPersonas)
	huma.Delete(api, "/api/v1/library/personas/{id}", libraryHandler.DeletePersona)

	// Session state
	sessionHandler := handlers.NewSessionHandler(services.Session)
	huma.Get(api, "/api/v1/session", sessionHandler.GetSession)
	huma.Put(api, "/api/v1/session", sessionHandler.PutSession)

	// Scoped KV storage, mirroring the extension's storage areas
	storageHandler := handlers.NewStorageHandler(repos.KV)
	huma.Get(api, "/api/v1/storage/{scope}", storageHandler.ListKeys)
	huma.Get(api, "/api/v1/storage/{scope}/{key}", storageHandler.GetValue)
	huma.Put(api, "/api/v1/storage/{scope}/{key}", storageHandler.SetValue)
	huma.Delete(api, "/api/v1/storage/{scope}/{key}", storageHandler.DeleteValue)

	// Auth: login, logout, profile, cached balance and storage scan
	authHandler := handlers.NewAuthHandler(services.Auth, services.Bridge, services.Gate)
	huma.Post(api, "/api/v1/auth/login", authHandler.Login)
	huma.Post(api, "/api/v1/auth/logout", authHandler.Logout)
	huma.Get(api, "/api/v1/auth/profile", authHandler.GetProfile)
	huma.Get(api, "/api/v1/auth/credits", authHandler.GetCredits)
	huma.Post(api, "/api/v1/auth/scan", authHandler.ScanStorage)

	// Token intake sits behind the origin allow-list: only the product's
	// own pages may post captured tokens.
	router.Group(func(r chi.Router) {
		r.Use(mw.RequireOrigin(cfg.OriginAllowed, logger))

		tokenConfig := huma.DefaultConfig("Solthron Assist API", version.Get().Short())
		tokenConfig.DocsPath = ""
		tokenConfig.OpenAPIPath = ""
		tokenConfig.SchemasPath = ""
		tokenAPI := humachi.New(r, tokenConfig)
		huma.Post(tokenAPI, "/api/v1/auth/token", authHandler.SubmitToken)
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.BackendTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on signal or idle timeout
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		var idleChan <-chan struct{}
		if idleMonitor != nil {
			idleChan = idleMonitor.ShutdownChan()
		}

		select {
		case <-sigChan:
			logger.Info("shutting down server")
		case <-idleChan:
			logger.Info("idle timeout reached, shutting down")
		}

		cancel()
		if idleMonitor != nil {
			idleMonitor.Stop()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	// Start server
	logger.Info("starting server", "port", cfg.Port, "base_url", cfg.BaseURL, "backend", cfg.BackendURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
