package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/AnshRaj112/researchhive-backend/internal/auth"
	"github.com/AnshRaj112/researchhive-backend/internal/config"
	"github.com/AnshRaj112/researchhive-backend/internal/database"
	"github.com/AnshRaj112/researchhive-backend/internal/handlers"
	"github.com/AnshRaj112/researchhive-backend/internal/middleware"
	"github.com/AnshRaj112/researchhive-backend/internal/routes"
	"github.com/AnshRaj112/researchhive-backend/internal/services"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"github.com/AnshRaj112/researchhive-backend/internal/storage/memory"
	mongostore "github.com/AnshRaj112/researchhive-backend/internal/storage/mongo"
	"github.com/AnshRaj112/researchhive-backend/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := pflag.String("config", os.Getenv("CONFIG_FILE"), "optional YAML config file (overrides environment)")
	pflag.Parse()

	envErr := godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Setup("info")
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)
	if envErr != nil {
		slog.Debug("No .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	store, err := openStore(connectCtx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = store.Close(closeCtx)
	}()

	slog.Info("Connecting to Redis...")
	rdb, err := database.ConnectRedis(connectCtx, cfg.RedisURI)
	if err != nil {
		return err
	}
	defer rdb.Close()

	var devices *services.DeviceLog
	if cfg.PostgresURI != "" {
		slog.Info("Connecting to PostgreSQL...")
		db, err := database.ConnectPostgres(connectCtx, cfg.PostgresURI)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.InitPostgresTables(connectCtx, db); err != nil {
			return err
		}
		devices = services.NewDeviceLog(db)
	} else {
		slog.Info("POSTGRES_URI not set; login device tracking disabled")
	}

	local, err := services.NewLocalFileStore(cfg.UploadDir, "/uploads")
	if err != nil {
		return err
	}

	deps := services.Deps{
		Store:      store,
		Redis:      rdb,
		Tokens:     auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL),
		SessionTTL: cfg.SessionTTL,
		Devices:    devices,
		LocalFiles: local,
	}
	if cfg.CloudinaryEnabled() {
		remote, err := services.NewCloudinaryFileStore(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			slog.Warn("Failed to initialize Cloudinary; uploads stay on local disk", "error", err)
		} else {
			deps.Remote = remote
			slog.Info("Cloudinary service initialized", "folder", cfg.CloudinaryFolder)
		}
	} else {
		slog.Info("Cloudinary credentials not found; uploads stored locally", "dir", local.Dir())
	}

	svc := services.New(deps)
	svc.Hub.Start(ctx)

	limiter := middleware.NewLimiter(cfg.TrustProxy)
	go limiter.Run(ctx)

	h := handlers.New(svc, handlers.Options{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		AllowedOrigins: cfg.AllowedOrigins,
		TrustProxy:     cfg.TrustProxy,
	})
	router := routes.NewRouter(routes.Options{
		Handler:        h,
		Auth:           svc.Auth,
		Ping:           store.Ping,
		UploadDir:      local.Dir(),
		AllowedOrigins: cfg.AllowedOrigins,
		Limiter:        limiter,
		RedisLimiter:   middleware.NewRedisRateLimiter(rdb, cfg.TrustProxy),
		Production:     cfg.IsProduction(),
		AllowedHost:    hostname(cfg.Host),
	})
	if cfg.IsProduction() {
		slog.Info("Production security enabled (security headers, host check, per-IP and login rate limiting)")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("ResearchHive backend running", "addr", srv.Addr, "env", cfg.Environment, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.StorageDriver == "memory" {
		slog.Warn("Using in-memory storage; data is lost on restart")
		return memory.New(), nil
	}

	slog.Info("Connecting to MongoDB...", "uri", redact(cfg.MongoURI))
	db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		slog.Error("Failed to connect to MongoDB. Check that your IP is allowed and the credentials are correct.")
		return nil, err
	}
	store := mongostore.New(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	slog.Info("MongoDB indexes ensured")
	return store, nil
}

// redact hides the password in a connection string for logging.
func redact(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}

// hostname extracts the bare host from the public base URL.
func hostname(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Hostname()
}
