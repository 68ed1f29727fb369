package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"algoquest/config"
	"algoquest/handlers"
	"algoquest/middleware"
	"algoquest/routes"
	"algoquest/services"
	"algoquest/storage"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and realtime feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	redisClient := config.InitRedis(cfg)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, progress reads go to the database", "addr", cfg.RedisAddr, "error", err)
	}

	var archive storage.Archive
	if cfg.Archive.Enabled() {
		s3Archive, err := storage.NewArchive(ctx, cfg.Archive)
		if err != nil {
			return err
		}
		archive = s3Archive
		log.Info("Snapshot archive enabled", "bucket", cfg.Archive.Bucket)
	}

	hub := services.NewHub(log)
	go hub.Run(ctx)

	cache := services.NewProgressCache(redisClient, cfg.ProgressCacheTTL, log)
	authService := services.NewAuthService(db, log, cfg.JWTSecret, cfg.JWTTTL)
	ledgerService := services.NewLedgerService(db, cache, hub, log)
	progressService := services.NewProgressService(db, cache, hub, archive, log)
	hub.SetProgressProvider(progressService)

	if cfg.ReconcileInterval > 0 {
		reconciler := services.NewReconciler(db, cache, hub, log)
		if err := reconciler.Start(cfg.ReconcileInterval); err != nil {
			return err
		}
		defer reconciler.Stop()
	}

	if cfg.LogMode == "production" || cfg.LogMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(log), middleware.CORS(cfg.AllowedOrigins))

	routes.SetupRoutes(
		router,
		handlers.NewAuthHandler(authService, log),
		handlers.NewMissionHandler(ledgerService, log),
		handlers.NewProgressHandler(progressService, log),
		middleware.NewAuthMiddleware(log, authService),
		hub,
		cfg.AllowedOrigins,
		log,
	)

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
