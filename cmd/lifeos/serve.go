package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lifeos/internal/metrics"
	journalrepo "github.com/kailas-cloud/lifeos/internal/repository/journal"
	userrepo "github.com/kailas-cloud/lifeos/internal/repository/user"
	chiTransport "github.com/kailas-cloud/lifeos/internal/transport/chi"
	"github.com/kailas-cloud/lifeos/internal/transport/google"
	"github.com/kailas-cloud/lifeos/internal/transport/ws"
	authuc "github.com/kailas-cloud/lifeos/internal/usecase/auth"
	autotaguc "github.com/kailas-cloud/lifeos/internal/usecase/autotag"
	embeddinguc "github.com/kailas-cloud/lifeos/internal/usecase/embedding"
	exportuc "github.com/kailas-cloud/lifeos/internal/usecase/export"
	healthuc "github.com/kailas-cloud/lifeos/internal/usecase/health"
	journaluc "github.com/kailas-cloud/lifeos/internal/usecase/journal"
	searchuc "github.com/kailas-cloud/lifeos/internal/usecase/search"
	usageuc "github.com/kailas-cloud/lifeos/internal/usecase/usage"
	"github.com/kailas-cloud/lifeos/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting lifeos API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", envName),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := openStore(ctx, &cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("Connected to database")

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	// One tracker shared by both embedders and the usage report.
	budget := newBudget(ctx, &cfg.Embedding, store, logger)
	// A typed nil pointer inside an interface is not nil.
	var (
		budgetChecker embeddinguc.BudgetChecker
		budgetReader  usageuc.BudgetReader
	)
	if budget != nil {
		budgetChecker, budgetReader = budget, budget
	}

	docEmbedder := buildEmbedder(&cfg.Embedding, cfg.Embedding.DocumentInstruction, store, budgetChecker, logger)
	queryEmbedder := buildEmbedder(&cfg.Embedding, cfg.Embedding.QueryInstruction, store, budgetChecker, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Duration("timeout", cfg.Embedding.Timeout()),
	)

	records := journalrepo.New(store)
	users := userrepo.New(store)

	verifier := google.NewVerifier(&google.Config{
		ClientID:     cfg.Auth.GoogleClientID,
		ClientSecret: cfg.Auth.GoogleClientSecret,
		RedirectURL:  cfg.Auth.GoogleRedirectURL,
		Logger:       logger,
	})
	authSvc, err := authuc.New(users, verifier, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if err != nil {
		return fmt.Errorf("create auth service: %w", err)
	}

	hub := ws.NewHub(logger, originChecker(cfg.CORS.AllowedOrigins))
	go hub.Run(ctx)

	server := chiTransport.NewServer(chiTransport.Deps{
		Auth:    authSvc,
		Journal: journaluc.New(records),
		Search:  searchuc.New(records, docEmbedder, queryEmbedder),
		Autotag: autotaguc.New(docEmbedder),
		Export:  exportuc.New(users, records),
		Usage:   usageuc.New(budgetReader, cfg.Embedding.Provider),
		Health:  healthuc.New(store, embeddingHealthChecker{embedder: queryEmbedder}),
		Hub:     hub,
	}, cfg.HTTP.PublicURL, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Token", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Embedding-Tokens", "Content-Disposition"},
		AllowCredentials: !slices.Contains(cfg.CORS.AllowedOrigins, "*"),
		MaxAge:           300,
	}))
	r.Use(metrics.Middleware("/metrics", "/health"))
	r.Mount("/", server.Router())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

