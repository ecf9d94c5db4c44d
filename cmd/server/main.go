package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Skufu/clinicai/internal/config"
	"github.com/Skufu/clinicai/internal/diagnosis"
	"github.com/Skufu/clinicai/internal/interaction"
	"github.com/Skufu/clinicai/internal/knowledge"
	"github.com/Skufu/clinicai/internal/logging"
	"github.com/Skufu/clinicai/internal/store"
	"github.com/Skufu/clinicai/internal/summary"
)

const summaryMaxTokens = 1000

type HealthChecker interface {
	Ping(ctx context.Context) error
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "clinicai",
		Short:        "Clinic decision-support API",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), analyzeCmd(), migrateCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			pool, err := store.Connect(cmd.Context(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := store.New(pool).Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.IsDev())
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	eng, err := buildEngines(cfg, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	deps := routerDeps{engines: eng, logger: logger, corsOrigins: cfg.CORSOrigins}
	if cfg.EnableDB {
		pool, err := store.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()
		deps.db = pool
		deps.store = store.New(pool)
		logger.Info().Msg("connected to database")
	}

	router := setupRouter(deps)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	logger.Info().Str("port", cfg.Port).Bool("external_diagnosis", cfg.UseExternalDiagnosis()).Msg("server listening")
	waitForShutdown(server, logger)
	return nil
}

type engines struct {
	diagnoser  diagnosis.Diagnoser
	checker    *interaction.Checker
	summarizer summary.Summarizer
}

// buildEngines picks the diagnoser and summarizer once, at startup. The
// external model is used only with a real key; diagnosis falls back to the
// local tables.
func buildEngines(cfg *config.Config, logger zerolog.Logger) (engines, error) {
	kb := knowledge.Default()
	if cfg.KnowledgeDir != "" {
		loaded, err := knowledge.LoadDir(cfg.KnowledgeDir)
		if err != nil {
			return engines{}, fmt.Errorf("load knowledge tables: %w", err)
		}
		kb = loaded
	}

	heuristic := diagnosis.NewHeuristic(kb, nil)
	eng := engines{
		diagnoser:  heuristic,
		checker:    interaction.NewChecker(kb),
		summarizer: summary.NewHeuristic(time.Now),
	}
	if cfg.UseExternalDiagnosis() {
		gen := diagnosis.NewAnthropicGenerator(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicBaseURL)
		eng.diagnoser = diagnosis.NewExternal(
			gen,
			diagnosis.WithTimeout(cfg.DiagnosisTimeout),
			diagnosis.WithFallback(heuristic),
			diagnosis.WithLogger(logger.With().Str("component", "diagnosis").Logger()),
		)
		eng.summarizer = summary.NewExternal(
			gen.WithMaxTokens(summaryMaxTokens),
			cfg.SummaryTimeout,
			logger.With().Str("component", "summary").Logger(),
		)
	}
	return eng, nil
}

func waitForShutdown(server *http.Server, logger zerolog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
