package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"github.com/JustTrott/team-6-betterfeed-full/internal/api"
	"github.com/JustTrott/team-6-betterfeed-full/internal/config"
	"github.com/JustTrott/team-6-betterfeed-full/internal/enrich"
	"github.com/JustTrott/team-6-betterfeed-full/internal/feed"
	"github.com/JustTrott/team-6-betterfeed-full/internal/infrastructure/extract"
	"github.com/JustTrott/team-6-betterfeed-full/internal/infrastructure/llm"
	"github.com/JustTrott/team-6-betterfeed-full/internal/infrastructure/provider"
	"github.com/JustTrott/team-6-betterfeed-full/internal/infrastructure/storage"
	"github.com/JustTrott/team-6-betterfeed-full/internal/logging"
	"github.com/JustTrott/team-6-betterfeed-full/internal/ports"
	"github.com/JustTrott/team-6-betterfeed-full/internal/usecase"
)

// Application wires configuration to components and owns their lifecycle.
// All clients are constructed once here and passed down explicitly.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	scheduler *usecase.EnrichmentScheduler
	server    *http.Server
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	repo := storage.NewPostgresRepository(db)

	registry := feed.NewRegistry()
	if cfg.Providers.Arxiv.Enabled {
		registry.Register(provider.NewArxivAdapter(cfg.Providers.Arxiv, nil, baseLogger.With("component", "provider.arxiv")))
	}
	if cfg.Providers.HackerNews.Enabled {
		registry.Register(provider.NewHackerNewsAdapter(cfg.Providers.HackerNews, nil, baseLogger.With("component", "provider.hackernews")))
	}
	if cfg.Providers.NewsAPI.Enabled {
		registry.Register(provider.NewNewsAPIAdapter(cfg.Providers.NewsAPI, nil, baseLogger.With("component", "provider.newsapi")))
	}
	if cfg.Providers.RSS.Enabled {
		registry.Register(provider.NewRSSAdapter(cfg.Providers.RSS, nil, baseLogger.With("component", "provider.rss")))
	}

	aggregator := feed.NewAggregator(registry, cfg.Providers.Shuffle, baseLogger.With("component", "aggregator"))

	pageClient := &http.Client{Timeout: time.Duration(cfg.Enrichment.PageTimeoutSeconds) * time.Second}
	extractor := extract.New(pageClient, cfg.Enrichment.MinParagraphChars, baseLogger.With("component", "extractor"))

	var summarizer ports.Summarizer
	if cfg.LLM.APIKey != "" {
		summarizer = llm.NewOpenAIClient(cfg.LLM, nil)
	} else {
		baseLogger.Warn("no LLM API key configured, summaries fall back to truncation")
	}

	enricherOpts := enrich.Options{
		MinSourceChars: cfg.Enrichment.MinSourceChars,
		MaxWords:       cfg.Enrichment.MaxWords,
		TruncateChars:  cfg.Enrichment.TruncateChars,
		Quality: enrich.QualityThresholds{
			SymbolDensityMax:   cfg.Enrichment.SymbolDensityMax,
			SingleCharRatioMax: cfg.Enrichment.SingleCharRatioMax,
		},
	}

	enricher := enrich.New(extractor, summarizer, enricherOpts, baseLogger.With("component", "enricher"))

	writer := usecase.NewWriter(repo, baseLogger.With("component", "writer"))
	scheduler := usecase.NewEnrichmentScheduler(enricher, writer, usecase.SchedulerOptions{
		BatchSize:   cfg.Enrichment.BatchSize,
		BatchPause:  time.Duration(cfg.Enrichment.BatchPauseSeconds) * time.Second,
		TaskTimeout: time.Duration(cfg.Enrichment.TaskTimeoutSeconds) * time.Second,
	}, baseLogger.With("component", "scheduler"))

	feedService := usecase.NewFeedService(aggregator, repo, scheduler, cfg.Enrichment.TruncateChars, baseLogger.With("component", "feed"))

	handlers := api.NewHandlers(
		feedService,
		cfg.Providers.DefaultLimit,
		cfg.Providers.MaxLimit,
		time.Duration(cfg.Server.RequestTimeoutSeconds)*time.Second,
		baseLogger.With("component", "api"),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		db:        db,
		scheduler: scheduler,
		server:    server,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully and
// drains the background scheduler.
func (a *Application) Run(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		a.logger.Warn("database unreachable at startup, serving degraded", "error", err)
	}

	a.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.server.Addr)
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown", "error", err)
	}
	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler shutdown", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close database", "error", err)
	}

	return nil
}
