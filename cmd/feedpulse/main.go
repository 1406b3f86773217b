package main

import (
	"context"
	"os"

	"feedpulse/internal/aggregator"
	"feedpulse/internal/config"
	"feedpulse/internal/feed"
	"feedpulse/internal/fetch"
	"feedpulse/internal/gemini"
	"feedpulse/internal/insight"
	"feedpulse/internal/logger"
	"feedpulse/internal/ratelimit"
	"feedpulse/internal/server"
	"feedpulse/internal/store"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	st, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("could not open subscription store", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	seedFeeds(ctx, st, cfg.FeedsConfigPath)

	fetcher := fetch.New(fetch.Options{
		Timeout:  cfg.RequestTimeout,
		Retries:  cfg.RetryAttempts,
		Delay:    cfg.RetryDelay,
		Insecure: cfg.InsecureFeedTLS,
	})
	parser := feed.NewParser(fetcher)
	agg := aggregator.New(st, parser, cfg.FreshnessWindow)

	var embedder insight.Embedder
	var generator insight.TextGenerator
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, ratelimit.New(cfg.MaxAIRequests))
		if err != nil {
			logger.Error("could not create Gemini client", "err", err)
			os.Exit(1)
		}
		defer client.Close()
		embedder, generator = client, client
	} else {
		logger.Warn("GEMINI_API_KEY not set; similarity, recommendations and analysis will use fallbacks")
	}
	engine := insight.New(embedder, generator)

	srv := server.New(st, parser, agg, engine, cfg.TrendMinCount)
	logger.Info("starting feedpulse API", "port", cfg.Port)
	if err := srv.Router().Run(":" + cfg.Port); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Ensure(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return pg, func() { pg.Close() }, nil
	}

	fs := store.NewFileStore(cfg.StorePath)
	if err := fs.Load(); err != nil {
		logger.Warn("could not load feed store, starting empty", "err", err)
	}
	return fs, func() {}, nil
}

// seedFeeds bootstraps the store from the optional YAML list. Feeds
// already present are skipped silently.
func seedFeeds(ctx context.Context, st store.Store, path string) {
	seeds, err := config.LoadSeedFeeds(path)
	if err != nil {
		logger.Warn("could not read feeds config", "path", path, "err", err)
		return
	}

	existing := make(map[string]struct{})
	if feeds, err := st.List(ctx); err == nil {
		for _, f := range feeds {
			existing[f.URL] = struct{}{}
		}
	}

	for _, s := range seeds {
		if _, ok := existing[s.URL]; ok {
			continue
		}
		if _, err := st.Create(ctx, s.URL, s.Title, s.Description); err != nil {
			logger.Warn("could not seed feed", "url", s.URL, "err", err)
		}
	}
}
