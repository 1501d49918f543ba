package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"manhwarec/internal/catalog"
	"manhwarec/internal/config"
	"manhwarec/internal/domain"
	"manhwarec/internal/logging"
	"manhwarec/internal/recommend"
	"manhwarec/internal/review"
	"manhwarec/internal/summarizer"
	"manhwarec/internal/translate"
	"manhwarec/internal/tui"
	"manhwarec/internal/vectorstore"
	"manhwarec/internal/vectorstore/memory"
	"manhwarec/internal/vectorstore/qdrant"
	"manhwarec/internal/web"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, ui string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ./config.yaml or ~/.config/manhwarec/config.yaml if not provided)")
	flag.StringVar(&ui, "ui", "web", "Front end to run: web or tui")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, cfgPath, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logOut, closeLog, err := logOutput(cfg.Log.File, ui)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: logOut})
	logging.Info().Str("config", cfgPath).Str("ui", ui).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load(cfg.Data.Dir, catalog.Files{
		Catalog:    cfg.Data.Catalog,
		Similarity: cfg.Data.Similarity,
		Vectorizer: cfg.Data.Vectorizer,
		Vectors:    cfg.Data.Vectors,
	})
	if err != nil {
		logging.Fatal().Err(err).Str("dir", cfg.Data.Dir).Msg("failed to load artifacts")
	}
	logging.Info().Int("titles", cat.Len()).Int("tag_dimension", cat.Vectorizer().Dimension()).Msg("artifacts loaded")

	var st vectorstore.Storage
	switch cfg.VectorStore.Type {
	case "memory":
		st = memory.NewStorage()
	case "qdrant":
		q := cfg.VectorStore.Qdrant
		st = qdrant.NewStorage(qdrant.Config{
			URL:        q.URL,
			APIKey:     q.APIKey,
			Collection: q.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		})
	}

	var tr domain.Translator
	switch cfg.Translator.Type {
	case "none":
		tr = translate.Noop{}
	case "libretranslate":
		lt := cfg.Translator.LibreTranslate
		client, err := translate.NewClient(translate.Config{
			BaseURL:    lt.BaseURL,
			APIKeyEnv:  lt.APIKeyEnv,
			Source:     lt.Source,
			Target:     lt.Target,
			Timeout:    time.Duration(lt.TimeoutSecs) * time.Second,
			MaxRetries: lt.MaxRetries,
		})
		if err != nil {
			logging.Fatal().Err(err).Msg("translator init failed")
		}
		tr = client
	}

	svc := recommend.NewService(cat, st, tr, summarizer.NewFrequencySummarizer(), recommend.Options{
		TopK:           cfg.Recommender.TopK,
		BlurbSentences: cfg.Recommender.BlurbSentences,
	})
	if err := svc.Index(ctx); err != nil {
		logging.Fatal().Err(err).Str("vector_store", cfg.VectorStore.Type).Msg("indexing tag vectors failed")
	}
	reviews := review.NewStore(cfg.Reviews.Path)

	switch ui {
	case "tui":
		m := tui.New(ctx, svc, reviews, cfg.Reviews.RecentLimit)
		if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			logging.Fatal().Err(err).Msg("terminal ui failed")
		}
	case "web":
		if err := serve(ctx, cfg, svc, reviews); err != nil {
			logging.Fatal().Err(err).Msg("server failed")
		}
	default:
		logging.Fatal().Str("ui", ui).Msg("unknown ui, want web or tui")
	}
}

func serve(ctx context.Context, cfg *config.AppConfig, recs domain.RecommendService, reviews domain.ReviewService) error {
	s, err := web.New(recs, reviews, web.Options{
		RecentLimit:     cfg.Reviews.RecentLimit,
		ReviewRateLimit: cfg.Reviews.RateLimitPerMinute,
		TrustProxy:      cfg.Server.TrustProxy,
	})
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.Server.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownSecs)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// logOutput picks the log destination. The terminal UI owns the screen, so
// without a log file its logs are discarded.
func logOutput(path, ui string) (io.Writer, func(), error) {
	if path == "" {
		if ui == "tui" {
			return io.Discard, func() {}, nil
		}
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
