package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"news_reader/internal/article"
	"news_reader/internal/bot"
	"news_reader/internal/config"
	"news_reader/internal/httpapi"
	"news_reader/internal/refresh"
	"news_reader/internal/session"
	"news_reader/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if cfg.TelegramBotToken == "" && cfg.HTTPAddr == "" {
		log.Error("nothing to serve: set TELEGRAM_BOT_TOKEN or HTTP_ADDR")
		os.Exit(1)
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	db, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := article.NewStore()
	refresher := refresh.New(store, db, cfg.Sources, log)
	refresher.SetTickInterval(cfg.RefreshInterval)

	if n, err := refresher.Warm(ctx); err != nil {
		log.Warn("load stored articles", "error", err)
	} else {
		log.Info("loaded stored articles", "count", n)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		refresher.Run(ctx)
	}()

	if cfg.TelegramBotToken != "" {
		b, err := bot.New(cfg.TelegramBotToken, store, refresher, cfg, log)
		if err != nil {
			log.Error("create bot", "error", err)
			cancel()
			wg.Wait()
			os.Exit(1)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info("starting bot")
			b.Run(ctx)
			log.Info("bot stopped")
		}()
	}

	if cfg.HTTPAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveHTTP(ctx, cfg, store, log)
		}()
	}

	wg.Wait()
}

func serveHTTP(ctx context.Context, cfg *config.Config, store *article.Store, log *slog.Logger) {
	api := httpapi.New(store, log, session.Options{
		DebounceQuiet:  cfg.SearchDebounce,
		NotifyInterval: cfg.NotifyInterval,
		QueueLimit:     cfg.NotifyQueueLimit,
	})
	defer api.Close()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown http server", "error", err)
		}
	}()

	log.Info("starting http api", "addr", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http server", "error", err)
	}
	log.Info("http api stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
