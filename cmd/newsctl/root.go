package main

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite" // SQLite driver registration.

	"news_reader/internal/article"
	"news_reader/internal/config"
	"news_reader/internal/fetcher"
	"news_reader/internal/filter"
	"news_reader/internal/model"
	"news_reader/internal/refresh"
	"news_reader/internal/storage"
	"news_reader/migrations"
)

type options struct {
	dbPath   string
	logLevel string
	out      io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{out: out}

	root := &cobra.Command{
		Use:          "newsctl",
		Short:        "Inspect and maintain the news reader article database",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.dbPath, "db", envOrDefault("DATABASE_PATH", "./data/news.db"), "path to sqlite database")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", envOrDefault("LOG_LEVEL", "info"), "log level (debug, info, warn, error)")

	root.AddCommand(
		newFetchCmd(opts),
		newSearchCmd(opts),
		newStatsCmd(opts),
		newMigrateCmd(opts),
	)
	return root
}

func newFetchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch every configured source and replace the stored batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := storage.NewSQLite(opts.dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			f := fetcher.New(&http.Client{Timeout: 60 * time.Second})
			r := refresh.NewWithFetcher(article.NewStore(), db, f, cfg.Sources, opts.logger())
			stats, err := r.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(opts.out, "Loaded %d article(s), dropped %d, %d of %d source(s) failed.\n",
				stats.Loaded, stats.Dropped, stats.FailedSources, len(cfg.Sources))
			return nil
		},
	}
}

func newSearchCmd(opts *options) *cobra.Command {
	var (
		category string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "search [terms...]",
		Short: "Search the stored articles",
		Long: `Match every term against title, description and content, case-insensitively.

Without terms every article in the selected category is listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := storage.NewSQLite(opts.dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			articles, err := db.ListArticles(cmd.Context(), "")
			if err != nil {
				return err
			}
			results := filter.Filter(articles, model.Query{
				Text:     strings.Join(args, " "),
				Category: category,
			})

			if len(results) == 0 {
				_, _ = fmt.Fprintln(opts.out, "No articles found.")
				return nil
			}
			for i, a := range results {
				if limit > 0 && i >= limit {
					_, _ = fmt.Fprintf(opts.out, "... and %d more\n", len(results)-limit)
					break
				}
				_, _ = fmt.Fprintf(opts.out, "%d. %s\n   %s\n", i+1, a.Title, a.URL)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", model.CategoryAll, "restrict results to one category")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of results to print (0 for all)")
	return cmd
}

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := storage.NewSQLite(opts.dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			ctx := cmd.Context()
			count, err := db.CountArticles(ctx)
			if err != nil {
				return err
			}
			categories, err := db.Categories(ctx)
			if err != nil {
				return err
			}
			last, err := db.LastRefresh(ctx)
			if err != nil {
				return err
			}

			lastText := "never"
			if !last.IsZero() {
				lastText = last.Format(time.RFC3339)
			}
			_, _ = fmt.Fprintf(opts.out, "Database: %s\n", opts.dbPath)
			_, _ = fmt.Fprintf(opts.out, "Articles: %d\n", count)
			_, _ = fmt.Fprintf(opts.out, "Categories: %s\n", joinOrNone(categories))
			_, _ = fmt.Fprintf(opts.out, "Last refresh: %s\n", lastText)
			return nil
		},
	}
}

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <up|up-one|down|status|version|reset>",
		Short:     "Run database migrations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: migrations.Commands,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := sql.Open("sqlite", opts.dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = db.Close() }()
			return migrations.Command(cmd.Context(), db, args[0])
		},
	}
}

func (o *options) logger() *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(o.logLevel)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func joinOrNone(s []string) string {
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s, ", ")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
