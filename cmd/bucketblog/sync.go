package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/eringen/bucketblog"
	"github.com/eringen/bucketblog/ignore"
	"github.com/eringen/bucketblog/wikilink"
)

type syncSummary struct {
	Source   string                `json:"source"`
	Posts    int                   `json:"posts"`
	Tags     []string              `json:"tags"`
	Duration string                `json:"duration"`
	Stats    bucketblog.CacheStats `json:"stats"`
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync once with the store and print a summary",
	Long: `Run a single forced sync against the document store and print a JSON
summary. With --database-path the snapshot is restored first and updated
afterwards, so only changed documents are fetched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := siteConfig()

		store, err := openStore()
		if err != nil {
			return err
		}
		filter, err := ignore.New(cfg.IgnorePatterns)
		if err != nil {
			return err
		}

		logger := log.New("sync")
		logger.SetOutput(os.Stderr)

		opts := bucketblog.CacheOptions{
			TTL:    cfg.CacheTTL,
			Ignore: filter,
			Logger: logger,
		}
		if cfg.AssetBaseURL != "" {
			opts.Transformer = wikilink.New(cfg.AssetBaseURL)
		}
		if cfg.DatabasePath != "" {
			snapshot, err := bucketblog.NewStore(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer snapshot.Close()
			opts.Snapshot = snapshot
		}

		cache := bucketblog.NewBlogCache(store, opts)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := cache.Restore(ctx); err != nil {
			logger.Warnf("snapshot not restored: %v", err)
		}

		start := time.Now()
		view := cache.Load(ctx, true)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(syncSummary{
			Source:   describeStore(store),
			Posts:    len(view.Posts),
			Tags:     view.AvailableTags,
			Duration: time.Since(start).Round(time.Millisecond).String(),
			Stats:    cache.Stats(),
		})
	},
}
