package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vietddude/taxocache/internal/cache"
	"github.com/vietddude/taxocache/internal/core/config"
	redisclient "github.com/vietddude/taxocache/internal/infra/redis"
	"github.com/vietddude/taxocache/internal/infra/storage/file"
	"github.com/vietddude/taxocache/internal/infra/storage/postgres"
	"github.com/vietddude/taxocache/internal/resolver"
)

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Clear the durable taxonomy cache entry",
	Run:   runFlush,
}

func init() {
	rootCmd.AddCommand(flushCmd)
}

func runFlush(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, name, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open durable store", "error", err)
		os.Exit(1)
	}

	if err := store.Clear(ctx, resolver.TaxonomyKey); err != nil {
		slog.Error("Failed to clear taxonomy entry", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Cleared %q from the %s store\n", resolver.TaxonomyKey, name)
}

// openStore mirrors the backend precedence the service uses at startup.
func openStore(ctx context.Context, cfg *config.AppConfig) (cache.Store, string, error) {
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, "", err
		}
		return postgres.NewCacheStore(db), "postgres", nil
	}
	if cfg.Redis.URL != "" {
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, "", err
		}
		return redisclient.NewCacheStore(client), "redis", nil
	}
	store, err := file.NewStore(cfg.Cache.Dir)
	if err != nil {
		return nil, "", err
	}
	return store, "file", nil
}
