// Command seed は樹種テーブルを外部データセットまたは組み込みカタログから作成します。
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tree_backend/internal/app/di"
	speciesusecase "tree_backend/internal/feature/species/usecase"
	"tree_backend/internal/platform/config"
	infradb "tree_backend/internal/platform/db"
	infraredis "tree_backend/internal/platform/redis"
)

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		opts    speciesusecase.SeedOptions
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the species table",
		Long: `seed fetches tree species from the Hugging Face datasets-server and upserts
them into the species table. When the dataset is unreachable or --offline is set,
the built-in catalogue is used instead.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			report, err := run(cmd.Context(), cfg, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d species from %s\n", report.Count, report.Source)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml if present)")
	cmd.Flags().BoolVar(&opts.Offline, "offline", false, "use the built-in catalogue without contacting the dataset")
	cmd.Flags().IntVar(&opts.Limit, "limit", speciesusecase.MaxSeedRows, "maximum number of dataset rows to import")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, opts speciesusecase.SeedOptions) (*speciesusecase.SeedReport, error) {
	db, err := infradb.OpenDB(cfg.DB)
	if err != nil {
		return nil, err
	}
	defer infradb.Close(db)

	// シード時はテーブルが無ければ作成する
	if err := infradb.Migrate(db); err != nil {
		return nil, err
	}

	// Redisがあれば書き込み時に候補キャッシュを破棄する
	store := di.NewSpeciesStore(db, nil, cfg.Cache)
	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("Redis unavailable. Cached candidates expire by TTL.", "error", err)
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("Failed to close Redis client", "error", err)
				}
			}()
			store = di.NewSpeciesStore(db, rdb, cfg.Cache)
		}
	}

	return di.NewSeedUsecase(cfg.HuggingFace, store).Seed(ctx, opts)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}
