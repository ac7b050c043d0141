package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vstanchev/gh-metrics/internal/config"
	"github.com/vstanchev/gh-metrics/internal/gateway"
	"github.com/vstanchev/gh-metrics/internal/snapshot"
	"github.com/vstanchev/gh-metrics/internal/usecase"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collects commit activity from GitHub into the metrics snapshot",
	Long: `Collects commit counts for every tracked repository, aggregates them
into the five cumulative windows, and atomically replaces the snapshot file.
Configuration comes from GH_TOKEN, GH_USERNAME and the optional
REPOS_TO_TRACK environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := commandLogger(cmd)
		defer logger.Sync()

		dataDir, _ := cmd.Flags().GetString("data-dir")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		return collectOnce(cmd.Context(), logger, dataDir, timeout)
	},
}

// collectOnce runs the whole collector stage: configuration, fetching,
// aggregation and the atomic snapshot write.
func collectOnce(ctx context.Context, logger *zap.Logger, dataDir string, timeout time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	githubGateway, err := gateway.NewGitHubGateway(cfg.Token, timeout, logger)
	if err != nil {
		return err
	}
	collector := usecase.NewCollector(githubGateway, logger)

	snap, err := collector.Collect(ctx, cfg.Username, cfg.TrackedRepos)
	if err != nil {
		return fmt.Errorf("failed to collect metrics: %w", err)
	}

	store := snapshot.NewStore(dataDir, logger)
	if err := store.Save(snap); err != nil {
		return err
	}
	logger.Info("collection stage finished", zap.String("snapshot", store.Path()))
	return nil
}

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.Flags().String("data-dir", defaultDataDir, "Directory for the snapshot and its history copies")
	collectCmd.Flags().Duration("timeout", 30*time.Second, "Per-API-call timeout")
}
