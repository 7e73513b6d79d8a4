package main

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zomlab/whaleboard/internal/filter"
	"github.com/zomlab/whaleboard/internal/insight"
	"github.com/zomlab/whaleboard/internal/market"
	"github.com/zomlab/whaleboard/internal/mock"
	"github.com/zomlab/whaleboard/internal/service"
	"github.com/zomlab/whaleboard/internal/snapshot"
	"github.com/zomlab/whaleboard/internal/upstream"
)

func exportCmd() *cobra.Command {
	var (
		dryRun bool
		panels []string
	)

	cmd := &cobra.Command{
		Use:   "export [YYYY-MM-DD]",
		Short: "Export panel data to date-stamped JSONL snapshots",
		Long: `Export the trailing window of every panel to JSONL snapshot files.

The date argument anchors the filter window and names the output directory.
It defaults to today.

Examples:
  # Export all panels for today
  whaleboard-snapshot export

  # Export a specific date
  whaleboard-snapshot export 2026-08-14

  # Export a subset of panels
  whaleboard-snapshot export --panels congress-trades,market-tide`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			anchor := time.Now()
			if len(args) == 1 {
				parsed, err := time.Parse(market.DateLayout, args[0])
				if err != nil {
					return fmt.Errorf("invalid date %q: %w", args[0], err)
				}
				anchor = parsed
			}
			date := anchor.Format(market.DateLayout)

			spec, err := filter.Parse(url.Values{}, anchor)
			if err != nil {
				return err
			}

			selected := panels
			if len(selected) == 0 {
				selected = snapshot.Panels()
			}
			tasks := make([]snapshot.Task, 0, len(selected))
			for _, panel := range selected {
				tasks = append(tasks, snapshot.Task{Panel: panel, Spec: spec})
			}

			logger.Info("generated tasks", zap.Int("count", len(tasks)), zap.String("date", date))

			if dryRun {
				for _, t := range tasks {
					fmt.Printf("Would export: %s\n", t)
				}
				return nil
			}

			client := upstream.NewClient(
				cfg.Upstream.BaseURL,
				cfg.Upstream.APIKey,
				cfg.Upstream.RatePerSecond,
				time.Duration(cfg.Upstream.TimeoutSec)*time.Second,
				time.Duration(cfg.Upstream.RetryDelaySec)*time.Second,
				cfg.Upstream.RetryCount,
				logger,
			)
			svc := service.New(client, mock.NewGenerator(cfg.Mock.Seed), insight.NewTemplateSummarizer(), logger)

			stg := snapshot.NewStaging(cfg.Snapshot.Directory)
			mgr := snapshot.NewManager(svc, stg, cfg.Snapshot.Workers, cfg.Snapshot.Compress, logger)

			result, err := mgr.Execute(ctx, date, tasks)
			if err != nil {
				return err
			}

			// Commit staging to final location and cleanup
			if result.Success > 0 {
				if err := stg.CommitStaging(date); err != nil {
					logger.Warn("failed to commit staging", zap.String("date", date), zap.Error(err))
				}
			}
			if err := stg.CleanupStaging(date); err != nil {
				logger.Warn("failed to cleanup staging", zap.String("date", date), zap.Error(err))
			}

			logger.Info("export complete",
				zap.Int("total", result.Total),
				zap.Int("success", result.Success),
				zap.Int("skipped", result.Skipped),
				zap.Int("failed", result.Failed),
			)

			if result.Failed > 0 {
				for _, e := range result.Errors {
					logger.Error("export error", zap.String("detail", e))
				}
				return fmt.Errorf("%d of %d exports failed", result.Failed, result.Total)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list tasks without exporting")
	cmd.Flags().StringSliceVar(&panels, "panels", nil, "comma-separated panel subset (default all)")

	return cmd
}
