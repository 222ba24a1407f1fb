package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/speechprep/blizzard"
	"github.com/kbukum/speechprep/bootstrap"
	"github.com/kbukum/speechprep/dataset"
	"github.com/kbukum/speechprep/logger"
	"github.com/kbukum/speechprep/stats"
	"github.com/kbukum/speechprep/storage"
)

func newStatsCmd(flags *rootFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Compute the normalization statistics artifact",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			if output != "" {
				app.Cfg.StatsPath = output
			}

			var (
				st    storage.Storage
				store *dataset.ObjectStore
			)
			app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
				st, store, err = openDataset(ctx, a)
				a.Summary.Track("stats", "path", a.Cfg.StatsPath)
				return err
			})

			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				computed, err := blizzard.ComputeStats(ctx, store, app.Cfg.Stream)
				if err != nil {
					return err
				}
				if err := stats.Save(ctx, st, app.Cfg.StatsPath, computed); err != nil {
					return err
				}
				app.Logger.Info("statistics saved", logger.Fields("path", app.Cfg.StatsPath))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "artifact path inside storage (default: stats_path)")
	return cmd
}
