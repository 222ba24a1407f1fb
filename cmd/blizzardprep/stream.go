package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/speechprep/blizzard"
	"github.com/kbukum/speechprep/bootstrap"
	"github.com/kbukum/speechprep/features"
	"github.com/kbukum/speechprep/logger"
	"github.com/kbukum/speechprep/stats"
)

func newStreamCmd(flags *rootFlags) *cobra.Command {
	var (
		epochs  int
		batches int
	)
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Pull segments through the stream and log their shapes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}

			var s *blizzard.Stream
			app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
				st, store, err := openDataset(ctx, a)
				if err != nil {
					return err
				}
				moments, err := stats.Load(ctx, st, a.Cfg.StatsPath)
				if err != nil {
					return err
				}
				s, err = blizzard.New(store, moments, a.Cfg.Stream, a.Logger.WithComponent("stream"))
				if err != nil {
					return err
				}
				a.Summary.Track("stream", "run_id", s.RunID())
				a.Summary.Track("stream", "num_examples", s.NumExamples())
				a.Summary.Track("stream", "options", a.Cfg.Stream.String())
				return nil
			})

			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				for epoch := 0; epoch < epochs; epoch++ {
					if err := pullEpoch(ctx, s, batches, app.Logger); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&epochs, "epochs", 1, "number of epochs to pull")
	cmd.Flags().IntVar(&batches, "batches", 0, "segments to pull per epoch (0 = whole epoch)")
	return cmd
}

// pullEpoch drains up to limit segments and logs the shapes of the first one.
func pullEpoch(ctx context.Context, s *blizzard.Stream, limit int, log *logger.Logger) error {
	it := s.Epoch(ctx)
	defer it.Close()

	n := 0
	for limit == 0 || n < limit {
		out, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if n == 0 {
			log.Info("first segment", shapes(out))
		}
		n++
	}
	log.Info("pulled segments", logger.Fields(logger.FieldSegment, n))
	return nil
}

func shapes(out *features.Output) map[string]interface{} {
	fields := make(map[string]interface{}, len(out.Sources))
	for _, ch := range out.Sources {
		if t, ok := out.Get(ch); ok {
			fields[string(ch)] = fmt.Sprint(t.Shape())
		}
	}
	return fields
}
