// Command blizzardprep prepares Blizzard feature streams: it computes the
// normalization statistics artifact and pulls batches through the stream.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/speechprep/blizzard"
	"github.com/kbukum/speechprep/bootstrap"
	"github.com/kbukum/speechprep/config"
	"github.com/kbukum/speechprep/dataset"
	"github.com/kbukum/speechprep/logger"
	"github.com/kbukum/speechprep/storage"
	_ "github.com/kbukum/speechprep/storage/local"
	_ "github.com/kbukum/speechprep/storage/s3"
	"github.com/kbukum/speechprep/version"
)

type rootFlags struct {
	configFile string
	envFile    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Prepare Blizzard speech feature streams",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default: search cmd/blizzardprep/config.yml)")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", ".env file to load")

	root.AddCommand(newStreamCmd(flags), newStatsCmd(flags), newVersionCmd())
	return root
}

// newApp loads the config and creates the task lifecycle around it.
func newApp(flags *rootFlags) (*bootstrap.App[*Config], error) {
	var opts []config.LoaderOption
	if flags.configFile != "" {
		opts = append(opts, config.WithConfigFile(flags.configFile))
	}
	if flags.envFile != "" {
		opts = append(opts, config.WithEnvFile(flags.envFile))
	}

	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Version == "" {
		cfg.Version = version.Short()
	}
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return nil, err
	}
	app.OnStart(func(context.Context) error {
		logger.RegisterStages(blizzard.Stages...)
		logger.Register("blizzard", app.Logger.WithComponent("blizzard"))
		info := version.Get()
		app.Logger.Debug("build", logger.Fields("commit", info.GitCommit, "go_version", info.GoVersion))
		return nil
	})
	return app, nil
}

// openDataset opens the configured storage backend and indexes the splits.
func openDataset(ctx context.Context, app *bootstrap.App[*Config]) (storage.Storage, *dataset.ObjectStore, error) {
	cfg := app.Cfg
	st, err := storage.New(cfg.Storage, app.Logger)
	if err != nil {
		return nil, nil, err
	}
	store, err := dataset.Open(ctx, st, cfg.Stream.WhichSets)
	if err != nil {
		return nil, nil, err
	}
	app.Summary.Track("dataset", "provider", cfg.Storage.Provider)
	if cfg.Storage.Provider == storage.ProviderS3 {
		app.Summary.Track("dataset", "bucket", cfg.Storage.S3.Bucket+"/"+cfg.Storage.S3.Prefix)
	} else {
		app.Summary.Track("dataset", "base_path", cfg.Storage.BasePath)
	}
	app.Summary.Track("dataset", "sets", cfg.Stream.WhichSets)
	app.Summary.Track("dataset", "records", store.Len())
	return st, store, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Full())
			return err
		},
	}
}
