package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tanachan3/looqn-all/internal/config"
	"github.com/tanachan3/looqn-all/internal/geodata"
	"github.com/tanachan3/looqn-all/internal/journal"
	"github.com/tanachan3/looqn-all/internal/llm"
	"github.com/tanachan3/looqn-all/internal/pipeline"
	"go.uber.org/zap"
)

var (
	configPath string
	dataDir    string
	verbose    bool
	cfg        *config.Config
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "geomsg",
	Short: "Generate short anonymized social posts grounded in a geographic location",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if !cmd.Flags().Changed("data-dir") {
			dataDir = cfg.Data.Dir
		}

		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "data", "Directory for the run journal")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

func Execute() error {
	return rootCmd.Execute()
}

// buildPipeline assembles the pipeline from config and environment.
// The journal is optional: if it cannot be opened the pipeline runs
// without one. The returned closer releases the journal handle.
func buildPipeline(ctx context.Context) (*pipeline.Pipeline, func(), error) {
	client, err := llm.NewClient(ctx, os.Getenv("GEMINI_API_KEY"), cfg.Generate.Model, logger)
	if err != nil {
		return nil, nil, err
	}
	client.SetGenerationTuning(cfg.Generate.Temperature, cfg.Generate.MaxTokens)

	overpass := geodata.NewClient(cfg.Overpass.Endpoint, time.Duration(cfg.Overpass.TimeoutSeconds)*time.Second)
	resolver := geodata.NewResolver(overpass, logger)

	var j pipeline.Journal
	closer := func() {}
	store, err := journal.Open(dataDir)
	if err != nil {
		logger.Warn("run journal unavailable", zap.Error(err))
	} else {
		j = store
		closer = func() { _ = store.Close() }
	}

	return pipeline.New(resolver, client, j, logger), closer, nil
}
