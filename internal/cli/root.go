// Package cli implements the plenum command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/plenum/internal/config"
	"github.com/agenthands/plenum/internal/core"
	"github.com/agenthands/plenum/internal/core/model"
	"github.com/agenthands/plenum/internal/driver"
	"github.com/agenthands/plenum/internal/logging"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	ConfigPath string
	EnvFile    string
	Database   string
	Verbose    bool
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "plenum",
		Short: "Import legislative datasets into a Neo4j graph",
		Long: `plenum loads party, deputy, caucus, body, bill and vote datasets into
Neo4j as a property graph. Imports are idempotent: running one twice over
the same input leaves the graph unchanged.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a TOML config file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file with NEO4J_* credentials")
	cmd.PersistentFlags().StringVar(&opts.Database, "database", "", "target Neo4j database (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		NewImportCommand(opts),
		NewInspectCommand(opts),
		NewStatsCommand(opts),
		NewServeCommand(opts),
	)
	return cmd
}

// app is everything a command needs once configuration has been resolved.
type app struct {
	logger *zap.Logger
	driver driver.GraphDriver
}

// loadConfig resolves configuration without touching the store.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	config.LoadEnvFiles(o.EnvFile)

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.Database != "" {
		cfg.Neo4j.Database = o.Database
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// open resolves configuration and connects to the store. Configuration
// problems surface here, before any import stage runs. The returned release
// function must be called on every exit path.
func (o *RootOptions) open(ctx context.Context, cfg *config.Config) (*app, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	d, err := driver.NewNeo4jDriver(ctx, driver.Options{
		URI:                     cfg.Neo4j.URI,
		Username:                cfg.Neo4j.User,
		Password:                cfg.Neo4j.Password,
		Database:                cfg.Neo4j.Database,
		MaxTransactionRetryTime: cfg.Neo4j.MaxRetryTime(),
	}, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	release := func() {
		if err := d.Close(context.Background()); err != nil {
			logger.Warn("failed to close neo4j driver", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return &app{logger: logger, driver: d}, release, nil
}

// importerOptions maps the import section of the config onto core options.
func importerOptions(c config.ImportConfig) core.Options {
	opts := core.DefaultOptions()
	opts.BatchSize = c.BatchSize
	opts.RetryAttempts = c.RetryAttempts
	opts.RetryBackoff = c.RetryBackoff()
	opts.Parallel = c.Parallel
	opts.SecondaryConstraints = !c.SkipSecondaryConstraints
	if c.SkipNulls {
		opts.NullPolicy = model.NullPolicySkip
	}
	return opts
}
