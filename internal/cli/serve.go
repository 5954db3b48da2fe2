package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/plenum/internal/core"
	"github.com/agenthands/plenum/internal/server"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve imports and graph inspection over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}

			a, release, err := rootOpts.open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer release()

			imp := core.NewImporter(a.driver, a.logger, importerOptions(cfg.Import))
			srv := server.NewServer(imp, core.NewInspector(a.driver), cfg.Import, a.logger)

			a.logger.Info("starting server", zap.String("port", cfg.Server.Port))
			return srv.SetupRouter().Run(":" + cfg.Server.Port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides config and PORT)")
	return cmd
}
