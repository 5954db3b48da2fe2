package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/agenthands/plenum/internal/core"
	"github.com/agenthands/plenum/internal/dataset"
)

type ImportOptions struct {
	*RootOptions
	DatasetsDir string
	Parallel    bool
	SkipNulls   bool
}

func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the JSON datasets into Neo4j",
		Long: `Import the JSON datasets into Neo4j.

Reads partidos.json, deputados.json, frentes.json, orgaos.json,
proposicoes.json and votacoes.json from the datasets directory, creates
uniqueness constraints, then upserts each entity type in dependency order.

Example:
  plenum import --datasets-dir datasets --database neo4j`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DatasetsDir, "datasets-dir", "", "directory holding the JSON files (overrides config)")
	cmd.Flags().BoolVar(&opts.Parallel, "parallel", false, "run independent entity types concurrently")
	cmd.Flags().BoolVar(&opts.SkipNulls, "skip-nulls", false, "keep stored values when an incoming attribute is null")

	return cmd
}

func runImport(cmd *cobra.Command, opts *ImportOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if opts.DatasetsDir != "" {
		cfg.Import.DatasetsDir = opts.DatasetsDir
	}
	if opts.Parallel {
		cfg.Import.Parallel = true
	}
	if opts.SkipNulls {
		cfg.Import.SkipNulls = true
	}

	ds, err := dataset.Load(cfg.Import.DatasetsDir, cfg.Import.Files)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, release, err := opts.open(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	imp := core.NewImporter(a.driver, a.logger, importerOptions(cfg.Import))
	report, err := imp.Run(ctx, ds)
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), report)
	return nil
}

func printReport(w io.Writer, r *core.Report) {
	fmt.Fprintf(w, "Run %s: %d constraints, %d legislatures\n", r.RunID, r.Constraints, r.Legislatures)
	for _, s := range r.Stages {
		fmt.Fprintf(w, "  %-12s records=%-6d nodes_created=%-6d relationships_created=%-6d attempts=%d\n",
			s.Stage, s.Records, s.NodesCreated, s.RelationshipsCreated, s.Attempts)
	}
	fmt.Fprintf(w, "Done in %s\n", r.Duration.Round(time.Millisecond))
}
