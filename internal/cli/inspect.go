package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/agenthands/plenum/internal/core"
)

func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print every relationship in the graph with its endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			a, release, err := rootOpts.open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer release()

			triples, err := core.NewInspector(a.driver).Dump(cmd.Context())
			if err != nil {
				return err
			}
			printTriples(cmd.OutOrStdout(), triples)
			return nil
		},
	}
}

func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print node counts per label and relationship counts per type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			a, release, err := rootOpts.open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer release()

			stats, err := core.NewInspector(a.driver).Counts(cmd.Context())
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}
}

func printTriples(w io.Writer, triples []core.Triple) {
	if len(triples) == 0 {
		fmt.Fprintln(w, "The graph is empty.")
		return
	}
	for i, t := range triples {
		fmt.Fprintf(w, "\nRecord %d:\n", i+1)
		if t.Source != nil {
			fmt.Fprintf(w, "  Source: labels=%v props=%v\n", t.Source.Labels, t.Source.Props)
		}
		if t.Relation != nil {
			fmt.Fprintf(w, "  Relation: type=%s props=%v\n", t.Relation.Type, t.Relation.Props)
		}
		if t.Target != nil {
			fmt.Fprintf(w, "  Target: labels=%v props=%v\n", t.Target.Labels, t.Target.Props)
		}
	}
}

func printStats(w io.Writer, s core.Stats) {
	fmt.Fprintf(w, "Nodes (%d)\n", s.TotalNodes())
	for _, k := range sortedKeys(s.Nodes) {
		fmt.Fprintf(w, "  %-20s %d\n", k, s.Nodes[k])
	}
	fmt.Fprintf(w, "Relationships (%d)\n", s.TotalRelationships())
	for _, k := range sortedKeys(s.Relationships) {
		fmt.Fprintf(w, "  %-20s %d\n", k, s.Relationships[k])
	}
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
