package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opencodesearch/codesearch/pkg/codesearch"
)

type searchFlags struct {
	limit        int
	mode         string
	vectorWeight float64
	minScore     float64
	jsonOutput   bool
	content      bool
}

func newSearchCmd() *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the index (lexical, vector, or hybrid)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd, query, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.limit, "limit", "n", 10, "maximum number of results")
	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "hybrid", "search mode: lexical, vector, hybrid")
	cmd.Flags().Float64Var(&flags.vectorWeight, "vector-weight", 0.7, "vector weight in [0,1] for hybrid mode")
	cmd.Flags().Float64Var(&flags.minScore, "min-score", 0.01, "minimum score threshold")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&flags.content, "content", false, "include a content preview for each result")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, flags searchFlags) error {
	engine, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer engine.Close()

	opts := codesearch.DefaultSearchOptions()
	opts.Limit = flags.limit
	opts.Mode = codesearch.Mode(flags.mode)
	opts.VectorWeight = flags.vectorWeight
	opts.MinScore = flags.minScore
	opts.IncludeContent = flags.content

	results, err := engine.Search(cmd.Context(), query, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flags.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "no results")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(out, "%.4f  %-10s %s\n", r.Score, r.Provenance, r.Path)
		if flags.content && r.ContentPreview != "" {
			fmt.Fprintf(out, "    %s\n", r.ContentPreview)
		}
	}
	return nil
}
