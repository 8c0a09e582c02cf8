package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opencodesearch/codesearch/pkg/codesearch"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build or update the index for the codebase root",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd)
		},
	}
	return cmd
}

func runIndex(cmd *cobra.Command) error {
	engine, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer engine.Close()

	return renderIndexing(cmd.OutOrStdout(), func(onProgress func(codesearch.Snapshot)) error {
		return engine.Index(cmd.Context(), codesearch.IndexOptions{OnProgress: onProgress})
	})
}
