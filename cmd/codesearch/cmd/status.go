package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current indexing status and index size",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func runStatus(cmd *cobra.Command, jsonOutput bool) error {
	engine, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer engine.Close()

	status := engine.Status()
	out := cmd.OutOrStdout()

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	fmt.Fprintf(out, "stage:        %s\n", status.Stage)
	fmt.Fprintf(out, "indexing:     %t\n", status.IsIndexing)
	if status.IsIndexing {
		fmt.Fprintf(out, "progress:     %d%% (%d/%d)\n", status.Progress, status.IndexedFiles, status.TotalFiles)
	}
	if status.Error != "" {
		fmt.Fprintf(out, "last error:   %s\n", status.Error)
	}
	fmt.Fprintf(out, "documents:    %d\n", status.DocCount)
	fmt.Fprintf(out, "terms:        %d\n", status.TermCount)
	fmt.Fprintf(out, "vectors:      %d\n", status.VectorCount)
	return nil
}
