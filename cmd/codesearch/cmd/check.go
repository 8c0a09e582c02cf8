package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opencodesearch/codesearch/internal/apperrors"
)

func newCheckCmd() *cobra.Command {
	var quick bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify index consistency (term/doc frequency, postings, vector counts)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, quick)
		},
	}
	cmd.Flags().BoolVar(&quick, "quick", false, "run only the cheap count-based check")
	return cmd
}

func runCheck(cmd *cobra.Command, quick bool) error {
	engine, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer engine.Close()

	out := cmd.OutOrStdout()

	if quick {
		ok, err := engine.QuickCheck(cmd.Context())
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintln(out, "ok")
			return nil
		}
		fmt.Fprintln(out, "drifted")
		return apperrors.New(apperrors.CodeIndexCorruption, "quick check detected drift")
	}

	result, err := engine.Check(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "checked %d documents in %s\n", result.Checked, result.Duration)
	if len(result.Inconsistencies) == 0 {
		fmt.Fprintln(out, "no inconsistencies found")
		return nil
	}
	for _, inc := range result.Inconsistencies {
		fmt.Fprintf(out, "%s: %s (%s)\n", inc.Type, inc.Subject, inc.Details)
	}
	return apperrors.New(apperrors.CodeIndexCorruption, "inconsistencies found").
		WithDetail("count", fmt.Sprint(len(result.Inconsistencies)))
}
