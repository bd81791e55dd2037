package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vnykmshr/apiprobe/internal/suite"
)

func newValidateCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "validate <suite.yaml> [suite.yaml ...]",
		Short: "Check suite files without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), verbose)
			suites, err := suite.NewLoader(logger).LoadFiles(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("suite validation failed: %w", err)
			}

			out := cmd.OutOrStdout()
			for i, s := range suites {
				fmt.Fprintf(out, "%s: %q (%d cases)\n", args[i], s.Name, len(s.Cases))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}
