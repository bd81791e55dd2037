package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vnykmshr/apiprobe/internal/mockapi"
)

func newMockCommand() *cobra.Command {
	var (
		addr    string
		delay   time.Duration
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve an offline REST Countries fixture API",
		Long: `Serve a small REST Countries v3.1 fixture until interrupted, so the
built-in suite can run without network access:

  apiprobe mock --addr 127.0.0.1:8089
  apiprobe run --url http://127.0.0.1:8089/v3.1 --allow-private-ips`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd.ErrOrStderr(), verbose)
			server, err := mockapi.New(mockapi.Options{Delay: delay}, logger)
			if err != nil {
				return fmt.Errorf("failed to create mock API: %w", err)
			}
			return server.ListenAndServe(cmd.Context(), addr, nil)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8089", "Listen address")
	cmd.Flags().DurationVar(&delay, "delay", 0, "Artificial delay added to every response")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every request")
	return cmd
}
