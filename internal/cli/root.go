package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the apiprobe command tree.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "apiprobe",
		Short: "apiprobe - HTTP API test harness",
		Long: `apiprobe runs request checks and performance samples against an HTTP API
and writes a JSON report of the outcome.

Run without a suite file to execute the built-in REST Countries suite.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRunCommand(),
		newValidateCommand(),
		newMockCommand(),
		newConfigCommand(),
		newVersionCommand(version),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute(version string) {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCommand(version).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger creates a JSON logger at debug level when verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}
