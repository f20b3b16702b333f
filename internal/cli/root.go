// Package cli provides the tabclean command-line interface. Each command
// loads a CSV or XLSX file into a fresh in-memory session and runs one
// cleaning operation against it.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/JonMunkholm/tabclean/internal/core"
	"github.com/JonMunkholm/tabclean/internal/dataset"
	"github.com/JonMunkholm/tabclean/internal/logging"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var Version = "0.1.0"

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
)

// options are the global flags shared by every command.
type options struct {
	format   string
	logLevel string
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "tabclean",
		Short: "tabclean - clean up tabular contact data",
		Long: `tabclean inspects and cleans CSV and Excel files: it lists and
resolves duplicate rows and normalizes phone numbers.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.format != formatTable && opts.format != formatJSON {
				return fmt.Errorf("invalid --format %q (expected table or json)", opts.format)
			}
			logging.SetupWriter(cmd.ErrOrStderr(), opts.logLevel, "text")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.format, "format", "f", formatTable, "Output format (table|json)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{formatTable, formatJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newHeadersCommand(opts))
	rootCmd.AddCommand(newDupesCommand(opts))
	rootCmd.AddCommand(newShowDupesCommand(opts))
	rootCmd.AddCommand(newPhonesCommand(opts))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		return err
	}
	return nil
}

// loaded is a file decoded into its own single-session service.
type loaded struct {
	svc *core.Service
	id  string
}

// load decodes path into a fresh session.
func load(ctx context.Context, path string) (*loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := dataset.Decode(ctx, path, f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	svc := core.NewService(core.NewSessionStore(time.Hour, 1))
	id, _, _ := svc.Load(ctx, "", path, table)
	return &loaded{svc: svc, id: id}, nil
}
