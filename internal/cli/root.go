// Package cli implements the dataexplorer command line.
package cli

import (
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
	"github.com/YuminosukeSato/dataexplorer/pkg/log"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel  string
	LogFormat string // "json" | "console"
	Format    string // "json" | "text"

	logger log.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidLogFormats defines the allowed log encodings.
var ValidLogFormats = []string{"json", "console"}

// NewRootCommand creates the root command for the dataexplorer CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{logger: log.NewNopLogger()}

	cmd := &cobra.Command{
		Use:   "dataexplorer",
		Short: "Explore tabular data and fit simple linear regressions",
		Long: `Load CSV, Excel or SQLite tables, report and treat missing values,
fit a single-feature linear regression and save it as a seven-key record.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					"invalid format "+opts.Format+": must be one of text, json")
			}
			if !slices.Contains(ValidLogFormats, opts.LogFormat) {
				return NewExitError(ExitCommandError,
					"invalid log format "+opts.LogFormat+": must be one of json, console")
			}
			return opts.configureLogging(cmd.ErrOrStderr(), opts.LogLevel)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "console", "log encoding (json|console)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewFitCommand(opts))
	cmd.AddCommand(NewPredictCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))

	return cmd
}

// configureLogging installs a zerolog logger on w as the package default and
// routes library warnings through it.
func (o *RootOptions) configureLogging(w io.Writer, level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid log level", errors.WithStack(err))
	}

	var zl *log.ZerologLogger
	if o.LogFormat == "json" {
		zl = log.NewJSONLogger(w, lvl)
	} else {
		zl = log.NewConsoleLogger(w, lvl)
	}
	zl.InstallWarnings()
	log.SetLogger(zl)
	o.logger = zl
	return nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}
