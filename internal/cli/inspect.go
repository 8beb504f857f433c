package cli

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/dataexplorer/core/table"
	"github.com/YuminosukeSato/dataexplorer/dataio"
	"github.com/YuminosukeSato/dataexplorer/preprocessing"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Columns []string
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "List the columns of a table and report missing values",
		Long: `List every column of a CSV, Excel or SQLite table with its inferred kind
and missing count, then report missing values in the selected columns.

Example:
  dataexplorer inspect housing.csv --columns area,price`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "columns to check for missing values (default all)")

	return cmd
}

func runInspect(cmd *cobra.Command, opts *InspectOptions, path string) error {
	t, err := dataio.Open(cmd.Context(), path, dataio.WithLogger(opts.logger))
	if err != nil {
		return err
	}

	names := opts.Columns
	if len(names) == 0 {
		names = t.Names()
	}
	sel, err := table.NewSelection(t, names...)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid column selection", err)
	}
	proc, err := preprocessing.NewMissingValueProcessor(t, sel, preprocessing.WithLogger(opts.logger))
	if err != nil {
		return err
	}
	_, report := proc.CheckForMissing()

	out := inspectReport{Source: path, Rows: t.NumRows(), Report: report}
	for _, c := range t.Columns() {
		out.Columns = append(out.Columns, columnInfo{
			Name:    c.Name(),
			Kind:    c.Kind().String(),
			Missing: c.MissingCount(),
		})
	}
	return opts.formatter(cmd).Success(out)
}

// exactArgs is cobra.ExactArgs reporting a command error exit code.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return WrapExitError(ExitCommandError, "invalid arguments", err)
		}
		return nil
	}
}
