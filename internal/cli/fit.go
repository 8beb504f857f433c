package cli

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/dataexplorer/core/model"
	"github.com/YuminosukeSato/dataexplorer/core/table"
	"github.com/YuminosukeSato/dataexplorer/dataio"
	"github.com/YuminosukeSato/dataexplorer/internal/config"
	"github.com/YuminosukeSato/dataexplorer/linear"
	"github.com/YuminosukeSato/dataexplorer/pkg/log"
	"github.com/YuminosukeSato/dataexplorer/plotting"
	"github.com/YuminosukeSato/dataexplorer/preprocessing"
)

// FitOptions holds flags for the fit command.
type FitOptions struct {
	*RootOptions
	ConfigPath string
	Run        config.Run
	constant   float64
}

// NewFitCommand creates the fit command.
func NewFitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fit [file]",
		Short: "Treat missing values and fit a linear regression",
		Long: `Load a table, treat missing values in the feature and target columns,
fit target = intercept + slope*feature and print the model summary.

Settings may come from a YAML file given with --config; flags override it.

Example:
  dataexplorer fit housing.csv --feature area --target price --method median --save model.json
  dataexplorer fit --config run.yaml --plot fit.png`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return WrapExitError(ExitCommandError, "invalid arguments", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFit(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "YAML file with the run settings")
	cmd.Flags().StringVar(&opts.Run.Feature, "feature", "", "feature column")
	cmd.Flags().StringVar(&opts.Run.Target, "target", "", "target column")
	cmd.Flags().StringVar(&opts.Run.Method, "method", "", "missing value method (delete|mean|median|constant)")
	cmd.Flags().Float64Var(&opts.constant, "constant", 0, "fill value for --method constant")
	cmd.Flags().StringVar(&opts.Run.Description, "description", "", "description stored with the model")
	cmd.Flags().StringVar(&opts.Run.Save, "save", "", "save the model record (.json, .gob or .zst)")
	cmd.Flags().StringVar(&opts.Run.Plot, "plot", "", "save a regression plot (.png or .svg)")

	return cmd
}

// resolveRun merges the config file, flags and positional source.
func resolveRun(cmd *cobra.Command, opts *FitOptions, args []string) (config.Run, error) {
	var run config.Run
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Run{}, WrapExitError(ExitCommandError, "invalid config file", err)
		}
		run = *loaded
	}

	flags := opts.Run
	if len(args) == 1 {
		flags.Source = args[0]
	}
	if cmd.Flags().Changed("constant") {
		v := opts.constant
		flags.Constant = &v
	}
	if cmd.Flags().Changed("log-level") {
		flags.LogLevel = opts.LogLevel
	}
	run = run.Merge(flags)

	if err := run.Validate(); err != nil {
		return config.Run{}, WrapExitError(ExitCommandError, "invalid fit settings", err)
	}
	return run, nil
}

func runFit(cmd *cobra.Command, opts *FitOptions, args []string) error {
	run, err := resolveRun(cmd, opts, args)
	if err != nil {
		return err
	}
	if run.LogLevel != "" && run.LogLevel != opts.LogLevel {
		if err := opts.configureLogging(cmd.ErrOrStderr(), run.LogLevel); err != nil {
			return err
		}
	}
	method, err := run.ImputationMethod()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid fit settings", err)
	}
	logger := opts.logger.With(log.SourceKey, run.Source)

	t, err := dataio.Open(cmd.Context(), run.Source, dataio.WithLogger(logger))
	if err != nil {
		return err
	}
	sel, err := table.NewSelection(t, run.Feature, run.Target)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid column selection", err)
	}
	proc, err := preprocessing.NewMissingValueProcessor(t, sel, preprocessing.WithLogger(logger))
	if err != nil {
		return err
	}
	_, report := proc.CheckForMissing()
	clean, err := proc.Preprocess(method)
	if err != nil {
		return err
	}

	feature, err := clean.Column(run.Feature)
	if err != nil {
		return err
	}
	target, err := clean.Column(run.Target)
	if err != nil {
		return err
	}
	m, err := linear.FitColumns(feature, target, linear.WithLogger(logger))
	if err != nil {
		return err
	}
	observed, err := target.Floats()
	if err != nil {
		return err
	}
	summary, err := newModelSummary(m, run.Description).withResiduals(m, observed)
	if err != nil {
		return err
	}

	out := fitReport{
		Source:  run.Source,
		Missing: proc.MissingCounts(),
		Report:  report,
		Method:  method.String(),
		Rows:    m.NSamples(),
		Model:   summary,
	}

	if run.Save != "" {
		if err := model.SaveRecord(run.Save, out.Model.Record); err != nil {
			return err
		}
		out.Saved = run.Save
	}
	if run.Plot != "" {
		if err := savePlot(m, feature, target, run.Plot); err != nil {
			return err
		}
		out.Plot = run.Plot
	}
	return opts.formatter(cmd).Success(out)
}

func savePlot(m *linear.SimpleRegression, feature, target *table.Column, path string) error {
	x, err := feature.Floats()
	if err != nil {
		return err
	}
	y, err := target.Floats()
	if err != nil {
		return err
	}
	p, err := plotting.RegressionPlot(m, x, y)
	if err != nil {
		return err
	}
	return plotting.Save(p, path, plotting.DefaultWidth, plotting.DefaultHeight)
}
