package cli

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/dataexplorer/core/model"
	"github.com/YuminosukeSato/dataexplorer/linear"
)

// NewPredictCommand creates the predict command.
func NewPredictCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "predict <model-file> <value>",
		Short: "Predict the target for one feature value",
		Long: `Load a saved model record and predict the target for a feature value.

Negative values must follow "--" so they are not read as flags.

Example:
  dataexplorer predict model.json 5
  dataexplorer predict model.json -- -2.5`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModel(rootOpts, args[0])
			if err != nil {
				return err
			}
			x, err := m.ParseInput(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid prediction input", err)
			}
			v, err := m.Predict(x)
			if err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Success(prediction{
				Feature: m.FeatureName(),
				Input:   x,
				Target:  m.TargetName(),
				Value:   v,
			})
		},
	}
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <model-file>",
		Short: "Print a saved model record",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := model.LoadRecord(args[0])
			if err != nil {
				return err
			}
			m, err := linear.FromRecord(rec, linear.WithLogger(rootOpts.logger))
			if err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Success(newModelSummary(m, rec.Description))
		},
	}
}

func loadModel(opts *RootOptions, path string) (*linear.SimpleRegression, error) {
	rec, err := model.LoadRecord(path)
	if err != nil {
		return nil, err
	}
	return linear.FromRecord(rec, linear.WithLogger(opts.logger))
}
