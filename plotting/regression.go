// Package plotting renders a fitted single-feature regression with
// gonum/plot: the observed rows as a scatter and the fitted values as a line.
package plotting

import (
	"image/color"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/dataexplorer/core/parallel"
	"github.com/YuminosukeSato/dataexplorer/linear"
	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
	"github.com/YuminosukeSato/dataexplorer/pkg/log"
)

const (
	// ObservedLabel is the legend entry of the data points.
	ObservedLabel = "Observed"
	// LineLabel is the legend entry of the fitted line.
	LineLabel = "Regression line"

	// DefaultWidth and DefaultHeight are used by the CLI when saving.
	DefaultWidth  = 6 * vg.Inch
	DefaultHeight = 4 * vg.Inch
)

// Formats lists the output formats accepted by Save and WriteTo.
var Formats = []string{"png", "svg"}

var (
	observedColor = color.RGBA{B: 255, A: 255}
	lineColor     = color.RGBA{R: 255, A: 255}
)

// Option configures RegressionPlot.
type Option func(*config)

type config struct {
	title string
}

// WithTitle overrides the plot title, which defaults to the model equation.
func WithTitle(title string) Option {
	return func(c *config) { c.title = title }
}

// RegressionPlot draws feature against target and the line fitted by m.
// feature and target must have the same non-zero length and hold finite values.
func RegressionPlot(m *linear.SimpleRegression, feature, target []float64, opts ...Option) (*plot.Plot, error) {
	if err := m.RequireFitted("SimpleRegression", "RegressionPlot"); err != nil {
		return nil, err
	}
	if len(feature) != len(target) {
		return nil, errors.NewDimensionError("RegressionPlot", len(feature), len(target), 0)
	}
	if len(feature) == 0 {
		return nil, errors.NewValidationError("feature", errors.ReasonEmptyInput, 0)
	}
	for _, s := range [][]float64{feature, target} {
		if i := errors.FirstNonFinite(s); i >= 0 {
			return nil, errors.NewValidationError("values", errors.ReasonInvalidValue, s[i])
		}
	}

	cfg := config{title: m.Equation()}
	for _, opt := range opts {
		opt(&cfg)
	}

	observed := make(plotter.XYs, len(feature))
	for i := range feature {
		observed[i].X = feature[i]
		observed[i].Y = target[i]
	}

	xs := slices.Clone(feature)
	slices.Sort(xs)
	xs = slices.Compact(xs)
	fitted := make(plotter.XYs, len(xs))
	err := parallel.ParallelizeErrWithThreshold(len(xs), parallel.DefaultThreshold, func(start, end int) error {
		for i := start; i < end; i++ {
			y, err := m.Predict(xs[i])
			if err != nil {
				return err
			}
			fitted[i].X = xs[i]
			fitted[i].Y = y
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	scatter, err := plotter.NewScatter(observed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build scatter")
	}
	scatter.GlyphStyle.Color = observedColor
	scatter.GlyphStyle.Radius = vg.Points(2)

	line, err := plotter.NewLine(fitted)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build regression line")
	}
	line.LineStyle.Color = lineColor
	line.LineStyle.Width = vg.Points(2)

	p := plot.New()
	p.Title.Text = cfg.title
	p.X.Label.Text = m.FeatureName()
	p.Y.Label.Text = m.TargetName()
	p.Add(plotter.NewGrid(), scatter, line)
	p.Legend.Add(ObservedLabel, scatter)
	p.Legend.Add(LineLabel, line)
	p.Legend.Top = true
	return p, nil
}

func checkFormat(path, format string) error {
	if !slices.Contains(Formats, format) {
		supported := make([]string, len(Formats))
		for i, f := range Formats {
			supported[i] = "." + f
		}
		return errors.NewFormatError(path, "."+format, supported)
	}
	return nil
}

// Save writes p to path in the format named by the path's extension.
func Save(p *plot.Plot, path string, w, h vg.Length) error {
	if strings.TrimSpace(path) == "" {
		return errors.WithStack(errors.ErrNoPathSelected)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if err := checkFormat(path, format); err != nil {
		return err
	}
	if err := p.Save(w, h, path); err != nil {
		return errors.Wrapf(err, "failed to save plot to %s", path)
	}
	log.GetLoggerWithName("plotting").Debug("plot saved",
		log.OperationKey, log.OperationPlot,
		log.PhaseKey, log.PhasePersistence,
		log.SourceKey, path,
	)
	return nil
}

// WriteTo renders p at the default size to out.
func WriteTo(out io.Writer, p *plot.Plot, format string) error {
	format = strings.ToLower(format)
	if err := checkFormat("", format); err != nil {
		return err
	}
	wt, err := p.WriterTo(DefaultWidth, DefaultHeight, format)
	if err != nil {
		return errors.Wrap(err, "failed to render plot")
	}
	if _, err := wt.WriteTo(out); err != nil {
		return errors.Wrapf(err, "failed to write %s plot", format)
	}
	return nil
}
