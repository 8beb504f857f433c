package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dataexplorer/core/model"
	"github.com/YuminosukeSato/dataexplorer/linear"
	"github.com/YuminosukeSato/dataexplorer/metrics"
	"github.com/YuminosukeSato/dataexplorer/preprocessing"
)

// columnInfo describes one column of an inspected table.
type columnInfo struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Missing int    `json:"missing"`
}

// inspectReport is the output of the inspect command.
type inspectReport struct {
	Source  string       `json:"source"`
	Rows    int          `json:"rows"`
	Columns []columnInfo `json:"columns"`
	Report  string       `json:"report"`
}

func (r inspectReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\n", r.Source)
	fmt.Fprintf(&b, "Rows: %d\n\n", r.Rows)

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Column\tKind\tMissing")
	for _, c := range r.Columns {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Name, c.Kind, c.Missing)
	}
	_ = tw.Flush()

	b.WriteByte('\n')
	b.WriteString(strings.TrimRight(r.Report, "\n"))
	return b.String()
}

// modelSummary renders a record the way the model view shows it.
type modelSummary struct {
	Equation string       `json:"equation"`
	Record   model.Record `json:"record"`
	RMSE     *float64     `json:"rmse,omitempty"`
	MAE      *float64     `json:"mae,omitempty"`
}

func newModelSummary(m *linear.SimpleRegression, description string) modelSummary {
	return modelSummary{Equation: m.Equation(), Record: m.Record(description)}
}

// withResiduals adds RMSE and MAE of the fitted values against observed.
func (s modelSummary) withResiduals(m *linear.SimpleRegression, observed []float64) (modelSummary, error) {
	yTrue := mat.NewVecDense(len(observed), append([]float64(nil), observed...))
	yPred := mat.NewVecDense(len(observed), m.Predictions())
	rmse, err := metrics.RMSE(yTrue, yPred)
	if err != nil {
		return s, err
	}
	mae, err := metrics.MAE(yTrue, yPred)
	if err != nil {
		return s, err
	}
	s.RMSE, s.MAE = &rmse, &mae
	return s, nil
}

func (s modelSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Predicted equation: %s\n", s.Equation)
	fmt.Fprintf(&b, "Coefficient of determination (R²): %.4f\n", s.Record.RSquared)
	fmt.Fprintf(&b, "Mean Square Error (MSE): %.4f", s.Record.MSE)
	if s.RMSE != nil {
		fmt.Fprintf(&b, "\nRoot Mean Square Error (RMSE): %.4f", *s.RMSE)
	}
	if s.MAE != nil {
		fmt.Fprintf(&b, "\nMean Absolute Error (MAE): %.4f", *s.MAE)
	}
	if s.Record.Description != "" {
		fmt.Fprintf(&b, "\nDescription: %s", s.Record.Description)
	}
	return b.String()
}

// fitReport is the output of the fit command.
type fitReport struct {
	Source  string                        `json:"source"`
	Missing []preprocessing.ColumnMissing `json:"missing"`
	Report  string                        `json:"report"`
	Method  string                        `json:"method"`
	Rows    int                           `json:"rows"`
	Model   modelSummary                  `json:"model"`
	Saved   string                        `json:"saved,omitempty"`
	Plot    string                        `json:"plot,omitempty"`
}

func (r fitReport) String() string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(r.Report, "\n"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Method: %s\n", r.Method)
	fmt.Fprintf(&b, "Rows used: %d\n", r.Rows)
	b.WriteString(r.Model.String())
	if r.Saved != "" {
		fmt.Fprintf(&b, "\nModel saved to %s", r.Saved)
	}
	if r.Plot != "" {
		fmt.Fprintf(&b, "\nPlot saved to %s", r.Plot)
	}
	return b.String()
}

// prediction is the output of the predict command.
type prediction struct {
	Feature string  `json:"feature"`
	Input   float64 `json:"input"`
	Target  string  `json:"target"`
	Value   float64 `json:"prediction"`
}

func (p prediction) String() string {
	return fmt.Sprintf("Predicted %s: %.2f", p.Target, p.Value)
}
