// Package dataexplorer loads tabular data, treats missing values in selected
// columns and fits single-feature linear regressions that can be saved as a
// seven-key model record.
//
// The work is split across a few packages:
//
//   - core/table: typed columns (numeric or text) with explicit missing cells
//   - dataio: CSV, Excel and SQLite loaders with type inference
//   - preprocessing: missing value detection and the four treatment methods
//   - linear: SimpleRegression, ordinary least squares on one feature
//   - metrics: MSE, RMSE, MAE and R²
//   - core/model: the persisted Record and its gob, JSON and zstd codecs
//   - plotting: scatter plus regression line with gonum/plot
//   - cmd/dataexplorer: the command line front end
//
// # Quick Start
//
//	t, err := dataio.Open(ctx, "housing.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sel, _ := table.NewSelection(t, "area", "price")
//	proc, _ := preprocessing.NewMissingValueProcessor(t, sel)
//	if found, report := proc.CheckForMissing(); found {
//	    fmt.Print(report)
//	}
//	clean, err := proc.Preprocess(preprocessing.FillMedian)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	area, _ := clean.Column("area")
//	price, _ := clean.Column("price")
//	m, err := linear.FitColumns(area, price)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(m.Equation())
//	_ = model.SaveRecord("price.json", m.Record("housing prices"))
//
// # Errors
//
// Every failure is a typed error from pkg/errors (ConstantValueError,
// ValidationError, TypeError, PredictionInputError and others) and can be
// matched with errors.As. Operations either succeed completely or return an
// error and leave their inputs untouched.
//
// # Performance
//
// Row-wise work switches to chunked parallel execution above 1000 rows
// (core/parallel.DefaultThreshold); results are identical either way.
package dataexplorer
