package linear

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/dataexplorer/core/table"
	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
	"github.com/YuminosukeSato/dataexplorer/pkg/log"
)

func column(t *testing.T, name string, values ...float64) *table.Column {
	t.Helper()
	c, err := table.FromFloats(name, values)
	require.NoError(t, err)
	return c
}

func quiet() Option { return WithLogger(log.NewNopLogger()) }

func TestFitPerfectLine(t *testing.T) {
	r, err := FitColumns(
		column(t, "ads", 1, 2, 3, 4, 5),
		column(t, "sales", 3, 5, 7, 9, 11),
		quiet(),
	)
	require.NoError(t, err)

	assert.True(t, r.IsFitted())
	assert.InDelta(t, 1.0, r.Intercept(), 1e-9)
	assert.InDelta(t, 2.0, r.Slope(), 1e-9)
	assert.InDelta(t, 1.0, r.RSquared(), 1e-9)
	assert.InDelta(t, 0.0, r.MSE(), 1e-9)
	assert.Equal(t, 5, r.NSamples())
	assert.Equal(t, "ads", r.FeatureName())
	assert.Equal(t, "sales", r.TargetName())
	assert.Equal(t, "sales = 1.00 + 2.00*ads", r.Equation())
}

func TestFitNoisyData(t *testing.T) {
	r, err := FitColumns(column(t, "x", 1, 2, 3, 4), column(t, "y", 2, 4, 5, 4), quiet())
	require.NoError(t, err)

	assert.InDelta(t, 2.0, r.Intercept(), 1e-9)
	assert.InDelta(t, 0.7, r.Slope(), 1e-9)
	assert.InDelta(t, 0.575, r.MSE(), 1e-9)
	assert.InDelta(t, 1-2.3/4.75, r.RSquared(), 1e-9)

	preds := r.Predictions()
	require.Len(t, preds, 4)
	for i, want := range []float64{2.7, 3.4, 4.1, 4.8} {
		assert.InDelta(t, want, preds[i], 1e-9)
	}

	preds[0] = 100
	assert.InDelta(t, 2.7, r.Predictions()[0], 1e-9, "Predictions must return a copy")
}

func TestFitZeroVarianceTarget(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(nil)

	r, err := FitColumns(column(t, "x", 1, 2, 3), column(t, "y", 0.1, 0.1, 0.1), quiet())
	require.NoError(t, err)

	assert.Equal(t, 0.0, r.RSquared())
	assert.InDelta(t, 0.0, r.Slope(), 1e-9)
	assert.InDelta(t, 0.1, r.Intercept(), 1e-9)
	require.Len(t, warnings, 1)
	var umw *errors.UndefinedMetricWarning
	assert.True(t, errors.As(warnings[0], &umw))
}

func TestFitZeroVarianceFeature(t *testing.T) {
	r := NewSimpleRegression(quiet())
	err := r.Fit(column(t, "x", 2, 2, 2), column(t, "y", 1, 2, 3))

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSingularMatrix))
	var me *errors.ModelError
	assert.True(t, errors.As(err, &me))
	assert.False(t, r.IsFitted())

	err = r.FitSlices("x", []float64{5}, "y", []float64{1})
	assert.True(t, errors.Is(err, errors.ErrSingularMatrix))
}

func TestFitLargeFeatureValues(t *testing.T) {
	for _, offset := range []float64{1e3, 1e5, 1e7, 1.7e9} {
		x := make([]float64, 100)
		y := make([]float64, 100)
		for i := range x {
			x[i] = offset + float64(i)
			y[i] = 2*float64(i) + 3
		}

		r := NewSimpleRegression(quiet())
		require.NoError(t, r.FitSlices("timestamp", x, "y", y), "offset %g", offset)
		assert.InDelta(t, 2.0, r.Slope(), 1e-6, "offset %g", offset)
		assert.InDelta(t, 3-2*offset, r.Intercept(), 1e-6*offset, "offset %g", offset)
		assert.InDelta(t, 1.0, r.RSquared(), 1e-9, "offset %g", offset)

		got, err := r.Predict(offset + 50)
		require.NoError(t, err)
		assert.InDelta(t, 103.0, got, 1e-3, "offset %g", offset)
	}
}

func TestFitPreconditionOrder(t *testing.T) {
	text, err := table.NewTextColumn("city", []table.String{table.S("a"), table.S("b")})
	require.NoError(t, err)
	withMissing, err := table.NewNumericColumn("y", []table.Float{table.F(1), table.NA, table.F(3)})
	require.NoError(t, err)

	tests := []struct {
		name    string
		feature *table.Column
		target  *table.Column
		check   func(t *testing.T, err error)
	}{
		{
			name:    "text column wins over length mismatch",
			feature: text,
			target:  column(t, "y", 1, 2, 3),
			check: func(t *testing.T, err error) {
				var te *errors.TypeError
				require.True(t, errors.As(err, &te))
				assert.Equal(t, "city", te.Column)
			},
		},
		{
			name:    "length mismatch",
			feature: column(t, "x", 1, 2),
			target:  column(t, "y", 1, 2, 3),
			check: func(t *testing.T, err error) {
				assert.True(t, errors.HasReason(err, errors.ReasonLengthMismatch))
			},
		},
		{
			name:    "empty input",
			feature: column(t, "x"),
			target:  column(t, "y"),
			check: func(t *testing.T, err error) {
				assert.True(t, errors.HasReason(err, errors.ReasonEmptyInput))
			},
		},
		{
			name:    "missing value",
			feature: column(t, "x", 1, 2, 3),
			target:  withMissing,
			check: func(t *testing.T, err error) {
				var te *errors.TypeError
				require.True(t, errors.As(err, &te))
				assert.Equal(t, "y", te.Column)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewSimpleRegression(quiet())
			err := r.Fit(tt.feature, tt.target)
			require.Error(t, err)
			tt.check(t, err)
			assert.False(t, r.IsFitted())
		})
	}
}

func TestFitSlicesRejectsNonFinite(t *testing.T) {
	r := NewSimpleRegression(quiet())
	err := r.FitSlices("x", []float64{1, math.NaN()}, "y", []float64{1, 2})
	var te *errors.TypeError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "x", te.Column)

	err = r.FitSlices("x", []float64{1, 2}, "y", []float64{1, math.Inf(1)})
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "y", te.Column)

	x := []float64{1, 2, 3}
	require.NoError(t, r.FitSlices("x", x, "y", []float64{2, 4, 6}))
	x[0] = 99
	assert.InDelta(t, 2.0, r.Predictions()[0], 1e-9)
}

func TestSecondFitIsRejected(t *testing.T) {
	r, err := FitColumns(column(t, "x", 1, 2, 3), column(t, "y", 2, 4, 6), quiet())
	require.NoError(t, err)

	err = r.Fit(column(t, "x", 1, 2, 3), column(t, "y", 3, 2, 1))
	var afe *errors.AlreadyFittedError
	require.True(t, errors.As(err, &afe))
	assert.InDelta(t, 2.0, r.Slope(), 1e-9)
}

func TestUnfittedAccessors(t *testing.T) {
	r := NewSimpleRegression(quiet())

	assert.Equal(t, "", r.FeatureName())
	assert.Zero(t, r.Slope())
	assert.Nil(t, r.Predictions())

	_, err := r.Predict(1)
	var nfe *errors.NotFittedError
	assert.True(t, errors.As(err, &nfe))

	_, err = r.PredictText("1")
	assert.True(t, errors.As(err, &nfe))
}

func TestPredict(t *testing.T) {
	r, err := FitColumns(column(t, "x", 0, 1, 2), column(t, "y", 1, 3, 5), quiet())
	require.NoError(t, err)

	got, err := r.Predict(10)
	require.NoError(t, err)
	assert.InDelta(t, 21.0, got, 1e-9)

	got, err = r.PredictText(" 2.5 ")
	require.NoError(t, err)
	assert.InDelta(t, 6.0, got, 1e-9)

	for _, bad := range []string{"abc", "", "NaN", "inf"} {
		_, err := r.PredictText(bad)
		var pie *errors.PredictionInputError
		require.True(t, errors.As(err, &pie), "input %q", bad)
		assert.Equal(t, "x", pie.Feature)
	}

	_, err = r.Predict(math.NaN())
	var pie *errors.PredictionInputError
	assert.True(t, errors.As(err, &pie))
}

func TestConcurrentPredict(t *testing.T) {
	r, err := FitColumns(column(t, "x", 0, 1, 2), column(t, "y", 1, 3, 5), quiet())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			got, err := r.Predict(v)
			assert.NoError(t, err)
			assert.InDelta(t, 1+2*v, got, 1e-9)
		}(float64(i))
	}
	wg.Wait()
}

func TestRecordRoundTrip(t *testing.T) {
	r, err := FitColumns(column(t, "x", 1, 2, 3, 4), column(t, "y", 2, 4, 5, 4), quiet())
	require.NoError(t, err)

	rec := r.Record("demo")
	assert.Equal(t, "demo", rec.Description)
	assert.Equal(t, r.Slope(), rec.Slope)

	loaded, err := FromRecord(rec, quiet())
	require.NoError(t, err)
	assert.True(t, loaded.IsFitted())
	assert.Equal(t, 0, loaded.NSamples())
	assert.Nil(t, loaded.Predictions())
	assert.Equal(t, r.Equation(), loaded.Equation())

	want, _ := r.Predict(7)
	got, err := loaded.Predict(7)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	rec.TargetName = ""
	_, err = FromRecord(rec)
	assert.Error(t, err)
}

func TestParallelFitMatchesSequential(t *testing.T) {
	const n = 3000
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i) / 10
		y[i] = 3 - 0.5*x[i] + float64(i%5)*0.01
	}

	seq := NewSimpleRegression(quiet(), WithParallelThreshold(n+1))
	require.NoError(t, seq.FitSlices("x", x, "y", y))
	par := NewSimpleRegression(quiet(), WithParallelThreshold(64))
	require.NoError(t, par.FitSlices("x", x, "y", y))

	assert.Equal(t, seq.Intercept(), par.Intercept())
	assert.Equal(t, seq.Slope(), par.Slope())
	assert.Equal(t, seq.Predictions(), par.Predictions())
}

func TestFitLogsSummary(t *testing.T) {
	testLogger, _ := log.NewTestLogger(log.LevelDebug)
	_, err := FitColumns(column(t, "x", 1, 2, 3), column(t, "y", 2, 4, 6), WithLogger(testLogger))
	require.NoError(t, err)

	assert.True(t, testLogger.ContainsMessage("fit completed"))
	assert.True(t, testLogger.ContainsField(log.OperationKey, log.OperationFit))
	assert.True(t, testLogger.ContainsField(log.FeatureKey, "x"))
	assert.True(t, testLogger.ContainsField(log.SamplesKey, 3.0))
	assert.True(t, testLogger.ContainsField(log.PhaseKey, log.PhaseTraining))
}

func TestFitFailureLogsErrorCode(t *testing.T) {
	testLogger, _ := log.NewTestLogger(log.LevelDebug)
	r := NewSimpleRegression(WithLogger(testLogger))
	require.Error(t, r.FitSlices("x", []float64{4, 4}, "y", []float64{1, 2}))

	assert.True(t, testLogger.ContainsMessage("fit failed"))
	assert.True(t, testLogger.ContainsField(log.ErrorCodeKey, log.ErrorSingularMatrix))
}

func TestPredictTextLogsInference(t *testing.T) {
	testLogger, _ := log.NewTestLogger(log.LevelDebug)
	r := NewSimpleRegression(WithLogger(testLogger))
	require.NoError(t, r.FitSlices("x", []float64{1, 2, 3}, "y", []float64{2, 4, 6}))

	_, err := r.PredictText("4")
	require.NoError(t, err)
	assert.True(t, testLogger.ContainsField(log.OperationKey, log.OperationPredict))
	assert.True(t, testLogger.ContainsField(log.PhaseKey, log.PhaseInference))

	testLogger.Clear()
	_, err = r.PredictText("four")
	require.Error(t, err)
	assert.True(t, testLogger.ContainsMessage("prediction rejected"))
	assert.True(t, testLogger.ContainsField(log.ErrorTypeKey, "PredictionInputError"))
}
