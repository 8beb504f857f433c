package preprocessing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/dataexplorer/core/table"
	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
	"github.com/YuminosukeSato/dataexplorer/pkg/log"
)

func newGolden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func numeric(t *testing.T, name string, cells ...table.Float) *table.Column {
	t.Helper()
	c, err := table.NewNumericColumn(name, cells)
	require.NoError(t, err)
	return c
}

// sampleTable は4列のうち3列に欠損があるテーブル
func sampleTable(t *testing.T) *table.Table {
	t.Helper()
	F, NA := table.F, table.NA
	tbl, err := table.NewTable(
		numeric(t, "Columna1", F(1), F(2), NA, F(4)),
		numeric(t, "Columna2", NA, F(1), F(2), F(3)),
		numeric(t, "Columna3", F(1), NA, NA, F(4)),
		numeric(t, "Columna4", F(5), F(6), F(7), NA),
	)
	require.NoError(t, err)
	return tbl
}

func newProcessor(t *testing.T, tbl *table.Table, names ...string) *MissingValueProcessor {
	t.Helper()
	sel, err := table.NewSelection(tbl, names...)
	require.NoError(t, err)
	p, err := NewMissingValueProcessor(tbl, sel, WithLogger(log.NewNopLogger()))
	require.NoError(t, err)
	return p
}

// render はテーブルをCSV風のテキストにする
func render(tbl *table.Table) string {
	var b strings.Builder
	b.WriteString(strings.Join(tbl.Names(), ","))
	b.WriteByte('\n')
	cols := tbl.Columns()
	for i := 0; i < tbl.NumRows(); i++ {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = c.Format(i)
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

func TestCheckForMissing(t *testing.T) {
	tbl := sampleTable(t)
	p := newProcessor(t, tbl, "Columna1", "Columna2", "Columna3")

	hasMissing, report := p.CheckForMissing()
	assert.True(t, hasMissing)
	newGolden(t).Assert(t, "check_for_missing", []byte(report))

	assert.NotContains(t, report, "Columna4")
	assert.Equal(t, []ColumnMissing{
		{Column: "Columna1", Count: 1},
		{Column: "Columna2", Count: 1},
		{Column: "Columna3", Count: 2},
	}, p.MissingCounts())

	again, report2 := p.CheckForMissing()
	assert.Equal(t, hasMissing, again)
	assert.Equal(t, report, report2)
}

func TestCheckForMissingNone(t *testing.T) {
	tbl, err := table.NewTable(numeric(t, "x", table.F(1), table.F(2)))
	require.NoError(t, err)

	hasMissing, report := newProcessor(t, tbl, "x").CheckForMissing()
	assert.False(t, hasMissing)
	assert.Equal(t, "No missing values were found.", report)
}

func mustSelection(t *testing.T, tbl *table.Table, names ...string) table.Selection {
	t.Helper()
	sel, err := table.NewSelection(tbl, names...)
	require.NoError(t, err)
	return sel
}

func TestPreprocessGolden(t *testing.T) {
	tests := []struct {
		name   string
		method Method
	}{
		{"preprocess_delete_rows", DeleteRows},
		{"preprocess_fill_mean", FillMean},
		{"preprocess_fill_median", FillMedian},
		{"preprocess_fill_constant", FillConstant(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := sampleTable(t)
			before := tbl.Fingerprint()
			p := newProcessor(t, tbl, "Columna1", "Columna2", "Columna3")

			out, err := p.Preprocess(tt.method)
			require.NoError(t, err)
			newGolden(t).Assert(t, tt.name, []byte(render(out)))

			assert.Equal(t, before, tbl.Fingerprint(), "source table must not change")
		})
	}
}

func TestPreprocessInvariants(t *testing.T) {
	tbl := sampleTable(t)
	p := newProcessor(t, tbl, "Columna3", "Columna1")

	for _, m := range []Method{FillMean, FillMedian, FillConstant(-1)} {
		out, err := p.Preprocess(m)
		require.NoError(t, err)
		assert.Equal(t, tbl.NumRows(), out.NumRows(), m.String())
		assert.Equal(t, []string{"Columna3", "Columna1"}, out.Names())
		for _, c := range out.Columns() {
			assert.Zero(t, c.MissingCount())
		}
	}

	out, err := p.Preprocess(DeleteRows)
	require.NoError(t, err)
	assert.LessOrEqual(t, out.NumRows(), tbl.NumRows())
	assert.Equal(t, 2, out.NumRows())
	for _, c := range out.Columns() {
		assert.Zero(t, c.MissingCount())
	}
}

func TestPreprocessDoesNotAliasSnapshot(t *testing.T) {
	tbl := sampleTable(t)
	p := newProcessor(t, tbl, "Columna1")

	first, err := p.Preprocess(FillConstant(100))
	require.NoError(t, err)
	second, err := p.Preprocess(FillMean)
	require.NoError(t, err)

	c1, _ := first.Column("Columna1")
	c2, _ := second.Column("Columna1")
	assert.Equal(t, 100.0, c1.FloatAt(2).Value)
	assert.InDelta(t, 7.0/3.0, c2.FloatAt(2).Value, 1e-12)
}

func TestPreprocessStrategyConstantRequired(t *testing.T) {
	tbl := sampleTable(t)
	p := newProcessor(t, tbl, "Columna1", "Columna2")
	before := tbl.Fingerprint()

	out, err := p.PreprocessStrategy(StrategyFillConstant, nil)
	assert.Nil(t, out)
	var cve *errors.ConstantValueError
	require.True(t, errors.As(err, &cve))
	assert.Equal(t, before, tbl.Fingerprint())

	v := 9.5
	out, err = p.PreprocessStrategy(StrategyFillConstant, &v)
	require.NoError(t, err)
	c, _ := out.Column("Columna2")
	assert.Equal(t, 9.5, c.FloatAt(0).Value)

	out, err = p.PreprocessStrategy(StrategyFillMedian, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, out.NumRows())
}

func TestPreprocessTextColumn(t *testing.T) {
	city, err := table.NewTextColumn("city", []table.String{table.S("Madrid"), table.NAText, table.S("Lima")})
	require.NoError(t, err)
	price := numeric(t, "price", table.F(1), table.F(2), table.NA)
	tbl, err := table.NewTable(city, price)
	require.NoError(t, err)

	p := newProcessor(t, tbl, "price", "city")

	for _, m := range []Method{FillMean, FillMedian, FillConstant(0)} {
		_, err := p.Preprocess(m)
		var te *errors.TypeError
		require.True(t, errors.As(err, &te), m.String())
		assert.Equal(t, "city", te.Column)
	}

	out, err := p.Preprocess(DeleteRows)
	require.NoError(t, err)
	assert.Equal(t, 1, out.NumRows())
}

func TestPreprocessAllMissingColumn(t *testing.T) {
	tbl, err := table.NewTable(
		numeric(t, "empty", table.NA, table.NA),
		numeric(t, "full", table.F(1), table.F(2)),
	)
	require.NoError(t, err)
	p := newProcessor(t, tbl, "empty", "full")

	for _, m := range []Method{FillMean, FillMedian} {
		out, err := p.Preprocess(m)
		assert.Nil(t, out)
		var ve *errors.ValueError
		assert.True(t, errors.As(err, &ve), m.String())
	}

	out, err := p.Preprocess(FillConstant(3))
	require.NoError(t, err)
	c, _ := out.Column("empty")
	assert.Equal(t, []float64{3, 3}, mustFloats(t, c))

	out, err = p.Preprocess(DeleteRows)
	require.NoError(t, err)
	assert.Equal(t, 0, out.NumRows())
}

func mustFloats(t *testing.T, c *table.Column) []float64 {
	t.Helper()
	v, err := c.Floats()
	require.NoError(t, err)
	return v
}

func TestPreprocessInvalidMethod(t *testing.T) {
	p := newProcessor(t, sampleTable(t), "Columna1")

	_, err := p.Preprocess(Method{})
	assert.True(t, errors.HasReason(err, errors.ReasonInvalidValue))
}

func TestNewMissingValueProcessorEmptySelection(t *testing.T) {
	_, err := NewMissingValueProcessor(sampleTable(t), table.Selection{})
	var ese *errors.EmptySelectionError
	assert.True(t, errors.As(err, &ese))
}

func TestParallelFillMatchesSequential(t *testing.T) {
	const n = 2500
	cells := make([]table.Float, n)
	for i := range cells {
		if i%7 == 0 {
			cells[i] = table.NA
			continue
		}
		cells[i] = table.F(float64(i % 13))
	}
	tbl, err := table.NewTable(numeric(t, "v", cells...))
	require.NoError(t, err)
	sel := mustSelection(t, tbl, "v")

	seq, err := NewMissingValueProcessor(tbl, sel, WithParallelThreshold(n+1))
	require.NoError(t, err)
	par, err := NewMissingValueProcessor(tbl, sel, WithParallelThreshold(100))
	require.NoError(t, err)

	for _, m := range []Method{FillMean, FillMedian, FillConstant(-2)} {
		a, err := seq.Preprocess(m)
		require.NoError(t, err)
		b, err := par.Preprocess(m)
		require.NoError(t, err)
		assert.Equal(t, a.Fingerprint(), b.Fingerprint(), m.String())
	}
}

func TestPreprocessLogsDebugSummary(t *testing.T) {
	testLogger, _ := log.NewTestLogger(log.LevelDebug)
	tbl := sampleTable(t)
	p, err := NewMissingValueProcessor(tbl, mustSelection(t, tbl, "Columna1", "Columna3"), WithLogger(testLogger))
	require.NoError(t, err)

	_, err = p.Preprocess(DeleteRows)
	require.NoError(t, err)

	assert.True(t, testLogger.ContainsMessage("preprocess completed"))
	assert.True(t, testLogger.ContainsField(log.StrategyKey, "delete"))
	assert.True(t, testLogger.ContainsField(log.SamplesKey, 4.0))
	assert.True(t, testLogger.ContainsField(log.SamplesOutKey, 2.0))
	assert.True(t, testLogger.ContainsField(log.FingerprintKey, fmt.Sprintf("%016x", p.snapshot.Fingerprint())))
	assert.True(t, testLogger.ContainsField(log.PhaseKey, log.PhasePreprocessing))
}

func TestPreprocessFailureLogsErrorType(t *testing.T) {
	testLogger, _ := log.NewTestLogger(log.LevelDebug)
	city, err := table.NewTextColumn("city", []table.String{table.S("Lima"), table.NAText})
	require.NoError(t, err)
	tbl, err := table.NewTable(city)
	require.NoError(t, err)
	p, err := NewMissingValueProcessor(tbl, mustSelection(t, tbl, "city"), WithLogger(testLogger))
	require.NoError(t, err)

	_, err = p.Preprocess(FillMean)
	require.Error(t, err)
	assert.True(t, testLogger.ContainsMessage("preprocess failed"))
	assert.True(t, testLogger.ContainsField(log.ErrorTypeKey, "TypeError"))
	assert.True(t, testLogger.ContainsField(log.ErrorCodeKey, log.ErrorInvalidInput))
}

func TestMethodsOption(t *testing.T) {
	tbl := sampleTable(t)
	sel := mustSelection(t, tbl, "Columna1")

	p, err := NewMissingValueProcessor(tbl, sel)
	require.NoError(t, err)
	assert.Equal(t, AllStrategies, p.Methods())

	p, err = NewMissingValueProcessor(tbl, sel, WithMethods(StrategyDeleteRows, StrategyFillMean))
	require.NoError(t, err)
	assert.Equal(t, []Strategy{StrategyDeleteRows, StrategyFillMean}, p.Methods())
	assert.Equal(t, []string{"Columna1"}, p.Columns())
}
