package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
)

func mustNumeric(t *testing.T, name string, cells ...Float) *Column {
	t.Helper()
	c, err := NewNumericColumn(name, cells)
	require.NoError(t, err)
	return c
}

func mustText(t *testing.T, name string, cells ...String) *Column {
	t.Helper()
	c, err := NewTextColumn(name, cells)
	require.NoError(t, err)
	return c
}

func sampleTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable(
		mustNumeric(t, "x", F(1), NA, F(3)),
		mustText(t, "city", S("Tokyo"), S("Osaka"), NAText),
		mustNumeric(t, "y", F(2), F(4), F(6)),
	)
	require.NoError(t, err)
	return tbl
}

func TestNewNumericColumnRejectsNaN(t *testing.T) {
	_, err := NewNumericColumn("x", []Float{F(1), {Value: math.NaN(), Valid: true}})
	require.Error(t, err)
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))

	// A NaN payload under a missing marker is just a missing cell.
	c, err := NewNumericColumn("x", []Float{F(1), {Value: math.NaN()}})
	require.NoError(t, err)
	assert.Equal(t, 1, c.MissingCount())
}

func TestNewTableDimensionMismatch(t *testing.T) {
	_, err := NewTable(
		mustNumeric(t, "a", F(1), F(2)),
		mustNumeric(t, "b", F(1)),
	)
	require.Error(t, err)
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))
}

func TestNewTableDuplicateName(t *testing.T) {
	_, err := NewTable(mustNumeric(t, "a", F(1)), mustNumeric(t, "a", F(2)))
	require.Error(t, err)
	assert.True(t, errors.HasReason(err, errors.ReasonDuplicateColumn))
}

func TestTableAccessors(t *testing.T) {
	tbl := sampleTable(t)

	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, 3, tbl.NumColumns())
	assert.Equal(t, []string{"x", "city", "y"}, tbl.Names())
	assert.Equal(t, []string{"x", "y"}, tbl.NumericNames())
	assert.Equal(t, map[string]int{"x": 1, "city": 1, "y": 0}, tbl.MissingCounts())

	_, err := tbl.Column("missing")
	assert.True(t, errors.HasReason(err, errors.ReasonUnknownColumn))
}

func TestColumnFloats(t *testing.T) {
	tbl := sampleTable(t)

	y, _ := tbl.Column("y")
	vals, err := y.Floats()
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4, 6}, vals)

	x, _ := tbl.Column("x")
	_, err = x.Floats()
	var te *errors.TypeError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "x", te.Column)

	obs, err := x.Observed()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, obs)

	city, _ := tbl.Column("city")
	_, err = city.Floats()
	assert.True(t, errors.As(err, &te))
	assert.Equal(t, "text", te.Got)
}

func TestColumnFormat(t *testing.T) {
	tbl := sampleTable(t)
	x, _ := tbl.Column("x")
	city, _ := tbl.Column("city")

	assert.Equal(t, "1", x.Format(0))
	assert.Equal(t, "NA", x.Format(1))
	assert.Equal(t, "Osaka", city.Format(1))
	assert.Equal(t, "NA", city.Format(2))
}

func TestSelectIsDeepCopy(t *testing.T) {
	tbl := sampleTable(t)
	before := tbl.Fingerprint()

	sel, err := tbl.Select("y", "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x"}, sel.Names())

	y, _ := sel.Column("y")
	replaced, err := FromFloats("y", []float64{0, 0, 0})
	require.NoError(t, err)
	_, err = sel.Replace(replaced)
	require.NoError(t, err)

	assert.NotSame(t, y, mustColumn(t, tbl, "y"))
	assert.Equal(t, before, tbl.Fingerprint())
}

func mustColumn(t *testing.T, tbl *Table, name string) *Column {
	t.Helper()
	c, err := tbl.Column(name)
	require.NoError(t, err)
	return c
}

func TestFingerprint(t *testing.T) {
	a := sampleTable(t)
	b := a.Clone()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	changed, err := a.Replace(mustNumeric(t, "x", F(1), F(2), F(3)))
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), changed.Fingerprint())

	// A missing cell differs from a present zero.
	z1, _ := NewTable(mustNumeric(t, "x", NA))
	z2, _ := NewTable(mustNumeric(t, "x", F(0)))
	assert.NotEqual(t, z1.Fingerprint(), z2.Fingerprint())
}

func TestTakeRows(t *testing.T) {
	tbl := sampleTable(t)
	out := tbl.TakeRows([]int{0, 2})

	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, []float64{2, 6}, mustFloats(t, mustColumn(t, out, "y")))
	assert.Equal(t, 3, tbl.NumRows())

	empty := tbl.TakeRows(nil)
	assert.Equal(t, 0, empty.NumRows())
	assert.Equal(t, 3, empty.NumColumns())
}

func mustFloats(t *testing.T, c *Column) []float64 {
	t.Helper()
	v, err := c.Floats()
	require.NoError(t, err)
	return v
}

func TestNewSelection(t *testing.T) {
	tbl := sampleTable(t)

	sel, err := NewSelection(tbl, "y", "x", "y")
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x"}, sel.Names())
	assert.Equal(t, 2, sel.Len())

	_, err = NewSelection(tbl)
	var ese *errors.EmptySelectionError
	assert.True(t, errors.As(err, &ese))

	_, err = NewSelection(tbl, "x", "nope")
	assert.True(t, errors.HasReason(err, errors.ReasonUnknownColumn))

	assert.True(t, Selection{}.IsEmpty())
}
