package table

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
)

// Table is an ordered collection of uniquely named columns of equal length.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable builds a table from columns. The columns are not copied; callers
// must not keep using them for anything but reads.
//
// Columns of unequal length yield a DimensionError, duplicate names a
// ValidationError.
func NewTable(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if c == nil {
			return nil, errors.NewValidationError("columns", errors.ReasonInvalidValue, i)
		}
		if _, dup := t.index[c.Name()]; dup {
			return nil, errors.NewValidationError(c.Name(), errors.ReasonDuplicateColumn, c.Name())
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, errors.NewDimensionError("NewTable", t.rows, c.Len(), 0)
		}
		t.index[c.Name()] = i
		t.columns = append(t.columns, c)
	}
	return t, nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.rows }

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.columns) }

// Names returns the column names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name()
	}
	return names
}

// NumericNames returns the names of the Numeric columns in table order.
func (t *Table) NumericNames() []string {
	var names []string
	for _, c := range t.columns {
		if c.Kind() == Numeric {
			names = append(names, c.Name())
		}
	}
	return names
}

// Has reports whether the table has a column called name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the column called name.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.NewValidationError(name, errors.ReasonUnknownColumn, name)
	}
	return t.columns[i], nil
}

// Columns returns the columns in table order. The slice is a copy.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Select returns a new table holding deep copies of the named columns, in
// the order given.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c.Clone())
	}
	return NewTable(cols...)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.Clone()
	}
	out, _ := NewTable(cols...)
	return out
}

// Replace returns a new table in which the column with the same name as c
// is replaced by c. The other columns are shared with t.
func (t *Table) Replace(c *Column) (*Table, error) {
	i, ok := t.index[c.Name()]
	if !ok {
		return nil, errors.NewValidationError(c.Name(), errors.ReasonUnknownColumn, c.Name())
	}
	cols := t.Columns()
	cols[i] = c
	return NewTable(cols...)
}

// TakeRows returns a new table holding only the given rows.
func (t *Table) TakeRows(rows []int) *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.Take(rows)
	}
	out, _ := NewTable(cols...)
	return out
}

// MissingCounts returns the number of missing cells per column, keyed by name.
func (t *Table) MissingCounts() map[string]int {
	out := make(map[string]int, len(t.columns))
	for _, c := range t.columns {
		out[c.Name()] = c.MissingCount()
	}
	return out
}

// Fingerprint returns an xxhash64 digest over the column names, kinds and
// cells. Two tables with the same content have the same fingerprint.
func (t *Table) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [8]byte
	writeUint := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}
	for _, c := range t.columns {
		_, _ = d.WriteString(c.Name())
		writeUint(uint64(c.Kind()))
		writeUint(uint64(c.Len()))
		for i := 0; i < c.Len(); i++ {
			if c.IsMissing(i) {
				_, _ = d.Write([]byte{0})
				continue
			}
			_, _ = d.Write([]byte{1})
			if c.Kind() == Numeric {
				writeUint(math.Float64bits(c.nums[i].Value))
				continue
			}
			s := c.texts[i].Value
			writeUint(uint64(len(s)))
			_, _ = d.WriteString(s)
		}
	}
	return d.Sum64()
}
