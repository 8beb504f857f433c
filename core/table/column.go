// Package table provides the in-memory tabular data shared by the
// preprocessing and regression packages.
//
// A Table is an ordered set of equally long, uniquely named columns. Each
// column is either Numeric or Text, decided once when the column is built.
// Missing cells are marked explicitly (Valid == false) and are never encoded
// as NaN or any other sentinel value.
package table

import (
	"fmt"

	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
)

// Kind is the logical type of a column.
type Kind int

const (
	// Numeric columns hold float64 values.
	Numeric Kind = iota
	// Text columns hold string values.
	Text
)

// String returns "numeric" or "text".
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Float is a numeric cell. Valid is false for a missing entry.
type Float struct {
	Value float64
	Valid bool
}

// String is a text cell. Valid is false for a missing entry.
type String struct {
	Value string
	Valid bool
}

// F returns a present numeric cell.
func F(v float64) Float { return Float{Value: v, Valid: true} }

// S returns a present text cell.
func S(v string) String { return String{Value: v, Valid: true} }

// NA is the missing numeric cell.
var NA = Float{}

// NAText is the missing text cell.
var NAText = String{}

// Column is a named, typed sequence of cells. Columns are not modified after
// construction; operations that change data return new columns.
type Column struct {
	name  string
	kind  Kind
	nums  []Float
	texts []String
}

// NewNumericColumn builds a numeric column from cells. The cells are copied.
// A present NaN or Inf cell is rejected: missing entries must use NA.
func NewNumericColumn(name string, cells []Float) (*Column, error) {
	if name == "" {
		return nil, errors.NewValidationError("name", errors.ReasonInvalidValue, name)
	}
	for i, c := range cells {
		if c.Valid && !errors.IsFinite(c.Value) {
			return nil, errors.NewValidationError(name, errors.ReasonInvalidValue, fmt.Sprintf("row %d: %v", i, c.Value))
		}
	}
	nums := make([]Float, len(cells))
	copy(nums, cells)
	return &Column{name: name, kind: Numeric, nums: nums}, nil
}

// NewTextColumn builds a text column from cells. The cells are copied.
func NewTextColumn(name string, cells []String) (*Column, error) {
	if name == "" {
		return nil, errors.NewValidationError("name", errors.ReasonInvalidValue, name)
	}
	texts := make([]String, len(cells))
	copy(texts, cells)
	return &Column{name: name, kind: Text, texts: texts}, nil
}

// FromFloats builds a numeric column with every cell present.
func FromFloats(name string, values []float64) (*Column, error) {
	cells := make([]Float, len(values))
	for i, v := range values {
		cells[i] = F(v)
	}
	return NewNumericColumn(name, cells)
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the column kind.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of cells.
func (c *Column) Len() int {
	if c.kind == Numeric {
		return len(c.nums)
	}
	return len(c.texts)
}

// IsMissing reports whether row i is missing.
func (c *Column) IsMissing(i int) bool {
	if c.kind == Numeric {
		return !c.nums[i].Valid
	}
	return !c.texts[i].Valid
}

// FloatAt returns the numeric cell at row i. It panics on a Text column.
func (c *Column) FloatAt(i int) Float {
	if c.kind != Numeric {
		panic(fmt.Sprintf("table: FloatAt on %s column %q", c.kind, c.name))
	}
	return c.nums[i]
}

// TextAt returns the text cell at row i. It panics on a Numeric column.
func (c *Column) TextAt(i int) String {
	if c.kind != Text {
		panic(fmt.Sprintf("table: TextAt on %s column %q", c.kind, c.name))
	}
	return c.texts[i]
}

// Format renders row i for display; missing cells render as "NA".
func (c *Column) Format(i int) string {
	if c.IsMissing(i) {
		return "NA"
	}
	if c.kind == Numeric {
		return fmt.Sprintf("%g", c.nums[i].Value)
	}
	return c.texts[i].Value
}

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Observed returns the present values of a numeric column, in row order.
func (c *Column) Observed() ([]float64, error) {
	if c.kind != Numeric {
		return nil, errors.NewTypeError("Column.Observed", c.name, Numeric.String(), c.kind.String())
	}
	out := make([]float64, 0, len(c.nums))
	for _, cell := range c.nums {
		if cell.Valid {
			out = append(out, cell.Value)
		}
	}
	return out, nil
}

// Floats returns the values of a fully observed numeric column.
// A Text column or any missing cell yields a TypeError.
func (c *Column) Floats() ([]float64, error) {
	if c.kind != Numeric {
		return nil, errors.NewTypeError("Column.Floats", c.name, Numeric.String(), c.kind.String())
	}
	out := make([]float64, len(c.nums))
	for i, cell := range c.nums {
		if !cell.Valid {
			return nil, errors.NewTypeError("Column.Floats", c.name, "fully observed numeric values", fmt.Sprintf("missing value at row %d", i))
		}
		out[i] = cell.Value
	}
	return out, nil
}

// Cells returns a copy of the numeric cells, or nil for a Text column.
func (c *Column) Cells() []Float {
	if c.kind != Numeric {
		return nil
	}
	out := make([]Float, len(c.nums))
	copy(out, c.nums)
	return out
}

// TextCells returns a copy of the text cells, or nil for a Numeric column.
func (c *Column) TextCells() []String {
	if c.kind != Text {
		return nil
	}
	out := make([]String, len(c.texts))
	copy(out, c.texts)
	return out
}

// Clone returns a deep copy of c.
func (c *Column) Clone() *Column {
	return c.take(nil)
}

// take returns a new column holding the rows in idx, or every row when idx is nil.
func (c *Column) take(idx []int) *Column {
	out := &Column{name: c.name, kind: c.kind}
	switch c.kind {
	case Numeric:
		if idx == nil {
			out.nums = c.Cells()
			break
		}
		out.nums = make([]Float, len(idx))
		for j, i := range idx {
			out.nums[j] = c.nums[i]
		}
	case Text:
		if idx == nil {
			out.texts = c.TextCells()
			break
		}
		out.texts = make([]String, len(idx))
		for j, i := range idx {
			out.texts[j] = c.texts[i]
		}
	}
	return out
}

// Take returns a new column holding only the given rows, in the given order.
func (c *Column) Take(rows []int) *Column {
	if rows == nil {
		rows = []int{}
	}
	return c.take(rows)
}
