package table

import "github.com/YuminosukeSato/dataexplorer/pkg/errors"

// Selection is a non-empty, duplicate-free list of column names that all
// exist in the table it was built against.
type Selection struct {
	names []string
}

// NewSelection validates names against t. Duplicates are dropped keeping the
// first occurrence. An empty list yields EmptySelectionError and an unknown
// name yields ValidationError.
func NewSelection(t *Table, names ...string) (Selection, error) {
	if len(names) == 0 {
		return Selection{}, errors.NewEmptySelectionError("NewSelection")
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if !t.Has(name) {
			return Selection{}, errors.NewValidationError(name, errors.ReasonUnknownColumn, name)
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return Selection{names: out}, nil
}

// Names returns the selected names in selection order.
func (s Selection) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of selected columns.
func (s Selection) Len() int { return len(s.names) }

// IsEmpty reports whether s is the zero Selection.
func (s Selection) IsEmpty() bool { return len(s.names) == 0 }
