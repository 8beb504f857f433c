// Package dataio loads tabular sources (CSV, Excel, SQLite) into tables
// with typed columns and an explicit missing-value marker.
package dataio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/dataexplorer/core/table"
	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
)

// rawCell is a source value before type inference.
type rawCell struct {
	text string
	null bool
}

// missingMarkers are the textual cells read as missing, compared case-insensitively.
var missingMarkers = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"#n/a": {},
	"<na>": {},
	"nan":  {},
	"null": {},
	"none": {},
}

// textCell converts a textual cell, treating missing markers as null.
func textCell(s string) rawCell {
	trimmed := strings.TrimSpace(s)
	if _, ok := missingMarkers[strings.ToLower(trimmed)]; ok {
		return rawCell{null: true}
	}
	return rawCell{text: trimmed}
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !errors.IsFinite(v) {
		return 0, false
	}
	return v, true
}

// buildTable infers one column per header entry. A column is Numeric when
// every non-null cell parses as a finite number; otherwise it is Text. Rows
// shorter than the header are padded with missing cells.
func buildTable(header []string, rows [][]rawCell) (*table.Table, error) {
	if len(header) == 0 || len(rows) == 0 {
		return nil, errors.WithStack(errors.ErrEmptySource)
	}

	cols := make([]*table.Column, len(header))
	for j, name := range columnNames(header) {
		cells := make([]rawCell, len(rows))
		for i, row := range rows {
			if j < len(row) {
				cells[i] = row[j]
			} else {
				cells[i] = rawCell{null: true}
			}
		}
		col, err := inferColumn(name, cells)
		if err != nil {
			return nil, err
		}
		cols[j] = col
	}
	return table.NewTable(cols...)
}

// columnNames trims the header entries, names blank ones "Unnamed: <index>"
// and renames repeats to name.1, name.2 and so on, skipping suffixes that
// are already taken.
func columnNames(header []string) []string {
	names := make([]string, len(header))
	for j, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", j)
		}
		names[j] = name
	}

	taken := make(map[string]bool, len(names))
	for _, name := range names {
		taken[name] = true
	}
	seen := make(map[string]int, len(names))
	for j, name := range names {
		k := seen[name]
		if k == 0 {
			seen[name] = 1
			continue
		}
		candidate := fmt.Sprintf("%s.%d", name, k)
		for taken[candidate] {
			k++
			candidate = fmt.Sprintf("%s.%d", name, k)
		}
		taken[candidate] = true
		seen[name] = k + 1
		names[j] = candidate
	}
	return names
}

func inferColumn(name string, cells []rawCell) (*table.Column, error) {
	nums := make([]table.Float, len(cells))
	numeric, nonNumeric := 0, 0
	for i, c := range cells {
		if c.null {
			continue
		}
		if v, ok := parseNumber(c.text); ok {
			nums[i] = table.F(v)
			numeric++
			continue
		}
		nonNumeric++
	}
	if nonNumeric == 0 {
		return table.NewNumericColumn(name, nums)
	}

	if numeric > 0 {
		errors.Warn(errors.NewDataConversionWarning(name, "numeric", "text",
			fmt.Sprintf("%d of %d values are not numeric", nonNumeric, numeric+nonNumeric)))
	}
	texts := make([]table.String, len(cells))
	for i, c := range cells {
		if !c.null {
			texts[i] = table.S(c.text)
		}
	}
	return table.NewTextColumn(name, texts)
}
