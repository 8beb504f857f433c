package dataio

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/YuminosukeSato/dataexplorer/core/table"
	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
	"github.com/YuminosukeSato/dataexplorer/pkg/log"
)

// SupportedExtensions lists the file extensions Open understands.
var SupportedExtensions = []string{".csv", ".xlsx", ".db", ".sqlite", ".sqlite3"}

// Option configures Open and SaveSQLite.
type Option func(*options)

type options struct {
	logger log.Logger
}

// WithLogger sets the logger used for load events.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{logger: log.GetLoggerWithName("dataio")}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open loads the file at path into a table, choosing the reader by extension.
//
// A missing file yields an error wrapping fs.ErrNotExist, an unknown
// extension a FormatError, and a source without rows ErrEmptySource.
func Open(ctx context.Context, path string, opts ...Option) (*table.Table, error) {
	o := newOptions(opts)
	if strings.TrimSpace(path) == "" {
		return nil, errors.WithStack(errors.ErrNoPathSelected)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	var (
		t   *table.Table
		err error
	)
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		t, err = readCSVFile(path)
	case ".xlsx":
		t, err = readXLSX(path)
	case ".db", ".sqlite", ".sqlite3":
		t, err = readSQLite(ctx, path)
	default:
		return nil, errors.NewFormatError(path, ext, SupportedExtensions)
	}
	if err != nil {
		fields := []any{
			log.OperationKey, log.OperationLoad,
			log.PhaseKey, log.PhaseLoading,
			log.SourceKey, path,
		}
		o.logger.Warn("load failed", append(fields, log.ErrorFields(err)...)...)
		return nil, err
	}

	o.logger.Debug("table loaded",
		log.OperationKey, log.OperationLoad,
		log.PhaseKey, log.PhaseLoading,
		log.SourceKey, path,
		log.SamplesKey, t.NumRows(),
		log.ColumnsKey, t.NumColumns(),
	)
	return t, nil
}

func readCSVFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV reads comma-separated data with a header row.
func ReadCSV(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.WithStack(errors.ErrEmptySource)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV header")
	}

	var rows [][]rawCell
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read CSV record")
		}
		row := make([]rawCell, len(record))
		for j, s := range record {
			row[j] = textCell(s)
		}
		rows = append(rows, row)
	}
	return buildTable(header, rows)
}

// readXLSX reads the first sheet of a workbook; its first row is the header.
func readXLSX(path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open workbook %s", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.WithStack(errors.ErrEmptySource)
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", sheets[0])
	}
	if len(records) == 0 {
		return nil, errors.WithStack(errors.ErrEmptySource)
	}

	rows := make([][]rawCell, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]rawCell, len(record))
		for j, s := range record {
			row[j] = textCell(s)
		}
		rows = append(rows, row)
	}
	return buildTable(records[0], rows)
}
