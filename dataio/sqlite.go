package dataio

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/YuminosukeSato/dataexplorer/core/table"
	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
	"github.com/YuminosukeSato/dataexplorer/pkg/log"
)

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	return db, nil
}

// quoteIdent quotes a SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// readSQLite loads the first user table of the database, in creation order.
func readSQLite(ctx context.Context, path string) (*table.Table, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var name string
	err = db.QueryRowContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY rowid LIMIT 1`).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithStack(errors.ErrEmptySource)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list tables in %s", path)
	}
	return readSQLiteTable(ctx, db, name)
}

func readSQLiteTable(ctx context.Context, db *sql.DB, name string) (*table.Table, error) {
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(name))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query table %s", name)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var data [][]rawCell
	values := make([]any, len(header))
	ptrs := make([]any, len(header))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrapf(err, "failed to scan table %s", name)
		}
		row := make([]rawCell, len(values))
		for j, v := range values {
			row[j] = sqlCell(v)
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return buildTable(header, data)
}

// sqlCell converts a scanned value. Only SQL NULL is missing.
func sqlCell(v any) rawCell {
	switch x := v.(type) {
	case nil:
		return rawCell{null: true}
	case int64:
		return rawCell{text: strconv.FormatInt(x, 10)}
	case float64:
		return rawCell{text: strconv.FormatFloat(x, 'g', -1, 64)}
	case bool:
		if x {
			return rawCell{text: "1"}
		}
		return rawCell{text: "0"}
	case []byte:
		return rawCell{text: string(x)}
	case string:
		return rawCell{text: x}
	case time.Time:
		return rawCell{text: x.Format(time.RFC3339)}
	default:
		return rawCell{text: fmt.Sprint(x)}
	}
}

// SaveSQLite writes t to the database at path as tableName, replacing any
// existing table of that name. Numeric columns become REAL, Text columns TEXT,
// and missing cells NULL.
func SaveSQLite(ctx context.Context, path, tableName string, t *table.Table, opts ...Option) error {
	o := newOptions(opts)
	if strings.TrimSpace(path) == "" {
		return errors.WithStack(errors.ErrNoPathSelected)
	}
	if strings.TrimSpace(tableName) == "" {
		return errors.NewValidationError("tableName", errors.ReasonInvalidValue, tableName)
	}

	db, err := openDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	cols := t.Columns()
	defs := make([]string, len(cols))
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for j, c := range cols {
		kind := "REAL"
		if c.Kind() == table.Text {
			kind = "TEXT"
		}
		names[j] = quoteIdent(c.Name())
		defs[j] = names[j] + " " + kind
		marks[j] = "?"
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(tableName)); err != nil {
		return errors.Wrapf(err, "failed to drop table %s", tableName)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(tableName), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return errors.Wrapf(err, "failed to create table %s", tableName)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(tableName), strings.Join(names, ", "), strings.Join(marks, ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return errors.Wrap(err, "failed to prepare insert")
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range cols {
			switch {
			case c.IsMissing(i):
				args[j] = nil
			case c.Kind() == table.Numeric:
				args[j] = c.FloatAt(i).Value
			default:
				args[j] = c.TextAt(i).Value
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.Wrapf(err, "failed to insert row %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit")
	}
	o.logger.Debug("table saved",
		log.OperationKey, log.OperationSave,
		log.PhaseKey, log.PhasePersistence,
		log.SourceKey, path,
		log.SamplesKey, t.NumRows(),
		log.ColumnsKey, t.NumColumns(),
	)
	return nil
}
