package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/the-sdet/sdetkit/internal/logging"
)

// ErrNoRows is returned by the single-row readers when the query returns nothing.
var ErrNoRows = errors.New("no records fetched")

// query runs q and renders every row.
func (r *Reader) query(ctx context.Context, q string, args ...any) ([]string, [][]string, error) {
	logging.Info(ctx, "Executing query", "query", q)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		qe := newQueryError(q, err)
		logging.Error(ctx, "Error while executing query", err, "query", q, "code", qe.Hint.Code, "hint", qe.Hint.Message)
		return nil, nil, fmt.Errorf("query: %w", qe)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, nil, fmt.Errorf("column types: %w", err)
	}
	columns := make([]string, len(types))
	for i, t := range types {
		columns[i] = t.Name()
	}

	var data [][]string
	raw := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("scan row %d: %w", len(data), err)
		}
		row := make([]string, len(columns))
		for i, v := range raw {
			row[i] = stringify(v, types[i].DatabaseTypeName())
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate rows: %w", err)
	}

	logging.Info(ctx, "Fetched data", "rows", len(data))
	logging.Debug(ctx, "Fetched rows", "columns", columns, "data", data)
	return columns, data, nil
}

// ReadWithColumnNames returns every row with its column names.
func (r *Reader) ReadWithColumnNames(ctx context.Context, q string, args ...any) ([]Record, error) {
	columns, data, err := r.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(data))
	for _, row := range data {
		out = append(out, Record{Columns: columns, Values: row})
	}
	return out, nil
}

// Read returns every row as a list of values.
func (r *Reader) Read(ctx context.Context, q string, args ...any) ([][]string, error) {
	_, data, err := r.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = [][]string{}
	}
	return data, nil
}

// ReadSingleRowWithColumnNames returns the first row with its column names.
func (r *Reader) ReadSingleRowWithColumnNames(ctx context.Context, q string, args ...any) (Record, error) {
	columns, data, err := r.query(ctx, q, args...)
	if err != nil {
		return Record{}, err
	}
	if len(data) == 0 {
		return Record{}, ErrNoRows
	}
	return Record{Columns: columns, Values: data[0]}, nil
}

// ReadSingleRow returns the first row. An empty result gives an empty row.
func (r *Reader) ReadSingleRow(ctx context.Context, q string, args ...any) ([]string, error) {
	_, data, err := r.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		logging.Info(ctx, "No records fetched", "query", q)
		return []string{}, nil
	}
	return data[0], nil
}

// ReadSingleValue returns the first column of the first row.
func (r *Reader) ReadSingleValue(ctx context.Context, q string, args ...any) (string, error) {
	_, data, err := r.query(ctx, q, args...)
	if err != nil {
		return "", err
	}
	if len(data) == 0 || len(data[0]) == 0 {
		return "", ErrNoRows
	}
	return data[0][0], nil
}

// ReadSingleColumn returns the first column of every row.
func (r *Reader) ReadSingleColumn(ctx context.Context, q string, args ...any) ([]string, error) {
	_, data, err := r.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(data))
	for _, row := range data {
		if len(row) > 0 {
			out = append(out, row[0])
		}
	}
	return out, nil
}

// Exec runs a statement and returns the number of affected rows.
func (r *Reader) Exec(ctx context.Context, q string, args ...any) (int64, error) {
	logging.Info(ctx, "Executing statement", "query", q)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		qe := newQueryError(q, err)
		logging.Error(ctx, "Error while executing statement", err, "query", q, "code", qe.Hint.Code, "hint", qe.Hint.Message)
		return 0, fmt.Errorf("exec: %w", qe)
	}
	n, err := res.RowsAffected()
	if err != nil {
		// some drivers cannot report it
		return 0, nil
	}
	return n, nil
}

