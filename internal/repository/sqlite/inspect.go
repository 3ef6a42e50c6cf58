package sqlite

import (
	"context"
	"fmt"
	"strings"
)

// Column is one column of a table as declared in the schema.
type Column struct {
	Name string
	Type string
}

// TableDump is the full content of one table: its columns and every row,
// each value rendered as text.
type TableDump struct {
	Name    string
	Columns []Column
	Rows    [][]string
}

// Inspect dumps every table in the database, including SQLite's own
// bookkeeping tables such as sqlite_sequence. Tables are returned by name.
func (db *DB) Inspect(ctx context.Context) ([]TableDump, error) {
	names, err := db.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	dumps := make([]TableDump, 0, len(names))
	for _, name := range names {
		cols, err := db.tableColumns(ctx, name)
		if err != nil {
			return nil, err
		}
		rows, err := db.tableRows(ctx, name, len(cols))
		if err != nil {
			return nil, err
		}
		dumps = append(dumps, TableDump{Name: name, Columns: cols, Rows: rows})
	}
	return dumps, nil
}

// tableNames collects names fully before returning. The pool has a single
// connection, so the next query cannot start while these rows are open.
func (db *DB) tableNames(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tables: %w", err)
	}
	return names, nil
}

func (db *DB) tableColumns(ctx context.Context, table string) ([]Column, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT name, type FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("sqlite: scanning column of %s: %w", table, err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating columns of %s: %w", table, err)
	}
	return cols, nil
}

func (db *DB) tableRows(ctx context.Context, table string, width int) ([][]string, error) {
	// Table names cannot be bound as parameters. The name comes from
	// sqlite_master, and quoteIdent escapes it anyway.
	rows, err := db.conn.QueryContext(ctx, `SELECT * FROM `+quoteIdent(table))
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading rows of %s: %w", table, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		values := make([]any, width)
		ptrs := make([]any, width)
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlite: scanning row of %s: %w", table, err)
		}

		row := make([]string, width)
		for i, v := range values {
			row[i] = formatValue(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating rows of %s: %w", table, err)
	}
	return out, nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
