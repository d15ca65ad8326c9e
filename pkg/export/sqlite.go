package export

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite renders the table as a SQLite database file (a data table plus
// a metadata table) and returns the file's bytes.
func (t Table) SQLite(label string) ([]byte, error) {
	tmp, err := os.CreateTemp("", "scrapbee-*.db")
	if err != nil {
		return nil, err
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	if err := t.writeSQLite(path, label); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (t Table) writeSQLite(path, label string) error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("cannot export a table with no columns")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	cols := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quoteIdent(c)
		marks[i] = "?"
	}

	createData := fmt.Sprintf("CREATE TABLE data (%s TEXT)", strings.Join(cols, " TEXT, "))
	if _, err := db.Exec(createData); err != nil {
		return fmt.Errorf("failed to create data table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	insert := fmt.Sprintf("INSERT INTO data (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.Join(marks, ", "))
	stmt, err := tx.Prepare(insert)
	if err != nil {
		tx.Rollback()
		return err
	}
	for _, row := range t.Rows {
		args := make([]interface{}, len(t.Columns))
		for i, col := range t.Columns {
			args[i] = t.cell(row, col)
		}
		if _, err := stmt.Exec(args...); err != nil {
			stmt.Close()
			tx.Rollback()
			return err
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		return err
	}

	if _, err := db.Exec(
		"CREATE TABLE metadata (generated_at TEXT, label TEXT, row_count INTEGER, columns TEXT)",
	); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}
	_, err = db.Exec(
		"INSERT INTO metadata (generated_at, label, row_count, columns) VALUES (?, ?, ?, ?)",
		time.Now().Format("2006-01-02 15:04:05"), label, len(t.Rows), strings.Join(t.Columns, ", "),
	)
	return err
}

// quoteIdent makes a column name safe to embed in DDL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
