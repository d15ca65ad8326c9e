// Package export writes result tables to CSV, JSON, XLSX, and SQLite.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/scrapbee/scrapbee/pkg/crawl"
)

var log = logging.Logger("export")

// Table is an ordered column/row view of results.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// FromHits builds the standard file-hit table.
func FromHits(hits []crawl.FileHit) Table {
	t := Table{Columns: []string{"File", "Type", "URL", "Source"}}
	for _, h := range hits {
		t.Rows = append(t.Rows, map[string]string{
			"File":   h.Name,
			"Type":   h.Ext,
			"URL":    h.URL,
			"Source": h.Source,
		})
	}
	return t
}

// cell returns the row's value for col, with the original's "N/A"
// placeholder for missing cells.
func (t Table) cell(row map[string]string, col string) string {
	if v, ok := row[col]; ok {
		return v
	}
	return "N/A"
}

// CSV renders the table with a header row.
func (t Table) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(t.Columns); err != nil {
		return nil, err
	}
	for _, row := range t.Rows {
		record := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			record[i] = t.cell(row, col)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type jsonEnvelope struct {
	GeneratedAt string              `json:"generated_at"`
	Label       string              `json:"label"`
	Columns     []string            `json:"columns"`
	Rows        []map[string]string `json:"rows"`
}

// JSON renders the table inside a metadata envelope.
func (t Table) JSON(label string) ([]byte, error) {
	rows := t.Rows
	if rows == nil {
		rows = []map[string]string{}
	}
	return json.MarshalIndent(jsonEnvelope{
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Label:       label,
		Columns:     t.Columns,
		Rows:        rows,
	}, "", "  ")
}

// DefaultFilename builds the conventional export name:
// ScrapBee_<label>_<timestamp>.<ext>.
func DefaultFilename(label, ext string) string {
	safe := crawl.SafeFilename(label)
	if safe == "" {
		safe = "export"
	}
	ts := time.Now().Format("20060102_150405")
	return fmt.Sprintf("ScrapBee_%s_%s.%s", safe, ts, strings.TrimPrefix(ext, "."))
}

// WriteFile writes the table to path, picking the format from the
// extension (.csv, .json, .xlsx, .db/.sqlite).
func WriteFile(path, label string, t Table) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		data, err = t.CSV()
	case ".json":
		data, err = t.JSON(label)
	case ".xlsx":
		data, err = t.XLSX(label)
	case ".db", ".sqlite":
		data, err = t.SQLite(label)
	default:
		return fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	log.Infof("wrote %d rows to %s", len(t.Rows), path)
	return nil
}
