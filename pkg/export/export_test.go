package export

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/scrapbee/scrapbee/pkg/crawl"
)

func sampleTable() Table {
	return FromHits([]crawl.FileHit{
		{Name: "report.pdf", Ext: ".pdf", URL: "https://example.com/report.pdf", Source: "https://example.com/"},
		{Name: "data.xlsx", Ext: ".xlsx", URL: "https://example.com/data.xlsx", Source: "https://example.com/files"},
	})
}

func TestFromHits(t *testing.T) {
	tbl := sampleTable()
	assert.Equal(t, []string{"File", "Type", "URL", "Source"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "report.pdf", tbl.Rows[0]["File"])
	assert.Equal(t, ".xlsx", tbl.Rows[1]["Type"])
}

func TestCSV(t *testing.T) {
	data, err := sampleTable().CSV()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "File,Type,URL,Source", lines[0])
	assert.Contains(t, lines[1], "report.pdf")
}

func TestCSVFillsMissingCells(t *testing.T) {
	tbl := Table{
		Columns: []string{"A", "B"},
		Rows:    []map[string]string{{"A": "1"}},
	}
	data, err := tbl.CSV()
	require.NoError(t, err)
	assert.Contains(t, string(data), "1,N/A")
}

func TestJSONEnvelope(t *testing.T) {
	data, err := sampleTable().JSON("files")
	require.NoError(t, err)

	var decoded struct {
		GeneratedAt string              `json:"generated_at"`
		Label       string              `json:"label"`
		Columns     []string            `json:"columns"`
		Rows        []map[string]string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "files", decoded.Label)
	assert.NotEmpty(t, decoded.GeneratedAt)
	assert.Len(t, decoded.Rows, 2)
}

func TestXLSX(t *testing.T) {
	data, err := sampleTable().XLSX("files")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Data")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"File", "Type", "URL", "Source"}, rows[0])
	assert.Equal(t, "report.pdf", rows[1][0])

	meta, err := f.GetRows("Metadata")
	require.NoError(t, err)
	assert.NotEmpty(t, meta)
}

func TestSQLite(t *testing.T) {
	data, err := sampleTable().SQLite("files")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.db")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM data`).Scan(&count))
	assert.Equal(t, 2, count)

	var label string
	require.NoError(t, db.QueryRow(`SELECT label FROM metadata`).Scan(&label))
	assert.Equal(t, "files", label)
}

func TestDefaultFilename(t *testing.T) {
	name := DefaultFilename("my search", "csv")
	assert.True(t, strings.HasPrefix(name, "ScrapBee_my_search_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))
}

func TestWriteFileByExtension(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "out.csv")
	require.NoError(t, WriteFile(csvPath, "files", sampleTable()))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "report.pdf")

	err = WriteFile(filepath.Join(dir, "out.parquet"), "files", sampleTable())
	assert.ErrorContains(t, err, "unsupported export format")
}
