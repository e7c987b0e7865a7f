package services

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"mcx-exporter/internal/common"
	"mcx-exporter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/xuri/excelize/v2"
)

func exportFixture() ([]string, []*models.Row) {
	first := models.NewRow()
	first.Set("Case ID", 42)
	first.Set("Owner", "Jo Bloggs")
	first.Set("Score", 9.5)

	second := models.NewRow()
	second.Set("Case ID", 43)
	second.Set("Owner", "Sam Smith")
	// no Score on the second row

	return []string{"Case ID", "Owner", "Score"}, []*models.Row{first, second}
}

func newTestExporter(t *testing.T, format string) *Exporter {
	t.Helper()
	return NewExporter(&common.ExporterConfig{
		Format:    format,
		OutputDir: t.TempDir(),
	}, arbor.NewLogger())
}

func TestExportCSV(t *testing.T) {
	exporter := newTestExporter(t, "csv")
	fieldNames, rows := exportFixture()

	path, err := exporter.Export("cases", fieldNames, rows)
	require.NoError(t, err)
	assert.Equal(t, "cases.csv", filepath.Base(path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"Case ID", "Owner", "Score"}, records[0])
	assert.Equal(t, []string{"42", "Jo Bloggs", "9.5"}, records[1])
	assert.Equal(t, []string{"43", "Sam Smith", ""}, records[2])
}

func TestExportJSON(t *testing.T) {
	exporter := newTestExporter(t, "json")
	fieldNames, rows := exportFixture()

	path, err := exporter.Export("cases", fieldNames, rows)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, float64(42), decoded[0]["Case ID"])
	assert.Equal(t, "Jo Bloggs", decoded[0]["Owner"])

	// Absent fields stay absent in JSON output.
	_, ok := decoded[1]["Score"]
	assert.False(t, ok)
}

func TestExportXLSX(t *testing.T) {
	exporter := newTestExporter(t, "xlsx")
	fieldNames, rows := exportFixture()

	path, err := exporter.Export("cases", fieldNames, rows)
	require.NoError(t, err)

	file, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer file.Close()

	header, err := file.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Case ID", header)

	owner, err := file.GetCellValue("Sheet1", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Jo Bloggs", owner)

	missing, err := file.GetCellValue("Sheet1", "C3")
	require.NoError(t, err)
	assert.Equal(t, "", missing)
}

func TestExportUnknownFormat(t *testing.T) {
	exporter := newTestExporter(t, "parquet")
	fieldNames, rows := exportFixture()

	_, err := exporter.Export("cases", fieldNames, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown export format")
}

func TestFormatCellValue(t *testing.T) {
	assert.Equal(t, "", formatCellValue(nil))
	assert.Equal(t, "plain", formatCellValue("plain"))
	assert.Equal(t, "42", formatCellValue(42))
	assert.Equal(t, "9.5", formatCellValue(9.5))
	assert.Equal(t, "true", formatCellValue(true))
}
