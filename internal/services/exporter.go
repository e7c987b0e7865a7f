package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"mcx-exporter/internal/common"
	"mcx-exporter/internal/models"

	"github.com/ternarybob/arbor"
	"github.com/xuri/excelize/v2"
)

// Exporter writes ordered fieldnames and rows to a file sink. It is agnostic
// to where the rows came from; partial output on a mid-write error is left
// in place.
type Exporter struct {
	config *common.ExporterConfig
	logger arbor.ILogger
}

func NewExporter(config *common.ExporterConfig, logger arbor.ILogger) *Exporter {
	return &Exporter{
		config: config,
		logger: logger,
	}
}

// Export writes the rows to <output_dir>/<name>.<format> and returns the
// written path.
func (e *Exporter) Export(name string, fieldNames []string, rows []*models.Row) (string, error) {
	if err := os.MkdirAll(e.config.OutputDir, 0755); err != nil {
		return "", common.WrapError(err, common.ErrorTypeExport, "output_dir",
			"failed to create output directory")
	}

	path := filepath.Join(e.config.OutputDir, fmt.Sprintf("%s.%s", name, e.config.Format))

	var err error
	switch e.config.Format {
	case "csv":
		err = e.exportCSV(path, fieldNames, rows)
	case "json":
		err = e.exportJSON(path, rows)
	case "xlsx":
		err = e.exportXLSX(path, fieldNames, rows)
	default:
		return "", common.NewExportError("unknown_format",
			fmt.Sprintf("unknown export format %q", e.config.Format))
	}
	if err != nil {
		return "", err
	}

	e.logger.Info().
		Str("path", path).
		Int("rows", len(rows)).
		Msg("Export written")

	return path, nil
}

func (e *Exporter) exportCSV(path string, fieldNames []string, rows []*models.Row) error {
	file, err := os.Create(path)
	if err != nil {
		return common.WrapError(err, common.ErrorTypeExport, "csv_create", "failed to create CSV file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(fieldNames); err != nil {
		return common.WrapError(err, common.ErrorTypeExport, "csv_header", "failed to write CSV header")
	}

	for _, row := range rows {
		record := make([]string, len(fieldNames))
		for i, name := range fieldNames {
			record[i] = formatCellValue(row.Value(name))
		}
		if err := writer.Write(record); err != nil {
			return common.WrapError(err, common.ErrorTypeExport, "csv_row", "failed to write CSV row")
		}
	}

	writer.Flush()
	return writer.Error()
}

func (e *Exporter) exportJSON(path string, rows []*models.Row) error {
	file, err := os.Create(path)
	if err != nil {
		return common.WrapError(err, common.ErrorTypeExport, "json_create", "failed to create JSON file")
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return common.WrapError(err, common.ErrorTypeExport, "json_encode", "failed to encode JSON rows")
	}
	return nil
}

func (e *Exporter) exportXLSX(path string, fieldNames []string, rows []*models.Row) error {
	file := excelize.NewFile()
	defer file.Close()

	const sheet = "Sheet1"

	for col, name := range fieldNames {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return common.WrapError(err, common.ErrorTypeExport, "xlsx_cell", "failed to map header cell")
		}
		if err := file.SetCellValue(sheet, cell, name); err != nil {
			return common.WrapError(err, common.ErrorTypeExport, "xlsx_header", "failed to write header cell")
		}
	}

	for i, row := range rows {
		for col, name := range fieldNames {
			value, ok := row.Get(name)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return common.WrapError(err, common.ErrorTypeExport, "xlsx_cell", "failed to map row cell")
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return common.WrapError(err, common.ErrorTypeExport, "xlsx_row", "failed to write row cell")
			}
		}
	}

	if err := file.SaveAs(path); err != nil {
		return common.WrapError(err, common.ErrorTypeExport, "xlsx_save", "failed to save XLSX file")
	}
	return nil
}

// formatCellValue renders a row value for text sinks. Missing fields render
// as empty cells.
func formatCellValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
