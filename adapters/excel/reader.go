package excel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"perfgate/domain/workflow"

	"github.com/xuri/excelize/v2"
)

// PeriodReader reads named measurement windows from an Excel workbook or a
// CSV export. Layout: first row holds period names, each column below it
// holds that period's samples. Blank or non-numeric cells become NaN and
// count as missing values downstream.
type PeriodReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
}

// NewPeriodReader creates a reader that handles both Excel and CSV files
func NewPeriodReader(filePath string) *PeriodReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &PeriodReader{filePath: filePath, fileType: fileType, sheet: "Sheet1"}
}

// WithSheet overrides the worksheet name read from Excel files
func (r *PeriodReader) WithSheet(sheet string) *PeriodReader {
	r.sheet = sheet
	return r
}

// ReadPeriods implements ports.PeriodReader
func (r *PeriodReader) ReadPeriods() (*workflow.PeriodSet, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}

	return buildPeriodSet(rows)
}

func (r *PeriodReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", r.sheet, err)
	}
	return rows, nil
}

func (r *PeriodReader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

func buildPeriodSet(rows [][]string) (*workflow.PeriodSet, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("need a header row and at least one data row, got %d rows", len(rows))
	}

	header := rows[0]
	columns := make([][]float64, len(header))

	for _, row := range rows[1:] {
		for col := range header {
			if col >= len(row) || strings.TrimSpace(row[col]) == "" {
				columns[col] = append(columns[col], math.NaN())
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				columns[col] = append(columns[col], math.NaN())
				continue
			}
			columns[col] = append(columns[col], v)
		}
	}

	periods := workflow.NewPeriodSet()
	for col, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("period_%d", col+1)
		}
		periods.Add(name, trimTrailingNaN(columns[col]))
	}
	return periods, nil
}

// trimTrailingNaN drops the NaN tail produced by ragged columns so a short
// period is short, not padded with missing values.
func trimTrailingNaN(values []float64) []float64 {
	end := len(values)
	for end > 0 && math.IsNaN(values[end-1]) {
		end--
	}
	return values[:end]
}
