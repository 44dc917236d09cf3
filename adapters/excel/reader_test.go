package excel

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "periods.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadPeriods_CSV(t *testing.T) {
	path := writeCSV(t, "N-1,N\n10,15\n12,18\n11,16\n")

	periods, err := NewPeriodReader(path).ReadPeriods()
	require.NoError(t, err)

	assert.Equal(t, []string{"N-1", "N"}, periods.Names())

	baseline, ok := periods.Get("N-1")
	require.True(t, ok)
	assert.Equal(t, []float64{10, 12, 11}, baseline)

	current, ok := periods.Get("N")
	require.True(t, ok)
	assert.Equal(t, []float64{15, 18, 16}, current)
}

func TestReadPeriods_BlankAndNonNumericBecomeNaN(t *testing.T) {
	path := writeCSV(t, "N-1,N\n10,15\n,error\n11,16\n")

	periods, err := NewPeriodReader(path).ReadPeriods()
	require.NoError(t, err)

	baseline, _ := periods.Get("N-1")
	require.Len(t, baseline, 3)
	assert.True(t, math.IsNaN(baseline[1]))

	current, _ := periods.Get("N")
	require.Len(t, current, 3)
	assert.True(t, math.IsNaN(current[1]))
}

// TestReadPeriods_RaggedColumns verifies a shorter column comes back short
// instead of padded with missing values.
func TestReadPeriods_RaggedColumns(t *testing.T) {
	path := writeCSV(t, "N-1,N\n10,15\n12,18\n11\n")

	periods, err := NewPeriodReader(path).ReadPeriods()
	require.NoError(t, err)

	baseline, _ := periods.Get("N-1")
	assert.Len(t, baseline, 3)

	current, _ := periods.Get("N")
	assert.Len(t, current, 2)
}

func TestReadPeriods_UnnamedColumnGetsSyntheticName(t *testing.T) {
	path := writeCSV(t, "N-1,\n10,15\n12,18\n")

	periods, err := NewPeriodReader(path).ReadPeriods()
	require.NoError(t, err)

	assert.Equal(t, []string{"N-1", "period_2"}, periods.Names())
}

func TestReadPeriods_MissingFile(t *testing.T) {
	_, err := NewPeriodReader(filepath.Join(t.TempDir(), "absent.csv")).ReadPeriods()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadPeriods_HeaderOnly(t *testing.T) {
	path := writeCSV(t, "N-1,N\n")

	_, err := NewPeriodReader(path).ReadPeriods()
	require.Error(t, err)
}

func TestReadPeriods_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "periods.xlsx")

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"N-1", "N"},
		{10.0, 15.0},
		{12.0, 18.0},
		{11.0, 16.0},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	periods, err := NewPeriodReader(path).ReadPeriods()
	require.NoError(t, err)

	assert.Equal(t, []string{"N-1", "N"}, periods.Names())
	baseline, _ := periods.Get("N-1")
	assert.Equal(t, []float64{10, 12, 11}, baseline)
}
