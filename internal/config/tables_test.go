package config

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/valuation-engine/internal/domain"
)

func writeMortalityBinary(t *testing.T, path string, rows [][2]float64) {
	t.Helper()
	buf := make([]byte, len(rows)*2*8)
	for i, row := range rows {
		binary.LittleEndian.PutUint64(buf[i*16:i*16+8], math.Float64bits(row[0]))
		binary.LittleEndian.PutUint64(buf[i*16+8:i*16+16], math.Float64bits(row[1]))
	}
	require.NoError(t, os.WriteFile(path, buf, 0o644))
}

func sampleMortalityRows() [][2]float64 {
	rows := make([][2]float64, domain.MaxAge+1)
	for age := range rows {
		rows[age] = [2]float64{0.0001 * float64(age+1), 0.00008 * float64(age+1)}
	}
	return rows
}

func TestLoadMortalityTableBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mortality.bin")
	rows := sampleMortalityRows()
	writeMortalityBinary(t, path, rows)

	table, err := LoadMortalityTable(path)
	require.NoError(t, err)
	assert.InDelta(t, rows[10][0], table.Qx(10, domain.Male), 1e-12)
	assert.InDelta(t, rows[10][1], table.Qx(10, domain.Female), 1e-12)
}

func TestLoadMortalityTableBinaryCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "mortality.bin")
	csvPath := filepath.Join(dir, "mortality.csv")
	rows := sampleMortalityRows()
	writeMortalityBinary(t, binPath, rows)

	fromBinary, err := LoadMortalityTable(binPath)
	require.NoError(t, err)

	require.NoError(t, DumpMortalityCSV(csvPath, fromBinary))
	fromCSV, err := LoadMortalityTable(csvPath)
	require.NoError(t, err)

	for age := 0; age <= domain.MaxAge; age++ {
		assert.InDelta(t, fromBinary.Qx(age, domain.Male), fromCSV.Qx(age, domain.Male), 1e-12)
		assert.InDelta(t, fromBinary.Qx(age, domain.Female), fromCSV.Qx(age, domain.Female), 1e-12)
	}
}

func TestLoadMortalityTableBinaryRejectsBadSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 10), 0o644))
	_, err := LoadMortalityTable(path)
	assert.Error(t, err)
}

func TestLoadMortalityTableCSVRejectsMissingAge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mortality.csv")
	require.NoError(t, os.WriteFile(path, []byte("age,qx_male,qx_female\n0,0.001,0.0008\n"), 0o644))
	_, err := LoadMortalityTable(path)
	assert.Error(t, err)
}

func sampleLapseRates() []float64 {
	rates := make([]float64, domain.MaxLapseYear)
	for i := range rates {
		rates[i] = 0.01 + 0.001*float64(i)
	}
	return rates
}

func writeLapseBinary(t *testing.T, path string, rates []float64) {
	t.Helper()
	buf := make([]byte, len(rates)*8)
	for i, r := range rates {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], math.Float64bits(r))
	}
	require.NoError(t, os.WriteFile(path, buf, 0o644))
}

func TestLoadLapseTableBinaryCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "lapse.bin")
	csvPath := filepath.Join(dir, "lapse.csv")
	rates := sampleLapseRates()
	writeLapseBinary(t, binPath, rates)

	fromBinary, err := LoadLapseTable(binPath)
	require.NoError(t, err)

	require.NoError(t, DumpLapseCSV(csvPath, fromBinary))
	fromCSV, err := LoadLapseTable(csvPath)
	require.NoError(t, err)

	for year := 1; year <= domain.MaxLapseYear; year++ {
		assert.InDelta(t, fromBinary.Lapse(year), fromCSV.Lapse(year), 1e-12)
	}
}

func TestLoadLapseTableBinaryRejectsBadSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 3), 0o644))
	_, err := LoadLapseTable(path)
	assert.Error(t, err)
}

func writeExpenseBinary(t *testing.T, path string, e domain.ExpenseAssumptions) {
	t.Helper()
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(e.Acquisition))
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(e.Maintenance))
	binary.LittleEndian.PutUint64(buf[16:24], math.Float64bits(e.PercentOfPremium))
	binary.LittleEndian.PutUint64(buf[24:32], math.Float64bits(e.ClaimExpense))
	require.NoError(t, os.WriteFile(path, buf, 0o644))
}

func TestLoadExpenseRecordBinaryCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "expense.bin")
	csvPath := filepath.Join(dir, "expense.csv")
	want := domain.ExpenseAssumptions{Acquisition: 150.5, Maintenance: 25.25, PercentOfPremium: 0.015, ClaimExpense: 75}
	writeExpenseBinary(t, binPath, want)

	fromBinary, err := LoadExpenseRecord(binPath)
	require.NoError(t, err)
	assert.Equal(t, want, fromBinary)

	require.NoError(t, DumpExpenseCSV(csvPath, fromBinary))
	fromCSV, err := LoadExpenseRecord(csvPath)
	require.NoError(t, err)
	assert.Equal(t, want, fromCSV)
}

func TestLoadExpenseRecordBinaryRejectsBadSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 10), 0o644))
	_, err := LoadExpenseRecord(path)
	assert.Error(t, err)
}
