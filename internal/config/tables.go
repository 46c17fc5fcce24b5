package config

import (
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rpgo/valuation-engine/internal/domain"
)

// LoadMortalityTable dispatches to the binary or CSV loader:
// 121 rows x 2 (male, female) doubles, row-major by age.
func LoadMortalityTable(path string) (*domain.MortalityTable, error) {
	var rows [][2]float64
	var err error
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		rows, err = loadMortalityCSV(path)
	} else {
		rows, err = loadMortalityBinary(path)
	}
	if err != nil {
		return nil, err
	}
	return domain.NewMortalityTable(rows)
}

func loadMortalityBinary(path string) ([][2]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mortality table %s: %w", path, err)
	}
	wantRows := domain.MaxAge + 1
	wantBytes := wantRows * 2 * 8
	if len(data) != wantBytes {
		return nil, fmt.Errorf("mortality table %s has %d bytes, expected %d", path, len(data), wantBytes)
	}
	rows := make([][2]float64, wantRows)
	for age := 0; age < wantRows; age++ {
		off := age * 2 * 8
		rows[age][0] = math.Float64frombits(binary.LittleEndian.Uint64(data[off : off+8]))
		rows[age][1] = math.Float64frombits(binary.LittleEndian.Uint64(data[off+8 : off+16]))
	}
	return rows, nil
}

func loadMortalityCSV(path string) ([][2]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mortality CSV %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if _, err := reader.Read(); err != nil { // header: age,qx_male,qx_female
		return nil, fmt.Errorf("failed to read mortality CSV header: %w", err)
	}

	rows := make([][2]float64, domain.MaxAge+1)
	seen := make([]bool, domain.MaxAge+1)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read mortality CSV record: %w", err)
		}
		age, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil || age < 0 || age > domain.MaxAge {
			return nil, fmt.Errorf("invalid mortality table age %q", rec[0])
		}
		male, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid male qx %q at age %d: %w", rec[1], age, err)
		}
		female, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid female qx %q at age %d: %w", rec[2], age, err)
		}
		rows[age] = [2]float64{male, female}
		seen[age] = true
	}
	for age, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("mortality CSV missing age %d", age)
		}
	}
	return rows, nil
}

// DumpMortalityCSV writes a mortality table back to CSV, for the
// binary<->CSV round-trip test.
func DumpMortalityCSV(path string, t *domain.MortalityTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"age", "qx_male", "qx_female"}); err != nil {
		return err
	}
	for age := 0; age <= domain.MaxAge; age++ {
		rec := []string{
			strconv.Itoa(age),
			strconv.FormatFloat(t.Qx(age, domain.Male), 'g', -1, 64),
			strconv.FormatFloat(t.Qx(age, domain.Female), 'g', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// LoadLapseTable dispatches to the binary or CSV loader:
// 50 doubles, index 0 = policy-year 1.
func LoadLapseTable(path string) (*domain.LapseTable, error) {
	var rates []float64
	var err error
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		rates, err = loadLapseCSV(path)
	} else {
		rates, err = loadLapseBinary(path)
	}
	if err != nil {
		return nil, err
	}
	return domain.NewLapseTable(rates)
}

func loadLapseBinary(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lapse table %s: %w", path, err)
	}
	wantBytes := domain.MaxLapseYear * 8
	if len(data) != wantBytes {
		return nil, fmt.Errorf("lapse table %s has %d bytes, expected %d", path, len(data), wantBytes)
	}
	rates := make([]float64, domain.MaxLapseYear)
	for i := range rates {
		rates[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8 : i*8+8]))
	}
	return rates, nil
}

func loadLapseCSV(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lapse CSV %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if _, err := reader.Read(); err != nil { // header: policy_year,lapse_rate
		return nil, fmt.Errorf("failed to read lapse CSV header: %w", err)
	}

	rates := make([]float64, domain.MaxLapseYear)
	seen := make([]bool, domain.MaxLapseYear)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read lapse CSV record: %w", err)
		}
		year, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil || year < 1 || year > domain.MaxLapseYear {
			return nil, fmt.Errorf("invalid lapse table policy_year %q", rec[0])
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid lapse rate %q at year %d: %w", rec[1], year, err)
		}
		rates[year-1] = rate
		seen[year-1] = true
	}
	for year, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("lapse CSV missing policy_year %d", year+1)
		}
	}
	return rates, nil
}

// DumpLapseCSV writes a lapse table back to CSV.
func DumpLapseCSV(path string, t *domain.LapseTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"policy_year", "lapse_rate"}); err != nil {
		return err
	}
	for year := 1; year <= domain.MaxLapseYear; year++ {
		rec := []string{strconv.Itoa(year), strconv.FormatFloat(t.Lapse(year), 'g', -1, 64)}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// LoadExpenseRecord dispatches to the binary or CSV loader:
// four doubles, acquisition/maintenance/percent_of_premium/claim_expense.
func LoadExpenseRecord(path string) (domain.ExpenseAssumptions, error) {
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		return loadExpenseCSV(path)
	}
	return loadExpenseBinary(path)
}

func loadExpenseBinary(path string) (domain.ExpenseAssumptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ExpenseAssumptions{}, fmt.Errorf("failed to read expense record %s: %w", path, err)
	}
	if len(data) != 32 {
		return domain.ExpenseAssumptions{}, fmt.Errorf("expense record %s has %d bytes, expected 32", path, len(data))
	}
	return domain.ExpenseAssumptions{
		Acquisition:      math.Float64frombits(binary.LittleEndian.Uint64(data[0:8])),
		Maintenance:      math.Float64frombits(binary.LittleEndian.Uint64(data[8:16])),
		PercentOfPremium: math.Float64frombits(binary.LittleEndian.Uint64(data[16:24])),
		ClaimExpense:     math.Float64frombits(binary.LittleEndian.Uint64(data[24:32])),
	}, nil
}

func loadExpenseCSV(path string) (domain.ExpenseAssumptions, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.ExpenseAssumptions{}, fmt.Errorf("failed to open expense CSV %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if _, err := reader.Read(); err != nil { // header
		return domain.ExpenseAssumptions{}, fmt.Errorf("failed to read expense CSV header: %w", err)
	}
	rec, err := reader.Read()
	if err != nil {
		return domain.ExpenseAssumptions{}, fmt.Errorf("failed to read expense CSV record: %w", err)
	}
	vals := make([]float64, 4)
	for i := range vals {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
		if err != nil {
			return domain.ExpenseAssumptions{}, fmt.Errorf("invalid expense field %d %q: %w", i, rec[i], err)
		}
		vals[i] = v
	}
	return domain.ExpenseAssumptions{
		Acquisition:      vals[0],
		Maintenance:      vals[1],
		PercentOfPremium: vals[2],
		ClaimExpense:     vals[3],
	}, nil
}

// DumpExpenseCSV writes an expense record back to CSV.
func DumpExpenseCSV(path string, e domain.ExpenseAssumptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"acquisition", "maintenance", "percent_of_premium", "claim_expense"}); err != nil {
		return err
	}
	rec := []string{
		strconv.FormatFloat(e.Acquisition, 'g', -1, 64),
		strconv.FormatFloat(e.Maintenance, 'g', -1, 64),
		strconv.FormatFloat(e.PercentOfPremium, 'g', -1, 64),
		strconv.FormatFloat(e.ClaimExpense, 'g', -1, 64),
	}
	if err := w.Write(rec); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
