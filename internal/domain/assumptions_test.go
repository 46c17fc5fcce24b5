package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatMortalityRows(qx float64) [][2]float64 {
	rows := make([][2]float64, MaxAge+1)
	for i := range rows {
		rows[i] = [2]float64{qx, qx}
	}
	return rows
}

func flatLapseRates(rate float64) []float64 {
	rates := make([]float64, MaxLapseYear)
	for i := range rates {
		rates[i] = rate
	}
	return rates
}

func TestNewMortalityTableWrongSize(t *testing.T) {
	_, err := NewMortalityTable(flatMortalityRows(0.01)[:10])
	assert.Error(t, err)
}

func TestNewMortalityTableInvalidProbability(t *testing.T) {
	rows := flatMortalityRows(0.01)
	rows[5] = [2]float64{1.1, 0.01}
	_, err := NewMortalityTable(rows)
	assert.Error(t, err)
}

func TestMortalityTableQxClampsAgeRange(t *testing.T) {
	rows := flatMortalityRows(0.02)
	rows[0] = [2]float64{0.001, 0.002}
	rows[MaxAge] = [2]float64{0.5, 0.4}
	table, err := NewMortalityTable(rows)
	require.NoError(t, err)

	assert.Equal(t, table.Qx(0, Male), table.Qx(-5, Male))
	assert.Equal(t, table.Qx(MaxAge, Female), table.Qx(MaxAge+50, Female))
}

func TestMortalityTableQxClampsProbability(t *testing.T) {
	rows := flatMortalityRows(0.999)
	table, err := NewMortalityTable(rows)
	require.NoError(t, err)
	assert.LessOrEqual(t, table.Qx(10, Male), 0.999)
}

func TestNewLapseTableWrongSize(t *testing.T) {
	_, err := NewLapseTable(flatLapseRates(0.05)[:3])
	assert.Error(t, err)
}

func TestLapseTableClampsPolicyYearRange(t *testing.T) {
	rates := flatLapseRates(0.05)
	rates[0] = 0.10
	rates[MaxLapseYear-1] = 0.20
	table, err := NewLapseTable(rates)
	require.NoError(t, err)

	assert.Equal(t, table.Lapse(1), table.Lapse(0))
	assert.Equal(t, table.Lapse(MaxLapseYear), table.Lapse(MaxLapseYear+10))
}

func TestExpenseAssumptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		exp     ExpenseAssumptions
		wantErr bool
	}{
		{"valid", ExpenseAssumptions{100, 20, 0.02, 50}, false},
		{"negative acquisition", ExpenseAssumptions{-1, 20, 0.02, 50}, true},
		{"nan maintenance", ExpenseAssumptions{100, nan(), 0.02, 50}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.exp.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}
