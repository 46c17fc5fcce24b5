package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/rpgo/valuation-engine/internal/domain"
)

// CSVFormatter renders the aggregate summary as a single-row CSV, followed
// by the retained per-scenario distribution when present.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(result *domain.AggregateResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"run_id", "count", "mean", "stddev", "p50", "p75", "p90", "p95", "p99", "cte95", "execution_time_ms"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	row := []string{
		result.RunID,
		strconv.Itoa(result.Count),
		formatFloat(result.Mean),
		formatFloat(result.StdDev),
		formatFloat(result.Percentiles.P50),
		formatFloat(result.Percentiles.P75),
		formatFloat(result.Percentiles.P90),
		formatFloat(result.Percentiles.P95),
		formatFloat(result.Percentiles.P99),
		formatFloat(result.CTE95),
		strconv.FormatInt(result.ExecutionTime.Milliseconds(), 10),
	}
	if err := w.Write(row); err != nil {
		return nil, err
	}

	if len(result.Distribution) > 0 {
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		buf.WriteString("\nscenario_index,npv\n")
		for i, npv := range result.Distribution {
			if err := w.Write([]string{strconv.Itoa(i), formatFloat(npv)}); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
