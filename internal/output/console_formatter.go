package output

import (
	"bytes"
	"fmt"

	moneypkg "github.com/rpgo/valuation-engine/pkg/decimal"

	"github.com/rpgo/valuation-engine/internal/domain"
)

// ConsoleFormatter renders a concise, human-readable summary of one
// valuation run.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(result *domain.AggregateResult) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "VALUATION RUN SUMMARY")
	fmt.Fprintln(&buf, "=====================")
	fmt.Fprintf(&buf, "Run ID:          %s\n", result.RunID)
	fmt.Fprintf(&buf, "Scenarios:       %d\n", result.Count)
	fmt.Fprintf(&buf, "Workers:         %d (chunk size %d)\n", result.WorkerCount, result.ChunkSize)
	fmt.Fprintf(&buf, "Reproducible:    %v\n", result.ReproducibleMode)
	fmt.Fprintf(&buf, "Execution time:  %s\n", result.ExecutionTime)
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Mean NPV:        %s\n", money(result.Mean))
	fmt.Fprintf(&buf, "Std Dev:         %s\n", money(result.StdDev))
	fmt.Fprintf(&buf, "P50:             %s\n", money(result.Percentiles.P50))
	fmt.Fprintf(&buf, "P75:             %s\n", money(result.Percentiles.P75))
	fmt.Fprintf(&buf, "P90:             %s\n", money(result.Percentiles.P90))
	fmt.Fprintf(&buf, "P95:             %s\n", money(result.Percentiles.P95))
	fmt.Fprintf(&buf, "P99:             %s\n", money(result.Percentiles.P99))
	fmt.Fprintf(&buf, "CTE95:           %s\n", money(result.CTE95))
	return buf.Bytes(), nil
}

func money(v float64) string {
	return moneypkg.NewMoney(v).Round().Format()
}
