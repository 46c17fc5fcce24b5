package output

import (
	"bytes"
	"html/template"

	"github.com/rpgo/valuation-engine/internal/domain"
)

// HTMLFormatter renders the aggregate summary as a standalone HTML report,
// suitable for attaching to an email or opening directly in a browser.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

var htmlReportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Valuation Run {{.RunID}}</title></head>
<body>
<h1>Valuation Run Summary</h1>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Run ID</th><td>{{.RunID}}</td></tr>
<tr><th>Scenarios</th><td>{{.Count}}</td></tr>
<tr><th>Workers</th><td>{{.WorkerCount}} (chunk size {{.ChunkSize}})</td></tr>
<tr><th>Reproducible</th><td>{{.ReproducibleMode}}</td></tr>
<tr><th>Execution time</th><td>{{.ExecutionTime}}</td></tr>
<tr><th>Mean NPV</th><td>{{.Mean}}</td></tr>
<tr><th>Std Dev</th><td>{{.StdDev}}</td></tr>
<tr><th>P50</th><td>{{.Percentiles.P50}}</td></tr>
<tr><th>P75</th><td>{{.Percentiles.P75}}</td></tr>
<tr><th>P90</th><td>{{.Percentiles.P90}}</td></tr>
<tr><th>P95</th><td>{{.Percentiles.P95}}</td></tr>
<tr><th>P99</th><td>{{.Percentiles.P99}}</td></tr>
<tr><th>CTE95</th><td>{{.CTE95}}</td></tr>
</table>
</body>
</html>
`))

func (h HTMLFormatter) Format(result *domain.AggregateResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlReportTemplate.Execute(&buf, result); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
