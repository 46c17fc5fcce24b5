package output

import (
	"encoding/json"

	"github.com/rpgo/valuation-engine/internal/domain"
)

// JSONFormatter serializes the aggregate result as pretty-printed JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(result *domain.AggregateResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
