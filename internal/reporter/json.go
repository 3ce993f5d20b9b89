package reporter

import (
	"encoding/json"

	"github.com/ethanolivertroy/dep-usage/internal/models"
)

// JSONReporter outputs every match as a JSON array. Keys follow the field
// order of models.DependencyMatch.
type JSONReporter struct{}

// Report generates JSON output for the given results
func (r *JSONReporter) Report(results *models.ResultSet) ([]byte, error) {
	return json.MarshalIndent(results.All(), "", "  ")
}
