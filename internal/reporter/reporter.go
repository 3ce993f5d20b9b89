package reporter

import "github.com/ethanolivertroy/dep-usage/internal/models"

// Reporter is the interface for output formatters
type Reporter interface {
	// Report generates output for the given results
	Report(results *models.ResultSet) ([]byte, error)
}

// Get returns a reporter for the specified format
func Get(format string) Reporter {
	switch format {
	case "json":
		return &JSONReporter{}
	case "csv":
		return &CSVReporter{}
	default:
		return &TerminalReporter{}
	}
}
