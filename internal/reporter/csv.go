package reporter

import (
	"github.com/gocarina/gocsv"
	"golang.org/x/xerrors"

	"github.com/ethanolivertroy/dep-usage/internal/models"
)

// CSVHeader is the fixed column order of the CSV report
const CSVHeader = "namespace,project_name,project_git_url,dependency,scope,parent_name,parent_version"

// CSVReporter outputs one row per match under CSVHeader. The header is
// written even when there are no matches.
type CSVReporter struct{}

// Report generates CSV output for the given results
func (r *CSVReporter) Report(results *models.ResultSet) ([]byte, error) {
	matches := results.All()
	b, err := gocsv.MarshalBytes(&matches)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal CSV: %w", err)
	}
	return b, nil
}
