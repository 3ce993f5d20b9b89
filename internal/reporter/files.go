package reporter

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/ethanolivertroy/dep-usage/internal/models"
)

const (
	filePrefix      = "dependency_search_results_"
	timestampLayout = "20060102_150405"
)

// FileWriter saves the JSON and CSV reports side by side under one timestamp
type FileWriter struct {
	fs  afero.Fs
	dir string
	now func() time.Time
}

// NewFileWriter creates a FileWriter for dir on fs
func NewFileWriter(fs afero.Fs, dir string) *FileWriter {
	return &FileWriter{fs: fs, dir: dir, now: time.Now}
}

// Write renders results as JSON and CSV and returns the paths written
func (w *FileWriter) Write(results *models.ResultSet) ([]string, error) {
	if err := w.fs.MkdirAll(w.dir, 0755); err != nil {
		return nil, xerrors.Errorf("failed to create output dir: %w", err)
	}

	base := filepath.Join(w.dir, filePrefix+w.now().Format(timestampLayout))

	var paths []string
	for _, format := range []string{"json", "csv"} {
		output, err := Get(format).Report(results)
		if err != nil {
			return paths, xerrors.Errorf("failed to generate %s report: %w", format, err)
		}

		path := fmt.Sprintf("%s.%s", base, format)
		if err := afero.WriteFile(w.fs, path, output, 0644); err != nil {
			return paths, xerrors.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
