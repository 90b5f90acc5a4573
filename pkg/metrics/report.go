package metrics

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	spfafero "github.com/spf13/afero"

	"github.com/tunelab/tune/pkg/afero"
	"github.com/tunelab/tune/pkg/logging"
)

// ReportFileName is the terminal artifact of an evaluation run, overwritten
// on each re-run.
const ReportFileName = "metric.json"

// Report maps metric names to their scalar values.
type Report struct {
	F1       float64 `json:"f1"`
	F1Macro  float64 `json:"f1_macro"`
	Accuracy float64 `json:"accuracy"`
}

// Save persists the report to dir/metric.json.
func Save(fs spfafero.Fs, dir string, r Report, log logging.Interface) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshalling evaluation report: %w", err)
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report directory %s: %w", dir, err)
	}

	return afero.AtomicFileUpdate(fs, dir, ReportFileName, data, 0o644, log)
}

// Load reads a previously saved report back from dir/metric.json.
func Load(fs spfafero.Fs, dir string) (Report, error) {
	var r Report

	data, err := spfafero.ReadFile(fs, filepath.Join(dir, ReportFileName))
	if err != nil {
		return r, fmt.Errorf("reading evaluation report: %w", err)
	}

	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("parsing evaluation report: %w", err)
	}

	return r, nil
}
