package storage

import (
	"encoding/json"
	"io"
	"os"
)

// CurveExport is the JSON document for exported Bode curves.
type CurveExport struct {
	Preset   string    `json:"preset,omitempty"`
	FreqMin  float64   `json:"freq_min"`
	FreqMax  float64   `json:"freq_max"`
	Points   int       `json:"points"`
	Freq     []float64 `json:"freq_hz"`
	MagDB    []float64 `json:"mag_db"`
	PhaseDeg []float64 `json:"phase_deg"`
}

// ExportCurvesJSON writes evaluated curves to a file.
func ExportCurvesJSON(path string, data CurveExport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return writeCurves(f, data)
}

// ExportCurvesStdout writes evaluated curves to standard output.
func ExportCurvesStdout(data CurveExport) error {
	return writeCurves(os.Stdout, data)
}

func writeCurves(w io.Writer, data CurveExport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
