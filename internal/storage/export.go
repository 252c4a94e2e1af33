package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/softsim/internal/sim"
)

type ExportData struct {
	Mode     string             `json:"mode"`
	Step     float64            `json:"step"`
	Duration float64            `json:"duration"`
	Steps    int                `json:"steps"`
	Times    []float64          `json:"times"`
	Frames   [][][2]float64     `json:"frames"`
	Metrics  map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run as a single JSON document. Each frame is a list
// of [x, y] pairs.
func ExportJSON(w io.Writer, meta RunMetadata, result *sim.Result) error {
	data := ExportData{
		Mode:     meta.Mode,
		Step:     meta.Step,
		Duration: meta.Duration,
		Steps:    result.StepsTaken,
		Times:    make([]float64, len(result.Frames)),
		Frames:   make([][][2]float64, len(result.Frames)),
		Metrics:  result.Metrics,
	}

	for i, f := range result.Frames {
		data.Times[i] = f.Time
		pts := make([][2]float64, len(f.Points))
		for j, p := range f.Points {
			pts[j] = [2]float64{p.X, p.Y}
		}
		data.Frames[i] = pts
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
