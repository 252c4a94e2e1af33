package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/san-kum/softsim/internal/geom"
	"github.com/san-kum/softsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

func testResult() *sim.Result {
	return &sim.Result{
		Frames: []sim.Frame{
			{Time: 0, Steps: 0, Points: []r2.Vec{{X: 1, Y: 2}, {X: 3, Y: 4}}},
			{Time: 0.1, Steps: 10, Points: []r2.Vec{{X: 1, Y: 2}, {X: 3.25, Y: 3.5}}},
		},
		Metrics:    map[string]float64{"max_sag": 0.5},
		StepsTaken: 10,
		Errors:     []error{errors.New("wobble")},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Mode: "cloth", Seed: 42, Step: 0.01}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Mode != "cloth" || meta.ID != runID {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Metrics["max_sag"] != 0.5 {
		t.Errorf("expected max_sag 0.5, got %f", meta.Metrics["max_sag"])
	}
	if meta.Particles != 2 || meta.StepsTaken != 10 {
		t.Errorf("expected 2 particles and 10 steps, got %d and %d", meta.Particles, meta.StepsTaken)
	}
	if diff := cmp.Diff([]string{"wobble"}, meta.Errors); diff != "" {
		t.Errorf("errors (-want +got):\n%s", diff)
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if diff := cmp.Diff(testResult().Frames, frames, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("frames (-want +got):\n%s", diff)
	}
}

func TestStoreList(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "runs"))

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	first, err := st.Save(RunMetadata{Mode: "plant"}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := st.Save(RunMetadata{Mode: "plant"}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if first == second {
		t.Errorf("run ids collide: %s", first)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(RunMetadata{Mode: "cloth"}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, framesFile} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestLoadFrames_SkipsBadRows(t *testing.T) {
	tmpDir := t.TempDir()
	runDir := filepath.Join(tmpDir, "hand")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	data := "time,steps,x0,y0\n0.0,0,1,2\nbad,0,1,2\n0.1,1,oops,2\n0.2,2,5,6\n"
	if err := os.WriteFile(filepath.Join(runDir, framesFile), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	frames, err := New(tmpDir).LoadFrames("hand")
	if err != nil {
		t.Fatal(err)
	}
	want := []sim.Frame{
		{Time: 0, Steps: 0, Points: []r2.Vec{geom.Vec(1, 2)}},
		{Time: 0.2, Steps: 2, Points: []r2.Vec{geom.Vec(5, 6)}},
	}
	if diff := cmp.Diff(want, frames); diff != "" {
		t.Errorf("frames (-want +got):\n%s", diff)
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, RunMetadata{Mode: "cloth", Step: 0.01, Duration: 0.1}, testResult()); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Mode != "cloth" || got.Steps != 10 || len(got.Frames) != 2 {
		t.Errorf("unexpected export %+v", got)
	}
	if got.Frames[1][1] != [2]float64{3.25, 3.5} {
		t.Errorf("unexpected point %v", got.Frames[1][1])
	}
}
