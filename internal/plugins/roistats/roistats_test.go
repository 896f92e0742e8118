package roistats

import (
	"context"
	"encoding/csv"
	"image"
	"os"
	"path/filepath"
	"testing"

	"roilab/internal/descriptor"
	"roilab/internal/plugin"
	"roilab/internal/roi"
	"roilab/internal/sequence"
	"roilab/pkg/geometry"
)

func testEnv(t *testing.T) (*plugin.Env, string) {
	t.Helper()
	seq := sequence.New("test", 64, 64)
	if err := seq.AddSlice(0, image.NewGray(image.Rect(0, 0, 64, 64))); err != nil {
		t.Fatalf("AddSlice: %v", err)
	}
	dir := t.TempDir()
	return &plugin.Env{
		Sequence:    seq,
		Descriptors: descriptor.DefaultRegistry(),
		OutputDir:   dir,
	}, dir
}

func TestRunWritesCSV(t *testing.T) {
	env, dir := testEnv(t)
	env.Sequence.AddROI(roi.NewRectangle2D(geometry.Rect{X: 4, Y: 4, Width: 10, Height: 10}))
	env.Sequence.AddROI(roi.NewBox3D(geometry.Rect{X: 0, Y: 0, Width: 4, Height: 4}, 0, 3))

	if err := New().Run(context.Background(), env, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "roistats.csv"))
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("want header plus 2 rows, got %d records", len(records))
	}
	header := records[0]
	if header[0] != "roi" || header[1] != "type" {
		t.Errorf("unexpected header start: %v", header[:2])
	}
	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			t.Errorf("row %d has %d cells, want %d", i, len(rec), len(header))
		}
	}

	// 2D rows leave the volume column blank, 3D rows the area column.
	cols := make(map[string]int)
	for i, id := range header {
		cols[id] = i
	}
	if idx, ok := cols["volume"]; ok {
		if records[1][idx] != "" {
			t.Errorf("2d roi should have empty volume cell, got %q", records[1][idx])
		}
		if records[2][idx] == "" {
			t.Errorf("3d roi should have a volume value")
		}
	} else {
		t.Errorf("volume column missing from header %v", header)
	}
}

func TestRunCustomOutputName(t *testing.T) {
	env, dir := testEnv(t)
	env.Sequence.AddROI(roi.NewEllipse2D(geometry.Rect{X: 1, Y: 1, Width: 6, Height: 6}))

	if err := New().Run(context.Background(), env, []string{"-out", "table.csv"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "table.csv")); err != nil {
		t.Errorf("custom output name not honored: %v", err)
	}
}

func TestRunRequiresSequence(t *testing.T) {
	env := &plugin.Env{Descriptors: descriptor.DefaultRegistry()}
	if err := New().Run(context.Background(), env, nil); err == nil {
		t.Fatalf("expected error without a sequence")
	}
}

func TestRunEmptySequenceIsNoop(t *testing.T) {
	env, dir := testEnv(t)
	if err := New().Run(context.Background(), env, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "roistats.csv")); !os.IsNotExist(err) {
		t.Errorf("no output expected for an roi-less sequence")
	}
}
