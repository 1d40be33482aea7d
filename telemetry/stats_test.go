package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/bloomfield/config"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeSeriesStats(t *testing.T) {
	values := []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1}
	mean, std, p10, p50, p90 := ComputeSeriesStats(values)

	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	// Population std of 0.1..1.0
	if math.Abs(std-0.2872) > 0.001 {
		t.Errorf("std = %v, want ~0.2872", std)
	}
	if math.Abs(p10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", p10)
	}
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}
}

func TestComputeSeriesStatsEmpty(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeSeriesStats(nil)

	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(4)

	c.Record(NewModeChangeEvent(1, "idle", "flower"))
	c.Record(NewBurstSpawnEvent(2, 1, 0, 0, 0))
	c.Record(NewBurstSpawnEvent(2, 2, 0, 0, 0))
	c.Record(NewBurstRejectedEvent(3, 0, 0, 0))
	c.Record(NewBurstExpiredEvent(3, 2))
	c.RecordSample()
	for f := 0; f < 4; f++ {
		c.RecordFrame(0.5, f)
	}

	if c.ShouldFlush(3) {
		t.Error("flushed before window filled")
	}
	if !c.ShouldFlush(4) {
		t.Fatal("expected flush at window end")
	}

	stats := c.Flush(4, FrameState{Mode: "flower", Weights: [3]float32{1, 0, 0}, LiveBursts: 1})
	if stats.ModeChanges != 1 || stats.Spawns != 2 || stats.Rejected != 1 || stats.Expired != 2 {
		t.Errorf("unexpected counts %+v", stats)
	}
	if stats.PeakBursts != 3 || stats.Samples != 1 {
		t.Errorf("expected peak 3 and 1 sample, got %d and %d", stats.PeakBursts, stats.Samples)
	}
	if stats.BloomMean != 0.5 || stats.BloomStd != 0 {
		t.Errorf("expected constant bloom 0.5, got mean %f std %f", stats.BloomMean, stats.BloomStd)
	}

	next := c.Flush(8, FrameState{})
	if next.Spawns != 0 || next.WindowStartFrame != 4 {
		t.Errorf("expected counters reset, got %+v", next)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("creating output: %v", err)
	}

	if err := om.WriteFrames(WindowStats{WindowEndFrame: 120, Mode: "spiral"}); err != nil {
		t.Fatalf("write frames: %v", err)
	}
	if err := om.WriteFrames(WindowStats{WindowEndFrame: 240, Mode: "emblem"}); err != nil {
		t.Fatalf("write frames: %v", err)
	}
	if err := om.WriteEvents([]Event{NewModeChangeEvent(5, "flower", "spiral")}); err != nil {
		t.Fatalf("write events: %v", err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "frames.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,mode") {
		t.Errorf("unexpected header %q", lines[0])
	}

	events, err := os.ReadFile(filepath.Join(dir, "events.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(events), "mode_change,5,flower,spiral") {
		t.Errorf("expected mode change row, got %q", events)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("expected config snapshot: %v", err)
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager for empty dir, got %v, %v", om, err)
	}
	if err := om.WriteFrames(WindowStats{}); err != nil {
		t.Errorf("nil manager write should be a no-op, got %v", err)
	}
}
