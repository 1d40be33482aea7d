package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	if cfg.Particles.Count != 180000 {
		t.Errorf("expected 180000 particles, got %d", cfg.Particles.Count)
	}

	// reserve_start -1 resolves to the tail of the steady range
	if cfg.Derived.ReserveEnd != cfg.Particles.Count {
		t.Errorf("expected reserve to end at %d, got %d", cfg.Particles.Count, cfg.Derived.ReserveEnd)
	}
	if cfg.Derived.BufferLen != cfg.Particles.Count {
		t.Errorf("expected buffer length %d, got %d", cfg.Particles.Count, cfg.Derived.BufferLen)
	}
	if cfg.Derived.SlotsPerBurst != 24*11 {
		t.Errorf("expected 264 slots per burst, got %d", cfg.Derived.SlotsPerBurst)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	overlay := []byte("particles:\n  count: 12\n  reserve_size: 6\n  reserve_start: 12\nburst:\n  spark_count: 2\n  trail_length: 2\n  max_concurrent: 1\n")
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading overlay: %v", err)
	}

	if cfg.Particles.Count != 12 {
		t.Errorf("expected overlay count 12, got %d", cfg.Particles.Count)
	}
	// Fields absent from the overlay keep their defaults
	if cfg.Burst.Lifetime != 90 {
		t.Errorf("expected default lifetime 90, got %d", cfg.Burst.Lifetime)
	}
	if cfg.Derived.BufferLen != 18 {
		t.Errorf("expected disjoint reserve to extend buffer to 18, got %d", cfg.Derived.BufferLen)
	}
}

func TestValidateReserveCapacity(t *testing.T) {
	cfg := Default()
	cfg.Burst.MaxConcurrent = 100
	cfg.ComputeDerived()

	err := cfg.Validate()
	if !errors.Is(err, ErrReserveCapacity) {
		t.Fatalf("expected ErrReserveCapacity, got %v", err)
	}

	// Tight capacity is valid
	cfg.Burst.MaxConcurrent = 1
	cfg.Particles.ReserveSize = cfg.Burst.SparkCount * (1 + cfg.Burst.TrailLength)
	cfg.ComputeDerived()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected tight reserve to validate, got %v", err)
	}
}

func TestValidateReserveLayout(t *testing.T) {
	tests := []struct {
		name  string
		start int
		size  int
		ok    bool
	}{
		{"tail inside background", -1, 50, true},
		{"whole background", -1, 100, true},
		{"tail reaching into shapes", -1, 600, false},
		{"explicit start in background", 920, 80, true},
		{"explicit start in shapes", 400, 100, false},
		{"straddles end of steady range", 950, 200, true},
		{"past steady range", 1000, 600, true},
	}

	for _, tc := range tests {
		cfg := Default()
		cfg.Particles.Count = 1000
		cfg.Particles.BackgroundFraction = 0.10 // background is [900,1000)
		cfg.Particles.ReserveStart = tc.start
		cfg.Particles.ReserveSize = tc.size
		cfg.Burst.SparkCount = 2
		cfg.Burst.TrailLength = 1
		cfg.Burst.MaxConcurrent = 1
		cfg.ComputeDerived()

		err := cfg.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: expected valid layout, got %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrReserveLayout) {
			t.Errorf("%s: expected ErrReserveLayout, got %v", tc.name, err)
		}
	}
}

func TestValidateDebounce(t *testing.T) {
	tests := []struct {
		name        string
		exit, enter int
		cap         int
		ok          bool
	}{
		{"defaults", 2, 6, 10, true},
		{"exit equals enter", 4, 4, 10, false},
		{"enter above cap", 2, 12, 10, false},
		{"negative exit", -1, 6, 10, false},
	}

	for _, tc := range tests {
		cfg := Default()
		cfg.Gesture.DebounceExit = tc.exit
		cfg.Gesture.DebounceEnter = tc.enter
		cfg.Gesture.DebounceCap = tc.cap
		err := cfg.Validate()
		if (err == nil) != tc.ok {
			t.Errorf("%s: expected ok=%v, got err=%v", tc.name, tc.ok, err)
		}
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg := Default()
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("writing snapshot: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading snapshot: %v", err)
	}
	if loaded.Emblem.GlyphPoints != cfg.Emblem.GlyphPoints {
		t.Errorf("expected glyph points %d, got %d", cfg.Emblem.GlyphPoints, loaded.Emblem.GlyphPoints)
	}
}
