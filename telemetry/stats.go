package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of frames.
type WindowStats struct {
	WindowStartFrame int64 `csv:"-"`
	WindowEndFrame   int64 `csv:"window_end"`

	// State at window end
	Mode         string  `csv:"mode"`
	WeightFlower float64 `csv:"w_flower"`
	WeightSpiral float64 `csv:"w_spiral"`
	WeightEmblem float64 `csv:"w_emblem"`
	LiveBursts   int     `csv:"live_bursts"`
	ReserveHeld  int     `csv:"reserve_held"`

	// Events during window
	Samples     int `csv:"samples"` // Accepted gesture samples
	ModeChanges int `csv:"mode_changes"`
	Pinches     int `csv:"pinches"`
	Spawns      int `csv:"spawns"`
	Rejected    int `csv:"rejected"`
	Expired     int `csv:"expired"`
	PeakBursts  int `csv:"peak_bursts"`

	// Bloom distribution (sampled every frame)
	BloomMean float64 `csv:"bloom_mean"`
	BloomStd  float64 `csv:"bloom_std"`
	BloomP10  float64 `csv:"bloom_p10"`
	BloomP50  float64 `csv:"bloom_p50"`
	BloomP90  float64 `csv:"bloom_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeSeriesStats calculates mean, population std, and percentiles.
// values is sorted in place.
func ComputeSeriesStats(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sort.Float64s(values)
	p10 = Percentile(values, 0.10)
	p50 = Percentile(values, 0.50)
	p90 = Percentile(values, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartFrame),
		slog.Int64("window_end", s.WindowEndFrame),
		slog.String("mode", s.Mode),
		slog.Float64("w_flower", s.WeightFlower),
		slog.Float64("w_spiral", s.WeightSpiral),
		slog.Float64("w_emblem", s.WeightEmblem),
		slog.Int("live_bursts", s.LiveBursts),
		slog.Int("reserve_held", s.ReserveHeld),
		slog.Int("samples", s.Samples),
		slog.Int("mode_changes", s.ModeChanges),
		slog.Int("pinches", s.Pinches),
		slog.Int("spawns", s.Spawns),
		slog.Int("rejected", s.Rejected),
		slog.Int("expired", s.Expired),
		slog.Int("peak_bursts", s.PeakBursts),
		slog.Float64("bloom_mean", s.BloomMean),
		slog.Float64("bloom_std", s.BloomStd),
		slog.Float64("bloom_p50", s.BloomP50),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"mode", s.Mode,
		"w_flower", s.WeightFlower,
		"w_spiral", s.WeightSpiral,
		"w_emblem", s.WeightEmblem,
		"live_bursts", s.LiveBursts,
		"reserve_held", s.ReserveHeld,
		"samples", s.Samples,
		"mode_changes", s.ModeChanges,
		"pinches", s.Pinches,
		"spawns", s.Spawns,
		"rejected", s.Rejected,
		"expired", s.Expired,
		"peak_bursts", s.PeakBursts,
		"bloom_mean", s.BloomMean,
		"bloom_std", s.BloomStd,
		"bloom_p10", s.BloomP10,
		"bloom_p50", s.BloomP50,
		"bloom_p90", s.BloomP90,
	)
}
