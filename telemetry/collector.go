package telemetry

// Collector accumulates events within frame windows and produces WindowStats.
type Collector struct {
	windowFrames int64

	// Current window tracking
	windowStartFrame int64

	// Event counters for current window
	samples     int
	modeChanges int
	pinches     int
	spawns      int
	rejected    int
	expired     int
	peakBursts  int
	bloom       []float64
}

// NewCollector creates a new stats collector flushing every windowFrames frames.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{
		windowFrames: int64(windowFrames),
		bloom:        make([]float64, 0, windowFrames),
	}
}

// Record counts one event.
func (c *Collector) Record(e Event) {
	switch e.Type {
	case EventModeChange:
		c.modeChanges++
	case EventBurstSpawn:
		c.spawns++
	case EventBurstRejected:
		c.rejected++
	case EventBurstExpired:
		c.expired += int(e.BurstID)
	case EventPinch:
		c.pinches++
	}
}

// RecordSample counts an accepted gesture sample.
func (c *Collector) RecordSample() {
	c.samples++
}

// RecordFrame samples per-frame state.
func (c *Collector) RecordFrame(bloom float32, liveBursts int) {
	c.bloom = append(c.bloom, float64(bloom))
	if liveBursts > c.peakBursts {
		c.peakBursts = liveBursts
	}
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(frame int64) bool {
	return frame-c.windowStartFrame >= c.windowFrames
}

// FrameState is the engine state captured at a window boundary.
type FrameState struct {
	Mode        string
	Weights     [3]float32
	LiveBursts  int
	ReserveHeld int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(frame int64, st FrameState) WindowStats {
	mean, std, p10, p50, p90 := ComputeSeriesStats(c.bloom)

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   frame,

		Mode:         st.Mode,
		WeightFlower: float64(st.Weights[0]),
		WeightSpiral: float64(st.Weights[1]),
		WeightEmblem: float64(st.Weights[2]),
		LiveBursts:   st.LiveBursts,
		ReserveHeld:  st.ReserveHeld,

		Samples:     c.samples,
		ModeChanges: c.modeChanges,
		Pinches:     c.pinches,
		Spawns:      c.spawns,
		Rejected:    c.rejected,
		Expired:     c.expired,
		PeakBursts:  c.peakBursts,

		BloomMean: mean,
		BloomStd:  std,
		BloomP10:  p10,
		BloomP50:  p50,
		BloomP90:  p90,
	}

	// Reset for next window
	c.windowStartFrame = frame
	c.samples = 0
	c.modeChanges = 0
	c.pinches = 0
	c.spawns = 0
	c.rejected = 0
	c.expired = 0
	c.peakBursts = st.LiveBursts
	c.bloom = c.bloom[:0]

	return stats
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() int64 {
	return c.windowFrames
}
