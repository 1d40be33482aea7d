package game

import (
	"log/slog"

	"github.com/pthm-cable/bloomfield/telemetry"
)

// recordEvent counts an event in the current window and queues it for events.csv.
func (e *Engine) recordEvent(ev telemetry.Event) {
	e.collector.Record(ev)
	if e.output != nil {
		e.events = append(e.events, ev)
	}
}

// flushTelemetry checks if the stats window should be flushed.
func (e *Engine) flushTelemetry() {
	if !e.collector.ShouldFlush(e.frame) {
		return
	}

	st := e.Status()
	stats := e.collector.Flush(e.frame, telemetry.FrameState{
		Mode:        st.Mode.String(),
		Weights:     st.Weights,
		LiveBursts:  st.LiveBursts,
		ReserveHeld: st.ReserveHeld,
	})
	perfStats := e.perf.Stats()

	// Call stats callback if provided
	if e.statsCallback != nil {
		e.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if e.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if e.output != nil {
		if err := e.output.WriteFrames(stats); err != nil {
			slog.Error("failed to write frames", "error", err)
		}
		if err := e.output.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
		if err := e.output.WriteEvents(e.events); err != nil {
			slog.Error("failed to write events", "error", err)
		}
		e.events = e.events[:0]
	}
}
