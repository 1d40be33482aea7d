// Package telemetry provides frame statistics, performance timing, and CSV output.
package telemetry

import "log/slog"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventModeChange EventType = iota
	EventBurstSpawn
	EventBurstRejected
	EventBurstExpired
	EventPinch
)

func (t EventType) String() string {
	switch t {
	case EventModeChange:
		return "mode_change"
	case EventBurstSpawn:
		return "burst_spawn"
	case EventBurstRejected:
		return "burst_rejected"
	case EventBurstExpired:
		return "burst_expired"
	case EventPinch:
		return "pinch"
	}
	return "unknown"
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (t EventType) MarshalCSV() (string, error) {
	return t.String(), nil
}

// Event represents a single telemetry event.
type Event struct {
	Type  EventType `csv:"type"`
	Frame int64     `csv:"frame"`

	// Optional fields depending on event type
	From    string  `csv:"from"` // previous mode for mode changes
	To      string  `csv:"to"`
	BurstID uint32  `csv:"burst_id"`
	X       float32 `csv:"x"`
	Y       float32 `csv:"y"`
	Z       float32 `csv:"z"`
}

// NewModeChangeEvent creates a mode transition event.
func NewModeChangeEvent(frame int64, from, to string) Event {
	return Event{Type: EventModeChange, Frame: frame, From: from, To: to}
}

// NewBurstSpawnEvent creates a burst spawn event at a world point.
func NewBurstSpawnEvent(frame int64, id uint32, x, y, z float32) Event {
	return Event{Type: EventBurstSpawn, Frame: frame, BurstID: id, X: x, Y: y, Z: z}
}

// NewBurstRejectedEvent creates an event for a spawn the reserve could not hold.
func NewBurstRejectedEvent(frame int64, x, y, z float32) Event {
	return Event{Type: EventBurstRejected, Frame: frame, X: x, Y: y, Z: z}
}

// NewBurstExpiredEvent records fireworks removed in one frame. BurstID holds the count.
func NewBurstExpiredEvent(frame int64, count int) Event {
	return Event{Type: EventBurstExpired, Frame: frame, BurstID: uint32(count)}
}

// NewPinchEvent creates a pinch trigger event at normalized image coordinates.
func NewPinchEvent(frame int64, hand string, x, y float32) Event {
	return Event{Type: EventPinch, Frame: frame, From: hand, X: x, Y: y}
}

// LogValue implements slog.LogValuer for structured logging.
func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", e.Type.String()),
		slog.Int64("frame", e.Frame),
	}
	switch e.Type {
	case EventModeChange:
		attrs = append(attrs, slog.String("from", e.From), slog.String("to", e.To))
	case EventBurstSpawn:
		attrs = append(attrs, slog.Any("id", e.BurstID),
			slog.Float64("x", float64(e.X)), slog.Float64("y", float64(e.Y)), slog.Float64("z", float64(e.Z)))
	case EventBurstExpired:
		attrs = append(attrs, slog.Any("count", e.BurstID))
	case EventPinch:
		attrs = append(attrs, slog.String("hand", e.From))
	}
	return slog.GroupValue(attrs...)
}
