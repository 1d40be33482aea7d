package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ReserveData is the transient reserve state shown by ReservePanel.
type ReserveData struct {
	Occupancy     []float32 // held fraction per reserve span
	Cursor        int       // span the next allocation starts in
	Held, Size    int
	LiveBursts    int
	MaxBursts     int
	SlotsPerBurst int
	Start, End    int // reserve index range
}

// ReservePanel shows reserve occupancy, burst capacity and the overlay keys.
type ReservePanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewReservePanel creates a panel at (x, y).
func NewReservePanel(x, y, width int32) *ReservePanel {
	return &ReservePanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition moves the panel.
func (p *ReservePanel) SetPosition(x, y int32) {
	p.x, p.y = x, y
}

// Spans returns how many occupancy cells fit the strip.
func (p *ReservePanel) Spans() int {
	_, w := p.renderer.barGeometry(0, p.width-2*p.renderer.Theme.Padding)
	return int(max(w/3, 1))
}

// Draw renders the panel and returns the Y below it.
func (p *ReservePanel) Draw(d *ReserveData, overlays *OverlayRegistry) int32 {
	r := p.renderer
	t := r.Theme
	inner := p.width - 2*t.Padding
	x := p.x + t.Padding

	descs := overlays.All()
	height := t.Padding*2 + 2*t.LineHeight + 3*(t.LineHeight+2) + 8 + int32(len(descs))*t.LineHeight
	r.DrawPanel(p.x, p.y, p.width, height)

	y := r.DrawHeader(x, p.y+t.Padding, "Reserve")
	y = r.DrawText(x, y, "Range", fmt.Sprintf("[%d, %d)", d.Start, d.End))
	y = r.DrawStrip(x, y, "Slots", d.Occupancy, d.Cursor, inner)
	y = r.DrawBar(x, y, "Held", float32(d.Held), FieldRange{Max: float32(d.Size)}, nil, rl.Color{}, inner)
	y = p.drawBurstPips(x, y, d, inner)

	y += 8
	for _, desc := range descs {
		y = p.drawOverlayKey(x, y, desc, overlays.IsEnabled(desc.ID), inner)
	}
	return y
}

// drawBurstPips draws one square per concurrent burst slot, filled when live.
func (p *ReservePanel) drawBurstPips(x, y int32, d *ReserveData, width int32) int32 {
	t := p.renderer.Theme
	rl.DrawText("Bursts:", x, y, t.FontSize, t.LabelColor)
	px := x + t.LabelWidth
	for i := 0; i < d.MaxBursts && px < x+width-60; i++ {
		if i < d.LiveBursts {
			rl.DrawRectangle(px, y+2, 10, 10, t.BarFill)
		} else {
			rl.DrawRectangleLines(px, y+2, 10, 10, t.PanelBorder)
		}
		px += 14
	}
	label := fmt.Sprintf("x%d", d.SlotsPerBurst)
	rl.DrawText(label, x+width-rl.MeasureText(label, t.FontSize), y, t.FontSize, t.ValueColor)
	return y + t.LineHeight + 2
}

// drawOverlayKey draws "[key] name", lit when the overlay is on.
func (p *ReservePanel) drawOverlayKey(x, y int32, desc OverlayDescriptor, on bool, width int32) int32 {
	t := p.renderer.Theme
	key := fmt.Sprintf("[%s]", desc.KeyLabel)
	color := t.LabelColor
	if on {
		color = t.SectionHeader
	}
	rl.DrawText(key, x, y, t.FontSize, color)
	rl.DrawText(desc.Name, x+t.LabelWidth-20, y, t.FontSize, color)
	if desc.Category == "debug" {
		rl.DrawText("debug", x+width-rl.MeasureText("debug", t.FontSize), y, t.FontSize, t.PanelBorder)
	}
	return y + t.LineHeight
}
