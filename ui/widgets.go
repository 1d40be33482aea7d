package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer draws panels and descriptor fields with one theme.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a bordered panel background.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawHeader draws a section title and returns the Y below it.
func (r *Renderer) DrawHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight
}

// DrawText draws "label: value" and returns the Y below it.
func (r *Renderer) DrawText(x, y int32, label, value string) int32 {
	t := r.Theme
	rl.DrawText(label+":", x, y, t.FontSize, t.LabelColor)
	rl.DrawText(value, x+t.LabelWidth, y, t.FontSize, t.ValueColor)
	return y + t.LineHeight
}

// barGeometry returns the track of a labelled bar. The last 50px hold the value.
func (r *Renderer) barGeometry(x, width int32) (trackX, trackW int32) {
	return x + r.Theme.LabelWidth, width - r.Theme.LabelWidth - 50
}

// DrawBar draws value over rng with a tick at each mark. A zero fill uses
// the theme color.
func (r *Renderer) DrawBar(x, y int32, label string, value float32, rng FieldRange, marks []float32, fill rl.Color, width int32) int32 {
	t := r.Theme
	trackX, trackW := r.barGeometry(x, width)
	if fill.A == 0 {
		fill = t.BarFill
	}

	rl.DrawText(label+":", x, y, t.FontSize, t.LabelColor)
	rl.DrawRectangle(trackX, y+2, trackW, t.BarHeight, t.BarBg)
	rl.DrawRectangle(trackX, y+2, int32(float32(trackW)*rng.fraction(value)), t.BarHeight, fill)
	for _, m := range marks {
		mx := trackX + int32(float32(trackW)*rng.fraction(m))
		rl.DrawLine(mx, y, mx, y+t.BarHeight+4, t.MarkColor)
	}
	rl.DrawText(fmt.Sprintf("%.2f", value), trackX+trackW+5, y, t.FontSize, t.ValueColor)
	return y + t.LineHeight + 2
}

// DrawStrip draws one cell per value, brightness following the value. A
// cursor in [0, len(values)) is outlined; pass -1 for none.
func (r *Renderer) DrawStrip(x, y int32, label string, values []float32, cursor int, width int32) int32 {
	t := r.Theme
	trackX, trackW := r.barGeometry(x, width)
	rl.DrawText(label+":", x, y, t.FontSize, t.LabelColor)
	rl.DrawRectangle(trackX, y+2, trackW, t.BarHeight, t.BarBg)

	n := int32(len(values))
	if n == 0 {
		return y + t.LineHeight + 2
	}
	for i, v := range values {
		if v <= 0 {
			continue
		}
		cx := trackX + int32(i)*trackW/n
		cw := max(trackX+int32(i+1)*trackW/n-cx, 1)
		rl.DrawRectangle(cx, y+2, cw, t.BarHeight, rl.Fade(t.BarFill, 0.25+0.75*min(v, 1)))
	}
	if cursor >= 0 && int32(cursor) < n {
		cx := trackX + int32(cursor)*trackW/n
		rl.DrawLine(cx, y, cx, y+t.BarHeight+4, t.MarkColor)
	}
	return y + t.LineHeight + 2
}

// fraction maps v into [0,1] over the range.
func (rng FieldRange) fraction(v float32) float32 {
	if rng.Max <= rng.Min {
		return 0
	}
	return min(max((v-rng.Min)/(rng.Max-rng.Min), 0), 1)
}

// DrawField renders one descriptor against data.
func (r *Renderer) DrawField(x, y int32, fd FieldDescriptor, data any, width int32) int32 {
	switch fd.Widget {
	case WidgetText:
		text := ""
		switch {
		case fd.TextGetter != nil:
			text = fd.TextGetter(data)
		case fd.Getter != nil:
			text = fmt.Sprintf(fd.Format, fd.Getter(data))
		}
		return r.DrawText(x, y, fd.Label, text)

	case WidgetBar:
		var value float32
		if fd.Getter != nil {
			value = fd.Getter(data)
		}
		var marks []float32
		if fd.Marks != nil {
			marks = fd.Marks(data)
		}
		return r.DrawBar(x, y, fd.Label, value, fd.Range, marks, fd.Color, width)

	case WidgetStrip:
		var values []float32
		if fd.Values != nil {
			values = fd.Values(data)
		}
		return r.DrawStrip(x, y, fd.Label, values, -1, width)
	}
	return y + r.fieldHeight(fd)
}

func (r *Renderer) fieldHeight(fd FieldDescriptor) int32 {
	switch fd.Widget {
	case WidgetBar, WidgetStrip:
		return r.Theme.LineHeight + 2
	case WidgetSpacer:
		return 6
	}
	return r.Theme.LineHeight
}

// DrawSection renders a section's visible fields under its title.
func (r *Renderer) DrawSection(x, y int32, sd SectionDescriptor, data any, width int32) int32 {
	if sd.Visible != nil && !sd.Visible(data) {
		return y
	}
	if sd.Title != "" {
		y = r.DrawHeader(x, y, sd.Title)
	}
	for _, fd := range sd.Fields {
		if fd.Visible == nil || fd.Visible(data) {
			y = r.DrawField(x, y, fd, data, width)
		}
	}
	return y + 4
}

// SectionHeight returns the height DrawSection will use for data.
func (r *Renderer) SectionHeight(sd SectionDescriptor, data any) int32 {
	if sd.Visible != nil && !sd.Visible(data) {
		return 0
	}
	h := int32(4)
	if sd.Title != "" {
		h += r.Theme.LineHeight
	}
	for _, fd := range sd.Fields {
		if fd.Visible == nil || fd.Visible(data) {
			h += r.fieldHeight(fd)
		}
	}
	return h
}
