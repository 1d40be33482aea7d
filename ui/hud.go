package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Mode         string
	Source       string // gesture source label
	Counter      int
	CounterCap   int
	CounterEnter int // emblem entry threshold
	CounterExit  int // emblem exit threshold
	Weights      [3]float32
	Bloom        float32
	LiveBursts   int
	MaxBursts    int
	ReserveHeld  int
	ReserveSize  int
	Frame        int64
	FPS          int32
	Drawn        int
	Hovering     bool
	HoverPoint   [3]float32
}

// HUDActions reports which buttons were pressed this frame.
type HUDActions struct {
	Burst    bool
	Recenter bool
	Pose     string // synthetic pose requested, "" for none
}

// hudSections describes the status panel.
var hudSections = []SectionDescriptor{
	{
		ID:    "mode",
		Title: "Mode",
		Fields: []FieldDescriptor{
			{ID: "mode", Label: "Mode", Widget: WidgetText, TextGetter: func(d any) string { return d.(*HUDData).Mode }},
			{ID: "source", Label: "Source", Widget: WidgetText, TextGetter: func(d any) string { return d.(*HUDData).Source }},
			{ID: "counter", Label: "Merge", Widget: WidgetBar, Range: DefaultRange(),
				Getter: func(d any) float32 {
					h := d.(*HUDData)
					return counterFraction(h, h.Counter)
				},
				Marks: func(d any) []float32 {
					h := d.(*HUDData)
					return []float32{counterFraction(h, h.CounterExit), counterFraction(h, h.CounterEnter)}
				}},
		},
	},
	{
		ID:    "blend",
		Title: "Blend",
		Fields: []FieldDescriptor{
			{ID: "w_flower", Label: "Flower", Widget: WidgetBar, Range: DefaultRange(), Color: rl.Pink,
				Getter: func(d any) float32 { return d.(*HUDData).Weights[0] }},
			{ID: "w_spiral", Label: "Spiral", Widget: WidgetBar, Range: DefaultRange(), Color: rl.SkyBlue,
				Getter: func(d any) float32 { return d.(*HUDData).Weights[1] }},
			{ID: "w_emblem", Label: "Emblem", Widget: WidgetBar, Range: DefaultRange(), Color: rl.Gold,
				Getter: func(d any) float32 { return d.(*HUDData).Weights[2] }},
			{ID: "bloom", Label: "Bloom", Widget: WidgetBar, Range: FieldRange{Min: 0, Max: 1.5},
				Getter: func(d any) float32 { return d.(*HUDData).Bloom },
				Marks:  func(any) []float32 { return []float32{1} }},
		},
	},
	{
		ID:    "bursts",
		Title: "Bursts",
		Fields: []FieldDescriptor{
			{ID: "live", Label: "Live", Widget: WidgetText, TextGetter: func(d any) string {
				h := d.(*HUDData)
				return fmt.Sprintf("%d / %d", h.LiveBursts, h.MaxBursts)
			}},
			{ID: "reserve", Label: "Reserve", Widget: WidgetText, TextGetter: func(d any) string {
				h := d.(*HUDData)
				return fmt.Sprintf("%d / %d", h.ReserveHeld, h.ReserveSize)
			}},
			{ID: "hover", Label: "Hover", Widget: WidgetText, Visible: func(d any) bool { return d.(*HUDData).Hovering },
				TextGetter: func(d any) string {
					p := d.(*HUDData).HoverPoint
					return fmt.Sprintf("%.1f, %.1f, %.1f", p[0], p[1], p[2])
				}},
		},
	},
}

// counterFraction places a counter value on the merge bar.
func counterFraction(h *HUDData, v int) float32 {
	if h.CounterCap == 0 {
		return 0
	}
	return float32(v) / float32(h.CounterCap)
}

// poseButtons are the synthetic poses offered in the HUD.
var poseButtons = []string{"none", "open", "pinch", "sword", "palms", "fist"}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		width:    230,
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data *HUDData) {
	r := h.renderer

	// Title
	rl.DrawText(data.Title, 10, 10, 20, rl.White)
	rl.DrawText(
		fmt.Sprintf("Frame: %d | FPS: %d | Points: %d", data.Frame, data.FPS, data.Drawn),
		10, 35, 16, rl.LightGray,
	)

	// Status panel
	x, y := int32(10), int32(60)
	height := r.Theme.Padding * 2
	for _, sd := range hudSections {
		height += r.SectionHeight(sd, data)
	}
	r.DrawPanel(x, y, h.width, height)

	y += r.Theme.Padding
	for _, sd := range hudSections {
		y = r.DrawSection(x+r.Theme.Padding, y, sd, data, h.width-r.Theme.Padding*2)
	}
}

// DrawActions renders the button row along the bottom edge.
func (h *HUD) DrawActions(screenWidth, screenHeight int32) HUDActions {
	var act HUDActions
	y := float32(screenHeight - 40)
	x := float32(10)

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 80, Height: 28}, "Burst") {
		act.Burst = true
	}
	x += 90
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 80, Height: 28}, "Recenter") {
		act.Recenter = true
	}
	x += 100

	for _, pose := range poseButtons {
		if gui.Button(rl.Rectangle{X: x, Y: y, Width: 64, Height: 28}, pose) {
			act.Pose = pose
		}
		x += 70
	}
	return act
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-60, 14, rl.Gray)
}
