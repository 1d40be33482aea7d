package main

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/bloomfield/camera"
	"github.com/pthm-cable/bloomfield/config"
	"github.com/pthm-cable/bloomfield/game"
	"github.com/pthm-cable/bloomfield/gesture"
	"github.com/pthm-cable/bloomfield/renderer"
	"github.com/pthm-cable/bloomfield/ui"
)

const controlsLegend = "[1-6] pose  [wheel] pinch  [click] burst  [right drag] orbit  [R] recenter  [Tab] reserve"

// posesByKey maps number keys to synthetic poses.
var posesByKey = []struct {
	key  int32
	pose string
}{
	{rl.KeyOne, "none"},
	{rl.KeyTwo, "open"},
	{rl.KeyThree, "pinch"},
	{rl.KeyFour, "sword"},
	{rl.KeyFive, "palms"},
	{rl.KeySix, "fist"},
}

// viewer drives the engine from raylib input and draws it.
type viewer struct {
	cfg    *config.Config
	engine *game.Engine
	orbit  *camera.Orbit

	// Synthetic gesture input when no script drives the engine
	script  *gesture.Script
	mailbox *gesture.Mailbox
	synth   gesture.Synth
	pose    string
	pinch   float32
	ts      int64

	cloud    *renderer.CloudRenderer
	dense    *renderer.CloudRenderer
	glow     *renderer.GlowRenderer
	backdrop *renderer.BackgroundRenderer
	hud      *ui.HUD
	reserve  *ui.ReservePanel
	overlays *ui.OverlayRegistry

	screenW, screenH int32
	input            game.Input
	hudData          ui.HUDData
	reserveData      ui.ReserveData
}

func newViewer(cfg *config.Config, opts game.Options, script *gesture.Script) (*viewer, error) {
	v := &viewer{
		cfg:     cfg,
		script:  script,
		synth:   gesture.DefaultSynth(),
		pose:    "none",
		pinch:   0.6,
		screenW: int32(cfg.Screen.Width),
		screenH: int32(cfg.Screen.Height),
	}
	if script == nil {
		v.mailbox = &gesture.Mailbox{}
		opts.Source = v.mailbox
	}

	e, err := game.NewEngine(cfg, opts)
	if err != nil {
		return nil, err
	}
	v.engine = e
	v.orbit = camera.NewOrbit(e.Camera(), cfg.Camera, cfg.Screen.TargetFPS)

	d := cfg.Derived
	v.cloud = renderer.NewCloudRenderer(cfg.Screen.DrawStride, d.ReserveStart, d.ReserveEnd)
	v.dense = renderer.NewCloudRenderer(1, d.ReserveStart, d.ReserveEnd)
	v.glow = renderer.NewGlowRenderer(cfg.Burst.Lifetime, 14)
	v.backdrop = renderer.NewBackgroundRenderer(v.screenW, v.screenH, 4, 3, 8)
	v.hud = ui.NewHUD()
	v.reserve = ui.NewReservePanel(v.screenW-230, 10, 220)
	v.reserveData.Occupancy = make([]float32, v.reserve.Spans())
	v.overlays = ui.NewOverlayRegistry()

	slog.Info("viewer ready", "scripted", script != nil, "draw_stride", cfg.Screen.DrawStride)
	return v, nil
}

// Update reads input and advances the engine one frame.
func (v *viewer) Update() {
	v.handleResize()

	for _, key := range v.overlays.Keys() {
		if rl.IsKeyPressed(key) {
			if id, on, ok := v.overlays.HandleKeyPress(key); ok {
				slog.Debug("overlay toggled", "overlay", id, "enabled", on)
			}
		}
	}
	for _, pk := range posesByKey {
		if rl.IsKeyPressed(pk.key) {
			v.pose = pk.pose
		}
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.pinch = min(max(v.pinch+wheel*0.05, 0), 1.5)
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.orbit.Recenter()
	}
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		v.orbit.Nudge(float64(-delta.X)*0.2, float64(delta.Y)*0.2)
	}
	v.orbit.Update()

	mouse := rl.GetMousePosition()
	v.pushSyntheticHands(mouse)

	v.input.Pointer = rl.IsCursorOnScreen()
	v.input.PointerX, v.input.PointerY = v.engine.Camera().ScreenToNDC(mouse.X, mouse.Y)
	// The button row owns clicks along the bottom edge.
	v.input.Trigger = v.input.Trigger ||
		(rl.IsMouseButtonPressed(rl.MouseLeftButton) && mouse.Y < float32(v.screenH-70))

	v.engine.Step(v.input)
	v.input.Trigger = false
}

// pushSyntheticHands feeds the selected pose at the mouse position.
func (v *viewer) pushSyntheticHands(mouse rl.Vector2) {
	if v.mailbox == nil {
		return
	}
	x := mouse.X / float32(v.screenW)
	y := mouse.Y / float32(v.screenH)
	hands, ok := v.synth.Hands(v.pose, x, y, v.pinch, 0)
	if !ok {
		return
	}
	v.ts++
	v.mailbox.Push(v.synth.Frame(v.ts, hands...))
}

func (v *viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	if w == v.screenW && h == v.screenH {
		return
	}
	v.screenW, v.screenH = w, h
	v.engine.Camera().Resize(float32(w), float32(h))
	v.backdrop.Resize(w, h)
	v.reserve.SetPosition(w-230, 10)
}

// Draw renders the cloud and overlays.
func (v *viewer) Draw() {
	st := v.engine.Status()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	if v.overlays.IsEnabled(ui.OverlayBackdrop) {
		v.backdrop.Draw(st.Weights)
	}

	cloud := v.cloud
	if v.overlays.IsEnabled(ui.OverlayFullDensity) {
		cloud = v.dense
	}
	hover := st.Hovering && v.overlays.IsEnabled(ui.OverlayHover)
	cloud.Draw(v.engine.Buffer(), v.engine.Camera(), hover, st.HoverPoint[0], st.HoverPoint[1], st.HoverPoint[2])

	if v.overlays.IsEnabled(ui.OverlayGlow) {
		v.glow.Draw(v.engine.Buffer(), v.engine.Camera(), v.engine.EachBurst)
	}

	if v.overlays.IsEnabled(ui.OverlayHUD) {
		v.fillHUD(st, cloud.Drawn())
		v.hud.Draw(&v.hudData)
		v.hud.DrawControls(v.screenW, v.screenH, controlsLegend)
		act := v.hud.DrawActions(v.screenW, v.screenH)
		v.apply(act)
	}
	if v.overlays.IsEnabled(ui.OverlayReserve) {
		v.fillReserve(st)
		v.reserve.Draw(&v.reserveData, v.overlays)
	}

	rl.EndDrawing()
}

// apply queues HUD button actions for the next Update.
func (v *viewer) apply(act ui.HUDActions) {
	if act.Burst {
		if p, ok := v.centerPoint(); ok {
			v.engine.QueueBurst(p[0], p[1], p[2])
		}
	}
	if act.Recenter {
		v.orbit.Recenter()
	}
	if act.Pose != "" {
		v.pose = act.Pose
	}
}

// centerPoint raycasts the view center onto the particle plane.
func (v *viewer) centerPoint() ([3]float32, bool) {
	r := camera.NewRaycaster(v.engine.Camera(), float32(v.cfg.Camera.PlaneZ))
	p, ok := r.Cast(0, 0)
	return [3]float32{p.X(), p.Y(), p.Z()}, ok
}

func (v *viewer) fillHUD(st game.Status, drawn int) {
	source := "keyboard: " + v.pose
	if v.script != nil {
		source = "script: " + v.script.Name
	}
	v.hudData = ui.HUDData{
		Title:        "Bloomfield",
		Mode:         st.Mode.String(),
		Source:       source,
		Counter:      st.Counter,
		CounterCap:   v.cfg.Gesture.DebounceCap,
		CounterEnter: v.cfg.Gesture.DebounceEnter,
		CounterExit:  v.cfg.Gesture.DebounceExit,
		Weights:      st.Weights,
		Bloom:        st.Bloom,
		LiveBursts:   st.LiveBursts,
		MaxBursts:    v.cfg.Burst.MaxConcurrent,
		ReserveHeld:  st.ReserveHeld,
		ReserveSize:  v.cfg.Particles.ReserveSize,
		Frame:        st.Frame,
		FPS:          rl.GetFPS(),
		Drawn:        drawn,
		Hovering:     st.Hovering,
		HoverPoint:   st.HoverPoint,
	}
}

func (v *viewer) fillReserve(st game.Status) {
	d := &v.reserveData
	cursor := v.engine.ReserveOccupancy(d.Occupancy)
	d.Cursor = cursor * len(d.Occupancy) / max(v.cfg.Particles.ReserveSize, 1)
	d.Held = st.ReserveHeld
	d.Size = v.cfg.Particles.ReserveSize
	d.LiveBursts = st.LiveBursts
	d.MaxBursts = v.cfg.Burst.MaxConcurrent
	d.SlotsPerBurst = v.cfg.Derived.SlotsPerBurst
	d.Start = v.cfg.Derived.ReserveStart
	d.End = v.cfg.Derived.ReserveEnd
}

// Close releases the engine.
func (v *viewer) Close() {
	if err := v.engine.Close(); err != nil {
		slog.Error("failed to close engine", "error", err)
	}
}
