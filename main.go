package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/bloomfield/config"
	"github.com/pthm-cable/bloomfield/game"
	"github.com/pthm-cable/bloomfield/gesture"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	scriptPath := flag.String("script", "", "Gesture script YAML (empty = built-in demo when headless, keyboard poses otherwise)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	var script *gesture.Script
	if *scriptPath != "" {
		s, err := gesture.LoadScript(*scriptPath)
		if err != nil {
			slog.Error("failed to load gesture script", "error", err)
			os.Exit(1)
		}
		script = s
	} else if *headless {
		script = gesture.DemoScript()
	}

	opts := game.Options{
		Seed:      *seed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	}
	if script != nil {
		opts.Source = script
	}

	if *headless {
		// Headless mode - no raylib needed
		e, err := game.NewEngine(cfg, opts)
		if err != nil {
			slog.Error("failed to start engine", "error", err)
			os.Exit(1)
		}
		defer e.Close()

		slog.Info("starting headless run",
			"seed", e.Seed(),
			"script", script.Name,
			"max_frames", *maxFrames,
		)

		for {
			e.Step(game.Input{})

			if *maxFrames > 0 && int(e.Frame()) >= *maxFrames {
				slog.Info("max frames reached", "frame", e.Frame())
				return
			}
			if script.Done() {
				slog.Info("script finished", "frame", e.Frame())
				return
			}
		}
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Bloomfield")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v, err := newViewer(cfg, opts, script)
	if err != nil {
		slog.Error("failed to start viewer", "error", err)
		os.Exit(1)
	}
	defer v.Close()

	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()

		if *maxFrames > 0 && int(v.engine.Frame()) >= *maxFrames {
			break
		}
	}
}
