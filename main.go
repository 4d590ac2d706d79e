package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/skyswarm/camera"
	"github.com/pthm-cable/skyswarm/config"
	"github.com/pthm-cable/skyswarm/game"
	"github.com/pthm-cable/skyswarm/render"
	"github.com/pthm-cable/skyswarm/systems"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics, scripted player")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Use config stats window if not overridden by CLI
	statsWindowSec := cfg.Telemetry.StatsWindow
	if *statsWindow > 0 {
		statsWindowSec = *statsWindow
	}

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: statsWindowSec,
		OutputDir:      *outputDir,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *headless {
		// Headless mode: pure CPU simulation, player flies the configured
		// scripted trajectory.
		opts.ScriptedPlayer = true

		g := game.NewGameWithOptions(opts)
		defer g.Unload()

		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"stats_window", statsWindowSec,
			"max_ticks", *maxTicks,
			"steps_per_update", *stepsPerUpdate,
		)

		for {
			g.UpdateHeadless()

			if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
				slog.Info("max ticks reached", "tick", g.Tick())
				return
			}
		}
	}

	// Graphical mode: keyboard-flown player, debug view
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Skyswarm")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	view := render.NewView()
	opts.Render = view

	g := game.NewGameWithOptions(opts)
	defer g.Unload()

	start := systems.Vec3{
		X: float32(cfg.Player.StartX),
		Y: float32(cfg.Player.StartY),
		Z: float32(cfg.Player.StartZ),
	}
	fly := render.NewFlyController(start, float32(cfg.Drone.CruiseSpeed))
	cam := camera.NewChase(60, 25, 4)
	cam.Snap(start, systems.Vec3{Z: -1})
	hud := render.NewHUD()

	paused := false
	playerOn := true
	dt := cfg.Derived.DT32

	for !rl.WindowShouldClose() {
		frameDT := rl.GetFrameTime()

		if rl.IsKeyPressed(rl.KeySpace) {
			paused = !paused
		}
		if rl.IsKeyPressed(rl.KeyP) {
			playerOn = !playerOn
			if !playerOn {
				g.ClearPlayer()
			}
		}
		if rl.IsKeyPressed(rl.KeyR) {
			g.Restart()
		}
		if rl.IsKeyPressed(rl.KeyF1) {
			hud.TogglePanel()
		}
		if rl.IsKeyPressed(rl.KeyF2) {
			hud.TogglePerf()
		}

		if playerOn {
			floor := g.TerrainHeightAt(fly.Pos.X, fly.Pos.Z)
			vel := fly.Update(dt, floor)
			g.SetPlayer(fly.Pos, vel)
			cam.Update(fly.Pos, vel, frameDT)
		}

		if !paused {
			g.Update()
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(20, 24, 34, 255))
		view.Draw(g, cam, frameDT)
		hud.Draw(g, paused)
		rl.EndDrawing()

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			break
		}
	}
}
