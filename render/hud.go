package render

import (
	"fmt"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/skyswarm/config"
	"github.com/pthm-cable/skyswarm/game"
)

// HUD renders the text overlay and the tuning panel.
type HUD struct {
	showPanel bool
	showPerf  bool
}

// NewHUD creates the overlay renderer.
func NewHUD() *HUD {
	return &HUD{}
}

// TogglePanel switches the tuning panel.
func (h *HUD) TogglePanel() { h.showPanel = !h.showPanel }

// TogglePerf switches the tick timing panel.
func (h *HUD) TogglePerf() { h.showPerf = !h.showPerf }

// Draw renders the overlay. Must run outside BeginMode3D.
func (h *HUD) Draw(g *game.Game, paused bool) {
	rl.DrawText("Skyswarm Debug View", 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | Agents: %d | Chunks: %d | Missiles: %d | FPS: %d",
			g.Tick(), g.AliveCount(), g.ResidentChunks(), g.MissilesInFlight(), rl.GetFPS()),
		10, 35, 16, rl.LightGray,
	)

	p := g.PlayerState()
	if p.Present {
		rl.DrawText(
			fmt.Sprintf("Player: (%.0f, %.0f, %.0f)", p.Pos.X, p.Pos.Y, p.Pos.Z),
			10, 55, 16, rl.LightGray,
		)
	} else {
		rl.DrawText("Player: absent (agents holding)", 10, 55, 16, rl.Yellow)
	}

	status := "Running"
	if paused {
		status = "PAUSED"
	}
	rl.DrawText(status, 10, 75, 16, rl.Yellow)

	screenH := int32(rl.GetScreenHeight())
	rl.DrawText(
		"WASD fly | Q/E climb/dive | Space pause | P player on/off | R restart | F1 tuning | F2 timing",
		10, screenH-25, 14, rl.Gray,
	)

	if h.showPanel {
		h.drawTuningPanel()
	}
	if h.showPerf {
		h.drawPerfPanel(g)
	}
}

// tuningSlider draws one labeled slider row and returns the new value.
func tuningSlider(x *float32, y *float32, label string, value, min, max float64) float64 {
	rl.DrawText(label, int32(*x), int32(*y), 14, rl.Gray)
	*y += 18

	v := gui.SliderBar(
		rl.Rectangle{X: *x, Y: *y, Width: 220, Height: 18},
		"", "",
		float32(value), float32(min), float32(max),
	)
	rl.DrawText(fmt.Sprintf("%.2f", v), int32(*x+228), int32(*y+2), 14, rl.White)
	*y += 28

	return float64(v)
}

// drawTuningPanel exposes the behavior parameters that matter most when
// watching the swarm: per-zone speed multipliers and flocking weights.
// Edits apply on the next tick through the shared config.
func (h *HUD) drawTuningPanel() {
	cfg := config.Cfg()

	screenW := float32(rl.GetScreenWidth())
	x := screenW - 300
	y := float32(10)

	rl.DrawRectangle(int32(x-10), 0, 310, 560, rl.Fade(rl.Black, 0.7))
	rl.DrawText("Tuning", int32(x), int32(y), 18, rl.White)
	y += 28

	cfg.Zones.WarpMultiplier = tuningSlider(&x, &y, "Warp speed x", cfg.Zones.WarpMultiplier, 1, 12)
	cfg.Zones.SprintMultiplier = tuningSlider(&x, &y, "Sprint speed x", cfg.Zones.SprintMultiplier, 1, 8)
	cfg.Zones.CombatMultiplier = tuningSlider(&x, &y, "Combat speed x", cfg.Zones.CombatMultiplier, 0.5, 4)
	cfg.Zones.AttackMultiplier = tuningSlider(&x, &y, "Attack speed x", cfg.Zones.AttackMultiplier, 0.5, 4)
	cfg.Zones.DangerMultiplier = tuningSlider(&x, &y, "Danger speed x", cfg.Zones.DangerMultiplier, 0.5, 6)

	cfg.Flocking.SeparationWeight = tuningSlider(&x, &y, "Separation", cfg.Flocking.SeparationWeight, 0, 4)
	cfg.Flocking.AlignmentWeight = tuningSlider(&x, &y, "Alignment", cfg.Flocking.AlignmentWeight, 0, 4)
	cfg.Flocking.CohesionWeight = tuningSlider(&x, &y, "Cohesion", cfg.Flocking.CohesionWeight, 0, 4)
	cfg.Flocking.AvoidWeight = tuningSlider(&x, &y, "Hazard avoid", cfg.Flocking.AvoidWeight, 0, 8)
	cfg.Flocking.WeaveAmplitude = tuningSlider(&x, &y, "Weave amplitude", cfg.Flocking.WeaveAmplitude, 0, 2)
}

// drawPerfPanel lists per-phase tick timings.
func (h *HUD) drawPerfPanel(g *game.Game) {
	perf := g.Perf()

	x := int32(10)
	y := int32(100)

	rl.DrawText("Tick timing", x, y, 16, rl.White)
	y += 20

	total := perf.Total()
	rl.DrawText(fmt.Sprintf("Total: %s", total.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range perf.SortedNames() {
		avg := perf.Avg(name)
		pct := float64(0)
		if total > 0 {
			pct = float64(avg) / float64(total) * 100
		}

		color := rl.LightGray
		if pct > 30 {
			color = rl.Red
		}
		rl.DrawText(
			fmt.Sprintf("%-12s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			x, y, 14, color,
		)
		y += 16
	}
}
