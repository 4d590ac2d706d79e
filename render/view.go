// Package render draws the debug view: terrain patches, chunk props, agents
// colored by engagement zone, projectiles and transient effects. The core
// simulation never imports raylib; this package pulls snapshots from it.
package render

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/skyswarm/camera"
	"github.com/pthm-cable/skyswarm/components"
	"github.com/pthm-cable/skyswarm/config"
	"github.com/pthm-cable/skyswarm/game"
	"github.com/pthm-cable/skyswarm/systems"
)

// prop is a static visual spawned by the core for chunk content.
type prop struct {
	kind    game.VisualKind
	x, y, z float32
	scale   float32
}

// effect is a short-lived explosion marker.
type effect struct {
	kind    game.EffectKind
	x, y, z float32
	age     float32
}

// View implements game.RenderPort and owns all drawing state.
type View struct {
	props   map[uint32]prop
	effects []effect

	coordBuf []components.ChunkCoord
}

// NewView creates an empty view.
func NewView() *View {
	return &View{
		props: make(map[uint32]prop),
	}
}

// SpawnVisual stores a static prop. Agent and missile visuals are drawn from
// per-frame snapshots instead, so those kinds are dropped here.
func (v *View) SpawnVisual(kind game.VisualKind, id uint32, x, y, z, scale float32) {
	switch kind {
	case game.VisualDrone, game.VisualMissile:
		return
	}
	v.props[id] = prop{kind: kind, x: x, y: y, z: z, scale: scale}
}

// DespawnVisual removes a prop.
func (v *View) DespawnVisual(id uint32) {
	delete(v.props, id)
}

// SpawnEffect queues a transient explosion.
func (v *View) SpawnEffect(kind game.EffectKind, x, y, z float32) {
	v.effects = append(v.effects, effect{kind: kind, x: x, y: y, z: z})
}

const effectDuration = 0.6

// zoneColors maps engagement zones to agent tints, warp (calm) through
// danger (hot).
var zoneColors = [systems.NumZones]rl.Color{
	systems.ZoneWarp:   rl.SkyBlue,
	systems.ZoneSprint: rl.Lime,
	systems.ZoneCombat: rl.Yellow,
	systems.ZoneAttack: rl.Orange,
	systems.ZoneDanger: rl.Red,
}

// Draw renders one frame inside an open drawing context.
func (v *View) Draw(g *game.Game, cam *camera.Chase, frameDT float32) {
	cfg := config.Cfg()

	rlCam := rl.Camera3D{
		Position:   rl.Vector3{X: cam.Eye.X, Y: cam.Eye.Y, Z: cam.Eye.Z},
		Target:     rl.Vector3{X: cam.Target.X, Y: cam.Target.Y, Z: cam.Target.Z},
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       60,
		Projection: rl.CameraPerspective,
	}

	rl.BeginMode3D(rlCam)

	v.drawChunks(g, float32(cfg.World.ChunkSize))
	v.drawProps()
	v.drawAgents(g)
	v.drawProjectiles(g)
	v.drawPlayer(g)
	v.drawEffects(frameDT)

	rl.EndMode3D()
}

// drawChunks draws a coarse terrain patch per resident chunk plus its
// boundary, so streaming churn is visible at a glance.
func (v *View) drawChunks(g *game.Game, chunkSize float32) {
	v.coordBuf = g.ResidentChunkCoords(v.coordBuf[:0])

	const cells = 4
	step := chunkSize / cells

	for _, c := range v.coordBuf {
		x0 := float32(c.X) * chunkSize
		z0 := float32(c.Z) * chunkSize

		for i := 0; i < cells; i++ {
			for j := 0; j < cells; j++ {
				cx := x0 + (float32(i)+0.5)*step
				cz := z0 + (float32(j)+0.5)*step
				h := g.TerrainHeightAt(cx, cz)

				shade := uint8(60 + (i+j)%2*12)
				rl.DrawPlane(
					rl.Vector3{X: cx, Y: h, Z: cz},
					rl.Vector2{X: step, Y: step},
					rl.NewColor(shade, shade+30, shade, 255),
				)
			}
		}

		// Chunk boundary at terrain height of its corners
		h := g.TerrainHeightAt(x0+chunkSize/2, z0+chunkSize/2) + 1
		rl.DrawLine3D(
			rl.Vector3{X: x0, Y: h, Z: z0},
			rl.Vector3{X: x0 + chunkSize, Y: h, Z: z0},
			rl.Fade(rl.DarkGray, 0.5),
		)
		rl.DrawLine3D(
			rl.Vector3{X: x0, Y: h, Z: z0},
			rl.Vector3{X: x0, Y: h, Z: z0 + chunkSize},
			rl.Fade(rl.DarkGray, 0.5),
		)
	}
}

func (v *View) drawProps() {
	for _, p := range v.props {
		pos := rl.Vector3{X: p.x, Y: p.y, Z: p.z}
		switch p.kind {
		case game.VisualTree:
			rl.DrawCylinder(pos, 0.5*p.scale, 2*p.scale, 8*p.scale, 6, rl.DarkGreen)
		case game.VisualRock:
			rl.DrawCube(pos, 3*p.scale, 2*p.scale, 3*p.scale, rl.Gray)
		case game.VisualVillage:
			rl.DrawCube(pos, 12, 6, 12, rl.Brown)
		case game.VisualHazard:
			rl.DrawSphereWires(pos, p.scale, 8, 8, rl.Fade(rl.Purple, 0.4))
		case game.VisualTurret:
			rl.DrawCylinder(pos, 3*p.scale, 2*p.scale, 5*p.scale, 6, rl.DarkGray)
			barrel := rl.Vector3{X: p.x, Y: p.y + 6*p.scale, Z: p.z}
			rl.DrawCubeWires(barrel, 2, 2, 2, rl.Red)
		}
	}
}

func (v *View) drawAgents(g *game.Game) {
	g.Agents(func(a game.AgentView) {
		pos := rl.Vector3{X: a.X, Y: a.Y, Z: a.Z}
		color := zoneColors[a.Zone]
		if a.Role == components.RoleKamikaze {
			rl.DrawCube(pos, 3, 3, 3, rl.Maroon)
			rl.DrawCubeWires(pos, 3, 3, 3, color)
		} else {
			rl.DrawCube(pos, 4, 1.5, 4, color)
		}

		// Velocity stub
		tip := rl.Vector3{X: a.X + a.VX*0.1, Y: a.Y + a.VY*0.1, Z: a.Z + a.VZ*0.1}
		rl.DrawLine3D(pos, tip, rl.Fade(color, 0.6))
	})
}

func (v *View) drawProjectiles(g *game.Game) {
	g.LiveProjectiles(func(p game.ProjectileView) {
		pos := rl.Vector3{X: p.X, Y: p.Y, Z: p.Z}
		switch p.Kind {
		case systems.WeaponMissile:
			rl.DrawSphere(pos, 1.5, rl.White)
		case systems.WeaponTurret:
			rl.DrawSphere(pos, 1.5, rl.Red)
		default:
			rl.DrawSphere(pos, 0.5, rl.Yellow)
		}
	})
}

func (v *View) drawPlayer(g *game.Game) {
	p := g.PlayerState()
	if !p.Present {
		return
	}
	pos := rl.Vector3{X: p.Pos.X, Y: p.Pos.Y, Z: p.Pos.Z}
	rl.DrawCube(pos, 6, 2, 8, rl.Blue)
	rl.DrawCubeWires(pos, 6, 2, 8, rl.White)
}

// drawEffects draws and ages explosion markers, compacting expired ones.
func (v *View) drawEffects(frameDT float32) {
	n := 0
	for i := range v.effects {
		e := &v.effects[i]
		e.age += frameDT
		if e.age >= effectDuration {
			continue
		}

		t := e.age / effectDuration
		radius := float32(4 + 20*t)
		if e.kind == game.EffectBigExplosion {
			radius *= 2
		}
		rl.DrawSphereWires(
			rl.Vector3{X: e.x, Y: e.y, Z: e.z},
			radius, 8, 8,
			rl.Fade(rl.Orange, 1-t),
		)

		v.effects[n] = *e
		n++
	}
	v.effects = v.effects[:n]
}
