package game

import (
	"math"
	"testing"

	"github.com/pthm-cable/skyswarm/components"
	"github.com/pthm-cable/skyswarm/config"
	"github.com/pthm-cable/skyswarm/systems"
)

func init() {
	config.MustInit("")
}

func newTestGame() *Game {
	return NewGameWithOptions(Options{Seed: 42, StepsPerUpdate: 1})
}

func TestInitialState(t *testing.T) {
	g := newTestGame()
	cfg := config.Cfg()

	if g.AliveCount() != cfg.Drone.InitialWave {
		t.Errorf("alive = %d, want initial wave %d", g.AliveCount(), cfg.Drone.InitialWave)
	}
	if g.ResidentChunks() != 0 {
		t.Errorf("chunks resident before first tick: %d", g.ResidentChunks())
	}
	if g.PlayerState().Present {
		t.Errorf("player present before SetPlayer")
	}
}

func TestFirstTickLoadsWindow(t *testing.T) {
	g := newTestGame()
	cfg := config.Cfg()

	g.SetPlayer(systems.Vec3{Y: 500}, systems.Vec3{Z: -100})
	g.UpdateHeadless()

	side := 2*cfg.World.LoadRadiusChunks + 1
	if g.ResidentChunks() != side*side {
		t.Errorf("resident = %d, want %d", g.ResidentChunks(), side*side)
	}
	if g.Tick() != 1 {
		t.Errorf("tick = %d, want 1", g.Tick())
	}
}

func TestAbsentPlayerHolds(t *testing.T) {
	g := newTestGame()

	type snap struct{ x, y, z float32 }
	before := map[uint32]snap{}
	g.Agents(func(a AgentView) { before[a.ID] = snap{a.X, a.Y, a.Z} })

	for i := 0; i < 10; i++ {
		g.UpdateHeadless()
	}

	// No player signal: no steering and no attrition. A fresh wave has zero
	// velocity, so nothing moves either.
	count := 0
	g.Agents(func(a AgentView) {
		count++
		b, ok := before[a.ID]
		if !ok {
			t.Errorf("agent %d appeared without a player", a.ID)
			return
		}
		if a.X != b.x || a.Y != b.y || a.Z != b.z {
			t.Errorf("agent %d moved without a player", a.ID)
		}
	})
	if count != len(before) {
		t.Errorf("agent count changed: %d -> %d", len(before), count)
	}
	if g.MissilesInFlight() != 0 {
		t.Errorf("weapons fired without a player")
	}
}

func TestAbsentPlayerAgentsCoast(t *testing.T) {
	g := newTestGame()
	g.SetPlayer(systems.Vec3{Y: 500}, systems.Vec3{})
	for i := 0; i < 30; i++ {
		g.UpdateHeadless()
	}
	g.ClearPlayer()

	type snap struct{ x, z, vx, vz float32 }
	before := map[uint32]snap{}
	g.Agents(func(a AgentView) { before[a.ID] = snap{a.X, a.Z, a.VX, a.VZ} })

	for i := 0; i < 10; i++ {
		g.UpdateHeadless()
	}

	// Mid-flight agents keep their last committed velocity and continue on
	// it; only the terrain floor may touch the vertical component.
	coasted := 0
	g.Agents(func(a AgentView) {
		b, ok := before[a.ID]
		if !ok {
			return
		}
		if a.VX != b.vx || a.VZ != b.vz {
			t.Errorf("agent %d was steered without a player", a.ID)
		}
		if a.X != b.x || a.Z != b.z {
			coasted++
		}
	})
	if coasted == 0 {
		t.Errorf("no agent coasted after the player signal dropped")
	}
}

func TestAgentsMoveTowardPlayer(t *testing.T) {
	g := newTestGame()

	player := systems.Vec3{X: 0, Y: 500, Z: 0}
	g.SetPlayer(player, systems.Vec3{})

	before := map[uint32]float32{}
	g.Agents(func(a AgentView) {
		before[a.ID] = systems.Vec3{X: a.X - player.X, Y: a.Y - player.Y, Z: a.Z - player.Z}.Length()
	})

	for i := 0; i < 120; i++ { // 2 seconds
		g.UpdateHeadless()
	}

	closed := 0
	g.Agents(func(a AgentView) {
		b, ok := before[a.ID]
		if !ok {
			return // patrol drone spawned after the snapshot
		}
		d := systems.Vec3{X: a.X - player.X, Y: a.Y - player.Y, Z: a.Z - player.Z}.Length()
		if d < b {
			closed++
		}
	})
	if closed == 0 {
		t.Errorf("no agent closed on the player after 2s")
	}
}

func TestSwarmConvergesWithoutCollapsing(t *testing.T) {
	if testing.Short() {
		t.Skip("minute-long simulation")
	}

	// A bare three-drone flock against a stationary target: no patrols, no
	// hazards, no kamikazes, so only pursuit and flocking shape the motion.
	cfg := config.Cfg()
	restore := *cfg
	cfg.Drone.InitialWave = 3
	cfg.World.PatrolChance = 0
	cfg.World.HazardsPerChunkMax = 0
	cfg.World.KamikazeChance = 0
	defer func() { *cfg = restore }()

	g := NewGameWithOptions(Options{Seed: 7, StepsPerUpdate: 1})
	g.SetPlayer(systems.Vec3{Y: 500}, systems.Vec3{})

	const warmup, measure = 3000, 600
	minPairwise := float32(math.MaxFloat32)
	var maxSpread float32

	for tick := 0; tick < warmup+measure; tick++ {
		g.UpdateHeadless()
		if tick < warmup {
			continue
		}

		var pts []systems.Vec3
		g.Agents(func(a AgentView) {
			pts = append(pts, systems.Vec3{X: a.X, Y: a.Y, Z: a.Z})
		})
		if len(pts) != 3 {
			t.Fatalf("flock size changed to %d at tick %d", len(pts), tick)
		}

		var centroid systems.Vec3
		for _, p := range pts {
			centroid = centroid.Add(p)
		}
		centroid = centroid.Scale(1.0 / 3.0)

		for i, p := range pts {
			if d := p.Sub(centroid).Length(); d > maxSpread {
				maxSpread = d
			}
			for j := i + 1; j < len(pts); j++ {
				if d := p.Sub(pts[j]).Length(); d < minPairwise {
					minPairwise = d
				}
			}
		}
	}

	// Separation keeps the flock from collapsing onto a point; cohesion and
	// shared pursuit keep it from scattering.
	if minPairwise < 2 {
		t.Errorf("min pairwise separation %.1fm, flock collapsed", minPairwise)
	}
	if maxSpread > 500 {
		t.Errorf("max centroid spread %.1fm, flock dispersed", maxSpread)
	}
}

func TestLeashRemoval(t *testing.T) {
	cfg := config.Cfg()
	leash := float32(cfg.Drone.LeashDistance)

	run := func(offset float32) (survived bool, id uint32) {
		g := NewGameWithOptions(Options{Seed: 42, StepsPerUpdate: 1})

		var ax, ay, az float32
		picked := false
		g.Agents(func(a AgentView) {
			if !picked {
				id, ax, ay, az = a.ID, a.X, a.Y, a.Z
				picked = true
			}
		})
		if !picked {
			t.Fatalf("no agents in wave")
		}

		g.SetPlayer(systems.Vec3{X: ax + offset, Y: ay, Z: az}, systems.Vec3{})
		g.UpdateHeadless()

		g.Agents(func(a AgentView) {
			if a.ID == id {
				survived = true
			}
		})
		return survived, id
	}

	if ok, id := run(leash + 100); ok {
		t.Errorf("agent %d beyond the leash survived", id)
	}
	if ok, id := run(leash - 100); !ok {
		t.Errorf("agent %d inside the leash was removed", id)
	}
}

func TestDamageDestroysAgent(t *testing.T) {
	g := newTestGame()
	g.SetPlayer(systems.Vec3{Y: 500, Z: 2000}, systems.Vec3{})
	g.UpdateHeadless() // load the window so patrol spawns settle

	var target uint32
	g.Agents(func(a AgentView) {
		if target == 0 {
			target = a.ID
		}
	})

	before := g.AliveCount()
	g.DamageDrone(target, 1000)
	g.UpdateHeadless()

	if g.AliveCount() != before-1 {
		t.Errorf("alive = %d, want %d after lethal damage", g.AliveCount(), before-1)
	}
	g.Agents(func(a AgentView) {
		if a.ID == target {
			t.Errorf("destroyed agent %d still present", target)
		}
	})

	// Partial damage does not kill.
	var second uint32
	g.Agents(func(a AgentView) {
		if second == 0 {
			second = a.ID
		}
	})
	g.DamageDrone(second, 10)
	g.UpdateHeadless()
	found := false
	g.Agents(func(a AgentView) {
		if a.ID == second {
			found = true
			if a.Health != float32(config.Cfg().Drone.Health)-10 {
				t.Errorf("health = %f, want %f", a.Health, config.Cfg().Drone.Health-10)
			}
		}
	})
	if !found {
		t.Errorf("agent %d removed by nonlethal damage", second)
	}
}

func TestKamikazeDetonatesAtContact(t *testing.T) {
	g := newTestGame()

	var kx, ky, kz float32
	var id uint32
	g.Agents(func(a AgentView) {
		if id == 0 && a.Role == components.RoleKamikaze {
			id, kx, ky, kz = a.ID, a.X, a.Y, a.Z
		}
	})
	if id == 0 {
		t.Skip("no kamikaze in this wave")
	}

	// Player right on top of it: inside the proximity range.
	g.SetPlayer(systems.Vec3{X: kx, Y: ky, Z: kz}, systems.Vec3{})
	g.UpdateHeadless()

	g.Agents(func(a AgentView) {
		if a.ID == id {
			t.Errorf("kamikaze %d survived contact", id)
		}
	})
}

func TestSameTickSpawnFliesImmediately(t *testing.T) {
	g := newTestGame()
	g.SetPlayer(systems.Vec3{Y: 500}, systems.Vec3{})

	// Residency runs before AI: the patrols loaded on this very tick must
	// already carry velocity from their first AI pass.
	g.UpdateHeadless()

	still := 0
	g.Agents(func(a AgentView) {
		if a.VX == 0 && a.VY == 0 && a.VZ == 0 {
			still++
		}
	})
	if still != 0 {
		t.Errorf("%d agents had no velocity after their first tick", still)
	}
}

func TestMissileFireRespectsGlobalCap(t *testing.T) {
	g := newTestGame()
	cfg := config.Cfg()

	// Player parked inside the missile envelope of the whole wave.
	g.SetPlayer(systems.Vec3{Y: 500, Z: -3400}, systems.Vec3{})
	for i := 0; i < 5; i++ {
		g.UpdateHeadless()
	}

	inFlight := g.MissilesInFlight()
	if inFlight == 0 {
		t.Errorf("no missiles launched inside the envelope")
	}
	if inFlight > cfg.Weapons.Missile.GlobalCap {
		t.Errorf("missiles in flight %d exceeds cap %d", inFlight, cfg.Weapons.Missile.GlobalCap)
	}
}

func TestTurretEngagesPlayer(t *testing.T) {
	g := newTestGame()

	g.SetPlayer(systems.Vec3{Y: 500}, systems.Vec3{})
	g.UpdateHeadless() // load the residency window

	// Isolate: drop whatever emplacements and shots chunk content produced.
	for k := range g.chunkTurrets {
		delete(g.chunkTurrets, k)
	}
	g.projectiles = g.projectiles[:0]
	g.director.Reset()

	coord := components.ChunkCoord{X: 0, Z: -1}
	// Ridge-top emplacements, above any terrain the shot could clip.
	g.chunkTurrets[coord] = []turret{
		{id: 9001, pos: systems.Vec3{Y: 200, Z: -800}, lastFire: components.NeverFired},
		{id: 9002, pos: systems.Vec3{Y: 200, Z: -9000}, lastFire: components.NeverFired},
	}

	g.UpdateHeadless()

	if got := g.director.InFlight(systems.WeaponTurret); got != 1 {
		t.Fatalf("turret in-flight = %d, want 1", got)
	}
	ts := g.chunkTurrets[coord]
	if ts[0].lastFire == components.NeverFired {
		t.Errorf("in-range turret never fired")
	}
	if ts[1].lastFire != components.NeverFired {
		t.Errorf("turret fired from beyond max range")
	}

	// No second shot inside the reload window.
	for i := 0; i < 10; i++ {
		g.UpdateHeadless()
	}
	shots := 0
	for _, p := range g.projectiles {
		if p.kind == systems.WeaponTurret {
			shots++
		}
	}
	if shots != 1 {
		t.Errorf("turret shots in flight = %d, want 1 inside the cooldown", shots)
	}

	// Emplacements leave with their chunk.
	far := float32(config.Cfg().World.ChunkSize) * 40
	g.SetPlayer(systems.Vec3{X: far, Y: 500, Z: far}, systems.Vec3{})
	g.UpdateHeadless()
	if _, ok := g.chunkTurrets[coord]; ok {
		t.Errorf("turret survived its chunk unload")
	}
}

// stageMissileLaunch acquires a director slot through the gate and records
// the launch, the same two steps the simulation performs on FireOK.
func stageMissileLaunch(t *testing.T, g *Game) {
	t.Helper()
	cfg := config.Cfg()
	th := systems.Threat{Distance: 1200, Bearing: 0, ToPlayer: systems.Vec3{Z: -1}, Zone: systems.ZoneCombat}
	if block := systems.GateFire(th, components.NeverFired, 100, cfg.Derived.MissileBearing,
		&cfg.Weapons.Missile, g.director, systems.WeaponMissile); block != systems.FireOK {
		t.Fatalf("staged fire blocked: %d", block)
	}
	g.launchProjectile(systems.WeaponMissile, systems.Vec3{Y: 500}, systems.Vec3{Z: -1}, 1)
}

func TestProjectileExpiredReleasesSlot(t *testing.T) {
	g := newTestGame()
	stageMissileLaunch(t, g)

	before := g.MissilesInFlight()
	g.ProjectileExpired(systems.WeaponMissile)
	if g.MissilesInFlight() != before-1 {
		t.Errorf("external expiry did not release the slot")
	}
	if len(g.projectiles) != 0 {
		t.Errorf("external expiry left the internal record behind")
	}
}

func TestProjectileExpiredReleasesOncePerProjectile(t *testing.T) {
	g := newTestGame()
	stageMissileLaunch(t, g)
	stageMissileLaunch(t, g)

	// Each signal consumes one tracked record. Extra signals with no record
	// left must not free slots that belong to nothing.
	g.ProjectileExpired(systems.WeaponMissile)
	g.ProjectileExpired(systems.WeaponMissile)
	if got := g.MissilesInFlight(); got != 0 {
		t.Fatalf("in-flight = %d after both signals, want 0", got)
	}

	g.ProjectileExpired(systems.WeaponMissile)
	if got := g.MissilesInFlight(); got != 0 {
		t.Errorf("spurious signal changed in-flight count to %d", got)
	}

	// Reverse order: when the TTL expires a projectile first, a late external
	// signal finds no record and must not release a second time.
	stageMissileLaunch(t, g)
	cfg := config.Cfg()
	g.updateProjectiles(float32(cfg.Weapons.Missile.LifetimeSec) + 1)
	if got := g.MissilesInFlight(); got != 0 {
		t.Fatalf("TTL expiry left in-flight = %d, want 0", got)
	}
	g.ProjectileExpired(systems.WeaponMissile)
	if got := g.MissilesInFlight(); got != 0 {
		t.Errorf("late signal after TTL expiry re-released, in-flight = %d", got)
	}
}

func TestUnstableAgentReset(t *testing.T) {
	g := newTestGame()
	g.SetPlayer(systems.Vec3{Y: 500}, systems.Vec3{})
	g.UpdateHeadless()

	// Corrupt one agent's state the way a physics blowup would.
	var victim uint32
	query := g.droneFilter.Query()
	for query.Next() {
		pos, _, d, _ := query.Get()
		if victim == 0 && d.Alive {
			pos.X = float32(math.NaN())
			victim = d.ID
		}
	}
	if victim == 0 {
		t.Fatalf("no live agent to corrupt")
	}

	before := g.AliveCount()
	g.UpdateHeadless()

	if g.AliveCount() != before {
		t.Errorf("sanity sweep removed instead of reset")
	}
	found := false
	g.Agents(func(a AgentView) {
		if a.ID != victim {
			return
		}
		found = true
		if !systems.Finite(a.X) {
			t.Errorf("agent %d still non-finite after sweep", victim)
		}
	})
	if !found {
		t.Errorf("corrupted agent %d despawned", victim)
	}
}

func TestChunkUnloadDespawnsOwnedDrones(t *testing.T) {
	g := newTestGame()
	cfg := config.Cfg()

	g.SetPlayer(systems.Vec3{Y: 500}, systems.Vec3{})
	g.UpdateHeadless()

	patrolIDs := map[uint32]bool{}
	for _, entities := range g.chunkDrones {
		for _, e := range entities {
			if d := g.droneMap.Get(e); d != nil && d.Alive {
				patrolIDs[d.ID] = true
			}
		}
	}
	if len(patrolIDs) == 0 {
		t.Skip("no patrols inside the initial window")
	}

	// Teleport the player far enough that every original chunk unloads.
	far := float32(cfg.World.UnloadRadiusChunks+cfg.World.LoadRadiusChunks+5) * float32(cfg.World.ChunkSize)
	g.SetPlayer(systems.Vec3{X: far, Y: 500}, systems.Vec3{})
	g.UpdateHeadless()

	g.Agents(func(a AgentView) {
		if patrolIDs[a.ID] {
			t.Errorf("patrol drone %d survived its chunk's unload", a.ID)
		}
	})
}

func TestRestart(t *testing.T) {
	g := newTestGame()
	cfg := config.Cfg()

	g.SetPlayer(systems.Vec3{Y: 500}, systems.Vec3{})
	for i := 0; i < 30; i++ {
		g.UpdateHeadless()
	}

	g.Restart()

	if g.AliveCount() != cfg.Drone.InitialWave {
		t.Errorf("alive after restart = %d, want %d", g.AliveCount(), cfg.Drone.InitialWave)
	}
	if g.MissilesInFlight() != 0 {
		t.Errorf("missiles in flight survived restart")
	}
	if len(g.projectiles) != 0 {
		t.Errorf("projectiles survived restart")
	}

	// The tick counter keeps running; restart is not a time reset.
	if g.Tick() != 30 {
		t.Errorf("tick = %d, want 30", g.Tick())
	}
}
