package systems

import (
	"math"

	"github.com/pthm-cable/skyswarm/config"
)

// FlockNeighbor is a nearby swarm mate seen by the flocking pass. Delta and
// Vel are snapshots from the start of the tick, so iteration order inside a
// tick cannot influence the result.
type FlockNeighbor struct {
	Delta  Vec3 // From self to neighbor
	DistSq float32
	Vel    Vec3
}

// HazardSphere is an obstacle the swarm steers around.
type HazardSphere struct {
	Center Vec3
	Radius float32
}

// FlockContext carries everything beyond pure pursuit that shapes a swarm
// drone's heading this tick.
type FlockContext struct {
	Self      Vec3
	Neighbors []FlockNeighbor
	Hazards   []HazardSphere

	// LeaderDelta points from self to the patrol leader. nil when the leader
	// is dead or despawned; the drone then relies on plain neighbor cohesion.
	LeaderDelta *Vec3

	// Time and WeavePhase drive the sinusoidal weave term.
	Time       float32
	WeavePhase float32
}

// SwarmHeading blends the intercept heading with separation, alignment,
// cohesion, hazard repulsion and the weave term, returning a unit heading.
// Pursuit stays dominant; the flocking terms perturb it.
//
// Kamikaze drones never call this: they have no flock to hold together and
// no reason to dodge anything.
func SwarmHeading(pursuit Vec3, fc FlockContext, cfg *config.FlockingConfig) Vec3 {
	steer := pursuit

	sep, align, coh := flockTerms(fc.Neighbors, float32(cfg.SeparationRadius))
	steer = steer.Add(sep.Scale(float32(cfg.SeparationWeight)))
	steer = steer.Add(align.Scale(float32(cfg.AlignmentWeight)))
	steer = steer.Add(coh.Scale(float32(cfg.CohesionWeight)))

	if fc.LeaderDelta != nil {
		steer = steer.Add(fc.LeaderDelta.Normalized().Scale(float32(cfg.LeaderWeight)))
	}

	steer = steer.Add(avoidHazards(fc.Self, fc.Hazards, cfg))

	if cfg.WeaveAmplitude > 0 {
		steer = steer.Add(weave(pursuit, fc.Time, fc.WeavePhase, cfg))
	}

	return steer.Normalized()
}

// flockTerms computes the three classic boid accumulators in one pass.
func flockTerms(neighbors []FlockNeighbor, sepRadius float32) (sep, align, coh Vec3) {
	if len(neighbors) == 0 {
		return
	}

	sepRadiusSq := sepRadius * sepRadius
	var velSum, posSum Vec3

	for _, n := range neighbors {
		// Separation: push away from too-close mates, harder when closer.
		if n.DistSq < sepRadiusSq && n.DistSq > 1e-6 {
			dist := float32(math.Sqrt(float64(n.DistSq)))
			away := n.Delta.Scale(-1 / dist) // unit vector away
			sep = sep.Add(away.Scale(sepRadius / dist))
		}
		velSum = velSum.Add(n.Vel)
		posSum = posSum.Add(n.Delta)
	}

	inv := 1 / float32(len(neighbors))
	align = velSum.Scale(inv).Normalized()
	coh = posSum.Scale(inv).Normalized() // toward neighbor centroid

	return sep.Normalized(), align, coh
}

// avoidHazards returns a repulsion vector away from any hazard inside the
// avoidance radius. The weight grows quadratically as distance shrinks so it
// dominates every other steering term just before contact.
func avoidHazards(self Vec3, hazards []HazardSphere, cfg *config.FlockingConfig) Vec3 {
	avoidRadius := float32(cfg.AvoidRadius)
	var out Vec3

	for _, h := range hazards {
		away := self.Sub(h.Center)
		dist := away.Length() - h.Radius
		if dist >= avoidRadius {
			continue
		}
		if dist < 1 {
			dist = 1
		}
		urgency := 1 - dist/avoidRadius
		out = out.Add(away.Normalized().Scale(float32(cfg.AvoidWeight) * urgency * urgency))
	}

	return out
}

// weave adds a low-frequency lateral oscillation so flight paths are harder
// to gun down. Purely a difficulty knob; amplitude 0 turns it off.
func weave(heading Vec3, t, phase float32, cfg *config.FlockingConfig) Vec3 {
	// A horizontal axis perpendicular to the heading.
	lateral := Vec3{-heading.Z, 0, heading.X}.Normalized()
	if lateral.LengthSq() == 0 {
		lateral = Vec3{X: 1}
	}
	s := float32(math.Sin(float64(t*float32(cfg.WeaveFrequency) + phase)))
	return lateral.Scale(float32(cfg.WeaveAmplitude) * s)
}
