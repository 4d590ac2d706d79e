// Package camera provides a 3D chase camera for the debug view.
package camera

import (
	"math"

	"github.com/pthm-cable/skyswarm/systems"
)

// Chase follows a target from behind and above with exponential smoothing,
// so abrupt target maneuvers read as a swing rather than a teleport.
type Chase struct {
	// Eye is the smoothed camera position in world coordinates.
	Eye systems.Vec3

	// Target is the smoothed look-at point.
	Target systems.Vec3

	// BackDistance and Height place the desired eye relative to the target,
	// opposite its velocity.
	BackDistance float32
	Height       float32

	// Stiffness controls smoothing speed; higher snaps faster. Units are
	// 1/seconds.
	Stiffness float32

	primed bool
}

// NewChase creates a chase camera with the given follow offsets.
func NewChase(backDistance, height, stiffness float32) *Chase {
	return &Chase{
		BackDistance: backDistance,
		Height:       height,
		Stiffness:    stiffness,
	}
}

// Update advances the camera toward its desired pose. targetVel picks the
// follow direction; a near-stationary target keeps the previous bearing.
func (c *Chase) Update(targetPos, targetVel systems.Vec3, dt float32) {
	back := systems.Vec3{X: 0, Y: 0, Z: 1}
	if targetVel.LengthSq() > 1 {
		back = targetVel.Normalized().Scale(-1)
	} else if c.primed {
		prev := c.Eye.Sub(c.Target)
		prev.Y = 0
		if prev.LengthSq() > 1e-6 {
			back = prev.Normalized()
		}
	}

	desired := targetPos.Add(back.Scale(c.BackDistance))
	desired.Y = targetPos.Y + c.Height

	if !c.primed {
		c.Eye = desired
		c.Target = targetPos
		c.primed = true
		return
	}

	// Exponential approach: frame-rate independent for varying dt.
	alpha := 1 - float32(math.Exp(float64(-c.Stiffness*dt)))
	c.Eye = c.Eye.Add(desired.Sub(c.Eye).Scale(alpha))
	c.Target = c.Target.Add(targetPos.Sub(c.Target).Scale(alpha))
}

// Snap moves the camera to its desired pose immediately. Used after respawns
// so the swing does not cross half the map.
func (c *Chase) Snap(targetPos, targetVel systems.Vec3) {
	c.primed = false
	c.Update(targetPos, targetVel, 0)
}
