package render

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/skyswarm/systems"
)

// FlyController is a minimal arcade flight model for driving the player
// signal by hand: constant forward speed, yaw and pitch on the keyboard.
type FlyController struct {
	Pos   systems.Vec3
	Yaw   float32 // Radians, 0 = -Z
	Pitch float32 // Radians, positive = nose up
	Speed float32
}

// NewFlyController creates a controller at the given start position.
func NewFlyController(start systems.Vec3, speed float32) *FlyController {
	return &FlyController{Pos: start, Speed: speed}
}

const (
	turnRate    = 1.6 // rad/s
	pitchRate   = 1.2
	maxPitch    = 1.2
	boostFactor = 3.0
	minAltitude = 10
)

// Update reads input, advances the player and returns its velocity.
func (f *FlyController) Update(dt float32, floorY float32) systems.Vec3 {
	if rl.IsKeyDown(rl.KeyA) {
		f.Yaw += turnRate * dt
	}
	if rl.IsKeyDown(rl.KeyD) {
		f.Yaw -= turnRate * dt
	}
	if rl.IsKeyDown(rl.KeyW) {
		f.Pitch -= pitchRate * dt
	}
	if rl.IsKeyDown(rl.KeyS) {
		f.Pitch += pitchRate * dt
	}
	if rl.IsKeyDown(rl.KeyQ) {
		f.Pitch += pitchRate * dt
	}
	if rl.IsKeyDown(rl.KeyE) {
		f.Pitch -= pitchRate * dt
	}
	if f.Pitch > maxPitch {
		f.Pitch = maxPitch
	}
	if f.Pitch < -maxPitch {
		f.Pitch = -maxPitch
	}

	speed := f.Speed
	if rl.IsKeyDown(rl.KeyLeftShift) {
		speed *= boostFactor
	}

	cosP := float32(math.Cos(float64(f.Pitch)))
	vel := systems.Vec3{
		X: -float32(math.Sin(float64(f.Yaw))) * cosP * speed,
		Y: float32(math.Sin(float64(f.Pitch))) * speed,
		Z: -float32(math.Cos(float64(f.Yaw))) * cosP * speed,
	}

	f.Pos = f.Pos.Add(vel.Scale(dt))
	if f.Pos.Y < floorY+minAltitude {
		f.Pos.Y = floorY + minAltitude
		if vel.Y < 0 {
			vel.Y = 0
		}
		if f.Pitch < 0 {
			f.Pitch = 0
		}
	}

	return vel
}
