package systems

import (
	"math"

	"github.com/pthm-cable/skyswarm/config"
)

// Zone is a discrete engagement band derived from distance to the player.
// Zones are recomputed fresh every tick, never cached, so a stale zone can
// not outlive a fast-closing target.
type Zone uint8

const (
	ZoneWarp   Zone = iota // Far pursuit at warp multiplier
	ZoneSprint             // Closing fast
	ZoneCombat             // Combat maneuvering, missile envelope
	ZoneAttack             // Gun attack and aiming
	ZoneDanger             // Point blank, break away
)

// String returns the zone name for logging and telemetry.
func (z Zone) String() string {
	switch z {
	case ZoneWarp:
		return "warp"
	case ZoneSprint:
		return "sprint"
	case ZoneCombat:
		return "combat"
	case ZoneAttack:
		return "attack"
	default:
		return "danger"
	}
}

// NumZones is the count of engagement bands.
const NumZones = 5

// Threat is the per-tick assessment of one agent against the player.
type Threat struct {
	Distance float32
	Bearing  float32 // Radians between agent heading and line to player
	ToPlayer Vec3    // Unit vector from agent to player
	Zone     Zone
}

// ZoneFor maps a distance to its engagement zone using plain thresholds.
func ZoneFor(distance float32, cfg *config.ZonesConfig) Zone {
	switch {
	case distance > float32(cfg.WarpDistance):
		return ZoneWarp
	case distance > float32(cfg.SprintDistance):
		return ZoneSprint
	case distance > float32(cfg.CombatDistance):
		return ZoneCombat
	case distance > float32(cfg.AttackDistance):
		return ZoneAttack
	default:
		return ZoneDanger
	}
}

// AssessThreat computes distance, bearing and engagement zone for one agent.
// heading should be the agent's current velocity direction; a stationary
// agent gets a zero bearing so it is never bearing-blocked on its first tick.
func AssessThreat(agentPos, agentVel, playerPos Vec3, cfg *config.ZonesConfig) Threat {
	rel := playerPos.Sub(agentPos)
	dist := rel.Length()

	t := Threat{
		Distance: dist,
		ToPlayer: rel.Normalized(),
		Zone:     ZoneFor(dist, cfg),
	}

	heading := agentVel.Normalized()
	if heading.LengthSq() > 0 && dist > 0 {
		cos := heading.Dot(t.ToPlayer)
		if cos > 1 {
			cos = 1
		} else if cos < -1 {
			cos = -1
		}
		t.Bearing = float32(math.Acos(float64(cos)))
	}

	return t
}
