package systems

import "github.com/pthm-cable/skyswarm/config"

// SpeedMultiplier returns the zone's speed multiplier applied to an agent's
// cruise speed.
//
// The table is not monotonic in distance: the danger band multiplier sits
// above the attack band so that point-blank drones break away hard instead
// of loitering on the player. Preserve the inversion when retuning.
func SpeedMultiplier(z Zone, cfg *config.ZonesConfig) float32 {
	switch z {
	case ZoneWarp:
		return float32(cfg.WarpMultiplier)
	case ZoneSprint:
		return float32(cfg.SprintMultiplier)
	case ZoneCombat:
		return float32(cfg.CombatMultiplier)
	case ZoneAttack:
		return float32(cfg.AttackMultiplier)
	default:
		return float32(cfg.DangerMultiplier)
	}
}
