package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowEndTick int32   `csv:"window_end"`
	SimTimeSec    float64 `csv:"sim_time"`

	// Population at window end
	AgentCount int `csv:"agents"`

	// Lifecycle events during the window
	SpawnsSwarm    int `csv:"spawns_swarm"`
	SpawnsKamikaze int `csv:"spawns_kamikaze"`
	Destroyed      int `csv:"destroyed"`
	KamikazeHits   int `csv:"kamikaze_hits"`
	LeashDespawns  int `csv:"leash_despawns"`
	ChunkDespawns  int `csv:"chunk_despawns"`
	UnstableResets int `csv:"unstable_resets"`

	// Chunk streaming churn
	ChunksLoaded   int `csv:"chunks_loaded"`
	ChunksUnloaded int `csv:"chunks_unloaded"`

	// Weapon activity
	MissilesFired    int `csv:"missiles_fired"`
	GunRoundsFired   int `csv:"gun_rounds_fired"`
	TurretShots      int `csv:"turret_shots"`
	BlockedCooldown  int `csv:"blocked_cooldown"`
	BlockedRange     int `csv:"blocked_range"`
	BlockedBearing   int `csv:"blocked_bearing"`
	BlockedDirector  int `csv:"blocked_director"`
	MissilesInFlight int `csv:"missiles_in_flight"`

	// Zone occupancy at window end
	ZoneWarp   int `csv:"zone_warp"`
	ZoneSprint int `csv:"zone_sprint"`
	ZoneCombat int `csv:"zone_combat"`
	ZoneAttack int `csv:"zone_attack"`
	ZoneDanger int `csv:"zone_danger"`

	// Distance-to-player distribution at window end
	DistanceMean float64 `csv:"dist_mean"`
	DistanceStd  float64 `csv:"dist_std"`
	DistanceP10  float64 `csv:"dist_p10"`
	DistanceP50  float64 `csv:"dist_p50"`
	DistanceP90  float64 `csv:"dist_p90"`
}

// DistanceStats summarizes a distance sample. Returns zeros for an empty
// sample so a playerless window still produces a row.
func DistanceStats(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, variance := stat.MeanVariance(sorted, nil)
	if len(sorted) < 2 {
		variance = 0
	}
	std = 0
	if variance > 0 {
		std = stat.StdDev(sorted, nil)
	}

	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, std, p10, p50, p90
}
