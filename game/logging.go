package game

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/skyswarm/telemetry"
)

// logWindowStats emits a structured summary of one telemetry window plus the
// per-phase timing breakdown.
func (g *Game) logWindowStats(stats telemetry.WindowStats) {
	slog.Info("window stats",
		"tick", stats.WindowEndTick,
		"sim_time", stats.SimTimeSec,
		"agents", stats.AgentCount,
		"spawns_swarm", stats.SpawnsSwarm,
		"spawns_kamikaze", stats.SpawnsKamikaze,
		"destroyed", stats.Destroyed,
		"kamikaze_hits", stats.KamikazeHits,
		"leash_despawns", stats.LeashDespawns,
		"chunk_despawns", stats.ChunkDespawns,
		"chunks_loaded", stats.ChunksLoaded,
		"chunks_unloaded", stats.ChunksUnloaded,
		"missiles_fired", stats.MissilesFired,
		"gun_rounds_fired", stats.GunRoundsFired,
		"blocked_director", stats.BlockedDirector,
		"missiles_in_flight", stats.MissilesInFlight,
		"dist_mean", stats.DistanceMean,
		"dist_p50", stats.DistanceP50,
	)

	total := g.perf.Total()
	attrs := []any{"total", total.Round(time.Microsecond).String()}
	for _, name := range g.perf.SortedNames() {
		attrs = append(attrs, name, g.perf.Avg(name).Round(time.Microsecond).String())
	}
	slog.Debug("tick timing", attrs...)
}
