package systems

// InterceptHeading computes a unit heading toward a lead-pursuit intercept
// point: the player's position extrapolated forward by the lookahead time.
// Chasing the current position instead produces a perpetually trailing curve
// against a faster, maneuvering target; the lead makes intercepts converge.
func InterceptHeading(agentPos, playerPos, playerVel Vec3, lookaheadSec float32) Vec3 {
	predicted := playerPos.Add(playerVel.Scale(lookaheadSec))
	return predicted.Sub(agentPos).Normalized()
}
