package systems

// Finite reports whether a scalar is a usable number.
func Finite(f float32) bool {
	return finite(f)
}

// FiniteState reports whether a position/velocity pair is numerically sound.
// Upstream physics instability can push NaN or Inf into an agent's state; the
// sweep at the start of each tick uses this to clamp-and-continue instead of
// letting one bad agent poison every neighbor query.
func FiniteState(pos, vel Vec3) bool {
	return pos.IsFinite() && vel.IsFinite()
}
