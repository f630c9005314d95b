package gamemath

import "math"

// MaxBlastDamage caps the damage a single explosion can deal to one target.
const MaxBlastDamage = 100.0

// nearDistanceSq is the squared distance below which a target takes the
// full blast.
const nearDistanceSq = 1e-3

// BlastDamage returns the damage of an explosion with blast radius r at a
// squared distance distSq: 3r²/d² capped at MaxBlastDamage.
func BlastDamage(r, distSq float64) float64 {
	if distSq <= nearDistanceSq {
		return MaxBlastDamage
	}
	return math.Min(3*r*r/distSq, MaxBlastDamage)
}

// InBlastCube reports whether offset d lies strictly inside the axis-aligned
// cube of half-width r.
func InBlastCube(d Vec3, r float64) bool {
	return math.Abs(d.X) < r && math.Abs(d.Y) < r && math.Abs(d.Z) < r
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
