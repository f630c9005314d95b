// Package voxel defines the map storage the arena mode consumes and a
// sparse in-memory implementation used by the dedicated server.
package voxel

import (
	"math"

	"github.com/automoto/voxel-arena/shared/gamemath"
)

// Map is the voxel storage collaborator. Coordinates outside
// [0,512)x[0,512)x[0,64) are never solid and can't be changed.
type Map interface {
	IsSolid(x, y, z int) bool
	// Destroy removes the voxel at (x, y, z) and returns how many voxels
	// were removed.
	Destroy(x, y, z int) int
	// Build places a voxel and reports whether it was placed.
	Build(x, y, z int, color uint32) bool
	// GroundHeight returns the first solid z at or below startZ.
	GroundHeight(x, y, startZ int) int
	// SafeCoords clamps a world position to a buildable voxel coordinate.
	SafeCoords(x, y, z float64) (int, int, int)
}

const (
	// Depth is the number of z layers. Z grows downward.
	Depth = 64
	// WaterLevel is the bottom layer, always solid.
	WaterLevel = Depth - 1
	// IndestructibleLevel is the first layer that explosions can't carve.
	IndestructibleLevel = Depth - 2
)

// InBounds reports whether (x, y, z) is a storable voxel.
func InBounds(x, y, z int) bool {
	return x >= 0 && x < gamemath.MapWidth &&
		y >= 0 && y < gamemath.MapHeight &&
		z >= 0 && z < Depth
}

// CastRay walks from origin along dir for at most length units and returns
// the first solid voxel after the origin cell.
func CastRay(m Map, origin, dir gamemath.Vec3, length float64) (gamemath.Point, bool) {
	tr := gamemath.LineRasterizer(origin, dir, length)
	tr.Next()
	for tr.Next() {
		p := tr.Point()
		if m.IsSolid(p.X, p.Y, p.Z) {
			return p, true
		}
	}
	return gamemath.Point{}, false
}

// LineOfSight reports whether no solid voxel lies strictly between from
// and to.
func LineOfSight(m Map, from, to gamemath.Vec3) bool {
	target := to.Floor()
	tr := gamemath.CubeLine(from.Floor(), target)
	tr.Next()
	for tr.Next() {
		p := tr.Point()
		if p == target {
			return true
		}
		if m.IsSolid(p.X, p.Y, p.Z) {
			return false
		}
	}
	return !tr.Exited()
}

// DropLocation returns the resting point for an item released at pos: the
// clamped column's ground surface.
func DropLocation(m Map, pos gamemath.Vec3) gamemath.Vec3 {
	x, y, z := m.SafeCoords(pos.X, pos.Y, pos.Z)
	return gamemath.Vec3{X: float64(x), Y: float64(y), Z: float64(m.GroundHeight(x, y, z))}
}

func clampInt(v float64, lo, hi int) int {
	f := math.Floor(v)
	if math.IsNaN(f) || f < float64(lo) {
		return lo
	}
	if f > float64(hi) {
		return hi
	}
	return int(f)
}
