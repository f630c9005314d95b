package gamemath

import "math"

// Vec3 is a position or direction in world space. Z grows downward.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(k float64) Vec3 {
	return Vec3{v.X * k, v.Y * k, v.Z * k}
}

// LenSq returns the squared Euclidean length.
func (v Vec3) LenSq() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Floor truncates toward negative infinity on every axis.
func (v Vec3) Floor() Point {
	return Point{int(math.Floor(v.X)), int(math.Floor(v.Y)), int(math.Floor(v.Z))}
}

// IsFinite reports whether every component is a finite number.
func (v Vec3) IsFinite() bool {
	return !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0) &&
		!math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z)
}

// Point is an integer voxel coordinate.
type Point struct {
	X, Y, Z int
}

// Vec returns the corner of the voxel as a world position.
func (p Point) Vec() Vec3 {
	return Vec3{float64(p.X), float64(p.Y), float64(p.Z)}
}

// Center returns the horizontal center of the voxel at its top face.
func (p Point) Center() Vec3 {
	return Vec3{float64(p.X) + 0.5, float64(p.Y) + 0.5, float64(p.Z)}
}

// Collides reports whether a and b are closer than distance on every axis.
// This is the proximity test used for pickups, captures and defusing.
func Collides(a, b Vec3, distance float64) bool {
	return math.Abs(a.X-b.X) < distance &&
		math.Abs(a.Y-b.Y) < distance &&
		math.Abs(a.Z-b.Z) < distance
}

// DefaultCollisionDistance is the proximity radius used by Collides callers
// that have no more specific distance.
const DefaultCollisionDistance = 3.0

// FromArray converts a wire position.
func FromArray(a [3]float64) Vec3 {
	return Vec3{X: a[0], Y: a[1], Z: a[2]}
}
