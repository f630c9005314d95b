package gamemath

// World bounds enforced by the line tracer. X and Y are half-open on
// [0, 512) and Z on [-63, 63).
const (
	MapWidth  = 512
	MapHeight = 512
	MinZ      = -63
	MaxZ      = 63
)

// Fixed-point scale of one voxel step along the dominant axis.
const lineStep = 1024

// Increment used for an axis whose delta is zero so that it is never chosen.
const lineSentinel = 0x3fffffff / 512

// DefaultRayLength is how far LineRasterizer projects when no length is
// given by the caller.
const DefaultRayLength = 256.0

// LineTracer enumerates every voxel a straight segment passes through using
// fixed-point arithmetic. It yields the start cell first and stops at the
// target, or earlier when the line leaves the world.
//
//	t := gamemath.CubeLine(a, b)
//	for t.Next() {
//		p := t.Point()
//	}
type LineTracer struct {
	cur, target Point
	step        Point
	inc         Point
	acc         Point

	started bool
	done    bool
	exited  bool
}

// CubeLine creates a tracer from a to b, both inclusive.
func CubeLine(a, b Point) *LineTracer {
	t := &LineTracer{cur: a, target: b}

	dx, dy, dz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
	t.step = Point{direction(dx), direction(dy), direction(dz)}

	ax, ay, az := abs(dx), abs(dy), abs(dz)
	switch {
	case ax >= ay && ax >= az:
		t.inc = Point{lineStep, ratio(dx, dy), ratio(dx, dz)}
	case ay >= az:
		t.inc = Point{ratio(dy, dx), lineStep, ratio(dy, dz)}
	default:
		t.inc = Point{ratio(dz, dx), ratio(dz, dy), lineStep}
	}

	t.acc = Point{
		accumulator(t.inc.X, t.step.X),
		accumulator(t.inc.Y, t.step.Y),
		accumulator(t.inc.Z, t.step.Z),
	}
	return t
}

// Next advances to the next cell and reports whether one is available.
func (t *LineTracer) Next() bool {
	if t.done {
		return false
	}
	if !t.started {
		t.started = true
		return true
	}
	if t.cur == t.target {
		t.done = true
		return false
	}

	// Z first: it has the tightest bounds.
	switch {
	case t.acc.Z <= t.acc.X && t.acc.Z <= t.acc.Y:
		t.cur.Z += t.step.Z
		t.acc.Z += t.inc.Z
		if t.cur.Z < MinZ || t.cur.Z >= MaxZ {
			return t.exit()
		}
	case t.acc.X < t.acc.Y:
		t.cur.X += t.step.X
		t.acc.X += t.inc.X
		if t.cur.X < 0 || t.cur.X >= MapWidth {
			return t.exit()
		}
	default:
		t.cur.Y += t.step.Y
		t.acc.Y += t.inc.Y
		if t.cur.Y < 0 || t.cur.Y >= MapHeight {
			return t.exit()
		}
	}
	return true
}

// Point returns the current cell.
func (t *LineTracer) Point() Point {
	return t.cur
}

// Exited reports whether the tracer stopped because the line left the
// world rather than because it reached its target.
func (t *LineTracer) Exited() bool {
	return t.exited
}

func (t *LineTracer) exit() bool {
	t.done = true
	t.exited = true
	return false
}

// CubeLinePoints collects every cell of CubeLine(a, b).
func CubeLinePoints(a, b Point) []Point {
	var pts []Point
	t := CubeLine(a, b)
	for t.Next() {
		pts = append(pts, t.Point())
	}
	return pts
}

// LineRasterizer traces from origin along dir for length units. Both ends
// are floored to voxel coordinates.
func LineRasterizer(origin, dir Vec3, length float64) *LineTracer {
	end := origin.Add(dir.Scale(length))
	return CubeLine(origin.Floor(), end.Floor())
}

func ratio(dominant, secondary int) int {
	if secondary == 0 {
		return lineSentinel
	}
	return abs(floorDiv(dominant*lineStep, secondary))
}

func accumulator(inc, step int) int {
	half := inc / 2
	if step >= 0 {
		return inc - half
	}
	return half
}

func direction(d int) int {
	if d < 0 {
		return -1
	}
	return 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
