package voxel

import (
	"sync"

	"github.com/automoto/voxel-arena/shared/gamemath"
)

// DefaultColor is the colour of generated terrain.
const DefaultColor uint32 = 0x7f7f7f

// Grid is a sparse voxel map: every voxel at or below the ground layer is
// solid unless carved, and blocks above it are stored individually.
type Grid struct {
	mu     sync.RWMutex
	ground int
	blocks map[gamemath.Point]uint32
	holes  map[gamemath.Point]struct{}
}

// NewGrid creates a flat map whose surface is at layer ground.
func NewGrid(ground int) *Grid {
	if ground > WaterLevel {
		ground = WaterLevel
	}
	if ground < 0 {
		ground = 0
	}
	return &Grid{
		ground: ground,
		blocks: make(map[gamemath.Point]uint32),
		holes:  make(map[gamemath.Point]struct{}),
	}
}

func (g *Grid) IsSolid(x, y, z int) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.solid(gamemath.Point{X: x, Y: y, Z: z})
}

func (g *Grid) solid(p gamemath.Point) bool {
	if !InBounds(p.X, p.Y, p.Z) {
		return false
	}
	if p.Z >= WaterLevel {
		return true
	}
	if p.Z >= g.ground {
		_, carved := g.holes[p]
		return !carved
	}
	_, ok := g.blocks[p]
	return ok
}

func (g *Grid) Destroy(x, y, z int) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := gamemath.Point{X: x, Y: y, Z: z}
	if z >= IndestructibleLevel || !g.solid(p) {
		return 0
	}
	if z >= g.ground {
		g.holes[p] = struct{}{}
	} else {
		delete(g.blocks, p)
	}
	return 1
}

func (g *Grid) Build(x, y, z int, color uint32) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := gamemath.Point{X: x, Y: y, Z: z}
	if !InBounds(x, y, z) || z >= IndestructibleLevel || g.solid(p) {
		return false
	}
	if z >= g.ground {
		delete(g.holes, p)
	} else {
		g.blocks[p] = color
	}
	return true
}

// Color returns the colour of a solid voxel.
func (g *Grid) Color(x, y, z int) (uint32, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	p := gamemath.Point{X: x, Y: y, Z: z}
	if !g.solid(p) {
		return 0, false
	}
	if c, ok := g.blocks[p]; ok {
		return c, true
	}
	return DefaultColor, true
}

func (g *Grid) GroundHeight(x, y, startZ int) int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if startZ < 0 {
		startZ = 0
	}
	for z := startZ; z < WaterLevel; z++ {
		if g.solid(gamemath.Point{X: x, Y: y, Z: z}) {
			return z
		}
	}
	return WaterLevel
}

func (g *Grid) SafeCoords(x, y, z float64) (int, int, int) {
	return clampInt(x, 0, gamemath.MapWidth-1),
		clampInt(y, 0, gamemath.MapHeight-1),
		clampInt(z, 0, IndestructibleLevel)
}
