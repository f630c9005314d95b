package gamemath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlastDamageSamples(t *testing.T) {
	const r = 128.0

	cases := []struct {
		name string
		d    float64
		want float64
	}{
		{"center", 0, 100},
		{"touching", 0.01, 100},
		{"capped", 20, 100},
		{"cap boundary", math.Sqrt(3 * r * r / 100), 100},
		{"half radius", r / 2, 12},
		{"radius", r, 3},
		{"double radius", 2 * r, 0.75},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, BlastDamage(r, tc.d*tc.d), 1e-9)
		})
	}
}

func TestInBlastCube(t *testing.T) {
	assert.True(t, InBlastCube(Vec3{1, -1, 1}, 2))
	assert.False(t, InBlastCube(Vec3{2, 0, 0}, 2))
	assert.False(t, InBlastCube(Vec3{0, 0, -3}, 2))
}

func TestCollides(t *testing.T) {
	a := Vec3{10, 10, 10}

	assert.True(t, Collides(a, Vec3{12.9, 7.1, 10}, DefaultCollisionDistance))
	assert.False(t, Collides(a, Vec3{13, 10, 10}, DefaultCollisionDistance))
}
