package quat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("restores unit norm", func(t *testing.T) {
		t.Parallel()
		q := Quaternion{W: 2, X: -1, Y: 0.5, Z: 3}.Normalize()
		assert.InDelta(t, 1.0, q.Norm(), tol)
	})

	t.Run("unit norm survives repeated normalization", func(t *testing.T) {
		t.Parallel()
		q := FromAxisAngle(Vec3{X: 1, Y: 2, Z: -1}, 0.7)
		for i := 0; i < 1000; i++ {
			q = q.Normalize()
		}
		assert.InDelta(t, 1.0, q.Norm(), tol)
	})

	t.Run("degenerate input falls back to identity", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, Identity, Quaternion{}.Normalize())
	})
}

func TestMul(t *testing.T) {
	t.Parallel()

	t.Run("identity composition", func(t *testing.T) {
		t.Parallel()
		qs := []Quaternion{
			FromAxisAngle(Vec3{X: 1}, 0.3),
			FromAxisAngle(Vec3{Y: 1}, -1.2),
			FromAxisAngle(Vec3{X: 1, Y: 1, Z: 1}, 2.5),
		}
		for _, q := range qs {
			left := Identity.Mul(q)
			right := q.Mul(Identity)
			assert.InDelta(t, q.W, left.W, tol)
			assert.InDelta(t, q.X, left.X, tol)
			assert.InDelta(t, q.Y, left.Y, tol)
			assert.InDelta(t, q.Z, left.Z, tol)
			assert.InDelta(t, q.W, right.W, tol)
			assert.InDelta(t, q.X, right.X, tol)
			assert.InDelta(t, q.Y, right.Y, tol)
			assert.InDelta(t, q.Z, right.Z, tol)
		}
	})

	t.Run("composition order matters", func(t *testing.T) {
		t.Parallel()
		a := FromAxisAngle(Vec3{X: 1}, math.Pi/2)
		b := FromAxisAngle(Vec3{Y: 1}, math.Pi/2)
		ab := a.Mul(b)
		ba := b.Mul(a)
		assert.Greater(t, math.Abs(ab.X-ba.X)+math.Abs(ab.Y-ba.Y)+math.Abs(ab.Z-ba.Z), 0.1)
	})

	t.Run("rotation composes like successive rotations", func(t *testing.T) {
		t.Parallel()
		a := FromAxisAngle(Vec3{Z: 1}, math.Pi/4)
		b := FromAxisAngle(Vec3{Z: 1}, math.Pi/4)
		v := a.Mul(b).Rotate(Vec3{X: 1})
		assert.InDelta(t, 0, v.X, tol)
		assert.InDelta(t, 1, v.Y, tol)
		assert.InDelta(t, 0, v.Z, tol)
	})
}

func TestConjugate(t *testing.T) {
	t.Parallel()

	q := FromAxisAngle(Vec3{X: 0.2, Y: -1, Z: 0.5}, 1.1)
	inv := q.Mul(q.Conjugate())
	assert.InDelta(t, 1, inv.W, tol)
	assert.InDelta(t, 0, inv.X, tol)
	assert.InDelta(t, 0, inv.Y, tol)
	assert.InDelta(t, 0, inv.Z, tol)
}

func TestFromAxisAngle(t *testing.T) {
	t.Parallel()

	t.Run("quarter turn about z", func(t *testing.T) {
		t.Parallel()
		q := FromAxisAngle(Vec3{Z: 1}, math.Pi/2)
		assert.InDelta(t, math.Cos(math.Pi/4), q.W, tol)
		assert.InDelta(t, math.Sin(math.Pi/4), q.Z, tol)
		assert.InDelta(t, 0, q.X, tol)
		assert.InDelta(t, 0, q.Y, tol)
	})

	t.Run("axis length does not matter", func(t *testing.T) {
		t.Parallel()
		a := FromAxisAngle(Vec3{X: 1}, 0.4)
		b := FromAxisAngle(Vec3{X: 17.3}, 0.4)
		assert.InDelta(t, a.W, b.W, tol)
		assert.InDelta(t, a.X, b.X, tol)
	})

	t.Run("result is unit norm", func(t *testing.T) {
		t.Parallel()
		q := FromAxisAngle(Vec3{X: 3, Y: -2, Z: 0.1}, 2.9)
		assert.InDelta(t, 1.0, q.Norm(), tol)
	})
}

func TestRotate(t *testing.T) {
	t.Parallel()

	t.Run("quarter turn about z maps x to y", func(t *testing.T) {
		t.Parallel()
		q := FromAxisAngle(Vec3{Z: 1}, math.Pi/2)
		v := q.Rotate(Vec3{X: 1})
		assert.InDelta(t, 0, v.X, tol)
		assert.InDelta(t, 1, v.Y, tol)
		assert.InDelta(t, 0, v.Z, tol)
	})

	t.Run("identity leaves vectors alone", func(t *testing.T) {
		t.Parallel()
		v := Identity.Rotate(Vec3{X: 0.3, Y: -2, Z: 5})
		assert.InDelta(t, 0.3, v.X, tol)
		assert.InDelta(t, -2, v.Y, tol)
		assert.InDelta(t, 5, v.Z, tol)
	})

	t.Run("round trip through conjugate", func(t *testing.T) {
		t.Parallel()
		qs := []Quaternion{
			FromAxisAngle(Vec3{X: 1, Z: 1}, 0.9),
			FromAxisAngle(Vec3{Y: -1}, 2.2),
			FromAxisAngle(Vec3{X: 0.1, Y: 0.5, Z: -0.7}, -1.6),
		}
		v := Vec3{X: 0.4, Y: -1.3, Z: 2.2}
		for _, q := range qs {
			got := q.Rotate(q.Conjugate().Rotate(v))
			assert.InDelta(t, v.X, got.X, tol)
			assert.InDelta(t, v.Y, got.Y, tol)
			assert.InDelta(t, v.Z, got.Z, tol)
		}
	})

	t.Run("rotation preserves length", func(t *testing.T) {
		t.Parallel()
		q := FromAxisAngle(Vec3{X: 1, Y: 1}, 1.3)
		v := Vec3{X: 3, Y: 4, Z: 12}
		require.InDelta(t, 13, v.Norm(), tol)
		assert.InDelta(t, 13, q.Rotate(v).Norm(), tol)
	})
}
