package core

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func farHit() RayHit {
	return RayHit{Distance: math32.Inf(1)}
}

func TestHitsDefaultBoxFront(t *testing.T) {
	ray := NewRay(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, 1})
	hit := farHit()

	side := ray.HitsDefaultBox(&hit, false)
	require.Equal(t, BoxSideBack, side)
	assert.InDelta(t, 4, hit.Distance, 1e-5)
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, hit.Normal)
	assert.False(t, hit.FromBehind)
	assert.InDelta(t, -1, hit.Position.Z(), 1e-5)
}

func TestHitsDefaultBoxRespectsBound(t *testing.T) {
	ray := NewRay(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, 1})
	hit := RayHit{Distance: 3}

	assert.Equal(t, BoxSideNone, ray.HitsDefaultBox(&hit, false))
	assert.Equal(t, float32(3), hit.Distance)
}

func TestHitsDefaultBoxFromInside(t *testing.T) {
	ray := NewRay(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0})
	hit := farHit()

	side := ray.HitsDefaultBox(&hit, false)
	require.Equal(t, BoxSideRight, side)
	assert.True(t, hit.FromBehind)
	assert.InDelta(t, 1, hit.Distance, 1e-5)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, hit.Normal)
}

func TestHitsDefaultBoxDiagonalTieBreak(t *testing.T) {
	// Entering exactly through the (-1,-1,-1) corner: all three slabs tie and
	// the x axis wins every time.
	for i := 0; i < 10; i++ {
		ray := NewRay(mgl32.Vec3{-3, -3, -3}, mgl32.Vec3{1, 1, 1})
		hit := farHit()
		assert.Equal(t, BoxSideLeft, ray.HitsDefaultBox(&hit, false))
	}

	ray := NewRay(mgl32.Vec3{3, 3, 3}, mgl32.Vec3{-1, -1, -1})
	hit := farHit()
	assert.Equal(t, BoxSideRight, ray.HitsDefaultBox(&hit, false))
}

func TestHitsDefaultBoxSides(t *testing.T) {
	tests := []struct {
		name   string
		origin mgl32.Vec3
		dir    mgl32.Vec3
		side   BoxSide
	}{
		{"left", mgl32.Vec3{-5, 0.1, 0.2}, mgl32.Vec3{1, 0, 0}, BoxSideLeft},
		{"right", mgl32.Vec3{5, 0.1, 0.2}, mgl32.Vec3{-1, 0, 0}, BoxSideRight},
		{"bottom", mgl32.Vec3{0.1, -5, 0.2}, mgl32.Vec3{0, 1, 0}, BoxSideBottom},
		{"top", mgl32.Vec3{0.1, 5, 0.2}, mgl32.Vec3{0, -1, 0}, BoxSideTop},
		{"back", mgl32.Vec3{0.1, 0.2, -5}, mgl32.Vec3{0, 0, 1}, BoxSideBack},
		{"front", mgl32.Vec3{0.1, 0.2, 5}, mgl32.Vec3{0, 0, -1}, BoxSideFront},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ray := NewRay(tc.origin, tc.dir)
			hit := farHit()
			side := ray.HitsDefaultBox(&hit, false)
			assert.Equal(t, tc.side, side)
			assert.Equal(t, tc.side.Normal(), hit.Normal)
			assert.InDelta(t, 4, hit.Distance, 1e-5)
			assert.GreaterOrEqual(t, hit.UV.U, float32(0))
			assert.LessOrEqual(t, hit.UV.U, float32(1))
		})
	}
}

func TestHitsDefaultBoxMiss(t *testing.T) {
	ray := NewRay(mgl32.Vec3{0, 3, -5}, mgl32.Vec3{0, 0, 1})
	hit := farHit()
	assert.Equal(t, BoxSideNone, ray.HitsDefaultBox(&hit, false))

	behind := NewRay(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 1})
	assert.Equal(t, BoxSideNone, behind.HitsDefaultBox(&hit, false))
}

func TestHitsDefaultBoxTransparentFallsThrough(t *testing.T) {
	// Front face hit at uv (0.5+0.5*x, 0.5+0.5*y); x=0.3,y=0.1 gives cells
	// (2,2) which is even and opaque, x=0.6,y=0.1 gives (3,2) which is cut out.
	opaque := NewRay(mgl32.Vec3{0.3, 0.1, 5}, mgl32.Vec3{0, 0, -1})
	hit := farHit()
	assert.Equal(t, BoxSideFront, opaque.HitsDefaultBox(&hit, true))

	cut := NewRay(mgl32.Vec3{0.6, 0.1, 5}, mgl32.Vec3{0, 0, -1})
	hit = farHit()
	side := cut.HitsDefaultBox(&hit, true)
	// Exits through the back face at u = 0.5-0.5*0.6 = 0.2 -> cell 0, v cell 2.
	assert.Equal(t, BoxSideBack, side)
	assert.True(t, hit.FromBehind)
	assert.InDelta(t, 6, hit.Distance, 1e-5)
}

func TestHitsDefaultSphere(t *testing.T) {
	ray := NewRay(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, 1})
	hit := farHit()
	require.True(t, ray.HitsDefaultSphere(&hit, false))
	assert.InDelta(t, 4, hit.Distance, 1e-5)
	assert.InDelta(t, -1, hit.Normal.Z(), 1e-5)
	assert.False(t, hit.FromBehind)

	inside := NewRay(mgl32.Vec3{0, 0, -0.5}, mgl32.Vec3{0, 0, 1})
	hit = farHit()
	require.True(t, inside.HitsDefaultSphere(&hit, false))
	assert.True(t, hit.FromBehind)
	assert.InDelta(t, 1.5, hit.Distance, 1e-5)
}

func TestHitsDefaultSphereMiss(t *testing.T) {
	ray := NewRay(mgl32.Vec3{5, 5, 5}, mgl32.Vec3{1, 0, 0})
	hit := farHit()
	assert.False(t, ray.HitsDefaultSphere(&hit, false))
	assert.True(t, math32.IsInf(hit.Distance, 1))

	grazing := NewRay(mgl32.Vec3{-5, 1.5, 0}, mgl32.Vec3{1, 0, 0})
	assert.False(t, grazing.HitsDefaultSphere(&hit, false))
}

func TestHitsDefaultSphereScaledDirection(t *testing.T) {
	// A direction of length 2 halves the distance in ray parameter space.
	ray := NewRay(mgl32.Vec3{0, 0.5, -5}, mgl32.Vec3{0, 0, 2})
	hit := farHit()
	require.True(t, ray.HitsDefaultSphere(&hit, false))
	expected := (5 - math32.Sqrt(0.75)) / 2
	assert.InDelta(t, expected, hit.Distance, 1e-4)
}

func TestHitsDefaultSphereFromInsideFacingAway(t *testing.T) {
	ray := NewRay(mgl32.Vec3{0.5, 0, 0}, mgl32.Vec3{1, 0, 0})
	hit := farHit()
	require.True(t, ray.HitsDefaultSphere(&hit, false))
	assert.True(t, hit.FromBehind)
	assert.InDelta(t, 0.5, hit.Distance, 1e-5)
	assert.InDelta(t, 1, hit.Position.X(), 1e-5)

	outside := NewRay(mgl32.Vec3{1.5, 0, 0}, mgl32.Vec3{1, 0, 0})
	hit = farHit()
	assert.False(t, outside.HitsDefaultSphere(&hit, false))
}

func TestHitAtBoundIsRejected(t *testing.T) {
	box := NewRay(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, 1})
	hit := RayHit{Distance: 4}
	assert.Equal(t, BoxSideNone, box.HitsDefaultBox(&hit, false))
	assert.Equal(t, float32(4), hit.Distance)

	inside := NewRay(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0})
	hit = RayHit{Distance: 1}
	assert.Equal(t, BoxSideNone, inside.HitsDefaultBox(&hit, false))

	sphere := NewRay(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, 1})
	hit = RayHit{Distance: 4}
	assert.False(t, sphere.HitsDefaultSphere(&hit, false))
	assert.Equal(t, float32(4), hit.Distance)

	insideSphere := NewRay(mgl32.Vec3{0, 0, -0.5}, mgl32.Vec3{0, 0, 1})
	hit = RayHit{Distance: 1.5}
	assert.False(t, insideSphere.HitsDefaultSphere(&hit, false))

	quad := NewRay(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, -1, 0})
	hit = RayHit{Distance: 5}
	assert.False(t, quad.HitsDefaultQuad(&hit, false))
	assert.Equal(t, float32(5), hit.Distance)

	// Just past the hit distance the same rays hit.
	hit = RayHit{Distance: 4.001}
	assert.Equal(t, BoxSideBack, box.HitsDefaultBox(&hit, false))
	hit = RayHit{Distance: 4.001}
	assert.True(t, sphere.HitsDefaultSphere(&hit, false))
	hit = RayHit{Distance: 5.001}
	assert.True(t, quad.HitsDefaultQuad(&hit, false))
}

func TestHitsDefaultQuad(t *testing.T) {
	ray := NewRay(mgl32.Vec3{0.5, 3, -0.5}, mgl32.Vec3{0, -1, 0})
	hit := farHit()
	require.True(t, ray.HitsDefaultQuad(&hit, false))
	assert.InDelta(t, 3, hit.Distance, 1e-5)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, hit.Normal)
	assert.InDelta(t, 0.75, hit.UV.U, 1e-5)
	assert.InDelta(t, 0.25, hit.UV.V, 1e-5)

	outside := NewRay(mgl32.Vec3{1.5, 3, 0}, mgl32.Vec3{0, -1, 0})
	hit = farHit()
	assert.False(t, outside.HitsDefaultQuad(&hit, false))

	parallel := NewRay(mgl32.Vec3{0, 3, 0}, mgl32.Vec3{1, 0, 0})
	assert.False(t, parallel.HitsDefaultQuad(&hit, false))

	below := NewRay(mgl32.Vec3{0, -2, 0}, mgl32.Vec3{0, 1, 0})
	hit = farHit()
	require.True(t, below.HitsDefaultQuad(&hit, false))
	assert.True(t, hit.FromBehind)
}

func TestHitsDefaultTetrahedron(t *testing.T) {
	ray := NewRay(mgl32.Vec3{0.1, 5, 0.05}, mgl32.Vec3{0, -1, 0})
	hit := farHit()
	require.True(t, ray.HitsDefaultTetrahedron(&hit, false))
	assert.InDelta(t, 4.5726497, hit.Distance, 1e-4)
	assert.Equal(t, tetFaces[3].normal, hit.Normal)
	assert.GreaterOrEqual(t, hit.UV.U, float32(0))
	assert.GreaterOrEqual(t, hit.UV.V, float32(0))
	assert.LessOrEqual(t, hit.UV.U+hit.UV.V, float32(1))
	// The surface normal faces the incoming ray.
	assert.Less(t, hit.Normal.Dot(ray.Direction), float32(0))

	miss := NewRay(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, 1, 0})
	hit = farHit()
	assert.False(t, miss.HitsDefaultTetrahedron(&hit, false))
}

func TestHitsPlane(t *testing.T) {
	ray := NewRay(mgl32.Vec3{0, 2, 0}, mgl32.Vec3{0, -1, 0})
	var hit RayHit
	require.True(t, ray.HitsPlane(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, &hit))
	assert.InDelta(t, 2, hit.Distance, 1e-6)
	assert.False(t, hit.FromBehind)

	away := NewRay(mgl32.Vec3{0, 2, 0}, mgl32.Vec3{0, 1, 0})
	assert.False(t, away.HitsPlane(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, &hit))

	inPlane := NewRay(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	assert.False(t, inPlane.HitsPlane(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, &hit))
}

func TestHitsAABB(t *testing.T) {
	box := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}

	ray := NewRay(mgl32.Vec3{-5, 0, 0}, mgl32.Vec3{1, 0, 0})
	near, far, ok := ray.HitsAABB(box)
	require.True(t, ok)
	assert.InDelta(t, 4, near, 1e-6)
	assert.InDelta(t, 6, far, 1e-6)

	inside := NewRay(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, -1, 0})
	near, far, ok = inside.HitsAABB(box)
	require.True(t, ok)
	assert.Equal(t, float32(0), near)
	assert.InDelta(t, 1, far, 1e-6)

	parallel := NewRay(mgl32.Vec3{-5, 2, 0}, mgl32.Vec3{1, 0, 0})
	_, _, ok = parallel.HitsAABB(box)
	assert.False(t, ok)
}

func TestSphereTracer(t *testing.T) {
	var st SphereTracer
	dist := math32.Inf(1)
	require.True(t, st.Hit(mgl32.Vec3{0, 0, 10}, 1, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, &dist))
	assert.InDelta(t, 9, dist, 1e-5)

	// A farther sphere can no longer win.
	assert.False(t, st.Hit(mgl32.Vec3{0, 0, 20}, 1, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, &dist))
	assert.InDelta(t, 9, dist, 1e-5)

	assert.False(t, st.Hit(mgl32.Vec3{5, 0, 5}, 1, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, &dist))
}

func TestUVCheckerboard(t *testing.T) {
	assert.False(t, UV{0.1, 0.1}.OnCheckerboard())
	assert.True(t, UV{0.3, 0.1}.OnCheckerboard())
	assert.False(t, UV{0.3, 0.3}.OnCheckerboard())
}

func TestOctantShifts(t *testing.T) {
	s := FacingSides(mgl32.Vec3{-1, 1, -1})
	o := NewOctantShifts(s)
	assert.Equal(t, BoxSideRight, o.BoxSide(AxisX))
	assert.Equal(t, BoxSideBottom, o.BoxSide(AxisY))
	assert.Equal(t, BoxSideFront, o.BoxSide(AxisZ))

	f := NewOctantShifts(s.Flipped())
	assert.Equal(t, BoxSideLeft, f.BoxSide(AxisX))
	assert.Equal(t, BoxSideTop, f.BoxSide(AxisY))
	assert.Equal(t, BoxSideBack, f.BoxSide(AxisZ))
}
