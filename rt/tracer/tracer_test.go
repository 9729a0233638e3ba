package tracer

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/gekko3d/slim/rt/core"
	"github.com/gekko3d/slim/rt/mesh"
	"github.com/gekko3d/slim/rt/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomVec(rng *rand.Rand, r float32) mgl32.Vec3 {
	return mgl32.Vec3{
		(rng.Float32()*2 - 1) * r,
		(rng.Float32()*2 - 1) * r,
		(rng.Float32()*2 - 1) * r,
	}
}

// randomRay starts outside a sphere of radius r around the origin and aims
// at a point inside the box [-spread, spread]^3.
func randomRay(rng *rand.Rand, r, spread float32) core.Ray {
	origin := randomVec(rng, 1)
	for origin.Len() < 0.01 {
		origin = randomVec(rng, 1)
	}
	origin = origin.Normalize().Mul(r)
	target := randomVec(rng, spread)
	return core.NewRay(origin, target.Sub(origin).Normalize())
}

func TestMeshTraceMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for name, m := range map[string]*mesh.Mesh{"fixed": mesh.Cube(), "built": mesh.New(mesh.CubeSource(), nil)} {
		tr := NewMeshTracer(m.StackSize())
		hits := 0
		for i := 0; i < 1000; i++ {
			ray := randomRay(rng, 4, 1.5)
			got := core.RayHit{Distance: math32.Inf(1)}
			want := core.RayHit{Distance: math32.Inf(1)}

			found := tr.Trace(m, &ray, &got, false)
			require.Equal(t, TraceMeshLinear(m, &ray, &want, false), found, "%s ray %d", name, i)
			if !found {
				continue
			}
			hits++
			assert.InDelta(t, want.Distance, got.Distance, 1e-4, "%s ray %d", name, i)
			vecNear(t, want.Normal, got.Normal, 1e-4, "%s ray %d", name, i)
			vecNear(t, want.Position, got.Position, 1e-3, "%s ray %d", name, i)
		}
		assert.Greater(t, hits, 100, name)
	}
}

func TestMeshTraceInterpolates(t *testing.T) {
	m := mesh.Cube()
	tr := NewMeshTracer(m.StackSize())
	ray := core.NewRay(mgl32.Vec3{0.5, 0.25, -5}, mgl32.Vec3{0, 0, 1})
	hit := core.RayHit{Distance: math32.Inf(1)}
	require.True(t, tr.Trace(m, &ray, &hit, false))

	assert.InDelta(t, 4, hit.Distance, 1e-5)
	vecNear(t, mgl32.Vec3{0, 0, -1}, hit.Normal, 1e-5)
	vecNear(t, mgl32.Vec3{0.5, 0.25, -1}, hit.Position, 1e-5)
	assert.InDelta(t, 0.25, hit.UVCoverage, 1e-6)
	assert.True(t, hit.UV.U >= 0 && hit.UV.U <= 1, "u %v", hit.UV.U)
	assert.True(t, hit.UV.V >= 0 && hit.UV.V <= 1, "v %v", hit.UV.V)
	assert.Less(t, int(hit.ID), m.TriangleCount())
}

func TestMeshTraceRespectsDistanceBound(t *testing.T) {
	m := mesh.Cube()
	tr := NewMeshTracer(m.StackSize())
	ray := core.NewRay(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, 1})
	hit := core.RayHit{Distance: 3}
	assert.False(t, tr.Trace(m, &ray, &hit, false))
	assert.Equal(t, float32(3), hit.Distance)

	away := core.NewRay(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, -1})
	hit.Distance = math32.Inf(1)
	assert.False(t, tr.Trace(m, &away, &hit, false))
}

func TestMeshAnyHit(t *testing.T) {
	m := mesh.Cube()
	tr := NewMeshTracer(m.StackSize())
	ray := core.NewRay(mgl32.Vec3{0.3, -0.2, -5}, mgl32.Vec3{0, 0, 1})

	first := core.RayHit{Distance: math32.Inf(1)}
	require.True(t, tr.Trace(m, &ray, &first, true))
	// The ray passes through both the back and front faces.
	assert.True(t, math32.Abs(first.Distance-4) < 1e-4 || math32.Abs(first.Distance-6) < 1e-4, "%v", first.Distance)

	closest := core.RayHit{Distance: math32.Inf(1)}
	require.True(t, tr.Trace(m, &ray, &closest, false))
	assert.InDelta(t, 4, closest.Distance, 1e-5)
	assert.LessOrEqual(t, closest.Distance, first.Distance)
}

func unitScene(t *testing.T, geos ...scene.Geometry) *scene.Scene {
	t.Helper()
	s, err := scene.New(scene.Counts{}, scene.Options{Geometries: geos, Meshes: []*mesh.Mesh{mesh.Cube()}})
	require.NoError(t, err)
	return s
}

func TestUnitCubePick(t *testing.T) {
	s := unitScene(t, scene.NewGeometry(scene.GeometryBox))
	tr := ForScene(s)

	ray := core.NewRay(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, 1})
	var hit core.RayHit
	g := tr.Trace(&ray, &hit, s, false, math32.Inf(1))
	require.NotNil(t, g)
	assert.Same(t, &s.Geometries[0], g)
	assert.InDelta(t, 4, hit.Distance, 1e-3)
	vecNear(t, mgl32.Vec3{0, 0, -1}, hit.Normal, 1e-6)
	assert.InDelta(t, 1, hit.NdotRd, 1e-6)

	local := core.NewRay(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, 1})
	boxHit := core.RayHit{Distance: math32.Inf(1)}
	assert.Equal(t, core.BoxSideBack, local.HitsDefaultBox(&boxHit, false))
}

func TestSphereMiss(t *testing.T) {
	s := unitScene(t, scene.NewGeometry(scene.GeometrySphere))
	tr := ForScene(s)
	ray := core.NewRay(mgl32.Vec3{5, 5, 5}, mgl32.Vec3{1, 0, 0})
	var hit core.RayHit
	assert.Nil(t, tr.Trace(&ray, &hit, s, false, math32.Inf(1)))
}

func TestVisibilityFlags(t *testing.T) {
	hidden := scene.NewGeometry(scene.GeometryBox)
	hidden.Flags = scene.GeometryIsShadowing
	s := unitScene(t, hidden)
	tr := ForScene(s)

	ray := core.NewRay(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, 1})
	var hit core.RayHit
	assert.Nil(t, tr.Trace(&ray, &hit, s, false, math32.Inf(1)), "invisible to primary rays")

	ray = core.NewRay(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, 1})
	assert.NotNil(t, tr.Trace(&ray, &hit, s, true, math32.Inf(1)), "still casts shadows")

	assert.True(t, tr.Occluded(s, mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, 5}))
	assert.False(t, tr.Occluded(s, mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, -2}))
}

func TestHitLight(t *testing.T) {
	var tr SceneTracer
	light := scene.NewPointLight(mgl32.Vec3{0, 0, 10})
	ray := core.NewRay(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1})
	hit := core.RayHit{Distance: math32.Inf(1)}
	require.True(t, tr.HitLight(&light, &ray, &hit))
	assert.InDelta(t, 9, hit.Distance, 1e-5)

	hit.Distance = 5
	assert.False(t, tr.HitLight(&light, &ray, &hit), "farther than the current hit")
}

func TestMeshGeometryInScene(t *testing.T) {
	g := scene.NewGeometry(scene.GeometryMesh)
	g.Transform.Position = mgl32.Vec3{0, 0, 3}
	g.Transform.Scale = mgl32.Vec3{2, 2, 2}
	s := unitScene(t, g)
	tr := ForScene(s)

	ray := core.NewRay(mgl32.Vec3{0.5, 0.5, -5}, mgl32.Vec3{0, 0, 1})
	var hit core.RayHit
	require.NotNil(t, tr.Trace(&ray, &hit, s, false, math32.Inf(1)))
	assert.InDelta(t, 6, hit.Distance, 1e-3)

	ToWorld(&s.Geometries[0], &hit)
	vecNear(t, mgl32.Vec3{0, 0, -1}, hit.Normal, 1e-5)
	assert.InDelta(t, 1, hit.Position.Z(), 1e-3)
}

func TestSceneTraceMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	types := []scene.GeometryType{scene.GeometryBox, scene.GeometrySphere, scene.GeometryTet, scene.GeometryQuad, scene.GeometryMesh}
	geos := make([]scene.Geometry, 60)
	for i := range geos {
		g := scene.NewGeometry(types[i%len(types)])
		g.Transform.Position = randomVec(rng, 10)
		g.Transform.Orientation = mgl32.QuatRotate(rng.Float32()*6, randomVec(rng, 1).Add(mgl32.Vec3{0, 0, 2}).Normalize())
		g.Transform.Scale = mgl32.Vec3{0.5 + rng.Float32(), 0.5 + rng.Float32(), 0.5 + rng.Float32()}
		geos[i] = g
	}
	s := unitScene(t, geos...)
	tr := ForScene(s)
	linear := ForScene(s)

	hits := 0
	for i := 0; i < 500; i++ {
		base := randomRay(rng, 20, 10)
		bvhRay, linRay := base, base
		var got, want core.RayHit
		gotGeo := tr.Trace(&bvhRay, &got, s, false, math32.Inf(1))
		wantGeo := TraceSceneLinear(linear, &linRay, &want, s, false, math32.Inf(1))
		require.Equal(t, wantGeo == nil, gotGeo == nil, "ray %d", i)
		if gotGeo == nil {
			continue
		}
		hits++
		assert.InDelta(t, want.Distance, got.Distance, 1e-4, "ray %d", i)
		assert.Same(t, wantGeo, gotGeo, "ray %d", i)

		anyRay := base
		var anyHit core.RayHit
		assert.NotNil(t, tr.Trace(&anyRay, &anyHit, s, true, math32.Inf(1)), "ray %d", i)
	}
	assert.Greater(t, hits, 50)
}

func vecNear(t *testing.T, want, got mgl32.Vec3, delta float64, msgAndArgs ...any) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], delta, msgAndArgs...)
}
