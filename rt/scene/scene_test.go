package scene

import (
	"path/filepath"
	"testing"

	"github.com/gekko3d/slim/rt/core"
	"github.com/gekko3d/slim/rt/memory"
	"github.com/gekko3d/slim/rt/mesh"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarvesArraysFromOneArena(t *testing.T) {
	counts := Counts{Geometries: 3, Cameras: 1, DirectionalLights: 1, PointLights: 2, Materials: 2}
	size, err := Budget(counts, &Options{})
	require.NoError(t, err)

	arena := memory.NewArena(size)
	s, err := New(counts, Options{Arena: arena})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), arena.Available())

	assert.Len(t, s.Geometries, 3)
	assert.Len(t, s.Cameras, 1)
	require.Len(t, s.Lights, 3)
	assert.Equal(t, LightDirectional, s.Lights[0].Kind)
	assert.Equal(t, LightPoint, s.Lights[1].Kind)
	assert.Equal(t, LightPoint, s.Lights[2].Kind)
	assert.Len(t, s.Materials, 2)
	assert.Equal(t, GeometryIsVisible|GeometryIsShadowing, s.Geometries[0].Flags)
}

func TestNewFailsOnSmallArena(t *testing.T) {
	counts := Counts{Geometries: 4, Materials: 1}
	size, err := Budget(counts, &Options{})
	require.NoError(t, err)
	_, err = New(counts, Options{Arena: memory.NewArena(size - 1)})
	assert.ErrorIs(t, err, memory.ErrArenaExhausted)
}

func TestUpdateAABBs(t *testing.T) {
	geos := []Geometry{NewGeometry(GeometryBox), NewGeometry(GeometryQuad), NewGeometry(GeometryTet)}
	geos[0].Transform.Position = mgl32.Vec3{5, 0, 0}
	geos[1].Transform.Scale = mgl32.Vec3{3, 3, 3}
	s, err := New(Counts{}, Options{Geometries: geos})
	require.NoError(t, err)

	assert.Equal(t, core.AABB{Min: mgl32.Vec3{4, -1, -1}, Max: mgl32.Vec3{6, 1, 1}}, s.AABBs[0])
	assert.Equal(t, float32(0), s.AABBs[1].Min.Y())
	assert.Equal(t, float32(0), s.AABBs[1].Max.Y())
	assert.InDelta(t, 3, s.AABBs[1].Max.X(), 1e-6)
	assert.InDelta(t, core.TetMax, s.AABBs[2].Max.Z(), 1e-6)

	s.Geometries[0].Transform.Position = mgl32.Vec3{-5, 0, 0}
	s.Update()
	assert.InDelta(t, -4, s.AABBs[0].Max.X(), 1e-6)
}

func TestSceneBVHContainsGeometries(t *testing.T) {
	geos := make([]Geometry, 40)
	for i := range geos {
		geos[i] = NewGeometry(GeometrySphere)
		geos[i].Transform.Position = mgl32.Vec3{float32(i%7) * 3, float32(i/7) * 3, float32(i%3) * 2}
	}
	s, err := New(Counts{}, Options{Geometries: geos})
	require.NoError(t, err)

	found := make(map[uint32]bool)
	for i := uint32(0); i < s.BVH.NodeCount; i++ {
		node := &s.BVH.Nodes[i]
		if !node.IsLeaf() {
			continue
		}
		for slot := node.FirstIndex; slot < node.FirstIndex+node.LeafCount; slot++ {
			id := s.LeafGeometryIndices[slot]
			assert.True(t, node.AABB.Contains(s.AABBs[id]), "leaf %d geometry %d", i, id)
			found[id] = true
		}
	}
	assert.Len(t, found, len(geos))
}

func TestMeshFilesAreLoadedIntoTheArena(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.mesh")
	require.NoError(t, mesh.Save(path, mesh.Cube()))

	geo := NewGeometry(GeometryMesh)
	geo.Transform.Scale = mgl32.Vec3{2, 2, 2}
	opts := Options{Geometries: []Geometry{geo}, MeshFiles: []string{path}}
	size, err := Budget(Counts{}, &opts)
	require.NoError(t, err)
	opts.Arena = memory.NewArena(size)

	s, err := New(Counts{}, opts)
	require.NoError(t, err)
	require.Len(t, s.Meshes, 1)
	assert.Equal(t, 12, s.Meshes[0].TriangleCount())
	assert.Equal(t, 7, s.MeshStackSize)
	assert.InDelta(t, 2, s.AABBs[0].Max.X(), 1e-6)
	assert.Equal(t, uint64(0), opts.Arena.Available())
}

func TestVisibleGeometries(t *testing.T) {
	geos := []Geometry{NewGeometry(GeometryBox), NewGeometry(GeometryBox)}
	geos[1].Transform.Position = mgl32.Vec3{0, 0, -50}
	s, err := New(Counts{}, Options{Geometries: geos})
	require.NoError(t, err)

	cam := NewCamera()
	cam.Position = mgl32.Vec3{0, 0, -10}
	dims := NewDimensions(64, 64)
	visible := s.VisibleGeometries(nil, cam.Frustum(&dims, DefaultNearClippingPlane, DefaultFarClippingPlane))
	assert.Equal(t, []uint32{0}, visible)
}

func TestLightAttenuation(t *testing.T) {
	l := NewPointLight(mgl32.Vec3{})
	l.Intensity = 8
	assert.InDelta(t, 4, l.Attenuate(2), 1e-6)
	l.Attenuation = Attenuation{Constant: 1, Exponent: 2}
	assert.InDelta(t, 8.0/5, l.Attenuate(2), 1e-6)
	assert.InDelta(t, 0.25, l.Radius(), 1e-6)
}
