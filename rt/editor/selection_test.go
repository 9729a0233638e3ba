package editor

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/gekko3d/slim/rt/core"
	"github.com/gekko3d/slim/rt/input"
	"github.com/gekko3d/slim/rt/mesh"
	"github.com/gekko3d/slim/rt/scene"
	"github.com/gekko3d/slim/rt/tracer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	scene    *scene.Scene
	sel      *Selection
	viewport *Viewport
	in       input.State
	cam      scene.Camera
	dims     scene.Dimensions
}

// newEnv places a 100x100 camera at z=-10 looking down +z.
func newEnv(t *testing.T, geos []scene.Geometry, lights []scene.Light) *env {
	t.Helper()
	s, err := scene.New(scene.Counts{}, scene.Options{Geometries: geos, Lights: lights})
	require.NoError(t, err)
	e := &env{scene: s, cam: scene.NewCamera(), dims: scene.NewDimensions(100, 100)}
	e.cam.Position = mgl32.Vec3{0, 0, -10}
	e.viewport = NewViewport(&e.cam, &e.dims)
	e.sel = NewSelection(s, tracer.ForScene(s))
	return e
}

type step struct {
	x, y                     float64
	alt, left, middle, right bool
}

func (e *env) frame(st step) {
	e.in.BeginFrame()
	e.in.MoveMouse(st.x, st.y)
	e.in.SetKey(input.KeyLeftAlt, st.alt)
	e.in.SetKey(input.MouseButtonLeft, st.left)
	e.in.SetKey(input.MouseButtonMiddle, st.middle)
	e.in.SetKey(input.MouseButtonRight, st.right)
	e.sel.Manipulate(e.viewport, &e.in)
	e.scene.Update()
}

// grabFace selects the object at the screen center and hovers its back face.
func (e *env) grabFace(t *testing.T) {
	t.Helper()
	e.frame(step{x: 50, y: 50, left: true})
	require.True(t, e.sel.Selected())
	e.frame(step{x: 50, y: 50})
	e.frame(step{x: 50, y: 50, alt: true})
	require.Equal(t, core.BoxSideBack, e.sel.BoxSide)
}

func TestPickAndClear(t *testing.T) {
	e := newEnv(t, []scene.Geometry{scene.NewGeometry(scene.GeometryBox)}, nil)
	e.frame(step{x: 50, y: 50, left: true})
	assert.Same(t, &e.scene.Geometries[0], e.sel.Geometry)
	assert.True(t, e.sel.Changed)

	e.frame(step{x: 50, y: 50})
	e.frame(step{x: 50, y: 50, left: true})
	assert.False(t, e.sel.Changed, "same object picked again")

	e.frame(step{x: 0, y: 0})
	e.frame(step{x: 0, y: 0, left: true})
	assert.False(t, e.sel.Selected())
	assert.True(t, e.sel.Changed)
}

func TestDragTranslateOnScreen(t *testing.T) {
	e := newEnv(t, []scene.Geometry{scene.NewGeometry(scene.GeometryBox)}, nil)
	e.frame(step{x: 50, y: 50, left: true})
	require.True(t, e.sel.Selected())
	vecNear(t, mgl32.Vec3{}, e.scene.Geometries[0].Transform.Position, 1e-4)

	// 10 pixels at a depth of 9 with a focal length of 2 on a 100 pixel screen.
	e.frame(step{x: 60, y: 50, left: true})
	vecNear(t, mgl32.Vec3{0.9, 0, 0}, e.scene.Geometries[0].Transform.Position, 1e-4)
	assert.InDelta(t, 1.9, e.scene.AABBs[0].Max.X(), 1e-4)
}

func TestAltDragTranslatesOnFacePlane(t *testing.T) {
	e := newEnv(t, []scene.Geometry{scene.NewGeometry(scene.GeometryBox)}, nil)
	e.grabFace(t)
	assert.Len(t, e.sel.Gizmos(nil), 2)

	e.frame(step{x: 60, y: 50, alt: true, left: true})
	vecNear(t, mgl32.Vec3{0.9, 0, 0}, e.scene.Geometries[0].Transform.Position, 1e-4)
}

func TestAltDragScales(t *testing.T) {
	e := newEnv(t, []scene.Geometry{scene.NewGeometry(scene.GeometryBox)}, nil)
	e.grabFace(t)
	e.frame(step{x: 60, y: 50, alt: true, middle: true})
	vecNear(t, mgl32.Vec3{1.9, 1, 1}, e.scene.Geometries[0].Transform.Scale, 1e-4)
}

func TestAltDragRotates(t *testing.T) {
	e := newEnv(t, []scene.Geometry{scene.NewGeometry(scene.GeometryBox)}, nil)
	e.grabFace(t)
	e.frame(step{x: 60, y: 50, alt: true, right: true})

	// The grab point relative to the face center turns onto the cursor point.
	grab := mgl32.Vec3{0.045, -0.045, 0}.Normalize()
	cursor := mgl32.Vec3{0.945, -0.045, 0}.Normalize()
	q := e.scene.Geometries[0].Transform.Orientation
	assert.InDelta(t, 1, q.Len(), 1e-5)
	vecNear(t, cursor, q.Rotate(grab), 1e-3)
}

func TestAltWithoutHoveredFaceDoesNothing(t *testing.T) {
	e := newEnv(t, []scene.Geometry{scene.NewGeometry(scene.GeometryBox)}, nil)
	e.frame(step{x: 50, y: 50, left: true})
	e.frame(step{x: 50, y: 50})
	e.frame(step{x: 0, y: 0, alt: true})
	assert.Equal(t, core.BoxSideNone, e.sel.BoxSide)
	e.frame(step{x: 10, y: 0, alt: true, left: true})
	vecNear(t, mgl32.Vec3{}, e.scene.Geometries[0].Transform.Position, 1e-4)
}

func TestMeshSelectionBoxFollowsBounds(t *testing.T) {
	src := mesh.CubeSource()
	src.Positions = make([]mgl32.Vec3, len(src.Positions))
	for i, p := range mesh.CubeSource().Positions {
		src.Positions[i] = p.Add(mgl32.Vec3{3, 0, 0})
	}
	m := mesh.New(src, nil)

	geo := scene.NewGeometry(scene.GeometryMesh)
	s, err := scene.New(scene.Counts{}, scene.Options{Geometries: []scene.Geometry{geo}, Meshes: []*mesh.Mesh{m}})
	require.NoError(t, err)
	e := &env{scene: s, cam: scene.NewCamera(), dims: scene.NewDimensions(100, 100)}
	e.cam.Position = mgl32.Vec3{0, 0, -10}
	e.viewport = NewViewport(&e.cam, &e.dims)
	e.sel = NewSelection(s, tracer.ForScene(s))

	// x = 3 at a depth of 9 lies about 33 pixels right of the center.
	e.frame(step{x: 83, y: 50, left: true})
	require.Same(t, &e.scene.Geometries[0], e.sel.Geometry)

	box := e.sel.Transform()
	vecNear(t, mgl32.Vec3{3, 0, 0}, box.Position, 1e-3)
	vecNear(t, mgl32.Vec3{1, 1, 1}, box.Scale, 1e-3)
	cube := NewGizmoCube(box, SelectionColor)
	for _, seg := range cube.AppendSegments(nil) {
		for _, p := range seg {
			assert.True(t, p.X() > 1.99 && p.X() < 4.01, "gizmo point %v outside the mesh bounds", p)
		}
	}

	e.frame(step{x: 83, y: 50})
	e.frame(step{x: 83, y: 50, alt: true})
	assert.Equal(t, core.BoxSideBack, e.sel.BoxSide)
	e.frame(step{x: 93, y: 50, alt: true, left: true})
	vecNear(t, mgl32.Vec3{0.9, 0, 0}, e.scene.Geometries[0].Transform.Position, 1e-3)
}

func TestNearestOfLightAndGeometryWins(t *testing.T) {
	box := scene.NewGeometry(scene.GeometryBox)
	box.Transform.Position = mgl32.Vec3{0, 0, 5}
	e := newEnv(t, []scene.Geometry{box}, []scene.Light{scene.NewPointLight(mgl32.Vec3{})})
	e.frame(step{x: 50, y: 50, left: true})
	assert.Nil(t, e.sel.Geometry)
	assert.Same(t, &e.scene.Lights[0], e.sel.Light)

	e.scene.Lights[0].Position = mgl32.Vec3{0, 0, 20}
	e.frame(step{x: 50, y: 50})
	e.frame(step{x: 50, y: 50, left: true})
	assert.Same(t, &e.scene.Geometries[0], e.sel.Geometry)
	assert.Nil(t, e.sel.Light)
}

func TestPointLightManipulation(t *testing.T) {
	light := scene.NewPointLight(mgl32.Vec3{})
	light.Intensity = 16
	e := newEnv(t, nil, []scene.Light{light})
	e.grabFace(t)

	e.frame(step{x: 60, y: 50, alt: true, right: true})
	assert.Equal(t, mgl32.QuatIdent(), e.scene.Lights[0].Orientation, "point lights do not rotate")

	e.frame(step{x: 60, y: 50, alt: true, middle: true})
	pos := mgl32.Vec3{0.945, 0.045, 0}.Len()
	org := mgl32.Vec3{0.045, 0.045, 0}.Len()
	want := math32.Abs(scene.LightRadiusIntensityFactor * (0.5 + pos - org))
	assert.InDelta(t, want, e.scene.Lights[0].Intensity, 1e-3)

	e.frame(step{x: 60, y: 50, alt: true})
	e.frame(step{x: 60, y: 50, alt: true, left: true})
	e.frame(step{x: 70, y: 50, alt: true, left: true})
	assert.InDelta(t, 0.9, e.scene.Lights[0].Position.X(), 1e-3)
}

func TestDirectionalLightRotates(t *testing.T) {
	e := newEnv(t, nil, []scene.Light{scene.NewDirectionalLight(mgl32.QuatIdent())})
	e.grabFace(t)
	e.frame(step{x: 60, y: 50, alt: true, right: true})
	q := e.scene.Lights[0].Orientation
	assert.NotEqual(t, mgl32.QuatIdent(), q)
	vecNear(t, mgl32.Vec3{0, 0, 1}, q.Rotate(mgl32.Vec3{0, 0, 1}), 1e-4, "turns about the view axis")
}

func TestGizmoSegments(t *testing.T) {
	tr := core.NewTransform()
	tr.Position = mgl32.Vec3{1, 2, 3}
	cube := NewGizmoCube(tr, SelectionColor)
	segs := cube.AppendSegments(nil)
	require.Len(t, segs, 12)
	for _, s := range segs {
		assert.InDelta(t, 2, s[1].Sub(s[0]).Len(), 1e-6)
	}

	rect := NewGizmoRect(tr, core.BoxSideBack, HoverColor)
	segs = rect.AppendSegments(nil)
	require.Len(t, segs, 4)
	for _, s := range segs {
		assert.InDelta(t, 2, s[0].Z(), 1e-6)
		assert.InDelta(t, 2, s[1].Z(), 1e-6)
	}

	line := NewGizmoLine(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, SelectionColor)
	assert.Len(t, line.AppendSegments(nil), 1)
}

func vecNear(t *testing.T, want, got mgl32.Vec3, delta float64, msgAndArgs ...any) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], delta, msgAndArgs...)
}
