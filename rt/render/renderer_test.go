package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/gekko3d/slim/rt/editor"
	"github.com/gekko3d/slim/rt/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boxScene is a unit box at the origin seen from z=-10.
func boxScene(t *testing.T, geos []scene.Geometry, lights []scene.Light) (*scene.Scene, *scene.Camera) {
	t.Helper()
	if geos == nil {
		geos = []scene.Geometry{scene.NewGeometry(scene.GeometryBox)}
	}
	s, err := scene.New(scene.Counts{}, scene.Options{Geometries: geos, Lights: lights})
	require.NoError(t, err)
	cam := scene.NewCamera()
	cam.Position = mgl32.Vec3{0, 0, -10}
	return s, &cam
}

func testOptions(mode Mode) Options {
	o := DefaultOptions()
	o.Width, o.Height = 64, 64
	o.Mode = mode
	o.Background = mgl32.Vec3{0, 0, 1}
	return o
}

func channelNear(t *testing.T, want float64, got uint8, msg string) {
	t.Helper()
	assert.InDelta(t, want, float64(got), 1.5, msg)
}

func TestRenderNormals(t *testing.T) {
	s, cam := boxScene(t, nil, nil)
	r := New(testOptions(ModeNormals))
	img := r.Render(s, cam)
	require.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())

	c := img.RGBAAt(32, 32)
	channelNear(t, 128, c.R, "x")
	channelNear(t, 128, c.G, "y")
	channelNear(t, 0, c.B, "z faces the camera")
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(0, 0))

	assert.Equal(t, 1, r.Profiler.Frames)
	assert.EqualValues(t, 64*64, r.Profiler.Rays)
	assert.NotZero(t, r.Profiler.Hits)
	assert.Less(t, r.Profiler.Hits, r.Profiler.Rays)
	assert.Len(t, r.Profiler.Rows(), 7)
}

func TestRenderDepth(t *testing.T) {
	s, cam := boxScene(t, nil, nil)
	o := testOptions(ModeDepth)
	o.MaxDepth = 18
	img := New(o).Render(s, cam)
	channelNear(t, 0.5*255, img.RGBAAt(32, 32).R, "depth 9 of 18")
}

func TestRenderBeautyShadows(t *testing.T) {
	light := scene.NewPointLight(mgl32.Vec3{0, 0, -5})
	box := scene.NewGeometry(scene.GeometryBox)
	// Casts shadows without being seen.
	blocker := scene.NewGeometry(scene.GeometryBox)
	blocker.Transform.Position = mgl32.Vec3{0, 0, -3}
	blocker.Transform.Scale = mgl32.Vec3{0.5, 0.5, 0.5}
	blocker.Flags = scene.GeometryIsShadowing

	s, cam := boxScene(t, []scene.Geometry{box, blocker}, []scene.Light{light})
	o := testOptions(ModeBeauty)
	o.Shadows = false
	r := New(o)
	lit := r.Render(s, cam).RGBAAt(32, 32)
	// Ambient plus a light 4 units away with linear falloff.
	channelNear(t, 0.35*255, lit.R, "lit")
	assert.Zero(t, r.Profiler.ShadowRays)

	r.Options.Shadows = true
	shadowed := r.Render(s, cam).RGBAAt(32, 32)
	channelNear(t, 0.1*255, shadowed.R, "ambient only")
	assert.NotZero(t, r.Profiler.ShadowRays)
}

func TestRenderSpotCone(t *testing.T) {
	// Shines along +z from behind the camera side of the box.
	spot := scene.NewSpotLight(mgl32.Vec3{0, 0, -5}, mgl32.QuatIdent())
	s, cam := boxScene(t, nil, []scene.Light{spot})
	o := testOptions(ModeBeauty)
	lit := New(o).Render(s, cam).RGBAAt(32, 32)
	assert.Greater(t, lit.R, uint8(0.2*255))

	s.Lights[0].Orientation = mgl32.QuatRotate(mgl32.DegToRad(180), mgl32.Vec3{0, 1, 0})
	dark := New(o).Render(s, cam).RGBAAt(32, 32)
	channelNear(t, 0.1*255, dark.R, "facing away")
}

func TestRenderDownscale(t *testing.T) {
	s, cam := boxScene(t, nil, nil)
	o := testOptions(ModeNormals)
	o.Downscale = 4
	r := New(o)
	img := r.Render(s, cam)
	require.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())
	assert.EqualValues(t, 16*16, r.Profiler.Rays)
	channelNear(t, 0, img.RGBAAt(32, 32).B, "box in the middle")
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(1, 1))
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeBeauty, ModeNormals, ModeDepth, ModeUVs} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("wireframe")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestDrawEdges(t *testing.T) {
	cam := scene.NewCamera()
	cam.Position = mgl32.Vec3{0, 0, -10}
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	red := color.RGBA{255, 0, 0, 255}

	DrawEdges(img, &cam, []editor.Segment{{{-2, 0, 0}, {2, 0, 0}}}, red)
	assert.Equal(t, red, img.RGBAAt(31, 32))
	assert.Equal(t, red, img.RGBAAt(20, 32))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(10, 32), "beyond the segment end")

	behind := image.NewRGBA(image.Rect(0, 0, 64, 64))
	DrawEdges(behind, &cam, []editor.Segment{{{-1, 0, -20}, {1, 0, -20}}}, red)
	assert.Equal(t, make([]uint8, len(behind.Pix)), behind.Pix)
}

func TestDrawGizmos(t *testing.T) {
	s, cam := boxScene(t, nil, nil)
	r := New(testOptions(ModeNormals))
	img := r.Render(s, cam)
	sel := editor.NewSelection(s, nil)
	sel.Geometry = &s.Geometries[0]
	r.DrawGizmos(img, cam, sel.Gizmos(nil))

	// The front face of the box spans 2 units at depth 9.
	edgeX := 32*2*1/9.0 + 31.5 + 0.5
	edge := int(edgeX)
	assert.Equal(t, color.RGBA{255, 255, 0, 255}, img.RGBAAt(edge, 32))
}
