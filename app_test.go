package slim

import (
	"bytes"
	"testing"

	"github.com/gekko3d/slim/rt/input"
	"github.com/gekko3d/slim/rt/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frameInput struct {
	x, y                     float64
	wheel                    float64
	alt, left, middle, right bool
}

// newBoxApp views a unit box from z=-10 on a 100x100 screen.
func newBoxApp(t *testing.T, logger Logger) (*App, *input.State) {
	t.Helper()
	s, err := scene.New(scene.Counts{}, scene.Options{
		Geometries: []scene.Geometry{scene.NewGeometry(scene.GeometryBox)},
	})
	require.NoError(t, err)
	cam := scene.NewCamera()
	cam.Position = mgl32.Vec3{0, 0, -10}
	app := NewApp(s, cam, 100, 100, logger)
	in := &input.State{}
	step(app, in, frameInput{x: 50, y: 50})
	return app, in
}

func step(app *App, in *input.State, f frameInput) {
	in.BeginFrame()
	in.MoveMouse(f.x, f.y)
	in.Scroll(f.wheel)
	in.SetKey(input.KeyLeftAlt, f.alt)
	in.SetKey(input.MouseButtonLeft, f.left)
	in.SetKey(input.MouseButtonMiddle, f.middle)
	in.SetKey(input.MouseButtonRight, f.right)
	app.Frame(in)
}

func TestApp_FrameSelectsAndDrags(t *testing.T) {
	app, in := newBoxApp(t, nil)

	step(app, in, frameInput{x: 50, y: 50, left: true})
	if app.Selection.Geometry != &app.Scene.Geometries[0] {
		t.Errorf("The box under the cursor should be selected.")
	}
	assert.Len(t, app.Gizmos(), 1)

	step(app, in, frameInput{x: 60, y: 50, left: true})
	pos := app.Scene.Geometries[0].Transform.Position
	assert.InDeltaSlice(t, []float32{0.9, 0, 0}, pos[:], 1e-4)
	assert.InDelta(t, 1.9, app.Scene.AABBs[0].Max.X(), 1e-4, "bounds follow within the same frame")

	step(app, in, frameInput{x: 0, y: 0})
	step(app, in, frameInput{x: 0, y: 0, left: true})
	assert.False(t, app.Selection.Selected())
	assert.Empty(t, app.Gizmos())
}

func TestApp_CameraControls(t *testing.T) {
	app, in := newBoxApp(t, nil)

	step(app, in, frameInput{x: 70, y: 50, right: true})
	assert.InDelta(t, 10, app.Camera.Position.Len(), 1e-4, "orbiting keeps the target distance")
	assert.Less(t, app.Camera.Position.X(), float32(0))
	assert.False(t, app.Selection.Selected())

	app, in = newBoxApp(t, nil)
	step(app, in, frameInput{x: 70, y: 50, middle: true})
	assert.InDeltaSlice(t, []float32{-0.2, 0, -10}, app.Camera.Position[:], 1e-4)

	app, in = newBoxApp(t, nil)
	step(app, in, frameInput{x: 50, y: 50, wheel: 1})
	assert.InDelta(t, -9.3303, app.Camera.Position.Z(), 1e-3)

	app, in = newBoxApp(t, nil)
	step(app, in, frameInput{x: 70, y: 50, alt: true, right: true})
	assert.InDeltaSlice(t, []float32{0, 0, -10}, app.Camera.Position[:], 0, "alt drags belong to the selection")
}

func TestApp_Systems(t *testing.T) {
	app, in := newBoxApp(t, nil)
	var calls []uint64
	app.UseSystem(func(a *App, _ *input.State) {
		calls = append(calls, a.Frames())
	})

	step(app, in, frameInput{x: 50, y: 50})
	step(app, in, frameInput{x: 50, y: 50})
	assert.Equal(t, []uint64{1, 2}, calls)
	assert.EqualValues(t, 3, app.Frames())
}

func TestApp_Resize(t *testing.T) {
	app, _ := newBoxApp(t, nil)

	app.Resize(200, 100)
	if app.Dimensions.Width != 200 || app.Viewport.Bounds.Right != 200 {
		t.Errorf("The viewport should follow the new size, got %+v.", app.Viewport.Bounds)
	}
	assert.InDelta(t, 2, app.Dimensions.WidthOverHeight, 1e-6)

	app.Resize(0, 0)
	assert.Equal(t, 200, app.Dimensions.Width, "empty sizes are ignored")
}

func TestApp_LogsSelection(t *testing.T) {
	var out, errOut bytes.Buffer
	app, in := newBoxApp(t, NewWriterLogger(&out, &errOut, "test", true, 0))

	step(app, in, frameInput{x: 50, y: 50, left: true})
	assert.Contains(t, out.String(), "[test] DEBUG: app: selected box geometry")
	assert.Empty(t, errOut.String())
}

func TestDefaultLogger(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriterLogger(&out, &errOut, "slim", false, 0)

	l.Debugf("hidden %d", 1)
	l.Infof("hello %d", 2)
	l.Warnf("careful")
	l.Errorf("broken")
	assert.Equal(t, "[slim] INFO: hello 2\n", out.String())
	assert.Equal(t, "[slim] WARN: careful\n[slim] ERROR: broken\n", errOut.String())

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown")
	assert.Contains(t, out.String(), "[slim] DEBUG: shown\n")

	bare := NewWriterLogger(&out, &errOut, "", false, 0)
	out.Reset()
	bare.Infof("plain")
	assert.Equal(t, "INFO: plain\n", out.String())

	nop := NewNopLogger()
	nop.SetDebug(true)
	assert.False(t, nop.DebugEnabled())
}
