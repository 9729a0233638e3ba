// Package slim ties a scene, its tracer and the selection together into an
// interactive app that is advanced one frame of input at a time.
package slim

import (
	"github.com/gekko3d/slim/rt/editor"
	"github.com/gekko3d/slim/rt/input"
	"github.com/gekko3d/slim/rt/scene"
	"github.com/gekko3d/slim/rt/tracer"
)

// CameraControls scales mouse motion into camera moves. Right drag orbits,
// middle drag pans and the wheel dollies, all only while alt is up since
// alt drags belong to the selection.
type CameraControls struct {
	OrbitSpeed float32
	PanSpeed   float32
	DollySpeed float32
}

func DefaultCameraControls() CameraControls {
	return CameraControls{OrbitSpeed: 0.005, PanSpeed: 0.01, DollySpeed: 20}
}

// System runs once per frame after the selection and the scene were
// updated.
type System func(app *App, in *input.State)

type App struct {
	Scene      *scene.Scene
	Tracer     *tracer.SceneTracer
	Selection  *editor.Selection
	Camera     scene.Camera
	Dimensions scene.Dimensions
	Viewport   *editor.Viewport
	Controls   CameraControls
	Logger     Logger

	systems []System
	gizmos  []editor.Gizmo
	frames  uint64
}

// NewApp views s through cam on a width x height screen. A nil logger
// discards output.
func NewApp(s *scene.Scene, cam scene.Camera, width, height int, logger Logger) *App {
	if logger == nil {
		logger = NewNopLogger()
	}
	a := &App{
		Scene:      s,
		Tracer:     tracer.ForScene(s),
		Camera:     cam,
		Dimensions: scene.NewDimensions(width, height),
		Controls:   DefaultCameraControls(),
		Logger:     logger,
	}
	a.Selection = editor.NewSelection(s, a.Tracer)
	a.Viewport = editor.NewViewport(&a.Camera, &a.Dimensions)
	logger.Debugf("app: %d geometries, %d lights, %dx%d", len(s.Geometries), len(s.Lights), width, height)
	return a
}

func (a *App) UseSystem(fn System) *App {
	a.systems = append(a.systems, fn)
	return a
}

// Frames is the number of frames run so far.
func (a *App) Frames() uint64 { return a.frames }

// Frame moves the camera, lets the selection manipulate the scene and then
// refreshes the scene bounds and BVH, once.
func (a *App) Frame(in *input.State) {
	a.moveCamera(in)
	a.Selection.Manipulate(a.Viewport, in)
	if a.Selection.Changed {
		a.logSelection()
	}
	a.Scene.Update()
	for _, fn := range a.systems {
		fn(a, in)
	}
	a.frames++
}

func (a *App) moveCamera(in *input.State) {
	if in.Alt() {
		return
	}
	c := a.Controls
	dx, dy := float32(in.MouseDeltaX), float32(in.MouseDeltaY)
	if in.Pressed[input.MouseButtonRight] && in.MouseMoved {
		a.Camera.Orbit(dx*c.OrbitSpeed, -dy*c.OrbitSpeed)
	}
	if in.Pressed[input.MouseButtonMiddle] && in.MouseMoved {
		a.Camera.Pan(-dx*c.PanSpeed, dy*c.PanSpeed)
	}
	if in.WheelDelta != 0 {
		a.Camera.Dolly(float32(in.WheelDelta) * c.DollySpeed)
	}
}

func (a *App) logSelection() {
	sel := a.Selection
	switch {
	case sel.Geometry != nil:
		a.Logger.Debugf("app: selected %s geometry at %v", sel.Geometry.Type, sel.Geometry.Transform.Position)
	case sel.Light != nil:
		a.Logger.Debugf("app: selected %s light at %v", sel.Light.Kind, sel.Light.Position)
	default:
		a.Logger.Debugf("app: selection cleared")
	}
}

// Gizmos returns the overlay of the current selection. The slice is reused
// by the next call.
func (a *App) Gizmos() []editor.Gizmo {
	a.gizmos = a.Selection.Gizmos(a.gizmos[:0])
	return a.gizmos
}

// Resize updates the screen size rays are cast through.
func (a *App) Resize(width, height int) {
	if width <= 0 || height <= 0 || (width == a.Dimensions.Width && height == a.Dimensions.Height) {
		return
	}
	a.Dimensions.Update(width, height)
	a.Viewport.Bounds = editor.Bounds{Right: width, Bottom: height}
	a.Viewport.Projection.Reset(&a.Camera, &a.Dimensions, false)
	a.Logger.Debugf("app: resized to %dx%d", width, height)
}
