// Package editor picks geometries and lights under the cursor and drags,
// scales and rotates them against the faces of their bounding box.
package editor

import (
	"github.com/chewxy/math32"
	"github.com/gekko3d/slim/rt/core"
	"github.com/gekko3d/slim/rt/input"
	"github.com/gekko3d/slim/rt/scene"
	"github.com/gekko3d/slim/rt/tracer"
	"github.com/go-gl/mathgl/mgl32"
)

type Bounds struct {
	Left, Top, Right, Bottom int
}

// Viewport is the screen region a camera renders into. Mouse coordinates
// are made relative to Bounds before rays are cast.
type Viewport struct {
	Camera     *scene.Camera
	Dimensions *scene.Dimensions
	Bounds     Bounds
	Projection scene.CameraRayProjection
}

func NewViewport(camera *scene.Camera, dims *scene.Dimensions) *Viewport {
	v := &Viewport{Camera: camera, Dimensions: dims}
	v.Bounds = Bounds{Right: dims.Width, Bottom: dims.Height}
	v.Projection.Reset(camera, dims, false)
	return v
}

// Selection is polled once per frame through Manipulate.
//
// A left click without alt picks the nearest geometry or light under the
// cursor, or clears the selection. Holding alt with no button down hovers
// the faces of the selected object's box; alt with a button drags on the
// hovered face: left translates, middle scales, right rotates. Dragging with
// the left button and no alt moves the object parallel to the screen.
type Selection struct {
	Scene  *scene.Scene
	Tracer *tracer.SceneTracer

	Geometry *scene.Geometry
	Light    *scene.Light
	// BoxSide is the face under the cursor while alt is held.
	BoxSide core.BoxSide
	// Changed reports that the last pick selected a different object.
	Changed bool

	ray, localRay core.Ray
	hit, localHit core.RayHit

	xform          core.Transform
	objectRotation mgl32.Quat
	objectScale    mgl32.Vec3
	planeOrigin    mgl32.Vec3
	planeNormal    mgl32.Vec3
	planeCenter    mgl32.Vec3
	worldOffset    mgl32.Vec3
	worldPosition  *mgl32.Vec3
	objectDistance float32

	leftWasPressed bool
}

func NewSelection(s *scene.Scene, t *tracer.SceneTracer) *Selection {
	return &Selection{Scene: s, Tracer: t}
}

func (s *Selection) Selected() bool { return s.Geometry != nil || s.Light != nil }

func (s *Selection) Clear() {
	s.Geometry, s.Light, s.worldPosition = nil, nil, nil
	s.BoxSide = core.BoxSideNone
}

// Transform is the box the selected object is manipulated through: the
// geometry transform fitted to a mesh's bounds, or a unit box around a
// light. Point lights are never rotated.
func (s *Selection) Transform() core.Transform {
	if s.Geometry != nil {
		t := s.Geometry.Transform
		if s.Geometry.Type == scene.GeometryMesh {
			bounds := s.Scene.Meshes[s.Geometry.ID].AABB.Padded(core.Eps)
			t.Position = t.ExternPos(bounds.Center())
			t.Scale = core.MulVec(t.Scale, bounds.Extent().Mul(0.5))
		}
		return t
	}
	t := core.NewTransform()
	if s.Light != nil {
		t.Position = s.Light.Position
		if s.Light.Kind != scene.LightPoint {
			t.Orientation = s.Light.Orientation
		}
	}
	return t
}

// Gizmos appends the overlay of the selection: its box, and the hovered face
// while alt is held.
func (s *Selection) Gizmos(dst []Gizmo) []Gizmo {
	if !s.Selected() {
		return dst
	}
	t := s.Transform()
	dst = append(dst, NewGizmoCube(t, SelectionColor))
	if s.BoxSide != core.BoxSideNone {
		dst = append(dst, NewGizmoRect(t, s.BoxSide, HoverColor))
	}
	return dst
}

// Manipulate advances the selection by one frame of input.
func (s *Selection) Manipulate(v *Viewport, in *input.State) {
	cam := v.Camera
	v.Projection.Reset(cam, v.Dimensions, false)
	x := int(in.MouseX) - v.Bounds.Left
	y := int(in.MouseY) - v.Bounds.Top
	origin := cam.Position
	direction := v.Projection.RayDirectionAt(x, y).Normalize()

	left := in.Pressed[input.MouseButtonLeft]
	if left && !s.leftWasPressed && !in.Alt() {
		s.pick(cam, origin, direction)
	}
	s.leftWasPressed = left

	if !s.Selected() {
		return
	}
	if !in.Alt() {
		s.BoxSide = core.BoxSideNone
		if left && in.MouseMoved {
			s.dragOnScreen(v, x, y)
		}
		return
	}

	if !in.AnyMouseButton() {
		s.hover(origin, direction)
		return
	}
	if s.BoxSide == core.BoxSideNone {
		return
	}

	s.ray.Reset(origin, direction)
	if !s.ray.HitsPlane(s.planeOrigin, s.planeNormal, &s.hit) {
		return
	}
	s.xform = s.Transform()
	switch {
	case left:
		*s.worldPosition = s.hit.Position.Sub(s.worldOffset)
	case in.Pressed[input.MouseButtonMiddle]:
		s.scale()
	case in.Pressed[input.MouseButtonRight]:
		s.rotate()
	}
}

// pick selects whatever is nearest along the ray: a geometry or the sphere
// proxy of a light.
func (s *Selection) pick(cam *scene.Camera, origin, direction mgl32.Vec3) {
	s.ray.Reset(origin, direction)
	hitGeo := s.Tracer.Trace(&s.ray, &s.hit, s.Scene, false, math32.Inf(1))
	var hitLight *scene.Light
	for i := range s.Scene.Lights {
		if s.Tracer.HitLight(&s.Scene.Lights[i], &s.ray, &s.hit) {
			hitLight = &s.Scene.Lights[i]
		}
	}

	prevGeo, prevLight := s.Geometry, s.Light
	switch {
	case hitLight != nil:
		s.Geometry, s.Light = nil, hitLight
		s.worldPosition = &hitLight.Position
	case hitGeo != nil:
		s.Geometry, s.Light = hitGeo, nil
		s.worldPosition = &hitGeo.Transform.Position
	default:
		s.Clear()
	}
	s.Changed = prevGeo != s.Geometry || prevLight != s.Light
	if !s.Selected() {
		return
	}

	s.xform = s.Transform()
	s.localRay.Localize(&s.ray, &s.xform)
	s.localHit.Distance = math32.Inf(1)
	if s.localRay.HitsDefaultBox(&s.localHit, false) != core.BoxSideNone {
		s.planeOrigin = s.xform.ExternPos(s.localHit.Position)
	} else {
		s.planeOrigin = s.ray.At(s.hit.Distance)
	}
	s.worldOffset = s.planeOrigin.Sub(*s.worldPosition)
	s.objectDistance = cam.InternDir(s.planeOrigin.Sub(origin))[2]
}

// hover casts the cursor ray onto the selection box and remembers the face
// it hits as the plane drags are projected onto.
func (s *Selection) hover(origin, direction mgl32.Vec3) {
	s.xform = s.Transform()
	s.ray.Reset(origin, direction)
	s.localRay.Localize(&s.ray, &s.xform)
	s.localHit.Distance = math32.Inf(1)
	s.BoxSide = s.localRay.HitsDefaultBox(&s.localHit, false)
	if s.BoxSide == core.BoxSideNone {
		return
	}

	s.planeOrigin = s.xform.ExternPos(s.localHit.Position)
	s.planeCenter = s.xform.ExternPos(s.localHit.Normal)
	s.planeNormal = s.xform.ExternDir(s.localHit.Normal)
	s.worldOffset = s.planeOrigin.Sub(*s.worldPosition)
	s.objectRotation = s.xform.Orientation
	if s.Geometry != nil {
		s.objectScale = s.Geometry.Transform.Scale
	} else {
		r := s.Light.Radius()
		s.objectScale = mgl32.Vec3{r, r, r}
	}
}

// scale grows the object along the two axes of the hovered face by how far
// the cursor moved away from the grab point. Lights turn the change into
// intensity.
func (s *Selection) scale() {
	absPos := core.AbsVec(s.xform.InternPos(s.hit.Position))
	absOrg := core.AbsVec(s.xform.InternPos(s.planeOrigin))
	axis := 2
	switch s.BoxSide {
	case core.BoxSideLeft, core.BoxSideRight:
		axis = 0
	case core.BoxSideBottom, core.BoxSideTop:
		axis = 1
	}
	absPos[axis], absOrg[axis] = 0, 0
	diff := absPos.Sub(absOrg)

	if s.Geometry != nil {
		t := &s.Geometry.Transform
		t.Scale = core.AbsVec(s.objectScale.Add(core.MulVec(diff, t.Scale)))
		return
	}
	s.Light.Intensity = math32.Abs(scene.LightRadiusIntensityFactor * (s.objectScale[0] + absPos.Len() - absOrg.Len()))
}

// rotate turns the object by the angle between the grab point and the
// cursor around the center of the hovered face.
func (s *Selection) rotate() {
	if s.Light != nil && s.Light.Kind == scene.LightPoint {
		return
	}
	v1 := s.hit.Position.Sub(s.planeCenter)
	v2 := s.planeOrigin.Sub(s.planeCenter)
	q := mgl32.Quat{V: v2.Cross(v1), W: v1.Dot(v2) + math32.Sqrt(v1.LenSqr()*v2.LenSqr())}
	if q.Len() == 0 {
		return
	}
	rotation := q.Normalize().Mul(s.objectRotation).Normalize()
	if s.Geometry != nil {
		s.Geometry.Transform.Orientation = rotation
	} else {
		s.Light.Orientation = rotation
	}
}

// dragOnScreen moves the object so the grab point stays under the cursor at
// the depth it was picked at.
func (s *Selection) dragOnScreen(v *Viewport, x, y int) {
	cam, d := v.Camera, v.Dimensions
	ndcX := (float32(x)+0.5)/d.HalfWidth - 1
	ndcY := (float32(y)+0.5)/d.HalfHeight - 1
	viewX := ndcX * s.objectDistance / (cam.FocalLength * d.HeightOverWidth)
	viewY := ndcY * s.objectDistance / cam.FocalLength
	*s.worldPosition = cam.ExternDir(mgl32.Vec3{viewX, -viewY, s.objectDistance}).
		Add(cam.Position).
		Sub(s.worldOffset)
}
