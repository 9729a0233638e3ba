package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// The intersectors below work on rays already localized into the unit space
// of the primitive. hit.Distance is the incoming bound: no hit at or beyond it
// is reported, and a successful test overwrites the hit.

// HitsDefaultQuad intersects the y=0 plane clipped to [-1, 1] on x and z.
func (r *Ray) HitsDefaultQuad(hit *RayHit, transparent bool) bool {
	if r.Direction[1] == 0 || r.Origin[1] == 0 {
		return false
	}

	fromBehind := r.Origin[1] < 0
	if fromBehind == (r.Direction[1] < 0) {
		return false
	}

	t := math32.Abs(r.Origin[1] * r.DirectionReciprocal[1])
	if t >= hit.Distance {
		return false
	}

	p := r.At(t)
	if p[0] < -1 || p[0] > 1 || p[2] < -1 || p[2] > 1 {
		return false
	}

	uv := UV{U: p[0], V: p[2]}
	uv.ShiftToNormalized()
	if transparent && uv.OnCheckerboard() {
		return false
	}

	hit.Position = p
	hit.UV = uv
	hit.FromBehind = fromBehind
	hit.Distance = t
	hit.Normal = mgl32.Vec3{0, 1, 0}
	hit.UVCoverage = 0.25
	return true
}

// HitsDefaultBox intersects the [-1, 1]^3 box and returns the face that was
// hit, or BoxSideNone. Ties between slabs resolve to the lowest axis.
func (r *Ray) HitsDefaultBox(hit *RayHit, transparent bool) BoxSide {
	var nearT, farT mgl32.Vec3
	for i := 0; i < 3; i++ {
		n, f, ok := r.slab(i, -1, 1)
		if !ok {
			return BoxSideNone
		}
		nearT[i], farT[i] = n, f
	}

	farHit, farAxis := minAxis(farT)
	if farHit < 0 {
		return BoxSideNone
	}

	nearHit, nearAxis := maxAxis(nearT)
	if nearHit >= hit.Distance || farHit < max(nearHit, 0) {
		return BoxSideNone
	}

	exitSide := func() BoxSide {
		return NewOctantShifts(r.Faces.Flipped()).BoxSide(farAxis)
	}

	t := nearHit
	var side BoxSide
	fromBehind := nearHit < 0
	if fromBehind {
		if farHit >= hit.Distance {
			return BoxSideNone
		}
		t = farHit
		side = exitSide()
	} else {
		side = r.OctantShifts.BoxSide(nearAxis)
	}

	p := r.At(t)
	var uv UV
	uv.SetByBoxSide(side, p[0], p[1], p[2])

	if transparent && uv.OnCheckerboard() {
		if fromBehind || farHit >= hit.Distance {
			return BoxSideNone
		}
		side = exitSide()
		fromBehind = true
		t = farHit
		p = r.At(t)
		uv.SetByBoxSide(side, p[0], p[1], p[2])
		if uv.OnCheckerboard() {
			return BoxSideNone
		}
	}

	hit.Position = p
	hit.UV = uv
	hit.FromBehind = fromBehind
	hit.Distance = t
	hit.Normal = side.Normal()
	hit.UVCoverage = 0.25
	return side
}

// HitsDefaultSphere intersects the unit sphere at the origin. A ray starting
// inside reports its exit point from behind.
func (r *Ray) HitsDefaultSphere(hit *RayHit, transparent bool) bool {
	tToClosest := -r.Origin.Dot(r.Direction)
	if tToClosest <= 0 && r.Origin.LenSqr() >= 1 {
		return false
	}

	// Both terms are scaled by |d|^2 so non unit directions from scaled
	// geometry stay exact.
	dirSqLen := r.Direction.LenSqr()
	sqDistToCenter := r.Origin.LenSqr()*dirSqLen - tToClosest*tToClosest
	if sqDistToCenter > dirSqLen {
		return false
	}

	delta := math32.Sqrt(dirSqLen - sqDistToCenter)
	invDirSqLen := 1 / dirSqLen
	t := (tToClosest - delta) * invDirSqLen
	if t >= hit.Distance {
		return false
	}

	n := r.At(t)
	var uv UV
	uv.SetBySphere(n[0], n[1], n[2])

	fromBehind := t <= 0 || (transparent && uv.OnCheckerboard())
	if fromBehind {
		t = (tToClosest + delta) * invDirSqLen
		if t <= 0 || t >= hit.Distance {
			return false
		}
		n = r.At(t)
		uv.SetBySphere(n[0], n[1], n[2])
		if transparent && uv.OnCheckerboard() {
			return false
		}
	}

	hit.Position = n
	hit.Normal = n
	hit.UV = uv
	hit.FromBehind = fromBehind
	hit.Distance = t
	hit.UVCoverage = 1 / UnitSphereAreaOverSix
	return true
}

type tetFace struct {
	origin, normal mgl32.Vec3
	toTangent      mgl32.Mat3
}

// Faces of the unit tetrahedron with vertices (a,a,-a), (-a,a,a), (-a,-a,-a)
// and (a,-a,a), a = TetMax. Each tangent matrix maps a point relative to the
// face origin into the face's barycentric (u, v).
var tetFaces = [4]tetFace{
	{
		origin: mgl32.Vec3{-TetMax, -TetMax, -TetMax},
		normal: mgl32.Vec3{-TetMax, TetMax, -TetMax},
		toTangent: mgl32.Mat3FromCols(
			mgl32.Vec3{TetMax, -TetMin, -TetMax},
			mgl32.Vec3{TetMin, TetMin, TetMax},
			mgl32.Vec3{-TetMin, TetMax, -TetMax},
		),
	},
	{
		origin: mgl32.Vec3{-TetMax, -TetMax, -TetMax},
		normal: mgl32.Vec3{TetMax, -TetMax, -TetMax},
		toTangent: mgl32.Mat3FromCols(
			mgl32.Vec3{TetMin, TetMin, TetMax},
			mgl32.Vec3{-TetMin, TetMax, -TetMax},
			mgl32.Vec3{TetMax, -TetMin, -TetMax},
		),
	},
	{
		origin: mgl32.Vec3{-TetMax, -TetMax, -TetMax},
		normal: mgl32.Vec3{-TetMax, -TetMax, TetMax},
		toTangent: mgl32.Mat3FromCols(
			mgl32.Vec3{-TetMin, TetMax, -TetMax},
			mgl32.Vec3{TetMax, -TetMin, -TetMax},
			mgl32.Vec3{TetMin, TetMin, TetMax},
		),
	},
	{
		origin: mgl32.Vec3{TetMax, -TetMax, TetMax},
		normal: mgl32.Vec3{TetMax, TetMax, TetMax},
		toTangent: mgl32.Mat3FromCols(
			mgl32.Vec3{-TetMax, TetMin, TetMax},
			mgl32.Vec3{TetMin, TetMin, TetMax},
			mgl32.Vec3{TetMin, -TetMax, TetMax},
		),
	},
}

// HitsDefaultTetrahedron intersects the unit tetrahedron, keeping the closest
// of its four faces.
func (r *Ray) HitsDefaultTetrahedron(hit *RayHit, transparent bool) bool {
	found := false
	var current RayHit
	for i := range tetFaces {
		face := &tetFaces[i]
		if !r.HitsPlane(face.origin, face.normal, &current) {
			continue
		}
		if current.Distance >= hit.Distance {
			continue
		}

		tangent := face.toTangent.Mul3x1(current.Position.Sub(face.origin))
		if tangent[0] < 0 || tangent[1] < 0 || tangent[0]+tangent[1] > 1 {
			continue
		}

		current.UV = UV{U: tangent[0], V: tangent[1]}
		if transparent && current.UV.OnCheckerboard() {
			continue
		}

		current.UVCoverage = Sqrt3 / 4
		*hit = current
		found = true
	}
	return found
}

// SphereTracer intersects light proxies: spheres of arbitrary radius in
// world space.
type SphereTracer struct {
	b, c, tNear, tFar, tMax float32
}

// Hit reports whether the sphere is entered before maxDistance. On a hit
// maxDistance is lowered to the entry distance, or to zero when the origin is
// inside the sphere.
func (s *SphereTracer) Hit(center mgl32.Vec3, radius float32, origin, direction mgl32.Vec3, maxDistance *float32) bool {
	invRadius := 1 / radius
	s.tMax = *maxDistance * invRadius
	rc := center.Sub(origin).Mul(invRadius)

	s.b = direction.Dot(rc)
	s.c = rc.LenSqr() - 1
	h := s.b*s.b - s.c
	if h < 0 {
		return false
	}

	h = math32.Sqrt(h)
	s.tNear = s.b - h
	s.tFar = s.b + h
	if s.tFar <= 0 || s.tNear >= s.tMax {
		return false
	}
	*maxDistance = max(s.tNear, 0) * radius
	return true
}

// IntegrateDensity integrates a density falling off quadratically from the
// center of the last hit sphere along the clipped chord.
func (s *SphereTracer) IntegrateDensity() float32 {
	tn := max(s.tNear, 0)
	tf := min(s.tFar, s.tMax)
	tn2 := tn * tn
	tf2 := tf * tf
	return (s.c*tn - s.b*tn2 + tn*tn2/3 - (s.c*tf - s.b*tf2 + tf*tf2/3)) * (3.0 / 4.0)
}
