package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// RayHit is filled in by the intersectors. Distance doubles as the culling
// bound: callers set it to the farthest distance they accept and every
// successful test lowers it.
type RayHit struct {
	Position   mgl32.Vec3
	Normal     mgl32.Vec3
	UV         UV
	Distance   float32
	UVCoverage float32
	NdotRd     float32
	ID         uint32
	FromBehind bool
}

// Ray caches the reciprocal direction and octant of its direction for slab
// tests. Mutate it through Reset so the caches stay in sync.
type Ray struct {
	Origin              mgl32.Vec3
	ScaledOrigin        mgl32.Vec3
	Direction           mgl32.Vec3
	DirectionReciprocal mgl32.Vec3
	Faces               Sides
	OctantShifts        OctantShifts
	Depth               uint8
}

func NewRay(origin, direction mgl32.Vec3) Ray {
	var r Ray
	r.Reset(origin, direction)
	return r
}

func (r *Ray) Reset(origin, direction mgl32.Vec3) {
	r.Origin = origin
	r.Direction = direction
	for i := 0; i < 3; i++ {
		r.DirectionReciprocal[i] = 1 / direction[i]
		if direction[i] == 0 {
			r.ScaledOrigin[i] = 0
		} else {
			r.ScaledOrigin[i] = -origin[i] * r.DirectionReciprocal[i]
		}
	}
	r.Faces = FacingSides(direction)
	r.OctantShifts = NewOctantShifts(r.Faces)
}

// Localize sets r to src expressed in the local space of t. The direction is
// not renormalised so distances stay comparable across spaces.
func (r *Ray) Localize(src *Ray, t *Transform) {
	invScale := mgl32.Vec3{1 / t.Scale[0], 1 / t.Scale[1], 1 / t.Scale[2]}
	invRotation := t.Orientation.Conjugate()
	r.Reset(
		MulVec(invScale, invRotation.Rotate(src.Origin.Sub(t.Position))),
		MulVec(invScale, invRotation.Rotate(src.Direction)),
	)
	r.Depth = src.Depth
}

func (r *Ray) At(t float32) mgl32.Vec3 {
	return r.Direction.Mul(t).Add(r.Origin)
}

// slab intersects the ray with [lo, hi] along one axis, returning the entry
// and exit distances in direction order.
func (r *Ray) slab(axis int, lo, hi float32) (near, far float32, ok bool) {
	if r.Direction[axis] == 0 {
		o := r.Origin[axis]
		if o < lo || o > hi {
			return 0, 0, false
		}
		return math32.Inf(-1), math32.Inf(1), true
	}
	if r.OctantShifts[axis] != 0 {
		lo, hi = hi, lo
	}
	rcp := r.DirectionReciprocal[axis]
	return lo*rcp + r.ScaledOrigin[axis], hi*rcp + r.ScaledOrigin[axis], true
}

// HitsAABB clips the ray against a box. near is clamped at zero.
func (r *Ray) HitsAABB(a AABB) (near, far float32, hit bool) {
	near, far = 0, math32.Inf(1)
	for i := 0; i < 3; i++ {
		n, f, ok := r.slab(i, a.Min[i], a.Max[i])
		if !ok {
			return 0, 0, false
		}
		near = max(near, n)
		far = min(far, f)
	}
	return near, far, near <= far
}

// HitsPlane intersects a one sided plane. It overwrites hit without
// consulting hit.Distance.
func (r *Ray) HitsPlane(origin, normal mgl32.Vec3, hit *RayHit) bool {
	NdotRd := normal.Dot(r.Direction)
	if NdotRd == 0 {
		return false
	}

	NdotRoP := normal.Dot(origin.Sub(r.Origin))
	if NdotRoP == 0 {
		return false
	}

	facing := NdotRd < 0
	hit.FromBehind = NdotRoP > 0
	if hit.FromBehind == facing {
		return false
	}

	t := NdotRoP / NdotRd
	hit.Distance = t
	hit.Position = r.At(t)
	hit.Normal = normal
	return true
}
