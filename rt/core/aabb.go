package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis aligned box given by its min and max corners.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAABB returns an inverted box that any Grow or Union replaces.
func EmptyAABB() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// UnitAABB returns the [-r, r]^3 box.
func UnitAABB(r float32) AABB {
	return AABB{Min: mgl32.Vec3{-r, -r, -r}, Max: mgl32.Vec3{r, r, r}}
}

func (a AABB) IsEmpty() bool {
	return a.Min[0] > a.Max[0] || a.Min[1] > a.Max[1] || a.Min[2] > a.Max[2]
}

func (a AABB) Grow(p mgl32.Vec3) AABB {
	return AABB{Min: MinVec(a.Min, p), Max: MaxVec(a.Max, p)}
}

func (a AABB) Union(b AABB) AABB {
	return AABB{Min: MinVec(a.Min, b.Min), Max: MaxVec(a.Max, b.Max)}
}

// Contains reports whether b lies fully inside a.
func (a AABB) Contains(b AABB) bool {
	for i := 0; i < 3; i++ {
		if b.Min[i] < a.Min[i] || b.Max[i] > a.Max[i] {
			return false
		}
	}
	return true
}

func (a AABB) ContainsPoint(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < a.Min[i] || p[i] > a.Max[i] {
			return false
		}
	}
	return true
}

func (a AABB) Center() mgl32.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

func (a AABB) Extent() mgl32.Vec3 {
	return a.Max.Sub(a.Min)
}

// LongestAxis returns 0, 1 or 2; ties keep the lower axis.
func (a AABB) LongestAxis() int {
	e := a.Extent()
	axis := 0
	if e[1] > e[axis] {
		axis = 1
	}
	if e[2] > e[axis] {
		axis = 2
	}
	return axis
}

// Padded widens every flat axis by eps on both sides so slab tests never see
// a zero thickness box.
func (a AABB) Padded(eps float32) AABB {
	for i := 0; i < 3; i++ {
		if a.Max[i]-a.Min[i] < eps {
			a.Min[i] -= eps
			a.Max[i] += eps
		}
	}
	return a
}

// Corners lists the eight box corners, x varying slowest.
func (a AABB) Corners() [8]mgl32.Vec3 {
	var corners [8]mgl32.Vec3
	n := 0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				corners[n] = mgl32.Vec3{
					pick(i, a.Min[0], a.Max[0]),
					pick(j, a.Min[1], a.Max[1]),
					pick(k, a.Min[2], a.Max[2]),
				}
				n++
			}
		}
	}
	return corners
}

func pick(i int, lo, hi float32) float32 {
	if i == 0 {
		return lo
	}
	return hi
}

func MinVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
}

func MaxVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}

// MulVec multiplies component-wise.
func MulVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// DivVec divides component-wise.
func DivVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] / b[0], a[1] / b[1], a[2] / b[2]}
}

func AbsVec(a mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Abs(a[0]), math32.Abs(a[1]), math32.Abs(a[2])}
}
