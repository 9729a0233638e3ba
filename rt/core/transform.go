package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform places a unit primitive in the world: scale, then rotate, then
// translate.
type Transform struct {
	Orientation mgl32.Quat
	Position    mgl32.Vec3
	Scale       mgl32.Vec3
}

func NewTransform() Transform {
	return Transform{
		Orientation: mgl32.QuatIdent(),
		Position:    mgl32.Vec3{0, 0, 0},
		Scale:       mgl32.Vec3{1, 1, 1},
	}
}

// ExternPos maps a local point into world space.
func (t *Transform) ExternPos(p mgl32.Vec3) mgl32.Vec3 {
	return t.Orientation.Rotate(MulVec(t.Scale, p)).Add(t.Position)
}

// InternPos maps a world point into local space.
func (t *Transform) InternPos(p mgl32.Vec3) mgl32.Vec3 {
	return DivVec(t.Orientation.Conjugate().Rotate(p.Sub(t.Position)), t.Scale)
}

func (t *Transform) ExternDir(d mgl32.Vec3) mgl32.Vec3 {
	return t.Orientation.Rotate(MulVec(t.Scale, d)).Normalize()
}

func (t *Transform) InternDir(d mgl32.Vec3) mgl32.Vec3 {
	return DivVec(t.Orientation.Conjugate().Rotate(d), t.Scale).Normalize()
}

// ExternAABB bounds the eight transformed corners of a local box.
func (t *Transform) ExternAABB(a AABB) AABB {
	out := EmptyAABB()
	for _, c := range a.Corners() {
		out = out.Grow(t.ExternPos(c))
	}
	return out
}

func (t *Transform) InternAABB(a AABB) AABB {
	out := EmptyAABB()
	for _, c := range a.Corners() {
		out = out.Grow(t.InternPos(c))
	}
	return out
}

func (t *Transform) ObjectToWorld() mgl32.Mat4 {
	// M = T * R * S
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Orientation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

func (t *Transform) WorldToObject() mgl32.Mat4 {
	// inv(M) = inv(S) * inv(R) * inv(T)
	invScale := mgl32.Scale3D(1.0/t.Scale.X(), 1.0/t.Scale.Y(), 1.0/t.Scale.Z())
	invRotate := t.Orientation.Conjugate().Mat4()
	invTranslate := mgl32.Translate3D(-t.Position.X(), -t.Position.Y(), -t.Position.Z())

	return invScale.Mul4(invRotate).Mul4(invTranslate)
}
