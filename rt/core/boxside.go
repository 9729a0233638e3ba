package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// BoxSide names a face of an axis aligned box. The values are bit flags so a
// face can also be tested against a Sides mask.
type BoxSide uint8

const (
	BoxSideNone   BoxSide = 0
	BoxSideLeft   BoxSide = 1
	BoxSideBottom BoxSide = 2
	BoxSideBack   BoxSide = 4
	BoxSideRight  BoxSide = 8
	BoxSideTop    BoxSide = 16
	BoxSideFront  BoxSide = 32
)

func (s BoxSide) String() string {
	switch s {
	case BoxSideLeft:
		return "left"
	case BoxSideBottom:
		return "bottom"
	case BoxSideBack:
		return "back"
	case BoxSideRight:
		return "right"
	case BoxSideTop:
		return "top"
	case BoxSideFront:
		return "front"
	}
	return "none"
}

// Normal returns the outward unit normal of the side.
func (s BoxSide) Normal() mgl32.Vec3 {
	var n mgl32.Vec3
	n[0] = b2f(s == BoxSideRight) - b2f(s == BoxSideLeft)
	n[1] = b2f(s == BoxSideTop) - b2f(s == BoxSideBottom)
	n[2] = b2f(s == BoxSideFront) - b2f(s == BoxSideBack)
	return n
}

func b2f(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

// Axis is a bit per coordinate axis, aligned with the low three BoxSide bits.
type Axis uint8

const (
	AxisX Axis = 1
	AxisY Axis = 2
	AxisZ Axis = 4
)

func (a Axis) Index() int {
	switch a {
	case AxisY:
		return 1
	case AxisZ:
		return 2
	}
	return 0
}

var axes = [3]Axis{AxisX, AxisY, AxisZ}

// Sides is the set of box faces a direction points towards.
type Sides uint8

const allSides Sides = 63

// FacingSides marks the faces a direction points towards. A zero component
// counts as positive, with -0 counting as negative.
func FacingSides(d mgl32.Vec3) Sides {
	var s Sides
	if math32.Signbit(d[0]) {
		s |= Sides(BoxSideLeft)
	} else {
		s |= Sides(BoxSideRight)
	}
	if math32.Signbit(d[1]) {
		s |= Sides(BoxSideBottom)
	} else {
		s |= Sides(BoxSideTop)
	}
	if math32.Signbit(d[2]) {
		s |= Sides(BoxSideBack)
	} else {
		s |= Sides(BoxSideFront)
	}
	return s
}

func (s Sides) Has(side BoxSide) bool { return s&Sides(side) != 0 }

func (s Sides) Flipped() Sides { return ^s & allSides }

// Signs maps the set to +1 for positive facing axes and -1 otherwise.
func (s Sides) Signs() mgl32.Vec3 {
	sign := func(neg BoxSide) float32 {
		if s.Has(neg) {
			return -1
		}
		return 1
	}
	return mgl32.Vec3{sign(BoxSideLeft), sign(BoxSideBottom), sign(BoxSideBack)}
}

// OctantShifts holds 0 or 3 per axis: 3 when the direction is negative on
// that axis. Shifting an Axis bit by it yields the BoxSide the direction
// enters through.
type OctantShifts [3]uint8

func NewOctantShifts(s Sides) OctantShifts {
	var o OctantShifts
	if s.Has(BoxSideLeft) {
		o[0] = 3
	}
	if s.Has(BoxSideBottom) {
		o[1] = 3
	}
	if s.Has(BoxSideBack) {
		o[2] = 3
	}
	return o
}

func (o OctantShifts) BoxSide(axis Axis) BoxSide {
	return BoxSide(uint8(axis) << o[axis.Index()])
}

// maxAxis returns the largest component; ties keep the first axis.
func maxAxis(v mgl32.Vec3) (float32, Axis) {
	i := 0
	if v[1] > v[i] {
		i = 1
	}
	if v[2] > v[i] {
		i = 2
	}
	return v[i], axes[i]
}

// minAxis returns the smallest component; ties keep the first axis.
func minAxis(v mgl32.Vec3) (float32, Axis) {
	i := 0
	if v[1] < v[i] {
		i = 1
	}
	if v[2] < v[i] {
		i = 2
	}
	return v[i], axes[i]
}
