package core

import "github.com/chewxy/math32"

// CheckerCells is the number of checker cells per unit of UV space.
const CheckerCells = 4

// UV is a surface parameterisation in [0, 1]^2.
type UV struct {
	U, V float32
}

// ShiftToNormalized maps [-1, 1] to [0, 1].
func (uv *UV) ShiftToNormalized() {
	uv.U = uv.U*0.5 + 0.5
	uv.V = uv.V*0.5 + 0.5
}

// OnCheckerboard reports whether the coordinate falls on an odd cell, which
// transparent geometry treats as cut out.
func (uv UV) OnCheckerboard() bool {
	cu := int(math32.Floor(uv.U * CheckerCells))
	cv := int(math32.Floor(uv.V * CheckerCells))
	return (cu+cv)&1 == 1
}

// SetByBoxSide projects a point on the unit box onto the given face.
func (uv *UV) SetByBoxSide(side BoxSide, x, y, z float32) {
	switch side {
	case BoxSideTop:
		uv.U, uv.V = x, z
	case BoxSideBottom:
		uv.U, uv.V = -x, -z
	case BoxSideLeft:
		uv.U, uv.V = -z, y
	case BoxSideRight:
		uv.U, uv.V = z, y
	case BoxSideFront:
		uv.U, uv.V = x, y
	default:
		uv.U, uv.V = -x, y
	}
	uv.ShiftToNormalized()
}

// SetBySphere cube-maps a direction from the sphere center and returns the
// cube face it landed on.
func (uv *UV) SetBySphere(x, y, z float32) BoxSide {
	var side BoxSide
	zOverX, yOverX := ratio(z, x), ratio(y, x)
	if inUnitRange(zOverX) && inUnitRange(yOverX) {
		uv.U = zOverX
		if x > 0 {
			uv.V = yOverX
			side = BoxSideRight
		} else {
			uv.V = -yOverX
			side = BoxSideLeft
		}
	} else {
		xOverZ, yOverZ := ratio(x, z), ratio(y, z)
		if inUnitRange(xOverZ) && inUnitRange(yOverZ) {
			uv.U = -xOverZ
			if z > 0 {
				uv.V = yOverZ
				side = BoxSideFront
			} else {
				uv.V = -yOverZ
				side = BoxSideBack
			}
		} else {
			uv.U = x / math32.Abs(y)
			uv.V = z / y
			if y > 0 {
				side = BoxSideTop
			} else {
				side = BoxSideBottom
			}
		}
	}
	uv.ShiftToNormalized()
	return side
}

func ratio(a, b float32) float32 {
	if b == 0 {
		return 2
	}
	return a / b
}

func inUnitRange(v float32) bool { return v >= -1 && v <= 1 }
