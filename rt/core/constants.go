package core

import "github.com/chewxy/math32"

const (
	// Eps pads degenerate bounds and widens per-leaf culling distances.
	Eps float32 = 0.0001
	// TraceOffset pushes ray origins off the surface they were spawned from.
	TraceOffset float32 = 0.0001

	// TetMax and TetMin describe the unit tetrahedron inscribed in the unit sphere.
	TetMax float32 = 0.577350259
	TetMin float32 = 0.288675159

	Sqrt3 float32 = 1.73205080757

	UnitSphereAreaOverSix float32 = (4.0 * math32.Pi) / 6.0
)
