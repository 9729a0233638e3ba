package scene

import (
	"github.com/gekko3d/slim/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

type GeometryType uint8

const (
	GeometryNone GeometryType = iota
	GeometryMesh
	GeometryGrid
	GeometryBox
	GeometryCurve
	GeometryTet
	GeometryQuad
	GeometrySphere
	GeometryLight
)

var geometryTypeNames = [...]string{"none", "mesh", "grid", "box", "curve", "tet", "quad", "sphere", "light"}

func (t GeometryType) String() string {
	if int(t) < len(geometryTypeNames) {
		return geometryTypeNames[t]
	}
	return "unknown"
}

// ParseGeometryType is the inverse of String.
func ParseGeometryType(name string) (GeometryType, bool) {
	for i, n := range geometryTypeNames {
		if n == name {
			return GeometryType(i), true
		}
	}
	return GeometryNone, false
}

type GeometryFlags uint8

const (
	GeometryIsVisible GeometryFlags = 1 << iota
	GeometryIsShadowing
	GeometryIsTransparent
)

// Geometry is one placed instance. ID indexes Scene.Meshes for mesh
// geometries.
type Geometry struct {
	Transform  core.Transform
	Type       GeometryType
	MaterialID uint32
	ID         uint32
	Flags      GeometryFlags
	Color      mgl32.Vec3
}

func NewGeometry(t GeometryType) Geometry {
	return Geometry{
		Transform: core.NewTransform(),
		Type:      t,
		Flags:     GeometryIsVisible | GeometryIsShadowing,
		Color:     mgl32.Vec3{1, 1, 1},
	}
}

func (g *Geometry) Has(f GeometryFlags) bool { return g.Flags&f != 0 }

// LocalAABB is the object space bounds of a geometry. Quads are flat on y.
func (s *Scene) LocalAABB(g *Geometry) core.AABB {
	switch g.Type {
	case GeometryMesh:
		return s.Meshes[g.ID].AABB
	case GeometryTet:
		return core.UnitAABB(core.TetMax)
	case GeometryQuad:
		a := core.UnitAABB(1)
		a.Min[1], a.Max[1] = 0, 0
		return a
	default:
		return core.UnitAABB(1)
	}
}
