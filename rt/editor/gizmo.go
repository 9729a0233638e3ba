package editor

import (
	"github.com/gekko3d/slim/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

type GizmoType int

const (
	GizmoLine GizmoType = iota
	GizmoCube
	// GizmoRect is one face of a cube gizmo, picked by Side.
	GizmoRect
)

var (
	SelectionColor = [4]float32{1, 1, 0, 1}
	HoverColor     = [4]float32{0, 1, 1, 1}
)

// Gizmo is a wireframe overlay. Cubes and rects span [-1, 1] in their local
// space before Scale, Rotation and Position are applied.
type Gizmo struct {
	Type  GizmoType
	Color [4]float32

	// For GizmoLine, Position is the start and LineEnd the end in world space.
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	LineEnd  mgl32.Vec3
	Side     core.BoxSide
}

// Segment is a world space line.
type Segment [2]mgl32.Vec3

func NewGizmoLine(start, end mgl32.Vec3, color [4]float32) Gizmo {
	return Gizmo{
		Type:     GizmoLine,
		Position: start,
		LineEnd:  end,
		Color:    color,
		Scale:    mgl32.Vec3{1, 1, 1},
		Rotation: mgl32.QuatIdent(),
	}
}

// NewGizmoCube outlines the unit box of a transform.
func NewGizmoCube(t core.Transform, color [4]float32) Gizmo {
	return Gizmo{
		Type:     GizmoCube,
		Position: t.Position,
		Rotation: t.Orientation,
		Scale:    t.Scale,
		Color:    color,
	}
}

func NewGizmoRect(t core.Transform, side core.BoxSide, color [4]float32) Gizmo {
	g := NewGizmoCube(t, color)
	g.Type = GizmoRect
	g.Side = side
	return g
}

var cubeEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7}, // along z
	{0, 2}, {1, 3}, {4, 6}, {5, 7}, // along y
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // along x
}

func (g *Gizmo) transform() core.Transform {
	return core.Transform{Orientation: g.Rotation, Position: g.Position, Scale: g.Scale}
}

// AppendSegments appends the world space lines of the gizmo to dst.
func (g *Gizmo) AppendSegments(dst []Segment) []Segment {
	switch g.Type {
	case GizmoLine:
		return append(dst, Segment{g.Position, g.LineEnd})
	case GizmoCube:
		t := g.transform()
		corners := core.UnitAABB(1).Corners()
		for i := range corners {
			corners[i] = t.ExternPos(corners[i])
		}
		for _, e := range cubeEdges {
			dst = append(dst, Segment{corners[e[0]], corners[e[1]]})
		}
	case GizmoRect:
		t := g.transform()
		n := g.Side.Normal()
		axis := 0
		for i := 1; i < 3; i++ {
			if n[i] != 0 {
				axis = i
			}
		}
		u, v := (axis+1)%3, (axis+2)%3
		var quad [4]mgl32.Vec3
		for i, s := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			var p mgl32.Vec3
			p[axis] = n[axis]
			p[u], p[v] = s[0], s[1]
			quad[i] = t.ExternPos(p)
		}
		for i := range quad {
			dst = append(dst, Segment{quad[i], quad[(i+1)%4]})
		}
	}
	return dst
}
