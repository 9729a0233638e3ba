// Package mesh holds immutable triangle meshes with their own BVH, in the
// layout the mesh tracer and the mesh file format share.
package mesh

import (
	"github.com/chewxy/math32"
	"github.com/gekko3d/slim/rt/bvh"
	"github.com/gekko3d/slim/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

type TriangleVertexIndices [3]uint32

type EdgeVertexIndices [2]uint32

// Triangle is the traced form of a mesh triangle. LocalToTangent maps a point
// relative to Position onto (u, v) where u weighs the third vertex and v the
// second; the first vertex gets 1-u-v.
type Triangle struct {
	LocalToTangent mgl32.Mat3
	Position       mgl32.Vec3
	Normal         mgl32.Vec3
	N1, N2, N3     mgl32.Vec3
	UV1, UV2, UV3  mgl32.Vec2
	UVCoverage     float32
	_              float32
}

// Mesh stores each vertex attribute with its own per triangle index stream.
// Triangles and every index stream are in BVH leaf order.
type Mesh struct {
	AABB      core.AABB
	BVH       bvh.BVH
	Triangles []Triangle

	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Tangents  []mgl32.Vec3
	UVs       []mgl32.Vec2

	PositionIndices []TriangleVertexIndices
	NormalIndices   []TriangleVertexIndices
	TangentIndices  []TriangleVertexIndices
	UVIndices       []TriangleVertexIndices

	EdgeIndices []EdgeVertexIndices
}

// Source is raw mesh data in any triangle order.
type Source struct {
	Positions       []mgl32.Vec3
	PositionIndices []TriangleVertexIndices
	Normals         []mgl32.Vec3
	NormalIndices   []TriangleVertexIndices
	UVs             []mgl32.Vec2
	UVIndices       []TriangleVertexIndices
	Tangents        []mgl32.Vec3
	TangentIndices  []TriangleVertexIndices
	Edges           []EdgeVertexIndices
}

// New builds the triangles and BVH of src. Triangles are reordered into leaf
// order so leaves index the triangle array directly.
func New(src Source, logger bvh.Logger) *Mesh {
	n := len(src.PositionIndices)
	m := &Mesh{
		Positions:   src.Positions,
		Normals:     src.Normals,
		Tangents:    src.Tangents,
		UVs:         src.UVs,
		EdgeIndices: src.Edges,
		AABB:        core.EmptyAABB(),
	}
	for _, p := range src.Positions {
		m.AABB = m.AABB.Grow(p)
	}

	items := make([]bvh.Item, n)
	for i, tri := range src.PositionIndices {
		box := core.EmptyAABB()
		for _, vi := range tri {
			box = box.Grow(src.Positions[vi])
		}
		items[i] = bvh.Item{AABB: box, ID: uint32(i)}
	}

	m.BVH = bvh.New(n)
	builder := bvh.NewBuilder(n)
	builder.SetLogger(logger)
	order := builder.Build(&m.BVH, items, bvh.MaxTrianglesPerMeshNode)

	m.PositionIndices = reorder(src.PositionIndices, order)
	m.NormalIndices = reorder(src.NormalIndices, order)
	m.UVIndices = reorder(src.UVIndices, order)
	m.TangentIndices = reorder(src.TangentIndices, order)
	m.UpdateTriangles()
	return m
}

func reorder(indices []TriangleVertexIndices, order []uint32) []TriangleVertexIndices {
	if len(indices) == 0 {
		return nil
	}
	out := make([]TriangleVertexIndices, len(order))
	for slot, id := range order {
		out[slot] = indices[id]
	}
	return out
}

func (m *Mesh) TriangleCount() int { return len(m.PositionIndices) }

// StackSize is the traversal stack depth the mesh BVH needs.
func (m *Mesh) StackSize() int { return int(m.BVH.Height) + 2 }

// UpdateTriangles recomputes the traced triangles from the attribute streams.
func (m *Mesh) UpdateTriangles() {
	if len(m.Triangles) != len(m.PositionIndices) {
		m.Triangles = make([]Triangle, len(m.PositionIndices))
	}
	for i, pi := range m.PositionIndices {
		t := &m.Triangles[i]
		v1, v2, v3 := m.Positions[pi[0]], m.Positions[pi[1]], m.Positions[pi[2]]
		u := v3.Sub(v1)
		v := v2.Sub(v1)
		cross := u.Cross(v)
		area := cross.Len() * 0.5

		t.Position = v1
		t.Normal = cross.Normalize()
		t.LocalToTangent = mgl32.Mat3FromCols(u, v, t.Normal).Inv()

		if len(m.NormalIndices) > 0 {
			ni := m.NormalIndices[i]
			t.N1, t.N2, t.N3 = m.Normals[ni[0]], m.Normals[ni[1]], m.Normals[ni[2]]
		} else {
			t.N1, t.N2, t.N3 = t.Normal, t.Normal, t.Normal
		}

		uvArea := float32(0.5)
		if len(m.UVIndices) > 0 {
			ui := m.UVIndices[i]
			t.UV1, t.UV2, t.UV3 = m.UVs[ui[0]], m.UVs[ui[1]], m.UVs[ui[2]]
			e1 := t.UV2.Sub(t.UV1)
			e2 := t.UV3.Sub(t.UV1)
			uvArea = math32.Abs(e1[0]*e2[1]-e1[1]*e2[0]) * 0.5
		} else {
			t.UV1, t.UV2, t.UV3 = mgl32.Vec2{0, 0}, mgl32.Vec2{0, 1}, mgl32.Vec2{1, 0}
		}
		if area > 0 {
			t.UVCoverage = uvArea / area
		}
	}
}

// Edges resolves the edge index stream to position pairs.
func (m *Mesh) Edges() [][2]mgl32.Vec3 {
	out := make([][2]mgl32.Vec3, len(m.EdgeIndices))
	for i, e := range m.EdgeIndices {
		out[i] = [2]mgl32.Vec3{m.Positions[e[0]], m.Positions[e[1]]}
	}
	return out
}
