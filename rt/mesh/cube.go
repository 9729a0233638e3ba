package mesh

import (
	"github.com/gekko3d/slim/rt/bvh"
	"github.com/gekko3d/slim/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Cube corner indices: Left/Right, Bottom/Top, bacK/Front.
const (
	lbk = iota
	lbf
	ltk
	ltf
	rbk
	rbf
	rtk
	rtf
)

var cubePositions = []mgl32.Vec3{
	lbk: {-1, -1, -1},
	lbf: {-1, -1, 1},
	ltk: {-1, 1, -1},
	ltf: {-1, 1, 1},
	rbk: {1, -1, -1},
	rbf: {1, -1, 1},
	rtk: {1, 1, -1},
	rtf: {1, 1, 1},
}

const (
	normalLeft = iota
	normalRight
	normalBottom
	normalTop
	normalBack
	normalFront
)

var cubeNormals = []mgl32.Vec3{
	normalLeft:   {-1, 0, 0},
	normalRight:  {1, 0, 0},
	normalBottom: {0, -1, 0},
	normalTop:    {0, 1, 0},
	normalBack:   {0, 0, -1},
	normalFront:  {0, 0, 1},
}

var cubeUVs = []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}, {1, 1}}

// Triangles are stored in the leaf order of cubeBVHNodes:
// right, front, top, bottom, back, left.
var cubePositionIndices = []TriangleVertexIndices{
	{rtf, rtk, rbf}, {rtk, rbk, rbf},
	{ltf, rtf, lbf}, {rtf, rbf, lbf},
	{rtf, ltf, rtk}, {ltf, ltk, rtk},
	{rbk, lbk, rbf}, {lbk, lbf, rbf},
	{rtk, ltk, rbk}, {ltk, lbk, rbk},
	{ltk, ltf, lbk}, {ltf, lbf, lbk},
}

var cubeNormalIndices = []TriangleVertexIndices{
	{normalRight, normalRight, normalRight}, {normalRight, normalRight, normalRight},
	{normalFront, normalFront, normalFront}, {normalFront, normalFront, normalFront},
	{normalTop, normalTop, normalTop}, {normalTop, normalTop, normalTop},
	{normalBottom, normalBottom, normalBottom}, {normalBottom, normalBottom, normalBottom},
	{normalBack, normalBack, normalBack}, {normalBack, normalBack, normalBack},
	{normalLeft, normalLeft, normalLeft}, {normalLeft, normalLeft, normalLeft},
}

var cubeUVIndices = []TriangleVertexIndices{
	{1, 0, 3}, {0, 2, 3},
	{1, 0, 3}, {0, 2, 3},
	{1, 0, 3}, {0, 2, 3},
	{1, 0, 3}, {0, 2, 3},
	{1, 0, 3}, {0, 2, 3},
	{1, 0, 3}, {0, 2, 3},
}

var cubeEdges = []EdgeVertexIndices{
	{lbk, lbf}, {lbf, ltf}, {ltf, ltk}, {ltk, lbk},
	{rbk, rbf}, {rbf, rtf}, {rtf, rtk}, {rtk, rbk},
	{lbk, rbk}, {lbf, rbf}, {ltf, rtf}, {ltk, rtk},
	{ltf, lbk}, {rtk, rbf}, {rbk, lbf}, {rtf, ltk}, {ltk, rbk}, {rtf, lbf},
}

func box(x0, y0, z0, x1, y1, z1 float32) core.AABB {
	return core.AABB{Min: mgl32.Vec3{x0, y0, z0}, Max: mgl32.Vec3{x1, y1, z1}}
}

var cubeBVHNodes = []bvh.Node{
	{AABB: box(-1.0001, -1.0001, -1.0001, 1.0001, 1.0001, 1.0001), FirstIndex: 1, LeafCount: 0, Depth: 0},
	{AABB: box(-1.0001, -1, -1, -0.9999, 1, 1), FirstIndex: 10, LeafCount: 2, Depth: 1},
	{AABB: box(-1, -1.0001, -1.0001, 1.0001, 1.0001, 1.0001), FirstIndex: 3, LeafCount: 0, Depth: 1},
	{AABB: box(-1, -1.0001, -1.0001, 1, 1.0001, 1.0001), FirstIndex: 5, LeafCount: 0, Depth: 2},
	{AABB: box(0.9999, -1, -1, 1.0001, 1, 1), FirstIndex: 0, LeafCount: 2, Depth: 2},
	{AABB: box(-1, -1, -1.0001, 1, 1, -0.9999), FirstIndex: 8, LeafCount: 2, Depth: 3},
	{AABB: box(-1, -1.0001, -1, 1, 1.0001, 1.0001), FirstIndex: 7, LeafCount: 0, Depth: 3},
	{AABB: box(-1, -1.0001, -1, 1, 1.0001, 1), FirstIndex: 9, LeafCount: 0, Depth: 4},
	{AABB: box(-1, -1, 0.9999, 1, 1, 1.0001), FirstIndex: 2, LeafCount: 2, Depth: 4},
	{AABB: box(-1, -1.0001, -1, 1, -0.9999, 1), FirstIndex: 6, LeafCount: 2, Depth: 5},
	{AABB: box(-1, 0.9999, -1, 1, 1.0001, 1), FirstIndex: 4, LeafCount: 2, Depth: 5},
}

const cubeBVHHeight = 5

// Cube returns the built in [-1, 1]^3 cube with its precomputed BVH.
func Cube() *Mesh {
	m := &Mesh{
		AABB:            core.UnitAABB(1),
		Positions:       append([]mgl32.Vec3(nil), cubePositions...),
		Normals:         append([]mgl32.Vec3(nil), cubeNormals...),
		UVs:             append([]mgl32.Vec2(nil), cubeUVs...),
		PositionIndices: append([]TriangleVertexIndices(nil), cubePositionIndices...),
		NormalIndices:   append([]TriangleVertexIndices(nil), cubeNormalIndices...),
		UVIndices:       append([]TriangleVertexIndices(nil), cubeUVIndices...),
		EdgeIndices:     append([]EdgeVertexIndices(nil), cubeEdges...),
		BVH: bvh.BVH{
			Nodes:     append([]bvh.Node(nil), cubeBVHNodes...),
			NodeCount: uint32(len(cubeBVHNodes)),
			Height:    cubeBVHHeight,
		},
	}
	m.UpdateTriangles()
	return m
}

// CubeSource is the cube as raw data, for rebuilding it through New.
func CubeSource() Source {
	return Source{
		Positions:       cubePositions,
		PositionIndices: cubePositionIndices,
		Normals:         cubeNormals,
		NormalIndices:   cubeNormalIndices,
		UVs:             cubeUVs,
		UVIndices:       cubeUVIndices,
		Edges:           cubeEdges,
	}
}
