// Package tracer walks the flat BVHs of meshes and scenes with an explicit
// stack, answering closest hit and any hit queries.
package tracer

import (
	"github.com/gekko3d/slim/rt/core"
	"github.com/gekko3d/slim/rt/mesh"
)

// MeshTracer traces rays against a single mesh in the mesh's local space.
// The stack is reused between calls; a tracer is not safe for concurrent use.
type MeshTracer struct {
	stack       []uint32
	triangleHit core.RayHit
}

// NewMeshTracer preallocates room for a BVH of the given stack size (see
// mesh.Mesh.StackSize). Deeper trees grow the stack on demand.
func NewMeshTracer(stackSize int) *MeshTracer {
	return &MeshTracer{stack: make([]uint32, 0, stackSize)}
}

// hitTriangles tests triangles[first:first+count] and reports the closest
// one nearer than both closest and hit.Distance. hit.ID is set to the slot.
// closest is the leaf exit distance, padded by core.Eps.
func (t *MeshTracer) hitTriangles(triangles []mesh.Triangle, first, count uint32, closest float32, ray *core.Ray, hit *core.RayHit, anyHit bool) bool {
	found := false
	closest = min(closest+core.Eps, hit.Distance)
	th := &t.triangleHit
	for i := first; i < first+count; i++ {
		tri := &triangles[i]
		if !ray.HitsPlane(tri.Position, tri.Normal, th) {
			continue
		}
		uv := tri.LocalToTangent.Mul3x1(th.Position.Sub(tri.Position))
		if uv[0] < 0 || uv[1] < 0 || uv[0]+uv[1] > 1 || th.Distance >= closest {
			continue
		}

		closest = th.Distance
		*hit = *th
		hit.UV = core.UV{U: uv[0], V: uv[1]}
		hit.UVCoverage = tri.UVCoverage
		hit.ID = i
		found = true
		if anyHit {
			break
		}
	}
	return found
}

// Trace intersects ray with m. hit.Distance bounds the search and is lowered
// on success. A closest hit gets its normal and UV interpolated from the
// triangle's corners; an any hit keeps the face normal and barycentrics.
func (t *MeshTracer) Trace(m *mesh.Mesh, ray *core.Ray, hit *core.RayHit, anyHit bool) bool {
	if m.BVH.NodeCount == 0 || len(m.Triangles) == 0 {
		return false
	}
	nodes := m.BVH.Nodes
	root := &nodes[0]
	near, far, ok := ray.HitsAABB(root.AABB)
	if !ok || near >= hit.Distance {
		return false
	}

	found := false
	if root.IsLeaf() {
		found = t.hitTriangles(m.Triangles, 0, uint32(len(m.Triangles)), far, ray, hit, anyHit)
	} else {
		found = t.traverse(m, ray, hit, anyHit)
	}

	if found && !anyHit {
		interpolate(m, hit)
	}
	return found
}

func (t *MeshTracer) traverse(m *mesh.Mesh, ray *core.Ray, hit *core.RayHit, anyHit bool) bool {
	nodes := m.BVH.Nodes
	stack := t.stack[:0]
	defer func() { t.stack = stack[:0] }()

	found := false
	left := nodes[0].FirstIndex
	for {
		leftNode, rightNode := &nodes[left], &nodes[left+1]

		leftNear, leftFar, hitLeft := ray.HitsAABB(leftNode.AABB)
		hitLeft = hitLeft && leftNear < hit.Distance
		rightNear, rightFar, hitRight := ray.HitsAABB(rightNode.AABB)
		hitRight = hitRight && rightNear < hit.Distance

		if hitLeft && leftNode.IsLeaf() {
			if t.hitTriangles(m.Triangles, leftNode.FirstIndex, leftNode.LeafCount, leftFar, ray, hit, anyHit) {
				found = true
				if anyHit {
					return true
				}
			}
			hitLeft = false
		}
		if hitRight && rightNode.IsLeaf() {
			if t.hitTriangles(m.Triangles, rightNode.FirstIndex, rightNode.LeafCount, rightFar, ray, hit, anyHit) {
				found = true
				if anyHit {
					return true
				}
			}
			hitRight = false
		}

		var next uint32
		switch {
		case hitLeft && hitRight:
			first, second := leftNode, rightNode
			if !anyHit && leftNear > rightNear {
				first, second = rightNode, leftNode
			}
			stack = append(stack, second.FirstIndex)
			next = first.FirstIndex
		case hitLeft:
			next = leftNode.FirstIndex
		case hitRight:
			next = rightNode.FirstIndex
		default:
			if len(stack) == 0 {
				return found
			}
			next = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		}
		left = next
	}
}

func interpolate(m *mesh.Mesh, hit *core.RayHit) {
	if len(m.Normals) == 0 && len(m.UVs) == 0 {
		return
	}
	tri := &m.Triangles[hit.ID]
	a, b := hit.UV.U, hit.UV.V
	c := 1 - a - b
	if len(m.UVs) > 0 {
		uv := tri.UV3.Mul(a).Add(tri.UV2.Mul(b)).Add(tri.UV1.Mul(c))
		hit.UV = core.UV{U: uv[0], V: uv[1]}
	}
	if len(m.Normals) > 0 {
		hit.Normal = tri.N3.Mul(a).Add(tri.N2.Mul(b)).Add(tri.N1.Mul(c))
	}
}

// TraceMeshLinear tests every triangle of m without the BVH. It is the
// reference Trace is checked against.
func TraceMeshLinear(m *mesh.Mesh, ray *core.Ray, hit *core.RayHit, anyHit bool) bool {
	var t MeshTracer
	found := t.hitTriangles(m.Triangles, 0, uint32(len(m.Triangles)), hit.Distance, ray, hit, anyHit)
	if found && !anyHit {
		interpolate(m, hit)
	}
	return found
}
