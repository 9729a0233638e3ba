package tracer

import (
	"github.com/gekko3d/slim/rt/core"
	"github.com/gekko3d/slim/rt/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// LightProxyRadius is the radius of the sphere lights are picked with.
const LightProxyRadius float32 = 1

// SceneTracer traces rays against every geometry of a scene through the top
// level BVH. Hits are reported in the local space of the geometry that was
// hit; ToWorld converts them.
type SceneTracer struct {
	Mesh   *MeshTracer
	Sphere core.SphereTracer

	stack  []uint32
	auxRay core.Ray
	auxHit core.RayHit
}

// NewSceneTracer preallocates the traversal stacks. meshStackSize is
// scene.Scene.MeshStackSize.
func NewSceneTracer(stackSize, meshStackSize int) *SceneTracer {
	return &SceneTracer{
		Mesh:  NewMeshTracer(meshStackSize),
		stack: make([]uint32, 0, stackSize),
	}
}

// ForScene sizes a tracer for s.
func ForScene(s *scene.Scene) *SceneTracer {
	return NewSceneTracer(int(s.BVH.Height)+2, s.MeshStackSize)
}

// Trace finds the closest geometry along ray, or with anyHit the first one
// found. The ray origin is pushed forward by core.TraceOffset and
// hit.Distance starts at maxDistance. Geometries take part when they are
// visible, or shadowing for any hit queries. It returns nil on a miss.
func (t *SceneTracer) Trace(ray *core.Ray, hit *core.RayHit, s *scene.Scene, anyHit bool, maxDistance float32) *scene.Geometry {
	ray.Reset(ray.Direction.Mul(core.TraceOffset).Add(ray.Origin), ray.Direction)
	hit.Distance = maxDistance

	if s.BVH.NodeCount == 0 || len(s.Geometries) == 0 {
		return nil
	}
	nodes := s.BVH.Nodes
	root := &nodes[0]
	near, far, ok := ray.HitsAABB(root.AABB)
	if !ok || near >= hit.Distance {
		return nil
	}
	if root.IsLeaf() {
		return t.hitGeometries(s, 0, uint32(len(s.Geometries)), far, ray, hit, anyHit)
	}

	stack := t.stack[:0]
	defer func() { t.stack = stack[:0] }()

	var closest *scene.Geometry
	left := root.FirstIndex
	for {
		leftNode, rightNode := &nodes[left], &nodes[left+1]

		leftNear, leftFar, hitLeft := ray.HitsAABB(leftNode.AABB)
		hitLeft = hitLeft && leftNear < hit.Distance
		rightNear, rightFar, hitRight := ray.HitsAABB(rightNode.AABB)
		hitRight = hitRight && rightNear < hit.Distance

		if hitLeft && leftNode.IsLeaf() {
			if g := t.hitGeometries(s, leftNode.FirstIndex, leftNode.LeafCount, leftFar, ray, hit, anyHit); g != nil {
				closest = g
				if anyHit {
					return closest
				}
			}
			hitLeft = false
		}
		if hitRight && rightNode.IsLeaf() {
			if g := t.hitGeometries(s, rightNode.FirstIndex, rightNode.LeafCount, rightFar, ray, hit, anyHit); g != nil {
				closest = g
				if anyHit {
					return closest
				}
			}
			hitRight = false
		}

		switch {
		case hitLeft && hitRight:
			first, second := leftNode, rightNode
			if !anyHit && leftNear > rightNear {
				first, second = rightNode, leftNode
			}
			stack = append(stack, second.FirstIndex)
			left = first.FirstIndex
		case hitLeft:
			left = leftNode.FirstIndex
		case hitRight:
			left = rightNode.FirstIndex
		default:
			if len(stack) == 0 {
				return closest
			}
			left = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		}
	}
}

// hitGeometries tests the geometries mapped by leaf slots
// [first, first+count). Candidates must be nearer than the leaf exit
// distance padded by core.Eps.
func (t *SceneTracer) hitGeometries(s *scene.Scene, first, count uint32, leafFar float32, ray *core.Ray, hit *core.RayHit, anyHit bool) *scene.Geometry {
	visibility := scene.GeometryIsVisible
	if anyHit {
		visibility = scene.GeometryIsShadowing
	}

	var found *scene.Geometry
	t.auxHit.Distance = min(leafFar+core.Eps, hit.Distance)
	for slot := first; slot < first+count; slot++ {
		g := &s.Geometries[s.LeafGeometryIndices[slot]]
		if !g.Has(visibility) {
			continue
		}
		if !t.HitGeometryInLocalSpace(g, s, ray, &t.auxHit, anyHit) {
			continue
		}
		if anyHit {
			*hit = t.auxHit
			return g
		}
		if t.auxHit.Distance < hit.Distance {
			found = g
			*hit = t.auxHit
			hit.NdotRd = -hit.Normal.Dot(t.auxRay.Direction)
		}
	}
	return found
}

// HitGeometryInLocalSpace localizes ray into g's space, culls it against the
// local bounds and dispatches to the matching intersector. Mesh geometries
// go through the mesh tracer.
func (t *SceneTracer) HitGeometryInLocalSpace(g *scene.Geometry, s *scene.Scene, ray *core.Ray, hit *core.RayHit, anyHit bool) bool {
	t.auxRay.Localize(ray, &g.Transform)
	if _, _, ok := t.auxRay.HitsAABB(s.LocalAABB(g)); !ok {
		return false
	}

	transparent := g.Has(scene.GeometryIsTransparent)
	switch g.Type {
	case scene.GeometryQuad:
		return t.auxRay.HitsDefaultQuad(hit, transparent)
	case scene.GeometryBox:
		return t.auxRay.HitsDefaultBox(hit, transparent) != core.BoxSideNone
	case scene.GeometrySphere:
		return t.auxRay.HitsDefaultSphere(hit, transparent)
	case scene.GeometryTet:
		return t.auxRay.HitsDefaultTetrahedron(hit, transparent)
	case scene.GeometryMesh:
		return t.Mesh.Trace(s.Meshes[g.ID], &t.auxRay, hit, anyHit)
	default:
		return false
	}
}

// HitLight tests the sphere proxy of a light, lowering hit.Distance to the
// entry distance on success.
func (t *SceneTracer) HitLight(light *scene.Light, ray *core.Ray, hit *core.RayHit) bool {
	return t.Sphere.Hit(light.Position, LightProxyRadius, ray.Origin, ray.Direction, &hit.Distance)
}

// Occluded reports whether any shadowing geometry lies between from and to.
func (t *SceneTracer) Occluded(s *scene.Scene, from, to mgl32.Vec3) bool {
	d := to.Sub(from)
	dist := d.Len()
	if dist == 0 {
		return false
	}
	ray := core.NewRay(from, d.Mul(1/dist))
	var hit core.RayHit
	return t.Trace(&ray, &hit, s, true, dist-core.TraceOffset) != nil
}

// ToWorld moves a hit reported in g's local space into world space. Normals
// go through the inverse scale so non uniform scaling keeps them
// perpendicular to the surface.
func ToWorld(g *scene.Geometry, hit *core.RayHit) {
	tr := &g.Transform
	hit.Position = tr.ExternPos(hit.Position)
	n := tr.Orientation.Rotate(core.DivVec(hit.Normal, tr.Scale))
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	hit.Normal = n
}

// TraceSceneLinear tests every geometry of s without the top level BVH,
// with the same conventions as SceneTracer.Trace.
func TraceSceneLinear(t *SceneTracer, ray *core.Ray, hit *core.RayHit, s *scene.Scene, anyHit bool, maxDistance float32) *scene.Geometry {
	ray.Reset(ray.Direction.Mul(core.TraceOffset).Add(ray.Origin), ray.Direction)
	hit.Distance = maxDistance

	visibility := scene.GeometryIsVisible
	if anyHit {
		visibility = scene.GeometryIsShadowing
	}
	var found *scene.Geometry
	for i := range s.Geometries {
		g := &s.Geometries[i]
		if !g.Has(visibility) {
			continue
		}
		aux := core.RayHit{Distance: hit.Distance}
		if !t.HitGeometryInLocalSpace(g, s, ray, &aux, anyHit) || aux.Distance >= hit.Distance {
			continue
		}
		*hit = aux
		hit.NdotRd = -hit.Normal.Dot(t.auxRay.Direction)
		found = g
		if anyHit {
			break
		}
	}
	return found
}
