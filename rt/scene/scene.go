// Package scene holds the instance arrays the tracers and the editor work
// on, together with the top level BVH over geometry bounds.
package scene

import (
	"fmt"

	"github.com/gekko3d/slim/rt/bvh"
	"github.com/gekko3d/slim/rt/core"
	"github.com/gekko3d/slim/rt/memory"
	"github.com/gekko3d/slim/rt/mesh"
	"github.com/gekko3d/slim/rt/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// Logger is the subset of the application logger the scene reports to.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
}

type Counts struct {
	Geometries        int
	Cameras           int
	DirectionalLights int
	PointLights       int
	SpotLights        int
	Materials         int
	Textures          int
	Meshes            int
}

func (c Counts) Lights() int { return c.DirectionalLights + c.PointLights + c.SpotLights }

// fit makes counts agree with the arrays and files supplied in opts.
func (c Counts) fit(opts *Options) Counts {
	if opts.Geometries != nil {
		c.Geometries = len(opts.Geometries)
	}
	if opts.Cameras != nil {
		c.Cameras = len(opts.Cameras)
	}
	if opts.Materials != nil {
		c.Materials = len(opts.Materials)
	}
	if opts.Lights != nil {
		c.DirectionalLights, c.PointLights, c.SpotLights = 0, 0, 0
		for i := range opts.Lights {
			switch opts.Lights[i].Kind {
			case LightDirectional:
				c.DirectionalLights++
			case LightPoint:
				c.PointLights++
			default:
				c.SpotLights++
			}
		}
	}
	switch {
	case opts.Meshes != nil:
		c.Meshes = len(opts.Meshes)
	case len(opts.MeshFiles) > 0:
		c.Meshes = len(opts.MeshFiles)
	}
	switch {
	case opts.Textures != nil:
		c.Textures = len(opts.Textures)
	case len(opts.TextureFiles) > 0:
		c.Textures = len(opts.TextureFiles)
	}
	return c
}

// Options supplies arrays and asset files for New. Arrays left nil are
// carved from the arena; meshes and textures are loaded from their files
// when not supplied.
type Options struct {
	Geometries []Geometry
	Cameras    []Camera
	Lights     []Light
	Materials  []Material
	Meshes     []*mesh.Mesh
	Textures   []*texture.Texture

	MeshFiles    []string
	TextureFiles []string

	// Arena overrides the arena New would size itself.
	Arena  *memory.Arena
	Logger Logger
}

type Scene struct {
	Counts Counts

	Geometries []Geometry
	Cameras    []Camera
	Lights     []Light
	Materials  []Material
	Meshes     []*mesh.Mesh
	Textures   []*texture.Texture

	AABBs []core.AABB
	BVH   bvh.BVH
	// LeafGeometryIndices maps BVH leaf slots to geometry indices.
	LeafGeometryIndices []uint32
	MeshStackSize       int

	items   []bvh.Item
	builder *bvh.Builder
	arena   *memory.Arena
	logger  Logger
}

// Budget computes the arena size New needs for counts and opts.
func Budget(counts Counts, opts *Options) (uint64, error) {
	counts = counts.fit(opts)
	var b memory.Budget
	memory.Add[core.AABB](&b, counts.Geometries)
	memory.Add[bvh.Item](&b, counts.Geometries)
	memory.Add[uint32](&b, counts.Geometries)
	memory.Add[bvh.Node](&b, bvh.NodeCapacity(counts.Geometries))
	b.AddBytes(bvh.BuilderSize(counts.Geometries))

	if opts.Geometries == nil {
		memory.Add[Geometry](&b, counts.Geometries)
	}
	if opts.Cameras == nil {
		memory.Add[Camera](&b, counts.Cameras)
	}
	if opts.Lights == nil {
		memory.Add[Light](&b, counts.Lights())
	}
	if opts.Materials == nil {
		memory.Add[Material](&b, counts.Materials)
	}
	if opts.Meshes == nil && len(opts.MeshFiles) > 0 {
		memory.Add[*mesh.Mesh](&b, counts.Meshes)
		for _, path := range opts.MeshFiles {
			h, err := mesh.LoadHeader(path)
			if err != nil {
				return 0, fmt.Errorf("mesh %s: %w", path, err)
			}
			h.Budget(&b)
		}
	}
	if opts.Textures == nil && len(opts.TextureFiles) > 0 {
		memory.Add[*texture.Texture](&b, counts.Textures)
		for _, path := range opts.TextureFiles {
			h, err := texture.LoadHeader(path)
			if err != nil {
				return 0, fmt.Errorf("texture %s: %w", path, err)
			}
			h.Budget(&b)
		}
	}
	return b.Bytes(), nil
}

// New builds a scene, carving every array not supplied in opts from one
// arena, then computes bounds and the BVH. An undersized arena fails with
// memory.ErrArenaExhausted.
func New(counts Counts, opts Options) (*Scene, error) {
	counts = counts.fit(&opts)
	s := &Scene{
		Counts:     counts,
		Geometries: opts.Geometries,
		Cameras:    opts.Cameras,
		Lights:     opts.Lights,
		Materials:  opts.Materials,
		Meshes:     opts.Meshes,
		Textures:   opts.Textures,
		arena:      opts.Arena,
		logger:     opts.Logger,
	}
	if s.arena == nil {
		size, err := Budget(counts, &opts)
		if err != nil {
			return nil, err
		}
		s.arena = memory.NewArena(size)
	}

	if err := s.allocate(&opts); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	for _, m := range s.Meshes {
		s.MeshStackSize = max(s.MeshStackSize, int(m.BVH.Height))
	}
	if len(s.Meshes) > 0 {
		s.MeshStackSize += 2
	}

	if s.logger != nil {
		s.builder.SetLogger(s.logger)
		s.logger.Infof("scene: %d geometries, %d lights, %d meshes, %d textures, arena %d/%d bytes",
			counts.Geometries, len(s.Lights), len(s.Meshes), len(s.Textures), s.arena.Occupied(), s.arena.Capacity())
	}

	s.Update()
	return s, nil
}

func (s *Scene) allocate(opts *Options) error {
	a := s.arena
	n := s.Counts.Geometries
	var err error

	if s.AABBs, err = memory.Alloc[core.AABB](a, n); err != nil {
		return err
	}
	if s.items, err = memory.Alloc[bvh.Item](a, n); err != nil {
		return err
	}
	if s.LeafGeometryIndices, err = memory.Alloc[uint32](a, n); err != nil {
		return err
	}
	if s.BVH, err = bvh.Allocate(a, n); err != nil {
		return err
	}
	if s.builder, err = bvh.AllocateBuilder(a, n); err != nil {
		return err
	}

	if s.Geometries == nil {
		if s.Geometries, err = memory.Alloc[Geometry](a, n); err != nil {
			return err
		}
		for i := range s.Geometries {
			s.Geometries[i] = NewGeometry(GeometryBox)
		}
	}
	if s.Cameras == nil {
		if s.Cameras, err = memory.Alloc[Camera](a, s.Counts.Cameras); err != nil {
			return err
		}
		for i := range s.Cameras {
			s.Cameras[i] = NewCamera()
		}
	}
	if s.Lights == nil {
		if s.Lights, err = memory.Alloc[Light](a, s.Counts.Lights()); err != nil {
			return err
		}
		c := s.Counts
		for i := range s.Lights {
			switch {
			case i < c.DirectionalLights:
				s.Lights[i] = NewDirectionalLight(mgl32.QuatIdent())
			case i < c.DirectionalLights+c.PointLights:
				s.Lights[i] = NewPointLight(mgl32.Vec3{})
			default:
				s.Lights[i] = NewSpotLight(mgl32.Vec3{}, mgl32.QuatIdent())
			}
		}
	}
	if s.Materials == nil {
		if s.Materials, err = memory.Alloc[Material](a, s.Counts.Materials); err != nil {
			return err
		}
		for i := range s.Materials {
			s.Materials[i] = DefaultMaterial()
		}
	}
	if s.Meshes == nil && len(opts.MeshFiles) > 0 {
		if s.Meshes, err = memory.Alloc[*mesh.Mesh](a, len(opts.MeshFiles)); err != nil {
			return err
		}
		for i, path := range opts.MeshFiles {
			if s.Meshes[i], err = mesh.Load(path, a); err != nil {
				return err
			}
		}
	}
	if s.Textures == nil && len(opts.TextureFiles) > 0 {
		if s.Textures, err = memory.Alloc[*texture.Texture](a, len(opts.TextureFiles)); err != nil {
			return err
		}
		for i, path := range opts.TextureFiles {
			if s.Textures[i], err = texture.Load(path, a); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Scene) Arena() *memory.Arena { return s.arena }

func (s *Scene) UpdateAABB(i int) {
	g := &s.Geometries[i]
	s.AABBs[i] = g.Transform.ExternAABB(s.LocalAABB(g))
}

// UpdateAABBs recomputes the world bounds of every geometry.
func (s *Scene) UpdateAABBs() {
	for i := range s.Geometries {
		s.UpdateAABB(i)
	}
}

// UpdateBVH rebuilds the top level BVH in place from the current bounds.
func (s *Scene) UpdateBVH(maxLeafSize int) {
	for i := range s.Geometries {
		s.items[i] = bvh.Item{AABB: s.AABBs[i], ID: uint32(i)}
	}
	ids := s.builder.Build(&s.BVH, s.items[:len(s.Geometries)], maxLeafSize)
	copy(s.LeafGeometryIndices, ids)
}

// Update refreshes bounds and the BVH after transforms changed.
func (s *Scene) Update() {
	s.UpdateAABBs()
	s.UpdateBVH(bvh.MaxObjsPerSceneNode)
}

// VisibleGeometries appends the indices of geometries whose bounds touch
// the frustum.
func (s *Scene) VisibleGeometries(dst []uint32, planes [6]mgl32.Vec4) []uint32 {
	for i := range s.Geometries {
		if AABBInFrustum(s.AABBs[i], planes) {
			dst = append(dst, uint32(i))
		}
	}
	return dst
}
