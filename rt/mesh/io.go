package mesh

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gekko3d/slim/rt/bvh"
	"github.com/gekko3d/slim/rt/memory"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrBadHeader = errors.New("mesh: bad header")

// Header leads every mesh file. Optional attribute streams are present when
// their count is non zero.
type Header struct {
	VertexCount   uint32
	TriangleCount uint32
	EdgeCount     uint32
	UVsCount      uint32
	NormalsCount  uint32
	TangentsCount uint32
	BVHNodeCount  uint32
	BVHHeight     uint32
}

func (m *Mesh) Header() Header {
	return Header{
		VertexCount:   uint32(len(m.Positions)),
		TriangleCount: uint32(len(m.PositionIndices)),
		EdgeCount:     uint32(len(m.EdgeIndices)),
		UVsCount:      uint32(len(m.UVs)),
		NormalsCount:  uint32(len(m.Normals)),
		TangentsCount: uint32(len(m.Tangents)),
		BVHNodeCount:  m.BVH.NodeCount,
		BVHHeight:     m.BVH.Height,
	}
}

func (h Header) validate() error {
	switch {
	case h.TriangleCount > 0 && h.VertexCount == 0:
		return fmt.Errorf("%w: %d triangles without vertices", ErrBadHeader, h.TriangleCount)
	case int(h.BVHNodeCount) > bvh.NodeCapacity(int(h.TriangleCount)):
		return fmt.Errorf("%w: %d bvh nodes for %d triangles", ErrBadHeader, h.BVHNodeCount, h.TriangleCount)
	case h.BVHNodeCount == 0:
		return fmt.Errorf("%w: no bvh root", ErrBadHeader)
	}
	return nil
}

// SizeInBytes is the arena footprint of a mesh described by h.
func (h Header) SizeInBytes() uint64 {
	var b memory.Budget
	h.Budget(&b)
	return b.Bytes()
}

// Budget adds the footprint of a mesh described by h.
func (h Header) Budget(b *memory.Budget) {
	memory.Add[Triangle](b, int(h.TriangleCount))
	memory.Add[mgl32.Vec3](b, int(h.VertexCount))
	memory.Add[TriangleVertexIndices](b, int(h.TriangleCount))
	memory.Add[EdgeVertexIndices](b, int(h.EdgeCount))
	if h.UVsCount > 0 {
		memory.Add[mgl32.Vec2](b, int(h.UVsCount))
		memory.Add[TriangleVertexIndices](b, int(h.TriangleCount))
	}
	if h.NormalsCount > 0 {
		memory.Add[mgl32.Vec3](b, int(h.NormalsCount))
		memory.Add[TriangleVertexIndices](b, int(h.TriangleCount))
	}
	if h.TangentsCount > 0 {
		memory.Add[mgl32.Vec3](b, int(h.TangentsCount))
		memory.Add[TriangleVertexIndices](b, int(h.TriangleCount))
	}
	memory.Add[bvh.Node](b, bvh.NodeCapacity(int(h.TriangleCount)))
}

func WriteHeader(w io.Writer, h Header) error {
	return binary.Write(w, binary.LittleEndian, &h)
}

func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return h, fmt.Errorf("mesh header: %w", err)
	}
	return h, h.validate()
}

// AllocateMemory carves every array of a mesh described by h from arena.
func AllocateMemory(h Header, arena *memory.Arena) (*Mesh, error) {
	m := &Mesh{}
	var err error
	alloc := func(f func() error) {
		if err == nil {
			err = f()
		}
	}
	tris := int(h.TriangleCount)
	alloc(func() (e error) { m.Triangles, e = memory.Alloc[Triangle](arena, tris); return })
	alloc(func() (e error) { m.Positions, e = memory.Alloc[mgl32.Vec3](arena, int(h.VertexCount)); return })
	alloc(func() (e error) { m.PositionIndices, e = memory.Alloc[TriangleVertexIndices](arena, tris); return })
	alloc(func() (e error) { m.EdgeIndices, e = memory.Alloc[EdgeVertexIndices](arena, int(h.EdgeCount)); return })
	if h.UVsCount > 0 {
		alloc(func() (e error) { m.UVs, e = memory.Alloc[mgl32.Vec2](arena, int(h.UVsCount)); return })
		alloc(func() (e error) { m.UVIndices, e = memory.Alloc[TriangleVertexIndices](arena, tris); return })
	}
	if h.NormalsCount > 0 {
		alloc(func() (e error) { m.Normals, e = memory.Alloc[mgl32.Vec3](arena, int(h.NormalsCount)); return })
		alloc(func() (e error) { m.NormalIndices, e = memory.Alloc[TriangleVertexIndices](arena, tris); return })
	}
	if h.TangentsCount > 0 {
		alloc(func() (e error) { m.Tangents, e = memory.Alloc[mgl32.Vec3](arena, int(h.TangentsCount)); return })
		alloc(func() (e error) { m.TangentIndices, e = memory.Alloc[TriangleVertexIndices](arena, tris); return })
	}
	alloc(func() (e error) { m.BVH, e = bvh.Allocate(arena, tris); return })
	if err != nil {
		return nil, fmt.Errorf("allocate mesh: %w", err)
	}
	m.BVH.NodeCount = h.BVHNodeCount
	m.BVH.Height = h.BVHHeight
	return m, nil
}

// WriteContent writes everything after the header.
func (m *Mesh) WriteContent(w io.Writer) error {
	le := binary.LittleEndian
	parts := []any{m.AABB.Min, m.AABB.Max, m.Triangles, m.Positions, m.PositionIndices, m.EdgeIndices}
	if len(m.UVs) > 0 {
		parts = append(parts, m.UVs, m.UVIndices)
	}
	if len(m.Normals) > 0 {
		parts = append(parts, m.Normals, m.NormalIndices)
	}
	if len(m.Tangents) > 0 {
		parts = append(parts, m.Tangents, m.TangentIndices)
	}
	for _, p := range parts {
		if err := binary.Write(w, le, p); err != nil {
			return err
		}
	}
	return m.BVH.WriteContent(w)
}

// ReadContent fills a mesh returned by AllocateMemory.
func (m *Mesh) ReadContent(r io.Reader) error {
	le := binary.LittleEndian
	parts := []any{&m.AABB.Min, &m.AABB.Max, m.Triangles, m.Positions, m.PositionIndices, m.EdgeIndices}
	if len(m.UVs) > 0 {
		parts = append(parts, m.UVs, m.UVIndices)
	}
	if len(m.Normals) > 0 {
		parts = append(parts, m.Normals, m.NormalIndices)
	}
	if len(m.Tangents) > 0 {
		parts = append(parts, m.Tangents, m.TangentIndices)
	}
	for _, p := range parts {
		if err := binary.Read(r, le, p); err != nil {
			return fmt.Errorf("mesh content: %w", err)
		}
	}
	return m.BVH.ReadContent(r)
}

func (m *Mesh) Write(w io.Writer) error {
	if err := WriteHeader(w, m.Header()); err != nil {
		return err
	}
	return m.WriteContent(w)
}

// Read decodes a mesh, carving it from arena when one is given.
func Read(r io.Reader, arena *memory.Arena) (*Mesh, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if arena == nil {
		arena = memory.NewArena(h.SizeInBytes())
	}
	m, err := AllocateMemory(h, arena)
	if err != nil {
		return nil, err
	}
	if err := m.ReadContent(r); err != nil {
		return nil, err
	}
	return m, nil
}

func Save(path string, m *Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := m.Write(w); err != nil {
		f.Close()
		return fmt.Errorf("save mesh %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func Load(path string, arena *memory.Arena) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := Read(bufio.NewReader(f), arena)
	if err != nil {
		return nil, fmt.Errorf("load mesh %s: %w", path, err)
	}
	return m, nil
}

// LoadHeader reads only the header of a mesh file, for sizing arenas.
func LoadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()
	return ReadHeader(f)
}
