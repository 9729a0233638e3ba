package bvh

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/gekko3d/slim/rt/core"
	"github.com/gekko3d/slim/rt/memory"
)

const (
	// MaxTrianglesPerMeshNode is the leaf size mesh BVHs are built with.
	MaxTrianglesPerMeshNode = 2
	// MaxObjsPerSceneNode bounds the leaf size of the scene BVH.
	MaxObjsPerSceneNode = 2
)

// NodeSize is the byte size of a serialized node:
//
//	aabb_min    : vec4<f32> (16)
//	aabb_max    : vec4<f32> (16)
//	first_index : u32       (4)
//	leaf_count  : u32       (4)
//	depth       : u16       (2)
//	flags       : u16       (2)
//	padding     : u32       (4)
const NodeSize = 48

// Node is a flat array BVH node. A node with LeafCount > 0 is a leaf whose
// primitives are the remap table range [FirstIndex, FirstIndex+LeafCount).
// Otherwise FirstIndex is the left child and FirstIndex+1 the right one.
type Node struct {
	AABB       core.AABB
	FirstIndex uint32
	LeafCount  uint32
	Depth      uint16
	Flags      uint16
}

func (n *Node) IsLeaf() bool { return n.LeafCount > 0 }

// AppendBytes appends the little endian GPU layout of the node to dst.
func (n *Node) AppendBytes(dst []byte) []byte {
	le := binary.LittleEndian
	for i := 0; i < 3; i++ {
		dst = le.AppendUint32(dst, math.Float32bits(n.AABB.Min[i]))
	}
	dst = le.AppendUint32(dst, 0)
	for i := 0; i < 3; i++ {
		dst = le.AppendUint32(dst, math.Float32bits(n.AABB.Max[i]))
	}
	dst = le.AppendUint32(dst, 0)
	dst = le.AppendUint32(dst, n.FirstIndex)
	dst = le.AppendUint32(dst, n.LeafCount)
	dst = le.AppendUint16(dst, n.Depth)
	dst = le.AppendUint16(dst, n.Flags)
	return le.AppendUint32(dst, 0)
}

// ReadNode decodes a node written by AppendBytes. src must hold NodeSize bytes.
func ReadNode(src []byte) Node {
	le := binary.LittleEndian
	var n Node
	for i := 0; i < 3; i++ {
		n.AABB.Min[i] = math.Float32frombits(le.Uint32(src[i*4:]))
		n.AABB.Max[i] = math.Float32frombits(le.Uint32(src[16+i*4:]))
	}
	n.FirstIndex = le.Uint32(src[32:])
	n.LeafCount = le.Uint32(src[36:])
	n.Depth = le.Uint16(src[40:])
	n.Flags = le.Uint16(src[42:])
	return n
}

// BVH is a binary hierarchy stored as a flat node array with node 0 as root.
type BVH struct {
	Nodes     []Node
	NodeCount uint32
	Height    uint32
}

// New allocates room for a hierarchy over primitiveCount primitives.
func New(primitiveCount int) BVH {
	return BVH{Nodes: make([]Node, NodeCapacity(primitiveCount))}
}

// Allocate carves the node array from an arena.
func Allocate(arena *memory.Arena, primitiveCount int) (BVH, error) {
	nodes, err := memory.Alloc[Node](arena, NodeCapacity(primitiveCount))
	if err != nil {
		return BVH{}, fmt.Errorf("bvh nodes: %w", err)
	}
	return BVH{Nodes: nodes}, nil
}

// NodeCapacity is the node array length for primitiveCount primitives.
func NodeCapacity(primitiveCount int) int {
	if primitiveCount < 1 {
		return 1
	}
	return 2 * primitiveCount
}

func (b *BVH) Root() *Node { return &b.Nodes[0] }

// Bytes serializes the live nodes for GPU upload.
func (b *BVH) Bytes() []byte {
	out := make([]byte, 0, int(b.NodeCount)*NodeSize)
	for i := uint32(0); i < b.NodeCount; i++ {
		out = b.Nodes[i].AppendBytes(out)
	}
	return out
}

func (b *BVH) WriteHeader(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, [2]uint32{b.NodeCount, b.Height})
}

// ReadHeader reads node count and height without touching the node array.
func (b *BVH) ReadHeader(r io.Reader) error {
	var hdr [2]uint32
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	b.NodeCount, b.Height = hdr[0], hdr[1]
	return nil
}

func (b *BVH) WriteContent(w io.Writer) error {
	_, err := w.Write(b.Bytes())
	return err
}

// ReadContent fills the node array, which must hold NodeCount nodes.
func (b *BVH) ReadContent(r io.Reader) error {
	if uint32(len(b.Nodes)) < b.NodeCount {
		return fmt.Errorf("bvh: %d nodes do not fit in %d slots", b.NodeCount, len(b.Nodes))
	}
	buf := make([]byte, int(b.NodeCount)*NodeSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	for i := uint32(0); i < b.NodeCount; i++ {
		b.Nodes[i] = ReadNode(buf[i*NodeSize:])
	}
	return nil
}
