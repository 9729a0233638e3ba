package bvh

import (
	"time"

	"github.com/gekko3d/slim/rt/core"
	"github.com/gekko3d/slim/rt/memory"
	"github.com/go-gl/mathgl/mgl32"
)

const bucketCount = 16

// Logger is the subset of the application logger the builder reports to.
type Logger interface {
	Debugf(format string, args ...any)
}

// Item is a primitive to partition: its bounds and the id the remap table
// should hand back for it.
type Item struct {
	AABB core.AABB
	ID   uint32
}

type buildStats struct {
	nodes    int
	leafs    int
	maxDepth int
}

type buildTask struct {
	node       uint32
	start, end int
	depth      int
}

// Builder partitions primitives top down into a BVH. It owns scratch space
// for up to Capacity primitives and can be reused across builds.
type Builder struct {
	items   []Item
	centers []mgl32.Vec3
	buckets []uint8
	tasks   []buildTask

	// LeafIDs maps leaf slots to the ids of the items they hold. It is valid
	// until the next Build.
	LeafIDs []uint32

	logger Logger
	stats  buildStats
}

func NewBuilder(capacity int) *Builder {
	return &Builder{
		items:   make([]Item, capacity),
		centers: make([]mgl32.Vec3, capacity),
		buckets: make([]uint8, capacity),
		tasks:   make([]buildTask, 0, 64),
		LeafIDs: make([]uint32, capacity),
	}
}

// AllocateBuilder carves the builder scratch space from an arena.
func AllocateBuilder(arena *memory.Arena, capacity int) (*Builder, error) {
	b := &Builder{tasks: make([]buildTask, 0, 64)}
	var err error
	if b.items, err = memory.Alloc[Item](arena, capacity); err != nil {
		return nil, err
	}
	if b.centers, err = memory.Alloc[mgl32.Vec3](arena, capacity); err != nil {
		return nil, err
	}
	if b.buckets, err = memory.Alloc[uint8](arena, capacity); err != nil {
		return nil, err
	}
	if b.LeafIDs, err = memory.Alloc[uint32](arena, capacity); err != nil {
		return nil, err
	}
	return b, nil
}

// BuilderSize is the arena footprint of a builder for capacity primitives.
func BuilderSize(capacity int) uint64 {
	return memory.SizeOf[Item](capacity) +
		memory.SizeOf[mgl32.Vec3](capacity) +
		memory.SizeOf[uint8](capacity) +
		memory.SizeOf[uint32](capacity)
}

func (b *Builder) Capacity() int { return len(b.items) }

func (b *Builder) SetLogger(l Logger) { b.logger = l }

// Build partitions items into out and returns the leaf remap table. Leaves
// hold at most maxLeafSize items; out.Nodes must hold NodeCapacity(len(items))
// nodes.
func (b *Builder) Build(out *BVH, items []Item, maxLeafSize int) []uint32 {
	start := time.Now()
	if maxLeafSize < 1 {
		maxLeafSize = 1
	}
	n := len(items)
	b.stats = buildStats{}

	if n == 0 {
		out.Nodes[0] = Node{AABB: core.EmptyAABB()}
		out.NodeCount = 1
		out.Height = 0
		return b.LeafIDs[:0]
	}

	for i, it := range items {
		it.AABB = it.AABB.Padded(core.Eps)
		b.items[i] = it
		b.centers[i] = it.AABB.Center()
	}

	out.NodeCount = 1
	b.tasks = append(b.tasks[:0], buildTask{node: 0, start: 0, end: n})
	for len(b.tasks) > 0 {
		task := b.tasks[len(b.tasks)-1]
		b.tasks = b.tasks[:len(b.tasks)-1]

		node := &out.Nodes[task.node]
		node.AABB = b.bounds(task.start, task.end)
		node.Depth = uint16(task.depth)
		node.Flags = 0
		b.stats.nodes++
		if task.depth > b.stats.maxDepth {
			b.stats.maxDepth = task.depth
		}

		count := task.end - task.start
		if count <= maxLeafSize {
			node.FirstIndex = uint32(task.start)
			node.LeafCount = uint32(count)
			b.stats.leafs++
			continue
		}

		mid := b.partition(task.start, task.end)
		left := out.NodeCount
		out.NodeCount += 2
		node.FirstIndex = left
		node.LeafCount = 0

		b.tasks = append(b.tasks,
			buildTask{node: left + 1, start: mid, end: task.end, depth: task.depth + 1},
			buildTask{node: left, start: task.start, end: mid, depth: task.depth + 1},
		)
	}
	out.Height = uint32(b.stats.maxDepth)

	for i := 0; i < n; i++ {
		b.LeafIDs[i] = b.items[i].ID
	}

	if b.logger != nil {
		b.logger.Debugf("bvh build time: %s, primitives: %d, maxDepth: %d, nodes: %d, leafs: %d",
			time.Since(start), n, b.stats.maxDepth, b.stats.nodes, b.stats.leafs)
	}
	return b.LeafIDs[:n]
}

func (b *Builder) bounds(start, end int) core.AABB {
	box := core.EmptyAABB()
	for i := start; i < end; i++ {
		box = box.Union(b.items[i].AABB)
	}
	return box
}

// partition splits [start, end) into two non empty halves and returns the
// split index. Centroids are binned along the longest axis of their bounds
// and split at the spatial median; if that leaves a side empty the bucket
// boundary closest to an even split is used instead.
func (b *Builder) partition(start, end int) int {
	cb := core.EmptyAABB()
	for i := start; i < end; i++ {
		cb = cb.Grow(b.centers[i])
	}
	axis := cb.LongestAxis()
	lo := cb.Min[axis]
	extent := cb.Max[axis] - lo
	if extent <= 0 {
		// Coincident centroids: split by position in the range.
		return start + (end-start)/2
	}

	var counts [bucketCount]int
	scale := float32(bucketCount) / extent
	for i := start; i < end; i++ {
		k := int((b.centers[i][axis] - lo) * scale)
		if k >= bucketCount {
			k = bucketCount - 1
		}
		b.buckets[i] = uint8(k)
		counts[k]++
	}

	total := end - start
	split := bucketCount / 2
	if left := prefix(counts[:], split); left == 0 || left == total {
		best := total
		for k := 1; k < bucketCount; k++ {
			left := prefix(counts[:], k)
			if left == 0 || left == total {
				continue
			}
			if d := abs(2*left - total); d < best {
				best, split = d, k
			}
		}
	}

	i, j := start, end-1
	for i <= j {
		if int(b.buckets[i]) < split {
			i++
			continue
		}
		b.swap(i, j)
		j--
	}
	return i
}

func (b *Builder) swap(i, j int) {
	b.items[i], b.items[j] = b.items[j], b.items[i]
	b.centers[i], b.centers[j] = b.centers[j], b.centers[i]
	b.buckets[i], b.buckets[j] = b.buckets[j], b.buckets[i]
}

func prefix(counts []int, k int) int {
	sum := 0
	for _, c := range counts[:k] {
		sum += c
	}
	return sum
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
