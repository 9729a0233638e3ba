// Package memory provides the byte-budgeted arena the scene carves its
// arrays from. Capacity is computed up front with a Budget; running out is a
// setup error, never a per-frame one.
package memory

import (
	"errors"
	"fmt"
	"unsafe"
)

var ErrArenaExhausted = errors.New("memory: arena exhausted")

// Arena is a monotonic byte budget: allocations only ever grow Occupied
// until the whole arena is released. Each Alloc is backed by its own make;
// the garbage collector owns the memory, the arena only accounts for it.
type Arena struct {
	capacity uint64
	occupied uint64
	allocs   int
}

func NewArena(capacity uint64) *Arena {
	return &Arena{capacity: capacity}
}

func (a *Arena) Capacity() uint64  { return a.capacity }
func (a *Arena) Occupied() uint64  { return a.occupied }
func (a *Arena) Available() uint64 { return a.capacity - a.occupied }
func (a *Arena) Allocations() int  { return a.allocs }

// Release resets the budget to empty. It frees nothing: slices handed out
// earlier stay valid until the garbage collector reclaims them, they are
// just no longer counted.
func (a *Arena) Release() {
	a.occupied = 0
	a.allocs = 0
}

func (a *Arena) reserve(size uint64) error {
	if size > a.Available() {
		return fmt.Errorf("%w: need %d bytes, %d of %d available", ErrArenaExhausted, size, a.Available(), a.capacity)
	}
	a.occupied += size
	a.allocs++
	return nil
}

// Alloc carves a zeroed slice of n values of T from the arena.
func Alloc[T any](a *Arena, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	if err := a.reserve(SizeOf[T](n)); err != nil {
		return nil, err
	}
	return make([]T, n), nil
}

// MustAlloc is Alloc for callers that sized the arena with a Budget and treat
// exhaustion as a programming error.
func MustAlloc[T any](a *Arena, n int) []T {
	s, err := Alloc[T](a, n)
	if err != nil {
		panic(err)
	}
	return s
}

// SizeOf is the number of bytes n values of T take in an arena.
func SizeOf[T any](n int) uint64 {
	var zero T
	return uint64(unsafe.Sizeof(zero)) * uint64(n)
}

// Budget accumulates the size of a set of planned allocations.
type Budget struct {
	bytes uint64
}

func Add[T any](b *Budget, n int) {
	b.bytes += SizeOf[T](n)
}

func (b *Budget) AddBytes(n uint64) { b.bytes += n }
func (b *Budget) Bytes() uint64     { return b.bytes }

// Arena returns an arena sized exactly to the budget.
func (b *Budget) Arena() *Arena {
	return NewArena(b.bytes)
}
