// Package vector provides a growable array whose storage lives in a
// tierarena.Allocator.
package vector

import "github.com/pavanmanishd/tierarena"

// growthFactor is the capacity multiplier applied when a vector is full.
const growthFactor = 2

// Vector is an ordered sequence of T backed by allocator memory. T must not
// contain Go pointers. Like the allocator it is not goroutine-safe.
type Vector[T any] struct {
	alloc *tierarena.Allocator
	data  []T
	n     int
}

// New creates a vector with room for capacity elements. A capacity below
// one is raised to one.
func New[T any](a *tierarena.Allocator, capacity int) *Vector[T] {
	capacity = max(capacity, 1)
	return &Vector[T]{
		alloc: a,
		data:  tierarena.NewSlice[T](a, capacity),
	}
}

// Append adds x to the end of the vector and returns its index.
func (v *Vector[T]) Append(x T) int {
	v.reserve(1)
	v.data[v.n] = x
	v.n++
	return v.n - 1
}

// Extend appends every element of xs.
func (v *Vector[T]) Extend(xs ...T) {
	if len(xs) == 0 {
		return
	}
	v.reserve(len(xs))
	v.n += copy(v.data[v.n:], xs)
}

// At returns the element at index i. It panics if i is out of range.
func (v *Vector[T]) At(i int) T {
	return v.data[:v.n][i]
}

// Set replaces the element at index i. It panics if i is out of range.
func (v *Vector[T]) Set(i int, x T) {
	v.data[:v.n][i] = x
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return v.n }

// Cap returns the number of elements the vector holds before growing.
func (v *Vector[T]) Cap() int { return len(v.data) }

// Slice returns the elements as a slice view. The view is invalidated by the
// next growth or by Destroy.
func (v *Vector[T]) Slice() []T {
	return v.data[:v.n:v.n]
}

// Destroy returns the storage to the allocator. The vector must not be used
// afterwards.
func (v *Vector[T]) Destroy() {
	if v.data != nil {
		tierarena.FreeSlice(v.alloc, v.data)
	}
	v.data = nil
	v.n = 0
}

func (v *Vector[T]) reserve(extra int) {
	need := v.n + extra
	if need <= len(v.data) {
		return
	}
	v.data = tierarena.GrowSlice(v.alloc, v.data, max(len(v.data)*growthFactor, need))
}
