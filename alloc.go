package tierarena

import (
	"log/slog"
	"unsafe"
)

// The typed helpers below place values of T directly in chunk memory. Chunk
// memory is invisible to the garbage collector, so T must not contain Go
// pointers (no pointers, slices, strings, maps, interfaces or channels).

// NewSlice allocates a zeroed slice of n elements of type T.
// n must be positive.
func NewSlice[T any](a *Allocator, n int) []T {
	b := a.Alloc(sliceBytes[T](a, n))
	clear(b)
	return fromBytes[T](b, n)
}

// Alloc allocates a single zeroed T.
func Alloc[T any](a *Allocator) *T {
	return &NewSlice[T](a, 1)[0]
}

// GrowSlice reallocates s to hold n elements. The common prefix is kept and
// new elements are zeroed. s must have been returned by NewSlice or
// GrowSlice and is invalid afterwards.
func GrowSlice[T any](a *Allocator, s []T, n int) []T {
	b := a.Realloc(toBytes(s), sliceBytes[T](a, n))
	return fromBytes[T](b, n)
}

// FreeSlice releases a slice obtained from NewSlice or GrowSlice.
func FreeSlice[T any](a *Allocator, s []T) {
	a.Free(toBytes(s))
}

// Free releases a value obtained from Alloc.
func Free[T any](a *Allocator, p *T) {
	a.Free(toBytes(unsafe.Slice(p, 1)))
}

// sliceBytes validates n and returns the byte size of n elements of T.
func sliceBytes[T any](a *Allocator, n int) int {
	var zero T
	elem := int(unsafe.Sizeof(zero))
	var logger *slog.Logger
	if a != nil {
		logger = a.logger
	}
	if n <= 0 || elem == 0 {
		fatal(logger, "alloc", ErrZeroSize, "%d elements of %d bytes", n, elem)
	}
	if n > MaxAllocSize/elem {
		fatal(logger, "alloc", ErrTooLarge, "%d elements of %d bytes", n, elem)
	}
	return n * elem
}

func fromBytes[T any](b []byte, n int) []T {
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
}

func toBytes[T any](s []T) []byte {
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(zero)))
}
