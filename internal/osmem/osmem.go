// Package osmem obtains chunk memory from the operating system.
//
// On unix platforms chunks are anonymous private mappings. They live outside
// the Go heap, have stable addresses and arrive zero-filled from the kernel.
// Other platforms fall back to Go heap slices, which are also never moved by
// the collector.
package osmem

import "errors"

var (
	// ErrInvalidSize is returned for non-positive mapping sizes.
	ErrInvalidSize = errors.New("osmem: invalid size")
	// ErrForeign is returned when a slice not produced by the source is released.
	ErrForeign = errors.New("osmem: slice not owned by source")
)

// Source hands out zero-filled byte buffers and takes them back.
type Source interface {
	Map(size int) ([]byte, error)
	Unmap(b []byte) error
}

// Heap is a Source backed by ordinary Go slices.
type Heap struct{}

// Map returns a zeroed slice of size bytes.
func (Heap) Map(size int) ([]byte, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	return make([]byte, size), nil
}

// Unmap drops the slice; the collector reclaims it.
func (Heap) Unmap([]byte) error { return nil }

// Default returns the platform's preferred Source.
func Default() Source { return defaultSource() }
