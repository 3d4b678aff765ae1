package tierarena

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/tierarena/internal/osmem"
)

// requireFatal runs fn and asserts it panics with a *FatalError matching target.
func requireFatal(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected fatal %v", target)
		fe, ok := r.(*FatalError)
		require.True(t, ok, "panic value %T (%v) is not *FatalError", r, r)
		require.ErrorIs(t, fe, target)
	}()
	fn()
}

// newHeapAllocator keeps test chunks on the Go heap.
func newHeapAllocator(t *testing.T, opts ...Option) *Allocator {
	t.Helper()
	a := New(append([]Option{WithHeapChunks()}, opts...)...)
	t.Cleanup(a.Destroy)
	return a
}

// failingMemory refuses every mapping.
type failingMemory struct{}

var errNoMemory = errors.New("no memory for you")

func (failingMemory) Map(int) ([]byte, error) { return nil, errNoMemory }
func (failingMemory) Unmap([]byte) error      { return nil }

// countingMemory wraps the heap source and counts live mappings.
type countingMemory struct {
	osmem.Heap
	mapped   int
	unmapped int
}

func (m *countingMemory) Map(size int) ([]byte, error) {
	m.mapped++
	return m.Heap.Map(size)
}

func (m *countingMemory) Unmap(b []byte) error {
	m.unmapped++
	return m.Heap.Unmap(b)
}
