package tierarena

import (
	"log/slog"

	"github.com/pavanmanishd/tierarena/internal/osmem"
)

// MemorySource supplies chunk buffers. Map must return zero-filled memory
// whose address stays fixed until Unmap.
type MemorySource interface {
	Map(size int) ([]byte, error)
	Unmap(b []byte) error
}

type options struct {
	logger *slog.Logger
	memory MemorySource
}

// Option configures an Allocator.
type Option func(*options)

// WithLogger routes trace and debug events to logger.
//
// If nil is passed, events are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHeapChunks backs chunks with Go heap slices instead of anonymous
// mappings.
func WithHeapChunks() Option {
	return WithMemory(osmem.Heap{})
}

// WithMemory sets the chunk memory source.
//
// If nil is passed, the platform default is used.
func WithMemory(src MemorySource) Option {
	return func(o *options) {
		o.memory = src
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = discardLogger()
	}
	if o.memory == nil {
		o.memory = osmem.Default()
	}
	return o
}
