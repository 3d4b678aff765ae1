package tierarena

import (
	"fmt"
	"log/slog"
)

// Stats holds historical counters for one Arena.
type Stats struct {
	Allocs        uint64 // blocks handed out
	Frees         uint64 // blocks released
	Reuses        uint64 // allocations served by a previously freed block
	Carves        uint64 // allocations served by carving fresh space
	ChunksCreated uint64 // chunks obtained from the memory source
}

// Arena is the chunk chain of one tier. Chunks are appended at the tail and
// never reordered or removed before Destroy.
//
// Arenas are owned by an Allocator and are not goroutine-safe.
type Arena struct {
	tier      Tier
	chunkSize int
	maxAlloc  int

	begin   *chunk
	end     *chunk
	nchunks int

	mem    MemorySource
	logger *slog.Logger
	stats  Stats
}

func (a *Arena) init(spec TierSpec, mem MemorySource, logger *slog.Logger) {
	*a = Arena{
		tier:      spec.Tier,
		chunkSize: spec.ChunkSize,
		maxAlloc:  spec.MaxAlloc,
		mem:       mem,
		logger:    logger.With(slog.String("tier", spec.Tier.String())),
	}
}

// alloc returns an in-use block of at least size bytes. size is already
// aligned and within the tier's ceiling.
func (a *Arena) alloc(size int) []byte {
	if a.end == nil {
		a.grow(size)
	}

	for c := a.begin; c != nil; c = c.next {
		payload, reused, err := c.findOrCarve(size)
		if err != nil {
			fatal(a.logger, "alloc", err, "")
		}
		if payload != nil {
			a.served(c, payload, size, reused)
			return payload
		}
	}

	// Every chunk is full.
	c := a.grow(size)
	payload, reused, err := c.findOrCarve(size)
	if err != nil {
		fatal(a.logger, "alloc", err, "")
	}
	if payload == nil {
		fatal(a.logger, "alloc", ErrSystemAlloc, "fresh chunk of %d bytes cannot hold %d", c.total(), size)
	}
	a.served(c, payload, size, reused)
	return payload
}

func (a *Arena) served(c *chunk, payload []byte, size int, reused bool) {
	a.stats.Allocs++
	msg := "block carved"
	if reused {
		a.stats.Reuses++
		msg = "block reused"
	} else {
		a.stats.Carves++
	}
	trace(a.logger, msg,
		slog.Int("chunk", c.index),
		slog.Int("offset", int(addrOf(payload)-c.base)-headerSize),
		slog.Int("requested", size),
		slog.Int("block", len(payload)),
	)
}

// grow appends a chunk big enough for one block of size bytes.
func (a *Arena) grow(size int) *chunk {
	capacity := a.chunkSize
	if need := headerSize + size; need > capacity {
		capacity = need
	}

	c, err := newChunk(a.mem, capacity)
	if err != nil {
		fatal(a.logger, "chunk create", fmt.Errorf("%w: %w", ErrSystemAlloc, err), "capacity %d", capacity)
	}
	c.index = a.nchunks
	a.nchunks++
	if a.end == nil {
		a.begin = c
	} else {
		a.end.next = c
	}
	a.end = c
	a.stats.ChunksCreated++

	debug(a.logger, "chunk created",
		slog.Int("chunk", c.index),
		slog.Int("capacity", c.total()),
	)
	return c
}

// free releases the block whose payload starts at addr.
func (a *Arena) free(addr uintptr) {
	for c := a.begin; c != nil; c = c.next {
		if !c.contains(addr) {
			continue
		}
		size, err := c.release(addr)
		if err != nil {
			fatal(a.logger, "free", err, "")
		}
		a.stats.Frees++
		trace(a.logger, "block freed",
			slog.Int("chunk", c.index),
			slog.Int("offset", int(addr-c.base)-headerSize),
			slog.Int("block", size),
		)
		return
	}
	fatal(a.logger, "free", ErrUnknownPointer, "address %#x", addr)
}

// contains reports whether any chunk in the chain holds addr.
func (a *Arena) contains(addr uintptr) bool {
	for c := a.begin; c != nil; c = c.next {
		if c.contains(addr) {
			return true
		}
	}
	return false
}

// destroy returns every chunk to the memory source in one pass.
func (a *Arena) destroy() {
	for c := a.begin; c != nil; {
		next := c.next
		if err := a.mem.Unmap(c.buf); err != nil {
			a.logger.Warn("chunk release failed", slog.Int("chunk", c.index), slog.Any("error", err))
		}
		c.buf = nil
		c.next = nil
		c = next
	}
	a.begin = nil
	a.end = nil
	a.nchunks = 0
}

// Tier returns the size class served by the arena.
func (a *Arena) Tier() Tier { return a.tier }

// ChunkSize returns the default capacity of new chunks.
func (a *Arena) ChunkSize() int { return a.chunkSize }

// MaxAlloc returns the largest aligned request the arena accepts.
func (a *Arena) MaxAlloc() int { return a.maxAlloc }
