package tierarena

import (
	"log/slog"
)

// Allocator routes requests to three size-class arenas. It is the explicit
// memory context of one interpreter instance: create it at startup, hand it
// to every subsystem, and Destroy it once at shutdown.
//
// Returned slices are views into chunk memory. They stay valid until freed
// or until the allocator is destroyed. Allocator is not goroutine-safe.
type Allocator struct {
	arenas    [numTiers]Arena
	logger    *slog.Logger
	destroyed bool
}

// New creates an Allocator. No memory is mapped until the first allocation.
func New(opts ...Option) *Allocator {
	o := buildOptions(opts)
	a := &Allocator{logger: o.logger}
	for i := range a.arenas {
		a.arenas[i].init(tierSpecs[i], o.memory, o.logger)
	}
	return a
}

// Destroy releases every chunk of every tier. Any later use of the
// allocator, or of slices it returned, is invalid. Calling Destroy again is
// a no-op.
func (a *Allocator) Destroy() {
	if a == nil {
		fatal(nil, "destroy", ErrNilAllocator, "")
	}
	if a.destroyed {
		return
	}
	for i := range a.arenas {
		a.arenas[i].destroy()
	}
	a.destroyed = true
	debug(a.logger, "allocator destroyed")
}

// Alloc returns a block of n bytes. Freshly carved blocks
// are zeroed; reused blocks keep whatever their previous owner wrote.
//
// n must be in (0, MaxAllocSize]; anything else is a fatal contract
// violation.
func (a *Allocator) Alloc(n int) []byte {
	a.live("alloc")
	if n <= 0 {
		fatal(a.logger, "alloc", ErrZeroSize, "requested %d bytes", n)
	}
	if n > MaxAllocSize {
		fatal(a.logger, "alloc", ErrTooLarge, "requested %d bytes, ceiling %d", n, MaxAllocSize)
	}

	size := alignSize(n)
	t, ok := tierFor(size)
	if !ok {
		fatal(a.logger, "alloc", ErrTooLarge, "aligned size %d", size)
	}
	b := a.arenas[t].alloc(size)
	return b[:n:n]
}

// Free releases a block previously returned by Alloc, Realloc or Duplicate.
// Freeing a foreign slice or freeing twice is fatal.
func (a *Allocator) Free(b []byte) {
	a.live("free")
	addr := addrOf(b)
	if addr == 0 {
		fatal(a.logger, "free", ErrUnknownPointer, "nil slice")
	}
	for i := range a.arenas {
		if a.arenas[i].contains(addr) {
			a.arenas[i].free(addr)
			return
		}
	}
	fatal(a.logger, "free", ErrUnknownPointer, "address %#x", addr)
}

// Realloc moves b into a fresh block of newSize bytes: the common prefix is
// copied, any growth is zeroed and b is freed. It never grows in place.
func (a *Allocator) Realloc(b []byte, newSize int) []byte {
	a.live("realloc")
	nb := a.Alloc(newSize)
	n := copy(nb, b)
	clear(nb[n:])
	a.Free(b)
	trace(a.logger, "realloc",
		slog.Int("old_size", len(b)),
		slog.Int("new_size", newSize),
	)
	return nb
}

// Duplicate allocates len(src) bytes and copies src into them. src may be
// any slice, not only allocator memory.
func (a *Allocator) Duplicate(src []byte) []byte {
	a.live("duplicate")
	nb := a.Alloc(len(src))
	copy(nb, src)
	trace(a.logger, "duplicate", slog.Int("size", len(src)))
	return nb
}

// Contains reports whether b points into memory owned by the allocator.
func (a *Allocator) Contains(b []byte) bool {
	_, ok := a.TierOf(b)
	return ok
}

// TierOf returns the tier whose arena holds b.
func (a *Allocator) TierOf(b []byte) (Tier, bool) {
	a.live("contains")
	addr := addrOf(b)
	if addr == 0 {
		return 0, false
	}
	for i := range a.arenas {
		if a.arenas[i].contains(addr) {
			return Tier(i), true
		}
	}
	return 0, false
}

// Arena returns the arena of tier t for inspection, or nil for an unknown
// tier.
func (a *Allocator) Arena(t Tier) *Arena {
	a.live("arena")
	if int(t) >= numTiers {
		return nil
	}
	return &a.arenas[t]
}

// live guards every entry point against nil and destroyed allocators.
func (a *Allocator) live(op string) {
	if a == nil {
		fatal(nil, op, ErrNilAllocator, "")
	}
	if a.destroyed {
		fatal(a.logger, op, ErrDestroyed, "")
	}
}
