// Package tierarena implements a tiered arena allocator for an embedded
// interpreter runtime.
//
// # Overview
//
// Every dynamic allocation of the runtime (byte buffers, strings, vectors,
// bytecode chunks) is served from large chunks obtained from the operating
// system instead of one general-purpose allocation per object. Requests are
// routed by size to one of three tiers:
//
//	Tier     ceiling   chunk size
//	small     1 KiB      4 KiB
//	medium    1 MiB      4 MiB
//	large   128 MiB    512 MiB
//
// # Basic Usage
//
//	alloc := tierarena.New(tierarena.WithLogger(logger))
//	defer alloc.Destroy() // Releases every chunk
//
//	buf := alloc.Alloc(64)          // 64 zeroed bytes from the small tier
//	buf = alloc.Realloc(buf, 4096)  // moved to the medium tier, tail zeroed
//	dup := alloc.Duplicate(buf)     // independent copy
//	alloc.Free(dup)
//	alloc.Free(buf)
//
// Typed helpers place pointer-free values in chunk memory:
//
//	ids := tierarena.NewSlice[uint32](alloc, 128)
//	ids = tierarena.GrowSlice(alloc, ids, 256)
//	tierarena.FreeSlice(alloc, ids)
//
// # Memory Layout
//
// A chunk holds a packed run of blocks. Each block is an 8-byte header
// followed by its payload:
//
//	bits  0..7   magic tag (corruption sentinel)
//	bits  8..46  payload size
//	bit   47     in use
//	bits 48..63  reserved
//
// Blocks are never split or merged. Allocation scans a tier's chunks in order
// and takes the first free block that is large enough; if none exists it
// carves a new block at the chunk's high-water mark, and if every chunk is
// full it appends a chunk to the tail of the chain. Free only clears the
// in-use bit. Memory goes back to the operating system in Destroy.
//
// # Errors
//
// Misuse is never absorbed. Zero-size or oversized requests, foreign
// pointers, double frees, corrupt headers and failed chunk mappings panic
// with a *FatalError whose Unwrap yields one of the Err* sentinels.
//
// # Thread Safety
//
// An Allocator is not safe for concurrent use. One goroutine owns it and
// serializes every call.
//
// # Diagnostics
//
// WriteRepr prints the full arena → chunk → block tree, Verify re-checks every
// header without panicking, and Metrics returns per-tier usage:
//
//	m := alloc.Metrics()
//	fmt.Printf("In use: %d of %d bytes\n", m.SizeInUse, m.Capacity)
package tierarena
