package tierarena

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	a := New()
	defer a.Destroy()

	sizes := []int{1, 7, 16, 100, MaxSmallAlloc, MaxSmallAlloc + 1, 4096, MaxMediumAlloc, MaxMediumAlloc + 1, 3 << 20}

	for _, size := range sizes {
		t.Run(fmt.Sprintf("size-%d", size), func(t *testing.T) {
			b := a.Alloc(size)
			require.Len(t, b, size)
			require.Equal(t, size, cap(b))

			for i := range b {
				b[i] = byte(i % 251)
			}
			for i := range b {
				if b[i] != byte(i%251) {
					t.Fatalf("byte %d = %d, want %d", i, b[i], byte(i%251))
				}
			}
			a.Free(b)
		})
	}
	require.NoError(t, a.Verify())
}

func TestTierRouting(t *testing.T) {
	a := New()
	defer a.Destroy()

	tests := []struct {
		size int
		tier Tier
	}{
		{1, TierSmall},
		{MaxSmallAlloc - 1, TierSmall},
		{MaxSmallAlloc, TierSmall},
		{MaxSmallAlloc + 1, TierMedium},
		{64 << 10, TierMedium},
		{MaxMediumAlloc, TierMedium},
		{MaxMediumAlloc + 1, TierLarge},
		{2 << 20, TierLarge},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("size-%d", tt.size), func(t *testing.T) {
			b := a.Alloc(tt.size)
			defer a.Free(b)

			got, ok := a.TierOf(b)
			require.True(t, ok)
			assert.Equal(t, tt.tier, got)

			for _, spec := range Tiers() {
				owns := a.Arena(spec.Tier).contains(addrOf(b))
				assert.Equal(t, spec.Tier == tt.tier, owns, "%s arena containment", spec.Tier)
			}
		})
	}
}

func TestTierFor(t *testing.T) {
	tier, ok := tierFor(MaxAllocSize)
	assert.True(t, ok)
	assert.Equal(t, TierLarge, tier)

	_, ok = tierFor(MaxAllocSize + 1)
	assert.False(t, ok)
}

func TestCeilingEnforcement(t *testing.T) {
	a := newHeapAllocator(t)

	requireFatal(t, ErrZeroSize, func() { a.Alloc(0) })
	requireFatal(t, ErrZeroSize, func() { a.Alloc(-1) })
	requireFatal(t, ErrTooLarge, func() { a.Alloc(MaxAllocSize + 1) })
	requireFatal(t, ErrTooLarge, func() { a.Alloc(1 << 40) })

	assert.Zero(t, a.Metrics().NumChunks, "rejected requests map nothing")
}

func TestReuse(t *testing.T) {
	a := newHeapAllocator(t)

	first := a.Alloc(16)
	second := a.Alloc(16)
	third := a.Alloc(16)
	chunks := a.Arena(TierSmall).NumChunks()

	a.Free(second)
	fourth := a.Alloc(16)

	assert.Equal(t, addrOf(second), addrOf(fourth), "freed block is reused first-fit")
	assert.Equal(t, chunks, a.Arena(TierSmall).NumChunks(), "no new chunk")
	assert.NotEqual(t, addrOf(first), addrOf(fourth))
	assert.NotEqual(t, addrOf(third), addrOf(fourth))
}

func TestDoubleFree(t *testing.T) {
	a := newHeapAllocator(t)

	b := a.Alloc(32)
	a.Free(b)
	requireFatal(t, ErrDoubleFree, func() { a.Free(b) })
}

func TestFreeUnknownPointer(t *testing.T) {
	a := newHeapAllocator(t)
	a.Alloc(16) // make sure every tier check has something to look at

	var stack [32]byte
	tests := []struct {
		name string
		b    []byte
	}{
		{"nil", nil},
		{"heap", make([]byte, 16)},
		{"array", stack[:]},
		{"empty", []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireFatal(t, ErrUnknownPointer, func() { a.Free(tt.b) })
		})
	}
}

func TestFreeInteriorPointer(t *testing.T) {
	a := newHeapAllocator(t)

	b := a.Alloc(64)
	// The eight bytes before b[8:] are payload, not a header.
	requireFatal(t, ErrUnknownPointer, func() { a.Free(b[8:]) })
}

func TestFreeInteriorPointerForgedHeader(t *testing.T) {
	a := newHeapAllocator(t)

	b := a.Alloc(64)
	// Payload bytes that happen to look like an in-use header.
	writeHeader(b[0:8], encodeHeader(8).withInUse())
	requireFatal(t, ErrUnknownPointer, func() { a.Free(b[8:]) })

	assert.Equal(t, encodeHeader(8).withInUse(), readHeader(b[0:8]), "payload untouched")
	require.NoError(t, a.Verify())
	assert.Equal(t, 64, a.Metrics().SizeInUse, "real block still in use")
	a.Free(b)
}

func TestFreeSubslice(t *testing.T) {
	a := newHeapAllocator(t)

	b := a.Alloc(64)
	a.Free(b[:0]) // same start address
	requireFatal(t, ErrDoubleFree, func() { a.Free(b) })
}

func TestRealloc(t *testing.T) {
	t.Run("grow", func(t *testing.T) {
		a := newHeapAllocator(t)
		b := a.Alloc(16)
		copy(b, "0123456789abcdef")

		g := a.Realloc(b, 48)
		require.Len(t, g, 48)
		assert.Equal(t, "0123456789abcdef", string(g[:16]))
		assert.Equal(t, make([]byte, 32), g[16:])
		a.Free(g)
	})

	t.Run("shrink", func(t *testing.T) {
		a := newHeapAllocator(t)
		b := a.Alloc(48)
		for i := range b {
			b[i] = byte(i + 1)
		}

		s := a.Realloc(b, 8)
		require.Len(t, s, 8)
		assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, s)
		a.Free(s)
	})

	t.Run("grow into dirty block", func(t *testing.T) {
		a := newHeapAllocator(t)
		b := a.Alloc(16)
		copy(b, "keep-this-prefix")

		dirty := a.Alloc(64)
		for i := range dirty {
			dirty[i] = 0xFF
		}
		a.Free(dirty)

		g := a.Realloc(b, 40)
		assert.Equal(t, addrOf(dirty), addrOf(g), "realloc reused the dirty block")
		assert.Equal(t, "keep-this-prefix", string(g[:16]))
		assert.Equal(t, make([]byte, 24), g[16:], "growth tail must be zeroed")
		a.Free(g)
	})

	t.Run("old block is freed", func(t *testing.T) {
		a := newHeapAllocator(t)
		b := a.Alloc(16)
		g := a.Realloc(b, 24)
		assert.NotEqual(t, addrOf(b), addrOf(g), "never in place")
		requireFatal(t, ErrDoubleFree, func() { a.Free(b) })
		a.Free(g)
	})
}

func TestReallocAcrossTiers(t *testing.T) {
	a := newHeapAllocator(t)

	b := a.Alloc(512)
	for i := range b {
		b[i] = byte(i)
	}

	g := a.Realloc(b, 8192)
	tier, ok := a.TierOf(g)
	require.True(t, ok)
	assert.Equal(t, TierMedium, tier)
	for i := range 512 {
		require.Equal(t, byte(i), g[i])
	}

	want := append([]byte(nil), g[:100]...)
	s := a.Realloc(g, 100)
	tier, _ = a.TierOf(s)
	assert.Equal(t, TierSmall, tier)
	assert.Equal(t, want, s)
}

func TestDuplicate(t *testing.T) {
	a := newHeapAllocator(t)

	src := []byte("not from the allocator")
	dup := a.Duplicate(src)
	assert.Equal(t, src, dup)
	assert.True(t, a.Contains(dup))
	assert.False(t, a.Contains(src))

	dup2 := a.Duplicate(dup)
	dup2[0] = 'N'
	assert.Equal(t, byte('n'), dup[0], "copies are independent")

	requireFatal(t, ErrZeroSize, func() { a.Duplicate(nil) })
}

func TestDestroy(t *testing.T) {
	mem := &countingMemory{}
	a := New(WithMemory(mem))

	a.Alloc(16)
	a.Alloc(4096)
	require.Equal(t, 2, mem.mapped)

	a.Destroy()
	assert.Equal(t, 2, mem.unmapped)

	a.Destroy() // second call is a no-op
	assert.Equal(t, 2, mem.unmapped)

	requireFatal(t, ErrDestroyed, func() { a.Alloc(16) })
	requireFatal(t, ErrDestroyed, func() { a.Free(nil) })
	requireFatal(t, ErrDestroyed, func() { a.Metrics() })
	requireFatal(t, ErrDestroyed, func() { _ = a.WriteRepr(&bytes.Buffer{}) })
}

func TestNilAllocator(t *testing.T) {
	var a *Allocator

	requireFatal(t, ErrNilAllocator, func() { a.Alloc(8) })
	requireFatal(t, ErrNilAllocator, func() { a.Free(nil) })
	requireFatal(t, ErrNilAllocator, func() { a.Realloc(nil, 8) })
	requireFatal(t, ErrNilAllocator, func() { a.Duplicate([]byte{1}) })
	requireFatal(t, ErrNilAllocator, func() { a.Destroy() })
	requireFatal(t, ErrNilAllocator, func() { NewSlice[int64](a, 4) })
}

func TestSystemAllocFailure(t *testing.T) {
	a := New(WithMemory(failingMemory{}))
	defer a.Destroy()

	requireFatal(t, ErrSystemAlloc, func() { a.Alloc(8) })
}

func TestArenaAccessor(t *testing.T) {
	a := newHeapAllocator(t)

	for _, spec := range Tiers() {
		ar := a.Arena(spec.Tier)
		require.NotNil(t, ar)
		assert.Equal(t, spec.Tier, ar.Tier())
	}
	assert.Nil(t, a.Arena(Tier(numTiers)))
}

func TestCorruptionIsFatal(t *testing.T) {
	a := newHeapAllocator(t)

	b := a.Alloc(16)
	a.Alloc(16)
	a.arenas[TierSmall].begin.buf[0] ^= 0xFF

	require.ErrorIs(t, a.Verify(), ErrCorruptHeader)
	requireFatal(t, ErrCorruptHeader, func() { a.Alloc(16) })
	requireFatal(t, ErrCorruptHeader, func() { a.Free(b) })
}

func TestFatalErrorMessage(t *testing.T) {
	fe := &FatalError{Op: "free", Err: ErrDoubleFree, Detail: "chunk 0"}
	assert.Equal(t, "free: tierarena: block is not in use (chunk 0)", fe.Error())

	fe = &FatalError{Op: "alloc", Err: ErrZeroSize}
	assert.Equal(t, "alloc: tierarena: zero-size allocation", fe.Error())
}

func TestLoggerEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: LevelTrace}))
	a := newHeapAllocator(t, WithLogger(logger))

	b := a.Alloc(16)
	a.Free(b)
	a.Alloc(8)
	func() {
		defer func() { _ = recover() }()
		a.Alloc(0)
	}()

	out := buf.String()
	for _, msg := range []string{"chunk created", "block carved", "block freed", "block reused", "fatal contract violation"} {
		assert.Contains(t, out, msg)
	}
	assert.Contains(t, out, "tier=small")
}

func TestLoggerQuietByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	a := newHeapAllocator(t, WithLogger(logger))

	a.Free(a.Alloc(16))
	assert.Empty(t, buf.String(), "trace and debug events stay below info")
}
