package tierarena

import (
	"errors"
	"fmt"
	"unsafe"
)

// alignment is the platform pointer size. Block sizes are rounded to it, and
// since headers are a multiple of it every payload starts aligned.
const alignment = int(unsafe.Sizeof(uintptr(0)))

// alignSize rounds n up to the pointer alignment.
func alignSize(n int) int {
	const mask = alignment - 1
	return (n + mask) &^ mask
}

// addrOf returns the address of the first element backing b, or 0 for a nil
// slice.
func addrOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// chunk is one system buffer holding a packed run of blocks.
type chunk struct {
	buf   []byte  // backing memory, len == bytes_total
	base  uintptr // address of buf[0]
	used  int     // high-water mark, headers included
	next  *chunk
	index int
}

// newChunk maps a buffer of at least capacity bytes. Sources hand out
// zero-filled memory, so the untouched region needs no clearing here.
func newChunk(mem MemorySource, capacity int) (*chunk, error) {
	total := alignSize(capacity)
	buf, err := mem.Map(total)
	if err != nil {
		return nil, err
	}
	if len(buf) < total {
		err := fmt.Errorf("short mapping: got %d bytes, want %d", len(buf), total)
		return nil, errors.Join(err, mem.Unmap(buf))
	}
	return &chunk{
		buf:  buf[:total:total],
		base: addrOf(buf),
	}, nil
}

func (c *chunk) total() int { return len(c.buf) }

// contains reports whether addr falls inside the chunk's buffer.
func (c *chunk) contains(addr uintptr) bool {
	return addr >= c.base && addr < c.base+uintptr(len(c.buf))
}

// payload returns the payload view of the block whose header is at off.
func (c *chunk) payload(off, size int) []byte {
	p := off + headerSize
	return c.buf[p : p+size : p+size]
}

// findOrCarve returns a block with room for target bytes, marking it in use.
// Free blocks are reused first-fit and never split; otherwise a new block is
// carved at the high-water mark. A nil payload with a nil error means the
// chunk is full.
func (c *chunk) findOrCarve(target int) (payload []byte, reused bool, err error) {
	for off := 0; off < c.used; {
		h, err := c.headerAt(off)
		if err != nil {
			return nil, false, err
		}
		if !h.inUse() && h.size() >= target {
			writeHeader(c.buf[off:], h.withInUse())
			return c.payload(off, h.size()), true, nil
		}
		off += headerSize + h.size()
	}

	if c.used+headerSize+target > len(c.buf) {
		return nil, false, nil
	}
	off := c.used
	writeHeader(c.buf[off:], encodeHeader(target).withInUse())
	payload = c.payload(off, target)
	clear(payload)
	c.used = off + headerSize + target
	return payload, false, nil
}

// release clears the in-use bit of the block whose payload starts at addr.
// addr must be a block boundary found by walking the layout; a pointer into
// the middle of a payload is unknown even if the bytes before it look like
// a header. Neighbouring free blocks are left as they are.
func (c *chunk) release(addr uintptr) (size int, err error) {
	p := int(addr - c.base)
	target := p - headerSize
	if target < 0 || p >= c.used || target%alignment != 0 {
		return 0, fmt.Errorf("%w: offset %d outside carved region of chunk %d (used=%d)",
			ErrUnknownPointer, p, c.index, c.used)
	}
	for off := 0; off <= target; {
		h, err := c.headerAt(off)
		if err != nil {
			return 0, err
		}
		if off == target {
			if !h.inUse() {
				return 0, fmt.Errorf("%w: chunk %d offset %d size %d", ErrDoubleFree, c.index, off, h.size())
			}
			writeHeader(c.buf[off:], h.withoutInUse())
			return h.size(), nil
		}
		off += headerSize + h.size()
	}
	return 0, fmt.Errorf("%w: offset %d of chunk %d is inside a block payload",
		ErrUnknownPointer, p, c.index)
}

// headerAt decodes and validates the header at off.
func (c *chunk) headerAt(off int) (header, error) {
	if off+headerSize > c.used {
		return 0, fmt.Errorf("%w: chunk %d header at %d overruns high-water mark %d",
			ErrCorruptHeader, c.index, off, c.used)
	}
	h := readHeader(c.buf[off:])
	if !h.valid() {
		return h, fmt.Errorf("%w: chunk %d offset %d magic %#02x", ErrCorruptHeader, c.index, off, h.magic())
	}
	if off+headerSize+h.size() > c.used {
		return h, fmt.Errorf("%w: chunk %d block at %d (size %d) overruns high-water mark %d",
			ErrCorruptHeader, c.index, off, h.size(), c.used)
	}
	return h, nil
}

// walk visits every carved block in layout order. It stops early when fn
// returns false or a header fails validation.
func (c *chunk) walk(fn func(off int, h header) bool) error {
	for off := 0; off < c.used; {
		h, err := c.headerAt(off)
		if err != nil {
			return err
		}
		if !fn(off, h) {
			return nil
		}
		off += headerSize + h.size()
	}
	return nil
}
