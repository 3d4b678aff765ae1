package tierarena

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// WriteRepr writes a human-readable tree of every arena, chunk and block.
// The format is meant for debugging and may change at any time.
func (a *Allocator) WriteRepr(w io.Writer) error {
	a.live("repr")
	rw := &reprWriter{w: w}
	var corrupt error
	m := a.Metrics()
	rw.printf("Allocator chunks=%d capacity=%s in_use=%s\n",
		m.NumChunks, humanize.IBytes(uint64(m.Capacity)), humanize.IBytes(uint64(m.SizeInUse)))

	for i := range a.arenas {
		ar := &a.arenas[i]
		rw.printf("  Arena %s max_alloc=%s chunk_size=%s chunks=%d\n",
			ar.tier, humanize.IBytes(uint64(ar.maxAlloc)), humanize.IBytes(uint64(ar.chunkSize)), ar.nchunks)
		for c := ar.begin; c != nil; c = c.next {
			rw.printf("    Chunk %d @%#x used=%d total=%d (%s)\n",
				c.index, c.base, c.used, c.total(), humanize.IBytes(uint64(c.total())))
			err := c.walk(func(off int, h header) bool {
				rw.printf("      Block +%d @%#x size=%d in_use=%t\n",
					off, c.base+uintptr(off+headerSize), h.size(), h.inUse())
				return rw.err == nil
			})
			if err != nil {
				rw.printf("      <%v>\n", err)
				if corrupt == nil {
					corrupt = err
				}
			}
		}
	}
	if rw.err != nil {
		return rw.err
	}
	return corrupt
}

// reprWriter remembers the first write error and drops later output.
type reprWriter struct {
	w   io.Writer
	err error
}

func (rw *reprWriter) printf(format string, args ...any) {
	if rw.err != nil {
		return
	}
	_, rw.err = fmt.Fprintf(rw.w, format, args...)
}
