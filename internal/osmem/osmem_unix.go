//go:build unix

package osmem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Anon maps private anonymous memory. Pages are only committed when touched,
// so a large chunk costs address space rather than resident memory.
type Anon struct{}

// Map creates a read-write anonymous mapping of size bytes.
func (Anon) Map(size int) ([]byte, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	prot := unix.PROT_READ | unix.PROT_WRITE
	flags := unix.MAP_ANON | unix.MAP_PRIVATE | mapNoReserve

	data, err := unix.Mmap(-1, 0, size, prot, flags)
	if err != nil {
		return nil, fmt.Errorf("osmem: mmap %d bytes: %w", size, err)
	}
	return data, nil
}

// Unmap releases a mapping previously returned by Map.
func (Anon) Unmap(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if err := unix.Munmap(b); err != nil {
		if err == unix.EINVAL {
			return ErrForeign
		}
		return fmt.Errorf("osmem: munmap: %w", err)
	}
	return nil
}

func defaultSource() Source { return Anon{} }
