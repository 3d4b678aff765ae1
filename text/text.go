// Package text implements byte strings stored in a tierarena.Allocator.
//
// A String owns an allocator block and tracks how much of it is filled.
// Appending past the block's capacity moves the bytes into a block twice
// the size. The empty string owns no block at all.
package text

import (
	"fmt"

	"github.com/pavanmanishd/tierarena"
)

// String is a mutable byte string. It is not goroutine-safe.
type String struct {
	alloc *tierarena.Allocator
	buf   []byte // nil while the string owns no block
	n     int
}

// New returns an empty string with room for capacity bytes.
func New(a *tierarena.Allocator, capacity int) *String {
	s := &String{alloc: a}
	if capacity > 0 {
		s.buf = a.Alloc(capacity)
	}
	return s
}

// Dup copies src into a new string.
func Dup(a *tierarena.Allocator, src string) *String {
	s := New(a, len(src))
	s.n = copy(s.buf, src)
	return s
}

// DupBytes copies src into a new string.
func DupBytes(a *tierarena.Allocator, src []byte) *String {
	s := New(a, len(src))
	s.n = copy(s.buf, src)
	return s
}

// Sprintf formats into a new string.
func Sprintf(a *tierarena.Allocator, format string, args ...any) *String {
	s := New(a, 0)
	fmt.Fprintf(s, format, args...)
	return s
}

// Clone returns an independent copy of s in the same allocator.
func (s *String) Clone() *String {
	return DupBytes(s.alloc, s.Bytes())
}

// Write appends p. It always succeeds and implements io.Writer.
func (s *String) Write(p []byte) (int, error) {
	s.reserve(len(p))
	s.n += copy(s.buf[s.n:], p)
	return len(p), nil
}

// WriteString appends str. It always succeeds and implements io.StringWriter.
func (s *String) WriteString(str string) (int, error) {
	s.reserve(len(str))
	s.n += copy(s.buf[s.n:], str)
	return len(str), nil
}

// WriteByte appends c.
func (s *String) WriteByte(c byte) error {
	s.reserve(1)
	s.buf[s.n] = c
	s.n++
	return nil
}

// String returns a Go string copy of the contents, safe to keep after
// Destroy.
func (s *String) String() string {
	return string(s.Bytes())
}

// Bytes returns a view of the contents. The view is invalidated by the next
// growth or by Destroy.
func (s *String) Bytes() []byte {
	if s.buf == nil {
		return nil
	}
	return s.buf[:s.n:s.n]
}

// Len returns the length in bytes.
func (s *String) Len() int { return s.n }

// Cap returns the capacity of the owned block.
func (s *String) Cap() int { return len(s.buf) }

// Destroy frees the owned block. The string must not be used afterwards.
func (s *String) Destroy() {
	if s.buf != nil {
		s.alloc.Free(s.buf)
	}
	s.buf = nil
	s.n = 0
}

func (s *String) reserve(extra int) {
	need := s.n + extra
	if need <= len(s.buf) {
		return
	}
	size := max(len(s.buf)*2, need)
	if s.buf == nil {
		s.buf = s.alloc.Alloc(size)
		return
	}
	s.buf = s.alloc.Realloc(s.buf, size)
}
