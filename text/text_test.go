package text

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/tierarena"
)

var (
	_ io.Writer       = (*String)(nil)
	_ io.StringWriter = (*String)(nil)
	_ io.ByteWriter   = (*String)(nil)
	_ fmt.Stringer    = (*String)(nil)
)

func newAllocator(t *testing.T) *tierarena.Allocator {
	t.Helper()
	a := tierarena.New(tierarena.WithHeapChunks())
	t.Cleanup(a.Destroy)
	return a
}

func TestDup(t *testing.T) {
	a := newAllocator(t)

	s := Dup(a, "hello, world")
	defer s.Destroy()

	assert.Equal(t, "hello, world", s.String())
	assert.Equal(t, 12, s.Len())
	assert.True(t, a.Contains(s.Bytes()))

	b := DupBytes(a, []byte{'x', 0, 'y'})
	defer b.Destroy()
	assert.Equal(t, []byte{'x', 0, 'y'}, b.Bytes())
}

func TestEmptyStringOwnsNothing(t *testing.T) {
	a := newAllocator(t)

	for _, s := range []*String{New(a, 0), Dup(a, ""), DupBytes(a, nil), Sprintf(a, "")} {
		assert.Zero(t, s.Len())
		assert.Zero(t, s.Cap())
		assert.Nil(t, s.Bytes())
		assert.Empty(t, s.String())
		s.Destroy()
	}
	assert.Zero(t, a.Metrics().NumChunks, "no chunk was ever needed")
}

func TestSprintf(t *testing.T) {
	a := newAllocator(t)

	s := Sprintf(a, "%s=%d (%.1f%%)", "chunks", 3, 12.5)
	defer s.Destroy()
	assert.Equal(t, "chunks=3 (12.5%)", s.String())
}

func TestAppendGrowth(t *testing.T) {
	a := newAllocator(t)

	s := New(a, 4)
	_, err := s.WriteString("abcd")
	require.NoError(t, err)
	assert.Equal(t, 4, s.Cap())

	require.NoError(t, s.WriteByte('e'))
	assert.Equal(t, 8, s.Cap(), "capacity doubles")

	_, err = s.Write([]byte("fghijklmnop"))
	require.NoError(t, err)
	assert.Equal(t, 16, s.Cap(), "growth covers the whole write")
	assert.Equal(t, "abcdefghijklmnop", s.String())

	s.Destroy()
	assert.Zero(t, a.Metrics().SizeInUse)
}

func TestClone(t *testing.T) {
	a := newAllocator(t)

	s := Dup(a, "original")
	c := s.Clone()
	defer c.Destroy()

	s.Bytes()[0] = 'O'
	assert.Equal(t, "Original", s.String())
	assert.Equal(t, "original", c.String())

	kept := s.String()
	s.Destroy()
	assert.Equal(t, "Original", kept, "String copies out of chunk memory")
}
