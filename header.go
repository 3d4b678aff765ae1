package tierarena

import "encoding/binary"

// header is the 64-bit word stored in front of every block payload:
//
//	bits  0..7   magic
//	bits  8..46  payload size in bytes (header excluded)
//	bit   47     in use
//	bits 48..63  reserved, zero
type header uint64

const (
	headerSize = 8

	headerMagic = 0xA7

	magicBits = 8
	sizeBits  = 39

	sizeShift  = magicBits
	inUseShift = magicBits + sizeBits

	magicMask = 1<<magicBits - 1
	sizeMask  = 1<<sizeBits - 1
	inUseBit  = header(1) << inUseShift

	// maxHeaderSize is the largest payload the size field can describe.
	maxHeaderSize = sizeMask
)

// encodeHeader builds a free header for a payload of size bytes.
// Callers validate size against maxHeaderSize first.
func encodeHeader(size int) header {
	return header(headerMagic) | header(uint64(size)&sizeMask)<<sizeShift
}

func (h header) magic() uint8 { return uint8(h & magicMask) }

func (h header) size() int { return int(uint64(h>>sizeShift) & sizeMask) }

func (h header) inUse() bool { return h&inUseBit != 0 }

func (h header) withInUse() header { return h | inUseBit }

func (h header) withoutInUse() header { return h &^ inUseBit }

func (h header) valid() bool { return h.magic() == headerMagic }

func readHeader(b []byte) header { return header(binary.LittleEndian.Uint64(b)) }

func writeHeader(b []byte, h header) { binary.LittleEndian.PutUint64(b, uint64(h)) }
