package memvfs

import (
	"encoding/binary"
	"math/bits"
)

// dbHeaderPageSizeOffset locates the 2-byte big-endian page size field
// inside a database file's first dbHeaderSize-byte header: a stored
// value of 1 denotes 65536, since the field is only 16 bits wide.
const (
	dbHeaderPageSizeOffset = 16
	dbHeaderSize           = 100
)

const (
	walHeaderSize           = 32
	walHeaderPageSizeOffset = 8
	walHeaderChecksumOffset = 24
	walMagicLittleEndian    = 0x377f0682
	walMagicBigEndian       = 0x377f0683
)

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

// decodeDBPageSize reads the big-endian page-size field at bytes [16,18)
// of a database header. A stored value of 1 denotes 65536; any other
// value must already be a power of two in [512, 32768] to be legal.
func decodeDBPageSize(header []byte) (int, error) {
	if len(header) < dbHeaderPageSizeOffset+2 {
		return 0, wrapError(CodeIOErr, nil, "header too short to decode page size")
	}
	raw := binary.BigEndian.Uint16(header[dbHeaderPageSizeOffset:])
	if raw == 1 {
		return 65536, nil
	}
	n := int(raw)
	if n < minPageSize || n > 32768 || !isPowerOfTwo(n) {
		return 0, wrapError(CodeCorrupt, nil, "invalid database page size encoding")
	}
	return n, nil
}

// encodeDBPageSize writes n, big-endian, into bytes [16,18) of header,
// using the 1-means-65536 escape for the one size that doesn't fit in 16
// bits.
func encodeDBPageSize(header []byte, n int) {
	v := uint16(n)
	if n == 65536 {
		v = 1
	}
	binary.BigEndian.PutUint16(header[dbHeaderPageSizeOffset:], v)
}

const (
	minPageSize = 512
	maxPageSize = 65536
)

func validPageSize(n int) bool {
	return n >= minPageSize && n <= maxPageSize && isPowerOfTwo(n)
}

// decodeWalPageSize reads the big-endian page-size field at bytes [8,12)
// of a WAL header; unlike the database header this field is a full 32
// bits wide, so no escape value is needed.
func decodeWalPageSize(header []byte) int {
	return int(binary.BigEndian.Uint32(header[walHeaderPageSizeOffset:]))
}

func encodeWalPageSize(header []byte, n int) {
	binary.BigEndian.PutUint32(header[walHeaderPageSizeOffset:], uint32(n))
}

// walChecksum folds data (a multiple of 8 bytes) into the running
// Fletcher-like accumulators s1/s2, reading 32-bit words little-endian
// when native is true, or byte-swapped (big-endian) otherwise. This is the same
// two-accumulator scheme SQLite itself uses to checksum WAL headers and
// frame headers.
func walChecksum(native bool, s1, s2 uint32, data []byte) (uint32, uint32) {
	for i := 0; i+8 <= len(data); i += 8 {
		var w0, w1 uint32
		if native {
			w0 = binary.LittleEndian.Uint32(data[i:])
			w1 = binary.LittleEndian.Uint32(data[i+4:])
		} else {
			w0 = bits.ReverseBytes32(binary.LittleEndian.Uint32(data[i:]))
			w1 = bits.ReverseBytes32(binary.LittleEndian.Uint32(data[i+4:]))
		}
		s1 += w0 + s2
		s2 += w1 + s1
	}
	return s1, s2
}

// walMagicFor returns the magic value whose LSB encodes the requested
// byte order: native (little-endian) checksums use the even magic,
// byte-swapped (big-endian) ones the odd magic (mirroring SQLite's own
// convention).
func walMagicFor(native bool) uint32 {
	if native {
		return walMagicLittleEndian
	}
	return walMagicBigEndian
}

func nativeFromMagic(magic uint32) bool {
	return magic&1 == 0
}

// resetWalHeader rewrites header in place to start a fresh WAL generation
// for the given page size: checkpoint sequence and salt1 increment, salt2
// is replaced by randomness, and the checksum over the first 24 bytes is
// recomputed.
func resetWalHeader(header *[walHeaderSize]byte, pageSize int, randomSalt2 uint32) {
	native := true
	binary.BigEndian.PutUint32(header[0:], walMagicFor(native))
	encodeWalPageSize(header[:], pageSize)

	seq := binary.BigEndian.Uint32(header[12:16])
	binary.BigEndian.PutUint32(header[12:16], seq+1)

	salt1 := binary.BigEndian.Uint32(header[16:20])
	binary.BigEndian.PutUint32(header[16:20], salt1+1)

	binary.BigEndian.PutUint32(header[20:24], randomSalt2)

	s1, s2 := walChecksum(native, 0, 0, header[:24])
	binary.BigEndian.PutUint32(header[24:28], s1)
	binary.BigEndian.PutUint32(header[28:32], s2)
}
