package memvfs

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBPageSizeRoundTrip(t *testing.T) {
	cases := []int{512, 1024, 4096, 32768, 65536}
	for _, n := range cases {
		header := make([]byte, dbHeaderSize)
		encodeDBPageSize(header, n)
		got, err := decodeDBPageSize(header)
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}

func TestDBPageSize65536UsesEscapeValue(t *testing.T) {
	header := make([]byte, dbHeaderSize)
	encodeDBPageSize(header, 65536)
	assert.Equal(t, uint16(1), binary.BigEndian.Uint16(header[dbHeaderPageSizeOffset:]))
}

func TestDecodeDBPageSizeRejectsNonPowerOfTwo(t *testing.T) {
	header := make([]byte, dbHeaderSize)
	binary.BigEndian.PutUint16(header[dbHeaderPageSizeOffset:], 600)
	_, err := decodeDBPageSize(header)
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeCorrupt, code)
}

func TestWalPageSizeRoundTrip(t *testing.T) {
	header := make([]byte, walHeaderSize)
	encodeWalPageSize(header, 65536)
	assert.Equal(t, 65536, decodeWalPageSize(header))
}

func TestValidPageSize(t *testing.T) {
	assert.True(t, validPageSize(512))
	assert.True(t, validPageSize(65536))
	assert.False(t, validPageSize(511))
	assert.False(t, validPageSize(65537))
	assert.False(t, validPageSize(600))
}

func TestWalMagicRoundTrip(t *testing.T) {
	assert.True(t, nativeFromMagic(walMagicFor(true)))
	assert.False(t, nativeFromMagic(walMagicFor(false)))
}

func TestResetWalHeaderIncrementsSaltAndSeq(t *testing.T) {
	var header [32]byte
	resetWalHeader(&header, 4096, 0xAABBCCDD)

	assert.Equal(t, 4096, decodeWalPageSize(header[:]))
	seq := binary.BigEndian.Uint32(header[12:16])
	assert.Equal(t, uint32(1), seq)
	salt1 := binary.BigEndian.Uint32(header[16:20])
	assert.Equal(t, uint32(1), salt1)
	salt2 := binary.BigEndian.Uint32(header[20:24])
	assert.Equal(t, uint32(0xAABBCCDD), salt2)

	resetWalHeader(&header, 4096, 0x11223344)
	assert.Equal(t, uint32(2), binary.BigEndian.Uint32(header[12:16]))
	assert.Equal(t, uint32(2), binary.BigEndian.Uint32(header[16:20]))
}

func TestWalChecksumDeterministic(t *testing.T) {
	data := make([]byte, 24)
	for i := range data {
		data[i] = byte(i)
	}
	s1a, s2a := walChecksum(true, 0, 0, data)
	s1b, s2b := walChecksum(true, 0, 0, data)
	assert.Equal(t, s1a, s1b)
	assert.Equal(t, s2a, s2b)

	s1c, _ := walChecksum(false, 0, 0, data)
	assert.NotEqual(t, s1a, s1c)
}
