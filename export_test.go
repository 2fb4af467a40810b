package memvfs

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDatabaseSnapshot(pageCount, pageSize int) []byte {
	buf := make([]byte, pageCount*pageSize)
	encodeDBPageSize(buf, pageSize)
	for i := 0; i < pageCount; i++ {
		buf[i*pageSize] = byte(i + 1)
	}
	return buf
}

func TestImportExportDatabaseRoundTrip(t *testing.T) {
	b := NewBackend(nil)
	snapshot := buildDatabaseSnapshot(3, 4096)

	require.NoError(t, b.Import("round.db", snapshot))

	out, err := b.Export("round.db")
	require.NoError(t, err)
	assert.Equal(t, snapshot, out)

	n, ok := b.PageSizeOf("round.db")
	require.True(t, ok)
	assert.Equal(t, 4096, n)
}

func TestImportDatabaseRejectsMisalignedLength(t *testing.T) {
	b := NewBackend(nil)
	snapshot := buildDatabaseSnapshot(1, 4096)
	snapshot = append(snapshot, 0x01) // one stray byte

	err := b.Import("round.db", snapshot)
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeCorrupt, code)
}

func TestImportExportWalRoundTrip(t *testing.T) {
	b := NewBackend(nil)
	require.NoError(t, b.Import("round.db", buildDatabaseSnapshot(1, 4096)))

	var header [32]byte
	resetWalHeader(&header, 4096, 7)

	frame := make([]byte, walFrameHeaderSize+4096)
	binary.BigEndian.PutUint32(frame[0:4], 1)
	for i := walFrameHeaderSize; i < len(frame); i++ {
		frame[i] = byte(i)
	}

	snapshot := append(append([]byte{}, header[:]...), frame...)
	require.NoError(t, b.Import("round.db-wal", snapshot))

	out, err := b.Export("round.db-wal")
	require.NoError(t, err)
	assert.Equal(t, snapshot, out)
}

func TestExportMissingFileFails(t *testing.T) {
	b := NewBackend(nil)
	_, err := b.Export("nope.db")
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, code)
}

func TestExportImportCompressedRoundTrip(t *testing.T) {
	b := NewBackend(nil)
	snapshot := buildDatabaseSnapshot(2, 4096)
	require.NoError(t, b.Import("c.db", snapshot))

	for _, algo := range []CompressAlgorithm{CompressNone, CompressSnappy, CompressLZ4} {
		compressed, gotAlgo, err := b.ExportCompressed("c.db", algo)
		require.NoError(t, err)
		assert.Equal(t, algo, gotAlgo)

		require.NoError(t, b.ImportCompressed("c2.db", algo, compressed))
		out, err := b.Export("c2.db")
		require.NoError(t, err)
		assert.Equal(t, snapshot, out)
	}
}
