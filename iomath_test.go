package memvfs

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPairedDatabaseAndWal(t *testing.T) (*Backend, *DatabaseState, *WalState) {
	t.Helper()
	b := NewBackend(nil)

	dbHandle, err := b.Open("t.db", OpenCreate|OpenReadWrite|OpenMainDB)
	require.NoError(t, err)
	db := dbHandle.state.(*DatabaseState)

	walHandle, err := b.Open("t.db-wal", OpenCreate|OpenReadWrite|OpenWAL)
	require.NoError(t, err)
	wal := walHandle.state.(*WalState)

	return b, db, wal
}

func TestWriteReadDatabaseFirstPageNegotiatesPageSize(t *testing.T) {
	_, db, _ := newPairedDatabaseAndWal(t)

	header := make([]byte, 4096)
	encodeDBPageSize(header, 4096)

	require.NoError(t, writeDatabase(db, header, 0))
	assert.Equal(t, 4096, db.store.pageSize)

	buf := make([]byte, 4096)
	require.NoError(t, readDatabase(db, buf, 0))
	assert.Equal(t, header, buf)
}

func TestWriteReadDatabaseSecondPage(t *testing.T) {
	_, db, _ := newPairedDatabaseAndWal(t)

	header := make([]byte, 4096)
	encodeDBPageSize(header, 4096)
	require.NoError(t, writeDatabase(db, header, 0))

	page2 := make([]byte, 4096)
	for i := range page2 {
		page2[i] = byte(i)
	}
	require.NoError(t, writeDatabase(db, page2, 4096))

	buf := make([]byte, 4096)
	require.NoError(t, readDatabase(db, buf, 4096))
	assert.Equal(t, page2, buf)
}

func TestReadDatabaseEmptyIsShortRead(t *testing.T) {
	_, db, _ := newPairedDatabaseAndWal(t)
	db.store.setPageSize(4096)

	buf := make([]byte, 16)
	for i := range buf {
		buf[i] = 0xFF
	}
	err := readDatabase(db, buf, 0)
	assert.Equal(t, ErrShortRead, err)
	for _, b := range buf {
		assert.Equal(t, byte(0), b)
	}
}

func TestReadDatabasePastEndIsShortRead(t *testing.T) {
	_, db, _ := newPairedDatabaseAndWal(t)
	header := make([]byte, 4096)
	encodeDBPageSize(header, 4096)
	require.NoError(t, writeDatabase(db, header, 0))

	buf := make([]byte, 4096)
	err := readDatabase(db, buf, 4096*5)
	assert.Equal(t, ErrShortRead, err)
}

func TestWriteDatabaseMisalignedFails(t *testing.T) {
	_, db, _ := newPairedDatabaseAndWal(t)
	header := make([]byte, 4096)
	encodeDBPageSize(header, 4096)
	require.NoError(t, writeDatabase(db, header, 0))

	err := writeDatabase(db, make([]byte, 100), 4096)
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeIOErr, code)
}

func TestWriteReadWalHeader(t *testing.T) {
	b, db, wal := newPairedDatabaseAndWal(t)
	db.store.setPageSize(4096)

	var header [32]byte
	resetWalHeader(&header, 4096, 0xCAFEBABE)

	require.NoError(t, writeWal(b, wal, header[:], 0))
	assert.True(t, wal.hdrSet)

	buf := make([]byte, 32)
	require.NoError(t, readWal(b, wal, buf, 0))
	assert.Equal(t, header[:], buf)
}

func TestWriteReadWalFullFrame(t *testing.T) {
	b, db, wal := newPairedDatabaseAndWal(t)
	db.store.setPageSize(4096)

	var header [32]byte
	resetWalHeader(&header, 4096, 1)
	require.NoError(t, writeWal(b, wal, header[:], 0))

	frameHeader := make([]byte, walFrameHeaderSize)
	binary.BigEndian.PutUint32(frameHeader[0:4], 1)
	require.NoError(t, writeWal(b, wal, frameHeader, walHeaderSize))

	body := make([]byte, 4096)
	for i := range body {
		body[i] = byte(i % 251)
	}
	require.NoError(t, writeWal(b, wal, body, walHeaderSize+walFrameHeaderSize))

	buf := make([]byte, walFrameHeaderSize+4096)
	require.NoError(t, readWal(b, wal, buf, walHeaderSize))
	assert.Equal(t, frameHeader, buf[:walFrameHeaderSize])
	assert.Equal(t, body, buf[walFrameHeaderSize:])
}

func TestWriteWalPageBodyBeforeFrameHeaderFails(t *testing.T) {
	b, db, wal := newPairedDatabaseAndWal(t)
	db.store.setPageSize(4096)

	body := make([]byte, 4096)
	err := writeWal(b, wal, body, walHeaderSize+walFrameHeaderSize)
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeIOErr, code)
}

func TestWriteWalHeaderPageSizeMismatchIsCorrupt(t *testing.T) {
	b, db, wal := newPairedDatabaseAndWal(t)
	db.store.setPageSize(4096)

	var header [32]byte
	resetWalHeader(&header, 8192, 1)
	err := writeWal(b, wal, header[:], 0)
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeCorrupt, code)
}

func TestReadWalFrameHeaderGapIsShortRead(t *testing.T) {
	b, db, wal := newPairedDatabaseAndWal(t)
	db.store.setPageSize(4096)

	var header [32]byte
	resetWalHeader(&header, 4096, 1)
	require.NoError(t, writeWal(b, wal, header[:], 0))

	buf := make([]byte, walFrameHeaderSize)
	err := readWal(b, wal, buf, walHeaderSize)
	assert.Equal(t, ErrShortRead, err)
}
