package sqlitevfs

import (
	"testing"

	"github.com/ncruces/go-sqlite3"
	"github.com/ncruces/go-sqlite3/vfs"
	"github.com/stretchr/testify/assert"

	"memvfs"
)

func TestToBackendFlagsMapsFileTypeAndAccess(t *testing.T) {
	in := vfs.OPEN_CREATE | vfs.OPEN_READWRITE | vfs.OPEN_MAIN_DB
	out := toBackendFlags(in)
	assert.True(t, out&memvfs.OpenCreate != 0)
	assert.True(t, out&memvfs.OpenReadWrite != 0)
	assert.True(t, out&memvfs.OpenMainDB != 0)
	assert.False(t, out&memvfs.OpenWAL != 0)
}

func TestTranslateErrorMapsKnownCodes(t *testing.T) {
	b := memvfs.NewBackend(nil)
	_, err := b.Open("missing.db", memvfs.OpenReadWrite|memvfs.OpenMainDB)
	assert.Equal(t, sqlite3.CANTOPEN, translateError(err))
}

func TestTranslateErrorNilIsNil(t *testing.T) {
	assert.NoError(t, translateError(nil))
}
