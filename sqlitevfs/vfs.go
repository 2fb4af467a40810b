// Package sqlitevfs adapts a memvfs.Backend to github.com/ncruces/go-sqlite3/vfs,
// the narrowest possible bridge between the in-memory registry and a real
// embedded SQLite engine. It does no I/O of its own: every method here
// either translates a vfs call into a Backend call, or translates a
// Backend error into the sqlite3 error code the engine expects back.
package sqlitevfs

import (
	"github.com/ncruces/go-sqlite3"
	"github.com/ncruces/go-sqlite3/vfs"

	"memvfs"
)

// VFS implements vfs.VFS over a single memvfs.Backend.
type VFS struct {
	backend *memvfs.Backend
}

// New wraps backend for registration with vfs.Register.
func New(backend *memvfs.Backend) *VFS {
	return &VFS{backend: backend}
}

func toBackendFlags(flags vfs.OpenFlag) memvfs.OpenFlag {
	var out memvfs.OpenFlag
	if flags&vfs.OPEN_READONLY != 0 {
		out |= memvfs.OpenReadOnly
	}
	if flags&vfs.OPEN_READWRITE != 0 {
		out |= memvfs.OpenReadWrite
	}
	if flags&vfs.OPEN_CREATE != 0 {
		out |= memvfs.OpenCreate
	}
	if flags&vfs.OPEN_EXCLUSIVE != 0 {
		out |= memvfs.OpenExclusive
	}
	if flags&vfs.OPEN_DELETEONCLOSE != 0 {
		out |= memvfs.OpenDeleteOnClose
	}
	if flags&vfs.OPEN_MAIN_DB != 0 {
		out |= memvfs.OpenMainDB
	}
	if flags&vfs.OPEN_MAIN_JOURNAL != 0 {
		out |= memvfs.OpenMainJournal
	}
	if flags&vfs.OPEN_WAL != 0 {
		out |= memvfs.OpenWAL
	}
	return out
}

// Open implements vfs.VFS.
func (v *VFS) Open(name string, flags vfs.OpenFlag) (vfs.File, vfs.OpenFlag, error) {
	h, err := v.backend.Open(name, toBackendFlags(flags))
	if err != nil {
		return nil, flags, translateError(err)
	}
	return &file{handle: h}, flags | vfs.OPEN_MEMORY, nil
}

// Delete implements vfs.VFS.
func (v *VFS) Delete(name string, dirSync bool) error {
	if err := v.backend.Delete(name); err != nil {
		return translateError(err)
	}
	return nil
}

// Access implements vfs.VFS.
func (v *VFS) Access(name string, flag vfs.AccessFlag) (bool, error) {
	return v.backend.Access(name), nil
}

// FullPathname implements vfs.VFS.
func (v *VFS) FullPathname(name string) (string, error) {
	return v.backend.FullPathname(name), nil
}

// file implements vfs.File, plus the optional shared-memory and pragma
// extension points the package's naming convention suggests (it drops the
// "x" prefix from the underlying C VFS method names the same way Open,
// Close, and Lock already do above).
type file struct {
	handle *memvfs.FileHandle
}

func (f *file) Close() error { return translateError(f.handle.Close()) }

func (f *file) ReadAt(p []byte, off int64) (int, error) {
	err := f.handle.ReadAt(p, off)
	if err == nil {
		return len(p), nil
	}
	if code, ok := memvfs.CodeOf(err); ok && code == memvfs.CodeIOErrShortRead {
		return len(p), nil // buffer already zero-filled by handle.ReadAt
	}
	return 0, translateError(err)
}

func (f *file) WriteAt(p []byte, off int64) (int, error) {
	if err := f.handle.WriteAt(p, off); err != nil {
		return 0, translateError(err)
	}
	return len(p), nil
}

func (f *file) Truncate(size int64) error {
	return translateError(f.handle.Truncate(size))
}

func (f *file) Sync(flag vfs.SyncFlag) error {
	return translateError(f.handle.Sync())
}

func (f *file) Size() (int64, error) {
	n, err := f.handle.Size()
	return n, translateError(err)
}

func (f *file) Lock(lock vfs.LockLevel) error {
	return translateError(f.handle.Lock(int(lock)))
}

func (f *file) Unlock(lock vfs.LockLevel) error {
	return translateError(f.handle.Unlock(int(lock)))
}

func (f *file) CheckReservedLock() (bool, error) {
	ok, err := f.handle.CheckReservedLock()
	return ok, translateError(err)
}

func (f *file) SectorSize() int { return f.handle.SectorSize() }

func (f *file) DeviceCharacteristics() vfs.DeviceCharacteristic {
	return vfs.DeviceCharacteristic(f.handle.DeviceCharacteristics())
}

// Pragma implements the engine's pragma-interception extension point.
// An empty return with a nil error is this package's way of saying "not
// specially handled, let the engine do its own thing".
func (f *file) Pragma(name, value string) (string, error) {
	err := f.handle.FileControl(name, value)
	if err == memvfs.ErrPragmaNotHandled {
		return "", nil
	}
	return "", translateError(err)
}

// ShmMap, ShmLock, ShmUnmap, and ShmBarrier implement the shared-memory
// extension point WAL mode needs, forwarding directly to the Backend's
// region table and 16-slot lock table.
func (f *file) ShmMap(index, size int, extend bool) ([]byte, error) {
	p, err := f.handle.ShmMap(index, size, extend)
	return p, translateError(err)
}

func (f *file) ShmLock(offset, n int, flags vfs.ShmFlag) error {
	mode := memvfs.LockShared
	if flags&vfs.SHM_EXCLUSIVE != 0 {
		mode = memvfs.LockExclusive
	}
	dir := memvfs.LockAcquire
	if flags&vfs.SHM_UNLOCK != 0 {
		dir = memvfs.LockRelease
	}
	return translateError(f.handle.ShmLock(offset, n, mode, dir))
}

func (f *file) ShmUnmap(delete bool) { f.handle.ShmUnmap(delete) }

func (f *file) ShmBarrier() { f.handle.ShmBarrier() }

// translateError maps a memvfs.Code onto the sqlite3 error code the engine
// expects back from a VFS call.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	code, ok := memvfs.CodeOf(err)
	if !ok {
		return sqlite3.IOERR
	}
	switch code {
	case memvfs.CodeNotFound:
		return sqlite3.CANTOPEN
	case memvfs.CodeCannotOpen:
		return sqlite3.CANTOPEN
	case memvfs.CodeBusy:
		return sqlite3.BUSY
	case memvfs.CodeCorrupt:
		return sqlite3.CORRUPT
	case memvfs.CodeIOErrShortRead:
		return sqlite3.IOERR_SHORT_READ
	case memvfs.CodeIOErrFsync:
		return sqlite3.IOERR_FSYNC
	case memvfs.CodeProtocol:
		return sqlite3.PROTOCOL
	case memvfs.CodeNoMemory:
		return sqlite3.NOMEM
	default:
		return sqlite3.IOERR
	}
}
