package memvfs

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// ErrPragmaNotHandled is returned by FileControl for every pragma,
// handled or not: per §4.6/§6, the engine is expected to apply its own
// handling in addition to whatever this backend just did, so the
// "not-found" signal is returned unconditionally rather than only on
// genuinely unknown pragmas.
var ErrPragmaNotHandled = errors.New("memvfs: pragma not specially handled")

// LockDir distinguishes acquiring from releasing a shared-memory
// byte-range lock (§4.3).
type LockDir int

const (
	LockAcquire LockDir = iota
	LockRelease
)

// FileHandle is what Backend.Open returns: one open reference against a
// FileState (or, for a temp file, a direct passthrough to the host file
// system).
type FileHandle struct {
	backend *Backend
	fname   string
	flags   OpenFlag
	state   fileState

	temp *os.File
}

func (b *Backend) openTemp(flags OpenFlag) (*FileHandle, error) {
	f, err := os.CreateTemp("", "memvfs-tmp-*")
	if err != nil {
		return nil, b.failWrap(CodeCannotOpen, err, "temp file passthrough")
	}
	return &FileHandle{backend: b, flags: flags | OpenDeleteOnClose, temp: f}, nil
}

func (h *FileHandle) closeTemp() error {
	name := h.temp.Name()
	err := h.temp.Close()
	if hasFlag(h.flags, OpenDeleteOnClose) {
		_ = os.Remove(name)
	}
	if err != nil {
		return wrapError(CodeIOErr, err, "temp file close")
	}
	return nil
}

// Close releases this handle through the owning Backend.
func (h *FileHandle) Close() error { return h.backend.Close(h) }

// ReadAt implements the upward xRead operation: it dispatches on the
// FileState variant per §4.4.
func (h *FileHandle) ReadAt(buf []byte, offset int64) error {
	if h.temp != nil {
		n, err := h.temp.ReadAt(buf, offset)
		if err != nil && n < len(buf) {
			for i := n; i < len(buf); i++ {
				buf[i] = 0
			}
		}
		if err != nil {
			return wrapError(CodeIOErr, err, "temp file read")
		}
		return nil
	}

	switch st := h.state.(type) {
	case *DatabaseState:
		return readDatabase(st, buf, offset)
	case *WalState:
		return readWal(h.backend, st, buf, offset)
	case *JournalState:
		return wrapError(CodeIOErr, nil, "journal files are not expected to be read")
	default:
		return wrapError(CodeIOErr, nil, "unknown file state")
	}
}

// WriteAt implements the upward xWrite operation, per §4.5.
func (h *FileHandle) WriteAt(buf []byte, offset int64) error {
	if h.temp != nil {
		_, err := h.temp.WriteAt(buf, offset)
		if err != nil {
			return wrapError(CodeIOErr, err, "temp file write")
		}
		return nil
	}

	switch st := h.state.(type) {
	case *DatabaseState:
		return writeDatabase(st, buf, offset)
	case *WalState:
		return writeWal(h.backend, st, buf, offset)
	case *JournalState:
		return nil // journal writes are silently accepted no-ops
	default:
		return wrapError(CodeIOErr, nil, "unknown file state")
	}
}

// Truncate implements the upward xTruncate operation.
func (h *FileHandle) Truncate(size int64) error {
	if h.temp != nil {
		if err := h.temp.Truncate(size); err != nil {
			return wrapError(CodeIOErr, err, "temp file truncate")
		}
		return nil
	}

	switch st := h.state.(type) {
	case *DatabaseState:
		if size == 0 {
			st.store.pages = nil
			return nil
		}
		if st.store.pageSize == 0 || size%int64(st.store.pageSize) != 0 {
			return wrapError(CodeIOErr, nil, "truncate size not a multiple of the page size")
		}
		return st.store.truncate(int(size / int64(st.store.pageSize)))
	case *WalState:
		if size != 0 {
			return newError(CodeProtocol, "non-zero truncate on a WAL")
		}
		st.header = [32]byte{}
		st.hdrSet = false
		return st.store.truncate(0)
	case *JournalState:
		return nil
	default:
		return wrapError(CodeIOErr, nil, "unknown file state")
	}
}

// Size implements the upward xFileSize operation, per §4.6.
func (h *FileHandle) Size() (int64, error) {
	if h.temp != nil {
		info, err := h.temp.Stat()
		if err != nil {
			return 0, wrapError(CodeIOErr, err, "temp file stat")
		}
		return info.Size(), nil
	}

	switch st := h.state.(type) {
	case *DatabaseState:
		return int64(st.store.count()) * int64(st.store.pageSize), nil
	case *WalState:
		if !st.headerSet() && st.store.count() == 0 {
			return 0, nil
		}
		return int64(walHeaderSize) + int64(st.store.count())*int64(walFrameHeaderSize+st.store.pageSize), nil
	case *JournalState:
		return 0, nil
	default:
		return 0, wrapError(CodeIOErr, nil, "unknown file state")
	}
}

// Lock implements the upward xLock operation: ordinary file-range locks
// are accepted unconditionally since this is a single-process simulation
// (§4.6); the 16-slot shared-memory lock table (§4.3) is a distinct
// mechanism, reached through ShmLock.
func (h *FileHandle) Lock(level int) error { return nil }

// Unlock implements the upward xUnlock operation; see Lock.
func (h *FileHandle) Unlock(level int) error { return nil }

// CheckReservedLock implements xCheckReservedLock: always reports held,
// since rollback-journal mode is effectively unused once WAL mode is
// enforced.
func (h *FileHandle) CheckReservedLock() (bool, error) { return true, nil }

// Sync implements xSync: this backend claims no durability, so every
// sync request fails.
func (h *FileHandle) Sync() error {
	return newError(CodeIOErrFsync, "memvfs claims no durability; sync always fails")
}

// SectorSize implements xSectorSize.
func (h *FileHandle) SectorSize() int { return 0 }

// DeviceCharacteristics implements xDeviceCharacteristics.
func (h *FileHandle) DeviceCharacteristics() int { return 0 }

// FileControl implements xFileControl's pragma interception (§4.6). It
// returns the bare ErrPragmaNotHandled sentinel so the engine layers its
// own handling on top, except in two cases that return an error instead:
// journal_mode requesting something other than "wal" (an outright
// refusal), and a valid page_size that differs from one already set on a
// database.
func (h *FileHandle) FileControl(pragma, value string) error {
	switch pragma {
	case "page_size":
		n, err := strconv.Atoi(value)
		if err == nil && validPageSize(n) {
			if db, ok := h.state.(*DatabaseState); ok {
				if db.store.pageSize != 0 && db.store.pageSize != n {
					return wrapError(CodeIOErr, nil, "page_size already negotiated")
				}
				db.store.setPageSize(n)
			}
		}
		return ErrPragmaNotHandled

	case "journal_mode":
		if value != "wal" {
			return wrapError(CodeIOErr, nil, "only wal journal mode is accepted: "+value)
		}
		return ErrPragmaNotHandled

	default:
		return ErrPragmaNotHandled
	}
}

// ShmMap implements the shared-memory xShmMap callback, per §4.2. It is
// only meaningful against a database handle: the -shm region belongs to
// the database connection, never to its WAL or journal.
func (h *FileHandle) ShmMap(index, size int, extend bool) ([]byte, error) {
	db, ok := h.state.(*DatabaseState)
	if !ok {
		return nil, wrapError(CodeIOErr, nil, "shared memory is only valid on a database handle")
	}
	region, mapped, err := db.shm.mapRegion(index, size, extend)
	if err != nil {
		return nil, err
	}
	if !mapped {
		return nil, nil
	}
	return region, nil
}

// ShmLock implements the shared-memory xShmLock callback against the
// 16-slot byte-range lock table (§4.3).
func (h *FileHandle) ShmLock(offset, n int, mode LockMode, dir LockDir) error {
	db, ok := h.state.(*DatabaseState)
	if !ok {
		return wrapError(CodeIOErr, nil, "shared memory is only valid on a database handle")
	}
	if dir == LockRelease {
		return db.shm.locks.Release(offset, n, mode)
	}
	err := db.shm.locks.Acquire(offset, n, mode)
	if code, ok := CodeOf(err); ok && code == CodeBusy {
		h.backend.noteLockContention()
		h.backend.log.WithField("name", h.fname).Debug("memvfs: shared-memory lock contention")
	}
	return err
}

// ShmBarrier implements the shared-memory xShmBarrier callback. It is a
// no-op: this package has no internal concurrency of its own to fence
// against (§5).
func (h *FileHandle) ShmBarrier() {}

// ShmUnmap implements the shared-memory xShmUnmap callback; regions are
// only actually released when the owning database's refcount reaches
// zero (see (*sharedMemory).reset), so this too is a no-op.
func (h *FileHandle) ShmUnmap(deleteRegions bool) {}

func (s *WalState) headerSet() bool {
	return s.hdrSet
}
