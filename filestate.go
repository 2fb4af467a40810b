package memvfs

import "strings"

// walSuffix is appended to a database's name to derive its WAL's name,
// and stripped to go the other way. The pairing is always recomputed by
// name lookup against the Backend's registry rather than stored as a raw
// pointer, so a WalState can come and go independently of its database.
const walSuffix = "-wal"

type fileKind int

const (
	kindDatabase fileKind = iota
	kindJournal
	kindWal
)

// fileState is the common shape shared by DatabaseState, JournalState and
// WalState: a name and a handle refcount. The registry (Backend) decides
// when a zero refcount means "destroy".
type fileState interface {
	name() string
	kind() fileKind
	refs() int
	addRef()
	dropRef() int
}

// DatabaseState is the paged store backing a main database file, plus the
// shared-memory region/lock table the engine mmaps against it.
type DatabaseState struct {
	fname   string
	store   *pageStore
	shm     *sharedMemory
	walName string // weak reference: the paired WAL's name, resolved by lookup
	refc    int
}

func newDatabaseState(name string) *DatabaseState {
	return &DatabaseState{
		fname:   name,
		store:   newPageStore(false),
		shm:     newSharedMemory(),
		walName: walNameForDatabase(name),
	}
}

func (d *DatabaseState) name() string   { return d.fname }
func (d *DatabaseState) kind() fileKind { return kindDatabase }
func (d *DatabaseState) refs() int      { return d.refc }
func (d *DatabaseState) addRef()        { d.refc++ }
func (d *DatabaseState) dropRef() int {
	if d.refc > 0 {
		d.refc--
	}
	if d.refc == 0 {
		d.shm.reset()
	}
	return d.refc
}

func (d *DatabaseState) pageSize() int { return d.store.pageSize }

// WalState is the paged store backing a write-ahead log file: one fixed
// 32-byte header buffer followed by a dense vector of frames, each page
// additionally carrying its 24-byte frame header.
type WalState struct {
	fname  string
	store  *pageStore
	header [32]byte
	hdrSet bool
	refc   int
}

func newWalState(name string, pageSize int) *WalState {
	s := &WalState{fname: name, store: newPageStore(true)}
	s.store.setPageSize(pageSize)
	return s
}

func (w *WalState) name() string   { return w.fname }
func (w *WalState) kind() fileKind { return kindWal }
func (w *WalState) refs() int      { return w.refc }
func (w *WalState) addRef()        { w.refc++ }
func (w *WalState) dropRef() int {
	if w.refc > 0 {
		w.refc--
	}
	return w.refc
}

// JournalState is a name-only placeholder: the SQL engine still opens a
// rollback journal even when WAL mode is enforced, but all reads/writes
// against it are no-ops.
type JournalState struct {
	fname string
	refc  int
}

func newJournalState(name string) *JournalState {
	return &JournalState{fname: name}
}

func (j *JournalState) name() string   { return j.fname }
func (j *JournalState) kind() fileKind { return kindJournal }
func (j *JournalState) refs() int      { return j.refc }
func (j *JournalState) addRef()        { j.refc++ }
func (j *JournalState) dropRef() int {
	if j.refc > 0 {
		j.refc--
	}
	return j.refc
}

// databaseNameForWal strips walSuffix from a WAL's name to derive the
// paired database's name. Ok reports whether name actually carried the
// suffix.
func databaseNameForWal(name string) (string, bool) {
	if !strings.HasSuffix(name, walSuffix) {
		return "", false
	}
	return strings.TrimSuffix(name, walSuffix), true
}

func walNameForDatabase(name string) string {
	return name + walSuffix
}
