package memvfs

import (
	"crypto/rand"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// CompressAlgorithm selects the codec ExportCompressed/ImportCompressed
// use to wrap a snapshot for network transport. It never changes the
// byte-exact on-disk layout export/import produce; it only wraps and
// unwraps those bytes.
type CompressAlgorithm int

const (
	CompressNone CompressAlgorithm = iota
	CompressSnappy
	CompressLZ4
)

// Options configures a Backend. The zero value is usable: it logs to
// logrus's standard logger, uses the full 16 lock slots, and leaves
// snapshot compression off.
type Options struct {
	// Logger receives registry-level events at Debug level (open,
	// delete, delete-on-close, export, import, shared-memory lock
	// contention). Never used on the page read/write hot path. Defaults
	// to logrus.StandardLogger().
	Logger *logrus.Logger

	// SnapshotCompression is stored with the Backend's options only:
	// ExportCompressed always uses the algorithm its caller passes and
	// does not consult this field.
	SnapshotCompression CompressAlgorithm
}

// Stats is a point-in-time, read-only snapshot of Backend activity
// counters. It exists purely for operator observability (health checks,
// the memvfsctl inspector) and never influences protocol outcomes.
type Stats struct {
	Opens           int64
	Closes          int64
	Deletes         int64
	LockContentions int64
	BytesExported   int64
	BytesImported   int64
}

// Backend owns the mapping from file name to FileState. It is the single
// entry point for this package: every upward VFS operation and every
// sideways replication operation goes through one Backend instance.
//
// Backend takes no internal locks: callers (typically the embedded SQL
// engine through sqlitevfs, serialized by its own mutex) are responsible
// for not calling into a single Backend from more than one goroutine at a
// time. See §5 of the design document for the full rationale.
type Backend struct {
	files   map[string]fileState
	lastErr Code
	log     *logrus.Logger
	opts    Options
	stats   Stats
}

// NewBackend constructs an empty Backend. A nil opts is equivalent to
// &Options{}.
func NewBackend(opts *Options) *Backend {
	if opts == nil {
		opts = &Options{}
	}
	b := &Backend{
		files: make(map[string]fileState),
		opts:  *opts,
	}
	if b.opts.Logger != nil {
		b.log = b.opts.Logger
	} else {
		b.log = logrus.StandardLogger()
	}
	return b
}

// Stats returns a copy of the Backend's current activity counters.
func (b *Backend) Stats() Stats { return b.stats }

// LastError returns the most recent errno-flavored code set by a failing
// registry-level operation (Open/Delete). It exists only because some
// embedders pull error text through a side channel instead of the
// returned error value.
func (b *Backend) LastError() Code { return b.lastErr }

func (b *Backend) fail(code Code, msg string) error {
	b.lastErr = code
	return newError(code, msg)
}

func (b *Backend) failWrap(code Code, err error, msg string) error {
	b.lastErr = code
	return wrapError(code, err, msg)
}

// Access reports whether a FileState of the given name currently exists.
func (b *Backend) Access(name string) bool {
	_, ok := b.files[name]
	return ok
}

// FullPathname is the identity function: names are opaque tokens to this
// backend, there is no real directory tree to resolve against.
func (b *Backend) FullPathname(name string) string { return name }

// walFor returns the WalState paired with db, if one has been opened.
// The pairing is recomputed through the registry by name rather than
// dereferencing a stored pointer, per §9's design note.
func (b *Backend) walFor(db *DatabaseState) (*WalState, bool) {
	if db.walName == "" {
		return nil, false
	}
	st, ok := b.files[db.walName]
	if !ok {
		return nil, false
	}
	wal, ok := st.(*WalState)
	return wal, ok
}

// databaseFor returns the DatabaseState paired with wal, by stripping the
// WAL name suffix and looking the result up in the registry.
func (b *Backend) databaseFor(wal *WalState) (*DatabaseState, bool) {
	dbName, ok := databaseNameForWal(wal.fname)
	if !ok {
		return nil, false
	}
	st, ok := b.files[dbName]
	if !ok {
		return nil, false
	}
	db, ok := st.(*DatabaseState)
	return db, ok
}

// PageSizeOf is the sideways query for the page size currently negotiated
// for a named file. ok is false if the file is unknown or no page size
// has been negotiated yet.
func (b *Backend) PageSizeOf(name string) (n int, ok bool) {
	st, found := b.files[name]
	if !found {
		return 0, false
	}
	switch s := st.(type) {
	case *DatabaseState:
		if s.store.pageSize == 0 {
			return 0, false
		}
		return s.store.pageSize, true
	case *WalState:
		if s.store.pageSize == 0 {
			return 0, false
		}
		return s.store.pageSize, true
	default:
		return 0, false
	}
}

// Open looks up name, creating a new FileState when the flags allow it,
// and returns a FileHandle referencing it. An empty name requests a temp
// file, delegated entirely to the host file system (§4.4/§4.5's "Temp
// file" case); it never touches the registry.
func (b *Backend) Open(name string, flags OpenFlag) (*FileHandle, error) {
	if name == "" {
		return b.openTemp(flags)
	}

	existing, found := b.files[name]
	if found {
		if hasFlag(flags, OpenCreate) && hasFlag(flags, OpenExclusive) {
			return nil, b.fail(CodeCannotOpen, "exclusive create on existing file: "+name)
		}
		existing.addRef()
		b.stats.Opens++
		b.log.WithField("name", name).Debug("memvfs: reopened file")
		return &FileHandle{backend: b, fname: name, flags: flags, state: existing}, nil
	}

	if !hasFlag(flags, OpenCreate) {
		return nil, b.fail(CodeNotFound, "open without create on missing file: "+name)
	}

	kind, ok := fileTypeOf(flags)
	if !ok {
		return nil, b.fail(CodeCannotOpen, "open requires exactly one file-type flag")
	}

	var st fileState
	switch kind {
	case OpenMainDB:
		st = newDatabaseState(name)

	case OpenMainJournal:
		st = newJournalState(name)

	case OpenWAL:
		dbName, isWal := databaseNameForWal(name)
		if !isWal {
			return nil, b.fail(CodeCannotOpen, "wal name missing expected suffix: "+name)
		}
		dbFile, found := b.files[dbName]
		if !found {
			return nil, b.fail(CodeCannotOpen, "wal opened before its database: "+name)
		}
		db, isDB := dbFile.(*DatabaseState)
		if !isDB {
			return nil, b.fail(CodeCannotOpen, "wal's paired file is not a database: "+name)
		}
		wal := newWalState(name, db.store.pageSize)
		st = wal

	default:
		return nil, b.fail(CodeCannotOpen, "unknown file-type flag")
	}

	st.addRef()
	b.files[name] = st
	b.stats.Opens++
	b.log.WithFields(logrus.Fields{"name": name, "kind": kind}).Debug("memvfs: created file")
	return &FileHandle{backend: b, fname: name, flags: flags, state: st}, nil
}

// Close releases handle's reference. When the last reference to a
// database is released, its shared memory and lock table are freed (but
// the FileState itself survives for a later reopen) unless the handle
// carried delete-on-close, in which case the FileState is destroyed.
func (b *Backend) Close(h *FileHandle) error {
	if h.temp != nil {
		return h.closeTemp()
	}

	remaining := h.state.dropRef()
	b.stats.Closes++

	if remaining == 0 && hasFlag(h.flags, OpenDeleteOnClose) {
		delete(b.files, h.fname)
		b.log.WithField("name", h.fname).Debug("memvfs: deleted on close")
	}
	return nil
}

// Delete destroys the named FileState. It fails with CodeBusy if any
// handle is still open against it.
func (b *Backend) Delete(name string) error {
	st, ok := b.files[name]
	if !ok {
		return b.fail(CodeNotFound, "delete of missing file: "+name)
	}
	if st.refs() > 0 {
		return b.fail(CodeBusy, "delete while handles are open: "+name)
	}
	delete(b.files, name)
	b.stats.Deletes++
	b.log.WithField("name", name).Debug("memvfs: deleted")
	return nil
}

func (b *Backend) noteLockContention() {
	b.stats.LockContentions++
}

// Randomness fills buf with opaque random bytes for the engine's own seed
// material, per §6's upward interface. It never needs to be
// cryptographically meaningful; crypto/rand is simply a convenient source.
func (b *Backend) Randomness(buf []byte) int {
	n, _ := rand.Read(buf)
	return n
}

// Sleep is a no-op that reports the requested duration elapsed
// immediately: there is no scheduler to suspend inside a single-threaded,
// synchronous backend (§5).
func (b *Backend) Sleep(microseconds int64) int64 {
	return microseconds
}

// CurrentTime returns the current time as UNIX-epoch milliseconds, and
// again as a float64 whose bit pattern is that same 64-bit integer (the
// engine historically wants both representations).
func (b *Backend) CurrentTime() (millis int64, asFloat float64) {
	millis = time.Now().UnixMilli()
	return millis, math.Float64frombits(uint64(millis))
}
