package memvfs

import (
	"github.com/pkg/errors"
)

// Code is a POSIX-errno-flavored status carried out of every Backend and
// FileHandle operation that can fail. The numeric values have no meaning
// outside this package; the sqlitevfs adapter maps them onto the engine's
// own result codes.
type Code int

const (
	// CodeNotFound: open without create on a missing file; delete of a
	// missing file.
	CodeNotFound Code = iota + 1
	// CodeCannotOpen: exclusive+create on an existing file; unknown
	// file-type flag set.
	CodeCannotOpen
	// CodeBusy: delete while handles are open; lock contention.
	CodeBusy
	// CodeCorrupt: WAL header page size disagrees with the database's.
	CodeCorrupt
	// CodeIOErr: illegal offset/amount combination, or a write attempted
	// before page-size negotiation.
	CodeIOErr
	// CodeIOErrShortRead: the read came up short against a gap in the
	// page vector; the backend has already zero-filled the buffer.
	CodeIOErrShortRead
	// CodeIOErrFsync: a sync was requested; this backend claims no
	// durability so sync always fails.
	CodeIOErrFsync
	// CodeProtocol: a non-zero truncate was requested on a WAL file.
	CodeProtocol
	// CodeNoMemory: an allocation failure.
	CodeNoMemory
)

func (c Code) String() string {
	switch c {
	case CodeNotFound:
		return "not found"
	case CodeCannotOpen:
		return "cannot open"
	case CodeBusy:
		return "busy"
	case CodeCorrupt:
		return "corrupt"
	case CodeIOErr:
		return "I/O error"
	case CodeIOErrShortRead:
		return "short read"
	case CodeIOErrFsync:
		return "fsync error"
	case CodeProtocol:
		return "protocol error"
	case CodeNoMemory:
		return "no memory"
	default:
		return "unknown error"
	}
}

// BackendError is the concrete error type every Backend/FileHandle
// operation returns on failure. It carries a Code so the sqlitevfs
// adapter can recover the engine result code without parsing strings,
// while still composing with github.com/pkg/errors for cause chains and
// with the standard errors.Is/errors.As protocol.
type BackendError struct {
	Code  Code
	cause error
}

func newError(code Code, msg string) error {
	return &BackendError{Code: code, cause: errors.New(msg)}
}

func wrapError(code Code, err error, msg string) error {
	if err == nil {
		return newError(code, msg)
	}
	return &BackendError{Code: code, cause: errors.Wrap(err, msg)}
}

func (e *BackendError) Error() string {
	if e.cause == nil {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.cause.Error()
}

func (e *BackendError) Unwrap() error { return e.cause }

// CodeOf extracts the Code carried by err, if any, and reports whether one
// was found.
func CodeOf(err error) (Code, bool) {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Code, true
	}
	return 0, false
}

// ErrShortRead is returned (wrapping CodeIOErrShortRead) whenever a read
// came up against a page or frame that has never been written: the
// destination buffer is still zero-filled and the caller may safely
// ignore the short length, exactly like a real SQLite VFS short read.
var ErrShortRead = newError(CodeIOErrShortRead, "short read, buffer zero-filled")
