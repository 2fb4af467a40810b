package memvfs

// walFrameHeaderSize is the fixed size, in bytes, of the header prefixed
// to every WAL frame.
const walFrameHeaderSize = 24

// Page is a fixed-size, zero-initialized byte buffer addressed by a
// 1-based page number within a file. Pages are owned exclusively by their
// containing FileState; they are never shared across files.
//
// For WAL pages only, frame carries the 24-byte frame header that
// precedes the page body on the wire. Database pages never carry one.
type Page struct {
	body  []byte
	frame []byte // nil for database pages, 24 bytes for WAL pages
}

func newPage(pageSize int, wal bool) *Page {
	p := &Page{body: make([]byte, pageSize)}
	if wal {
		p.frame = make([]byte, walFrameHeaderSize)
	}
	return p
}

// pageStore is the dense, 1-based vector of Pages backing a database or
// WAL FileState. Growth happens one page at a time: the vector is
// reallocated on each grow rather than pre-allocated in batches, matching
// the contract ensurePage relies on (requesting pgno > count+1 must fail,
// never silently skip).
type pageStore struct {
	pageSize int
	wal      bool
	pages    []*Page // pages[0] is page number 1
}

func newPageStore(wal bool) *pageStore {
	return &pageStore{wal: wal}
}

func (s *pageStore) count() int { return len(s.pages) }

// setPageSize records the page size the first real write negotiated.
func (s *pageStore) setPageSize(n int) {
	s.pageSize = n
}

// ensurePage returns page pgno, allocating it if pgno == count()+1. Any
// other pgno beyond the current count is rejected: the engine must not
// skip pages.
func (s *pageStore) ensurePage(pgno int) (*Page, error) {
	if pgno < 1 {
		return nil, wrapError(CodeIOErr, nil, "page number must be >= 1")
	}
	if pgno <= len(s.pages) {
		return s.pages[pgno-1], nil
	}
	if pgno != len(s.pages)+1 {
		return nil, wrapError(CodeIOErr, nil, "write would skip pages")
	}
	if s.pageSize == 0 {
		return nil, wrapError(CodeIOErr, nil, "page size not yet negotiated")
	}
	p := newPage(s.pageSize, s.wal)
	grown := make([]*Page, len(s.pages)+1)
	copy(grown, s.pages)
	grown[len(grown)-1] = p
	s.pages = grown
	return p, nil
}

// lookupPage returns the existing page, or nil if pgno exceeds the
// current count. It never allocates.
func (s *pageStore) lookupPage(pgno int) *Page {
	if pgno < 1 || pgno > len(s.pages) {
		return nil
	}
	return s.pages[pgno-1]
}

// truncate shrinks the store to exactly n pages. n must not exceed the
// current count. Whether n == 0 is the only legal value (WAL) is enforced
// by the caller, not here.
func (s *pageStore) truncate(n int) error {
	if n < 0 || n > len(s.pages) {
		return wrapError(CodeIOErr, nil, "truncate count out of range")
	}
	s.pages = s.pages[:n]
	return nil
}
