package memvfs

import "encoding/binary"

// readDatabase implements §4.4's "Database read" and "Empty file" cases.
func readDatabase(st *DatabaseState, buf []byte, offset int64) error {
	if st.store.count() == 0 {
		clear(buf)
		return ErrShortRead
	}

	pageSize := st.store.pageSize
	amount := len(buf)

	if offset == 0 {
		if amount > pageSize {
			return wrapError(CodeIOErr, nil, "header read amount exceeds page size")
		}
		page := st.store.lookupPage(1)
		copy(buf, page.body[:amount])
		return nil
	}

	if pageSize == 0 || offset%int64(pageSize) != 0 || amount != pageSize {
		return wrapError(CodeIOErr, nil, "misaligned database read")
	}
	pgno := int(offset/int64(pageSize)) + 1
	page := st.store.lookupPage(pgno)
	if page == nil {
		clear(buf)
		return ErrShortRead
	}
	copy(buf, page.body)
	return nil
}

// writeDatabase implements §4.5's "Database write" case: page-size
// negotiation on the first write to offset 0, page-aligned writes
// thereafter.
func writeDatabase(st *DatabaseState, buf []byte, offset int64) error {
	amount := len(buf)

	if offset == 0 {
		if amount < dbHeaderSize {
			return wrapError(CodeIOErr, nil, "first database write shorter than the header")
		}
		n, err := decodeDBPageSize(buf)
		if err != nil {
			return err
		}
		if st.store.pageSize == 0 {
			st.store.setPageSize(n)
		} else if st.store.pageSize != n {
			return wrapError(CodeIOErr, nil, "database page size already negotiated differently")
		}
		if amount > st.store.pageSize {
			return wrapError(CodeIOErr, nil, "write exceeds the negotiated page size")
		}
		page, err := st.store.ensurePage(1)
		if err != nil {
			return err
		}
		copy(page.body, buf)
		return nil
	}

	if st.store.pageSize == 0 {
		return wrapError(CodeIOErr, nil, "database write without prior page-size negotiation")
	}
	if offset%int64(st.store.pageSize) != 0 || amount != st.store.pageSize {
		return wrapError(CodeIOErr, nil, "misaligned database write")
	}
	pgno := int(offset/int64(st.store.pageSize)) + 1
	page, err := st.store.ensurePage(pgno)
	if err != nil {
		return err
	}
	copy(page.body, buf)
	return nil
}

// walPageSize inherits the page size from the paired database on first
// use, per §4.4/§4.5.
func walPageSize(b *Backend, st *WalState) (int, error) {
	if st.store.pageSize != 0 {
		return st.store.pageSize, nil
	}
	db, ok := b.databaseFor(st)
	if !ok || db.store.pageSize == 0 {
		return 0, wrapError(CodeIOErr, nil, "wal page size unavailable: paired database not negotiated")
	}
	st.store.setPageSize(db.store.pageSize)
	return db.store.pageSize, nil
}

// readWal implements §4.4's "WAL read" dispatch table.
func readWal(b *Backend, st *WalState, buf []byte, offset int64) error {
	pageSize, err := walPageSize(b, st)
	if err != nil {
		return err
	}

	if !st.headerSet() && st.store.count() == 0 {
		clear(buf)
		return ErrShortRead
	}

	amount := len(buf)
	frameSize := pageSize + walFrameHeaderSize

	switch {
	case amount == walHeaderSize && offset == 0:
		copy(buf, st.header[:])
		return nil

	case amount == walFrameHeaderSize:
		pgno, ok := walFramePgno(offset, walHeaderSize, frameSize)
		if !ok {
			return wrapError(CodeIOErr, nil, "misaligned wal frame-header read")
		}
		page := st.store.lookupPage(pgno)
		if page == nil {
			clear(buf)
			return ErrShortRead
		}
		copy(buf, page.frame)
		return nil

	case amount == 8 && offset == walHeaderChecksumOffset:
		copy(buf, st.header[16:24])
		return nil

	case amount == 8:
		pgno, ok := walFramePgno(offset, walHeaderSize+16, frameSize)
		if !ok {
			return wrapError(CodeIOErr, nil, "misaligned wal frame checksum read")
		}
		page := st.store.lookupPage(pgno)
		if page == nil {
			clear(buf)
			return ErrShortRead
		}
		copy(buf, page.frame[16:24])
		return nil

	case amount == pageSize:
		pgno, ok := walFramePgno(offset, walHeaderSize+walFrameHeaderSize, frameSize)
		if !ok {
			return wrapError(CodeIOErr, nil, "misaligned wal page-body read")
		}
		page := st.store.lookupPage(pgno)
		if page == nil {
			clear(buf)
			return ErrShortRead
		}
		copy(buf, page.body)
		return nil

	case amount == walFrameHeaderSize+pageSize:
		pgno, ok := walFramePgno(offset, walHeaderSize, frameSize)
		if !ok {
			return wrapError(CodeIOErr, nil, "misaligned wal frame read")
		}
		page := st.store.lookupPage(pgno)
		if page == nil {
			clear(buf)
			return ErrShortRead
		}
		copy(buf[:walFrameHeaderSize], page.frame)
		copy(buf[walFrameHeaderSize:], page.body)
		return nil

	default:
		return wrapError(CodeIOErr, nil, "invalid wal read amount")
	}
}

// writeWal implements §4.5's "WAL write" dispatch table.
func writeWal(b *Backend, st *WalState, buf []byte, offset int64) error {
	pageSize, err := walPageSize(b, st)
	if err != nil {
		return err
	}

	amount := len(buf)
	frameSize := pageSize + walFrameHeaderSize

	switch amount {
	case walHeaderSize:
		if offset != 0 {
			return wrapError(CodeIOErr, nil, "wal header write must target offset 0")
		}
		if decodeWalPageSize(buf) != pageSize {
			return newError(CodeCorrupt, "wal header page size disagrees with its database")
		}
		magic := binary.BigEndian.Uint32(buf[0:4])
		if magic != walMagicLittleEndian && magic != walMagicBigEndian {
			return newError(CodeCorrupt, "wal header has an invalid magic number")
		}
		wantS1, wantS2 := walChecksum(nativeFromMagic(magic), 0, 0, buf[0:24])
		if binary.BigEndian.Uint32(buf[24:28]) != wantS1 || binary.BigEndian.Uint32(buf[28:32]) != wantS2 {
			return newError(CodeCorrupt, "wal header checksum does not match its contents")
		}
		copy(st.header[:], buf)
		st.hdrSet = true
		return nil

	case walFrameHeaderSize:
		pgno, ok := walFramePgno(offset, walHeaderSize, frameSize)
		if !ok {
			return wrapError(CodeIOErr, nil, "misaligned wal frame-header write")
		}
		page, err := st.store.ensurePage(pgno)
		if err != nil {
			return err
		}
		copy(page.frame, buf)
		return nil

	case pageSize:
		pgno, ok := walFramePgno(offset, walHeaderSize+walFrameHeaderSize, frameSize)
		if !ok {
			return wrapError(CodeIOErr, nil, "misaligned wal page-body write")
		}
		page := st.store.lookupPage(pgno)
		if page == nil {
			return wrapError(CodeIOErr, nil, "wal frame header must exist before its body")
		}
		copy(page.body, buf)
		return nil

	default:
		return wrapError(CodeIOErr, nil, "invalid wal write amount")
	}
}

// walFramePgno computes the 1-based frame number an offset refers to once
// base has been subtracted, requiring exact alignment on frameSize.
func walFramePgno(offset int64, base int64, frameSize int) (int, bool) {
	rel := offset - base
	if rel < 0 || int64(frameSize) <= 0 || rel%int64(frameSize) != 0 {
		return 0, false
	}
	return int(rel/int64(frameSize)) + 1, true
}
