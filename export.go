package memvfs

// Export serializes the named file's current content into the exact
// on-disk byte layout the engine itself would produce: a dense run of
// pages for a database, or a 32-byte header followed by frame-header/page
// pairs for a WAL (§4.8).
func (b *Backend) Export(name string) ([]byte, error) {
	st, ok := b.files[name]
	if !ok {
		return nil, b.fail(CodeNotFound, "export of missing file: "+name)
	}

	var out []byte
	switch s := st.(type) {
	case *DatabaseState:
		out = exportDatabase(s)
	case *WalState:
		out = exportWal(s)
	default:
		return nil, b.fail(CodeIOErr, "only database and wal files can be exported: "+name)
	}

	b.stats.BytesExported += int64(len(out))
	b.log.WithField("name", name).Debug("memvfs: exported snapshot")
	return out, nil
}

func exportDatabase(s *DatabaseState) []byte {
	buf := make([]byte, s.store.count()*s.store.pageSize)
	for i, p := range s.store.pages {
		copy(buf[i*s.store.pageSize:], p.body)
	}
	return buf
}

func exportWal(s *WalState) []byte {
	if !s.headerSet() && s.store.count() == 0 {
		return nil
	}
	frameSize := walFrameHeaderSize + s.store.pageSize
	buf := make([]byte, walHeaderSize+s.store.count()*frameSize)
	copy(buf[:walHeaderSize], s.header[:])
	for i, p := range s.store.pages {
		off := walHeaderSize + i*frameSize
		copy(buf[off:off+walFrameHeaderSize], p.frame)
		copy(buf[off+walFrameHeaderSize:off+frameSize], p.body)
	}
	return buf
}

// Import replaces the named file's entire content by decoding data in the
// same layout Export produces. The file is created if it does not already
// exist; an existing file's shared-memory/lock state and refcount survive
// the replacement, matching a live reconnect during replication.
//
// Whether name denotes a database or a WAL is determined by its "-wal"
// name suffix (unlike Open, which dispatches on its file-type flag).
func (b *Backend) Import(name string, data []byte) error {
	if dbName, isWal := databaseNameForWal(name); isWal {
		return b.importWal(name, dbName, data)
	}
	return b.importDatabase(name, data)
}

func (b *Backend) importDatabase(name string, data []byte) error {
	db, existed := b.files[name].(*DatabaseState)
	if !existed {
		db = newDatabaseState(name)
	}

	if len(data) == 0 {
		db.store = newPageStore(false)
		b.files[name] = db
		b.stats.BytesImported += int64(len(data))
		return nil
	}

	pageSize, err := decodeDBPageSize(data)
	if err != nil {
		return err
	}
	if len(data)%pageSize != 0 {
		return b.fail(CodeCorrupt, "database snapshot length not a multiple of its page size: "+name)
	}

	store := newPageStore(false)
	store.setPageSize(pageSize)
	count := len(data) / pageSize
	for i := 0; i < count; i++ {
		p, err := store.ensurePage(i + 1)
		if err != nil {
			return err
		}
		copy(p.body, data[i*pageSize:(i+1)*pageSize])
	}
	db.store = store

	b.files[name] = db
	b.stats.BytesImported += int64(len(data))
	b.log.WithField("name", name).Debug("memvfs: imported database snapshot")
	return nil
}

func (b *Backend) importWal(name, dbName string, data []byte) error {
	wal, existed := b.files[name].(*WalState)

	pageSize := 0
	if db, ok := b.files[dbName].(*DatabaseState); ok {
		pageSize = db.store.pageSize
	}
	if len(data) >= walHeaderSize {
		pageSize = decodeWalPageSize(data)
	}
	if !existed {
		wal = newWalState(name, pageSize)
	} else {
		wal.store = newPageStore(true)
		wal.store.setPageSize(pageSize)
		wal.header = [32]byte{}
		wal.hdrSet = false
	}

	if len(data) > 0 {
		if len(data) < walHeaderSize {
			return b.fail(CodeCorrupt, "wal snapshot shorter than its header: "+name)
		}
		copy(wal.header[:], data[:walHeaderSize])
		wal.hdrSet = true

		frameSize := walFrameHeaderSize + pageSize
		rest := data[walHeaderSize:]
		if frameSize <= 0 || len(rest)%frameSize != 0 {
			return b.fail(CodeCorrupt, "wal snapshot frame region misaligned: "+name)
		}
		count := len(rest) / frameSize
		for i := 0; i < count; i++ {
			p, err := wal.store.ensurePage(i + 1)
			if err != nil {
				return err
			}
			off := i * frameSize
			copy(p.frame, rest[off:off+walFrameHeaderSize])
			copy(p.body, rest[off+walFrameHeaderSize:off+frameSize])
		}
	}

	b.files[name] = wal
	b.stats.BytesImported += int64(len(data))
	b.log.WithField("name", name).Debug("memvfs: imported wal snapshot")
	return nil
}

// ExportCompressed is Export wrapped in algo's codec, for a replication
// peer that wants the snapshot over the wire rather than on a shared host
// file system (§4.8.1). The uncompressed layout Export produces is
// unaffected; compression is applied and removed entirely at this
// boundary.
func (b *Backend) ExportCompressed(name string, algo CompressAlgorithm) ([]byte, CompressAlgorithm, error) {
	raw, err := b.Export(name)
	if err != nil {
		return nil, CompressNone, err
	}
	out, err := compress(algo, raw)
	if err != nil {
		return nil, CompressNone, err
	}
	return out, algo, nil
}

// ImportCompressed reverses ExportCompressed: decompress first, then run
// the ordinary Import decode path.
func (b *Backend) ImportCompressed(name string, algo CompressAlgorithm, data []byte) error {
	raw, err := decompress(algo, data)
	if err != nil {
		return err
	}
	return b.Import(name, raw)
}
