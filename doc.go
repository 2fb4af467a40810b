// Package memvfs is an in-memory, page-addressed storage backend that
// masquerades as a file system to an embedded SQLite-compatible engine.
//
// It reproduces byte-exact semantics for the three file kinds the engine
// opens against a database connection (main database, rollback journal,
// write-ahead log), intercepts page writes so committed frames can be
// shipped to a replication layer, and emulates the engine's cross-process
// shared-memory locking protocol entirely within one process. Apart from
// the temp-file passthrough used for unnamed opens, nothing here touches a
// real file system, and nothing uses a real mmap; see Backend for the
// single entry point.
package memvfs
