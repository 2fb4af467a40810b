package memvfs

// sharedMemory is the in-process stand-in for the named shared-memory
// region (the "-shm" file) a real SQLite engine mmaps to coordinate
// readers and writers across processes. Regions are appended strictly
// one-at-a-time and persist for as long as the owning DatabaseState's
// refcount is nonzero; see lockTable for the byte-range locks carried
// alongside them.
type sharedMemory struct {
	regions [][]byte
	locks   lockTable
}

func newSharedMemory() *sharedMemory {
	return &sharedMemory{}
}

// mapRegion returns the region at index if already allocated. If it is
// not, and extend is true, the table must currently have exactly index
// regions; one new zero-filled region of size bytes is appended. If
// extend is false and the region is unmapped, it returns (nil, false,
// nil) rather than an error.
func (m *sharedMemory) mapRegion(index, size int, extend bool) ([]byte, bool, error) {
	if index < 0 {
		return nil, false, wrapError(CodeIOErr, nil, "negative shared-memory index")
	}
	if index < len(m.regions) {
		return m.regions[index], true, nil
	}
	if !extend {
		return nil, false, nil
	}
	if index != len(m.regions) {
		return nil, false, wrapError(CodeIOErr, nil, "shared-memory index would skip regions")
	}
	region := make([]byte, size)
	m.regions = append(m.regions, region)
	return region, true, nil
}

// unmap is a no-op: regions live for the Backend's lifetime of the owning
// DatabaseState and are only released when its refcount reaches zero (see
// (*sharedMemory).reset).
func (m *sharedMemory) unmap() {}

// reset drops every region and lock count, releasing the shared memory
// entirely. Called when a DatabaseState's refcount falls to zero.
func (m *sharedMemory) reset() {
	m.regions = nil
	m.locks = lockTable{}
}
