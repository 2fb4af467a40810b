package memvfs

// lockSlots is the fixed number of byte-range lock slots the engine
// coordinates readers and writers over. This mirrors SQLite's WAL-index
// locking layout: a small, fixed set of named ranges rather than an
// arbitrary byte-range space.
const lockSlots = 16

// LockMode selects whether acquire/release targets a shared or exclusive
// count.
type LockMode int

const (
	LockShared LockMode = iota
	LockExclusive
)

// lockTable is an in-process simulation of cross-process advisory
// byte-range locking over lockSlots fixed slots. There is no blocking:
// every operation either succeeds immediately or fails with CodeBusy.
type lockTable struct {
	shared    [lockSlots]int
	exclusive [lockSlots]int
}

func validRange(offset, n int) error {
	if offset < 0 || n < 1 || offset+n > lockSlots {
		return wrapError(CodeIOErr, nil, "lock range out of bounds")
	}
	return nil
}

// Acquire takes a lock of the given mode over [offset, offset+n). Shared
// locks must span exactly one slot (n == 1); a shared request with any
// other n is rejected with CodeIOErr.
func (t *lockTable) Acquire(offset, n int, mode LockMode) error {
	if err := validRange(offset, n); err != nil {
		return err
	}
	if mode == LockShared && n != 1 {
		return wrapError(CodeIOErr, nil, "shared locks must span exactly one slot")
	}
	switch mode {
	case LockExclusive:
		for i := offset; i < offset+n; i++ {
			if t.shared[i] > 0 || t.exclusive[i] > 0 {
				return newError(CodeBusy, "slot held")
			}
		}
		for i := offset; i < offset+n; i++ {
			t.exclusive[i] = 1
		}
	case LockShared:
		for i := offset; i < offset+n; i++ {
			if t.exclusive[i] > 0 {
				return newError(CodeBusy, "slot exclusively held")
			}
		}
		for i := offset; i < offset+n; i++ {
			t.shared[i]++
		}
	}
	return nil
}

// Release drops a lock of the given mode over [offset, offset+n). It is
// idempotent: releasing a slot that is already clear leaves it clear.
func (t *lockTable) Release(offset, n int, mode LockMode) error {
	if err := validRange(offset, n); err != nil {
		return err
	}
	switch mode {
	case LockExclusive:
		for i := offset; i < offset+n; i++ {
			if t.shared[i] != 0 {
				return wrapError(CodeIOErr, nil, "release exclusive with shared holders present")
			}
			t.exclusive[i] = 0
		}
	case LockShared:
		for i := offset; i < offset+n; i++ {
			if t.exclusive[i] != 0 {
				return wrapError(CodeIOErr, nil, "release shared with exclusive holder present")
			}
			if t.shared[i] > 0 {
				t.shared[i]--
			}
		}
	}
	return nil
}
