package memvfs

// OpenFlag is the upward interface's open flags-bitmask: the combination
// of access mode and file-type hints the engine passes to Backend.Open.
type OpenFlag uint32

const (
	OpenReadOnly OpenFlag = 1 << iota
	OpenReadWrite
	OpenCreate
	OpenExclusive
	OpenDeleteOnClose

	OpenMainDB
	OpenMainJournal
	OpenWAL
)

func setFlag(b, flag OpenFlag) OpenFlag   { return b | flag }
func clearFlag(b, flag OpenFlag) OpenFlag { return b &^ flag }
func toggleFlag(b, flag OpenFlag) OpenFlag { return b ^ flag }
func hasFlag(b, flag OpenFlag) bool       { return b&flag != 0 }

// fileTypeOf returns the single file-kind flag carried by b, and whether
// exactly one was set (OpenMainDB / OpenMainJournal / OpenWAL are mutually
// exclusive, and the engine must request exactly one).
func fileTypeOf(b OpenFlag) (OpenFlag, bool) {
	types := b & (OpenMainDB | OpenMainJournal | OpenWAL)
	switch types {
	case OpenMainDB, OpenMainJournal, OpenWAL:
		return types, true
	default:
		return 0, false
	}
}
