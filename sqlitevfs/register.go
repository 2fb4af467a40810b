package sqlitevfs

import (
	"github.com/ncruces/go-sqlite3/vfs"

	"memvfs"
)

// Register installs backend under name so the engine can open connections
// against it with "file:...?vfs=" + name, or as the process-wide default
// VFS when makeDefault is true.
func Register(name string, backend *memvfs.Backend, makeDefault bool) {
	v := New(backend)
	vfs.Register(name, v)
	if makeDefault {
		vfs.Register("", v)
	}
}

// Randomness forwards to the Backend, satisfying the engine's optional
// randomness extension point.
func (v *VFS) Randomness(buf []byte) int { return v.backend.Randomness(buf) }

// Sleep forwards to the Backend.
func (v *VFS) Sleep(microseconds int64) int64 { return v.backend.Sleep(microseconds) }

// CurrentTime forwards to the Backend.
func (v *VFS) CurrentTime() (int64, float64) { return v.backend.CurrentTime() }

// DlOpen, DlError, DlSym, and DlClose report that dynamically loadable
// extensions are unsupported, per §6.
func (v *VFS) DlOpen(filename string) uintptr             { return 0 }
func (v *VFS) DlError() string                            { return "extensions unsupported" }
func (v *VFS) DlSym(handle uintptr, symbol string) uintptr { return 0 }
func (v *VFS) DlClose(handle uintptr)                      {}
