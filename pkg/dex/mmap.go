package dex

import "sync"

// handleSlot guards an optional caller-attached host-object handle. It lets
// an embedder (e.g. a class loader tracking which memory-mapped region or
// file descriptor backs an Image) stash one value on the Image without the
// core package importing anything runtime-specific. It is the only mutable
// state on an otherwise immutable Image, so it carries its own mutex rather
// than requiring the whole Image to be treated as unsafe for concurrent use.
type handleSlot struct {
	mu    sync.Mutex
	value any
	perms Permissions
}

// Permissions models the coarse read/write/execute protection a host might
// apply to the pages backing an Image's buffer (spec.md §5: the core makes
// no protection guarantees of its own, but exposes hooks so an embedder
// can request or record them).
type Permissions uint8

const (
	PermRead Permissions = 1 << iota
	PermWrite
	PermExecute
)

// Handle returns the host-object handle previously attached with SetHandle,
// or nil if none was set.
func (img *Image) Handle() any {
	img.handle.mu.Lock()
	defer img.handle.mu.Unlock()
	return img.handle.value
}

// SetHandle attaches an opaque host-object handle to the image, replacing
// any previous value.
func (img *Image) SetHandle(v any) {
	img.handle.mu.Lock()
	defer img.handle.mu.Unlock()
	img.handle.value = v
}

// Permissions returns the protection last recorded with SetPermissions.
func (img *Image) Permissions() Permissions {
	img.handle.mu.Lock()
	defer img.handle.mu.Unlock()
	return img.handle.perms
}

// SetPermissions records the protection an embedder has applied to the
// pages backing img's buffer. It performs no mprotect call of its own: the
// core library never owns the memory it was handed (spec.md §2, "does not
// take ownership of the byte source"), so changing page protection is the
// embedder's responsibility. This is the ChangePermissions hook named in
// the original ART DexFile API, narrowed to a record-only operation here.
func (img *Image) SetPermissions(p Permissions) {
	img.handle.mu.Lock()
	defer img.handle.mu.Unlock()
	img.handle.perms = p
}
