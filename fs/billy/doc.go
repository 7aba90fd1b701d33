// Package billy provides go-billy-backed implementations of core.Backend.
//
// NewLocal wraps billy's osfs rooted at a host directory and stands in for
// the device's native storage or a removable drive. NewMemory wraps memfs and
// is used for scratch space and tests.
//
// Usage:
//
//	sd := billy.NewLocal("/mnt/sd", billy.WithRoot("sdmc:/"))
//	usb := billy.NewLocal("/mnt/usb", billy.WithRoot("ums0:/"), billy.WithKind(core.KindRemovable))
//
//	entries, err := sd.List("sdmc:/switch", core.ListAll)
//
// Both variants implement core.Timestamper through billy's Change interface
// when the underlying filesystem supports it.
//
// # Thread Safety
//
// FS values may be shared between goroutines. File handles are not safe for
// concurrent use.
package billy
