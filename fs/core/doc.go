// Package core defines the backend contract shared by every filesystem the
// transfer engine can read from or write to.
//
// A Backend is addressed with absolute, root-prefixed paths such as
// "sdmc:/switch/app.nro" or "ums0:/backup". Every path handed to a backend
// starts with the string returned by its Root method; backends strip the root
// before touching their storage and reject foreign paths.
//
// # Capabilities
//
// The required surface is deliberately small: list, open, create, stat,
// directory creation, file and directory removal, rename, existence and
// emptiness checks. Optional capabilities are discovered with type
// assertions:
//
//   - Timestamper: read and write raw file timestamps
//   - Cloner: backend-native copy of a file to another path on the same backend
//
// Open file handles may implement io.ReaderAt for positional reads.
//
// # Usage Example
//
//	entries, err := b.List("sdmc:/switch", core.ListAll)
//	if err != nil {
//	    return err
//	}
//	for _, e := range entries {
//	    fmt.Println(core.Join("sdmc:/switch", e.Name), e.Size)
//	}
package core
