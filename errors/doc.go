// Package errors provides the structured error taxonomy used by the transfer
// engine and its backends.
//
// Every failure surfaced by a bulk operation is a TransferError carrying an
// ErrorCode, a retry classification, a human-readable message and optional
// context metadata. The wrapped cause stays reachable through errors.Is and
// errors.As, so callers can still match io/fs sentinels such as fs.ErrNotExist.
//
// # Codes used by the engine
//
//   - CodeBackend: a backend refused open, list, create, delete or rename
//   - CodeIO: a read or write failed in the middle of a copy
//   - CodeArchive: the archive codec could not open a file or create an entry
//   - CodeCancelled: the user cancelled the session
//   - CodeNameConflict: a destination name had to be derived and could not be
//
// # Usage
//
//	f, err := b.Open(path)
//	if err != nil {
//	    return errors.Wrapf(err, errors.CodeBackend, "failed to open %s", path)
//	}
//
//	if errors.IsCancelled(err) {
//	    // the operation stopped at a step boundary; completed steps remain
//	}
//
// The engine never retries. Classification is informational for callers that
// want to re-run a failed operation against a network backend.
package errors
