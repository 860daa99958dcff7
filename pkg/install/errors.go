package install

import "fmt"

// FilesystemChanged indicates that the image tree was observed to change
// while check was walking it (an entry that was present during directory
// enumeration had disappeared by the time it was stat'd). The transaction
// must be aborted; check never mutates the root, so nothing needs to be
// undone.
type FilesystemChanged struct {
	// Path is the image-relative path that disappeared.
	Path string
}

// Error implements error.Error.
func (e *FilesystemChanged) Error() string {
	return fmt.Sprintf("image entry disappeared during check: %s", e.Path)
}

// InvalidCallOrder indicates that a phase method was invoked before its
// prerequisite phase completed successfully.
type InvalidCallOrder struct {
	// Attempted is the phase that was invoked.
	Attempted string
	// Require is the phase (or phase outcome) that was required first.
	Require string
}

// Error implements error.Error.
func (e *InvalidCallOrder) Error() string {
	return fmt.Sprintf("%s called before %s", e.Attempted, e.Require)
}

// internalInvariantViolation indicates that the plan reached prepare or
// merge containing an entry that check should have filtered out (an
// unsupported or socket file kind). Check is the sole gate for file kind
// validity; reaching this point is a programming error in the core, not a
// condition a caller can provoke or recover from.
type internalInvariantViolation struct {
	path string
	kind FileKind
}

// Error implements error.Error.
func (e *internalInvariantViolation) Error() string {
	return fmt.Sprintf("internal invariant violated: unsupported kind %v reached plan execution for %s", e.kind, e.path)
}
