package install

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// StatSnapshot is the subset of an lstat result that the core engine relies
// on. It is always taken with lstat semantics: symbolic links are described,
// never followed.
type StatSnapshot struct {
	// Kind is the classified file type.
	Kind FileKind
	// Device is the id of the device the entry resides on.
	Device uint64
	// Inode is the entry's inode number.
	Inode uint64
	// Nlink is the hard link count recorded for the inode at the time of
	// the snapshot.
	Nlink uint64
	// Mode holds the raw POSIX mode bits, including permission bits.
	Mode uint32
	// UID is the owning user id.
	UID uint32
	// GID is the owning group id.
	GID uint32
	// Mtime is the last modification time.
	Mtime time.Time
	// Atime is the last access time.
	Atime time.Time
	// Rdev is the device id encoded for block/character device nodes. It is
	// meaningless for other kinds.
	Rdev uint64
}

// lstatSnapshot performs an lstat on path and converts the result into a
// StatSnapshot. It returns the raw *os.PathError (via errors.Is-compatible
// wrapping) so that callers can distinguish "does not exist" from other
// failures.
func lstatSnapshot(path string) (*StatSnapshot, error) {
	var raw unix.Stat_t
	if err := unix.Lstat(path, &raw); err != nil {
		return nil, &os.PathError{Op: "lstat", Path: path, Err: err}
	}
	return snapshotFromRaw(&raw), nil
}

// snapshotFromRaw converts a raw unix.Stat_t into a StatSnapshot.
func snapshotFromRaw(raw *unix.Stat_t) *StatSnapshot {
	return &StatSnapshot{
		Kind:   fileKindFromMode(raw.Mode),
		Device: uint64(raw.Dev),
		Inode:  raw.Ino,
		Nlink:  uint64(raw.Nlink),
		Mode:   raw.Mode,
		UID:    raw.Uid,
		GID:    raw.Gid,
		Mtime:  time.Unix(raw.Mtim.Unix()),
		Atime:  time.Unix(raw.Atim.Unix()),
		Rdev:   uint64(raw.Rdev),
	}
}

// permissionBits isolates the permission bits, including the setuid, setgid
// and sticky bits (mode & 07777), from the snapshot's raw mode.
func (s *StatSnapshot) permissionBits() uint32 {
	return s.Mode & 07777
}

// nearestExistingAncestor walks up the directory chain from path (exclusive
// of path itself) until it finds a path that exists, returning that path and
// its snapshot: find the first existing ancestor so that its device id is
// available for later comparisons.
//
// Root nonexistence (i.e. root itself missing) yields the filesystem-root
// stat, and failure to find any existing ancestor re-raises the underlying
// error.
func nearestExistingAncestor(path string) (string, *StatSnapshot, error) {
	candidate := path
	for {
		parent := filepath.Dir(candidate)
		if parent == candidate {
			// We've reached the filesystem root ("/" on POSIX) without
			// finding anything that exists; stat it directly and let any
			// error propagate.
			snap, err := lstatSnapshot(parent)
			if err != nil {
				return "", nil, errors.Wrapf(err, "unable to stat filesystem root while searching for existing ancestor of %s", path)
			}
			return parent, snap, nil
		}
		if snap, err := lstatSnapshot(parent); err == nil {
			return parent, snap, nil
		} else if !os.IsNotExist(err) {
			return "", nil, errors.Wrapf(err, "unable to stat ancestor %s", parent)
		}
		candidate = parent
	}
}
