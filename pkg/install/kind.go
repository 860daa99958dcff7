package install

import "golang.org/x/sys/unix"

// FileKind is a tagged variant over the filesystem entry types that the
// core engine is capable of reasoning about. It is derived from the type
// bits of a lstat result.
type FileKind uint8

const (
	// FileKindNone indicates a file type that the core does not support
	// (e.g. a Solaris door or some future type bit unknown to this
	// implementation). Entries of this kind are reported as unsupported by
	// check and never appear in a plan.
	FileKindNone FileKind = iota
	// FileKindRegular is a regular file.
	FileKindRegular
	// FileKindDirectory is a directory.
	FileKindDirectory
	// FileKindSymlink is a symbolic link. Symbolic links are never followed
	// by the core; every stat in this package is an lstat.
	FileKindSymlink
	// FileKindFifo is a named pipe.
	FileKindFifo
	// FileKindBlockDev is a block device node.
	FileKindBlockDev
	// FileKindCharDev is a character device node.
	FileKindCharDev
	// FileKindSocket is a Unix domain socket. A socket encountered in the
	// image is silently skipped during check (it's meaningless without a
	// bound server listening on it); this kind exists only so that the
	// classifier can recognize and discard it.
	FileKindSocket
)

// String returns a human-readable name for the kind, used in progress
// messages and error text.
func (k FileKind) String() string {
	switch k {
	case FileKindRegular:
		return "regular"
	case FileKindDirectory:
		return "directory"
	case FileKindSymlink:
		return "symlink"
	case FileKindFifo:
		return "fifo"
	case FileKindBlockDev:
		return "block device"
	case FileKindCharDev:
		return "character device"
	case FileKindSocket:
		return "socket"
	default:
		return "unsupported"
	}
}

// fileKindFromMode derives a FileKind from the type bits of a raw POSIX
// mode value (as found in unix.Stat_t.Mode).
func fileKindFromMode(mode uint32) FileKind {
	switch mode & unix.S_IFMT {
	case unix.S_IFREG:
		return FileKindRegular
	case unix.S_IFDIR:
		return FileKindDirectory
	case unix.S_IFLNK:
		return FileKindSymlink
	case unix.S_IFIFO:
		return FileKindFifo
	case unix.S_IFBLK:
		return FileKindBlockDev
	case unix.S_IFCHR:
		return FileKindCharDev
	case unix.S_IFSOCK:
		return FileKindSocket
	default:
		return FileKindNone
	}
}
