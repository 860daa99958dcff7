package install

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// shadowMaterializer builds a full, renameable shadow copy of every
// scheduled entry under a ".MERGING-"
// sibling of its eventual destination, without touching anything the
// existing root tree already owns.
//
// Entries are materialized on demand and memoized, so that hardlink
// followers can force their group's representative to exist first
// regardless of the order the caller happens to visit entries in.
type shadowMaterializer struct {
	plan     *Plan
	progress ProgressFunc

	shadowPaths map[*PlanEntry]string
	done        map[*PlanEntry]bool
}

func newShadowMaterializer(plan *Plan, progress ProgressFunc) *shadowMaterializer {
	return &shadowMaterializer{
		plan:        plan,
		progress:    progress,
		shadowPaths: make(map[*PlanEntry]string),
		done:        make(map[*PlanEntry]bool),
	}
}

// shadowPathFor computes the path at which e's shadow will live (or already
// lives). It is pure: it performs no I/O and may be called before e has been
// materialized.
func (m *shadowMaterializer) shadowPathFor(e *PlanEntry) string {
	if path, ok := m.shadowPaths[e]; ok {
		return path
	}
	var path string
	if e.wholeDirRoot != nil {
		rootShadow := m.shadowPathFor(e.wholeDirRoot)
		suffix := e.Rel[len(e.wholeDirRoot.Rel):]
		path = rootShadow + suffix
	} else {
		path = filepath.Join(filepath.Dir(e.Dst), shadowName(filepath.Base(e.Dst)))
	}
	m.shadowPaths[e] = path
	return path
}

// materialize builds e's shadow (and, transitively, the shadow of any
// ancestor directory and any hardlink representative it depends on), then
// repoints e.Src at the shadow path. It is idempotent.
func (m *shadowMaterializer) materialize(e *PlanEntry) error {
	if m.done[e] {
		return nil
	}

	if err := m.ensureAncestor(e); err != nil {
		return err
	}
	// Materializing a whole-dir ancestor materializes its entire subtree,
	// which may already have included e.
	if m.done[e] {
		return nil
	}

	path := m.shadowPathFor(e)

	// A prior aborted run may have left debris under this shadow path; the
	// ".MERGING-" namespace belongs exclusively to the core, so it's always
	// safe to clear it before materializing.
	if err := os.RemoveAll(path); err != nil {
		return errors.Wrapf(err, "unable to clear stale shadow at %s", path)
	}

	// Mark e before building its content: a whole-dir entry materializes its
	// descendants from within materializeContent, and each descendant's
	// ensureAncestor leads back here.
	m.done[e] = true
	if err := m.materializeContent(e, path); err != nil {
		return err
	}

	if e.SrcKind != FileKindSymlink {
		if err := applyMetadata(path, e.SrcStat); err != nil {
			return err
		}
	}

	e.Src = path
	return nil
}

// ensureAncestor makes sure e's parent directory entry (if any is tracked by
// the plan) has itself been materialized, so that e's own shadow path is
// guaranteed to exist by the time it's created.
func (m *shadowMaterializer) ensureAncestor(e *PlanEntry) error {
	parentRel := filepath.Dir(e.Rel)
	if parentRel == "." {
		return nil
	}
	parent := m.plan.byRelLookup(parentRel)
	if parent == nil || parent.IsMergeInto() {
		// The parent is either a merge-into directory or an unrelated
		// pre-existing ancestor; either way it already exists on disk.
		return nil
	}
	return m.materialize(parent)
}

func (m *shadowMaterializer) materializeContent(e *PlanEntry, path string) error {
	if e.SrcKind != FileKindDirectory && m.plan.groups.imageLocalLinkCount(e) > 1 && !m.plan.groups.isRepresentative(e) {
		return m.materializeFollower(e, path)
	}

	switch e.SrcKind {
	case FileKindDirectory:
		if err := unix.Mkdir(path, e.SrcStat.permissionBits()); err != nil {
			return errors.Wrapf(err, "unable to create shadow directory %s", path)
		}
		m.report("install", e.Rel, "")
		// A whole-dir entry's descendants are suppressed from the plan's
		// top-level entries and so are never otherwise passed to
		// materialize; materialize them here, under this directory's own
		// shadow, before MERGE renames the whole subtree into place as a
		// unit. Only the outermost root does this: its subtree already
		// includes every nested directory and file, so letting a nested
		// directory repeat the walk would just redo the same work.
		if e.IsWholeDir() && e.wholeDirRoot == nil {
			for _, child := range m.plan.subtree(e.Rel) {
				if err := m.materialize(child); err != nil {
					return err
				}
			}
		}
	case FileKindRegular:
		if needsCopy(e, m.plan.groups) {
			if err := copyRegularFile(e.Src, path, e.SrcStat.permissionBits()); err != nil {
				return err
			}
		} else if err := unix.Link(e.Src, path); err != nil {
			return errors.Wrapf(err, "unable to link shadow %s from image source %s", path, e.Src)
		}
		m.report("install", e.Rel, "")
	case FileKindSymlink:
		target, err := os.Readlink(e.Src)
		if err != nil {
			return errors.Wrapf(err, "unable to read symlink %s", e.Src)
		}
		if err := unix.Symlink(target, path); err != nil {
			return errors.Wrapf(err, "unable to create shadow symlink %s", path)
		}
		m.report("link", e.Rel, target)
	case FileKindFifo:
		if err := unix.Mkfifo(path, e.SrcStat.permissionBits()); err != nil {
			return errors.Wrapf(err, "unable to create shadow fifo %s", path)
		}
		m.report("install", e.Rel, "")
	case FileKindBlockDev, FileKindCharDev:
		mode := e.SrcStat.permissionBits()
		if e.SrcKind == FileKindBlockDev {
			mode |= unix.S_IFBLK
		} else {
			mode |= unix.S_IFCHR
		}
		if err := unix.Mknod(path, mode, int(e.SrcStat.Rdev)); err != nil {
			return errors.Wrapf(err, "unable to create shadow device node %s", path)
		}
		m.report("install", e.Rel, "")
	default:
		return &internalInvariantViolation{path: e.Rel, kind: e.SrcKind}
	}
	return nil
}

// materializeFollower links e's shadow to its hardlink group's
// representative, forcing the representative to be materialized first if it
// hasn't been already.
func (m *shadowMaterializer) materializeFollower(e *PlanEntry, path string) error {
	rep := m.plan.groups.group(e)[0]
	if err := m.materialize(rep); err != nil {
		return err
	}
	repPath := m.shadowPathFor(rep)
	if err := unix.Link(repPath, path); err != nil {
		return errors.Wrapf(err, "unable to link shadow %s to hardlink representative %s", path, repPath)
	}
	m.report("install", e.Rel, "")
	return nil
}

func (m *shadowMaterializer) report(action, rel, detail string) {
	if m.progress != nil {
		m.progress(ProgressEvent{Action: action, Path: rel, Detail: detail})
	}
}

// applyMetadata copies ownership, permission bits, and timestamps from src
// onto a freshly materialized shadow path. Symlinks are excluded by the
// caller, since lchown/lchmod semantics differ and image symlinks rarely
// carry meaningful metadata beyond their target.
func applyMetadata(path string, src *StatSnapshot) error {
	if err := os.Chown(path, int(src.UID), int(src.GID)); err != nil {
		return errors.Wrapf(err, "unable to set ownership on %s", path)
	}
	if err := os.Chmod(path, os.FileMode(src.permissionBits())); err != nil {
		return errors.Wrapf(err, "unable to set permissions on %s", path)
	}
	if err := os.Chtimes(path, src.Atime, src.Mtime); err != nil {
		return errors.Wrapf(err, "unable to set timestamps on %s", path)
	}
	return nil
}

// copyRegularFile copies src's contents to dst, creating dst with the given
// permission bits. It's used whenever a regular file can't simply be
// hardlinked into place (cross-device, or insufficient on-disk link count).
func copyRegularFile(src, dst string, perm uint32) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "unable to open source file %s", src)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, os.FileMode(perm))
	if err != nil {
		return errors.Wrapf(err, "unable to create shadow file %s", dst)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrapf(err, "unable to copy %s to %s", src, dst)
	}
	return nil
}

// needsCopy reports whether e's content must be copied rather than moved
// in-place: either its source and destination devices differ, or the
// image-local hardlink group undercounts the inode's real on-disk link
// count (meaning links exist outside the image that an in-place rename
// would silently sever). Both conditions are evaluated once, here, rather
// than scattering the check across callers.
func needsCopy(e *PlanEntry, tracker *hardlinkTracker) bool {
	if e.SrcStat.Device != e.destinationDevice() {
		return true
	}
	return tracker.imageLocalLinkCount(e) < int(e.SrcStat.Nlink)
}
