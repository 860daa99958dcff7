package install

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/mutagen-io/atomicimage/pkg/logging"
)

// lstatOrFatal lstats path or fails the test, returning the raw syscall
// stat structure so callers can compare device/inode pairs directly.
func lstatOrFatal(t *testing.T, path string) unix.Stat_t {
	t.Helper()
	var raw unix.Stat_t
	if err := unix.Lstat(path, &raw); err != nil {
		t.Fatalf("lstat %s failed: %v", path, err)
	}
	return raw
}

func TestInstallerFreshInstallEndToEnd(t *testing.T) {
	image := t.TempDir()
	root := t.TempDir()

	mustWriteFile(t, filepath.Join(image, "usr/bin/app"), "binary")
	mustWriteFile(t, filepath.Join(image, "usr/share/doc/readme"), "docs")

	installer := New(image, root, nil)

	report, _, err := installer.Check()
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !report.Empty() {
		t.Fatalf("expected clean report, got %+v", report)
	}

	var events []ProgressEvent
	filelist, err := installer.Prepare(func(e ProgressEvent) { events = append(events, e) })
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if len(filelist) != 1 {
		t.Fatalf("expected 1 filelist entry, got %d", len(filelist))
	}
	// Materializing the whole-dir "usr" shadow also materializes every
	// descendant (usr/bin, usr/bin/app, usr/share, usr/share/doc,
	// usr/share/doc/readme) inside it, each reporting its own progress
	// event, even though only the root gets a top-level filelist entry.
	if len(events) != 6 {
		t.Fatalf("expected 6 install progress events (root + 5 descendants), got %+v", events)
	}
	for _, e := range events {
		if e.Action != ProgressInstall {
			t.Fatalf("expected only install progress events, got %+v", e)
		}
	}

	if _, err := installer.Merge(); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if err := installer.Cleanup(); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(root, "usr/bin/app"))
	if err != nil {
		t.Fatalf("unable to read installed file: %v", err)
	}
	if string(content) != "binary" {
		t.Fatalf("unexpected installed content: %q", content)
	}
	if _, err := os.Stat(filepath.Join(root, "usr/share/doc/readme")); err != nil {
		t.Fatalf("expected nested file to be installed: %v", err)
	}

	// Every shadow must have been consumed by the final rename; nothing
	// with the reserved prefix should remain.
	entries, _ := os.ReadDir(root)
	for _, entry := range entries {
		if isReservedName(entry.Name()) {
			t.Fatalf("leftover reserved-name entry after merge: %s", entry.Name())
		}
	}
}

func TestInstallerMergeIntoExistingDirectory(t *testing.T) {
	image := t.TempDir()
	root := t.TempDir()

	mustMkdir(t, filepath.Join(root, "etc"))
	mustWriteFile(t, filepath.Join(root, "etc/existing.conf"), "keep me")
	mustWriteFile(t, filepath.Join(image, "etc/app.conf"), "new config")

	installer := New(image, root, nil)
	if _, _, err := installer.Check(); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if _, err := installer.Prepare(nil); err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if _, err := installer.Merge(); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "etc/existing.conf")); err != nil {
		t.Fatalf("expected pre-existing sibling to survive merge-into: %v", err)
	}
	content, err := os.ReadFile(filepath.Join(root, "etc/app.conf"))
	if err != nil || string(content) != "new config" {
		t.Fatalf("expected new config installed, got %q, err %v", content, err)
	}
}

func TestInstallerStraySidelining(t *testing.T) {
	image := t.TempDir()
	root := t.TempDir()

	mustMkdir(t, filepath.Join(image, "var/log"))
	mustWriteFile(t, filepath.Join(root, "var/log"), "old log file")

	installer := New(image, root, nil)
	report, _, err := installer.Check()
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !report.Empty() {
		t.Fatalf("expected clean report, got %+v", report)
	}

	var events []ProgressEvent
	if _, err := installer.Prepare(func(e ProgressEvent) { events = append(events, e) }); err != nil {
		t.Fatalf("prepare failed: %v", err)
	}

	var sawMove bool
	for _, e := range events {
		if e.Action == ProgressMove {
			sawMove = true
			if e.Path != "var/log" || e.Detail != "var/.STRAY-log" {
				t.Fatalf("unexpected move event: %+v", e)
			}
		}
	}
	if !sawMove {
		t.Fatalf("expected a move progress event, got %+v", events)
	}

	moves, err := installer.Merge()
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if len(moves.Moves()) != 1 || moves.Moves()[0].StrayRel != "var/.STRAY-log" {
		t.Fatalf("expected one stray move recorded, got %+v", moves.Moves())
	}

	if _, err := os.Stat(filepath.Join(root, "var/.STRAY-log")); err != nil {
		t.Fatalf("expected old file sidelined to stray path: %v", err)
	}
	info, err := os.Stat(filepath.Join(root, "var/log"))
	if err != nil {
		t.Fatalf("expected new directory installed at var/log: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("expected var/log to now be a directory")
	}
}

func TestInstallerHardlinkGroupPreserved(t *testing.T) {
	image := t.TempDir()
	root := t.TempDir()

	mustWriteFile(t, filepath.Join(image, "bin/tool"), "payload")
	if err := os.Link(filepath.Join(image, "bin/tool"), filepath.Join(image, "bin/tool-alias")); err != nil {
		t.Fatalf("unable to create hardlink fixture: %v", err)
	}

	installer := New(image, root, nil)
	if _, _, err := installer.Check(); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if _, err := installer.Prepare(nil); err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if _, err := installer.Merge(); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	a := lstatOrFatal(t, filepath.Join(root, "bin/tool"))
	b := lstatOrFatal(t, filepath.Join(root, "bin/tool-alias"))
	if a.Ino != b.Ino || a.Dev != b.Dev {
		t.Fatalf("expected hardlink group preserved at destination, got distinct inodes %d, %d", a.Ino, b.Ino)
	}
	if a.Nlink < 2 {
		t.Fatalf("expected link count >= 2, got %d", a.Nlink)
	}
}

func TestInstallerRollbackRemovesShadows(t *testing.T) {
	image := t.TempDir()
	root := t.TempDir()

	mustWriteFile(t, filepath.Join(image, "a/b"), "content")

	installer := New(image, root, nil)
	if _, _, err := installer.Check(); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	filelist, err := installer.Prepare(nil)
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}

	// Abort before merge: the shadow should exist under root, and nothing
	// should appear at the final destination yet.
	if _, err := os.Stat(filepath.Join(root, "a")); err == nil {
		t.Fatalf("destination should not exist before merge")
	}

	Rollback(filelist, logging.RootLogger.Sublogger("test"))

	entries, _ := os.ReadDir(root)
	if len(entries) != 0 {
		t.Fatalf("expected rollback to remove all shadows, found %+v", entries)
	}
}

func TestInstallerReplayIsIdempotent(t *testing.T) {
	image := t.TempDir()
	root := t.TempDir()

	mustWriteFile(t, filepath.Join(image, "a"), "content")

	installer := New(image, root, nil)
	if _, _, err := installer.Check(); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	filelist, err := installer.Prepare(nil)
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}

	// First replay performs the rename that merge would have performed.
	if err := Replay(filelist); err != nil {
		t.Fatalf("first replay failed: %v", err)
	}
	content, err := os.ReadFile(filepath.Join(root, "a"))
	if err != nil || string(content) != "content" {
		t.Fatalf("expected file installed after replay, got %q, err %v", content, err)
	}

	// A second replay against the same (now-consumed) filelist must be a
	// no-op rather than failing because the shadow source is gone.
	if err := Replay(filelist); err != nil {
		t.Fatalf("second replay should be idempotent, got: %v", err)
	}
}

func TestInstallerSymlinkAndFifo(t *testing.T) {
	image := t.TempDir()
	root := t.TempDir()

	if err := os.Symlink("/usr/bin/app", filepath.Join(image, "link")); err != nil {
		t.Fatalf("unable to create symlink fixture: %v", err)
	}
	if err := unix.Mkfifo(filepath.Join(image, "pipe"), 0644); err != nil {
		t.Fatalf("unable to create fifo fixture: %v", err)
	}

	installer := New(image, root, nil)
	if _, _, err := installer.Check(); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if _, err := installer.Prepare(nil); err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if _, err := installer.Merge(); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	target, err := os.Readlink(filepath.Join(root, "link"))
	if err != nil || target != "/usr/bin/app" {
		t.Fatalf("expected symlink preserved, got %q, err %v", target, err)
	}

	info := lstatOrFatal(t, filepath.Join(root, "pipe"))
	if info.Mode&unix.S_IFMT != unix.S_IFIFO {
		t.Fatalf("expected installed pipe to remain a fifo, got mode %o", info.Mode)
	}
}

func TestInstallerInvalidCallOrder(t *testing.T) {
	image := t.TempDir()
	root := t.TempDir()

	installer := New(image, root, nil)
	if _, err := installer.Prepare(nil); err == nil {
		t.Fatal("expected prepare before check to fail")
	}

	if _, _, err := installer.Check(); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if _, err := installer.Merge(); err == nil {
		t.Fatal("expected merge before prepare to fail")
	}
}
