package install

import (
	"os"
	"path/filepath"
	"testing"
)

// mustMkdir creates a directory (and its parents) or fails the test.
func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("unable to create directory %s: %v", path, err)
	}
}

// mustWriteFile creates a regular file with the given content or fails the
// test.
func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("unable to create parent directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("unable to write file %s: %v", path, err)
	}
}

func TestCheckFreshInstall(t *testing.T) {
	image := t.TempDir()
	root := t.TempDir()

	mustWriteFile(t, filepath.Join(image, "usr/bin/app"), "binary")

	report, plan, err := Check(image, root, nil)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !report.Empty() {
		t.Fatalf("expected clean report, got %+v", report)
	}

	// "usr" doesn't exist at the destination, so it should be scheduled as
	// a single whole-dir entry; "usr/bin" and "usr/bin/app" are absorbed
	// into its subtree rather than scheduled individually.
	if plan.Len() != 1 {
		t.Fatalf("expected 1 scheduled entry, got %d", plan.Len())
	}
	entry := plan.Entries()[0]
	if entry.Rel != "usr" || !entry.IsWholeDir() {
		t.Fatalf("expected whole-dir entry for usr, got %+v", entry)
	}
}

func TestCheckMergeIntoExistingDirectory(t *testing.T) {
	image := t.TempDir()
	root := t.TempDir()

	mustMkdir(t, filepath.Join(root, "etc"))
	mustWriteFile(t, filepath.Join(image, "etc/app.conf"), "config")

	report, plan, err := Check(image, root, nil)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !report.Empty() {
		t.Fatalf("expected clean report, got %+v", report)
	}

	if plan.Len() != 1 || plan.Entries()[0].Rel != "etc/app.conf" {
		t.Fatalf("expected only etc/app.conf scheduled, got %+v", plan.Entries())
	}
}

func TestCheckTypeMismatchIsClean(t *testing.T) {
	image := t.TempDir()
	root := t.TempDir()

	mustMkdir(t, filepath.Join(image, "var/log"))
	mustWriteFile(t, filepath.Join(root, "var/log"), "old log file")

	report, plan, err := Check(image, root, nil)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !report.Empty() {
		t.Fatalf("expected clean report, got %+v", report)
	}
	if plan.Len() != 1 || plan.Entries()[0].Rel != "var/log" {
		t.Fatalf("expected var/log scheduled, got %+v", plan.Entries())
	}
}

func TestCheckLeftoverStrayHalts(t *testing.T) {
	image := t.TempDir()
	root := t.TempDir()

	mustMkdir(t, filepath.Join(image, "var/log"))
	mustWriteFile(t, filepath.Join(root, "var/log"), "old log file")
	mustWriteFile(t, filepath.Join(root, "var/.STRAY-log"), "debris from a prior aborted run")

	report, _, err := Check(image, root, nil)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if report.Empty() {
		t.Fatal("expected leftoverstray to be reported")
	}
	paths := report.Paths(CategoryLeftoverStray)
	if len(paths) != 1 || paths[0] != "var/log" {
		t.Fatalf("expected leftoverstray for var/log, got %v", paths)
	}
}

func TestCheckCollisionWithoutAllowance(t *testing.T) {
	image := t.TempDir()
	root := t.TempDir()

	mustWriteFile(t, filepath.Join(image, "a"), "new")
	mustWriteFile(t, filepath.Join(root, "a"), "old")

	report, _, err := Check(image, root, nil)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	paths := report.Paths(CategoryCollision)
	if len(paths) != 1 || paths[0] != "a" {
		t.Fatalf("expected collision for a, got %v", paths)
	}
}

func TestCheckCollisionWithAllowance(t *testing.T) {
	image := t.TempDir()
	root := t.TempDir()

	mustWriteFile(t, filepath.Join(image, "a"), "new")
	mustWriteFile(t, filepath.Join(root, "a"), "old")

	allowed, err := NewCollisionAllowance([]string{"a"})
	if err != nil {
		t.Fatalf("unable to build collision allowance: %v", err)
	}

	report, plan, err := Check(image, root, allowed)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !report.Empty() {
		t.Fatalf("expected clean report, got %+v", report)
	}
	if plan.Len() != 1 || plan.Entries()[0].Rel != "a" {
		t.Fatalf("expected a scheduled, got %+v", plan.Entries())
	}
}

func TestCheckReservedNameIsUnacceptable(t *testing.T) {
	image := t.TempDir()
	root := t.TempDir()

	mustWriteFile(t, filepath.Join(image, ".MERGING-a"), "whatever")

	report, _, err := Check(image, root, nil)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	paths := report.Paths(CategoryUnacceptable)
	if len(paths) != 1 || paths[0] != ".MERGING-a" {
		t.Fatalf("expected unacceptable for .MERGING-a, got %v", paths)
	}
}
