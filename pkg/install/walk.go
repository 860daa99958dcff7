package install

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// walkImage traverses the image tree and produces one raw PlanEntry per
// directory/file encountered: a pure image walk and classification pass.
// Reserved-name, collision, and leftover-stray rules are not applied here;
// they run as a second pass in check.go over the entries this function
// returns, so that the walk itself stays a pure traversal-and-classification
// step.
//
// Entries are returned sorted by Rel, matching the ordering the final
// rename list requires (a whole-dir entry always sorts before its
// descendants).
func walkImage(image, root string) ([]*PlanEntry, error) {
	var entries []*PlanEntry

	err := filepath.WalkDir(image, func(fp string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if fp == image {
			return nil
		}

		rel, err := filepath.Rel(image, fp)
		if err != nil {
			return errors.Wrapf(err, "unable to compute relative path for %s", fp)
		}

		dst := filepath.Join(root, rel)

		srcStat, err := lstatSnapshot(fp)
		if err != nil {
			// The image is expected to be quiescent for the duration of
			// check; an entry disappearing out from under us means it's
			// being mutated concurrently, which aborts the
			// whole transaction rather than being silently tolerated.
			return &FilesystemChanged{Path: rel}
		}

		entry := &PlanEntry{
			Rel:     rel,
			Src:     fp,
			Dst:     dst,
			SrcKind: srcStat.Kind,
			SrcStat: srcStat,
		}

		if dstStat, err := lstatSnapshot(dst); err == nil {
			entry.DstExists = true
			entry.DstKind = dstStat.Kind
			entry.DstStat = dstStat
		} else if os.IsNotExist(err) {
			ancestor, ancestorStat, ancErr := nearestExistingAncestor(dst)
			if ancErr != nil {
				return ancErr
			}
			entry.DstFirstExistingAncestor = ancestor
			entry.AncestorStat = ancestorStat
		} else {
			return errors.Wrapf(err, "unable to stat destination %s", dst)
		}

		entries = append(entries, entry)

		// A directory entry whose kind we don't recognize (FileKindNone)
		// can't be descended into meaningfully via lstat-based typing, but
		// WalkDir already determined d.IsDir() from the same underlying
		// directory entry type, so descent behaves correctly regardless.
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Rel < entries[j].Rel
	})

	return entries, nil
}
