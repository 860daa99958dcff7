package install

import (
	"os"

	"github.com/mutagen-io/atomicimage/pkg/logging"
	"github.com/mutagen-io/atomicimage/pkg/must"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Rollback may only be called before any MERGE rename has occurred, and it
// removes every
// ".MERGING-" shadow referenced in filelist without touching anything else
// the root already owns. Synthetic stray entries are skipped: their source
// is the pre-existing destination itself, not a shadow, and must survive.
// Removal is best-effort per entry: one shadow failing to go away shouldn't
// stop the rest of the cleanup from running, so failures are logged rather
// than aborting the pass.
func Rollback(filelist []*PlanEntry, logger *logging.Logger) {
	for _, e := range filelist {
		if e.synthetic {
			continue
		}
		must.RemoveAll(e.Src, logger)
	}
}

// Replay reissues rename for every entry whose destination is still missing or
// whose source shadow still exists, so that resuming an interrupted MERGE is
// idempotent with respect to renames it already completed.
func Replay(filelist []*PlanEntry) error {
	for _, e := range filelist {
		_, srcErr := os.Lstat(e.Src)
		srcExists := srcErr == nil
		_, dstErr := os.Lstat(e.Dst)
		dstExists := dstErr == nil

		if dstExists && !srcExists {
			// Already consumed by a prior MERGE or replay attempt.
			continue
		}
		if e.synthetic && dstExists {
			// The stray slot is occupied, so this sidelining already ran
			// (check refuses to proceed over a leftover stray); its source
			// path now holds the newly installed entry.
			continue
		}

		if err := unix.Rename(e.Src, e.Dst); err != nil {
			return errors.Wrapf(err, "replay rename %s -> %s failed", e.Src, e.Dst)
		}
	}
	return nil
}
