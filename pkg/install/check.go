package install

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Check report category names.
const (
	CategoryNotSupported        = "notsupported"
	CategoryNotSupportedReplace = "notsupportedreplace"
	CategoryCollision           = "collision"
	CategoryUnacceptable        = "unacceptable"
	CategoryLeftoverStray       = "leftoverstray"
)

// categoryOrder fixes the iteration order used when rendering a report, so
// that output (and the Empty/Categories accessors) is deterministic.
var categoryOrder = []string{
	CategoryNotSupported,
	CategoryNotSupportedReplace,
	CategoryCollision,
	CategoryUnacceptable,
	CategoryLeftoverStray,
}

// CheckReport is a mapping from problem category to the list of offending
// image-relative paths. An empty report (every category empty) means the
// plan is viable and prepare may proceed.
type CheckReport struct {
	categories map[string][]string
}

// newCheckReport creates a report with every category present (possibly
// empty), so callers can range over Categories() without a presence check.
func newCheckReport() *CheckReport {
	r := &CheckReport{categories: make(map[string][]string, len(categoryOrder))}
	for _, name := range categoryOrder {
		r.categories[name] = nil
	}
	return r
}

func (r *CheckReport) add(category, rel string) {
	r.categories[category] = append(r.categories[category], rel)
}

// Paths returns the offending paths recorded under category.
func (r *CheckReport) Paths(category string) []string {
	return r.categories[category]
}

// Empty reports whether every category in the report is empty, i.e. whether
// the plan it accompanies is viable.
func (r *CheckReport) Empty() bool {
	for _, name := range categoryOrder {
		if len(r.categories[name]) > 0 {
			return false
		}
	}
	return true
}

// Categories returns the fixed, deterministic category name ordering used
// by this report.
func Categories() []string {
	out := make([]string, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Check implements the CHECK phase: it walks the image, classifies every
// entry, detects collisions/unsupported types/leftover debris, and builds
// an in-memory plan. It returns a non-nil error only for FilesystemChanged
// (or an unexpected underlying failure); a non-viable plan is communicated
// via a non-empty CheckReport, not an error.
func Check(image, root string, allowed *CollisionAllowance) (*CheckReport, *Plan, error) {
	rawEntries, err := walkImage(image, root)
	if err != nil {
		return nil, nil, err
	}

	report := newCheckReport()
	tracker := newHardlinkTracker()
	var kept []*PlanEntry

	for _, e := range rawEntries {
		base := filepath.Base(e.Rel)
		if isReservedName(base) {
			// Still added to the plan; it will be caught by the final gate.
			report.add(CategoryUnacceptable, e.Rel)
		}

		switch e.SrcKind {
		case FileKindNone:
			report.add(CategoryNotSupported, e.Rel)
			continue
		case FileKindSocket:
			continue
		}

		if e.DstExists {
			switch {
			case e.DstKind == FileKindNone:
				// The existing destination is of a kind this core can't
				// reason about; it's not safe to decide whether it should
				// be merged, replaced, or strayed, so refuse up front.
				report.add(CategoryNotSupportedReplace, e.Rel)
				continue
			case e.DstKind == e.SrcKind && e.SrcKind == FileKindDirectory:
				e.mergeInto = true
			case e.DstKind == e.SrcKind:
				// Same-kind replacement: a direct atomic rename will
				// overwrite the existing entry, so this is gated by the
				// collision allow-list.
				if !allowed.allows(e.Rel) {
					report.add(CategoryCollision, e.Rel)
					continue
				}
			default:
				// Type mismatch: handled by the stray planner during
				// prepare, unless debris from a prior aborted run already
				// occupies the stray slot.
				dir := filepath.Dir(e.Rel)
				strayRel := filepath.Join(dir, strayName(base))
				strayPath := filepath.Join(root, strayRel)
				if _, err := os.Lstat(strayPath); err == nil {
					report.add(CategoryLeftoverStray, e.Rel)
					continue
				}
			}
		}

		if e.SrcKind == FileKindDirectory && !e.mergeInto {
			e.wholeDir = true
		}
		if e.SrcKind != FileKindDirectory {
			tracker.observe(e)
		}

		kept = append(kept, e)
	}

	byRel := make(map[string]*PlanEntry, len(kept))
	for _, e := range kept {
		byRel[e.Rel] = e
	}

	plan := &Plan{all: kept, groups: tracker, byRel: byRel}
	plan.entries = scheduledEntries(kept)

	return report, plan, nil
}

// scheduledEntries collapses whole-dir subtrees and drops merge-into
// directories, producing the flat, ordered list of entries that actually
// get a shadow/rename. Every suppressed descendant has its wholeDirRoot set
// to the outermost whole-dir ancestor that absorbed it, so the shadow
// materializer can later resolve its shadow path.
type wholeDirRoot struct {
	entry  *PlanEntry
	prefix string
}

func scheduledEntries(all []*PlanEntry) []*PlanEntry {
	sort.Slice(all, func(i, j int) bool { return all[i].Rel < all[j].Rel })

	var roots []wholeDirRoot
	var result []*PlanEntry
	for _, e := range all {
		if r, ok := rootUnder(e.Rel, roots); ok {
			e.wholeDirRoot = r
			continue
		}
		if e.mergeInto {
			// Produces no rename and no shadow; only its children (already
			// present in all, not suppressed since this isn't a whole-dir
			// prefix) are scheduled individually.
			continue
		}
		result = append(result, e)
		if e.wholeDir {
			roots = append(roots, wholeDirRoot{entry: e, prefix: e.Rel + "/"})
		}
	}
	return result
}

// rootUnder reports whether rel is nested under one of the given whole-dir
// roots, returning that root's entry.
func rootUnder(rel string, roots []wholeDirRoot) (*PlanEntry, bool) {
	for _, r := range roots {
		if strings.HasPrefix(rel, r.prefix) {
			return r.entry, true
		}
	}
	return nil, false
}
