package install

import "strings"

// PlanEntry is a single scheduled operation.
type PlanEntry struct {
	// Rel is the path relative to the image root (and, equivalently,
	// relative to the destination root).
	Rel string

	// Src is the absolute path currently holding the content to rename
	// from. It starts out as image/Rel and is re-pointed to the entry's
	// shadow path once prepare materializes it.
	Src string
	// Dst is the absolute destination path, root/Rel.
	Dst string

	// SrcKind is the kind of the source entry.
	SrcKind FileKind
	// DstKind is the kind of the pre-existing destination, if any.
	DstKind FileKind
	// DstExists records whether a destination entry exists at all. When
	// false, DstFirstExistingAncestor holds the first existing ancestor of
	// Dst, used to compare device ids when there is no direct destination.
	DstExists bool
	// DstFirstExistingAncestor is populated only when DstExists is false.
	DstFirstExistingAncestor string

	// SrcStat and DstStat are the lstat snapshots backing SrcKind/DstKind.
	// DstStat is nil when DstExists is false; in that case
	// AncestorStat carries the snapshot of DstFirstExistingAncestor.
	SrcStat      *StatSnapshot
	DstStat      *StatSnapshot
	AncestorStat *StatSnapshot

	// wholeDir is true for a directory entry whose destination does not
	// exist: its subtree is shadowed and renamed as a single unit, and its
	// descendants are suppressed from the flat plan.
	wholeDir bool
	// mergeInto is true for a directory entry whose destination already
	// exists as a directory: it produces no rename and no shadow, and its
	// children are scheduled individually.
	mergeInto bool
	// synthetic marks an entry injected by the stray-rename planner rather
	// than derived directly from an image entry.
	synthetic bool
	// wholeDirRoot points at the outermost whole-dir entry this entry is
	// nested under, or nil if this entry is itself top-level (scheduled
	// directly, or a merge-into directory). The shadow materializer uses it
	// to resolve a descendant's shadow path relative to its root's shadow
	// directory rather than its real (not-yet-existing) destination parent.
	wholeDirRoot *PlanEntry
}

// IsWholeDir reports whether e is a whole-dir entry: its destination did not
// exist, so its entire subtree is materialized and renamed as a unit.
func (e *PlanEntry) IsWholeDir() bool { return e.wholeDir }

// IsMergeInto reports whether e is a merge-into entry: its destination
// already exists as a directory, so only e's children are scheduled.
func (e *PlanEntry) IsMergeInto() bool { return e.mergeInto }

// IsSynthetic reports whether e was injected by the stray-rename planner
// rather than derived directly from an image entry.
func (e *PlanEntry) IsSynthetic() bool { return e.synthetic }

// destinationDevice returns the device id to compare against the source
// device when deciding whether a copy (rather than an in-place rename) is
// required. It uses the real destination stat when one exists, and
// otherwise the nearest existing ancestor's stat.
func (e *PlanEntry) destinationDevice() uint64 {
	if e.DstStat != nil {
		return e.DstStat.Device
	}
	return e.AncestorStat.Device
}

// Plan is the in-memory, ordered collection of scheduled operations built by
// check and mutated by prepare. It is discarded after merge completes.
type Plan struct {
	// entries holds the entries that are actually scheduled as top-level
	// renames: the result of collapsing whole-dir subtrees and dropping
	// merge-into directories, in the top-down, lexicographically-sorted-by-
	// Rel order.
	entries []*PlanEntry
	// all holds every entry that survived check's filtering rules
	// (including whole-dir descendants that entries excludes), sorted by
	// Rel. It backs subtree lookups used by the shadow materializer to
	// recurse into a whole-dir entry's contents.
	all []*PlanEntry
	// groups is the hardlink group tracker populated during the walk.
	groups *hardlinkTracker
	// byRel indexes all by Rel, used by the shadow materializer to find an
	// entry's parent-directory entry (if any) when resolving ancestors.
	byRel map[string]*PlanEntry
}

// byRelLookup returns the entry for rel, or nil if rel names something
// outside the plan (the pre-existing destination tree, or the image root).
func (p *Plan) byRelLookup(rel string) *PlanEntry {
	return p.byRel[rel]
}

// subtree returns every entry in all whose Rel is strictly nested under
// rootRel, in Rel order (ascending, depth-first), for use when materializing
// a whole-dir entry's contents as a unit.
func (p *Plan) subtree(rootRel string) []*PlanEntry {
	prefix := rootRel + "/"
	var result []*PlanEntry
	for _, e := range p.all {
		if strings.HasPrefix(e.Rel, prefix) {
			result = append(result, e)
		}
	}
	return result
}

// Entries returns the plan's entries in execution order. The returned slice
// must not be mutated by callers; Prepare ranges over it directly.
func (p *Plan) Entries() []*PlanEntry {
	return p.entries
}

// Len reports the number of entries currently scheduled.
func (p *Plan) Len() int {
	return len(p.entries)
}
