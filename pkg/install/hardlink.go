package install

// inodeKey identifies a source inode for hardlink-group tracking. Two
// entries share a hardlink group if and only if they share both device and
// inode number, following the {dev,inode} keying used to group hardlinked
// manifest entries.
type inodeKey struct {
	device uint64
	inode  uint64
}

// hardlinkTracker groups non-directory plan entries by source inode so that
// hardlink topology present in the image can be preserved across the copy
// boundary.
type hardlinkTracker struct {
	groups map[inodeKey][]*PlanEntry
}

// newHardlinkTracker creates an empty tracker.
func newHardlinkTracker() *hardlinkTracker {
	return &hardlinkTracker{groups: make(map[inodeKey][]*PlanEntry)}
}

// observe records a non-directory plan entry against its source inode. It
// must be called in walk order so that the first entry recorded for a given
// inode becomes that group's representative.
func (t *hardlinkTracker) observe(e *PlanEntry) {
	key := inodeKey{device: e.SrcStat.Device, inode: e.SrcStat.Inode}
	t.groups[key] = append(t.groups[key], e)
}

// group returns the full set of entries sharing e's source inode, including
// e itself. The slice is ordered by walk order, so index 0 is always the
// group's representative.
func (t *hardlinkTracker) group(e *PlanEntry) []*PlanEntry {
	key := inodeKey{device: e.SrcStat.Device, inode: e.SrcStat.Inode}
	return t.groups[key]
}

// isRepresentative reports whether e is the representative (lead entry) of
// its hardlink group: the first entry encountered during the walk for its
// source inode. This is well-defined independent of pointer or object
// identity.
func (t *hardlinkTracker) isRepresentative(e *PlanEntry) bool {
	group := t.group(e)
	return len(group) <= 1 || group[0] == e
}

// imageLocalLinkCount returns the number of image entries sharing e's source
// inode, used to detect inodes with additional links living outside the
// image: the image-local hardlink group size is smaller than the inode's
// on-disk link count.
func (t *hardlinkTracker) imageLocalLinkCount(e *PlanEntry) int {
	return len(t.group(e))
}
