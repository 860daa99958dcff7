package install

import "path/filepath"

// MoveList records the sequence of stray-rename operations planned during
// prepare and carried out by merge: each entry's pre-existing, type-mismatched destination was
// sidelined to a ".STRAY-" sibling rather than being deleted outright.
type MoveList struct {
	moves []Move
}

// Move is a single sidelining: the destination-relative path that used to
// hold something of a different kind now lives at StrayRel.
type Move struct {
	// Rel is the image-relative path whose destination was sidelined.
	Rel string
	// StrayRel is the path (relative to root) the old destination entry was
	// renamed to.
	StrayRel string
}

// Moves returns the recorded stray renames, in the order they were
// performed.
func (l *MoveList) Moves() []Move {
	return l.moves
}

// strayPlan computes the synthetic rename entry needed to sideline e's
// pre-existing, type-mismatched destination before e's own shadow can be
// renamed into place. It returns nil if e doesn't need one (its destination
// either doesn't exist, or exists as the same kind).
func strayPlan(e *PlanEntry, root string) *Move {
	if !e.DstExists || e.DstKind == e.SrcKind {
		return nil
	}
	dir := filepath.Dir(e.Rel)
	strayRel := filepath.Join(dir, strayName(filepath.Base(e.Rel)))
	return &Move{Rel: e.Rel, StrayRel: strayRel}
}
