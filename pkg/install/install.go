// Package install implements the atomic image installer core: CHECK,
// PREPARE, and MERGE phases that rename a staged image tree into a live
// destination tree without ever exposing a partially-applied state.
package install

import (
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Installer is the public entry point: it holds the immutable constructor
// inputs and tracks which phase the transaction has reached, enforcing the
// required call order between phases.
type Installer struct {
	image   string
	root    string
	allowed *CollisionAllowance

	// transactionID uniquely identifies this install attempt. It has no
	// bearing on the engine's own correctness; it exists so a caller that
	// persists the prepared filelist across separate process invocations
	// (the CLI's prepare/merge/rollback/replay split) can correlate logs
	// and a reloaded filelist back to the run that produced it.
	transactionID string

	checked     bool
	checkViable bool
	plan        *Plan

	prepared bool
	filelist []*PlanEntry
	moves    []Move

	merged bool
}

// New constructs an Installer for the given image and root, with an
// optional collision allow-list. All three are immutable for the
// Installer's lifetime.
func New(image, root string, allowed *CollisionAllowance) *Installer {
	return &Installer{image: image, root: root, allowed: allowed, transactionID: uuid.NewString()}
}

// TransactionID returns the identifier generated for this Installer at
// construction time.
func (i *Installer) TransactionID() string {
	return i.transactionID
}

// Check runs the CHECK phase. It may be called only once per Installer.
func (i *Installer) Check() (*CheckReport, *Plan, error) {
	report, plan, err := Check(i.image, i.root, i.allowed)
	if err != nil {
		return nil, nil, err
	}
	i.checked = true
	i.checkViable = report.Empty()
	i.plan = plan
	return report, plan, nil
}

// Prepare runs the PREPARE phase: it materializes a ".MERGING-" shadow for
// every scheduled entry, computes the stray-rename predecessors required by
// type-mismatched destinations, and returns the final ordered filelist
// MERGE will execute. progress, if non-nil, is invoked synchronously for
// every step.
func (i *Installer) Prepare(progress ProgressFunc) ([]*PlanEntry, error) {
	if !i.checked || !i.checkViable {
		return nil, &InvalidCallOrder{Attempted: "prepare", Require: "a successful check"}
	}

	shadower := newShadowMaterializer(i.plan, progress)

	var filelist []*PlanEntry
	var moves []Move
	for _, e := range i.plan.Entries() {
		if move := strayPlan(e, i.root); move != nil {
			synthetic := &PlanEntry{
				Rel:       e.Rel,
				Src:       filepath.Join(i.root, e.Rel),
				Dst:       filepath.Join(i.root, move.StrayRel),
				SrcKind:   e.DstKind,
				synthetic: true,
			}
			filelist = append(filelist, synthetic)
			moves = append(moves, *move)
			if progress != nil {
				progress(ProgressEvent{Action: ProgressMove, Path: move.Rel, Detail: move.StrayRel})
			}
		}

		if err := shadower.materialize(e); err != nil {
			return nil, err
		}
		filelist = append(filelist, e)
	}

	i.filelist = filelist
	i.moves = moves
	i.prepared = true
	return filelist, nil
}

// Merge runs the MERGE phase: it executes an ordered rename for every entry
// in the prepared filelist. Each rename is individually
// atomic; a failure partway through leaves the root in a spliced state that
// only Replay, given the persisted filelist, can resolve.
func (i *Installer) Merge() (*MoveList, error) {
	if !i.prepared {
		return nil, &InvalidCallOrder{Attempted: "merge", Require: "prepare"}
	}

	for _, e := range i.filelist {
		if err := unix.Rename(e.Src, e.Dst); err != nil {
			return nil, errors.Wrapf(err, "rename %s -> %s failed", e.Src, e.Dst)
		}
	}

	i.merged = true
	return &MoveList{moves: i.moves}, nil
}

// Cleanup is invoked after a successful Merge. Post-install reattribution of
// sidelined files is an external collaborator's responsibility; the core
// itself has nothing left to do once every rename has landed.
func (i *Installer) Cleanup() error {
	if !i.merged {
		return &InvalidCallOrder{Attempted: "cleanup", Require: "merge"}
	}
	return nil
}

// Filelist returns the filelist produced by the most recent Prepare call,
// for persisting ahead of Merge so that Rollback or Replay can be driven
// from a reloaded copy after a crash.
func (i *Installer) Filelist() []*PlanEntry {
	return i.filelist
}
