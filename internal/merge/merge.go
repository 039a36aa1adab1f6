// Package merge implements the reconciliation of a client's full-text
// submission into the authoritative document text.
//
// A client never sends a minimal diff; it sends its entire current editor
// state. The reconciler derives context-anchored patches describing how the
// client's text diverges from the text the server last knew, then replays
// those patches against whatever the document has become in the meantime.
// Patches whose anchoring context can no longer be located are skipped
// rather than corrupting the document.
package merge

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Result reports the outcome of one reconciliation pass.
type Result struct {
	// Text is the new authoritative text.
	Text string

	// Applied is the number of patches that located their context.
	Applied int

	// Skipped is the number of patches whose context could not be found
	// within the match tolerance.
	Skipped int
}

// Reconciler merges divergent full-text submissions using diff-match-patch.
// It is stateless and safe for concurrent use.
type Reconciler struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewReconciler creates a reconciler with default match tolerances.
func NewReconciler() *Reconciler {
	return &Reconciler{dmp: diffmatchpatch.New()}
}

// Merge computes the patches that turn base into clientText and applies
// them to current, which may have drifted from base if another client's
// edit landed first. Application is best effort: each patch is attempted
// at its recorded offset, then at nearby offsets, then by fuzzy context
// match; a patch that cannot be located is dropped.
func (r *Reconciler) Merge(base, clientText, current string) Result {
	if clientText == base {
		return Result{Text: current}
	}

	patches := r.dmp.PatchMake(base, clientText)
	merged, applied := r.dmp.PatchApply(patches, current)

	result := Result{Text: merged}

	for _, ok := range applied {
		if ok {
			result.Applied++
		} else {
			result.Skipped++
		}
	}

	return result
}
