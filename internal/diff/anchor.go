package diff

import (
	"github.com/gavelbot/gavel/internal/model"
	"github.com/maxbolgarin/errm"
)

// AnchorFor derives the line range an inline comment should target for one
// patched file: the hunk with the most added lines (first on ties) anchors
// the comment on its added range on the new side of the diff.
//
// The same formula applies to added and modified files:
//
//	start = hunk.target_start
//	end   = hunk.target_start + hunk.added - 1
//
// so the result always satisfies start <= end and stays inside the selected
// hunk's target range.
//
// A file without hunks or without added lines is a precondition violation
// (the classifier only passes files with added lines) and fails loudly
// rather than anchoring to line 0.
func AnchorFor(pf *PatchedFile) (model.LineAnchor, error) {
	if len(pf.Hunks) == 0 {
		return model.LineAnchor{}, errm.New("file has no hunks: %s", pf.Path)
	}

	best := pf.Hunks[0]
	for _, h := range pf.Hunks[1:] {
		if h.Added > best.Added {
			best = h
		}
	}

	if best.Added == 0 {
		return model.LineAnchor{}, errm.New("file has no added lines: %s", pf.Path)
	}

	return model.LineAnchor{
		StartLine: best.TargetStart,
		EndLine:   best.TargetStart + best.Added - 1,
		Side:      model.SideRight,
	}, nil
}
