package services

import (
	"fmt"

	"tunesmith/types"
)

// toggleSelected flips the selection of the candidate with the given id
func toggleSelected(candidates []types.CandidateFile, id string) error {
	for i := range candidates {
		if candidates[i].ID == id {
			candidates[i].Selected = !candidates[i].Selected
			return nil
		}
	}
	return &ValidationError{Message: fmt.Sprintf("no file with id %q", id)}
}

// toggleAllSelected selects everything unless everything is already
// selected, in which case it deselects everything
func toggleAllSelected(candidates []types.CandidateFile) bool {
	target := !allSelected(candidates)
	for i := range candidates {
		candidates[i].Selected = target
	}
	return target
}

func allSelected(candidates []types.CandidateFile) bool {
	if len(candidates) == 0 {
		return false
	}
	for _, c := range candidates {
		if !c.Selected {
			return false
		}
	}
	return true
}

// selectedIndices returns the positions of selected candidates in scan order
func selectedIndices(candidates []types.CandidateFile) []int {
	var indices []int
	for i, c := range candidates {
		if c.Selected {
			indices = append(indices, i)
		}
	}
	return indices
}
