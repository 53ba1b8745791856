package services

import "tunesmith/types"

// Project derives the displayable state of a candidate list
func Project(candidates []types.CandidateFile, inFlight bool) types.StatusView {
	view := types.StatusView{
		Total:       len(candidates),
		AllSelected: allSelected(candidates),
		InFlight:    inFlight,
	}

	for _, c := range candidates {
		if c.Selected {
			view.SelectedCount++
		}
		switch c.Status {
		case types.FileStatusRenaming:
			view.IsAnyBusy = true
		case types.FileStatusRenamed:
			view.RenamedCount++
		case types.FileStatusError:
			view.ErrorCount++
		}
	}

	return view
}
