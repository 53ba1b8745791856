package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"unicode"

	"tunesmith/storage"
	"tunesmith/types"
)

const cancelledMessage = "batch cancelled"

// Progress receives a copy of a candidate after each status transition.
// done counts files that reached renamed or error.
type Progress func(file types.CandidateFile, done, total int)

// BuildName returns "<artist> - <title><ext>" where ext is the original
// file's extension. Path separators and control characters are replaced so
// the result is a single path element.
func BuildName(s types.NameSuggestion, originalName string) string {
	return cleanNamePart(s.Artist) + " - " + cleanNamePart(s.Title) + filepath.Ext(originalName)
}

func cleanNamePart(part string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '-'
		case unicode.IsControl(r):
			return ' '
		}
		return r
	}, part)
	return strings.Join(strings.Fields(mapped), " ")
}

// renameFile moves the file behind handle to newName by copy-then-delete.
// A crash between the write and the delete leaves both files present.
func renameFile(dir storage.Directory, handle storage.ResourceHandle, name, newName string) (storage.ResourceHandle, error) {
	if newName == name {
		return handle, nil
	}
	if handle == nil {
		return nil, fmt.Errorf("no resource handle for %s", name)
	}
	if handle.PermissionState(storage.ModeReadWrite) != storage.PermissionGranted {
		return nil, fmt.Errorf("write access to %s: %w", name, storage.ErrPermission)
	}

	data, err := handle.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read original: %w", err)
	}

	target, err := dir.Create(newName)
	if err != nil {
		if storage.IsCollision(err) {
			return nil, fmt.Errorf("a file named %q already exists: %w", newName, err)
		}
		return nil, fmt.Errorf("failed to create new file: %w", err)
	}

	if err := target.Write(data); err != nil {
		if cleanupErr := dir.Delete(newName); cleanupErr != nil {
			log.Printf("Warning: could not remove partial file %s: %v", newName, cleanupErr)
		}
		return nil, fmt.Errorf("failed to write new file: %w", err)
	}

	if err := dir.Delete(name); err != nil {
		// Roll back so exactly one copy remains
		if cleanupErr := dir.Delete(newName); cleanupErr != nil {
			log.Printf("Warning: %s and %s both exist after failed rename: %v", name, newName, cleanupErr)
		}
		return nil, fmt.Errorf("failed to remove original: %w", err)
	}

	return target, nil
}

// execute runs one batch over the candidates at indices, which must be in
// scan order. The caller holds the in-flight slot.
func (o *Orchestrator) execute(ctx context.Context, indices []int, stylePrompt string, progress Progress) (types.BatchResult, error) {
	result := types.BatchResult{TotalCount: len(indices)}

	req, err := NewBatchRequest(len(indices), stylePrompt)
	if err != nil {
		return result, err
	}

	suggestions, err := o.suggestions.Generate(ctx, req)
	if err != nil {
		return result, err
	}
	if len(suggestions) != len(indices) {
		return result, &ServiceError{
			Message: fmt.Sprintf("AI returned %d suggestions for %d files", len(suggestions), len(indices)),
		}
	}

	for _, idx := range indices {
		file := o.transition(idx, func(c *types.CandidateFile) {
			c.Status = types.FileStatusRenaming
			c.NewName = ""
			c.Error = ""
		})
		report(progress, file, 0, len(indices))
	}

	for i, idx := range indices {
		if ctx.Err() != nil {
			for j, rest := range indices[i:] {
				file := o.transition(rest, func(c *types.CandidateFile) {
					c.Status = types.FileStatusError
					c.Error = cancelledMessage
				})
				report(progress, file, i+j+1, len(indices))
			}
			log.Printf("Batch cancelled after %d of %d files", i, len(indices))
			break
		}

		current, _ := o.at(idx)
		newName := BuildName(suggestions[i], current.Name)

		handle, err := renameFile(o.dir, current.Handle, current.Name, newName)

		var file types.CandidateFile
		if err != nil {
			renameErr := &RenameError{Name: current.Name, NewName: newName, Err: err}
			log.Printf("Rename failed: %v", renameErr)
			file = o.transition(idx, func(c *types.CandidateFile) {
				c.Status = types.FileStatusError
				c.Error = renameErr.Error()
			})
		} else {
			result.SuccessCount++
			file = o.transition(idx, func(c *types.CandidateFile) {
				c.Status = types.FileStatusRenamed
				c.NewName = newName
				c.ID = newName
				c.Name = newName
				c.Handle = handle
			})
		}
		report(progress, file, i+1, len(indices))
	}

	return result, nil
}

func report(progress Progress, file types.CandidateFile, done, total int) {
	if progress != nil {
		progress(file, done, total)
	}
}
