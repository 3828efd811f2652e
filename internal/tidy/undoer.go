package tidy

import (
	"os"
	"path/filepath"

	"tidy-go/internal/model"
)

// Undoer reverses prior executions using only their logs and present
// filesystem state. It is best effort, not a transactional rollback: it
// never overwrites an occupied path, and ambiguous states degrade to a
// skipped entry with an explanation rather than silent failure. This is the
// single reconciliation implementation; history undo delegates here instead
// of re-deriving the logic.
type Undoer struct {
	trash  Trash
	logger Logger
}

func NewUndoer(trash Trash, logger Logger) *Undoer {
	return &Undoer{trash: trash, logger: logger}
}

// Undo processes log entries in reverse order (last-executed-first, so
// dependent renames and moves unwind correctly). Only success entries are
// candidates; skipped and failed entries map to skipped undo entries.
// Running Undo twice over the same log yields skipped everywhere on the
// second pass, because the first pass already reconciled filesystem state.
func (u *Undoer) Undo(log model.ExecutionLog) model.UndoLog {
	result := model.UndoLog{PlanID: log.PlanID}

	for i := len(log.Entries) - 1; i >= 0; i-- {
		entry := u.Reconcile(log.Entries[i])
		result.Add(entry)
		u.logger.Debug("undo entry",
			"action", entry.ActionID,
			"outcome", string(entry.Outcome),
			"message", entry.Message)
	}

	u.logger.Info("undo finished",
		"plan", log.PlanID,
		"restored", result.Restored,
		"skipped", result.Skipped,
		"failed", result.Failed)
	return result
}

// Reconcile reverses a single execution entry against current filesystem
// state. The recorded action type makes the intent explicit; the filesystem,
// not trusted memory, decides whether reversal is still safe.
func (u *Undoer) Reconcile(e model.ExecutionEntry) model.UndoEntry {
	undo := model.UndoEntry{ActionID: e.ActionID}

	if e.Outcome != model.OutcomeSuccess {
		undo.Outcome = model.UndoSkipped
		undo.Message = "nothing to undo"
		return undo
	}

	switch e.Type {
	case model.ActionDelete:
		return u.undoDelete(e)
	case model.ActionCopy:
		return u.undoCopy(e)
	case model.ActionMove, model.ActionRename:
		return u.undoMove(e)
	default:
		undo.Outcome = model.UndoSkipped
		undo.Message = "action type cannot be undone: " + string(e.Type)
		return undo
	}
}

// undoDelete moves a trashed entry back to its original path.
func (u *Undoer) undoDelete(e model.ExecutionEntry) model.UndoEntry {
	undo := model.UndoEntry{ActionID: e.ActionID}

	if !u.trash.Contains(e.Destination) {
		undo.Outcome = model.UndoSkipped
		undo.Message = "trash copy no longer exists"
		return undo
	}
	if pathExists(e.Source) {
		undo.Outcome = model.UndoSkipped
		undo.Message = "original path is occupied"
		return undo
	}
	if err := os.MkdirAll(filepath.Dir(e.Source), 0755); err != nil {
		undo.Outcome = model.UndoFailed
		undo.Message = err.Error()
		return undo
	}
	if err := u.trash.Restore(e.Destination, e.Source); err != nil {
		undo.Outcome = model.UndoFailed
		undo.Message = err.Error()
		return undo
	}

	undo.Outcome = model.UndoRestored
	undo.Message = "restored from trash"
	undo.CurrentPath = e.Source
	return undo
}

// undoCopy removes the created copy non-destructively by relocating it to
// the trash. The original is untouched.
func (u *Undoer) undoCopy(e model.ExecutionEntry) model.UndoEntry {
	undo := model.UndoEntry{ActionID: e.ActionID}

	if !pathExists(e.Destination) {
		undo.Outcome = model.UndoSkipped
		undo.Message = "copy no longer exists"
		return undo
	}

	trashPath, err := u.trash.Put(e.Destination)
	if err != nil {
		undo.Outcome = model.UndoFailed
		undo.Message = err.Error()
		return undo
	}

	undo.Outcome = model.UndoRestored
	undo.Message = "copy moved to trash"
	undo.CurrentPath = trashPath
	return undo
}

// undoMove moves the file back to its original source path.
func (u *Undoer) undoMove(e model.ExecutionEntry) model.UndoEntry {
	undo := model.UndoEntry{ActionID: e.ActionID}

	destExists := pathExists(e.Destination)
	srcExists := pathExists(e.Source)

	switch {
	case destExists && srcExists:
		undo.Outcome = model.UndoSkipped
		undo.Message = "original path is occupied"
	case !destExists && srcExists:
		undo.Outcome = model.UndoSkipped
		undo.Message = "already restored"
	case !destExists && !srcExists:
		undo.Outcome = model.UndoSkipped
		undo.Message = "file no longer exists"
	default:
		if err := os.MkdirAll(filepath.Dir(e.Source), 0755); err != nil {
			undo.Outcome = model.UndoFailed
			undo.Message = err.Error()
			return undo
		}
		if err := MovePath(e.Destination, e.Source); err != nil {
			undo.Outcome = model.UndoFailed
			undo.Message = err.Error()
			return undo
		}
		undo.Outcome = model.UndoRestored
		undo.Message = "moved back to original path"
		undo.CurrentPath = e.Source
	}

	return undo
}
