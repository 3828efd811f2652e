package tidy

import (
	"os"
	"path/filepath"

	"tidy-go/internal/model"
)

// Executor applies a plan to the live filesystem. It is the only component
// that mutates the filesystem during execution, and it re-validates state
// immediately before each mutation because the plan may be stale relative to
// reality. Actions run strictly in plan order, one at a time; a failed
// action never halts the rest of the plan.
type Executor struct {
	trash  Trash
	logger Logger
	clock  Clock
}

func NewExecutor(trash Trash, logger Logger, clock Clock) *Executor {
	return &Executor{trash: trash, logger: logger, clock: clock}
}

// Execute applies every action in the plan and returns the append-only
// execution log. The caller is responsible for having obtained approval for
// the plan; Execute itself never second-guesses it.
func (e *Executor) Execute(plan model.Plan) model.ExecutionLog {
	log := model.ExecutionLog{
		PlanID:    plan.ID,
		StartedAt: e.clock.Now(),
	}

	for _, action := range plan.Actions {
		entry := e.apply(action)
		log.Entries = append(log.Entries, entry)
		e.logger.Debug("action executed",
			"action", action.ID,
			"type", string(action.Type),
			"outcome", string(entry.Outcome),
			"source", entry.Source)
	}

	log.FinishedAt = e.clock.Now()
	e.logger.Info("plan executed", "plan", plan.ID, "actions", len(log.Entries))
	return log
}

func (e *Executor) apply(action model.PlannedAction) model.ExecutionEntry {
	entry := model.ExecutionEntry{
		ActionID:  action.ID,
		Type:      action.Type,
		Source:    action.File.Path,
		Timestamp: e.clock.Now(),
		RuleName:  action.RuleName,
	}

	if action.Type == model.ActionSkip {
		entry.Outcome = model.OutcomeSkipped
		entry.Message = "plan explicitly skipped this action"
		return entry
	}

	if !pathExists(action.File.Path) {
		entry.Outcome = model.OutcomeFailed
		entry.Message = "source not found"
		return entry
	}

	switch action.Type {
	case model.ActionMove:
		e.applyTransfer(&entry, action.Destination, MovePath)
	case model.ActionCopy:
		e.applyTransfer(&entry, action.Destination, CopyPath)
	case model.ActionRename:
		e.applyRename(&entry, action.Destination)
	case model.ActionDelete:
		e.applyDelete(&entry)
	default:
		entry.Outcome = model.OutcomeFailed
		entry.Message = "unknown action type: " + string(action.Type)
	}

	return entry
}

// applyTransfer handles move and copy: never overwrite an existing
// destination, create missing parent directories, then transfer.
func (e *Executor) applyTransfer(entry *model.ExecutionEntry, dest string, transfer func(source, dest string) error) {
	if pathExists(dest) {
		entry.Outcome = model.OutcomeFailed
		entry.Message = "destination already exists"
		return
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		entry.Outcome = model.OutcomeFailed
		entry.Message = err.Error()
		return
	}
	if err := transfer(entry.Source, dest); err != nil {
		entry.Outcome = model.OutcomeFailed
		entry.Message = err.Error()
		return
	}
	entry.Outcome = model.OutcomeSuccess
	entry.Destination = dest
}

func (e *Executor) applyRename(entry *model.ExecutionEntry, dest string) {
	if dest == entry.Source {
		entry.Outcome = model.OutcomeSkipped
		entry.Message = "no-op"
		return
	}
	if pathExists(dest) {
		entry.Outcome = model.OutcomeFailed
		entry.Message = "name collision"
		return
	}
	if err := MovePath(entry.Source, dest); err != nil {
		entry.Outcome = model.OutcomeFailed
		entry.Message = err.Error()
		return
	}
	entry.Outcome = model.OutcomeSuccess
	entry.Destination = dest
}

// applyDelete relocates the source into the trash. The trash path is
// recorded as the entry's destination so undo can find it later.
func (e *Executor) applyDelete(entry *model.ExecutionEntry) {
	trashPath, err := e.trash.Put(entry.Source)
	if err != nil {
		entry.Outcome = model.OutcomeFailed
		entry.Message = err.Error()
		return
	}
	entry.Outcome = model.OutcomeSuccess
	entry.Destination = trashPath
	entry.Message = "moved to trash"
}
