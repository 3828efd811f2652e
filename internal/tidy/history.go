package tidy

import (
	"fmt"
	"path/filepath"

	"tidy-go/internal/model"
)

// HistoryStore persists execution sessions across process lifetimes. Lookups
// return nil (not an error) when a session does not exist. The store is the
// single writer to durable storage; callers go through History.
type HistoryStore interface {
	// Append adds a new session after the existing ones.
	Append(session model.HistorySession) error

	// AppendItems appends items to an existing session. History is
	// append-only: prior items are never edited.
	AppendItems(sessionID string, items []model.HistoryItem) error

	// List returns all sessions in recorded order.
	List() ([]model.HistorySession, error)

	// Get returns one session by ID, or nil if it does not exist.
	Get(id string) (*model.HistorySession, error)

	// Delete removes one session. Deleting a missing session is a no-op.
	Delete(id string) error

	// Clear removes all sessions.
	Clear() error

	// Close releases store resources.
	Close() error
}

// History records executions durably and undoes them later. Undo delegates
// to the canonical Undoer reconciliation; the store only supplies records.
type History struct {
	store  HistoryStore
	undoer *Undoer
	clock  Clock
	idgen  IDGenerator
	logger Logger
}

func NewHistory(store HistoryStore, undoer *Undoer, clock Clock, idgen IDGenerator, logger Logger) *History {
	return &History{
		store:  store,
		undoer: undoer,
		clock:  clock,
		idgen:  idgen,
		logger: logger,
	}
}

// Record translates an execution log 1:1 into a durable session and appends
// it to the store.
func (h *History) Record(sourceDir string, log model.ExecutionLog) (model.HistorySession, error) {
	session := model.HistorySession{
		ID:        h.idgen.New(),
		Timestamp: h.clock.Now(),
		SourceDir: sourceDir,
	}

	for _, e := range log.Entries {
		item := model.HistoryItem{
			ID:           h.idgen.New(),
			ActionID:     e.ActionID,
			Phase:        model.PhaseApplied,
			Type:         e.Type,
			FileName:     filepath.Base(e.Source),
			OriginalPath: e.Source,
			Timestamp:    e.Timestamp,
			Outcome:      string(e.Outcome),
			RuleName:     e.RuleName,
			Message:      e.Message,
		}
		if e.Outcome == model.OutcomeSuccess && e.Destination != "" {
			item.CurrentPath = e.Destination
		} else {
			item.CurrentPath = e.Source
		}
		session.Items = append(session.Items, item)
	}

	if err := h.store.Append(session); err != nil {
		return model.HistorySession{}, fmt.Errorf("appending session: %w", err)
	}

	h.logger.Info("session recorded", "session", session.ID, "items", len(session.Items))
	return session, nil
}

// Sessions returns all recorded sessions in order.
func (h *History) Sessions() ([]model.HistorySession, error) {
	return h.store.List()
}

// Get returns one session, or nil if it does not exist.
func (h *History) Get(id string) (*model.HistorySession, error) {
	return h.store.Get(id)
}

// Delete removes one session from the store.
func (h *History) Delete(id string) error {
	return h.store.Delete(id)
}

// Clear removes all sessions from the store.
func (h *History) Clear() error {
	return h.store.Clear()
}

// Close closes the underlying store.
func (h *History) Close() error {
	return h.store.Close()
}

// PathExists reports whether a previously recorded current path still exists
// on disk.
func (h *History) PathExists(path string) bool {
	return pathExists(path)
}

// CurrentState projects a session's append-only items down to the latest
// item per action, in original action order. This is the "where is each file
// now" view derived from the immutable log.
func CurrentState(session model.HistorySession) []model.HistoryItem {
	latest := make(map[string]model.HistoryItem, len(session.Items))
	var order []string

	for _, item := range session.Items {
		if _, seen := latest[item.ActionID]; !seen {
			order = append(order, item.ActionID)
		}
		latest[item.ActionID] = item
	}

	state := make([]model.HistoryItem, 0, len(order))
	for _, id := range order {
		state = append(state, latest[id])
	}
	return state
}

// UndoSession reverses every still-applied successful action of a session,
// last-executed-first, and appends undone items for everything that was
// actually restored. The session itself is never deleted or rewritten.
func (h *History) UndoSession(id string) (model.UndoLog, error) {
	session, err := h.store.Get(id)
	if err != nil {
		return model.UndoLog{}, fmt.Errorf("loading session: %w", err)
	}
	if session == nil {
		return model.UndoLog{}, fmt.Errorf("session not found: %s", id)
	}

	state := CurrentState(*session)
	result := model.UndoLog{PlanID: session.ID}
	var undone []model.HistoryItem

	for i := len(state) - 1; i >= 0; i-- {
		entry, item := h.reconcileItem(state[i])
		result.Add(entry)
		if item != nil {
			undone = append(undone, *item)
		}
	}

	if len(undone) > 0 {
		if err := h.store.AppendItems(session.ID, undone); err != nil {
			return result, fmt.Errorf("appending undo records: %w", err)
		}
	}

	h.logger.Info("session undone",
		"session", session.ID,
		"restored", result.Restored,
		"skipped", result.Skipped,
		"failed", result.Failed)
	return result, nil
}

// UndoItem reverses a single action of a session, identified by its original
// action ID.
func (h *History) UndoItem(sessionID, actionID string) (model.UndoEntry, error) {
	session, err := h.store.Get(sessionID)
	if err != nil {
		return model.UndoEntry{}, fmt.Errorf("loading session: %w", err)
	}
	if session == nil {
		return model.UndoEntry{}, fmt.Errorf("session not found: %s", sessionID)
	}

	for _, item := range CurrentState(*session) {
		if item.ActionID != actionID {
			continue
		}
		entry, undoneItem := h.reconcileItem(item)
		if undoneItem != nil {
			if err := h.store.AppendItems(session.ID, []model.HistoryItem{*undoneItem}); err != nil {
				return entry, fmt.Errorf("appending undo record: %w", err)
			}
		}
		return entry, nil
	}

	return model.UndoEntry{}, fmt.Errorf("action not found in session: %s", actionID)
}

// reconcileItem hands one current-state item to the canonical reconciliation
// and, when the filesystem actually changed, builds the undone item to
// append. Items already undone, or whose application never succeeded, map to
// skipped without touching the filesystem.
func (h *History) reconcileItem(item model.HistoryItem) (model.UndoEntry, *model.HistoryItem) {
	if item.Phase == model.PhaseUndone {
		return model.UndoEntry{
			ActionID: item.ActionID,
			Outcome:  model.UndoSkipped,
			Message:  "already undone",
		}, nil
	}

	entry := h.undoer.Reconcile(model.ExecutionEntry{
		ActionID:    item.ActionID,
		Type:        item.Type,
		Source:      item.OriginalPath,
		Destination: item.CurrentPath,
		Outcome:     model.ExecOutcome(item.Outcome),
	})

	if entry.Outcome != model.UndoRestored {
		return entry, nil
	}

	undone := &model.HistoryItem{
		ID:           h.idgen.New(),
		ActionID:     item.ActionID,
		Phase:        model.PhaseUndone,
		Type:         item.Type,
		FileName:     item.FileName,
		OriginalPath: item.OriginalPath,
		CurrentPath:  entry.CurrentPath,
		Timestamp:    h.clock.Now(),
		Outcome:      string(entry.Outcome),
		RuleName:     item.RuleName,
		Message:      entry.Message,
	}
	return entry, undone
}
