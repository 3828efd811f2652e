package model

import "time"

// ExecOutcome is the per-action result of applying a plan.
type ExecOutcome string

const (
	OutcomeSuccess ExecOutcome = "success"
	OutcomeSkipped ExecOutcome = "skipped"
	OutcomeFailed  ExecOutcome = "failed"
)

// ExecutionEntry records what actually happened for one planned action.
// The action type is recorded explicitly so that undo can reverse the entry
// deterministically instead of guessing intent from filesystem state.
// Destination is set for move/copy/rename and for trash relocations.
type ExecutionEntry struct {
	ActionID    string
	Type        ActionType
	Source      string
	Destination string // empty when the action produced no target path
	Timestamp   time.Time
	Outcome     ExecOutcome
	Message     string
	RuleName    string
}

// ExecutionLog is the append-only record of one plan execution. Entries are
// never edited after being appended.
type ExecutionLog struct {
	PlanID     string
	StartedAt  time.Time
	FinishedAt time.Time
	Entries    []ExecutionEntry
}

// UndoOutcome is the per-entry result of reversing an execution log.
type UndoOutcome string

const (
	UndoRestored UndoOutcome = "restored"
	UndoSkipped  UndoOutcome = "skipped"
	UndoFailed   UndoOutcome = "failed"
)

// UndoEntry records the reversal attempt for one original action.
// CurrentPath is where the file ended up when the attempt changed anything:
// the original source for restored moves/renames/deletes, the trash path for
// an undone copy. Empty when nothing moved.
type UndoEntry struct {
	ActionID    string
	Outcome     UndoOutcome
	Message     string
	CurrentPath string
}

// UndoLog is the result of replaying an execution log in reverse.
type UndoLog struct {
	PlanID   string
	Entries  []UndoEntry
	Restored int
	Skipped  int
	Failed   int
}

// Add appends an entry and updates the outcome counters.
func (l *UndoLog) Add(e UndoEntry) {
	l.Entries = append(l.Entries, e)
	switch e.Outcome {
	case UndoRestored:
		l.Restored++
	case UndoSkipped:
		l.Skipped++
	case UndoFailed:
		l.Failed++
	}
}
