package model

import "time"

// PlannedAction is one rule outcome resolved against one concrete file.
// Destination is the fully resolved target path for move/copy/rename and
// empty for delete and skip.
type PlannedAction struct {
	ID          string
	File        FileRecord
	Type        ActionType
	Destination string
	Reason      string // human-readable justification for review/audit
	RuleName    string
}

// Plan is an immutable ordered list of planned actions. Re-planning produces
// a new Plan; an existing one is never mutated.
type Plan struct {
	ID        string
	CreatedAt time.Time
	Actions   []PlannedAction
}
