package model

import "time"

// HistoryPhase marks whether a history item records the original application
// of an action or a later undo of it. History is append-only: undo never
// rewrites applied items, it appends undone ones.
type HistoryPhase string

const (
	PhaseApplied HistoryPhase = "applied"
	PhaseUndone  HistoryPhase = "undone"
)

// HistoryItem is one durable record within a session. Applied items are
// translated 1:1 from execution log entries; undone items are appended by
// session or item undo. CurrentPath is where the file lived after this item
// took effect, empty when the location is unknown (e.g. the file was lost).
type HistoryItem struct {
	ID           string       `json:"id"`
	ActionID     string       `json:"action_id"`
	Phase        HistoryPhase `json:"phase"`
	Type         ActionType   `json:"action_type"`
	FileName     string       `json:"file_name"`
	OriginalPath string       `json:"original_path"`
	CurrentPath  string       `json:"current_path,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
	Outcome      string       `json:"outcome"`
	RuleName     string       `json:"rule_name,omitempty"`
	Message      string       `json:"message,omitempty"`
}

// HistorySession is the persisted record of one plan execution. Sessions
// survive until explicitly deleted or cleared; undoing a session appends
// items rather than removing it.
type HistorySession struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	SourceDir string        `json:"source_dir"`
	Items     []HistoryItem `json:"items"`
}
