package model

import "time"

// ActionType identifies what a planned action (and later its log entries)
// does to a file.
type ActionType string

const (
	ActionMove   ActionType = "move"
	ActionCopy   ActionType = "copy"
	ActionDelete ActionType = "delete" // relocation to trash, never permanent
	ActionRename ActionType = "rename"
	ActionSkip   ActionType = "skip"
)

// ConditionKind selects the predicate a Condition applies to a file.
type ConditionKind string

const (
	CondExtensionIs     ConditionKind = "extension-is"
	CondNameContains    ConditionKind = "name-contains" // case-insensitive substring
	CondNameMatches     ConditionKind = "name-matches"  // shell glob against the base name
	CondSizeGreaterThan ConditionKind = "size-greater-than"
	CondCreatedBefore   ConditionKind = "created-before"
	CondModifiedBefore  ConditionKind = "modified-before"
	CondIsDirectory     ConditionKind = "is-directory"
)

// Condition is one predicate in a rule. Which value field is meaningful
// depends on Kind; the others are ignored.
type Condition struct {
	Kind  ConditionKind `toml:"kind"`
	Value string        `toml:"value,omitempty"` // extension, substring or glob
	Size  int64         `toml:"size,omitempty"`  // bytes, for size-greater-than
	Time  time.Time     `toml:"time,omitempty"`  // cutoff, for the *-before kinds
}

// Outcome is the desired effect of a rule on a matching file.
// This uses a tagged union pattern - the Type field determines which other
// fields are relevant.
type Outcome struct {
	Type   ActionType `toml:"type"`
	Dest   string     `toml:"dest,omitempty"`   // target directory for move/copy
	Prefix string     `toml:"prefix,omitempty"` // rename only
	Suffix string     `toml:"suffix,omitempty"` // rename only, inserted before the extension
	Reason string     `toml:"reason,omitempty"` // skip only
}

// Rule is a declarative condition set plus one outcome, independent of any
// specific file. Rules are pure data; evaluation lives in the planner.
// Conditions are AND-combined.
type Rule struct {
	ID          string      `toml:"id"`
	Name        string      `toml:"name"`
	Description string      `toml:"description,omitempty"`
	Conditions  []Condition `toml:"conditions"`
	Outcome     Outcome     `toml:"outcome"`
	Enabled     bool        `toml:"enabled"`
	Group       string      `toml:"group,omitempty"`
	Tags        []string    `toml:"tags,omitempty"`
}
