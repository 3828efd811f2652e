package tidy

import (
	"fmt"
	"path/filepath"
	"strings"

	"tidy-go/internal/model"
)

// Planner matches rules against scanned file records and produces action
// plans. It never touches the filesystem; planning is additive
// evidence-gathering that is safe to call repeatedly and discard.
type Planner struct {
	clock Clock
	idgen IDGenerator
}

func NewPlanner(clock Clock, idgen IDGenerator) *Planner {
	return &Planner{clock: clock, idgen: idgen}
}

// Plan evaluates rules in declaration order against each file. The first
// enabled rule whose full condition set matches produces that file's action;
// files matching no enabled rule are omitted from the plan entirely.
func (p *Planner) Plan(files []model.FileRecord, rules []model.Rule) model.Plan {
	plan := model.Plan{
		ID:        p.idgen.New(),
		CreatedAt: p.clock.Now(),
	}

	for _, file := range files {
		for _, rule := range rules {
			if !rule.Enabled {
				continue
			}
			if !ruleMatches(rule, file) {
				continue
			}
			plan.Actions = append(plan.Actions, p.resolve(rule, file))
			break
		}
	}

	return plan
}

func ruleMatches(rule model.Rule, file model.FileRecord) bool {
	for _, cond := range rule.Conditions {
		if !conditionMatches(cond, file) {
			return false
		}
	}
	return len(rule.Conditions) > 0
}

func conditionMatches(cond model.Condition, file model.FileRecord) bool {
	switch cond.Kind {
	case model.CondExtensionIs:
		want := strings.TrimPrefix(strings.ToLower(cond.Value), ".")
		got := strings.TrimPrefix(file.Ext, ".")
		return want != "" && want == got
	case model.CondNameContains:
		return strings.Contains(strings.ToLower(file.Name), strings.ToLower(cond.Value))
	case model.CondNameMatches:
		matched, err := filepath.Match(cond.Value, file.Name)
		if err != nil {
			// Bad pattern: no match rather than crash.
			return false
		}
		return matched
	case model.CondSizeGreaterThan:
		return !file.IsDir && file.Size > cond.Size
	case model.CondCreatedBefore:
		return file.Created != nil && file.Created.Before(cond.Time)
	case model.CondModifiedBefore:
		return file.Modified != nil && file.Modified.Before(cond.Time)
	case model.CondIsDirectory:
		return file.IsDir
	default:
		return false
	}
}

// resolve turns a rule's outcome into a concrete action for one file.
func (p *Planner) resolve(rule model.Rule, file model.FileRecord) model.PlannedAction {
	action := model.PlannedAction{
		ID:       p.idgen.New(),
		File:     file,
		Type:     rule.Outcome.Type,
		RuleName: rule.Name,
	}

	switch rule.Outcome.Type {
	case model.ActionMove, model.ActionCopy:
		action.Destination = filepath.Join(rule.Outcome.Dest, file.Name)
		action.Reason = fmt.Sprintf("rule %q: %s to %s", rule.Name, rule.Outcome.Type, rule.Outcome.Dest)
	case model.ActionRename:
		newName := renamedName(file.Name, rule.Outcome.Prefix, rule.Outcome.Suffix)
		action.Destination = filepath.Join(filepath.Dir(file.Path), newName)
		action.Reason = fmt.Sprintf("rule %q: rename to %s", rule.Name, newName)
	case model.ActionDelete:
		action.Reason = fmt.Sprintf("rule %q: move to trash", rule.Name)
	case model.ActionSkip:
		reason := rule.Outcome.Reason
		if reason == "" {
			reason = "skipped by rule"
		}
		action.Reason = fmt.Sprintf("rule %q: %s", rule.Name, reason)
	}

	return action
}

// renamedName applies prefix and suffix to a file name. The suffix goes
// before the extension so renames keep the file type.
func renamedName(name, prefix, suffix string) string {
	ext := filepath.Ext(name)
	base := name[:len(name)-len(ext)]
	return prefix + base + suffix + ext
}
