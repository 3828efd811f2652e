package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"tidy-go/internal/model"
)

// RulesFile is the on-disk shape of a rules file: an ordered list of rule
// tables. Declaration order is evaluation order.
type RulesFile struct {
	Rules []model.Rule `toml:"rules"`
}

// ReadRules decodes rules from the provided reader and validates them.
func ReadRules(r io.Reader) ([]model.Rule, error) {
	var file RulesFile
	if _, err := toml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}

	for i := range file.Rules {
		if err := validateRule(&file.Rules[i]); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
	}
	return file.Rules, nil
}

// ReadRulesFromFile reads rules from the specified file path.
// A missing file yields an empty rule list, not an error.
func ReadRulesFromFile(path string) ([]model.Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open rules file: %w", err)
	}
	defer f.Close()

	rules, err := ReadRules(f)
	if err != nil {
		return nil, fmt.Errorf("reading rules from %s: %w", path, err)
	}
	return rules, nil
}

func validateRule(rule *model.Rule) error {
	if rule.Name == "" {
		return fmt.Errorf("rule has no name")
	}
	if rule.ID == "" {
		rule.ID = rule.Name
	}
	if len(rule.Conditions) == 0 {
		return fmt.Errorf("rule %q has no conditions", rule.Name)
	}

	for _, cond := range rule.Conditions {
		switch cond.Kind {
		case model.CondExtensionIs, model.CondNameContains, model.CondNameMatches:
			if cond.Value == "" {
				return fmt.Errorf("rule %q: condition %s needs a value", rule.Name, cond.Kind)
			}
		case model.CondSizeGreaterThan:
			if cond.Size <= 0 {
				return fmt.Errorf("rule %q: condition %s needs a positive size", rule.Name, cond.Kind)
			}
		case model.CondCreatedBefore, model.CondModifiedBefore:
			if cond.Time.IsZero() {
				return fmt.Errorf("rule %q: condition %s needs a time", rule.Name, cond.Kind)
			}
		case model.CondIsDirectory:
			// No value needed.
		default:
			return fmt.Errorf("rule %q: unknown condition kind %q", rule.Name, cond.Kind)
		}
	}

	switch rule.Outcome.Type {
	case model.ActionMove, model.ActionCopy:
		if rule.Outcome.Dest == "" {
			return fmt.Errorf("rule %q: %s outcome needs a dest", rule.Name, rule.Outcome.Type)
		}
	case model.ActionRename:
		if rule.Outcome.Prefix == "" && rule.Outcome.Suffix == "" {
			return fmt.Errorf("rule %q: rename outcome needs a prefix or suffix", rule.Name)
		}
	case model.ActionDelete, model.ActionSkip:
		// No extra fields needed.
	default:
		return fmt.Errorf("rule %q: unknown outcome type %q", rule.Name, rule.Outcome.Type)
	}

	return nil
}
