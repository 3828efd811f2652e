package config_test

import (
	"path/filepath"
	"strings"
	"testing"

	"tidy-go/internal/config"
	"tidy-go/internal/model"
	"tidy-go/internal/testutil"
)

const sampleRules = `
[[rules]]
name = "archive pdfs"
enabled = true

  [[rules.conditions]]
  kind = "extension-is"
  value = "pdf"

  [rules.outcome]
  type = "move"
  dest = "/home/user/Archive"

[[rules]]
name = "trash old logs"
enabled = true

  [[rules.conditions]]
  kind = "extension-is"
  value = "log"

  [[rules.conditions]]
  kind = "modified-before"
  time = 2023-01-01T00:00:00Z

  [rules.outcome]
  type = "delete"
`

func TestReadRules(t *testing.T) {
	rules, err := config.ReadRules(strings.NewReader(sampleRules))
	if err != nil {
		t.Fatalf("ReadRules() error = %v", err)
	}

	if len(rules) != 2 {
		t.Fatalf("rules = %d, want 2", len(rules))
	}

	// Declaration order is evaluation order.
	first := rules[0]
	if first.Name != "archive pdfs" {
		t.Errorf("first rule = %s", first.Name)
	}
	if first.ID != "archive pdfs" {
		t.Errorf("ID did not default to the name: %s", first.ID)
	}
	if len(first.Conditions) != 1 || first.Conditions[0].Kind != model.CondExtensionIs {
		t.Errorf("first conditions = %+v", first.Conditions)
	}
	if first.Outcome.Type != model.ActionMove || first.Outcome.Dest != "/home/user/Archive" {
		t.Errorf("first outcome = %+v", first.Outcome)
	}

	second := rules[1]
	if len(second.Conditions) != 2 {
		t.Fatalf("second conditions = %d, want 2", len(second.Conditions))
	}
	if second.Conditions[1].Kind != model.CondModifiedBefore || second.Conditions[1].Time.IsZero() {
		t.Errorf("time condition = %+v", second.Conditions[1])
	}
	if second.Outcome.Type != model.ActionDelete {
		t.Errorf("second outcome = %+v", second.Outcome)
	}
}

func TestReadRules_Validation(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{
			"rule without a name",
			`[[rules]]
			 enabled = true
			 [[rules.conditions]]
			 kind = "extension-is"
			 value = "pdf"
			 [rules.outcome]
			 type = "delete"`,
		},
		{
			"rule without conditions",
			`[[rules]]
			 name = "r"
			 [rules.outcome]
			 type = "delete"`,
		},
		{
			"condition missing its value",
			`[[rules]]
			 name = "r"
			 [[rules.conditions]]
			 kind = "name-contains"
			 [rules.outcome]
			 type = "delete"`,
		},
		{
			"size condition without a positive size",
			`[[rules]]
			 name = "r"
			 [[rules.conditions]]
			 kind = "size-greater-than"
			 [rules.outcome]
			 type = "delete"`,
		},
		{
			"unknown condition kind",
			`[[rules]]
			 name = "r"
			 [[rules.conditions]]
			 kind = "haunted"
			 value = "x"
			 [rules.outcome]
			 type = "delete"`,
		},
		{
			"move outcome without dest",
			`[[rules]]
			 name = "r"
			 [[rules.conditions]]
			 kind = "extension-is"
			 value = "pdf"
			 [rules.outcome]
			 type = "move"`,
		},
		{
			"rename outcome without prefix or suffix",
			`[[rules]]
			 name = "r"
			 [[rules.conditions]]
			 kind = "extension-is"
			 value = "pdf"
			 [rules.outcome]
			 type = "rename"`,
		},
		{
			"unknown outcome type",
			`[[rules]]
			 name = "r"
			 [[rules.conditions]]
			 kind = "extension-is"
			 value = "pdf"
			 [rules.outcome]
			 type = "shred"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := config.ReadRules(strings.NewReader(tt.toml)); err == nil {
				t.Error("ReadRules() succeeded, want validation error")
			}
		})
	}
}

func TestReadRulesFromFile(t *testing.T) {
	t.Run("missing file is an empty rule list", func(t *testing.T) {
		rules, err := config.ReadRulesFromFile(filepath.Join(t.TempDir(), "absent.toml"))
		if err != nil {
			t.Fatalf("ReadRulesFromFile() error = %v", err)
		}
		if len(rules) != 0 {
			t.Errorf("rules = %+v, want none", rules)
		}
	})

	t.Run("reads and validates an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.toml")
		testutil.WriteFile(t, path, []byte(sampleRules))

		rules, err := config.ReadRulesFromFile(path)
		if err != nil {
			t.Fatalf("ReadRulesFromFile() error = %v", err)
		}
		if len(rules) != 2 {
			t.Errorf("rules = %d, want 2", len(rules))
		}
	})
}
