package tidy_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"tidy-go/internal/model"
	"tidy-go/internal/testutil"
	"tidy-go/internal/tidy"
	"tidy-go/internal/trash"
)

func newTrash(t *testing.T) *trash.FileSystemTrash {
	t.Helper()
	tr, err := trash.NewFileSystemTrash(filepath.Join(t.TempDir(), "trash"), testutil.NewStubIDGenerator())
	if err != nil {
		t.Fatalf("NewFileSystemTrash() error = %v", err)
	}
	return tr
}

func newExecutor(t *testing.T, tr tidy.Trash) *tidy.Executor {
	t.Helper()
	return tidy.NewExecutor(tr, tidy.NewNopLogger(), testutil.FixedClock())
}

func planOf(actions ...model.PlannedAction) model.Plan {
	return model.Plan{ID: "plan-1", Actions: actions}
}

func action(id string, typ model.ActionType, source, dest string) model.PlannedAction {
	return model.PlannedAction{
		ID:          id,
		File:        model.FileRecord{Path: source, Name: filepath.Base(source)},
		Type:        typ,
		Destination: dest,
	}
}

func TestExecutor_Move(t *testing.T) {
	t.Run("moves the file and records the destination", func(t *testing.T) {
		root := t.TempDir()
		src := filepath.Join(root, "a.pdf")
		dest := filepath.Join(root, "Archive", "a.pdf")
		testutil.WriteFile(t, src, []byte("content"))

		log := newExecutor(t, newTrash(t)).Execute(planOf(action("a1", model.ActionMove, src, dest)))

		if len(log.Entries) != 1 {
			t.Fatalf("entries = %d, want 1", len(log.Entries))
		}
		e := log.Entries[0]
		if e.Outcome != model.OutcomeSuccess {
			t.Fatalf("outcome = %s (%s), want success", e.Outcome, e.Message)
		}
		if e.Type != model.ActionMove {
			t.Errorf("recorded type = %s, want move", e.Type)
		}
		if e.Destination != dest {
			t.Errorf("recorded destination = %s, want %s", e.Destination, dest)
		}
		if testutil.Exists(src) {
			t.Error("source still exists after move")
		}
		if got := testutil.ReadFile(t, dest); !bytes.Equal(got, []byte("content")) {
			t.Errorf("destination content = %q, want %q", got, "content")
		}
	})

	t.Run("never overwrites an existing destination", func(t *testing.T) {
		root := t.TempDir()
		src := filepath.Join(root, "a.pdf")
		dest := filepath.Join(root, "Archive", "a.pdf")
		testutil.WriteFile(t, src, []byte("new"))
		testutil.WriteFile(t, dest, []byte("precious"))

		log := newExecutor(t, newTrash(t)).Execute(planOf(action("a1", model.ActionMove, src, dest)))

		e := log.Entries[0]
		if e.Outcome != model.OutcomeFailed {
			t.Fatalf("outcome = %s, want failed", e.Outcome)
		}
		if e.Message != "destination already exists" {
			t.Errorf("message = %q", e.Message)
		}
		if got := testutil.ReadFile(t, dest); !bytes.Equal(got, []byte("precious")) {
			t.Errorf("pre-existing destination changed: %q", got)
		}
		if !testutil.Exists(src) {
			t.Error("source vanished despite the failed move")
		}
	})

	t.Run("missing source fails without touching anything", func(t *testing.T) {
		root := t.TempDir()
		src := filepath.Join(root, "gone.pdf")
		dest := filepath.Join(root, "Archive", "gone.pdf")

		log := newExecutor(t, newTrash(t)).Execute(planOf(action("a1", model.ActionMove, src, dest)))

		e := log.Entries[0]
		if e.Outcome != model.OutcomeFailed || e.Message != "source not found" {
			t.Errorf("entry = %s (%q), want failed/source not found", e.Outcome, e.Message)
		}
		if testutil.Exists(dest) {
			t.Error("destination appeared for a missing source")
		}
	})
}

func TestExecutor_Copy(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "a.pdf")
	dest := filepath.Join(root, "Backup", "a.pdf")
	testutil.WriteFile(t, src, []byte("content"))

	log := newExecutor(t, newTrash(t)).Execute(planOf(action("a1", model.ActionCopy, src, dest)))

	e := log.Entries[0]
	if e.Outcome != model.OutcomeSuccess {
		t.Fatalf("outcome = %s (%s), want success", e.Outcome, e.Message)
	}
	if !testutil.Exists(src) {
		t.Error("source removed by copy")
	}
	if got := testutil.ReadFile(t, dest); !bytes.Equal(got, []byte("content")) {
		t.Errorf("copy content = %q", got)
	}
}

func TestExecutor_Delete(t *testing.T) {
	t.Run("relocates to trash and records the trash path", func(t *testing.T) {
		root := t.TempDir()
		src := filepath.Join(root, "c.log")
		testutil.WriteFile(t, src, []byte("log"))
		tr := newTrash(t)

		log := newExecutor(t, tr).Execute(planOf(action("a1", model.ActionDelete, src, "")))

		e := log.Entries[0]
		if e.Outcome != model.OutcomeSuccess {
			t.Fatalf("outcome = %s (%s), want success", e.Outcome, e.Message)
		}
		if e.Destination == "" {
			t.Fatal("trash path not recorded as destination")
		}
		if testutil.Exists(src) {
			t.Error("source still exists after delete")
		}
		if !tr.Contains(e.Destination) {
			t.Errorf("trash does not contain %s", e.Destination)
		}
	})

	t.Run("same-named files never collide in the trash", func(t *testing.T) {
		root := t.TempDir()
		tr := newTrash(t)
		exec := newExecutor(t, tr)

		first := filepath.Join(root, "one", "c.log")
		second := filepath.Join(root, "two", "c.log")
		testutil.WriteFile(t, first, []byte("first"))
		testutil.WriteFile(t, second, []byte("second"))

		log1 := exec.Execute(planOf(action("a1", model.ActionDelete, first, "")))
		log2 := exec.Execute(planOf(action("a2", model.ActionDelete, second, "")))

		e1, e2 := log1.Entries[0], log2.Entries[0]
		if e1.Outcome != model.OutcomeSuccess || e2.Outcome != model.OutcomeSuccess {
			t.Fatalf("outcomes = %s/%s, want success/success", e1.Outcome, e2.Outcome)
		}
		if e1.Destination == e2.Destination {
			t.Error("two deletes shared one trash path")
		}
		if got := testutil.ReadFile(t, e2.Destination); !bytes.Equal(got, []byte("second")) {
			t.Errorf("second trash copy = %q", got)
		}
	})
}

func TestExecutor_Rename(t *testing.T) {
	t.Run("renames within the same directory", func(t *testing.T) {
		root := t.TempDir()
		src := filepath.Join(root, "report.pdf")
		dest := filepath.Join(root, "2024-report.pdf")
		testutil.WriteFile(t, src, []byte("r"))

		log := newExecutor(t, newTrash(t)).Execute(planOf(action("a1", model.ActionRename, src, dest)))

		e := log.Entries[0]
		if e.Outcome != model.OutcomeSuccess {
			t.Fatalf("outcome = %s (%s), want success", e.Outcome, e.Message)
		}
		if testutil.Exists(src) || !testutil.Exists(dest) {
			t.Error("rename did not relocate the file")
		}
	})

	t.Run("identical name is a no-op skip", func(t *testing.T) {
		root := t.TempDir()
		src := filepath.Join(root, "same.pdf")
		testutil.WriteFile(t, src, []byte("s"))

		log := newExecutor(t, newTrash(t)).Execute(planOf(action("a1", model.ActionRename, src, src)))

		e := log.Entries[0]
		if e.Outcome != model.OutcomeSkipped || e.Message != "no-op" {
			t.Errorf("entry = %s (%q), want skipped/no-op", e.Outcome, e.Message)
		}
	})

	t.Run("name collision fails", func(t *testing.T) {
		root := t.TempDir()
		src := filepath.Join(root, "report.pdf")
		dest := filepath.Join(root, "taken.pdf")
		testutil.WriteFile(t, src, []byte("r"))
		testutil.WriteFile(t, dest, []byte("t"))

		log := newExecutor(t, newTrash(t)).Execute(planOf(action("a1", model.ActionRename, src, dest)))

		e := log.Entries[0]
		if e.Outcome != model.OutcomeFailed || e.Message != "name collision" {
			t.Errorf("entry = %s (%q), want failed/name collision", e.Outcome, e.Message)
		}
	})
}

func TestExecutor_PlanOrderAndIsolation(t *testing.T) {
	t.Run("explicit skip actions never touch the filesystem", func(t *testing.T) {
		root := t.TempDir()
		src := filepath.Join(root, "keep.txt")
		testutil.WriteFile(t, src, []byte("k"))

		log := newExecutor(t, newTrash(t)).Execute(planOf(action("a1", model.ActionSkip, src, "")))

		e := log.Entries[0]
		if e.Outcome != model.OutcomeSkipped || e.Message != "plan explicitly skipped this action" {
			t.Errorf("entry = %s (%q)", e.Outcome, e.Message)
		}
		if !testutil.Exists(src) {
			t.Error("skip removed the file")
		}
	})

	t.Run("a failed action never halts the rest of the plan", func(t *testing.T) {
		root := t.TempDir()
		missing := filepath.Join(root, "missing.txt")
		src := filepath.Join(root, "ok.txt")
		dest := filepath.Join(root, "done", "ok.txt")
		testutil.WriteFile(t, src, []byte("ok"))

		log := newExecutor(t, newTrash(t)).Execute(planOf(
			action("a1", model.ActionMove, missing, filepath.Join(root, "x")),
			action("a2", model.ActionMove, src, dest),
		))

		if len(log.Entries) != 2 {
			t.Fatalf("entries = %d, want 2", len(log.Entries))
		}
		if log.Entries[0].Outcome != model.OutcomeFailed {
			t.Errorf("first outcome = %s, want failed", log.Entries[0].Outcome)
		}
		if log.Entries[1].Outcome != model.OutcomeSuccess {
			t.Errorf("second outcome = %s, want success", log.Entries[1].Outcome)
		}
		if !testutil.Exists(dest) {
			t.Error("second action did not run")
		}
	})
}
