package history_test

import (
	"path/filepath"
	"testing"

	"tidy-go/internal/config"
	"tidy-go/internal/history"
)

func TestNewStoreFromConfig(t *testing.T) {
	t.Run("jsonfile", func(t *testing.T) {
		store, err := history.NewStoreFromConfig(config.HistoryConfig{
			Type: "jsonfile",
			Path: filepath.Join(t.TempDir(), "history.json"),
		})
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		defer store.Close()
		if _, ok := store.(*history.JSONFileStore); !ok {
			t.Errorf("store type = %T, want *JSONFileStore", store)
		}
	})

	t.Run("empty type defaults to jsonfile", func(t *testing.T) {
		store, err := history.NewStoreFromConfig(config.HistoryConfig{
			Path: filepath.Join(t.TempDir(), "history.json"),
		})
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		defer store.Close()
		if _, ok := store.(*history.JSONFileStore); !ok {
			t.Errorf("store type = %T, want *JSONFileStore", store)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		store, err := history.NewStoreFromConfig(config.HistoryConfig{
			Type:    "sqlite",
			DataDir: t.TempDir(),
		})
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		defer store.Close()
		if _, ok := store.(*history.SQLiteStore); !ok {
			t.Errorf("store type = %T, want *SQLiteStore", store)
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		if _, err := history.NewStoreFromConfig(config.HistoryConfig{Type: "jsonfile"}); err == nil {
			t.Error("jsonfile without path succeeded, want error")
		}
		if _, err := history.NewStoreFromConfig(config.HistoryConfig{Type: "sqlite"}); err == nil {
			t.Error("sqlite without data_dir succeeded, want error")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := history.NewStoreFromConfig(config.HistoryConfig{Type: "redis"}); err == nil {
			t.Error("unknown store type succeeded, want error")
		}
	})
}
