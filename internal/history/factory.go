package history

import (
	"fmt"
	"path/filepath"

	"tidy-go/internal/config"
	"tidy-go/internal/tidy"
)

// NewStoreFromConfig creates a history store based on the configuration.
func NewStoreFromConfig(cfg config.HistoryConfig) (tidy.HistoryStore, error) {
	switch cfg.Type {
	case "jsonfile", "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("jsonfile history requires a path")
		}
		return NewJSONFileStore(cfg.Path)
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite history requires a data_dir")
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "history.db"))
	default:
		return nil, fmt.Errorf("unknown history store type: %s", cfg.Type)
	}
}
