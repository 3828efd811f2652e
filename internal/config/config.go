package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for tidy.
type Config struct {
	BaseDir   string        `toml:"base_dir"`
	LogDir    string        `toml:"log_dir"`
	RulesPath string        `toml:"rules_path"`
	Trash     TrashConfig   `toml:"trash"`
	History   HistoryConfig `toml:"history"`
}

// TrashConfig holds settings for the recoverable holding area.
type TrashConfig struct {
	Dir string `toml:"dir"`
}

// HistoryConfig represents configuration for the durable history store.
// This uses a tagged union pattern - the Type field determines which other
// fields are relevant.
type HistoryConfig struct {
	Type    string `toml:"type"`               // "jsonfile" or "sqlite"
	Path    string `toml:"path,omitempty"`     // only used for type=jsonfile
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// NewConfig creates a Config with defaults rooted under baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		RulesPath: filepath.Join(baseDir, "rules.toml"),
		Trash: TrashConfig{
			Dir: filepath.Join(baseDir, "trash"),
		},
		History: HistoryConfig{
			Type: "jsonfile",
			Path: filepath.Join(baseDir, "history.json"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
