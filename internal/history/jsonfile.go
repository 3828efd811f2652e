package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"tidy-go/internal/model"
	"tidy-go/internal/tidy"
)

// fileVersion is the on-disk format version of the history file.
const fileVersion = 1

// JSONFileStore persists sessions in a single JSON file. Every mutation
// rewrites the whole file atomically (temp file + rename), so a crash
// mid-write leaves the previous file intact, never a corrupt partial one.
type JSONFileStore struct {
	path string
	mu   sync.Mutex
}

// historyFile is the on-disk shape: an ordered list of sessions.
type historyFile struct {
	Version  int                    `json:"version"`
	Sessions []model.HistorySession `json:"sessions"`
}

// NewJSONFileStore creates a store backed by the file at path. The file is
// created lazily on first write.
func NewJSONFileStore(path string) (*JSONFileStore, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving history path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	return &JSONFileStore{path: absPath}, nil
}

func (s *JSONFileStore) Append(session model.HistorySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}
	file.Sessions = append(file.Sessions, session)
	return s.save(file)
}

func (s *JSONFileStore) AppendItems(sessionID string, items []model.HistoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}
	for i := range file.Sessions {
		if file.Sessions[i].ID == sessionID {
			file.Sessions[i].Items = append(file.Sessions[i].Items, items...)
			return s.save(file)
		}
	}
	return fmt.Errorf("session not found: %s", sessionID)
}

func (s *JSONFileStore) List() ([]model.HistorySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}
	return file.Sessions, nil
}

func (s *JSONFileStore) Get(id string) (*model.HistorySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range file.Sessions {
		if file.Sessions[i].ID == id {
			return &file.Sessions[i], nil
		}
	}
	return nil, nil
}

func (s *JSONFileStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}
	kept := file.Sessions[:0]
	for _, session := range file.Sessions {
		if session.ID != id {
			kept = append(kept, session)
		}
	}
	file.Sessions = kept
	return s.save(file)
}

func (s *JSONFileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(&historyFile{Version: fileVersion})
}

func (s *JSONFileStore) Close() error { return nil }

// load reads the whole history file. A missing file is an empty history.
func (s *JSONFileStore) load() (*historyFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &historyFile{Version: fileVersion}, nil
		}
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	var file historyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing history file: %w", err)
	}
	return &file, nil
}

// save rewrites the whole file atomically: write to a temp file in the same
// directory, then rename over the target.
func (s *JSONFileStore) save(file *historyFile) error {
	file.Version = fileVersion

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".history-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replacing history file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that JSONFileStore implements tidy.HistoryStore
var _ tidy.HistoryStore = (*JSONFileStore)(nil)
