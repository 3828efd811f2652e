package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tidy-go/internal/history/migrations"
	"tidy-go/internal/model"
	"tidy-go/internal/tidy"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// timeLayout stores timestamps as sortable, unambiguous UTC text.
const timeLayout = time.RFC3339

// SQLiteStore persists sessions in a SQLite database. The schema is managed
// through embedded migrations.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the history database at path and brings
// its schema up to date. path can be ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. Exported for tests that need a properly configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

func (s *SQLiteStore) Append(session model.HistorySession) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	// MAX+1, not COUNT: after a delete, COUNT would reuse an existing
	// position and break recorded order.
	var position int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM sessions`).Scan(&position); err != nil {
		return fmt.Errorf("finding next session position: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, position, timestamp, source_dir) VALUES (?, ?, ?, ?)`,
		session.ID, position, session.Timestamp.UTC().Format(timeLayout), session.SourceDir)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	if err := insertItems(ctx, tx, session.ID, 0, session.Items); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) AppendItems(sessionID string, items []model.HistoryItem) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, sessionID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking session: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM items WHERE session_id = ?`, sessionID).Scan(&next)
	if err != nil {
		return fmt.Errorf("finding next item position: %w", err)
	}

	if err := insertItems(ctx, tx, sessionID, next, items); err != nil {
		return err
	}

	return tx.Commit()
}

func insertItems(ctx context.Context, tx *sql.Tx, sessionID string, start int, items []model.HistoryItem) error {
	for i, item := range items {
		currentPath := sql.NullString{String: item.CurrentPath, Valid: item.CurrentPath != ""}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO items (id, session_id, position, action_id, phase, action_type,
			                    file_name, original_path, current_path, timestamp, outcome,
			                    rule_name, message)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, sessionID, start+i, item.ActionID, string(item.Phase), string(item.Type),
			item.FileName, item.OriginalPath, currentPath,
			item.Timestamp.UTC().Format(timeLayout), item.Outcome,
			item.RuleName, item.Message)
		if err != nil {
			return fmt.Errorf("inserting item %s: %w", item.ID, err)
		}
	}
	return nil
}

func (s *SQLiteStore) List() ([]model.HistorySession, error) {
	ctx := context.Background()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, source_dir FROM sessions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.HistorySession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	for i := range sessions {
		items, err := s.loadItems(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Items = items
	}
	return sessions, nil
}

func (s *SQLiteStore) Get(id string) (*model.HistorySession, error) {
	ctx := context.Background()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, timestamp, source_dir FROM sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}

	items, err := s.loadItems(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	session.Items = items
	return &session, nil
}

func (s *SQLiteStore) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM sessions`); err != nil {
		return fmt.Errorf("clearing sessions: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scannable covers *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanSession(row scannable) (model.HistorySession, error) {
	var session model.HistorySession
	var ts string
	if err := row.Scan(&session.ID, &ts, &session.SourceDir); err != nil {
		return model.HistorySession{}, err
	}

	parsed, err := time.Parse(timeLayout, ts)
	if err != nil {
		return model.HistorySession{}, fmt.Errorf("parsing session timestamp: %w", err)
	}
	session.Timestamp = parsed
	return session, nil
}

func (s *SQLiteStore) loadItems(ctx context.Context, sessionID string) ([]model.HistoryItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action_id, phase, action_type, file_name, original_path,
		        current_path, timestamp, outcome, rule_name, message
		 FROM items WHERE session_id = ? ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	defer rows.Close()

	var items []model.HistoryItem
	for rows.Next() {
		var item model.HistoryItem
		var phase, actionType, ts string
		var currentPath, ruleName, message sql.NullString
		err := rows.Scan(&item.ID, &item.ActionID, &phase, &actionType, &item.FileName,
			&item.OriginalPath, &currentPath, &ts, &item.Outcome, &ruleName, &message)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}

		item.Phase = model.HistoryPhase(phase)
		item.Type = model.ActionType(actionType)
		item.CurrentPath = currentPath.String
		item.RuleName = ruleName.String
		item.Message = message.String

		parsed, err := time.Parse(timeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing item timestamp: %w", err)
		}
		item.Timestamp = parsed

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return items, nil
}

// Compile-time check that SQLiteStore implements tidy.HistoryStore
var _ tidy.HistoryStore = (*SQLiteStore)(nil)
