package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tidy-go/internal/config"
	"tidy-go/internal/history"
	"tidy-go/internal/model"
	"tidy-go/internal/tidy"
	"tidy-go/internal/trash"
)

// App is the application layer between the CLI and the engine. It constructs
// all components from config with explicit dependency injection (no implicit
// singletons), exposes high-level operations that accept raw string paths,
// and manages store and log lifecycles on Close.
type App struct {
	cfg      *config.Config
	scanner  *tidy.Scanner
	planner  *tidy.Planner
	executor *tidy.Executor
	undoer   *tidy.Undoer
	history  *tidy.History
	logger   tidy.Logger
	logFile  *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Scan", "Apply").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID+" "+operation)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	clock := tidy.RealClock{}
	idgen := tidy.UUIDGenerator{}

	tr, err := trash.NewFileSystemTrash(cfg.Trash.Dir, idgen)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating trash: %w", err)
	}

	store, err := history.NewStoreFromConfig(cfg.History)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating history store: %w", err)
	}

	undoer := tidy.NewUndoer(tr, logger)

	return &App{
		cfg:      cfg,
		scanner:  tidy.NewScanner(logger),
		planner:  tidy.NewPlanner(clock, idgen),
		executor: tidy.NewExecutor(tr, logger, clock),
		undoer:   undoer,
		history:  tidy.NewHistory(store, undoer, clock, idgen, logger),
		logger:   logger,
		logFile:  logFile,
	}, nil
}

// StartScan starts a scan of the given directory and returns its job handle.
// The caller can cancel the job and must Wait for the result.
func (a *App) StartScan(rawPath string, onProgress tidy.ProgressFunc) (*tidy.ScanJob, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	return a.scanner.Scan(absPath, onProgress)
}

// Scan runs a scan to completion and returns its result.
func (a *App) Scan(rawPath string, onProgress tidy.ProgressFunc) (model.ScanResult, error) {
	job, err := a.StartScan(rawPath, onProgress)
	if err != nil {
		return model.ScanResult{}, err
	}
	return job.Wait(), nil
}

// LoadRules reads the configured rules file. A missing file yields an empty
// rule list.
func (a *App) LoadRules() ([]model.Rule, error) {
	return config.ReadRulesFromFile(a.cfg.RulesPath)
}

// BuildPlan scans the given directory and plans actions for the configured
// enabled rules. It never mutates the filesystem; the returned plan is for
// review and a later, separately approved Execute call.
func (a *App) BuildPlan(rawPath string) (model.Plan, model.ScanResult, error) {
	result, err := a.Scan(rawPath, nil)
	if err != nil {
		return model.Plan{}, model.ScanResult{}, err
	}

	rules, err := a.LoadRules()
	if err != nil {
		return model.Plan{}, result, fmt.Errorf("loading rules: %w", err)
	}

	plan := a.planner.Plan(result.Files, rules)
	return plan, result, nil
}

// Execute applies an approved plan and records the execution as a durable
// history session. Approval is the caller's responsibility: the engine never
// executes a plan without an explicit external signal.
func (a *App) Execute(sourceDir string, plan model.Plan) (model.ExecutionLog, model.HistorySession, error) {
	log := a.executor.Execute(plan)
	session, err := a.history.Record(sourceDir, log)
	if err != nil {
		return log, model.HistorySession{}, fmt.Errorf("recording history: %w", err)
	}
	return log, session, nil
}

// Undo reverses a prior execution log directly, without going through the
// history store.
func (a *App) Undo(log model.ExecutionLog) model.UndoLog {
	return a.undoer.Undo(log)
}

// Sessions returns all recorded history sessions in order.
func (a *App) Sessions() ([]model.HistorySession, error) {
	return a.history.Sessions()
}

// Session returns one history session, or nil if it does not exist.
func (a *App) Session(id string) (*model.HistorySession, error) {
	return a.history.Get(id)
}

// LatestSession returns the most recent history session, or nil when the
// history is empty.
func (a *App) LatestSession() (*model.HistorySession, error) {
	sessions, err := a.history.Sessions()
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[len(sessions)-1], nil
}

// UndoSession reverses a recorded session, appending undo records to it.
func (a *App) UndoSession(id string) (model.UndoLog, error) {
	return a.history.UndoSession(id)
}

// UndoItem reverses a single action of a recorded session.
func (a *App) UndoItem(sessionID, actionID string) (model.UndoEntry, error) {
	return a.history.UndoItem(sessionID, actionID)
}

// DeleteSession removes one session from the history store.
func (a *App) DeleteSession(id string) error {
	return a.history.Delete(id)
}

// ClearHistory removes all sessions from the history store.
func (a *App) ClearHistory() error {
	return a.history.Clear()
}

// PathExists reports whether a recorded current path still exists on disk.
func (a *App) PathExists(path string) bool {
	return a.history.PathExists(path)
}

// Close releases the history store and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.history.Close(); err != nil {
		firstErr = fmt.Errorf("closing history store: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
