package tidy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"tidy-go/internal/model"
)

// progressInterval is how many discovered entries pass between two progress
// callbacks.
const progressInterval = 100

// ProgressFunc receives periodic scan progress: the running entry count and
// the path currently being processed. It is invoked from the scan goroutine
// and must not block.
type ProgressFunc func(count int, path string)

// errScanCancelled stops the walk when cancellation is observed.
var errScanCancelled = errors.New("scan cancelled")

// Scanner enumerates directory trees. Only one scan is tracked at a time per
// instance; starting a new scan supersedes the handle to the previous one
// without force-cancelling it.
type Scanner struct {
	logger Logger

	mu      sync.Mutex
	current *ScanJob
}

func NewScanner(logger Logger) *Scanner {
	return &Scanner{logger: logger}
}

// ScanJob is the handle to one in-flight scan: a cancellable future over a
// ScanResult. The worker goroutine is the single owner of all accumulation
// state; callers only see the cancel flag and the finished result.
type ScanJob struct {
	root       string
	cancelled  atomic.Bool
	cancelCtx  context.CancelFunc
	done       chan struct{}
	result     model.ScanResult
	onProgress ProgressFunc
}

// Cancel requests cooperative cancellation. It is idempotent and safe to
// call concurrently with the running scan; the flag is observed once per
// enumerated entry.
func (j *ScanJob) Cancel() {
	j.cancelled.Store(true)
	j.cancelCtx()
}

// Done is closed when the scan has finished.
func (j *ScanJob) Done() <-chan struct{} { return j.done }

// Wait blocks until the scan finishes and returns its result. Partial
// results with Cancelled set are valid.
func (j *ScanJob) Wait() model.ScanResult {
	<-j.done
	return j.result
}

// Scan validates the root and starts a worker goroutine walking it.
// A root that cannot be enumerated at all is the only fatal scan error;
// everything below the root is collected per entry without aborting the walk.
func (s *Scanner) Scan(root string, onProgress ProgressFunc) (*ScanJob, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", absRoot)
	}
	// Probe readability up front so enumerator-creation failure surfaces as
	// an error rather than an empty result.
	if _, err := os.ReadDir(absRoot); err != nil {
		return nil, fmt.Errorf("opening root for enumeration: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := &ScanJob{
		root:       absRoot,
		cancelCtx:  cancel,
		done:       make(chan struct{}),
		onProgress: onProgress,
	}

	s.mu.Lock()
	s.current = job
	s.mu.Unlock()

	go func() {
		defer cancel()
		job.result = s.walk(ctx, job)
		close(job.done)
	}()

	return job, nil
}

// Cancel cancels the scanner's current scan, if any. Idempotent.
func (s *Scanner) Cancel() {
	s.mu.Lock()
	job := s.current
	s.mu.Unlock()
	if job != nil {
		job.Cancel()
	}
}

// Current returns the scanner's tracked scan, or nil.
func (s *Scanner) Current() *ScanJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Scanner) walk(ctx context.Context, job *ScanJob) model.ScanResult {
	result := model.ScanResult{Root: job.root}
	count := 0

	err := filepath.WalkDir(job.root, func(path string, d fs.DirEntry, err error) error {
		if job.cancelled.Load() || ctx.Err() != nil {
			return errScanCancelled
		}

		if err != nil {
			// Enumeration error for this entry (commonly an unreadable
			// directory). Record it and keep walking.
			result.Errors = append(result.Errors, model.ScanError{Path: path, Message: err.Error()})
			return nil
		}

		if path == job.root {
			return nil
		}

		count++
		if job.onProgress != nil && count%progressInterval == 0 {
			job.onProgress(count, path)
		}

		result.Files = append(result.Files, buildRecord(path, d, &result))
		return nil
	})

	if errors.Is(err, errScanCancelled) {
		result.Cancelled = true
	}

	s.logger.Info("scan finished",
		"root", job.root,
		"files", len(result.Files),
		"errors", len(result.Errors),
		"cancelled", result.Cancelled)
	return result
}

// buildRecord snapshots one directory entry. Attribute-read failures degrade
// to an unreadable record plus a collected error; they never abort the walk.
func buildRecord(path string, d fs.DirEntry, result *model.ScanResult) model.FileRecord {
	rec := model.FileRecord{
		Path:      path,
		Name:      d.Name(),
		Ext:       strings.ToLower(filepath.Ext(d.Name())),
		IsDir:     d.IsDir(),
		IsSymlink: d.Type()&fs.ModeSymlink != 0,
	}

	info, err := d.Info()
	if err != nil {
		result.Errors = append(result.Errors, model.ScanError{Path: path, Message: err.Error()})
		return rec
	}

	rec.Readable = true
	if !rec.IsDir {
		rec.Size = info.Size()
	}
	mod := info.ModTime()
	rec.Modified = &mod
	rec.Created = birthTime(info)
	return rec
}
