package model

import "time"

// FileRecord is an immutable snapshot of one filesystem entry taken at scan
// time. Its identity is the absolute path; records are never mutated, only
// superseded by a new scan.
type FileRecord struct {
	Path      string // Absolute path on host
	Name      string // Base name, display form
	Ext       string // Lowercased extension including the dot ("" for none)
	Size      int64  // Bytes; zero for directories
	Modified  *time.Time
	Created   *time.Time // Birth time where the platform exposes it
	IsDir     bool
	IsSymlink bool
	Readable  bool // False when attribute reads failed for this entry
}

// ScanError records a single non-fatal problem encountered during a walk.
type ScanError struct {
	Path    string
	Message string
}

// ScanResult is everything a tree walk produced. When Cancelled is true the
// slices hold whatever was accumulated before cancellation was observed;
// partial results are valid, not an error.
type ScanResult struct {
	Root      string
	Files     []FileRecord
	Errors    []ScanError
	Cancelled bool
}
