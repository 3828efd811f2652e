//go:build unix && !darwin

package tidy

import (
	"io/fs"
	"time"
)

// birthTime returns the file creation time when the platform exposes it.
// Birth time is not available on most Unix filesystems.
func birthTime(fs.FileInfo) *time.Time {
	return nil
}
