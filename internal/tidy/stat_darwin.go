//go:build darwin

package tidy

import (
	"io/fs"
	"syscall"
	"time"
)

// birthTime extracts the file creation time from Darwin stat data.
func birthTime(info fs.FileInfo) *time.Time {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	t := time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec)
	return &t
}
