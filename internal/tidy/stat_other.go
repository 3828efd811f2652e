//go:build !unix

package tidy

import (
	"io/fs"
	"time"
)

func birthTime(fs.FileInfo) *time.Time {
	return nil
}
