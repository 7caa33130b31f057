//go:build !linux && !darwin

package fileutil

import (
	"os"
	"time"
)

// BirthTime reports that creation time is unavailable on this platform.
func BirthTime(path string) (time.Time, bool, error) {
	if _, err := os.Lstat(path); err != nil {
		return time.Time{}, false, err
	}
	return time.Time{}, false, nil
}
