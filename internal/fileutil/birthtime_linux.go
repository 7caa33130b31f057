package fileutil

import (
	"time"

	"golang.org/x/sys/unix"
)

// BirthTime returns the creation time of path. ok is false when the
// filesystem does not record one.
func BirthTime(path string) (time.Time, bool, error) {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW, unix.STATX_BTIME, &stx)
	if err != nil {
		if err == unix.ENOSYS {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	if stx.Mask&unix.STATX_BTIME == 0 {
		return time.Time{}, false, nil
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), true, nil
}
