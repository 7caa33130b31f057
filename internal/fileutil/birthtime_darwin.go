package fileutil

import (
	"time"

	"golang.org/x/sys/unix"
)

// BirthTime returns the creation time of path. ok is false when the
// filesystem does not record one.
func BirthTime(path string) (time.Time, bool, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return time.Time{}, false, err
	}
	if st.Birthtimespec.Sec == 0 && st.Birthtimespec.Nsec == 0 {
		return time.Time{}, false, nil
	}
	return time.Unix(st.Birthtimespec.Unix()), true, nil
}
