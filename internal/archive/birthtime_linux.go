//go:build linux

package archive

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

// birthTime uses statx btime. Filesystems that do not record it fall back to
// the modification time, which for files this program writes once is the
// same instant.
func birthTime(path string, fi fs.FileInfo) time.Time {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW, unix.STATX_BTIME, &stx)
	if err != nil || stx.Mask&unix.STATX_BTIME == 0 {
		return fi.ModTime()
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec))
}
