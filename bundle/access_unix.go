//go:build unix

package bundle

import (
	"errors"
	"io/fs"

	"golang.org/x/sys/unix"
)

// canWrite reports whether the calling process may write path, honoring
// ownership and the effective uid rather than raw permission bits.
func canWrite(path string, info fs.FileInfo) bool {
	return accessible(path, unix.W_OK, permWritable(info.Mode()))
}

func canExecute(path string, info fs.FileInfo) bool {
	return accessible(path, unix.X_OK, permExecutable(info.Mode()))
}

// accessible asks access(2). When the check itself cannot be made (the file
// vanished after stat, for one) the permission bits decide.
func accessible(path string, how uint32, fallback bool) bool {
	err := unix.Access(path, how)
	switch {
	case err == nil:
		return true
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM), errors.Is(err, unix.EROFS):
		return false
	default:
		return fallback
	}
}
