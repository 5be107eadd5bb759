package bundle

import "io/fs"

// permWritable reports whether any write bit is set.
func permWritable(mode fs.FileMode) bool {
	return mode.Perm()&0o222 != 0
}

// permExecutable reports whether any execute bit is set.
func permExecutable(mode fs.FileMode) bool {
	return mode.Perm()&0o111 != 0
}
