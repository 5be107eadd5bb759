//go:build !unix

package bundle

import "io/fs"

func canWrite(_ string, info fs.FileInfo) bool {
	return permWritable(info.Mode())
}

func canExecute(_ string, info fs.FileInfo) bool {
	return permExecutable(info.Mode())
}
