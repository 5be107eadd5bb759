package bundle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SafeName reduces a peer-supplied name to a bare filename.
func SafeName(name string) (string, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	cleaned = filepath.Base(filepath.FromSlash(cleaned))
	switch cleaned {
	case "", ".", "..", string(filepath.Separator):
		return "", fmt.Errorf("invalid item name %q", name)
	}
	return cleaned, nil
}

// maxNameAttempts bounds the search for a free destination name.
const maxNameAttempts = 10000

// UniquePath returns dir/name, or dir/"base (N).ext" for the smallest N that
// does not exist yet, so a receive never replaces an existing file.
func UniquePath(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := filepath.Join(dir, name)
	for n := 1; n <= maxNameAttempts; n++ {
		_, err := os.Lstat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check destination %q: %w", candidate, err)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, n, ext))
	}
	return "", fmt.Errorf("no free destination name for %q in %q", name, dir)
}

// ApplyAttributes restores the modification time and permission bits
// described by props onto a file that has finished receiving.
func ApplyAttributes(path string, props Properties) error {
	if props.LastModified > 0 {
		mtime := props.LastModifiedTime()
		if err := os.Chtimes(path, time.Time{}, mtime); err != nil {
			return fmt.Errorf("set modification time: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat received file: %w", err)
	}

	perm := info.Mode().Perm()
	if props.Executable {
		perm |= 0o111 & ((perm & 0o444) >> 2)
	} else {
		perm &^= 0o111
	}
	if props.ReadOnly {
		perm &^= 0o222
	}
	if perm == info.Mode().Perm() {
		return nil
	}

	if err := os.Chmod(path, perm); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}
	return nil
}
