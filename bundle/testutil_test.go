package bundle

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixtureFile(t *testing.T, dir, name string, data []byte, perm os.FileMode) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write fixture %q: %v", name, err)
	}
	if err := os.Chmod(path, perm); err != nil {
		t.Fatalf("chmod fixture %q: %v", name, err)
	}
	return path
}

func skipIfPrivileged(t *testing.T) {
	t.Helper()
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
}

func mustNewFileItem(t *testing.T, path string) *FileItem {
	t.Helper()

	item, err := NewFileItem(path)
	if err != nil {
		t.Fatalf("NewFileItem(%q) failed: %v", path, err)
	}
	return item
}
