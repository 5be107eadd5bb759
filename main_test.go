package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"nitroshare/bundle"
	"nitroshare/config"
	"nitroshare/storage"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()

	t.Setenv(config.DataDirEnv, t.TempDir())
	cfg, cfgPath, err := config.LoadOrCreate()
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}

	out := new(bytes.Buffer)
	return &app{
		cfg:     cfg,
		dataDir: filepath.Dir(cfgPath),
		logger:  zaptest.NewLogger(t),
		out:     out,
	}, out
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write source %q: %v", name, err)
	}
	return path
}

func listHistory(t *testing.T, a *app) []storage.ItemRecord {
	t.Helper()

	store, _, err := storage.Open(a.dataDir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	items, err := store.ListItems("", 0)
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	return items
}

func TestDescribePrintsWireRecord(t *testing.T) {
	a, out := newTestApp(t)
	src := writeSource(t, t.TempDir(), "hello.txt", "hello, world\n")

	if err := a.run(context.Background(), "describe", []string{src}); err != nil {
		t.Fatalf("describe failed: %v", err)
	}

	var wire map[string]any
	if err := json.Unmarshal(out.Bytes(), &wire); err != nil {
		t.Fatalf("describe output is not JSON: %v (%q)", err, out.String())
	}
	if wire["type"] != "file" || wire["name"] != "hello.txt" || wire["size"] != "13" {
		t.Fatalf("unexpected record %v", wire)
	}
	if wire["directory"] != false || wire["created"] != float64(0) {
		t.Fatalf("unexpected legacy fields %v", wire)
	}

	if err := a.run(context.Background(), "describe", nil); err == nil {
		t.Fatalf("expected describe without files to fail")
	}
}

func TestCopyIntoDownloadDirectoryRecordsHistory(t *testing.T) {
	a, out := newTestApp(t)
	src := writeSource(t, t.TempDir(), "photo.raw", strings.Repeat("pixel", 30_000))
	mtime := time.Date(2022, 8, 9, 10, 11, 12, 0, time.UTC)
	if err := os.Chtimes(src, mtime, mtime); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	if err := a.run(context.Background(), "copy", []string{src}); err != nil {
		t.Fatalf("copy failed: %v", err)
	}

	dest := filepath.Join(a.cfg.DownloadDirectory, "photo.raw")
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	want, _ := os.ReadFile(src)
	if !bytes.Equal(got, want) {
		t.Fatalf("destination contents differ from source")
	}
	info, err := os.Stat(dest)
	if err != nil {
		t.Fatalf("stat destination: %v", err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Fatalf("expected modification time %v, got %v", mtime, info.ModTime())
	}
	if _, err := os.Stat(dest + ".part"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected temp file to be gone, stat err=%v", err)
	}

	sum := sha256.Sum256(want)
	checksum := hex.EncodeToString(sum[:])
	if !strings.HasPrefix(out.String(), checksum) {
		t.Fatalf("expected checksum in output, got %q", out.String())
	}

	items := listHistory(t, a)
	if len(items) != 2 {
		t.Fatalf("expected send and receive rows, got %+v", items)
	}
	for _, item := range items {
		if item.TransferStatus != storage.StatusComplete || item.Checksum != checksum {
			t.Fatalf("unexpected history row %+v", item)
		}
		if item.Direction == storage.DirectionReceive && item.StoredPath != dest {
			t.Fatalf("expected receive row to point at %q, got %q", dest, item.StoredPath)
		}
	}

	out.Reset()
	if err := a.run(context.Background(), "history", []string{"-direction", "receive"}); err != nil {
		t.Fatalf("history failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "complete") || !strings.Contains(lines[0], dest) {
		t.Fatalf("unexpected history output %q", out.String())
	}
}

func TestCopyIntoSourceDirectoryIsRejected(t *testing.T) {
	a, _ := newTestApp(t)
	dir := t.TempDir()
	src := writeSource(t, dir, "keep.txt", "hello, world\n")

	err := a.run(context.Background(), "copy", []string{src, dir})
	if !errors.Is(err, bundle.ErrSameFile) {
		t.Fatalf("expected ErrSameFile, got %v", err)
	}

	got, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read source: %v", err)
	}
	if string(got) != "hello, world\n" {
		t.Fatalf("source was modified: %q", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read source dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the source in its directory, got %d entries", len(entries))
	}
	if items := listHistory(t, a); len(items) != 0 {
		t.Fatalf("expected rejected copy to record nothing, got %+v", items)
	}
}

func TestCopyKeepsExistingDestination(t *testing.T) {
	a, _ := newTestApp(t)
	destDir := t.TempDir()
	existing := writeSource(t, destDir, "notes.txt", "old notes")
	src := writeSource(t, t.TempDir(), "notes.txt", "new notes")

	if err := a.run(context.Background(), "copy", []string{src, destDir}); err != nil {
		t.Fatalf("copy failed: %v", err)
	}

	old, err := os.ReadFile(existing)
	if err != nil {
		t.Fatalf("read existing: %v", err)
	}
	if string(old) != "old notes" {
		t.Fatalf("existing destination was overwritten: %q", old)
	}

	renamed, err := os.ReadFile(filepath.Join(destDir, "notes (1).txt"))
	if err != nil {
		t.Fatalf("read renamed destination: %v", err)
	}
	if string(renamed) != "new notes" {
		t.Fatalf("unexpected renamed contents %q", renamed)
	}
}

func TestCopyWithoutRecording(t *testing.T) {
	a, _ := newTestApp(t)
	src := writeSource(t, t.TempDir(), "quiet.txt", "shh")

	if err := a.run(context.Background(), "copy", []string{"-n", src}); err != nil {
		t.Fatalf("copy -n failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(a.cfg.DownloadDirectory, "quiet.txt")); err != nil {
		t.Fatalf("expected destination file: %v", err)
	}
	if items := listHistory(t, a); len(items) != 0 {
		t.Fatalf("expected no history rows, got %+v", items)
	}
}

func TestCopyMissingSource(t *testing.T) {
	a, _ := newTestApp(t)

	err := a.run(context.Background(), "copy", []string{filepath.Join(t.TempDir(), "missing.bin")})
	if !errors.Is(err, bundle.ErrResourceUnavailable) {
		t.Fatalf("expected ErrResourceUnavailable, got %v", err)
	}
	if err := a.run(context.Background(), "copy", nil); err == nil {
		t.Fatalf("expected copy without arguments to fail")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	a, _ := newTestApp(t)
	if err := a.run(context.Background(), "teleport", nil); err == nil {
		t.Fatalf("expected unknown command error")
	}
}
