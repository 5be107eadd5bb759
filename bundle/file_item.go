package bundle

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileItem is an Item backed by a regular file.
type FileItem struct {
	path  string
	props Properties

	state itemState
	file  *os.File
}

var _ Item = (*FileItem)(nil)

// NewFileItem snapshots the metadata of the file at path. The snapshot is not
// refreshed afterwards; no stream is opened.
func NewFileItem(path string) (*FileItem, error) {
	item := &FileItem{path: path}

	info, err := os.Stat(item.path)
	if err != nil {
		return nil, unavailable("stat", item.path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, unavailable("stat", item.path, fmt.Errorf("not a regular file (%s)", info.Mode().Type()))
	}

	item.props = Properties{
		Type:         TypeFile,
		Name:         info.Name(),
		Size:         info.Size(),
		ReadOnly:     !canWrite(item.path, info),
		Executable:   canExecute(item.path, info),
		LastModified: info.ModTime().UnixMilli(),
	}
	return item, nil
}

// NewFileItemIn is NewFileItem for filename relative to dir.
func NewFileItemIn(dir, filename string) (*FileItem, error) {
	return NewFileItem(filepath.Join(dir, filename))
}

// NewReceivingFileItem returns an item for a destination file that is about
// to be written from a peer's record. path need not exist yet.
func NewReceivingFileItem(path string, props Properties) *FileItem {
	if props.Type == "" {
		props.Type = TypeFile
	}
	return &FileItem{path: path, props: props}
}

// Path returns the backing file path.
func (f *FileItem) Path() string {
	return f.path
}

// Properties returns the metadata captured at construction.
func (f *FileItem) Properties() Properties {
	return f.props
}

// Open opens the backing file for reading, or creates/truncates it for writing.
func (f *FileItem) Open(mode Mode) error {
	if err := f.state.begin(f.path, mode); err != nil {
		return err
	}

	var (
		file *os.File
		err  error
	)
	switch mode {
	case ModeRead:
		file, err = os.Open(f.path)
	case ModeWrite:
		file, err = os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	}
	if err != nil {
		return unavailable("open", f.path, err)
	}

	f.file = file
	f.state.opened(mode)
	return nil
}

// Read fills p from the file. It returns 0 and a nil error at end of file.
func (f *FileItem) Read(p []byte) (int, error) {
	if err := f.state.require("read", f.path, ModeRead); err != nil {
		return 0, err
	}

	n, err := f.file.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, ioFailure("read", f.path, err)
	}
	return n, nil
}

// Write writes all of p to the file.
func (f *FileItem) Write(p []byte) error {
	if err := f.state.require("write", f.path, ModeWrite); err != nil {
		return err
	}

	if _, err := f.file.Write(p); err != nil {
		return ioFailure("write", f.path, err)
	}
	return nil
}

// Close releases the open file, if any. The item may be opened again afterwards.
func (f *FileItem) Close() error {
	if f.file == nil {
		f.state.reset()
		return nil
	}

	file := f.file
	f.file = nil
	f.state.reset()
	if err := file.Close(); err != nil {
		return ioFailure("close", f.path, err)
	}
	return nil
}
