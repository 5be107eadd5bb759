package bundle

import (
	"bytes"
	"time"
)

// MemoryItem is an Item backed by an in-memory byte slice. It advertises
// itself as a file so that any peer able to receive files accepts it.
type MemoryItem struct {
	name         string
	data         []byte
	lastModified int64

	state  itemState
	reader *bytes.Reader
	writer *bytes.Buffer
}

var _ Item = (*MemoryItem)(nil)

// NewMemoryItem returns an item named name holding a copy of data.
func NewMemoryItem(name string, data []byte) *MemoryItem {
	return &MemoryItem{
		name:         name,
		data:         bytes.Clone(data),
		lastModified: time.Now().UnixMilli(),
	}
}

// Properties describes the contents as they were when the last write
// session was closed.
func (m *MemoryItem) Properties() Properties {
	return Properties{
		Type:         TypeFile,
		Name:         m.name,
		Size:         int64(len(m.data)),
		LastModified: m.lastModified,
	}
}

// Bytes returns a copy of the committed contents.
func (m *MemoryItem) Bytes() []byte {
	return bytes.Clone(m.data)
}

func (m *MemoryItem) Open(mode Mode) error {
	if err := m.state.begin(m.name, mode); err != nil {
		return err
	}

	switch mode {
	case ModeRead:
		m.reader = bytes.NewReader(m.data)
	case ModeWrite:
		m.writer = new(bytes.Buffer)
	}
	m.state.opened(mode)
	return nil
}

func (m *MemoryItem) Read(p []byte) (int, error) {
	if err := m.state.require("read", m.name, ModeRead); err != nil {
		return 0, err
	}
	n, _ := m.reader.Read(p)
	return n, nil
}

func (m *MemoryItem) Write(p []byte) error {
	if err := m.state.require("write", m.name, ModeWrite); err != nil {
		return err
	}
	_, _ = m.writer.Write(p)
	return nil
}

// Close commits written contents, if any, and releases the stream.
func (m *MemoryItem) Close() error {
	if m.writer != nil {
		m.data = m.writer.Bytes()
		m.lastModified = time.Now().UnixMilli()
		m.writer = nil
	}
	m.reader = nil
	m.state.reset()
	return nil
}
