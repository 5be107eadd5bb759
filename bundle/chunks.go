package bundle

import (
	"errors"
	"io"
)

// DefaultChunkSize is the read buffer size used when none is configured.
const DefaultChunkSize = 64 * 1024

// ChunkReader walks an item opened for reading as a finite sequence of
// chunks. It cannot be restarted; reopen the item and build a new reader.
type ChunkReader struct {
	item    Item
	buf     []byte
	done    bool
	pending error
}

// NewChunkReader reads item in chunks of at most size bytes.
func NewChunkReader(item Item, size int) *ChunkReader {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &ChunkReader{item: item, buf: make([]byte, size)}
}

// Next returns the next chunk and true, or nil and false once the item is
// exhausted. The returned slice is only valid until the following call.
//
// Bytes read together with an error are returned first; the error is
// reported by the following call, after which the reader is exhausted.
func (r *ChunkReader) Next() ([]byte, bool, error) {
	if r.done {
		return nil, false, nil
	}
	if r.pending != nil {
		err := r.pending
		r.pending = nil
		r.done = true
		return nil, false, err
	}

	n, err := r.item.Read(r.buf)
	if n > 0 {
		r.pending = err
		return r.buf[:n], true, nil
	}
	r.done = true
	return nil, false, err
}

type itemReader struct {
	item Item
}

// NewReader adapts an item opened for reading to io.Reader. A zero-length
// item read is reported as io.EOF.
func NewReader(item Item) io.Reader {
	return itemReader{item: item}
}

func (r itemReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := r.item.Read(p)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

type itemWriter struct {
	item Item
}

// NewWriter adapts an item opened for writing to io.Writer.
func NewWriter(item Item) io.Writer {
	return itemWriter{item: item}
}

func (w itemWriter) Write(p []byte) (int, error) {
	if err := w.item.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// ReadAll opens item for reading, returns its full contents and closes it.
func ReadAll(item Item) ([]byte, error) {
	if err := item.Open(ModeRead); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(NewReader(item))
	return data, errors.Join(err, item.Close())
}
