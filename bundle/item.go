// Package bundle defines transfer items: units of data described by a
// property record and streamed byte by byte during a transfer session.
package bundle

import "fmt"

// Mode selects the direction an item is opened in.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Item is a single transferable resource.
//
// Properties returns the metadata sent ahead of the item's bytes. Open
// acquires the resource for one direction; only Read is valid after
// Open(ModeRead) and only Write after Open(ModeWrite). Read returns 0 with a
// nil error once no bytes remain. Close releases whatever Open acquired and
// is safe to call when the item was never opened or already closed.
//
// An Item is not safe for concurrent use.
type Item interface {
	Properties() Properties
	Open(mode Mode) error
	Read(p []byte) (int, error)
	Write(p []byte) error
	Close() error
}

// itemState tracks the open/closed lifecycle shared by item implementations.
type itemState struct {
	open bool
	mode Mode
}

func (s *itemState) begin(name string, mode Mode) error {
	if mode != ModeRead && mode != ModeWrite {
		return stateViolation("open", name, fmt.Sprintf("unknown %s", mode))
	}
	if s.open {
		return stateViolation("open", name, fmt.Sprintf("already open for %s", s.mode))
	}
	return nil
}

func (s *itemState) opened(mode Mode) {
	s.open = true
	s.mode = mode
}

func (s *itemState) require(op, name string, mode Mode) error {
	if !s.open {
		return stateViolation(op, name, "item is not open")
	}
	if s.mode != mode {
		return stateViolation(op, name, fmt.Sprintf("item is open for %s", s.mode))
	}
	return nil
}

func (s *itemState) reset() {
	s.open = false
}
