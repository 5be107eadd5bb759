package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound indicates a requested row does not exist.
var ErrNotFound = errors.New("storage: record not found")

const (
	// DirectionSend marks items read locally and sent to a peer.
	DirectionSend = "send"
	// DirectionReceive marks items written locally from a peer.
	DirectionReceive = "receive"
)

const (
	StatusPending  = "pending"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// ItemRecord is the SQLite representation of one transferred item.
type ItemRecord struct {
	ItemID         string
	Direction      string
	Name           string
	Size           int64
	ReadOnly       bool
	Executable     bool
	LastModified   int64
	StoredPath     string
	Checksum       string
	TransferStatus string
	CreatedAt      int64
	UpdatedAt      int64
}

func validateDirection(direction string) error {
	switch direction {
	case DirectionSend, DirectionReceive:
		return nil
	default:
		return fmt.Errorf("invalid transfer direction %q", direction)
	}
}

func validateStatus(status string) error {
	switch status {
	case StatusPending, StatusComplete, StatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid transfer status %q", status)
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nowUnixMilli() int64 {
	return time.Now().UnixMilli()
}
