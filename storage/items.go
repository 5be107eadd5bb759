package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"nitroshare/bundle"
)

const itemColumns = `
	item_id,
	direction,
	name,
	size,
	read_only,
	executable,
	last_modified,
	stored_path,
	checksum,
	transfer_status,
	created_at,
	updated_at`

// RecordItem stores a pending history row for an item about to be sent or
// received, using the property snapshot as the item description.
func (s *Store) RecordItem(direction, storedPath string, props bundle.Properties) (ItemRecord, error) {
	record := ItemRecord{
		ItemID:         uuid.NewString(),
		Direction:      direction,
		Name:           props.Name,
		Size:           props.Size,
		ReadOnly:       props.ReadOnly,
		Executable:     props.Executable,
		LastModified:   props.LastModified,
		StoredPath:     storedPath,
		TransferStatus: StatusPending,
	}
	if err := s.SaveItem(&record); err != nil {
		return ItemRecord{}, err
	}
	return record, nil
}

// SaveItem inserts a new item row, filling in timestamps and a default status.
func (s *Store) SaveItem(item *ItemRecord) error {
	if item.ItemID == "" {
		return errors.New("item_id is required")
	}
	if item.Name == "" {
		return errors.New("name is required")
	}
	if item.StoredPath == "" {
		return errors.New("stored_path is required")
	}
	if item.Size < 0 {
		return errors.New("size must be >= 0")
	}
	if err := validateDirection(item.Direction); err != nil {
		return err
	}
	if item.TransferStatus == "" {
		item.TransferStatus = StatusPending
	}
	if err := validateStatus(item.TransferStatus); err != nil {
		return err
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = nowUnixMilli()
	}
	item.UpdatedAt = item.CreatedAt

	_, err := s.db.Exec(
		`INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ItemID,
		item.Direction,
		item.Name,
		item.Size,
		boolToInt(item.ReadOnly),
		boolToInt(item.Executable),
		item.LastModified,
		item.StoredPath,
		nullString(item.Checksum),
		item.TransferStatus,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item %q: %w", item.ItemID, err)
	}

	return nil
}

// UpdateItemStatus sets transfer_status and, when non-empty, the checksum.
func (s *Store) UpdateItemStatus(itemID, status, checksum string) error {
	if itemID == "" {
		return errors.New("item_id is required")
	}
	if err := validateStatus(status); err != nil {
		return err
	}

	res, err := s.db.Exec(
		`UPDATE items
		SET transfer_status = ?,
			checksum = COALESCE(?, checksum),
			updated_at = ?
		WHERE item_id = ?`,
		status,
		nullString(checksum),
		nowUnixMilli(),
		itemID,
	)
	if err != nil {
		return fmt.Errorf("update item status %q: %w", itemID, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for item status %q: %w", itemID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetItemByID fetches an item row by ID.
func (s *Store) GetItemByID(itemID string) (*ItemRecord, error) {
	row := s.db.QueryRow(`SELECT `+itemColumns+` FROM items WHERE item_id = ?`, itemID)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get item %q: %w", itemID, err)
	}

	return item, nil
}

// ListItems returns the newest items first. An empty direction lists both
// directions; limit <= 0 means no limit.
func (s *Store) ListItems(direction string, limit int) ([]ItemRecord, error) {
	if direction != "" {
		if err := validateDirection(direction); err != nil {
			return nil, err
		}
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(
		`SELECT `+itemColumns+`
		FROM items
		WHERE (? = '' OR direction = ?)
		ORDER BY created_at DESC, item_id
		LIMIT ?`,
		direction,
		direction,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]ItemRecord, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item rows: %w", err)
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(scanner rowScanner) (*ItemRecord, error) {
	var (
		item       ItemRecord
		readOnly   int
		executable int
		checksum   sql.NullString
	)

	if err := scanner.Scan(
		&item.ItemID,
		&item.Direction,
		&item.Name,
		&item.Size,
		&readOnly,
		&executable,
		&item.LastModified,
		&item.StoredPath,
		&checksum,
		&item.TransferStatus,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}

	item.ReadOnly = readOnly != 0
	item.Executable = executable != 0
	item.Checksum = checksum.String
	return &item, nil
}
