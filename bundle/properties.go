package bundle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// TypeFile is the wire type of file-like items.
const TypeFile = "file"

// Properties is the metadata record serialized ahead of an item's bytes.
type Properties struct {
	Type         string
	Name         string
	Size         int64
	ReadOnly     bool
	Executable   bool
	LastModified int64 // unix milliseconds
	Legacy       LegacyProperties
}

// LegacyProperties holds fields still expected by 0.3.x peers. They are
// always zero for items produced here.
type LegacyProperties struct {
	Created   int64
	LastRead  int64
	Directory bool
}

// LastModifiedTime returns LastModified as a time.Time.
func (p Properties) LastModifiedTime() time.Time {
	return time.UnixMilli(p.LastModified)
}

// Map returns the record keyed by its wire names.
func (p Properties) Map() map[string]any {
	return map[string]any{
		"type":          p.Type,
		"name":          p.Name,
		"size":          strconv.FormatInt(p.Size, 10),
		"read_only":     p.ReadOnly,
		"executable":    p.Executable,
		"last_modified": strconv.FormatInt(p.LastModified, 10),
		"created":       p.Legacy.Created,
		"last_read":     p.Legacy.LastRead,
		"directory":     p.Legacy.Directory,
	}
}

type wireProperties struct {
	Type         string          `json:"type"`
	Name         string          `json:"name"`
	Size         json.RawMessage `json:"size"`
	ReadOnly     bool            `json:"read_only"`
	Executable   bool            `json:"executable"`
	LastModified json.RawMessage `json:"last_modified"`
	Created      int64           `json:"created"`
	LastRead     int64           `json:"last_read"`
	Directory    bool            `json:"directory"`
}

// MarshalJSON encodes the record in wire key order with size and
// last_modified as decimal strings.
func (p Properties) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireProperties{
		Type:         p.Type,
		Name:         p.Name,
		Size:         json.RawMessage(strconv.Quote(strconv.FormatInt(p.Size, 10))),
		ReadOnly:     p.ReadOnly,
		Executable:   p.Executable,
		LastModified: json.RawMessage(strconv.Quote(strconv.FormatInt(p.LastModified, 10))),
		Created:      p.Legacy.Created,
		LastRead:     p.Legacy.LastRead,
		Directory:    p.Legacy.Directory,
	})
}

// UnmarshalJSON decodes a wire record. size and last_modified may arrive as
// decimal strings or JSON numbers.
func (p *Properties) UnmarshalJSON(data []byte) error {
	var wire wireProperties
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("decode properties: %w", err)
	}
	if wire.Type == "" {
		return errors.New("decode properties: type is required")
	}

	size, err := decodeDecimal("size", wire.Size)
	if err != nil {
		return err
	}
	lastModified, err := decodeDecimal("last_modified", wire.LastModified)
	if err != nil {
		return err
	}

	*p = Properties{
		Type:         wire.Type,
		Name:         wire.Name,
		Size:         size,
		ReadOnly:     wire.ReadOnly,
		Executable:   wire.Executable,
		LastModified: lastModified,
		Legacy: LegacyProperties{
			Created:   wire.Created,
			LastRead:  wire.LastRead,
			Directory: wire.Directory,
		},
	}
	return nil
}

func decodeDecimal(key string, raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("decode %s: %w", key, err)
		}
	}

	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode %s %q: %w", key, text, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("decode %s: negative value %d", key, v)
	}
	return v, nil
}
