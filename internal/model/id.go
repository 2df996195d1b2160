package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is the canonical identity of every record. Identities arrive as strings
// from form selects, URL params and some wire payloads; they are normalized to
// ID at the boundary and compared as integers everywhere else.
type ID int64

// NoID marks an absent reference (e.g. a task without a category).
const NoID ID = 0

// ParseID converts a string identity such as "12" or " 12 " to an ID.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoID, fmt.Errorf("empty id")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return NoID, fmt.Errorf("invalid id %q: %w", s, err)
	}
	if n < 0 {
		return NoID, fmt.Errorf("invalid id %q: must not be negative", s)
	}
	return ID(n), nil
}

// String returns the base-10 form, or "" for NoID.
func (id ID) String() string {
	if id == NoID {
		return ""
	}
	return strconv.FormatInt(int64(id), 10)
}

// IsSet reports whether the id references a record.
func (id ID) IsSet() bool { return id != NoID }

// UnmarshalJSON accepts both 7 and "7". An empty string or null decode to NoID.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = NoID
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding id: %w", err)
		}
		if strings.TrimSpace(s) == "" {
			*id = NoID
			return nil
		}
		parsed, err := ParseID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding id: %w", err)
	}
	*id = ID(n)
	return nil
}
