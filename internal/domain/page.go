package domain

import (
	"encoding/base64"
	"errors"
	"strconv"
	"time"
)

// MaxPageSize caps every paginated read.
const MaxPageSize = 50

// ErrInvalidCursor is returned for cursors this service did not produce.
var ErrInvalidCursor = errors.New("invalid cursor")

// PageRequest asks for at most Limit rows created strictly before Before, newest first.
type PageRequest struct {
	Before *time.Time
	Limit  int
}

// PageSize caps the caller's limit at MaxPageSize.
func PageSize(limit int) int {
	if limit > MaxPageSize {
		return MaxPageSize
	}
	if limit < 1 {
		return 1
	}
	return limit
}

// EncodeCursor turns a creation timestamp into an opaque page boundary.
func EncodeCursor(t time.Time) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(t.UnixMicro(), 10)))
}

// DecodeCursor reverses EncodeCursor. An empty cursor yields nil.
func DecodeCursor(cursor string) (*time.Time, error) {
	if cursor == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	micros, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	t := time.UnixMicro(micros).UTC()
	return &t, nil
}
