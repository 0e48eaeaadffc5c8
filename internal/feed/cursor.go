package feed

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CursorKind tags the encoding carried by a Cursor.
type CursorKind string

const (
	CursorID     CursorKind = "id"
	CursorOffset CursorKind = "offset"
)

// Cursor is the decoded form of a page token. Kind CursorID resumes strictly
// after the post at (AfterCreatedAt, AfterID) in recent order; Kind
// CursorOffset resumes after Offset ranked posts.
type Cursor struct {
	Kind           CursorKind
	AfterID        primitive.ObjectID
	AfterCreatedAt time.Time
	Offset         int64
}

// StartCursor returns the cursor of the first page for mode.
func StartCursor(mode SortMode) Cursor {
	if mode.OffsetBased() {
		return Cursor{Kind: CursorOffset}
	}
	return Cursor{Kind: CursorID}
}

// IsStart reports whether c points at the first page.
func (c Cursor) IsStart() bool {
	return c.AfterID.IsZero() && c.Offset == 0
}

// Encode returns the opaque token for c.
func (c Cursor) Encode() string {
	var raw string
	switch c.Kind {
	case CursorOffset:
		raw = string(CursorOffset) + ":" + strconv.FormatInt(c.Offset, 10)
	default:
		raw = string(CursorID) + ":" + strconv.FormatInt(c.AfterCreatedAt.UnixNano(), 10) + ":" + c.AfterID.Hex()
	}
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses token for mode. An empty token is the start cursor.
// Tokens that do not decode, or that belong to the other pagination kind,
// are rejected with ErrInvalidInput.
func DecodeCursor(mode SortMode, token string) (Cursor, error) {
	start := StartCursor(mode)
	if token == "" {
		return start, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: malformed cursor", ErrInvalidInput)
	}
	kind, value, ok := strings.Cut(string(raw), ":")
	if !ok || value == "" {
		return Cursor{}, fmt.Errorf("%w: malformed cursor", ErrInvalidInput)
	}
	if CursorKind(kind) != start.Kind {
		return Cursor{}, fmt.Errorf("%w: cursor does not belong to sort %q", ErrInvalidInput, mode)
	}

	switch start.Kind {
	case CursorOffset:
		offset, err := strconv.ParseInt(value, 10, 64)
		if err != nil || offset < 0 {
			return Cursor{}, fmt.Errorf("%w: cursor offset must be a non-negative integer", ErrInvalidInput)
		}
		start.Offset = offset
	default:
		nanos, hex, ok := strings.Cut(value, ":")
		if !ok {
			return Cursor{}, fmt.Errorf("%w: malformed cursor", ErrInvalidInput)
		}
		createdAt, err := strconv.ParseInt(nanos, 10, 64)
		if err != nil || createdAt <= 0 {
			return Cursor{}, fmt.Errorf("%w: cursor time must be a positive integer", ErrInvalidInput)
		}
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil || id.IsZero() {
			return Cursor{}, fmt.Errorf("%w: cursor is not a valid post id", ErrInvalidInput)
		}
		start.AfterID = id
		start.AfterCreatedAt = time.Unix(0, createdAt).UTC()
	}
	return start, nil
}
