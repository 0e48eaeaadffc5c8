package feed

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Window is one page cut out of a peeked result set.
type Window[T any] struct {
	Items      []T
	HasMore    bool
	NextCursor *Cursor
}

// Paginate cuts raw, fetched with limit batchSize+1, into a window of at most
// batchSize items. The extra row only proves that more results exist and is
// dropped. The next cursor continues from the last kept item: its creation
// time and id for id cursors, start.Offset+len(items) for offset cursors.
func Paginate[T any](raw []T, batchSize int, start Cursor, keyOf func(T) (time.Time, primitive.ObjectID)) Window[T] {
	if batchSize < 0 {
		batchSize = 0
	}
	if len(raw) <= batchSize {
		items := raw
		if items == nil {
			items = []T{}
		}
		return Window[T]{Items: items}
	}

	items := raw[:batchSize]
	next := Cursor{Kind: start.Kind}
	switch start.Kind {
	case CursorOffset:
		next.Offset = start.Offset + int64(len(items))
	default:
		next.AfterCreatedAt, next.AfterID = start.AfterCreatedAt, start.AfterID
		if len(items) > 0 {
			next.AfterCreatedAt, next.AfterID = keyOf(items[len(items)-1])
		}
	}
	return Window[T]{Items: items, HasMore: true, NextCursor: &next}
}
