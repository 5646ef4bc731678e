package repository

import (
	"gorm.io/gorm"

	"github.com/oggyb/ridemate/internal/utils/pagination"
)

// afterCursor narrows a newest-first query on table to rows strictly after the
// cursor in (created_at DESC, id DESC) order.
func afterCursor(q *gorm.DB, table string, token *string) (*gorm.DB, error) {
	cursor, err := pagination.Decode(getString(token))
	if err != nil {
		return nil, err
	}
	if cursor.IsZero() {
		return q, nil
	}
	ts := cursor.CreatedAt()
	return q.Where(
		"("+table+".created_at < ? OR ("+table+".created_at = ? AND "+table+".id < ?))",
		ts, ts, cursor.ID,
	), nil
}

// nextPage trims rows fetched with limit+1 and builds the next token when more
// rows exist.
func nextPage[T any](rows []T, limit int, key func(T) pagination.Cursor) ([]T, *string) {
	if len(rows) <= limit {
		return rows, nil
	}
	token, _ := pagination.Encode(key(rows[limit-1]))
	return rows[:limit], &token
}

func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
