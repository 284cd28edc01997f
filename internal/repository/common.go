package repository

import (
	"database/sql"
	"strings"
)

// ListFilter carries the shared list options. Empty strings disable a
// filter. Page begins at 1.
type ListFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// normalize applies default paging and returns limit and offset.
func (f *ListFilter) normalize() (limit, offset int) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
	return f.Limit, (f.Page - 1) * f.Limit
}

// likePattern builds a case-insensitive substring pattern for use with
// LOWER(col) LIKE ?.
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// requireAffected converts a zero-row update or delete into sql.ErrNoRows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// affected reports whether the statement touched at least one row.
func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
