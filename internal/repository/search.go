package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNoRowsAffected signals that an expected mutation touched zero rows.
// The service layer escalates it as an internal fault, never as a
// business-rule failure.
var ErrNoRowsAffected = errors.New("repository: no rows affected")

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// SearchResult is one page of a filtered query plus the total count computed
// by a separate count query over the same predicate.
type SearchResult[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	TotalCount int64
}

func (r *SearchResult[T]) HasNextPage() bool {
	return int64(r.Page)*int64(r.PageSize) < r.TotalCount
}

func (r *SearchResult[T]) HasPreviousPage() bool {
	return r.Page > 1
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// orderBy resolves a requested sort column against a whitelist and applies
// it with the requested direction. Unknown columns fall back to id ascending.
func orderBy(query *gorm.DB, whitelist map[string]string, column, order, defaultColumn string) *gorm.DB {
	sortColumn, ok := whitelist[strings.ToLower(column)]
	if !ok {
		sortColumn = defaultColumn
	}
	if strings.EqualFold(order, "desc") {
		return query.Order(sortColumn + " DESC")
	}
	return query.Order(sortColumn + " ASC")
}
