package fetch

import (
	"context"
	"fmt"
)

// DefaultPageSize is the offset page size for store reads
const DefaultPageSize = 1000

// PageFunc fetches up to limit rows starting at offset
type PageFunc[T any] func(ctx context.Context, offset, limit int) ([]T, error)

// AllRows reads every row through offset paging. A page of exactly pageSize
// rows is followed by another request; a shorter page ends the loop. Any page
// error aborts the whole read and no partial rows are returned.
func AllRows[T any](ctx context.Context, pageSize int, fetch PageFunc[T]) ([]T, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var rows []T
	offset := 0
	for {
		page, err := fetch(ctx, offset, pageSize)
		if err != nil {
			return nil, fmt.Errorf("%w at offset %d: %w", ErrPaginationAborted, offset, err)
		}
		rows = append(rows, page...)
		offset += len(page)
		if len(page) < pageSize {
			return rows, nil
		}
	}
}

// CursorPageFunc fetches the page at cursor and returns the next cursor,
// empty when there are no more pages
type CursorPageFunc[T any] func(ctx context.Context, cursor string) ([]T, string, error)

// AllCursor reads every page of a cursor-paginated listing. Like AllRows it
// fails fast and discards earlier pages on error.
func AllCursor[T any](ctx context.Context, fetch CursorPageFunc[T]) ([]T, error) {
	var (
		items  []T
		cursor string
		pages  int
	)
	for {
		page, next, err := fetch(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("%w on page %d: %w", ErrPaginationAborted, pages+1, err)
		}
		pages++
		items = append(items, page...)
		if next == "" || next == cursor {
			return items, nil
		}
		cursor = next
	}
}
