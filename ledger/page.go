package ledger

import "context"

// ClampLimit bounds a requested page size to [1, MaxPageSize]; zero or
// negative requests get DefaultPageSize.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	}
	return limit
}

// Paginate fetches limit+1 entries to detect whether another page exists.
//
// The cursor is the non-unique Date of the last returned item and the store
// compares it strictly, so entries sharing that exact Date which did not fit
// on the current page are skipped by the next one.
// TODO: add id as a secondary sort and cursor key to close the same-date gap.
func Paginate(ctx context.Context, s EntryStore, owner OwnerID, filter ListFilter) (*Page, error) {
	limit := ClampLimit(filter.Limit)
	if filter.Sort != SortAsc {
		filter.Sort = SortDesc
	}
	filter.Limit = limit + 1

	rows, err := s.ListEntries(ctx, owner, filter)
	if err != nil {
		return nil, err
	}

	page := &Page{Items: rows}
	if len(rows) > limit {
		page.HasMore = true
		page.Items = rows[:limit]
		cursor := page.Items[limit-1].Date
		page.NextCursor = &cursor
	}
	if page.Items == nil {
		page.Items = []Entry{}
	}
	return page, nil
}
