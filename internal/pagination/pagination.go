// Package pagination slices ordered lists into fixed-size pages for
// menu rendering. Out-of-range page indexes clamp instead of erroring,
// so stale navigation buttons always land on a real page.
package pagination

// Page returns the items for the requested zero-based page index, along
// with the clamped index and total page count. A negative index clamps
// to the first page, an overflowing one to the last. Empty input yields
// an empty page with pages == 1 so callers can always render "page 1/1".
func Page[T any](items []T, pageIndex, pageSize int) (pageItems []T, page, pages int) {
	if pageSize <= 0 {
		pageSize = 1
	}
	pages = (len(items) + pageSize - 1) / pageSize
	if pages == 0 {
		pages = 1
	}
	page = pageIndex
	if page < 0 {
		page = 0
	}
	if page >= pages {
		page = pages - 1
	}
	start := page * pageSize
	if start >= len(items) {
		return nil, page, pages
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], page, pages
}

// HasPrev reports whether a previous page exists.
func HasPrev(page int) bool {
	return page > 0
}

// HasNext reports whether a next page exists.
func HasNext(page, pages int) bool {
	return page < pages-1
}
