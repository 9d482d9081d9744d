// Package pager holds the pagination math shared by the panel and the
// comment service: page counts, offsets and the page-number window shown in
// navigation controls. Everything here is a pure function of its arguments.
package pager

// Unbounded is the page size that means "one page holding the whole
// collection". It matches the service's size=-1 query value.
const Unbounded = -1

// DefaultWindow is the number of consecutive page numbers shown around the
// current page.
const DefaultWindow = 5

// Descriptor is one slot of a page window: a page number, or a gap marker
// standing in for omitted pages.
type Descriptor struct {
	Page int
	Gap  bool
}

// PageAt returns a descriptor for page n.
func PageAt(n int) Descriptor { return Descriptor{Page: n} }

// GapMarker returns a gap descriptor.
func GapMarker() Descriptor { return Descriptor{Gap: true} }

// ValidSize reports whether size is a usable page size.
func ValidSize(size int) bool {
	return size > 0 || size == Unbounded
}

// TotalPages returns the number of pages needed to show total items at the
// given size. It is never less than 1.
func TotalPages(total, size int) int {
	if size == Unbounded || size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Clamp forces page into [1, totalPages].
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Offset returns the index of the first item on page.
func Offset(page, size int) int {
	if size == Unbounded || size <= 0 || page <= 1 {
		return 0
	}
	return (page - 1) * size
}

// Window returns the navigation descriptors for current out of totalPages.
//
// When totalPages fits in size every page is returned. Otherwise a run of
// exactly size pages is centred on current and shifted, not truncated, when
// it would cross either end. Page 1 and the last page are always present; a
// single gap marker separates each from the run when pages are skipped.
func Window(current, totalPages, size int) []Descriptor {
	if size < 1 {
		size = 1
	}
	if totalPages < 1 {
		totalPages = 1
	}
	current = Clamp(current, totalPages)

	if totalPages <= size {
		out := make([]Descriptor, 0, totalPages)
		for p := 1; p <= totalPages; p++ {
			out = append(out, PageAt(p))
		}
		return out
	}

	start := current - size/2
	if start < 1 {
		start = 1
	}
	end := start + size - 1
	if end > totalPages {
		end = totalPages
		start = end - size + 1
	}

	out := make([]Descriptor, 0, size+4)
	if start > 1 {
		out = append(out, PageAt(1))
		if start > 2 {
			out = append(out, GapMarker())
		}
	}
	for p := start; p <= end; p++ {
		out = append(out, PageAt(p))
	}
	if end < totalPages {
		if end < totalPages-1 {
			out = append(out, GapMarker())
		}
		out = append(out, PageAt(totalPages))
	}
	return out
}
