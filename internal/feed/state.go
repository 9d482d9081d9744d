package feed

import (
	"github.com/fragmede/commentbox/internal/api"
	"github.com/fragmede/commentbox/internal/pager"
)

// Status is the page-load status of a State.
type Status int

const (
	Idle Status = iota
	Loading
	Loaded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the displayed page of a server-paginated comment collection.
type State struct {
	Items    []api.Comment
	Total    int
	Page     int
	PageSize int
	Status   Status
	Err      error

	// clamped is set when Page was pulled back into range, either by a load
	// that reported fewer pages than requested or by a removal that emptied
	// the last page.
	clamped bool
}

// TotalPages is the page count for the current Total and PageSize.
func (s State) TotalPages() int {
	return pager.TotalPages(s.Total, s.PageSize)
}

// NeedsReload reports whether Page was clamped, so the items on screen do
// not belong to Page.
func (s State) NeedsReload() bool {
	return s.clamped
}

// HasPrev reports whether there is a page before the current one.
func (s State) HasPrev() bool {
	return s.Page > 1
}

// HasNext reports whether there is a page after the current one.
func (s State) HasNext() bool {
	return s.Page < s.TotalPages()
}

// IndexOf returns the position of the comment with id, or -1.
func (s State) IndexOf(id uint64) int {
	for i, c := range s.Items {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s State) clone() State {
	out := s
	out.Items = append([]api.Comment(nil), s.Items...)
	return out
}
