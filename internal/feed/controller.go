// Package feed keeps the in-memory view of a paginated comment collection
// consistent across page loads and add/remove mutations.
//
// A Controller is owned by a single event loop. Operations that reach the
// network are split in two: the call itself runs on the loop, applies any
// immediate change and returns a Request; the Request runs anywhere (it only
// talks to the Store) and produces a Result; the Result is handed back to
// Settle on the loop. Nothing but Settle and the operations touches State.
package feed

import (
	"context"
	"errors"

	"github.com/fragmede/commentbox/internal/api"
	"github.com/fragmede/commentbox/internal/pager"
)

// ErrStale is returned by Settle for a load that was superseded by a later
// one. The result is dropped.
var ErrStale = errors.New("stale load result")

// Store is the remote comment collection.
type Store interface {
	FetchPage(ctx context.Context, page, size int) (api.Page, error)
	Create(ctx context.Context, nc api.NewComment) (api.Comment, error)
	Delete(ctx context.Context, id uint64) error
}

// Request performs the network half of an operation.
type Request func(ctx context.Context) Result

// Result is the outcome of a Request, to be passed to Controller.Settle.
type Result interface {
	settle(c *Controller) error
}

// Controller owns a State and reconciles it with the Store.
type Controller struct {
	store Store
	state State

	// gen is bumped for every issued load; only the latest may settle.
	gen uint64
	// epoch is bumped whenever a load replaces the items, so mutations
	// issued against older items know their indexes are meaningless.
	epoch uint64
}

// DefaultPageSize is used when New is given an invalid page size.
const DefaultPageSize = 5

// New creates a controller showing page 1 at pageSize.
func New(store Store, pageSize int) *Controller {
	if !pager.ValidSize(pageSize) {
		pageSize = DefaultPageSize
	}
	return &Controller{
		store: store,
		state: State{Page: 1, PageSize: pageSize, Status: Idle},
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state.clone()
}

// Settle merges a result into the state. It returns the operation's error,
// ErrStale for a superseded load, or nil.
func (c *Controller) Settle(r Result) error {
	if r == nil {
		return nil
	}
	return r.settle(c)
}

// LoadResult is the outcome of Load.
type LoadResult struct {
	Page int
	Size int
	Data api.Page
	Err  error

	gen uint64
}

// Load fetches page at size. The state switches to Loading immediately and
// keeps showing the previous items until the result settles.
func (c *Controller) Load(page, size int) Request {
	c.gen++
	gen := c.gen

	c.state.Status = Loading
	c.state.Err = nil

	store := c.store
	return func(ctx context.Context) Result {
		data, err := store.FetchPage(ctx, page, size)
		return LoadResult{Page: page, Size: size, Data: data, Err: err, gen: gen}
	}
}

func (r LoadResult) settle(c *Controller) error {
	if r.gen != c.gen {
		return ErrStale
	}

	if r.Err != nil {
		c.state.Status = Failed
		c.state.Err = r.Err
		return r.Err
	}

	items := r.Data.Items
	if r.Size != pager.Unbounded && len(items) > r.Size {
		items = items[:r.Size]
	}
	total := r.Data.Total
	if total < 0 {
		total = 0
	}

	c.epoch++
	c.state.Items = append([]api.Comment(nil), items...)
	c.state.Total = total
	c.state.PageSize = r.Size
	c.state.Page = pager.Clamp(r.Page, pager.TotalPages(total, r.Size))
	c.state.clamped = c.state.Page != r.Page
	c.state.Status = Loaded
	c.state.Err = nil
	return nil
}

// Reload fetches the current page again.
func (c *Controller) Reload() Request {
	return c.Load(c.state.Page, c.state.PageSize)
}

// SetPage loads page at the current page size. Pages outside the range
// implied by the current total are rejected without a request.
func (c *Controller) SetPage(page int) (Request, error) {
	if page < 1 || page > c.state.TotalPages() {
		return nil, c.reject(&api.ValidationError{Field: "page", Err: api.ErrPageOutOfRange})
	}
	return c.Load(page, c.state.PageSize), nil
}

// SetPageSize switches to size and goes back to page 1.
func (c *Controller) SetPageSize(size int) (Request, error) {
	if !pager.ValidSize(size) {
		return nil, c.reject(&api.ValidationError{Field: "size", Err: api.ErrInvalidPageSize})
	}
	return c.Load(1, size), nil
}

// AddResult is the outcome of Add.
type AddResult struct {
	Comment api.Comment
	Err     error

	epoch uint64
}

// Add validates a new comment locally and returns the request that creates
// it. Nothing is shown until the service has assigned an ID.
func (c *Controller) Add(name, content string) (Request, error) {
	nc := api.NewComment{Name: name, Content: content}.Normalize()
	if err := nc.Validate(); err != nil {
		return nil, c.reject(err)
	}

	epoch := c.epoch
	store := c.store
	return func(ctx context.Context) Result {
		created, err := store.Create(ctx, nc)
		return AddResult{Comment: created, Err: err, epoch: epoch}
	}, nil
}

func (r AddResult) settle(c *Controller) error {
	if r.Err != nil {
		c.state.Err = r.Err
		return r.Err
	}
	c.clearMutationErr()
	if r.epoch != c.epoch {
		// A newer page has been fetched since; it is authoritative.
		return nil
	}
	if c.state.IndexOf(r.Comment.ID) >= 0 {
		return nil
	}

	items := make([]api.Comment, 0, len(c.state.Items)+1)
	items = append(items, r.Comment)
	items = append(items, c.state.Items...)
	if size := c.state.PageSize; size != pager.Unbounded && len(items) > size {
		items = items[:size]
	}
	c.state.Items = items
	c.state.Total++
	return nil
}

// RemoveResult is the outcome of Remove.
type RemoveResult struct {
	ID  uint64
	Err error

	removed api.Comment
	index   int
	counted bool
	page    int
	clamped bool
	epoch   uint64
}

// Remove takes the comment off the page and out of the total right away,
// then returns the request that deletes it. If the delete fails the comment
// is put back where it was. Emptying the last page pulls Page back into range
// and marks the state for reload.
func (c *Controller) Remove(id uint64) (Request, error) {
	idx := c.state.IndexOf(id)
	if idx < 0 {
		return nil, c.reject(&api.ValidationError{Field: "id", Err: api.ErrNotDisplayed})
	}

	removed := c.state.Items[idx]
	c.state.Items = append(c.state.Items[:idx:idx], c.state.Items[idx+1:]...)
	counted := c.state.Total > 0
	if counted {
		c.state.Total--
	}

	page, clamped := c.state.Page, c.state.clamped
	if tp := c.state.TotalPages(); c.state.Page > tp {
		c.state.Page = tp
		c.state.clamped = true
	}

	epoch := c.epoch
	store := c.store
	return func(ctx context.Context) Result {
		err := store.Delete(ctx, id)
		return RemoveResult{
			ID:      id,
			Err:     err,
			removed: removed,
			index:   idx,
			counted: counted,
			page:    page,
			clamped: clamped,
			epoch:   epoch,
		}
	}, nil
}

func (r RemoveResult) settle(c *Controller) error {
	if r.Err == nil {
		c.clearMutationErr()
		return nil
	}

	c.state.Err = r.Err
	if r.epoch != c.epoch || c.state.IndexOf(r.ID) >= 0 {
		return r.Err
	}

	idx := r.index
	if idx > len(c.state.Items) {
		idx = len(c.state.Items)
	}
	items := make([]api.Comment, 0, len(c.state.Items)+1)
	items = append(items, c.state.Items[:idx]...)
	items = append(items, r.removed)
	items = append(items, c.state.Items[idx:]...)
	c.state.Items = items
	if r.counted {
		c.state.Total++
	}
	c.state.Page = r.page
	c.state.clamped = r.clamped
	return r.Err
}

// DismissError clears the surfaced error. A failed load stays Failed.
func (c *Controller) DismissError() {
	c.state.Err = nil
}

// clearMutationErr drops the error after a successful add or remove. The
// error of a failed load stays until the page loads or is dismissed.
func (c *Controller) clearMutationErr() {
	if c.state.Status != Failed {
		c.state.Err = nil
	}
}

// reject records a local failure without touching the load status.
func (c *Controller) reject(err error) error {
	c.state.Err = err
	return err
}
