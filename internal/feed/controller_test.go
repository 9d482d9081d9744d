package feed

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/fragmede/commentbox/internal/api"
	"github.com/fragmede/commentbox/internal/pager"
)

// fakeStore serves pages from an in-memory, newest-first collection.
type fakeStore struct {
	comments  []api.Comment
	nextID    uint64
	fetchErr  error
	createErr error
	deleteErr error
	fetches   int
	creates   int
	deletes   int
}

func newFakeStore(n int) *fakeStore {
	s := &fakeStore{nextID: uint64(n) + 1}
	for i := n; i >= 1; i-- {
		s.comments = append(s.comments, api.Comment{
			ID:      uint64(i),
			Name:    fmt.Sprintf("user%d", i),
			Content: fmt.Sprintf("comment %d", i),
		})
	}
	return s
}

func (s *fakeStore) FetchPage(_ context.Context, page, size int) (api.Page, error) {
	s.fetches++
	if s.fetchErr != nil {
		return api.Page{}, s.fetchErr
	}
	if size == pager.Unbounded {
		return api.Page{Items: append([]api.Comment(nil), s.comments...), Total: len(s.comments)}, nil
	}
	start := pager.Offset(page, size)
	if start > len(s.comments) {
		start = len(s.comments)
	}
	end := start + size
	if end > len(s.comments) {
		end = len(s.comments)
	}
	return api.Page{Items: append([]api.Comment(nil), s.comments[start:end]...), Total: len(s.comments)}, nil
}

func (s *fakeStore) Create(_ context.Context, nc api.NewComment) (api.Comment, error) {
	s.creates++
	if s.createErr != nil {
		return api.Comment{}, s.createErr
	}
	c := api.Comment{ID: s.nextID, Name: nc.Name, Content: nc.Content}
	s.nextID++
	s.comments = append([]api.Comment{c}, s.comments...)
	return c, nil
}

func (s *fakeStore) Delete(_ context.Context, id uint64) error {
	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i, c := range s.comments {
		if c.ID == id {
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			return nil
		}
	}
	return &api.ServerError{Code: 404, Message: "comment not found"}
}

func run(req Request) Result {
	return req(context.Background())
}

func ids(items []api.Comment) []uint64 {
	out := make([]uint64, len(items))
	for i, c := range items {
		out[i] = c.ID
	}
	return out
}

// loaded returns a controller that has settled page at size.
func loaded(t *testing.T, store *fakeStore, page, size int) *Controller {
	t.Helper()
	c := New(store, size)
	if err := c.Settle(run(c.Load(page, size))); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	return c
}

func TestNewStartsIdleOnFirstPage(t *testing.T) {
	c := New(newFakeStore(0), 10)
	st := c.State()
	assert.Equal(t, st.Status, Idle)
	assert.Equal(t, st.Page, 1)
	assert.Equal(t, st.PageSize, 10)
	assert.Equal(t, st.TotalPages(), 1)

	assert.Equal(t, New(nil, 0).State().PageSize, DefaultPageSize)
}

func TestLoadSetsLoadingAndKeepsItems(t *testing.T) {
	store := newFakeStore(12)
	c := loaded(t, store, 1, 5)
	before := c.State().Items

	req := c.Load(2, 5)
	st := c.State()
	assert.Equal(t, st.Status, Loading)
	assert.Equal(t, ids(st.Items), ids(before))

	if err := c.Settle(run(req)); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	st = c.State()
	assert.Equal(t, st.Status, Loaded)
	assert.Equal(t, st.Page, 2)
	assert.Equal(t, st.Total, 12)
	assert.Equal(t, ids(st.Items), []uint64{7, 6, 5, 4, 3})
	assert.Equal(t, st.TotalPages(), 3)
}

func TestLoadFailureKeepsStaleItems(t *testing.T) {
	store := newFakeStore(8)
	c := loaded(t, store, 1, 5)

	store.fetchErr = &api.NetworkError{Op: "GET /comment/get", Err: errors.New("connection refused")}
	err := c.Settle(run(c.Load(2, 5)))
	if !api.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}

	st := c.State()
	assert.Equal(t, st.Status, Failed)
	assert.Equal(t, st.Page, 1)
	assert.Equal(t, st.Total, 8)
	assert.Equal(t, ids(st.Items), []uint64{8, 7, 6, 5, 4})
	if st.Err != err {
		t.Errorf("state error = %v, want %v", st.Err, err)
	}

	store.fetchErr = nil
	if err := c.Settle(run(c.Reload())); err != nil {
		t.Fatalf("reload: %v", err)
	}
	assert.Equal(t, c.State().Status, Loaded)
	assert.Equal(t, c.State().Err, nil)
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	orders := []struct {
		name       string
		firstFirst bool
	}{
		{"older settles first", true},
		{"newer settles first", false},
	}
	for _, o := range orders {
		t.Run(o.name, func(t *testing.T) {
			c := New(newFakeStore(20), 10)
			first := c.Load(1, 10)
			second := c.Load(2, 10)

			r1, r2 := run(first), run(second)
			if o.firstFirst {
				assert.Equal(t, c.Settle(r1), ErrStale)
				assert.Equal(t, c.State().Status, Loading)
				assert.Equal(t, c.Settle(r2), nil)
			} else {
				assert.Equal(t, c.Settle(r2), nil)
				assert.Equal(t, c.Settle(r1), ErrStale)
			}

			st := c.State()
			assert.Equal(t, st.Page, 2)
			assert.Equal(t, st.Status, Loaded)
			assert.Equal(t, ids(st.Items), []uint64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1})
		})
	}
}

func TestStaleFailureDoesNotOverwrite(t *testing.T) {
	store := newFakeStore(20)
	c := New(store, 10)

	store.fetchErr = errors.New("boom")
	first := run(c.Load(1, 10))
	store.fetchErr = nil
	second := run(c.Load(2, 10))

	assert.Equal(t, c.Settle(second), nil)
	assert.Equal(t, c.Settle(first), ErrStale)
	assert.Equal(t, c.State().Status, Loaded)
	assert.Equal(t, c.State().Err, nil)
}

func TestSetPageSizeReturnsToFirstPage(t *testing.T) {
	for _, startPage := range []int{1, 2, 4} {
		store := newFakeStore(40)
		c := loaded(t, store, startPage, 10)

		req, err := c.SetPageSize(20)
		if err != nil {
			t.Fatalf("SetPageSize: %v", err)
		}
		if err := c.Settle(run(req)); err != nil {
			t.Fatalf("Settle: %v", err)
		}
		st := c.State()
		assert.Equal(t, st.Page, 1)
		assert.Equal(t, st.PageSize, 20)
		assert.Equal(t, len(st.Items), 20)
	}
}

func TestSetPageSizeUnbounded(t *testing.T) {
	c := loaded(t, newFakeStore(13), 2, 5)
	req, err := c.SetPageSize(pager.Unbounded)
	if err != nil {
		t.Fatalf("SetPageSize: %v", err)
	}
	assert.Equal(t, c.Settle(run(req)), nil)

	st := c.State()
	assert.Equal(t, st.Page, 1)
	assert.Equal(t, len(st.Items), 13)
	assert.Equal(t, st.TotalPages(), 1)
}

func TestSetPageSizeRejectsInvalid(t *testing.T) {
	store := newFakeStore(3)
	c := loaded(t, store, 1, 5)
	req, err := c.SetPageSize(0)
	if req != nil || !errors.Is(err, api.ErrInvalidPageSize) {
		t.Fatalf("SetPageSize(0) = %v, %v", req, err)
	}
	assert.Equal(t, store.fetches, 1)
	assert.Equal(t, c.State().Status, Loaded)
}

func TestSetPageRange(t *testing.T) {
	store := newFakeStore(12)
	c := loaded(t, store, 1, 5)

	for _, page := range []int{0, 4, -1} {
		req, err := c.SetPage(page)
		if req != nil {
			t.Fatalf("SetPage(%d) issued a request", page)
		}
		if !errors.Is(err, api.ErrPageOutOfRange) || !api.IsValidation(err) {
			t.Fatalf("SetPage(%d) err = %v", page, err)
		}
	}
	assert.Equal(t, store.fetches, 1)
	assert.Equal(t, c.State().Status, Loaded)

	req, err := c.SetPage(3)
	if err != nil {
		t.Fatalf("SetPage(3): %v", err)
	}
	assert.Equal(t, c.Settle(run(req)), nil)
	st := c.State()
	assert.Equal(t, st.Page, 3)
	assert.Equal(t, ids(st.Items), []uint64{2, 1})
	assert.Equal(t, st.HasNext(), false)
	assert.Equal(t, st.HasPrev(), true)
}

func TestLoadClampsPageBeyondTotal(t *testing.T) {
	store := newFakeStore(11)
	c := loaded(t, store, 3, 5)
	assert.Equal(t, c.State().NeedsReload(), false)

	store.comments = store.comments[:9]
	assert.Equal(t, c.Settle(run(c.Reload())), nil)

	st := c.State()
	assert.Equal(t, st.Page, 2)
	assert.Equal(t, st.NeedsReload(), true)
	assert.Equal(t, len(st.Items), 0)

	assert.Equal(t, c.Settle(run(c.Reload())), nil)
	st = c.State()
	assert.Equal(t, st.NeedsReload(), false)
	assert.Equal(t, len(st.Items), 4)
}

func TestAddInsertsAtHead(t *testing.T) {
	store := newFakeStore(6)
	c := loaded(t, store, 1, 10)
	before := c.State()

	req, err := c.Add("A", "hi")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	assert.Equal(t, ids(c.State().Items), ids(before.Items))

	assert.Equal(t, c.Settle(run(req)), nil)
	st := c.State()
	assert.Equal(t, st.Items[0].ID, uint64(7))
	assert.Equal(t, st.Items[0].Name, "A")
	assert.Equal(t, st.Total, before.Total+1)
	assert.Equal(t, ids(st.Items[1:]), ids(before.Items))
	assert.Equal(t, st.Status, Loaded)
}

func TestAddTrimsInput(t *testing.T) {
	store := newFakeStore(0)
	c := loaded(t, store, 1, 5)
	req, err := c.Add("  bob ", "\thello\n")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	c.Settle(run(req))
	assert.Equal(t, c.State().Items[0].Name, "bob")
	assert.Equal(t, c.State().Items[0].Content, "hello")
}

func TestAddKeepsPageSizeBound(t *testing.T) {
	store := newFakeStore(9)
	c := loaded(t, store, 1, 5)

	req, _ := c.Add("A", "hi")
	c.Settle(run(req))

	st := c.State()
	assert.Equal(t, len(st.Items), 5)
	assert.Equal(t, ids(st.Items), []uint64{10, 9, 8, 7, 6})
	assert.Equal(t, st.Total, 10)
}

func TestAddValidation(t *testing.T) {
	long := func(n int) string {
		r := make([]rune, n)
		for i := range r {
			r[i] = 'é'
		}
		return string(r)
	}
	tests := []struct {
		name, content string
		want          error
	}{
		{"", "hi", api.ErrEmptyName},
		{"   ", "hi", api.ErrEmptyName},
		{"A", "", api.ErrEmptyContent},
		{"A", " \n\t", api.ErrEmptyContent},
		{long(51), "hi", api.ErrNameTooLong},
		{"A", long(501), api.ErrContentTooLong},
	}
	for _, tt := range tests {
		store := newFakeStore(2)
		c := loaded(t, store, 1, 5)
		before := c.State()

		req, err := c.Add(tt.name, tt.content)
		if req != nil {
			t.Fatalf("Add(%q, %q) issued a request", tt.name, tt.content)
		}
		if !errors.Is(err, tt.want) {
			t.Fatalf("Add(%q, %q) err = %v, want %v", tt.name, tt.content, err, tt.want)
		}
		assert.Equal(t, store.creates, 0)
		st := c.State()
		assert.Equal(t, st.Status, Loaded)
		assert.Equal(t, ids(st.Items), ids(before.Items))
		if !errors.Is(st.Err, tt.want) {
			t.Fatalf("state error = %v", st.Err)
		}
	}

	c := loaded(t, newFakeStore(0), 1, 5)
	if _, err := c.Add(long(50), long(500)); err != nil {
		t.Fatalf("limits should be inclusive: %v", err)
	}
}

func TestAddFailureLeavesStateUnchanged(t *testing.T) {
	store := newFakeStore(4)
	c := loaded(t, store, 1, 5)
	before := c.State()

	store.createErr = &api.ServerError{Code: 500, Message: "insert failed"}
	req, err := c.Add("A", "hi")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	err = c.Settle(run(req))
	if !api.IsServer(err) {
		t.Fatalf("expected server error, got %v", err)
	}

	st := c.State()
	assert.Equal(t, st.Items, before.Items)
	assert.Equal(t, st.Total, before.Total)
	assert.Equal(t, st.Status, Loaded)
	assert.Equal(t, st.Err, err)
}

func TestRemoveIsOptimistic(t *testing.T) {
	store := newFakeStore(5)
	c := loaded(t, store, 1, 5)

	req, err := c.Remove(3)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	st := c.State()
	assert.Equal(t, ids(st.Items), []uint64{5, 4, 2, 1})
	assert.Equal(t, st.Total, 4)
	assert.Equal(t, store.deletes, 0)

	assert.Equal(t, c.Settle(run(req)), nil)
	st = c.State()
	assert.Equal(t, ids(st.Items), []uint64{5, 4, 2, 1})
	assert.Equal(t, st.Total, 4)
	assert.Equal(t, store.fetches, 1)
}

func TestRemoveFailureRollsBack(t *testing.T) {
	store := newFakeStore(5)
	c := loaded(t, store, 1, 5)
	before := c.State()

	store.deleteErr = &api.NetworkError{Op: "POST /comment/delete", Err: errors.New("timeout")}
	req, err := c.Remove(3)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	err = c.Settle(run(req))
	if !api.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}

	st := c.State()
	if !reflect.DeepEqual(st.Items, before.Items) {
		t.Fatalf("items after rollback = %v, want %v", ids(st.Items), ids(before.Items))
	}
	assert.Equal(t, st.Total, before.Total)
	assert.Equal(t, st.Status, Loaded)
	assert.Equal(t, st.Err, err)
}

func TestRemoveLastItemOnLastPageClampsPage(t *testing.T) {
	store := newFakeStore(11)
	c := loaded(t, store, 3, 5)
	assert.Equal(t, ids(c.State().Items), []uint64{1})

	req, err := c.Remove(1)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	st := c.State()
	assert.Equal(t, st.Page, 2)
	assert.Equal(t, st.NeedsReload(), true)

	assert.Equal(t, c.Settle(run(req)), nil)
	st = c.State()
	assert.Equal(t, st.Total, 10)
	assert.Equal(t, st.TotalPages(), 2)
	if st.Page > st.TotalPages() {
		t.Fatalf("page %d beyond %d pages", st.Page, st.TotalPages())
	}
	assert.Equal(t, st.NeedsReload(), true)

	assert.Equal(t, c.Settle(run(c.Reload())), nil)
	st = c.State()
	assert.Equal(t, st.Page, 2)
	assert.Equal(t, st.NeedsReload(), false)
	assert.Equal(t, ids(st.Items), []uint64{6, 5, 4, 3, 2})
}

func TestRemoveRollbackRestoresClampedPage(t *testing.T) {
	store := newFakeStore(11)
	c := loaded(t, store, 3, 5)
	before := c.State()

	store.deleteErr = errors.New("delete failed")
	req, _ := c.Remove(1)
	assert.Equal(t, c.State().Page, 2)

	c.Settle(run(req))
	st := c.State()
	assert.Equal(t, st.Page, before.Page)
	assert.Equal(t, st.NeedsReload(), false)
	assert.Equal(t, ids(st.Items), ids(before.Items))
	assert.Equal(t, st.Total, before.Total)
}

func TestMutationSuccessKeepsLoadError(t *testing.T) {
	store := newFakeStore(3)
	c := loaded(t, store, 1, 5)

	loadErr := errors.New("offline")
	store.fetchErr = loadErr
	c.Settle(run(c.Reload()))

	req, err := c.Add("A", "hi")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	assert.Equal(t, c.Settle(run(req)), nil)
	st := c.State()
	assert.Equal(t, st.Status, Failed)
	assert.Equal(t, st.Err, loadErr)

	req, err = c.Remove(2)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	assert.Equal(t, c.Settle(run(req)), nil)
	st = c.State()
	assert.Equal(t, st.Status, Failed)
	assert.Equal(t, st.Err, loadErr)
}

func TestMutationSuccessClearsMutationError(t *testing.T) {
	store := newFakeStore(3)
	c := loaded(t, store, 1, 5)

	store.createErr = errors.New("rejected")
	req, _ := c.Add("A", "hi")
	c.Settle(run(req))
	assert.Equal(t, c.State().Err, store.createErr)

	store.createErr = nil
	req, _ = c.Add("A", "hi")
	assert.Equal(t, c.Settle(run(req)), nil)
	assert.Equal(t, c.State().Err, nil)
}

func TestRemoveUnknownID(t *testing.T) {
	store := newFakeStore(3)
	c := loaded(t, store, 1, 5)
	req, err := c.Remove(99)
	if req != nil || !errors.Is(err, api.ErrNotDisplayed) {
		t.Fatalf("Remove(99) = %v, %v", req, err)
	}
	assert.Equal(t, c.State().Total, 3)
}

func TestInterleavedMutations(t *testing.T) {
	store := newFakeStore(5)
	c := loaded(t, store, 1, 10)

	removeReq, _ := c.Remove(4)
	addReq, _ := c.Add("A", "hi")

	store.deleteErr = errors.New("delete failed")
	removeRes := run(removeReq)
	addRes := run(addReq)

	// The add settles first; the rollback must still land relative to it.
	assert.Equal(t, c.Settle(addRes), nil)
	st := c.State()
	assert.Equal(t, ids(st.Items), []uint64{6, 5, 3, 2, 1})
	assert.Equal(t, st.Total, 5)

	c.Settle(removeRes)
	st = c.State()
	assert.Equal(t, ids(st.Items), []uint64{6, 4, 5, 3, 2, 1})
	assert.Equal(t, st.Total, 6)
}

func TestTwoRemovesBothRollBack(t *testing.T) {
	store := newFakeStore(5)
	c := loaded(t, store, 1, 5)
	before := c.State()

	r1, _ := c.Remove(5)
	r2, _ := c.Remove(2)
	assert.Equal(t, c.State().Total, 3)

	store.deleteErr = errors.New("nope")
	res1, res2 := run(r1), run(r2)
	c.Settle(res2)
	c.Settle(res1)

	st := c.State()
	assert.Equal(t, ids(st.Items), ids(before.Items))
	assert.Equal(t, st.Total, before.Total)
}

func TestMutationAfterNewerLoadDefersToServer(t *testing.T) {
	store := newFakeStore(5)
	c := loaded(t, store, 1, 5)

	store.deleteErr = errors.New("delete failed")
	removeReq, _ := c.Remove(3)
	removeRes := run(removeReq)

	// A page fetched after the remove was issued still contains the item.
	assert.Equal(t, c.Settle(run(c.Reload())), nil)
	assert.Equal(t, c.State().Total, 5)

	err := c.Settle(removeRes)
	if err == nil {
		t.Fatal("expected the delete error to surface")
	}
	st := c.State()
	assert.Equal(t, ids(st.Items), []uint64{5, 4, 3, 2, 1})
	assert.Equal(t, st.Total, 5)
	assert.Equal(t, st.Err, err)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, Idle.String(), "idle")
	assert.Equal(t, Loading.String(), "loading")
	assert.Equal(t, Loaded.String(), "loaded")
	assert.Equal(t, Failed.String(), "failed")
}

func TestDismissError(t *testing.T) {
	store := newFakeStore(3)
	c := loaded(t, store, 1, 5)

	store.fetchErr = errors.New("offline")
	c.Settle(run(c.Reload()))
	assert.Equal(t, c.State().Status, Failed)

	c.DismissError()
	st := c.State()
	assert.Equal(t, st.Err, nil)
	assert.Equal(t, st.Status, Failed)
	assert.Equal(t, len(st.Items), 3)
}
