// Package page implements incremental fetching over paginated API
// endpoints. A Source accumulates items across successive fetches and
// tracks its own position, so callers only ever ask for "the next page".
//
// Two cursor shapes are supported: numeric offsets (most endpoints) and
// opaque server-issued cursors (the notification feed).
package page

import (
	"context"
	"sync"
)

// Result is one page as returned by a fetch function.
type Result[T any] struct {
	Items      []T
	HasMore    bool
	NextOffset int    // offset endpoints: server-echoed position of the next page
	NextCursor string // cursor endpoints: token for the next page
}

// OffsetFetchFunc fetches one page at the given offset.
type OffsetFetchFunc[T any] func(ctx context.Context, offset, limit int) (Result[T], error)

// CursorFetchFunc fetches one page at the given opaque cursor. An empty
// cursor means the first page.
type CursorFetchFunc[T any] func(ctx context.Context, cursor string) (Result[T], error)

// Source accumulates items from a paginated endpoint. All methods are
// safe for concurrent use; at most one fetch is in flight at a time.
type Source[T any] struct {
	mu      sync.Mutex
	busy    bool
	hasMore bool
	items   []T

	offset   int
	pageSize int
	cursor   string

	fetchOffset OffsetFetchFunc[T]
	fetchCursor CursorFetchFunc[T]
}

// NewOffset creates a source over an offset-paginated endpoint. pageSize
// is the fixed per-request limit.
func NewOffset[T any](pageSize int, fetch OffsetFetchFunc[T]) *Source[T] {
	return &Source[T]{hasMore: true, pageSize: pageSize, fetchOffset: fetch}
}

// NewCursor creates a source over a cursor-paginated endpoint.
func NewCursor[T any](fetch CursorFetchFunc[T]) *Source[T] {
	return &Source[T]{hasMore: true, fetchCursor: fetch}
}

// FetchNext fetches the next page and returns only the newly fetched
// items. It returns (nil, nil) without touching the network when the
// source is exhausted or another fetch is already in flight. On error
// the position is left unchanged, so a retry resumes at the same page.
func (s *Source[T]) FetchNext(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	if s.busy || !s.hasMore {
		s.mu.Unlock()
		return nil, nil
	}
	s.busy = true
	offset, pageSize, cursor := s.offset, s.pageSize, s.cursor
	s.mu.Unlock()

	var res Result[T]
	var err error
	if s.fetchOffset != nil {
		res, err = s.fetchOffset(ctx, offset, pageSize)
	} else {
		res, err = s.fetchCursor(ctx, cursor)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		return nil, err
	}

	s.hasMore = res.HasMore
	if s.fetchOffset != nil {
		if res.NextOffset > offset {
			s.offset = res.NextOffset
		} else {
			s.offset = offset + len(res.Items)
		}
	} else {
		s.cursor = res.NextCursor
	}
	s.items = append(s.items, res.Items...)
	return res.Items, nil
}

// FetchAll drains the source until exhausted or max items have been
// accumulated (max <= 0 means no cap). It returns everything fetched by
// this call.
func (s *Source[T]) FetchAll(ctx context.Context, max int) ([]T, error) {
	var all []T
	for s.HasMore() {
		batch, err := s.FetchNext(ctx)
		if err != nil {
			return all, err
		}
		all = append(all, batch...)
		if max > 0 && s.Len() >= max {
			break
		}
	}
	return all, nil
}

// Seek positions an offset-paginated source at the given offset before
// its next fetch. Cursor sources have no addressable positions, so Seek
// is a no-op for them. Already accumulated items are unaffected.
func (s *Source[T]) Seek(offset int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchOffset != nil && offset >= 0 {
		s.offset = offset
	}
}

// HasMore reports whether more pages are believed to be available.
func (s *Source[T]) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// InFlight reports whether a fetch is currently running.
func (s *Source[T]) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Items returns a copy of everything fetched so far.
func (s *Source[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of items fetched so far.
func (s *Source[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Reset clears accumulated items and rewinds to the first page. A reset
// while a fetch is in flight takes effect for position and items; the
// in-flight result still appends when it lands.
func (s *Source[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.offset = 0
	s.cursor = ""
	s.hasMore = true
}
