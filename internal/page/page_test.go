package page

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePages serves n items in fixed-size pages and counts calls.
func fakePages(total int) (OffsetFetchFunc[int], *int) {
	calls := new(int)
	return func(_ context.Context, offset, limit int) (Result[int], error) {
		*calls++
		var items []int
		for i := offset; i < offset+limit && i < total; i++ {
			items = append(items, i)
		}
		return Result[int]{
			Items:      items,
			HasMore:    offset+limit < total,
			NextOffset: offset + limit,
		}, nil
	}, calls
}

func TestOffsetAdvancesAcrossFetches(t *testing.T) {
	fetch, calls := fakePages(100)
	s := NewOffset(24, fetch)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		batch, err := s.FetchNext(ctx)
		require.NoError(t, err)
		assert.Len(t, batch, 24)
	}

	assert.Equal(t, 3, *calls)
	assert.Equal(t, 72, s.Len())
	assert.True(t, s.HasMore())

	// Fourth page is the partial tail.
	batch, err := s.FetchNext(ctx)
	require.NoError(t, err)
	assert.Len(t, batch, 28)
	assert.False(t, s.HasMore())
	assert.Equal(t, 100, s.Len())
}

func TestFetchNextReturnsOnlyNewItems(t *testing.T) {
	fetch, _ := fakePages(48)
	s := NewOffset(24, fetch)
	ctx := context.Background()

	first, err := s.FetchNext(ctx)
	require.NoError(t, err)
	second, err := s.FetchNext(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, first[0])
	assert.Equal(t, 24, second[0])
	assert.NotEqual(t, first[0], second[0])
}

func TestExhaustedSourceIsNoOp(t *testing.T) {
	fetch, calls := fakePages(10)
	s := NewOffset(24, fetch)
	ctx := context.Background()

	_, err := s.FetchNext(ctx)
	require.NoError(t, err)
	assert.False(t, s.HasMore())

	batch, err := s.FetchNext(ctx)
	require.NoError(t, err)
	assert.Nil(t, batch)
	assert.Equal(t, 1, *calls) // no network call after exhaustion
}

func TestPositionPreservedOnError(t *testing.T) {
	failNext := false
	s := NewOffset(10, func(_ context.Context, offset, limit int) (Result[int], error) {
		if failNext {
			return Result[int]{}, errors.New("timeout")
		}
		return Result[int]{Items: []int{offset}, HasMore: true, NextOffset: offset + limit}, nil
	})
	ctx := context.Background()

	_, err := s.FetchNext(ctx)
	require.NoError(t, err)

	failNext = true
	_, err = s.FetchNext(ctx)
	require.Error(t, err)
	assert.True(t, s.HasMore())
	assert.Equal(t, 1, s.Len())

	// Retry resumes at the same offset.
	failNext = false
	batch, err := s.FetchNext(ctx)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, 10, batch[0])
}

func TestInFlightGuard(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := NewOffset(5, func(context.Context, int, int) (Result[int], error) {
		close(started)
		<-release
		return Result[int]{Items: []int{1}, HasMore: true, NextOffset: 5}, nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.FetchNext(context.Background())
	}()

	<-started
	assert.True(t, s.InFlight())

	// Re-entrant fetch while busy is a no-op, not a second request.
	batch, err := s.FetchNext(context.Background())
	require.NoError(t, err)
	assert.Nil(t, batch)

	close(release)
	<-done
	assert.False(t, s.InFlight())
	assert.Equal(t, 1, s.Len())
}

func TestCursorSource(t *testing.T) {
	var seen []string
	s := NewCursor(func(_ context.Context, cursor string) (Result[string], error) {
		seen = append(seen, cursor)
		switch cursor {
		case "":
			return Result[string]{Items: []string{"a"}, HasMore: true, NextCursor: "tok1"}, nil
		case "tok1":
			return Result[string]{Items: []string{"b"}, HasMore: false}, nil
		default:
			return Result[string]{}, fmt.Errorf("unexpected cursor %q", cursor)
		}
	})
	ctx := context.Background()

	_, err := s.FetchNext(ctx)
	require.NoError(t, err)
	_, err = s.FetchNext(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "tok1"}, seen)
	assert.False(t, s.HasMore())
	assert.Equal(t, []string{"a", "b"}, s.Items())
}

func TestFetchAllHonorsCap(t *testing.T) {
	fetch, _ := fakePages(100)
	s := NewOffset(24, fetch)

	got, err := s.FetchAll(context.Background(), 50)
	require.NoError(t, err)
	assert.Len(t, got, 72) // stops after the page that crossed the cap
	assert.True(t, s.HasMore())

	rest, err := s.FetchAll(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, rest, 28)
	assert.Equal(t, 100, s.Len())
}

func TestResetRewinds(t *testing.T) {
	fetch, _ := fakePages(30)
	s := NewOffset(24, fetch)
	ctx := context.Background()

	_, err := s.FetchNext(ctx)
	require.NoError(t, err)
	_, err = s.FetchNext(ctx)
	require.NoError(t, err)
	assert.False(t, s.HasMore())

	s.Reset()
	assert.True(t, s.HasMore())
	assert.Equal(t, 0, s.Len())

	batch, err := s.FetchNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, batch[0])
}

func TestItemsReturnsCopy(t *testing.T) {
	fetch, _ := fakePages(5)
	s := NewOffset(24, fetch)
	_, err := s.FetchNext(context.Background())
	require.NoError(t, err)

	items := s.Items()
	items[0] = 999
	assert.Equal(t, 0, s.Items()[0])
}

func TestDedupeBy(t *testing.T) {
	type row struct{ id, origin string }
	rows := []row{
		{"1", "feed"},
		{"2", "feed"},
		{"1", "stack"}, // duplicate id, later arrival
		{"", "feed"},   // empty key kept
		{"", "feed"},
		{"3", "stack"},
	}

	got := DedupeBy(rows, func(r row) string { return r.id })
	require.Len(t, got, 5)
	assert.Equal(t, "feed", got[0].origin) // first occurrence wins
	assert.Equal(t, []row{{"1", "feed"}, {"2", "feed"}, {"", "feed"}, {"", "feed"}, {"3", "stack"}}, got)
}

func TestMergeByTimestamp(t *testing.T) {
	type ev struct {
		id string
		at time.Time
	}
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	feed := []ev{
		{"f1", base.Add(3 * time.Hour)},
		{"f2", base.Add(1 * time.Hour)},
	}
	mentions := []ev{
		{"m1", base.Add(2 * time.Hour)},
		{"m2", base.Add(1 * time.Hour)}, // ties f2
	}

	got := MergeByTimestamp(func(e ev) time.Time { return e.at }, feed, mentions)
	ids := make([]string, len(got))
	for i, e := range got {
		ids[i] = e.id
	}
	// Newest first; the tie keeps arrival order (feed before mentions).
	assert.Equal(t, []string{"f1", "m1", "f2", "m2"}, ids)
}

func TestMergeByTimestampEmptyInputs(t *testing.T) {
	got := MergeByTimestamp(func(s string) time.Time { return time.Time{} }, nil, nil)
	assert.Empty(t, got)
}

func TestSeekStartsAtOffset(t *testing.T) {
	fetch, _ := fakePages(100)
	s := NewOffset(24, fetch)
	s.Seek(48)

	batch, err := s.FetchNext(context.Background())
	require.NoError(t, err)
	require.Len(t, batch, 24)
	assert.Equal(t, 48, batch[0])
}

func TestSeekIgnoredOnCursorSource(t *testing.T) {
	var seen []string
	s := NewCursor(func(_ context.Context, cursor string) (Result[int], error) {
		seen = append(seen, cursor)
		return Result[int]{Items: []int{1}, HasMore: false}, nil
	})
	s.Seek(48)

	_, err := s.FetchNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{""}, seen)
}
