package tui

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems(n, offset int) []Item {
	items := make([]Item, n)
	for i := range items {
		id := offset + i
		items[i] = Item{ID: fmt.Sprintf("%d", id), Title: fmt.Sprintf("item %d", id)}
	}
	return items
}

func pagedFetch(pages [][]Item) FetchFunc {
	i := 0
	return func(ctx context.Context) ([]Item, bool, error) {
		if i >= len(pages) {
			return nil, false, nil
		}
		page := pages[i]
		i++
		return page, i < len(pages), nil
	}
}

func keyMsg(s string) tea.KeyMsg {
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	panic("unknown key " + s)
}

func loadInitial(t *testing.T, m browserModel) browserModel {
	t.Helper()
	cmd := m.fetchPage(true)
	msg := cmd()
	updated, _ := m.Update(msg)
	return updated.(browserModel)
}

func TestBrowserLoadsFirstPage(t *testing.T) {
	fetch := pagedFetch([][]Item{testItems(5, 0)})
	m := newBrowserModel(context.Background(), fetch)
	m = loadInitial(t, m)

	assert.False(t, m.initialLoading)
	assert.Len(t, m.items, 5)
	assert.Len(t, m.filtered, 5)
	assert.False(t, m.hasMore)
}

func TestBrowserSelectsUnderCursor(t *testing.T) {
	fetch := pagedFetch([][]Item{testItems(5, 0)})
	m := newBrowserModel(context.Background(), fetch)
	m = loadInitial(t, m)

	updated, _ := m.Update(keyMsg("down"))
	m = updated.(browserModel)
	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(browserModel)

	require.NotNil(t, m.selected)
	assert.Equal(t, "1", m.selected.ID)
}

func TestBrowserEscCancels(t *testing.T) {
	fetch := pagedFetch([][]Item{testItems(3, 0)})
	m := newBrowserModel(context.Background(), fetch)
	m = loadInitial(t, m)

	updated, _ := m.Update(keyMsg("esc"))
	m = updated.(browserModel)
	assert.True(t, m.quitting)
	assert.Nil(t, m.selected)
}

func TestBrowserFetchesNearBottom(t *testing.T) {
	fetch := pagedFetch([][]Item{testItems(5, 0), testItems(5, 5)})
	m := newBrowserModel(context.Background(), fetch)
	m = loadInitial(t, m)
	require.True(t, m.hasMore)

	// Cursor moves toward the bottom; within the threshold a fetch
	// command is issued.
	var cmd tea.Cmd
	for range 3 {
		updated, c := m.Update(keyMsg("down"))
		m = updated.(browserModel)
		if c != nil {
			cmd = c
		}
	}
	require.True(t, m.loadingMore)
	require.NotNil(t, cmd)

	// Deliver the page the command produces.
	msg := findPageMsg(t, cmd)
	updated, _ := m.Update(msg)
	m = updated.(browserModel)
	assert.Len(t, m.items, 10)
	assert.False(t, m.hasMore)
	assert.False(t, m.loadingMore)
}

// findPageMsg runs a (possibly batched) command until it yields a
// pageLoadedMsg.
func findPageMsg(t *testing.T, cmd tea.Cmd) pageLoadedMsg {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case pageLoadedMsg:
			return msg
		case tea.BatchMsg:
			queue = append(queue, msg...)
		}
	}
	t.Fatal("no pageLoadedMsg produced")
	return pageLoadedMsg{}
}

func TestBrowserFilter(t *testing.T) {
	fetch := pagedFetch([][]Item{{
		{ID: "1", Title: "sunset painting"},
		{ID: "2", Title: "dragon sketch"},
		{ID: "3", Title: "sunset photo"},
	}})
	m := newBrowserModel(context.Background(), fetch)
	m = loadInitial(t, m)

	updated, _ := m.Update(keyMsg("s"))
	m = updated.(browserModel)
	for _, r := range "unset" {
		updated, _ = m.Update(keyMsg(string(r)))
		m = updated.(browserModel)
	}

	require.Len(t, m.filtered, 2)
	assert.Equal(t, "1", m.filtered[0].ID)
	assert.Equal(t, "3", m.filtered[1].ID)
}

func TestBrowserFilterDrainsPagesOnNoMatch(t *testing.T) {
	fetch := pagedFetch([][]Item{
		{{ID: "1", Title: "alpha"}},
		{{ID: "2", Title: "omega"}},
	})
	m := newBrowserModel(context.Background(), fetch)
	m = loadInitial(t, m)
	require.True(t, m.hasMore)

	// Typing a query with no loaded matches triggers a background
	// fetch of the next page.
	updated, cmd := m.Update(keyMsg("o"))
	m = updated.(browserModel)
	require.True(t, m.loadingMore)

	msg := findPageMsg(t, cmd)
	updated, _ = m.Update(msg)
	m = updated.(browserModel)
	require.Len(t, m.filtered, 1)
	assert.Equal(t, "2", m.filtered[0].ID)
}

func TestBrowserErrorOnFirstPage(t *testing.T) {
	fetch := func(ctx context.Context) ([]Item, bool, error) {
		return nil, false, fmt.Errorf("boom")
	}
	m := newBrowserModel(context.Background(), fetch)
	m = loadInitial(t, m)

	assert.Error(t, m.fetchError)
	assert.False(t, m.initialLoading)
	assert.Contains(t, m.View(), "boom")
}

func TestBrowserErrorOnLaterPageKeepsItems(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context) ([]Item, bool, error) {
		calls++
		if calls == 1 {
			return testItems(5, 0), true, nil
		}
		return nil, false, fmt.Errorf("boom")
	}
	m := newBrowserModel(context.Background(), fetch)
	m = loadInitial(t, m)

	var cmd tea.Cmd
	for range 3 {
		updated, c := m.Update(keyMsg("down"))
		m = updated.(browserModel)
		if c != nil {
			cmd = c
		}
	}
	require.NotNil(t, cmd)
	msg := findPageMsg(t, cmd)
	updated, _ := m.Update(msg)
	m = updated.(browserModel)

	assert.Error(t, m.fetchError)
	assert.Len(t, m.items, 5)
	assert.Contains(t, m.View(), "error loading more")
}

func TestItemFilterValue(t *testing.T) {
	item := Item{Title: "Sunset", Description: "by artist"}
	assert.Equal(t, "Sunset by artist", item.FilterValue())
}
