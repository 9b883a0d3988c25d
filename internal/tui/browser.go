package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Item is a row in the browser: a deviation, note, message, or folder.
type Item struct {
	ID          string
	Title       string
	Description string
}

// FilterValue returns the string to filter on.
func (i Item) FilterValue() string {
	return i.Title + " " + i.Description
}

// FetchFunc returns the next page of items. The fetch side owns its
// pagination position; successive calls return successive pages. The
// second return value reports whether more pages remain.
type FetchFunc func(ctx context.Context) ([]Item, bool, error)

// browserModel is the bubbletea model for a paginated item browser
// with incremental filtering. Scrolling near the bottom loads the next
// page in the background.
type browserModel struct {
	items        []Item
	filtered     []Item
	textInput    textinput.Model
	cursor       int
	selected     *Item
	quitting     bool
	styles       *Styles
	title        string
	maxVisible   int
	scrollOffset int

	fetch       FetchFunc
	ctx         context.Context
	hasMore     bool
	loadingMore bool
	fetchError  error

	initialLoading bool
	spinner        spinner.Model
	loadingMsg     string

	// Items from the bottom at which the next page fetch triggers.
	fetchThreshold int
}

// BrowserOption configures a browser.
type BrowserOption func(*browserModel)

// WithTitle sets the browser title.
func WithTitle(title string) BrowserOption {
	return func(m *browserModel) {
		m.title = title
	}
}

// WithMaxVisible sets the maximum number of visible rows.
func WithMaxVisible(n int) BrowserOption {
	return func(m *browserModel) {
		m.maxVisible = n
	}
}

// WithLoadingMessage sets the initial loading message.
func WithLoadingMessage(msg string) BrowserOption {
	return func(m *browserModel) {
		m.loadingMsg = msg
	}
}

func newBrowserModel(ctx context.Context, fetch FetchFunc, opts ...BrowserOption) browserModel {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Width = 40
	ti.Focus()

	styles := NewStyles()
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Cursor

	m := browserModel{
		textInput:      ti,
		styles:         styles,
		title:          "Select an item",
		maxVisible:     12,
		fetch:          fetch,
		ctx:            ctx,
		hasMore:        true,
		initialLoading: true,
		spinner:        s,
		loadingMsg:     "Loading...",
		fetchThreshold: 3,
	}

	for _, opt := range opts {
		opt(&m)
	}
	return m
}

type pageLoadedMsg struct {
	items     []Item
	hasMore   bool
	err       error
	isInitial bool
}

func (m browserModel) fetchPage(isInitial bool) tea.Cmd {
	return func() tea.Msg {
		items, hasMore, err := m.fetch(m.ctx)
		return pageLoadedMsg{items: items, hasMore: hasMore, err: err, isInitial: isInitial}
	}
}

func (m browserModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchPage(true))
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pageLoadedMsg:
		if msg.err != nil {
			m.fetchError = msg.err
			if msg.isInitial {
				m.initialLoading = false
			}
			m.loadingMore = false
			return m, nil
		}

		m.items = append(m.items, msg.items...)
		m.hasMore = msg.hasMore
		m.loadingMore = false
		m.fetchError = nil
		m.filtered = m.filter(m.textInput.Value())

		if msg.isInitial {
			m.initialLoading = false
			return m, textinput.Blink
		}

		// Keep draining pages while the filter matches nothing, so a
		// query can find items beyond what is loaded.
		query := strings.TrimSpace(m.textInput.Value())
		if m.hasMore && len(m.filtered) == 0 && query != "" {
			m.loadingMore = true
			return m, tea.Batch(m.spinner.Tick, m.fetchPage(false))
		}
		return m, nil

	case spinner.TickMsg:
		if m.initialLoading || m.loadingMore {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case tea.KeyMsg:
		if m.initialLoading {
			if msg.String() == "ctrl+c" || msg.String() == "esc" {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if len(m.filtered) > 0 && m.cursor < len(m.filtered) {
				m.selected = &m.filtered[m.cursor]
			}
			return m, tea.Quit
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.scrollOffset {
					m.scrollOffset = m.cursor
				}
			}
		case "down", "ctrl+n":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
				if m.cursor >= m.scrollOffset+m.maxVisible {
					m.scrollOffset = m.cursor - m.maxVisible + 1
				}
			}
			if m.hasMore && !m.loadingMore {
				if len(m.filtered)-1-m.cursor < m.fetchThreshold {
					m.loadingMore = true
					return m, tea.Batch(m.spinner.Tick, m.fetchPage(false))
				}
			}
		default:
			var cmd tea.Cmd
			m.textInput, cmd = m.textInput.Update(msg)
			m.filtered = m.filter(m.textInput.Value())
			m.cursor = 0
			m.scrollOffset = 0

			if m.hasMore && !m.loadingMore && len(m.filtered) == 0 && len(m.items) > 0 {
				m.loadingMore = true
				return m, tea.Batch(cmd, m.spinner.Tick, m.fetchPage(false))
			}
			return m, cmd
		}
	}

	return m, nil
}

func (m browserModel) filter(query string) []Item {
	if query == "" {
		return m.items
	}
	query = strings.ToLower(query)
	var result []Item
	for _, item := range m.items {
		if strings.Contains(strings.ToLower(item.FilterValue()), query) {
			result = append(result, item)
		}
	}
	return result
}

func (m browserModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.title) + "\n\n")

	if m.initialLoading {
		b.WriteString(m.spinner.View() + " " + m.styles.Muted.Render(m.loadingMsg) + "\n")
		return b.String()
	}

	if m.fetchError != nil && len(m.items) == 0 {
		b.WriteString(m.styles.Error.Render("Error: "+m.fetchError.Error()) + "\n")
		b.WriteString(m.styles.Muted.Render("Press esc to cancel"))
		return b.String()
	}

	b.WriteString(m.textInput.View() + "\n\n")

	if len(m.filtered) == 0 {
		if m.loadingMore {
			b.WriteString(m.spinner.View() + " " + m.styles.Muted.Render("Searching..."))
		} else {
			b.WriteString(m.styles.Muted.Render("No matches found"))
		}
	} else {
		start := m.scrollOffset
		end := min(start+m.maxVisible, len(m.filtered))

		for i := start; i < end; i++ {
			item := m.filtered[i]
			cursor := "  "
			style := m.styles.Body
			if i == m.cursor {
				cursor = m.styles.Cursor.Render("> ")
				style = m.styles.Selected
			}
			line := cursor + style.Render(item.Title)
			if item.Description != "" {
				line += m.styles.Muted.Render(" - " + item.Description)
			}
			b.WriteString(line + "\n")
		}

		var status []string
		if len(m.filtered) > m.maxVisible || m.hasMore {
			total := fmt.Sprintf("%d", len(m.filtered))
			if m.hasMore {
				total += "+"
			}
			status = append(status, fmt.Sprintf("Showing %d-%d of %s", start+1, end, total))
		}
		if m.loadingMore {
			status = append(status, m.spinner.View()+" Loading more...")
		}
		if m.fetchError != nil && len(m.items) > 0 {
			status = append(status, m.styles.Error.Render("(error loading more)"))
		}
		if len(status) > 0 {
			b.WriteString("\n" + m.styles.Muted.Render(strings.Join(status, " ")))
		}
	}

	b.WriteString("\n" + m.styles.Muted.Padding(1, 0, 0, 0).Render("↑↓ navigate • enter select • esc cancel"))
	return b.String()
}

// Browser shows a filterable item list with progressive pagination.
type Browser struct {
	fetch FetchFunc
	opts  []BrowserOption
	ctx   context.Context
}

// NewBrowser creates a new paginated browser.
func NewBrowser(ctx context.Context, fetch FetchFunc, opts ...BrowserOption) *Browser {
	return &Browser{fetch: fetch, opts: opts, ctx: ctx}
}

// Run shows the browser and returns the selected item.
// Returns nil if the user canceled.
func (p *Browser) Run() (*Item, error) {
	m := newBrowserModel(p.ctx, p.fetch, p.opts...)
	program := tea.NewProgram(m)

	finalModel, err := program.Run()
	if err != nil {
		return nil, err
	}

	final := finalModel.(browserModel) //nolint:errcheck // type assertion always succeeds here
	if final.quitting {
		return nil, nil
	}
	if final.fetchError != nil && len(final.items) == 0 {
		return nil, final.fetchError
	}
	return final.selected, nil
}

// Browse is a convenience function for browsing with a title.
func Browse(ctx context.Context, title string, fetch FetchFunc) (*Item, error) {
	return NewBrowser(ctx, fetch, WithTitle(title)).Run()
}
