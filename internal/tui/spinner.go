package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// spinnerModel is the bubbletea model for a spinner shown while a
// slow operation runs.
type spinnerModel struct {
	spinner  spinner.Model
	message  string
	done     bool
	result   string
	err      error
	styles   *Styles
	quitting bool
}

func newSpinnerModel(message string) spinnerModel {
	styles := NewStyles()
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Cursor

	return spinnerModel{
		spinner: s,
		message: message,
		styles:  styles,
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

type spinnerDoneMsg struct {
	result string
	err    error
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	case spinnerDoneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.quitting {
		return ""
	}
	if m.done {
		if m.err != nil {
			return m.styles.Error.Render("✗ "+m.err.Error()) + "\n"
		}
		return m.styles.Success.Render("✓ "+m.result) + "\n"
	}
	return fmt.Sprintf("%s %s\n", m.spinner.View(), m.message)
}

// Spin runs fn while displaying a spinner with the given message.
// fn's result string is shown on completion.
func Spin(message string, fn func() (string, error)) (string, error) {
	m := newSpinnerModel(message)
	p := tea.NewProgram(m)

	go func() {
		result, err := fn()
		// Brief pause so the spinner is visible on fast operations.
		time.Sleep(100 * time.Millisecond)
		p.Send(spinnerDoneMsg{result: result, err: err})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	final := finalModel.(spinnerModel) //nolint:errcheck // type assertion always succeeds here
	if final.quitting {
		return "", fmt.Errorf("canceled")
	}
	return final.result, final.err
}
