package output

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Styled terminal rendering: a colored summary line followed by the data
// as indented JSON. Machine formats bypass this entirely.

var (
	summaryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#00775c", Dark: "#4fd1b2"})
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#d93025", Dark: "#f28b82"})
	hintStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.AdaptiveColor{Light: "#80868b", Dark: "#6e7681"})
)

func (w *Writer) writeStyled(v any) error {
	switch resp := v.(type) {
	case *Response:
		if resp.Summary != "" {
			if _, err := fmt.Fprintln(w.opts.Writer, summaryStyle.Render(resp.Summary)); err != nil {
				return err
			}
		}
		if resp.Data == nil {
			return nil
		}
		data, err := json.MarshalIndent(resp.Data, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w.opts.Writer, string(data))
		return err

	case *ErrorResponse:
		if _, err := fmt.Fprintln(w.opts.Writer, errorStyle.Render("Error: "+resp.Error)); err != nil {
			return err
		}
		if resp.Hint != "" {
			if _, err := fmt.Fprintln(w.opts.Writer, hintStyle.Render(resp.Hint)); err != nil {
				return err
			}
		}
		return nil

	default:
		return w.writeJSON(v)
	}
}
