package presenter

import (
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"
)

// Truncate shortens s to at most width terminal cells, appending an
// ellipsis when anything was cut. Widths are measured per cell
// (runewidth) so emoji and CJK glyphs count correctly.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return runewidth.Truncate(s, width-1, "") + "…"
}

// Pad right-pads s with spaces to exactly width cells, truncating first
// if necessary.
func Pad(s string, width int) string {
	s = Truncate(s, width)
	return s + spaces(width-runewidth.StringWidth(s))
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%*s", n, "")
}

// RelativeTime renders a feed timestamp the way the notification views
// do: "just now", "5m ago", "3h ago", "2d ago", then the date.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2 Jan 2006")
	}
}

// AbbrevCount renders large counters the way profile pages do:
// 950 -> "950", 8300 -> "8.3K", 1200000 -> "1.2M".
func AbbrevCount(n int) string {
	switch {
	case n >= 1_000_000:
		return trimZero(fmt.Sprintf("%.1fM", float64(n)/1_000_000))
	case n >= 1_000:
		return trimZero(fmt.Sprintf("%.1fK", float64(n)/1_000))
	default:
		return fmt.Sprintf("%d", n)
	}
}

func trimZero(s string) string {
	if len(s) > 3 && s[len(s)-3:len(s)-1] == ".0" {
		return s[:len(s)-3] + s[len(s)-1:]
	}
	return s
}
