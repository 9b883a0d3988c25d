// Package richtext converts between the HTML that DeviantArt uses for
// note, comment, and deviation description bodies and Markdown, and
// renders Markdown for terminal display using glamour.
package richtext

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
)

var (
	reHeading    = regexp.MustCompile(`(?i)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	reBlockquote = regexp.MustCompile(`(?is)<blockquote[^>]*>(.*?)</blockquote>`)
	reParagraph  = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)
	reDiv        = regexp.MustCompile(`(?is)<div[^>]*>(.*?)</div>`)
	reBreak      = regexp.MustCompile(`(?i)<br\s*/?\s*>`)
	reRule       = regexp.MustCompile(`(?i)<hr\s*/?\s*>`)
	reBold       = regexp.MustCompile(`(?i)<(?:strong|b)[^>]*>(.*?)</(?:strong|b)>`)
	reItalic     = regexp.MustCompile(`(?i)<(?:em|i)[^>]*>(.*?)</(?:em|i)>`)
	reStrike     = regexp.MustCompile(`(?i)<(?:del|s|strike)[^>]*>(.*?)</(?:del|s|strike)>`)
	reCode       = regexp.MustCompile(`(?i)<code[^>]*>(.*?)</code>`)
	reLink       = regexp.MustCompile(`(?i)<a[^>]*href="([^"]*)"[^>]*>(.*?)</a>`)
	reImg        = regexp.MustCompile(`(?i)<img[^>]*\balt="([^"]*)"[^>]*/?\s*>`)
	reImgBare    = regexp.MustCompile(`(?i)<img[^>]*/?\s*>`)
	reUnordered  = regexp.MustCompile(`(?is)<ul[^>]*>(.*?)</ul>`)
	reOrdered    = regexp.MustCompile(`(?is)<ol[^>]*>(.*?)</ol>`)
	reListItem   = regexp.MustCompile(`(?is)<li[^>]*>(.*?)</li>`)
	reAnyTag     = regexp.MustCompile(`<[^>]+>`)
	reTag        = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	reBlankRuns  = regexp.MustCompile(`\n{3,}`)
)

// HTMLToMarkdown converts a DeviantArt HTML body to Markdown. The
// result is what note reads and comment listings print, and what
// glamour renders in styled mode. Unknown tags are stripped rather
// than preserved so emoticon and thumb widgets degrade to their text.
func HTMLToMarkdown(html string) string {
	if html == "" {
		return ""
	}
	s := strings.TrimSpace(html)

	s = reHeading.ReplaceAllStringFunc(s, func(m string) string {
		parts := reHeading.FindStringSubmatch(m)
		level, _ := strconv.Atoi(parts[1])
		return strings.Repeat("#", level) + " " + strings.TrimSpace(parts[2]) + "\n\n"
	})

	s = reBlockquote.ReplaceAllStringFunc(s, func(m string) string {
		inner := reBlockquote.FindStringSubmatch(m)[1]
		lines := strings.Split(strings.TrimSpace(inner), "\n")
		for i, line := range lines {
			lines[i] = "> " + strings.TrimSpace(line)
		}
		return strings.Join(lines, "\n") + "\n\n"
	})

	s = reUnordered.ReplaceAllStringFunc(s, func(m string) string {
		var out []string
		for _, item := range reListItem.FindAllStringSubmatch(reUnordered.FindStringSubmatch(m)[1], -1) {
			out = append(out, "- "+strings.TrimSpace(item[1]))
		}
		return strings.Join(out, "\n") + "\n\n"
	})
	s = reOrdered.ReplaceAllStringFunc(s, func(m string) string {
		var out []string
		for i, item := range reListItem.FindAllStringSubmatch(reOrdered.FindStringSubmatch(m)[1], -1) {
			out = append(out, strconv.Itoa(i+1)+". "+strings.TrimSpace(item[1]))
		}
		return strings.Join(out, "\n") + "\n\n"
	})

	s = reParagraph.ReplaceAllString(s, "$1\n\n")
	s = reDiv.ReplaceAllString(s, "$1\n")
	s = reBreak.ReplaceAllString(s, "\n")
	s = reRule.ReplaceAllString(s, "\n---\n\n")

	s = reBold.ReplaceAllString(s, "**$1**")
	s = reItalic.ReplaceAllString(s, "*$1*")
	s = reStrike.ReplaceAllString(s, "~~$1~~")
	s = reCode.ReplaceAllString(s, "`$1`")
	s = reLink.ReplaceAllString(s, "[$2]($1)")
	s = reImg.ReplaceAllString(s, "$1")
	s = reImgBare.ReplaceAllString(s, "")

	s = reAnyTag.ReplaceAllString(s, "")
	s = unescapeHTML(s)
	s = reBlankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

var (
	reMdCode   = regexp.MustCompile("`([^`]+)`")
	reMdBold   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	reMdItalic = regexp.MustCompile(`\*([^*]+)\*`)
	reMdLink   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	reMdStrike = regexp.MustCompile(`~~([^~]+)~~`)
	reMdUlItem = regexp.MustCompile(`^\s*[-*+]\s+(.*)$`)
	reMdOlItem = regexp.MustCompile(`^\s*\d+\.\s+(.*)$`)
)

// MarkdownToHTML converts Markdown to the HTML subset DeviantArt
// accepts in note and comment bodies. It covers the elements the
// composer offers: emphasis, links, inline code, lists, blockquotes.
func MarkdownToHTML(md string) string {
	if md == "" {
		return ""
	}
	md = strings.ReplaceAll(md, "\r\n", "\n")

	var b strings.Builder
	var listItems []string
	var listTag string

	flush := func() {
		if len(listItems) == 0 {
			return
		}
		b.WriteString("<" + listTag + ">")
		for _, it := range listItems {
			b.WriteString("<li>" + it + "</li>")
		}
		b.WriteString("</" + listTag + ">")
		listItems = nil
	}

	for _, line := range strings.Split(md, "\n") {
		if m := reMdUlItem.FindStringSubmatch(line); m != nil {
			if listTag != "ul" {
				flush()
				listTag = "ul"
			}
			listItems = append(listItems, inlineHTML(m[1]))
			continue
		}
		if m := reMdOlItem.FindStringSubmatch(line); m != nil {
			if listTag != "ol" {
				flush()
				listTag = "ol"
			}
			listItems = append(listItems, inlineHTML(m[1]))
			continue
		}
		flush()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			b.WriteString("<blockquote>" + inlineHTML(strings.TrimSpace(line[1:])) + "</blockquote>")
			continue
		}
		b.WriteString("<p>" + inlineHTML(line) + "</p>")
	}
	flush()
	return b.String()
}

func inlineHTML(text string) string {
	text = escapeHTML(text)
	text = reMdCode.ReplaceAllString(text, "<code>$1</code>")
	text = reMdBold.ReplaceAllString(text, "<b>$1</b>")
	text = reMdItalic.ReplaceAllString(text, "<i>$1</i>")
	text = reMdStrike.ReplaceAllString(text, "<strike>$1</strike>")
	text = reMdLink.ReplaceAllString(text, `<a href="$2">$1</a>`)
	return text
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func unescapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&quot;", "\"")
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&apos;", "'")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}

// RenderMarkdown renders Markdown for terminal display at the given
// word-wrap width. Width 0 means the default of 80 columns.
func RenderMarkdown(md string, width int) (string, error) {
	if md == "" {
		return "", nil
	}
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(md)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RenderHTML converts a DeviantArt HTML body to Markdown and renders
// it for the terminal. On renderer failure it falls back to the plain
// Markdown so bodies are never swallowed.
func RenderHTML(html string, width int) string {
	md := HTMLToMarkdown(html)
	out, err := RenderMarkdown(md, width)
	if err != nil {
		return md
	}
	return out
}

// IsHTML reports whether s contains markup. DeviantArt bodies are
// HTML, but gallery descriptions are sometimes bare text.
func IsHTML(s string) bool {
	return reTag.MatchString(s)
}
