package ui

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/hnreader/internal/richtext"
	"github.com/abelbrown/hnreader/internal/store"
)

// Placeholder rows shown while a page is in flight.
const (
	StoryPlaceholder   = "Loading item, please wait..."
	CommentPlaceholder = "Loading comment, please wait..."
)

// RenderStory renders a single story line:
//
//	12. Title (host)    123 pts · 45 comments · 3h ago
func RenderStory(s store.StoryRecord, selected bool, width int) string {
	rank := RankStyle.Render(fmt.Sprintf("%d.", s.Rank))

	meta := fmt.Sprintf("%d pts · %d comments · %s", s.Score, s.CommentCount, formatAgeShort(s.Posted))
	metaWidth := utf8.RuneCountInString(meta)

	title := s.Title
	if host := hostOf(s.URL); host != "" {
		title += " (" + host + ")"
	}
	titleWidth := width - lipgloss.Width(rank) - metaWidth - 4
	if titleWidth < 20 {
		titleWidth = 20
	}
	title = truncate(title, titleWidth)

	var style lipgloss.Style
	switch {
	case selected:
		style = SelectedItem
	case s.Dead || s.Deleted:
		style = DeadItem
	default:
		style = NormalItem
	}
	left := rank + style.Render(title)

	pad := width - lipgloss.Width(left) - metaWidth
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + MetaItem.Render(meta)
}

// RenderComment renders a comment as a header line, the wrapped body and a
// blank separator line.
func RenderComment(c store.CommentRecord, selected bool, width int) string {
	marker := "  "
	if selected {
		marker = CommentCursor.Render("▌ ")
	}

	author := c.Author
	if author == "" {
		author = "[unknown]"
	}
	header := marker + CommentAuthor.Render(author) + MetaItem.Render(" · "+formatAgeShort(c.Posted))

	var body string
	if c.Deleted || (c.Author == "" && c.Text == "") {
		body = MetaItem.Render("<deleted comment>")
	} else {
		body = renderSpans(richtext.Parse(c.Text))
	}

	bodyWidth := width - 4
	if bodyWidth < 20 {
		bodyWidth = 20
	}
	wrapped := lipgloss.NewStyle().Width(bodyWidth).PaddingLeft(2).Render(body)

	return header + "\n" + wrapped + "\n"
}

// renderSpans maps rich text spans to lipgloss styles.
func renderSpans(doc richtext.Document) string {
	var b strings.Builder
	for _, s := range doc.Spans {
		style := lipgloss.NewStyle()
		switch {
		case s.Code:
			style = SpanCode
		case s.Italic:
			style = SpanItalic
		}
		if s.Link != "" {
			style = style.Inherit(SpanLink)
		}
		b.WriteString(style.Render(s.Text))
	}
	return b.String()
}

func hostOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// truncate shortens s to width runes, ending in "...".
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

func formatAgeShort(posted time.Time) string {
	if posted.IsZero() {
		return "unknown"
	}
	age := time.Since(posted)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}
