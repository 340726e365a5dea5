package ui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/hnreader/internal/paging"
)

// Source pairs a mediator with the sequence it writes.
type Source[T any] struct {
	Loader   paging.Loader
	Sequence paging.Sequence[T]
}

// RowRenderer renders one row. The result may span several lines.
type RowRenderer[T any] func(row T, selected bool, width int) string

// listIDs tags each List so results for a closed screen are dropped.
var listIDs atomic.Int64

// List is a scrollable view over a mediator's sequence. It decides when to
// load through paging.View and renders placeholder rows while a page is in
// flight.
//
// List is driven from a Bubble Tea update loop and is not safe for
// concurrent use. Loads run inside tea.Cmds and report back as messages.
type List[T any] struct {
	id          int
	src         Source[T]
	view        *paging.View
	render      RowRenderer[T]
	placeholder string

	rows   []T
	cursor int
}

// NewList creates a List. placeholder is the text of a not-yet-loaded row.
func NewList[T any](src Source[T], pageSize, prefetch int, render RowRenderer[T], placeholder string) *List[T] {
	return &List[T]{
		id:          int(listIDs.Add(1)),
		src:         src,
		view:        paging.NewView(pageSize, prefetch),
		render:      render,
		placeholder: placeholder,
	}
}

// Start issues a refresh and moves the cursor to the top.
func (l *List[T]) Start() tea.Cmd {
	kind, ok := l.view.Start()
	if !ok {
		return nil
	}
	l.cursor = 0
	return l.load(kind)
}

func (l *List[T]) load(kind paging.LoadKind) tea.Cmd {
	src, id := l.src, l.id
	return func() tea.Msg {
		ctx := context.Background()
		res := src.Loader.Load(ctx, kind)

		msg := pageLoaded[T]{list: id, kind: kind, result: res}
		rows, err := readAll(ctx, src.Sequence)
		if err != nil {
			// Keep the rows on screen; surface the read failure instead.
			if res.Status != paging.Failed {
				msg.result = paging.Result{Status: paging.Failed, Err: err}
			}
			msg.stale = true
			return msg
		}
		msg.rows = rows
		return msg
	}
}

func readAll[T any](ctx context.Context, seq paging.Sequence[T]) ([]T, error) {
	n, err := seq.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return seq.Window(ctx, 0, n)
}

// Update applies a finished load. Messages for other lists are ignored.
func (l *List[T]) Update(msg tea.Msg) tea.Cmd {
	loaded, ok := msg.(pageLoaded[T])
	if !ok || loaded.list != l.id {
		return nil
	}
	if !loaded.stale {
		l.rows = loaded.rows
	}
	l.view.Finished(loaded.result, len(l.rows))
	if l.cursor >= len(l.rows) {
		l.cursor = max(len(l.rows)-1, 0)
	}
	// A short page may leave the cursor inside the prefetch window.
	return l.scrolled(l.cursor)
}

// HandleKey handles navigation and load keys.
func (l *List[T]) HandleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Down):
		if l.cursor < len(l.rows)-1 {
			l.cursor++
		}
		return l.scrolled(l.cursor)

	case key.Matches(msg, keys.Up):
		if l.cursor == 0 {
			return l.scrolled(-1)
		}
		l.cursor--
		return nil

	case key.Matches(msg, keys.Home):
		l.cursor = 0
		return nil

	case key.Matches(msg, keys.End):
		if len(l.rows) > 0 {
			l.cursor = len(l.rows) - 1
		}
		return l.scrolled(l.cursor)

	case key.Matches(msg, keys.Refresh):
		return l.Start()

	case key.Matches(msg, keys.Dismiss):
		l.view.Dismiss()
		return nil

	case key.Matches(msg, keys.Retry):
		if kind, ok := l.view.Retry(); ok {
			return l.load(kind)
		}
		return nil
	}
	return nil
}

func (l *List[T]) scrolled(cursor int) tea.Cmd {
	if kind, ok := l.view.Scrolled(cursor); ok {
		return l.load(kind)
	}
	return nil
}

// Selected returns the row under the cursor.
func (l *List[T]) Selected() (T, bool) {
	var zero T
	if l.cursor < 0 || l.cursor >= len(l.rows) {
		return zero, false
	}
	return l.rows[l.cursor], true
}

// View renders the visible rows followed by placeholder rows.
func (l *List[T]) View(width, height int) string {
	if height < 1 {
		height = 1
	}
	placeholders := l.view.Placeholders()
	if len(l.rows) == 0 && placeholders == 0 {
		return HelpStyle.Render("Nothing to show. Press r to refresh.")
	}

	var lines []string
	for i := l.scrollOffset(width, height); i < len(l.rows) && len(lines) < height; i++ {
		lines = append(lines, strings.Split(l.render(l.rows[i], i == l.cursor, width), "\n")...)
	}
	for i := 0; i < placeholders && len(lines) < height; i++ {
		lines = append(lines, PlaceholderItem.Render(l.placeholder))
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// scrollOffset returns the first row to draw so the cursor row stays visible.
func (l *List[T]) scrollOffset(width, height int) int {
	if len(l.rows) == 0 {
		return 0
	}
	used := 0
	for i := l.cursor; i >= 0; i-- {
		used += lipgloss.Height(l.render(l.rows[i], i == l.cursor, width))
		if used > height {
			return min(i+1, l.cursor)
		}
	}
	return 0
}

// Position renders the cursor position for the status bar.
func (l *List[T]) Position() string {
	if len(l.rows) == 0 {
		return "0/0"
	}
	pos := fmt.Sprintf("%d/%d", l.cursor+1, len(l.rows))
	if l.view.EndReached() {
		pos += " (end)"
	}
	return pos
}

// Cursor returns the cursor position.
func (l *List[T]) Cursor() int { return l.cursor }

// Rows returns the backed rows.
func (l *List[T]) Rows() []T { return l.rows }

// Loading reports whether a load is in flight.
func (l *List[T]) Loading() bool { return l.view.Loading() }

// Err returns the undismissed load error, if any.
func (l *List[T]) Err() error { return l.view.Err() }

// Fatal reports whether the cache failed and loads have stopped.
func (l *List[T]) Fatal() bool { return l.view.Fatal() }
