package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/hnreader/internal/store"
)

// CommentOpener builds the comment source for a story already in the cache.
type CommentOpener func(ctx context.Context, storyID int64) (store.StoryRecord, Source[store.CommentRecord], error)

// Options configures the App.
type Options struct {
	Stories      Source[store.StoryRecord]
	OpenComments CommentOpener
	PageSize     int
	Prefetch     int // rows from the end at which the next page is requested
}

type screen int

const (
	screenStories screen = iota
	screenComments
)

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold *store.Store. It reads rows through the
// sequences it is given and loads pages through their mediators.
type App struct {
	opts Options

	stories  *List[store.StoryRecord]
	comments *List[store.CommentRecord]
	story    store.StoryRecord // parent of the comment screen
	screen   screen
	openErr  error

	spinner spinner.Model
	help    help.Model
	width   int
	height  int
	ready   bool
}

// NewApp creates the App. Nothing is loaded until Init.
func NewApp(opts Options) App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	return App{
		opts:    opts,
		stories: NewList(opts.Stories, opts.PageSize, opts.Prefetch, RenderStory, StoryPlaceholder),
		spinner: s,
		help:    help.New(),
	}
}

// Init starts the spinner and refreshes the story list.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.stories.Start())
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.ready = true
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case pageLoaded[store.StoryRecord]:
		return a, a.stories.Update(msg)

	case pageLoaded[store.CommentRecord]:
		if a.comments == nil {
			return a, nil
		}
		return a, a.comments.Update(msg)

	case CommentsOpened:
		if msg.Err != nil {
			a.openErr = msg.Err
			return a, nil
		}
		a.openErr = nil
		a.story = msg.Story
		a.comments = NewList(msg.Source, a.opts.PageSize, a.opts.Prefetch, RenderComment, CommentPlaceholder)
		a.screen = screenComments
		return a, a.comments.Start()
	}

	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, keys.Back):
		if a.screen == screenComments {
			a.screen = screenStories
			a.comments = nil
		}
		return a, nil

	case key.Matches(msg, keys.Open):
		if a.screen != screenStories || a.opts.OpenComments == nil {
			return a, nil
		}
		st, ok := a.stories.Selected()
		if !ok {
			return a, nil
		}
		return a, a.openComments(st.ID)

	case key.Matches(msg, keys.Dismiss):
		a.openErr = nil
	}

	if a.screen == screenComments {
		return a, a.comments.HandleKey(msg)
	}
	return a, a.stories.HandleKey(msg)
}

func (a App) openComments(storyID int64) tea.Cmd {
	open := a.opts.OpenComments
	return func() tea.Msg {
		story, src, err := open(context.Background(), storyID)
		return CommentsOpened{Story: story, Source: src, Err: err}
	}
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var (
		title    string
		body     func(width, height int) string
		err      error
		fatal    bool
		loading  bool
		position string
		keyHelp  help.KeyMap
	)
	if a.screen == screenComments {
		title = fmt.Sprintf("Comments · %s", a.story.Title)
		body = a.comments.View
		err, fatal, loading = a.comments.Err(), a.comments.Fatal(), a.comments.Loading()
		position = a.comments.Position()
		keyHelp = commentHelp{keys}
	} else {
		title = "Hacker News · Top Stories"
		body = a.stories.View
		err, fatal, loading = a.stories.Err(), a.stories.Fatal(), a.stories.Loading()
		position = a.stories.Position()
		keyHelp = storyHelp{keys}
	}
	if err == nil {
		err = a.openErr
	}

	header := Header.Width(a.width).Render(truncate(title, max(a.width-2, 4)))

	// Header and status bar take one line each, the banner one more.
	contentHeight := a.height - 2
	banner := ""
	if err != nil {
		contentHeight--
		banner = renderBanner(err, fatal, a.width)
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Height(max(contentHeight, 1)).Render(body(a.width, contentHeight)))
	b.WriteString("\n")
	if banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}
	b.WriteString(a.renderStatusBar(position, loading, keyHelp))
	return b.String()
}

func renderBanner(err error, fatal bool, width int) string {
	text := "Error: " + err.Error() + " (x: dismiss, R: retry)"
	if fatal {
		text = "Cache failure: " + err.Error() + " (restart hnreader)"
	}
	return ErrorStyle.Width(width).Render(text)
}

// renderStatusBar renders the bottom status bar with position and key hints.
func (a App) renderStatusBar(position string, loading bool, keyHelp help.KeyMap) string {
	left := " " + position + " "
	if loading {
		left = " " + a.spinner.View() + " Loading... " + position + " "
	}
	hints := a.help.ShortHelpView(keyHelp.ShortHelp())

	padding := a.width - lipgloss.Width(left) - lipgloss.Width(hints) - 2
	if padding < 0 {
		padding = 0
	}
	return StatusBar.Width(a.width).Render(left + strings.Repeat(" ", padding) + hints)
}

// Stories returns the story list (for testing).
func (a App) Stories() *List[store.StoryRecord] { return a.stories }

// Comments returns the comment list, nil on the story screen (for testing).
func (a App) Comments() *List[store.CommentRecord] { return a.comments }
