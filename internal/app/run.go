package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/hnreader/internal/paging"
	"github.com/abelbrown/hnreader/internal/richtext"
	"github.com/abelbrown/hnreader/internal/store"
	"github.com/abelbrown/hnreader/internal/ui"
)

// RunTUI runs the interactive reader until the user quits or ctx ends.
func (a *App) RunTUI(ctx context.Context) error {
	stories := a.StoryMediator()

	model := ui.NewApp(ui.Options{
		Stories: ui.Source[store.StoryRecord]{
			Loader:   stories,
			Sequence: stories.Sequence(),
		},
		OpenComments: func(ctx context.Context, storyID int64) (store.StoryRecord, ui.Source[store.CommentRecord], error) {
			m, story, err := a.CommentMediator(ctx, storyID)
			if err != nil {
				return store.StoryRecord{}, ui.Source[store.CommentRecord]{}, err
			}
			a.log.Debug("Comments opened", "story_id", m.StoryID(), "comments", m.Total())
			return story, ui.Source[store.CommentRecord]{Loader: m, Sequence: m.Sequence()}, nil
		},
		PageSize: a.cfg.Paging.PageSize,
		Prefetch: a.cfg.Paging.Prefetch,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// Sync refreshes the story list and appends until pages pages are loaded or
// the list ends, then prints the cached stories to w.
func (a *App) Sync(ctx context.Context, pages int, w io.Writer) error {
	m := a.StoryMediator()
	if err := loadPages(ctx, m, pages); err != nil {
		return err
	}

	stories, err := readAll(ctx, m.Sequence())
	if err != nil {
		return err
	}
	for _, s := range stories {
		fmt.Fprintf(w, "%3d. %s (%d) [%d]\n", s.Rank, s.Title, s.Score, s.ID)
	}
	epoch, err := a.store.Epoch(ctx)
	if err != nil {
		return err
	}
	a.log.Info("Sync finished", "pages", pages, "stories", len(stories), "epoch", epoch)
	return nil
}

// Comments loads up to pages pages of a cached story's comments and prints
// them to w as plain text.
func (a *App) Comments(ctx context.Context, storyID int64, pages int, w io.Writer) error {
	m, story, err := a.CommentMediator(ctx, storyID)
	if err != nil {
		return err
	}
	if err := loadPages(ctx, m, pages); err != nil {
		return err
	}

	comments, err := readAll(ctx, m.Sequence())
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s\n%d of %d comments\n\n", story.Title, len(comments), m.Total())
	for _, c := range comments {
		if c.Deleted {
			fmt.Fprintf(w, "[%d] <deleted comment>\n\n", c.ID)
			continue
		}
		fmt.Fprintf(w, "[%d] %s, %s\n", c.ID, c.Author, c.Posted.Format("2006-01-02 15:04"))
		doc := richtext.Parse(c.Text)
		for _, line := range strings.Split(doc.PlainText(), "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
		for i, href := range doc.Links() {
			fmt.Fprintf(w, "    [%d] %s\n", i+1, href)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// loadPages runs one refresh and then appends until pages loads have run or
// the mediator reports end of data. There is no retry: the first failure is
// returned.
func loadPages(ctx context.Context, l paging.Loader, pages int) error {
	kind := paging.Refresh
	for i := 0; i < pages; i++ {
		res := l.Load(ctx, kind)
		switch res.Status {
		case paging.Failed:
			return fmt.Errorf("%s page %d: %w", kind, i+1, res.Err)
		case paging.EndOfData:
			return nil
		}
		kind = paging.Append
	}
	return nil
}

func readAll[T any](ctx context.Context, seq paging.Sequence[T]) ([]T, error) {
	n, err := seq.Count(ctx)
	if err != nil || n == 0 {
		return nil, err
	}
	return seq.Window(ctx, 0, n)
}
