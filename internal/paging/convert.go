package paging

import (
	"github.com/abelbrown/hnreader/internal/fetch"
	"github.com/abelbrown/hnreader/internal/store"
)

// storyRecord converts a remote story fetched for a ledger entry. The rank
// comes from the ledger, not the remote item.
func storyRecord(rank int64, st *fetch.Story) store.HydratedStory {
	var poll *int64
	if st.Poll != nil {
		id := *st.Poll
		poll = &id
	}
	return store.HydratedStory{
		Story: store.StoryRecord{
			ID:           st.ID,
			Rank:         rank,
			Title:        st.Title,
			Author:       st.By,
			Posted:       st.Posted(),
			Text:         st.Text,
			URL:          st.URL,
			Score:        st.Score,
			CommentCount: st.Descendants,
			Deleted:      st.Deleted,
			Dead:         st.Dead,
			PollID:       poll,
		},
		CommentIDs: st.Kids,
	}
}

// commentRecord converts a remote comment. Absent author, body and flags
// are already zero after decoding.
func commentRecord(storyID int64, c *fetch.Comment) store.CommentRecord {
	return store.CommentRecord{
		StoryID:  storyID,
		ID:       c.ID,
		ParentID: c.Parent,
		Author:   c.By,
		Text:     c.Text,
		Deleted:  c.Deleted,
		Posted:   c.Posted(),
	}
}
