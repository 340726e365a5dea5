package fetch

import "time"

// Story is the remote representation of a story, job or poll.
// Optional fields are zero when the API omits them.
type Story struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type"`
	By          string  `json:"by,omitempty"`
	Time        int64   `json:"time"`
	Title       string  `json:"title,omitempty"`
	Text        string  `json:"text,omitempty"`
	URL         string  `json:"url,omitempty"`
	Score       int     `json:"score,omitempty"`
	Descendants int     `json:"descendants,omitempty"`
	Deleted     bool    `json:"deleted,omitempty"`
	Dead        bool    `json:"dead,omitempty"`
	Poll        *int64  `json:"poll,omitempty"`
	Kids        []int64 `json:"kids,omitempty"`
}

// Posted returns the submission time.
func (s *Story) Posted() time.Time {
	return time.Unix(s.Time, 0).UTC()
}

// Comment is the remote representation of a comment.
type Comment struct {
	ID      int64   `json:"id"`
	Type    string  `json:"type"`
	Parent  int64   `json:"parent"`
	By      string  `json:"by,omitempty"`
	Text    string  `json:"text,omitempty"`
	Deleted bool    `json:"deleted,omitempty"`
	Dead    bool    `json:"dead,omitempty"`
	Kids    []int64 `json:"kids,omitempty"`
	Time    int64   `json:"time"`
}

// Posted returns the comment time.
func (c *Comment) Posted() time.Time {
	return time.Unix(c.Time, 0).UTC()
}
