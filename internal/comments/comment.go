package comments

import (
	"strconv"
	"strings"
)

// DefaultEstimatedComments is used for progress when the declared count is unusable.
const DefaultEstimatedComments = 1000

// Comment is one top-level comment or reply.
type Comment struct {
	ID                string  `json:"id"`
	TextDisplay       string  `json:"textDisplay"`
	TextOriginal      string  `json:"textOriginal"`
	TranslatedText    string  `json:"translatedText,omitempty"`
	AuthorDisplayName string  `json:"authorDisplayName"`
	AuthorChannelID   string  `json:"authorChannelId,omitempty"`
	LikeCount         int     `json:"likeCount"`
	ReplyCount        int     `json:"replyCount"`
	PublishedAt       string  `json:"publishedAt"`
	UpdatedAt         string  `json:"updatedAt"`
	Level             int     `json:"level"`
	ParentID          *string `json:"parentId"`
}

// SourceText is the text a translation falls back to.
func (c Comment) SourceText() string {
	if c.TextDisplay != "" {
		return c.TextDisplay
	}
	return c.TextOriginal
}

// IsReply reports whether c belongs to another comment.
func (c Comment) IsReply() bool {
	return c.Level > 0 || c.ParentID != nil
}

// Thread is a top-level comment with the replies delivered alongside it.
type Thread struct {
	TopLevel        Comment
	TotalReplyCount int
	Replies         []Comment
}

// Flatten returns the top-level comment followed by its replies, with level
// and parent links filled in.
func (t Thread) Flatten() []Comment {
	out := make([]Comment, 0, 1+len(t.Replies))
	top := t.TopLevel
	top.Level = 0
	top.ParentID = nil
	top.ReplyCount = t.TotalReplyCount
	out = append(out, top)
	for _, reply := range t.Replies {
		parent := top.ID
		reply.Level = 1
		reply.ParentID = &parent
		reply.ReplyCount = 0
		out = append(out, reply)
	}
	return out
}

// VideoInfo carries video metadata. Counts stay string-encoded as delivered.
type VideoInfo struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	ViewCount    string `json:"viewCount"`
	LikeCount    string `json:"likeCount"`
	CommentCount string `json:"commentCount"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	VideoURL     string `json:"videoUrl"`
}

// EstimatedComments parses CommentCount, falling back to DefaultEstimatedComments.
func (v VideoInfo) EstimatedComments() int {
	n, err := strconv.Atoi(strings.TrimSpace(v.CommentCount))
	if err != nil || n <= 0 {
		return DefaultEstimatedComments
	}
	return n
}

// Page is one page of comment threads and the cursor for the next one.
// An empty NextCursor marks the last page.
type Page struct {
	Threads    []Thread
	NextCursor string
}
