package testsupport

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ytpulse/internal/comments"
)

// FakeSource serves canned metadata and pages keyed by cursor. Page "" is
// the first page.
type FakeSource struct {
	mu      sync.Mutex
	Info    comments.VideoInfo
	InfoErr error
	Pages   map[string]comments.Page
	PageErr map[string]error
	// Block, when set, is waited on before every page fetch.
	Block   chan struct{}
	Cursors []string
}

// NewFakeSource builds a source with pages pages of perPage threads each.
func NewFakeSource(videoID string, pages, perPage int) *FakeSource {
	src := &FakeSource{
		Info: comments.VideoInfo{
			VideoID:      videoID,
			Title:        "Test video " + videoID,
			ChannelTitle: "Test channel",
			CommentCount: fmt.Sprint(pages * perPage),
			VideoURL:     comments.WatchURL(videoID),
		},
		Pages: make(map[string]comments.Page),
	}
	for p := 0; p < pages; p++ {
		cursor := ""
		if p > 0 {
			cursor = fmt.Sprintf("page-%d", p+1)
		}
		var page comments.Page
		for i := 0; i < perPage; i++ {
			id := fmt.Sprintf("p%dc%d", p+1, i)
			page.Threads = append(page.Threads, comments.Thread{TopLevel: comments.Comment{
				ID:                id,
				TextDisplay:       fmt.Sprintf("comment %s is great", id),
				AuthorDisplayName: "viewer " + id,
				LikeCount:         i,
				PublishedAt:       "2024-01-01T00:00:00Z",
			}})
		}
		if p < pages-1 {
			page.NextCursor = fmt.Sprintf("page-%d", p+2)
		}
		src.Pages[cursor] = page
	}
	return src
}

func (f *FakeSource) FetchVideoInfo(ctx context.Context, videoID string) (comments.VideoInfo, error) {
	if f.InfoErr != nil {
		return comments.VideoInfo{}, f.InfoErr
	}
	info := f.Info
	info.VideoID = videoID
	return info, nil
}

func (f *FakeSource) FetchCommentPage(ctx context.Context, _ string, cursor string, _ int) (comments.Page, error) {
	if f.Block != nil {
		select {
		case <-f.Block:
		case <-ctx.Done():
			return comments.Page{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Cursors = append(f.Cursors, cursor)
	if err := f.PageErr[cursor]; err != nil {
		return comments.Page{}, err
	}
	return f.Pages[cursor], nil
}

// FakeModel answers translation prompts line by line with a prefix and any
// other prompt with a canned five-section report.
type FakeModel struct {
	mu     sync.Mutex
	Prefix string
	Report string
	Err    error
	Calls  int
}

// DefaultReport is a well-formed five-section report.
const DefaultReport = "1. likes it\n2. dislikes it\n3. expects more\n4. improve audio\n5. students"

func (m *FakeModel) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	m.Calls++
	err := m.Err
	m.mu.Unlock()
	if err != nil {
		return "", err
	}
	if strings.Contains(systemPrompt, "translator") {
		prefix := m.Prefix
		if prefix == "" {
			prefix = "T:"
		}
		lines := strings.Split(userPrompt, "\n")[1:]
		for i, line := range lines {
			lines[i] = prefix + " " + line
		}
		return strings.Join(lines, "\n"), nil
	}
	if m.Report != "" {
		return m.Report, nil
	}
	return DefaultReport, nil
}

// CallCount returns the number of Complete calls so far.
func (m *FakeModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}
