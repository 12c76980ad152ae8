package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ytpulse/internal/retry"
)

func TestFetchVideoInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("part") != "snippet,statistics" || q.Get("id") != "dQw4w9WgXcQ" || q.Get("key") != "k" {
			t.Fatalf("unexpected query %s", r.URL.RawQuery)
		}
		payload := map[string]any{
			"items": []any{
				map[string]any{
					"id": "dQw4w9WgXcQ",
					"snippet": map[string]any{
						"title":        "Title",
						"description":  "Desc",
						"channelTitle": "Channel",
						"publishedAt":  "2009-10-25T06:57:33Z",
						"thumbnails": map[string]any{
							"high": map[string]any{"url": "https://i.ytimg.com/vi/x/hq.jpg"},
						},
					},
					"statistics": map[string]any{
						"viewCount":    "100",
						"likeCount":    "10",
						"commentCount": "5",
					},
				},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	info, err := client.FetchVideoInfo(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("FetchVideoInfo returned error: %v", err)
	}
	if info.Title != "Title" || info.ChannelTitle != "Channel" || info.CommentCount != "5" || info.ViewCount != "100" {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.VideoURL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("unexpected video url %q", info.VideoURL)
	}
	if info.ThumbnailURL != "https://i.ytimg.com/vi/x/hq.jpg" {
		t.Fatalf("unexpected thumbnail %q", info.ThumbnailURL)
	}
}

func TestFetchVideoInfoNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	_, err := client.FetchVideoInfo(context.Background(), "missingvid0")
	if !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound, got %v", err)
	}
	if retry.IsRetryable(err) {
		t.Fatal("not-found must not be retryable")
	}
}

func TestFetchCommentPageDecodesThreads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/commentThreads" || q.Get("part") != "snippet,replies" || q.Get("order") != "time" {
			t.Fatalf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		if q.Get("maxResults") != "100" || q.Get("pageToken") != "CURSOR1" {
			t.Fatalf("unexpected paging params %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{
			"nextPageToken": "CURSOR2",
			"items": [{
				"id": "t1",
				"snippet": {
					"totalReplyCount": 2,
					"topLevelComment": {"id": "c1", "snippet": {
						"textDisplay": "Great <b>video</b>", "textOriginal": "Great video",
						"authorDisplayName": "alice", "authorChannelId": {"value": "UC1"},
						"likeCount": 12, "publishedAt": "2024-01-01T00:00:00Z", "updatedAt": "2024-01-01T00:00:00Z"}}
				},
				"replies": {"comments": [
					{"id": "c1.r1", "snippet": {"textDisplay": "agreed!", "authorDisplayName": "bob", "likeCount": 1}}
				]}
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	page, err := client.FetchCommentPage(context.Background(), "vid", "CURSOR1", 500)
	if err != nil {
		t.Fatalf("FetchCommentPage returned error: %v", err)
	}
	if page.NextCursor != "CURSOR2" || len(page.Threads) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
	thread := page.Threads[0]
	if thread.TopLevel.ID != "c1" || thread.TopLevel.LikeCount != 12 || thread.TopLevel.AuthorChannelID != "UC1" {
		t.Fatalf("unexpected top-level %+v", thread.TopLevel)
	}
	if thread.TotalReplyCount != 2 || len(thread.Replies) != 1 || thread.Replies[0].AuthorDisplayName != "bob" {
		t.Fatalf("unexpected replies %+v", thread)
	}
	flat := thread.Flatten()
	if len(flat) != 2 || flat[1].ParentID == nil || *flat[1].ParentID != "c1" {
		t.Fatalf("unexpected flatten %+v", flat)
	}
}

func TestStatusErrorsCarryReason(t *testing.T) {
	tests := []struct {
		status    int
		body      string
		reason    string
		retryable bool
	}{
		{http.StatusForbidden, `{"error":{"code":403,"message":"disabled","errors":[{"reason":"commentsDisabled"}]}}`, "commentsDisabled", false},
		{http.StatusForbidden, `{"error":{"code":403,"message":"quota","errors":[{"reason":"quotaExceeded"}]}}`, "quotaExceeded", false},
		{http.StatusServiceUnavailable, `backend unavailable`, "", true},
		{http.StatusTooManyRequests, `{"error":{"code":429,"message":"slow down"}}`, "", true},
	}
	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(tt.body))
		}))
		client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
		_, err := client.FetchCommentPage(context.Background(), "vid", "", 100)
		server.Close()

		var statusErr *retry.StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("status %d: expected StatusError, got %v", tt.status, err)
		}
		if statusErr.StatusCode != tt.status || statusErr.Reason != tt.reason {
			t.Fatalf("status %d: unexpected %+v", tt.status, statusErr)
		}
		if got := retry.IsRetryable(err); got != tt.retryable {
			t.Fatalf("status %d: retryable=%v want %v", tt.status, got, tt.retryable)
		}
	}
}

func TestMissingAPIKey(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.FetchVideoInfo(context.Background(), "vid"); err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestTransportErrorRedactsKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := server.URL
	server.Close()

	client := NewClient(Config{APIKey: "super-secret", BaseURL: base})
	_, err := client.FetchCommentPage(context.Background(), "vid", "", 100)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if strings.Contains(err.Error(), "super-secret") {
		t.Fatalf("api key leaked in error: %v", err)
	}
	if !retry.IsRetryable(err) {
		t.Fatalf("connection failure should be retryable: %v", err)
	}
}
