package daemon

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"ytpulse/internal/api"
	"ytpulse/internal/comments"
	"ytpulse/internal/config"
	"ytpulse/internal/jobs"
	"ytpulse/internal/summary"
	"ytpulse/internal/testsupport"
)

type wireEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, opts ...testsupport.ConfigOption) (*httptest.Server, *jobs.Runner, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	runner := jobs.New(cfg, nil,
		jobs.WithSource(testsupport.NewFakeSource("dQw4w9WgXcQ", 2, 3)),
		jobs.WithTranslateModel(&testsupport.FakeModel{}),
		jobs.WithSummaryModel(&testsupport.FakeModel{}),
	)
	d, err := New(cfg, runner, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv := httptest.NewServer(d.api.handler)
	t.Cleanup(srv.Close)
	return srv, runner, cfg
}

func post(t *testing.T, url string, body any, headers map[string]string) *http.Response {
	t.Helper()
	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("encode body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readEvents(t *testing.T, resp *http.Response) []wireEvent {
	t.Helper()
	var out []wireEvent
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64<<10), 8<<20)
	for scanner.Scan() {
		var evt wireEvent
		if err := json.Unmarshal(scanner.Bytes(), &evt); err != nil {
			t.Fatalf("decode line %q: %v", scanner.Text(), err)
		}
		out = append(out, evt)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return out
}

func TestHandleCommentsStreamsNDJSON(t *testing.T) {
	srv, runner, _ := newTestServer(t)

	resp := post(t, srv.URL+"/api/comments", api.CommentsRequest{URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Translate: true, Strategy: "popular"}, map[string]string{api.UserIDHeader: "u1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != api.ContentTypeNDJSON {
		t.Fatalf("unexpected content type %q", ct)
	}
	evts := readEvents(t, resp)
	if len(evts) == 0 {
		t.Fatal("expected events")
	}
	seen := map[string]int{}
	for _, e := range evts {
		seen[e.Type]++
	}
	if seen["videoInfo"] != 1 || seen["comments"] != 2 || seen["translated"] == 0 || seen["complete"] != 1 {
		t.Fatalf("unexpected event mix %v", seen)
	}
	last := evts[len(evts)-1]
	if last.Type != "complete" {
		t.Fatalf("expected complete last, got %s", last.Type)
	}
	var result jobs.VideoResult
	if err := json.Unmarshal(last.Data, &result); err != nil {
		t.Fatalf("decode complete: %v", err)
	}
	if result.TotalComments != 6 || result.Summary == nil || result.Summary.Strategy != summary.StrategyPopular {
		t.Fatalf("unexpected result %+v", result)
	}
	if !strings.Contains(result.JobID, "u1") {
		t.Fatalf("job id should carry the user id, got %q", result.JobID)
	}
	if runner.Status().ActiveCount != 0 {
		t.Fatal("gate slot leaked")
	}
}


func TestHandleCommentsReportsPageLimit(t *testing.T) {
	srv, _, _ := newTestServer(t, testsupport.WithMaxPages(1))

	resp := post(t, srv.URL+"/api/comments", api.CommentsRequest{VideoID: "dQw4w9WgXcQ"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	evts := readEvents(t, resp)
	last := evts[len(evts)-1]
	if last.Type != "complete" {
		t.Fatalf("expected complete last, got %s", last.Type)
	}
	var result jobs.VideoResult
	if err := json.Unmarshal(last.Data, &result); err != nil {
		t.Fatalf("decode complete: %v", err)
	}
	if !result.Truncated || result.Pages != 1 || result.TotalComments != 3 {
		t.Fatalf("expected one truncated page, got %+v", result)
	}
	if result.Summary != nil || result.Translated != nil {
		t.Fatal("optional stages should not run")
	}
}
func TestHandleCommentsBusy(t *testing.T) {
	srv, runner, cfg := newTestServer(t)
	held, err := runner.StartVideo(jobs.VideoRequest{VideoID: "aaaaaaaaaaa"})
	if err != nil {
		t.Fatalf("StartVideo: %v", err)
	}
	defer held.Release()

	resp := post(t, srv.URL+"/api/comments", api.CommentsRequest{VideoID: "dQw4w9WgXcQ"}, nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	want := api.RetryAfterSeconds(cfg.RetryAfter())
	if got := resp.Header.Get("Retry-After"); got != strconv.Itoa(want) {
		t.Fatalf("unexpected Retry-After %q", got)
	}
	var body api.BusyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ActiveProcesses != 1 || body.RetryAfter != want || body.Error == "" {
		t.Fatalf("unexpected busy body %+v", body)
	}
}

func TestHandleCommentsValidation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	for name, body := range map[string]any{
		"missing target": api.CommentsRequest{},
		"bad id":         api.CommentsRequest{VideoID: "nope"},
		"bad strategy":   api.CommentsRequest{VideoID: "dQw4w9WgXcQ", Strategy: "loudest"},
	} {
		resp := post(t, srv.URL+"/api/comments", body, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, resp.StatusCode)
		}
		var errBody api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil || errBody.Error == "" {
			t.Fatalf("%s: expected error body, got %+v (%v)", name, errBody, err)
		}
	}

	resp, err := http.Post(srv.URL+"/api/comments", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed body: expected 400, got %d", resp.StatusCode)
	}
}

func TestHandleCommentsMethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/comments")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func sampleComments() []comments.Comment {
	return []comments.Comment{
		{ID: "a", TextDisplay: "first sample comment", LikeCount: 3},
		{ID: "b", TextDisplay: "second sample comment", LikeCount: 1},
	}
}

func TestHandleTranslate(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := post(t, srv.URL+"/api/translate", api.TranslateRequest{Comments: sampleComments()}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	evts := readEvents(t, resp)
	last := evts[len(evts)-1]
	if last.Type != "complete" {
		t.Fatalf("expected complete last, got %s", last.Type)
	}
	var totals jobs.TranslateTotals
	if err := json.Unmarshal(last.Data, &totals); err != nil {
		t.Fatalf("decode totals: %v", err)
	}
	if totals.TotalTranslated != 2 || totals.SuccessCount != 2 {
		t.Fatalf("unexpected totals %+v", totals)
	}

	empty := post(t, srv.URL+"/api/translate", api.TranslateRequest{}, nil)
	if empty.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty list, got %d", empty.StatusCode)
	}
	if ct := empty.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("validation errors answer with JSON, got %q", ct)
	}
}

func TestHandleSummarize(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := post(t, srv.URL+"/api/summarize", api.SummarizeRequest{Comments: sampleComments(), Strategy: "full"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var report summary.Summary
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.UserLikes != "likes it" || report.AnalyzedComments != 2 {
		t.Fatalf("unexpected report %+v", report)
	}

	bad := post(t, srv.URL+"/api/summarize", api.SummarizeRequest{Comments: sampleComments(), Strategy: "loudest"}, nil)
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", bad.StatusCode)
	}
}

func TestHandleStatus(t *testing.T) {
	srv, _, _ := newTestServer(t, testsupport.WithCapacity(2))

	resp, err := http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
	var status api.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Jobs.MaxConcurrent != 2 || status.Jobs.CapacityRemaining != 2 || len(status.Strategies) != len(summary.Strategies) {
		t.Fatalf("unexpected status %+v", status)
	}
}
