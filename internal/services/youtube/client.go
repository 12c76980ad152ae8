package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ytpulse/internal/comments"
	"ytpulse/internal/retry"
)

const (
	defaultBaseURL     = "https://www.googleapis.com/youtube/v3"
	defaultHTTPTimeout = 30 * time.Second
	maxPageSize        = 100
)

// ErrVideoNotFound is returned when the videos endpoint has no such id.
var ErrVideoNotFound = errors.New("youtube: video not found")

// Config captures the runtime settings required to talk to the Data API.
type Config struct {
	APIKey            string
	BaseURL           string
	TimeoutSeconds    int
	RequestsPerSecond float64
}

// Client issues single, unretried Data API v3 requests. Callers wrap calls
// in retry.Do with the policy that fits them.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLimiter overrides the request pacing limiter.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// NewClient constructs a Data API client using the supplied configuration.
// RequestsPerSecond <= 0 disables pacing.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	if cfg.RequestsPerSecond > 0 {
		burst := max(int(cfg.RequestsPerSecond), 1)
		client.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// FetchVideoInfo returns snippet and statistics metadata for videoID.
func (c *Client) FetchVideoInfo(ctx context.Context, videoID string) (comments.VideoInfo, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", videoID)

	var resp videoListResponse
	if err := c.get(ctx, "videos", params, &resp); err != nil {
		return comments.VideoInfo{}, fmt.Errorf("fetch video info: %w", err)
	}
	if len(resp.Items) == 0 {
		return comments.VideoInfo{}, fmt.Errorf("fetch video info %s: %w", videoID, ErrVideoNotFound)
	}
	return resp.Items[0].toVideoInfo(videoID), nil
}

// FetchCommentPage returns one page of comment threads, newest first. An
// empty cursor requests the first page.
func (c *Client) FetchCommentPage(ctx context.Context, videoID, cursor string, pageSize int) (comments.Page, error) {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	params := url.Values{}
	params.Set("part", "snippet,replies")
	params.Set("videoId", videoID)
	params.Set("maxResults", strconv.Itoa(pageSize))
	params.Set("order", "time")
	params.Set("textFormat", "html")
	if cursor != "" {
		params.Set("pageToken", cursor)
	}

	var resp commentThreadListResponse
	if err := c.get(ctx, "commentThreads", params, &resp); err != nil {
		return comments.Page{}, fmt.Errorf("fetch comment page: %w", err)
	}
	page := comments.Page{NextCursor: resp.NextPageToken}
	for _, item := range resp.Items {
		page.Threads = append(page.Threads, item.toThread())
	}
	return page, nil
}

func (c *Client) get(ctx context.Context, resource string, params url.Values, target any) error {
	if c.cfg.APIKey == "" {
		return errors.New("youtube request: api key required")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, resource)
	if err != nil {
		return fmt.Errorf("youtube request: build url: %w", err)
	}
	params.Set("key", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("youtube request: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return redactKey(err, c.cfg.APIKey)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("youtube request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("youtube request: decode response: %w", err)
	}
	return nil
}

func statusError(code int, body []byte) error {
	statusErr := &retry.StatusError{Service: "youtube", StatusCode: code}
	var payload apiErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		statusErr.Message = payload.Error.Message
		if len(payload.Error.Errors) > 0 {
			statusErr.Reason = payload.Error.Errors[0].Reason
		}
	} else {
		statusErr.Message = strings.TrimSpace(string(body))
	}
	if statusErr.Message == "" {
		statusErr.Message = http.StatusText(code)
	}
	return statusErr
}

// redactKey strips the API key from transport errors, which embed the URL.
func redactKey(err error, key string) error {
	var urlErr *url.Error
	if key == "" || !errors.As(err, &urlErr) {
		return err
	}
	if u, parseErr := url.Parse(urlErr.URL); parseErr == nil {
		q := u.Query()
		if q.Has("key") {
			q.Set("key", "REDACTED")
			u.RawQuery = q.Encode()
			urlErr.URL = u.String()
		}
	}
	return err
}
