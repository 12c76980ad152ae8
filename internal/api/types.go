package api

import (
	"ytpulse/internal/comments"
	"ytpulse/internal/jobgate"
	"ytpulse/internal/jobs"
)

// UserIDHeader scopes job identifiers to a caller.
const UserIDHeader = "x-user-id"

// ContentTypeNDJSON is the media type of streaming responses.
const ContentTypeNDJSON = "application/x-ndjson"

// CommentsRequest starts a whole-video job. Either VideoID or URL is required.
type CommentsRequest struct {
	VideoID   string `json:"videoId"`
	URL       string `json:"url,omitempty"`
	Translate bool   `json:"translate,omitempty"`
	Strategy  string `json:"strategy,omitempty"`
}

// TranslateRequest translates a previously collected list.
type TranslateRequest struct {
	Comments []comments.Comment `json:"comments"`
}

// SummarizeRequest summarizes a previously collected list.
type SummarizeRequest struct {
	Comments []comments.Comment `json:"comments"`
	Strategy string             `json:"strategy,omitempty"`
}

// StatusResponse describes the running server.
type StatusResponse struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	Address      string         `json:"address,omitempty"`
	LockFilePath string         `json:"lockFilePath,omitempty"`
	StartedAt    string         `json:"startedAt,omitempty"`
	Jobs         jobgate.Status `json:"jobs"`
	Counters     jobs.Counters  `json:"counters"`
	Strategies   []string       `json:"strategies"`
}

// ErrorResponse is the body of every non-2xx JSON answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// BusyResponse is the body of a capacity rejection.
type BusyResponse struct {
	Error           string `json:"error"`
	Details         string `json:"details"`
	ActiveProcesses int    `json:"activeProcesses"`
	RetryAfter      int    `json:"retryAfter"`
}
