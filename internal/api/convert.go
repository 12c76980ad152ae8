package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"ytpulse/internal/jobs"
	"ytpulse/internal/services"
	"ytpulse/internal/summary"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Target returns the id or url the caller supplied, id first.
func (r CommentsRequest) Target() string {
	if id := strings.TrimSpace(r.VideoID); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL)
}

// ToVideoRequest binds the request to a caller identity.
func (r CommentsRequest) ToVideoRequest(userID string) jobs.VideoRequest {
	return jobs.VideoRequest{
		VideoID:   r.Target(),
		UserID:    strings.TrimSpace(userID),
		Translate: r.Translate,
		Strategy:  strings.TrimSpace(r.Strategy),
	}
}

// RetryAfterSeconds rounds d up to whole seconds, with a floor of one.
func RetryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// FromBusy renders a capacity rejection.
func FromBusy(err *jobs.BusyError) BusyResponse {
	if err == nil {
		return BusyResponse{Error: "server busy", RetryAfter: 1}
	}
	return BusyResponse{
		Error:           "server busy, try again later",
		Details:         fmt.Sprintf("%d video jobs are in progress", err.Active.ActiveCount),
		ActiveProcesses: err.Active.ActiveCount,
		RetryAfter:      RetryAfterSeconds(err.RetryAfter),
	}
}

// FromError maps err onto a status code and body. Client errors carry the
// message as Error; server-side failures get a generic Error and the cause in
// Details.
func FromError(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, ErrorResponse{Error: "unknown error"}
	}
	status := services.HTTPStatus(err)
	switch {
	case status < http.StatusInternalServerError:
		return status, ErrorResponse{Error: err.Error()}
	case errors.Is(err, services.ErrConfiguration):
		return status, ErrorResponse{Error: "server is not configured for this request", Details: err.Error()}
	case errors.Is(err, summary.ErrAllBatchesFailed):
		return status, ErrorResponse{Error: "summary failed", Details: err.Error()}
	default:
		return status, ErrorResponse{Error: "processing failed", Details: err.Error()}
	}
}

// StrategyNames lists the accepted strategy values.
func StrategyNames() []string {
	out := make([]string, 0, len(summary.Strategies))
	for _, s := range summary.Strategies {
		out = append(out, string(s))
	}
	return out
}

// FormatTime renders t for API payloads; the zero time renders empty.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
