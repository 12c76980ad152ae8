// Package youtube fetches video metadata and comment threads from the YouTube
// Data API v3.
//
// The client performs exactly one HTTP request per call, paced by a token
// bucket limiter, and reports non-2xx responses as *retry.StatusError carrying
// the API's error reason (quotaExceeded, commentsDisabled, ...). Retrying is
// left to callers. The API key travels as a query parameter and is scrubbed
// from transport errors before they are returned.
package youtube
