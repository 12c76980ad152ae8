// Package api defines the wire-format types of the HTTP layer and the
// converters between them and the job service.
//
// # Key Types
//
// CommentsRequest, TranslateRequest, SummarizeRequest: request bodies of the
// three job endpoints.
//
// StatusResponse: gate snapshot, lifetime job counters and server identity.
//
// ErrorResponse/BusyResponse: failure bodies. BusyResponse accompanies HTTP
// 429 with a Retry-After header carrying the same seconds value.
//
// # Converters
//
// FromError: classified error -> status code and ErrorResponse.
//
// FromBusy: jobs.BusyError -> BusyResponse.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript consumers. Comments travel in
// the same shape the NDJSON stream emits them, so a client can post a
// collected list straight back to /api/translate or /api/summarize.
package api
