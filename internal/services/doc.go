// Package services holds the upstream integrations (youtube, llm) and the
// error markers shared by the pipeline stages.
//
// Wrap tags a failure with one of the sentinel markers plus stage and
// operation context; HTTPStatus maps the marker to the status code the HTTP
// and MCP transports report. Use the markers when a stage fails for a reason
// the caller should see (bad input, missing credentials, unknown video) so the
// transports classify it consistently.
package services
