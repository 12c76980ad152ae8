// Package events defines the typed progress stream shared by every job and the
// newline-delimited JSON framing used to deliver it.
//
// Stream guarantees at most one terminal event per run and drops everything
// after it, after cancellation, or after the sink reports a write failure.
// Within derives a view that rescales progress into a sub-range, which lets
// the collector, translator and summarizer each report 0..100 while the
// consumer sees one monotonic percentage.
package events
