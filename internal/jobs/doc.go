// Package jobs is the service layer shared by the HTTP, MCP and CLI surfaces.
//
// A Runner owns one jobgate.Gate and the collect, translate and summarize
// stages. Whole-video jobs are admitted through the gate (StartVideo) and
// then run against an events.Emitter; they always finish with exactly one
// terminal event and release their slot on every path. Translate and
// Summarize operate on caller-supplied comments and are not gated.
//
// Progress bands for a video job: collect 0-75, translate 75-90, summarize
// 90-100, then a final 100% progress event before completion.
package jobs
