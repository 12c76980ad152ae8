// Package llm provides a chat completion client for OpenAI-compatible
// endpoints (OpenRouter, DeepSeek, Gemini's OpenAI surface).
//
// It is used by:
//   - translate: line-aligned batch translation of comments
//   - summary: per-batch analysis and the merge pass
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send system/user prompts, receive the completion text.
// StripCodeFence: unwrap model output that arrived inside a ``` block.
//
// # Failures
//
// Complete performs one request. Non-2xx responses surface as
// *retry.StatusError with Service "llm"; completions with no usable content
// report HTTP 502 so retry.IsRetryable treats them as transient. Pacing is
// applied through a token bucket when RequestsPerMinute is set.
package llm
