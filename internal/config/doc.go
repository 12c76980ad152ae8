// Package config loads, normalizes, and validates ytpulse configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// YOUTUBE_API_KEY and LLM_API_KEY. Translation and summarization may point at
// different chat completion providers; TranslateLLM and SummaryLLM resolve
// each against the shared [llm] section.
//
// Retry policies are configured per upstream call site under [retry.*] and
// converted into retry.Policy values by the job layer.
package config
