// Package main hosts the ytpulse CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the comment pipeline in-process (collect,
// translate, summarize), serves it over HTTP (serve) or MCP (mcp), and
// queries a running server (status). It centralizes configuration
// resolution and logger setup so subcommands can focus on rendering.
//
// Keep this package lean: add new functionality to the internal packages
// first, then surface it through dedicated commands or flags here.
package main
