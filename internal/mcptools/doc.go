// Package mcptools exposes the job runner as Model Context Protocol tools.
//
// Tools:
//   - summarize_video_comments: collect, optionally translate, and summarize
//     one video. Admission goes through the same gate as the HTTP server.
//   - extract_video_id: parse a YouTube url or bare id.
//
// The server speaks MCP over stdio via Serve; tests drive it through
// in-memory transports.
package mcptools
