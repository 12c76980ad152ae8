package mcptools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytpulse/internal/jobs"
	"ytpulse/internal/testsupport"
)

func connect(t *testing.T, runner *jobs.Runner) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	server := NewServer(runner, "test", nil)
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func newRunner(t *testing.T) *jobs.Runner {
	cfg := testsupport.NewConfig(t)
	model := &testsupport.FakeModel{}
	return jobs.New(cfg, nil,
		jobs.WithSource(testsupport.NewFakeSource("dQw4w9WgXcQ", 2, 4)),
		jobs.WithTranslateModel(model),
		jobs.WithSummaryModel(model),
	)
}

func decode[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	var out T
	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestListTools(t *testing.T) {
	session := connect(t, newRunner(t))
	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"summarize_video_comments", "extract_video_id"}, names)
}

func TestSummarizeVideoComments(t *testing.T) {
	runner := newRunner(t)
	session := connect(t, runner)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "summarize_video_comments",
		Arguments: map[string]any{"video": "https://youtu.be/dQw4w9WgXcQ", "strategy": "popular"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	out := decode[SummarizeOutput](t, res)
	assert.Equal(t, "dQw4w9WgXcQ", out.VideoID)
	assert.Equal(t, 8, out.TotalComments)
	assert.Equal(t, "popular", out.Strategy)
	assert.Equal(t, "likes it", out.UserLikes)
	assert.Equal(t, "students", out.UserProfile)
	assert.Zero(t, runner.Status().ActiveCount)
	assert.Equal(t, int64(1), runner.Counters().Completed)
}

func TestSummarizeVideoCommentsBusy(t *testing.T) {
	runner := newRunner(t)
	held, err := runner.StartVideo(jobs.VideoRequest{VideoID: "aaaaaaaaaaa"})
	require.NoError(t, err)
	defer held.Release()
	session := connect(t, runner)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "summarize_video_comments",
		Arguments: map[string]any{"video": "dQw4w9WgXcQ"},
	})
	if err == nil {
		require.True(t, res.IsError)
		require.NotEmpty(t, res.Content)
		text, ok := res.Content[0].(*mcp.TextContent)
		require.True(t, ok)
		assert.Contains(t, text.Text, "server busy")
	}
	assert.Equal(t, int64(1), runner.Counters().Rejected)
}

func TestExtractVideoID(t *testing.T) {
	session := connect(t, newRunner(t))

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "extract_video_id",
		Arguments: map[string]any{"input": "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	out := decode[ExtractOutput](t, res)
	assert.Equal(t, "dQw4w9WgXcQ", out.VideoID)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", out.VideoURL)
	assert.Contains(t, out.ThumbnailURL, "dQw4w9WgXcQ")

	bad, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "extract_video_id",
		Arguments: map[string]any{"input": "not a url"},
	})
	if err == nil {
		assert.True(t, bad.IsError)
	}
}
