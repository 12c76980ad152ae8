package mcptools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"ytpulse/internal/comments"
	"ytpulse/internal/events"
	"ytpulse/internal/jobs"
	"ytpulse/internal/logging"
	"ytpulse/internal/summary"
)

// SummarizeInput is the argument object of summarize_video_comments.
type SummarizeInput struct {
	Video     string `json:"video" jsonschema:"YouTube video URL or 11-character video id"`
	Strategy  string `json:"strategy,omitempty" jsonschema:"Comment selection: full (default), popular, recent, positive, negative, neutral, sentiment"`
	Translate bool   `json:"translate,omitempty" jsonschema:"Translate comments before summarizing"`
}

// SummarizeOutput is the structured result of summarize_video_comments.
type SummarizeOutput struct {
	VideoID          string   `json:"videoId"`
	Title            string   `json:"title"`
	ChannelTitle     string   `json:"channelTitle"`
	VideoURL         string   `json:"videoUrl"`
	TotalComments    int      `json:"totalComments"`
	AnalyzedComments int      `json:"analyzedComments"`
	Strategy         string   `json:"strategy"`
	Partial          bool     `json:"partial"`
	Truncated        bool     `json:"truncated"`
	UserLikes        string   `json:"userLikes"`
	UserDislikes     string   `json:"userDislikes"`
	UserExpectations string   `json:"userExpectations"`
	Improvements     string   `json:"improvements"`
	UserProfile      string   `json:"userProfile"`
	Warnings         []string `json:"warnings,omitempty"`
}

// ExtractInput is the argument object of extract_video_id.
type ExtractInput struct {
	Input string `json:"input" jsonschema:"YouTube URL (watch, youtu.be, shorts, embed, live) or bare video id"`
}

// ExtractOutput is the structured result of extract_video_id.
type ExtractOutput struct {
	VideoID      string `json:"videoId"`
	VideoURL     string `json:"videoUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// NewServer builds an MCP server with every ytpulse tool registered.
func NewServer(runner *jobs.Runner, version string, logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ytpulse",
		Version: version,
	}, nil)
	RegisterTools(server, runner, logger)
	return server
}

// RegisterTools registers summarize_video_comments and extract_video_id.
func RegisterTools(server *mcp.Server, runner *jobs.Runner, logger *slog.Logger) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "mcp")
	registerSummarize(server, runner, logger)
	registerExtract(server)
}

// Serve runs server over stdio until the client disconnects or ctx is done.
func Serve(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerSummarize(server *mcp.Server, runner *jobs.Runner, logger *slog.Logger) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_video_comments",
		Description: "Collect the public comments of a YouTube video and return an audience report with five sections: what viewers like, what they dislike, what they expect next, suggested improvements and an audience profile. Runs one video at a time; a busy server answers with an error suggesting when to retry.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SummarizeInput) (*mcp.CallToolResult, SummarizeOutput, error) {
		strategy := input.Strategy
		if strategy == "" {
			strategy = string(summary.StrategyFull)
		}
		job, err := runner.StartVideo(jobs.VideoRequest{
			VideoID:   input.Video,
			UserID:    "mcp",
			Translate: input.Translate,
			Strategy:  strategy,
		})
		if err != nil {
			return nil, SummarizeOutput{}, toolError(err)
		}

		rec := &events.Recorder{}
		result, err := job.Run(ctx, rec)
		if err != nil {
			return nil, SummarizeOutput{}, err
		}
		if result.Summary == nil {
			return nil, SummarizeOutput{}, fmt.Errorf("no report for %s: %s", result.VideoInfo.VideoID, firstWarning(rec))
		}
		out := SummarizeOutput{
			VideoID:          result.VideoInfo.VideoID,
			Title:            result.VideoInfo.Title,
			ChannelTitle:     result.VideoInfo.ChannelTitle,
			VideoURL:         result.VideoInfo.VideoURL,
			TotalComments:    result.TotalComments,
			AnalyzedComments: result.Summary.AnalyzedComments,
			Strategy:         string(result.Summary.Strategy),
			Partial:          result.Partial,
			Truncated:        result.Truncated,
			UserLikes:        result.Summary.UserLikes,
			UserDislikes:     result.Summary.UserDislikes,
			UserExpectations: result.Summary.UserExpectations,
			Improvements:     result.Summary.Improvements,
			UserProfile:      result.Summary.UserProfile,
			Warnings:         warnings(rec),
		}
		logger.Info("mcp summary delivered",
			logging.String(logging.FieldEventType, "mcp_summary"),
			logging.VideoID(out.VideoID),
			logging.Int("analyzed", out.AnalyzedComments),
		)
		return nil, out, nil
	})
}

func registerExtract(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_video_id",
		Description: "Extract the 11-character video id from a YouTube URL and return canonical watch and thumbnail URLs.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input ExtractInput) (*mcp.CallToolResult, ExtractOutput, error) {
		id, ok := comments.ExtractVideoID(input.Input)
		if !ok {
			return nil, ExtractOutput{}, errors.New("input is not a YouTube video url or id")
		}
		return nil, ExtractOutput{
			VideoID:      id,
			VideoURL:     comments.WatchURL(id),
			ThumbnailURL: comments.ThumbnailURL(id, "hqdefault"),
		}, nil
	})
}

func toolError(err error) error {
	var busy *jobs.BusyError
	if errors.As(err, &busy) {
		return fmt.Errorf("server busy with %d video jobs, retry in %s", busy.Active.ActiveCount, busy.RetryAfter)
	}
	return err
}

func warnings(rec *events.Recorder) []string {
	var out []string
	for _, e := range rec.OfType(events.TypeError) {
		if data, ok := e.Data.(events.ErrorData); ok && !data.Fatal {
			out = append(out, data.Message)
		}
	}
	return out
}

func firstWarning(rec *events.Recorder) string {
	if w := warnings(rec); len(w) > 0 {
		return w[0]
	}
	return "summary unavailable"
}
