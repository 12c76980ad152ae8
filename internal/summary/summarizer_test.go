package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytpulse/internal/comments"
	"ytpulse/internal/events"
	"ytpulse/internal/retry"
)

type scriptedModel struct {
	mu      sync.Mutex
	prompts []string
	reply   func(call int, prompt string) (string, error)
}

func (m *scriptedModel) Complete(_ context.Context, _, user string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, user)
	call := len(m.prompts)
	m.mu.Unlock()
	return m.reply(call, user)
}

func (m *scriptedModel) count(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.prompts {
		if strings.HasPrefix(p, prefix) {
			n++
		}
	}
	return n
}

const report = "1. likes\n2. dislikes\n3. expectations\n4. improvements\n5. profile"

func makeComments(n int) []comments.Comment {
	list := make([]comments.Comment, n)
	for i := range list {
		list[i] = comments.Comment{
			ID:                fmt.Sprintf("c%d", i),
			TextDisplay:       fmt.Sprintf("comment body %d", i),
			AuthorDisplayName: "viewer",
			LikeCount:         i,
			PublishedAt:       time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC).Format(time.RFC3339),
		}
	}
	return list
}

func fixedClock() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("x", 3600)) }

func newTestSummarizer(model Completer, cfg Config) *Summarizer {
	return New(model, cfg,
		WithSleeper(func(ctx context.Context, _ time.Duration) error { return ctx.Err() }),
		WithClock(fixedClock),
	)
}

func discard() *events.Stream { return events.NewStream(context.Background(), events.Discard) }

func TestRunSingleCall(t *testing.T) {
	model := &scriptedModel{reply: func(int, string) (string, error) { return "```markdown\n" + report + "\n```", nil }}
	s := newTestSummarizer(model, Config{})

	got, err := s.Run(context.Background(), makeComments(20), StrategyFull, discard())
	require.NoError(t, err)
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "[viewer] (likes 3) comment body 3")
	assert.Contains(t, model.prompts[0], "Write the report in Simplified Chinese.")
	assert.Equal(t, "likes", got.UserLikes)
	assert.Equal(t, "profile", got.UserProfile)
	assert.Equal(t, report, got.RawSummary)
	assert.Equal(t, 20, got.AnalyzedComments)
	assert.Equal(t, 20, got.TotalComments)
	assert.Equal(t, "2024-05-06T06:08:09Z", got.Timestamp)
	assert.False(t, got.BatchProcessed)
}

func TestRunPopularSelectsTopLiked(t *testing.T) {
	model := &scriptedModel{reply: func(int, string) (string, error) { return report, nil }}
	s := newTestSummarizer(model, Config{Limits: DefaultLimits()})

	got, err := s.Run(context.Background(), makeComments(80), StrategyPopular, discard())
	require.NoError(t, err)
	assert.Equal(t, 50, got.AnalyzedComments)
	assert.Equal(t, 80, got.TotalComments)
	assert.True(t, strings.Contains(model.prompts[0], "(likes 79)"))
	assert.False(t, strings.Contains(model.prompts[0], "(likes 29)"))
}

func TestRunBatchesAndMerges(t *testing.T) {
	model := &scriptedModel{reply: func(_ int, prompt string) (string, error) {
		if strings.HasPrefix(prompt, "Merge") {
			return report, nil
		}
		return "batch report", nil
	}}
	s := newTestSummarizer(model, Config{})

	got, err := s.Run(context.Background(), makeComments(1200), StrategyFull, discard())
	require.NoError(t, err)
	assert.Equal(t, 3, model.count("This is batch"))
	require.Equal(t, 1, model.count("Merge"))
	merge := model.prompts[len(model.prompts)-1]
	assert.Contains(t, merge, "## Batch 1 (500 comments)")
	assert.Contains(t, merge, "## Batch 2 (500 comments)")
	assert.Contains(t, merge, "## Batch 3 (200 comments)")
	assert.True(t, got.BatchProcessed)
	assert.Equal(t, 3, got.Batches)
	assert.Zero(t, got.FailedBatches)
	assert.Equal(t, "dislikes", got.UserDislikes)
}

func TestRunParallelBatchesKeepOrder(t *testing.T) {
	model := &scriptedModel{reply: func(_ int, prompt string) (string, error) {
		if strings.HasPrefix(prompt, "Merge") {
			return "merged", nil
		}
		var batch int
		_, _ = fmt.Sscanf(prompt, "This is batch %d", &batch)
		return fmt.Sprintf("report %d", batch), nil
	}}
	s := newTestSummarizer(model, Config{Parallelism: 3, Threshold: 10, BatchSize: 10})

	_, err := s.Run(context.Background(), makeComments(45), StrategyFull, discard())
	require.NoError(t, err)
	merge := model.prompts[len(model.prompts)-1]
	require.True(t, strings.HasPrefix(merge, "Merge"))
	last := -1
	for i := 1; i <= 5; i++ {
		idx := strings.Index(merge, fmt.Sprintf("## Batch %d (", i))
		require.Greater(t, idx, last, "batch %d out of order", i)
		last = idx
		assert.Contains(t, merge, fmt.Sprintf("report %d", i))
	}
}

func TestRunSingleSuccessfulBatchIsVerbatim(t *testing.T) {
	model := &scriptedModel{reply: func(_ int, prompt string) (string, error) {
		if strings.HasPrefix(prompt, "This is batch 2") {
			return "", &retry.StatusError{StatusCode: 400, Message: "too long"}
		}
		return "only survivor", nil
	}}
	s := newTestSummarizer(model, Config{Threshold: 10, BatchSize: 10})

	got, err := s.Run(context.Background(), makeComments(20), StrategyFull, discard())
	require.NoError(t, err)
	assert.Zero(t, model.count("Merge"))
	assert.Equal(t, "only survivor", got.RawSummary)
	assert.Equal(t, "only survivor", got.UserLikes)
	assert.Equal(t, 1, got.FailedBatches)
}

func TestRunAllBatchesFail(t *testing.T) {
	model := &scriptedModel{reply: func(int, string) (string, error) {
		return "", &retry.StatusError{StatusCode: 403, Message: "denied"}
	}}
	s := newTestSummarizer(model, Config{Threshold: 10, BatchSize: 10})

	_, err := s.Run(context.Background(), makeComments(30), StrategyFull, discard())
	require.ErrorIs(t, err, ErrAllBatchesFailed)
	var agg *AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Errors, 3)
	var statusErr *retry.StatusError
	assert.ErrorAs(t, err, &statusErr)
	assert.Zero(t, model.count("Merge"), "no merge call without successes")
}

func TestRunMergeFailureConcatenates(t *testing.T) {
	model := &scriptedModel{reply: func(_ int, prompt string) (string, error) {
		if strings.HasPrefix(prompt, "Merge") {
			return "", &retry.StatusError{StatusCode: 400, Message: "bad"}
		}
		var batch int
		_, _ = fmt.Sscanf(prompt, "This is batch %d", &batch)
		return fmt.Sprintf("report %d", batch), nil
	}}
	s := newTestSummarizer(model, Config{Threshold: 10, BatchSize: 10})

	got, err := s.Run(context.Background(), makeComments(25), StrategyFull, discard())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.RawSummary, "# Combined batch reports (25 comments, 3 batches)"))
	for i := 1; i <= 3; i++ {
		assert.Contains(t, got.RawSummary, fmt.Sprintf("## Batch %d (", i))
		assert.Contains(t, got.RawSummary, fmt.Sprintf("report %d", i))
	}
	assert.Equal(t, "report 1 report 2 report 3", got.UserLikes)
}

func TestRunMergeFailureJoinsSectionsAcrossBatches(t *testing.T) {
	model := &scriptedModel{reply: func(_ int, prompt string) (string, error) {
		if strings.HasPrefix(prompt, "Merge") {
			return "", &retry.StatusError{StatusCode: 400, Message: "bad"}
		}
		var batch int
		_, _ = fmt.Sscanf(prompt, "This is batch %d", &batch)
		return fmt.Sprintf("## 1. Audience likes\nL%[1]d\n## 2. Audience dislikes\nD%[1]d\n## 3. Content expectations\nE%[1]d\n"+
			"## 4. Improvement suggestions\nI%[1]d\n## 5. Audience profile\nP%[1]d", batch), nil
	}}
	s := newTestSummarizer(model, Config{Threshold: 500, BatchSize: 500})

	got, err := s.Run(context.Background(), makeComments(1000), StrategyFull, discard())
	require.NoError(t, err)
	assert.Equal(t, "Audience likes L1 Audience likes L2", got.UserLikes)
	assert.Equal(t, "Audience dislikes D1 Audience dislikes D2", got.UserDislikes)
	assert.Equal(t, "Content expectations E1 Content expectations E2", got.UserExpectations)
	assert.Equal(t, "Improvement suggestions I1 Improvement suggestions I2", got.Improvements)
	assert.Equal(t, "Audience profile P1 Audience profile P2", got.UserProfile)
	assert.NotContains(t, got.UserProfile, "Batch 2")
	assert.Contains(t, got.RawSummary, "## Batch 2 (500 comments)")
}

func TestRunRetriesTransientFailures(t *testing.T) {
	model := &scriptedModel{reply: func(call int, _ string) (string, error) {
		if call == 1 {
			return "", &retry.StatusError{StatusCode: 503}
		}
		return report, nil
	}}
	s := newTestSummarizer(model, Config{Retry: retry.Policy{MaxRetries: 3, InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 10 * time.Second}})

	_, err := s.Run(context.Background(), makeComments(5), StrategyFull, discard())
	require.NoError(t, err)
	assert.Len(t, model.prompts, 2)
}

func TestRunNoComments(t *testing.T) {
	model := &scriptedModel{reply: func(int, string) (string, error) { return report, nil }}
	s := newTestSummarizer(model, Config{Limits: DefaultLimits()})

	_, err := s.Run(context.Background(), nil, StrategyFull, discard())
	require.ErrorIs(t, err, ErrNoComments)

	_, err = s.Run(context.Background(), makeComments(3), StrategyNegative, discard())
	require.ErrorIs(t, err, ErrNoComments)
	assert.Empty(t, model.prompts)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyFull, s)

	s, err = ParseStrategy(" Popular ")
	require.NoError(t, err)
	assert.Equal(t, StrategyPopular, s)

	_, err = ParseStrategy("loudest")
	assert.Error(t, err)
}

func TestSelectSentimentMix(t *testing.T) {
	var list []comments.Comment
	for i := 0; i < 60; i++ {
		list = append(list,
			comments.Comment{ID: fmt.Sprintf("p%d", i), TextDisplay: "this is great"},
			comments.Comment{ID: fmt.Sprintf("n%d", i), TextDisplay: "this is terrible"},
			comments.Comment{ID: fmt.Sprintf("u%d", i), TextDisplay: "this is a video"},
		)
	}
	got := Select(list, StrategySentiment, DefaultLimits())
	require.Len(t, got, 150)
	assert.Equal(t, "p0", got[0].ID)
	assert.Equal(t, "n0", got[50].ID)
	assert.Equal(t, "u0", got[100].ID)
}

func TestFrameCommentPrefersTranslation(t *testing.T) {
	c := comments.Comment{TextDisplay: "hello <b>there</b>", LikeCount: 2}
	assert.Equal(t, "[anonymous] (likes 2) hello there", frameComment(c))
	c.TranslatedText = "你好"
	c.AuthorDisplayName = "bob"
	assert.Equal(t, "[bob] (likes 2) 你好", frameComment(c))
}

func TestAggregateErrorMessage(t *testing.T) {
	err := &AggregateError{Errors: []error{errors.New("one"), errors.New("two")}}
	assert.Contains(t, err.Error(), "2 batches")
	assert.True(t, errors.Is(err, ErrAllBatchesFailed))
}
