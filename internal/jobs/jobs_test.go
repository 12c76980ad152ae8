package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytpulse/internal/comments"
	"ytpulse/internal/events"
	"ytpulse/internal/services"
	"ytpulse/internal/services/youtube"
	"ytpulse/internal/summary"
	"ytpulse/internal/testsupport"
	"ytpulse/internal/translate"
)

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func newRunner(t *testing.T, src *testsupport.FakeSource, model *testsupport.FakeModel, opts ...testsupport.ConfigOption) *Runner {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	return New(cfg, nil,
		WithSource(src),
		WithTranslateModel(model),
		WithSummaryModel(model),
		WithSleeper(noSleep),
	)
}

func terminalCount(rec *events.Recorder) int {
	n := 0
	for _, e := range rec.Events() {
		if e.Terminal() {
			n++
		}
	}
	return n
}

func TestVideoJobFullPipeline(t *testing.T) {
	src := testsupport.NewFakeSource("dQw4w9WgXcQ", 2, 5)
	model := &testsupport.FakeModel{}
	r := newRunner(t, src, model)

	job, err := r.StartVideo(VideoRequest{VideoID: "https://youtu.be/dQw4w9WgXcQ", UserID: "u1", Translate: true, Strategy: "full"})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Status().ActiveCount)

	rec := &events.Recorder{}
	result, err := job.Run(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, 10, result.TotalComments)
	assert.Equal(t, 2, result.Pages)
	require.NotNil(t, result.Translated)
	assert.Equal(t, 10, result.Translated.TotalTranslated)
	assert.Equal(t, 10, result.Translated.SuccessCount)
	assert.Zero(t, result.Translated.FailedBatches)
	for _, c := range result.Comments {
		assert.Contains(t, c.TranslatedText, "T: ")
	}
	require.NotNil(t, result.Summary)
	assert.Equal(t, summary.StrategyFull, result.Summary.Strategy)
	assert.Equal(t, "likes it", result.Summary.UserLikes)

	evs := rec.Events()
	require.NotEmpty(t, evs)
	assert.Equal(t, 1, terminalCount(rec))
	assert.Equal(t, events.TypeComplete, evs[len(evs)-1].Type)

	last := -1.0
	sawTranslateBand, sawSummaryBand := false, false
	for _, e := range rec.OfType(events.TypeProgress) {
		p := e.Data.(events.Progress)
		assert.GreaterOrEqual(t, p.Percentage, last, "progress never goes backwards")
		last = p.Percentage
		if p.Stage == translate.StageTranslating {
			sawTranslateBand = true
			assert.True(t, p.Percentage >= 75 && p.Percentage <= 90, "translation progress within 75-90, got %v", p.Percentage)
		}
		if p.Stage == summary.StageSummarizing {
			sawSummaryBand = true
			assert.True(t, p.Percentage >= 90 && p.Percentage <= 100, "summary progress within 90-100, got %v", p.Percentage)
		}
	}
	assert.Equal(t, 100.0, last)
	assert.True(t, sawTranslateBand)
	assert.True(t, sawSummaryBand)
	assert.NotEmpty(t, rec.OfType(events.TypeTranslated))

	assert.Zero(t, r.Status().ActiveCount, "slot released after run")
	assert.Equal(t, Counters{Started: 1, Completed: 1}, r.Counters())
}

func TestVideoJobCollectOnly(t *testing.T) {
	src := testsupport.NewFakeSource("dQw4w9WgXcQ", 1, 3)
	model := &testsupport.FakeModel{}
	r := newRunner(t, src, model)

	job, err := r.StartVideo(VideoRequest{VideoID: "dQw4w9WgXcQ"})
	require.NoError(t, err)
	rec := &events.Recorder{}
	result, err := job.Run(context.Background(), rec)
	require.NoError(t, err)

	assert.Nil(t, result.Translated)
	assert.Nil(t, result.Summary)
	assert.Zero(t, model.CallCount(), "no llm calls without translate or strategy")
	assert.Empty(t, rec.OfType(events.TypeTranslated))
	assert.Equal(t, 3, result.Stats.Total)
}

func TestStartVideoRejectsWhenBusy(t *testing.T) {
	src := testsupport.NewFakeSource("dQw4w9WgXcQ", 1, 1)
	r := newRunner(t, src, &testsupport.FakeModel{}, testsupport.WithCapacity(1))

	first, err := r.StartVideo(VideoRequest{VideoID: "dQw4w9WgXcQ"})
	require.NoError(t, err)

	_, err = r.StartVideo(VideoRequest{VideoID: "aaaaaaaaaaa"})
	require.ErrorIs(t, err, ErrBusy)
	var busy *BusyError
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, 1, busy.Active.ActiveCount)
	assert.Equal(t, []string{first.ID}, busy.Active.ActiveIDs)
	assert.Equal(t, r.cfg.RetryAfter(), busy.RetryAfter)

	first.Release()
	second, err := r.StartVideo(VideoRequest{VideoID: "aaaaaaaaaaa"})
	require.NoError(t, err)
	second.Release()

	assert.Equal(t, int64(1), r.Counters().Rejected)
	assert.Equal(t, int64(2), r.Counters().Started)
}

func TestStartVideoValidation(t *testing.T) {
	r := newRunner(t, testsupport.NewFakeSource("x", 1, 1), &testsupport.FakeModel{})

	_, err := r.StartVideo(VideoRequest{VideoID: "not a video"})
	require.ErrorIs(t, err, services.ErrValidation)

	_, err = r.StartVideo(VideoRequest{VideoID: "dQw4w9WgXcQ", Strategy: "loudest"})
	require.ErrorIs(t, err, services.ErrValidation)

	assert.Zero(t, r.Status().ActiveCount)
}

func TestStartVideoMissingCredentials(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutCredentials())
	r := New(cfg, nil)

	_, err := r.StartVideo(VideoRequest{VideoID: "dQw4w9WgXcQ"})
	require.ErrorIs(t, err, services.ErrConfiguration)
	assert.Equal(t, 500, services.HTTPStatus(err))
	assert.Zero(t, r.Status().ActiveCount)
}

func TestVideoJobMetadataFailure(t *testing.T) {
	src := testsupport.NewFakeSource("dQw4w9WgXcQ", 1, 1)
	src.InfoErr = fmt.Errorf("fetch video info: %w", youtube.ErrVideoNotFound)
	r := newRunner(t, src, &testsupport.FakeModel{})

	job, err := r.StartVideo(VideoRequest{VideoID: "dQw4w9WgXcQ"})
	require.NoError(t, err)
	rec := &events.Recorder{}
	_, err = job.Run(context.Background(), rec)
	require.ErrorIs(t, err, services.ErrNotFound)

	evs := rec.Events()
	require.NotEmpty(t, evs)
	lastEvent := evs[len(evs)-1]
	assert.Equal(t, events.TypeError, lastEvent.Type)
	assert.True(t, lastEvent.Data.(events.ErrorData).Fatal)
	assert.Equal(t, 1, terminalCount(rec))
	assert.Zero(t, r.Status().ActiveCount)
	assert.Equal(t, int64(1), r.Counters().Failed)
}

func TestVideoJobSkipsEmptySummarySelection(t *testing.T) {
	// Every fake comment is positive, so the negative strategy selects nothing.
	src := testsupport.NewFakeSource("dQw4w9WgXcQ", 1, 4)
	r := newRunner(t, src, &testsupport.FakeModel{})

	job, err := r.StartVideo(VideoRequest{VideoID: "dQw4w9WgXcQ", Strategy: "negative"})
	require.NoError(t, err)
	rec := &events.Recorder{}
	result, err := job.Run(context.Background(), rec)
	require.NoError(t, err)
	assert.Nil(t, result.Summary)

	warnings := rec.OfType(events.TypeError)
	require.Len(t, warnings, 1)
	assert.False(t, warnings[0].Data.(events.ErrorData).Fatal)
	assert.Contains(t, warnings[0].Data.(events.ErrorData).Message, "summary skipped")
	assert.Equal(t, events.TypeComplete, rec.Events()[len(rec.Events())-1].Type)
}

func TestVideoJobCancelled(t *testing.T) {
	src := testsupport.NewFakeSource("dQw4w9WgXcQ", 2, 2)
	src.Block = make(chan struct{})
	r := newRunner(t, src, &testsupport.FakeModel{})

	job, err := r.StartVideo(VideoRequest{VideoID: "dQw4w9WgXcQ"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	rec := &events.Recorder{}
	done := make(chan error, 1)
	go func() {
		_, err := job.Run(ctx, rec)
		done <- err
	}()
	require.Eventually(t, func() bool {
		return len(rec.OfType(events.TypeVideoInfo)) == 1
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not stop after cancel")
	}
	assert.Zero(t, terminalCount(rec), "cancelled jobs emit nothing further")
	assert.Zero(t, r.Status().ActiveCount)
}

func TestVideoJobRunsOnce(t *testing.T) {
	r := newRunner(t, testsupport.NewFakeSource("dQw4w9WgXcQ", 1, 1), &testsupport.FakeModel{})
	job, err := r.StartVideo(VideoRequest{VideoID: "dQw4w9WgXcQ"})
	require.NoError(t, err)

	_, err = job.Run(context.Background(), events.Discard)
	require.NoError(t, err)
	_, err = job.Run(context.Background(), events.Discard)
	require.Error(t, err)
}

func TestResetGate(t *testing.T) {
	r := newRunner(t, testsupport.NewFakeSource("x", 1, 1), &testsupport.FakeModel{})
	job, err := r.StartVideo(VideoRequest{VideoID: "dQw4w9WgXcQ"})
	require.NoError(t, err)
	r.ResetGate()
	assert.Zero(t, r.Status().ActiveCount)
	job.Release()
	assert.Zero(t, r.Status().ActiveCount)
}

func sampleComments(n int) []comments.Comment {
	list := make([]comments.Comment, n)
	for i := range list {
		list[i] = comments.Comment{
			ID:          fmt.Sprintf("c%d", i),
			TextDisplay: fmt.Sprintf("this is comment number %d", i),
			LikeCount:   i,
			PublishedAt: "2024-01-01T00:00:00Z",
		}
	}
	return list
}

func TestTranslateStandalone(t *testing.T) {
	model := &testsupport.FakeModel{}
	r := newRunner(t, testsupport.NewFakeSource("x", 1, 1), model)

	rec := &events.Recorder{}
	require.NoError(t, r.Translate(context.Background(), sampleComments(12), rec))

	complete := rec.OfType(events.TypeComplete)
	require.Len(t, complete, 1)
	totals := complete[0].Data.(TranslateTotals)
	assert.Equal(t, TranslateTotals{TotalTranslated: 12, SuccessCount: 12}, totals)
	assert.Len(t, rec.OfType(events.TypeTranslated), 2)
	assert.Zero(t, r.Status().ActiveCount, "translation is not gated")

	err := r.Translate(context.Background(), nil, rec)
	require.ErrorIs(t, err, services.ErrValidation)
}

func TestTranslateStandaloneFailure(t *testing.T) {
	model := &testsupport.FakeModel{}
	r := newRunner(t, testsupport.NewFakeSource("x", 1, 1), model)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &events.Recorder{}
	err := r.Translate(ctx, sampleComments(3), rec)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, terminalCount(rec))
}

func TestSummarizeStandalone(t *testing.T) {
	model := &testsupport.FakeModel{}
	r := newRunner(t, testsupport.NewFakeSource("x", 1, 1), model)

	report, err := r.Summarize(context.Background(), sampleComments(5), "")
	require.NoError(t, err)
	assert.Equal(t, summary.StrategyFull, report.Strategy)
	assert.Equal(t, 5, report.TotalComments)

	_, err = r.Summarize(context.Background(), nil, "full")
	require.ErrorIs(t, err, services.ErrValidation)

	_, err = r.Summarize(context.Background(), sampleComments(2), "loudest")
	require.ErrorIs(t, err, services.ErrValidation)

	// Neutral comments only; the positive strategy selects none.
	_, err = r.Summarize(context.Background(), sampleComments(2), "positive")
	require.ErrorIs(t, err, services.ErrValidation)
	assert.ErrorIs(t, err, summary.ErrNoComments)
}

func TestSummarizeUpstreamFailure(t *testing.T) {
	model := &testsupport.FakeModel{Err: errors.New("model offline")}
	r := newRunner(t, testsupport.NewFakeSource("x", 1, 1), model)

	_, err := r.Summarize(context.Background(), sampleComments(3), "full")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model offline")
}
