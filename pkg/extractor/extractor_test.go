package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/llm-web-dataset/models"
	"github.com/dtnitsch/llm-web-dataset/pkg/chunker"
	"github.com/dtnitsch/llm-web-dataset/pkg/record"
	"github.com/dtnitsch/llm-web-dataset/pkg/strategy"
)

type fakeStrategy struct {
	name       models.StrategyName
	confidence float64
	text       func(url string) string
	err        error
	panics     bool
	calls      atomic.Int32
}

func (f *fakeStrategy) Name() models.StrategyName { return f.name }

func (f *fakeStrategy) Execute(_ context.Context, url string) (strategy.Result, error) {
	f.calls.Add(1)
	if f.panics {
		panic("boom")
	}
	if f.err != nil {
		return strategy.Result{}, f.err
	}
	text := ""
	if f.text != nil {
		text = f.text(url)
	}
	return strategy.Result{Text: text, Strategy: f.name, Confidence: f.confidence}, nil
}

func fixed(s string) func(string) string {
	return func(string) string { return s }
}

func prose(n int) string {
	var sb strings.Builder
	for i := 0; sb.Len() < n; i++ {
		fmt.Fprintf(&sb, "sentence number %d about tides. ", i)
	}
	return strings.TrimSpace(sb.String())
}

func newOrchestrator(t *testing.T, workers int, strategies ...strategy.Strategy) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(NewDispatcher(strategy.NewSet(strategies...), nil), Options{Workers: workers})
	require.NoError(t, err)
	return o
}

func TestDispatch_PrimarySucceeds(t *testing.T) {
	static := &fakeStrategy{name: models.StrategyStaticHTML, confidence: 0.9, text: fixed(prose(400))}
	dom := &fakeStrategy{name: models.StrategyDOMBased, confidence: 0.8, text: fixed(prose(400))}
	d := NewDispatcher(strategy.NewSet(static, dom), nil)

	out := d.Dispatch(context.Background(), "https://www.bbc.com/news/article")
	require.NoError(t, out.Err)
	assert.Equal(t, models.SiteNews, out.SiteType)
	assert.Equal(t, models.StrategyStaticHTML, out.Strategy)
	assert.Equal(t, 0.9, out.Confidence)
	assert.Equal(t, []models.StrategyName{models.StrategyStaticHTML}, out.Attempts)
	assert.Equal(t, int32(0), dom.calls.Load())
}

func TestDispatch_RetriesWithDOMBased(t *testing.T) {
	tests := []struct {
		name   string
		static *fakeStrategy
	}{
		{"error", &fakeStrategy{name: models.StrategyStaticHTML, err: errors.New("connection reset")}},
		{"short text", &fakeStrategy{name: models.StrategyStaticHTML, confidence: 0.9, text: fixed(prose(100))}},
		{"panic", &fakeStrategy{name: models.StrategyStaticHTML, panics: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dom := &fakeStrategy{name: models.StrategyDOMBased, confidence: 0.8, text: fixed(prose(400))}
			d := NewDispatcher(strategy.NewSet(tt.static, dom), nil)

			out := d.Dispatch(context.Background(), "https://news.example.com/story")
			require.NoError(t, out.Err)
			assert.Equal(t, models.StrategyDOMBased, out.Strategy)
			assert.Equal(t, 0.8, out.Confidence)
			assert.Equal(t, []models.StrategyName{models.StrategyStaticHTML, models.StrategyDOMBased}, out.Attempts)
			assert.Equal(t, int32(1), dom.calls.Load())
		})
	}
}

func TestDispatch_Failure(t *testing.T) {
	static := &fakeStrategy{name: models.StrategyStaticHTML, err: errors.New("timeout")}

	t.Run("retry too short", func(t *testing.T) {
		dom := &fakeStrategy{name: models.StrategyDOMBased, confidence: 0.8, text: fixed("tiny")}
		out := NewDispatcher(strategy.NewSet(static, dom), nil).Dispatch(context.Background(), "https://arxiv.org/abs/1")
		require.Error(t, out.Err)
		assert.ErrorIs(t, out.Err, ErrTextTooShort)
		assert.Len(t, out.Attempts, 2)
	})

	t.Run("retry errors", func(t *testing.T) {
		dom := &fakeStrategy{name: models.StrategyDOMBased, err: errors.New("refused")}
		out := NewDispatcher(strategy.NewSet(static, dom), nil).Dispatch(context.Background(), "https://arxiv.org/abs/1")
		require.Error(t, out.Err)
		assert.Contains(t, out.Err.Error(), "refused")
	})

	t.Run("cancelled context skips retry", func(t *testing.T) {
		dom := &fakeStrategy{name: models.StrategyDOMBased, text: fixed(prose(400))}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		out := NewDispatcher(strategy.NewSet(static, dom), nil).Dispatch(ctx, "https://arxiv.org/abs/1")
		assert.ErrorIs(t, out.Err, context.Canceled)
		assert.Equal(t, int32(0), dom.calls.Load())
	})
}

func TestRun_ChunksIntoRecords(t *testing.T) {
	text := prose(3000)
	static := &fakeStrategy{name: models.StrategyStaticHTML, confidence: 0.9, text: fixed(text)}
	o := newOrchestrator(t, 1, static)

	records := o.Run(context.Background(), "https://en.wikipedia.org/wiki/Tide")
	expected, err := chunker.Chunk(text, chunker.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, records, len(expected))

	for i, rec := range records {
		assert.Equal(t, expected[i], rec.Text)
		assert.Equal(t, "https://en.wikipedia.org/wiki/Tide", rec.SourceURL)
		assert.Equal(t, models.SiteNews, rec.SiteType)
		assert.Equal(t, models.StrategyStaticHTML, rec.ExtractionStrategy)
		assert.Equal(t, 0.9, rec.Confidence)
		assert.NoError(t, record.Validate(rec))
	}
}

func TestRun_FallbackGuarantee(t *testing.T) {
	tests := []struct {
		name       string
		strategies []strategy.Strategy
		url        string
		reason     string
	}{
		{
			name:       "everything fails",
			strategies: []strategy.Strategy{&fakeStrategy{name: models.StrategyDOMBased, err: errors.New("dns failure")}},
			url:        "https://www.reddit.com/r/golang",
			reason:     "dns failure",
		},
		{
			name:       "no strategies registered",
			strategies: nil,
			url:        "https://example.org/page",
			reason:     ErrTextTooShort.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOrchestrator(t, 1, tt.strategies...)
			res := o.RunBatchDetailed(context.Background(), []string{tt.url})
			require.Len(t, res, 1)
			require.Len(t, res[0].Records, 1)

			rec := res[0].Records[0]
			assert.Equal(t, models.StrategyFallback, rec.ExtractionStrategy)
			assert.Equal(t, record.FallbackConfidence, rec.Confidence)
			assert.Equal(t, tt.url, rec.SourceURL)
			assert.True(t, strings.HasPrefix(rec.Text, record.FallbackText))
			assert.True(t, res[0].FellBack())
			if tt.reason != "" {
				assert.Contains(t, rec.Text, tt.reason)
			}
			assert.NoError(t, record.Validate(rec))
		})
	}
}

func TestRun_NoChunksReason(t *testing.T) {
	// 300 runes passes the quality gate; with MinChars 500 no window qualifies.
	dom := &fakeStrategy{name: models.StrategyDOMBased, confidence: 0.8, text: fixed(prose(320))}
	o, err := NewOrchestrator(NewDispatcher(strategy.NewSet(dom), nil), Options{
		Chunk: chunker.Options{MaxChars: 1200, MinChars: 500, Overlap: 100},
	})
	require.NoError(t, err)

	res := o.RunBatchDetailed(context.Background(), []string{"https://www.quora.com/q"})
	require.Len(t, res[0].Records, 1)
	assert.Equal(t, "no valid chunks produced", res[0].FallbackReason)
	assert.Equal(t, record.FallbackText+" Reason: no valid chunks produced", res[0].Records[0].Text)
	assert.Equal(t, models.SiteForum, res[0].Records[0].SiteType)
}

func TestRunBatch_PreservesOrder(t *testing.T) {
	dom := &fakeStrategy{name: models.StrategyDOMBased, confidence: 0.8, text: func(url string) string {
		return url + " " + prose(400)
	}}

	urls := make([]string, 20)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://forum%d.reddit.com/t", i)
	}

	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			o := newOrchestrator(t, workers, dom)
			records := o.RunBatch(context.Background(), urls)
			require.Len(t, records, len(urls))
			for i, rec := range records {
				assert.Equal(t, urls[i], rec.SourceURL)
				assert.True(t, strings.HasPrefix(rec.Text, urls[i]))
			}
		})
	}
}

func TestReject(t *testing.T) {
	static := &fakeStrategy{name: models.StrategyStaticHTML, text: fixed(prose(400))}
	o := newOrchestrator(t, 1, static)

	res := o.Reject("htp:/broken", "invalid URL")
	assert.True(t, res.FellBack())
	assert.Equal(t, "invalid URL", res.FallbackReason)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "htp:/broken", res.Records[0].SourceURL)
	assert.Equal(t, models.SiteUnknown, res.Records[0].SiteType)
	assert.Equal(t, int32(0), static.calls.Load())
}

func TestRunBatch_Empty(t *testing.T) {
	o := newOrchestrator(t, 3)
	assert.Empty(t, o.RunBatch(context.Background(), nil))
}

func TestNewOrchestrator_InvalidChunkOptions(t *testing.T) {
	_, err := NewOrchestrator(NewDispatcher(strategy.NewSet(), nil), Options{
		Chunk: chunker.Options{MaxChars: 100, Overlap: 100},
	})
	assert.ErrorIs(t, err, chunker.ErrInvalidOptions)
}
