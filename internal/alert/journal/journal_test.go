package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/squawk/internal/alert"
	"github.com/zappabad/squawk/internal/news"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "alerts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalRecentNewestFirst(t *testing.T) {
	j := openTemp(t)
	base := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	tick := 0
	j.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, j.Notify(ctx, news.Event{
			ID: news.EventID(id), Ticker: "TSLA", Headline: "h " + id, Impact: news.ImpactHigh,
		}))
	}

	got, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, news.EventID("c"), got[0].EventID)
	assert.Equal(t, news.EventID("b"), got[1].EventID)
	assert.Equal(t, news.ImpactHigh, got[0].Impact)
	assert.Equal(t, "h c", got[0].Headline)
	assert.True(t, got[0].FiredAt.Equal(base.Add(3*time.Minute)))
}

func TestJournalRecentEmpty(t *testing.T) {
	j := openTemp(t)
	got, err := j.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = j.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestJournalReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.db")
	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Notify(context.Background(), news.Event{ID: "x", Ticker: "NVDA", Impact: news.ImpactHigh}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	got, err := j.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, news.EventID("x"), got[0].EventID)
}

func TestJournalAsEngineNotifier(t *testing.T) {
	j := openTemp(t)
	e := alert.NewEngine(nil, nil, j)
	e.SetEnabled(true)
	e.Observe([]news.Event{{ID: "h1", Ticker: "AAPL", Impact: news.ImpactHigh}})
	e.Observe([]news.Event{{ID: "h1", Ticker: "AAPL", Impact: news.ImpactHigh}})
	e.Close()

	got, err := j.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, news.EventID("h1"), got[0].EventID)

	// a new engine on the same journal starts from the null cursor
	assert.Equal(t, alert.Cursor{}, alert.NewCursorStore().Load())
}
