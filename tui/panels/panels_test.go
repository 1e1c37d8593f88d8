package panels

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/squawk/internal/chart"
	"github.com/zappabad/squawk/internal/comments"
	commentsview "github.com/zappabad/squawk/internal/comments/view"
	"github.com/zappabad/squawk/internal/graph"
	"github.com/zappabad/squawk/internal/market"
	"github.com/zappabad/squawk/internal/news"
)

func press(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	return cmd()
}

func TestFeedPanelPinsWatchlist(t *testing.T) {
	p := NewFeedPanel([]string{"NVDA"})
	p.SetEvents([]news.Event{
		{ID: "3", Ticker: "AAPL"},
		{ID: "2", Ticker: "NVDA"},
		{ID: "1", Ticker: "TSLA"},
	})

	var ids []news.EventID
	for _, ev := range p.Events() {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []news.EventID{"2", "3", "1"}, ids)
}

func TestFeedPanelEnterOpensThread(t *testing.T) {
	p := NewFeedPanel(nil)
	p.SetSize(80, 20)
	p.SetFocus(true)
	p.SetEvents([]news.Event{{ID: "b"}, {ID: "a"}})

	p, _ = p.Update(press(tea.KeyDown))
	_, cmd := p.Update(press(tea.KeyEnter))

	msg, ok := run(t, cmd).(ThreadSelectedMsg)
	require.True(t, ok)
	assert.Equal(t, news.EventID("a"), msg.Event.ID)
}

func TestFeedPanelSelectionFollowsEvent(t *testing.T) {
	p := NewFeedPanel(nil)
	p.SetSize(80, 20)
	p.SetFocus(true)
	p.SetEvents([]news.Event{{ID: "b"}, {ID: "a"}})
	p, _ = p.Update(press(tea.KeyDown))

	// a new head pushes the selected event down one row
	p.SetEvents([]news.Event{{ID: "c"}, {ID: "b"}, {ID: "a"}})
	sel, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, news.EventID("a"), sel.ID)
}

func TestFeedPanelIgnoresKeysWithoutFocus(t *testing.T) {
	p := NewFeedPanel(nil)
	p.SetEvents([]news.Event{{ID: "b"}})
	_, cmd := p.Update(press(tea.KeyEnter))
	assert.Nil(t, cmd)
}

func nodes(n int) graph.Model {
	var m graph.Model
	for i := 0; i < n; i++ {
		m.Nodes = append(m.Nodes, graph.Node{ID: fmt.Sprintf("n%02d", i)})
	}
	return m
}

func TestGraphPanelFocusCentresNode(t *testing.T) {
	p := NewGraphPanel()
	p.SetSize(60, 15) // ten visible lines
	p.SetState(graph.State{Phase: graph.PhaseReady, Model: nodes(50)}, nil)

	p.Focus("n30")

	id, ok := p.Cursor()
	require.True(t, ok)
	assert.Equal(t, "n30", id)
	assert.Equal(t, 25, p.YOffset())
}

func TestGraphPanelEnterSelectsCursor(t *testing.T) {
	p := NewGraphPanel()
	p.SetSize(60, 15)
	p.SetFocus(true)
	p.SetState(graph.State{Phase: graph.PhaseReady, Model: nodes(3)}, nil)

	p, _ = p.Update(press(tea.KeyDown))
	_, cmd := p.Update(press(tea.KeyEnter))
	msg, ok := run(t, cmd).(NodeSelectedMsg)
	require.True(t, ok)
	assert.Equal(t, "n01", msg.NodeID)
}

func TestGraphPanelSpinsWhileLoadingOrPending(t *testing.T) {
	p := NewGraphPanel()
	assert.True(t, p.Spinning())
	p.SetState(graph.State{Phase: graph.PhaseReady}, nil)
	assert.False(t, p.Spinning())
	p.SetState(graph.State{Phase: graph.PhaseShockPending}, nil)
	assert.True(t, p.Spinning())
	p.SetState(graph.State{Phase: graph.PhaseFailed}, nil)
	assert.False(t, p.Spinning())
}

func TestShockPanelRanksOverlay(t *testing.T) {
	p := NewShockPanel()
	p.SetOverlay(graph.Overlay{Token: 1, NodeID: "TSMC", Scores: map[string]float64{
		"AAPL": 0.4, "TSMC": 1.0, "NVDA": 0.4, "MSFT": 0.05,
	}})

	var ids []string
	for _, imp := range p.Ranked() {
		ids = append(ids, imp.NodeID)
	}
	assert.Equal(t, []string{"TSMC", "AAPL", "NVDA", "MSFT"}, ids)

	p.SetSize(60, 12)
	assert.Contains(t, p.View(), "TSMC")
}

func TestChartPanelIgnoresOtherTicker(t *testing.T) {
	p := NewChartPanel()
	p.SetTicker("NVDA")

	events := []news.Event{{ID: "n1", Ticker: "NVDA", Timestamp: "2026-03-02T09:00:00", Sentiment: -0.6, Headline: "Export curbs"}}
	p.SetData(market.Series{Ticker: "AAPL", Points: []market.PricePoint{{Date: "2026-03-02", Price: 1}}}, events)
	assert.Empty(t, p.Points())

	p.SetData(market.Series{Ticker: "NVDA", Points: []market.PricePoint{
		{Date: "2026-03-01", Price: 120},
		{Date: "2026-03-02", Price: 110},
	}}, events)
	pts := p.Points()
	require.Len(t, pts, 2)
	assert.False(t, pts[0].HasEvent())
	assert.True(t, pts[1].HasEvent())

	p.SetSize(70, 20)
	assert.Contains(t, p.View(), "Export curbs")
}

func TestChartPanelArrowsCycleTicker(t *testing.T) {
	p := NewChartPanel()
	p.SetFocus(true)
	_, cmd := p.Update(press(tea.KeyLeft))
	assert.Equal(t, TickerCycleMsg{Step: -1}, run(t, cmd))
}

func TestSparklineOneGlyphPerSample(t *testing.T) {
	window := []chart.SentimentPoint{{Sentiment: -1}, {Sentiment: 0}, {Sentiment: 1}}
	assert.Contains(t, Sparkline(window), "▁")
	assert.Contains(t, Sparkline(window), "█")

	p := NewSentimentPanel(2)
	p.SetEvents([]news.Event{{ID: "c"}, {ID: "b"}, {ID: "a"}})
	assert.Len(t, p.Window(), 2)
}

func TestCommentsPanelDropsOtherThread(t *testing.T) {
	p := NewCommentsPanel()
	p.Open(news.Event{ID: "n1", Sentiment: 0.8})

	p.SetThread(commentsview.Thread{NewsID: "n2", Loaded: true, Comments: []comments.Comment{{ID: 9}}})
	_, ok := p.Selected()
	assert.False(t, ok)

	p.SetThread(commentsview.Thread{NewsID: "n1", Loaded: true, Comments: []comments.Comment{{ID: 7}}})
	c, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, int64(7), c.ID)
}

func TestCommentsPanelKeys(t *testing.T) {
	p := NewCommentsPanel()
	p.SetFocus(true)

	// nothing happens before a thread is open
	_, cmd := p.Update(press(tea.KeyCtrlE))
	if cmd != nil {
		_, isVote := cmd().(CommentVoteMsg)
		assert.False(t, isVote)
	}

	p.Open(news.Event{ID: "n1"})
	_, cmd = p.Update(press(tea.KeyCtrlE))
	assert.Equal(t, CommentVoteMsg{Vote: comments.VoteBearish}, run(t, cmd))

	p.SetThread(commentsview.Thread{NewsID: "n1", Loaded: true, Comments: []comments.Comment{{ID: 3}}})
	_, cmd = p.Update(press(tea.KeyCtrlU))
	assert.Equal(t, CommentUpvoteMsg{CommentID: 3}, run(t, cmd))
}

func TestCommentsPanelShowsDivergence(t *testing.T) {
	p := NewCommentsPanel()
	p.SetSize(80, 20)
	p.Open(news.Event{ID: "n1", Ticker: "NVDA", Sentiment: 0.8})
	vote := comments.VoteBearish
	p.SetThread(commentsview.Thread{NewsID: "n1", Loaded: true, Vote: &vote})
	assert.Contains(t, p.View(), "DIVERGENCE")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
	assert.Equal(t, "", truncate("abc", 0))
}
