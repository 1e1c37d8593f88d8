package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/squawk/internal/comments"
	"github.com/zappabad/squawk/internal/news"
)

func newServer(t *testing.T, h http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", time.Second), &hits
}

func TestLatestNews(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/latest-news", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		io.WriteString(w, `[
			{"id":"n2","ticker":"NVDA","headline":"Export curbs","source":"wire","timestamp":"2026-03-02T10:00:00","sentiment_score":-0.6,"market_impact":"High"},
			{"id":"n1","ticker":"AAPL","headline":"Event","source":"wire","timestamp":"2026-03-02T09:00:00","sentiment_score":0.1,"market_impact":"weird"}
		]`)
	})

	got, err := c.LatestNews(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, news.EventID("n2"), got[0].ID)
	assert.Equal(t, news.ImpactHigh, got[0].Impact)
	assert.Equal(t, news.ImpactUnknown, got[1].Impact)
	assert.Equal(t, -0.6, got[0].Sentiment)
}

func TestShockQuery(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/butterfly-effect/shock", r.URL.Path)
		assert.Equal(t, "TSMC", r.URL.Query().Get("node_id"))
		assert.Equal(t, "1", r.URL.Query().Get("magnitude"))
		io.WriteString(w, `{"TSMC":1.0,"AAPL":0.42}`)
	})

	got, err := c.Shock(context.Background(), "TSMC", 1.0)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"TSMC": 1.0, "AAPL": 0.42}, got)
}

func TestGraphSource(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/supply-chain-graph", r.URL.Path)
		io.WriteString(w, `{"nodes":[{"id":"AAPL","type":"company"},{"id":"TSMC"}],"links":[{"source":"TSMC","target":"AAPL","relationship":"supplies"}]}`)
	})

	m, err := GraphSource{Client: c, Path: "supply-chain-graph"}.Graph(context.Background())
	require.NoError(t, err)
	require.Len(t, m.Nodes, 2)
	assert.Equal(t, "company", m.Nodes[0].Type)
	assert.Equal(t, "supplies", m.Links[0].Relationship)
}

func TestPortfolioDecimalCash(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"cash_balance":100000.10,"holdings":{"TSLA":10,"AAPL":-5},
			"trade_history":[{"action":"BUY","ticker":"TSLA","shares":10,"price":100.0,"reason":"beat","timestamp":"2026-03-02T10:00:00"}]}`)
	})

	p, err := c.Portfolio(context.Background())
	require.NoError(t, err)
	assert.True(t, p.CashBalance.Equal(decimal.RequireFromString("100000.10")))
	assert.Equal(t, 10.0, p.Holdings["TSLA"])
	require.Len(t, p.TradeHistory, 1)
	assert.Equal(t, "BUY", p.TradeHistory[0].Action)
}

func TestPostComment(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/comments", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "n1", body["news_item_id"])
		assert.Equal(t, "Voted Bearish", body["content"])
		assert.Equal(t, "Bearish", body["sentiment_vote"])
		io.WriteString(w, `{"id":7,"news_item_id":"n1","user_id":"Trader_1","parent_id":null,"content":"Voted Bearish","upvotes":0,"sentiment_vote":"Bearish","timestamp":"2026-03-02T10:00:00"}`)
	})

	got, err := c.PostComment(context.Background(), comments.VoteComment("n1", "Trader_1", comments.VoteBearish))
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	require.NotNil(t, got.SentimentVote)
	assert.Equal(t, comments.VoteBearish, *got.SentimentVote)
	assert.Nil(t, got.ParentID)
}

func TestEmptyInputMakesNoRequest(t *testing.T) {
	c, hits := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})
	ctx := context.Background()

	_, err := c.PostComment(ctx, comments.NewComment{NewsItemID: "n1", Content: "   "})
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = c.Chat(ctx, "\t")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = c.Simulate(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = c.Comments(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = c.MarketData(ctx, " ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = c.Shock(ctx, "", 1)
	assert.ErrorIs(t, err, ErrEmptyInput)

	assert.Equal(t, int32(0), hits.Load())
}

func TestStatusError(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Portfolio(context.Background())
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "/portfolio", se.Path)
	assert.Equal(t, "boom", se.Body)
}

func TestDecodeError(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `not json`)
	})
	_, err := c.LatestNews(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode GET /latest-news")
}

func TestChatAndSimulate(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chat":
			var body struct{ Query string }
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "why is NVDA down", body.Query)
			io.WriteString(w, `{"answer":"export curbs","citations":[{"headline":"Export curbs","source":"wire","ticker":"NVDA"}]}`)
		case "/api/multiverse/simulate":
			assert.Equal(t, "rates rise 1%", r.URL.Query().Get("premise"))
			io.WriteString(w, `{"projected_impact":{"portfolio_value_change":"-2%"}}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	ans, err := c.Chat(ctx, "  why is NVDA down ")
	require.NoError(t, err)
	assert.Equal(t, "export curbs", ans.Answer)
	require.Len(t, ans.Citations, 1)
	assert.Equal(t, "NVDA", ans.Citations[0].Ticker)

	raw, err := c.Simulate(ctx, "rates rise 1%")
	require.NoError(t, err)
	assert.JSONEq(t, `{"projected_impact":{"portfolio_value_change":"-2%"}}`, string(raw))
}

func TestUpvoteAndMarketData(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/comments/12/upvote":
			io.WriteString(w, `{"status":"success"}`)
		case "/api/market-data/TSLA":
			io.WriteString(w, `[{"date":"2026-03-01","price":200.5},{"date":"2026-03-02","price":203}]`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	require.NoError(t, c.UpvoteComment(ctx, 12))
	pts, err := c.MarketData(ctx, "tsla")
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, "2026-03-02", pts[1].Date)
	assert.Equal(t, 203.0, pts[1].Price)
}
