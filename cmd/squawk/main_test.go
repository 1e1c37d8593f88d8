package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/squawk/internal/alert/journal"
	"github.com/zappabad/squawk/internal/news"
)

func fakeAPI(t *testing.T) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/latest-news", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[
			{"id":"n2","ticker":"NVDA","headline":"Export curbs widen","timestamp":"2026-03-02T10:00:00","sentiment_score":-0.7,"market_impact":"High"},
			{"id":"n1","ticker":"MSFT","headline":"Cloud beat","timestamp":"2026-03-02T09:00:00","sentiment_score":0.4,"market_impact":"Low"}
		]`)
	})
	mux.HandleFunc("/api/portfolio", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"cash_balance":1234567.891,"holdings":{"NVDA":-10},"trade_history":[]}`)
	})
	mux.HandleFunc("/api/butterfly-effect/graph", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"nodes":[{"id":"NVDA"},{"id":"TSMC"},{"id":"AAPL"}],"links":[{"source":"TSMC","target":"NVDA"},{"source":"TSMC","target":"AAPL"}]}`)
	})
	mux.HandleFunc("/api/butterfly-effect/shock", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"TSMC":1.0,"NVDA":0.6,"AAPL":0.2}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestFeedCommand(t *testing.T) {
	out := execute(t, "feed", "--api", fakeAPI(t))

	assert.Contains(t, out, "Export curbs widen")
	assert.Contains(t, out, "Cloud beat")
	// the high impact head is what the squawk would speak
	assert.Contains(t, out, "!  ")
}

func TestShockCommand(t *testing.T) {
	out := execute(t, "shock", "TSMC", "--api", fakeAPI(t))

	lines := bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Contains(t, string(lines[1]), "TSMC")
	assert.Contains(t, string(lines[1]), "high")
	assert.Contains(t, string(lines[2]), "NVDA")
	assert.Contains(t, string(lines[3]), "medium")
}

func TestGraphCommand(t *testing.T) {
	out := execute(t, "graph", "--api", fakeAPI(t))
	assert.Contains(t, out, "3 nodes, 2 links")
	assert.Contains(t, out, "NVDA, AAPL")
}

func TestSnapshotCommand(t *testing.T) {
	out := execute(t, "snapshot", "--api", fakeAPI(t))
	assert.Contains(t, out, "2 events, 1 high impact")
	assert.Contains(t, out, "$1,234,567.89")
	assert.Contains(t, out, "3 nodes, 2 links")
}

func TestAlertsCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.db")
	j, err := journal.Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Notify(context.Background(), news.Event{
		ID: "n2", Ticker: "NVDA", Headline: "Export curbs widen", Impact: news.ImpactHigh,
	}))
	require.NoError(t, j.Close())

	t.Setenv("SQUAWK_JOURNAL", path)
	out := execute(t, "alerts")
	assert.Contains(t, out, "Export curbs widen")
	assert.Contains(t, out, "High")
}
