package graph

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource answers shocks only when the test releases the node.
type fakeSource struct {
	model   Model
	loadErr error

	mu      sync.Mutex
	release map[string]chan map[string]float64
	calls   []string
}

func newFakeSource(ids ...string) *fakeSource {
	f := &fakeSource{release: make(map[string]chan map[string]float64)}
	for _, id := range ids {
		f.model.Nodes = append(f.model.Nodes, Node{ID: id})
		f.release[id] = make(chan map[string]float64, 1)
	}
	if len(ids) > 1 {
		f.model.Links = append(f.model.Links, Link{Source: ids[0], Target: ids[1]})
	}
	return f
}

func (f *fakeSource) Graph(context.Context) (Model, error) {
	return f.model, f.loadErr
}

func (f *fakeSource) Shock(ctx context.Context, nodeID string, _ float64) (map[string]float64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, nodeID)
	ch := f.release[nodeID]
	f.mu.Unlock()
	select {
	case scores := <-ch:
		return scores, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func loaded(t *testing.T, src Source, focus Focuser) *Controller {
	t.Helper()
	c := NewController(src, focus, nil)
	_, err := c.Load(context.Background())
	require.NoError(t, err)
	return c
}

func TestClassifyThresholds(t *testing.T) {
	tests := []struct {
		score float64
		want  RiskLevel
	}{
		{0.0, RiskBaseline},
		{-0.3, RiskBaseline},
		{0.1, RiskBaseline},
		{0.1000001, RiskMedium},
		{0.5, RiskMedium},
		{0.5000001, RiskHigh},
		{1.0, RiskHigh},
		{3.2, RiskHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %v", tt.score)
	}
}

func TestLevelsIsTotal(t *testing.T) {
	src := newFakeSource("A", "B", "C")
	c := loaded(t, src, nil)

	tok, err := c.Select("A", 1.0)
	require.NoError(t, err)
	src.release["A"] <- map[string]float64{"A": 0.9, "B": 0.2, "ghost": 0.7}
	require.True(t, c.Apply(c.Shock(context.Background(), tok)))

	want := map[string]RiskLevel{"A": RiskHigh, "B": RiskMedium, "C": RiskBaseline}
	if diff := cmp.Diff(want, c.Levels()); diff != "" {
		t.Fatalf("levels mismatch (-want +got):\n%s", diff)
	}
}

func TestLevelsBeforeAnyShock(t *testing.T) {
	c := loaded(t, newFakeSource("A", "B"), nil)
	assert.Equal(t, map[string]RiskLevel{"A": RiskBaseline, "B": RiskBaseline}, c.Levels())
}

func TestSelectBeforeLoad(t *testing.T) {
	c := NewController(newFakeSource("A"), nil, nil)
	_, err := c.Select("A", 1.0)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestSelectUnknownNode(t *testing.T) {
	c := loaded(t, newFakeSource("A"), nil)
	_, err := c.Select("Z", 1.0)
	assert.ErrorIs(t, err, ErrUnknownNode)
	assert.Equal(t, PhaseReady, c.Snapshot().Phase)
}

func TestLoadFailure(t *testing.T) {
	src := newFakeSource("A")
	src.loadErr = errors.New("connection refused")
	c := NewController(src, nil, nil)

	_, err := c.Load(context.Background())
	require.Error(t, err)
	st := c.Snapshot()
	assert.Equal(t, PhaseFailed, st.Phase)
	assert.Error(t, st.LoadErr)

	_, err = c.Select("A", 1.0)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestSelectFocusesBeforeRequest(t *testing.T) {
	src := newFakeSource("A", "B")
	var trace []string
	c := loaded(t, src, FocusFunc(func(id string) { trace = append(trace, "focus "+id) }))

	tok, err := c.Select("B", 1.0)
	require.NoError(t, err)
	trace = append(trace, "selected")

	assert.Equal(t, []string{"focus B", "selected"}, trace)
	st := c.Snapshot()
	assert.Equal(t, "B", st.Focused)
	assert.Equal(t, tok, st.Token)
	assert.Equal(t, PhaseShockPending, st.Phase)
	assert.Empty(t, src.calls)
}

func TestConcurrentSelectsKeepFocusAndTokenTogether(t *testing.T) {
	ids := []string{"A", "B", "C", "D"}
	src := newFakeSource(ids...)

	var mu sync.Mutex
	var lastFocus string
	c := loaded(t, src, FocusFunc(func(id string) {
		mu.Lock()
		lastFocus = id
		mu.Unlock()
	}))

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := c.Select(id, 1.0)
			assert.NoError(t, err)
		}(ids[i%len(ids)])
	}
	wg.Wait()

	st := c.Snapshot()
	assert.Equal(t, Token(64), st.Token)
	assert.Equal(t, lastFocus, st.Focused)

	// the pending request for the current token targets the focused node
	src.release[st.Focused] <- map[string]float64{st.Focused: 1}
	r := c.Shock(context.Background(), st.Token)
	require.NoError(t, r.Err)
	assert.Equal(t, st.Focused, r.NodeID)
	assert.True(t, c.Apply(r))
}

func TestLastClickWins(t *testing.T) {
	src := newFakeSource("A", "B")
	c := loaded(t, src, nil)
	ctx := context.Background()

	tokA, err := c.Select("A", 1.0)
	require.NoError(t, err)
	resA := make(chan ShockResult, 1)
	go func() { resA <- c.Shock(ctx, tokA) }()

	// wait until A is in flight before clicking B
	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return len(src.calls) == 1
	}, time.Second, time.Millisecond)

	tokB, err := c.Select("B", 1.0)
	require.NoError(t, err)
	assert.Greater(t, tokB, tokA)

	// A's request was cancelled by the second click; its result must not apply.
	a := <-resA
	assert.False(t, c.Apply(a))
	assert.Empty(t, c.Overlay().Scores)

	// even a successful late answer for A is dropped
	assert.False(t, c.Apply(ShockResult{Token: tokA, NodeID: "A", Scores: map[string]float64{"A": 1}}))
	assert.Empty(t, c.Overlay().Scores)

	src.release["B"] <- map[string]float64{"B": 0.8, "A": 0.05}
	b := c.Shock(ctx, tokB)
	require.NoError(t, b.Err)
	assert.True(t, c.Apply(b))

	ov := c.Overlay()
	assert.Equal(t, "B", ov.NodeID)
	assert.Equal(t, tokB, ov.Token)
	assert.Equal(t, map[string]float64{"B": 0.8, "A": 0.05}, ov.Scores)
	assert.Equal(t, PhaseReady, c.Snapshot().Phase)
}

func TestShockForSupersededTokenSkipsRequest(t *testing.T) {
	src := newFakeSource("A", "B")
	c := loaded(t, src, nil)

	tokA, _ := c.Select("A", 1.0)
	_, _ = c.Select("B", 1.0)

	r := c.Shock(context.Background(), tokA)
	assert.ErrorIs(t, r.Err, ErrSuperseded)
	assert.Empty(t, src.calls)
}

func TestOverlayReplacedWholesale(t *testing.T) {
	src := newFakeSource("A", "B", "C")
	c := loaded(t, src, nil)
	ctx := context.Background()

	tok, _ := c.Select("A", 1.0)
	src.release["A"] <- map[string]float64{"A": 0.9, "C": 0.6}
	require.True(t, c.Apply(c.Shock(ctx, tok)))

	tok, _ = c.Select("B", 1.0)
	src.release["B"] <- map[string]float64{"B": 0.3}
	require.True(t, c.Apply(c.Shock(ctx, tok)))

	assert.Equal(t, map[string]float64{"B": 0.3}, c.Overlay().Scores)
	assert.Equal(t, RiskBaseline, c.Levels()["C"])
}

func TestShockErrorKeepsOverlay(t *testing.T) {
	src := newFakeSource("A", "B")
	c := loaded(t, src, nil)
	ctx := context.Background()

	tok, _ := c.Select("A", 1.0)
	src.release["A"] <- map[string]float64{"A": 0.9}
	require.True(t, c.Apply(c.Shock(ctx, tok)))

	tok, _ = c.Select("B", 1.0)
	assert.False(t, c.Apply(ShockResult{Token: tok, NodeID: "B", Err: errors.New("500")}))

	st := c.Snapshot()
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Error(t, st.ShockErr)
	assert.Equal(t, map[string]float64{"A": 0.9}, st.Overlay.Scores)
}

func TestOverlayCopyIsIsolated(t *testing.T) {
	src := newFakeSource("A")
	c := loaded(t, src, nil)
	tok, _ := c.Select("A", 1.0)
	src.release["A"] <- map[string]float64{"A": 0.9}
	require.True(t, c.Apply(c.Shock(context.Background(), tok)))

	ov := c.Overlay()
	ov.Scores["A"] = 0
	assert.Equal(t, 0.9, c.Overlay().Score("A"))
}

func TestRankedOrder(t *testing.T) {
	ov := Overlay{Scores: map[string]float64{"b": 0.4, "a": 0.4, "c": 0.9, "d": 0.01}}
	want := []Impact{{"c", 0.9}, {"a", 0.4}, {"b", 0.4}, {"d", 0.01}}
	assert.Equal(t, want, ov.Ranked())
}

func TestNeighbors(t *testing.T) {
	m := Model{
		Nodes: []Node{{ID: "AAPL"}, {ID: "TSMC"}, {ID: "Foxconn"}},
		Links: []Link{
			{Source: "AAPL", Target: "TSMC"},
			{Source: "Foxconn", Target: "AAPL"},
			{Source: "AAPL", Target: "TSMC"},
		},
	}
	assert.Equal(t, []string{"TSMC", "Foxconn"}, m.Neighbors("AAPL"))
	assert.Nil(t, m.Neighbors("nobody"))
}
