// Package graph holds the causal graph, the user's focus, and the impact
// overlay produced by shock requests.
//
// Every selection allocates a new token. A shock result is applied only when
// its token is still the current one, so a late answer for a node the user
// has clicked away from never reaches the overlay.
package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrNotLoaded is returned by Select before a graph has been loaded.
	ErrNotLoaded = errors.New("graph: not loaded")
	// ErrUnknownNode is returned by Select for an id that is not in the graph.
	ErrUnknownNode = errors.New("graph: unknown node")
	// ErrSuperseded is the error of a shock whose token was replaced before it ran.
	ErrSuperseded = errors.New("graph: shock superseded")
)

// Source fetches the graph and runs shock propagation remotely.
type Source interface {
	Graph(ctx context.Context) (Model, error)
	Shock(ctx context.Context, nodeID string, magnitude float64) (map[string]float64, error)
}

// Focuser receives the synchronous focus side effect of a selection.
type Focuser interface {
	Focus(nodeID string)
}

// FocusFunc adapts a function to Focuser.
type FocusFunc func(nodeID string)

// Focus calls f.
func (f FocusFunc) Focus(nodeID string) { f(nodeID) }

// Phase is the controller's coarse state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseShockPending
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseShockPending:
		return "shock pending"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// State is a copy of the controller state for rendering.
type State struct {
	Phase    Phase
	Model    Model
	Focused  string
	Token    Token
	Overlay  Overlay
	LoadErr  error
	ShockErr error
}

type request struct {
	token     Token
	nodeID    string
	magnitude float64
	cancel    context.CancelFunc
}

// Controller is the only writer of the graph model and its overlay.
type Controller struct {
	src   Source
	focus Focuser
	log   *zap.Logger

	// selectMu orders whole Select calls, focus side effect included.
	selectMu sync.Mutex

	mu       sync.Mutex
	phase    Phase
	model    Model
	loaded   bool
	loadErr  error
	focused  string
	token    Token
	pending  *request
	overlay  Overlay
	shockErr error
}

// NewController creates a controller in the idle phase.
// focus may be nil when nothing needs to react to selections.
func NewController(src Source, focus Focuser, log *zap.Logger) *Controller {
	if focus == nil {
		focus = FocusFunc(func(string) {})
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{src: src, focus: focus, log: log}
}

// SetFocuser replaces the focus side effect of Select. nil disables it.
func (c *Controller) SetFocuser(f Focuser) {
	if f == nil {
		f = FocusFunc(func(string) {})
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focus = f
}

// Load fetches the graph once. A failure leaves the controller in the failed
// phase and is not retried.
func (c *Controller) Load(ctx context.Context) (Model, error) {
	c.mu.Lock()
	c.phase = PhaseLoading
	c.loadErr = nil
	c.mu.Unlock()

	m, err := c.src.Graph(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.phase = PhaseFailed
		c.loadErr = err
		c.log.Error("graph load failed", zap.Error(err))
		return Model{}, fmt.Errorf("load graph: %w", err)
	}
	c.model = m
	c.loaded = true
	c.phase = PhaseReady
	c.log.Info("graph loaded", zap.Int("nodes", len(m.Nodes)), zap.Int("links", len(m.Links)))
	return m, nil
}

// Select focuses nodeID and allocates the token for its shock request.
// The focus side effect runs before Select returns. Any shock still in flight
// for an earlier token is cancelled. Concurrent selections are serialised, so
// the last focus always matches the current token.
func (c *Controller) Select(nodeID string, magnitude float64) (Token, error) {
	c.selectMu.Lock()
	defer c.selectMu.Unlock()

	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return 0, ErrNotLoaded
	}
	if !c.model.Has(nodeID) {
		c.mu.Unlock()
		return 0, fmt.Errorf("%w: %q", ErrUnknownNode, nodeID)
	}
	if c.pending != nil && c.pending.cancel != nil {
		c.pending.cancel()
	}
	c.token++
	token := c.token
	c.pending = &request{token: token, nodeID: nodeID, magnitude: magnitude}
	c.focused = nodeID
	c.phase = PhaseShockPending
	c.shockErr = nil
	focus := c.focus
	c.mu.Unlock()

	// outside mu: the focuser may read the controller
	focus.Focus(nodeID)

	c.log.Debug("shock requested",
		zap.String("node", nodeID),
		zap.Uint64("token", uint64(token)),
		zap.Float64("magnitude", magnitude),
	)
	return token, nil
}

// Shock runs the request allocated for token. It does not touch the overlay;
// pass the result to Apply. A token that is no longer current returns
// ErrSuperseded without a network call.
func (c *Controller) Shock(ctx context.Context, token Token) ShockResult {
	c.mu.Lock()
	req := c.pending
	if req == nil || req.token != token {
		c.mu.Unlock()
		return ShockResult{Token: token, Err: ErrSuperseded}
	}
	ctx, cancel := context.WithCancel(ctx)
	req.cancel = cancel
	nodeID, magnitude := req.nodeID, req.magnitude
	c.mu.Unlock()
	defer cancel()

	scores, err := c.src.Shock(ctx, nodeID, magnitude)
	return ShockResult{Token: token, NodeID: nodeID, Scores: scores, Err: err}
}

// Apply replaces the overlay with r when r carries the current token.
// It reports whether r was applied.
func (c *Controller) Apply(r ShockResult) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r.Token == 0 || r.Token != c.token {
		c.log.Debug("stale shock result dropped",
			zap.Uint64("token", uint64(r.Token)),
			zap.Uint64("current", uint64(c.token)),
		)
		return false
	}
	c.pending = nil
	c.phase = PhaseReady
	if r.Err != nil {
		// the overlay keeps the last good result
		c.shockErr = r.Err
		c.log.Warn("shock failed", zap.String("node", r.NodeID), zap.Error(r.Err))
		return false
	}
	scores := make(map[string]float64, len(r.Scores))
	for id, s := range r.Scores {
		scores[id] = s
	}
	c.overlay = Overlay{Token: r.Token, NodeID: r.NodeID, Scores: scores}
	c.shockErr = nil
	return true
}

// Levels returns the risk level of every node in the graph.
// Nodes missing from the overlay are baseline.
func (c *Controller) Levels() map[string]RiskLevel {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]RiskLevel, len(c.model.Nodes))
	for _, n := range c.model.Nodes {
		out[n.ID] = Classify(c.overlay.Score(n.ID))
	}
	return out
}

// Overlay returns a copy of the current overlay.
func (c *Controller) Overlay() Overlay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlay.clone()
}

// Snapshot returns a copy of the whole controller state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Phase:    c.phase,
		Model:    c.model,
		Focused:  c.focused,
		Token:    c.token,
		Overlay:  c.overlay.clone(),
		LoadErr:  c.loadErr,
		ShockErr: c.shockErr,
	}
}

// Close cancels any shock still in flight.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil && c.pending.cancel != nil {
		c.pending.cancel()
	}
}

func (o Overlay) clone() Overlay {
	if o.Scores == nil {
		return o
	}
	scores := make(map[string]float64, len(o.Scores))
	for id, s := range o.Scores {
		scores[id] = s
	}
	o.Scores = scores
	return o
}
