package client

import (
	"context"

	"github.com/zappabad/squawk/internal/graph"
)

var _ graph.Source = GraphSource{}

// GraphSource binds a Client to one graph path.
type GraphSource struct {
	Client *Client
	Path   string
}

// Graph fetches the graph at s.Path.
func (s GraphSource) Graph(ctx context.Context) (graph.Model, error) {
	return s.Client.Graph(ctx, s.Path)
}

// Shock forwards to Client.Shock.
func (s GraphSource) Shock(ctx context.Context, nodeID string, magnitude float64) (map[string]float64, error) {
	return s.Client.Shock(ctx, nodeID, magnitude)
}
