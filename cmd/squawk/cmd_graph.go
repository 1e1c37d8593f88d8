package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zappabad/squawk/internal/client"
	"github.com/zappabad/squawk/internal/graph"
)

var shockMagnitude float64

// graphCmd prints the causal graph
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the causal graph",
	RunE:  runGraph,
}

// shockCmd propagates a shock from one node
var shockCmd = &cobra.Command{
	Use:   "shock <node>",
	Short: "Shock a graph node and print the impacted nodes",
	Long: `Load the graph, select the node, and print the propagated impact scores
by descending score with their risk level.`,
	Args: cobra.ExactArgs(1),
	RunE: runShock,
}

func init() {
	shockCmd.Flags().Float64VarP(&shockMagnitude, "magnitude", "m", 0, "Shock magnitude (default from config)")
}

func newController() *graph.Controller {
	c := client.New(cfg.API.BaseURL, cfg.API.Timeout)
	return graph.NewController(client.GraphSource{Client: c, Path: cfg.Graph.Path}, nil, logger.Named("graph"))
}

func runGraph(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	ctrl := newController()
	defer ctrl.Close()
	m, err := ctrl.Load(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d nodes, %d links (%s)\n", len(m.Nodes), len(m.Links), cfg.Graph.Path)
	t := newTable("NODE", "TYPE", "LINKED")
	for _, n := range m.Nodes {
		t.Row(n.ID, n.Type, strings.Join(m.Neighbors(n.ID), ", "))
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return err
}

func runShock(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	magnitude := shockMagnitude
	if magnitude == 0 {
		magnitude = cfg.Graph.Magnitude
	}

	ctrl := newController()
	defer ctrl.Close()
	if _, err := ctrl.Load(ctx); err != nil {
		return err
	}
	token, err := ctrl.Select(args[0], magnitude)
	if err != nil {
		return err
	}
	result := ctrl.Shock(ctx, token)
	if !ctrl.Apply(result) {
		if result.Err != nil {
			return fmt.Errorf("shock %s: %w", args[0], result.Err)
		}
		return errors.New("shock result was superseded")
	}

	levels := ctrl.Levels()
	t := newTable("NODE", "SCORE", "RISK")
	for _, imp := range ctrl.Overlay().Ranked() {
		t.Row(imp.NodeID, fmt.Sprintf("%.3f", imp.Score), levels[imp.NodeID].String())
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return err
}
