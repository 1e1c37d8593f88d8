package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/zappabad/squawk/internal/news"
	"github.com/zappabad/squawk/internal/session"
)

var snapshotJSON bool

// snapshotCmd fetches feed, portfolio and graph concurrently
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch the feed, portfolio and graph once and print a summary",
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().BoolVar(&snapshotJSON, "json", false, "Print the snapshot as JSON")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	sc := session.FromAppConfig(cfg)
	// one-shot: no journal, no speech
	sc.JournalPath = ""
	sc.AlertsEnabled = false
	sess, err := session.New(sc, logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	snap, err := sess.Snapshot(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if snapshotJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	high := 0
	for _, ev := range snap.News {
		if ev.Impact == news.ImpactHigh {
			high++
		}
	}
	fmt.Fprintf(out, "feed       %d events, %d high impact\n", len(snap.News), high)
	if len(snap.News) > 0 {
		head := snap.News[0]
		fmt.Fprintf(out, "head       [%s] %s %s\n", head.Impact, head.Ticker, head.Headline)
	}
	cash := snap.Portfolio.CashBalance.Round(2).InexactFloat64()
	fmt.Fprintf(out, "cash       $%s\n", humanize.FormatFloat("#,###.##", cash))
	fmt.Fprintf(out, "positions  %d, %d trades\n", len(snap.Portfolio.Positions()), len(snap.Portfolio.TradeHistory))
	fmt.Fprintf(out, "graph      %d nodes, %d links\n", len(snap.Graph.Nodes), len(snap.Graph.Links))
	return nil
}
