package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/zappabad/squawk/internal/alert/journal"
)

var alertsCount int

// alertsCmd lists the alert journal
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List the most recent journaled alerts",
	RunE:  runAlerts,
}

func init() {
	alertsCmd.Flags().IntVarP(&alertsCount, "count", "n", 20, "Number of entries")
}

func runAlerts(cmd *cobra.Command, args []string) error {
	if cfg.Alerts.Journal == "" {
		return errors.New("alert journal is disabled (set alerts.journal or SQUAWK_JOURNAL)")
	}
	ctx, cancel := commandContext()
	defer cancel()

	j, err := journal.Open(cfg.Alerts.Journal)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(ctx, alertsCount)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no alerts yet")
		return nil
	}

	t := newTable("FIRED", "TICKER", "IMPACT", "HEADLINE")
	for _, e := range entries {
		t.Row(humanize.Time(e.FiredAt), e.Ticker, e.Impact.String(), e.Headline)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return err
}
