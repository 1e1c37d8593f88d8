// Command squawk is a terminal dashboard over the market intelligence feed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zappabad/squawk/internal/config"
	"github.com/zappabad/squawk/internal/logging"
	"github.com/zappabad/squawk/internal/session"
	"github.com/zappabad/squawk/tui"
)

var (
	// Global flags
	configPath string
	apiURL     string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

// rootCmd runs the dashboard
var rootCmd = &cobra.Command{
	Use:   "squawk",
	Short: "squawk - market intelligence terminal",
	Long: `squawk polls the intelligence feed, speaks high-impact headlines as they
arrive, and lets you shock nodes of the supply chain graph to see their blast radius.

Run without arguments to start the dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if apiURL != "" {
			cfg.API.BaseURL = apiURL
		}

		// The dashboard owns the terminal, so it logs to a file
		sink := logging.SinkStderr
		if cmd == cmd.Root() {
			sink = logging.SinkFile
		}
		logger, err = logging.New(cfg.Logging, sink, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "squawk.yaml", "Config file (missing file means defaults)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (or set SQUAWK_API_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(shockCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(alertsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDashboard() error {
	sess, err := session.New(session.FromAppConfig(cfg), logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	logger.Info("dashboard starting", zap.String("api", cfg.API.BaseURL))
	sess.Start()

	p := tea.NewProgram(tui.NewModel(sess, logger.Named("tui")), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// commandContext is cancelled on SIGINT/SIGTERM and after the request timeout.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, cfg.API.Timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}
