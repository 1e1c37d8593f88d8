package panels

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/zappabad/squawk/internal/portfolio"
	"github.com/zappabad/squawk/tui/styles"
)

// recentTrades is the number of trades listed under the holdings.
const recentTrades = 5

// PortfolioPanel displays the simulated trader's cash, holdings and recent trades.
type PortfolioPanel struct {
	portfolio    portfolio.Portfolio
	updated      time.Time
	loaded       bool
	scrollOffset int
	focused      bool
	width        int
	height       int
}

// NewPortfolioPanel creates an empty portfolio panel.
func NewPortfolioPanel() *PortfolioPanel {
	return &PortfolioPanel{}
}

// Init initializes the panel.
func (p *PortfolioPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *PortfolioPanel) Update(msg tea.Msg) (*PortfolioPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, keyUp):
			if p.scrollOffset > 0 {
				p.scrollOffset--
			}
		case key.Matches(msg, keyDown):
			if p.scrollOffset < len(p.portfolio.Positions())-1 {
				p.scrollOffset++
			}
		}
	}
	return p, nil
}

// View renders the panel.
func (p *PortfolioPanel) View() string {
	var content strings.Builder

	if !p.loaded {
		content.WriteString(styles.MutedStyle.Render("Loading portfolio..."))
	} else {
		cash := p.portfolio.CashBalance.Round(2).InexactFloat64()
		content.WriteString(styles.LabelStyle.Render("Cash "))
		content.WriteString(styles.PriceStyle.Render("$" + humanize.FormatFloat("#,###.##", cash)))
		content.WriteString(styles.TimeStyle.Render("  updated " + humanize.Time(p.updated)))
		content.WriteString("\n\n")

		content.WriteString(styles.HeaderStyle.Render(fmt.Sprintf("%-8s %10s", "Ticker", "Shares")))
		content.WriteString("\n")
		positions := p.portfolio.Positions()
		if len(positions) == 0 {
			content.WriteString(styles.MutedStyle.Render("flat"))
			content.WriteString("\n")
		}
		rows := max(p.height-8-recentTrades, 1)
		start := clampIndex(p.scrollOffset, len(positions))
		for i := start; i < len(positions) && i < start+rows; i++ {
			h := positions[i]
			style := styles.UpStyle
			if h.Shares < 0 {
				style = styles.DownStyle
			}
			content.WriteString(fmt.Sprintf("%-8s %s\n", h.Ticker, style.Render(fmt.Sprintf("%10s", humanize.Commaf(h.Shares)))))
		}

		content.WriteString("\n")
		content.WriteString(styles.HeaderStyle.Render("Recent Trades"))
		for _, t := range p.portfolio.RecentTrades(recentTrades) {
			content.WriteString("\n")
			content.WriteString(p.renderTrade(t))
		}
	}

	title := styles.RenderTitle("💼 Portfolio", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())
	return styles.Panel(p.focused).Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *PortfolioPanel) renderTrade(t portfolio.Trade) string {
	action := styles.FlatStyle
	switch strings.ToUpper(t.Action) {
	case "BUY", "COVER":
		action = styles.UpStyle
	case "SELL", "SHORT":
		action = styles.DownStyle
	}
	prefix := fmt.Sprintf("%s %s ", action.Render(fmt.Sprintf("%-5s", t.Action)), styles.TickerStyle.Render(fmt.Sprintf("%-5s", t.Ticker)))
	room := p.width - 6 - lipgloss.Width(prefix)
	return prefix + styles.MutedStyle.Render(truncate(t.Reason, room))
}

// SetFocus sets the focus state of the panel.
func (p *PortfolioPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *PortfolioPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetPortfolio replaces the displayed snapshot.
func (p *PortfolioPanel) SetPortfolio(pf portfolio.Portfolio, at time.Time) {
	p.portfolio = pf
	p.updated = at
	p.loaded = true
}
