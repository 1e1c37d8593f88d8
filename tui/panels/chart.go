package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/squawk/internal/chart"
	"github.com/zappabad/squawk/internal/market"
	"github.com/zappabad/squawk/internal/news"
	"github.com/zappabad/squawk/tui/styles"
)

// ChartPanel plots the selected ticker's price series with the day's news
// marked on it.
type ChartPanel struct {
	ticker string
	series market.Series
	points []chart.MergedPoint

	focused bool
	width   int
	height  int
}

// NewChartPanel creates an empty price chart.
func NewChartPanel() *ChartPanel {
	return &ChartPanel{}
}

// Init initializes the panel.
func (p *ChartPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *ChartPanel) Update(msg tea.Msg) (*ChartPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, keyLeft):
			return p, func() tea.Msg { return TickerCycleMsg{Step: -1} }
		case key.Matches(msg, keyRight):
			return p, func() tea.Msg { return TickerCycleMsg{Step: 1} }
		}
	}
	return p, nil
}

// View renders the panel.
func (p *ChartPanel) View() string {
	name := "No ticker"
	if p.ticker != "" {
		name = p.ticker
	}

	var content strings.Builder
	chartHeight := max(p.height-7, 3)

	if len(p.points) == 0 {
		content.WriteString(styles.MutedStyle.Render("No price data yet..."))
	} else {
		content.WriteString(p.renderChart(p.width-6, chartHeight))
		content.WriteString("\n")
		content.WriteString(p.renderLegend(p.width - 6))
	}

	header := fmt.Sprintf("📈 %s", name)
	if last, ok := p.series.Last(); ok {
		change := p.series.Change()
		header += " " + styles.PriceStyle.Render(fmt.Sprintf("%.2f", last.Price)) +
			" " + styles.SentimentStyle(change).Render(fmt.Sprintf("%+.2f%%", change*100))
	}

	title := styles.RenderTitle(header, p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())
	return styles.Panel(p.focused).Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *ChartPanel) renderChart(width, height int) string {
	// 9 chars for the price axis, 1 for the separator
	plotWidth := max(width-10, 5)

	points := p.points
	if len(points) > plotWidth {
		points = points[len(points)-plotWidth:]
	}

	prices := chart.Prices(points)
	lo, hi, _ := chart.Bounds(prices)
	levels := chart.Levels(prices, lo, hi, height)

	var result strings.Builder
	for row := 0; row < height; row++ {
		level := height - 1 - row
		label := hi
		if height > 1 {
			label = lo + (hi-lo)*float64(level)/float64(height-1)
		}
		result.WriteString(styles.ChartAxisStyle.Render(fmt.Sprintf("%8.2f │", label)))

		for i, pt := range points {
			if levels[i] != level {
				result.WriteString(" ")
				continue
			}
			if pt.HasEvent() {
				result.WriteString(styles.SentimentStyle(*pt.Sentiment).Render("◆"))
			} else {
				result.WriteString(styles.ChartLineStyle.Render("•"))
			}
		}
		result.WriteString("\n")
	}

	result.WriteString(styles.ChartAxisStyle.Render("─────────┴" + strings.Repeat("─", len(points))))
	result.WriteString("\n")

	first, last := points[0].Date, points[len(points)-1].Date
	gap := max(len(points)-len(first)-len(last), 1)
	result.WriteString(styles.ChartLabelStyle.Render("          " + first + strings.Repeat(" ", gap) + last))
	return result.String()
}

// renderLegend shows the most recent marked headline.
func (p *ChartPanel) renderLegend(width int) string {
	for i := len(p.points) - 1; i >= 0; i-- {
		pt := p.points[i]
		if !pt.HasEvent() {
			continue
		}
		mark := styles.SentimentStyle(*pt.Sentiment).Render(fmt.Sprintf("◆ %+.2f", *pt.Sentiment))
		text := fmt.Sprintf(" %s %s", pt.Date, *pt.Headline)
		return mark + styles.RowStyle.Render(truncate(text, width-lipgloss.Width(mark)))
	}
	return styles.MutedStyle.Render("no news on the plotted days")
}

// SetFocus sets the focus state of the panel.
func (p *ChartPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *ChartPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetTicker switches the chart to ticker, clearing the old series.
func (p *ChartPanel) SetTicker(ticker string) {
	if ticker == p.ticker {
		return
	}
	p.ticker = ticker
	p.series = market.Series{}
	p.points = nil
}

// SetData merges a price series with the feed. A series for a ticker other
// than the current one is ignored.
func (p *ChartPanel) SetData(series market.Series, events []news.Event) {
	if series.Ticker != p.ticker {
		return
	}
	p.series = series
	p.points = chart.MergeSeries(events, series.Points, series.Ticker)
}

// Points returns the merged points on display.
func (p *ChartPanel) Points() []chart.MergedPoint {
	return p.points
}

// Ticker returns the current ticker.
func (p *ChartPanel) Ticker() string {
	return p.ticker
}

// TickerCycleMsg asks for the previous or next chart ticker.
type TickerCycleMsg struct {
	Step int
}
