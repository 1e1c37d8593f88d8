package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/squawk/internal/chart"
	"github.com/zappabad/squawk/internal/news"
	"github.com/zappabad/squawk/tui/styles"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// SentimentPanel shows the aggregate sentiment of the most recent events,
// oldest on the left.
type SentimentPanel struct {
	window []chart.SentimentPoint
	n      int

	focused bool
	width   int
	height  int
}

// NewSentimentPanel creates a panel over the last n events.
func NewSentimentPanel(n int) *SentimentPanel {
	if n <= 0 {
		n = chart.DefaultWindow
	}
	return &SentimentPanel{n: n}
}

// Init initializes the panel.
func (p *SentimentPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *SentimentPanel) Update(msg tea.Msg) (*SentimentPanel, tea.Cmd) {
	return p, nil
}

// View renders the panel.
func (p *SentimentPanel) View() string {
	var content strings.Builder
	if len(p.window) == 0 {
		content.WriteString(styles.MutedStyle.Render("waiting for feed"))
	} else {
		content.WriteString(Sparkline(p.window))
		vals := chart.Sentiments(p.window)
		var sum float64
		for _, v := range vals {
			sum += v
		}
		avg := sum / float64(len(vals))
		content.WriteString("  ")
		content.WriteString(styles.SentimentStyle(avg).Render(fmt.Sprintf("avg %+.2f", avg)))
	}

	title := styles.RenderTitle(fmt.Sprintf("🌡 Sentiment (last %d)", p.n), p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())
	return styles.Panel(p.focused).Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// Sparkline renders one coloured glyph per sample on a fixed -1..1 scale.
func Sparkline(window []chart.SentimentPoint) string {
	levels := chart.Levels(chart.Sentiments(window), -1, 1, len(sparkRunes))
	var b strings.Builder
	for i, lv := range levels {
		b.WriteString(styles.SentimentStyle(window[i].Sentiment).Render(string(sparkRunes[lv])))
	}
	return b.String()
}

// SetFocus sets the focus state of the panel.
func (p *SentimentPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *SentimentPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetEvents recomputes the window from a newest-first feed.
func (p *SentimentPanel) SetEvents(events []news.Event) {
	p.window = chart.SentimentWindow(events, p.n)
}

// Window returns the samples on display, oldest first.
func (p *SentimentPanel) Window() []chart.SentimentPoint {
	return p.window
}
