package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/squawk/internal/graph"
	"github.com/zappabad/squawk/tui/styles"
)

// ShockPanel lists the nodes hit by the last applied shock, highest score first.
type ShockPanel struct {
	overlay      graph.Overlay
	ranked       []graph.Impact
	scrollOffset int
	focused      bool
	width        int
	height       int
}

// NewShockPanel creates an empty shock result panel.
func NewShockPanel() *ShockPanel {
	return &ShockPanel{}
}

// Init initializes the panel.
func (p *ShockPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *ShockPanel) Update(msg tea.Msg) (*ShockPanel, tea.Cmd) {
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
			if p.scrollOffset < len(p.ranked)-1 {
				p.scrollOffset++
			}
		}
	}
	return p, nil
}

// View renders the panel.
func (p *ShockPanel) View() string {
	var content strings.Builder

	if p.overlay.Token == 0 {
		content.WriteString(styles.MutedStyle.Render("Select a node to propagate a shock"))
	} else {
		content.WriteString(styles.HeaderStyle.Render(fmt.Sprintf("%-8s %6s  %s", "Node", "Score", "Risk")))
		barWidth := max(p.width-30, 4)
		rows := max(p.height-5, 1)
		start := clampIndex(p.scrollOffset, len(p.ranked))
		for i := start; i < len(p.ranked) && i < start+rows; i++ {
			imp := p.ranked[i]
			level := graph.Classify(imp.Score)
			style := styles.RiskStyle(level)
			fill := int(min(imp.Score, 1) * float64(barWidth))
			bar := strings.Repeat("█", max(fill, 0))
			content.WriteString("\n")
			content.WriteString(fmt.Sprintf("%-8s %s  %s",
				truncate(imp.NodeID, 8),
				style.Render(fmt.Sprintf("%6.2f", imp.Score)),
				style.Render(fmt.Sprintf("%-8s %s", level, bar)),
			))
		}
	}

	header := "💥 Shock"
	if p.overlay.NodeID != "" {
		header += " - " + p.overlay.NodeID
	}
	title := styles.RenderTitle(header, p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())
	return styles.Panel(p.focused).Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *ShockPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *ShockPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetOverlay replaces the displayed result. The same token is a no-op so the
// scroll position survives refreshes.
func (p *ShockPanel) SetOverlay(o graph.Overlay) {
	if o.Token == p.overlay.Token {
		return
	}
	p.overlay = o
	p.ranked = o.Ranked()
	p.scrollOffset = 0
}

// Ranked returns the rows on display.
func (p *ShockPanel) Ranked() []graph.Impact {
	return p.ranked
}
