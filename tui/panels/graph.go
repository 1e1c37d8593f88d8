package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/squawk/internal/graph"
	"github.com/zappabad/squawk/tui/styles"
)

// GraphPanel lists the causal graph's nodes coloured by risk level. It is the
// focus side effect of a selection: Focus centres the viewport on the node.
type GraphPanel struct {
	state   graph.State
	levels  map[string]graph.RiskLevel
	cursor  int
	vp      viewport.Model
	spinner spinner.Model

	focused bool
	width   int
	height  int
}

var _ graph.Focuser = (*GraphPanel)(nil)

// NewGraphPanel creates an empty graph panel.
func NewGraphPanel() *GraphPanel {
	return &GraphPanel{
		vp:      viewport.New(0, 0),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init starts the loading spinner.
func (p *GraphPanel) Init() tea.Cmd {
	return p.spinner.Tick
}

// Update handles messages for the panel.
func (p *GraphPanel) Update(msg tea.Msg) (*GraphPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !p.Spinning() {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		nodes := p.state.Model.Nodes
		switch {
		case key.Matches(msg, keyUp):
			if p.cursor > 0 {
				p.cursor--
				p.follow()
			}
		case key.Matches(msg, keyDown):
			if p.cursor < len(nodes)-1 {
				p.cursor++
				p.follow()
			}
		case key.Matches(msg, keySelect):
			if p.cursor < len(nodes) {
				id := nodes[p.cursor].ID
				return p, func() tea.Msg { return NodeSelectedMsg{NodeID: id} }
			}
		}
	}
	return p, nil
}

// Focus moves the cursor to nodeID and centres the viewport on it.
func (p *GraphPanel) Focus(nodeID string) {
	for i, n := range p.state.Model.Nodes {
		if n.ID == nodeID {
			p.cursor = i
			p.state.Focused = nodeID
			break
		}
	}
	p.render()
	p.vp.SetYOffset(p.cursor - p.vp.Height/2)
}

// follow scrolls just enough to keep the cursor visible.
func (p *GraphPanel) follow() {
	p.render()
	switch {
	case p.cursor < p.vp.YOffset:
		p.vp.SetYOffset(p.cursor)
	case p.cursor >= p.vp.YOffset+p.vp.Height:
		p.vp.SetYOffset(p.cursor - p.vp.Height + 1)
	}
}

func (p *GraphPanel) render() {
	var b strings.Builder
	for i, n := range p.state.Model.Nodes {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p.renderNode(i, n))
	}
	p.vp.SetContent(b.String())
}

func (p *GraphPanel) renderNode(i int, n graph.Node) string {
	level := p.levels[n.ID]
	marker := "  "
	if n.ID == p.state.Focused {
		marker = styles.PinnedStyle.Render("◉ ")
	}

	name := styles.RiskStyle(level).Render(fmt.Sprintf("%-8s", n.ID))
	score := "     "
	if s, ok := p.state.Overlay.Scores[n.ID]; ok {
		score = styles.RiskStyle(level).Render(fmt.Sprintf("%5.2f", s))
	}
	neighbors := p.state.Model.Neighbors(n.ID)
	links := ""
	if len(neighbors) > 0 {
		links = styles.MutedStyle.Render(truncate(" ↔ "+strings.Join(neighbors, ","), p.vp.Width-16))
	}

	line := marker + name + " " + score + links
	if i == p.cursor && p.focused {
		line = styles.SelectedRowStyle.Render(line)
	}
	return line
}

// View renders the panel.
func (p *GraphPanel) View() string {
	var content string
	switch p.state.Phase {
	case graph.PhaseIdle, graph.PhaseLoading:
		content = p.spinner.View() + " loading graph..."
	case graph.PhaseFailed:
		content = styles.ErrorStyle.Render("graph unavailable: " + errString(p.state.LoadErr))
	default:
		content = p.vp.View()
	}

	status := ""
	switch {
	case p.state.Phase == graph.PhaseShockPending:
		status = p.spinner.View() + " shocking " + p.state.Focused
	case p.state.ShockErr != nil:
		status = styles.ErrorStyle.Render("shock failed: " + p.state.ShockErr.Error())
	}

	title := styles.RenderTitle("🦋 Impact Graph", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content, status)
	return styles.Panel(p.focused).Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *GraphPanel) SetFocus(focused bool) {
	if p.focused != focused {
		p.focused = focused
		p.render()
	}
}

// SetSize sets the panel dimensions.
func (p *GraphPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.vp.Width = max(width-6, 1)
	p.vp.Height = max(height-5, 1)
	p.render()
}

// SetState replaces the displayed controller state and risk levels.
func (p *GraphPanel) SetState(st graph.State, levels map[string]graph.RiskLevel) {
	focused := p.state.Focused
	p.state = st
	// a Focus call that ran before the snapshot wins
	if st.Focused == "" {
		p.state.Focused = focused
	}
	p.levels = levels
	p.cursor = clampIndex(p.cursor, len(st.Model.Nodes))
	p.render()
}

// Cursor returns the highlighted node id.
func (p *GraphPanel) Cursor() (string, bool) {
	nodes := p.state.Model.Nodes
	if p.cursor < len(nodes) {
		return nodes[p.cursor].ID, true
	}
	return "", false
}

// YOffset returns the viewport's first visible line.
func (p *GraphPanel) YOffset() int {
	return p.vp.YOffset
}

// Spinning reports whether the panel still needs spinner ticks.
func (p *GraphPanel) Spinning() bool {
	switch p.state.Phase {
	case graph.PhaseIdle, graph.PhaseLoading, graph.PhaseShockPending:
		return true
	}
	return false
}

// NodeSelectedMsg is sent when the user selects a graph node.
type NodeSelectedMsg struct {
	NodeID string
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
