package panels

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/squawk/internal/client"
	"github.com/zappabad/squawk/tui/styles"
)

// AskPanel sends one-shot questions to the chat endpoint and what-if premises
// to the simulator, and shows the last answer.
type AskPanel struct {
	input   textinput.Model
	vp      viewport.Model
	pending bool

	focused bool
	width   int
	height  int
}

// NewAskPanel creates an empty ask panel.
func NewAskPanel() *AskPanel {
	input := textinput.New()
	input.Placeholder = "Ask the feed, or ctrl+s to simulate a premise..."
	input.CharLimit = 500

	vp := viewport.New(0, 0)
	vp.SetContent(styles.MutedStyle.Render("No question asked yet"))
	return &AskPanel{input: input, vp: vp}
}

// Init initializes the panel.
func (p *AskPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *AskPanel) Update(msg tea.Msg) (*AskPanel, tea.Cmd) {
	if !p.focused {
		return p, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keyAsk), key.Matches(msg, keySim):
			if p.pending {
				return p, nil
			}
			query := p.input.Value()
			sim := key.Matches(msg, keySim)
			return p, func() tea.Msg { return AskMsg{Query: query, Simulate: sim} }
		case key.Matches(msg, keyPrevRow):
			p.vp.LineUp(1)
			return p, nil
		case key.Matches(msg, keyNextRow):
			p.vp.LineDown(1)
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// View renders the panel.
func (p *AskPanel) View() string {
	inputStyle := styles.InputStyle
	if p.focused {
		inputStyle = styles.FocusedInputStyle
	}
	input := inputStyle.Width(max(p.width-8, 10)).Render(p.input.View())

	body := p.vp.View()
	if p.pending {
		body = styles.MutedStyle.Render("thinking...")
	}

	title := styles.RenderTitle("🔮 Ask", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, input, body)
	return styles.Panel(p.focused).Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *AskPanel) SetFocus(focused bool) {
	p.focused = focused
	if focused {
		p.input.Focus()
	} else {
		p.input.Blur()
	}
}

// SetSize sets the panel dimensions.
func (p *AskPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(width-12, 10)
	p.vp.Width = max(width-6, 1)
	p.vp.Height = max(height-7, 1)
}

// SetPending marks a request in flight.
func (p *AskPanel) SetPending(on bool) {
	p.pending = on
}

// Pending reports whether a request is in flight.
func (p *AskPanel) Pending() bool {
	return p.pending
}

// SetAnswer shows a chat answer and its citations.
func (p *AskPanel) SetAnswer(a client.ChatAnswer) {
	p.pending = false
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Width(p.vp.Width).Render(a.Answer))
	if len(a.Citations) > 0 {
		b.WriteString("\n\n")
		b.WriteString(styles.HeaderStyle.Render("Sources"))
		for _, c := range a.Citations {
			b.WriteString("\n")
			b.WriteString(fmt.Sprintf("%s %s %s",
				styles.TickerStyle.Render(c.Ticker),
				styles.RowStyle.Render(c.Headline),
				styles.MutedStyle.Render("("+c.Source+")"),
			))
		}
	}
	p.vp.SetContent(b.String())
	p.vp.GotoTop()
	p.input.Reset()
}

// SetSimulation shows the simulator's raw JSON, indented.
func (p *AskPanel) SetSimulation(raw json.RawMessage) {
	p.pending = false
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		buf.Reset()
		buf.Write(raw)
	}
	p.vp.SetContent(buf.String())
	p.vp.GotoTop()
	p.input.Reset()
}

// SetError shows a failed request. The input is kept for a retry.
func (p *AskPanel) SetError(err error) {
	p.pending = false
	p.vp.SetContent(styles.ErrorStyle.Render(err.Error()))
	p.vp.GotoTop()
}

// AskMsg asks the chat endpoint, or the simulator when Simulate is set.
type AskMsg struct {
	Query    string
	Simulate bool
}
