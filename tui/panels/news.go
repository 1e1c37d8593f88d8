package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/squawk/internal/news"
	"github.com/zappabad/squawk/tui/styles"
)

// FeedPanel displays the intelligence feed with watchlist tickers pinned first.
type FeedPanel struct {
	watchlist     []string
	events        []news.Event
	selectedIndex int
	scrollOffset  int
	loaded        bool
	loadErr       error
	focused       bool
	width         int
	height        int
}

// NewFeedPanel creates a feed panel pinning watchlist tickers.
func NewFeedPanel(watchlist []string) *FeedPanel {
	return &FeedPanel{watchlist: watchlist}
}

// Init initializes the panel.
func (p *FeedPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *FeedPanel) Update(msg tea.Msg) (*FeedPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, keyUp):
			if p.selectedIndex > 0 {
				p.selectedIndex--
				if p.selectedIndex < p.scrollOffset {
					p.scrollOffset = p.selectedIndex
				}
			}
		case key.Matches(msg, keyDown):
			if p.selectedIndex < len(p.events)-1 {
				p.selectedIndex++
				visible := p.visibleRows()
				if p.selectedIndex >= p.scrollOffset+visible {
					p.scrollOffset = p.selectedIndex - visible + 1
				}
			}
		case key.Matches(msg, keySelect):
			if ev, ok := p.Selected(); ok {
				return p, func() tea.Msg { return ThreadSelectedMsg{Event: ev} }
			}
		}
	}
	return p, nil
}

func (p *FeedPanel) visibleRows() int {
	// title, border and the scroll line
	n := p.height - 5
	if n < 1 {
		n = 1
	}
	return n
}

// View renders the panel.
func (p *FeedPanel) View() string {
	var content strings.Builder

	switch {
	case p.loadErr != nil && !p.loaded:
		content.WriteString(styles.ErrorStyle.Render("feed unavailable: " + p.loadErr.Error()))
	case len(p.events) == 0:
		content.WriteString(styles.MutedStyle.Render("No events yet"))
	default:
		visible := p.visibleRows()
		start := p.scrollOffset
		end := min(start+visible, len(p.events))

		for i := start; i < end; i++ {
			line := p.renderRow(p.events[i])
			if i == p.selectedIndex && p.focused {
				line = styles.SelectedRowStyle.Render(line)
			}
			content.WriteString(line)
			if i < end-1 {
				content.WriteString("\n")
			}
		}

		if len(p.events) > visible {
			content.WriteString("\n")
			content.WriteString(styles.MutedStyle.Render(fmt.Sprintf(" (%d/%d)", p.selectedIndex+1, len(p.events))))
		}
	}

	title := styles.RenderTitle("📰 Feed", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())
	return styles.Panel(p.focused).Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *FeedPanel) renderRow(ev news.Event) string {
	pin := " "
	if news.Pinned(ev, p.watchlist) {
		pin = styles.PinnedStyle.Render("★")
	}

	clock := "--:--"
	if t, ok := ev.Time(); ok {
		clock = t.Format("15:04")
	}

	prefix := fmt.Sprintf("%s %s %s %s %s ",
		pin,
		styles.TimeStyle.Render(clock),
		styles.TrendGlyph(ev.Trend()),
		styles.ImpactBadge(ev.Impact),
		styles.TickerStyle.Render(fmt.Sprintf("%-5s", ev.Ticker)),
	)
	room := p.width - 6 - lipgloss.Width(prefix)
	return prefix + styles.RowStyle.Render(truncate(ev.Headline, room))
}

// SetFocus sets the focus state of the panel.
func (p *FeedPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *FeedPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetEvents replaces the feed. events are newest first as served; the panel
// re-orders them with the watchlist pinned. The selection follows the event
// it was on when that event is still present.
func (p *FeedPanel) SetEvents(events []news.Event) {
	prev, hadPrev := p.Selected()
	p.events = news.PinnedFirst(events, p.watchlist)
	p.loaded = true
	p.loadErr = nil

	if hadPrev {
		for i, ev := range p.events {
			if ev.ID == prev.ID {
				p.selectedIndex = i
				return
			}
		}
	}
	p.selectedIndex = clampIndex(p.selectedIndex, len(p.events))
}

// SetError records an initial load failure. It is only shown until a batch arrives.
func (p *FeedPanel) SetError(err error) {
	p.loadErr = err
}

// Events returns the displayed order.
func (p *FeedPanel) Events() []news.Event {
	return p.events
}

// Selected returns the highlighted event.
func (p *FeedPanel) Selected() (news.Event, bool) {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.events) {
		return p.events[p.selectedIndex], true
	}
	return news.Event{}, false
}

// ThreadSelectedMsg is sent when the user opens the comments of an event.
type ThreadSelectedMsg struct {
	Event news.Event
}
