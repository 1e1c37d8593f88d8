package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/zappabad/squawk/internal/client"
	"github.com/zappabad/squawk/internal/graph"
	newsview "github.com/zappabad/squawk/internal/news/view"
	portfolioview "github.com/zappabad/squawk/internal/portfolio/view"
	"github.com/zappabad/squawk/internal/session"
	"github.com/zappabad/squawk/tui/panels"
	"github.com/zappabad/squawk/tui/styles"
)

// PanelFocus represents which panel is currently focused.
type PanelFocus int

const (
	FocusFeed PanelFocus = iota
	FocusChart
	FocusSentiment
	FocusGraph
	FocusShock
	FocusPortfolio
	FocusComments
	FocusAsk

	panelCount = 8
)

// Global bindings. Letter keys only apply outside the input panels.
var (
	keyQuit        = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
	keyQuitShort   = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	keySquawk      = key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "squawk"))
	keyRefresh     = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	keyNext        = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel"))
	keyPrev        = key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev panel"))
	keyCloseThread = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close thread"))
)

var functionKeys = []string{"f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8"}

// Model is the main TUI application model.
type Model struct {
	sess *session.Session
	log  *zap.Logger

	// Panels
	feedPanel      *panels.FeedPanel
	chartPanel     *panels.ChartPanel
	sentimentPanel *panels.SentimentPanel
	graphPanel     *panels.GraphPanel
	shockPanel     *panels.ShockPanel
	portfolioPanel *panels.PortfolioPanel
	commentsPanel  *panels.CommentsPanel
	askPanel       *panels.AskPanel

	// Focus management
	focusedPanel PanelFocus

	// Window dimensions
	width  int
	height int

	// Status
	statusMsg string
	ready     bool
}

// NewModel creates a new TUI model over a started session. The graph panel
// becomes the session's focus side effect.
func NewModel(sess *session.Session, log *zap.Logger) *Model {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Model{
		sess:           sess,
		log:            log,
		feedPanel:      panels.NewFeedPanel(sess.Watchlist()),
		chartPanel:     panels.NewChartPanel(),
		sentimentPanel: panels.NewSentimentPanel(0),
		graphPanel:     panels.NewGraphPanel(),
		shockPanel:     panels.NewShockPanel(),
		portfolioPanel: panels.NewPortfolioPanel(),
		commentsPanel:  panels.NewCommentsPanel(),
		askPanel:       panels.NewAskPanel(),
		focusedPanel:   FocusFeed,
	}
	sess.Graph.SetFocuser(m.graphPanel)

	if t, ok := sess.Market.Selected(); ok {
		m.chartPanel.SetTicker(t)
	}
	return m
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.feedPanel.Init(),
		m.chartPanel.Init(),
		m.sentimentPanel.Init(),
		m.graphPanel.Init(),
		m.shockPanel.Init(),
		m.portfolioPanel.Init(),
		m.commentsPanel.Init(),
		m.askPanel.Init(),
		m.listenFeedEvents(),
		m.listenPortfolioEvents(),
		m.listenCommentEvents(),
		m.listenMarketEvents(),
		m.loadGraph(),
		m.tickRefresh(),
	)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case spinner.TickMsg:
		// the spinner keeps ticking whichever panel has focus
		var cmd tea.Cmd
		m.graphPanel, cmd = m.graphPanel.Update(msg)
		return m, cmd

	case feedMsg:
		m.feedPanel.SetEvents(msg.Events)
		m.sentimentPanel.SetEvents(msg.Events)
		m.refreshChart()
		cmds = append(cmds, m.listenFeedEvents())

	case portfolioMsg:
		m.portfolioPanel.SetPortfolio(msg.Portfolio, msg.At)
		cmds = append(cmds, m.listenPortfolioEvents())

	case threadMsg:
		m.commentsPanel.SetThread(m.sess.Comments.Thread())
		cmds = append(cmds, m.listenCommentEvents())

	case seriesMsg:
		m.refreshChart()
		cmds = append(cmds, m.listenMarketEvents())

	case panels.TickerCycleMsg:
		ticker, err := m.sess.Market.Cycle(msg.Step)
		if err != nil {
			m.statusMsg = "no tickers to chart"
			break
		}
		m.chartPanel.SetTicker(ticker)
		m.refreshChart()

	case panels.ThreadSelectedMsg:
		m.commentsPanel.Open(msg.Event)
		m.sess.Comments.Select(msg.Event.ID)
		m.commentsPanel.SetThread(m.sess.Comments.Thread())
		m.setFocus(FocusComments)

	case panels.CommentPostMsg:
		cmds = append(cmds, m.postComment(msg.Content))

	case panels.CommentUpvoteMsg:
		cmds = append(cmds, m.upvoteComment(msg.CommentID))

	case panels.CommentVoteMsg:
		cmds = append(cmds, m.voteThread(msg))

	case commentResultMsg:
		m.commentsPanel.SetNotice(msg.notice)
		m.commentsPanel.SetThread(m.sess.Comments.Thread())

	case panels.NodeSelectedMsg:
		cmds = append(cmds, m.selectNode(msg.NodeID))

	case graphLoadedMsg:
		if msg.err != nil {
			m.log.Warn("graph load failed", zap.Error(msg.err))
			m.statusMsg = "graph: " + msg.err.Error()
		}
		m.refreshGraph()

	case shockMsg:
		if m.sess.Graph.Apply(msg.result) {
			m.statusMsg = fmt.Sprintf("shock %s applied", msg.result.NodeID)
		}
		m.refreshGraph()

	case panels.AskMsg:
		cmds = append(cmds, m.ask(msg))

	case askResultMsg:
		switch {
		case msg.err != nil:
			m.askPanel.SetError(msg.err)
		case msg.simulate:
			m.askPanel.SetSimulation(msg.raw)
		default:
			m.askPanel.SetAnswer(msg.answer)
		}

	case tickMsg:
		m.refreshStatus()
		cmds = append(cmds, m.tickRefresh())
	}

	// Update focused panel
	m.updateFocusedPanel(msg, &cmds)

	return m, tea.Batch(cmds...)
}

// handleGlobalKey runs the bindings that do not belong to a panel.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keyQuit):
		return tea.Quit, true
	case key.Matches(msg, keyNext):
		m.cycleFocus(1)
		return nil, true
	case key.Matches(msg, keyPrev):
		m.cycleFocus(-1)
		return nil, true
	}
	for i, k := range functionKeys {
		if msg.String() == k {
			m.setFocus(PanelFocus(i))
			return nil, true
		}
	}

	if m.inputFocused() {
		if key.Matches(msg, keyCloseThread) && m.focusedPanel == FocusComments {
			m.sess.Comments.Deselect()
			m.commentsPanel.Close()
			m.setFocus(FocusFeed)
			return nil, true
		}
		return nil, false
	}

	switch {
	case key.Matches(msg, keyQuitShort):
		return tea.Quit, true
	case key.Matches(msg, keySquawk):
		if m.sess.Alerts.Toggle() {
			m.statusMsg = "squawk on"
		} else {
			m.statusMsg = "squawk off"
		}
		return nil, true
	case key.Matches(msg, keyRefresh):
		m.sess.Feed.Refresh()
		m.sess.Portfolio.Refresh()
		m.sess.Market.Refresh()
		m.statusMsg = "refreshing"
		return nil, true
	}
	return nil, false
}

func (m *Model) inputFocused() bool {
	return m.focusedPanel == FocusComments || m.focusedPanel == FocusAsk
}

func (m *Model) updateFocusedPanel(msg tea.Msg, cmds *[]tea.Cmd) {
	var cmd tea.Cmd

	switch m.focusedPanel {
	case FocusFeed:
		m.feedPanel, cmd = m.feedPanel.Update(msg)
	case FocusChart:
		m.chartPanel, cmd = m.chartPanel.Update(msg)
	case FocusSentiment:
		m.sentimentPanel, cmd = m.sentimentPanel.Update(msg)
	case FocusGraph:
		m.graphPanel, cmd = m.graphPanel.Update(msg)
	case FocusShock:
		m.shockPanel, cmd = m.shockPanel.Update(msg)
	case FocusPortfolio:
		m.portfolioPanel, cmd = m.portfolioPanel.Update(msg)
	case FocusComments:
		m.commentsPanel, cmd = m.commentsPanel.Update(msg)
	case FocusAsk:
		m.askPanel, cmd = m.askPanel.Update(msg)
	}

	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

// View renders the UI.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	// Update focus states
	m.feedPanel.SetFocus(m.focusedPanel == FocusFeed)
	m.chartPanel.SetFocus(m.focusedPanel == FocusChart)
	m.sentimentPanel.SetFocus(m.focusedPanel == FocusSentiment)
	m.graphPanel.SetFocus(m.focusedPanel == FocusGraph)
	m.shockPanel.SetFocus(m.focusedPanel == FocusShock)
	m.portfolioPanel.SetFocus(m.focusedPanel == FocusPortfolio)
	m.commentsPanel.SetFocus(m.focusedPanel == FocusComments)
	m.askPanel.SetFocus(m.focusedPanel == FocusAsk)

	// Layout:
	// ┌──────────────┬──────────────┬──────────────┐
	// │              │    Chart     │    Graph     │
	// │     Feed     ├──────────────┤              │
	// │              │  Sentiment   ├──────────────┤
	// │              │              │    Shock     │
	// ├──────────────┼──────────────┼──────────────┤
	// │  Portfolio   │   Comments   │     Ask      │
	// └──────────────┴──────────────┴──────────────┘

	leftWidth := m.width * 2 / 5
	middleWidth := (m.width - leftWidth) / 2
	rightWidth := m.width - leftWidth - middleWidth

	topHeight := (m.height - 1) * 3 / 5
	bottomHeight := m.height - 1 - topHeight

	sentimentHeight := 5
	chartHeight := topHeight - sentimentHeight
	shockHeight := topHeight / 2
	graphHeight := topHeight - shockHeight

	m.feedPanel.SetSize(leftWidth, topHeight)
	m.chartPanel.SetSize(middleWidth, chartHeight)
	m.sentimentPanel.SetSize(middleWidth, sentimentHeight)
	m.graphPanel.SetSize(rightWidth, graphHeight)
	m.shockPanel.SetSize(rightWidth, shockHeight)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.feedPanel.View(),
		lipgloss.JoinVertical(lipgloss.Left, m.chartPanel.View(), m.sentimentPanel.View()),
		lipgloss.JoinVertical(lipgloss.Left, m.graphPanel.View(), m.shockPanel.View()),
	)

	m.portfolioPanel.SetSize(leftWidth, bottomHeight)
	m.commentsPanel.SetSize(middleWidth, bottomHeight)
	m.askPanel.SetSize(rightWidth, bottomHeight)

	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.portfolioPanel.View(),
		m.commentsPanel.View(),
		m.askPanel.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, topRow, bottomRow, m.renderStatusBar())
}

func (m *Model) renderStatusBar() string {
	squawk := styles.SquawkOffStyle.Render("SQUAWK OFF")
	if m.sess.Alerts.Enabled() {
		squawk = styles.SquawkOnStyle.Render("SQUAWK ON")
	}

	help := []string{
		styles.StatusBarKeyStyle.Render("F1-F8") + styles.StatusBarDescStyle.Render(" panels"),
		styles.StatusBarKeyStyle.Render("s") + styles.StatusBarDescStyle.Render(" squawk"),
		styles.StatusBarKeyStyle.Render("enter") + styles.StatusBarDescStyle.Render(" open/shock"),
		styles.StatusBarKeyStyle.Render("q") + styles.StatusBarDescStyle.Render(" quit"),
	}
	helpStr := lipgloss.JoinHorizontal(lipgloss.Center, help[0], " │ ", help[1], " │ ", help[2], " │ ", help[3])

	feed := m.sess.Feed.Status()
	stats := styles.StatusBarDescStyle.Render(fmt.Sprintf(" │ polls %d fail %d alerts %d",
		feed.Cycles, feed.Failures, m.sess.Alerts.Fired()))

	status := ""
	if m.statusMsg != "" {
		status = " │ " + m.statusMsg
	}

	return styles.StatusBarStyle.Width(m.width).Render(squawk + " " + helpStr + stats + status)
}

func (m *Model) setFocus(panel PanelFocus) {
	m.focusedPanel = panel
}

func (m *Model) cycleFocus(step int) {
	m.focusedPanel = PanelFocus(((int(m.focusedPanel)+step)%panelCount + panelCount) % panelCount)
}

// refreshChart re-merges the chart ticker's series with the current feed.
func (m *Model) refreshChart() {
	ticker := m.chartPanel.Ticker()
	if ticker == "" {
		return
	}
	if series, ok := m.sess.Market.Series(ticker); ok {
		m.chartPanel.SetData(series, m.sess.Feed.All())
	}
}

func (m *Model) refreshGraph() {
	m.graphPanel.SetState(m.sess.Graph.Snapshot(), m.sess.Graph.Levels())
	m.shockPanel.SetOverlay(m.sess.Graph.Overlay())
}

func (m *Model) refreshStatus() {
	st := m.sess.Feed.Status()
	if !st.Loaded && st.Err != nil {
		m.feedPanel.SetError(st.Err)
	}
}

// selectNode focuses the node now and sends its shock in the background.
func (m *Model) selectNode(nodeID string) tea.Cmd {
	token, err := m.sess.Graph.Select(nodeID, m.sess.Magnitude())
	if err != nil {
		m.log.Debug("select rejected", zap.String("node", nodeID), zap.Error(err))
		m.statusMsg = err.Error()
		return nil
	}
	m.refreshGraph()

	ctrl := m.sess.Graph
	timeout := m.sess.Config().Timeout
	shock := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return shockMsg{result: ctrl.Shock(ctx, token)}
	}
	return tea.Batch(shock, m.graphPanel.Init())
}

func (m *Model) loadGraph() tea.Cmd {
	ctrl := m.sess.Graph
	timeout := m.sess.Config().Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := ctrl.Load(ctx)
		return graphLoadedMsg{err: err}
	}
}

func (m *Model) postComment(content string) tea.Cmd {
	svc := m.sess.Comments
	timeout := m.sess.Config().Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := svc.Post(ctx, content); err != nil {
			return commentResultMsg{notice: "post failed: " + err.Error()}
		}
		return commentResultMsg{notice: "posted"}
	}
}

func (m *Model) upvoteComment(id int64) tea.Cmd {
	svc := m.sess.Comments
	timeout := m.sess.Config().Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := svc.Upvote(ctx, id); err != nil {
			return commentResultMsg{notice: "upvote failed: " + err.Error()}
		}
		return commentResultMsg{notice: "upvoted"}
	}
}

func (m *Model) voteThread(msg panels.CommentVoteMsg) tea.Cmd {
	svc := m.sess.Comments
	timeout := m.sess.Config().Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := svc.Vote(ctx, msg.Vote); err != nil {
			return commentResultMsg{notice: "vote failed: " + err.Error()}
		}
		return commentResultMsg{notice: "voted " + string(msg.Vote)}
	}
}

func (m *Model) ask(msg panels.AskMsg) tea.Cmd {
	c := m.sess.Client
	timeout := m.sess.Config().Timeout
	m.askPanel.SetPending(true)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if msg.Simulate {
			raw, err := c.Simulate(ctx, msg.Query)
			return askResultMsg{simulate: true, raw: raw, err: err}
		}
		ans, err := c.Chat(ctx, msg.Query)
		return askResultMsg{answer: ans, err: err}
	}
}

func (m *Model) listenFeedEvents() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.sess.Feed.Events()
		if !ok {
			return nil
		}
		return feedMsg(ev)
	}
}

func (m *Model) listenPortfolioEvents() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.sess.Portfolio.Events()
		if !ok {
			return nil
		}
		return portfolioMsg(ev)
	}
}

func (m *Model) listenCommentEvents() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-m.sess.Comments.Events(); !ok {
			return nil
		}
		return threadMsg{}
	}
}

func (m *Model) listenMarketEvents() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-m.sess.Market.Events(); !ok {
			return nil
		}
		return seriesMsg{}
	}
}

// tickMsg is sent periodically to refresh derived state.
type tickMsg struct{}

func (m *Model) tickRefresh() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg{}
	})
}

type (
	feedMsg      newsview.BatchEvent
	portfolioMsg portfolioview.UpdateEvent
	threadMsg    struct{}
	seriesMsg    struct{}

	graphLoadedMsg struct{ err error }
	shockMsg       struct{ result graph.ShockResult }

	commentResultMsg struct{ notice string }

	askResultMsg struct {
		simulate bool
		answer   client.ChatAnswer
		raw      json.RawMessage
		err      error
	}
)
