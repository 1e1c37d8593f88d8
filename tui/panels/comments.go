package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/zappabad/squawk/internal/comments"
	commentsview "github.com/zappabad/squawk/internal/comments/view"
	"github.com/zappabad/squawk/internal/news"
	"github.com/zappabad/squawk/tui/styles"
)

// CommentsPanel shows the discussion thread of the selected feed event and
// takes new comments, upvotes and sentiment votes.
type CommentsPanel struct {
	event         news.Event
	hasEvent      bool
	thread        commentsview.Thread
	input         textinput.Model
	selectedIndex int
	notice        string

	focused bool
	width   int
	height  int
}

// NewCommentsPanel creates a panel with no thread open.
func NewCommentsPanel() *CommentsPanel {
	input := textinput.New()
	input.Placeholder = "Add a comment..."
	input.CharLimit = 280

	return &CommentsPanel{input: input}
}

// Init initializes the panel.
func (p *CommentsPanel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the panel.
func (p *CommentsPanel) Update(msg tea.Msg) (*CommentsPanel, tea.Cmd) {
	if !p.focused {
		return p, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keyPrevRow):
			if p.selectedIndex > 0 {
				p.selectedIndex--
			}
			return p, nil
		case key.Matches(msg, keyNextRow):
			if p.selectedIndex < len(p.thread.Comments)-1 {
				p.selectedIndex++
			}
			return p, nil
		}

		if !p.hasEvent {
			return p, nil
		}

		switch {
		case key.Matches(msg, keySelect):
			content := p.input.Value()
			p.input.Reset()
			return p, func() tea.Msg { return CommentPostMsg{Content: content} }
		case key.Matches(msg, keyUpvote):
			if c, ok := p.Selected(); ok {
				return p, func() tea.Msg { return CommentUpvoteMsg{CommentID: c.ID} }
			}
			return p, nil
		case key.Matches(msg, keyBullish):
			return p, func() tea.Msg { return CommentVoteMsg{Vote: comments.VoteBullish} }
		case key.Matches(msg, keyBearish):
			return p, func() tea.Msg { return CommentVoteMsg{Vote: comments.VoteBearish} }
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// View renders the panel.
func (p *CommentsPanel) View() string {
	var content strings.Builder
	innerWidth := p.width - 6

	if !p.hasEvent {
		content.WriteString(styles.MutedStyle.Render("Press enter on a feed event to open its thread"))
	} else {
		content.WriteString(styles.TickerStyle.Render(p.event.Ticker) + " ")
		content.WriteString(styles.RowStyle.Render(truncate(p.event.Headline, innerWidth-len(p.event.Ticker)-1)))
		content.WriteString("\n")
		if p.thread.Vote != nil {
			content.WriteString(styles.LabelStyle.Render("your call: " + string(*p.thread.Vote)))
			if comments.Divergent(p.event, *p.thread.Vote) {
				content.WriteString(" " + styles.DivergenceStyle.Render("DIVERGENCE"))
			}
			content.WriteString("\n")
		}

		switch {
		case !p.thread.Loaded:
			content.WriteString(styles.MutedStyle.Render("Loading thread..."))
		case len(p.thread.Comments) == 0:
			content.WriteString(styles.MutedStyle.Render("No comments yet"))
		default:
			rows := max(p.height-10, 1)
			start := 0
			if p.selectedIndex >= rows {
				start = p.selectedIndex - rows + 1
			}
			for i := start; i < len(p.thread.Comments) && i < start+rows; i++ {
				if i > start {
					content.WriteString("\n")
				}
				line := p.renderComment(p.thread.Comments[i], innerWidth)
				if i == p.selectedIndex {
					line = styles.SelectedRowStyle.Render(line)
				}
				content.WriteString(line)
			}
		}
	}

	inputStyle := styles.InputStyle
	if p.focused {
		inputStyle = styles.FocusedInputStyle
	}
	input := inputStyle.Width(max(innerWidth-2, 10)).Render(p.input.View())

	footer := styles.MutedStyle.Render(p.notice)
	if p.notice == "" {
		footer = styles.MutedStyle.Render("ctrl+u upvote · ctrl+b bullish · ctrl+e bearish")
	}

	title := styles.RenderTitle("💬 Comments", p.focused)
	body := lipgloss.JoinVertical(lipgloss.Left, title, content.String())
	bodyHeight := max(p.height-2-lipgloss.Height(input)-1, 1)
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)
	panel := lipgloss.JoinVertical(lipgloss.Left, body, input, footer)
	return styles.Panel(p.focused).Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *CommentsPanel) renderComment(c comments.Comment, width int) string {
	age := ""
	if t, ok := c.Time(); ok {
		age = humanize.Time(t)
	}
	meta := fmt.Sprintf("▲%d %s %s ", c.Upvotes, c.UserID, age)
	if c.SentimentVote != nil {
		style := styles.UpStyle
		if *c.SentimentVote == comments.VoteBearish {
			style = styles.DownStyle
		}
		meta = style.Render(string(*c.SentimentVote)) + " " + meta
	}
	meta = styles.TimeStyle.Render(meta)
	return meta + styles.RowStyle.Render(truncate(c.Content, width-lipgloss.Width(meta)))
}

// SetFocus sets the focus state of the panel.
func (p *CommentsPanel) SetFocus(focused bool) {
	p.focused = focused
	if focused {
		p.input.Focus()
	} else {
		p.input.Blur()
	}
}

// SetSize sets the panel dimensions.
func (p *CommentsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(width-12, 10)
}

// Open switches the panel to the thread of ev.
func (p *CommentsPanel) Open(ev news.Event) {
	if p.hasEvent && ev.ID == p.event.ID {
		return
	}
	p.event = ev
	p.hasEvent = true
	p.thread = commentsview.Thread{NewsID: ev.ID}
	p.selectedIndex = 0
	p.notice = ""
	p.input.Reset()
}

// Close drops the open thread.
func (p *CommentsPanel) Close() {
	p.event = news.Event{}
	p.hasEvent = false
	p.thread = commentsview.Thread{}
	p.selectedIndex = 0
	p.notice = ""
	p.input.Reset()
}

// SetThread replaces the displayed comments. A thread of another event is ignored.
func (p *CommentsPanel) SetThread(t commentsview.Thread) {
	if !p.hasEvent || t.NewsID != p.event.ID {
		return
	}
	p.thread = t
	p.selectedIndex = clampIndex(p.selectedIndex, len(t.Comments))
}

// SetNotice shows a one-line result under the input.
func (p *CommentsPanel) SetNotice(s string) {
	p.notice = s
}

// Selected returns the highlighted comment.
func (p *CommentsPanel) Selected() (comments.Comment, bool) {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.thread.Comments) {
		return p.thread.Comments[p.selectedIndex], true
	}
	return comments.Comment{}, false
}

// Event returns the event whose thread is open.
func (p *CommentsPanel) Event() (news.Event, bool) {
	return p.event, p.hasEvent
}

// CommentPostMsg asks to post a comment on the open thread.
type CommentPostMsg struct {
	Content string
}

// CommentUpvoteMsg asks to upvote a comment.
type CommentUpvoteMsg struct {
	CommentID int64
}

// CommentVoteMsg asks to record a sentiment vote on the open thread.
type CommentVoteMsg struct {
	Vote comments.Vote
}
