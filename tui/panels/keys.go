package panels

import "github.com/charmbracelet/bubbles/key"

// Shared navigation bindings.
var (
	keyUp     = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	keyDown   = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	keyLeft   = key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev"))
	keyRight  = key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next"))
	keySelect = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select"))

	// Input panels cannot use letters, so their actions sit on ctrl chords.
	keyUpvote  = key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "upvote"))
	keyBullish = key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "bullish"))
	keyBearish = key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "bearish"))
	keyPrevRow = key.NewBinding(key.WithKeys("ctrl+p", "up"), key.WithHelp("ctrl+p", "prev comment"))
	keyNextRow = key.NewBinding(key.WithKeys("ctrl+n", "down"), key.WithHelp("ctrl+n", "next comment"))
	keyAsk     = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ask"))
	keySim     = key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "simulate"))
)

// truncate shortens s to width runes, marking the cut.
func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 {
		return ""
	}
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

// clampIndex keeps i inside [0, n).
func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
