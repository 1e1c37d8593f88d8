package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/squawk/internal/graph"
	"github.com/zappabad/squawk/internal/news"
)

// Color palette
var (
	// Primary colors
	PrimaryColor   = lipgloss.Color("#7C3AED") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	AccentColor    = lipgloss.Color("#F59E0B") // Amber

	// Direction colors
	UpColor      = lipgloss.Color("#10B981") // Green
	DownColor    = lipgloss.Color("#EF4444") // Red
	NeutralColor = lipgloss.Color("#6B7280") // Gray

	// Risk colors for the impact overlay
	RiskHighColor     = lipgloss.Color("#EF4444")
	RiskMediumColor   = lipgloss.Color("#F59E0B")
	RiskBaselineColor = lipgloss.Color("#3B82F6")

	// Background colors
	BackgroundColor      = lipgloss.Color("#1F2937")
	PanelBackgroundColor = lipgloss.Color("#111827")
	BorderColor          = lipgloss.Color("#374151")
	FocusBorderColor     = lipgloss.Color("#7C3AED")

	// Text colors
	TextColor          = lipgloss.Color("#F9FAFB")
	TextSecondaryColor = lipgloss.Color("#9CA3AF")
	TextMutedColor     = lipgloss.Color("#6B7280")
)

// Panel styles
var (
	// Base panel style
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	// Focused panel style
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(FocusBorderColor).
				Padding(0, 1)

	// Panel title style
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			Padding(0, 1)

	// Header row style
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextSecondaryColor)

	RowStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Background(lipgloss.Color("#374151"))

	MutedStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(DownColor)
)

// Text styles
var (
	UpStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(UpColor)

	DownStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(DownColor)

	FlatStyle = lipgloss.NewStyle().
			Foreground(NeutralColor)

	PriceStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	TimeStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	TickerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor)

	PinnedStyle = lipgloss.NewStyle().
			Foreground(AccentColor)

	// Divergence flag on the comments header
	DivergenceStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor).
			Background(DownColor).
			Padding(0, 1)
)

// Badge styles
var (
	badgeBase = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	ImpactHighBadge   = badgeBase.Foreground(TextColor).Background(RiskHighColor)
	ImpactMediumBadge = badgeBase.Foreground(PanelBackgroundColor).Background(RiskMediumColor)
	ImpactLowBadge    = badgeBase.Foreground(TextColor).Background(RiskBaselineColor)
	ImpactOtherBadge  = badgeBase.Foreground(TextSecondaryColor).Background(BorderColor)
)

// Input styles
var (
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	FocusedInputStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(FocusBorderColor).
				Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor)
)

// Chart styles
var (
	ChartLineStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	ChartAxisStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	ChartLabelStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(BackgroundColor).
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	StatusBarKeyStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	StatusBarDescStyle = lipgloss.NewStyle().
				Foreground(TextSecondaryColor)

	SquawkOnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PanelBackgroundColor).
			Background(UpColor).
			Padding(0, 1)

	SquawkOffStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Background(BorderColor).
			Padding(0, 1)
)

// RenderTitle renders a title bar for a panel.
func RenderTitle(title string, focused bool) string {
	style := TitleStyle
	if focused {
		style = style.Foreground(FocusBorderColor)
	}
	return style.Render(title)
}

// Panel picks the border style for a panel.
func Panel(focused bool) lipgloss.Style {
	if focused {
		return FocusedPanelStyle
	}
	return PanelStyle
}

// RiskColor maps a risk level onto its colour.
func RiskColor(level graph.RiskLevel) lipgloss.Color {
	switch level {
	case graph.RiskHigh:
		return RiskHighColor
	case graph.RiskMedium:
		return RiskMediumColor
	default:
		return RiskBaselineColor
	}
}

// RiskStyle is the foreground style of a node at level.
func RiskStyle(level graph.RiskLevel) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(RiskColor(level))
}

// ImpactBadge renders the impact classification of an event.
func ImpactBadge(i news.Impact) string {
	switch i {
	case news.ImpactHigh:
		return ImpactHighBadge.Render("HIGH")
	case news.ImpactMedium:
		return ImpactMediumBadge.Render("MED")
	case news.ImpactLow:
		return ImpactLowBadge.Render("LOW")
	default:
		return ImpactOtherBadge.Render("?")
	}
}

// TrendGlyph renders the direction of an event's sentiment.
func TrendGlyph(t news.Trend) string {
	switch t {
	case news.TrendUp:
		return UpStyle.Render("▲")
	case news.TrendDown:
		return DownStyle.Render("▼")
	default:
		return FlatStyle.Render("■")
	}
}

// SentimentStyle colours a sentiment value by sign.
func SentimentStyle(score float64) lipgloss.Style {
	switch {
	case score > 0:
		return UpStyle
	case score < 0:
		return DownStyle
	default:
		return FlatStyle
	}
}
