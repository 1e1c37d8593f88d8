package news

import (
	"encoding/json"
	"strings"
	"time"
)

// EventID uniquely identifies a feed event. It is stable across polls.
type EventID string

// Impact is the market impact classification attached to an event.
type Impact int

const (
	ImpactUnknown Impact = iota
	ImpactLow
	ImpactMedium
	ImpactHigh
)

// ParseImpact maps the wire value onto an Impact. Unrecognised values are ImpactUnknown.
func ParseImpact(s string) Impact {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return ImpactLow
	case "medium":
		return ImpactMedium
	case "high":
		return ImpactHigh
	default:
		return ImpactUnknown
	}
}

func (i Impact) String() string {
	switch i {
	case ImpactLow:
		return "Low"
	case ImpactMedium:
		return "Medium"
	case ImpactHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// MarshalJSON encodes the impact using its wire name.
func (i Impact) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

// UnmarshalJSON accepts the wire name or null.
func (i *Impact) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*i = ImpactUnknown
		return nil
	}
	*i = ParseImpact(*s)
	return nil
}

// Event is a single ticker-tagged headline from the intelligence feed.
// Events are immutable once received.
type Event struct {
	ID        EventID `json:"id"`
	Ticker    string  `json:"ticker"`
	Headline  string  `json:"headline"`
	Source    string  `json:"source"`
	Timestamp string  `json:"timestamp"` // ISO-8601, as served
	Sentiment float64 `json:"sentiment_score"`
	Impact    Impact  `json:"market_impact"`
	Summary   string  `json:"summary,omitempty"`
	Entities  string  `json:"entities,omitempty"`
}

// Time parses the event timestamp. The feed emits ISO-8601 with or without a zone.
func (e Event) Time() (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, e.Timestamp); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Trend is the coarse direction of an event's sentiment.
type Trend int

const (
	TrendFlat Trend = iota
	TrendUp
	TrendDown
)

// TrendThreshold is the absolute sentiment above which an event counts as directional.
const TrendThreshold = 0.3

// Trend classifies the sentiment score.
func (e Event) Trend() Trend {
	switch {
	case e.Sentiment > TrendThreshold:
		return TrendUp
	case e.Sentiment < -TrendThreshold:
		return TrendDown
	default:
		return TrendFlat
	}
}
