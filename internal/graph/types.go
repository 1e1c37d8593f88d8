package graph

import "sort"

// Node is a graph vertex. Only ID is required; the other fields are optional
// decorations some graph sources attach.
type Node struct {
	ID               string  `json:"id"`
	Type             string  `json:"type,omitempty"`
	Group            int     `json:"group,omitempty"`
	Sentiment        float64 `json:"sentiment,omitempty"`
	PropagatedImpact float64 `json:"propagated_impact,omitempty"`
}

// Link is a directed edge between two node ids.
type Link struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	Relationship string  `json:"relationship,omitempty"`
	Weight       float64 `json:"weight,omitempty"`
}

// Model is the graph topology. It is immutable after load.
type Model struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Has reports whether id is a node of m.
func (m Model) Has(id string) bool {
	for _, n := range m.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// Neighbors returns the ids linked to or from id, in link order, without duplicates.
func (m Model) Neighbors(id string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, l := range m.Links {
		var other string
		switch id {
		case l.Source:
			other = l.Target
		case l.Target:
			other = l.Source
		default:
			continue
		}
		if !seen[other] {
			seen[other] = true
			out = append(out, other)
		}
	}
	return out
}

// Token identifies one shock request. Tokens increase with every selection.
type Token uint64

// Overlay is the impact score per node id from the latest applied shock.
// It is replaced wholesale, never merged.
type Overlay struct {
	Token  Token
	NodeID string
	Scores map[string]float64
}

// Score returns the overlay score for id, 0 when absent.
func (o Overlay) Score(id string) float64 {
	return o.Scores[id]
}

// Impact is one entry of a shock result.
type Impact struct {
	NodeID string
	Score  float64
}

// Ranked lists the overlay scores by descending score, ties by node id.
func (o Overlay) Ranked() []Impact {
	out := make([]Impact, 0, len(o.Scores))
	for id, s := range o.Scores {
		out = append(out, Impact{NodeID: id, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].NodeID < out[j].NodeID
	})
	return out
}

// RiskLevel is the colour bucket of a node.
type RiskLevel int

const (
	RiskBaseline RiskLevel = iota
	RiskMedium
	RiskHigh
)

func (r RiskLevel) String() string {
	switch r {
	case RiskHigh:
		return "high"
	case RiskMedium:
		return "medium"
	default:
		return "baseline"
	}
}

// Classify maps a score onto a risk level:
// above 0.5 is high, above 0.1 is medium, anything else is baseline.
func Classify(score float64) RiskLevel {
	switch {
	case score > 0.5:
		return RiskHigh
	case score > 0.1:
		return RiskMedium
	default:
		return RiskBaseline
	}
}

// ShockResult is the outcome of one shock request.
type ShockResult struct {
	Token  Token
	NodeID string
	Scores map[string]float64
	Err    error
}
