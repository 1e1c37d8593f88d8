package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Trade is one entry of the simulated trader's history.
type Trade struct {
	Action    string          `json:"action"`
	Ticker    string          `json:"ticker"`
	Shares    int64           `json:"shares,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Reason    string          `json:"reason"`
	Timestamp string          `json:"timestamp"`
}

// Portfolio is the simulated trader's account as served, trade history newest first.
type Portfolio struct {
	CashBalance  decimal.Decimal    `json:"cash_balance"`
	Holdings     map[string]float64 `json:"holdings"`
	TradeHistory []Trade            `json:"trade_history"`
	LastUpdated  string             `json:"last_updated,omitempty"`
}

// RecentTrades returns up to n trades, newest first.
func (p Portfolio) RecentTrades(n int) []Trade {
	if n <= 0 || len(p.TradeHistory) == 0 {
		return nil
	}
	if n > len(p.TradeHistory) {
		n = len(p.TradeHistory)
	}
	out := make([]Trade, n)
	copy(out, p.TradeHistory[:n])
	return out
}

// Holding is a single position.
type Holding struct {
	Ticker string
	Shares float64
}

// Positions returns the non-zero holdings sorted by ticker.
func (p Portfolio) Positions() []Holding {
	out := make([]Holding, 0, len(p.Holdings))
	for t, s := range p.Holdings {
		if s == 0 {
			continue
		}
		out = append(out, Holding{Ticker: t, Shares: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// Clone returns a deep copy of p.
func (p Portfolio) Clone() Portfolio {
	c := p
	if p.Holdings != nil {
		c.Holdings = make(map[string]float64, len(p.Holdings))
		for k, v := range p.Holdings {
			c.Holdings[k] = v
		}
	}
	c.TradeHistory = append([]Trade(nil), p.TradeHistory...)
	return c
}
