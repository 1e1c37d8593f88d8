package market

import "strings"

// PricePoint is one closing price of a ticker's daily series.
type PricePoint struct {
	// Date is the trading day as served, YYYY-MM-DD.
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// Series is the price history of a single ticker, oldest first.
type Series struct {
	Ticker string
	Points []PricePoint
}

// Last returns the most recent point of s.
func (s Series) Last() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Change returns the relative change between the first and last price.
func (s Series) Change() float64 {
	if len(s.Points) < 2 || s.Points[0].Price == 0 {
		return 0
	}
	first := s.Points[0].Price
	return (s.Points[len(s.Points)-1].Price - first) / first
}

// NormalizeTicker upper-cases and trims a user-entered symbol.
func NormalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
