// Package chart composes feed events and price series into plot-ready points.
// Everything here is a pure function of its inputs.
package chart

import (
	"strings"

	"github.com/zappabad/squawk/internal/market"
	"github.com/zappabad/squawk/internal/news"
)

// MergedPoint is a price point annotated with the news of its day.
// Sentiment and Headline are nil when no event matched; a zero sentiment is a
// real value and must not be confused with absence.
type MergedPoint struct {
	Date      string
	Price     float64
	Sentiment *float64
	Headline  *string
	EventID   news.EventID
}

// HasEvent reports whether an event was attached to p.
func (p MergedPoint) HasEvent() bool {
	return p.Sentiment != nil
}

// MergeSeries attaches to each price point the first event for ticker whose
// timestamp starts with the point's date. events are expected newest first, so
// the first match is the most recent event of that day.
func MergeSeries(events []news.Event, prices []market.PricePoint, ticker string) []MergedPoint {
	out := make([]MergedPoint, len(prices))
	for i, p := range prices {
		out[i] = MergedPoint{Date: p.Date, Price: p.Price}
		if p.Date == "" {
			continue
		}
		for _, ev := range events {
			if ev.Ticker != ticker || !strings.HasPrefix(ev.Timestamp, p.Date) {
				continue
			}
			sentiment, headline := ev.Sentiment, ev.Headline
			out[i].Sentiment = &sentiment
			out[i].Headline = &headline
			out[i].EventID = ev.ID
			break
		}
	}
	return out
}

// SentimentPoint is one sample of the aggregate sentiment chart.
type SentimentPoint struct {
	Timestamp string
	Ticker    string
	Sentiment float64
}

// DefaultWindow is the number of samples on the aggregate sentiment chart.
const DefaultWindow = 20

// SentimentWindow reverses the newest-first events into chronological order
// and keeps the last n, which are the n most recent events, oldest first.
func SentimentWindow(events []news.Event, n int) []SentimentPoint {
	if n <= 0 || len(events) == 0 {
		return nil
	}
	chrono := make([]news.Event, len(events))
	for i, ev := range events {
		chrono[len(events)-1-i] = ev
	}
	if len(chrono) > n {
		chrono = chrono[len(chrono)-n:]
	}
	out := make([]SentimentPoint, len(chrono))
	for i, ev := range chrono {
		out[i] = SentimentPoint{Timestamp: ev.Timestamp, Ticker: ev.Ticker, Sentiment: ev.Sentiment}
	}
	return out
}
