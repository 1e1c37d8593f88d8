package news

import "slices"

// PinnedFirst returns a copy of events with watchlist tickers moved to the front.
// Order inside the pinned and unpinned groups is the input order.
func PinnedFirst(events []Event, watchlist []string) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	if len(watchlist) == 0 {
		return out
	}
	slices.SortStableFunc(out, func(a, b Event) int {
		ap := slices.Contains(watchlist, a.Ticker)
		bp := slices.Contains(watchlist, b.Ticker)
		switch {
		case ap && !bp:
			return -1
		case !ap && bp:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Pinned reports whether the event's ticker is on the watchlist.
func Pinned(ev Event, watchlist []string) bool {
	return slices.Contains(watchlist, ev.Ticker)
}
