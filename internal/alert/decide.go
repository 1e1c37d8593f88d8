// Package alert decides when a feed batch warrants an audible alert.
//
// Only the head of each batch is inspected. A head is announced at most once,
// and only when its impact is High and alerting is enabled.
package alert

import (
	"fmt"

	"github.com/zappabad/squawk/internal/news"
)

// Cursor is the minimal state needed to know what was already handled.
// The zero value is the null cursor.
type Cursor struct {
	// LastAnnouncedID is the id of the last head that was announced.
	LastAnnouncedID news.EventID
	// MutedHeadID is the last head observed while alerting was disabled.
	MutedHeadID news.EventID

	// seen holds recently announced or muted heads, oldest first, so a head
	// that reappears after being displaced is never announced.
	seen []news.EventID
}

// seenHistory bounds Cursor.seen.
const seenHistory = 64

// Seen reports whether id was already announced or observed while muted.
func (c Cursor) Seen(id news.EventID) bool {
	if id == c.LastAnnouncedID || id == c.MutedHeadID {
		return true
	}
	for _, a := range c.seen {
		if a == id {
			return true
		}
	}
	return false
}

func (c Cursor) withSeen(id news.EventID) Cursor {
	n := len(c.seen)
	start := 0
	if n >= seenHistory {
		start = n - seenHistory + 1
	}
	// copy so cursors handed out earlier never share a backing array
	next := make([]news.EventID, 0, n-start+1)
	next = append(next, c.seen[start:]...)
	c.seen = append(next, id)
	return c
}

func (c Cursor) withAnnounced(id news.EventID) Cursor {
	c = c.withSeen(id)
	c.LastAnnouncedID = id
	return c
}

func (c Cursor) withMuted(id news.EventID) Cursor {
	if !c.Seen(id) {
		c = c.withSeen(id)
	}
	c.MutedHeadID = id
	return c
}

// Decision is the outcome of one cycle.
type Decision struct {
	ShouldAlert bool
	Event       news.Event
	Cursor      Cursor
}

// Decide inspects the head of batch against cursor.
// The batch must be newest first. Decide has no side effects.
func Decide(batch []news.Event, cursor Cursor, enabled bool) Decision {
	if len(batch) == 0 {
		return Decision{Cursor: cursor}
	}
	head := batch[0]

	if !enabled {
		return Decision{Cursor: cursor.withMuted(head.ID)}
	}
	if cursor.Seen(head.ID) {
		return Decision{Cursor: cursor}
	}
	if head.Impact != news.ImpactHigh {
		return Decision{Cursor: cursor}
	}

	return Decision{
		ShouldAlert: true,
		Event:       head,
		Cursor:      cursor.withAnnounced(head.ID),
	}
}

// Phrase is the text spoken for an alert.
func Phrase(ev news.Event) string {
	return fmt.Sprintf("High Impact Alert. %s. %s", ev.Ticker, ev.Headline)
}
