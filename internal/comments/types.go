package comments

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zappabad/squawk/internal/news"
)

// Vote is a reader's sentiment call on a headline.
type Vote string

const (
	VoteBullish Vote = "Bullish"
	VoteBearish Vote = "Bearish"
)

// Comment is one entry of a discussion thread attached to a feed event.
type Comment struct {
	ID            int64        `json:"id"`
	NewsItemID    news.EventID `json:"news_item_id"`
	UserID        string       `json:"user_id"`
	ParentID      *int64       `json:"parent_id"`
	Content       string       `json:"content"`
	Upvotes       int          `json:"upvotes"`
	SentimentVote *Vote        `json:"sentiment_vote"`
	Timestamp     string       `json:"timestamp"`
}

// Time parses the comment timestamp.
func (c Comment) Time() (time.Time, bool) {
	return news.Event{Timestamp: c.Timestamp}.Time()
}

// NewComment is the body of a comment post.
type NewComment struct {
	NewsItemID    news.EventID `json:"news_item_id"`
	UserID        string       `json:"user_id"`
	ParentID      *int64       `json:"parent_id,omitempty"`
	Content       string       `json:"content"`
	SentimentVote *Vote        `json:"sentiment_vote,omitempty"`
}

// VoteComment builds the comment posted for a sentiment vote.
func VoteComment(id news.EventID, user string, v Vote) NewComment {
	return NewComment{
		NewsItemID:    id,
		UserID:        user,
		Content:       fmt.Sprintf("Voted %s", v),
		SentimentVote: &v,
	}
}

// NewUserID returns a per-session author id of the form Trader_xxxxxxxx.
func NewUserID() string {
	return "Trader_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Divergent reports whether vote contradicts the event's sentiment.
func Divergent(ev news.Event, vote Vote) bool {
	switch {
	case ev.Sentiment > news.TrendThreshold && vote == VoteBearish:
		return true
	case ev.Sentiment < -news.TrendThreshold && vote == VoteBullish:
		return true
	default:
		return false
	}
}
