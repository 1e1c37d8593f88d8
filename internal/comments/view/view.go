package view

import (
	"sync"

	"github.com/zappabad/squawk/internal/comments"
	"github.com/zappabad/squawk/internal/news"
)

// ThreadEvent is one polled thread, tagged with the event it belongs to.
type ThreadEvent struct {
	NewsID   news.EventID
	Comments []comments.Comment
}

// Thread is a copy of the selected thread.
type Thread struct {
	NewsID   news.EventID
	Comments []comments.Comment
	Loaded   bool
	// Vote is the sentiment this session voted on the thread, if any.
	Vote *comments.Vote
}

// ThreadView holds the comments of the selected thread only.
type ThreadView struct {
	mu       sync.RWMutex
	newsID   news.EventID
	comments []comments.Comment
	loaded   bool
	votes    map[news.EventID]comments.Vote
}

// NewThreadView creates a ThreadView with no thread selected.
func NewThreadView() *ThreadView {
	return &ThreadView{votes: make(map[news.EventID]comments.Vote)}
}

// Select switches to the thread of id, discarding the previous thread's comments.
func (v *ThreadView) Select(id news.EventID) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if id == v.newsID {
		return
	}
	v.newsID = id
	v.comments = nil
	v.loaded = false
}

// Apply replaces the comments when ev belongs to the selected thread.
// Results for any other thread are dropped.
func (v *ThreadView) Apply(ev ThreadEvent) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.newsID == "" || ev.NewsID != v.newsID {
		return false
	}
	v.comments = append([]comments.Comment(nil), ev.Comments...)
	v.loaded = true
	return true
}

// RecordVote remembers the session's vote on a thread.
func (v *ThreadView) RecordVote(id news.EventID, vote comments.Vote) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.votes[id] = vote
}

// Snapshot returns a copy of the selected thread.
func (v *ThreadView) Snapshot() Thread {
	v.mu.RLock()
	defer v.mu.RUnlock()

	t := Thread{
		NewsID:   v.newsID,
		Comments: append([]comments.Comment(nil), v.comments...),
		Loaded:   v.loaded,
	}
	if vote, ok := v.votes[v.newsID]; ok {
		t.Vote = &vote
	}
	return t
}
