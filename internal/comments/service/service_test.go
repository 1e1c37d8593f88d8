package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/zappabad/squawk/internal/client"
	"github.com/zappabad/squawk/internal/comments"
	"github.com/zappabad/squawk/internal/news"
	"github.com/zappabad/squawk/internal/poll"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memBackend is an in-memory comments API.
type memBackend struct {
	mu      sync.Mutex
	threads map[news.EventID][]comments.Comment
	nextID  int64
	trace   []string
	// hold blocks fetches of a thread until closed.
	hold map[news.EventID]chan struct{}
}

func newMemBackend() *memBackend {
	return &memBackend{
		threads: make(map[news.EventID][]comments.Comment),
		hold:    make(map[news.EventID]chan struct{}),
	}
}

func (b *memBackend) Comments(ctx context.Context, id news.EventID) ([]comments.Comment, error) {
	b.mu.Lock()
	h := b.hold[id]
	b.trace = append(b.trace, "get "+string(id))
	b.mu.Unlock()
	if h != nil {
		select {
		case <-h:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]comments.Comment(nil), b.threads[id]...), nil
}

func (b *memBackend) PostComment(_ context.Context, nc comments.NewComment) (comments.Comment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	c := comments.Comment{
		ID:            b.nextID,
		NewsItemID:    nc.NewsItemID,
		UserID:        nc.UserID,
		Content:       nc.Content,
		SentimentVote: nc.SentimentVote,
	}
	// newest first, as served
	b.threads[nc.NewsItemID] = append([]comments.Comment{c}, b.threads[nc.NewsItemID]...)
	b.trace = append(b.trace, "post "+string(nc.NewsItemID))
	return c, nil
}

func (b *memBackend) UpvoteComment(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for nid, list := range b.threads {
		for i := range list {
			if list[i].ID == id {
				b.threads[nid][i].Upvotes++
			}
		}
	}
	b.trace = append(b.trace, "upvote")
	return nil
}

func slowConfig() Config {
	cfg := DefaultConfig()
	cfg.Poll = poll.Config{Interval: time.Hour}
	cfg.UserID = "Trader_test"
	return cfg
}

func TestCommentsMutationsRequireThread(t *testing.T) {
	svc := NewCommentsService(slowConfig(), newMemBackend(), nil)
	defer svc.Close()
	ctx := context.Background()

	_, err := svc.Post(ctx, "hello")
	assert.ErrorIs(t, err, ErrNoThread)
	assert.ErrorIs(t, svc.Upvote(ctx, 1), ErrNoThread)
	_, err = svc.Vote(ctx, comments.VoteBullish)
	assert.ErrorIs(t, err, ErrNoThread)
}

func TestCommentsPostRefreshesThread(t *testing.T) {
	b := newMemBackend()
	svc := NewCommentsService(slowConfig(), b, nil)
	defer svc.Close()
	ctx := context.Background()

	svc.Select("n1")
	require.Eventually(t, func() bool { return svc.Thread().Loaded }, time.Second, time.Millisecond)

	_, err := svc.Post(ctx, "  supply is tight  ")
	require.NoError(t, err)

	// the hour-long interval means only the triggered refresh can pick it up
	require.Eventually(t, func() bool { return len(svc.Thread().Comments) == 1 }, time.Second, time.Millisecond)
	th := svc.Thread()
	assert.Equal(t, "supply is tight", th.Comments[0].Content)
	assert.Equal(t, "Trader_test", th.Comments[0].UserID)
}

func TestCommentsEmptyPostMakesNoRequest(t *testing.T) {
	b := newMemBackend()
	svc := NewCommentsService(slowConfig(), b, nil)
	defer svc.Close()

	svc.Select("n1")
	_, err := svc.Post(context.Background(), "   ")
	assert.ErrorIs(t, err, client.ErrEmptyInput)

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, op := range b.trace {
		assert.False(t, strings.HasPrefix(op, "post"), op)
	}
}

func TestCommentsVoteAndUpvote(t *testing.T) {
	b := newMemBackend()
	svc := NewCommentsService(slowConfig(), b, nil)
	defer svc.Close()
	ctx := context.Background()

	svc.Select("n1")
	c, err := svc.Vote(ctx, comments.VoteBearish)
	require.NoError(t, err)
	assert.Equal(t, "Voted Bearish", c.Content)

	require.NoError(t, svc.Upvote(ctx, c.ID))
	require.Eventually(t, func() bool {
		th := svc.Thread()
		return len(th.Comments) == 1 && th.Comments[0].Upvotes == 1
	}, time.Second, time.Millisecond)

	th := svc.Thread()
	require.NotNil(t, th.Vote)
	assert.Equal(t, comments.VoteBearish, *th.Vote)
	assert.True(t, comments.Divergent(news.Event{Sentiment: 0.8}, *th.Vote))
}

func TestCommentsSwitchDropsOldThread(t *testing.T) {
	b := newMemBackend()
	b.threads["old"] = []comments.Comment{{ID: 1, NewsItemID: "old", Content: "stale"}}
	b.threads["new"] = []comments.Comment{{ID: 2, NewsItemID: "new", Content: "fresh"}}
	release := make(chan struct{})
	b.hold["old"] = release

	svc := NewCommentsService(slowConfig(), b, nil)
	defer svc.Close()

	svc.Select("old")
	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return len(b.trace) > 0
	}, time.Second, time.Millisecond)

	svc.Select("new")
	close(release)

	require.Eventually(t, func() bool { return svc.Thread().Loaded }, time.Second, time.Millisecond)
	th := svc.Thread()
	assert.Equal(t, news.EventID("new"), th.NewsID)
	require.Len(t, th.Comments, 1)
	assert.Equal(t, "fresh", th.Comments[0].Content)

	id, ok := svc.Selected()
	assert.True(t, ok)
	assert.Equal(t, news.EventID("new"), id)
}

func TestCommentsDeselectStopsPolling(t *testing.T) {
	b := newMemBackend()
	cfg := slowConfig()
	cfg.Poll.Interval = 2 * time.Millisecond
	svc := NewCommentsService(cfg, b, nil)
	defer svc.Close()

	svc.Select("n1")
	require.Eventually(t, func() bool { return svc.Thread().Loaded }, time.Second, time.Millisecond)
	svc.Deselect()

	_, ok := svc.Selected()
	assert.False(t, ok)
	assert.Empty(t, svc.Thread().NewsID)

	b.mu.Lock()
	n := len(b.trace)
	b.mu.Unlock()
	time.Sleep(30 * time.Millisecond)
	b.mu.Lock()
	defer b.mu.Unlock()
	// at most one fetch that was already in flight when Deselect ran
	assert.LessOrEqual(t, len(b.trace), n+1)
}

func TestNewUserIDShape(t *testing.T) {
	id := comments.NewUserID()
	assert.Len(t, id, len("Trader_")+8)
	assert.True(t, strings.HasPrefix(id, "Trader_"))

	svc := NewCommentsService(DefaultConfig(), newMemBackend(), nil)
	defer svc.Close()
	assert.True(t, strings.HasPrefix(svc.UserID(), "Trader_"))
}

func TestDivergent(t *testing.T) {
	tests := []struct {
		sentiment float64
		vote      comments.Vote
		want      bool
	}{
		{0.8, comments.VoteBearish, true},
		{0.8, comments.VoteBullish, false},
		{-0.5, comments.VoteBullish, true},
		{-0.5, comments.VoteBearish, false},
		{0.3, comments.VoteBearish, false},
		{-0.3, comments.VoteBullish, false},
	}
	for _, tt := range tests {
		got := comments.Divergent(news.Event{Sentiment: tt.sentiment}, tt.vote)
		assert.Equal(t, tt.want, got, "%v %s", tt.sentiment, tt.vote)
	}
}
