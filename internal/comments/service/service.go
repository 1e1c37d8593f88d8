package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/zappabad/squawk/internal/client"
	"github.com/zappabad/squawk/internal/comments"
	commentsview "github.com/zappabad/squawk/internal/comments/view"
	"github.com/zappabad/squawk/internal/news"
	"github.com/zappabad/squawk/internal/poll"
)

// ErrNoThread is returned by mutations when no thread is selected.
var ErrNoThread = errors.New("no thread selected")

// Backend is the subset of the API the comments service needs.
type Backend interface {
	Comments(ctx context.Context, id news.EventID) ([]comments.Comment, error)
	PostComment(ctx context.Context, nc comments.NewComment) (comments.Comment, error)
	UpvoteComment(ctx context.Context, id int64) error
}

// CommentsService polls the selected thread and posts on its behalf.
// Each mutation is followed by a refresh that runs inside the thread's poll
// loop, so it never overlaps a scheduled poll.
type CommentsService struct {
	cfg     Config
	backend Backend
	view    *commentsview.ThreadView
	keyed   *poll.Keyed[news.EventID, []comments.Comment]
	log     *zap.Logger

	externalEvents chan commentsview.ThreadEvent
	droppedEvents  atomic.Int64

	closeOnce sync.Once
}

// NewCommentsService creates an idle CommentsService. Polling starts on Select.
func NewCommentsService(cfg Config, backend Backend, log *zap.Logger) *CommentsService {
	if cfg.Poll.Interval <= 0 {
		cfg.Poll.Interval = DefaultConfig().Poll.Interval
	}
	if cfg.ExternalEventBuffer <= 0 {
		cfg.ExternalEventBuffer = DefaultConfig().ExternalEventBuffer
	}
	if cfg.UserID == "" {
		cfg.UserID = comments.NewUserID()
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &CommentsService{
		cfg:            cfg,
		backend:        backend,
		view:           commentsview.NewThreadView(),
		log:            log,
		externalEvents: make(chan commentsview.ThreadEvent, cfg.ExternalEventBuffer),
	}
	s.keyed = poll.NewKeyed[news.EventID, []comments.Comment]("comments", cfg.Poll, backend.Comments, s.apply, log)
	return s
}

func (s *CommentsService) apply(id news.EventID, list []comments.Comment) {
	ev := commentsview.ThreadEvent{NewsID: id, Comments: list}
	if !s.view.Apply(ev) {
		s.log.Debug("stale thread result dropped", zap.String("news_id", string(id)))
		return
	}
	select {
	case s.externalEvents <- ev:
	default:
		s.droppedEvents.Add(1)
	}
}

// UserID returns the author id used for posts.
func (s *CommentsService) UserID() string {
	return s.cfg.UserID
}

// Select starts polling the thread of id, replacing any previous thread.
// An empty id deselects.
func (s *CommentsService) Select(id news.EventID) {
	if id == "" {
		s.Deselect()
		return
	}
	s.view.Select(id)
	s.keyed.SetKey(id)
}

// Deselect stops polling.
func (s *CommentsService) Deselect() {
	s.keyed.Clear()
	s.view.Select("")
}

// Selected returns the selected thread id.
func (s *CommentsService) Selected() (news.EventID, bool) {
	return s.keyed.Key()
}

// Thread returns the selected thread.
func (s *CommentsService) Thread() commentsview.Thread {
	return s.view.Snapshot()
}

// Post adds a comment to the selected thread.
func (s *CommentsService) Post(ctx context.Context, content string) (comments.Comment, error) {
	id, ok := s.keyed.Key()
	if !ok {
		return comments.Comment{}, ErrNoThread
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return comments.Comment{}, client.ErrEmptyInput
	}
	c, err := s.backend.PostComment(ctx, comments.NewComment{
		NewsItemID: id,
		UserID:     s.cfg.UserID,
		Content:    content,
	})
	if err != nil {
		return comments.Comment{}, err
	}
	s.keyed.Trigger()
	return c, nil
}

// Upvote adds an upvote to a comment of the selected thread.
func (s *CommentsService) Upvote(ctx context.Context, commentID int64) error {
	if _, ok := s.keyed.Key(); !ok {
		return ErrNoThread
	}
	if err := s.backend.UpvoteComment(ctx, commentID); err != nil {
		return err
	}
	s.keyed.Trigger()
	return nil
}

// Vote records a sentiment vote on the selected thread.
func (s *CommentsService) Vote(ctx context.Context, v comments.Vote) (comments.Comment, error) {
	id, ok := s.keyed.Key()
	if !ok {
		return comments.Comment{}, ErrNoThread
	}
	c, err := s.backend.PostComment(ctx, comments.VoteComment(id, s.cfg.UserID, v))
	if err != nil {
		return comments.Comment{}, err
	}
	s.view.RecordVote(id, v)
	s.keyed.Trigger()
	return c, nil
}

// Events returns the external events channel. It is closed by Close.
func (s *CommentsService) Events() <-chan commentsview.ThreadEvent {
	return s.externalEvents
}

// DroppedEvents returns the count of dropped external events.
func (s *CommentsService) DroppedEvents() int64 {
	return s.droppedEvents.Load()
}

// Close stops polling and closes the events channel.
func (s *CommentsService) Close() {
	s.closeOnce.Do(func() {
		s.keyed.Cancel()
		close(s.externalEvents)
	})
}
