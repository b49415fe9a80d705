// internal/posts/service.go
// Feed composition, trending ranking and comment thread assembly.

package posts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Common errors
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotOwner        = errors.New("not the owner")
	ErrParentMismatch  = errors.New("parent comment belongs to a different post")
	ErrEmptyComment    = errors.New("comment text cannot be empty")
)

const (
	// candidateLimit bounds the per-request candidate fetch; the trending
	// sort runs over at most this many posts.
	candidateLimit = 100

	// feedLimit caps the composed feed response.
	feedLimit = 50

	defaultCommentLimit = 50
	maxCommentLimit     = 100
)

// FeedEvent describes a mutation worth fanning out to connected followers
type FeedEvent struct {
	Type          string      `json:"type"`
	ActorID       int64       `json:"actor_id"`
	SubjectUserID int64       `json:"-"` // whose followers receive the event
	Payload       interface{} `json:"payload"`
}

// EventPublisher delivers feed events to live subscribers. Delivery is
// best-effort; publishing must never block a request.
type EventPublisher interface {
	PublishFeedEvent(event FeedEvent)
}

// Service implements the feed composer, trending scorer and comment thread
// assembler over the posts repository.
type Service struct {
	repo   Repository
	events EventPublisher
}

// NewService creates a posts service. events may be nil.
func NewService(repo Repository, events EventPublisher) *Service {
	return &Service{repo: repo, events: events}
}

// Feed composes the feed for a viewer. viewerID 0 means anonymous: the
// following mode yields an empty list and is_liked is false everywhere.
// The all mode ranks by trending score; following sorts by recency.
func (s *Service) Feed(ctx context.Context, viewerID int64, mode string) ([]Post, error) {
	if mode == "" {
		mode = FeedModeAll
	}

	start := time.Now()
	defer func() {
		recordFeedComposeDuration(time.Since(start))
	}()
	recordFeedRequest(mode)

	var candidates []Post
	var err error

	switch mode {
	case FeedModeFollowing:
		if viewerID == 0 {
			return []Post{}, nil
		}

		following, err := s.repo.GetFollowingIDs(ctx, viewerID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve following set: %w", err)
		}
		if len(following) == 0 {
			return []Post{}, nil
		}

		candidates, err = s.repo.ListPostsByAuthors(ctx, viewerID, following, candidateLimit)
		if err != nil {
			return nil, err
		}

		// Fetch order is already newest-first; re-sort defensively.
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
		})

	case FeedModeAll:
		candidates, err = s.repo.ListRecentPosts(ctx, viewerID, candidateLimit)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		scores := make(map[int64]float64, len(candidates))
		for _, p := range candidates {
			score := TrendingScore(p.CreatedAt, p.LikesCount, p.CommentsCount, now)
			scores[p.ID] = score
			recordTrendingScore(score)
		}

		// Stable: equal scores keep the newest-first fetch order.
		sort.SliceStable(candidates, func(i, j int) bool {
			return scores[candidates[i].ID] > scores[candidates[j].ID]
		})

	default:
		return nil, fmt.Errorf("unknown feed mode %q", mode)
	}

	if len(candidates) > feedLimit {
		candidates = candidates[:feedLimit]
	}
	return candidates, nil
}

// GetPost returns a single post with engagement counts for the viewer
func (s *Service) GetPost(ctx context.Context, postID, viewerID int64) (*Post, error) {
	return s.repo.GetPostByID(ctx, postID, viewerID)
}

// CreatePost creates a post. Posts are immutable once created.
func (s *Service) CreatePost(ctx context.Context, userID int64, req *CreatePostRequest) (*Post, error) {
	post := &Post{
		UserID:   userID,
		ImageURL: req.ImageURL,
		Caption:  strings.TrimSpace(req.Caption),
	}

	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	created, err := s.repo.GetPostByID(ctx, post.ID, userID)
	if err != nil {
		return nil, err
	}

	s.publish(FeedEvent{
		Type:          "post.created",
		ActorID:       userID,
		SubjectUserID: userID,
		Payload:       created,
	})

	return created, nil
}

// DeletePost removes a post. Only the owner may delete it.
func (s *Service) DeletePost(ctx context.Context, postID, userID int64) error {
	ownerID, err := s.repo.GetPostOwner(ctx, postID)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrNotOwner
	}

	return s.repo.DeletePost(ctx, postID)
}

// ToggleLike flips the viewer's like on a post and returns the new state
func (s *Service) ToggleLike(ctx context.Context, postID, userID int64) (bool, error) {
	ownerID, err := s.repo.GetPostOwner(ctx, postID)
	if err != nil {
		return false, err
	}

	liked, err := s.repo.TogglePostLike(ctx, postID, userID)
	if err != nil {
		return false, err
	}
	recordLikeToggle("post", liked)

	if liked {
		s.publish(FeedEvent{
			Type:          "post.liked",
			ActorID:       userID,
			SubjectUserID: ownerID,
			Payload:       map[string]int64{"post_id": postID},
		})
	}

	return liked, nil
}

// GetComments assembles the comment thread of a post in ascending creation
// order. A nonexistent post is reported as not found rather than an empty
// thread.
func (s *Service) GetComments(ctx context.Context, postID, viewerID int64, page, limit int) (*CommentsResponse, error) {
	if _, err := s.repo.GetPostOwner(ctx, postID); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultCommentLimit
	}
	if limit > maxCommentLimit {
		limit = maxCommentLimit
	}
	offset := (page - 1) * limit

	comments, total, err := s.repo.ListComments(ctx, postID, viewerID, limit, offset)
	if err != nil {
		return nil, err
	}

	return &CommentsResponse{
		Comments: comments,
		Pagination: PaginationMeta{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasNext: offset+limit < total,
		},
	}, nil
}

// AddComment creates a comment, optionally threaded one level under a parent
// comment on the same post.
func (s *Service) AddComment(ctx context.Context, postID, userID int64, req *CommentRequest) (*Comment, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	ownerID, err := s.repo.GetPostOwner(ctx, postID)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.repo.GetCommentByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, ErrParentMismatch
		}
	}

	comment := &Comment{
		PostID:   postID,
		UserID:   userID,
		ParentID: req.ParentID,
		Text:     text,
	}

	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.publish(FeedEvent{
		Type:          "comment.created",
		ActorID:       userID,
		SubjectUserID: ownerID,
		Payload:       comment,
	})

	return comment, nil
}

// DeleteComment removes a comment. Only its author may delete it.
func (s *Service) DeleteComment(ctx context.Context, postID, commentID, userID int64) error {
	comment, err := s.repo.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.PostID != postID {
		return ErrCommentNotFound
	}
	if comment.UserID != userID {
		return ErrNotOwner
	}

	return s.repo.DeleteComment(ctx, commentID)
}

// ToggleCommentLike flips the viewer's like on a comment
func (s *Service) ToggleCommentLike(ctx context.Context, postID, commentID, userID int64) (bool, error) {
	comment, err := s.repo.GetCommentByID(ctx, commentID)
	if err != nil {
		return false, err
	}
	if comment.PostID != postID {
		return false, ErrCommentNotFound
	}

	liked, err := s.repo.ToggleCommentLike(ctx, commentID, userID)
	if err != nil {
		return false, err
	}
	recordLikeToggle("comment", liked)
	return liked, nil
}

func (s *Service) publish(event FeedEvent) {
	if s.events != nil {
		s.events.PublishFeedEvent(event)
	}
}
