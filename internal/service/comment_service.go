package service

import (
	"context"
	"time"

	"hackit/internal/feed"
	"hackit/internal/models"
	"hackit/internal/observability"
	"hackit/internal/repository"
	"hackit/internal/validation"
)

// AnonymousAuthorName labels comments from callers without a saved profile name.
const AnonymousAuthorName = "You"

type CommentService struct {
	commentRepo   repository.CommentRepository
	postRepo      repository.PostRepository
	profiles      repository.ProfileRepository
	notifications *NotificationService
	events        EventPublisher
	now           func() time.Time
}

// CommentView is a comment with its relative time label.
type CommentView struct {
	*models.Comment
	TimeAgo string `json:"time_ago"`
}

type CreateCommentInput struct {
	UserID  string
	PostID  string
	Content string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	profiles repository.ProfileRepository,
	notifications *NotificationService,
	events EventPublisher,
) *CommentService {
	return &CommentService{
		commentRepo:   commentRepo,
		postRepo:      postRepo,
		profiles:      profiles,
		notifications: notifications,
		events:        publisherOrNoop(events),
		now:           time.Now,
	}
}

func (s *CommentService) view(c *models.Comment) *CommentView {
	return &CommentView{Comment: c, TimeAgo: feed.TimeAgo(c.CreatedAt, s.now())}
}

// author resolves the display name and colour stamped on the caller's comment.
func (s *CommentService) author(ctx context.Context, userID string) (string, string, error) {
	name, color := AnonymousAuthorName, models.DefaultAvatarColor
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return name, color, nil
		}
		return "", "", err
	}
	if profile.Name != "" {
		name = profile.Name
	}
	if profile.AvatarColor != "" {
		color = profile.AvatarColor
	}
	return name, color, nil
}

// CreateComment appends a comment to a post. Blank content is rejected and
// leaves the post untouched.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (_ *CommentView, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "comment", "create")
	defer func() { observability.EndSpan(span, err) }()

	content, err := validation.CommentContent(in.Content)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	name, color, err := s.author(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:       in.PostID,
		UserID:       strPtr(in.UserID),
		AuthorName:   name,
		ProfileColor: color,
		Content:      content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID, "")
	if err != nil {
		observability.GlobalLogger.WarnContext(ctx, "reload post after comment failed", "post_id", in.PostID, "error", err)
		return s.view(comment), nil
	}
	if author := derefString(post.UserID); author != "" {
		s.events.PublishUserEvent(ctx, author, EventCommentCreated, map[string]interface{}{
			"post_id":        post.ID,
			"comment_id":     comment.ID,
			"author_name":    comment.AuthorName,
			"comments_count": post.CommentsCount,
		})
	}
	if s.notifications != nil {
		if err := s.notifications.NotifyPostActivity(ctx, in.UserID, post, models.NotificationCommented); err != nil {
			observability.GlobalLogger.WarnContext(ctx, "comment notification failed", "post_id", post.ID, "error", err)
		}
	}
	return s.view(comment), nil
}

// ListComments returns a post's comments oldest first. A non-positive limit
// returns every comment.
func (s *CommentService) ListComments(ctx context.Context, postID string, limit, offset int) ([]*CommentView, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, ""); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID, limit, offset)
	if err != nil {
		return nil, err
	}
	views := make([]*CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, s.view(c))
	}
	return views, nil
}
