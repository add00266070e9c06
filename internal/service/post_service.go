package service

import (
	"context"
	"errors"
	"time"

	"hackit/internal/feed"
	"hackit/internal/media"
	"hackit/internal/models"
	"hackit/internal/observability"
	"hackit/internal/repository"
	"hackit/internal/validation"
)

const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)

type PostService struct {
	postRepo      repository.PostRepository
	profiles      repository.ProfileRepository
	comments      *CommentService
	notifications *NotificationService
	images        ImageStore
	events        EventPublisher
	notifyLikes   func(actorID string) bool
	now           func() time.Time
}

// PostView is a post as rendered in a feed card or the detail modal.
type PostView struct {
	*models.Post
	Images     []string `json:"images"`
	ImageCount int      `json:"image_count"`
	Excerpt    string   `json:"excerpt"`
	IsLong     bool     `json:"is_long"`
	TimeAgo    string   `json:"time_ago"`
}

// PostDetail is the detail modal payload.
type PostDetail struct {
	*PostView
	Comments []*CommentView `json:"comments"`
}

// LikeResult is the post state after a like change.
type LikeResult struct {
	PostID        string `json:"post_id"`
	Liked         bool   `json:"liked"`
	LikesCount    int    `json:"likes_count"`
	CommentsCount int    `json:"comments_count"`
	Restricted    bool   `json:"restricted,omitempty"`
}

type ListFeedInput struct {
	Limit    int
	Offset   int
	ViewerID string
	Viewport feed.Viewport
}

type CreatePostInput struct {
	UserID  string
	Content string
	Images  []media.Upload
}

func NewPostService(
	postRepo repository.PostRepository,
	profiles repository.ProfileRepository,
	comments *CommentService,
	notifications *NotificationService,
	images ImageStore,
	events EventPublisher,
) *PostService {
	return &PostService{
		postRepo:      postRepo,
		profiles:      profiles,
		comments:      comments,
		notifications: notifications,
		images:        images,
		events:        publisherOrNoop(events),
		now:           time.Now,
	}
}

// SetLikeNotificationGate installs a per-actor switch for like notifications.
// Without one every real like notifies the author.
func (s *PostService) SetLikeNotificationGate(gate func(actorID string) bool) {
	s.notifyLikes = gate
}

// ClampPage normalizes feed paging parameters.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *PostService) render(p *models.Post, threshold int) *PostView {
	urls := p.ImageURLs()
	excerpt := feed.Truncate(p.Content, threshold)
	return &PostView{
		Post:       p,
		Images:     feed.DisplayImages(urls),
		ImageCount: len(urls),
		Excerpt:    excerpt.Text,
		IsLong:     excerpt.IsLong,
		TimeAgo:    feed.TimeAgo(p.CreatedAt, s.now()),
	}
}

// ListFeed returns one page of the feed, newest first. An empty ViewerID
// yields the anonymous preview feed with liked always false.
func (s *PostService) ListFeed(ctx context.Context, in ListFeedInput) ([]*PostView, error) {
	limit, offset := ClampPage(in.Limit, in.Offset)
	posts, err := s.postRepo.List(ctx, limit, offset, in.ViewerID)
	if err != nil {
		return nil, err
	}
	threshold := in.Viewport.Threshold()
	views := make([]*PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, s.render(p, threshold))
	}
	return views, nil
}

// GetPost returns the detail view of a post with all of its comments.
func (s *PostService) GetPost(ctx context.Context, postID, viewerID string) (*PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	detail := &PostDetail{PostView: s.render(post, feed.WideThreshold), Comments: []*CommentView{}}
	if s.comments != nil {
		comments, err := s.comments.ListComments(ctx, postID, 0, 0)
		if err != nil {
			return nil, err
		}
		detail.Comments = comments
	}
	return detail, nil
}

// CreatePost publishes a post authored by the caller's current profile.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (_ *PostView, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "post", "create")
	defer func() { observability.EndSpan(span, err) }()

	content, err := validation.PostContent(in.Content, len(in.Images))
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if len(in.Images) > 0 && s.images == nil {
		return nil, models.NewValidationError("Image uploads are not available")
	}

	profile, err := s.profiles.GetOrCreateDefault(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	images := make([]models.PostImage, 0, len(in.Images))
	for _, upload := range in.Images {
		upload.OwnerID = in.UserID
		url, err := s.images.SavePostImage(ctx, upload)
		if err != nil {
			return nil, err
		}
		images = append(images, models.PostImage{URL: url})
	}

	post := &models.Post{
		UserID:       strPtr(in.UserID),
		AuthorName:   profile.Name,
		AuthorTitle:  profile.BusinessPosition,
		ProfileColor: profile.AvatarColor,
		Content:      content,
		Images:       images,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	view := s.render(post, feed.WideThreshold)
	s.events.PublishBroadcastEvent(ctx, EventPostCreated, map[string]interface{}{
		"post_id":     post.ID,
		"author_name": post.AuthorName,
	})
	return view, nil
}

// ToggleLike flips the caller's like on a post.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID string) (*LikeResult, error) {
	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	return s.SetLike(ctx, userID, postID, !liked)
}

// SetLike moves the caller's like to the requested state. Repeating the same
// state is a no-op that still reports the current counts.
func (s *PostService) SetLike(ctx context.Context, userID, postID string, liked bool) (result *LikeResult, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "post", "set_like")
	defer func() { observability.EndSpan(span, err) }()

	var changed bool
	if liked {
		changed, err = s.postRepo.Like(ctx, userID, postID)
	} else {
		changed, err = s.postRepo.Unlike(ctx, userID, postID)
	}
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	result = &LikeResult{
		PostID:        post.ID,
		Liked:         post.Liked,
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
	}
	if !changed {
		observability.LikeTransitions.WithLabelValues("noop").Inc()
		return result, nil
	}
	if liked {
		observability.LikeTransitions.WithLabelValues("liked").Inc()
	} else {
		observability.LikeTransitions.WithLabelValues("unliked").Inc()
	}
	if author := derefString(post.UserID); author != "" {
		s.events.PublishUserEvent(ctx, author, EventPostReactionUpdated, map[string]interface{}{
			"post_id":        post.ID,
			"user_id":        userID,
			"liked":          liked,
			"likes_count":    post.LikesCount,
			"comments_count": post.CommentsCount,
		})
	}
	if liked && s.notifications != nil && (s.notifyLikes == nil || s.notifyLikes(userID)) {
		if err := s.notifications.NotifyPostActivity(ctx, userID, post, models.NotificationLiked); err != nil {
			observability.GlobalLogger.WarnContext(ctx, "like notification failed", "post_id", postID, "error", err)
		}
	}
	return result, nil
}

// PreviewLike reports a post's counts for an anonymous viewer without liking it.
func (s *PostService) PreviewLike(ctx context.Context, postID string) (*LikeResult, error) {
	post, err := s.postRepo.GetByID(ctx, postID, "")
	if err != nil {
		return nil, err
	}
	return &LikeResult{
		PostID:        post.ID,
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
		Restricted:    true,
	}, nil
}

// isNotFound reports whether err is an AppError with code NOT_FOUND.
func isNotFound(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Code == models.CodeNotFound
}
