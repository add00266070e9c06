package server

import (
	"io"
	"mime/multipart"
	"strings"

	"hackit/internal/feed"
	"hackit/internal/media"
	"hackit/internal/middleware"
	"hackit/internal/models"
	"hackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// maxPostImages caps the files accepted in one multipart post.
const maxPostImages = 10

// ListFeed handles GET /api/posts
// @Summary List the feed
// @Description Newest posts first, with excerpts computed for the viewport
// @Tags posts
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Param viewport query string false "wide or narrow"
// @Success 200 {array} service.PostView
// @Router /posts [get]
func (s *Server) ListFeed(c *fiber.Ctx) error {
	page := parsePagination(c, service.DefaultFeedLimit)
	posts, err := s.postService.ListFeed(c.UserContext(), service.ListFeedInput{
		Limit:    page.Limit,
		Offset:   page.Offset,
		ViewerID: middleware.UserID(c),
		Viewport: feed.ParseViewport(c.Query("viewport")),
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseKey(c, "id")
	if err != nil {
		return nil
	}
	detail, err := s.postService.GetPost(c.UserContext(), postID, middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(detail)
}

// CreatePost handles POST /api/posts as JSON {content} or multipart content + images[].
// @Summary Create a post
// @Tags posts
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} service.PostView
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	in := service.CreatePostInput{UserID: middleware.UserID(c)}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid multipart form"))
		}
		if v := form.Value["content"]; len(v) > 0 {
			in.Content = v[0]
		}
		files := append(form.File["images[]"], form.File["images"]...)
		if len(files) > maxPostImages {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Too many images"))
		}
		for _, fh := range files {
			upload, err := readUpload(fh)
			if err != nil {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("Unable to read uploaded file"))
			}
			in.Images = append(in.Images, upload)
		}
	} else {
		var req struct {
			Content string `json:"content"`
		}
		if err := parseBody(c, &req); err != nil {
			return nil
		}
		in.Content = req.Content
	}

	post, err := s.postService.CreatePost(c.UserContext(), in)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func readUpload(fh *multipart.FileHeader) (media.Upload, error) {
	src, err := fh.Open()
	if err != nil {
		return media.Upload{}, err
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return media.Upload{}, err
	}
	return media.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}

// ToggleLike handles POST /api/posts/:id/like
// @Summary Toggle the caller's like
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} service.LikeResult
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := s.parseKey(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.postService.ToggleLike(c.UserContext(), middleware.UserID(c), postID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(res)
}

// Like handles PUT /api/posts/:id/like
func (s *Server) Like(c *fiber.Ctx) error {
	return s.setLike(c, true)
}

// Unlike handles DELETE /api/posts/:id/like
func (s *Server) Unlike(c *fiber.Ctx) error {
	return s.setLike(c, false)
}

func (s *Server) setLike(c *fiber.Ctx, liked bool) error {
	postID, err := s.parseKey(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.postService.SetLike(c.UserContext(), middleware.UserID(c), postID, liked)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(res)
}

// PreviewFeed handles GET /api/preview/posts, the anonymous feed.
func (s *Server) PreviewFeed(c *fiber.Ctx) error {
	page := parsePagination(c, service.DefaultFeedLimit)
	posts, err := s.postService.ListFeed(c.UserContext(), service.ListFeedInput{
		Limit:    page.Limit,
		Offset:   page.Offset,
		Viewport: feed.ParseViewport(c.Query("viewport")),
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(posts)
}

// PreviewLike handles POST /api/preview/posts/:id/like. Nothing is recorded.
func (s *Server) PreviewLike(c *fiber.Ctx) error {
	postID, err := s.parseKey(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.postService.PreviewLike(c.UserContext(), postID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(res)
}

// PreviewComment handles POST /api/preview/posts/:id/comments.
func (s *Server) PreviewComment(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusForbidden,
		models.NewForbiddenError("You need an account to comment"))
}

// previewFeatures are the navigation entries locked in preview, by route key.
var previewFeatures = map[string]string{
	"search":    "Search",
	"resources": "Resources",
	"market":    "Market",
	"contact":   "Contact",
}

// PreviewFeature handles GET /api/preview/features/:feature.
func (s *Server) PreviewFeature(c *fiber.Ctx) error {
	key := strings.ToLower(c.Params("feature"))
	name, ok := previewFeatures[key]
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Feature", key))
	}
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error":      "You need an account to access " + name,
		"code":       models.CodeForbidden,
		"feature":    name,
		"restricted": true,
	})
}
