package server

import (
	"hackit/internal/middleware"
	"hackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListComments handles GET /api/posts/:id/comments, oldest first.
func (s *Server) ListComments(c *fiber.Ctx) error {
	postID, err := s.parseKey(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 50)
	comments, err := s.commentService.ListComments(c.UserContext(), postID, page.Limit, page.Offset)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Add a comment
// @Description Blank content is rejected and leaves the thread unchanged
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body object{content=string} true "Comment"
// @Success 201 {object} service.CommentView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseKey(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	created, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:  middleware.UserID(c),
		PostID:  postID,
		Content: req.Content,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}
